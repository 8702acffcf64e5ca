package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/KofuCodes/ReMind/internal/demo"
)

var (
	demoCount int
	demoURL   string
	demoSeed  int64
	demoDelay time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate synthetic sessions and submit them to a running server",
		Run:   runDemo,
	}
	cmd.Flags().IntVarP(&demoCount, "count", "n", 20, "Number of sessions to generate")
	cmd.Flags().StringVarP(&demoURL, "url", "u", "http://localhost:5050", "Base URL of the server")
	cmd.Flags().Int64Var(&demoSeed, "seed", time.Now().UnixNano(), "Random seed")
	cmd.Flags().DurationVar(&demoDelay, "delay", 50*time.Millisecond, "Delay between submissions")

	RootCmd.AddCommand(cmd)
}

func runDemo(cmd *cobra.Command, args []string) {
	gen := demo.NewGenerator(demoSeed)
	client := &http.Client{Timeout: 5 * time.Second}
	endpoint := demoURL + "/api/results"

	submitted := 0
	for i := 0; i < demoCount; i++ {
		raw := gen.Session()

		payload := map[string]any{
			"sequenceLength": raw.SequenceLength,
			"roundsPlayed":   raw.RoundsPlayed,
			"roundsCorrect":  raw.RoundsCorrect,
			"avgReactionMs":  raw.AvgReactionMs,
			"score":          raw.Score,
			"patient":        raw.Patient,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			exitErr("marshal session", err)
		}

		resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
		if err != nil {
			exitErr("submit session", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			exitErr("submit session", fmt.Errorf("server returned status %d", resp.StatusCode))
		}

		submitted++
		time.Sleep(demoDelay)
	}

	fmt.Printf("Submitted %d demo sessions to %s\n", submitted, endpoint)
}
