// Package demo produces synthetic session results for exercising the
// dashboard without a device or manual entry.
package demo

import (
	"fmt"
	"math/rand"

	"github.com/KofuCodes/ReMind/internal/models"
)

var demoNames = []string{
	"Alex Rivera",
	"Sam Okafor",
	"Jordan Lee",
	"Priya Natarajan",
	"Casey Muller",
	"Robin Tanaka",
}

var demoLocations = []string{"Ward A", "Ward B", "Outpatient", "Home visit"}

// Generator builds randomized raw results. Roughly one in four sessions is
// degraded so the risk tiers all show up on the dashboard.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Session generates one synthetic raw result.
func (g *Generator) Session() models.RawResult {
	rounds := 10
	var correct int
	var reaction float64

	if g.rng.Intn(4) == 0 {
		// Degraded session: low accuracy, slow responses.
		correct = g.rng.Intn(6)
		reaction = 2500 + g.rng.Float64()*2500
	} else {
		correct = 7 + g.rng.Intn(4)
		reaction = 1200 + g.rng.Float64()*1200
	}

	score := float64(correct)
	idx := g.rng.Intn(len(demoNames))

	return models.RawResult{
		Source:         models.SourceDemo,
		SequenceLength: 4 + g.rng.Intn(5),
		RoundsPlayed:   rounds,
		RoundsCorrect:  correct,
		AvgReactionMs:  reaction,
		Score:          &score,
		Patient: models.Patient{
			ID:       fmt.Sprintf("demo-%03d", idx+1),
			Name:     demoNames[idx],
			Age:      35 + g.rng.Intn(45),
			Location: demoLocations[g.rng.Intn(len(demoLocations))],
			Notes:    "synthetic demo session",
		},
	}
}
