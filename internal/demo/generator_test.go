package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/scoring"
	"github.com/KofuCodes/ReMind/internal/store"
)

func TestGeneratedSessionsAreValid(t *testing.T) {
	g := NewGenerator(42)
	st := store.NewMemoryStore(zap.NewNop(), scoring.ScoreBased{}, models.DefaultBaseline())

	for i := 0; i < 200; i++ {
		raw := g.Session()

		require.Equal(t, models.SourceDemo, raw.Source)
		require.GreaterOrEqual(t, raw.RoundsCorrect, 0)
		require.LessOrEqual(t, raw.RoundsCorrect, raw.RoundsPlayed)
		require.GreaterOrEqual(t, raw.AvgReactionMs, 0.0)
		require.NotNil(t, raw.Score)
		require.NotEmpty(t, raw.Patient.ID)

		// Every generated session must ingest cleanly.
		_, err := st.Ingest(raw)
		require.NoError(t, err)
	}

	assert.Len(t, st.All(), 200)
}

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(7).Session()
	b := NewGenerator(7).Session()
	assert.Equal(t, a, b)
}
