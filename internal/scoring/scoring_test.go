package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KofuCodes/ReMind/internal/models"
)

func record(score float64) *models.SessionRecord {
	return &models.SessionRecord{Score: score}
}

func TestScoreBasedWorkedExamples(t *testing.T) {
	baseline := models.DefaultBaseline()
	s := ScoreBased{}

	// roundsPlayed=10, roundsCorrect=9, score=9: diff=0.5, maxDiff=9.5
	dev := s.Deviation(record(9), baseline)
	assert.InDelta(t, 100*0.5/9.5, dev, 0.001)
	assert.Equal(t, models.RiskLow, Classify(dev))

	// score=3: diff=6.5, maxDiff=9.5
	dev = s.Deviation(record(3), baseline)
	assert.InDelta(t, 100*6.5/9.5, dev, 0.001)
	assert.Equal(t, models.RiskHigh, Classify(dev))
}

func TestScoreBasedAtOrAboveBaselineIsZero(t *testing.T) {
	baseline := models.DefaultBaseline()
	s := ScoreBased{}

	for _, score := range []float64{9.5, 10, 12, 1000} {
		assert.Zero(t, s.Deviation(record(score), baseline), "score %v", score)
	}
}

func TestScoreBasedBounds(t *testing.T) {
	baseline := models.DefaultBaseline()
	s := ScoreBased{}

	for score := -50.0; score <= 50; score += 0.25 {
		dev := s.Deviation(record(score), baseline)
		require.GreaterOrEqual(t, dev, 0.0)
		require.LessOrEqual(t, dev, 100.0)
	}
}

func TestScoreBasedDegenerateBaseline(t *testing.T) {
	s := ScoreBased{}

	// A zero or garbage expected score falls back to the default center
	// rather than dividing by zero.
	dev := s.Deviation(record(3), models.Baseline{ExpectedScore: 0})
	assert.InDelta(t, 100*6.5/9.5, dev, 0.001)

	dev = s.Deviation(record(3), models.Baseline{ExpectedScore: math.NaN()})
	assert.InDelta(t, 100*6.5/9.5, dev, 0.001)
}

func TestPerformanceBasedWorkedExample(t *testing.T) {
	baseline := models.Baseline{Accuracy: 0.9, MeanReactionMs: 1800}
	rec := &models.SessionRecord{Accuracy: 0.5, AvgReactionMs: 3000}

	// accDiff=0.4, rtRatio=0.667 -> (0.56+0.4)*100 = 96
	dev := PerformanceBased{}.Deviation(rec, baseline)
	assert.InDelta(t, 96.0, dev, 0.001)
	assert.Equal(t, models.RiskHigh, Classify(dev))
}

func TestPerformanceBasedBounds(t *testing.T) {
	baseline := models.Baseline{Accuracy: 0.9, MeanReactionMs: 1800}
	s := PerformanceBased{}

	for acc := 0.0; acc <= 1.0; acc += 0.05 {
		for _, rt := range []float64{0, 500, 1800, 3000, 60000} {
			rec := &models.SessionRecord{Accuracy: acc, AvgReactionMs: rt}
			dev := s.Deviation(rec, baseline)
			require.GreaterOrEqual(t, dev, 0.0)
			require.LessOrEqual(t, dev, 100.0)
		}
	}
}

func TestPerformanceBasedBetterThanBaselineIsZero(t *testing.T) {
	baseline := models.Baseline{Accuracy: 0.9, MeanReactionMs: 1800}
	rec := &models.SessionRecord{Accuracy: 0.95, AvgReactionMs: 1200}

	assert.Zero(t, PerformanceBased{}.Deviation(rec, baseline))
}

func TestNonFiniteInputsFailSoft(t *testing.T) {
	baseline := models.DefaultBaseline()

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Zero(t, ScoreBased{}.Deviation(record(bad), baseline))

		rec := &models.SessionRecord{Accuracy: bad, AvgReactionMs: 2000}
		assert.Zero(t, PerformanceBased{}.Deviation(rec, baseline))

		rec = &models.SessionRecord{Accuracy: 0.5, AvgReactionMs: bad}
		assert.Zero(t, PerformanceBased{}.Deviation(rec, baseline))
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		deviation float64
		want      models.RiskLevel
	}{
		{0, models.RiskLow},
		{24.999, models.RiskLow},
		{25, models.RiskMedium},
		{59.999, models.RiskMedium},
		{60, models.RiskHigh},
		{100, models.RiskHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.deviation), "deviation %v", tc.deviation)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[models.RiskLevel]int{
		models.RiskLow:    0,
		models.RiskMedium: 1,
		models.RiskHigh:   2,
	}

	prev := rank[Classify(0)]
	for dev := 0.0; dev <= 100; dev += 0.125 {
		cur := rank[Classify(dev)]
		require.GreaterOrEqual(t, cur, prev, "tier dropped at deviation %v", dev)
		prev = cur
	}
}

func TestForVariant(t *testing.T) {
	assert.Equal(t, "performance", ForVariant("performance").Name())
	assert.Equal(t, "score", ForVariant("score").Name())
	assert.Equal(t, "score", ForVariant("").Name())
	assert.Equal(t, "score", ForVariant("bogus").Name())
}

func TestEnrichSetsDerivedFields(t *testing.T) {
	rec := record(3)
	Enrich(ScoreBased{}, rec, models.DefaultBaseline())

	assert.InDelta(t, 100*6.5/9.5, rec.DeviationScore, 0.001)
	assert.Equal(t, models.RiskHigh, rec.RiskLevel)
}
