// Package scoring maps raw session measurements to a bounded deviation
// score and a discrete risk tier. The deviation score is a heuristic
// display value, not a validated clinical instrument: non-finite inputs
// contribute zero deviation instead of propagating an error.
package scoring

import (
	"math"

	"github.com/KofuCodes/ReMind/internal/models"
)

// Risk tier thresholds over the 0-100 deviation range. Each boundary
// value belongs to the higher tier.
const (
	mediumThreshold = 25.0
	highThreshold   = 60.0
)

// Formula weights for the performance-based strategy: accuracy shortfall
// counts more than reaction-time slowdown.
const (
	accuracyWeight = 1.4
	reactionWeight = 0.6
)

// Strategy computes a deviation score in [0,100] for a record against a
// baseline. Implementations are pure; callers may share them freely.
type Strategy interface {
	Name() string
	Deviation(rec *models.SessionRecord, baseline models.Baseline) float64
}

// ScoreBased penalizes only below-baseline scores. At or above the
// expected score the deviation is floored at zero.
type ScoreBased struct{}

func (ScoreBased) Name() string { return "score" }

func (ScoreBased) Deviation(rec *models.SessionRecord, baseline models.Baseline) float64 {
	expected := baseline.ExpectedScore
	if !isFinite(expected) || expected <= 0 {
		expected = models.DefaultBaseline().ExpectedScore
	}
	if !isFinite(rec.Score) {
		return 0
	}

	diff := math.Max(0, expected-rec.Score)
	maxDiff := math.Max(expected, 1)
	return clamp(diff/maxDiff*100, 0, 100)
}

// PerformanceBased derives deviation from accuracy shortfall and
// reaction-time slowdown relative to the baseline. Better-than-baseline
// performance on either axis contributes zero, never a negative amount.
type PerformanceBased struct{}

func (PerformanceBased) Name() string { return "performance" }

func (PerformanceBased) Deviation(rec *models.SessionRecord, baseline models.Baseline) float64 {
	if !isFinite(rec.Accuracy) || !isFinite(rec.AvgReactionMs) ||
		!isFinite(baseline.Accuracy) || !isFinite(baseline.MeanReactionMs) {
		return 0
	}

	accDiff := math.Max(0, baseline.Accuracy-rec.Accuracy)
	rtRatio := math.Max(0, (rec.AvgReactionMs-baseline.MeanReactionMs)/math.Max(baseline.MeanReactionMs, 1))
	raw := (accDiff*accuracyWeight + rtRatio*reactionWeight) * 100
	return clamp(raw, 0, 100)
}

// ForVariant returns the strategy for a configured variant name, falling
// back to the score-based formula for anything unrecognized.
func ForVariant(name string) Strategy {
	if name == "performance" {
		return PerformanceBased{}
	}
	return ScoreBased{}
}

// Classify thresholds a deviation score into a risk tier.
func Classify(deviation float64) models.RiskLevel {
	switch {
	case deviation >= highThreshold:
		return models.RiskHigh
	case deviation >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Enrich recomputes the derived fields on a record in place, using the
// given strategy and baseline.
func Enrich(s Strategy, rec *models.SessionRecord, baseline models.Baseline) {
	rec.DeviationScore = s.Deviation(rec, baseline)
	rec.RiskLevel = Classify(rec.DeviationScore)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(math.Max(f, lo), hi)
}
