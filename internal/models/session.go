package models

import (
	"fmt"
	"time"
)

// Source tags where a session result came from.
type Source string

const (
	SourceWeb    Source = "web"
	SourceDevice Source = "device"
	SourceDemo   Source = "demo"
)

// RiskLevel is the discrete tier derived from the deviation score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Patient holds free-text identifiers attached to a session.
type Patient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// SessionRecord is one ingested, enriched test result.
// DeviationScore and RiskLevel are derived from Score and the baseline
// that was active when they were last computed.
type SessionRecord struct {
	ID             string    `json:"id"`
	Source         Source    `json:"source"`
	SequenceLength int       `json:"sequenceLength"`
	RoundsPlayed   int       `json:"roundsPlayed"`
	RoundsCorrect  int       `json:"roundsCorrect"`
	AvgReactionMs  float64   `json:"avgReactionMs"`
	Score          float64   `json:"score"`
	Accuracy       float64   `json:"accuracy"`
	DeviationScore float64   `json:"deviationScore"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	Patient        Patient   `json:"patient"`
	Timestamp      time.Time `json:"timestamp"`
}

// RawResult is an un-enriched submission, before scoring and ID assignment.
// A nil Score falls back to RoundsCorrect as the effective score.
type RawResult struct {
	Source         Source
	SequenceLength int
	RoundsPlayed   int
	RoundsCorrect  int
	AvgReactionMs  float64
	Score          *float64
	Patient        Patient
}

// ValidationError describes a submission rejected before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
