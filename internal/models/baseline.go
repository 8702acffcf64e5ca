package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Baseline is the expected-performance reference a session is scored against.
// ExpectedScore drives the score-based formula; Accuracy and MeanReactionMs
// drive the performance-based one.
type Baseline struct {
	ExpectedScore  float64 `json:"expectedScore" yaml:"expected_score" mapstructure:"expected_score"`
	Accuracy       float64 `json:"accuracy" yaml:"accuracy" mapstructure:"accuracy"`
	MeanReactionMs float64 `json:"meanReactionMs" yaml:"mean_reaction_ms" mapstructure:"mean_reaction_ms"`
}

// DefaultBaseline centers the expected score on 9.5, the middle of the
// typical 9-10 range, with the historical accuracy/reaction defaults.
func DefaultBaseline() Baseline {
	return Baseline{
		ExpectedScore:  9.5,
		Accuracy:       0.9,
		MeanReactionMs: 1800,
	}
}

// BaselineProfile is a named baseline in the profiles file.
type BaselineProfile struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Baseline Baseline `yaml:",inline"`
}

// BaselineProfiles holds all named baselines loaded at startup.
type BaselineProfiles struct {
	Profiles []BaselineProfile `yaml:"profiles"`
}

// LoadBaselineProfiles reads and parses the baselines.yaml file.
func LoadBaselineProfiles(path string) (*BaselineProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baselines file: %w", err)
	}

	var profiles BaselineProfiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal baselines YAML: %w", err)
	}

	return &profiles, nil
}

// Get returns the profile with the given name.
func (p *BaselineProfiles) Get(name string) (BaselineProfile, bool) {
	for _, profile := range p.Profiles {
		if profile.Name == name {
			return profile, true
		}
	}
	return BaselineProfile{}, false
}
