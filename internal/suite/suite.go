package suite

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pinnhq/pinncheck/internal/auth"
	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/config"
)

// Messages printed for the built-in onboarding probe. A fresh browsing
// context never carries the folder-configuration key in localStorage, so a
// healthy dev server always lands on the onboarding screen.
const (
	OnboardingSeenMessage    = "Onboarding visible"
	OnboardingMissingMessage = "Not on onboarding?"
)

// Suite is an ordered list of checks against one target, loadable from YAML.
type Suite struct {
	Name        string              `yaml:"name"`
	Target      string              `yaml:"target"`
	Credentials *checks.Credentials `yaml:"credentials,omitempty"`
	Checks      []checks.Check      `yaml:"checks"`
}

// Default builds the Pinn onboarding smoke suite: open the dev server,
// let the client render, screenshot, then probe for the onboarding text.
func Default(target config.TargetConfig, artifacts config.ArtifactsConfig) *Suite {
	return &Suite{
		Name:   "pinn-onboarding",
		Target: target.URL,
		Checks: []checks.Check{
			{Kind: checks.KindNavigate, Value: target.URL},
			{Kind: checks.KindSleep, Value: target.SettleDelay.String()},
			{Kind: checks.KindScreenshot, Value: artifacts.Screenshot},
			{
				Kind:      checks.KindTextVisible,
				Value:     target.ProbeText,
				OnSeen:    OnboardingSeenMessage,
				OnMissing: OnboardingMissingMessage,
			},
		},
	}
}

// Load reads a suite definition from a YAML file. Environment variables in
// the form ${VAR} are expanded before parsing so suites can carry
// credentials without inlining them.
func Load(filename string) (*Suite, error) {
	if filename == "" {
		return nil, fmt.Errorf("suite filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	return LoadBytes(data)
}

// LoadBytes parses a suite from YAML bytes, applies defaults, and validates.
func LoadBytes(data []byte) (*Suite, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("suite data cannot be empty")
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	var s Suite
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return nil, fmt.Errorf("failed to parse suite YAML: %w", err)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}

// applyDefaults prepends a navigate check when the suite names a target but
// its first check is not a navigation.
func (s *Suite) applyDefaults() {
	if s.Name == "" {
		s.Name = "unnamed"
	}
	if s.Target != "" && (len(s.Checks) == 0 || s.Checks[0].Kind != checks.KindNavigate) {
		s.Checks = append([]checks.Check{{Kind: checks.KindNavigate, Value: s.Target}}, s.Checks...)
	}
}

var validKinds = map[checks.Kind]bool{
	checks.KindNavigate:       true,
	checks.KindSleep:          true,
	checks.KindScreenshot:     true,
	checks.KindTextVisible:    true,
	checks.KindWaitVisible:    true,
	checks.KindWaitHidden:     true,
	checks.KindElementPresent: true,
	checks.KindClick:          true,
	checks.KindType:           true,
	checks.KindEval:           true,
	checks.KindLogin:          true,
}

var selectorKinds = map[checks.Kind]bool{
	checks.KindWaitVisible:    true,
	checks.KindWaitHidden:     true,
	checks.KindElementPresent: true,
	checks.KindClick:          true,
	checks.KindType:           true,
}

// Validate rejects suites that could not execute: unknown kinds, missing
// selectors or values, malformed durations, or a login without credentials.
func (s *Suite) Validate() error {
	if len(s.Checks) == 0 {
		return fmt.Errorf("suite %q has no checks", s.Name)
	}

	hasNavigate := false
	for i, check := range s.Checks {
		if check.Kind == checks.KindNavigate {
			hasNavigate = true
		}
		if !validKinds[check.Kind] {
			return fmt.Errorf("check %d: unknown kind %q", i, check.Kind)
		}
		if selectorKinds[check.Kind] && check.Selector == "" {
			return fmt.Errorf("check %d (%s): selector is required", i, check.Kind)
		}
		switch check.Kind {
		case checks.KindNavigate:
			if check.Value == "" {
				return fmt.Errorf("check %d (navigate): URL value is required", i)
			}
		case checks.KindSleep:
			if _, err := time.ParseDuration(check.Value); err != nil {
				return fmt.Errorf("check %d (sleep): invalid duration %q: %w", i, check.Value, err)
			}
		case checks.KindScreenshot:
			if check.Value == "" {
				return fmt.Errorf("check %d (screenshot): output path value is required", i)
			}
		case checks.KindTextVisible:
			if check.Value == "" {
				return fmt.Errorf("check %d (text_visible): text value is required", i)
			}
		case checks.KindEval:
			if check.Value == "" {
				return fmt.Errorf("check %d (eval): script value is required", i)
			}
		case checks.KindLogin:
			if s.Credentials == nil || s.Credentials.Username == "" || s.Credentials.Password == "" {
				return fmt.Errorf("check %d (login): suite credentials are required", i)
			}
			if s.Credentials.TOTPSecret != "" {
				if err := auth.CheckSecret(s.Credentials.TOTPSecret); err != nil {
					return fmt.Errorf("check %d (login): invalid totp secret: %w", i, err)
				}
			}
		}
	}

	// An unset env var in the target expands to "", and without it no
	// navigate check gets prepended; the suite would run against about:blank.
	if s.Target == "" && !hasNavigate {
		return fmt.Errorf("suite %q has no target and no navigate check", s.Name)
	}
	return nil
}

// NewRun materializes the suite into a run ready for submission.
func (s *Suite) NewRun() *checks.Run {
	return checks.NewRun(s.Target, s.Checks, s.Credentials)
}
