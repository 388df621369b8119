package session

import (
	"fmt"
	"time"

	"github.com/abhisek/labquest/internal/phase"
)

// JumpPolicy restricts which phases the navigation bar may jump to.
type JumpPolicy string

const (
	// JumpAny allows a jump to any phase.
	JumpAny JumpPolicy = "any"

	// JumpVisited allows a jump only to phases already reached.
	JumpVisited JumpPolicy = "visited"

	// JumpBackward allows a jump only to the current phase or earlier ones.
	JumpBackward JumpPolicy = "backward"
)

// ParseJumpPolicy converts a config string into a JumpPolicy.
func ParseJumpPolicy(s string) (JumpPolicy, error) {
	switch p := JumpPolicy(s); p {
	case JumpAny, JumpVisited, JumpBackward:
		return p, nil
	case "":
		return JumpVisited, nil
	default:
		return "", fmt.Errorf("unknown jump policy %q", s)
	}
}

// Defaults used when a lesson does not override them.
const (
	DefaultPassThreshold   = 7
	DefaultMinApplications = 3
	DefaultDebounce        = 300 * time.Millisecond
	DefaultRetryPhase      = phase.Review
)

// Config holds the per-lesson gating rules.
type Config struct {
	// PassThreshold is the minimum test score that unlocks mastery.
	PassThreshold int

	// MinApplications is how many application cards must be explored
	// before the transfer phase lets the learner continue to the test.
	MinApplications int

	// JumpPolicy restricts navigation-bar jumps.
	JumpPolicy JumpPolicy

	// Debounce collapses repeated transitions inside this window into one.
	// Zero disables the guard.
	Debounce time.Duration

	// RetryPhase is where a failed test sends the learner on retry.
	RetryPhase phase.Phase
}

// DefaultConfig returns the gating rules most lessons use.
func DefaultConfig() Config {
	return Config{
		PassThreshold:   DefaultPassThreshold,
		MinApplications: DefaultMinApplications,
		JumpPolicy:      JumpVisited,
		Debounce:        DefaultDebounce,
		RetryPhase:      DefaultRetryPhase,
	}
}

// normalize fills unset or out-of-range fields with defaults.
func (c Config) normalize(questions, applications int) Config {
	if c.PassThreshold <= 0 {
		c.PassThreshold = DefaultPassThreshold
	}
	if questions > 0 && c.PassThreshold > questions {
		c.PassThreshold = questions
	}
	if c.MinApplications < 0 {
		c.MinApplications = 0
	}
	if c.MinApplications > applications {
		c.MinApplications = applications
	}
	if _, err := ParseJumpPolicy(string(c.JumpPolicy)); err != nil || c.JumpPolicy == "" {
		c.JumpPolicy = JumpVisited
	}
	if c.Debounce < 0 {
		c.Debounce = 0
	}
	if !c.RetryPhase.Valid() || !c.RetryPhase.Before(phase.Test) {
		c.RetryPhase = DefaultRetryPhase
	}
	return c
}
