package lessons

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/labquest/internal/formula"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/session"
)

// SupportedSchema is the lesson file format major version this build reads.
const SupportedSchema = "v1"

// ErrUnsupportedSchema is returned for lesson files written for a
// different major format version.
var ErrUnsupportedSchema = errors.New("unsupported lesson schema version")

// ValidationError lists every problem found in one lesson file.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d problem(s): %s", e.Source, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Parse decodes and validates a lesson file. source names the file in
// error messages.
func Parse(data []byte, source string) (*Lesson, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: parse yaml: %w", source, err)
	}

	if err := checkVersion(doc, source); err != nil {
		return nil, err
	}

	if err := validateStructure(doc, source); err != nil {
		return nil, err
	}

	var l Lesson
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("%s: decode lesson: %w", source, err)
	}
	l.Source = source

	if problems := l.check(); len(problems) > 0 {
		return nil, &ValidationError{Source: source, Problems: problems}
	}
	return &l, nil
}

func checkVersion(doc any, source string) error {
	m, ok := doc.(map[string]any)
	if !ok {
		return &ValidationError{Source: source, Problems: []string{"document is not a mapping"}}
	}
	v, _ := m["schema_version"].(string)
	if !semver.IsValid(v) {
		return &ValidationError{Source: source, Problems: []string{fmt.Sprintf("schema_version %q is not a semantic version", v)}}
	}
	if semver.Major(v) != SupportedSchema {
		return fmt.Errorf("%s: %w: %s (want %s.x)", source, ErrUnsupportedSchema, v, SupportedSchema)
	}
	return nil
}

func validateStructure(doc any, source string) error {
	schema, err := lessonSchema()
	if err != nil {
		return err
	}
	v, err := toJSONValue(doc)
	if err != nil {
		return fmt.Errorf("%s: convert yaml: %w", source, err)
	}
	if err := schema.Validate(v); err != nil {
		return &ValidationError{Source: source, Problems: []string{err.Error()}}
	}
	return nil
}

// check enforces rules the structural schema cannot express.
func (l *Lesson) check() []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	model, ok := formula.Lookup(l.Model)
	if !ok {
		add("unknown model %q (known: %s)", l.Model, strings.Join(formula.IDs(), ", "))
	}

	for _, pr := range []struct {
		name string
		p    Prediction
	}{{"predict", l.Predict}, {"twist_predict", l.TwistPredict}} {
		seen := map[string]bool{}
		for _, c := range pr.p.Choices {
			if seen[c.ID] {
				add("%s: duplicate choice id %q", pr.name, c.ID)
			}
			seen[c.ID] = true
		}
		if _, ok := pr.p.Choice(pr.p.Answer); !ok {
			add("%s: answer %q is not one of the choices", pr.name, pr.p.Answer)
		}
	}

	if ok {
		for _, pl := range []struct {
			name string
			p    Play
		}{{"play", l.Play}, {"twist_play", l.TwistPlay}} {
			for k := range pl.p.Params {
				if _, found := model.Param(k); !found {
					add("%s: model %q has no parameter %q", pl.name, l.Model, k)
				}
			}
			for _, k := range pl.p.Focus {
				if _, found := model.Param(k); !found {
					add("%s: focus on unknown parameter %q", pl.name, k)
				}
			}
		}
	}

	for i, q := range l.Test {
		correct := 0
		for _, o := range q.Options {
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			add("test[%d]: want exactly one correct option, found %d", i, correct)
		}
	}

	g := l.Gates
	if g.PassThreshold > len(l.Test) {
		add("gates: pass_threshold %d exceeds %d questions", g.PassThreshold, len(l.Test))
	}
	if g.MinApplications != nil && *g.MinApplications > len(l.Applications) {
		add("gates: min_applications %d exceeds %d applications", *g.MinApplications, len(l.Applications))
	}
	if g.JumpPolicy != "" {
		if _, err := session.ParseJumpPolicy(g.JumpPolicy); err != nil {
			add("gates: %v", err)
		}
	}
	if g.RetryPhase != "" {
		p, ok := phase.Parse(g.RetryPhase)
		if !ok || !p.Before(phase.Test) {
			add("gates: retry_phase %q must be a phase before test", g.RetryPhase)
		}
	}
	if g.Debounce != "" {
		if d, err := time.ParseDuration(g.Debounce); err != nil || d < 0 {
			add("gates: debounce %q is not a non-negative duration", g.Debounce)
		}
	}
	return problems
}
