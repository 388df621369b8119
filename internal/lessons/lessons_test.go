package lessons

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/session"
)

const minimalLesson = `
schema_version: v1.2.0
id: tiny
order: 5
title: Tiny
model: drag
hook:
  headline: Hello
predict:
  prompt: Pick one
  choices:
    - {id: a, text: A}
    - {id: b, text: B}
  answer: b
play:
  params:
    velocity: 12
review: {}
twist_predict:
  prompt: Pick again
  choices:
    - {id: x, text: X}
    - {id: y, text: Y}
  answer: x
twist_play: {}
twist_review: {}
applications:
  - {title: One, summary: first}
test:
  - prompt: Two plus two?
    options:
      - {text: "3"}
      - {text: "4", correct: true}
mastery: {message: done}
`

func TestParseMinimal(t *testing.T) {
	l, err := Parse([]byte(minimalLesson), "tiny.yaml")
	require.NoError(t, err)

	assert.Equal(t, "tiny", l.ID)
	assert.Equal(t, "tiny.yaml", l.Source)
	assert.Equal(t, 12.0, l.Play.Params["velocity"])
	require.Len(t, l.Test, 1)
	assert.Equal(t, 1, l.Test[0].CorrectIndex())

	c := l.Content()
	assert.Equal(t, "tiny", c.LessonID)
	assert.Equal(t, "b", c.PredictAnswer)
	assert.Equal(t, "x", c.TwistAnswer)
	assert.Equal(t, []string{"One"}, c.Applications)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		problem string
	}{
		{
			name:    "unknown model",
			mutate:  func(s string) string { return strings.Replace(s, "model: drag", "model: warp", 1) },
			problem: `unknown model "warp"`,
		},
		{
			name:    "answer not a choice",
			mutate:  func(s string) string { return strings.Replace(s, "answer: b", "answer: z", 1) },
			problem: `predict: answer "z"`,
		},
		{
			name:    "unknown play param",
			mutate:  func(s string) string { return strings.Replace(s, "velocity: 12", "warp: 12", 1) },
			problem: `no parameter "warp"`,
		},
		{
			name: "two correct options",
			mutate: func(s string) string {
				return strings.Replace(s, `{text: "3"}`, `{text: "3", correct: true}`, 1)
			},
			problem: "want exactly one correct option, found 2",
		},
		{
			name: "threshold above question count",
			mutate: func(s string) string {
				return strings.Replace(s, "order: 5", "order: 5\ngates: {pass_threshold: 3}", 1)
			},
			problem: "pass_threshold 3 exceeds 1 questions",
		},
		{
			name: "retry phase after test",
			mutate: func(s string) string {
				return strings.Replace(s, "order: 5", "order: 5\ngates: {retry_phase: mastery}", 1)
			},
			problem: `retry_phase "mastery"`,
		},
		{
			name: "bad debounce",
			mutate: func(s string) string {
				return strings.Replace(s, "order: 5", "order: 5\ngates: {debounce: soon}", 1)
			},
			problem: `debounce "soon"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(minimalLesson)), "tiny.yaml")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, strings.Join(verr.Problems, "\n"), tt.problem)
		})
	}
}

func TestParseStructuralErrors(t *testing.T) {
	t.Run("missing required section", func(t *testing.T) {
		src := strings.Replace(minimalLesson, "mastery: {message: done}\n", "", 1)
		_, err := Parse([]byte(src), "tiny.yaml")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("bad jump policy", func(t *testing.T) {
		src := strings.Replace(minimalLesson, "order: 5", "order: 5\ngates: {jump_policy: sideways}", 1)
		_, err := Parse([]byte(src), "tiny.yaml")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown field", func(t *testing.T) {
		src := strings.Replace(minimalLesson, "mastery: {message: done}", "mastery: {message: done, confetti: true}", 1)
		_, err := Parse([]byte(src), "tiny.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "confetti")
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := Parse([]byte("id: [unterminated"), "broken.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yaml")
	})
}

func TestParseSchemaVersion(t *testing.T) {
	_, err := Parse([]byte(strings.Replace(minimalLesson, "v1.2.0", "v2.0.0", 1)), "tiny.yaml")
	assert.ErrorIs(t, err, ErrUnsupportedSchema)

	_, err = Parse([]byte(strings.Replace(minimalLesson, "v1.2.0", "latest", 1)), "tiny.yaml")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestConfigOverlay(t *testing.T) {
	two := 2
	l := &Lesson{Gates: Gates{
		PassThreshold:   8,
		MinApplications: &two,
		JumpPolicy:      "any",
		RetryPhase:      "play",
		Debounce:        "150ms",
	}}
	cfg := l.Config(session.DefaultConfig())

	assert.Equal(t, 8, cfg.PassThreshold)
	assert.Equal(t, 2, cfg.MinApplications)
	assert.Equal(t, session.JumpAny, cfg.JumpPolicy)
	assert.Equal(t, phase.Play, cfg.RetryPhase)
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce)

	// Empty gates keep the base.
	assert.Equal(t, session.DefaultConfig(), (&Lesson{}).Config(session.DefaultConfig()))
}

func TestPhaseHelpers(t *testing.T) {
	l := &Lesson{
		Predict:      Prediction{Prompt: "main"},
		TwistPredict: Prediction{Prompt: "twist"},
		Play:         Play{Intro: "main"},
		TwistPlay:    Play{Intro: "twist"},
		Review:       Review{Body: "main"},
		TwistReview:  Review{Body: "twist"},
	}
	assert.Equal(t, "main", l.PredictionFor(phase.Review).Prompt)
	assert.Equal(t, "twist", l.PredictionFor(phase.TwistReview).Prompt)
	assert.Equal(t, "twist", l.PlayFor(phase.TwistPlay).Intro)
	assert.Equal(t, "main", l.PlayFor(phase.Play).Intro)
	assert.Equal(t, "twist", l.ReviewFor(phase.TwistReview).Body)
}

func TestBuiltinLessons(t *testing.T) {
	ls, err := Builtin(context.Background())
	require.NoError(t, err)
	require.Len(t, ls, 4)

	c := NewCatalog(ls...)
	ids := make([]string, 0, c.Len())
	for _, l := range c.All() {
		ids = append(ids, l.ID)
		assert.Len(t, l.Test, 10, l.ID)
		assert.GreaterOrEqual(t, len(l.Applications), session.DefaultMinApplications, l.ID)
	}
	assert.Equal(t, []string{"drag-force", "emi-shielding", "recursive-manufacturing", "fracture-mechanics"}, ids)

	next, ok := c.Next("drag-force")
	require.True(t, ok)
	assert.Equal(t, "emi-shielding", next.ID)
	_, ok = c.Next("fracture-mechanics")
	assert.False(t, ok)
}

func TestCatalogReplace(t *testing.T) {
	c := NewCatalog(&Lesson{ID: "b", Order: 2}, &Lesson{ID: "a", Order: 2}, &Lesson{ID: "z", Order: 1})
	assert.Equal(t, []string{"z", "a", "b"}, catalogIDs(c))

	c.Add(&Lesson{ID: "a", Order: 9, Title: "moved"})
	assert.Equal(t, []string{"z", "b", "a"}, catalogIDs(c))
	l, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "moved", l.Title)
	assert.Equal(t, 3, c.Len())
}

func catalogIDs(c *Catalog) []string {
	var ids []string
	for _, l := range c.All() {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestLint(t *testing.T) {
	dup := strings.Replace(minimalLesson, "order: 5", "order: 6", 1)
	fsys := fstest.MapFS{
		"lessons/a.yaml":     {Data: []byte(minimalLesson)},
		"lessons/b.yml":      {Data: []byte(dup)},
		"lessons/c.yaml":     {Data: []byte("schema_version: v1.0.0\nid: nope\n")},
		"lessons/readme.txt": {Data: []byte("ignored")},
	}

	results, err := Lint(context.Background(), fsys, "lessons")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "lessons/a.yaml", results[0].File)
	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Lesson)

	assert.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "already defined in lessons/a.yaml")
	assert.Nil(t, results[1].Lesson)

	assert.Error(t, results[2].Err)
}

func TestLoadFSStopsOnFirstError(t *testing.T) {
	fsys := fstest.MapFS{
		"x/good.yaml": {Data: []byte(minimalLesson)},
		"x/bad.yaml":  {Data: []byte("schema_version: v1.0.0\n")},
	}
	_, err := LoadFS(context.Background(), fsys, "x")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x/bad.yaml", verr.Source)
}

func TestOpenWithExtraDir(t *testing.T) {
	dir := t.TempDir()
	override := strings.Replace(minimalLesson, "id: tiny", "id: drag-force", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drag.yaml"), []byte(override), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(minimalLesson), 0o644))

	c, err := Open(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	l, ok := c.Get("drag-force")
	require.True(t, ok)
	assert.Equal(t, "Tiny", l.Title)

	_, err = Open(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedSchema))
}
