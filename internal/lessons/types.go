// Package lessons loads, validates and catalogs lesson content.
package lessons

import (
	"time"

	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
	"github.com/abhisek/labquest/internal/session"
)

// Lesson is one complete phase-driven lesson.
type Lesson struct {
	SchemaVersion string `yaml:"schema_version"`
	ID            string `yaml:"id"`
	Order         int    `yaml:"order"`
	Title         string `yaml:"title"`
	Subject       string `yaml:"subject"`
	Summary       string `yaml:"summary"`

	// Model names the formula model driving both play phases.
	Model string `yaml:"model"`

	Gates Gates `yaml:"gates"`

	Hook         Hook            `yaml:"hook"`
	Predict      Prediction      `yaml:"predict"`
	Play         Play            `yaml:"play"`
	Review       Review          `yaml:"review"`
	TwistPredict Prediction      `yaml:"twist_predict"`
	TwistPlay    Play            `yaml:"twist_play"`
	TwistReview  Review          `yaml:"twist_review"`
	Applications []Application   `yaml:"applications"`
	Test         []quiz.Question `yaml:"test"`
	Mastery      Mastery         `yaml:"mastery"`

	// Source is the file the lesson was loaded from.
	Source string `yaml:"-"`
}

// Gates overrides the default gating rules for a lesson. Zero values keep
// the defaults.
type Gates struct {
	PassThreshold   int    `yaml:"pass_threshold"`
	MinApplications *int   `yaml:"min_applications"`
	JumpPolicy      string `yaml:"jump_policy"`
	RetryPhase      string `yaml:"retry_phase"`
	Debounce        string `yaml:"debounce"`
}

// Hook opens the lesson.
type Hook struct {
	Headline string `yaml:"headline"`
	Body     string `yaml:"body"`
}

// Choice is one prediction option.
type Choice struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Prediction asks the learner to commit to an outcome before playing.
type Prediction struct {
	Prompt  string   `yaml:"prompt"`
	Choices []Choice `yaml:"choices"`
	Answer  string   `yaml:"answer"`
}

// Choice returns the choice with the given ID.
func (p Prediction) Choice(id string) (Choice, bool) {
	for _, c := range p.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Play configures an interactive simulation.
type Play struct {
	Intro  string             `yaml:"intro"`
	Params map[string]float64 `yaml:"params"`

	// Focus lists the parameter keys the learner may adjust. Empty means all.
	Focus []string `yaml:"focus"`
}

// Review explains the outcome of a prediction.
type Review struct {
	Correct   string `yaml:"correct"`
	Incorrect string `yaml:"incorrect"`
	Body      string `yaml:"body"`
}

// Application is a real-world use of the lesson's idea.
type Application struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Detail  string `yaml:"detail"`
}

// Mastery closes the lesson.
type Mastery struct {
	Message string `yaml:"message"`
}

// Content extracts what the phase controller needs.
func (l *Lesson) Content() session.Content {
	apps := make([]string, len(l.Applications))
	for i, a := range l.Applications {
		apps[i] = a.Title
	}
	return session.Content{
		LessonID:      l.ID,
		Questions:     l.Test,
		PredictAnswer: l.Predict.Answer,
		TwistAnswer:   l.TwistPredict.Answer,
		Applications:  apps,
	}
}

// Config overlays the lesson's gates on base. Gates are validated at load
// time, so unparseable values here are ignored.
func (l *Lesson) Config(base session.Config) session.Config {
	cfg := base
	g := l.Gates
	if g.PassThreshold > 0 {
		cfg.PassThreshold = g.PassThreshold
	}
	if g.MinApplications != nil {
		cfg.MinApplications = *g.MinApplications
	}
	if g.JumpPolicy != "" {
		if p, err := session.ParseJumpPolicy(g.JumpPolicy); err == nil {
			cfg.JumpPolicy = p
		}
	}
	if p, ok := phase.Parse(g.RetryPhase); ok {
		cfg.RetryPhase = p
	}
	if g.Debounce != "" {
		if d, err := time.ParseDuration(g.Debounce); err == nil {
			cfg.Debounce = d
		}
	}
	return cfg
}

// PredictionFor returns the prediction asked in p.
func (l *Lesson) PredictionFor(p phase.Phase) Prediction {
	if p == phase.TwistPredict || p == phase.TwistPlay || p == phase.TwistReview {
		return l.TwistPredict
	}
	return l.Predict
}

// PlayFor returns the simulation setup for a play phase.
func (l *Lesson) PlayFor(p phase.Phase) Play {
	if p == phase.TwistPlay {
		return l.TwistPlay
	}
	return l.Play
}

// ReviewFor returns the review for a review phase.
func (l *Lesson) ReviewFor(p phase.Phase) Review {
	if p == phase.TwistReview {
		return l.TwistReview
	}
	return l.Review
}
