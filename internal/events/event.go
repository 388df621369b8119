// Package events defines the lesson event record reported to the host
// application and the Notifier interface that delivers it.
package events

import (
	"fmt"
	"time"

	"github.com/abhisek/labquest/internal/phase"
)

// Type tags an event record.
type Type string

const (
	TypePhaseChange         Type = "phase_change"
	TypePredictionMade      Type = "prediction_made"
	TypeApplicationExplored Type = "application_explored"
	TypeAnswerSelected      Type = "answer_selected"
	TypeTestSubmitted       Type = "test_submitted"
	TypeTestRetried         Type = "test_retried"
	TypeLessonCompleted     Type = "lesson_completed"
	TypeLessonRestarted     Type = "lesson_restarted"
)

// Details is the type-specific payload of an event. The set of
// implementations is closed to this package.
type Details interface {
	Type() Type
	title() string
}

// Event is the record emitted on every notable lesson interaction.
type Event struct {
	Type     Type
	LessonID string

	// RunID groups the events of one pass through a lesson. It changes on
	// restart.
	RunID     string
	Title     string
	Details   Details
	Timestamp time.Time
}

// New builds an event, deriving its type tag and title from d.
func New(lessonID string, d Details, at time.Time) Event {
	return Event{
		Type:      d.Type(),
		LessonID:  lessonID,
		Title:     d.title(),
		Details:   d,
		Timestamp: at,
	}
}

// PhaseChange records a transition between phases.
type PhaseChange struct {
	From  phase.Phase `json:"from"`
	To    phase.Phase `json:"to"`
	Label string      `json:"label"`
}

func (PhaseChange) Type() Type { return TypePhaseChange }
func (d PhaseChange) title() string {
	return fmt.Sprintf("Entered %s", d.Label)
}

// Stage distinguishes the two prediction phases.
type Stage string

const (
	StageMain  Stage = "main"
	StageTwist Stage = "twist"
)

// PredictionMade records a prediction choice. Predictions are framed as
// right or wrong in review but never feed into the test score.
type PredictionMade struct {
	Stage   Stage  `json:"stage"`
	Choice  string `json:"choice"`
	Correct bool   `json:"correct"`
}

func (PredictionMade) Type() Type { return TypePredictionMade }
func (d PredictionMade) title() string {
	if d.Stage == StageTwist {
		return "Twist prediction made"
	}
	return "Prediction made"
}

// ApplicationExplored records a real-world application card marked understood.
type ApplicationExplored struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Explored int    `json:"explored"`
	Required int    `json:"required"`
}

func (ApplicationExplored) Type() Type { return TypeApplicationExplored }
func (d ApplicationExplored) title() string {
	return fmt.Sprintf("Explored %s", d.Name)
}

// AnswerSelected records a test answer before submission.
type AnswerSelected struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

func (AnswerSelected) Type() Type { return TypeAnswerSelected }
func (d AnswerSelected) title() string {
	return fmt.Sprintf("Answered question %d", d.Question+1)
}

// TestSubmitted records a graded test.
type TestSubmitted struct {
	Score     int   `json:"score"`
	Total     int   `json:"total"`
	Threshold int   `json:"threshold"`
	Passed    bool  `json:"passed"`
	Missed    []int `json:"missed,omitempty"`
}

func (TestSubmitted) Type() Type { return TypeTestSubmitted }
func (d TestSubmitted) title() string {
	return fmt.Sprintf("Test submitted: %d/%d", d.Score, d.Total)
}

// TestRetried records a failed attempt being reset.
type TestRetried struct {
	Attempt  int         `json:"attempt"`
	ReturnTo phase.Phase `json:"return_to"`
}

func (TestRetried) Type() Type { return TypeTestRetried }
func (d TestRetried) title() string {
	return fmt.Sprintf("Retrying test (attempt %d)", d.Attempt)
}

// LessonCompleted records arrival at mastery.
type LessonCompleted struct {
	Score    int `json:"score"`
	Total    int `json:"total"`
	Attempts int `json:"attempts"`
}

func (LessonCompleted) Type() Type { return TypeLessonCompleted }
func (d LessonCompleted) title() string {
	return "Lesson mastered"
}

// LessonRestarted records an explicit restart from the beginning.
type LessonRestarted struct {
	From phase.Phase `json:"from"`
}

func (LessonRestarted) Type() Type { return TypeLessonRestarted }
func (LessonRestarted) title() string {
	return "Lesson restarted"
}
