package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/labquest/internal/phase"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewDerivesTypeAndTitle(t *testing.T) {
	e := New("drag-force", PhaseChange{From: phase.Hook, To: phase.Predict, Label: "Predict"}, at)
	assert.Equal(t, TypePhaseChange, e.Type)
	assert.Equal(t, "Entered Predict", e.Title)
	assert.Equal(t, "drag-force", e.LessonID)
	assert.Equal(t, at, e.Timestamp)

	e = New("x", TestSubmitted{Score: 7, Total: 10}, at)
	assert.Equal(t, "Test submitted: 7/10", e.Title)
}

func TestJSONRoundTripKeepsConcreteDetails(t *testing.T) {
	cases := []Details{
		PhaseChange{From: phase.Review, To: phase.TwistPredict, Label: "Twist Predict"},
		PredictionMade{Stage: StageTwist, Choice: "b", Correct: true},
		ApplicationExplored{Index: 2, Name: "Parachutes", Explored: 3, Required: 3},
		AnswerSelected{Question: 4, Option: 1},
		TestSubmitted{Score: 6, Total: 10, Threshold: 7, Missed: []int{0, 3, 5, 9}},
		TestRetried{Attempt: 2, ReturnTo: phase.Review},
		LessonCompleted{Score: 9, Total: 10, Attempts: 1},
		LessonRestarted{From: phase.Mastery},
	}
	for _, d := range cases {
		in := New("emi", d, at)
		raw, err := json.Marshal(in)
		require.NoError(t, err)

		var out Event
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
		if diff := cmp.Diff(in, out); diff != "" {
			t.Errorf("%s round trip (-want +got):\n%s", d.Type(), diff)
		}
	}
}

func TestWireShapeHasTypeTag(t *testing.T) {
	raw, err := json.Marshal(New("frac", AnswerSelected{Question: 0, Option: 2}, at))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "answer_selected", m["type"])
	assert.Equal(t, "frac", m["lesson_id"])
	details, ok := m["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, details["option"])
}

func TestDecodeDetailsUnknownType(t *testing.T) {
	_, err := DecodeDetails("bogus", nil)
	assert.Error(t, err)

	_, err = DecodeDetails(TypeAnswerSelected, json.RawMessage(`{"question":"x"}`))
	assert.Error(t, err)
}

func TestMultiAndFunc(t *testing.T) {
	var rec Recorder
	count := 0
	n := Multi{&rec, nil, Func(func(Event) { count++ }), Nop{}}

	n.Notify(New("a", LessonRestarted{}, at))
	n.Notify(New("a", AnswerSelected{}, at))

	assert.Len(t, rec.Events, 2)
	assert.Equal(t, 2, count)
	assert.Len(t, rec.OfType(TypeAnswerSelected), 1)

	var nilFunc Func
	nilFunc.Notify(New("a", LessonRestarted{}, at))
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewLogger(zap.New(core))

	l.Notify(New("drag-force", PredictionMade{Stage: StageMain, Choice: "a"}, at))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "lesson event", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "prediction_made", ctx["type"])
	assert.Equal(t, "drag-force", ctx["lesson"])

	NewLogger(nil).Notify(New("x", LessonRestarted{}, at))
}
