package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/llm"
	"github.com/abhisek/labquest/internal/quiz"
)

// The genai SDK, reached through llm, starts an opencensus worker at init.
var ignoreSDKWorkers = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

func validNoteJSON() json.RawMessage {
	return json.RawMessage(`{
		"summary": "Drag depends on the square of speed, so doubling speed quadruples the force.",
		"tips": ["Compare forces at 10 and 20 m/s", "Area and Cd scale linearly"],
		"retry": "Double the velocity slider and watch the force readout."
	}`)
}

func testLesson() *lessons.Lesson {
	return &lessons.Lesson{
		ID:      "drag-force",
		Title:   "Drag Force",
		Subject: "Fluid dynamics",
		Test: []quiz.Question{
			{
				Prompt:   "Speed doubles. Drag becomes?",
				Scenario: "A cyclist speeds up from 5 to 10 m/s.",
				Options: []quiz.Option{
					{Text: "2x"},
					{Text: "4x", Correct: true},
				},
				Explanation: "Drag scales with v squared.",
			},
			{
				Prompt:  "Which shape has lower Cd?",
				Options: []quiz.Option{{Text: "Teardrop", Correct: true}, {Text: "Flat plate"}},
			},
			{
				Prompt:  "Units of drag?",
				Options: []quiz.Option{{Text: "N", Correct: true}, {Text: "W"}},
			},
		},
	}
}

func testInput() Input {
	l := testLesson()
	answers := quiz.Answers{0, 0, quiz.Unanswered}
	return InputFor(l, answers, quiz.Grade(l.Test, answers, 2), 1)
}

func waitNote(t *testing.T, svc *Service) *Note {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if n, ok := svc.ConsumeNote(); ok {
			return n
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for note")
	return nil
}

func TestInputFor(t *testing.T) {
	in := testInput()

	if in.Score != 1 || in.Total != 3 || in.Threshold != 2 {
		t.Fatalf("unexpected score line: %+v", in)
	}
	if len(in.Missed) != 2 {
		t.Fatalf("expected 2 missed questions, got %d", len(in.Missed))
	}
	if in.Missed[0].Chosen != "2x" || in.Missed[0].Correct != "4x" {
		t.Fatalf("unexpected first miss: %+v", in.Missed[0])
	}
	if in.Missed[1].Chosen != "" || in.Missed[1].Correct != "N" {
		t.Fatalf("unanswered miss should have no choice: %+v", in.Missed[1])
	}
}

func TestService_GeneratesNote(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreSDKWorkers)

	mock := llm.NewMockProvider(llm.MockResponse{Content: validNoteJSON()})
	svc := NewService(mock, DefaultConfig(), nil)
	defer svc.Close()

	svc.RequestNote(context.Background(), testInput())
	note := waitNote(t, svc)

	if note.LessonID != "drag-force" || len(note.Tips) != 2 {
		t.Fatalf("unexpected note: %+v", note)
	}
	if _, ok := svc.ConsumeNote(); ok {
		t.Fatal("slot should be cleared after consume")
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	req := calls[0]
	if req.Schema != NoteSchema {
		t.Fatal("expected the review-note schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Lesson: Drag Force", "Score: 1/3 (pass mark 2)", "Chose: 2x | Correct: 4x", "(no answer)"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestService_FailureIsSilent(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreSDKWorkers)

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	svc := NewService(mock, DefaultConfig(), nil)
	defer svc.Close()

	svc.RequestNote(context.Background(), testInput())

	deadline := time.Now().Add(5 * time.Second)
	for svc.Pending() && time.Now().Before(deadline) {
		if _, ok := svc.ConsumeNote(); ok {
			t.Fatal("failed request must not yield a note")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if svc.Pending() {
		t.Fatal("request never settled")
	}
}

func TestService_NewerRequestWins(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreSDKWorkers)

	second := json.RawMessage(`{"summary":"second","tips":[],"retry":"again"}`)
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: validNoteJSON(), Delay: time.Second},
		llm.MockResponse{Content: second},
	)
	svc := NewService(mock, DefaultConfig(), nil)
	defer svc.Close()

	in := testInput()
	svc.RequestNote(context.Background(), in)
	for mock.CallCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	in.Attempt = 2
	svc.RequestNote(context.Background(), in)

	note := waitNote(t, svc)
	if note.Summary != "second" || note.Attempt != 2 {
		t.Fatalf("expected the newer note, got %+v", note)
	}
}

func TestService_Disabled(t *testing.T) {
	var nilSvc *Service
	if nilSvc.Enabled() {
		t.Fatal("nil service should be disabled")
	}
	nilSvc.RequestNote(context.Background(), testInput())
	if _, ok := nilSvc.ConsumeNote(); ok {
		t.Fatal("nil service produced a note")
	}
	nilSvc.Close()

	svc := NewService(nil, DefaultConfig(), nil)
	if _, err := svc.Generate(context.Background(), testInput()); !errors.Is(err, llm.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	svc.RequestNote(context.Background(), testInput())
	if svc.Pending() {
		t.Fatal("disabled service should not start work")
	}
}

func TestService_NothingMissed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validNoteJSON()})
	svc := NewService(mock, DefaultConfig(), nil)
	defer svc.Close()

	svc.RequestNote(context.Background(), Input{LessonID: "drag-force"})
	if svc.Pending() || mock.CallCount() != 0 {
		t.Fatal("a clean sheet should not call the model")
	}
}

func TestMissedDetailBudget(t *testing.T) {
	missed := testInput().Missed

	full := missedDetail(missed, 0)
	if !strings.Contains(full, "Scenario:") || !strings.Contains(full, "Why:") {
		t.Fatalf("unbounded detail should be full:\n%s", full)
	}

	compact := missedDetail(missed, len(full)-1)
	if strings.Contains(compact, "Scenario:") {
		t.Fatalf("over budget should drop scenarios:\n%s", compact)
	}

	tiny := missedDetail(missed, 40)
	if !strings.HasSuffix(tiny, "(more omitted)\n") {
		t.Fatalf("tiny budget should truncate:\n%q", tiny)
	}
	if missedDetail(nil, 10) != "None\n" {
		t.Fatal("empty list should render None")
	}
}

func TestNoteMarkdown(t *testing.T) {
	n := &Note{Summary: "Drag grows fast.", Tips: []string{"Watch v^2"}, Retry: "Try 2x speed."}
	md := n.Markdown()
	for _, want := range []string{"### Coach's note", "- Watch v^2", "**Before retrying:** Try 2x speed."} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
