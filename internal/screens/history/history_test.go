package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/store"
)

// fakeRepo implements store.EventRepo for testing.
type fakeRepo struct {
	events []store.StoredEvent
	err    error
	opts   store.QueryOpts
}

func (f *fakeRepo) AppendLessonEvent(context.Context, events.Event) (int64, error) { return 0, nil }
func (f *fakeRepo) ListLessonEvents(_ context.Context, opts store.QueryOpts) ([]store.StoredEvent, error) {
	f.opts = opts
	return f.events, f.err
}
func (f *fakeRepo) GetLessonEvent(context.Context, int64) (*store.StoredEvent, error) {
	return nil, nil
}
func (f *fakeRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error { return nil }
func (f *fakeRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEvent, error) {
	return nil, nil
}
func (f *fakeRepo) GetLLMEvent(context.Context, int) (*store.LLMEvent, error) { return nil, nil }
func (f *fakeRepo) LLMUsageByPurpose(context.Context) ([]store.PurposeUsage, error) {
	return nil, nil
}
func (f *fakeRepo) LLMUsageByModel(context.Context) ([]store.ModelUsage, error) { return nil, nil }
func (f *fakeRepo) DeleteLessonEvents(context.Context, string) (int, error)     { return 0, nil }

func stored(seq int64, lesson string, d events.Details) store.StoredEvent {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return store.StoredEvent{ID: int(seq), Sequence: seq, Event: events.New(lesson, d, at)}
}

func testRepo() *fakeRepo {
	return &fakeRepo{events: []store.StoredEvent{
		stored(3, "drag-force", events.TestSubmitted{Score: 8, Total: 10, Threshold: 7, Passed: true}),
		stored(2, "emi-shielding", events.PhaseChange{From: phase.Hook, To: phase.Predict, Label: "Predict"}),
		stored(1, "drag-force", events.PhaseChange{From: phase.Hook, To: phase.Predict, Label: "Predict"}),
	}}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func loaded(t *testing.T, repo *fakeRepo) *HistoryScreen {
	t.Helper()
	s := New(repo)
	s.Update(s.Init()())
	return s
}

func TestHistoryScreen_LoadsNewestFirst(t *testing.T) {
	repo := testRepo()
	s := loaded(t, repo)

	if !repo.opts.Newest || repo.opts.Limit != pageSize {
		t.Errorf("unexpected query opts: %+v", repo.opts)
	}
	view := s.View(100, 30)
	for _, want := range []string{"Test submitted: 8/10", "emi-shielding", "Entered Predict"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := loaded(t, &fakeRepo{})
	if !strings.Contains(s.View(100, 30), "No lesson activity yet") {
		t.Error("expected empty-state message")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := loaded(t, &fakeRepo{err: errors.New("disk on fire")})
	if !strings.Contains(s.View(100, 30), "disk on fire") {
		t.Error("expected error message")
	}
}

func TestHistoryScreen_ExpandDetails(t *testing.T) {
	s := loaded(t, testRepo())
	s.Update(specialKey(tea.KeyEnter))

	view := s.View(100, 30)
	for _, want := range []string{"#3  test_submitted", "score: 8", "passed: true"} {
		if !strings.Contains(view, want) {
			t.Errorf("expanded view missing %q:\n%s", want, view)
		}
	}
}

func TestHistoryScreen_Filter(t *testing.T) {
	s := loaded(t, testRepo())

	s.Update(keyPress('/'))
	if !s.HandlesEscape() {
		t.Fatal("focused filter should own esc")
	}
	for _, r := range "emi" {
		s.Update(keyPress(r))
	}
	if len(s.visible) != 1 || s.events[s.visible[0]].LessonID != "emi-shielding" {
		t.Fatalf("expected only the emi event, got %v", s.visible)
	}

	// esc closes the filter but keeps it applied.
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd != nil || s.HandlesEscape() {
		t.Fatal("esc should blur the filter without leaving the screen")
	}
	if len(s.visible) != 1 {
		t.Fatal("filter should stay applied after blur")
	}

	// A second esc leaves.
	_, cmd = s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
}

func TestHistoryScreen_SelectionBounds(t *testing.T) {
	s := loaded(t, testRepo())
	for i := 0; i < 5; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	if s.selected != 2 {
		t.Errorf("selected = %d, want 2", s.selected)
	}
	s.Update(specialKey(tea.KeyUp))
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
}

var _ screen.EscapeHandler = (*HistoryScreen)(nil)
