package app

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screen"
	"github.com/abhisek/labquest/internal/screens/lesson"
)

func testOptions() Options {
	return Options{
		Catalog: lessons.NewCatalog(&lessons.Lesson{ID: "drag-force", Title: "Drag Force"}),
	}
}

// run feeds msg to the model and follows navigation commands it returns.
func run(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case router.PushScreenMsg, router.PopScreenMsg:
		next, _ = m.Update(out)
		m = next.(AppModel)
	}
	return m
}

func TestStartLessonOpensAboveHome(t *testing.T) {
	opts := testOptions()
	opts.StartLesson = "drag-force"
	opts.StartPhase = "play"
	m, err := newAppModel(opts)
	if err != nil {
		t.Fatal(err)
	}
	m.router.Update(router.PushScreenMsg{Screen: m.start})

	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.router.Depth())
	}
	s := m.router.Active().(*lesson.Screen)
	if s.Controller().Phase() != phase.Play {
		t.Errorf("phase = %s, want play", s.Controller().Phase())
	}

	m = run(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 1 {
		t.Error("esc should return to the lesson list")
	}
}

func TestUnknownStartLesson(t *testing.T) {
	opts := testOptions()
	opts.StartLesson = "missing"
	if _, err := newAppModel(opts); err == nil {
		t.Fatal("expected an error for an unknown lesson")
	}
}

type escScreen struct {
	escapes int
}

func (s *escScreen) Init() tea.Cmd        { return nil }
func (s *escScreen) View(int, int) string { return "" }
func (s *escScreen) Title() string        { return "Filter" }
func (s *escScreen) HandlesEscape() bool  { return true }

func (s *escScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "esc" {
		s.escapes++
	}
	return s, nil
}

func TestEscapeHandlerKeepsScreen(t *testing.T) {
	m, err := newAppModel(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	esc := &escScreen{}
	m.router.Update(router.PushScreenMsg{Screen: esc})

	m = run(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 2 {
		t.Fatal("a screen handling esc must not be popped")
	}
	if esc.escapes != 1 {
		t.Errorf("escapes = %d, want 1", esc.escapes)
	}
}

func TestLessonUpdateReachesCatalogAndScreen(t *testing.T) {
	ch := make(chan lessons.Update, 1)
	opts := testOptions()
	opts.Updates = ch
	opts.StartLesson = "drag-force"
	m, err := newAppModel(opts)
	if err != nil {
		t.Fatal(err)
	}
	m.router.Update(router.PushScreenMsg{Screen: m.start})

	ch <- lessons.Update{Path: "drag.yaml", Lesson: &lessons.Lesson{ID: "drag-force", Title: "Drag Force II"}}
	msg := waitForUpdate(ch)()
	next, cmd := m.Update(msg)
	m = next.(AppModel)

	if l, _ := m.opts.Catalog.Get("drag-force"); l.Title != "Drag Force II" {
		t.Errorf("catalog title = %q", l.Title)
	}
	if m.router.Active().Title() != "Drag Force II" {
		t.Errorf("screen title = %q", m.router.Active().Title())
	}
	if cmd == nil {
		t.Error("the app should keep listening for updates")
	}

	ch <- lessons.Update{Path: "bad.yaml", Err: errors.New("parse")}
	next, _ = m.Update(waitForUpdate(ch)())
	m = next.(AppModel)
	if m.opts.Catalog.Len() != 1 {
		t.Error("a failed reload must not touch the catalog")
	}

	close(ch)
	if msg := waitForUpdate(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %#v", msg)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, err := newAppModel(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected QuitMsg")
	}
}

func TestViewShowsStatus(t *testing.T) {
	opts := testOptions()
	opts.StartLesson = "drag-force"
	opts.StartPhase = "review"
	m, err := newAppModel(opts)
	if err != nil {
		t.Fatal(err)
	}
	m.router.Update(router.PushScreenMsg{Screen: m.start})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(AppModel)

	if got := m.render(); !containsAll(got, "Drag Force", "Phase 4/10") {
		t.Errorf("header missing title or status:\n%s", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
