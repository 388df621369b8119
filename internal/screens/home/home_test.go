package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/router"
	"github.com/abhisek/labquest/internal/screens/lesson"
	"github.com/abhisek/labquest/internal/store"
)

type fakeProgress struct {
	list []store.Progress
	err  error
}

func (f *fakeProgress) Save(context.Context, store.Progress) error { return nil }
func (f *fakeProgress) Get(context.Context, string) (*store.Progress, error) {
	return nil, nil
}
func (f *fakeProgress) List(context.Context) ([]store.Progress, error) { return f.list, f.err }
func (f *fakeProgress) Delete(context.Context, string) (int, error)   { return 0, nil }

func testCatalog() *lessons.Catalog {
	return lessons.NewCatalog(
		&lessons.Lesson{ID: "drag-force", Order: 1, Title: "Drag Force", Subject: "Fluids", Summary: "Why speed costs"},
		&lessons.Lesson{ID: "emi-shielding", Order: 2, Title: "EMI Shielding"},
		&lessons.Lesson{ID: "wright-law", Order: 3, Title: "Wright's Law"},
	)
}

func loaded(t *testing.T, h *HomeScreen) *HomeScreen {
	t.Helper()
	cmd := h.Init()
	if cmd == nil {
		t.Fatal("Init should load progress")
	}
	h.Update(cmd())
	return h
}

func TestHomeScreen_Badges(t *testing.T) {
	repo := &fakeProgress{list: []store.Progress{
		{LessonID: "drag-force", Phase: phase.Mastery, Passed: true, BestScore: 9, Total: 10, Attempts: 1},
		{LessonID: "emi-shielding", Phase: phase.Play},
	}}
	h := loaded(t, New(testCatalog(), repo, nil, lesson.Deps{}))

	view := h.View(100, 40)
	for _, want := range []string{"★ mastered  best 9/10", "▸ Play", "new", "1/3 MASTERED", "1 IN PROGRESS", "Fluids: Why speed costs"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHomeScreen_OpensAtSavedPhase(t *testing.T) {
	repo := &fakeProgress{list: []store.Progress{
		{LessonID: "drag-force", Phase: phase.Mastery, Passed: true},
		{LessonID: "emi-shielding", Phase: phase.Review},
	}}
	h := loaded(t, New(testCatalog(), repo, nil, lesson.Deps{}))

	open := func() *lesson.Screen {
		t.Helper()
		_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("enter should open the lesson")
		}
		push, ok := cmd().(router.PushScreenMsg)
		if !ok {
			t.Fatal("expected PushScreenMsg")
		}
		return push.Screen.(*lesson.Screen)
	}

	if got := open().Controller().Phase(); got != phase.Hook {
		t.Errorf("mastered lesson should start over, got %s", got)
	}
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if got := open().Controller().Phase(); got != phase.Review {
		t.Errorf("phase = %s, want the saved review", got)
	}
}

func TestHomeScreen_ResumeReloads(t *testing.T) {
	repo := &fakeProgress{}
	h := loaded(t, New(testCatalog(), repo, nil, lesson.Deps{}))
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	repo.list = []store.Progress{{LessonID: "wright-law", Phase: phase.Test}}
	h.Update(h.Resume()())

	if !strings.Contains(h.View(100, 40), "▸ Test") {
		t.Error("resume should pick up new progress")
	}
	if h.menu.Selected != 1 {
		t.Errorf("selection should survive a reload, got %d", h.menu.Selected)
	}
}

func TestHomeScreen_ProgressError(t *testing.T) {
	h := loaded(t, New(testCatalog(), &fakeProgress{err: errors.New("locked")}, nil, lesson.Deps{}))
	if !strings.Contains(h.View(100, 40), "Progress unavailable: locked") {
		t.Error("expected the load error")
	}
}

func TestHomeScreen_HistoryNeedsRepo(t *testing.T) {
	h := New(testCatalog(), nil, nil, lesson.Deps{})
	if h.Init() != nil {
		t.Error("no repo means nothing to load")
	}
	history := h.menu.Items[len(h.menu.Items)-2]
	if history.Label != "History" || !history.Disabled {
		t.Errorf("history should be disabled without an event repo: %+v", history)
	}
}

func TestHomeScreen_Quit(t *testing.T) {
	h := New(testCatalog(), nil, nil, lesson.Deps{})
	for range len(h.menu.Items) {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected QuitMsg")
	}
}

func TestHomeScreen_ReloadAddsLesson(t *testing.T) {
	catalog := testCatalog()
	h := New(catalog, nil, nil, lesson.Deps{})

	added := &lessons.Lesson{ID: "griffith", Order: 4, Title: "Fracture Mechanics"}
	catalog.Add(added)
	if strings.Contains(h.View(100, 40), "Fracture Mechanics") {
		t.Fatal("menu should not change before the reload message")
	}

	h.Update(lesson.ReloadMsg{Path: "griffith.yaml", Lesson: added})
	if !strings.Contains(h.View(100, 40), "Fracture Mechanics") {
		t.Error("reload should list the new lesson")
	}
}
