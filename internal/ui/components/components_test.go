package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func letter(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_CursorAndChoose(t *testing.T) {
	mc := NewMultiChoice("Which?", []string{"one", "two", "three"})

	mc, chose := mc.Update(key(tea.KeyDown))
	if chose || mc.Cursor != 1 || mc.Chosen != NoChoice {
		t.Fatalf("down should only move the cursor: %+v", mc)
	}
	mc, chose = mc.Update(key(tea.KeyEnter))
	if !chose || mc.Chosen != 1 {
		t.Fatalf("enter should choose the cursor: %+v", mc)
	}

	// A choice can be changed until locked.
	mc, chose = mc.Update(letter('c'))
	if !chose || mc.Chosen != 2 || mc.Cursor != 2 {
		t.Fatalf("letter should choose directly: %+v", mc)
	}
	if _, chose = mc.Update(letter('z')); chose {
		t.Fatal("out-of-range letter should be ignored")
	}

	mc.Reveal(0)
	mc, chose = mc.Update(letter('a'))
	if chose || mc.Chosen != 2 {
		t.Fatal("locked selector should ignore input")
	}
	if !strings.Contains(mc.View(), "A)  one") {
		t.Fatalf("view missing option:\n%s", mc.View())
	}
}

func TestMultiChoice_CursorBounds(t *testing.T) {
	mc := NewMultiChoice("", []string{"one", "two"})
	mc, _ = mc.Update(key(tea.KeyUp))
	if mc.Cursor != 0 {
		t.Fatalf("cursor moved above the first option: %d", mc.Cursor)
	}
	mc, _ = mc.Update(key(tea.KeyDown))
	mc, _ = mc.Update(key(tea.KeyDown))
	if mc.Cursor != 1 {
		t.Fatalf("cursor moved past the last option: %d", mc.Cursor)
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	called := ""
	m := NewMenu([]MenuItem{
		{Label: "locked", Disabled: true},
		{Label: "first", Action: func() tea.Cmd { called = "first"; return nil }},
		{Label: "off", Disabled: true},
		{Label: "last", Action: func() tea.Cmd { called = "last"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 3 {
		t.Fatalf("expected disabled item skipped, got %d", m.Selected)
	}
	m.Update(key(tea.KeyEnter))
	if called != "last" {
		t.Fatalf("expected last action, got %q", called)
	}

	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 3 {
		t.Fatalf("cursor should stop at the last enabled item, got %d", m.Selected)
	}
	m, _ = m.Update(letter('g'))
	if item, _ := m.Current(); item.Label != "first" {
		t.Fatalf("home should jump to the first enabled item, got %q", item.Label)
	}
	m, _ = m.Update(key(tea.KeyEnd))
	if m.Selected != 3 {
		t.Fatalf("end should jump to the last enabled item, got %d", m.Selected)
	}
}

func TestMenu_AllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Disabled: true}, {Label: "b", Disabled: true}})
	m, cmd := m.Update(key(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("a disabled item must not run")
	}
	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 0 {
		t.Fatalf("cursor should not move, got %d", m.Selected)
	}
	if !strings.Contains(m.View(), "b") {
		t.Fatal("disabled items are still listed")
	}
}

func TestFilterInput_Matches(t *testing.T) {
	f := NewFilterInput("filter", 40)
	if !f.Matches("anything") {
		t.Fatal("empty filter should match everything")
	}
	if f.View() != "" {
		t.Fatal("empty unfocused filter should render nothing")
	}

	f.Focus()
	f.Model.SetValue("  Drag ")
	if !f.Matches("lesson drag-force") || f.Matches("emi-shielding") {
		t.Fatal("filter should match case-insensitively on trimmed text")
	}

	f.Blur()
	if _, cmd := f.Update(letter('x')); cmd != nil {
		t.Fatal("blurred filter should ignore keys")
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	over := NewProgressBar("", 2, true, 20).View()
	if !strings.Contains(over, "100%") {
		t.Fatalf("expected clamp to 100%%: %q", over)
	}
	bar := ProgressBar{Label: "Force", Percent: 0.5, Value: "12.00 N", Width: 40}
	if !strings.Contains(bar.View(), "12.00 N") {
		t.Fatal("value text should replace the percentage")
	}
}
