// Package markdown renders lesson text and coach notes for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultStyle is the glamour style used when none is configured.
const DefaultStyle = "dark"

type rendererKey struct {
	style string
	width int
}

var (
	mu        sync.Mutex
	renderers = map[rendererKey]*glamour.TermRenderer{}
)

// Render formats md for the terminal at width columns. style is a glamour
// standard style name such as "dark" or "notty". On renderer failure the
// markdown is returned as-is.
func Render(md string, width int, style string) string {
	if width <= 0 {
		width = 80
	}
	if style == "" {
		style = DefaultStyle
	}

	r, err := renderer(style, width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// renderer caches one glamour renderer per style and width. Building a
// renderer parses the style sheet, which is too slow to repeat on every
// frame.
func renderer(style string, width int) (*glamour.TermRenderer, error) {
	mu.Lock()
	defer mu.Unlock()

	k := rendererKey{style, width}
	if r, ok := renderers[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[k] = r
	return r, nil
}
