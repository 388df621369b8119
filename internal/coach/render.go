package coach

import (
	"fmt"
	"strings"
)

// Markdown formats a note as markdown.
func (n *Note) Markdown() string {
	var b strings.Builder
	b.WriteString("### Coach's note\n\n")
	b.WriteString(strings.TrimSpace(n.Summary))
	b.WriteString("\n")
	if len(n.Tips) > 0 {
		b.WriteString("\n")
		for _, t := range n.Tips {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(t))
		}
	}
	if n.Retry != "" {
		fmt.Fprintf(&b, "\n**Before retrying:** %s\n", strings.TrimSpace(n.Retry))
	}
	return b.String()
}
