package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// helpContent is the full key reference shown by the ? overlay. Kept as
// markdown so glamour can style it; the raw text still reads fine when
// rendering fails.
const helpContent = `## Outline Keys

**Navigation**
  j/k, ↓/↑  Move down/up
  h/←       Collapse, or jump to parent
  l/→       Expand, or step into first child
  g/G       Jump to top/bottom
  pgup/pgdn Move by a page
  enter/spc Toggle fold

**Structure**
  i         Insert sibling after selection
  I         Insert first child
  O         Insert parent above selection
  r         Rename
  c         Toggle heading/note
  d         Delete subtree (asks first)
  D         Delete children (asks first)
  x         Extract node, keep children

**Other**
  y         Copy title to clipboard
  w         Save outline
  ?         Toggle this help
  q, ctrl+c Quit`

// renderMarkdown runs content through glamour; on any failure the raw
// markdown comes back unchanged.
func renderMarkdown(content string, wrap int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// RenderHelp renders the help overlay as a bordered modal sized to the
// terminal.
func RenderHelp(theme Theme, width, height int) string {
	r := theme.Renderer

	modalWidth := 60
	if width > 0 && modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(theme.Primary)
	footerStyle := r.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Help"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n")
	b.WriteString(renderMarkdown(helpContent, modalWidth-6))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Press ? or Esc to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}
