package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowItem is a single rendered table row for a console tab.
type rowItem struct {
	id    string
	title string
	meta  string
}

func (r rowItem) Title() string       { return r.title }
func (r rowItem) Description() string { return r.meta }
func (r rowItem) FilterValue() string { return r.title }

type compactRowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newCompactRowDelegate() compactRowDelegate {
	return compactRowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta: styleMuted(),
	}
}

func (d compactRowDelegate) Height() int  { return 1 }
func (d compactRowDelegate) Spacing() int { return 0 }
func (d compactRowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d compactRowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	row, ok := item.(rowItem)
	if !ok {
		fmt.Fprint(w, style.Render(truncate(fmt.Sprint(item), contentW)))
		return
	}

	line := row.title
	if row.meta != "" {
		meta := d.meta.Render(row.meta)
		gap := contentW - xansi.StringWidth(line) - xansi.StringWidth(meta)
		if gap >= 2 {
			line += strings.Repeat(" ", gap) + meta
		}
	}

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	fmt.Fprint(w, style.Render(line))
}
