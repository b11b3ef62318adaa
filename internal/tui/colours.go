package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nekoprog/polychromatic/internal/colour"
	"github.com/nekoprog/polychromatic/internal/style"
)

// colourItem adapts a colour for the saved colours list.
type colourItem struct {
	colour colour.Colour
}

// FilterValue implements list.Item.
func (i colourItem) FilterValue() string {
	return i.colour.Name
}

// colourDelegate renders one colour per row: swatch, name, hex value.
type colourDelegate struct{}

func (colourDelegate) Height() int  { return 1 }
func (colourDelegate) Spacing() int { return 0 }

func (colourDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (colourDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(colourItem)
	if !ok {
		return
	}

	cursor := "  "
	name := it.colour.Name
	if index == m.Index() {
		cursor = style.Bold.Render("> ")
		name = style.Bold.Render(name)
	}

	swatch := style.Swatch(it.colour.Hex, it.colour.ContrastHex(), " ")
	fmt.Fprintf(w, "%s%s %s %s", cursor, swatch, name, style.Dim.Render(it.colour.Hex))
}
