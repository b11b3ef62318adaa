package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestSwatchKeepsLabelVisible(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := Swatch("#00FF00", "#000000", "Signature Green")
	require.Equal(t, " Signature Green ", out)
}
