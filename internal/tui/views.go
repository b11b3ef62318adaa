package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nekoprog/polychromatic/internal/style"
	"github.com/nekoprog/polychromatic/internal/troubleshoot"
)

var (
	appTitleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	bodyStyle        = lipgloss.NewStyle().Padding(1, 2)
	dialogStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeDialogOnly {
		return m.dialogBody() + "\n"
	}

	var body string
	switch {
	case m.dialog != paneNone:
		body = m.dialogBody()
	case m.tab == tabEffects:
		body = bodyStyle.Render(m.effectsView())
	default:
		body = bodyStyle.Render(m.devicesView())
	}

	return m.headerView() + "\n" + body + "\n" + m.help.View(m.keys) + "\n"
}

func (m Model) headerView() string {
	tr := m.catalog.Tr

	renderTab := func(label string, active bool) string {
		if active && m.dialog == paneNone {
			return activeTabStyle.Render(label)
		}
		return inactiveTabStyle.Render(label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		appTitleStyle.Render("Polychromatic"),
		renderTab(tr("Devices"), m.tab == tabDevices),
		renderTab(tr("Effects"), m.tab == tabEffects),
	)
}

// devicesView shows whether the backend looks usable. The controller
// never talks to devices itself, so an empty list is the steady state.
func (m Model) devicesView() string {
	tr := m.catalog.Tr
	var b strings.Builder

	b.WriteString(style.Bold.Render(tr("Backend status")) + "\n\n")
	switch {
	case m.backend == nil:
		b.WriteString(" " + style.Dim.Render("...") + "\n")
	case !m.backend.Installed:
		b.WriteString(" " + style.Error.Render("✗") + " " + tr("The OpenRazer daemon does not appear to be installed.") + "\n")
	case !m.backend.Running:
		b.WriteString(" " + style.Warning.Render("?") + " " + tr("The OpenRazer daemon is installed, but not running.") + "\n")
	default:
		b.WriteString(" " + style.Success.Render("✓") + " " + tr("The OpenRazer daemon is running.") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(tr("No devices were found.") + "\n")
	b.WriteString(style.Dim.Render(tr("Open the troubleshooter to diagnose common installation problems.")) + "\n")
	return b.String()
}

func (m Model) effectsView() string {
	tr := m.catalog.Tr
	return tr("You have not created any custom effects yet.") + "\n" +
		style.Dim.Render(tr("Custom effects light up your devices with animations you design.")) + "\n"
}

func (m Model) dialogBody() string {
	tr := m.catalog.Tr
	switch m.dialog {
	case panePreferences:
		return m.framedDialog(tr("Preferences"), m.preferencesView())
	case paneTroubleshoot:
		return m.framedDialog(tr("Troubleshoot"), m.troubleshootView())
	case paneColours:
		return m.framedDialog(tr("Colours"), m.coloursView())
	}
	return ""
}

func (m Model) framedDialog(title, body string) string {
	tr := m.catalog.Tr
	content := style.Bold.Render(title) + "\n\n" +
		body + "\n\n" +
		style.Dim.Render(tr("press esc to close"))

	width := 76
	if m.width > 0 {
		width = max(24, min(m.width-4, 76))
	}
	return dialogStyle.Width(width).Render(content)
}

// preferencesView lists what this session is running with. Nothing here
// is editable; the controller holds no persistent configuration.
func (m Model) preferencesView() string {
	tr := m.catalog.Tr

	verbosity := tr("disabled")
	if m.verbose {
		verbosity = tr("enabled")
	}

	rows := [][2]string{
		{tr("Version"), m.version.Version},
		{tr("Commit"), m.version.Commit},
		{tr("Save data revision"), strconv.Itoa(m.version.SaveData)},
		{tr("Runtime"), m.version.Runtime},
		{tr("Toolkit"), m.version.Toolkit},
		{tr("Locale"), m.catalog.DisplayName()},
		{tr("Chosen by"), m.catalog.ChosenBy()},
		{tr("Verbose logging"), verbosity},
		{tr("Colour support"), tr(colourSupport())},
		{tr("Session"), m.sessionID},
		{tr("Config directory"), m.configDir},
		{tr("Cache directory"), m.cacheDir},
		{tr("Runtime directory"), m.runtimeDir},
	}

	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row[0]))
	}
	labelStyle := style.Dim.Width(labelWidth + 2)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), row[1]))
	}
	return b.String()
}

// colourSupport names the colour depth lipgloss detected for this
// terminal. The return value is an English source string.
func colourSupport() string {
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return "24-bit colour"
	case termenv.ANSI256:
		return "256 colours"
	case termenv.ANSI:
		return "16 colours"
	default:
		return "monochrome"
	}
}

func (m Model) troubleshootView() string {
	tr := m.catalog.Tr
	if m.tsRunning {
		return m.spinner.View() + " " + tr("Running checks...")
	}
	return m.viewport.View()
}

// troubleshootContent renders the finished checks for the viewport.
func (m Model) troubleshootContent() string {
	tr := m.catalog.Tr

	if m.tsErr != nil {
		if errors.Is(m.tsErr, troubleshoot.ErrUnsupportedSystem) {
			return style.Warning.Render(tr("The troubleshooter can only check Linux systems."))
		}
		return style.Error.Render(m.tsErr.Error())
	}

	var b strings.Builder
	for _, r := range m.results {
		var glyph string
		switch r.Status {
		case troubleshoot.StatusPassed:
			glyph = style.Success.Render("✓")
		case troubleshoot.StatusFailed:
			glyph = style.Error.Render("✗")
		default:
			glyph = style.Warning.Render("?")
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", glyph, r.Name))
		if r.Status == troubleshoot.StatusPassed {
			continue
		}
		for _, suggestion := range r.Suggestions {
			b.WriteString("     " + style.Dim.Render(suggestion) + "\n")
		}
	}

	summary := troubleshoot.Summarise(m.results)
	b.WriteString("\n")
	b.WriteString(style.Bold.Render(fmt.Sprintf(tr("%d of %d checks passed"), summary.Passed, summary.Total)))

	width := m.viewport.Width
	if width <= 0 {
		width = 72
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (m Model) coloursView() string {
	tr := m.catalog.Tr

	if m.adding {
		title := tr("Add a new colour")
		if m.editIndex >= 0 {
			title = tr("Edit colour")
		}
		var b strings.Builder
		b.WriteString(title + "\n\n")
		b.WriteString(m.nameInput.View() + "\n")
		b.WriteString(m.hexInput.View() + "\n")
		if m.addErr != "" {
			b.WriteString(style.Error.Render(m.addErr) + "\n")
		}
		b.WriteString("\n" + style.Dim.Render(tr("Press enter to save, esc to cancel.")))
		return b.String()
	}

	return style.Bold.Render(tr("Saved Colours")) + "\n\n" + m.colourList.View()
}
