// Package tui is the controller's terminal interface: two tabs for
// devices and effects, and dialogs for preferences, troubleshooting and
// the saved colour list.
//
// The interface can start on any of those via --open. Opening a dialog
// directly runs it on its own; the session ends when it closes.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nekoprog/polychromatic/internal/colour"
	"github.com/nekoprog/polychromatic/internal/locale"
	"github.com/nekoprog/polychromatic/internal/troubleshoot"
	"github.com/nekoprog/polychromatic/internal/version"
)

type mode int

const (
	// modeFull is the whole interface: tabs, dialogs on top.
	modeFull mode = iota
	// modeDialogOnly runs a single dialog and quits when it closes.
	modeDialogOnly
)

type tab int

const (
	tabDevices tab = iota
	tabEffects
)

type pane int

const (
	paneNone pane = iota
	panePreferences
	paneTroubleshoot
	paneColours
)

// Options configures a session.
type Options struct {
	Catalog    *locale.Catalog
	Version    version.Info
	Env        *troubleshoot.Env
	Verbose    bool
	SessionID  string
	ConfigDir  string
	CacheDir   string
	RuntimeDir string

	// Start is where the interface opens. The zero value is the
	// devices tab. A dialog target switches to dialog-only mode.
	Start Target
}

// Model is the bubbletea model for the whole interface.
type Model struct {
	catalog    *locale.Catalog
	version    version.Info
	env        *troubleshoot.Env
	verbose    bool
	sessionID  string
	configDir  string
	cacheDir   string
	runtimeDir string

	mode   mode
	tab    tab
	dialog pane

	width  int
	height int

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	colourList list.Model
	nameInput  textinput.Model
	hexInput   textinput.Model
	adding     bool
	addField   int
	addErr     string
	editIndex  int

	backend   *troubleshoot.Backend
	results   []troubleshoot.Result
	tsRunning bool
	tsErr     error

	quitting bool
}

type backendStatusMsg troubleshoot.Backend

type troubleshootDoneMsg struct {
	results []troubleshoot.Result
	err     error
}

// New builds the interface model.
func New(opts Options) Model {
	tr := opts.Catalog.Tr

	items := make([]list.Item, 0, len(colour.Defaults()))
	for _, c := range colour.Defaults() {
		items = append(items, colourItem{colour: c})
	}
	colourList := list.New(items, colourDelegate{}, 72, 12)
	colourList.SetShowTitle(false)
	colourList.SetShowStatusBar(false)
	colourList.SetShowHelp(false)
	colourList.SetShowPagination(false)
	colourList.SetFilteringEnabled(false)
	colourList.DisableQuitKeybindings()

	nameInput := textinput.New()
	nameInput.Placeholder = tr("Name")
	nameInput.CharLimit = 32
	nameInput.Width = 24

	hexInput := textinput.New()
	hexInput.Placeholder = "#RRGGBB"
	hexInput.CharLimit = 7
	hexInput.Width = 24

	m := Model{
		catalog:    opts.Catalog,
		version:    opts.Version,
		env:        opts.Env,
		verbose:    opts.Verbose,
		sessionID:  opts.SessionID,
		configDir:  opts.ConfigDir,
		cacheDir:   opts.CacheDir,
		runtimeDir: opts.RuntimeDir,
		keys:       newKeyMap(tr),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:   viewport.New(72, 16),
		colourList: colourList,
		nameInput:  nameInput,
		hexInput:   hexInput,
		editIndex:  -1,
	}

	switch opts.Start.Kind {
	case KindDialog:
		m.mode = modeDialogOnly
		switch opts.Start.Name {
		case "preferences":
			m.dialog = panePreferences
		case "troubleshoot":
			m.dialog = paneTroubleshoot
			m.tsRunning = true
		case "colours":
			m.dialog = paneColours
		}
	case KindTab:
		if opts.Start.Name == "effects" {
			m.tab = tabEffects
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.probeBackend}
	if m.tsRunning {
		cmds = append(cmds, m.spinner.Tick, m.runTroubleshoot)
	}
	return tea.Batch(cmds...)
}

func (m Model) probeBackend() tea.Msg {
	return backendStatusMsg(troubleshoot.BackendPresence(m.env))
}

// troubleshootTimeout bounds a full check run so a stuck probe cannot
// hang the dialog.
const troubleshootTimeout = 30 * time.Second

func (m Model) runTroubleshoot() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), troubleshootTimeout)
	defer cancel()
	results, err := troubleshoot.Run(ctx, m.env, m.catalog.Tr)
	return troubleshootDoneMsg{results: results, err: err}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case backendStatusMsg:
		backend := troubleshoot.Backend(msg)
		m.backend = &backend
		return m, nil

	case troubleshootDoneMsg:
		m.tsRunning = false
		m.results = msg.results
		m.tsErr = msg.err
		m.viewport.SetContent(m.troubleshootContent())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.tsRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	m.help.Width = msg.Width

	inner := max(20, min(msg.Width-8, 72))
	m.viewport.Width = inner
	m.viewport.Height = max(5, msg.Height-10)
	m.colourList.SetSize(inner, max(5, msg.Height-14))

	if m.results != nil || m.tsErr != nil {
		m.viewport.SetContent(m.troubleshootContent())
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.adding {
		return m.handleAddKey(msg)
	}
	if m.dialog != paneNone {
		return m.handleDialogKey(msg)
	}
	return m.handleTabKey(msg)
}

func (m Model) handleTabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		if m.tab == tabDevices {
			m.tab = tabEffects
		} else {
			m.tab = tabDevices
		}
		return m, nil

	case key.Matches(msg, m.keys.Preferences):
		m.dialog = panePreferences
		return m, nil

	case key.Matches(msg, m.keys.Troubleshoot):
		m.dialog = paneTroubleshoot
		if m.results == nil && m.tsErr == nil && !m.tsRunning {
			return m.startTroubleshoot()
		}
		return m, nil

	case key.Matches(msg, m.keys.Colours):
		m.dialog = paneColours
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) startTroubleshoot() (tea.Model, tea.Cmd) {
	m.tsRunning = true
	m.tsErr = nil
	m.results = nil
	return m, tea.Batch(m.spinner.Tick, m.runTroubleshoot)
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Quit) {
		return m.closeDialog()
	}

	switch m.dialog {
	case paneTroubleshoot:
		if key.Matches(msg, m.keys.Rerun) && !m.tsRunning {
			return m.startTroubleshoot()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case paneColours:
		switch {
		case key.Matches(msg, m.keys.Add):
			m.adding = true
			m.addField = 0
			m.addErr = ""
			return m, m.nameInput.Focus()

		case key.Matches(msg, m.keys.Rename):
			item, ok := m.colourList.SelectedItem().(colourItem)
			if !ok {
				return m, nil
			}
			m.adding = true
			m.addField = 0
			m.addErr = ""
			m.editIndex = m.colourList.Index()
			m.nameInput.SetValue(item.colour.Name)
			m.hexInput.SetValue(item.colour.Hex)
			return m, m.nameInput.Focus()

		case key.Matches(msg, m.keys.Delete):
			if len(m.colourList.Items()) > 0 {
				m.colourList.RemoveItem(m.colourList.Index())
			}
			return m, nil

		default:
			var cmd tea.Cmd
			m.colourList, cmd = m.colourList.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) closeDialog() (tea.Model, tea.Cmd) {
	if m.mode == modeDialogOnly {
		m.quitting = true
		return m, tea.Quit
	}
	m.dialog = paneNone
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.resetAdd(), nil

	case tea.KeyTab:
		return m.focusAddField(1 - m.addField)

	case tea.KeyEnter:
		if m.addField == 0 {
			return m.focusAddField(1)
		}
		entered, err := colour.Parse(m.nameInput.Value(), m.hexInput.Value())
		if err != nil {
			m.addErr = err.Error()
			return m, nil
		}
		if m.editIndex >= 0 {
			m.colourList.SetItem(m.editIndex, colourItem{colour: entered})
		} else {
			m.colourList.InsertItem(len(m.colourList.Items()), colourItem{colour: entered})
		}
		return m.resetAdd(), nil
	}

	var cmd tea.Cmd
	if m.addField == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.hexInput, cmd = m.hexInput.Update(msg)
	}
	return m, cmd
}

func (m Model) focusAddField(field int) (tea.Model, tea.Cmd) {
	m.addField = field
	if field == 0 {
		m.hexInput.Blur()
		return m, m.nameInput.Focus()
	}
	m.nameInput.Blur()
	return m, m.hexInput.Focus()
}

func (m Model) resetAdd() Model {
	m.adding = false
	m.addField = 0
	m.addErr = ""
	m.editIndex = -1
	m.nameInput.SetValue("")
	m.nameInput.Blur()
	m.hexInput.SetValue("")
	m.hexInput.Blur()
	return m
}
