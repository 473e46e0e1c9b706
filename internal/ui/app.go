package ui

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/config"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/prefs"
	"github.com/modcar/ingreso/internal/reconcile"
	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
)

// View represents the current active view.
type View int

const (
	ViewComponentes View = iota
	ViewRepuestos
	ViewResumen
	ViewLog
)

var viewOrder = []View{ViewComponentes, ViewRepuestos, ViewResumen, ViewLog}

func (v View) String() string {
	switch v {
	case ViewComponentes:
		return "Componentes"
	case ViewRepuestos:
		return "Repuestos"
	case ViewResumen:
		return "Resumen"
	case ViewLog:
		return "Log"
	default:
		return "?"
	}
}

const logRefresh = 2 * time.Second

// Options configures the UI.
type Options struct {
	Context    context.Context
	API        taller.Fetcher
	Store      *selection.Store
	Reconciler *reconcile.Reconciler
	Config     config.Config
	Vehicle    prefs.Vehicle

	// Base holds form fields sent with every submission besides the
	// selection (vehicle attributes, diagnostico id).
	Base url.Values

	// Parts seeds the parts list, e.g. from a previous repuestos_json value.
	Parts payload.PartList

	Log       *zap.Logger
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	api       taller.Fetcher
	store     *selection.Store
	rec       *reconcile.Reconciler
	cfg       config.Config
	vehicle   prefs.Vehicle
	base      url.Values
	log       *zap.Logger
	prefsPath string
	keys      keyMap

	// UI state
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool
	status   statusLine

	comp  componentesState
	parts repuestosState

	logViewport viewport.Model
	logLines    int

	submitting bool
	lastSubmit *taller.SubmitResult
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	parts := newRepuestosState()
	parts.list = opts.Parts

	return Model{
		ctx:       ctx,
		api:       opts.API,
		store:     opts.Store,
		rec:       opts.Reconciler,
		cfg:       opts.Config,
		vehicle:   opts.Vehicle,
		base:      opts.Base,
		log:       log,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		view:      ViewComponentes,
		comp:      newComponentesState(),
		parts:     parts,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(logRefresh)}
	// Components preselected before the UI started may still be waiting for
	// their catalog.
	for _, id := range m.store.Snapshot().SelectedComponentIDs() {
		if m.rec.NeedsCatalog(id) {
			cmds = append(cmds, loadCatalogCmd(m.ctx, m.rec, id))
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
		}
		m.logViewport.Width = msg.Width
		m.logViewport.Height = m.contentHeight()
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(logRefresh)}
		if m.view == ViewLog {
			cmds = append(cmds, readLogCmd(m.cfg.LogPath, maxLogLines))
		}
		return m, tea.Batch(cmds...)

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg), nil

	case lookupMsg:
		return m.handleLookup(msg)

	case suggestionsMsg:
		return m.handleSuggestions(msg), nil

	case searchTickMsg:
		return m.handleSearchTick(msg)

	case searchResultMsg:
		return m.handleSearchResult(msg), nil

	case submitMsg:
		return m.handleSubmit(msg), nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.view {
	case ViewComponentes:
		return m.renderComponentes()
	case ViewRepuestos:
		return m.renderRepuestos()
	case ViewResumen:
		return m.renderResumen()
	case ViewLog:
		return m.logViewport.View()
	default:
		return ""
	}
}

// contentHeight is the space left for the active view: two header lines and
// the status line.
func (m Model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		return 1
	}
	return h
}

// inputActive reports whether keystrokes belong to a text field.
func (m Model) inputActive() bool {
	return m.comp.editing != editNone || m.parts.searching
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.inputActive() {
		switch m.view {
		case ViewComponentes:
			return m.handleEditKey(msg)
		case ViewRepuestos:
			return m.handleSearchKey(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			m.log.Warn("save theme failed", zap.Error(err))
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.stepView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.stepView(-1))

	case key.Matches(msg, m.keys.ViewComponentes):
		return m.switchView(ViewComponentes)
	case key.Matches(msg, m.keys.ViewRepuestos):
		return m.switchView(ViewRepuestos)
	case key.Matches(msg, m.keys.ViewResumen):
		return m.switchView(ViewResumen)
	case key.Matches(msg, m.keys.ViewLog):
		return m.switchView(ViewLog)

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	switch m.view {
	case ViewComponentes:
		return m.handleComponentesKey(msg)
	case ViewRepuestos:
		return m.handleRepuestosKey(msg)
	case ViewLog:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) stepView(delta int) View {
	for i, v := range viewOrder {
		if v == m.view {
			return viewOrder[(i+delta+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewComponentes
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	if v == ViewLog {
		return m, readLogCmd(m.cfg.LogPath, maxLogLines)
	}
	return m, nil
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
