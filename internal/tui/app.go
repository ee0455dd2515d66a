package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/tasks"
)

// View identifies the active TUI view.
type View int

const (
	ViewHome View = iota
	ViewQuickAdd
	ViewAgenda
	ViewImport
	ViewConfig
	ViewHelp
)

// App is the root bubbletea model that routes to child views.
type App struct {
	svc        *tasks.Service
	cfg        *config.Config
	keys       KeyMap
	activeView View
	width      int
	height     int
	home       HomeModel
	quickAdd   QuickAddModel
	agenda     AgendaModel
	importer   ImportModel
	config     ConfigModel
	help       HelpModel
	showHelp   bool
	err        error
}

// NewApp creates a new root TUI application model.
func NewApp(svc *tasks.Service, cfg *config.Config) App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return App{
		svc:        svc,
		cfg:        cfg,
		keys:       DefaultKeyMap(),
		activeView: ViewHome,
		home:       NewHomeModel(svc),
		help:       NewHelpModel(),
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

// typing reports whether keystrokes belong to a text field.
func (a App) typing() bool {
	return a.activeView == ViewQuickAdd && !a.showHelp
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.propagateSize(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.err != nil {
			// any key dismisses the error
			a.err = nil
			return a, nil
		}
		if key.Matches(msg, a.keys.Quit) && !a.typing() && !a.showHelp {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.Help) && !a.typing() {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if key.Matches(msg, a.keys.Back) {
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
			if a.activeView != ViewHome {
				a.activeView = ViewHome
				return a, a.home.Init()
			}
		}

	case NavigateMsg:
		a.activeView = msg.Target
		if msg.Target == ViewHelp {
			a.activeView = ViewHome
			a.showHelp = true
			return a, nil
		}
		return a.initView(msg.Target)

	case ErrorMsg:
		a.err = msg.Err
		return a, nil
	}

	return a.updateChild(msg)
}

func (a App) View() string {
	if a.showHelp {
		return a.help.View()
	}

	var content string
	switch {
	case a.err != nil:
		content = errorDisplayFor(a.err).View()
	case a.activeView == ViewQuickAdd:
		content = a.quickAdd.View()
	case a.activeView == ViewAgenda:
		content = a.agenda.View()
	case a.activeView == ViewImport:
		content = a.importer.View()
	case a.activeView == ViewConfig:
		content = a.config.View()
	default:
		content = a.home.View()
	}

	header := TitleStyle.Render("dueday")
	status := StatusBarStyle.Render("? help · esc back · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

func (a App) updateChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case ViewHome:
		a.home, cmd = a.home.Update(msg)
	case ViewQuickAdd:
		a.quickAdd, cmd = a.quickAdd.Update(msg)
	case ViewAgenda:
		a.agenda, cmd = a.agenda.Update(msg)
	case ViewImport:
		a.importer, cmd = a.importer.Update(msg)
	case ViewConfig:
		a.config, cmd = a.config.Update(msg)
	}
	return a, cmd
}

func (a App) propagateSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	// Reserve space for header and status bar
	childMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3}
	var cmd tea.Cmd
	switch a.activeView {
	case ViewHome:
		a.home, cmd = a.home.Update(childMsg)
	default:
		return a.updateChild(childMsg)
	}
	return a, cmd
}

func (a App) initView(v View) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch v {
	case ViewQuickAdd:
		a.quickAdd = NewQuickAddModel(a.svc)
		cmd = a.quickAdd.Init()
	case ViewAgenda:
		a.agenda = NewAgendaModel(a.svc)
		cmd = a.agenda.Init()
	case ViewImport:
		a.importer = NewImportModel(a.svc, a.cfg.DateLocale)
		cmd = a.importer.Init()
	case ViewConfig:
		a.config = NewConfigModel(a.cfg)
		cmd = a.config.Init()
	}
	return a, cmd
}

// NavigateMsg tells the app to switch to a different view.
type NavigateMsg struct {
	Target View
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}
