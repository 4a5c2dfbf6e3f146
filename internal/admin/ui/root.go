package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/dusk_bbs/internal/admin/app"
)

// screen is one admin section reachable from the home menu.
type screen interface {
	SetSize(w, h int)
	Update(msg tea.Msg) tea.Cmd
	View() string
	Finished() bool
}

type rootModel struct {
	app *app.App

	width  int
	height int

	homeList list.Model
	active   screen
}

type menuItem struct {
	title string
	desc  string
	open  func(*app.App) screen // nil quits
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewRootModel returns the home menu model.
func NewRootModel(a *app.App) tea.Model {
	items := []list.Item{
		menuItem{title: "BBS Settings", desc: "Edit BBS name, sysop, tagline", open: func(a *app.App) screen { return newSettingsModel(a) }},
		menuItem{title: "Users", desc: "Create accounts, set roles, reset passwords", open: func(a *app.App) screen { return newUsersModel(a) }},
		menuItem{title: "Boards", desc: "Create boards and browse recent posts", open: func(a *app.App) screen { return newBoardsModel(a) }},
		menuItem{title: "File Areas", desc: "Create areas and browse listings", open: func(a *app.App) screen { return newFilesModel(a) }},
		menuItem{title: "Quit", desc: "Exit"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Dusk BBS Admin"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return &rootModel{app: a, homeList: l}
}

func (m *rootModel) Init() tea.Cmd {
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.homeList.SetSize(msg.Width, msg.Height-2)
		if m.active != nil {
			m.active.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	if m.active != nil {
		cmd := m.active.Update(msg)
		if m.active.Finished() {
			m.active = nil
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		it, ok := m.homeList.SelectedItem().(menuItem)
		if !ok {
			return m, cmd
		}
		if it.open == nil {
			return m, tea.Quit
		}
		m.active = it.open(m.app)
		m.active.SetSize(m.width, m.height)
		return m, nil
	}
	return m, cmd
}

func (m *rootModel) View() string {
	if m.active != nil {
		return m.active.View()
	}
	return m.homeList.View()
}
