// Package tui is the terminal front end: a bubbletea root model with one
// sub-model per blog view.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

type rootModel struct {
	ctx context.Context
	app *command.App
	log *zap.Logger

	width  int
	height int

	homeList list.Model
	err      error

	articles *articlesModel
	draw     *drawModel
	message  *messageModel
	manage   *manageModel
}

type menuItem struct {
	title string
	desc  string
	to    view.Name
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

const quitItem view.Name = "quit"

// NewRootModel creates the top-level model starting at the home view.
func NewRootModel(ctx context.Context, a *command.App, log *zap.Logger) tea.Model {
	if log == nil {
		log = zap.NewNop()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	m := &rootModel{ctx: ctx, app: a, log: log, homeList: l}
	m.reloadHome()
	return m
}

func (m *rootModel) reloadHome() {
	home := view.BuildHome(m.app.State())
	m.homeList.Title = home.Title
	m.homeList.SetItems([]list.Item{
		menuItem{title: "Articles", desc: fmt.Sprintf("%d articles", home.Articles), to: view.Articles},
		menuItem{title: "Draw", desc: fmt.Sprintf("Freehand canvas, %d saved drawings", home.Drawings), to: view.Draw},
		menuItem{title: "Guestbook", desc: fmt.Sprintf("%d messages", home.Messages), to: view.Message},
		menuItem{title: "Manage", desc: "Delete articles", to: view.Manage},
		menuItem{title: "Quit", desc: "Exit", to: quitItem},
	})
}

func (m *rootModel) Init() tea.Cmd {
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.homeList.SetSize(msg.Width, msg.Height-2)
		if m.articles != nil {
			m.articles.SetSize(msg.Width, msg.Height)
		}
		if m.draw != nil {
			m.draw.SetSize(msg.Width, msg.Height)
		}
		if m.message != nil {
			m.message.SetSize(msg.Width, msg.Height)
		}
		if m.manage != nil {
			m.manage.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	m.ensure()
	switch m.app.ActiveView() {
	case view.Home:
		return m.updateHome(msg)
	case view.Articles:
		cmd := m.articles.Update(msg)
		if m.articles.Done {
			m.articles = nil
			m.goHome()
		}
		return m, cmd
	case view.Draw:
		cmd := m.draw.Update(msg)
		if m.draw.Done {
			m.draw = nil
			m.goHome()
		}
		return m, cmd
	case view.Message:
		cmd := m.message.Update(msg)
		if m.message.Done {
			m.message = nil
			m.goHome()
		}
		return m, cmd
	case view.Manage:
		cmd := m.manage.Update(msg)
		if m.manage.Done {
			m.manage = nil
			m.goHome()
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *rootModel) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			if it, ok := m.homeList.SelectedItem().(menuItem); ok {
				if it.to == quitItem {
					return m, tea.Quit
				}
				return m, m.activate(it.to)
			}
		}
	}

	return m, cmd
}

func (m *rootModel) goHome() {
	if _, err := m.app.SwitchView(string(view.Home)); err != nil {
		m.err = err
		return
	}
	m.reloadHome()
}

func (m *rootModel) activate(name view.Name) tea.Cmd {
	if _, err := m.app.SwitchView(string(name)); err != nil {
		m.log.Error("switch view", zap.String("view", string(name)), zap.Error(err))
		m.err = err
		return nil
	}
	m.log.Debug("view activated", zap.String("view", string(name)))

	m.ensure()
	return nil
}

// ensure creates the sub-model for the active view if it is missing.
func (m *rootModel) ensure() {
	switch m.app.ActiveView() {
	case view.Articles:
		if m.articles == nil {
			m.articles = newArticlesModel(m.ctx, m.app)
			m.articles.SetSize(m.width, m.height)
		}
	case view.Draw:
		if m.draw == nil {
			m.draw = newDrawModel(m.ctx, m.app)
			m.draw.SetSize(m.width, m.height)
		}
	case view.Message:
		if m.message == nil {
			m.message = newMessageModel(m.ctx, m.app)
			m.message.SetSize(m.width, m.height)
		}
	case view.Manage:
		if m.manage == nil {
			m.manage = newManageModel(m.ctx, m.app)
			m.manage.SetSize(m.width, m.height)
		}
	}
}

func (m *rootModel) View() string {
	if m.err != nil {
		return errStyle.Render("Error: ") + m.err.Error()
	}

	m.ensure()
	switch m.app.ActiveView() {
	case view.Home:
		return m.homeList.View()
	case view.Articles:
		return m.articles.View()
	case view.Draw:
		return m.draw.View()
	case view.Message:
		return m.message.View()
	case view.Manage:
		return m.manage.View()
	default:
		return titleStyle.Render("Unknown view") + "\n" + string(m.app.ActiveView())
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, a *command.App, log *zap.Logger) error {
	p := tea.NewProgram(NewRootModel(ctx, a, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
