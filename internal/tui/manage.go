package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

type manageModel struct {
	ctx context.Context
	app *command.App

	width  int
	height int

	Done bool

	list list.Model

	form    *huh.Form
	target  articleItem
	confirm bool

	status string
	err    error
}

func newManageModel(ctx context.Context, a *command.App) *manageModel {
	m := &manageModel{ctx: ctx, app: a}
	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.reloadList()
	return m
}

func (m *manageModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-3)
}

func (m *manageModel) reloadList() {
	p := view.BuildManagePanel(m.app.State())
	items := make([]list.Item, 0, len(p.Items))
	for _, a := range p.Items {
		desc := fmt.Sprintf("%s | views %d | likes %d | comments %d", a.Date, a.Views, a.Likes, a.Comments)
		items = append(items, articleItem{id: a.ID, title: a.Title, desc: desc})
	}
	m.list.SetItems(items)
	m.list.Title = "Manage articles"
	if p.Placeholder != "" {
		m.list.Title += " - " + p.Placeholder
	}
}

func (m *manageModel) Update(msg tea.Msg) tea.Cmd {
	if m.form != nil {
		return m.updateConfirm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			m.Done = true
			return nil
		case "d", "delete":
			it, ok := m.list.SelectedItem().(articleItem)
			if !ok {
				return nil
			}
			m.target, m.confirm = it, false
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q?", it.title)).
					Description("Comments on the article are kept.").
					Value(&m.confirm),
			))
			return m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *manageModel) updateConfirm(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.form = nil
		return nil
	}

	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		m.form = nil
		return nil
	}
	m.form = f

	if m.form.State == huh.StateCompleted {
		m.form = nil
		if !m.confirm {
			return nil
		}
		if _, err := m.app.DeleteArticle(m.ctx, m.target.id); err != nil {
			m.err = err
			return nil
		}
		m.err, m.status = nil, fmt.Sprintf("Deleted %q.", m.target.title)
		m.reloadList()
		return nil
	}
	return cmd
}

func (m *manageModel) View() string {
	status := statusLine(m.status, m.err)
	if m.form != nil {
		return m.form.View() + "\n" + status + "\n" + dimStyle.Render("(esc cancel)")
	}
	return m.list.View() + "\n" + status + "\n" + dimStyle.Render("(d delete, esc back)")
}
