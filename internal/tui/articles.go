package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

type articlesModel struct {
	ctx context.Context
	app *command.App

	width  int
	height int

	Done bool

	state articlesState
	list  list.Model
	body  viewport.Model

	form    *huh.Form
	name    string
	content string

	status string
	err    error
}

type articlesState int

const (
	articlesStateList articlesState = iota
	articlesStateDetail
	articlesStateComment
)

type articleItem struct {
	id    string
	title string
	desc  string
}

func (i articleItem) Title() string       { return i.title }
func (i articleItem) Description() string { return i.desc }
func (i articleItem) FilterValue() string { return i.title }

func newArticlesModel(ctx context.Context, a *command.App) *articlesModel {
	m := &articlesModel{ctx: ctx, app: a, state: articlesStateList, body: viewport.New(0, 0)}
	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.list.Title = "Articles"
	m.list.SetShowStatusBar(false)
	m.list.SetShowHelp(true)
	m.reloadList()
	return m
}

func (m *articlesModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
	m.body.Width = w
	m.body.Height = max(1, h-4)
}

func (m *articlesModel) reloadList() {
	l := view.BuildArticleList(m.app.State())
	items := make([]list.Item, 0, len(l.Items))
	for _, a := range l.Items {
		desc := fmt.Sprintf("%s | views %d | likes %d | comments %d", a.Date, a.Views, a.Likes, a.Comments)
		items = append(items, articleItem{id: a.ID, title: a.Title, desc: desc})
	}
	m.list.SetItems(items)
	if len(items) == 0 {
		m.list.Title = "Articles - " + l.Placeholder
	} else {
		m.list.Title = "Articles"
	}
}

func (m *articlesModel) reloadDetail() {
	d, ok := view.BuildArticleDetail(m.app.State())
	if !ok {
		m.state = articlesStateList
		m.reloadList()
		return
	}
	m.body.SetContent(renderDetail(d, m.width))
}

func renderDetail(d view.ArticleDetail, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(d.Title) + "\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%s | views %d", d.Date, d.Views)) + "\n\n")
	if d.Image != "" {
		sb.WriteString(dimStyle.Render("[cover image]") + "\n\n")
	}
	for _, p := range d.Paragraphs {
		sb.WriteString(wrap(p, width) + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s %d\n\n", d.LikeGlyph, d.Likes))

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Comments (%d)", d.Comments.Count)) + "\n")
	if d.Comments.Placeholder != "" {
		sb.WriteString(dimStyle.Render(d.Comments.Placeholder) + "\n")
	}
	for _, c := range d.Comments.Items {
		sb.WriteString(authorStyle.Render(c.Author) + " " + dimStyle.Render(c.Date) + "\n")
		sb.WriteString(wrap(c.Content, width) + "\n\n")
	}
	return sb.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func buildCommentForm(name, content *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(name),
			huh.NewText().Title("Comment").Value(content),
		),
	)
}

func (m *articlesModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.back()
			return nil
		case "q":
			if m.state == articlesStateList && m.list.FilterState() == list.Unfiltered {
				m.Done = true
				return nil
			}
		}
	}

	switch m.state {
	case articlesStateList:
		return m.updateList(msg)
	case articlesStateDetail:
		return m.updateDetail(msg)
	case articlesStateComment:
		return m.updateComment(msg)
	}
	return nil
}

func (m *articlesModel) updateList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && m.list.FilterState() != list.Filtering {
		it, ok := m.list.SelectedItem().(articleItem)
		if !ok {
			return cmd
		}
		if _, err := m.app.OpenArticle(m.ctx, it.id); err != nil {
			m.err = err
			return nil
		}
		m.err, m.status = nil, ""
		m.state = articlesStateDetail
		m.body.GotoTop()
		m.reloadDetail()
		return nil
	}
	return cmd
}

func (m *articlesModel) updateDetail(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "l":
			if _, err := m.app.ToggleLike(m.ctx); err != nil {
				m.err = err
				return nil
			}
			m.err = nil
			m.reloadDetail()
			return nil
		case "c":
			m.name, m.content = "", ""
			m.form = buildCommentForm(&m.name, &m.content)
			m.state = articlesStateComment
			m.err, m.status = nil, ""
			return m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return cmd
}

func (m *articlesModel) updateComment(msg tea.Msg) tea.Cmd {
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	if m.form.State == huh.StateCompleted {
		res, err := m.app.SubmitComment(m.ctx, m.name, m.content)
		if err != nil {
			m.err = err
			m.form = buildCommentForm(&m.name, &m.content)
			return m.form.Init()
		}
		if res.ClearForm {
			m.name, m.content = "", ""
		}
		m.err, m.status = nil, "Comment posted."
		m.state = articlesStateDetail
		m.reloadDetail()
		return nil
	}
	return cmd
}

func (m *articlesModel) back() {
	switch m.state {
	case articlesStateList:
		if m.list.FilterState() != list.Unfiltered {
			m.list.ResetFilter()
			return
		}
		m.Done = true
	case articlesStateDetail:
		m.app.CloseArticle()
		m.state = articlesStateList
		m.status, m.err = "", nil
		m.reloadList()
	case articlesStateComment:
		m.form = nil
		m.state = articlesStateDetail
		m.err = nil
		m.reloadDetail()
	}
}

func (m *articlesModel) View() string {
	status := statusLine(m.status, m.err)

	switch m.state {
	case articlesStateList:
		return m.list.View() + "\n" + status
	case articlesStateDetail:
		return m.body.View() + "\n" + status + "\n" + dimStyle.Render("(l like, c comment, up/down scroll, esc back)")
	case articlesStateComment:
		return titleStyle.Render("New comment") + "\n\n" + m.form.View() + "\n" + status + "\n" + dimStyle.Render("(esc cancel)")
	default:
		return "Articles"
	}
}
