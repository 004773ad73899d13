package tui

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

type messageModel struct {
	ctx context.Context
	app *command.App

	width  int
	height int

	Done bool

	state messageState
	list  list.Model

	form    *huh.Form
	name    string
	content string
	title   string

	composer *canvasWidget
	large    image.Image
	caption  string

	status string
	err    error
}

type messageState int

const (
	messageStateList messageState = iota
	messageStateWrite
	messageStateCompose
	messageStateTitle
	messageStateLarge
)

type messageItem struct {
	id    string
	kind  blog.MessageKind
	title string
	desc  string
}

func (i messageItem) Title() string       { return i.title }
func (i messageItem) Description() string { return i.desc }
func (i messageItem) FilterValue() string { return i.title }

func newMessageModel(ctx context.Context, a *command.App) *messageModel {
	surface, _ := a.Surface(command.SurfaceMessage)
	m := &messageModel{ctx: ctx, app: a, composer: newCanvasWidget(surface)}
	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.reloadList()
	return m
}

func (m *messageModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
	m.composer.layout(1, canvasTop, w-2, h-canvasTop-3)
}

func (m *messageModel) reloadList() {
	l := view.BuildMessageList(m.app.State())
	items := make([]list.Item, 0, len(l.Items))
	for _, it := range l.Items {
		desc := it.Date + " | " + it.Body
		if it.Kind == blog.KindDrawing {
			desc = it.Date + " | [drawing, enter to view]"
		}
		items = append(items, messageItem{id: it.ID, kind: it.Kind, title: it.Heading, desc: desc})
	}
	m.list.SetItems(items)
	m.list.Title = "Guestbook"
	if l.Placeholder != "" {
		m.list.Title += " - " + l.Placeholder
	}
}

func buildMessageForm(name, content *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(name),
			huh.NewText().Title("Message").Value(content),
		),
	)
}

func buildTitleForm(title *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Drawing title").Value(title),
		),
	)
}

func (m *messageModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.back()
		return nil
	}

	switch m.state {
	case messageStateList:
		return m.updateList(msg)
	case messageStateWrite:
		return m.updateWrite(msg)
	case messageStateCompose:
		return m.updateCompose(msg)
	case messageStateTitle:
		return m.updateTitle(msg)
	case messageStateLarge:
		if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "q" || key.String() == "enter") {
			m.back()
		}
	}
	return nil
}

func (m *messageModel) updateList(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			m.Done = true
			return nil
		case "n":
			m.form = buildMessageForm(&m.name, &m.content)
			m.state = messageStateWrite
			m.err, m.status = nil, ""
			return m.form.Init()
		case "d":
			m.state = messageStateCompose
			m.err, m.status = nil, ""
			return nil
		case "enter":
			it, ok := m.list.SelectedItem().(messageItem)
			if !ok || it.kind != blog.KindDrawing {
				return nil
			}
			entry, found := m.app.MessageDrawingByID(it.id)
			if !found {
				return nil
			}
			img, err := canvas.DecodeDataURI(entry.Drawing.Image)
			if err != nil {
				m.err = err
				return nil
			}
			m.large = img
			m.caption = entry.Drawing.Title + " | " + view.RelativeTime(entry.CreatedAt, m.app.State().Now)
			m.state = messageStateLarge
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *messageModel) updateWrite(msg tea.Msg) tea.Cmd {
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	if m.form.State == huh.StateCompleted {
		res, err := m.app.SubmitMessage(m.ctx, m.name, m.content)
		if err != nil {
			m.err = err
			m.form = buildMessageForm(&m.name, &m.content)
			return m.form.Init()
		}
		if res.ClearForm {
			m.name, m.content = "", ""
		}
		m.err, m.status = nil, "Message posted."
		m.state = messageStateList
		m.reloadList()
		return nil
	}
	return cmd
}

func (m *messageModel) updateCompose(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.composer.handleMouse(msg)
	case tea.KeyMsg:
		key := msg.String()
		if used, err := m.composer.handlePenKey(key); used {
			m.err = err
			return nil
		}
		switch key {
		case "x":
			m.composer.surface.Clear()
		case "s":
			m.form = buildTitleForm(&m.title)
			m.state = messageStateTitle
			return m.form.Init()
		}
	}
	return nil
}

func (m *messageModel) updateTitle(msg tea.Msg) tea.Cmd {
	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	if m.form.State == huh.StateCompleted {
		res, err := m.app.SaveMessageDrawing(m.ctx, m.title)
		if err != nil {
			m.err = err
			m.state = messageStateCompose
			return nil
		}
		if res.ClearTitle {
			m.title = ""
		}
		m.err, m.status = nil, "Drawing posted to the guestbook."
		m.state = messageStateList
		m.reloadList()
		return nil
	}
	return cmd
}

func (m *messageModel) back() {
	switch m.state {
	case messageStateList:
		m.Done = true
	case messageStateWrite, messageStateCompose, messageStateLarge:
		m.form, m.large = nil, nil
		m.state = messageStateList
		m.reloadList()
	case messageStateTitle:
		m.form = nil
		m.state = messageStateCompose
	}
}

func (m *messageModel) View() string {
	status := statusLine(m.status, m.err)

	switch m.state {
	case messageStateWrite:
		return titleStyle.Render("New message") + "\n\n" + m.form.View() + "\n" + status + "\n" + dimStyle.Render("(esc cancel)")
	case messageStateCompose:
		return titleStyle.Render("Draw a message") + "\n" +
			dimStyle.Render(m.composer.penInfo()) + "\n" +
			m.composer.View() + "\n" +
			status + "\n" +
			dimStyle.Render("(drag to draw, 1-8 colour, +/- width, s post, x clear, esc back)")
	case messageStateTitle:
		return titleStyle.Render("Post drawing") + "\n\n" + m.form.View() + "\n" + status + "\n" + dimStyle.Render("(esc back to canvas)")
	case messageStateLarge:
		return titleStyle.Render(m.caption) + "\n" + renderImage(m.large, m.width-2, m.height-3) + "\n" + dimStyle.Render("(esc back)")
	default:
		return m.list.View() + "\n" + status + "\n" + dimStyle.Render("(n write, d draw, enter view drawing, q back)")
	}
}
