package tui

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

// Rows above the first canvas pixel: title, pen info and the frame border.
const canvasTop = 3

type drawModel struct {
	ctx context.Context
	app *command.App

	width  int
	height int

	Done bool

	state  drawState
	canvas *canvasWidget

	gallery list.Model
	large   image.Image
	caption string

	status string
	err    error
}

type drawState int

const (
	drawStateCanvas drawState = iota
	drawStateGallery
	drawStateLarge
)

type drawingItem struct {
	id    string
	title string
	desc  string
}

func (i drawingItem) Title() string       { return i.title }
func (i drawingItem) Description() string { return i.desc }
func (i drawingItem) FilterValue() string { return i.title }

func newDrawModel(ctx context.Context, a *command.App) *drawModel {
	surface, _ := a.Surface(command.SurfaceDraw)
	m := &drawModel{ctx: ctx, app: a, canvas: newCanvasWidget(surface)}
	m.gallery = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.gallery.SetShowStatusBar(false)
	m.gallery.SetFilteringEnabled(false)
	m.reloadGallery()
	return m
}

func (m *drawModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.canvas.layout(1, canvasTop, w-2, h-canvasTop-3)
	m.gallery.SetSize(w, h-2)
}

func (m *drawModel) reloadGallery() {
	g := view.BuildDrawingGallery(m.app.State())
	items := make([]list.Item, 0, len(g.Items))
	for i, d := range g.Items {
		items = append(items, drawingItem{
			id:    d.ID,
			title: fmt.Sprintf("Drawing #%d", i+1),
			desc:  fmt.Sprintf("%s | %s", d.Date, humanize.Bytes(uint64(d.Size))),
		})
	}
	m.gallery.SetItems(items)
	m.gallery.Title = "Saved drawings"
	if g.Placeholder != "" {
		m.gallery.Title += " - " + g.Placeholder
	}
}

func (m *drawModel) Update(msg tea.Msg) tea.Cmd {
	switch m.state {
	case drawStateGallery:
		return m.updateGallery(msg)
	case drawStateLarge:
		if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "q" || key.String() == "enter") {
			m.large = nil
			m.state = drawStateGallery
		}
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.canvas.handleMouse(msg)
		return nil
	case tea.KeyMsg:
		key := msg.String()
		if used, err := m.canvas.handlePenKey(key); used {
			m.err = err
			return nil
		}
		switch key {
		case "esc", "q":
			m.Done = true
		case "s":
			d, _, err := m.app.SaveDrawing(m.ctx)
			if err != nil {
				m.err = err
				return nil
			}
			m.err, m.status = nil, fmt.Sprintf("Saved drawing (%s).", humanize.Bytes(uint64(len(d.Image))))
			m.reloadGallery()
		case "x":
			m.canvas.surface.Clear()
			m.err, m.status = nil, "Canvas cleared."
		case "g":
			m.reloadGallery()
			m.state = drawStateGallery
		}
	}
	return nil
}

func (m *drawModel) updateGallery(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			m.state = drawStateCanvas
			return nil
		case "enter":
			it, ok := m.gallery.SelectedItem().(drawingItem)
			if !ok {
				return nil
			}
			d, found := m.app.DrawingByID(it.id)
			if !found {
				return nil
			}
			img, err := canvas.DecodeDataURI(d.Image)
			if err != nil {
				m.err = err
				return nil
			}
			m.large, m.caption = img, it.title+" | "+view.RelativeTime(d.CreatedAt, m.app.State().Now)
			m.state = drawStateLarge
			return nil
		}
	}

	var cmd tea.Cmd
	m.gallery, cmd = m.gallery.Update(msg)
	return cmd
}

func (m *drawModel) View() string {
	status := statusLine(m.status, m.err)

	switch m.state {
	case drawStateGallery:
		return m.gallery.View() + "\n" + status
	case drawStateLarge:
		return titleStyle.Render(m.caption) + "\n" + renderImage(m.large, m.width-2, m.height-3) + "\n" + dimStyle.Render("(esc back)")
	default:
		return titleStyle.Render("Draw") + "\n" +
			dimStyle.Render(m.canvas.penInfo()) + "\n" +
			m.canvas.View() + "\n" +
			status + "\n" +
			dimStyle.Render("(drag to draw, 1-8 colour, +/- width, s save, x clear, g gallery, esc back)")
	}
}
