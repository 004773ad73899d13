package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fishblog/fishblog/internal/canvas"
)

// paper is the colour transparent pixels are shown on.
var paper = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// renderImage draws img with half-block cells, two pixel rows per line,
// scaled to fit inside cols x rows cells.
func renderImage(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	thumb := canvas.Thumbnail(img, cols, rows*2)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := onPaper(thumb.RGBAAt(x, y))
			bottom := paper
			if y+1 < b.Max.Y {
				bottom = onPaper(thumb.RGBAAt(x, y+1))
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexOf(top))).
				Background(lipgloss.Color(hexOf(bottom))).
				Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// onPaper composites a premultiplied pixel over the paper colour.
func onPaper(c color.RGBA) color.RGBA {
	inv := 0xff - uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) + uint32(paper.R)*inv/0xff),
		G: uint8(uint32(c.G) + uint32(paper.G)*inv/0xff),
		B: uint8(uint32(c.B) + uint32(paper.B)*inv/0xff),
		A: 0xff,
	}
}

func hexOf(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// canvasWidget maps terminal mouse events onto a drawing surface. Every
// cell covers a block of surface pixels; a press starts a stroke, motion
// with the button held extends it, and release or leaving the widget ends it.
type canvasWidget struct {
	surface *canvas.Surface

	// left and top are the screen cell of the widget's first pixel.
	left, top int
	cols      int
	rows      int
	scale     float64
}

func newCanvasWidget(s *canvas.Surface) *canvasWidget {
	return &canvasWidget{surface: s}
}

// layout places the widget at screen cell (left, top) with room for
// cols x rows cells.
func (w *canvasWidget) layout(left, top, cols, rows int) {
	w.left, w.top = left, top
	b := w.surface.Bounds()
	if cols <= 0 || rows <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		w.cols, w.rows, w.scale = 0, 0, 0
		return
	}

	w.scale = min(float64(cols)/float64(b.Dx()), float64(rows*2)/float64(b.Dy()))
	w.cols = max(1, int(float64(b.Dx())*w.scale))
	w.rows = max(1, (int(float64(b.Dy())*w.scale)+1)/2)
}

// project converts a screen cell to surface-scaled screen coordinates and
// returns the widget origin in the same space.
func (w *canvasWidget) project(x, y int) (p, origin canvas.Point) {
	p = canvas.Point{X: (float64(x) + 0.5) / w.scale, Y: (float64(y)*2 + 1) / w.scale}
	origin = canvas.Point{X: float64(w.left) / w.scale, Y: float64(w.top) * 2 / w.scale}
	return p, origin
}

func (w *canvasWidget) inside(x, y int) bool {
	return x >= w.left && x < w.left+w.cols && y >= w.top && y < w.top+w.rows
}

// handleMouse feeds a mouse event to the surface and reports whether the
// pixels changed.
func (w *canvasWidget) handleMouse(msg tea.MouseMsg) bool {
	if w.scale == 0 {
		return false
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !w.inside(msg.X, msg.Y) {
			return false
		}
		// Cells inside the widget always map onto the surface.
		_ = w.surface.PointerDown(w.project(msg.X, msg.Y))
		return false
	case tea.MouseActionMotion:
		if w.surface.State() != canvas.Stroking {
			return false
		}
		if !w.inside(msg.X, msg.Y) {
			w.surface.PointerLeave()
			return false
		}
		drew, _ := w.surface.PointerMove(w.project(msg.X, msg.Y))
		return drew
	case tea.MouseActionRelease:
		w.surface.PointerUp()
	}
	return false
}

func (w *canvasWidget) View() string {
	if w.scale == 0 {
		return dimStyle.Render("(window too small for the canvas)")
	}
	return frameStyle.Render(renderImage(w.surface.Image(), w.cols, w.rows))
}

// palette maps number keys to pen colours.
var palette = []string{"#000000", "#e53935", "#fb8c00", "#fdd835", "#43a047", "#1e88e5", "#8e24aa", "#ffffff"}

// handlePenKey applies pen shortcuts: 1-8 pick a colour, + and - change the
// width. It reports whether the key was consumed.
func (w *canvasWidget) handlePenKey(key string) (bool, error) {
	switch key {
	case "+", "=":
		return true, w.surface.SetWidth(w.surface.Width() + 1)
	case "-":
		if w.surface.Width() <= 1 {
			return true, nil
		}
		return true, w.surface.SetWidth(w.surface.Width() - 1)
	}
	if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(palette) {
		return true, w.surface.SetColor(palette[key[0]-'1'])
	}
	return false, nil
}

func (w *canvasWidget) penInfo() string {
	return fmt.Sprintf("pen %s  width %g  segments %d  [%s]",
		w.surface.Color(), w.surface.Width(), w.surface.Segments(), w.surface.State())
}
