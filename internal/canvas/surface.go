// Package canvas captures freehand pointer input onto a raster surface and
// exports it as an embeddable PNG data URI.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// State is the pen state of a surface.
type State int

const (
	Idle State = iota
	Stroking
)

func (s State) String() string {
	if s == Stroking {
		return "stroking"
	}
	return "idle"
}

// Point is a position in screen or surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p translated by -o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Limits on pen geometry. The rasterizer works in 32-bit fixed point, so
// positions and widths past these bounds cannot be drawn.
const (
	MaxCoordinate  = 1 << 16
	MaxStrokeWidth = 512.0
)

// ErrCoordinate reports a pen position that is NaN, infinite or beyond
// MaxCoordinate.
var ErrCoordinate = errors.New("coordinate out of range")

// Defaults used when Options leaves a field empty.
const (
	DefaultWidth       = 600
	DefaultHeight      = 400
	DefaultColor       = "#000000"
	DefaultStrokeWidth = 3.0
)

// Options configures a new surface.
type Options struct {
	Width       int
	Height      int
	Color       string
	StrokeWidth float64
}

// Surface is a drawing canvas driven by pointer events. Pointer positions
// arrive in screen coordinates together with the surface origin on screen.
//
// Surface is not safe for concurrent use.
type Surface struct {
	img     *image.RGBA
	z       *vector.Rasterizer
	state   State
	pen     Point
	color   color.NRGBA
	width   float64
	strokes int
}

// New creates a blank, transparent surface.
func New(opts Options) (*Surface, error) {
	if opts.Width == 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height == 0 {
		opts.Height = DefaultHeight
	}
	if opts.Color == "" {
		opts.Color = DefaultColor
	}
	if opts.StrokeWidth == 0 {
		opts.StrokeWidth = DefaultStrokeWidth
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", opts.Width, opts.Height)
	}

	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		z:   vector.NewRasterizer(opts.Width, opts.Height),
	}
	if err := s.SetColor(opts.Color); err != nil {
		return nil, err
	}
	if err := s.SetWidth(opts.StrokeWidth); err != nil {
		return nil, err
	}
	return s, nil
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= MaxCoordinate
}

// local translates p into surface coordinates and checks the result.
func local(p, origin Point) (Point, error) {
	l := p.Sub(origin)
	if !inRange(l.X) || !inRange(l.Y) {
		return Point{}, fmt.Errorf("%w: (%g, %g) exceeds ±%d", ErrCoordinate, l.X, l.Y, MaxCoordinate)
	}
	return l, nil
}

// PointerDown starts a stroke at p. Nothing is drawn until the pointer moves.
// A rejected position leaves the surface unchanged.
func (s *Surface) PointerDown(p, origin Point) error {
	at, err := local(p, origin)
	if err != nil {
		return err
	}
	s.state = Stroking
	s.pen = at
	return nil
}

// PointerMove draws a segment from the last pen position to p while
// stroking and reports whether it drew. Moves while idle are ignored. A
// rejected position draws nothing and keeps the pen where it was.
func (s *Surface) PointerMove(p, origin Point) (bool, error) {
	if s.state != Stroking {
		return false, nil
	}
	next, err := local(p, origin)
	if err != nil {
		return false, err
	}
	strokeSegment(s.z, s.img, vec{s.pen.X, s.pen.Y}, vec{next.X, next.Y}, s.width, s.color)
	s.pen = next
	s.strokes++
	return true, nil
}

// PointerUp ends the current stroke.
func (s *Surface) PointerUp() { s.state = Idle }

// PointerLeave ends the current stroke when the pointer leaves the surface.
func (s *Surface) PointerLeave() { s.state = Idle }

// Clear erases every pixel to transparent. The pen state is unchanged, so a
// stroke in progress continues from its last position.
func (s *Surface) Clear() {
	xdraw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
	s.strokes = 0
}

// SetColor sets the stroke color for the next segment.
func (s *Surface) SetColor(c string) error {
	parsed, err := ParseColor(c)
	if err != nil {
		return err
	}
	s.color = parsed
	return nil
}

// SetWidth sets the stroke width for the next segment.
func (s *Surface) SetWidth(w float64) error {
	if math.IsNaN(w) || w <= 0 || w > MaxStrokeWidth {
		return fmt.Errorf("stroke width must be in (0, %g], got %v", MaxStrokeWidth, w)
	}
	s.width = w
	return nil
}

// State returns the pen state.
func (s *Surface) State() State { return s.state }

// Color returns the stroke color as #rrggbb.
func (s *Surface) Color() string { return FormatColor(s.color) }

// Width returns the stroke width.
func (s *Surface) Width() float64 { return s.width }

// Segments returns how many segments were drawn since the last clear.
func (s *Surface) Segments() int { return s.strokes }

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Image returns a copy of the raster.
func (s *Surface) Image() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// ExportImage encodes the raster as a PNG data URI. Identical pixels always
// produce identical output.
func (s *Surface) ExportImage() (string, error) {
	return EncodeDataURI(s.img)
}
