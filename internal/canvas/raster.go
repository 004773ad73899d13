package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so that a quarter arc approximates a
// circle.
const kappa = 0.5522847498

type vec struct{ x, y float64 }

func (a vec) add(b vec) vec { return vec{a.x + b.x, a.y + b.y} }
func (a vec) sub(b vec) vec { return vec{a.x - b.x, a.y - b.y} }
func (a vec) scale(k float64) vec { return vec{a.x * k, a.y * k} }
func (a vec) neg() vec { return vec{-a.x, -a.y} }
func (a vec) length() float64 { return math.Hypot(a.x, a.y) }
func (a vec) f32() (float32, float32) { return float32(a.x), float32(a.y) }

// quarterArc appends a 90 degree arc around c from c+r*e1 to c+r*e2.
func quarterArc(z *vector.Rasterizer, c vec, r float64, e1, e2 vec) {
	p1x, p1y := c.add(e1.scale(r)).add(e2.scale(kappa * r)).f32()
	p2x, p2y := c.add(e2.scale(r)).add(e1.scale(kappa * r)).f32()
	p3x, p3y := c.add(e2.scale(r)).f32()
	z.CubeTo(p1x, p1y, p2x, p2y, p3x, p3y)
}

// capsule adds a segment from a to b with round caps as a single closed
// path. A zero-length segment becomes a dot.
func capsule(z *vector.Rasterizer, a, b vec, width float64) {
	r := width / 2
	d := b.sub(a)
	l := d.length()

	if l < 1e-9 {
		ex, ey := vec{1, 0}, vec{0, 1}
		z.MoveTo(a.add(ex.scale(r)).f32())
		quarterArc(z, a, r, ex, ey)
		quarterArc(z, a, r, ey, ex.neg())
		quarterArc(z, a, r, ex.neg(), ey.neg())
		quarterArc(z, a, r, ey.neg(), ex)
		z.ClosePath()
		return
	}

	u := d.scale(1 / l)
	n := vec{-u.y, u.x}

	z.MoveTo(a.add(n.scale(r)).f32())
	z.LineTo(b.add(n.scale(r)).f32())
	quarterArc(z, b, r, n, u)
	quarterArc(z, b, r, u, n.neg())
	z.LineTo(a.add(n.scale(-r)).f32())
	quarterArc(z, a, r, n.neg(), u.neg())
	quarterArc(z, a, r, u.neg(), n)
	z.ClosePath()
}

// strokeSegment composites one anti-aliased segment onto dst using the
// Porter-Duff over operator.
func strokeSegment(z *vector.Rasterizer, dst *image.RGBA, a, b vec, width float64, c color.NRGBA) {
	bounds := dst.Bounds()
	z.Reset(bounds.Dx(), bounds.Dy())
	capsule(z, a, b, width)
	z.Draw(dst, bounds, image.NewUniform(c), image.Point{})
}
