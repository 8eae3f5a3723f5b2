package molecule

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// DrawKind identifies the primitive recorded by a DrawOp.
type DrawKind uint8

const (
	DrawRect   DrawKind = iota // axis-aligned rectangle
	DrawCircle                 // circle around (X, Y)
)

// DrawOp is one recorded primitive together with the fill and stroke style
// that was active when it was recorded.
type DrawOp struct {
	Kind                DrawKind
	X, Y, Width, Height float64 // rectangle geometry (DrawRect)
	Radius              float64 // circle radius (DrawCircle); center is (X, Y)

	Filled      bool
	Fill        Color
	Stroked     bool
	Stroke      Color
	StrokeWidth float64
}

// Graphics records fill/stroke drawing commands for a shape node. A Graphics
// is sealed when handed to NewShape; after that it is immutable and every
// drawing call panics.
//
// Methods return the receiver so calls can be chained:
//
//	g := molecule.NewGraphics().
//		BeginFill(molecule.MustParseColor("#e04040")).
//		DrawCircle(0, 0, 12)
type Graphics struct {
	ops []DrawOp

	fill        Color
	filled      bool
	stroke      Color
	strokeWidth float64
	stroked     bool

	sealed bool

	// Tessellation output, built once after sealing.
	built bool
	verts []ebiten.Vertex
	inds  []uint16
}

// NewGraphics returns an empty, unsealed Graphics.
func NewGraphics() *Graphics {
	return &Graphics{}
}

func (g *Graphics) mustBeOpen() {
	if g.sealed {
		panic("molecule: graphics is sealed; build a new Graphics instead")
	}
}

// BeginFill sets the fill color for subsequent primitives.
func (g *Graphics) BeginFill(c Color) *Graphics {
	g.mustBeOpen()
	g.fill = c
	g.filled = true
	return g
}

// EndFill disables filling for subsequent primitives.
func (g *Graphics) EndFill() *Graphics {
	g.mustBeOpen()
	g.filled = false
	return g
}

// BeginStroke sets the outline color and width for subsequent primitives.
// A width <= 0 is treated as 1.
func (g *Graphics) BeginStroke(c Color, width float64) *Graphics {
	g.mustBeOpen()
	if width <= 0 {
		width = 1
	}
	g.stroke = c
	g.strokeWidth = width
	g.stroked = true
	return g
}

// EndStroke disables outlines for subsequent primitives.
func (g *Graphics) EndStroke() *Graphics {
	g.mustBeOpen()
	g.stroked = false
	return g
}

// DrawRect records a rectangle with the current fill and stroke.
func (g *Graphics) DrawRect(x, y, w, h float64) *Graphics {
	g.mustBeOpen()
	g.ops = append(g.ops, g.styled(DrawOp{Kind: DrawRect, X: x, Y: y, Width: w, Height: h}))
	return g
}

// DrawCircle records a circle centered at (x, y) with the current fill and
// stroke. A radius <= 0 records nothing visible but is kept in Ops.
func (g *Graphics) DrawCircle(x, y, r float64) *Graphics {
	g.mustBeOpen()
	g.ops = append(g.ops, g.styled(DrawOp{Kind: DrawCircle, X: x, Y: y, Radius: r}))
	return g
}

func (g *Graphics) styled(op DrawOp) DrawOp {
	op.Filled = g.filled
	op.Fill = g.fill
	op.Stroked = g.stroked
	op.Stroke = g.stroke
	op.StrokeWidth = g.strokeWidth
	return op
}

// Ops returns a copy of the recorded primitives in recording order.
func (g *Graphics) Ops() []DrawOp {
	out := make([]DrawOp, len(g.ops))
	copy(out, g.ops)
	return out
}

// Sealed reports whether the graphics has been attached to a shape.
func (g *Graphics) Sealed() bool {
	return g.sealed
}

func (g *Graphics) seal() {
	g.sealed = true
}

// Bounds returns the local-space bounding box of all recorded primitives,
// including stroke overhang. The zero Rect is returned when nothing is drawn.
func (g *Graphics) Bounds() Rect {
	var out Rect
	first := true
	for i := range g.ops {
		r, ok := opBounds(&g.ops[i])
		if !ok {
			continue
		}
		if first {
			out = r
			first = false
		} else {
			out = out.union(r)
		}
	}
	return out
}

func opBounds(op *DrawOp) (Rect, bool) {
	pad := 0.0
	if op.Stroked {
		pad = op.StrokeWidth / 2
	}
	switch op.Kind {
	case DrawRect:
		return Rect{X: op.X - pad, Y: op.Y - pad, Width: op.Width + 2*pad, Height: op.Height + 2*pad}, true
	case DrawCircle:
		if op.Radius <= 0 {
			return Rect{}, false
		}
		r := op.Radius + pad
		return Rect{X: op.X - r, Y: op.Y - r, Width: 2 * r, Height: 2 * r}, true
	}
	return Rect{}, false
}

// triangles returns the tessellated local-space vertices and indices.
// Vertex colors are premultiplied. Built once; graphics must be sealed.
func (g *Graphics) triangles() ([]ebiten.Vertex, []uint16) {
	if g.built {
		return g.verts, g.inds
	}
	for i := range g.ops {
		op := &g.ops[i]
		switch op.Kind {
		case DrawRect:
			if op.Filled {
				g.verts, g.inds = appendRectFill(g.verts, g.inds, op.X, op.Y, op.Width, op.Height, op.Fill)
			}
			if op.Stroked {
				g.verts, g.inds = appendRectStroke(g.verts, g.inds, op.X, op.Y, op.Width, op.Height, op.StrokeWidth, op.Stroke)
			}
		case DrawCircle:
			if op.Radius <= 0 {
				continue
			}
			if op.Filled {
				g.verts, g.inds = appendCircleFill(g.verts, g.inds, op.X, op.Y, op.Radius, op.Fill)
			}
			if op.Stroked {
				g.verts, g.inds = appendCircleStroke(g.verts, g.inds, op.X, op.Y, op.Radius, op.StrokeWidth, op.Stroke)
			}
		}
	}
	g.built = g.sealed
	return g.verts, g.inds
}

// --- Tessellation helpers ---

// circleSegments picks a segment count that keeps edges under ~4px.
func circleSegments(r float64) int {
	n := int(math.Ceil(2 * math.Pi * r / 4))
	if n < 12 {
		n = 12
	}
	if n > 128 {
		n = 128
	}
	return n
}

func premulVertex(x, y float64, c Color) ebiten.Vertex {
	a := float32(clamp01(c.A))
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(clamp01(c.R)) * a,
		ColorG: float32(clamp01(c.G)) * a,
		ColorB: float32(clamp01(c.B)) * a,
		ColorA: a,
	}
}

func appendRectFill(verts []ebiten.Vertex, inds []uint16, x, y, w, h float64, c Color) ([]ebiten.Vertex, []uint16) {
	base := uint16(len(verts))
	verts = append(verts,
		premulVertex(x, y, c),
		premulVertex(x+w, y, c),
		premulVertex(x+w, y+h, c),
		premulVertex(x, y+h, c),
	)
	inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	return verts, inds
}

// appendRectStroke emits an outline centered on the rectangle edge as a ring
// of 8 vertices (outer corners then inner corners).
func appendRectStroke(verts []ebiten.Vertex, inds []uint16, x, y, w, h, width float64, c Color) ([]ebiten.Vertex, []uint16) {
	half := width / 2
	base := uint16(len(verts))
	verts = append(verts,
		premulVertex(x-half, y-half, c),
		premulVertex(x+w+half, y-half, c),
		premulVertex(x+w+half, y+h+half, c),
		premulVertex(x-half, y+h+half, c),
		premulVertex(x+half, y+half, c),
		premulVertex(x+w-half, y+half, c),
		premulVertex(x+w-half, y+h-half, c),
		premulVertex(x+half, y+h-half, c),
	)
	for i := uint16(0); i < 4; i++ {
		o0 := base + i
		o1 := base + (i+1)%4
		i0 := base + 4 + i
		i1 := base + 4 + (i+1)%4
		inds = append(inds, o0, o1, i1, o0, i1, i0)
	}
	return verts, inds
}

// appendCircleFill emits a triangle fan: one center vertex plus a ring.
func appendCircleFill(verts []ebiten.Vertex, inds []uint16, cx, cy, r float64, c Color) ([]ebiten.Vertex, []uint16) {
	segs := circleSegments(r)
	base := uint16(len(verts))
	verts = append(verts, premulVertex(cx, cy, c))
	for i := 0; i < segs; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(segs))
		verts = append(verts, premulVertex(cx+cos*r, cy+sin*r, c))
	}
	for i := 0; i < segs; i++ {
		a := base + 1 + uint16(i)
		b := base + 1 + uint16((i+1)%segs)
		inds = append(inds, base, a, b)
	}
	return verts, inds
}

func appendCircleStroke(verts []ebiten.Vertex, inds []uint16, cx, cy, r, width float64, c Color) ([]ebiten.Vertex, []uint16) {
	segs := circleSegments(r)
	half := width / 2
	inner := math.Max(r-half, 0)
	outer := r + half
	base := uint16(len(verts))
	for i := 0; i < segs; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(segs))
		verts = append(verts,
			premulVertex(cx+cos*outer, cy+sin*outer, c),
			premulVertex(cx+cos*inner, cy+sin*inner, c),
		)
	}
	for i := 0; i < segs; i++ {
		o0 := base + uint16(2*i)
		i0 := o0 + 1
		o1 := base + uint16(2*((i+1)%segs))
		i1 := o1 + 1
		inds = append(inds, o0, o1, i1, o0, i1, i0)
	}
	return verts, inds
}

// transformVertices applies an affine transform and color tint to src vertices,
// writing the result into dst. dst must be at least len(src) in length.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
// newX = a*x + c*y + tx, newY = b*x + d*y + ty
//
// Source colors are premultiplied already; the tint's alpha has worldAlpha
// baked in and scales every channel.
func transformVertices(src, dst []ebiten.Vertex, transform [6]float64, tint Color) {
	a, b, c, d, tx, ty := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]
	ca := float32(tint.A)
	cr := float32(tint.R) * ca
	cg := float32(tint.G) * ca
	cb := float32(tint.B) * ca

	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * cr,
			ColorG: s.ColorG * cg,
			ColorB: s.ColorB * cb,
			ColorA: s.ColorA * ca,
		}
	}
}

// ensureTransformedVerts grows the node's transform buffer to fit need
// vertices, using a high-water-mark strategy (never shrinks).
func ensureTransformedVerts(n *Node, need int) []ebiten.Vertex {
	if cap(n.transformedBuf) < need {
		n.transformedBuf = make([]ebiten.Vertex, need)
	}
	n.transformedBuf = n.transformedBuf[:need]
	return n.transformedBuf
}
