package molecule

import "github.com/hajimehoshi/ebiten/v2"

// commandKind identifies the kind of render command.
type commandKind uint8

const (
	commandTriangles commandKind = iota // DrawTriangles over the white pixel
	commandImage                        // DrawImage
)

// renderCommand is a single draw instruction emitted during scene traversal.
// Commands are emitted in painter order and submitted in that order.
type renderCommand struct {
	kind      commandKind
	transform [6]float64
	color     Color // tint with worldAlpha folded into A

	// Triangle fields (slice headers, not copies of vertex data).
	verts []ebiten.Vertex
	inds  []uint16

	image *ebiten.Image
	node  *Node
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible, renderable nodes.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	if !n.Visible {
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	if n.Renderable {
		tint := Color{n.Color.R, n.Color.G, n.Color.B, n.Color.A * n.worldAlpha}
		switch n.Type {
		case NodeTypeShape:
			if n.graphics == nil {
				break
			}
			src, inds := n.graphics.triangles()
			if len(src) == 0 || len(inds) == 0 {
				break
			}
			dst := ensureTransformedVerts(n, len(src))
			transformVertices(src, dst, n.worldTransform, tint)
			s.commands = append(s.commands, renderCommand{
				kind:      commandTriangles,
				transform: n.worldTransform,
				color:     tint,
				verts:     dst,
				inds:      inds,
				node:      n,
			})
		case NodeTypeBitmap:
			if n.bitmap == nil {
				break
			}
			img := n.bitmap.resolve(s.logger)
			if img == nil {
				break
			}
			s.commands = append(s.commands, renderCommand{
				kind:      commandImage,
				transform: n.worldTransform,
				color:     tint,
				image:     img,
				node:      n,
			})
			// NodeTypeContainer doesn't emit commands
		}
	}

	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// submit draws every command onto target in emission order.
func (s *Scene) submit(target *ebiten.Image) {
	for i := range s.commands {
		cmd := &s.commands[i]
		switch cmd.kind {
		case commandTriangles:
			var op ebiten.DrawTrianglesOptions
			op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
			op.AntiAlias = s.antiAlias
			target.DrawTriangles(cmd.verts, cmd.inds, ensureWhitePixel(), &op)
		case commandImage:
			var op ebiten.DrawImageOptions
			op.GeoM = geoM(cmd.transform)
			op.ColorScale.Scale(
				float32(cmd.color.R*cmd.color.A),
				float32(cmd.color.G*cmd.color.A),
				float32(cmd.color.B*cmd.color.A),
				float32(cmd.color.A),
			)
			op.Filter = ebiten.FilterLinear
			target.DrawImage(cmd.image, &op)
		}
	}
}

// geoM converts an affine [a, b, c, d, tx, ty] matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
