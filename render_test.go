package molecule

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hajimehoshi/ebiten/v2"
)

// traverseScene runs traverse without Draw (no target image needed).
func traverseScene(s *Scene) {
	s.commands = s.commands[:0]
	s.traverse(s.root, identityTransform, 1.0, false)
}

func commandNodes(s *Scene) []string {
	out := make([]string, len(s.commands))
	for i := range s.commands {
		out[i] = s.commands[i].node.Name
	}
	return out
}

func filledRect(name string) *Node {
	return NewShape(name, NewGraphics().BeginFill(ColorWhite).DrawRect(0, 0, 10, 10))
}

func TestShapeEmitsTriangles(t *testing.T) {
	s := newTestScene()
	s.Root().AddChild(filledRect("r"))
	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.kind != commandTriangles || len(cmd.verts) != 4 || len(cmd.inds) != 6 {
		t.Errorf("command = kind %d with %d verts / %d inds", cmd.kind, len(cmd.verts), len(cmd.inds))
	}
}

func TestEmptyShapeNoCommand(t *testing.T) {
	s := newTestScene()
	s.Root().AddChild(NewShape("empty", nil))
	s.Root().AddChild(NewShape("zero", NewGraphics().BeginFill(ColorWhite).DrawCircle(0, 0, 0)))
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestContainerNoCommand(t *testing.T) {
	s := newTestScene()
	s.Root().AddChild(NewContainer("c"))
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for container", len(s.commands))
	}
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := newTestScene()
	parent := NewContainer("parent")
	parent.Visible = false
	parent.AddChild(filledRect("child"))
	s.Root().AddChild(parent)
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for invisible subtree", len(s.commands))
	}
}

func TestNonRenderableNodeSkippedButChildrenDrawn(t *testing.T) {
	s := newTestScene()
	parent := filledRect("parent")
	parent.Renderable = false
	parent.AddChild(filledRect("child"))
	s.Root().AddChild(parent)
	traverseScene(s)
	if diff := cmp.Diff([]string{"child"}, commandNodes(s)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestPainterOrderFollowsInsertion(t *testing.T) {
	s := newTestScene()
	c := NewContainer("c")
	c.AddChild(filledRect("region"))
	c.AddChild(NewBitmapFromImage("image", ebiten.NewImage(2, 2)))
	c.AddChild(filledRect("c1"))
	c.AddChild(filledRect("c2"))
	s.Root().AddChild(c)
	traverseScene(s)

	want := []string{"region", "image", "c1", "c2"}
	if diff := cmp.Diff(want, commandNodes(s)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
	if s.commands[1].kind != commandImage {
		t.Error("bitmap should emit an image command")
	}
}

func TestZIndexSorting(t *testing.T) {
	s := newTestScene()
	a := filledRect("a")
	b := filledRect("b")
	c := filledRect("c")
	a.SetZIndex(2)
	c.SetZIndex(-1)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	s.Root().AddChild(c)
	traverseScene(s)
	if diff := cmp.Diff([]string{"c", "b", "a"}, commandNodes(s)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestWorldAlphaInCommand(t *testing.T) {
	s := newTestScene()
	parent := NewContainer("parent")
	parent.SetAlpha(0.5)
	child := filledRect("child")
	child.SetAlpha(0.5)
	parent.AddChild(child)
	s.Root().AddChild(parent)
	traverseScene(s)

	if got := s.commands[0].color.A; got != 0.25 {
		t.Errorf("command alpha = %v, want 0.25", got)
	}
	if got := s.commands[0].verts[0].ColorA; got != 0.25 {
		t.Errorf("vertex alpha = %v, want 0.25", got)
	}
}

func TestShapeVerticesInWorldSpace(t *testing.T) {
	s := newTestScene()
	parent := NewContainer("parent")
	parent.SetPosition(100, 50)
	child := filledRect("child")
	child.SetPosition(5, 5)
	parent.AddChild(child)
	s.Root().AddChild(parent)
	traverseScene(s)

	v := s.commands[0].verts[0]
	if v.DstX != 105 || v.DstY != 55 {
		t.Errorf("first vertex = (%v, %v), want (105, 55)", v.DstX, v.DstY)
	}
}

func TestFailedBitmapEmitsNothing(t *testing.T) {
	s := newTestScene()
	s.SetLogger(discardLogger())
	s.Root().AddChild(NewBitmap("b", "nope.png", ImageLoaderFunc(func(string) (*ebiten.Image, error) {
		return nil, ErrInvalidArgument
	})))
	traverseScene(s)
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestGeoM(t *testing.T) {
	m := [6]float64{2, 0.5, -0.5, 3, 10, 20}
	g := geoM(m)
	x, y := g.Apply(1, 1)
	wx, wy := transformPoint(m, 1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}

func TestDrawSmoke(t *testing.T) {
	s := newTestScene()
	s.ClearColor = MustParseColor("#202020")
	w := newTestWidget(t, 10, 10, 40, 40)
	w.SetBitmap(ebiten.NewImage(4, 4), 2, 2).
		SetCircles(CircleSpec{Color: MustParseColor("red"), X: 20, Y: 20, Radius: 5})
	s.Root().AddChild(w.Assemble(true))

	s.Draw(ebiten.NewImage(64, 64))
	if len(s.commands) != 3 {
		t.Errorf("commands = %d, want region, bitmap, circle", len(s.commands))
	}
}
