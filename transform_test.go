package molecule

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransform(t *testing.T) {
	cases := []struct {
		name  string
		setup func(n *Node)
		want  [6]float64
	}{
		{"identity", func(*Node) {}, identityTransform},
		{"translation", func(n *Node) { n.X, n.Y = 10, 20 }, [6]float64{1, 0, 0, 1, 10, 20}},
		{"scale", func(n *Node) { n.ScaleX, n.ScaleY = 2, 3 }, [6]float64{2, 0, 0, 3, 0, 0}},
		{"rotation 90", func(n *Node) { n.Rotation = math.Pi / 2 }, [6]float64{0, 1, -1, 0, 0, 0}},
		{"pivot", func(n *Node) { n.X, n.Y, n.PivotX, n.PivotY = 100, 200, 16, 16 }, [6]float64{1, 0, 0, 1, 84, 184}},
		{"scale and rotation", func(n *Node) {
			n.X, n.Y = 50, 100
			n.ScaleX, n.ScaleY = 2, 2
			n.Rotation = math.Pi / 2
		}, [6]float64{0, 2, -2, 0, 50, 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewContainer("n")
			tc.setup(n)
			assertMatrix(t, tc.name, computeLocalTransform(n), tc.want)
		})
	}
}

// --- Affine helpers ---

func TestMultiplyAffine(t *testing.T) {
	m := [6]float64{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)

	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 7}
	assertMatrix(t, "translations", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 15, 27})
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 0.5, -0.3, 1.5, 40, -12}
	assertMatrix(t, "m*inv(m)", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	assertMatrix(t, "zero x scale", invertAffine([6]float64{0, 0, 0, 1, 10, 20}), identityTransform)
	assertMatrix(t, "zero scale", invertAffine([6]float64{0, 0, 0, 0, 50, 100}), identityTransform)
}

// --- updateWorldTransform ---

func TestWorldTransformParentChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.X = 100
	child.X = 10

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.tx", parent.worldTransform[4], 100)
	assertNear(t, "child.tx", child.worldTransform[4], 110)
}

func TestAlphaPropagation(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.Alpha = 0.5
	child.Alpha = 0.5

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.worldAlpha", parent.worldAlpha, 0.5)
	assertNear(t, "child.worldAlpha", child.worldAlpha, 0.25)
}

func TestDirtyFlagSkipsClean(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	child.X = 10
	updateWorldTransform(parent, identityTransform, 1.0, false)

	child.X = 999 // field write without a setter leaves the node clean
	updateWorldTransform(parent, identityTransform, 1.0, false)
	assertNear(t, "stale child.tx", child.worldTransform[4], 10)

	child.MarkDirty()
	updateWorldTransform(parent, identityTransform, 1.0, false)
	assertNear(t, "child.tx", child.worldTransform[4], 999)
}

func TestParentMovePropagates(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	child.X = 10
	updateWorldTransform(parent, identityTransform, 1.0, false)

	parent.SetPosition(200, 0)
	updateWorldTransform(parent, identityTransform, 1.0, false)
	assertNear(t, "child.tx", child.worldTransform[4], 210)
}

func TestDeepHierarchy(t *testing.T) {
	nodes := make([]*Node, 10)
	for i := range nodes {
		nodes[i] = NewContainer("")
		nodes[i].X = 10
		if i > 0 {
			nodes[i-1].AddChild(nodes[i])
		}
	}
	updateWorldTransform(nodes[0], identityTransform, 1.0, false)
	assertNear(t, "deep.tx", nodes[9].worldTransform[4], 100)
}

// --- Coordinate conversion ---

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.SetPosition(100, 50)
	child.SetPosition(10, 20)
	child.SetScale(2, 3)
	child.SetRotation(math.Pi / 6)

	updateWorldTransform(parent, identityTransform, 1.0, false)

	lx, ly := child.WorldToLocal(150, 80)
	wx, wy := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx, 150)
	assertNear(t, "roundtrip.y", wy, 80)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	n := NewContainer("n")
	n.SetScale(0, 0)
	updateWorldTransform(n, identityTransform, 1.0, true)

	lx, ly := n.WorldToLocal(100, 200)
	assertNear(t, "lx", lx, 100)
	assertNear(t, "ly", ly, 200)
}

// --- Setters ---

func TestSettersMarkDirty(t *testing.T) {
	setters := map[string]func(n *Node){
		"SetPosition": func(n *Node) { n.SetPosition(1, 2) },
		"SetScale":    func(n *Node) { n.SetScale(2, 2) },
		"SetRotation": func(n *Node) { n.SetRotation(1) },
		"SetPivot":    func(n *Node) { n.SetPivot(5, 5) },
		"SetAlpha":    func(n *Node) { n.SetAlpha(0.5) },
		"MarkDirty":   func(n *Node) { n.MarkDirty() },
	}
	for name, set := range setters {
		n := NewContainer("n")
		n.transformDirty = false
		set(n)
		if !n.transformDirty {
			t.Errorf("%s should mark the node dirty", name)
		}
	}
}

func BenchmarkUpdateWorldTransform10k(b *testing.B) {
	root := NewContainer("root")
	for i := 0; i < 100; i++ {
		parent := NewContainer("")
		parent.X = float64(i)
		root.AddChild(parent)
		for j := 0; j < 100; j++ {
			child := NewContainer("")
			child.X = float64(j)
			parent.AddChild(child)
		}
	}
	updateWorldTransform(root, identityTransform, 1.0, true)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		root.transformDirty = true
		updateWorldTransform(root, identityTransform, 1.0, false)
	}
}
