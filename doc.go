// Package molecule renders hover-reactive "molecule" widgets with [Ebitengine].
//
// A molecule is a positioned container holding an invisible hit region, an
// optional bitmap, and a set of decorative circles. While the pointer is over
// the region the circles grow one unit per frame up to a maximum radius; when
// it leaves they shrink back. The container can follow a looping waypoint
// path driven by [gween].
//
// # Quick start
//
//	scene := molecule.NewScene()
//
//	w, err := molecule.New(100, 80, 120, 120, molecule.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.SetImage("assets/atom.png", 20, 20).
//		SetCircles(
//			molecule.CircleSpec{Color: molecule.MustParseColor("#e04040"), X: 10, Y: 10, Radius: 4},
//			molecule.CircleSpec{Color: molecule.MustParseColor("steelblue"), X: 110, Y: 110, Radius: 4},
//		).
//		SetAnimationPath([]molecule.Vec2{{X: -10, Y: -15}, {X: -5, Y: -15}, {X: 0, Y: 0}})
//	scene.Root().AddChild(w.Assemble(true))
//
//	molecule.Run(scene, molecule.RunConfig{Title: "Molecules", Width: 640, Height: 480})
//
// The container returned by [Widget.Assemble] advances its own path tween and
// radius from [Scene.Update]; call [Widget.Tick] yourself only when driving a
// widget outside a scene.
//
// # Scene graph
//
// Every visual element is a [Node]: containers group children, bitmaps draw
// an image, and shapes draw a sealed [Graphics]. Children inherit their
// parent's transform and alpha and are drawn in ZIndex order. Pointer
// enter/leave/move/click events are dispatched to the topmost interactable
// node under the cursor.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package molecule
