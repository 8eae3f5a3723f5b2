package molecule

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Widget defaults.
const (
	DefaultMaxRadius         = 30
	DefaultMinRadius         = 0
	DefaultAnimationDuration = 7 * time.Second
)

// Hit region styling. The fill is nearly transparent so the region receives
// pointer events without being visible.
var (
	regionFill   = Color{R: 1, G: 1, B: 1, A: 0.01}
	regionBorder = MustParseColor("brown")
)

// Config tunes a Widget. Zero fields take the package defaults.
type Config struct {
	// MaxRadius is the radius circles grow to while hovered. Zero means
	// DefaultMaxRadius (30), so a maximum of 0 cannot be requested.
	MaxRadius int
	// MinRadius is the radius circles shrink to while not hovered.
	MinRadius int
	// AnimationDuration is the time one path leg takes. Zero means 7s.
	AnimationDuration time.Duration
	// PathMode selects straight or motion-guide interpolation.
	PathMode PathMode
	// Easing shapes path progress. Nil means linear.
	Easing ease.TweenFunc
	// ImageLoader resolves SetImage URLs. Nil means DefaultImageLoader.
	ImageLoader ImageLoader
	// Logger receives radius changes at debug level. Nil means slog.Default.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxRadius == 0 {
		c.MaxRadius = DefaultMaxRadius
	}
	if c.AnimationDuration == 0 {
		c.AnimationDuration = DefaultAnimationDuration
	}
	if c.Easing == nil {
		c.Easing = ease.Linear
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.MinRadius < 0:
		return fmt.Errorf("%w: min radius %d is negative", ErrInvalidArgument, c.MinRadius)
	case c.MaxRadius < c.MinRadius:
		return fmt.Errorf("%w: max radius %d below min radius %d", ErrInvalidArgument, c.MaxRadius, c.MinRadius)
	case c.AnimationDuration < 0:
		return fmt.Errorf("%w: negative animation duration %s", ErrInvalidArgument, c.AnimationDuration)
	case c.PathMode > PathGuide:
		return fmt.Errorf("%w: unknown path mode %d", ErrInvalidArgument, c.PathMode)
	}
	return nil
}

// CircleSpec configures one decorative circle: its color, its center in the
// widget's local space, and its base radius. The base radius is shown until
// the first radius change, after which all circles share the widget radius.
type CircleSpec struct {
	Color  Color
	X, Y   float64
	Radius float64
}

type circle struct {
	spec CircleSpec
	node *Node
}

// Widget is a hover-reactive molecule: a container holding an invisible hit
// region, an optional bitmap, and decorative circles whose shared radius grows
// while the pointer is over the region and shrinks when it leaves. The whole
// container can follow a looping waypoint path.
//
// Configure with SetImage, SetCircles, and SetAnimationPath, then call
// Assemble once and add the returned container to a scene.
type Widget struct {
	id     uuid.UUID
	cfg    Config
	logger *slog.Logger

	x, y          float64
	height, width float64

	hovered bool
	radius  int

	container *Node
	region    *Node
	bitmap    *Node
	circles   []*circle

	tween     *PathTween
	waypoints []Vec2

	assembled bool
}

// New creates a widget whose container sits at (x, y) with a hit region of the
// given height and width. Negative or non-finite dimensions and an invalid
// radius range are rejected with an error wrapping ErrInvalidArgument.
func New(x, y, height, width float64, cfg Config) (*Widget, error) {
	for _, v := range [...]float64{x, y, height, width} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite geometry (%v, %v, %v, %v)", ErrInvalidArgument, x, y, height, width)
		}
	}
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("%w: negative size %vx%v", ErrInvalidArgument, height, width)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	container := NewContainer("molecule-" + id.String()[:8])
	container.SetPosition(x, y)
	container.Interactable = true

	return &Widget{
		id:        id,
		cfg:       cfg,
		logger:    cfg.Logger.With("widget", id.String()),
		x:         x,
		y:         y,
		height:    height,
		width:     width,
		radius:    cfg.MinRadius,
		container: container,
	}, nil
}

// ID returns the widget's unique identifier.
func (w *Widget) ID() uuid.UUID { return w.id }

// Container returns the widget's container node.
func (w *Widget) Container() *Node { return w.container }

// Hovered reports whether the pointer is over the hit region.
func (w *Widget) Hovered() bool { return w.hovered }

// Radius returns the current shared circle radius.
func (w *Widget) Radius() int { return w.radius }

// Config returns the effective configuration, defaults applied.
func (w *Widget) Config() Config { return w.cfg }

// Assembled reports whether Assemble has been called.
func (w *Widget) Assembled() bool { return w.assembled }

// SetImage attaches a bitmap loaded from url at the local offset, replacing
// any previous bitmap. Loading is deferred to the first draw; a failed load
// is logged and the bitmap shows nothing.
func (w *Widget) SetImage(url string, offsetX, offsetY float64) *Widget {
	w.replaceBitmap(NewBitmap("image", url, w.cfg.ImageLoader), offsetX, offsetY)
	return w
}

// SetBitmap is like SetImage for an image that is already in memory.
func (w *Widget) SetBitmap(img *ebiten.Image, offsetX, offsetY float64) *Widget {
	w.replaceBitmap(NewBitmapFromImage("image", img), offsetX, offsetY)
	return w
}

func (w *Widget) replaceBitmap(bm *Node, offsetX, offsetY float64) {
	bm.SetPosition(offsetX, offsetY)
	old := w.bitmap
	w.bitmap = bm
	if !w.assembled {
		return
	}
	// The bitmap sits directly above the hit region.
	if old != nil && old.Parent == w.container {
		idx := w.container.IndexOf(old)
		old.Dispose()
		w.container.AddChildAt(bm, idx)
		return
	}
	w.container.AddChildAt(bm, w.container.IndexOf(w.region)+1)
}

// SetCircles appends one circle per spec, in order. Existing circles are
// kept.
func (w *Widget) SetCircles(specs ...CircleSpec) *Widget {
	for _, spec := range specs {
		c := &circle{spec: spec, node: newCircleShape(spec, spec.Radius)}
		w.circles = append(w.circles, c)
		if w.assembled {
			w.container.AddChild(c.node)
		}
	}
	return w
}

// NumCircles returns the number of circles.
func (w *Widget) NumCircles() int { return len(w.circles) }

// Circle returns the shape node currently drawn for circle i.
func (w *Widget) Circle(i int) *Node { return w.circles[i].node }

func newCircleShape(spec CircleSpec, r float64) *Node {
	g := NewGraphics().BeginFill(spec.Color).DrawCircle(spec.X, spec.Y, r)
	return NewShape("circle", g)
}

// SetAnimationPath adds a leg to the looping path tween. The leg starts at
// the container's current position, visits origin+offset for each offset in
// order, and returns to the start. Each offset is applied to the starting
// position, not to the previous waypoint. An empty offsets list yields a leg
// that stays in place.
func (w *Widget) SetAnimationPath(offsets []Vec2) *Widget {
	origin := Vec2{X: w.container.X, Y: w.container.Y}
	pts := make([]Vec2, 0, len(offsets)+2)
	pts = append(pts, origin)
	for _, o := range offsets {
		pts = append(pts, Vec2{X: origin.X + o.X, Y: origin.Y + o.Y})
	}
	pts = append(pts, origin)

	if w.tween == nil {
		w.tween = NewPathTween(w.container)
	}
	w.tween.AddLeg(pts, float32(w.cfg.AnimationDuration.Seconds()), w.cfg.PathMode, w.cfg.Easing, w.logger)
	w.waypoints = append(w.waypoints, pts...)
	return w
}

// Waypoints returns every leg's waypoints, concatenated in leg order.
func (w *Widget) Waypoints() []Vec2 {
	out := make([]Vec2, len(w.waypoints))
	copy(out, w.waypoints)
	return out
}

// PathTween returns the widget's path tween, or nil if no path was set.
func (w *Widget) PathTween() *PathTween { return w.tween }

// PairsFromFlat converts a flat [dx0, dy0, dx1, dy1, ...] list into offsets.
func PairsFromFlat(flat []float64) ([]Vec2, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of path coordinates (%d)", ErrInvalidArgument, len(flat))
	}
	out := make([]Vec2, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, Vec2{X: flat[i], Y: flat[i+1]})
	}
	return out, nil
}

// Assemble populates and returns the container: the hit region first, then
// the bitmap if any, then every circle in insertion order. With drawBorder
// the region gets a 1px brown outline. The container's OnUpdate hook advances
// the path tween and calls Tick, so adding it to a scene animates it.
// Calling Assemble again returns the same container unchanged.
func (w *Widget) Assemble(drawBorder bool) *Node {
	if w.assembled {
		return w.container
	}
	w.assembled = true

	g := NewGraphics().BeginFill(regionFill)
	if drawBorder {
		g.BeginStroke(regionBorder, 1)
	}
	// Height spans x and width spans y, matching the constructor's order.
	g.DrawRect(0, 0, w.height, w.width)

	w.region = NewShape("hit-region", g)
	w.region.Interactable = true
	w.region.HitShape = HitRect{Width: w.height, Height: w.width}
	w.region.OnPointerEnter = func(PointerContext) { w.setHovered(true) }
	w.region.OnPointerLeave = func(PointerContext) { w.setHovered(false) }

	w.container.AddChild(w.region)
	if w.bitmap != nil {
		w.container.AddChild(w.bitmap)
	}
	for _, c := range w.circles {
		w.container.AddChild(c.node)
	}

	w.container.OnUpdate = func(dt float64) {
		if w.tween != nil {
			w.tween.Update(float32(dt))
		}
		w.Tick()
	}
	return w.container
}

// Region returns the hit region, or nil before Assemble.
func (w *Widget) Region() *Node { return w.region }

func (w *Widget) setHovered(h bool) {
	if w.hovered == h {
		return
	}
	w.hovered = h
	w.logger.Debug("hover changed", "hovered", h)
}

// Tick moves the radius one unit toward MaxRadius while hovered, or toward
// MinRadius otherwise, and rebuilds every circle at the new radius. At the
// target bound it does nothing.
func (w *Widget) Tick() {
	switch {
	case w.hovered && w.radius < w.cfg.MaxRadius:
		w.radius++
	case !w.hovered && w.radius > w.cfg.MinRadius:
		w.radius--
	default:
		return
	}
	w.logger.Debug("radius changed", "radius", w.radius)
	w.rebuildCircles()
}

// rebuildCircles replaces every circle's shape with one drawn at the current
// radius, keeping its position among the container's children.
func (w *Widget) rebuildCircles() {
	r := float64(w.radius)
	for _, c := range w.circles {
		next := newCircleShape(c.spec, r)
		old := c.node
		c.node = next
		if old.Parent == nil {
			old.Dispose()
			continue
		}
		parent := old.Parent
		idx := parent.IndexOf(old)
		old.Dispose()
		parent.AddChildAt(next, idx)
	}
}

// Dispose removes the container from its parent and releases every node the
// widget owns. The path tween stops on its next update.
func (w *Widget) Dispose() {
	w.container.Dispose()
	w.region = nil
	w.bitmap = nil
	w.circles = nil
}
