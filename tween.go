package molecule

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PathMode selects how a PathTween interpolates between waypoints.
type PathMode uint8

const (
	// PathLinear moves along straight segments between consecutive waypoints.
	PathLinear PathMode = iota
	// PathGuide treats the waypoints as a motion guide: after the start point,
	// points alternate between the control and end point of quadratic curves.
	// A guide needs an odd number of points (at least 3).
	PathGuide
)

// String returns the scene-file spelling of the mode.
func (m PathMode) String() string {
	if m == PathGuide {
		return "guide"
	}
	return "linear"
}

// ParsePathMode parses "linear" or "guide". The empty string is linear.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return PathLinear, nil
	case "guide":
		return PathGuide, nil
	}
	return PathLinear, fmt.Errorf("%w: unknown path mode %q", ErrInvalidArgument, s)
}

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"in-quad":        ease.InQuad,
	"out-quad":       ease.OutQuad,
	"in-out-quad":    ease.InOutQuad,
	"in-cubic":       ease.InCubic,
	"out-cubic":      ease.OutCubic,
	"in-out-cubic":   ease.InOutCubic,
	"in-sine":        ease.InSine,
	"out-sine":       ease.OutSine,
	"in-out-sine":    ease.InOutSine,
	"out-bounce":     ease.OutBounce,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
}

// EasingByName returns the gween easing func registered under name, e.g.
// "linear" or "in-out-sine". The empty string is linear.
func EasingByName(name string) (ease.TweenFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrInvalidArgument, name)
	}
	return fn, nil
}

// EasingNames lists the accepted easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for k := range easings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// pathLeg is one waypoint list traversed over a fixed duration.
type pathLeg struct {
	points []Vec2
	mode   PathMode
	tween  *gween.Tween // progress 0..1

	// Cumulative length at the end of each segment, used for linear
	// arc-length parametrization and for guide segment selection.
	cum   []float64
	total float64
}

// PathTween moves a node's X/Y through one or more legs of waypoints and
// loops back to the first leg when the last one finishes. Call Update(dt)
// each frame. If the target node is disposed, the tween stops.
type PathTween struct {
	target  *Node
	legs    []*pathLeg
	current int
	loops   int

	// Done is set once the target is disposed. A looping tween never
	// finishes on its own.
	Done bool
}

// NewPathTween creates an empty looping tween for target. Until a leg is
// added, Update does nothing.
func NewPathTween(target *Node) *PathTween {
	return &PathTween{target: target}
}

// AddLeg appends a leg that visits points over duration seconds using fn for
// progress easing (nil means linear). A guide leg with an even or too small
// point count falls back to linear and logs a warning on logger.
func (t *PathTween) AddLeg(points []Vec2, duration float32, mode PathMode, fn ease.TweenFunc, logger *slog.Logger) {
	if fn == nil {
		fn = ease.Linear
	}
	if mode == PathGuide && (len(points) < 3 || len(points)%2 == 0) {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("guide path needs an odd number of points; using linear",
			"points", len(points))
		mode = PathLinear
	}
	pts := make([]Vec2, len(points))
	copy(pts, points)
	leg := &pathLeg{
		points: pts,
		mode:   mode,
		tween:  gween.New(0, 1, duration, fn),
	}
	leg.measure()
	t.legs = append(t.legs, leg)
}

// Legs returns the number of legs.
func (t *PathTween) Legs() int {
	return len(t.legs)
}

// Loops returns how many times the tween has completed all of its legs.
func (t *PathTween) Loops() int {
	return t.loops
}

// Update advances the active leg by dt seconds, writes the interpolated
// position to the target, and marks it dirty.
func (t *PathTween) Update(dt float32) {
	if t.Done || len(t.legs) == 0 {
		return
	}
	if t.target != nil && t.target.IsDisposed() {
		t.Done = true
		return
	}

	leg := t.legs[t.current]
	progress, finished := leg.tween.Update(dt)
	pos := leg.at(float64(progress))

	if finished {
		pos = leg.points[len(leg.points)-1]
		leg.tween.Reset()
		t.current++
		if t.current >= len(t.legs) {
			t.current = 0
			t.loops++
		}
	}

	if t.target != nil {
		t.target.SetPosition(pos.X, pos.Y)
	}
}

// measure fills cum and total for the leg's mode.
func (l *pathLeg) measure() {
	l.cum = l.cum[:0]
	l.total = 0
	switch l.mode {
	case PathGuide:
		for i := 0; i+2 < len(l.points); i += 2 {
			l.total += quadLength(l.points[i], l.points[i+1], l.points[i+2])
			l.cum = append(l.cum, l.total)
		}
	default:
		for i := 0; i+1 < len(l.points); i++ {
			l.total += dist(l.points[i], l.points[i+1])
			l.cum = append(l.cum, l.total)
		}
	}
}

// at returns the position at progress p in [0, 1].
func (l *pathLeg) at(p float64) Vec2 {
	switch len(l.points) {
	case 0:
		return Vec2{}
	case 1:
		return l.points[0]
	}
	if p <= 0 {
		return l.points[0]
	}
	if p >= 1 {
		return l.points[len(l.points)-1]
	}

	segs := len(l.cum)
	var seg int
	var local float64
	if l.total == 0 {
		// Zero-length leg: equal time per segment.
		f := p * float64(segs)
		seg = min(int(f), segs-1)
		local = f - float64(seg)
	} else {
		d := p * l.total
		seg = sort.SearchFloat64s(l.cum, d)
		if seg >= segs {
			seg = segs - 1
		}
		start := 0.0
		if seg > 0 {
			start = l.cum[seg-1]
		}
		if span := l.cum[seg] - start; span > 0 {
			local = (d - start) / span
		}
	}

	if l.mode == PathGuide {
		return quadAt(l.points[2*seg], l.points[2*seg+1], l.points[2*seg+2], local)
	}
	a, b := l.points[seg], l.points[seg+1]
	return Vec2{X: a.X + (b.X-a.X)*local, Y: a.Y + (b.Y-a.Y)*local}
}

func dist(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// quadAt evaluates the quadratic Bezier (a, c, b) at t.
func quadAt(a, c, b Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
	}
}

// quadLength approximates the arc length of a quadratic Bezier by sampling.
func quadLength(a, c, b Vec2) float64 {
	const steps = 10
	total := 0.0
	prev := a
	for i := 1; i <= steps; i++ {
		p := quadAt(a, c, b, float64(i)/steps)
		total += dist(prev, p)
		prev = p
	}
	return total
}
