package molecule

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultCommandCap = 256

// Scene is the top-level object that owns the node tree, input state, and
// render buffers.
type Scene struct {
	root   *Node
	debug  bool
	logger *slog.Logger

	// ClearColor fills the target before drawing. A zero alpha skips the fill.
	ClearColor Color

	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string

	antiAlias  bool
	updateFunc func() error

	// Render state
	commands []renderCommand

	// Input state
	handlers    handlerRegistry
	pointers    [1]pointerState
	pointer     PointerSource
	hitBuf      []*Node
	injectQueue []syntheticPointerEvent

	// Automation
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewScene creates a new scene with a pre-created, interactable root container
// that reads live input from the Ebitengine cursor.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		root:          root,
		logger:        slog.Default(),
		ScreenshotDir: "screenshots",
		antiAlias:     true,
		commands:      make([]renderCommand, 0, defaultCommandCap),
		pointer:       ebitenPointer{},
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetLogger replaces the scene logger. Nil restores slog.Default.
func (s *Scene) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l
	if s.debug {
		debugLogger = l
	}
}

// Logger returns the scene logger.
func (s *Scene) Logger() *slog.Logger {
	return s.logger
}

// SetPointerSource replaces the live pointer. Nil disables live input;
// injected events are still processed.
func (s *Scene) SetPointerSource(p PointerSource) {
	s.pointer = p
}

// SetAntiAlias toggles anti-aliasing of shape triangles.
func (s *Scene) SetAntiAlias(enabled bool) {
	s.antiAlias = enabled
}

// SetUpdateFunc registers a callback run at the end of every Update. A
// non-nil error is returned from Update, which ends the game loop under Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = s.logger
}

// Update advances one frame using ebiten's tick rate for the delta.
func (s *Scene) Update() error {
	return s.UpdateDelta(1.0 / float64(ebiten.TPS()))
}

// UpdateDelta advances one frame of dt seconds: world transforms are
// refreshed, the test runner steps, input is processed, node OnUpdate hooks
// run, then the update func.
func (s *Scene) UpdateDelta(dt float64) error {
	// Refresh world transforms first so hit testing sees this frame's
	// positions.
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
	updateNodes(s.root, dt)

	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// Draw clears the target to ClearColor, traverses the scene tree emitting
// render commands, submits them to target, and writes queued screenshots.
func (s *Scene) Draw(target *ebiten.Image) {
	if s.ClearColor.A > 0 {
		target.Fill(s.ClearColor.toRGBA())
	}
	s.commands = s.commands[:0]

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.traverse(s.root, identityTransform, 1.0, false)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	s.submit(target)

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.drawCallCount = countDrawCalls(s.commands)
		s.debugLog(stats)
	}

	s.flushScreenshots(target)
}
