package molecule

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// ShowFPS adds an FPS/TPS overlay in the top-left corner.
	ShowFPS bool
	// Resizable lets the user resize the window; the layout follows it.
	Resizable bool
}

// ErrQuit may be returned from a Scene update func to end Run cleanly.
var ErrQuit = errors.New("molecule: quit")

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
	cfg   RunConfig
}

func (g *game) Update() error { return g.scene.Update() }

func (g *game) Draw(screen *ebiten.Image) { g.scene.Draw(screen) }

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Resizable {
		return outsideWidth, outsideHeight
	}
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and runs the scene until the window closes or the update
// func returns an error. ErrQuit is not reported as an error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if cfg.ShowFPS {
		fps := NewFPSWidget()
		fps.SetZIndex(1 << 20)
		scene.Root().AddChild(fps)
	}

	err := ebiten.RunGame(&game{scene: scene, cfg: cfg})
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}
