package scenefile

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/molecule"
)

func TestLoad_Testdata(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "scene.hcl"))
	require.NoError(t, err)
	require.Equal(t, "#1e1b2e", f.Background)
	require.Len(t, f.Molecules, 2)

	water := f.Molecules[0]
	require.Equal(t, "water", water.Name)
	require.Equal(t, 140.0, water.Height)
	require.Equal(t, 120.0, water.Width)
	require.True(t, water.Border)
	require.NotNil(t, water.MaxRadius)
	require.Equal(t, 24, *water.MaxRadius)
	require.Equal(t, "5s", water.Duration)
	require.Equal(t, []float64{-10, -15, -5, -15, 0, 0}, water.Path)
	require.NotNil(t, water.Image)
	require.Equal(t, "atom.png", water.Image.URL)
	require.Len(t, water.Circles, 2)
	require.Equal(t, "steelblue", water.Circles[0].Color)

	salt := f.Molecules[1]
	require.Nil(t, salt.MaxRadius)
	require.Nil(t, salt.Image)
	require.Empty(t, salt.Circles)
	require.Equal(t, "guide", salt.PathMode)
}

func TestBuild_Testdata(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "scene.hcl"))
	require.NoError(t, err)

	var requested []string
	loader := molecule.ImageLoaderFunc(func(url string) (*ebiten.Image, error) {
		requested = append(requested, url)
		return nil, errors.New("not loaded in tests")
	})

	sc, err := f.Build(Options{ImageLoader: loader})
	require.NoError(t, err)
	require.Equal(t, []string{"water", "salt"}, sc.Names)
	require.Equal(t, []bool{true, false}, sc.Borders)
	require.Len(t, sc.Widgets, 2)
	require.InDelta(t, 0x1e/255.0, sc.Background.R, 1e-9)
	require.Equal(t, 1.0, sc.Background.A)

	water := sc.Widgets[0]
	cfg := water.Config()
	require.Equal(t, 24, cfg.MaxRadius)
	require.Equal(t, 5*time.Second, cfg.AnimationDuration)
	require.Equal(t, 2, water.NumCircles())
	require.Equal(t, []molecule.Vec2{
		{X: 10, Y: 10}, {X: 0, Y: -5}, {X: 5, Y: -5}, {X: 10, Y: 10}, {X: 10, Y: 10},
	}, water.Waypoints())

	container := water.Assemble(true)
	require.Equal(t, 4, container.NumChildren())
	require.Equal(t, filepath.Join("testdata", "atom.png"), container.ChildAt(1).BitmapURL())
	require.Empty(t, requested, "images load lazily on draw")

	salt := sc.Widgets[1]
	require.Equal(t, molecule.PathGuide, salt.Config().PathMode)
	require.Nil(t, salt.PathTween())
	require.Equal(t, molecule.DefaultMaxRadius, salt.Config().MaxRadius)
}

func TestParse_Expressions(t *testing.T) {
	src := `
molecule "a" {
  x          = max(10, 40 - 8)
  y          = abs(-12)
  height     = floor(20.7)
  width      = ceil(19.2)
  max_radius = defaults.max_radius / 2
  min_radius = min(3, defaults.min_radius + 1)
  duration   = defaults.duration
}`
	f, err := Parse([]byte(src), "expr.hcl")
	require.NoError(t, err)
	require.Len(t, f.Molecules, 1)

	m := f.Molecules[0]
	require.Equal(t, 32.0, m.X)
	require.Equal(t, 12.0, m.Y)
	require.Equal(t, 20.0, m.Height)
	require.Equal(t, 20.0, m.Width)
	require.NotNil(t, m.MaxRadius)
	require.Equal(t, 15, *m.MaxRadius)
	require.Equal(t, 1, m.MinRadius)
	require.Equal(t, "7s", m.Duration)

	_, err = Parse([]byte(`molecule "a" {
  x = nope(1)
  y = 0
  height = 1
  width = 1
}`), "expr.hcl")
	require.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", `molecule "a" {`},
		{"missing required", `molecule "a" { x = 1 }`},
		{"unknown attribute", `colour = "red"`},
		{"duplicate name", `
molecule "a" {
  x = 0
  y = 0
  height = 1
  width = 1
}
molecule "a" {
  x = 0
  y = 0
  height = 1
  width = 1
}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "bad.hcl")
			require.Error(t, err)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	base := `
molecule "a" {
  x = 0
  y = 0
  height = 10
  width = 10
  %s
}`
	cases := map[string]string{
		"odd path":      `path = [1, 2, 3]`,
		"bad color":     "circle {\n color = \"notacolor\"\n x = 0\n y = 0\n r = 1\n}",
		"bad duration":  `duration = "soon"`,
		"bad path mode": `path_mode = "spiral"`,
		"bad easing":    `easing = "wobble"`,
		"bad radius":    "min_radius = 5\n max_radius = 2",
		"zero max":      `max_radius = 0`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			src := []byte(fmt.Sprintf(base, body))
			f, err := Parse(src, "bad.hcl")
			require.NoError(t, err)
			_, err = f.Build(Options{})
			require.Error(t, err)
		})
	}

	f, err := Parse([]byte(fmt.Sprintf(base, `max_radius = 0`)), "zero.hcl")
	require.NoError(t, err)
	_, err = f.Build(Options{})
	require.ErrorIs(t, err, molecule.ErrInvalidArgument)
	require.Contains(t, err.Error(), "max_radius must be positive")

	f, err = Parse([]byte(`background = "plaid"`), "bg.hcl")
	require.NoError(t, err)
	_, err = f.Build(Options{})
	require.ErrorIs(t, err, molecule.ErrInvalidArgument)
}

func TestResolveURL(t *testing.T) {
	f := &File{dir: "scenes"}
	require.Equal(t, filepath.Join("scenes", "a.png"), f.resolveURL("a.png"))
	require.Equal(t, "https://example.com/a.png", f.resolveURL("https://example.com/a.png"))
	require.Equal(t, "file:///tmp/a.png", f.resolveURL("file:///tmp/a.png"))

	abs, err := filepath.Abs("a.png")
	require.NoError(t, err)
	require.Equal(t, abs, f.resolveURL(abs))

	require.Equal(t, "a.png", (&File{dir: "."}).resolveURL("a.png"))
}
