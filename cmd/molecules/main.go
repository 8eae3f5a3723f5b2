// Command molecules renders the molecules described by an HCL scene file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phanxgames/molecule"
	"github.com/phanxgames/molecule/internal/cli"
	"github.com/phanxgames/molecule/internal/config"
	"github.com/phanxgames/molecule/internal/logging"
	"github.com/phanxgames/molecule/internal/scenefile"
)

// main is the entrypoint for the molecules application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses arguments, builds the scene, and opens the window.
func run(outW, logW io.Writer, args []string) error {
	scene, runCfg, shouldExit, err := setup(outW, logW, args)
	if err != nil || shouldExit {
		return err
	}
	return molecule.Run(scene, runCfg)
}

// setup does everything short of opening a window so it can be tested
// headlessly.
func setup(outW, logW io.Writer, args []string) (*molecule.Scene, molecule.RunConfig, bool, error) {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil || shouldExit {
		return nil, molecule.RunConfig{}, shouldExit, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, molecule.RunConfig{}, false, err
	}
	opts.Apply(&cfg)

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, logW)
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "scene", cfg.Scene.File, "debug", cfg.Debug)

	file, err := scenefile.Load(cfg.Scene.File)
	if err != nil {
		return nil, molecule.RunConfig{}, false, err
	}
	built, err := file.Build(scenefile.Options{Logger: logger})
	if err != nil {
		return nil, molecule.RunConfig{}, false, fmt.Errorf("build scene %s: %w", cfg.Scene.File, err)
	}

	scene := molecule.NewScene()
	scene.SetLogger(logger)
	scene.SetDebugMode(cfg.Debug)
	scene.ClearColor = built.Background
	scene.ScreenshotDir = cfg.Screenshot.Dir
	for i, w := range built.Widgets {
		scene.Root().AddChild(w.Assemble(built.Borders[i]))
	}
	logger.Info("scene ready", "file", cfg.Scene.File, "molecules", len(built.Widgets))

	if cfg.Script != "" {
		if err := attachScript(scene, cfg.Script); err != nil {
			return nil, molecule.RunConfig{}, false, err
		}
	}

	return scene, molecule.RunConfig{
		Title:   cfg.Window.Title,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		ShowFPS: cfg.Window.FPS,
	}, false, nil
}

// attachScript replays a JSON test script and quits once it has finished
// and the last screenshot frame has been drawn.
func attachScript(scene *molecule.Scene, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	runner, err := molecule.LoadTestScript(data)
	if err != nil {
		return err
	}
	scene.SetTestRunner(runner)

	grace := 1
	scene.SetUpdateFunc(func() error {
		if !runner.Done() || scene.PendingInput() > 0 {
			return nil
		}
		if grace > 0 {
			grace--
			return nil
		}
		scene.Logger().Info("script finished", "script", path)
		return molecule.ErrQuit
	})
	return nil
}
