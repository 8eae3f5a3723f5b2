// Package cli parses the molecules command line, validates it, and carries
// process-level concerns like exit codes. Flags that the user sets override
// values loaded from the config file.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phanxgames/molecule/internal/config"
	"github.com/phanxgames/molecule/internal/logging"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line. Empty strings and unset booleans
// mean "keep the config value".
type Options struct {
	ConfigPath    string
	SceneFile     string
	LogLevel      string
	LogFormat     string
	Script        string
	ScreenshotDir string
	Debug         *bool
	ShowFPS       *bool
}

// Parse processes command-line arguments. It returns the parsed Options, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("molecules", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Molecules - hover-reactive molecule widgets rendered with Ebitengine.

Usage:
  molecules [options] [SCENE_FILE]

Arguments:
  SCENE_FILE
    Path to an .hcl scene file. Defaults to scene.file from the config.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a config file (yaml, toml or json).")
	sceneFlag := flagSet.String("scene", "", "Path to the scene file.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	scriptFlag := flagSet.String("script", "", "JSON test script to replay; the program exits when it finishes.")
	shotsFlag := flagSet.String("screenshot-dir", "", "Directory for screenshots taken by a test script.")
	debugFlag := flagSet.Bool("debug", false, "Enable debug checks and per-frame stats.")
	fpsFlag := flagSet.Bool("fps", false, "Show an FPS overlay.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	opts := &Options{
		ConfigPath:    *configFlag,
		SceneFile:     *sceneFlag,
		LogLevel:      strings.ToLower(*logLevelFlag),
		LogFormat:     strings.ToLower(*logFormatFlag),
		Script:        *scriptFlag,
		ScreenshotDir: *shotsFlag,
	}
	if opts.SceneFile == "" && flagSet.NArg() > 0 {
		opts.SceneFile = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected at most one scene file argument"}
	}
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			opts.Debug = debugFlag
		case "fps":
			opts.ShowFPS = fpsFlag
		}
	})

	if opts.LogFormat != "" && opts.LogFormat != "text" && opts.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	if opts.LogLevel != "" {
		if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
			return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
		}
	}

	slog.Debug("CLI parser finished successfully.", "options", opts)
	return opts, false, nil
}

// Apply copies every option the user set onto cfg.
func (o *Options) Apply(cfg *config.Config) {
	if o.SceneFile != "" {
		cfg.Scene.File = o.SceneFile
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	if o.Script != "" {
		cfg.Script = o.Script
	}
	if o.ScreenshotDir != "" {
		cfg.Screenshot.Dir = o.ScreenshotDir
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.ShowFPS != nil {
		cfg.Window.FPS = *o.ShowFPS
	}
}
