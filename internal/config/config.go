// Package config loads application settings for the molecules binary from
// defaults, an optional config file, and MOLECULE_-prefixed environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/phanxgames/molecule/internal/logging"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "MOLECULE_CONFIG"

// Config holds application configuration.
type Config struct {
	Window     WindowConfig     `mapstructure:"window"`
	Scene      SceneConfig      `mapstructure:"scene"`
	Log        LogConfig        `mapstructure:"log"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Debug      bool             `mapstructure:"debug"`
	// Script is an optional JSON test script replayed against the scene.
	Script string `mapstructure:"script"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	FPS    bool   `mapstructure:"fps"`
}

// SceneConfig points at the HCL scene description.
type SceneConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScreenshotConfig holds screenshot settings.
type ScreenshotConfig struct {
	Dir string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.title", "Molecules")
	v.SetDefault("window.width", 640)
	v.SetDefault("window.height", 480)
	v.SetDefault("window.fps", false)
	v.SetDefault("scene.file", "scene.hcl")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("screenshot.dir", "screenshots")
	v.SetDefault("debug", false)
	v.SetDefault("script", "")
}

// Load reads configuration. path, when non-empty, names the config file and
// must exist; otherwise MOLECULE_CONFIG is consulted, and finally a file
// named "molecules" (yaml, toml or json) is searched for in the working
// directory and $HOME/.config/molecules. Env var overrides use prefix
// MOLECULE_, e.g. MOLECULE_WINDOW_WIDTH.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("molecules")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "molecules"))
		}
	}

	v.SetEnvPrefix("MOLECULE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Log.Format)
	}
	return nil
}
