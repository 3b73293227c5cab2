package nativeapp

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConfigFile is the configuration file name looked up in the working directory.
const ConfigFile = "nativeapp.toml"

// Engine kinds accepted in EngineConfig.Kind.
const (
	EngineNop      = "nop"
	EngineRecorder = "recorder"
	EngineNative   = "native"
)

// DefaultFrameRate is the display refresh rate assumed when none is configured.
const DefaultFrameRate = 60

// Config is the nativeapp.toml layout. Every field can be overridden from
// the environment.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Run    RunConfig    `toml:"run"`
	Log    LogConfig    `toml:"log"`
}

// EngineConfig selects and parameterises the engine behind created Apps.
type EngineConfig struct {
	// Kind is "nop", "recorder" or "native"
	Kind string `toml:"kind" env:"NATIVEAPP_ENGINE"`
	// LibPath is the native_app library to load when Kind is "native".
	// Empty means search the default locations.
	LibPath string `toml:"lib_path" env:"NATIVEAPP_LIB_PATH"`
	// Revision is the ios_view_obj revision (1 or 2, 0 negotiates). The
	// exported C library has its revision fixed at build time and refuses a
	// conflicting value here.
	Revision int `toml:"revision" env:"NATIVEAPP_REVISION"`
	// MaximumFrames is the display's maximum frames per second, forwarded
	// to the engine unchanged. 0 means unknown.
	MaximumFrames int32 `toml:"maximum_frames" env:"NATIVEAPP_MAXIMUM_FRAMES"`
}

// RunConfig drives the development runner.
type RunConfig struct {
	FPS    int `toml:"fps" env:"NATIVEAPP_FPS"`
	Frames int `toml:"frames" env:"NATIVEAPP_FRAMES"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `toml:"level" env:"NATIVEAPP_LOG_LEVEL"`
	Development bool   `toml:"development" env:"NATIVEAPP_LOG_DEVELOPMENT"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Kind:          EngineNop,
			Revision:      int(RevisionAuto),
			MaximumFrames: DefaultFrameRate,
		},
		Run: RunConfig{
			FPS:    DefaultFrameRate,
			Frames: 120,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path on top of the defaults and then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// SaveConfig writes config to path.
func SaveConfig(path string, config Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Validate checks the values LoadConfig cannot fix up on its own.
func (c Config) Validate() error {
	switch c.Engine.Kind {
	case EngineNop, EngineRecorder, EngineNative:
	default:
		return fmt.Errorf("engine.kind: unknown engine %q", c.Engine.Kind)
	}
	switch Revision(c.Engine.Revision) {
	case RevisionAuto, Revision1, Revision2:
	default:
		return fmt.Errorf("engine.revision: unknown revision %d", c.Engine.Revision)
	}
	if c.Engine.MaximumFrames < 0 {
		return fmt.Errorf("engine.maximum_frames: must be >= 0, got %d", c.Engine.MaximumFrames)
	}
	if c.Run.FPS < 0 {
		return fmt.Errorf("run.fps: must be >= 0, got %d", c.Run.FPS)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NewLogger builds a zap logger from the [log] section.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
