// Package config loads scenedit settings.
//
// Settings are read from a TOML or YAML file (chosen by extension) over
// built-in defaults, then overridden by SCENEDIT_* environment
// variables:
//
//	[logging]
//	level = "debug"
//
//	[input]
//	capture_key = "F12"
//
//	[[input.bindings]]
//	command = "orbit"
//	kind = "drag"
//	trigger = "middle"
//
//	[render]
//	reverse_depth = true
//
//	[render.style]
//	background = "#1a1a1f"
//
// Environment variables use the section as a prefix, for example
// SCENEDIT_RENDER_REVERSE_DEPTH=true or SCENEDIT_LOGGING_LEVEL=debug.
// A Watcher reloads the file when it changes on disk.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/scenedit/internal/dispatcher"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCENEDIT_"

// DefaultFileName is looked up in the user config dir.
const DefaultFileName = "scenedit.toml"

// Config is the full set of settings.
type Config struct {
	Logging   LoggingConfig   `toml:"logging" yaml:"logging" envPrefix:"LOGGING_"`
	Input     InputConfig     `toml:"input" yaml:"input" envPrefix:"INPUT_"`
	Render    RenderConfig    `toml:"render" yaml:"render" envPrefix:"RENDER_"`
	GLContext GLContextConfig `toml:"glcontext" yaml:"glcontext" envPrefix:"GLCONTEXT_"`
	Capture   CaptureConfig   `toml:"capture" yaml:"capture" envPrefix:"CAPTURE_"`
	Scripts   ScriptsConfig   `toml:"scripts" yaml:"scripts" envPrefix:"SCRIPTS_"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Input: InputConfig{
			CaptureKey: "F12",
		},
		Render: RenderConfig{
			Width:  640,
			Height: 480,
			Style: StyleConfig{
				Fill:          true,
				Edges:         true,
				Background:    RGBA(26, 26, 31, 255),
				EdgeColor:     RGBA(0, 0, 0, 255),
				CentroidColor: RGBA(51, 153, 255, 255),
				CornerColor:   RGBA(255, 255, 255, 255),
				SelectionFill: RGBA(255, 153, 26, 255),
				SelectionEdge: RGBA(255, 204, 51, 255),
				EdgeWidth:     1,
				PointSize:     3,
			},
		},
		GLContext: GLContextConfig{
			PoolSize: 2,
		},
		Scripts: ScriptsConfig{
			Timeout: Duration(100 * time.Millisecond),
		},
	}
}

// DefaultPath returns the user config file path, or "" when the user
// config dir is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scenedit", DefaultFileName)
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// ApplyEnv overrides settings from SCENEDIT_* variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

var levels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks values that would otherwise fail later during
// startup.
func (c *Config) Validate() error {
	var errs []error
	if !levels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level})
	}
	if c.GLContext.PoolSize < 0 {
		errs = append(errs, &ValidationError{Path: "glcontext.pool_size", Message: "must not be negative", Value: c.GLContext.PoolSize})
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, &ValidationError{Path: "render", Message: "viewport size must be positive", Value: fmt.Sprintf("%dx%d", c.Render.Width, c.Render.Height)})
	}
	for i, b := range c.Input.Bindings {
		path := fmt.Sprintf("input.bindings[%d]", i)
		if b.Command == "" {
			errs = append(errs, &ValidationError{Path: path + ".command", Message: "required", Value: b.Command})
		}
		if _, err := dispatcher.ParseKind(b.Kind); err != nil {
			errs = append(errs, &ValidationError{Path: path + ".kind", Message: err.Error(), Value: b.Kind})
		}
	}
	for i, sc := range c.Scripts.Commands {
		if sc.Name == "" || sc.Function == "" {
			errs = append(errs, &ValidationError{Path: fmt.Sprintf("scripts.commands[%d]", i), Message: "name and function are required", Value: sc})
		}
	}
	return errors.Join(errs...)
}
