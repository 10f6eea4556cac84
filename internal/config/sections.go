package config

import (
	"github.com/dshills/scenedit/internal/scene"
)

// Section values are plain structs. Load returns a fresh Config on every
// call, so mutating a section never affects a reload.

// LoggingConfig selects log level and destination.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" yaml:"level" env:"LEVEL"`

	// File routes logs to a rotated file instead of stderr.
	File string `toml:"file" yaml:"file" env:"FILE"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb" yaml:"max_size_mb" env:"MAX_SIZE_MB"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" yaml:"max_backups" env:"MAX_BACKUPS"`
}

// BindingConfig binds a named command to an input trigger.
type BindingConfig struct {
	// Command is the command name.
	Command string `toml:"command" yaml:"command"`

	// Kind is "key", "click", "drag", "motion" or "wheel".
	Kind string `toml:"kind" yaml:"kind"`

	// Trigger is a key spec such as "Ctrl+S" or a button name.
	Trigger string `toml:"trigger" yaml:"trigger"`
}

// InputConfig configures the command dispatcher.
type InputConfig struct {
	// CaptureKey triggers a frame capture.
	CaptureKey string `toml:"capture_key" yaml:"capture_key" env:"CAPTURE_KEY"`

	// Metrics enables per-command outcome statistics.
	Metrics bool `toml:"metrics" yaml:"metrics" env:"METRICS"`

	// Bindings are applied in order after built-in bindings.
	Bindings []BindingConfig `toml:"bindings" yaml:"bindings"`
}

// StyleConfig mirrors scene.RenderStyle.
type StyleConfig struct {
	Fill          bool    `toml:"fill" yaml:"fill"`
	Edges         bool    `toml:"edges" yaml:"edges"`
	Centroids     bool    `toml:"centroids" yaml:"centroids"`
	CornerPoints  bool    `toml:"corner_points" yaml:"corner_points"`
	Background    Color   `toml:"background" yaml:"background" env:"BACKGROUND"`
	EdgeColor     Color   `toml:"edge_color" yaml:"edge_color"`
	CentroidColor Color   `toml:"centroid_color" yaml:"centroid_color"`
	CornerColor   Color   `toml:"corner_color" yaml:"corner_color"`
	SelectionFill Color   `toml:"selection_fill" yaml:"selection_fill"`
	SelectionEdge Color   `toml:"selection_edge" yaml:"selection_edge"`
	EdgeWidth     float32 `toml:"edge_width" yaml:"edge_width"`
	PointSize     float32 `toml:"point_size" yaml:"point_size"`
}

// RenderStyle converts the section for the renderer.
func (s StyleConfig) RenderStyle() *scene.RenderStyle {
	return &scene.RenderStyle{
		Fill:          s.Fill,
		Edges:         s.Edges,
		Centroids:     s.Centroids,
		CornerPoints:  s.CornerPoints,
		Background:    s.Background.Vec4(),
		EdgeColor:     s.EdgeColor.Vec4(),
		CentroidColor: s.CentroidColor.Vec4(),
		CornerColor:   s.CornerColor.Vec4(),
		EdgeWidth:     s.EdgeWidth,
		PointSize:     s.PointSize,
		SelectionFill: s.SelectionFill.Vec4(),
		SelectionEdge: s.SelectionEdge.Vec4(),
	}
}

// RenderConfig configures the render-pass catalog and viewports.
type RenderConfig struct {
	// ReverseDepth maps the far plane to depth 0.
	ReverseDepth bool `toml:"reverse_depth" yaml:"reverse_depth" env:"REVERSE_DEPTH"`

	// Width and Height size the default viewport in pixels.
	Width  int `toml:"width" yaml:"width" env:"WIDTH"`
	Height int `toml:"height" yaml:"height" env:"HEIGHT"`

	Style StyleConfig `toml:"style" yaml:"style" envPrefix:"STYLE_"`
}

// GLContextConfig sizes the secondary context pool.
type GLContextConfig struct {
	PoolSize int `toml:"pool_size" yaml:"pool_size" env:"POOL_SIZE"`
}

// CaptureConfig configures frame captures.
type CaptureConfig struct {
	// Dir receives capture files. Capturing is unavailable when empty.
	Dir string `toml:"dir" yaml:"dir" env:"DIR"`

	// Viewer is launched with the capture path after each capture.
	Viewer string `toml:"viewer" yaml:"viewer" env:"VIEWER"`
}

// ScriptCommand registers a Lua global function as a command.
type ScriptCommand struct {
	Name     string `toml:"name" yaml:"name"`
	Function string `toml:"function" yaml:"function"`
}

// ScriptsConfig configures Lua commands.
type ScriptsConfig struct {
	// Files are loaded in order at startup.
	Files []string `toml:"files" yaml:"files" env:"FILES"`

	// Timeout bounds each call into Lua.
	Timeout Duration `toml:"timeout" yaml:"timeout" env:"TIMEOUT"`

	Commands []ScriptCommand `toml:"commands" yaml:"commands"`
}
