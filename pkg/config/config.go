// Package config handles loading and saving tw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tw/config.yaml
//   - Data:    ~/.local/share/tw/ (exports, snapshots)
//   - State:   ~/.local/state/tw/ (recent outlines, caches)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnvVar overrides the config file location when set.
const ConfigPathEnvVar = "TW_CONFIG"

// NavigationConfig holds cursor movement preferences.
type NavigationConfig struct {
	Wrap     bool `yaml:"wrap,omitempty"`      // Single-step moves wrap past the ends
	PageSize int  `yaml:"page_size,omitempty"` // Rows per page jump (default 10)
}

// TreeConfig holds outline rendering preferences.
type TreeConfig struct {
	Glyphs          string `yaml:"glyphs,omitempty"`            // unicode, ascii
	Indent          int    `yaml:"indent,omitempty"`            // Columns per depth level (default 4)
	AutoExpandDepth int    `yaml:"auto_expand_depth,omitempty"` // Depth expanded on load; 0 = default (1), -1 = all collapsed
}

// WatchConfig controls live reloading of the outline file.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled,omitempty"`     // Default true
	DebounceMS int   `yaml:"debounce_ms,omitempty"` // Event settle window (default 200)
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowStatus *bool `yaml:"show_status,omitempty"` // Status bar (default true)
	Headless   bool  `yaml:"headless,omitempty"`    // Compact header mode
}

// OutlineConfig points at the outline to open when the working directory
// has none.
type OutlineConfig struct {
	DefaultPath string `yaml:"default_path,omitempty"`
}

// Config is the top-level configuration for tw.
type Config struct {
	Navigation NavigationConfig `yaml:"navigation,omitempty"`
	Tree       TreeConfig       `yaml:"tree,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
	UI         UIConfig         `yaml:"ui,omitempty"`
	Outline    OutlineConfig    `yaml:"outline,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Navigation: NavigationConfig{
			PageSize: 10,
		},
		Tree: TreeConfig{
			Glyphs:          "unicode",
			Indent:          4,
			AutoExpandDepth: 1,
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
	}
}

// IsEnabled resolves the watch flag, defaulting to true.
func (w WatchConfig) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// StatusVisible resolves the status bar flag, defaulting to true.
func (u UIConfig) StatusVisible() bool {
	return u.ShowStatus == nil || *u.ShowStatus
}

// ExpandDepth resolves auto_expand_depth: 0 means the default of one level,
// negative means nothing expanded.
func (t TreeConfig) ExpandDepth() int {
	switch {
	case t.AutoExpandDepth == 0:
		return 1
	case t.AutoExpandDepth < 0:
		return 0
	default:
		return t.AutoExpandDepth
	}
}

// ConfigDir returns the XDG config directory for tw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tw")
}

// DataDir returns the XDG data directory for tw.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tw")
}

// StateDir returns the XDG state directory for tw.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tw")
}

// ConfigPath returns the full path to config.yaml, honoring TW_CONFIG.
func ConfigPath() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return expandHome(path)
	}
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize repairs out-of-range values instead of failing the load.
func (c *Config) normalize() {
	if c.Navigation.PageSize < 1 {
		c.Navigation.PageSize = 10
	}
	switch c.Tree.Glyphs {
	case "unicode", "ascii":
	default:
		c.Tree.Glyphs = "unicode"
	}
	if c.Tree.Indent < 2 {
		c.Tree.Indent = 2
	}
	if c.Tree.Indent > 8 {
		c.Tree.Indent = 8
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = 200
	}
	c.Outline.DefaultPath = expandHome(c.Outline.DefaultPath)
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
