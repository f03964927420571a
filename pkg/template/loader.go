package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template sources, in override order: a project template shadows a user
// template of the same name, which shadows a builtin.
const (
	SourceBuiltin = "builtin"
	SourceUser    = "user"
	SourceProject = "project"
)

// Summary is a one-line view of a loaded template for pickers and listings.
type Summary struct {
	Name        string
	Description string
	Source      string
	ItemCount   int
}

// Option configures a Loader.
type Option func(*Loader)

// WithUserPath sets the user template directory. Empty disables the user
// layer entirely.
func WithUserPath(dir string) Option {
	return func(l *Loader) { l.userPath = dir }
}

// WithProjectDir sets the project root; templates load from its
// .tw/templates subdirectory. Empty disables the project layer.
func WithProjectDir(dir string) Option {
	return func(l *Loader) { l.projectDir = dir }
}

// Loader resolves templates from builtins plus optional user and project
// directories. Load tolerates missing directories and records malformed
// files as warnings rather than failing.
type Loader struct {
	userPath   string
	projectDir string

	templates map[string]*Template
	sources   map[string]string
	warnings  []string
}

// NewLoader creates a loader with the default layer paths. Use the
// options to point the layers elsewhere or disable them.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		userPath:   DefaultUserPath(),
		projectDir: ".",
		templates:  make(map[string]*Template),
		sources:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultUserPath returns the user template directory
// (~/.config/tw/templates), or "" when the home directory is unknown.
func DefaultUserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tw", "templates")
}

// LoadDefault builds a loader with default paths and loads it.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load populates the loader: builtins first, then the user directory,
// then the project directory, later layers overriding earlier ones by
// name. Missing directories are fine; unreadable or malformed files
// become warnings.
func (l *Loader) Load() error {
	for _, t := range Builtins() {
		l.templates[t.Name] = t
		l.sources[t.Name] = SourceBuiltin
	}
	if l.userPath != "" {
		l.loadDir(l.userPath, SourceUser)
	}
	if l.projectDir != "" {
		l.loadDir(filepath.Join(l.projectDir, ".tw", "templates"), SourceProject)
	}
	return nil
}

// loadDir overlays every template file in dir. One file holds one
// template; the name falls back to the filename stem.
func (l *Loader) loadDir(dir, source string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.warnings = append(l.warnings, fmt.Sprintf("templates: %s: %v", dir, err))
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.warnings = append(l.warnings, fmt.Sprintf("templates: %s: %v", path, err))
			continue
		}

		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			l.warnings = append(l.warnings, fmt.Sprintf("templates: %s: %v", path, err))
			continue
		}

		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			t.Name = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}

		if t.Disabled {
			delete(l.templates, t.Name)
			delete(l.sources, t.Name)
			continue
		}
		if len(t.Items) == 0 {
			l.warnings = append(l.warnings, fmt.Sprintf("templates: %s: template %q has no items", path, t.Name))
			continue
		}

		l.templates[t.Name] = &t
		l.sources[t.Name] = source
	}
}

// Get returns the template by name, or nil.
func (l *Loader) Get(name string) *Template {
	return l.templates[name]
}

// Names returns the loaded template names, sorted.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source reports which layer a template came from ("builtin", "user",
// "project"), or "" for unknown names.
func (l *Loader) Source(name string) string {
	return l.sources[name]
}

// List returns the loaded templates sorted by name.
func (l *Loader) List() []*Template {
	names := l.Names()
	out := make([]*Template, 0, len(names))
	for _, name := range names {
		out = append(out, l.templates[name])
	}
	return out
}

// ListSummaries returns one Summary per loaded template, sorted by name.
func (l *Loader) ListSummaries() []Summary {
	names := l.Names()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		t := l.templates[name]
		out = append(out, Summary{
			Name:        t.Name,
			Description: t.Description,
			Source:      l.sources[name],
			ItemCount:   t.Count(),
		})
	}
	return out
}

// Warnings returns the problems Load tolerated.
func (l *Loader) Warnings() []string {
	return l.warnings
}
