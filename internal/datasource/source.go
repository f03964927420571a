// Package datasource provides multi-source outline detection and selection
// for tw. It discovers, validates, and selects the freshest valid source
// from SQLite databases and JSONL outline files, and maps directories to
// outline items for browse mode.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TwDirEnvVar is the name of the environment variable for a custom .tw directory
const TwDirEnvVar = "TW_DIR"

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database (outline.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONLProject is a JSONL file inside the .tw directory
	SourceTypeJSONLProject SourceType = "jsonl_project"
	// SourceTypeJSONLLoose is an outline.jsonl sitting next to the .tw directory
	SourceTypeJSONLLoose SourceType = "jsonl_loose"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite       = 100
	PriorityJSONLProject = 80
	PriorityJSONLLoose   = 50
)

// Source represents a potential source of outline data
type Source struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// ItemCount is the number of items in the source (set during validation)
	ItemCount int `json:"item_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, items=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.ItemCount, status)
}

// TwDir returns the .tw directory path, respecting the TW_DIR env var.
// If TW_DIR is set, it is used directly.
// Otherwise, falls back to .tw in the given dir (or cwd if empty).
func TwDir(dir string) (string, error) {
	if envDir := os.Getenv(TwDirEnvVar); envDir != "" {
		return envDir, nil
	}

	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return filepath.Join(dir, ".tw"), nil
}

// DiscoverOptions configures source discovery behavior
type DiscoverOptions struct {
	// Dir is the directory holding the outline (optional, cwd if empty)
	Dir string
	// Path pins discovery to one explicit file (e.g. from --file); when set,
	// directory scanning is skipped entirely
	Path string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// Discover finds all potential outline sources for the given options
func Discover(opts DiscoverOptions) ([]Source, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	if opts.Path != "" {
		return discoverExplicit(opts)
	}

	twDir, err := TwDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", twDir))
	}

	var sources []Source

	// Discover SQLite database
	sqliteSources, err := discoverSQLiteSources(twDir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("SQLite discovery warning: %v", err))
	}
	sources = append(sources, sqliteSources...)

	// Discover project JSONL files
	projectSources, err := discoverProjectJSONLSources(twDir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("Project JSONL discovery warning: %v", err))
	}
	sources = append(sources, projectSources...)

	// Discover a loose outline.jsonl next to the .tw directory
	looseSources, err := discoverLooseJSONLSources(opts.Dir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("Loose JSONL discovery warning: %v", err))
	}
	sources = append(sources, looseSources...)

	// Validate sources if requested
	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
	}

	// Filter out invalid sources if not including them
	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		var validSources []Source
		for _, s := range sources {
			if s.Valid {
				validSources = append(validSources, s)
			}
		}
		sources = validSources
	}

	// Sort by mod time and priority
	sortSources(sources)

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// sortSources orders sources freshest first, priority breaking ties
func sortSources(sources []Source) {
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}

// discoverExplicit wraps a caller-pinned file path as the single source
func discoverExplicit(opts DiscoverOptions) ([]Source, error) {
	info, err := os.Stat(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", opts.Path, err)
	}

	source := Source{
		Type:     sourceTypeForPath(opts.Path),
		Path:     opts.Path,
		Priority: PrioritySQLite, // pinned files outrank everything
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}

	if opts.ValidateAfterDiscovery {
		if err := ValidateSource(&source); err != nil && opts.Verbose {
			opts.Logger(fmt.Sprintf("Validation failed for %s: %v", source.Path, err))
		}
		if !source.Valid && !opts.IncludeInvalid {
			return nil, fmt.Errorf("source %s is invalid: %s", source.Path, source.ValidationError)
		}
	}

	return []Source{source}, nil
}

// sourceTypeForPath infers the source type from a file extension
func sourceTypeForPath(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	default:
		return SourceTypeJSONLProject
	}
}

// discoverSQLiteSources finds SQLite databases in the .tw directory
func discoverSQLiteSources(twDir string, opts DiscoverOptions) ([]Source, error) {
	var sources []Source

	// Look for outline.db
	dbPath := filepath.Join(twDir, "outline.db")
	info, err := os.Stat(dbPath)
	if err == nil {
		sources = append(sources, Source{
			Type:     SourceTypeSQLite,
			Path:     dbPath,
			Priority: PrioritySQLite,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found SQLite: %s (mod=%s)", dbPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}

// discoverProjectJSONLSources finds JSONL files in the .tw directory
func discoverProjectJSONLSources(twDir string, opts DiscoverOptions) ([]Source, error) {
	var sources []Source

	entries, err := os.ReadDir(twDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read .tw directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		// Must be a .jsonl file
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		// Skip backups, merge artifacts, and deletion manifests
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".merge") ||
			name == "deletions.jsonl" {
			continue
		}

		path := filepath.Join(twDir, name)
		info, err := e.Info()
		if err != nil {
			continue
		}

		sources = append(sources, Source{
			Type:     SourceTypeJSONLProject,
			Path:     path,
			Priority: PriorityJSONLProject,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})

		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found project JSONL: %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}

// discoverLooseJSONLSources finds an outline.jsonl directly in the outline directory
func discoverLooseJSONLSources(dir string, opts DiscoverOptions) ([]Source, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	jsonlPath := filepath.Join(dir, "outline.jsonl")
	info, err := os.Stat(jsonlPath)
	if err != nil {
		return nil, nil
	}

	source := Source{
		Type:     SourceTypeJSONLLoose,
		Path:     jsonlPath,
		Priority: PriorityJSONLLoose,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Found loose JSONL: %s (mod=%s)", jsonlPath, info.ModTime().Format(time.RFC3339)))
	}

	return []Source{source}, nil
}

// ValidateSource checks that a source can be opened and counts its items.
// The result is recorded on the source; the returned error mirrors
// ValidationError for callers that want to log it.
func ValidateSource(s *Source) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		s.Valid = false
		s.ValidationError = fmt.Sprintf("cannot stat: %v", err)
		return fmt.Errorf("cannot stat %s: %w", s.Path, err)
	}
	s.ModTime = info.ModTime()
	s.Size = info.Size()

	// An empty file is a fresh outline, valid with zero items
	if info.Size() == 0 && s.Type != SourceTypeSQLite {
		s.Valid = true
		s.ItemCount = 0
		return nil
	}

	switch s.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(*s)
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		defer reader.Close()
		count, err := reader.CountItems()
		if err != nil {
			s.Valid = false
			s.ValidationError = fmt.Sprintf("cannot count items: %v", err)
			return fmt.Errorf("cannot count items in %s: %w", s.Path, err)
		}
		s.Valid = true
		s.ItemCount = count
		return nil

	case SourceTypeJSONLProject, SourceTypeJSONLLoose:
		items, err := LoadItemsFromFileWithOptions(s.Path, ParseOptions{
			WarningHandler: func(string) {},
		})
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		s.Valid = true
		s.ItemCount = len(items)
		return nil

	default:
		s.Valid = false
		s.ValidationError = fmt.Sprintf("unknown source type: %s", s.Type)
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
}

// SelectBestSource picks the source to load from an already-sorted list.
// Non-empty valid sources win over empty ones; an empty valid source is a
// last resort so a freshly initialized outline still opens.
func SelectBestSource(sources []Source) (Source, error) {
	for _, s := range sources {
		if s.Valid && s.ItemCount > 0 {
			return s, nil
		}
	}
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("no valid sources")
}
