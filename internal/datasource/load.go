package datasource

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/treework/pkg/debug"
	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
)

// ErrNoSources is returned when discovery finds nothing to load.
var ErrNoSources = errors.New("no outline sources found")

// validateConcurrency bounds how many sources are validated at once.
const validateConcurrency = 4

// Load performs smart multi-source detection and loading for the outline
// in dir (cwd if empty). It discovers all available sources (SQLite, JSONL),
// validates them concurrently, and loads from the freshest valid one,
// falling back to the next source when a load fails. SQLite is preferred
// over JSONL at comparable freshness since it reflects the most recent
// state. The winning source is returned alongside the items so callers can
// watch it and report it.
func Load(ctx context.Context, dir string) ([]outline.Item, Source, error) {
	defer metrics.Timer(metrics.OutlineLoad)()

	sources, err := Discover(DiscoverOptions{Dir: dir})
	if err != nil {
		return nil, Source{}, err
	}
	if len(sources) == 0 {
		return nil, Source{}, ErrNoSources
	}

	if err := ValidateAll(ctx, sources); err != nil {
		return nil, Source{}, err
	}

	return loadFirstValid(sources)
}

// LoadFile loads a single caller-pinned file (e.g. from --file), skipping
// discovery entirely.
func LoadFile(ctx context.Context, path string) ([]outline.Item, Source, error) {
	defer metrics.Timer(metrics.OutlineLoad)()

	sources, err := Discover(DiscoverOptions{Path: path})
	if err != nil {
		return nil, Source{}, err
	}

	if err := ValidateAll(ctx, sources); err != nil {
		return nil, Source{}, err
	}

	return loadFirstValid(sources)
}

// loadFirstValid walks the sorted sources, loading from the best one and
// falling back to the next on failure.
func loadFirstValid(sources []Source) ([]outline.Item, Source, error) {
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, Source{}, fmt.Errorf("selecting outline source: %w", err)
	}

	items, err := LoadFromSource(best)
	if err == nil {
		return items, best, nil
	}
	debug.Log("load failed for %s, trying remaining sources: %v", best.Path, err)

	var lastErr = err
	for _, s := range sources {
		if !s.Valid || s.Path == best.Path {
			continue
		}
		items, err := LoadFromSource(s)
		if err != nil {
			lastErr = err
			debug.Log("load failed for %s: %v", s.Path, err)
			continue
		}
		return items, s, nil
	}

	return nil, Source{}, fmt.Errorf("loading outline: %w", lastErr)
}

// LoadFromSource loads items from a specific Source, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source Source) ([]outline.Item, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadItems()

	case SourceTypeJSONLProject, SourceTypeJSONLLoose:
		return LoadItemsFromFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// ValidateAll validates every source concurrently. Per-source failures are
// recorded on the sources themselves, not returned; the only error out of
// here is context cancellation.
func ValidateAll(ctx context.Context, sources []Source) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)

	for i := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ValidateSource(&sources[i]); err != nil {
				debug.Log("source %s invalid: %v", sources[i].Path, err)
			}
			return nil
		})
	}

	return g.Wait()
}
