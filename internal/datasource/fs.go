package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vanderheijden86/treework/pkg/outline"
)

// BrowseOptions configures filesystem browsing
type BrowseOptions struct {
	// ShowHidden includes dotfiles and dot-directories
	ShowHidden bool
	// FollowSymlinks descends into symlinked directories
	FollowSymlinks bool
}

// DefaultBrowseOptions returns sensible defaults for browse mode
func DefaultBrowseOptions() BrowseOptions {
	return BrowseOptions{
		ShowHidden:     false,
		FollowSymlinks: false,
	}
}

// LoadDirectory maps the entries of a directory to root-level outline
// items for browse mode. Directories become headings, files become
// notes. Children are not loaded; call LoadChildren when a directory
// is expanded.
func LoadDirectory(path string, opts BrowseOptions) ([]outline.Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot browse %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot browse %s: not a directory", path)
	}

	return readDirItems(abs, "", opts)
}

// LoadChildren maps the entries of an expanded directory to outline
// items parented under it. The parent ID is the directory's absolute
// path, matching the ID scheme of LoadDirectory.
func LoadChildren(dirPath string, opts BrowseOptions) ([]outline.Item, error) {
	abs, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dirPath, err)
	}

	return readDirItems(abs, abs, opts)
}

// readDirItems reads one directory level and maps entries to items
func readDirItems(dir, parentID string, opts BrowseOptions) ([]outline.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	items := make([]outline.Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(dir, name)

		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 && opts.FollowSymlinks {
			if target, statErr := os.Stat(full); statErr == nil {
				isDir = target.IsDir()
			}
		}

		item := outline.Item{
			ID:       full,
			ParentID: parentID,
			Title:    name,
			Kind:     outline.KindNote,
		}
		if isDir {
			item.Kind = outline.KindHeading
		}

		if info, infoErr := entry.Info(); infoErr == nil {
			item.CreatedAt = info.ModTime()
			item.UpdatedAt = info.ModTime()
		}

		items = append(items, item)
	}

	sortDirItems(items)
	for i := range items {
		items[i].Position = i
	}

	return items, nil
}

// sortDirItems orders directories before files, then by name
// case-insensitively, matching the listing order users expect
func sortDirItems(items []outline.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		di := items[i].Kind == outline.KindHeading
		dj := items[j].Kind == outline.KindHeading
		if di != dj {
			return di
		}
		ni := strings.ToLower(items[i].Title)
		nj := strings.ToLower(items[j].Title)
		if ni != nj {
			return ni < nj
		}
		return items[i].Title < items[j].Title
	})
}

// HasChildren reports whether a browse-mode directory item has any
// visible entries, so the UI can decide whether to show an expander
func HasChildren(dirPath string, opts BrowseOptions) bool {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !opts.ShowHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		return true
	}
	return false
}
