package ui

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treework/pkg/debug"
)

// ViewState is the persistent state of the tree view, saved to
// .tw/view-state.json so fold state and selection survive across sessions.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "collapsed": {
//	    "item-123": true,   // explicitly collapsed
//	    "item-456": false   // explicitly expanded
//	  },
//	  "selected": "item-123"
//	}
//
// Only explicit user changes are stored; items not in the map use the
// default fold behavior derived from tree.auto_expand_depth. A corrupted or
// missing file falls back to defaults silently.
type ViewState struct {
	Version   int             `json:"version"`
	Collapsed map[string]bool `json:"collapsed"`
	Selected  string          `json:"selected,omitempty"`
}

// ViewStateVersion is the current schema version for view persistence.
const ViewStateVersion = 1

// viewStateFileName is the filename for the persisted view state.
const viewStateFileName = "view-state.json"

// DefaultViewState returns a new ViewState with no explicit overrides.
func DefaultViewState() *ViewState {
	return &ViewState{
		Version:   ViewStateVersion,
		Collapsed: make(map[string]bool),
	}
}

// ViewStatePath returns the path to the view state file inside twDir
// (usually the project's .tw directory).
func ViewStatePath(twDir string) string {
	return filepath.Join(twDir, viewStateFileName)
}

// LoadViewState reads the persisted view state. A missing or unreadable file
// is first-run behavior, not an error: defaults are returned. twDir == ""
// disables persistence entirely.
func LoadViewState(twDir string) *ViewState {
	if twDir == "" {
		return DefaultViewState()
	}
	data, err := os.ReadFile(ViewStatePath(twDir))
	if err != nil {
		return DefaultViewState()
	}

	var state ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		debug.Log("invalid view state file, using defaults: %v", err)
		return DefaultViewState()
	}
	if state.Collapsed == nil {
		state.Collapsed = make(map[string]bool)
	}
	return &state
}

// SaveViewState writes the view state to disk. Errors are logged through the
// debug gate but never interrupt the user; fold state is a convenience, not
// data.
func SaveViewState(twDir string, state *ViewState) {
	if twDir == "" || state == nil {
		return
	}
	state.Version = ViewStateVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		debug.Log("failed to marshal view state: %v", err)
		return
	}

	path := ViewStatePath(twDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		debug.Log("failed to create state directory %s: %v", filepath.Dir(path), err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		debug.Log("failed to write view state to %s: %v", path, err)
	}
}
