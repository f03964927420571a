package datasource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
)

// DefaultMaxBufferSize is the default buffer size for the line reader (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures the behavior of ParseItems.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int

	// ItemFilter optionally filters parsed items. Return true to include.
	// When nil, all valid items are included.
	ItemFilter func(*outline.Item) bool
}

// LoadItemsFromFile reads items directly from a specific JSONL file path.
func LoadItemsFromFile(path string) ([]outline.Item, error) {
	return LoadItemsFromFileWithOptions(path, ParseOptions{})
}

// LoadItemsFromFileWithOptions reads items from a file with custom options.
func LoadItemsFromFileWithOptions(path string, opts ParseOptions) ([]outline.Item, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no outline found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outline file: %w", err)
	}
	defer file.Close()

	return ParseItemsWithOptions(file, opts)
}

// ParseItems parses JSONL content from a reader into items.
// Handles UTF-8 BOM stripping, large lines, and validation.
func ParseItems(r io.Reader) ([]outline.Item, error) {
	return ParseItemsWithOptions(r, ParseOptions{})
}

// ParseItemsWithOptions parses JSONL content with custom options.
func ParseItemsWithOptions(r io.Reader, opts ParseOptions) ([]outline.Item, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	var items []outline.Item
	if f, ok := r.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			// Heuristic: average item line ~512B. Prefer conservative
			// underestimation to avoid large over-allocations for big files.
			const avgItemBytes = 512
			const minCap = 64
			const maxCap = 200_000

			est := int(info.Size() / avgItemBytes)
			if est < minCap && info.Size() > 0 {
				est = minCap
			}
			if est > maxCap {
				est = maxCap
			}
			if est > 0 {
				items = make([]outline.Item, 0, est)
			}
		}
	}

	// Determine buffer size
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}

	reader := bufio.NewReaderSize(r, maxCapacity)

	// Default warning handler prints to stderr (suppressed in test mode).
	warn := opts.WarningHandler
	if warn == nil {
		if os.Getenv("TW_TEST_MODE") == "1" {
			warn = func(string) {}
		} else {
			warn = func(msg string) {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
			}
		}
	}

	lineNum := 0
	for {
		lineNum++
		// ReadLine returns a single line, not including the end-of-line bytes.
		// If the line was too long for the buffer then isPrefix is set and the
		// beginning of the line is returned.
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading outline stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			// Line too long. Discard the rest of the line.
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err != nil && err != io.EOF {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
				if err == io.EOF {
					break
				}
			}
			continue
		}

		if len(line) == 0 {
			continue
		}

		// Strip UTF-8 BOM if present on the first line
		if lineNum == 1 {
			line = stripBOM(line)
		}

		var item outline.Item
		if err := json.Unmarshal(line, &item); err != nil {
			// Skip malformed lines but warn
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}

		item.Normalize()

		// Validate item
		if err := item.Validate(); err != nil {
			// Skip invalid items
			warn(fmt.Sprintf("skipping invalid item on line %d: %v", lineNum, err))
			continue
		}

		if opts.ItemFilter != nil && !opts.ItemFilter(&item) {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// SaveJSONL writes items to path as JSONL, one item per line. The write
// goes through a temp file in the same directory followed by a rename, so
// a crash mid-write never leaves a truncated outline behind.
func SaveJSONL(path string, items []outline.Item) error {
	defer metrics.Timer(metrics.OutlineSave)()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating outline directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".outline-*.jsonl.tmp")
	if err != nil {
		return fmt.Errorf("creating temp outline file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encoding item %s: %w", item.ID, err)
		}
		if _, err := w.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing outline: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing outline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing outline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp outline file: %w", err)
	}

	// CreateTemp files are 0600; match the modes the rest of tw writes
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting outline file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing outline file: %w", err)
	}

	return nil
}
