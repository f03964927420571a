package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
)

// SQLiteReader provides read access to an outline SQLite database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source Source) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Set pragmas for read performance
	pragmas := []string{
		"PRAGMA cache_size = -64000",   // 64MB cache
		"PRAGMA mmap_size = 268435456", // 256MB mmap
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Non-fatal, just log
		}
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadItems reads all items from the database
func (r *SQLiteReader) LoadItems() ([]outline.Item, error) {
	return r.LoadItemsFiltered(nil)
}

// LoadItemsFiltered reads items matching the filter function
func (r *SQLiteReader) LoadItemsFiltered(filter func(*outline.Item) bool) ([]outline.Item, error) {
	defer metrics.Timer(metrics.SQLiteLoad)()

	// Query for all non-deleted items
	query := `
		SELECT
			id, parent_id, title, body, kind, status, tags,
			position, priority, created_at, updated_at, due_date
		FROM items
		WHERE (deleted IS NULL OR deleted = 0)
		ORDER BY parent_id, position
	`

	rows, err := r.db.Query(query)
	if err != nil {
		// Try simpler query if some columns don't exist
		return r.loadItemsSimple(filter)
	}
	defer rows.Close()

	var items []outline.Item
	for rows.Next() {
		var item outline.Item
		var parentID, body, kind, status, tagsJSON sql.NullString
		var position, priority sql.NullInt64
		var createdAt, updatedAt, dueDate sql.NullTime

		err := rows.Scan(
			&item.ID, &parentID, &item.Title, &body, &kind, &status, &tagsJSON,
			&position, &priority, &createdAt, &updatedAt, &dueDate,
		)
		if err != nil {
			continue
		}

		// Map nullable fields
		if parentID.Valid {
			item.ParentID = parentID.String
		}
		if body.Valid {
			item.Body = body.String
		}
		if kind.Valid {
			item.Kind = outline.Kind(kind.String)
		}
		if status.Valid {
			item.Status = outline.Status(status.String)
		}
		if position.Valid {
			item.Position = int(position.Int64)
		}
		if priority.Valid {
			item.Priority = int(priority.Int64)
		}
		if createdAt.Valid {
			item.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			item.UpdatedAt = updatedAt.Time
		}
		if dueDate.Valid {
			t := dueDate.Time
			item.DueDate = &t
		}

		// Parse tags JSON array
		if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
			item.Tags = parseJSONStringArray(tagsJSON.String)
		}

		item.Normalize()
		if err := item.Validate(); err != nil {
			continue
		}

		// Apply filter
		if filter != nil && !filter(&item) {
			continue
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// loadItemsSimple is a fallback for databases with fewer columns
func (r *SQLiteReader) loadItemsSimple(filter func(*outline.Item) bool) ([]outline.Item, error) {
	query := `
		SELECT id, parent_id, title, kind, position, created_at, updated_at
		FROM items
		WHERE (deleted IS NULL OR deleted = 0)
		ORDER BY parent_id, position
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []outline.Item
	for rows.Next() {
		var item outline.Item
		var parentID, kind sql.NullString
		var position sql.NullInt64
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&item.ID, &parentID, &item.Title, &kind, &position,
			&createdAt, &updatedAt,
		)
		if err != nil {
			continue
		}

		if parentID.Valid {
			item.ParentID = parentID.String
		}
		if kind.Valid {
			item.Kind = outline.Kind(kind.String)
		}
		if position.Valid {
			item.Position = int(position.Int64)
		}
		if createdAt.Valid {
			item.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			item.UpdatedAt = updatedAt.Time
		}

		item.Normalize()
		if err := item.Validate(); err != nil {
			continue
		}

		if filter != nil && !filter(&item) {
			continue
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// CountItems returns the count of non-deleted items
func (r *SQLiteReader) CountItems() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items WHERE (deleted IS NULL OR deleted = 0)").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetItemByID retrieves a single item by ID
func (r *SQLiteReader) GetItemByID(id string) (*outline.Item, error) {
	items, err := r.LoadItemsFiltered(func(item *outline.Item) bool {
		return item.ID == id
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item not found: %s", id)
	}
	return &items[0], nil
}

// GetLastModified returns the most recent update time
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var updatedAt sql.NullTime
	err := r.db.QueryRow("SELECT MAX(updated_at) FROM items").Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// parseJSONStringArray parses a JSON array of strings
func parseJSONStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}

	// Use proper JSON unmarshaling to handle edge cases like commas in tags
	var result []string
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		// Fallback to simple parser for malformed JSON
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		if s == "" {
			return nil
		}
		for _, item := range strings.Split(s, ",") {
			item = strings.TrimSpace(item)
			item = strings.Trim(item, `"`)
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
