package index

import (
	"encoding/json"
	"fmt"

	"github.com/starford/raido/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	FilePath   string `json:"filePath"`
	LineNumber int    `json:"lineNumber"`
	Snippet    string `json:"snippet"`
}

// Rebuild replaces the whole index with the given pin set in one transaction.
func (db *DB) Rebuild(pins []models.Pin) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM pins`); err != nil {
		return fmt.Errorf("index: clear pins: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`
		INSERT INTO pins (id, content, file_path, line_number, tags, detail, pinned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pins {
		tagsJSON, _ := json.Marshal(p.Tags)
		if _, err := stmt.Exec(p.ID, p.Content, p.FilePath, p.LineNumber,
			string(tagsJSON), p.DetailedContent, p.Timestamp); err != nil {
			return fmt.Errorf("index: insert pin: %w", err)
		}
		if err := ftsInsert(tx, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed pins.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
