//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/raido/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS pins_fts USING fts5(
			id UNINDEXED,
			content,
			detail,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM pins_fts`)
}

func ftsInsert(tx *sql.Tx, p models.Pin) error {
	_, err := tx.Exec(`INSERT INTO pins_fts (id, content, detail, tags) VALUES (?, ?, ?, ?)`,
		p.ID, p.Content, p.DetailedContent, strings.Join(p.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search over pin content, detail, and tags.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT p.id,
		       p.content,
		       p.file_path,
		       p.line_number,
		       snippet(pins_fts, 2, '<b>', '</b>', '...', 64)
		FROM pins_fts
		JOIN pins p ON p.id = pins_fts.id
		WHERE pins_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Content, &r.FilePath, &r.LineNumber, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
