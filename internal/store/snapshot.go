package store

import (
	"fmt"

	"github.com/youhengzhou/bibo-notes/internal/models"
)

// Save replaces the persisted snapshot with the given note collection and
// viewport inside one transaction.
func (db *DB) Save(notes []models.Note, vp models.Viewport) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("store: clear notes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notes (id, x, y, width, height, content, split_ratio,
			z_order, is_root, parent_id, stack_order, collapsed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notes {
		_, err := stmt.Exec(n.ID, n.X, n.Y, n.Width, n.Height, n.Content, n.SplitRatio,
			n.ZOrder, n.IsRoot, n.ParentID, n.StackOrder, n.Collapsed, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("store: insert note %s: %w", n.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO board (id, viewport_x, viewport_y) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			viewport_x = excluded.viewport_x,
			viewport_y = excluded.viewport_y
	`, vp.X, vp.Y)
	if err != nil {
		return fmt.Errorf("store: upsert viewport: %w", err)
	}

	return tx.Commit()
}

// Load returns the persisted note collection and viewport. A fresh database
// yields an empty slice and a zero viewport.
func (db *DB) Load() ([]models.Note, models.Viewport, error) {
	rows, err := db.conn.Query(`
		SELECT id, x, y, width, height, content, split_ratio,
			z_order, is_root, parent_id, stack_order, collapsed, created_at, updated_at
		FROM notes ORDER BY z_order, id
	`)
	if err != nil {
		return nil, models.Viewport{}, fmt.Errorf("store: load notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.X, &n.Y, &n.Width, &n.Height, &n.Content, &n.SplitRatio,
			&n.ZOrder, &n.IsRoot, &n.ParentID, &n.StackOrder, &n.Collapsed, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, models.Viewport{}, fmt.Errorf("store: scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Viewport{}, fmt.Errorf("store: iterate notes: %w", err)
	}

	var vp models.Viewport
	err = db.conn.QueryRow(`SELECT viewport_x, viewport_y FROM board WHERE id = 1`).Scan(&vp.X, &vp.Y)
	if err != nil {
		// No board row yet is fine.
		return notes, models.Viewport{}, nil
	}
	return notes, vp, nil
}
