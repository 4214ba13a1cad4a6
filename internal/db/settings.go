package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javiermolinar/lvlup/internal/block"
)

const windowKey = "window"

// Window returns the stored planning window, or the default when none is stored.
func (s *Store) Window(ctx context.Context) (block.Window, error) {
	var w block.Window
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT start_hour, end_hour FROM settings WHERE key = ?`), windowKey).
		Scan(&w.StartHour, &w.EndHour)
	if errors.Is(err, sql.ErrNoRows) {
		return block.DefaultWindow(), nil
	}
	if err != nil {
		return block.Window{}, fmt.Errorf("querying window: %w", err)
	}
	return w, nil
}

// SaveWindow validates and stores the planning window.
func (s *Store) SaveWindow(ctx context.Context, w block.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO settings (key, start_hour, end_hour) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET start_hour = excluded.start_hour, end_hour = excluded.end_hour
	`), windowKey, w.StartHour, w.EndHour)
	if err != nil {
		return fmt.Errorf("saving window: %w", err)
	}
	return nil
}

// SeedWindow stores w only when no window is stored yet.
func (s *Store) SeedWindow(ctx context.Context, w block.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO settings (key, start_hour, end_hour) VALUES (?, ?, ?)
		ON CONFLICT (key) DO NOTHING
	`), windowKey, w.StartHour, w.EndHour)
	if err != nil {
		return fmt.Errorf("seeding window: %w", err)
	}
	return nil
}

// Habits returns the habit palette in display order.
func (s *Store) Habits(ctx context.Context) ([]block.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, icon FROM habits ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var habits []block.Habit
	for rows.Next() {
		var h block.Habit
		if err := rows.Scan(&h.ID, &h.Title, &h.Icon); err != nil {
			return nil, fmt.Errorf("scanning habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating habits: %w", err)
	}
	return habits, nil
}

// SaveHabit adds a habit at the end of the palette, or updates the title
// and icon of an existing one in place.
func (s *Store) SaveHabit(ctx context.Context, h block.Habit) error {
	if h.ID == "" || h.Title == "" {
		return fmt.Errorf("%w: habit needs an id and a title", block.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, s.rebind(`UPDATE habits SET title = ?, icon = ? WHERE id = ?`), h.Title, h.Icon, h.ID)
	if err != nil {
		return fmt.Errorf("updating habit: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var next int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM habits`).Scan(&next); err != nil {
			return fmt.Errorf("querying habit position: %w", err)
		}
		_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO habits (id, title, icon, position) VALUES (?, ?, ?, ?)`),
			h.ID, h.Title, h.Icon, next)
		if err != nil {
			return fmt.Errorf("inserting habit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
