package db

import (
	"fmt"

	"github.com/javiermolinar/lvlup/internal/block"
)

// migrate creates the schema and seeds the default habit palette.
func (s *Store) migrate() error {
	completed := "INTEGER NOT NULL DEFAULT 0"
	if s.driver == DriverPostgres {
		completed = "BOOLEAN NOT NULL DEFAULT FALSE"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			habit_id    TEXT NOT NULL,
			date        TEXT NOT NULL,
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			completed   ` + completed + `,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_date ON blocks(date)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key         TEXT PRIMARY KEY,
			start_hour  INTEGER NOT NULL,
			end_hour    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			icon        TEXT NOT NULL DEFAULT '',
			position    INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return s.seedHabits()
}

// seedHabits fills an empty habits table with the default palette.
func (s *Store) seedHabits() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM habits`).Scan(&count); err != nil {
		return fmt.Errorf("counting habits: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, h := range block.DefaultPalette() {
		_, err := s.db.Exec(s.rebind(`
			INSERT INTO habits (id, title, icon, position) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`), h.ID, h.Title, h.Icon, i)
		if err != nil {
			return fmt.Errorf("seeding habit %s: %w", h.ID, err)
		}
	}
	return nil
}
