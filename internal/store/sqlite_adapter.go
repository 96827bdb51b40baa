package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	_ "modernc.org/sqlite"
)

const (
	SQLiteFileName = "board.sqlite"
	sqliteSchemaV  = 1
)

// SQLiteAdapter stores lists and cards as rows ordered by position. Each card row keeps
// the card's JSON so new card fields need no migration.
type SQLiteAdapter struct {
	Path string
	db   *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets `kanban watch` read while the TUI writes; busy_timeout avoids "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateBoardSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteAdapter{Path: path, db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func migrateBoardSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS board_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lists (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, position);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (a *SQLiteAdapter) Load(ctx context.Context) (model.Board, error) {
	var version string
	err := a.db.QueryRowContext(ctx, `SELECT v FROM board_meta WHERE k = 'version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, board.ErrAbsent
	}
	if err != nil {
		return model.Board{}, err
	}
	if _, err := strconv.Atoi(version); err != nil {
		return model.Board{}, board.PersistenceReadError{Source: a.Path, Err: fmt.Errorf("bad version %q", version)}
	}

	var b model.Board
	byID := map[string]int{}
	rows, err := a.db.QueryContext(ctx, `SELECT id, title FROM lists ORDER BY position`)
	if err != nil {
		return model.Board{}, err
	}
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.Title); err != nil {
			_ = rows.Close()
			return model.Board{}, err
		}
		l.Cards = []model.Card{}
		byID[l.ID] = len(b.Lists)
		b.Lists = append(b.Lists, l)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return model.Board{}, err
	}

	rows, err = a.db.QueryContext(ctx, `SELECT id, list_id, json FROM cards ORDER BY list_id, position`)
	if err != nil {
		return model.Board{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, listID, raw string
		if err := rows.Scan(&id, &listID, &raw); err != nil {
			return model.Board{}, err
		}
		var c model.Card
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return model.Board{}, board.PersistenceReadError{Source: a.Path, Err: fmt.Errorf("card %s: %w", id, err)}
		}
		li, ok := byID[listID]
		if !ok {
			return model.Board{}, board.PersistenceReadError{Source: a.Path, Err: fmt.Errorf("card %s: unknown list %s", id, listID)}
		}
		c.ID = id
		b.Lists[li].Cards = append(b.Lists[li].Cards, c)
	}
	if err := rows.Err(); err != nil {
		return model.Board{}, err
	}
	if b.Lists == nil {
		b.Lists = []model.List{}
	}

	// Run the assembled board through the same schema check as the JSON file.
	raw, err := json.Marshal(b)
	if err != nil {
		return model.Board{}, err
	}
	return decodeBoard(raw, a.Path)
}

func (a *SQLiteAdapter) Save(ctx context.Context, b model.Board) error {
	b = normalizedCopy(b)

	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-all: boards are small and this keeps positions dense.
	for _, t := range []string{"cards", "lists"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}
	for li, l := range b.Lists {
		if _, err := tx.ExecContext(ctx, `INSERT INTO lists(id, position, title) VALUES(?, ?, ?)`, l.ID, li, l.Title); err != nil {
			return err
		}
		for ci, c := range l.Cards {
			raw, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO cards(id, list_id, position, json) VALUES(?, ?, ?, ?)`, c.ID, l.ID, ci, string(raw)); err != nil {
				return err
			}
		}
	}
	meta := map[string]string{
		"version":           strconv.Itoa(sqliteSchemaV),
		"updated_at_unixms": strconv.FormatInt(time.Now().UTC().UnixMilli(), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO board_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Quarantine copies the database file aside and clears the board tables, so the seed
// written next does not overwrite the only copy of the bad rows.
func (a *SQLiteAdapter) Quarantine(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
		return err
	}
	dest := fmt.Sprintf("%s.corrupt-%d", a.Path, time.Now().UTC().UnixMilli())
	if err := CopyFile(a.Path, dest); err != nil {
		return err
	}
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, t := range []string{"cards", "lists", "board_meta"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}
	return tx.Commit()
}
