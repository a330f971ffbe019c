package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"taskboard/internal/model"
	"taskboard/internal/tree"
)

// openSQLite opens the board database. A file that is not a usable
// database is moved aside and replaced by an empty one.
func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	db, err := s.openSQLiteFile(ctx)
	var mde MalformedDataError
	if err == nil || !errors.As(err, &mde) {
		return db, err
	}
	if err := s.quarantine(err); err != nil {
		return nil, err
	}
	return s.openSQLiteFile(ctx)
}

// quarantine renames the database and its WAL side files to
// <name>.corrupt-<unixms> so the next open starts fresh.
func (s Store) quarantine(cause error) error {
	path := s.sqlitePath()
	moved := fmt.Sprintf("%s.corrupt-%d", path, s.now().UnixMilli())
	if err := os.Rename(path, moved); err != nil {
		return fmt.Errorf("move aside unreadable database: %w", errors.Join(cause, err))
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Rename(path+suffix, moved+suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger().Warn("could not move database side file", "path", path+suffix, "err", err)
		}
	}
	s.logger().Warn("unreadable database moved aside; starting with an empty board", "path", path, "moved_to", moved, "err", cause)
	return nil
}

func (s Store) openSQLiteFile(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, classifySQLiteErr(err)
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, classifySQLiteErr(err)
	}
	return db, nil
}

// classifySQLiteErr turns "this file is not a usable database" into a
// MalformedDataError; anything else is returned unchanged.
func classifySQLiteErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
			return MalformedDataError{Reason: "unreadable database", Err: err}
		}
	}
	return err
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		// Tasks are stored as an arena: node is a surrogate key assigned in
		// pre-order on every save, so parents always precede children.
		`CREATE TABLE IF NOT EXISTS tasks (
			node INTEGER PRIMARY KEY,
			parent_node INTEGER,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			category TEXT NOT NULL,
			assignee TEXT NOT NULL,
			due_date TEXT NOT NULL,
			urgent INTEGER NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_id ON tasks(id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_node, position);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);`,
		`CREATE TABLE IF NOT EXISTS people (
			name TEXT PRIMARY KEY,
			color TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			name TEXT PRIMARY KEY,
			color TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			type TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, issued_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the board. Each stored task is re-normalized; rows that cannot
// be decoded, and rows whose parent was dropped, are logged and skipped. A
// database that turns out to be corrupt is quarantined and an empty board
// is returned.
func (s Store) Load(ctx context.Context) (*Board, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.readBoard(ctx, db)
	_ = db.Close()
	if err == nil {
		return out, nil
	}
	var mde MalformedDataError
	if err = classifySQLiteErr(err); !errors.As(err, &mde) {
		return nil, err
	}
	if err := s.quarantine(err); err != nil {
		return nil, err
	}
	return NewBoard(), nil
}

func (s Store) readBoard(ctx context.Context, db *sql.DB) (*Board, error) {
	var err error
	out := NewBoard()
	var v string
	if err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&v); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			out.Version = n
		}
	}

	if out.People, err = readRegistry(ctx, db, "people"); err != nil {
		return nil, err
	}
	if out.Categories, err = readRegistry(ctx, db, "categories"); err != nil {
		return nil, err
	}
	if out.Tasks, err = s.readTasks(ctx, db, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s Store) readTasks(ctx context.Context, db *sql.DB, b *Board) ([]*model.Task, error) {
	rows, err := db.QueryContext(ctx, `SELECT node, parent_node, json FROM tasks ORDER BY node ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defaults := model.Defaults{Today: s.today(), NewID: b.idAllocator(map[string]struct{}{})}
	byNode := map[int64]*model.Task{}
	roots := []*model.Task{}
	for rows.Next() {
		var (
			node   int64
			parent sql.NullInt64
			js     string
		)
		if err := rows.Scan(&node, &parent, &js); err != nil {
			return nil, err
		}
		rec, err := model.DecodeRecord([]byte(js))
		if err != nil {
			s.logger().Warn("dropping unreadable task row", "node", node, "err", err)
			continue
		}
		t := model.Normalize(rec, defaults)
		if !parent.Valid {
			roots = append(roots, &t)
			byNode[node] = &t
			continue
		}
		p, ok := byNode[parent.Int64]
		if !ok {
			s.logger().Warn("dropping orphaned task row", "node", node, "id", t.ID, "parent_node", parent.Int64)
			continue
		}
		p.Subtasks = append(p.Subtasks, &t)
		byNode[node] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roots, nil
}

func readRegistry(ctx context.Context, db *sql.DB, table string) (model.Registry, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, color FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := model.Registry{}
	for rows.Next() {
		var name, color string
		if err := rows.Scan(&name, &color); err != nil {
			return nil, err
		}
		out.Set(name, color)
	}
	return out, rows.Err()
}

// Save replaces the stored board with b in one transaction. Any events are
// recorded in the same transaction.
func (s Store) Save(ctx context.Context, b *Board, events ...PendingEvent) error {
	if b == nil {
		return errors.New("nil board")
	}
	for i := range events {
		e, err := events[i].validate()
		if err != nil {
			return err
		}
		events[i] = e
	}
	b.ensure()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(b.Version)); err != nil {
		return err
	}
	for _, t := range []string{"tasks", "people", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for table, reg := range map[string]model.Registry{"people": b.People, "categories": b.Categories} {
		for name, color := range reg {
			if _, err := tx.ExecContext(ctx, `INSERT INTO `+table+`(name, color, updated_at_unixms) VALUES(?, ?, ?)`, name, color, nowMs); err != nil {
				return err
			}
		}
	}

	if err := insertTasks(ctx, tx, b.Tasks, nowMs); err != nil {
		return err
	}
	for _, e := range events {
		if err := s.insertEvent(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertTasks(ctx context.Context, tx *sql.Tx, tasks []*model.Task, nowMs int64) error {
	var (
		node    int64
		insErr  error
		parents []int64 // node id per depth
		pos     []int   // next sibling position per depth
	)
	tree.Walk(tasks, func(t *model.Task, depth int) bool {
		node++
		parents = append(parents[:depth], node)
		for len(pos) < depth+1 {
			pos = append(pos, 0)
		}
		pos = pos[:depth+1]
		position := pos[depth]
		pos[depth]++
		pos = append(pos, 0)

		var parent sql.NullInt64
		if depth > 0 {
			parent = sql.NullInt64{Int64: parents[depth-1], Valid: true}
		}
		shallow := *t
		shallow.Subtasks = []*model.Task{}
		raw, err := json.Marshal(shallow)
		if err != nil {
			insErr = fmt.Errorf("encode task %s: %w", t.ID, err)
			return false
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO tasks(
			node, parent_node, position, id, name, status, category, assignee,
			due_date, urgent, archived, json, updated_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			node, parent, position, t.ID, t.Name, string(t.Status), t.Category, t.AssigneeName(),
			t.DueDate.String(), boolToInt(t.IsUrgent), boolToInt(t.IsArchived), string(raw), nowMs,
		)
		if err != nil {
			insErr = err
			return false
		}
		return true
	})
	return insErr
}

func (s Store) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now().UTC()
}

func (s Store) today() model.Date {
	if s.Clock != nil {
		return s.Clock.Today()
	}
	return model.DateOf(time.Now())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
