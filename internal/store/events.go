package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload,omitempty"`
}

// PendingEvent is an event to be recorded alongside a Save.
type PendingEvent struct {
	Type     string
	EntityID string
	Payload  any
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (e PendingEvent) validate() (PendingEvent, error) {
	e.Type = strings.TrimSpace(e.Type)
	if e.Type == "" {
		return e, errors.New("append event: missing type")
	}
	e.EntityID = strings.TrimSpace(e.EntityID)
	if e.EntityID == "" {
		return e, errors.New("append event: missing entity id")
	}
	return e, nil
}

func (s Store) insertEvent(ctx context.Context, db execer, e PendingEvent) error {
	pb, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO events(event_id, entity_id, type, issued_at_unixms, payload_json) VALUES(?, ?, ?, ?, ?)`,
		uuid.NewString(), e.EntityID, e.Type, s.now().UnixMilli(), string(pb))
	return err
}

// AppendEvent records one event on its own. Mutations record theirs through
// Save so the board and the log change together.
func (s Store) AppendEvent(ctx context.Context, typ, entityID string, payload any) error {
	e, err := PendingEvent{Type: typ, EntityID: entityID, Payload: payload}.validate()
	if err != nil {
		return err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return s.insertEvent(ctx, db, e)
}

// Events returns logged events oldest first. An empty entityID returns the
// events of every entity; limit <= 0 means all, otherwise the most recent
// limit events are returned.
func (s Store) Events(ctx context.Context, entityID string, limit int) ([]Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, issued_at_unixms, type, entity_id, payload_json FROM events`
	var args []any
	if entityID = strings.TrimSpace(entityID); entityID != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	q += ` ORDER BY issued_at_unixms DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			id, typ, eid, payloadJSON string
			tsMs                      int64
		)
		if err := rows.Scan(&id, &tsMs, &typ, &eid, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			s.logger().Warn("undecodable event payload; keeping raw text", "id", id, "err", err)
			payload = payloadJSON
		}
		out = append(out, Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			EntityID: eid,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
