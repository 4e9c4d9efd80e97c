package models

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema
// 1 - events table with start_time index
const currentSchemaVersion = 1

const eventColumns = `id, name, start_time, end_time, description, last_updated, street, suburb, state, post_code`

type sqliteTxKey struct{}

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepo stores events in SQLite. Timestamps are unix seconds and are
// returned in loc.
type SQLiteRepo struct {
	db  *sql.DB
	loc *time.Location
}

func SQLiteNewRepo(db *sql.DB, loc *time.Location) *SQLiteRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLiteRepo{db: db, loc: loc}
}

// EnsureSchema creates the events table and runs migrations. Idempotent.
func (sr *SQLiteRepo) EnsureSchema(ctx context.Context) error {
	if _, err := sr.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := sr.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := sr.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func (sr *SQLiteRepo) conn(ctx context.Context) sqlConn {
	if tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return sr.db
}

// WithTx runs fn inside one transaction. The connection pool holds a single
// connection, so the transaction also excludes every other statement until
// it commits or rolls back.
func (sr *SQLiteRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := sr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(context.WithValue(ctx, sqliteTxKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (sr *SQLiteRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	res, err := sr.conn(ctx).ExecContext(ctx, `
		INSERT INTO events
		(name, start_time, end_time, description, last_updated, street, suburb, state, post_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.Name,
		event.StartTime.Unix(),
		event.EndTime.Unix(),
		event.Description,
		event.LastUpdated.Unix(),
		event.Location.Street,
		event.Location.Suburb,
		event.Location.State,
		event.Location.PostCode,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert event: last insert id: %w", err)
	}

	created := event.Clone()
	created.ID = id
	return sr.inLocation(created), nil
}

func (sr *SQLiteRepo) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := sr.conn(ctx).QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := sr.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return ev, nil
}

func (sr *SQLiteRepo) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := sr.conn(ctx).QueryContext(ctx, `SELECT `+eventColumns+` FROM events`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		ev, err := sr.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (sr *SQLiteRepo) UpdateEvent(ctx context.Context, event *Event) (*Event, error) {
	res, err := sr.conn(ctx).ExecContext(ctx, `
		UPDATE events SET
			name = ?, start_time = ?, end_time = ?, description = ?, last_updated = ?,
			street = ?, suburb = ?, state = ?, post_code = ?
		WHERE id = ?
	`,
		event.Name,
		event.StartTime.Unix(),
		event.EndTime.Unix(),
		event.Description,
		event.LastUpdated.Unix(),
		event.Location.Street,
		event.Location.Suburb,
		event.Location.State,
		event.Location.PostCode,
		event.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", event.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", event.ID, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return sr.inLocation(event.Clone()), nil
}

func (sr *SQLiteRepo) DeleteEvent(ctx context.Context, id int64) error {
	res, err := sr.conn(ctx).ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (sr *SQLiteRepo) Close(ctx context.Context) error {
	if sr.db == nil {
		return nil
	}
	return sr.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (sr *SQLiteRepo) scanEvent(row rowScanner) (*Event, error) {
	var (
		ev                        Event
		start, end, lastUpdatedAt int64
	)
	err := row.Scan(
		&ev.ID,
		&ev.Name,
		&start,
		&end,
		&ev.Description,
		&lastUpdatedAt,
		&ev.Location.Street,
		&ev.Location.Suburb,
		&ev.Location.State,
		&ev.Location.PostCode,
	)
	if err != nil {
		return nil, err
	}
	ev.StartTime = time.Unix(start, 0).In(sr.loc)
	ev.EndTime = time.Unix(end, 0).In(sr.loc)
	ev.LastUpdated = time.Unix(lastUpdatedAt, 0).In(sr.loc)
	return &ev, nil
}

func (sr *SQLiteRepo) inLocation(ev *Event) *Event {
	ev.StartTime = ev.StartTime.In(sr.loc)
	ev.EndTime = ev.EndTime.In(sr.loc)
	ev.LastUpdated = ev.LastUpdated.In(sr.loc)
	return ev
}
