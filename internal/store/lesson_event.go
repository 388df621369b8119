package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/labquest/internal/events"
)

// eventRepo implements EventRepo with the sql builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var lessonEventColumns = []string{"id", "sequence", "timestamp", "lesson_id", "run_id", "type", "title", "details"}

func (r *eventRepo) AppendLessonEvent(ctx context.Context, e events.Event) (int64, error) {
	details := []byte("{}")
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return 0, fmt.Errorf("marshal %s details: %w", e.Type, err)
		}
		details = raw
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLessonEvents).
		Columns("sequence", "timestamp", "lesson_id", "run_id", "type", "title", "details").
		Values(seqNum, e.Timestamp.UTC(), e.LessonID, e.RunID, string(e.Type), e.Title, string(details)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save lesson event: %w", err)
	}
	return seqNum, nil
}

func (r *eventRepo) ListLessonEvents(ctx context.Context, opts QueryOpts) ([]StoredEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(lessonEventColumns...).From(b.Table(tableLessonEvents))

	if opts.LessonID != "" {
		sel.Where(entsql.EQ("lesson_id", opts.LessonID))
	}
	if opts.Type != "" {
		sel.Where(entsql.EQ("type", string(opts.Type)))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Newest {
		sel.OrderBy(entsql.Desc("sequence"))
	} else {
		sel.OrderBy(entsql.Asc("sequence"))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lesson events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		se, err := scanLessonEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLessonEvent(ctx context.Context, seq int64) (*StoredEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(lessonEventColumns...).
		From(b.Table(tableLessonEvents)).
		Where(entsql.EQ("sequence", seq)).
		Query()

	se, err := scanLessonEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return se, err
}

func (r *eventRepo) DeleteLessonEvents(ctx context.Context, lessonID string) (int, error) {
	del := entsql.Dialect(dialect.SQLite).Delete(tableLessonEvents)
	if lessonID != "" {
		del.Where(entsql.EQ("lesson_id", lessonID))
	}
	query, args := del.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete lesson events: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLessonEvent(row rowScanner) (*StoredEvent, error) {
	var (
		se      StoredEvent
		runID   sql.NullString
		typ     string
		details string
	)
	err := row.Scan(&se.ID, &se.Sequence, &se.Timestamp, &se.LessonID, &runID, &typ, &se.Title, &details)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lesson event: %w", err)
	}
	se.RunID = runID.String
	se.Type = events.Type(typ)
	d, err := events.DecodeDetails(se.Type, json.RawMessage(details))
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", se.Sequence, err)
	}
	se.Details = d
	return &se, nil
}
