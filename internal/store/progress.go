package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/labquest/internal/phase"
)

// progressRepo implements ProgressRepo.
type progressRepo struct {
	db *sql.DB
}

var progressColumns = []string{
	"lesson_id", "phase", "furthest", "attempts", "best_score",
	"total", "passed", "completed_at", "updated_at",
}

func (r *progressRepo) Save(ctx context.Context, p Progress) error {
	if p.LessonID == "" {
		return errors.New("save progress: empty lesson id")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	var completed any
	if p.CompletedAt != nil {
		completed = p.CompletedAt.UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLessonProgress).
		Columns(progressColumns...).
		Values(p.LessonID, string(p.Phase), string(p.Furthest), p.Attempts, p.BestScore,
			p.Total, p.Passed, completed, p.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("lesson_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, lessonID string) (*Progress, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(progressColumns...).
		From(b.Table(tableLessonProgress)).
		Where(entsql.EQ("lesson_id", lessonID)).
		Query()

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (r *progressRepo) List(ctx context.Context) ([]Progress, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(progressColumns...).
		From(b.Table(tableLessonProgress)).
		OrderBy(entsql.Asc("lesson_id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *progressRepo) Delete(ctx context.Context, lessonID string) (int, error) {
	del := entsql.Dialect(dialect.SQLite).Delete(tableLessonProgress)
	if lessonID != "" {
		del.Where(entsql.EQ("lesson_id", lessonID))
	}
	query, args := del.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete progress: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanProgress(row rowScanner) (*Progress, error) {
	var (
		p         Progress
		ph, far   string
		completed sql.NullTime
	)
	err := row.Scan(&p.LessonID, &ph, &far, &p.Attempts, &p.BestScore,
		&p.Total, &p.Passed, &completed, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Phase = phase.Phase(ph)
	p.Furthest = phase.Phase(far)
	if completed.Valid {
		t := completed.Time
		p.CompletedAt = &t
	}
	return &p, nil
}
