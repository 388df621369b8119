package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/labquest/internal/events"
)

// LessonStats summarizes one lesson's history.
type LessonStats struct {
	LessonID  string
	Runs      int
	Events    int
	Submitted int
	Restarts  int
	Progress  *Progress
}

// LLMUsage totals LLM calls.
type LLMUsage struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// Stats is the learner-wide summary shown by the stats command.
type Stats struct {
	Lessons  []LessonStats
	Mastered int
	LLM      LLMUsage
}

// Stats aggregates the event log, progress and LLM usage.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("lesson_id", "type", entsql.Count("*")).
		From(b.Table(tableLessonEvents)).
		GroupBy("lesson_id", "type").
		OrderBy("lesson_id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count lesson events: %w", err)
	}
	defer rows.Close()

	byLesson := map[string]*LessonStats{}
	var order []string
	for rows.Next() {
		var (
			id, typ string
			n       int
		)
		if err := rows.Scan(&id, &typ, &n); err != nil {
			return nil, fmt.Errorf("scan event counts: %w", err)
		}
		ls, ok := byLesson[id]
		if !ok {
			ls = &LessonStats{LessonID: id}
			byLesson[id] = ls
			order = append(order, id)
		}
		ls.Events += n
		switch events.Type(typ) {
		case events.TypeTestSubmitted:
			ls.Submitted += n
		case events.TypeLessonRestarted:
			ls.Restarts += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.countRuns(ctx, byLesson); err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo().List(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{}
	for i := range progress {
		p := progress[i]
		ls, ok := byLesson[p.LessonID]
		if !ok {
			ls = &LessonStats{LessonID: p.LessonID}
			byLesson[p.LessonID] = ls
			order = append(order, p.LessonID)
		}
		ls.Progress = &p
		if p.Passed {
			out.Mastered++
		}
	}
	for _, id := range order {
		out.Lessons = append(out.Lessons, *byLesson[id])
	}

	if out.LLM, err = s.llmUsage(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// countRuns fills in the number of distinct runs per lesson.
func (s *Store) countRuns(ctx context.Context, byLesson map[string]*LessonStats) error {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("lesson_id", "COUNT(DISTINCT run_id)").
		From(b.Table(tableLessonEvents)).
		Where(entsql.And(entsql.NotNull("run_id"), entsql.NEQ("run_id", ""))).
		GroupBy("lesson_id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("count runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("scan run counts: %w", err)
		}
		if ls, ok := byLesson[id]; ok {
			ls.Runs = n
		}
	}
	return rows.Err()
}

func (s *Store) llmUsage(ctx context.Context) (LLMUsage, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(
		entsql.Count("*"),
		"COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)",
		"COALESCE(SUM(input_tokens), 0)",
		"COALESCE(SUM(output_tokens), 0)",
	).From(b.Table(tableLLMEvents)).Query()

	var u LLMUsage
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.Requests, &u.Failures, &u.InputTokens, &u.OutputTokens)
	if err != nil && err != sql.ErrNoRows {
		return LLMUsage{}, fmt.Errorf("sum llm usage: %w", err)
	}
	return u, nil
}
