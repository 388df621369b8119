package store

import (
	"context"
	"fmt"
)

// ResetResult reports what Reset removed.
type ResetResult struct {
	Events   int
	Progress int
}

// Reset deletes the event log and progress for one lesson, or for every
// lesson when lessonID is empty. LLM usage history is kept.
func (s *Store) Reset(ctx context.Context, lessonID string) (ResetResult, error) {
	var res ResetResult
	var err error
	if res.Events, err = s.EventRepo().DeleteLessonEvents(ctx, lessonID); err != nil {
		return res, fmt.Errorf("reset: %w", err)
	}
	if res.Progress, err = s.ProgressRepo().Delete(ctx, lessonID); err != nil {
		return res, fmt.Errorf("reset: %w", err)
	}
	return res, nil
}
