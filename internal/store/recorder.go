package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/phase"
)

// writeTimeout bounds each write made on behalf of a notification.
const writeTimeout = 5 * time.Second

// Recorder persists lesson events and folds them into lesson progress. It
// satisfies events.Notifier; write failures are logged, never returned.
type Recorder struct {
	events   EventRepo
	progress ProgressRepo
	log      *zap.Logger
}

// NewRecorder returns a Recorder writing to s.
func NewRecorder(s *Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		events:   s.EventRepo(),
		progress: s.ProgressRepo(),
		log:      log.Named("recorder"),
	}
}

// Notify implements events.Notifier.
func (r *Recorder) Notify(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	seq, err := r.events.AppendLessonEvent(ctx, e)
	if err != nil {
		r.log.Error("append lesson event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}

	if err := r.fold(ctx, e); err != nil {
		r.log.Error("update progress", zap.Int64("sequence", seq), zap.Error(err))
	}
}

// fold applies e to the stored progress for its lesson.
func (r *Recorder) fold(ctx context.Context, e events.Event) error {
	cur, err := r.progress.Get(ctx, e.LessonID)
	if err != nil {
		return err
	}
	p := Progress{LessonID: e.LessonID, Phase: phase.First, Furthest: phase.First}
	if cur != nil {
		p = *cur
	}
	if !ApplyEvent(&p, e) {
		return nil
	}
	p.UpdatedAt = e.Timestamp
	return r.progress.Save(ctx, p)
}

// ApplyEvent updates p for e and reports whether anything changed.
func ApplyEvent(p *Progress, e events.Event) bool {
	switch d := e.Details.(type) {
	case events.PhaseChange:
		p.Phase = d.To
		if d.To.Index() > p.Furthest.Index() {
			p.Furthest = d.To
		}
	case events.TestSubmitted:
		p.Attempts++
		p.Total = d.Total
		if d.Score > p.BestScore {
			p.BestScore = d.Score
		}
		if d.Passed {
			p.Passed = true
		}
	case events.LessonCompleted:
		p.Passed = true
		if p.CompletedAt == nil {
			at := e.Timestamp
			p.CompletedAt = &at
		}
	case events.LessonRestarted:
		p.Phase = phase.First
	default:
		return false
	}
	return true
}
