package store

import (
	"context"
	"time"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/phase"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	LessonID string      // only this lesson ("" = all)
	Type     events.Type // only this type ("" = all)
	Purpose  string      // only this LLM purpose ("" = all)
	Limit    int         // max results (0 = unlimited)
	After    int64       // sequence > After
	Before   int64       // sequence < Before
	From     time.Time   // timestamp >= From
	To       time.Time   // timestamp <= To
	Newest   bool        // newest first
}

// StoredEvent is a lesson event with its log position.
type StoredEvent struct {
	ID       int
	Sequence int64
	events.Event
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage is token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage is token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLessonEvent records a lesson event and returns its sequence.
	AppendLessonEvent(ctx context.Context, e events.Event) (int64, error)

	// ListLessonEvents returns events matching opts, oldest first unless
	// opts.Newest is set.
	ListLessonEvents(ctx context.Context, opts QueryOpts) ([]StoredEvent, error)

	// GetLessonEvent returns the event with the given sequence, or nil.
	GetLessonEvent(ctx context.Context, seq int64) (*StoredEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one LLM request event by ID, or nil.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// DeleteLessonEvents removes a lesson's events ("" = all lessons).
	DeleteLessonEvents(ctx context.Context, lessonID string) (int, error)
}

// Progress is the resumable state of one lesson.
type Progress struct {
	LessonID    string
	Phase       phase.Phase
	Furthest    phase.Phase
	Attempts    int
	BestScore   int
	Total       int
	Passed      bool
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// ProgressRepo manages per-lesson progress.
type ProgressRepo interface {
	// Save inserts or replaces the progress for p.LessonID.
	Save(ctx context.Context, p Progress) error

	// Get returns the progress for a lesson, or nil if none is stored.
	Get(ctx context.Context, lessonID string) (*Progress, error)

	// List returns all stored progress ordered by lesson ID.
	List(ctx context.Context) ([]Progress, error)

	// Delete removes a lesson's progress ("" = all lessons).
	Delete(ctx context.Context, lessonID string) (int, error)
}
