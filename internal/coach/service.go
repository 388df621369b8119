package coach

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/llm"
)

// Service generates review notes asynchronously.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	pending *Note
	err     error
	ready   bool
	wg      sync.WaitGroup
}

// NewService creates a note service. A nil provider yields a service that
// never produces notes. log may be nil.
func NewService(provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, log: log.Named("coach")}
}

// Enabled reports whether notes can be produced.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// RequestNote starts generating a note in the background. Only the most
// recent request is kept; an older in-flight request is cancelled.
func (s *Service) RequestNote(ctx context.Context, in Input) {
	if !s.Enabled() || len(in.Missed) == 0 {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.ready = false
	s.pending = nil
	s.err = nil
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		note, err := s.Generate(ctx, in)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			// Superseded.
			return
		}
		s.cancel = nil
		s.pending, s.err, s.ready = note, err, true
		if err != nil {
			s.log.Warn("review note failed", zap.String("lesson", in.LessonID), zap.Error(err))
		}
	}()
}

// ConsumeNote returns the note once it is ready and clears the slot. A
// failed request is consumed silently and reports (nil, false).
func (s *Service) ConsumeNote() (*Note, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, false
	}
	note := s.pending
	s.pending, s.err, s.ready = nil, nil, false
	return note, note != nil
}

// Pending reports whether a request is in flight or unconsumed.
func (s *Service) Pending() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil || s.ready
}

// Close cancels any in-flight request and waits for it to finish.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.mu.Unlock()
	s.wg.Wait()
}

type noteOutput struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
	Retry   string   `json:"retry"`
}

// Generate writes a note synchronously.
func (s *Service) Generate(ctx context.Context, in Input) (*Note, error) {
	if !s.Enabled() {
		return nil, llm.ErrDisabled
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeReviewNote)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      noteSystemPrompt,
		Messages:    llm.UserMessage(buildNoteMessage(in, s.cfg.PromptBudget)),
		Schema:      NoteSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("review note: %w", err)
	}

	var out noteOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse review note: %w", err)
	}
	return &Note{
		LessonID: in.LessonID,
		Attempt:  in.Attempt,
		Summary:  out.Summary,
		Tips:     out.Tips,
		Retry:    out.Retry,
	}, nil
}
