package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/app"
	"github.com/abhisek/labquest/internal/audio"
	"github.com/abhisek/labquest/internal/coach"
	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/lessons"
	"github.com/abhisek/labquest/internal/llm"
	"github.com/abhisek/labquest/internal/logging"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/screens/lesson"
	"github.com/abhisek/labquest/internal/store"
)

// launch selects what the TUI opens at.
type launch struct {
	lessonID string
	phase    string
	watch    bool
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, l launch) error {
	ctx := cmd.Context()

	st, dbPath, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log, err := newLogger(cmd, dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	catalog, err := lessons.Open(ctx, cfg.LessonsDir)
	if err != nil {
		return err
	}
	if l.lessonID != "" {
		if _, ok := catalog.Get(l.lessonID); !ok {
			return fmt.Errorf("unknown lesson %q (see labquest lessons list)", l.lessonID)
		}
		if l.phase == "" {
			l.phase, err = savedPhase(cmd, st.ProgressRepo(), l.lessonID)
			if err != nil {
				return err
			}
		}
		if _, ok := phase.Parse(l.phase); !ok && l.phase != "" {
			log.Warn("unknown start phase, opening at hook", zap.String("phase", l.phase))
		}
	}

	player := audio.NewPlayer(cfg.Audio, log)
	player.Start()
	defer player.Close()

	deps := lesson.Deps{
		Notifier: events.Multi{store.NewRecorder(st, log), events.NewLogger(log), player},
		Base:     cfg.Session(),
		Style:    cfg.Markdown.Style,
		Log:      log,
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	switch {
	case err == nil:
		svc := coach.NewService(provider, cfg.Coach, log)
		defer svc.Close()
		deps.Coach = svc
	case errors.Is(err, llm.ErrDisabled):
		log.Info("llm disabled, review notes off")
	default:
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Review notes will be unavailable.")
	}

	opts := app.Options{
		Catalog:     catalog,
		Progress:    st.ProgressRepo(),
		Events:      st.EventRepo(),
		Lesson:      deps,
		StartLesson: l.lessonID,
		StartPhase:  l.phase,
		Log:         log,
	}

	if l.watch {
		if cfg.LessonsDir == "" {
			return errors.New("--watch needs lessons_dir in the config or LABQUEST_LESSONS_DIR")
		}
		w, err := lessons.NewWatcher(cfg.LessonsDir, lessons.WithWatchLogger(log))
		if err != nil {
			return fmt.Errorf("watch lessons: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return fmt.Errorf("watch %s: %w", cfg.LessonsDir, err)
		}
		defer w.Stop()
		opts.Updates = w.Updates()
	}

	log.Info("starting", zap.String("db", dbPath), zap.Int("lessons", catalog.Len()), zap.String("lesson", l.lessonID))
	return app.Run(opts)
}

func newLogger(cmd *cobra.Command, dbPath string) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	file := cfg.Log.File
	if file == "" {
		file = logging.DefaultFile(dbPath)
	}
	return logging.New(logging.Options{Level: cfg.Log.Level, Debug: debug, File: file})
}

// savedPhase returns where a lesson was left off. A finished lesson
// starts over.
func savedPhase(cmd *cobra.Command, repo store.ProgressRepo, lessonID string) (string, error) {
	p, err := repo.Get(cmd.Context(), lessonID)
	if err != nil {
		return "", fmt.Errorf("load progress: %w", err)
	}
	if p == nil || p.Phase == phase.Mastery {
		return "", nil
	}
	return string(p.Phase), nil
}
