// Package config loads labquest settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/labquest/internal/audio"
	"github.com/abhisek/labquest/internal/coach"
	"github.com/abhisek/labquest/internal/llm"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/session"
	"github.com/abhisek/labquest/internal/ui/markdown"
)

// Config holds all labquest settings.
type Config struct {
	Database DatabaseConfig `yaml:"database"`

	// LessonsDir adds YAML lessons on top of the built-in catalog.
	LessonsDir string `yaml:"lessons_dir"`

	Lesson   LessonConfig   `yaml:"lesson"`
	Audio    audio.Config   `yaml:"audio"`
	Log      LogConfig      `yaml:"log"`
	LLM      llm.Config     `yaml:"llm"`
	Coach    coach.Config   `yaml:"coach"`
	Markdown MarkdownConfig `yaml:"markdown"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is the database file. Empty uses the XDG data directory.
	Path string `yaml:"path"`
}

// LessonConfig holds the gating defaults every lesson starts from. A
// lesson file's own gates win over these.
type LessonConfig struct {
	PassThreshold   int           `yaml:"pass_threshold"`
	MinApplications int           `yaml:"min_applications"`
	JumpPolicy      string        `yaml:"jump_policy"`
	RetryPhase      string        `yaml:"retry_phase"`
	Debounce        time.Duration `yaml:"debounce"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level string `yaml:"level"`

	// File is the log file. Empty uses labquest.log next to the database.
	File string `yaml:"file"`
}

// MarkdownConfig selects the glamour style for lesson text.
type MarkdownConfig struct {
	Style string `yaml:"style"`
}

// Default returns the built-in settings.
func Default() Config {
	d := session.DefaultConfig()
	return Config{
		Lesson: LessonConfig{
			PassThreshold:   d.PassThreshold,
			MinApplications: d.MinApplications,
			JumpPolicy:      string(d.JumpPolicy),
			RetryPhase:      string(d.RetryPhase),
			Debounce:        d.Debounce,
		},
		Audio:    audio.DefaultConfig(),
		Log:      LogConfig{Level: "info"},
		LLM:      llm.DefaultConfig(),
		Coach:    coach.DefaultConfig(),
		Markdown: MarkdownConfig{Style: markdown.DefaultStyle},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/labquest/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "labquest", "config.yaml"), nil
}

// Load reads path over the defaults and applies LABQUEST_* environment
// overrides. A missing file is not an error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Database.Path, "LABQUEST_DB")
	set(&c.LessonsDir, "LABQUEST_LESSONS_DIR")
	set(&c.Log.Level, "LABQUEST_LOG_LEVEL")
	set(&c.Log.File, "LABQUEST_LOG_FILE")
	set(&c.Markdown.Style, "LABQUEST_MARKDOWN_STYLE")
	set(&c.Lesson.JumpPolicy, "LABQUEST_JUMP_POLICY")

	if v := os.Getenv("LABQUEST_AUDIO"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Audio.Enabled = on
		}
	}
	c.LLM = c.LLM.ApplyEnv()
}

// Validate rejects settings that cannot be applied.
func (c Config) Validate() error {
	if _, err := session.ParseJumpPolicy(c.Lesson.JumpPolicy); err != nil {
		return fmt.Errorf("lesson.jump_policy: %w", err)
	}
	if c.Lesson.RetryPhase != "" {
		p, ok := phase.Parse(c.Lesson.RetryPhase)
		if !ok || !p.Before(phase.Test) {
			return fmt.Errorf("lesson.retry_phase: %q is not a phase before test", c.Lesson.RetryPhase)
		}
	}
	if c.Lesson.PassThreshold < 0 || c.Lesson.MinApplications < 0 {
		return errors.New("lesson: thresholds must not be negative")
	}
	if c.Lesson.Debounce < 0 {
		return errors.New("lesson.debounce must not be negative")
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume: %v is outside 0..1", c.Audio.Volume)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Session converts the lesson defaults into controller gating rules.
func (c Config) Session() session.Config {
	p, _ := phase.Parse(c.Lesson.RetryPhase)
	jp, _ := session.ParseJumpPolicy(c.Lesson.JumpPolicy)
	return session.Config{
		PassThreshold:   c.Lesson.PassThreshold,
		MinApplications: c.Lesson.MinApplications,
		JumpPolicy:      jp,
		RetryPhase:      p,
		Debounce:        c.Lesson.Debounce,
	}
}
