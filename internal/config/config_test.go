package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/session"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LABQUEST_DB", "LABQUEST_LESSONS_DIR", "LABQUEST_LOG_LEVEL", "LABQUEST_LOG_FILE",
		"LABQUEST_MARKDOWN_STYLE", "LABQUEST_JUMP_POLICY", "LABQUEST_AUDIO", "LABQUEST_LLM_PROVIDER",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, session.DefaultConfig(), cfg.Session())
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database:
  path: /tmp/lq.db
lessons_dir: ./lessons
lesson:
  pass_threshold: 8
  jump_policy: any
  retry_phase: twist_review
  debounce: 150ms
audio:
  enabled: false
  volume: 0.2
log:
  level: debug
markdown:
  style: light
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lq.db", cfg.Database.Path)
	assert.Equal(t, "./lessons", cfg.LessonsDir)
	assert.False(t, cfg.Audio.Enabled)
	assert.InDelta(t, 0.2, cfg.Audio.Volume, 1e-9)
	assert.Equal(t, "light", cfg.Markdown.Style)

	sc := cfg.Session()
	assert.Equal(t, 8, sc.PassThreshold)
	assert.Equal(t, session.JumpAny, sc.JumpPolicy)
	assert.Equal(t, phase.TwistReview, sc.RetryPhase)
	assert.Equal(t, 150*time.Millisecond, sc.Debounce)
	assert.Equal(t, session.DefaultMinApplications, sc.MinApplications, "unset fields keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "database:\n  path: /tmp/file.db\naudio:\n  enabled: true\n")
	t.Setenv("LABQUEST_DB", "/tmp/env.db")
	t.Setenv("LABQUEST_AUDIO", "false")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.Anthropic.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "lesson: [\n"},
		{"jump policy", "lesson:\n  jump_policy: sideways\n"},
		{"retry after test", "lesson:\n  retry_phase: mastery\n"},
		{"unknown retry phase", "lesson:\n  retry_phase: recess\n"},
		{"negative debounce", "lesson:\n  debounce: -1s\n"},
		{"volume", "audio:\n  volume: 3\n"},
		{"log level", "log:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body), true)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "labquest", "config.yaml"), p)
}
