// Package audio plays short synthesized cues for lesson events. Without a
// usable output device it degrades to silence.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/abhisek/labquest/internal/events"
)

// DefaultSampleRate is used when the configured rate is unset.
const DefaultSampleRate = beep.SampleRate(44100)

// Config controls playback.
type Config struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`
	SampleRate int     `yaml:"sample_rate"`
}

// DefaultConfig has audio on at a moderate volume.
func DefaultConfig() Config {
	return Config{Enabled: true, Volume: 0.5, SampleRate: int(DefaultSampleRate)}
}

// output is the device the player writes to.
type output interface {
	Init(rate beep.SampleRate, buffer int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, buffer int) error { return speaker.Init(rate, buffer) }
func (speakerOutput) Play(s beep.Streamer)                        { speaker.Play(s) }
func (speakerOutput) Lock()                                       { speaker.Lock() }
func (speakerOutput) Unlock()                                     { speaker.Unlock() }

// Player mixes cues onto the speaker. The zero value is silent.
type Player struct {
	mu       sync.Mutex
	cfg      Config
	rate     beep.SampleRate
	out      output
	mixer    *beep.Mixer
	started  bool
	disabled bool
	log      *zap.Logger
}

// NewPlayer returns a player for cfg. Call Start before playing.
func NewPlayer(cfg Config, log *zap.Logger) *Player {
	return newPlayer(cfg, speakerOutput{}, log)
}

func newPlayer(cfg Config, out output, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 1 {
		cfg.Volume = 1
	}
	return &Player{
		cfg:      cfg,
		rate:     rate,
		out:      out,
		mixer:    &beep.Mixer{},
		disabled: !cfg.Enabled,
		log:      log.Named("audio"),
	}
}

// Start opens the output device. Failure, including a panic inside the
// device driver, disables the player instead of returning an error.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.disabled || p.out == nil {
		return
	}
	if err := p.initOutput(); err != nil {
		p.log.Info("audio unavailable, continuing silently", zap.Error(err))
		p.disabled = true
		return
	}
	p.out.Play(p.mixer)
	p.started = true
}

func (p *Player) initOutput() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audio init panic: %v", r)
		}
	}()
	return p.out.Init(p.rate, p.rate.N(100*time.Millisecond))
}

// Enabled reports whether cues will be heard.
func (p *Player) Enabled() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && !p.disabled
}

// Play queues a cue. It is a no-op when the player is disabled.
func (p *Player) Play(c Cue) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.disabled {
		return
	}
	s := Build(c, p.rate, p.cfg.Volume)
	if s == nil {
		return
	}
	p.out.Lock()
	p.mixer.Add(s)
	p.out.Unlock()
}

// Notify implements events.Notifier by mapping events to cues.
func (p *Player) Notify(e events.Event) {
	if c, ok := CueFor(e); ok {
		p.Play(c)
	}
}

// CueFor picks the cue for an event.
func CueFor(e events.Event) (Cue, bool) {
	switch d := e.Details.(type) {
	case events.PhaseChange:
		return CueTransition, true
	case events.PredictionMade, events.AnswerSelected, events.ApplicationExplored:
		return CueSelect, true
	case events.TestSubmitted:
		if d.Passed {
			return CueCorrect, true
		}
		return CueIncorrect, true
	case events.LessonCompleted:
		return CueMastery, true
	}
	return "", false
}

// Close silences pending cues and disables the player.
func (p *Player) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		p.out.Lock()
		p.mixer.Clear()
		p.out.Unlock()
	}
	p.started = false
	p.disabled = true
}
