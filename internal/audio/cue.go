package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue names a short sound effect.
type Cue string

const (
	CueTransition Cue = "transition"
	CueSelect     Cue = "select"
	CueCorrect    Cue = "correct"
	CueIncorrect  Cue = "incorrect"
	CueMastery    Cue = "mastery"
)

// Cues lists every cue.
var Cues = []Cue{CueTransition, CueSelect, CueCorrect, CueIncorrect, CueMastery}

// Build synthesizes the streamer for c at the given volume.
func Build(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueTransition:
		s = beep.Seq(
			note(523.25, 60*time.Millisecond, WaveSine, rate),
			note(659.25, 90*time.Millisecond, WaveSine, rate),
		)
	case CueSelect:
		s = note(880, 40*time.Millisecond, WaveTriangle, rate)
	case CueCorrect:
		s = beep.Mix(
			withVolume(note(880, 250*time.Millisecond, WaveSine, rate), 0.7),
			withVolume(note(1760, 250*time.Millisecond, WaveSine, rate), 0.3),
		)
	case CueIncorrect:
		s = beep.Seq(
			withVolume(note(220, 120*time.Millisecond, WaveSquare, rate), 0.4),
			withVolume(note(165, 180*time.Millisecond, WaveSquare, rate), 0.4),
		)
	case CueMastery:
		s = beep.Seq(
			note(523.25, 100*time.Millisecond, WaveSine, rate),
			note(659.25, 100*time.Millisecond, WaveSine, rate),
			note(783.99, 100*time.Millisecond, WaveSine, rate),
			note(1046.5, 300*time.Millisecond, WaveSine, rate),
		)
	default:
		return nil
	}
	return withVolume(s, volume)
}
