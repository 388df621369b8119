package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireEvent is the JSON shape of an Event.
type wireEvent struct {
	Type      Type            `json:"type"`
	LessonID  string          `json:"lesson_id"`
	RunID     string          `json:"run_id,omitempty"`
	Title     string          `json:"title"`
	Details   json.RawMessage `json:"details,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON writes the type tag alongside the detail fields.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		Type:      e.Type,
		LessonID:  e.LessonID,
		RunID:     e.RunID,
		Title:     e.Title,
		Timestamp: e.Timestamp,
	}
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal %s details: %w", e.Type, err)
		}
		w.Details = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores the concrete Details type from the tag.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d, err := DecodeDetails(w.Type, w.Details)
	if err != nil {
		return err
	}
	*e = Event{
		Type:      w.Type,
		LessonID:  w.LessonID,
		RunID:     w.RunID,
		Title:     w.Title,
		Details:   d,
		Timestamp: w.Timestamp,
	}
	return nil
}

// DecodeDetails decodes raw detail JSON for the given type tag.
func DecodeDetails(t Type, raw json.RawMessage) (Details, error) {
	var d Details
	switch t {
	case TypePhaseChange:
		d = decodeInto[PhaseChange](raw)
	case TypePredictionMade:
		d = decodeInto[PredictionMade](raw)
	case TypeApplicationExplored:
		d = decodeInto[ApplicationExplored](raw)
	case TypeAnswerSelected:
		d = decodeInto[AnswerSelected](raw)
	case TypeTestSubmitted:
		d = decodeInto[TestSubmitted](raw)
	case TypeTestRetried:
		d = decodeInto[TestRetried](raw)
	case TypeLessonCompleted:
		d = decodeInto[LessonCompleted](raw)
	case TypeLessonRestarted:
		d = decodeInto[LessonRestarted](raw)
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
	if d == nil {
		return nil, fmt.Errorf("decode %s details", t)
	}
	return d, nil
}

func decodeInto[T Details](raw json.RawMessage) Details {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
