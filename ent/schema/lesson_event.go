package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LessonEvent is one entry of the append-only lesson event log.
type LessonEvent struct {
	ent.Schema
}

func (LessonEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{LogMixin{}}
}

func (LessonEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("lesson_id").NotEmpty(),
		field.String("run_id").
			Optional().
			Comment("Identifies one pass through the lesson"),
		field.String("type").
			NotEmpty().
			Comment("Event type tag, e.g. phase_change"),
		field.String("title"),
		field.Text("details").
			Default("{}").
			Comment("JSON-encoded type-specific payload"),
	}
}

func (LessonEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("lesson_id"),
		index.Fields("type"),
		index.Fields("run_id"),
	}
}
