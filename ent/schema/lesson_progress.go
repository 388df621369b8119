package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// LessonProgress is the resumable position of a learner in one lesson.
type LessonProgress struct {
	ent.Schema
}

func (LessonProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("lesson_id").
			Unique().
			NotEmpty(),
		field.String("phase").
			Comment("Phase to resume at"),
		field.String("furthest").
			Comment("Furthest phase reached"),
		field.Int("attempts").Default(0),
		field.Int("best_score").Default(0),
		field.Int("total").Default(0),
		field.Bool("passed").Default(false),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
