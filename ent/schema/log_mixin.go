// Package schema declares the persisted entities. The store derives its
// SQLite tables from these declarations at startup.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// LogMixin adds the append-only log position to a table. Sequence values
// come from one counter shared by every log table, so lesson events and
// LLM calls interleave in the order they happened.
type LogMixin struct {
	mixin.Schema
}

func (LogMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Positive().
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(func() time.Time { return time.Now().UTC() }).
			Immutable().
			Comment("UTC"),
	}
}

func (LogMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
	}
}
