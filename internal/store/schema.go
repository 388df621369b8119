package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	entsqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/labquest/ent/schema"
)

const (
	tableLessonEvents   = "lesson_events"
	tableLessonProgress = "lesson_progress"
	tableLLMEvents      = "llm_request_events"
)

// managedTables maps each table to the entity declaration it is built from.
var managedTables = []struct {
	name   string
	entity ent.Interface
}{
	{tableLessonEvents, entschema.LessonEvent{}},
	{tableLessonProgress, entschema.LessonProgress{}},
	{tableLLMEvents, entschema.LLMRequestEvent{}},
}

// migrate creates or upgrades every managed table. Columns are never
// dropped.
func migrate(ctx context.Context, drv dialect.Driver) error {
	tables := make([]*entsqlschema.Table, 0, len(managedTables))
	for _, mt := range managedTables {
		t, err := tableFor(mt.name, mt.entity)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}
	m, err := entsqlschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}

// tableFor converts an entity declaration into a migration table with an
// auto-increment id primary key.
func tableFor(name string, e ent.Interface) (*entsqlschema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range e.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.Fields()...)
	indexes = append(indexes, e.Indexes()...)

	t := entsqlschema.NewTable(name).
		AddPrimary(&entsqlschema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		t.AddColumn(&entsqlschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional,
			Size:     int64(d.Size),
		})
	}

	for _, ix := range indexes {
		d := ix.Descriptor()
		idx := strings.ReplaceAll(name, "_", "") + "_" + strings.Join(d.Fields, "_")
		t.AddIndex(idx, d.Unique, d.Fields)
	}
	return t, nil
}
