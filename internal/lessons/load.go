package lessons

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// loadParallelism caps concurrent file reads.
const loadParallelism = 4

// IsLessonFile reports whether name looks like a lesson file.
func IsLessonFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// listLessonFiles returns the lesson files directly under dir, sorted.
func listLessonFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read lesson dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsLessonFile(e.Name()) {
			continue
		}
		names = append(names, path.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// LoadFS parses every lesson file in dir. The first invalid file aborts
// the load.
func LoadFS(ctx context.Context, fsys fs.FS, dir string) ([]*Lesson, error) {
	names, err := listLessonFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	out := make([]*Lesson, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadParallelism)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			l, err := Parse(data, name)
			if err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadDir parses every lesson file in a directory on disk.
func LoadDir(ctx context.Context, dir string) ([]*Lesson, error) {
	return LoadFS(ctx, os.DirFS(dir), ".")
}

// LintResult is the outcome of validating one file.
type LintResult struct {
	File   string
	Lesson *Lesson
	Err    error
}

// Lint validates every lesson file in dir and reports each outcome,
// continuing past failures. Duplicate lesson IDs are reported against the
// later file.
func Lint(ctx context.Context, fsys fs.FS, dir string) ([]LintResult, error) {
	names, err := listLessonFiles(fsys, dir)
	if err != nil {
		return nil, err
	}

	results := make([]LintResult, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadParallelism)
	for i, name := range names {
		g.Go(func() error {
			results[i].File = name
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Lesson, results[i].Err = Parse(data, name)
			return nil
		})
	}
	_ = g.Wait()

	seen := map[string]string{}
	for i := range results {
		l := results[i].Lesson
		if l == nil {
			continue
		}
		if first, dup := seen[l.ID]; dup {
			results[i].Err = &ValidationError{
				Source:   results[i].File,
				Problems: []string{fmt.Sprintf("lesson id %q already defined in %s", l.ID, first)},
			}
			results[i].Lesson = nil
			continue
		}
		seen[l.ID] = results[i].File
	}
	return results, nil
}
