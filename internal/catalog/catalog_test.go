package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/catalog"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/kv"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	mem := kv.NewMemory()
	t.Cleanup(func() { _ = mem.Close() })
	return catalog.New(
		state.New(mem, catalog.CoursesKey, catalog.SeedCourses),
		state.New(mem, catalog.JobsKey, catalog.SeedJobs),
	)
}

func TestCatalog_Courses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newCatalog(t)

	tests := []struct {
		name  string
		level catalog.Level
		query string
		want  []int
	}{
		{"all", "", "", []int{1, 2, 3, 4}},
		{"by level", catalog.LevelBeginner, "", []int{1, 3}},
		{"by english title", "", "go", []int{2}},
		{"by russian title", "", "дизайн", []int{3}},
		{"no match", catalog.LevelAdvanced, "react", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ids []int
			for _, course := range c.Courses(ctx, tt.level, tt.query) {
				ids = append(ids, course.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newCatalog(t)

	course, err := c.Course(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "backend-go", course.Slug)
	require.Equal(t, "1500000", course.Price.String())

	bySlug, err := c.CourseBySlug(ctx, "backend-go")
	require.NoError(t, err)
	require.Equal(t, course.ID, bySlug.ID)

	_, err = c.Course(ctx, 42)
	require.ErrorIs(t, err, catalog.ErrCourseNotFound)

	require.Len(t, c.Jobs(ctx), 2)
	_, err = c.Job(ctx, 9)
	require.ErrorIs(t, err, catalog.ErrJobNotFound)
}

func TestCourses_Validate(t *testing.T) {
	t.Parallel()

	cs := catalog.SeedCourses()
	require.NoError(t, cs.Validate())

	dup := append(cs, cs[0])
	require.ErrorIs(t, dup.Validate(), catalog.ErrDuplicateID)
}
