// Package catalog holds the public course and vacancy listings.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

const (
	CoursesKey = "courses"
	JobsKey    = "jobs"
)

var (
	ErrCourseNotFound = errors.New("catalog: course not found")
	ErrJobNotFound    = errors.New("catalog: job not found")
	ErrDuplicateID    = errors.New("catalog: duplicate id")
	ErrInvalidPrice   = errors.New("catalog: price must not be negative")
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Course is a sellable course.
type Course struct {
	ID          int             `json:"id"`
	Slug        string          `json:"slug"`
	Title       i18n.Text       `json:"title"`
	Description i18n.Text       `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Level       Level           `json:"level"`
	Duration    string          `json:"duration"`
	Teacher     string          `json:"teacher"`
}

// Courses is the stored course list.
type Courses []Course

func (cs Courses) Validate() error {
	seen := make(map[int]struct{}, len(cs))
	for _, c := range cs {
		if _, ok := seen[c.ID]; ok {
			return ErrDuplicateID
		}
		seen[c.ID] = struct{}{}
		if c.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

// Job is an open vacancy.
type Job struct {
	ID           int         `json:"id"`
	Title        i18n.Text   `json:"title"`
	Description  i18n.Text   `json:"description"`
	Location     string      `json:"location"`
	Employment   string      `json:"employment"`
	Salary       string      `json:"salary"`
	Requirements []i18n.Text `json:"requirements"`
}

// Catalog reads courses and jobs.
type Catalog struct {
	courses *state.Store[Courses]
	jobs    *state.Store[[]Job]
}

// New creates a Catalog over two stores.
func New(courses *state.Store[Courses], jobs *state.Store[[]Job]) *Catalog {
	return &Catalog{courses: courses, jobs: jobs}
}

// Courses lists courses, optionally filtered by level and a case-insensitive
// query matched against titles in every language.
func (c *Catalog) Courses(ctx context.Context, level Level, query string) []Course {
	all := c.courses.Get(ctx)
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Course, 0, len(all))
	for _, course := range all {
		if level != "" && course.Level != level {
			continue
		}
		if query != "" && !matches(course, query) {
			continue
		}
		out = append(out, course)
	}
	return out
}

// Course returns the course by id.
func (c *Catalog) Course(ctx context.Context, id int) (Course, error) {
	for _, course := range c.courses.Get(ctx) {
		if course.ID == id {
			return course, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

// CourseBySlug returns the course by its slug.
func (c *Catalog) CourseBySlug(ctx context.Context, slug string) (Course, error) {
	for _, course := range c.courses.Get(ctx) {
		if course.Slug == slug {
			return course, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

// Jobs lists the open vacancies.
func (c *Catalog) Jobs(ctx context.Context) []Job {
	return c.jobs.Get(ctx)
}

// Job returns the vacancy by id.
func (c *Catalog) Job(ctx context.Context, id int) (Job, error) {
	for _, j := range c.jobs.Get(ctx) {
		if j.ID == id {
			return j, nil
		}
	}
	return Job{}, ErrJobNotFound
}

func matches(c Course, query string) bool {
	if strings.Contains(strings.ToLower(c.Slug), query) {
		return true
	}
	for _, title := range c.Title {
		if strings.Contains(strings.ToLower(title), query) {
			return true
		}
	}
	return false
}
