// Package teacher manages the teacher records edited by HR and admins.
package teacher

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/academy/internal/state"
)

// Key is the site storage key of the teacher list.
const Key = "teachers"

var (
	ErrNotFound       = errors.New("teacher: not found")
	ErrInvalidName    = errors.New("teacher: name is required")
	ErrInvalidEmail   = errors.New("teacher: invalid email")
	ErrInvalidSubject = errors.New("teacher: subject is required")
	ErrInvalidStatus  = errors.New("teacher: invalid status")
	ErrInvalidYears   = errors.New("teacher: experience must not be negative")
	ErrEmailTaken     = errors.New("teacher: email already used")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusInactive:
		return true
	}
	return false
}

type Teacher struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Subject    string    `json:"subject"`
	Experience int       `json:"experience"`
	Bio        string    `json:"bio,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Teachers is the stored list.
type Teachers []Teacher

func (ts Teachers) index(id uuid.UUID) int {
	return slices.IndexFunc(ts, func(t Teacher) bool { return t.ID == id })
}

// Input is the editable part of a Teacher.
type Input struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Subject    string `json:"subject"`
	Experience int    `json:"experience"`
	Bio        string `json:"bio"`
	Photo      string `json:"photo"`
	Status     Status `json:"status"`
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Status == "" {
		in.Status = StatusActive
	}

	var errs []error
	if in.Name == "" {
		errs = append(errs, ErrInvalidName)
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		errs = append(errs, ErrInvalidEmail)
	}
	if in.Subject == "" {
		errs = append(errs, ErrInvalidSubject)
	}
	if in.Experience < 0 {
		errs = append(errs, ErrInvalidYears)
	}
	if !in.Status.Valid() {
		errs = append(errs, ErrInvalidStatus)
	}
	return errors.Join(errs...)
}

// Roster edits the teacher list.
type Roster struct {
	store *state.Store[Teachers]
	now   func() time.Time
}

// NewRoster wraps the teacher store.
func NewRoster(store *state.Store[Teachers]) *Roster {
	return &Roster{store: store, now: time.Now}
}

// Store exposes the underlying store for hydration.
func (r *Roster) Store() *state.Store[Teachers] { return r.store }

// List returns teachers sorted by name, optionally filtered by status.
func (r *Roster) List(ctx context.Context, status Status) []Teacher {
	out := make([]Teacher, 0)
	for _, t := range r.store.Get(ctx) {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b Teacher) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Get returns the teacher by id.
func (r *Roster) Get(ctx context.Context, id uuid.UUID) (Teacher, error) {
	ts := r.store.Get(ctx)
	if i := ts.index(id); i >= 0 {
		return ts[i], nil
	}
	return Teacher{}, ErrNotFound
}

// Create adds a teacher with a new random id.
func (r *Roster) Create(ctx context.Context, in Input) (Teacher, error) {
	if err := in.normalize(); err != nil {
		return Teacher{}, err
	}
	now := r.now().UTC()
	t := Teacher{ID: uuid.New(), CreatedAt: now}
	apply(&t, in, now)

	_, err := r.store.Update(ctx, func(ts *Teachers) error {
		if emailTaken(*ts, in.Email, uuid.Nil) {
			return ErrEmailTaken
		}
		*ts = append(*ts, t)
		return nil
	})
	if err != nil {
		return Teacher{}, err
	}
	return t, nil
}

// Update replaces the editable fields of teacher id.
func (r *Roster) Update(ctx context.Context, id uuid.UUID, in Input) (Teacher, error) {
	if err := in.normalize(); err != nil {
		return Teacher{}, err
	}

	var out Teacher
	_, err := r.store.Update(ctx, func(ts *Teachers) error {
		i := ts.index(id)
		if i < 0 {
			return ErrNotFound
		}
		if emailTaken(*ts, in.Email, id) {
			return ErrEmailTaken
		}
		apply(&(*ts)[i], in, r.now().UTC())
		out = (*ts)[i]
		return nil
	})
	if err != nil {
		return Teacher{}, err
	}
	return out, nil
}

// Delete removes teacher id.
func (r *Roster) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, func(ts *Teachers) error {
		i := ts.index(id)
		if i < 0 {
			return ErrNotFound
		}
		*ts = slices.Delete(*ts, i, i+1)
		return nil
	})
	return err
}

func apply(t *Teacher, in Input, now time.Time) {
	t.Name = in.Name
	t.Email = in.Email
	t.Phone = in.Phone
	t.Subject = in.Subject
	t.Experience = in.Experience
	t.Bio = in.Bio
	t.Photo = in.Photo
	t.Status = in.Status
	t.UpdatedAt = now
}

func emailTaken(ts Teachers, email string, except uuid.UUID) bool {
	return slices.ContainsFunc(ts, func(t Teacher) bool {
		return t.ID != except && strings.EqualFold(t.Email, email)
	})
}

// Seed returns the demo teachers.
func Seed() Teachers {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return Teachers{
		{
			ID:         uuid.MustParse("6f1c2a9e-3b5d-4c8e-9a1f-2d7b4e6c8a01"),
			Name:       "Jasur Toshmatov",
			Email:      "jasur@academy.uz",
			Subject:    "Web development",
			Experience: 7,
			Status:     StatusActive,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
		{
			ID:         uuid.MustParse("6f1c2a9e-3b5d-4c8e-9a1f-2d7b4e6c8a02"),
			Name:       "Malika Yusupova",
			Email:      "malika@academy.uz",
			Subject:    "UI/UX design",
			Experience: 5,
			Status:     StatusActive,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
		{
			ID:         uuid.MustParse("6f1c2a9e-3b5d-4c8e-9a1f-2d7b4e6c8a03"),
			Name:       "Sardor Aliyev",
			Email:      "sardor@academy.uz",
			Subject:    "Data science",
			Experience: 4,
			Status:     StatusOnLeave,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}
}
