// Package purchase records course orders.
//
// Orders are site-wide: every visitor's Book reads and writes the same
// storage key, and getters re-read storage so orders placed through other
// instances are visible immediately.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/id"
)

// Key is the site storage key of the order list.
const Key = "purchases"

var (
	ErrNotFound        = errors.New("purchase: not found")
	ErrInvalidStatus   = errors.New("purchase: invalid status")
	ErrInvalidMethod   = errors.New("purchase: invalid payment method")
	ErrInvalidUser     = errors.New("purchase: user id is required")
	ErrInvalidCourse   = errors.New("purchase: course id is required")
	ErrInvalidPrice    = errors.New("purchase: price must not be negative")
	ErrDuplicateID     = errors.New("purchase: duplicate id")
	ErrStatusFinalized = errors.New("purchase: cancelled order cannot change status")
)

type Status string

const (
	StatusPaid      Status = "paid"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodClick PaymentMethod = "click"
	MethodPayme PaymentMethod = "payme"
	MethodCard  PaymentMethod = "card"
	MethodCash  PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodClick, MethodPayme, MethodCard, MethodCash:
		return true
	}
	return false
}

// InitialStatus is the status of a new order paid with m.
// Cash is settled offline, so it starts pending.
func (m PaymentMethod) InitialStatus() Status {
	if m == MethodCash {
		return StatusPending
	}
	return StatusPaid
}

// Purchase is one order line.
type Purchase struct {
	ID            string          `json:"id"`
	UserID        int             `json:"userId"`
	CourseID      int             `json:"courseId"`
	CourseTitle   string          `json:"courseTitle"`
	Price         decimal.Decimal `json:"price"`
	Date          time.Time       `json:"date"`
	Status        Status          `json:"status"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// Purchases is the stored order list.
type Purchases []Purchase

func (ps Purchases) Validate() error {
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if !p.Status.Valid() {
			return ErrInvalidStatus
		}
	}
	return nil
}

func (ps Purchases) has(id string) bool {
	return slices.ContainsFunc(ps, func(p Purchase) bool { return p.ID == id })
}

// Change is the payload of events.PurchasesUpdated.
type Change struct {
	ID     string `json:"id"`
	UserID int    `json:"userId"`
	Status Status `json:"status"`
}

// Book reads and writes orders.
type Book struct {
	store  *state.Store[Purchases]
	bus    *events.Bus
	now    func() time.Time
	intn   func(n int) int
	logger *slog.Logger
}

// Option configures a Book.
type Option func(*Book)

// WithEvents publishes a Change on bus for every added or updated order,
// scoped to the owner.
func WithEvents(bus *events.Bus) Option {
	return func(b *Book) { b.bus = bus }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithRand overrides the random source used for order ids.
func WithRand(intn func(n int) int) Option {
	return func(b *Book) { b.intn = intn }
}

// WithLogger sets the logger for publish failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// New wraps the order store. The store should be created WithReread.
func New(store *state.Store[Purchases], opts ...Option) *Book {
	b := &Book{
		store:  store,
		now:    time.Now,
		intn:   rand.IntN,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store exposes the underlying store for hydration.
func (b *Book) Store() *state.Store[Purchases] { return b.store }

// Order is the input of AddPurchase.
type Order struct {
	UserID        int
	CourseID      int
	CourseTitle   string
	Price         decimal.Decimal
	PaymentMethod PaymentMethod
	// Status defaults to PaymentMethod.InitialStatus().
	Status Status
}

// AddPurchase records a new order with a generated id and the current time.
func (b *Book) AddPurchase(ctx context.Context, o Order) (Purchase, error) {
	switch {
	case o.UserID <= 0:
		return Purchase{}, ErrInvalidUser
	case o.CourseID <= 0:
		return Purchase{}, ErrInvalidCourse
	case o.Price.IsNegative():
		return Purchase{}, ErrInvalidPrice
	case !o.PaymentMethod.Valid():
		return Purchase{}, ErrInvalidMethod
	}
	if o.Status == "" {
		o.Status = o.PaymentMethod.InitialStatus()
	}
	if !o.Status.Valid() {
		return Purchase{}, ErrInvalidStatus
	}

	var p Purchase
	_, err := b.store.Update(ctx, func(ps *Purchases) error {
		p = Purchase{
			ID:            b.nextID(*ps),
			UserID:        o.UserID,
			CourseID:      o.CourseID,
			CourseTitle:   o.CourseTitle,
			Price:         o.Price,
			Date:          b.now().UTC(),
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
		}
		*ps = append(*ps, p)
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	b.publish(ctx, p)
	return p, nil
}

// GetUserPurchases returns the orders of userID, newest first.
func (b *Book) GetUserPurchases(ctx context.Context, userID int) []Purchase {
	out := make([]Purchase, 0)
	for _, p := range b.store.Get(ctx) {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out
}

// GetAllPurchases returns every order, newest first.
func (b *Book) GetAllPurchases(ctx context.Context) []Purchase {
	out := []Purchase(b.store.Get(ctx))
	if out == nil {
		return []Purchase{}
	}
	sortNewestFirst(out)
	return out
}

// Get returns the order by id.
func (b *Book) Get(ctx context.Context, id string) (Purchase, error) {
	for _, p := range b.store.Get(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return Purchase{}, ErrNotFound
}

// UpdatePurchaseStatus sets the status of order id.
// A cancelled order stays cancelled.
func (b *Book) UpdatePurchaseStatus(ctx context.Context, id string, status Status) (Purchase, error) {
	if !status.Valid() {
		return Purchase{}, ErrInvalidStatus
	}

	var p Purchase
	_, err := b.store.Update(ctx, func(ps *Purchases) error {
		i := slices.IndexFunc(*ps, func(p Purchase) bool { return p.ID == id })
		if i < 0 {
			return ErrNotFound
		}
		if (*ps)[i].Status == StatusCancelled && status != StatusCancelled {
			return ErrStatusFinalized
		}
		(*ps)[i].Status = status
		p = (*ps)[i]
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	b.publish(ctx, p)
	return p, nil
}

// HasPurchased reports whether userID holds a paid or pending order for courseID.
func (b *Book) HasPurchased(ctx context.Context, userID, courseID int) bool {
	return slices.ContainsFunc(b.store.Get(ctx), func(p Purchase) bool {
		return p.UserID == userID && p.CourseID == courseID && p.Status != StatusCancelled
	})
}

// CancelStalePending cancels pending orders placed before now minus maxAge
// and returns them.
func (b *Book) CancelStalePending(ctx context.Context, maxAge time.Duration) ([]Purchase, error) {
	cutoff := b.now().Add(-maxAge)

	var cancelled []Purchase
	_, err := b.store.Update(ctx, func(ps *Purchases) error {
		cancelled = cancelled[:0]
		for i := range *ps {
			p := &(*ps)[i]
			if p.Status == StatusPending && p.Date.Before(cutoff) {
				p.Status = StatusCancelled
				cancelled = append(cancelled, *p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, p := range cancelled {
		b.publish(ctx, p)
	}
	return cancelled, nil
}

// Clear removes every order. The next load seeds the demo orders again.
func (b *Book) Clear(ctx context.Context) {
	b.store.Clear(ctx)
}

// nextID returns "ORD-" followed by three random digits, retrying on
// collision. A crowded id space falls back to a ULID suffix.
func (b *Book) nextID(ps Purchases) string {
	for range 20 {
		candidate := fmt.Sprintf("ORD-%03d", b.intn(1000))
		if !ps.has(candidate) {
			return candidate
		}
	}
	return "ORD-" + id.NewULID()
}

func (b *Book) publish(ctx context.Context, p Purchase) {
	if b.bus == nil {
		return
	}
	change := Change{ID: p.ID, UserID: p.UserID, Status: p.Status}
	if err := b.bus.Emit(ctx, events.PurchasesUpdated, events.UserScope(p.UserID), change); err != nil {
		b.logger.ErrorContext(ctx, "purchase: publish failed", slog.String("error", err.Error()))
	}
}

func sortNewestFirst(ps []Purchase) {
	slices.SortStableFunc(ps, func(a, b Purchase) int { return b.Date.Compare(a.Date) })
}
