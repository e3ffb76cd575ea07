// Package checkout turns a visitor's cart into orders.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/cart"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

var (
	ErrLoginRequired    = errors.New("checkout: login required")
	ErrEmptyCart        = errors.New("checkout: cart is empty")
	ErrAlreadyPurchased = errors.New("checkout: every course in the cart is already purchased")
)

// Buyer is the signed-in customer.
type Buyer struct {
	ID       int
	Name     string
	Language string
}

// Result is a completed checkout.
type Result struct {
	Orders  []purchase.Purchase `json:"orders"`
	Skipped []int               `json:"skipped"`
	Total   decimal.Decimal     `json:"total"`
	Status  purchase.Status     `json:"status"`
}

// Service places orders.
type Service struct {
	book   *purchase.Book
	inbox  *notification.Inbox
	bundle *i18n.Bundle
	admins func(ctx context.Context) []AdminRecipient
	logger *slog.Logger
}

// AdminRecipient is an admin to notify about new orders.
type AdminRecipient struct {
	ID       int
	Language string
}

// Option configures a Service.
type Option func(*Service)

// WithAdmins sets the function listing admins to notify.
func WithAdmins(fn func(ctx context.Context) []AdminRecipient) Option {
	return func(s *Service) { s.admins = fn }
}

// WithLogger sets the logger for notification failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service.
func New(book *purchase.Book, inbox *notification.Inbox, bundle *i18n.Bundle, opts ...Option) *Service {
	s := &Service{
		book:   book,
		inbox:  inbox,
		bundle: bundle,
		admins: func(context.Context) []AdminRecipient { return nil },
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout records one order per cart line for buyer, charging unit price
// times quantity. Courses the buyer already owns are skipped. The cart is
// emptied, then the buyer and the admins are notified.
func (s *Service) Checkout(ctx context.Context, buyer Buyer, c *cart.Cart, method purchase.PaymentMethod) (Result, error) {
	if buyer.ID <= 0 {
		return Result{}, ErrLoginRequired
	}
	if !method.Valid() {
		return Result{}, purchase.ErrInvalidMethod
	}
	items := c.Items(ctx)
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	res := Result{
		Orders:  []purchase.Purchase{},
		Skipped: []int{},
		Total:   decimal.Zero,
		Status:  method.InitialStatus(),
	}
	for _, it := range items {
		if s.book.HasPurchased(ctx, buyer.ID, it.ID) {
			res.Skipped = append(res.Skipped, it.ID)
			continue
		}
		p, err := s.book.AddPurchase(ctx, purchase.Order{
			UserID:        buyer.ID,
			CourseID:      it.ID,
			CourseTitle:   it.Title,
			Price:         it.Subtotal(),
			PaymentMethod: method,
		})
		if err != nil {
			return res, err
		}
		res.Orders = append(res.Orders, p)
		res.Total = res.Total.Add(p.Price)
	}

	if err := c.Clear(ctx); err != nil {
		return res, err
	}
	if len(res.Orders) == 0 {
		return res, ErrAlreadyPurchased
	}

	s.notify(ctx, buyer, method, res)
	return res, nil
}

func (s *Service) notify(ctx context.Context, buyer Buyer, method purchase.PaymentMethod, res Result) {
	ids := make([]string, 0, len(res.Orders))
	titles := make([]string, 0, len(res.Orders))
	for _, p := range res.Orders {
		ids = append(ids, p.ID)
		titles = append(titles, p.CourseTitle)
	}
	total := res.Total.StringFixedBank(0)

	key := "order_paid"
	typ := notification.TypeSuccess
	if res.Status == purchase.StatusPending {
		key, typ = "order_pending", notification.TypeOrder
	}
	s.add(ctx, notification.New{
		UserID:  notification.For(buyer.ID),
		Title:   s.bundle.T(buyer.Language, locales.Notifications, key+".title"),
		Message: s.bundle.T(buyer.Language, locales.Notifications, key+".message", i18n.M{"orders": strings.Join(ids, ", "), "total": total}),
		Type:    typ,
	})

	for _, admin := range s.admins(ctx) {
		s.add(ctx, notification.New{
			UserID: notification.For(admin.ID),
			Title:  s.bundle.T(admin.Language, locales.Notifications, "admin_order.title"),
			Message: s.bundle.T(admin.Language, locales.Notifications, "admin_order.message", i18n.M{
				"user":    buyer.Name,
				"courses": strings.Join(titles, ", "),
				"total":   total,
				"method":  string(method),
			}),
			Type: notification.TypeOrder,
		})
	}
}

func (s *Service) add(ctx context.Context, n notification.New) {
	if _, err := s.inbox.Add(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "checkout: notify failed", slog.String("error", err.Error()))
	}
}
