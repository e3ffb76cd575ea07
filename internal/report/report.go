// Package report aggregates orders into revenue figures for the admin panel.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/purchase"
)

// Bucket is an order count and amount.
type Bucket struct {
	Orders int             `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

func (b *Bucket) add(p purchase.Purchase) {
	b.Orders++
	b.Amount = b.Amount.Add(p.Price)
}

// CourseRevenue is paid revenue of one course.
type CourseRevenue struct {
	CourseID    int    `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
	Bucket
}

// MonthRevenue is paid revenue of one calendar month, formatted "2006-01".
type MonthRevenue struct {
	Month string `json:"month"`
	Bucket
}

// Summary is the admin revenue report.
// Revenue counts paid orders only; ByStatus covers every order.
type Summary struct {
	TotalOrders  int                               `json:"totalOrders"`
	Revenue      decimal.Decimal                   `json:"revenue"`
	AverageOrder decimal.Decimal                   `json:"averageOrder"`
	Customers    int                               `json:"customers"`
	ByStatus     map[purchase.Status]Bucket        `json:"byStatus"`
	ByMethod     map[purchase.PaymentMethod]Bucket `json:"byMethod"`
	ByCourse     []CourseRevenue                   `json:"byCourse"`
	ByMonth      []MonthRevenue                    `json:"byMonth"`
}

// Filter limits the orders a report covers. Zero bounds are open.
type Filter struct {
	From time.Time
	To   time.Time
}

func (f Filter) includes(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}

// Build computes a Summary over orders.
func Build(orders []purchase.Purchase, f Filter) Summary {
	s := Summary{
		Revenue:      decimal.Zero,
		AverageOrder: decimal.Zero,
		ByStatus:     make(map[purchase.Status]Bucket),
		ByMethod:     make(map[purchase.PaymentMethod]Bucket),
		ByCourse:     []CourseRevenue{},
		ByMonth:      []MonthRevenue{},
	}

	courses := make(map[int]*CourseRevenue)
	months := make(map[string]*MonthRevenue)
	customers := make(map[int]struct{})
	paid := 0

	for _, p := range orders {
		if !f.includes(p.Date) {
			continue
		}
		s.TotalOrders++

		b := s.ByStatus[p.Status]
		b.add(p)
		s.ByStatus[p.Status] = b

		if p.Status != purchase.StatusPaid {
			continue
		}
		paid++
		s.Revenue = s.Revenue.Add(p.Price)
		customers[p.UserID] = struct{}{}

		m := s.ByMethod[p.PaymentMethod]
		m.add(p)
		s.ByMethod[p.PaymentMethod] = m

		c, ok := courses[p.CourseID]
		if !ok {
			c = &CourseRevenue{CourseID: p.CourseID, CourseTitle: p.CourseTitle}
			courses[p.CourseID] = c
		}
		c.add(p)

		key := p.Date.UTC().Format("2006-01")
		mr, ok := months[key]
		if !ok {
			mr = &MonthRevenue{Month: key}
			months[key] = mr
		}
		mr.add(p)
	}

	s.Customers = len(customers)
	if paid > 0 {
		s.AverageOrder = s.Revenue.Div(decimal.NewFromInt(int64(paid))).Round(2)
	}

	for _, c := range courses {
		s.ByCourse = append(s.ByCourse, *c)
	}
	slices.SortFunc(s.ByCourse, func(a, b CourseRevenue) int {
		if d := b.Amount.Cmp(a.Amount); d != 0 {
			return d
		}
		return cmp.Compare(a.CourseID, b.CourseID)
	})

	for _, m := range months {
		s.ByMonth = append(s.ByMonth, *m)
	}
	slices.SortFunc(s.ByMonth, func(a, b MonthRevenue) int { return cmp.Compare(a.Month, b.Month) })

	return s
}
