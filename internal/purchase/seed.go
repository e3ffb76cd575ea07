package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemoUserID owns the seeded orders.
const DemoUserID = 1

// Seed returns the demo orders written into empty storage.
func Seed() Purchases {
	return Purchases{
		{
			ID:            "ORD-001",
			UserID:        DemoUserID,
			CourseID:      1,
			CourseTitle:   "Frontend Development",
			Price:         decimal.NewFromInt(1_200_000),
			Date:          time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Status:        StatusPaid,
			PaymentMethod: MethodCard,
		},
		{
			ID:            "ORD-002",
			UserID:        DemoUserID,
			CourseID:      3,
			CourseTitle:   "UI/UX Design",
			Price:         decimal.NewFromInt(900_000),
			Date:          time.Date(2024, 2, 3, 14, 0, 0, 0, time.UTC),
			Status:        StatusPaid,
			PaymentMethod: MethodPayme,
		},
	}
}
