package provider_test

import (
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/cart"
)

func cartItem() cart.Item {
	return cart.Item{ID: 1, Title: "Frontend Development", Price: decimal.NewFromInt(1_200_000)}
}
