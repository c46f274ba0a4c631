// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemSale is one historical sale of an item title.
type ItemSale struct {
	// Price is the sale price in USD cents.
	Price  decimal.Decimal
	SoldAt time.Time
}

// ItemStats holds the sales catalog entry for one item title.
type ItemStats struct {
	Title  string
	GameID string

	// Sales holds recent sales, newest first.
	Sales []*ItemSale

	// BestBid is the highest live buy-order price and BestAsk is the lowest
	// live sell-offer price, both in USD cents.
	BestBid decimal.Decimal
	BestAsk decimal.Decimal

	UpdatedAt time.Time
}
