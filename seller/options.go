// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"fmt"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/shopspring/decimal"
)

type Options struct {
	// GameIDs holds the marketplace games reconciled by the seller.
	GameIDs []string

	// Interval is the delay between reconcile passes.
	Interval time.Duration

	// MinPercent and MaxPercent define the sell band over an item's cost
	// basis. The marketplace fee is added on top, so the band floor never
	// sells below cost.
	MinPercent decimal.Decimal
	MaxPercent decimal.Decimal

	// FeePercent is the sale fee assumed for items without a custom fee
	// schedule.
	FeePercent decimal.Decimal

	// Messenger when non-nil receives purchase and sale notices.
	Messenger Messenger
}

func (v *Options) setDefaults() {
	if len(v.GameIDs) == 0 {
		v.GameIDs = []string{dmarket.GameCS, dmarket.GameDota}
	}
	if v.Interval == 0 {
		v.Interval = 5 * time.Minute
	}
	if v.MinPercent.IsZero() {
		v.MinPercent = decimal.NewFromInt(5)
	}
	if v.MaxPercent.IsZero() {
		v.MaxPercent = decimal.NewFromInt(15)
	}
	if v.FeePercent.IsZero() {
		v.FeePercent = decimal.NewFromInt(7)
	}
}

func (v *Options) Check() error {
	if v.Interval < 0 {
		return fmt.Errorf("pass interval cannot be negative")
	}
	if v.MaxPercent.LessThan(v.MinPercent) {
		return fmt.Errorf("max percent cannot be less than min percent")
	}
	if v.FeePercent.IsNegative() {
		return fmt.Errorf("fee percent cannot be negative")
	}
	return nil
}
