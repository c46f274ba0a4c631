// Copyright (c) 2025 BVK Chaitanya

package bidder

import (
	"fmt"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/shopspring/decimal"
)

type Options struct {
	// GameIDs holds the marketplace games reconciled by the bidder.
	GameIDs []string

	// Interval is the delay between reconcile passes.
	Interval time.Duration

	// ProfitPercent is the minimum resale margin over the bid price. A
	// target is only placed when a live listing could be resold at this
	// margin.
	ProfitPercent decimal.Decimal

	// Blocklist drops candidate titles by case-insensitive substring
	// match.
	Blocklist []string
}

func (v *Options) setDefaults() {
	if len(v.GameIDs) == 0 {
		v.GameIDs = []string{dmarket.GameCS, dmarket.GameDota}
	}
	if v.Interval == 0 {
		v.Interval = 5 * time.Minute
	}
	if v.ProfitPercent.IsZero() {
		v.ProfitPercent = decimal.NewFromInt(7)
	}
}

func (v *Options) Check() error {
	if v.Interval < 0 {
		return fmt.Errorf("pass interval cannot be negative")
	}
	if v.ProfitPercent.IsNegative() {
		return fmt.Errorf("profit percent cannot be negative")
	}
	return nil
}
