// Copyright (c) 2025 BVK Chaitanya

// Package pricing computes buy and sell prices for marketplace items. All
// functions are pure and total over non-negative decimal inputs.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// Sell prices are denominated in whole USD, so the undercut step is one
	// cent. Buy prices are denominated in USD cents, so the outbid step is
	// one unit.
	sellIncrement = decimal.RequireFromString("0.01")
	buyIncrement  = decimal.NewFromInt(1)
)

// Band is an inclusive price interval.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (b *Band) Check() error {
	if b.Min.IsNegative() {
		return fmt.Errorf("band min cannot be negative")
	}
	if b.Max.LessThan(b.Min) {
		return fmt.Errorf("band max cannot be less than band min")
	}
	return nil
}

func (b *Band) In(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(b.Min) && price.LessThanOrEqual(b.Max)
}

// SellPrice returns the listing price against the best competing ask. The
// price undercuts the best ask by one cent when the ask falls inside the
// band and never leaves the band. Values are in whole USD.
func SellPrice(band *Band, best decimal.Decimal) decimal.Decimal {
	if best.LessThanOrEqual(band.Min) {
		return band.Min
	}
	if best.LessThanOrEqual(band.Max) {
		return decimal.Max(band.Min, best.Sub(sellIncrement))
	}
	return band.Max
}

// BuyPrice returns the order price against the best competing bid. The
// price outbids the best bid by one cent when the bid falls inside the band
// and never leaves the band. Values are in USD cents.
func BuyPrice(band *Band, best decimal.Decimal) decimal.Decimal {
	if best.GreaterThanOrEqual(band.Max) {
		return band.Max
	}
	if best.GreaterThan(band.Min) {
		return decimal.Min(band.Max, best.Add(buyIncrement))
	}
	return band.Min
}

// SellBand returns the price interval for listing an item bought at the
// given cost. The marketplace fee is added on top of both markup limits so
// that net proceeds stay inside the configured profit range.
func SellBand(buyPrice, minPercent, maxPercent, feePercent decimal.Decimal) *Band {
	return &Band{
		Min: Markup(buyPrice, minPercent.Add(feePercent)),
		Max: Markup(buyPrice, maxPercent.Add(feePercent)),
	}
}

// BuyBand returns the price interval for bidding on an item around the best
// live order price.
func BuyBand(bestOrder, minThreshold, maxThreshold decimal.Decimal) *Band {
	return &Band{
		Min: bestOrder.Mul(hundred.Sub(minThreshold)).Div(hundred),
		Max: Markup(bestOrder, maxThreshold),
	}
}

// Markup returns the price increased by the given percent.
func Markup(price, percent decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Add(percent)).Div(hundred)
}

// NetProceeds returns the sale proceeds left after the marketplace fee.
func NetProceeds(price, feePercent decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(feePercent)).Div(hundred)
}
