// Copyright (c) 2025 BVK Chaitanya

package analytics

import (
	"fmt"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/shopspring/decimal"
)

type Options struct {
	// GameIDs holds the marketplace games to track.
	GameIDs []string

	// Interval is the delay between two catalog refresh passes.
	Interval time.Duration

	// MinAvgPrice and MaxAvgPrice bound the market scan and catalog
	// admission: only titles whose average sale price falls inside
	// [MinAvgPrice, MaxAvgPrice] (USD cents) are tracked.
	MinAvgPrice decimal.Decimal
	MaxAvgPrice decimal.Decimal

	// ScanDepth is the number of market listings inspected per game on each
	// refresh.
	ScanDepth int

	// RequiredSales is the sales-history length a title must have to enter
	// the catalog.
	RequiredSales int

	// RefreshInterval is the catalog entry age after which its sales
	// history is fetched again.
	RefreshInterval time.Duration

	// MinPrice and MaxPrice bound candidate selection: only titles with an
	// average sale price strictly inside (MinPrice, MaxPrice) cents are
	// considered for buying.
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal

	// Popularity gates. A title qualifies when its sale history began at
	// least FirstSaleDays ago, its newest sale is at most LastSaleDays old
	// and at least SaleCount sales happened in the last DaysCount days.
	FirstSaleDays int
	LastSaleDays  int
	DaysCount     int
	SaleCount     int

	// Price-trend gate: a sale more than BoostPercent above the 5-point
	// moving average is a spike; titles with more than BoostPoints spikes
	// are dropped as artificially boosted.
	BoostPercent decimal.Decimal
	BoostPoints  int

	// Profitability gate: at least GoodPointsPercent percent of recorded
	// sales must net more (after FeePercent) than the best live order
	// marked up by ProfitPercent.
	ProfitPercent     decimal.Decimal
	GoodPointsPercent int
	FeePercent        decimal.Decimal

	// MaxSellOffers drops titles with too many live sell offers.
	MaxSellOffers int64

	// MinThreshold and MaxThreshold define the buy band around the best
	// live order price.
	MinThreshold decimal.Decimal
	MaxThreshold decimal.Decimal

	// Blocklist drops titles by case-insensitive substring match.
	Blocklist []string
}

func (v *Options) setDefaults() {
	if len(v.GameIDs) == 0 {
		v.GameIDs = []string{dmarket.GameCS, dmarket.GameDota}
	}
	if v.Interval == 0 {
		v.Interval = 30 * time.Minute
	}
	if v.MinAvgPrice.IsZero() {
		v.MinAvgPrice = decimal.NewFromInt(500)
	}
	if v.MaxAvgPrice.IsZero() {
		v.MaxAvgPrice = decimal.NewFromInt(3000)
	}
	if v.ScanDepth == 0 {
		v.ScanDepth = 1000
	}
	if v.RequiredSales == 0 {
		v.RequiredSales = 20
	}
	if v.RefreshInterval == 0 {
		v.RefreshInterval = 6 * time.Hour
	}
	if v.MinPrice.IsZero() {
		v.MinPrice = v.MinAvgPrice
	}
	if v.MaxPrice.IsZero() {
		v.MaxPrice = v.MaxAvgPrice
	}
	if v.FirstSaleDays == 0 {
		v.FirstSaleDays = 20
	}
	if v.LastSaleDays == 0 {
		v.LastSaleDays = 2
	}
	if v.DaysCount == 0 {
		v.DaysCount = 7
	}
	if v.SaleCount == 0 {
		v.SaleCount = 5
	}
	if v.BoostPercent.IsZero() {
		v.BoostPercent = decimal.NewFromInt(10)
	}
	if v.BoostPoints == 0 {
		v.BoostPoints = 2
	}
	if v.ProfitPercent.IsZero() {
		v.ProfitPercent = decimal.NewFromInt(7)
	}
	if v.GoodPointsPercent == 0 {
		v.GoodPointsPercent = 50
	}
	if v.FeePercent.IsZero() {
		v.FeePercent = decimal.NewFromInt(7)
	}
	if v.MaxSellOffers == 0 {
		v.MaxSellOffers = 25
	}
	if v.MinThreshold.IsZero() {
		v.MinThreshold = decimal.NewFromInt(5)
	}
	if v.MaxThreshold.IsZero() {
		v.MaxThreshold = decimal.NewFromInt(3)
	}
}

func (v *Options) Check() error {
	if v.MaxAvgPrice.LessThanOrEqual(v.MinAvgPrice) {
		return fmt.Errorf("max average price must be greater than min average price")
	}
	if v.MaxPrice.LessThanOrEqual(v.MinPrice) {
		return fmt.Errorf("max price must be greater than min price")
	}
	if v.RequiredSales <= 0 {
		return fmt.Errorf("required sales count must be positive")
	}
	if v.GoodPointsPercent < 0 || v.GoodPointsPercent > 100 {
		return fmt.Errorf("good points percent must be within [0, 100]")
	}
	return nil
}
