// Copyright (c) 2025 BVK Chaitanya

package analytics

import (
	"context"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/pricing"
	"github.com/shopspring/decimal"
)

var centsPerDollar = decimal.NewFromInt(100)

// smaWindow is the moving-average length for the price-trend gate.
const smaWindow = 5

// Candidate is one buy recommendation. Prices are in USD cents.
type Candidate struct {
	Title  string
	GameID string

	// BestOrder is the best live buy-order price the recommendation was
	// computed against.
	BestOrder decimal.Decimal

	// Band is the price interval for bidding on this title.
	Band pricing.Band
}

// Candidates filters the catalog through the popularity, price-trend and
// profitability gates and returns the surviving titles as buy
// recommendations, in title order per game.
func (a *Analyzer) Candidates(ctx context.Context) ([]*Candidate, error) {
	now := a.timeNow()

	var tracked []*gobs.ItemStats
	for _, gameID := range a.opts.GameIDs {
		all, err := ListStatsDB(ctx, a.db, gameID)
		if err != nil {
			return nil, err
		}
		for _, stats := range all {
			if len(stats.Sales) == 0 {
				continue
			}
			avg := averagePrice(stats.Sales)
			if avg.LessThanOrEqual(a.opts.MinPrice) || avg.GreaterThanOrEqual(a.opts.MaxPrice) {
				continue
			}
			if Blocked(a.opts.Blocklist, stats.Title) {
				continue
			}
			if !a.isPopular(stats, now) {
				continue
			}
			if a.countSpikes(stats) > a.opts.BoostPoints {
				continue
			}
			tracked = append(tracked, stats)
		}
	}
	if len(tracked) == 0 {
		return nil, nil
	}

	titles := make([]string, 0, len(tracked))
	for _, stats := range tracked {
		titles = append(titles, stats.Title)
	}
	aggregated, err := a.mkt.GetAggregatedPrices(ctx, titles)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]*dmarket.AggregatedTitle)
	for _, agr := range aggregated {
		byTitle[agr.MarketHashName] = agr
	}

	var candidates []*Candidate
	for _, stats := range tracked {
		agr, ok := byTitle[stats.Title]
		if !ok {
			continue
		}
		bestOrder := agr.Orders.BestPrice.Mul(centsPerDollar)
		if !bestOrder.IsPositive() {
			continue
		}
		if !a.isProfitable(stats, bestOrder) {
			continue
		}
		if agr.Offers.Count > a.opts.MaxSellOffers {
			continue
		}
		candidates = append(candidates, &Candidate{
			Title:     stats.Title,
			GameID:    stats.GameID,
			BestOrder: bestOrder,
			Band:      *pricing.BuyBand(bestOrder, a.opts.MinThreshold, a.opts.MaxThreshold),
		})
	}
	return candidates, nil
}

// isPopular reports whether the title trades often enough: its history
// must reach back FirstSaleDays, its newest sale must be recent, and the
// lookback window must hold enough sales.
func (a *Analyzer) isPopular(stats *gobs.ItemStats, now time.Time) bool {
	newest := stats.Sales[0].SoldAt
	oldest := stats.Sales[len(stats.Sales)-1].SoldAt
	if oldest.After(now.AddDate(0, 0, -a.opts.FirstSaleDays)) {
		return false
	}
	if newest.Before(now.AddDate(0, 0, -a.opts.LastSaleDays)) {
		return false
	}
	windowStart := now.AddDate(0, 0, -a.opts.DaysCount)
	recent := 0
	for _, sale := range stats.Sales {
		if sale.SoldAt.After(windowStart) {
			recent++
		}
	}
	return recent >= a.opts.SaleCount
}

// countSpikes returns the number of sales priced more than BoostPercent
// above the moving average of themselves and the preceding sales. Sales are
// newest first, so the window at index i covers the sale and its history.
func (a *Analyzer) countSpikes(stats *gobs.ItemStats) int {
	spikes := 0
	for i := 0; i+smaWindow <= len(stats.Sales); i++ {
		var sum decimal.Decimal
		for j := i; j < i+smaWindow; j++ {
			sum = sum.Add(stats.Sales[j].Price)
		}
		sma := sum.Div(decimal.NewFromInt(smaWindow))
		if stats.Sales[i].Price.GreaterThan(pricing.Markup(sma, a.opts.BoostPercent)) {
			spikes++
		}
	}
	return spikes
}

// isProfitable reports whether enough recorded sales would net more, after
// the marketplace fee, than buying at the best order price marked up by the
// profit percent.
func (a *Analyzer) isProfitable(stats *gobs.ItemStats, bestOrder decimal.Decimal) bool {
	threshold := pricing.Markup(bestOrder, a.opts.ProfitPercent)
	points := (len(stats.Sales)*a.opts.GoodPointsPercent + 99) / 100
	count := 0
	for _, sale := range stats.Sales {
		if pricing.NetProceeds(sale.Price, a.opts.FeePercent).GreaterThan(threshold) {
			count++
		}
	}
	return count >= points
}
