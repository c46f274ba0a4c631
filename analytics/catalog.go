// Copyright (c) 2025 BVK Chaitanya

package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"sort"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/kvutil"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

var Keyspace = "/catalog/"

func statsKey(gameID, title string) string {
	return path.Join(Keyspace, gameID, url.PathEscape(title))
}

// GetStats returns the catalog entry for one title. Returns os.ErrNotExist
// when the title is not tracked.
func GetStats(ctx context.Context, r kv.Reader, gameID, title string) (*gobs.ItemStats, error) {
	return kvutil.Get[gobs.ItemStats](ctx, r, statsKey(gameID, title))
}

func PutStats(ctx context.Context, rw kv.ReadWriter, stats *gobs.ItemStats) error {
	if len(stats.Title) == 0 || len(stats.GameID) == 0 {
		return fmt.Errorf("stats title and game id cannot be empty: %w", os.ErrInvalid)
	}
	return kvutil.Set(ctx, rw, statsKey(stats.GameID, stats.Title), stats)
}

func PutStatsDB(ctx context.Context, db kv.Database, stats *gobs.ItemStats) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return PutStats(ctx, rw, stats)
	})
}

// ListStats returns every catalog entry for one game, in title order.
func ListStats(ctx context.Context, r kv.Reader, gameID string) ([]*gobs.ItemStats, error) {
	var all []*gobs.ItemStats
	begin, end := kvutil.PathRange(path.Join(Keyspace, gameID))
	collect := func(ctx context.Context, r kv.Reader, key string, stats *gobs.ItemStats) error {
		all = append(all, stats)
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, collect); err != nil {
		return nil, fmt.Errorf("could not scan the catalog: %w", err)
	}
	return all, nil
}

// ListStatsDB is similar to ListStats, but takes a kv.Database argument.
func ListStatsDB(ctx context.Context, db kv.Database, gameID string) (all []*gobs.ItemStats, err error) {
	kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		all, err = ListStats(ctx, r, gameID)
		return nil
	})
	return all, err
}

func averagePrice(sales []*gobs.ItemSale) decimal.Decimal {
	if len(sales) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, sale := range sales {
		sum = sum.Add(sale.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(sales))))
}

// Refresh rebuilds the sales catalog: it scans market listings per game,
// fetches sale histories for new and stale titles, and updates the stored
// best bid/ask prices. Failures affecting one title are logged and skipped.
func (a *Analyzer) Refresh(ctx context.Context) error {
	for _, gameID := range a.opts.GameIDs {
		if err := a.refreshGame(ctx, gameID); err != nil {
			return fmt.Errorf("could not refresh catalog for game %q: %w", gameID, err)
		}
		if err := a.refreshPrices(ctx, gameID); err != nil {
			return fmt.Errorf("could not refresh catalog prices for game %q: %w", gameID, err)
		}
	}
	return nil
}

func (a *Analyzer) refreshGame(ctx context.Context, gameID string) error {
	listings, err := a.scanGame(ctx, gameID)
	if err != nil {
		return err
	}

	stored, err := ListStatsDB(ctx, a.db, gameID)
	if err != nil {
		return err
	}
	storedMap := make(map[string]*gobs.ItemStats)
	for _, stats := range stored {
		storedMap[stats.Title] = stats
	}

	cutoff := a.timeNow().Add(-a.opts.RefreshInterval)

	var titles []string
	queued := make(map[string]bool)
	for _, item := range listings {
		if stats, ok := storedMap[item.Title]; ok && stats.UpdatedAt.After(cutoff) {
			continue
		}
		if !queued[item.Title] {
			queued[item.Title] = true
			titles = append(titles, item.Title)
		}
	}
	// Tracked titles age out of the market scan when their price drifts;
	// keep the interesting ones fresh anyway.
	for _, stats := range stored {
		if queued[stats.Title] || stats.UpdatedAt.After(cutoff) {
			continue
		}
		avg := averagePrice(stats.Sales)
		if avg.GreaterThan(a.opts.MinPrice) && avg.LessThan(a.opts.MaxPrice) {
			queued[stats.Title] = true
			titles = append(titles, stats.Title)
		}
	}

	tracked := 0
	for _, title := range titles {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		sales, err := a.mkt.GetLastSales(ctx, gameID, title)
		if err != nil {
			if errors.Is(err, context.Cause(ctx)) || errors.Is(err, dmarket.ErrAuthFailure) {
				return err
			}
			log.Printf("catalog: could not fetch sales for %q (skipped): %v", title, err)
			continue
		}
		if len(sales) < a.opts.RequiredSales {
			continue
		}

		stats := &gobs.ItemStats{
			Title:     title,
			GameID:    gameID,
			UpdatedAt: a.timeNow(),
		}
		for _, sale := range sales {
			stats.Sales = append(stats.Sales, &gobs.ItemSale{Price: sale.Price, SoldAt: sale.Time()})
		}
		avg := averagePrice(stats.Sales)
		if avg.LessThan(a.opts.MinAvgPrice) || avg.GreaterThan(a.opts.MaxAvgPrice) {
			continue
		}
		if old, ok := storedMap[title]; ok {
			stats.BestBid, stats.BestAsk = old.BestBid, old.BestAsk
		}
		if err := PutStatsDB(ctx, a.db, stats); err != nil {
			return err
		}
		tracked++
	}
	log.Printf("catalog: game %s: scanned %d listings, refreshed %d titles", gameID, len(listings), tracked)
	return nil
}

// scanGame pages through market listings inside the configured price range
// and returns them deduplicated by title, with blocklisted titles dropped.
func (a *Analyzer) scanGame(ctx context.Context, gameID string) ([]*dmarket.MarketItem, error) {
	var items []*dmarket.MarketItem
	cursor := ""
	for len(items) < a.opts.ScanDepth {
		page, err := a.mkt.GetMarketItems(ctx, &dmarket.MarketItemsQuery{
			GameID:    gameID,
			PriceFrom: a.opts.MinAvgPrice,
			PriceTo:   a.opts.MaxAvgPrice,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, page.Objects...)
		if len(page.Cursor) == 0 || len(page.Objects) == 0 {
			break
		}
		cursor = page.Cursor
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	var result []*dmarket.MarketItem
	for i, item := range items {
		if i > 0 && items[i-1].Title == item.Title {
			continue
		}
		if Blocked(a.opts.Blocklist, item.Title) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// refreshPrices updates the stored best bid/ask for every tracked title
// from the aggregated prices api.
func (a *Analyzer) refreshPrices(ctx context.Context, gameID string) error {
	stored, err := ListStatsDB(ctx, a.db, gameID)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}
	titles := make([]string, 0, len(stored))
	for _, stats := range stored {
		titles = append(titles, stats.Title)
	}
	aggregated, err := a.mkt.GetAggregatedPrices(ctx, titles)
	if err != nil {
		return err
	}
	byTitle := make(map[string]*dmarket.AggregatedTitle)
	for _, agr := range aggregated {
		byTitle[agr.MarketHashName] = agr
	}

	update := func(ctx context.Context, rw kv.ReadWriter) error {
		for _, stats := range stored {
			agr, ok := byTitle[stats.Title]
			if !ok {
				continue
			}
			stats.BestBid = agr.Orders.BestPrice.Mul(centsPerDollar)
			stats.BestAsk = agr.Offers.BestPrice.Mul(centsPerDollar)
			if err := PutStats(ctx, rw, stats); err != nil {
				return err
			}
		}
		return nil
	}
	return kv.WithReadWriter(ctx, a.db, update)
}
