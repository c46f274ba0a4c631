// Copyright (c) 2025 BVK Chaitanya

package analytics

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

type fakeMarketplace struct {
	items      map[string][]*dmarket.MarketItem
	sales      map[string][]*dmarket.LastSale
	aggregated map[string]*dmarket.AggregatedTitle

	salesCalls []string
	aggrCalls  [][]string
}

func (f *fakeMarketplace) GetMarketItems(ctx context.Context, query *dmarket.MarketItemsQuery) (*dmarket.MarketItems, error) {
	return &dmarket.MarketItems{Objects: f.items[query.GameID]}, nil
}

func (f *fakeMarketplace) GetLastSales(ctx context.Context, gameID, title string) ([]*dmarket.LastSale, error) {
	f.salesCalls = append(f.salesCalls, title)
	return f.sales[title], nil
}

func (f *fakeMarketplace) GetAggregatedPrices(ctx context.Context, titles []string) ([]*dmarket.AggregatedTitle, error) {
	f.aggrCalls = append(f.aggrCalls, titles)
	var result []*dmarket.AggregatedTitle
	for _, title := range titles {
		if agr, ok := f.aggregated[title]; ok {
			result = append(result, agr)
		}
	}
	return result, nil
}

var testTime = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func saleHistory(count int, cents int64, newest time.Time, gap time.Duration) []*dmarket.LastSale {
	var sales []*dmarket.LastSale
	for i := 0; i < count; i++ {
		sales = append(sales, &dmarket.LastSale{
			Price: decimal.NewFromInt(cents),
			Date:  newest.Add(-time.Duration(i) * gap).Unix(),
		})
	}
	return sales
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	mkt := &fakeMarketplace{
		items: map[string][]*dmarket.MarketItem{
			dmarket.GameCS: {
				{Title: "alpha skin", GameID: dmarket.GameCS},
				{Title: "alpha skin", GameID: dmarket.GameCS},
				{Title: "bravo knife", GameID: dmarket.GameCS},
				{Title: "charlie skin", GameID: dmarket.GameCS},
			},
		},
		sales: map[string][]*dmarket.LastSale{
			"alpha skin":   saleHistory(5, 1100, testTime.Add(-time.Hour), 24*time.Hour),
			"charlie skin": saleHistory(5, 100, testTime.Add(-time.Hour), 24*time.Hour),
		},
		aggregated: map[string]*dmarket.AggregatedTitle{
			"alpha skin": {
				MarketHashName: "alpha skin",
				Orders:         dmarket.AggregatedSide{BestPrice: decimal.RequireFromString("9.5"), Count: 3},
				Offers:         dmarket.AggregatedSide{BestPrice: decimal.RequireFromString("11.2"), Count: 7},
			},
		},
	}

	a, err := New(db, mkt, &Options{
		GameIDs:       []string{dmarket.GameCS},
		RequiredSales: 5,
		Blocklist:     []string{"knife"},
	})
	if err != nil {
		t.Fatal(err)
	}
	a.timeNow = func() time.Time { return testTime }

	if err := a.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	// The duplicate listing is fetched once and the blocklisted title is
	// never fetched.
	if slices.Contains(mkt.salesCalls, "bravo knife") {
		t.Fatalf("blocklisted title must not be fetched: %v", mkt.salesCalls)
	}
	if n := len(mkt.salesCalls); n != 2 {
		t.Fatalf("wanted 2 sales fetches, got %d: %v", n, mkt.salesCalls)
	}

	all, err := ListStatsDB(ctx, db, dmarket.GameCS)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Title != "alpha skin" {
		t.Fatalf("wanted only alpha skin in the catalog, got %+v", all)
	}
	stats := all[0]
	if len(stats.Sales) != 5 {
		t.Fatalf("wanted 5 recorded sales, got %d", len(stats.Sales))
	}
	if want := decimal.NewFromInt(950); !stats.BestBid.Equal(want) {
		t.Errorf("wanted best bid %s cents, got %s", want, stats.BestBid)
	}
	if want := decimal.NewFromInt(1120); !stats.BestAsk.Equal(want) {
		t.Errorf("wanted best ask %s cents, got %s", want, stats.BestAsk)
	}

	// A second refresh must not refetch fresh titles.
	mkt.salesCalls = nil
	if err := a.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if slices.Contains(mkt.salesCalls, "alpha skin") {
		t.Fatalf("fresh title must not be refetched: %v", mkt.salesCalls)
	}
}

func TestRefreshStaleEntries(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	// The tracked title no longer appears in the market scan.
	mkt := &fakeMarketplace{
		items: map[string][]*dmarket.MarketItem{},
		sales: map[string][]*dmarket.LastSale{
			"alpha skin": saleHistory(5, 1200, testTime.Add(-time.Hour), 24*time.Hour),
		},
	}

	a, err := New(db, mkt, &Options{
		GameIDs:       []string{dmarket.GameCS},
		RequiredSales: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	a.timeNow = func() time.Time { return testTime }

	stale := &gobs.ItemStats{
		Title:     "alpha skin",
		GameID:    dmarket.GameCS,
		Sales:     []*gobs.ItemSale{{Price: decimal.NewFromInt(1100), SoldAt: testTime.Add(-30 * 24 * time.Hour)}},
		UpdatedAt: testTime.Add(-24 * time.Hour),
	}
	if err := PutStatsDB(ctx, db, stale); err != nil {
		t.Fatal(err)
	}

	if err := a.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(mkt.salesCalls, "alpha skin") {
		t.Fatalf("stale tracked title must be refetched: %v", mkt.salesCalls)
	}

	stats, err := ListStatsDB(ctx, db, dmarket.GameCS)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || len(stats[0].Sales) != 5 {
		t.Fatalf("wanted a refreshed history of 5 sales, got %+v", stats)
	}
	if !stats[0].UpdatedAt.Equal(testTime) {
		t.Errorf("wanted update time %s, got %s", testTime, stats[0].UpdatedAt)
	}
}

func TestBlocked(t *testing.T) {
	blocklist := []string{"souvenir", "StatTrak"}
	if !Blocked(blocklist, "Souvenir AWP | Safari Mesh") {
		t.Errorf("match must be case-insensitive")
	}
	if !Blocked(blocklist, "stattrak ak-47") {
		t.Errorf("blocklist words must match case-insensitively")
	}
	if Blocked(blocklist, "AWP | Safari Mesh") {
		t.Errorf("unrelated title must not match")
	}
	if Blocked(nil, "anything") {
		t.Errorf("empty blocklist must not match")
	}
}
