// Copyright (c) 2025 BVK Chaitanya

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

func itemSales(count int, cents int64, newest time.Time, gap time.Duration) []*gobs.ItemSale {
	var sales []*gobs.ItemSale
	for i := 0; i < count; i++ {
		sales = append(sales, &gobs.ItemSale{
			Price:  decimal.NewFromInt(cents),
			SoldAt: newest.Add(-time.Duration(i) * gap),
		})
	}
	return sales
}

func aggregatedTitle(title string, orderUSD string, offerCount int64) *dmarket.AggregatedTitle {
	return &dmarket.AggregatedTitle{
		MarketHashName: title,
		Orders:         dmarket.AggregatedSide{BestPrice: decimal.RequireFromString(orderUSD), Count: 1},
		Offers:         dmarket.AggregatedSide{BestPrice: decimal.RequireFromString("12.5"), Count: offerCount},
	}
}

func TestCandidates(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	// An established title: sold every 26 hours for three weeks at 1000
	// cents with seven of the sales inside the last week.
	steady := itemSales(20, 1000, testTime.Add(-6*time.Hour), 26*time.Hour)

	// Three sales at twice the going price, each heading its own moving
	// average window.
	boosted := itemSales(20, 1000, testTime.Add(-6*time.Hour), 26*time.Hour)
	for _, i := range []int{0, 6, 12} {
		boosted[i].Price = decimal.NewFromInt(2000)
	}

	entries := []*gobs.ItemStats{
		{Title: "alpha skin", Sales: steady},
		{Title: "zulu skin", Sales: steady},
		{Title: "stale skin", Sales: itemSales(20, 1000, testTime.Add(-3*24*time.Hour), 26*time.Hour)},
		{Title: "young skin", Sales: itemSales(10, 1000, testTime.Add(-6*time.Hour), 12*time.Hour)},
		{Title: "sparse skin", Sales: itemSales(20, 1000, testTime.Add(-6*time.Hour), 3*24*time.Hour)},
		{Title: "boosted skin", Sales: boosted},
		{Title: "crowded skin", Sales: steady},
		{Title: "lowball skin", Sales: steady},
		{Title: "margin skin", Sales: itemSales(20, 700, testTime.Add(-6*time.Hour), 26*time.Hour)},
		{Title: "pricey skin", Sales: itemSales(20, 5000, testTime.Add(-6*time.Hour), 26*time.Hour)},
		{Title: "souvenir skin", Sales: steady},
	}
	for _, stats := range entries {
		stats.GameID = dmarket.GameCS
		if err := PutStatsDB(ctx, db, stats); err != nil {
			t.Fatal(err)
		}
	}

	mkt := &fakeMarketplace{
		aggregated: map[string]*dmarket.AggregatedTitle{
			"alpha skin":   aggregatedTitle("alpha skin", "8", 10),
			"zulu skin":    aggregatedTitle("zulu skin", "8", 5),
			"crowded skin": aggregatedTitle("crowded skin", "8", 100),
			"lowball skin": aggregatedTitle("lowball skin", "0", 10),
			"margin skin":  aggregatedTitle("margin skin", "8", 10),
		},
	}

	a, err := New(db, mkt, &Options{
		GameIDs:   []string{dmarket.GameCS},
		Blocklist: []string{"souvenir"},
	})
	if err != nil {
		t.Fatal(err)
	}
	a.timeNow = func() time.Time { return testTime }

	candidates, err := a.Candidates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 2 {
		t.Fatalf("wanted 2 candidates, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].Title != "alpha skin" || candidates[1].Title != "zulu skin" {
		t.Fatalf("wanted candidates in title order, got %q and %q", candidates[0].Title, candidates[1].Title)
	}

	alpha := candidates[0]
	if alpha.GameID != dmarket.GameCS {
		t.Errorf("wanted game id %q, got %q", dmarket.GameCS, alpha.GameID)
	}
	if want := decimal.NewFromInt(800); !alpha.BestOrder.Equal(want) {
		t.Errorf("wanted best order %s cents, got %s", want, alpha.BestOrder)
	}
	if want := decimal.NewFromInt(760); !alpha.Band.Min.Equal(want) {
		t.Errorf("wanted band min %s, got %s", want, alpha.Band.Min)
	}
	if want := decimal.NewFromInt(824); !alpha.Band.Max.Equal(want) {
		t.Errorf("wanted band max %s, got %s", want, alpha.Band.Max)
	}

	// Titles cut before the aggregated price lookup must not be queried.
	if len(mkt.aggrCalls) != 1 {
		t.Fatalf("wanted a single aggregated prices call, got %d", len(mkt.aggrCalls))
	}
	for _, title := range mkt.aggrCalls[0] {
		switch title {
		case "stale skin", "young skin", "sparse skin", "boosted skin", "pricey skin", "souvenir skin":
			t.Errorf("title %q must be cut before the price lookup", title)
		}
	}
}

func TestCandidatesEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	mkt := &fakeMarketplace{}

	a, err := New(db, mkt, &Options{GameIDs: []string{dmarket.GameCS}})
	if err != nil {
		t.Fatal(err)
	}

	candidates, err := a.Candidates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 0 {
		t.Fatalf("wanted no candidates, got %+v", candidates)
	}
	if len(mkt.aggrCalls) != 0 {
		t.Errorf("aggregated prices must not be fetched for an empty catalog")
	}
}

func TestCountSpikes(t *testing.T) {
	a := &Analyzer{opts: Options{
		BoostPercent: decimal.NewFromInt(10),
	}}

	flat := &gobs.ItemStats{Sales: itemSales(10, 1000, testTime, time.Hour)}
	if n := a.countSpikes(flat); n != 0 {
		t.Errorf("flat history must have no spikes, got %d", n)
	}

	spiked := &gobs.ItemStats{Sales: itemSales(10, 1000, testTime, time.Hour)}
	spiked.Sales[2].Price = decimal.NewFromInt(2000)
	// 2000 against the sma of [2000 1000 1000 1000 1000] is one spike;
	// windows where it is not the newest element do not count.
	if n := a.countSpikes(spiked); n != 1 {
		t.Errorf("wanted 1 spike, got %d", n)
	}

	short := &gobs.ItemStats{Sales: itemSales(4, 1000, testTime, time.Hour)}
	if n := a.countSpikes(short); n != 0 {
		t.Errorf("history shorter than the window must have no spikes, got %d", n)
	}
}
