// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGetAggregatedPricesChunking(t *testing.T) {
	var batches [][]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price-aggregator/v1/aggregated-prices" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		titles := r.URL.Query()["Titles"]
		if len(titles) > aggregatedPricesBatchSize {
			t.Errorf("wanted at most %d titles per call, got %d", aggregatedPricesBatchSize, len(titles))
		}
		batches = append(batches, titles)

		var resp struct {
			AggregatedTitles []*AggregatedTitle `json:"AggregatedTitles"`
		}
		for _, title := range titles {
			resp.AggregatedTitles = append(resp.AggregatedTitles, &AggregatedTitle{MarketHashName: title})
		}
		json.NewEncoder(w).Encode(&resp)
	}))

	var titles []string
	for i := 0; i < 250; i++ {
		titles = append(titles, fmt.Sprintf("skin-%03d", i))
	}

	result, err := c.GetAggregatedPrices(context.Background(), titles)
	if err != nil {
		t.Fatal(err)
	}

	if len(batches) != 3 {
		t.Fatalf("wanted 3 calls for 250 titles, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
		t.Fatalf("wanted batches of 100/100/50, got %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if len(result) != len(titles) {
		t.Fatalf("wanted %d aggregated titles, got %d", len(titles), len(result))
	}
	for i, v := range result {
		if v.MarketHashName != titles[i] {
			t.Fatalf("result %d: wanted title %q, got %q", i, titles[i], v.MarketHashName)
		}
	}
}

func TestGetAggregatedPricesEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("wanted no calls for an empty title list")
	}))

	result, err := c.GetAggregatedPrices(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 0 {
		t.Fatalf("wanted an empty result, got %d entries", len(result))
	}
}

func TestGetMarketItems(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if v := q.Get("gameId"); v != GameCS {
			t.Errorf("wanted gameId %q, got %q", GameCS, v)
		}
		if v := q.Get("orderBy"); v != "price" {
			t.Errorf("wanted orderBy price, got %q", v)
		}
		if v := q.Get("orderDir"); v != "asc" {
			t.Errorf("wanted orderDir asc, got %q", v)
		}
		if v := q.Get("priceFrom"); v != "1000" {
			t.Errorf("wanted priceFrom 1000, got %q", v)
		}
		fmt.Fprint(w, `{
		  "objects": [
		    {
		      "itemId": "item-1",
		      "title": "AK-47 | Redline (Field-Tested)",
		      "gameId": "a8db",
		      "inMarket": true,
		      "price": {"USD": "1250"},
		      "fees": {"dmarket": {"sell": {"custom": {"percentage": "5"}}}}
		    }
		  ],
		  "total": {"items": 1},
		  "cursor": "next-page"
		}`)
	}))

	items, err := c.GetMarketItems(context.Background(), &MarketItemsQuery{
		GameID:    GameCS,
		PriceFrom: decimal.NewFromInt(1000),
		PriceTo:   decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(items.Objects) != 1 {
		t.Fatalf("wanted 1 item, got %d", len(items.Objects))
	}
	item := items.Objects[0]
	if want := decimal.NewFromInt(1250); !item.Price.Cents().Equal(want) {
		t.Errorf("wanted price %s cents, got %s", want, item.Price.Cents())
	}
	dflt := decimal.NewFromInt(7)
	if want := decimal.NewFromInt(5); !item.SellFeePercent(dflt).Equal(want) {
		t.Errorf("wanted custom fee %s, got %s", want, item.SellFeePercent(dflt))
	}
	if items.Cursor != "next-page" {
		t.Errorf("wanted cursor next-page, got %q", items.Cursor)
	}
}

func TestSellFeePercentDefault(t *testing.T) {
	dflt := decimal.NewFromInt(7)

	item := &MarketItem{}
	if !item.SellFeePercent(dflt).Equal(dflt) {
		t.Errorf("wanted the default fee for an item with no fee schedule")
	}

	var withRates MarketItem
	if err := json.Unmarshal([]byte(`{"fees": {"dmarket": {"sell": {"default": {"percentage": "10"}}}}}`), &withRates); err != nil {
		t.Fatal(err)
	}
	if !withRates.SellFeePercent(dflt).Equal(dflt) {
		t.Errorf("wanted the default fee for an item with no custom rate")
	}
}

func TestGetLastSales(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-aggregator/v1/last-sales" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"sales": [{"price": "1500", "date": 1700000000}, {"price": "1450", "date": 1699990000}]}`)
	}))

	sales, err := c.GetLastSales(context.Background(), GameCS, "AK-47 | Redline (Field-Tested)")
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 2 {
		t.Fatalf("wanted 2 sales, got %d", len(sales))
	}
	if want := decimal.NewFromInt(1500); !sales[0].Price.Equal(want) {
		t.Errorf("wanted price %s, got %s", want, sales[0].Price)
	}
	if sales[0].Time().Unix() != 1700000000 {
		t.Errorf("wanted sale time 1700000000, got %d", sales[0].Time().Unix())
	}
}
