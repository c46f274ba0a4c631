// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// aggregatedPricesBatchSize is the marketplace limit on the number of titles
// per aggregated-prices call.
const aggregatedPricesBatchSize = 100

// MarketItemsQuery selects market listings for one game. Price bounds are in
// USD cents; zero means unbounded.
type MarketItemsQuery struct {
	GameID    string
	Title     string
	PriceFrom decimal.Decimal
	PriceTo   decimal.Decimal
	Limit     int
	Cursor    string
}

// GetMarketItems fetches one page of market listings ordered by ascending
// price. The next page is selected with the returned cursor.
func (c *Client) GetMarketItems(ctx context.Context, query *MarketItemsQuery) (*MarketItems, error) {
	limit := query.Limit
	if limit == 0 {
		limit = 100
	}
	values := make(url.Values)
	values.Set("gameId", query.GameID)
	values.Set("title", query.Title)
	values.Set("currency", "USD")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("orderBy", "price")
	values.Set("orderDir", "asc")
	values.Set("types", "dmarket")
	values.Set("priceFrom", query.PriceFrom.String())
	values.Set("priceTo", query.PriceTo.String())
	if len(query.Cursor) != 0 {
		values.Set("cursor", query.Cursor)
	}

	items := new(MarketItems)
	if err := c.getJSON(ctx, "/exchange/v1/market/items", values, items); err != nil {
		return nil, fmt.Errorf("could not fetch market items: %w", err)
	}
	return items, nil
}

// GetOffersByTitle fetches the cheapest live sell listings for one title.
func (c *Client) GetOffersByTitle(ctx context.Context, title string, limit int) (*MarketItems, error) {
	if limit == 0 {
		limit = 100
	}
	values := make(url.Values)
	values.Set("Title", title)
	values.Set("Limit", strconv.Itoa(limit))

	items := new(MarketItems)
	if err := c.getJSON(ctx, "/exchange/v1/offers-by-title", values, items); err != nil {
		return nil, fmt.Errorf("could not fetch offers for title %q: %w", title, err)
	}
	return items, nil
}

// GetLastSales fetches the most recent sales for one title, newest first.
func (c *Client) GetLastSales(ctx context.Context, gameID, title string) ([]*LastSale, error) {
	values := make(url.Values)
	values.Set("gameId", gameID)
	values.Set("title", title)
	values.Set("currency", "USD")

	var resp struct {
		Sales []*LastSale `json:"sales"`
	}
	if err := c.getJSON(ctx, "/trade-aggregator/v1/last-sales", values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch last sales for title %q: %w", title, err)
	}
	return resp.Sales, nil
}

// GetAggregatedPrices fetches the best bid and ask for the given titles. The
// marketplace caps each call at 100 titles, so larger inputs are fetched in
// multiple calls and merged in the input order.
func (c *Client) GetAggregatedPrices(ctx context.Context, titles []string) ([]*AggregatedTitle, error) {
	var result []*AggregatedTitle
	for begin := 0; begin < len(titles); begin += aggregatedPricesBatchSize {
		end := min(begin+aggregatedPricesBatchSize, len(titles))
		batch := titles[begin:end]

		values := make(url.Values)
		for _, title := range batch {
			values.Add("Titles", title)
		}
		values.Set("Limit", strconv.Itoa(len(batch)))

		var resp struct {
			AggregatedTitles []*AggregatedTitle `json:"AggregatedTitles"`
		}
		if err := c.getJSON(ctx, "/price-aggregator/v1/aggregated-prices", values, &resp); err != nil {
			return nil, fmt.Errorf("could not fetch aggregated prices: %w", err)
		}
		result = append(result, resp.AggregatedTitles...)
	}
	return result, nil
}
