// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetInventory fetches the user inventory for one game.
func (c *Client) GetInventory(ctx context.Context, gameID string, inMarket bool) ([]*InventoryItem, error) {
	values := make(url.Values)
	values.Set("GameID", gameID)
	values.Set("BasicFilters.InMarket", strconv.FormatBool(inMarket))
	values.Set("Limit", "100")

	var resp struct {
		Items []*InventoryItem `json:"Items"`
	}
	if err := c.getJSON(ctx, "/marketplace-api/v1/user-inventory", values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch user inventory: %w", err)
	}
	return resp.Items, nil
}

// GetUserItems fetches all of the user's items known to the exchange for one
// game, including the ones already listed for sale, following pagination
// cursors until the listing is exhausted.
func (c *Client) GetUserItems(ctx context.Context, gameID string) ([]*MarketItem, error) {
	var items []*MarketItem
	cursor := ""
	for {
		values := make(url.Values)
		values.Set("GameId", gameID)
		values.Set("currency", "USD")
		values.Set("limit", "100")
		if len(cursor) != 0 {
			values.Set("cursor", cursor)
		}

		var resp MarketItems
		if err := c.getJSON(ctx, "/exchange/v1/user/items", values, &resp); err != nil {
			return nil, fmt.Errorf("could not fetch user items: %w", err)
		}
		items = append(items, resp.Objects...)
		if len(resp.Cursor) == 0 || len(resp.Objects) == 0 {
			return items, nil
		}
		cursor = resp.Cursor
	}
}

// GetUserOffers fetches the user's sell offers with the given status for one
// game, newest first. A zero limit fetches 20 offers.
func (c *Client) GetUserOffers(ctx context.Context, gameID, status string, limit int) ([]*UserOfferItem, error) {
	if limit == 0 {
		limit = 20
	}
	values := make(url.Values)
	values.Set("GameId", gameID)
	values.Set("Status", status)
	values.Set("SortType", "UserOffersSortTypeDateNewestFirst")
	values.Set("Limit", strconv.Itoa(limit))

	var resp struct {
		Items []*UserOfferItem `json:"Items"`
	}
	if err := c.getJSON(ctx, "/marketplace-api/v1/user-offers", values, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch user offers: %w", err)
	}
	return resp.Items, nil
}

// CreateOffer describes one sell offer to create. Price is in whole USD.
type CreateOffer struct {
	AssetID string `json:"AssetID"`
	Price   *Money `json:"Price"`
}

type CreateOfferResult struct {
	CreateOffer *CreateOffer `json:"CreateOffer"`
	OfferID     string       `json:"OfferID"`
	Error       *ResultError `json:"Error"`
}

// CreateOffers lists the given assets for sale.
func (c *Client) CreateOffers(ctx context.Context, offers []*CreateOffer) ([]*CreateOfferResult, error) {
	request := struct {
		Offers []*CreateOffer `json:"Offers"`
	}{
		Offers: offers,
	}
	var resp struct {
		Result []*CreateOfferResult `json:"Result"`
	}
	if err := c.postJSON(ctx, "/marketplace-api/v1/user-offers/create", &request, &resp); err != nil {
		return nil, fmt.Errorf("could not create offers: %w", err)
	}
	return resp.Result, nil
}

// EditOffer describes one price change to an existing sell offer.
type EditOffer struct {
	OfferID string `json:"OfferID"`
	AssetID string `json:"AssetID"`
	Price   *Money `json:"Price"`
}

// EditOfferResult reports one edit outcome. The marketplace replaces the
// offer on edit, so NewOfferID supersedes the edited offer id.
type EditOfferResult struct {
	EditOffer  *EditOffer   `json:"EditOffer"`
	NewOfferID string       `json:"NewOfferID"`
	Error      *ResultError `json:"Error"`
}

// EditOffers adjusts prices on the given sell offers.
func (c *Client) EditOffers(ctx context.Context, offers []*EditOffer) ([]*EditOfferResult, error) {
	request := struct {
		Offers []*EditOffer `json:"Offers"`
	}{
		Offers: offers,
	}
	var resp struct {
		Result []*EditOfferResult `json:"Result"`
	}
	if err := c.postJSON(ctx, "/marketplace-api/v1/user-offers/edit", &request, &resp); err != nil {
		return nil, fmt.Errorf("could not edit offers: %w", err)
	}
	return resp.Result, nil
}

// DeleteOffer identifies one sell offer to withdraw.
type DeleteOffer struct {
	ItemID  string `json:"itemId"`
	OfferID string `json:"offerId"`
	Price   *Money `json:"price"`
}

// DeleteOffers withdraws the given sell offers from the marketplace.
func (c *Client) DeleteOffers(ctx context.Context, offers []*DeleteOffer) error {
	request := struct {
		Objects []*DeleteOffer `json:"objects"`
		Force   bool           `json:"force"`
	}{
		Objects: offers,
		Force:   true,
	}
	if err := c.deleteJSON(ctx, "/exchange/v1/offers", &request, nil); err != nil {
		return fmt.Errorf("could not delete offers: %w", err)
	}
	return nil
}
