// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Marketplace game ids.
const (
	GameCS   = "a8db"
	GameDota = "9a92"
)

// Target statuses used with the user-targets api.
const (
	TargetStatusActive   = "TargetStatusActive"
	TargetStatusInactive = "TargetStatusInactive"
)

// Offer statuses used with the user-offers api.
const (
	OfferStatusDefault = "OfferStatusDefault"
	OfferStatusActive  = "OfferStatusActive"
	OfferStatusSold    = "OfferStatusSold"
)

// Money is a price with currency as used by the marketplace trading apis.
// Amounts are denominated in whole USD.
type Money struct {
	Currency string          `json:"Currency"`
	Amount   decimal.Decimal `json:"Amount"`
}

func USD(amount decimal.Decimal) *Money {
	return &Money{Currency: "USD", Amount: amount}
}

// PriceMap holds per-currency prices in minor units, i.e. cents for "USD",
// as used by the exchange apis.
type PriceMap map[string]decimal.Decimal

func (m PriceMap) Cents() decimal.Decimal {
	return m["USD"]
}

// MarketItem is one listing returned by the market items and offers-by-title
// apis.
type MarketItem struct {
	ItemID   string `json:"itemId"`
	Title    string `json:"title"`
	GameID   string `json:"gameId"`
	Image    string `json:"image"`
	InMarket bool   `json:"inMarket"`

	Price          PriceMap `json:"price"`
	SuggestedPrice PriceMap `json:"suggestedPrice"`

	Extra ItemExtra `json:"extra"`
	Fees  *ItemFees `json:"fees"`
}

type ItemExtra struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	CategoryPath string `json:"categoryPath"`
	Exterior     string `json:"exterior"`
	TradeLock    int    `json:"tradeLock"`
}

// ItemFees describes the sale fee schedule attached to an item. The "custom"
// rate, when present, overrides the marketplace default.
type ItemFees struct {
	DMarket struct {
		Sell map[string]*FeeRate `json:"sell"`
	} `json:"dmarket"`
}

type FeeRate struct {
	Percentage decimal.Decimal `json:"percentage"`
}

// SellFeePercent returns the sale fee percent for the item, or the given
// default when the item carries no custom rate.
func (v *MarketItem) SellFeePercent(dflt decimal.Decimal) decimal.Decimal {
	if v.Fees == nil {
		return dflt
	}
	custom, ok := v.Fees.DMarket.Sell["custom"]
	if !ok || custom == nil {
		return dflt
	}
	return custom.Percentage
}

// MarketItems is a page of market listings.
type MarketItems struct {
	Objects []*MarketItem   `json:"objects"`
	Total   json.RawMessage `json:"total"`
	Cursor  string          `json:"cursor"`
}

// AggregatedTitle reports the best live buy and sell prices for one title.
// BestPrice values are denominated in whole USD.
type AggregatedTitle struct {
	MarketHashName string         `json:"MarketHashName"`
	Offers         AggregatedSide `json:"Offers"`
	Orders         AggregatedSide `json:"Orders"`
}

type AggregatedSide struct {
	BestPrice decimal.Decimal `json:"BestPrice"`
	Count     int64           `json:"Count"`
}

// LastSale is one historical sale. Price is in USD cents.
type LastSale struct {
	Price decimal.Decimal `json:"price"`
	Date  int64           `json:"date"`
}

func (v *LastSale) Time() time.Time {
	return time.Unix(v.Date, 0)
}

// Target is one buy order as reported by the user-targets api. Price is in
// whole USD.
type Target struct {
	TargetID   string             `json:"TargetID"`
	Title      string             `json:"Title"`
	Amount     decimal.Decimal    `json:"Amount"`
	Status     string             `json:"Status"`
	GameID     string             `json:"GameID"`
	Price      Money              `json:"Price"`
	Attributes []*TargetAttribute `json:"Attributes"`
}

type TargetAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// ClosedTarget is one completed buy as reported by the closed targets api.
type ClosedTarget struct {
	TargetID string `json:"TargetID"`
	OfferID  string `json:"OfferID"`
	AssetID  string `json:"AssetID"`
	Title    string `json:"Title"`
	GameID   string `json:"GameID"`
	Price    Money  `json:"Price"`
}

// UserOfferItem is one item row from the user-offers api.
type UserOfferItem struct {
	AssetID  string     `json:"AssetID"`
	Title    string     `json:"Title"`
	GameID   string     `json:"GameID"`
	ImageURL string     `json:"ImageURL"`
	Offer    *UserOffer `json:"Offer"`
}

type UserOffer struct {
	OfferID string `json:"OfferID"`
	Price   Money  `json:"Price"`
	Fee     *Money `json:"Fee"`
}

// InventoryItem is one item row from the user-inventory api.
type InventoryItem struct {
	AssetID  string `json:"AssetID"`
	Title    string `json:"Title"`
	GameID   string `json:"GameID"`
	InMarket bool   `json:"InMarket"`
}

// Account describes the marketplace user account.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
