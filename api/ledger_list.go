// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const LedgerListPath = "/skinbot/ledger/list"

type LedgerListRequest struct {
	// Unsold when true restricts the listing to items waiting for a sale.
	Unsold bool
}

type LedgerListItem struct {
	AssetID string
	Title   string
	GameID  string

	// BuyPrice is the purchase price in USD.
	BuyPrice decimal.Decimal
	BoughtAt time.Time

	// OfferID and SellPrice are set when a sell offer exists. SellPrice is
	// in whole USD. SoldAt is non-zero once the sale has finished.
	OfferID   string
	SellPrice decimal.Decimal
	SoldAt    time.Time

	FeePercent decimal.Decimal
}

type LedgerListResponse struct {
	Items []*LedgerListItem
}
