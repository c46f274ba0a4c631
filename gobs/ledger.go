// Copyright (c) 2025 BVK Chaitanya

// Package gobs defines the gob-encoded types persisted in the database.
// Types in this package must always stay backward compatible.
package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry records one marketplace item over its lifetime, from the
// purchase that acquired it to the sale that disposed of it. An entry with a
// zero SoldAt timestamp is still held (or listed) by the bot.
type LedgerEntry struct {
	// AssetID is the marketplace's unique id for the item instance.
	AssetID string

	Title  string
	GameID string

	// BuyPrice is the purchase price in USD.
	BuyPrice decimal.Decimal
	BoughtAt time.Time

	// OfferID is the live sell-offer id once the item is listed. Editing an
	// offer assigns a new id.
	OfferID string

	// SellPrice is the live offer price in USD while the item is listed,
	// and the net proceeds after the marketplace fee once it is sold.
	SellPrice decimal.Decimal
	SoldAt    time.Time

	// FeePercent is the marketplace sale fee applied to this item.
	FeePercent decimal.Decimal
}

func (v *LedgerEntry) IsSold() bool {
	return !v.SoldAt.IsZero()
}
