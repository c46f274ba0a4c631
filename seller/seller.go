// Copyright (c) 2025 BVK Chaitanya

// Package seller converges the marketplace sell offers with the unsold
// ledger entries. Each pass ingests newly closed purchases, lists unsold
// inventory items as offers, reprices live offers against competing
// listings, and records finished sales with their net proceeds.
package seller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/bvk/skinbot/ctxutil"
	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/ledger"
	"github.com/bvk/skinbot/pricing"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

const (
	closedTargetsLimit = 100
	soldOffersLimit    = 20
	askProbeLimit      = 3
)

var centsPerDollar = decimal.NewFromInt(100)

// Messenger receives purchase and sale notices.
type Messenger interface {
	SendMessage(context.Context, time.Time, string, ...interface{})
}

// Marketplace is the view of the marketplace client used by the seller.
type Marketplace interface {
	GetClosedTargets(ctx context.Context, limit int) ([]*dmarket.ClosedTarget, error)
	GetUserOffers(ctx context.Context, gameID, status string, limit int) ([]*dmarket.UserOfferItem, error)
	GetUserItems(ctx context.Context, gameID string) ([]*dmarket.MarketItem, error)
	GetOffersByTitle(ctx context.Context, title string, limit int) (*dmarket.MarketItems, error)
	CreateOffers(ctx context.Context, offers []*dmarket.CreateOffer) ([]*dmarket.CreateOfferResult, error)
	EditOffers(ctx context.Context, offers []*dmarket.EditOffer) ([]*dmarket.EditOfferResult, error)
}

type Seller struct {
	db kv.Database

	mkt Marketplace

	opts Options

	timeNow func() time.Time
}

func New(db kv.Database, mkt Marketplace, opts *Options) (*Seller, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Seller{
		db:      db,
		mkt:     mkt,
		opts:    *opts,
		timeNow: time.Now,
	}, nil
}

func (v *Seller) String() string {
	return "seller"
}

// Run reconciles sell offers in a loop until the context is canceled.
// Authentication failures are fatal; other pass failures are logged and
// retried on the next pass.
func (v *Seller) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := v.RunPass(ctx); err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) {
				return err
			}
			if ctx.Err() == nil {
				log.Printf("seller: reconcile pass has failed (retrying): %v", err)
			}
		}
		if err := ctxutil.Sleep(ctx, v.opts.Interval); err != nil {
			break
		}
	}
	return context.Cause(ctx)
}

// RunPass runs one reconcile pass: record closed purchases and finished
// sales, list unsold items, then reprice live offers.
func (v *Seller) RunPass(ctx context.Context) error {
	if err := v.saveClosedTrades(ctx); err != nil {
		return fmt.Errorf("could not record closed trades: %w", err)
	}
	if err := v.listUnsoldItems(ctx); err != nil {
		return fmt.Errorf("could not list unsold items: %w", err)
	}
	if err := v.repriceOffers(ctx); err != nil {
		return fmt.Errorf("could not reprice offers: %w", err)
	}
	return nil
}

// saveClosedTrades ingests closed buy targets as new ledger entries and
// marks ledger entries sold when their offers have finished.
func (v *Seller) saveClosedTrades(ctx context.Context) error {
	trades, err := v.mkt.GetClosedTargets(ctx, closedTargetsLimit)
	if err != nil {
		return err
	}
	var bought []*gobs.LedgerEntry
	for _, trade := range trades {
		if len(trade.AssetID) == 0 {
			continue
		}
		if _, err := ledger.GetDB(ctx, v.db, trade.AssetID); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		bought = append(bought, &gobs.LedgerEntry{
			AssetID:  trade.AssetID,
			Title:    trade.Title,
			GameID:   trade.GameID,
			BuyPrice: trade.Price.Amount,
			BoughtAt: v.timeNow(),
		})
	}
	if len(bought) > 0 {
		if err := ledger.UpsertAll(ctx, v.db, bought); err != nil {
			return err
		}
		log.Printf("seller: recorded %d new purchases", len(bought))
		for _, entry := range bought {
			v.notify(ctx, "Bought %q for %s USD", entry.Title, entry.BuyPrice.StringFixed(2))
		}
	}

	unsold, err := ledger.ListUnsoldDB(ctx, v.db)
	if err != nil {
		return err
	}
	if len(unsold) == 0 {
		return nil
	}
	byAsset := make(map[string]*gobs.LedgerEntry)
	for _, entry := range unsold {
		byAsset[entry.AssetID] = entry
	}

	var sold []*gobs.LedgerEntry
	for _, gameID := range v.opts.GameIDs {
		items, err := v.mkt.GetUserOffers(ctx, gameID, dmarket.OfferStatusSold, soldOffersLimit)
		if err != nil {
			return err
		}
		for _, item := range items {
			entry, ok := byAsset[item.AssetID]
			if !ok || item.Offer == nil {
				continue
			}
			sold = append(sold, &gobs.LedgerEntry{
				AssetID:   entry.AssetID,
				Title:     item.Title,
				GameID:    item.GameID,
				OfferID:   item.Offer.OfferID,
				SellPrice: pricing.NetProceeds(item.Offer.Price.Amount, v.feeFor(entry)),
				SoldAt:    v.timeNow(),
			})
		}
	}
	if len(sold) > 0 {
		if err := ledger.UpsertAll(ctx, v.db, sold); err != nil {
			return err
		}
		log.Printf("seller: recorded %d sales", len(sold))
		for _, entry := range sold {
			v.notify(ctx, "Sold %q for %s USD after fees", entry.Title, entry.SellPrice.StringFixed(2))
		}
	}
	return nil
}

// listUnsoldItems creates sell offers for unsold ledger entries that are in
// the market inventory and not yet listed.
func (v *Seller) listUnsoldItems(ctx context.Context) error {
	unsold, err := ledger.ListUnsoldDB(ctx, v.db)
	if err != nil {
		return err
	}
	pending := make(map[string]*gobs.LedgerEntry)
	for _, entry := range unsold {
		if len(entry.OfferID) == 0 && entry.BuyPrice.IsPositive() {
			pending[entry.AssetID] = entry
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var creates []*dmarket.CreateOffer
	updates := make(map[string]*gobs.LedgerEntry)
	for _, gameID := range v.opts.GameIDs {
		items, err := v.mkt.GetUserItems(ctx, gameID)
		if err != nil {
			return err
		}
		for _, item := range items {
			entry, ok := pending[item.ItemID]
			if !ok || !item.InMarket {
				continue
			}
			fee := item.SellFeePercent(v.opts.FeePercent)
			price, err := v.sellPrice(ctx, item.Title, entry.BuyPrice, fee)
			if err != nil {
				if errors.Is(err, dmarket.ErrAuthFailure) || errors.Is(err, context.Cause(ctx)) {
					return err
				}
				log.Printf("seller: could not price %q (skipped): %v", item.Title, err)
				continue
			}
			creates = append(creates, &dmarket.CreateOffer{
				AssetID: item.ItemID,
				Price:   dmarket.USD(price),
			})
			updates[item.ItemID] = &gobs.LedgerEntry{
				AssetID:    item.ItemID,
				Title:      item.Title,
				GameID:     item.GameID,
				SellPrice:  price,
				FeePercent: fee,
			}
		}
	}
	if len(creates) == 0 {
		return nil
	}

	results, err := v.mkt.CreateOffers(ctx, creates)
	if err != nil {
		return err
	}
	var listed []*gobs.LedgerEntry
	for _, r := range results {
		if r.CreateOffer == nil {
			continue
		}
		entry, ok := updates[r.CreateOffer.AssetID]
		if !ok {
			continue
		}
		if r.Error != nil {
			log.Printf("seller: could not create offer for asset %q (skipped): %v", r.CreateOffer.AssetID, r.Error)
			continue
		}
		entry.OfferID = r.OfferID
		listed = append(listed, entry)
	}
	if len(listed) > 0 {
		if err := ledger.UpsertAll(ctx, v.db, listed); err != nil {
			return err
		}
		log.Printf("seller: listed %d items for sale", len(listed))
	}
	return nil
}

// repriceOffers compares every live offer with the cheapest competing
// listing and edits offers whose price has drifted. The marketplace assigns
// a new offer id on edit, which is recorded back into the ledger.
func (v *Seller) repriceOffers(ctx context.Context) error {
	unsold, err := ledger.ListUnsoldDB(ctx, v.db)
	if err != nil {
		return err
	}
	var live []*gobs.LedgerEntry
	for _, entry := range unsold {
		if len(entry.OfferID) > 0 && len(entry.Title) > 0 && entry.BuyPrice.IsPositive() {
			live = append(live, entry)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].Title < live[j].Title
	})

	var edits []*dmarket.EditOffer
	prices := make(map[string]decimal.Decimal)
	for _, entry := range live {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		best, err := v.bestAsk(ctx, entry.Title)
		if err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) || errors.Is(err, context.Cause(ctx)) {
				return err
			}
			log.Printf("seller: could not probe listings for %q (skipped): %v", entry.Title, err)
			continue
		}
		// Our own offer is part of the probe. When it is the cheapest
		// listing there is nothing to undercut.
		if !best.IsPositive() || best.Equal(entry.SellPrice) {
			continue
		}
		band := pricing.SellBand(entry.BuyPrice, v.opts.MinPercent, v.opts.MaxPercent, v.feeFor(entry))
		price := pricing.SellPrice(band, best).Round(2)
		if price.Equal(entry.SellPrice.Round(2)) {
			continue
		}
		edits = append(edits, &dmarket.EditOffer{
			OfferID: entry.OfferID,
			AssetID: entry.AssetID,
			Price:   dmarket.USD(price),
		})
		prices[entry.AssetID] = price
	}
	if len(edits) == 0 {
		return nil
	}

	results, err := v.mkt.EditOffers(ctx, edits)
	if err != nil {
		return err
	}
	var updated []*gobs.LedgerEntry
	for _, r := range results {
		if r.EditOffer == nil {
			continue
		}
		if r.Error != nil {
			log.Printf("seller: could not edit offer for asset %q (skipped): %v", r.EditOffer.AssetID, r.Error)
			continue
		}
		updated = append(updated, &gobs.LedgerEntry{
			AssetID:   r.EditOffer.AssetID,
			OfferID:   r.NewOfferID,
			SellPrice: prices[r.EditOffer.AssetID],
		})
	}
	if len(updated) > 0 {
		if err := ledger.UpsertAll(ctx, v.db, updated); err != nil {
			return err
		}
		log.Printf("seller: repriced %d offers", len(updated))
	}
	return nil
}

// sellPrice computes the listing price for one item: the band ceiling when
// the title has no competing listings, the clamped undercut price
// otherwise.
func (v *Seller) sellPrice(ctx context.Context, title string, buyPrice, fee decimal.Decimal) (decimal.Decimal, error) {
	band := pricing.SellBand(buyPrice, v.opts.MinPercent, v.opts.MaxPercent, fee)
	best, err := v.bestAsk(ctx, title)
	if err != nil {
		return decimal.Zero, err
	}
	if !best.IsPositive() {
		return band.Max.Round(2), nil
	}
	return pricing.SellPrice(band, best).Round(2), nil
}

// bestAsk returns the cheapest live listing price for a title in USD, or
// zero when the title has no live listings.
func (v *Seller) bestAsk(ctx context.Context, title string) (decimal.Decimal, error) {
	items, err := v.mkt.GetOffersByTitle(ctx, title, askProbeLimit)
	if err != nil {
		return decimal.Zero, err
	}
	var best decimal.Decimal
	for _, item := range items.Objects {
		price := item.Price.Cents().Div(centsPerDollar)
		if !price.IsPositive() {
			continue
		}
		if best.IsZero() || price.LessThan(best) {
			best = price
		}
	}
	return best, nil
}

func (v *Seller) feeFor(entry *gobs.LedgerEntry) decimal.Decimal {
	if entry.FeePercent.IsPositive() {
		return entry.FeePercent
	}
	return v.opts.FeePercent
}

func (v *Seller) notify(ctx context.Context, format string, args ...interface{}) {
	if v.opts.Messenger != nil {
		v.opts.Messenger.SendMessage(ctx, v.timeNow(), format, args...)
	}
}
