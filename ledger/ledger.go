// Copyright (c) 2025 BVK Chaitanya

// Package ledger persists the record of items bought, listed and sold on
// the marketplace. Entries are keyed by the marketplace asset id; exactly
// one entry exists per asset over its whole lifetime.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/kvutil"
	"github.com/bvkgo/kv"
)

var Keyspace = "/ledger/"

// upsertBatchSize bounds the number of entries written in one transaction.
const upsertBatchSize = 500

func entryKey(assetID string) string {
	return path.Join(Keyspace, assetID)
}

// Get returns the ledger entry for the given asset id. Returns
// os.ErrNotExist when the asset was never recorded.
func Get(ctx context.Context, r kv.Reader, assetID string) (*gobs.LedgerEntry, error) {
	if len(assetID) == 0 {
		return nil, fmt.Errorf("asset id cannot be empty: %w", os.ErrInvalid)
	}
	return kvutil.Get[gobs.LedgerEntry](ctx, r, entryKey(assetID))
}

// GetDB is similar to Get, but takes a kv.Database argument.
func GetDB(ctx context.Context, db kv.Database, assetID string) (entry *gobs.LedgerEntry, err error) {
	kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		entry, err = Get(ctx, r, assetID)
		return nil
	})
	return entry, err
}

// merge folds non-zero fields of the update into the stored entry. Zero
// fields never clear stored values, so a sold entry stays sold.
func merge(stored, update *gobs.LedgerEntry) *gobs.LedgerEntry {
	if len(update.Title) != 0 {
		stored.Title = update.Title
	}
	if len(update.GameID) != 0 {
		stored.GameID = update.GameID
	}
	if !update.BuyPrice.IsZero() {
		stored.BuyPrice = update.BuyPrice
	}
	if !update.BoughtAt.IsZero() {
		stored.BoughtAt = update.BoughtAt
	}
	if len(update.OfferID) != 0 {
		stored.OfferID = update.OfferID
	}
	if !update.SellPrice.IsZero() {
		stored.SellPrice = update.SellPrice
	}
	if !update.SoldAt.IsZero() {
		stored.SoldAt = update.SoldAt
	}
	if !update.FeePercent.IsZero() {
		stored.FeePercent = update.FeePercent
	}
	return stored
}

// Upsert inserts the entry if its asset id is new, otherwise folds the
// entry's non-zero fields into the stored entry. Upsert is idempotent.
func Upsert(ctx context.Context, rw kv.ReadWriter, entry *gobs.LedgerEntry) error {
	if len(entry.AssetID) == 0 {
		return fmt.Errorf("asset id cannot be empty: %w", os.ErrInvalid)
	}
	key := entryKey(entry.AssetID)
	stored, err := kvutil.Get[gobs.LedgerEntry](ctx, rw, key)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not read ledger entry %q: %w", entry.AssetID, err)
		}
		v := *entry
		stored = &v
	} else {
		stored = merge(stored, entry)
	}
	if err := kvutil.Set(ctx, rw, key, stored); err != nil {
		return fmt.Errorf("could not write ledger entry %q: %w", entry.AssetID, err)
	}
	return nil
}

// UpsertDB is similar to Upsert, but takes a kv.Database argument.
func UpsertDB(ctx context.Context, db kv.Database, entry *gobs.LedgerEntry) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return Upsert(ctx, rw, entry)
	})
}

// UpsertAll upserts the given entries in transactional batches. Each batch
// commits atomically; a failure leaves earlier batches committed and the
// failing batch fully rolled back.
func UpsertAll(ctx context.Context, db kv.Database, entries []*gobs.LedgerEntry) error {
	for begin := 0; begin < len(entries); begin += upsertBatchSize {
		end := min(begin+upsertBatchSize, len(entries))
		batch := entries[begin:end]

		update := func(ctx context.Context, rw kv.ReadWriter) error {
			for _, entry := range batch {
				if err := Upsert(ctx, rw, entry); err != nil {
					return err
				}
			}
			return nil
		}
		if err := kv.WithReadWriter(ctx, db, update); err != nil {
			return fmt.Errorf("could not upsert ledger batch: %w", err)
		}
	}
	return nil
}

// ListAll returns every ledger entry in asset id order.
func ListAll(ctx context.Context, r kv.Reader) ([]*gobs.LedgerEntry, error) {
	var entries []*gobs.LedgerEntry
	begin, end := kvutil.PathRange(Keyspace)
	collect := func(ctx context.Context, r kv.Reader, key string, entry *gobs.LedgerEntry) error {
		entries = append(entries, entry)
		return nil
	}
	if err := kvutil.Ascend(ctx, r, begin, end, collect); err != nil {
		return nil, fmt.Errorf("could not scan the ledger: %w", err)
	}
	return entries, nil
}

// ListAllDB is similar to ListAll, but takes a kv.Database argument.
func ListAllDB(ctx context.Context, db kv.Database) (entries []*gobs.LedgerEntry, err error) {
	kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		entries, err = ListAll(ctx, r)
		return nil
	})
	return entries, err
}

// ListUnsold returns every ledger entry not yet sold, in asset id order.
func ListUnsold(ctx context.Context, r kv.Reader) ([]*gobs.LedgerEntry, error) {
	entries, err := ListAll(ctx, r)
	if err != nil {
		return nil, err
	}
	unsold := make([]*gobs.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsSold() {
			unsold = append(unsold, entry)
		}
	}
	return unsold, nil
}

// ListUnsoldDB is similar to ListUnsold, but takes a kv.Database argument.
func ListUnsoldDB(ctx context.Context, db kv.Database) (entries []*gobs.LedgerEntry, err error) {
	kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		entries, err = ListUnsold(ctx, r)
		return nil
	})
	return entries, err
}

// Purge removes the ledger entry for the given asset id. Normal trading
// never deletes entries; this exists for operator cleanup.
func Purge(ctx context.Context, rw kv.ReadWriter, assetID string) error {
	if len(assetID) == 0 {
		return fmt.Errorf("asset id cannot be empty: %w", os.ErrInvalid)
	}
	if err := rw.Delete(ctx, entryKey(assetID)); err != nil {
		return fmt.Errorf("could not delete ledger entry %q: %w", assetID, err)
	}
	return nil
}
