// Copyright (c) 2025 BVK Chaitanya

// Package analytics maintains the sales-history catalog and recommends
// items for the buy side. A periodic refresh scans market listings and
// records recent sales per title; candidate selection filters the catalog
// through popularity, price-trend and profitability gates.
package analytics

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/bvk/skinbot/ctxutil"
	"github.com/bvk/skinbot/dmarket"
	"github.com/bvkgo/kv"
)

// Marketplace is the view of the marketplace client used by the analyzer.
type Marketplace interface {
	GetMarketItems(ctx context.Context, query *dmarket.MarketItemsQuery) (*dmarket.MarketItems, error)
	GetLastSales(ctx context.Context, gameID, title string) ([]*dmarket.LastSale, error)
	GetAggregatedPrices(ctx context.Context, titles []string) ([]*dmarket.AggregatedTitle, error)
}

type Analyzer struct {
	db kv.Database

	mkt Marketplace

	opts Options

	timeNow func() time.Time
}

func New(db kv.Database, mkt Marketplace, opts *Options) (*Analyzer, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Analyzer{
		db:      db,
		mkt:     mkt,
		opts:    *opts,
		timeNow: time.Now,
	}, nil
}

func (a *Analyzer) String() string {
	return "analyzer"
}

// Run refreshes the catalog in a loop until the context is canceled.
// Authentication failures are fatal; other refresh failures are logged
// and retried on the next pass.
func (a *Analyzer) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := a.Refresh(ctx); err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) {
				return err
			}
			if ctx.Err() == nil {
				log.Printf("analyzer: catalog refresh has failed (retrying): %v", err)
			}
		}
		if err := ctxutil.Sleep(ctx, a.opts.Interval); err != nil {
			break
		}
	}
	return context.Cause(ctx)
}

// Blocked returns true when the title matches one of the blocklist words.
// Matching is a case-insensitive substring test.
func Blocked(blocklist []string, title string) bool {
	lower := strings.ToLower(title)
	for _, word := range blocklist {
		if len(word) == 0 {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
