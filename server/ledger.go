// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bvk/skinbot/api"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/ledger"
	"github.com/bvk/skinbot/timerange"
)

func (s *Server) doLedgerList(ctx context.Context, req *api.LedgerListRequest) (*api.LedgerListResponse, error) {
	var entries []*gobs.LedgerEntry
	var err error
	if req.Unsold {
		entries, err = ledger.ListUnsoldDB(ctx, s.db)
	} else {
		entries, err = ledger.ListAllDB(ctx, s.db)
	}
	if err != nil {
		return nil, fmt.Errorf("could not list ledger entries: %w", err)
	}

	resp := new(api.LedgerListResponse)
	for _, entry := range entries {
		resp.Items = append(resp.Items, &api.LedgerListItem{
			AssetID:    entry.AssetID,
			Title:      entry.Title,
			GameID:     entry.GameID,
			BuyPrice:   entry.BuyPrice,
			BoughtAt:   entry.BoughtAt,
			OfferID:    entry.OfferID,
			SellPrice:  entry.SellPrice,
			SoldAt:     entry.SoldAt,
			FeePercent: entry.FeePercent,
		})
	}
	return resp, nil
}

func (s *Server) doLedgerProfit(ctx context.Context, req *api.LedgerProfitRequest) (*api.LedgerProfitResponse, error) {
	names := timerange.PeriodNames
	if len(req.Period) != 0 {
		names = []string{strings.ToLower(req.Period)}
	}

	entries, err := ledger.ListAllDB(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("could not list ledger entries: %w", err)
	}

	resp := new(api.LedgerProfitResponse)
	for _, name := range names {
		period, err := timerange.FromName(name, time.Local)
		if err != nil {
			return nil, err
		}
		resp.Summaries = append(resp.Summaries, summarizeProfit(name, period, entries))
	}
	return resp, nil
}

// summarizeProfit aggregates purchases and sales of a single reporting
// period. Purchases count through their buy timestamp and sales through
// their sale timestamp, so an item bought and sold in different periods
// contributes to both.
func summarizeProfit(name string, period *timerange.Range, entries []*gobs.LedgerEntry) *api.LedgerProfitSummary {
	summary := &api.LedgerProfitSummary{
		Period: name,
	}
	for _, entry := range entries {
		if period.InRange(entry.BoughtAt) {
			summary.NumBought++
			summary.Bought = summary.Bought.Add(entry.BuyPrice)
		}
		if entry.IsSold() && period.InRange(entry.SoldAt) {
			summary.NumSold++
			summary.Sold = summary.Sold.Add(entry.SellPrice)
			summary.Profit = summary.Profit.Add(entry.SellPrice.Sub(entry.BuyPrice))
		}
	}
	return summary
}
