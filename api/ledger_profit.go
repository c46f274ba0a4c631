// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"github.com/shopspring/decimal"
)

const LedgerProfitPath = "/skinbot/ledger/profit"

type LedgerProfitRequest struct {
	// Period selects a well-known reporting period: "today", "yesterday",
	// "this-week", "last-week", "this-month", "last-month", "this-year",
	// "last-year" or "lifetime". An empty period reports all of them.
	Period string
}

type LedgerProfitSummary struct {
	Period string

	// NumBought counts items bought and NumSold counts items sold within
	// the period.
	NumBought int
	NumSold   int

	// Bought is the total purchase cost of items bought in the period and
	// Sold is the total sale proceeds after fees for items sold in the
	// period, both in USD.
	Bought decimal.Decimal
	Sold   decimal.Decimal

	// Profit is the realized profit in USD over items sold in the period.
	Profit decimal.Decimal
}

type LedgerProfitResponse struct {
	Summaries []*LedgerProfitSummary
}
