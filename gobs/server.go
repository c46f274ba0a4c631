// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"github.com/shopspring/decimal"
)

type ServerState struct {
	// GameIDs holds the marketplace game ids enabled for trading.
	GameIDs []string

	// MinBalance is the account balance in USD cents below which the server
	// sends a low-balance alert.
	MinBalance decimal.Decimal
}
