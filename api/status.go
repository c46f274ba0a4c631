// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPath = "/skinbot/status"

type StatusRequest struct {
}

type StatusJob struct {
	Name   string
	State  string
	Manual bool
}

type StatusResponse struct {
	// Pid is the daemon process id.
	Pid int

	// Uptime is the time elapsed since the daemon process has started.
	Uptime time.Duration

	// CPUPercent and MemoryRSS report the daemon process health.
	CPUPercent float64
	MemoryRSS  uint64

	// UserID and Username identify the marketplace account.
	UserID   string
	Username string

	// Balance is the usable account balance in USD.
	Balance decimal.Decimal

	// GameIDs holds the game ids enabled for trading.
	GameIDs []string

	// NumItems is the total number of ledger entries and NumUnsold is the
	// number of entries still waiting for a sale.
	NumItems  int
	NumUnsold int

	Jobs []*StatusJob
}
