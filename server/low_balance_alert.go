// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/kvutil"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

func (s *Server) watchForLowBalance(ctx context.Context) error {
	updates, err := s.marketplace.BalanceUpdates()
	if err != nil {
		return err
	}
	defer updates.Close()

	updatesCh, err := topic.ReceiveCh(updates)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case balance, ok := <-updatesCh:
			if !ok {
				return nil
			}
			if err := s.alertOnLowBalance(ctx, balance); err != nil {
				slog.WarnContext(ctx, "could not send low balance alert", "balance", balance, "error", err)
			}
		}
	}
}

// alertOnLowBalance sends an alert when the usable balance drops below the
// configured limit. Alerts are frozen after the first one until the balance
// recovers above the limit, so a balance hovering below the limit doesn't
// flood the operator. The limit is read from the server state on every
// check, so it can be adjusted without a daemon restart.
func (s *Server) alertOnLowBalance(ctx context.Context, balance decimal.Decimal) error {
	state, err := kvutil.GetDB[gobs.ServerState](ctx, s.db, ServerStateKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if !state.MinBalance.IsPositive() {
		return nil
	}

	limit := state.MinBalance
	if balance.GreaterThan(limit) {
		if s.alertFrozen {
			s.alertFrozen = false
			slog.InfoContext(ctx, "account balance has recovered above the low balance limit", "balance", balance, "limit", limit)
		}
		return nil
	}

	if s.alertFrozen {
		return nil
	}
	s.alertFrozen = true
	s.SendAlert(ctx, time.Now(),
		"Usable balance %s USD is below the configured limit %s USD. Bidding will stall until the balance recovers.",
		balance.Div(centsPerDollar).StringFixed(2), limit.Div(centsPerDollar).StringFixed(2))
	return nil
}
