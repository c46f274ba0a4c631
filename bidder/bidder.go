// Copyright (c) 2025 BVK Chaitanya

// Package bidder converges the marketplace buy targets with the analyzer's
// buy recommendations. Each pass removes duplicate, inactive and stale
// targets, places bids for new candidates and keeps the surviving bids
// priced against the best competing order.
package bidder

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bvk/skinbot/analytics"
	"github.com/bvk/skinbot/ctxutil"
	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/pricing"
	"github.com/shopspring/decimal"
)

const (
	askProbeLimit     = 3
	listingProbeLimit = 1
)

var centsPerDollar = decimal.NewFromInt(100)

// Marketplace is the view of the marketplace client used by the bidder.
type Marketplace interface {
	GetUserTargets(ctx context.Context, gameID, status string) ([]*dmarket.Target, error)
	GetMarketItems(ctx context.Context, query *dmarket.MarketItemsQuery) (*dmarket.MarketItems, error)
	GetOffersByTitle(ctx context.Context, title string, limit int) (*dmarket.MarketItems, error)
	CreateTargets(ctx context.Context, targets []*dmarket.CreateTarget) ([]*dmarket.CreateTargetResult, error)
	DeleteTargets(ctx context.Context, targetIDs []string) ([]*dmarket.DeleteTargetResult, error)
	CachedBalance() decimal.Decimal
}

// CandidateSource supplies the titles worth bidding on.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]*analytics.Candidate, error)
}

type Bidder struct {
	mkt Marketplace

	src CandidateSource

	opts Options
}

func New(mkt Marketplace, src CandidateSource, opts *Options) (*Bidder, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Bidder{
		mkt:  mkt,
		src:  src,
		opts: *opts,
	}, nil
}

func (v *Bidder) String() string {
	return "bidder"
}

// Run reconciles buy targets in a loop until the context is canceled.
// Authentication failures are fatal; other pass failures are logged and
// retried on the next pass.
func (v *Bidder) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := v.RunPass(ctx); err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) {
				return err
			}
			if ctx.Err() == nil {
				log.Printf("bidder: reconcile pass has failed (retrying): %v", err)
			}
		}
		if err := ctxutil.Sleep(ctx, v.opts.Interval); err != nil {
			break
		}
	}
	return context.Cause(ctx)
}

// RunPass runs one reconcile pass over every configured game.
func (v *Bidder) RunPass(ctx context.Context) error {
	candidates, err := v.src.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("could not compute candidates: %w", err)
	}
	byGame := make(map[string][]*analytics.Candidate)
	for _, c := range candidates {
		byGame[c.GameID] = append(byGame[c.GameID], c)
	}
	for _, gameID := range v.opts.GameIDs {
		if err := v.reconcileGame(ctx, gameID, byGame[gameID]); err != nil {
			return fmt.Errorf("could not reconcile game %s targets: %w", gameID, err)
		}
	}
	return nil
}

func (v *Bidder) reconcileGame(ctx context.Context, gameID string, candidates []*analytics.Candidate) error {
	active, err := v.mkt.GetUserTargets(ctx, gameID, dmarket.TargetStatusActive)
	if err != nil {
		return err
	}
	inactive, err := v.mkt.GetUserTargets(ctx, gameID, dmarket.TargetStatusInactive)
	if err != nil {
		return err
	}

	byTitle := make(map[string]*analytics.Candidate)
	for _, c := range candidates {
		byTitle[c.Title] = c
	}

	// Duplicate targets for a title waste reserved balance. The first one
	// stays and the rest are deleted with the stale targets.
	var bad []string
	var good []*dmarket.Target
	seen := make(map[string]bool)
	for _, target := range active {
		if seen[target.Title] {
			bad = append(bad, target.TargetID)
			continue
		}
		seen[target.Title] = true
		cand, ok := byTitle[target.Title]
		if !ok || !cand.Band.In(target.Price.Amount.Mul(centsPerDollar)) {
			bad = append(bad, target.TargetID)
			continue
		}
		good = append(good, target)
	}
	for _, target := range inactive {
		bad = append(bad, target.TargetID)
	}
	if len(bad) > 0 {
		results, err := v.mkt.DeleteTargets(ctx, bad)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Error != nil {
				log.Printf("bidder: could not delete target %q (skipped): %s", r.DeleteTarget.TargetID, r.Error.Message)
			}
		}
		log.Printf("bidder: deleted %d stale targets", len(bad))
	}

	var created int
	for _, cand := range candidates {
		if seen[cand.Title] {
			continue
		}
		if err := context.Cause(ctx); err != nil {
			return err
		}
		if analytics.Blocked(v.opts.Blocklist, cand.Title) {
			continue
		}
		price := pricing.BuyPrice(&cand.Band, cand.BestOrder)
		if !v.mkt.CachedBalance().GreaterThan(price) {
			continue
		}
		ok, err := v.placeTarget(ctx, cand, price)
		if err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) || errors.Is(err, context.Cause(ctx)) {
				return err
			}
			log.Printf("bidder: could not create target for %q (skipped): %v", cand.Title, err)
			continue
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		log.Printf("bidder: created %d new targets", created)
	}

	var repriced int
	for _, target := range good {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		cand := byTitle[target.Title]
		current := target.Price.Amount.Mul(centsPerDollar)
		// The aggregated best order covers our own target. When it is
		// the top bid there is no one to outbid.
		if current.Equal(cand.BestOrder) {
			continue
		}
		price := pricing.BuyPrice(&cand.Band, cand.BestOrder)
		if price.Equal(current) {
			continue
		}
		ok, err := v.replaceTarget(ctx, target, cand, price)
		if err != nil {
			if errors.Is(err, dmarket.ErrAuthFailure) || errors.Is(err, context.Cause(ctx)) {
				return err
			}
			log.Printf("bidder: could not reprice target for %q (skipped): %v", target.Title, err)
			continue
		}
		if ok {
			repriced++
		}
	}
	if repriced > 0 {
		log.Printf("bidder: repriced %d targets", repriced)
	}
	return nil
}

// placeTarget creates a buy target for the candidate at the given price in
// cents after confirming the resale margin. It reports whether a target was
// created.
func (v *Bidder) placeTarget(ctx context.Context, cand *analytics.Candidate, price decimal.Decimal) (bool, error) {
	ok, err := v.profitable(ctx, cand.Title, price)
	if err != nil || !ok {
		return false, err
	}
	if err := v.createTarget(ctx, cand, price); err != nil {
		return false, err
	}
	return true, nil
}

// replaceTarget moves an existing buy target to the given price in cents.
// The marketplace has no edit call for targets, so the old target is deleted
// and a new one is created.
func (v *Bidder) replaceTarget(ctx context.Context, target *dmarket.Target, cand *analytics.Candidate, price decimal.Decimal) (bool, error) {
	ok, err := v.profitable(ctx, cand.Title, price)
	if err != nil || !ok {
		return false, err
	}
	results, err := v.mkt.DeleteTargets(ctx, []string{target.TargetID})
	if err != nil {
		return false, err
	}
	for _, r := range results {
		if r.Error != nil {
			return false, fmt.Errorf("could not delete target %q: %s", target.TargetID, r.Error.Message)
		}
	}
	if err := v.createTarget(ctx, cand, price); err != nil {
		return false, err
	}
	return true, nil
}

// profitable reports whether one of the cheapest live listings for the
// title could be resold at the configured margin over the given price in
// cents.
func (v *Bidder) profitable(ctx context.Context, title string, price decimal.Decimal) (bool, error) {
	items, err := v.mkt.GetOffersByTitle(ctx, title, askProbeLimit)
	if err != nil {
		return false, err
	}
	want := pricing.Markup(price, v.opts.ProfitPercent)
	for _, item := range items.Objects {
		if item.Price.Cents().GreaterThanOrEqual(want) {
			return true, nil
		}
	}
	return false, nil
}

// createTarget places a buy target at the given price in cents. The
// marketplace requires the item attribute set on every target, which is
// copied from a live listing with the same title.
func (v *Bidder) createTarget(ctx context.Context, cand *analytics.Candidate, price decimal.Decimal) error {
	items, err := v.mkt.GetMarketItems(ctx, &dmarket.MarketItemsQuery{
		GameID: cand.GameID,
		Title:  cand.Title,
		Limit:  listingProbeLimit,
	})
	if err != nil {
		return err
	}
	if len(items.Objects) == 0 || items.Objects[0].Title != cand.Title {
		return fmt.Errorf("no live listing found for title %q", cand.Title)
	}
	item := items.Objects[0]
	attrs := []*dmarket.TargetAttribute{
		{Name: "name", Value: item.Extra.Name},
		{Name: "title", Value: item.Title},
		{Name: "category", Value: item.Extra.Category},
		{Name: "gameId", Value: item.GameID},
		{Name: "categoryPath", Value: item.Extra.CategoryPath},
		{Name: "image", Value: item.Image},
	}
	if len(item.Extra.Exterior) > 0 {
		attrs = append(attrs, &dmarket.TargetAttribute{Name: "exterior", Value: item.Extra.Exterior})
	}
	create := &dmarket.CreateTarget{
		Amount:     "1",
		Price:      dmarket.USD(price.Div(centsPerDollar)),
		Attributes: attrs,
	}
	results, err := v.mkt.CreateTargets(ctx, []*dmarket.CreateTarget{create})
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("marketplace rejected the target: %s", r.Error.Message)
		}
		if !r.Successful {
			return fmt.Errorf("marketplace rejected the target")
		}
	}
	return nil
}
