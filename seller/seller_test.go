// Copyright (c) 2025 BVK Chaitanya

package seller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/gobs"
	"github.com/bvk/skinbot/ledger"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

type fakeMarketplace struct {
	closedTargets []*dmarket.ClosedTarget
	soldOffers    map[string][]*dmarket.UserOfferItem
	userItems     map[string][]*dmarket.MarketItem
	asks          map[string][]*dmarket.MarketItem

	created [][]*dmarket.CreateOffer
	edited  [][]*dmarket.EditOffer
}

func (f *fakeMarketplace) GetClosedTargets(ctx context.Context, limit int) ([]*dmarket.ClosedTarget, error) {
	return f.closedTargets, nil
}

func (f *fakeMarketplace) GetUserOffers(ctx context.Context, gameID, status string, limit int) ([]*dmarket.UserOfferItem, error) {
	if status != dmarket.OfferStatusSold {
		return nil, fmt.Errorf("unexpected offer status %q", status)
	}
	return f.soldOffers[gameID], nil
}

func (f *fakeMarketplace) GetUserItems(ctx context.Context, gameID string) ([]*dmarket.MarketItem, error) {
	return f.userItems[gameID], nil
}

func (f *fakeMarketplace) GetOffersByTitle(ctx context.Context, title string, limit int) (*dmarket.MarketItems, error) {
	return &dmarket.MarketItems{Objects: f.asks[title]}, nil
}

func (f *fakeMarketplace) CreateOffers(ctx context.Context, offers []*dmarket.CreateOffer) ([]*dmarket.CreateOfferResult, error) {
	f.created = append(f.created, offers)
	var results []*dmarket.CreateOfferResult
	for _, offer := range offers {
		results = append(results, &dmarket.CreateOfferResult{
			CreateOffer: offer,
			OfferID:     "offer-" + offer.AssetID,
		})
	}
	return results, nil
}

func (f *fakeMarketplace) EditOffers(ctx context.Context, offers []*dmarket.EditOffer) ([]*dmarket.EditOfferResult, error) {
	f.edited = append(f.edited, offers)
	var results []*dmarket.EditOfferResult
	for _, offer := range offers {
		results = append(results, &dmarket.EditOfferResult{
			EditOffer:  offer,
			NewOfferID: offer.OfferID + "-v2",
		})
	}
	return results, nil
}

func (f *fakeMarketplace) numMutations() int {
	return len(f.created) + len(f.edited)
}

func ask(cents int64) *dmarket.MarketItem {
	return &dmarket.MarketItem{Price: dmarket.PriceMap{"USD": decimal.NewFromInt(cents)}}
}

func customFees(percent int64) *dmarket.ItemFees {
	fees := new(dmarket.ItemFees)
	fees.DMarket.Sell = map[string]*dmarket.FeeRate{
		"custom": {Percentage: decimal.NewFromInt(percent)},
	}
	return fees
}

func newTestSeller(t *testing.T, mkt Marketplace) (*Seller, kv.Database) {
	t.Helper()
	db := kvmemdb.New()
	v, err := New(db, mkt, &Options{GameIDs: []string{dmarket.GameCS}})
	if err != nil {
		t.Fatal(err)
	}
	v.timeNow = func() time.Time { return testTime }
	return v, db
}

func TestSellerPass(t *testing.T) {
	ctx := context.Background()

	mkt := &fakeMarketplace{
		closedTargets: []*dmarket.ClosedTarget{
			{AssetID: "a1", Title: "alpha skin", GameID: dmarket.GameCS, Price: dmarket.Money{Currency: "USD", Amount: decimal.NewFromInt(10)}},
			{AssetID: "a2", Title: "bravo skin", GameID: dmarket.GameCS, Price: dmarket.Money{Currency: "USD", Amount: decimal.NewFromInt(8)}},
		},
		userItems: map[string][]*dmarket.MarketItem{
			dmarket.GameCS: {
				{ItemID: "a1", Title: "alpha skin", GameID: dmarket.GameCS, InMarket: true, Fees: customFees(5)},
			},
		},
		asks: map[string][]*dmarket.MarketItem{
			"alpha skin": {ask(1150)},
		},
	}
	v, db := newTestSeller(t, mkt)

	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}

	// Both purchases enter the ledger; only the item in the market
	// inventory is listed.
	if len(mkt.created) != 1 || len(mkt.created[0]) != 1 {
		t.Fatalf("wanted one create call with one offer, got %+v", mkt.created)
	}
	offer := mkt.created[0][0]
	if offer.AssetID != "a1" {
		t.Fatalf("wanted offer for a1, got %q", offer.AssetID)
	}
	// Band over cost 10 with fee 5 is [11, 12]; the cheapest competing
	// listing at 11.50 is undercut by one cent.
	if want := decimal.RequireFromString("11.49"); !offer.Price.Amount.Equal(want) {
		t.Errorf("wanted listing price %s, got %s", want, offer.Price.Amount)
	}

	listed, err := ledger.GetDB(ctx, db, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if listed.OfferID != "offer-a1" {
		t.Errorf("wanted offer id recorded, got %q", listed.OfferID)
	}
	if want := decimal.RequireFromString("11.49"); !listed.SellPrice.Equal(want) {
		t.Errorf("wanted listed price %s, got %s", want, listed.SellPrice)
	}
	if want := decimal.NewFromInt(5); !listed.FeePercent.Equal(want) {
		t.Errorf("wanted fee percent %s, got %s", want, listed.FeePercent)
	}

	pending, err := ledger.GetDB(ctx, db, "a2")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending.OfferID) != 0 || pending.IsSold() {
		t.Errorf("item outside the inventory must stay unlisted: %+v", pending)
	}

	// A second pass over the converged state issues no mutating calls.
	before := mkt.numMutations()
	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}
	if mkt.numMutations() != before {
		t.Fatalf("converged pass must not mutate: creates %v edits %v", mkt.created, mkt.edited)
	}

	again, err := ledger.GetDB(ctx, db, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !again.BoughtAt.Equal(listed.BoughtAt) {
		t.Errorf("purchase time must not change across passes")
	}
}

func TestSellerReprice(t *testing.T) {
	ctx := context.Background()

	mkt := &fakeMarketplace{
		asks: map[string][]*dmarket.MarketItem{
			"alpha skin": {ask(1200), ask(1150)},
		},
	}
	v, db := newTestSeller(t, mkt)

	entry := &gobs.LedgerEntry{
		AssetID:    "a1",
		Title:      "alpha skin",
		GameID:     dmarket.GameCS,
		BuyPrice:   decimal.NewFromInt(10),
		BoughtAt:   testTime.Add(-24 * time.Hour),
		OfferID:    "offer-1",
		SellPrice:  decimal.NewFromInt(12),
		FeePercent: decimal.NewFromInt(5),
	}
	if err := ledger.UpsertDB(ctx, db, entry); err != nil {
		t.Fatal(err)
	}

	if err := v.repriceOffers(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mkt.edited) != 1 || len(mkt.edited[0]) != 1 {
		t.Fatalf("wanted one edit call with one offer, got %+v", mkt.edited)
	}
	edit := mkt.edited[0][0]
	if edit.OfferID != "offer-1" || edit.AssetID != "a1" {
		t.Fatalf("wanted edit of offer-1/a1, got %+v", edit)
	}
	if want := decimal.RequireFromString("11.49"); !edit.Price.Amount.Equal(want) {
		t.Errorf("wanted edit price %s, got %s", want, edit.Price.Amount)
	}

	updated, err := ledger.GetDB(ctx, db, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if updated.OfferID != "offer-1-v2" {
		t.Errorf("wanted the replacement offer id recorded, got %q", updated.OfferID)
	}
	if want := decimal.RequireFromString("11.49"); !updated.SellPrice.Equal(want) {
		t.Errorf("wanted recorded price %s, got %s", want, updated.SellPrice)
	}

	// The price now matches the computed undercut, so another pass stands
	// pat.
	if err := v.repriceOffers(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mkt.edited) != 1 {
		t.Fatalf("converged reprice must not edit again: %+v", mkt.edited)
	}
}

func TestSellerCheapestListingStandsPat(t *testing.T) {
	ctx := context.Background()

	mkt := &fakeMarketplace{
		asks: map[string][]*dmarket.MarketItem{
			"alpha skin": {ask(1149), ask(1200)},
		},
	}
	v, db := newTestSeller(t, mkt)

	entry := &gobs.LedgerEntry{
		AssetID:    "a1",
		Title:      "alpha skin",
		GameID:     dmarket.GameCS,
		BuyPrice:   decimal.NewFromInt(10),
		OfferID:    "offer-1",
		SellPrice:  decimal.RequireFromString("11.49"),
		FeePercent: decimal.NewFromInt(5),
	}
	if err := ledger.UpsertDB(ctx, db, entry); err != nil {
		t.Fatal(err)
	}

	if err := v.repriceOffers(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mkt.edited) != 0 {
		t.Fatalf("cheapest listing must not undercut itself: %+v", mkt.edited)
	}
}

func TestSellerSoldSweep(t *testing.T) {
	ctx := context.Background()

	mkt := &fakeMarketplace{
		soldOffers: map[string][]*dmarket.UserOfferItem{
			dmarket.GameCS: {
				{
					AssetID: "a1",
					Title:   "alpha skin",
					GameID:  dmarket.GameCS,
					Offer: &dmarket.UserOffer{
						OfferID: "offer-2",
						Price:   dmarket.Money{Currency: "USD", Amount: decimal.RequireFromString("11.49")},
					},
				},
			},
		},
	}
	v, db := newTestSeller(t, mkt)

	entry := &gobs.LedgerEntry{
		AssetID:    "a1",
		Title:      "alpha skin",
		GameID:     dmarket.GameCS,
		BuyPrice:   decimal.NewFromInt(10),
		OfferID:    "offer-1",
		SellPrice:  decimal.RequireFromString("11.49"),
		FeePercent: decimal.NewFromInt(5),
	}
	if err := ledger.UpsertDB(ctx, db, entry); err != nil {
		t.Fatal(err)
	}

	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}

	sold, err := ledger.GetDB(ctx, db, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !sold.IsSold() || !sold.SoldAt.Equal(testTime) {
		t.Fatalf("wanted the entry marked sold at %s, got %+v", testTime, sold)
	}
	// Net proceeds are the sale price less the 5 percent fee.
	if want := decimal.RequireFromString("10.9155"); !sold.SellPrice.Equal(want) {
		t.Errorf("wanted net proceeds %s, got %s", want, sold.SellPrice)
	}
	if sold.OfferID != "offer-2" {
		t.Errorf("wanted the sold offer id recorded, got %q", sold.OfferID)
	}

	unsold, err := ledger.ListUnsoldDB(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(unsold) != 0 {
		t.Fatalf("sold entry must leave the unsold projection: %+v", unsold)
	}

	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}
	again, err := ledger.GetDB(ctx, db, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !again.SoldAt.Equal(sold.SoldAt) || !again.SellPrice.Equal(sold.SellPrice) {
		t.Errorf("sold entry must not change across passes")
	}
}

func TestSellerNoCompetingListings(t *testing.T) {
	ctx := context.Background()

	mkt := &fakeMarketplace{
		closedTargets: []*dmarket.ClosedTarget{
			{AssetID: "a1", Title: "alpha skin", GameID: dmarket.GameCS, Price: dmarket.Money{Currency: "USD", Amount: decimal.NewFromInt(10)}},
		},
		userItems: map[string][]*dmarket.MarketItem{
			dmarket.GameCS: {
				{ItemID: "a1", Title: "alpha skin", GameID: dmarket.GameCS, InMarket: true},
			},
		},
	}
	v, _ := newTestSeller(t, mkt)

	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mkt.created) != 1 || len(mkt.created[0]) != 1 {
		t.Fatalf("wanted one create call, got %+v", mkt.created)
	}
	// No competing listings: list at the band ceiling with the default 7
	// percent fee, cost 10 scaled by (100+15+7)/100.
	if want := decimal.RequireFromString("12.2"); !mkt.created[0][0].Price.Amount.Equal(want) {
		t.Errorf("wanted ceiling price %s, got %s", want, mkt.created[0][0].Price.Amount)
	}
}

func TestSellerUnknownAsset(t *testing.T) {
	ctx := context.Background()

	// A sold offer for an asset the ledger never tracked is ignored.
	mkt := &fakeMarketplace{
		soldOffers: map[string][]*dmarket.UserOfferItem{
			dmarket.GameCS: {
				{AssetID: "stranger", Title: "alpha skin", GameID: dmarket.GameCS,
					Offer: &dmarket.UserOffer{OfferID: "x", Price: dmarket.Money{Currency: "USD", Amount: decimal.NewFromInt(5)}}},
			},
		},
	}
	v, db := newTestSeller(t, mkt)

	entry := &gobs.LedgerEntry{
		AssetID:  "a1",
		Title:    "bravo skin",
		GameID:   dmarket.GameCS,
		BuyPrice: decimal.NewFromInt(10),
	}
	if err := ledger.UpsertDB(ctx, db, entry); err != nil {
		t.Fatal(err)
	}

	if err := v.RunPass(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.GetDB(ctx, db, "stranger"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unknown asset must not enter the ledger: %v", err)
	}
}
