// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"github.com/bvk/skinbot/analytics"
	"github.com/bvk/skinbot/bidder"
	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/seller"
)

type Options struct {
	// NoResume when true stops jobs from resuming automatically on startup.
	NoResume bool

	// DMarket holds the marketplace client options. Nil picks the defaults.
	DMarket *dmarket.Options

	Analyzer analytics.Options
	Seller   seller.Options
	Bidder   bidder.Options
}

func (v *Options) setDefaults() {}

func (v *Options) Check() error {
	return nil
}
