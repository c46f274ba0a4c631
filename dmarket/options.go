// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"time"
)

type Options struct {
	// RestHostname is the hostname for the marketplace REST api.
	RestHostname string

	HttpClientTimeout time.Duration

	// BalanceRefreshInterval holds how often the background task refreshes
	// the cached account balance.
	BalanceRefreshInterval time.Duration

	// MissingRateLimitPause is the wait applied after a response that carries
	// no rate-limit headers. It is also the fallback wait when the rate-limit
	// reset header cannot be parsed.
	MissingRateLimitPause time.Duration

	// RateLimitPerSecond caps the client-side request rate.
	RateLimitPerSecond float64
}

func (v *Options) setDefaults() {
	if len(v.RestHostname) == 0 {
		v.RestHostname = "api.dmarket.com"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.BalanceRefreshInterval == 0 {
		v.BalanceRefreshInterval = 5 * time.Minute
	}
	if v.MissingRateLimitPause == 0 {
		v.MissingRateLimitPause = 5 * time.Second
	}
	if v.RateLimitPerSecond == 0 {
		v.RateLimitPerSecond = 10
	}
}
