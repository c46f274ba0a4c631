// Copyright (c) 2024 BVK Chaitanya

// Package timerange defines half-open time intervals and the well-known
// reporting periods used by the profit summaries.
package timerange

import (
	"math"
	"time"
)

// Range is a half-open time interval [Begin, End). A zero range covers
// all of time.
type Range struct {
	Begin, End time.Time
}

func (r *Range) Equal(v *Range) bool {
	return r.Begin.Equal(v.Begin) && r.End.Equal(v.End)
}

func (r *Range) IsZero() bool {
	return r.Begin.IsZero() && r.End.IsZero()
}

func (r *Range) InRange(v time.Time) bool {
	if r.IsZero() {
		return true
	}
	if !r.Begin.IsZero() && v.Before(r.Begin) {
		return false
	}
	if !r.End.IsZero() && (v.Equal(r.End) || v.After(r.End)) {
		return false
	}
	return true
}

func (r *Range) Duration() time.Duration {
	if r.IsZero() {
		return math.MaxInt64
	}
	if r.End.IsZero() {
		return time.Since(r.Begin)
	}
	return r.End.Sub(r.Begin)
}
