// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"testing"
	"time"
)

func TestFromName(t *testing.T) {
	for _, name := range PeriodNames {
		r, err := FromName(name, time.UTC)
		if err != nil {
			t.Fatalf("FromName(%q): %v", name, err)
		}
		if r.IsZero() {
			t.Errorf("FromName(%q): returned a zero range", name)
		}
		if !r.End.After(r.Begin) {
			t.Errorf("FromName(%q): end %v is not after begin %v", name, r.End, r.Begin)
		}
	}

	if _, err := FromName("fortnight", time.UTC); err == nil {
		t.Errorf("FromName with an unknown name: wanted an error")
	}
}

func TestInRange(t *testing.T) {
	begin := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	r := &Range{Begin: begin, End: end}

	if !r.InRange(begin) {
		t.Errorf("begin must be in range")
	}
	if r.InRange(end) {
		t.Errorf("end must be out of range")
	}
	if r.InRange(begin.Add(-time.Nanosecond)) {
		t.Errorf("times before begin must be out of range")
	}
	if !r.InRange(end.Add(-time.Nanosecond)) {
		t.Errorf("times just before end must be in range")
	}

	var zero Range
	if !zero.InRange(time.Now()) {
		t.Errorf("zero range must cover all times")
	}
}

func TestPeriodsDisjoint(t *testing.T) {
	pairs := [][2]*Range{
		{Today(time.UTC), Yesterday(time.UTC)},
		{ThisWeek(time.UTC), LastWeek(time.UTC)},
		{ThisMonth(time.UTC), LastMonth(time.UTC)},
		{ThisYear(time.UTC), LastYear(time.UTC)},
	}
	for i, pair := range pairs {
		cur, prev := pair[0], pair[1]
		if !prev.End.Equal(cur.Begin) {
			t.Errorf("pair %d: previous period end %v does not meet current begin %v", i, prev.End, cur.Begin)
		}
		if cur.InRange(prev.End.Add(-time.Nanosecond)) {
			t.Errorf("pair %d: current period overlaps the previous one", i)
		}
	}
}
