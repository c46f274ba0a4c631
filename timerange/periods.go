// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"fmt"
	"strings"
	"time"
)

// PeriodNames lists the well-known reporting periods in display order.
var PeriodNames = []string{
	"today",
	"yesterday",
	"this-week",
	"last-week",
	"this-month",
	"last-month",
	"this-year",
	"last-year",
	"lifetime",
}

// FromName returns the range for a well-known period name. Names are
// matched case-insensitively.
func FromName(name string, zone *time.Location) (*Range, error) {
	switch strings.ToLower(name) {
	case "today":
		return Today(zone), nil
	case "yesterday":
		return Yesterday(zone), nil
	case "this-week":
		return ThisWeek(zone), nil
	case "last-week":
		return LastWeek(zone), nil
	case "this-month":
		return ThisMonth(zone), nil
	case "last-month":
		return LastMonth(zone), nil
	case "this-year":
		return ThisYear(zone), nil
	case "last-year":
		return LastYear(zone), nil
	case "lifetime":
		return Lifetime(zone), nil
	}
	return nil, fmt.Errorf("unknown period name %q", name)
}

func Lifetime(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	return &Range{
		Begin: time.Date(2000, 9, 24, 0, 0, 0, 0, zone),
		End:   time.Date(2100, 9, 24, 0, 0, 0, 0, zone),
	}
}

func Today(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	beg := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	return &Range{
		Begin: beg,
		End:   beg.Add(24 * time.Hour),
	}
}

func Yesterday(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	return &Range{
		Begin: today.Add(-24 * time.Hour),
		End:   today,
	}
}

func ThisWeek(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	begin := today.AddDate(0, 0, -int(now.Weekday()))
	end := begin.AddDate(0, 0, 7)
	return &Range{Begin: begin, End: end}
}

func LastWeek(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone).AddDate(0, 0, -int(now.Weekday()))
	begin := end.AddDate(0, 0, -7)
	return &Range{Begin: begin, End: end}
}

func ThisMonth(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	year, month := now.Year(), now.Month()
	begin := time.Date(year, month, 1, 0, 0, 0, 0, zone)
	end := begin.AddDate(0, 1, 0)
	return &Range{Begin: begin, End: end}
}

func LastMonth(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	year, month := now.Year(), now.Month()
	end := time.Date(year, month, 1, 0, 0, 0, 0, zone)
	begin := end.AddDate(0, -1, 0)
	return &Range{Begin: begin, End: end}
}

func ThisYear(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	begin := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, zone)
	return &Range{Begin: begin, End: begin.AddDate(1, 0, 0)}
}

func LastYear(zone *time.Location) *Range {
	if zone == nil {
		zone = time.Local
	}
	now := time.Now().In(zone)
	end := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, zone)
	begin := end.AddDate(-1, 0, 0)
	return &Range{Begin: begin, End: end}
}
