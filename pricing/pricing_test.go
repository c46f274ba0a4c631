// Copyright (c) 2025 BVK Chaitanya

package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func band(min, max float64) *Band {
	return &Band{
		Min: decimal.NewFromFloat(min),
		Max: decimal.NewFromFloat(max),
	}
}

func sellFloat(b *Band, best float64) decimal.Decimal {
	return SellPrice(b, decimal.NewFromFloat(best))
}

func buyFloat(b *Band, best float64) decimal.Decimal {
	return BuyPrice(b, decimal.NewFromFloat(best))
}

func TestSellPrice(test *testing.T) {
	b := band(10, 20)

	if v := sellFloat(b, 5); !v.Equal(decimal.NewFromInt(10)) {
		test.Errorf("best below the band must sell at min, got %s", v)
	}
	if v := sellFloat(b, 15); !v.Equal(decimal.RequireFromString("14.99")) {
		test.Errorf("best inside the band must undercut by one cent, got %s", v)
	}
	if v := sellFloat(b, 25); !v.Equal(decimal.NewFromInt(20)) {
		test.Errorf("best above the band must sell at max, got %s", v)
	}

	if v := sellFloat(b, 10); !v.Equal(decimal.NewFromInt(10)) {
		test.Errorf("best at min must sell at min, got %s", v)
	}
	if v := sellFloat(b, 10.005); !v.Equal(decimal.NewFromInt(10)) {
		test.Errorf("undercut must never go below min, got %s", v)
	}
	if v := sellFloat(b, 20); !v.Equal(decimal.RequireFromString("19.99")) {
		test.Errorf("best at max must undercut to 19.99, got %s", v)
	}
}

func TestBuyPrice(test *testing.T) {
	b := band(10, 20)

	if v := buyFloat(b, 25); !v.Equal(decimal.NewFromInt(20)) {
		test.Errorf("best above the band must bid at max, got %s", v)
	}
	if v := buyFloat(b, 15); !v.Equal(decimal.NewFromInt(16)) {
		test.Errorf("best inside the band must outbid by one, got %s", v)
	}
	if v := buyFloat(b, 5); !v.Equal(decimal.NewFromInt(10)) {
		test.Errorf("best below the band must bid at min, got %s", v)
	}

	if v := buyFloat(b, 20); !v.Equal(decimal.NewFromInt(20)) {
		test.Errorf("best at max must bid at max, got %s", v)
	}
	if v := buyFloat(b, 19.5); !v.Equal(decimal.NewFromInt(20)) {
		test.Errorf("outbid must never go above max, got %s", v)
	}
	if v := buyFloat(b, 10); !v.Equal(decimal.NewFromInt(10)) {
		test.Errorf("best at min must bid at min, got %s", v)
	}
}

func TestPricesStayInBand(test *testing.T) {
	b := band(10, 20)
	for best := float64(0); best <= 30; best += 0.25 {
		if v := sellFloat(b, best); !b.In(v) {
			test.Fatalf("sell price %s for best %v is outside [%s, %s]", v, best, b.Min, b.Max)
		}
		if v := buyFloat(b, best); !b.In(v) {
			test.Fatalf("buy price %s for best %v is outside [%s, %s]", v, best, b.Min, b.Max)
		}
	}
}

func TestSellBand(test *testing.T) {
	b := SellBand(decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(15), decimal.NewFromInt(7))
	if !b.Min.Equal(decimal.RequireFromString("11.2")) {
		test.Errorf("wanted sell band min 11.2, got %s", b.Min)
	}
	if !b.Max.Equal(decimal.RequireFromString("12.2")) {
		test.Errorf("wanted sell band max 12.2, got %s", b.Max)
	}
	if err := b.Check(); err != nil {
		test.Error(err)
	}
}

func TestBuyBand(test *testing.T) {
	b := BuyBand(decimal.NewFromInt(1000), decimal.NewFromInt(10), decimal.NewFromInt(20))
	if !b.Min.Equal(decimal.NewFromInt(900)) {
		test.Errorf("wanted buy band min 900, got %s", b.Min)
	}
	if !b.Max.Equal(decimal.NewFromInt(1200)) {
		test.Errorf("wanted buy band max 1200, got %s", b.Max)
	}
	if err := b.Check(); err != nil {
		test.Error(err)
	}
}

func TestBandCheck(test *testing.T) {
	bad := band(20, 10)
	if err := bad.Check(); err == nil {
		test.Errorf("wanted an error for an inverted band")
	}
	negative := band(-1, 10)
	if err := negative.Check(); err == nil {
		test.Errorf("wanted an error for a negative band")
	}
}

func TestNetProceeds(test *testing.T) {
	v := NetProceeds(decimal.NewFromInt(100), decimal.NewFromInt(7))
	if !v.Equal(decimal.NewFromInt(93)) {
		test.Errorf("wanted net proceeds 93, got %s", v)
	}
}
