package curve

import (
	"errors"
	"testing"
)

func TestTRef(t *testing.T) {
	if got := TRef(0); got != 0 {
		t.Errorf("tRef(0) = %d", got)
	}
	if got := TRef(SecondsInQuarter); got != SecondsInQuarter {
		t.Errorf("tRef on a boundary should be the boundary, got %d", got)
	}
	if got := TRef(SecondsInQuarter + 1); got != SecondsInQuarter {
		t.Errorf("tRef just past a boundary: got %d, want %d", got, SecondsInQuarter)
	}
	if got := TRef(3*SecondsInQuarter - 1); got != 2*SecondsInQuarter {
		t.Errorf("tRef just before a boundary: got %d, want %d", got, 2*SecondsInQuarter)
	}
}

func TestTradedMarket(t *testing.T) {
	wantDays := []int64{90, 180, 360, 720, 1800, 2520, 3600, 5400, 7200}
	for i, days := range wantDays {
		got, err := TradedMarket(i + 1)
		if err != nil {
			t.Fatalf("traded market %d: %v", i+1, err)
		}
		if got != days*SecondsInDay {
			t.Errorf("traded market %d: got %d, want %d", i+1, got, days*SecondsInDay)
		}
	}

	for _, idx := range []int{0, -1, 10} {
		if _, err := TradedMarket(idx); !errors.Is(err, ErrPositionOutOfRange) {
			t.Errorf("traded market %d should be out of range", idx)
		}
	}
}

func TestActiveMaturities(t *testing.T) {
	evalTime := 5*SecondsInQuarter + 12345
	tRef := TRef(evalTime)

	for count := MinTradedMarkets; count <= MaxTradedMarkets; count++ {
		maturities := ActiveMaturities(evalTime, count)
		if len(maturities) != count {
			t.Fatalf("count %d: got %d maturities", count, len(maturities))
		}
		for i, m := range maturities {
			offset, _ := TradedMarket(i + 1)
			if m != tRef+offset {
				t.Errorf("count %d maturity %d: got %d, want %d", count, i+1, m, tRef+offset)
			}
			if i > 0 && m <= maturities[i-1] {
				t.Errorf("maturities must be strictly increasing at %d", i)
			}
		}
	}
}

func TestSettlementDate(t *testing.T) {
	// Quarter-aligned maturities settle on their own boundary
	aligned := 8 * SecondsInQuarter
	if got := SettlementDate(aligned); got != aligned {
		t.Errorf("aligned settlement: got %d, want %d", got, aligned)
	}

	// Off-boundary maturities settle on the next boundary
	off := 8*SecondsInQuarter + 1
	if got := SettlementDate(off); got != 9*SecondsInQuarter {
		t.Errorf("off-boundary settlement: got %d, want %d", got, 9*SecondsInQuarter)
	}

	// Long-tenor maturities are multiples of the quarter by construction
	evalTime := 11*SecondsInQuarter + 999
	for i, m := range ActiveMaturities(evalTime, MaxTradedMarkets) {
		if m%SecondsInQuarter != 0 {
			t.Errorf("tenor %d maturity %d not quarter aligned", i+1, m)
		}
		if got := SettlementDate(m); got != m {
			t.Errorf("tenor %d: settlement %d, want %d", i+1, got, m)
		}
	}
}
