package curve

// The protocol-wide tenor table. Offsets are fixed days from the
// quarter-aligned reference time; they are not configurable per currency.
var tradedMarketDays = [MaxTradedMarkets]int64{
	90,   // 3 months
	180,  // 6 months
	360,  // 1 year
	720,  // 2 years
	1800, // 5 years
	2520, // 7 years
	3600, // 10 years
	5400, // 15 years
	7200, // 20 years
}

// TRef returns the latest quarter boundary at or before t.
func TRef(t int64) int64 {
	return t - t%SecondsInQuarter
}

// TradedMarket returns the tenor offset in seconds for a 1-based market
// index, or ErrPositionOutOfRange for an index off the table.
func TradedMarket(marketIndex int) (int64, error) {
	if marketIndex < 1 || marketIndex > MaxTradedMarkets {
		return 0, ErrPositionOutOfRange
	}
	return tradedMarketDays[marketIndex-1] * SecondsInDay, nil
}

// ActiveMaturities returns the maturities of the active market set for a
// curve evaluated at evalTime: tRef + offset(i) for i = 1..count, strictly
// increasing.
func ActiveMaturities(evalTime int64, count int) []int64 {
	tRef := TRef(evalTime)
	out := make([]int64, 0, count)
	for i := 1; i <= count; i++ {
		offset, err := TradedMarket(i)
		if err != nil {
			break
		}
		out = append(out, tRef+offset)
	}
	return out
}

// SettlementDate returns the quarter boundary on which liquidity tokens of
// a market retire: the first boundary at or after its maturity.
func SettlementDate(maturity int64) int64 {
	rem := maturity % SecondsInQuarter
	if rem == 0 {
		return maturity
	}
	return maturity - rem + SecondsInQuarter
}
