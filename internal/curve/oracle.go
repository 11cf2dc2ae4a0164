package curve

import (
	"context"
)

// OracleRate answers the interpolated market rate for an arbitrary target
// maturity against this curve snapshot.
//
// An exact active maturity returns that market's last implied rate
// unchanged. An idiosyncratic maturity between two active markets is
// linearly interpolated between their implied rates. A maturity shorter
// than the first active market anchors the short end on the annualized
// money market spot rate at the evaluation time, which costs at most one
// feed call per query.
func (wc *WorkingCurve) OracleRate(ctx context.Context, targetMaturity int64, feed AssetRateFeed) (int64, error) {
	position, idiosyncratic, err := wc.MarketIndex(targetMaturity)
	if err != nil {
		return 0, err
	}

	if !idiosyncratic {
		return wc.Markets[position-1].LastImpliedRate, nil
	}

	var shortRate, shortTime int64
	if position == 1 {
		shortRate, err = AnnualizedSpotRate(ctx, feed, wc.Config.CurrencyID, wc.EvalTime)
		if err != nil {
			return 0, err
		}
		shortTime = wc.EvalTime
	} else {
		short := wc.Markets[position-2]
		shortRate = short.LastImpliedRate
		shortTime = short.Maturity
	}

	long := wc.Markets[position-1]
	return interpolateRate(shortRate, long.LastImpliedRate, shortTime, long.Maturity, targetMaturity), nil
}

// interpolateRate computes the linear interpolation
//
//	shortRate + (longRate - shortRate) * (target - shortTime) / (longTime - shortTime)
//
// entirely in int64 fixed point. The tenor table guarantees
// longTime > shortTime, so the divisor is strictly positive.
func interpolateRate(shortRate, longRate, shortTime, longTime, target int64) int64 {
	numerator := (longRate - shortRate) * (target - shortTime)
	return shortRate + numerator/(longTime-shortTime)
}
