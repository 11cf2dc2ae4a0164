package curve

// ValidateCashGroup checks a candidate configuration in one pass. prev is the currently stored record, nil when the currency has
// never been configured. The max market index can grow but never shrink:
// retiring a listed market would strand open positions.
func ValidateCashGroup(candidate CashGroup, prev *CashGroup) error {
	if candidate.MaxMarketIndex < MinTradedMarkets || candidate.MaxMarketIndex > MaxTradedMarkets {
		return ErrInvalidMarketCount
	}
	if prev != nil && candidate.MaxMarketIndex < prev.MaxMarketIndex {
		return ErrMarketCountDecreased
	}
	if len(candidate.LiquidityTokenHaircuts) != candidate.MaxMarketIndex ||
		len(candidate.RateScalars) != candidate.MaxMarketIndex {
		return ErrArrayLengthMismatch
	}
	for _, haircut := range candidate.LiquidityTokenHaircuts {
		if haircut > 100 {
			return ErrHaircutOutOfRange
		}
	}
	for _, scalar := range candidate.RateScalars {
		if scalar <= 0 {
			return ErrZeroRateScalar
		}
	}
	return nil
}

// The scaled accessors below are the only place the compact stored
// integers are widened into fixed-point rates. Callers never duplicate
// the multipliers.

// RateOracleTimeWindow returns the rate averaging window in seconds.
func RateOracleTimeWindow(cg CashGroup) int64 {
	return int64(cg.RateOracleTimeWindowMin) * 60
}

// LiquidityFee returns the trading fee in rate precision, prorated by time
// to maturity against the normalized rate time.
func LiquidityFee(cg CashGroup, timeToMaturity int64) int64 {
	return int64(cg.LiquidityFeeBPS) * BasisPoint * timeToMaturity / NormalizedRateTime
}

// DebtBuffer returns the debt buffer in rate precision.
func DebtBuffer(cg CashGroup) int64 {
	return int64(cg.DebtBuffer5BPS) * FiveBasisPoints
}

// FCashHaircut returns the fCash valuation haircut in rate precision.
func FCashHaircut(cg CashGroup) int64 {
	return int64(cg.FCashHaircut5BPS) * FiveBasisPoints
}

// SettlementPenalty returns the settlement penalty rate in rate precision.
func SettlementPenalty(cg CashGroup) int64 {
	return int64(cg.SettlementPenalty5BPS) * FiveBasisPoints
}

// LiquidityTokenRepoDiscount returns the liquidity repo discount in rate
// precision.
func LiquidityTokenRepoDiscount(cg CashGroup) int64 {
	return int64(cg.LiquidityRepoDiscount5BPS) * FiveBasisPoints
}

// LiquidityHaircut returns the haircut percentage for a liquidity token at
// the given asset position. Liquidity tokens start at position 2; position
// 1 is fCash itself.
func LiquidityHaircut(cg CashGroup, assetPosition int) (int, error) {
	idx := assetPosition - 2
	if idx < 0 || idx >= len(cg.LiquidityTokenHaircuts) {
		return 0, ErrPositionOutOfRange
	}
	return cg.LiquidityTokenHaircuts[idx], nil
}

// RateScalar returns the price-to-rate sensitivity for a market position,
// annualized against time to maturity. Stored scalars carry a x10 scale.
func RateScalar(cg CashGroup, marketIndex int, timeToMaturity int64) (int64, error) {
	if marketIndex < 1 || marketIndex > len(cg.RateScalars) {
		return 0, ErrPositionOutOfRange
	}
	scalar := int64(cg.RateScalars[marketIndex-1]) * 10
	return scalar * NormalizedRateTime / timeToMaturity, nil
}
