package curve

import (
	"github.com/fcashlabs/curve-engine/internal/storage"
)

// Fixed-point rate arithmetic. All rates are integers scaled by
// RatePrecision; no floating point enters the rate path.
const (
	RatePrecision   = int64(1_000_000_000)
	BasisPoint      = RatePrecision / 10_000
	FiveBasisPoints = 5 * BasisPoint

	SecondsInDay     = int64(86400)
	SecondsInQuarter = 90 * SecondsInDay

	// NormalizedRateTime is the 360-day year the stored fee and scalar
	// parameters are quoted against.
	NormalizedRateTime = 360 * SecondsInDay

	// Annualization factor for the per-block money market supply rate
	// (blocks per year at ~15s blocks), matching the reference feed.
	BlocksPerYear = int64(2102400)

	// SupplyRateScale is the fixed-point scale of the raw per-block rate
	// reported by the feed.
	SupplyRateScale = int64(1_000_000_000)

	MinTradedMarkets = 2
	MaxTradedMarkets = 9
)

// Use types from the storage package for consistency
type CurrencyID = storage.CurrencyID
type CashGroup = storage.CashGroup
type Market = storage.Market
type CurveSnapshot = storage.CurveSnapshot
