package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyID identifies a listed currency.
type CurrencyID uint16

// CashGroup is the stored per-currency curve configuration. Fee and buffer
// parameters are compact integers; the curve package owns the scaling rules
// that turn them into fixed-point rates.
type CashGroup struct {
	CurrencyID                CurrencyID `json:"currencyId"`
	MaxMarketIndex            int        `json:"maxMarketIndex"`
	RateOracleTimeWindowMin   int        `json:"rateOracleTimeWindowMin"`
	LiquidityFeeBPS           int        `json:"liquidityFeeBps"`
	DebtBuffer5BPS            int        `json:"debtBuffer5Bps"`
	FCashHaircut5BPS          int        `json:"fCashHaircut5Bps"`
	SettlementPenalty5BPS     int        `json:"settlementPenalty5Bps"`
	LiquidityRepoDiscount5BPS int        `json:"liquidityRepoDiscount5Bps"`
	LiquidityTokenHaircuts    []int      `json:"liquidityTokenHaircuts"`
	RateScalars               []int      `json:"rateScalars"`
	AssetRateOracle           string     `json:"assetRateOracle"`
	UpdatedAt                 time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the parameter slices.
func (cg CashGroup) Clone() CashGroup {
	out := cg
	out.LiquidityTokenHaircuts = append([]int(nil), cg.LiquidityTokenHaircuts...)
	out.RateScalars = append([]int(nil), cg.RateScalars...)
	return out
}

// Market is one tradable instrument at a discrete maturity on a currency's
// curve. Rates are fixed-point integers at rate precision; cash balances use
// decimals. A zero-valued Market is a valid, never-traded market.
type Market struct {
	CurrencyID        CurrencyID      `json:"currencyId"`
	Maturity          int64           `json:"maturity"`
	SettlementDate    int64           `json:"settlementDate"`
	TotalLiquidity    decimal.Decimal `json:"totalLiquidity"`
	TotalFCash        decimal.Decimal `json:"totalFCash"`
	TotalAssetCash    decimal.Decimal `json:"totalAssetCash"`
	LastImpliedRate   int64           `json:"lastImpliedRate"`
	OracleRate        int64           `json:"oracleRate"`
	PreviousTradeTime int64           `json:"previousTradeTime"`
	Updated           bool            `json:"updated"`
}

// CurveSnapshot is the full-state backup envelope mirrored into Redis so
// fresh pods can warm their local store without replaying writes.
type CurveSnapshot struct {
	Version    int         `json:"version"`
	TakenAt    time.Time   `json:"takenAt"`
	CashGroups []CashGroup `json:"cashGroups"`
	Markets    []Market    `json:"markets"`
}

// DataVersion tracks the snapshot version in Redis for change detection
// across pods.
type DataVersion struct {
	SnapshotVersion int       `json:"snapshot_version"`
	LastUpdated     time.Time `json:"last_updated"`
	LastUpdatedBy   string    `json:"last_updated_by"` // Pod ID that last updated
}
