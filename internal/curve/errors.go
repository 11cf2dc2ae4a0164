package curve

import "errors"

// Configuration errors. All are detected before any write; a failed
// SetCashGroup leaves the stored record untouched.
var (
	ErrInvalidMarketCount   = errors.New("max market index must be between 2 and 9")
	ErrMarketCountDecreased = errors.New("max market index cannot decrease")
	ErrArrayLengthMismatch  = errors.New("haircut and rate scalar arrays must match max market index")
	ErrHaircutOutOfRange    = errors.New("liquidity token haircut cannot exceed 100")
	ErrZeroRateScalar       = errors.New("rate scalars must be positive")
)

// Curve query errors.
var (
	ErrCurrencyNotConfigured = errors.New("currency has no cash group configured")
	ErrPositionOutOfRange    = errors.New("market position outside active curve")
	ErrMaturityBeyondCurve   = errors.New("maturity exceeds longest active market")
)
