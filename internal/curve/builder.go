package curve

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fcashlabs/curve-engine/internal/storage"
)

// WorkingCurve is an immutable snapshot of one currency's configuration
// and active market set, loaded against a single evaluation time. Build
// once, answer many queries; nothing re-reads storage mid-computation.
type WorkingCurve struct {
	Config   CashGroup
	Markets  []Market
	EvalTime int64
}

// BuildWorkingCurve loads the cash group and its active markets from the
// store. Markets that have never traded come back zero-valued with their
// settlement date filled in.
func BuildWorkingCurve(s storage.Store, id CurrencyID, evalTime int64) (*WorkingCurve, error) {
	cg, found, err := s.GetCashGroup(id)
	if err != nil {
		return nil, fmt.Errorf("loading cash group for currency %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("currency %d: %w", id, ErrCurrencyNotConfigured)
	}

	maturities := ActiveMaturities(evalTime, cg.MaxMarketIndex)
	markets, err := storage.LoadActiveSet(s, id, maturities)
	if err != nil {
		return nil, fmt.Errorf("loading active markets for currency %d: %w", id, err)
	}
	for i := range markets {
		if markets[i].SettlementDate == 0 {
			markets[i].SettlementDate = SettlementDate(markets[i].Maturity)
		}
	}

	return &WorkingCurve{
		Config:   cg,
		Markets:  markets,
		EvalTime: evalTime,
	}, nil
}

// MarketIndex classifies a target maturity against the active market set.
// It returns the smallest 1-based position whose maturity is at or past the
// target, and whether the target is idiosyncratic (between listed
// maturities rather than exactly on one). Maturities past the longest
// active market are refused: the curve never extrapolates.
func (wc *WorkingCurve) MarketIndex(targetMaturity int64) (int, bool, error) {
	for i, m := range wc.Markets {
		if m.Maturity == targetMaturity {
			return i + 1, false, nil
		}
		if m.Maturity > targetMaturity {
			return i + 1, true, nil
		}
	}
	return 0, false, ErrMaturityBeyondCurve
}

// GetMarket returns a view of the market at a 1-based position. When the
// caller does not need liquidity the returned total liquidity is forced to
// zero, so callers must not read a zero as "empty market". The updated
// flag is always false on a pure read.
func (wc *WorkingCurve) GetMarket(position int, needsLiquidity bool) (Market, error) {
	if position < 1 || position > len(wc.Markets) {
		return Market{}, ErrPositionOutOfRange
	}
	view := wc.Markets[position-1]
	if !needsLiquidity {
		view.TotalLiquidity = decimal.Zero
	}
	view.Updated = false
	return view, nil
}
