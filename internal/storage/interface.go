package storage

import (
	"time"
)

// Store is the keyed persistence contract for cash groups and markets.
// Cash groups are keyed by currency, markets by (currency, maturity).
// A missing record is reported with found=false, never an error: the
// engine treats a never-addressed market as zero-valued and valid.
type Store interface {
	GetCashGroup(id CurrencyID) (CashGroup, bool, error)
	PutCashGroup(cg CashGroup) error
	ListCashGroups() ([]CashGroup, error)

	GetMarket(id CurrencyID, maturity int64) (Market, bool, error)
	PutMarket(m Market) error
	DeleteMarket(id CurrencyID, maturity int64) error
	ListMarkets(id CurrencyID) ([]Market, error)

	Close() error
}

// LoadActiveSet returns one record per requested maturity, in the given
// order. Missing records come back zero-valued with only the key fields
// set; callers must not interpret a zero implied rate as an error.
func LoadActiveSet(s Store, id CurrencyID, maturities []int64) ([]Market, error) {
	out := make([]Market, 0, len(maturities))
	for _, maturity := range maturities {
		m, found, err := s.GetMarket(id, maturity)
		if err != nil {
			return nil, err
		}
		if !found {
			m = Market{CurrencyID: id, Maturity: maturity}
		}
		out = append(out, m)
	}
	return out, nil
}

type StoreOptions struct {
	DefaultTTL time.Duration
}

func DefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		DefaultTTL: 24 * time.Hour,
	}
}
