package storage

import (
	"sort"
	"sync"
)

type marketKeyT struct {
	currency CurrencyID
	maturity int64
}

// MemoryStore implements the Store interface with in-process maps.
// Reads hand out deep copies so a concurrent writer can never tear a
// record a reader is holding.
type MemoryStore struct {
	mu         sync.RWMutex
	cashGroups map[CurrencyID]CashGroup
	markets    map[marketKeyT]Market
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cashGroups: make(map[CurrencyID]CashGroup),
		markets:    make(map[marketKeyT]Market),
	}
}

func (ms *MemoryStore) GetCashGroup(id CurrencyID) (CashGroup, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	cg, ok := ms.cashGroups[id]
	if !ok {
		return CashGroup{}, false, nil
	}
	return cg.Clone(), true, nil
}

func (ms *MemoryStore) PutCashGroup(cg CashGroup) error {
	ms.mu.Lock()
	ms.cashGroups[cg.CurrencyID] = cg.Clone()
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) ListCashGroups() ([]CashGroup, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]CashGroup, 0, len(ms.cashGroups))
	for _, cg := range ms.cashGroups {
		out = append(out, cg.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyID < out[j].CurrencyID })
	return out, nil
}

func (ms *MemoryStore) GetMarket(id CurrencyID, maturity int64) (Market, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	m, ok := ms.markets[marketKeyT{id, maturity}]
	if !ok {
		return Market{}, false, nil
	}
	return m, true, nil
}

func (ms *MemoryStore) PutMarket(m Market) error {
	ms.mu.Lock()
	ms.markets[marketKeyT{m.CurrencyID, m.Maturity}] = m
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) DeleteMarket(id CurrencyID, maturity int64) error {
	ms.mu.Lock()
	delete(ms.markets, marketKeyT{id, maturity})
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) ListMarkets(id CurrencyID) ([]Market, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Market, 0)
	for k, m := range ms.markets {
		if k.currency == id {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Maturity < out[j].Maturity })
	return out, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
