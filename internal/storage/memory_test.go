package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func testCashGroup(id CurrencyID) CashGroup {
	return CashGroup{
		CurrencyID:                id,
		MaxMarketIndex:            3,
		RateOracleTimeWindowMin:   20,
		LiquidityFeeBPS:           30,
		DebtBuffer5BPS:            30,
		FCashHaircut5BPS:          22,
		SettlementPenalty5BPS:     40,
		LiquidityRepoDiscount5BPS: 20,
		LiquidityTokenHaircuts:    []int{99, 98, 97},
		RateScalars:               []int{30, 25, 20},
		AssetRateOracle:           fmt.Sprintf("money-market:%d", id),
	}
}

func testMarket(id CurrencyID, maturity int64) Market {
	return Market{
		CurrencyID:      id,
		Maturity:        maturity,
		SettlementDate:  maturity,
		TotalFCash:      decimal.NewFromInt(1_000_000),
		TotalAssetCash:  decimal.NewFromInt(900_000),
		TotalLiquidity:  decimal.NewFromInt(1_800_000),
		LastImpliedRate: 30_000_000,
	}
}

func TestMemoryStoreCashGroups(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if _, found, err := store.GetCashGroup(1); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	want := testCashGroup(1)
	if err := store.PutCashGroup(want); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, found, err := store.GetCashGroup(1)
	if err != nil || !found {
		t.Fatalf("get failed: found=%v err=%v", found, err)
	}
	if got.MaxMarketIndex != want.MaxMarketIndex || got.AssetRateOracle != want.AssetRateOracle {
		t.Errorf("round trip mismatch: got %+v", got)
	}

	// Reads are deep copies: mutating the returned record must not leak
	// into the store
	got.LiquidityTokenHaircuts[0] = 1
	again, _, _ := store.GetCashGroup(1)
	if again.LiquidityTokenHaircuts[0] != 99 {
		t.Error("stored haircuts mutated through a read copy")
	}

	for id := CurrencyID(2); id <= 4; id++ {
		if err := store.PutCashGroup(testCashGroup(id)); err != nil {
			t.Fatalf("put %d failed: %v", id, err)
		}
	}
	all, err := store.ListCashGroups()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 cash groups, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CurrencyID <= all[i-1].CurrencyID {
			t.Error("cash groups should list in currency order")
		}
	}
}

func TestMemoryStoreMarkets(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	maturities := []int64{100, 200, 300}
	for _, m := range maturities {
		if err := store.PutMarket(testMarket(1, m)); err != nil {
			t.Fatalf("put market failed: %v", err)
		}
	}
	// Another currency at the same maturity must not collide
	if err := store.PutMarket(testMarket(2, 100)); err != nil {
		t.Fatalf("put market failed: %v", err)
	}

	got, found, err := store.GetMarket(1, 200)
	if err != nil || !found {
		t.Fatalf("get market: found=%v err=%v", found, err)
	}
	if got.LastImpliedRate != 30_000_000 || !got.TotalFCash.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("market round trip mismatch: %+v", got)
	}

	listed, err := store.ListMarkets(1)
	if err != nil {
		t.Fatalf("list markets failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 markets for currency 1, got %d", len(listed))
	}
	for i, m := range listed {
		if m.Maturity != maturities[i] {
			t.Errorf("markets should list in maturity order, got %d at %d", m.Maturity, i)
		}
	}

	if err := store.DeleteMarket(1, 200); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.GetMarket(1, 200); found {
		t.Error("deleted market still present")
	}
	if _, found, _ := store.GetMarket(2, 100); !found {
		t.Error("delete touched another currency's market")
	}
}

func TestLoadActiveSet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if err := store.PutMarket(testMarket(1, 200)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	out, err := LoadActiveSet(store, 1, []int64{100, 200, 300})
	if err != nil {
		t.Fatalf("load active set failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}

	// Missing maturities come back zero-valued with the key fields set
	if out[0].CurrencyID != 1 || out[0].Maturity != 100 {
		t.Errorf("zero-fill lost key fields: %+v", out[0])
	}
	if out[0].LastImpliedRate != 0 || !out[0].TotalFCash.IsZero() {
		t.Errorf("missing market should be zero-valued: %+v", out[0])
	}
	if out[1].LastImpliedRate != 30_000_000 {
		t.Errorf("stored market not returned: %+v", out[1])
	}
	if out[2].Maturity != 300 {
		t.Errorf("order not preserved: %+v", out[2])
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if err := store.PutCashGroup(testCashGroup(1)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = store.PutMarket(testMarket(1, int64(n*1000+j)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _, _ = store.GetCashGroup(1)
				_, _ = store.ListMarkets(1)
			}
		}()
	}
	wg.Wait()

	markets, err := store.ListMarkets(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(markets) != 8*200 {
		t.Errorf("expected %d markets after concurrent writes, got %d", 8*200, len(markets))
	}
}
