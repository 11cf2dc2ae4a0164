package storage

import (
	"testing"
)

func BenchmarkMemoryStore_GetCashGroup(b *testing.B) {
	store := NewMemoryStore()

	// Pre-populate with some test data
	_ = store.PutCashGroup(testCashGroup(1))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = store.GetCashGroup(1)
		}
	})
}

func BenchmarkMemoryStore_GetMarket(b *testing.B) {
	store := NewMemoryStore()

	_ = store.PutCashGroup(testCashGroup(1))
	maturities := []int64{7776000, 15552000, 31104000}
	for _, m := range maturities {
		_ = store.PutMarket(testMarket(1, m))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _, _ = store.GetMarket(1, maturities[i%len(maturities)])
			i++
		}
	})
}

func BenchmarkMemoryStore_LoadActiveSet(b *testing.B) {
	store := NewMemoryStore()

	maturities := []int64{7776000, 15552000, 31104000}
	for _, m := range maturities {
		_ = store.PutMarket(testMarket(1, m))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = LoadActiveSet(store, 1, maturities)
		}
	})
}

func BenchmarkMemoryStore_ConcurrentReadWrite(b *testing.B) {
	store := NewMemoryStore()

	_ = store.PutCashGroup(testCashGroup(1))
	_ = store.PutMarket(testMarket(1, 7776000))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%10 == 0 {
				_ = store.PutMarket(testMarket(1, 7776000))
			} else {
				_, _, _ = store.GetMarket(1, 7776000)
			}
			i++
		}
	})
}
