package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements the Store interface on an embedded Badger database.
// It serves single-node deployments that want durability without running
// Redis next to the engine.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("badger store: path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (bs *BadgerStore) getJSON(key string, out interface{}) (bool, error) {
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from badger: %w", key, err)
	}
	return true, nil
}

func (bs *BadgerStore) setJSON(key string, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (bs *BadgerStore) listJSON(prefix string, visit func(val []byte) error) error {
	return bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(visit); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bs *BadgerStore) GetCashGroup(id CurrencyID) (CashGroup, bool, error) {
	var cg CashGroup
	found, err := bs.getJSON(cashGroupKey(id), &cg)
	if err != nil || !found {
		return CashGroup{}, false, err
	}
	return cg, true, nil
}

func (bs *BadgerStore) PutCashGroup(cg CashGroup) error {
	return bs.setJSON(cashGroupKey(cg.CurrencyID), cg)
}

func (bs *BadgerStore) ListCashGroups() ([]CashGroup, error) {
	out := make([]CashGroup, 0)
	err := bs.listJSON(cashGroupKeyPrefix, func(val []byte) error {
		var cg CashGroup
		if err := json.Unmarshal(val, &cg); err != nil {
			return err
		}
		out = append(out, cg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (bs *BadgerStore) GetMarket(id CurrencyID, maturity int64) (Market, bool, error) {
	var m Market
	found, err := bs.getJSON(marketKey(id, maturity), &m)
	if err != nil || !found {
		return Market{}, false, err
	}
	return m, true, nil
}

func (bs *BadgerStore) PutMarket(m Market) error {
	return bs.setJSON(marketKey(m.CurrencyID, m.Maturity), m)
}

func (bs *BadgerStore) DeleteMarket(id CurrencyID, maturity int64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(marketKey(id, maturity)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (bs *BadgerStore) ListMarkets(id CurrencyID) ([]Market, error) {
	out := make([]Market, 0)
	err := bs.listJSON(marketPrefix(id), func(val []byte) error {
		var m Market
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (bs *BadgerStore) Close() error {
	if bs == nil || bs.db == nil {
		return nil
	}
	return bs.db.Close()
}
