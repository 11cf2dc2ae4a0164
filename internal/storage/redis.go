package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface using Redis. It also carries
// the snapshot backup, data versioning and leader election primitives the
// sync manager needs for multi-pod deployments.
type RedisStore struct {
	client *redis.Client
	opts   *StoreOptions
	ctx    context.Context
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(addr string, options ...RedisOption) (*RedisStore, error) {
	opts := DefaultStoreOptions()

	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("can't parse url for redis: %w", err)
	}
	var passwd string
	if u.User != nil {
		passwd, _ = u.User.Password()
	}
	db := 0
	if 1 < len(u.Path) {
		db, err = strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, fmt.Errorf("can't parse redis db from %q: %w", addr, err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Network:  u.Scheme,
		Addr:     u.Host,
		Password: passwd,
		DB:       db,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisStore{
		client: client,
		opts:   opts,
		ctx:    ctx,
	}

	// Apply options
	for _, option := range options {
		option(store)
	}

	return store, nil
}

// RedisOption is a function that configures the Redis store
type RedisOption func(*RedisStore)

// WithStoreOptions sets store options
func WithStoreOptions(opts *StoreOptions) RedisOption {
	return func(rs *RedisStore) {
		rs.opts = opts
	}
}

// WithContext sets the context for store operations
func WithContext(ctx context.Context) RedisOption {
	return func(rs *RedisStore) {
		rs.ctx = ctx
	}
}

func (rs *RedisStore) getJSON(key string, out interface{}) (bool, error) {
	data, err := rs.client.Get(rs.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (rs *RedisStore) setJSON(key string, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return rs.client.Set(rs.ctx, key, data, 0).Err()
}

func (rs *RedisStore) GetCashGroup(id CurrencyID) (CashGroup, bool, error) {
	var cg CashGroup
	found, err := rs.getJSON(cashGroupKey(id), &cg)
	if err != nil || !found {
		return CashGroup{}, false, err
	}
	return cg, true, nil
}

func (rs *RedisStore) PutCashGroup(cg CashGroup) error {
	return rs.setJSON(cashGroupKey(cg.CurrencyID), cg)
}

func (rs *RedisStore) ListCashGroups() ([]CashGroup, error) {
	keys, err := rs.client.Keys(rs.ctx, cashGroupKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cash groups: %w", err)
	}
	out := make([]CashGroup, 0, len(keys))
	for _, key := range keys {
		var cg CashGroup
		found, err := rs.getJSON(key, &cg)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, cg)
		}
	}
	return out, nil
}

func (rs *RedisStore) GetMarket(id CurrencyID, maturity int64) (Market, bool, error) {
	var m Market
	found, err := rs.getJSON(marketKey(id, maturity), &m)
	if err != nil || !found {
		return Market{}, false, err
	}
	return m, true, nil
}

func (rs *RedisStore) PutMarket(m Market) error {
	return rs.setJSON(marketKey(m.CurrencyID, m.Maturity), m)
}

func (rs *RedisStore) DeleteMarket(id CurrencyID, maturity int64) error {
	return rs.client.Del(rs.ctx, marketKey(id, maturity)).Err()
}

func (rs *RedisStore) ListMarkets(id CurrencyID) ([]Market, error) {
	keys, err := rs.client.Keys(rs.ctx, marketPrefix(id)+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}
	out := make([]Market, 0, len(keys))
	for _, key := range keys {
		var m Market
		found, err := rs.getJSON(key, &m)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, m)
		}
	}
	return out, nil
}

// SetSnapshotBackup stores the full-state envelope under a single key so
// scaling out stays a one-read warm-up.
func (rs *RedisStore) SetSnapshotBackup(snapshot *CurveSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("curve snapshot is nil")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal curve snapshot: %w", err)
	}

	return rs.client.Set(rs.ctx, snapshotBackupKey, data, rs.opts.DefaultTTL).Err()
}

func (rs *RedisStore) GetSnapshotBackup() (*CurveSnapshot, error) {
	var snapshot CurveSnapshot
	found, err := rs.getJSON(snapshotBackupKey, &snapshot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil // No backup found
	}
	return &snapshot, nil
}

// Data versioning methods
func (rs *RedisStore) SetDataVersion(version *DataVersion) error {
	data, err := json.Marshal(version)
	if err != nil {
		return fmt.Errorf("failed to marshal data version: %w", err)
	}
	return rs.client.Set(rs.ctx, dataVersionKey, data, rs.opts.DefaultTTL).Err()
}

func (rs *RedisStore) GetDataVersion() (*DataVersion, error) {
	var version DataVersion
	found, err := rs.getJSON(dataVersionKey, &version)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil // No version found
	}
	return &version, nil
}

// Leader election methods
func (rs *RedisStore) AcquireLeaderLock(podID string, ttl time.Duration) (bool, error) {
	// SET with NX and EX makes the election atomic
	result := rs.client.SetNX(rs.ctx, leaderLockKey, podID, ttl)
	if result.Err() != nil {
		return false, fmt.Errorf("failed to acquire leader lock: %w", result.Err())
	}
	return result.Val(), nil
}

func (rs *RedisStore) RenewLeadership(podID string, ttl time.Duration) (bool, error) {
	currentLeader, err := rs.client.Get(rs.ctx, leaderLockKey).Result()
	if err != nil {
		if err == redis.Nil {
			// Lock expired, try to reacquire
			return rs.AcquireLeaderLock(podID, ttl)
		}
		return false, fmt.Errorf("failed to check current leader: %w", err)
	}
	if currentLeader != podID {
		return false, nil
	}
	if err := rs.client.Expire(rs.ctx, leaderLockKey, ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to renew leader lock: %w", err)
	}
	return true, nil
}

func (rs *RedisStore) ReleaseLeaderLock(podID string) error {
	// Only release if we're the current leader
	currentLeader, err := rs.client.Get(rs.ctx, leaderLockKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil // No leader to release
		}
		return fmt.Errorf("failed to check current leader: %w", err)
	}

	if currentLeader == podID {
		return rs.client.Del(rs.ctx, leaderLockKey).Err()
	}
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
