package curve

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fcashlabs/curve-engine/internal/storage"
	"github.com/fcashlabs/curve-engine/pkg/logger"
)

// CurveService owns one currency universe of cash groups and markets. It
// serializes configuration writes, answers oracle rate and market view
// queries against consistent snapshots, and optionally mirrors state into
// Redis for multi-pod deployments.
type CurveService struct {
	store       storage.Store
	redis       *storage.RedisStore
	feed        AssetRateFeed
	opts        *ServiceOptions
	log         *logrus.Entry
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex // serializes SetCashGroup and market writes
	syncManager *SyncManager
	initialized bool
	initMu      sync.Mutex
}

// ServiceOptions provides configuration for the curve service
type ServiceOptions struct {
	RedisAddr        string        `json:"redisAddr"`
	BadgerDir        string        `json:"badgerDir"`
	FeedBaseURL      string        `json:"feedBaseUrl"`
	FeedBasicAuth    string        `json:"feedBasicAuth"`
	SnapshotInterval time.Duration `json:"snapshotInterval"`
	LeaderLockTTL    time.Duration `json:"leaderLockTtl"`
	EnableSync       bool          `json:"enableSync"`
	EnableLogging    bool          `json:"enableLogging"`
}

// DefaultServiceOptions returns sensible default options
func DefaultServiceOptions() *ServiceOptions {
	return &ServiceOptions{
		SnapshotInterval: 5 * time.Minute,
		LeaderLockTTL:    30 * time.Second,
		EnableLogging:    true,
	}
}

// ServiceOption is a function that configures service options
type ServiceOption func(*ServiceOptions)

// WithRedisConfig enables the Redis mirror and snapshot backup
func WithRedisConfig(addr string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RedisAddr = addr
	}
}

// WithBadgerDir uses an embedded Badger database as the primary store
func WithBadgerDir(dir string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.BadgerDir = dir
	}
}

// WithFeedBaseURL points the asset rate feed at an HTTP money market
// gateway
func WithFeedBaseURL(url, auth string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.FeedBaseURL = url
		opts.FeedBasicAuth = auth
	}
}

func WithSnapshotInterval(interval time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.SnapshotInterval = interval
	}
}

// WithLeaderLockTTL sets how long an elected leader holds the lock between
// renewals
func WithLeaderLockTTL(ttl time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		if ttl > 0 {
			opts.LeaderLockTTL = ttl
		}
	}
}

// WithSync enables leader-elected snapshot publishing across pods
func WithSync(enabled bool) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.EnableSync = enabled
	}
}

// WithLogging enables/disables logging
func WithLogging(enabled bool) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.EnableLogging = enabled
	}
}

// NewCurveService creates a curve service. Without options it runs purely
// in memory; WithBadgerDir and WithRedisConfig add durability and the
// multi-pod mirror.
func NewCurveService(options ...ServiceOption) (*CurveService, error) {
	opts := DefaultServiceOptions()

	// Apply options
	for _, option := range options {
		option(opts)
	}

	var store storage.Store
	if opts.BadgerDir != "" {
		bs, err := storage.NewBadgerStore(opts.BadgerDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		store = bs
	} else {
		store = storage.NewMemoryStore()
	}

	var redisStore *storage.RedisStore
	if opts.RedisAddr != "" {
		rs, err := storage.NewRedisStore(opts.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		redisStore = rs
	}

	var feed AssetRateFeed = NewStaticFeed()
	if opts.FeedBaseURL != "" {
		feed = NewHTTPFeed(opts.FeedBaseURL, opts.FeedBasicAuth)
	}

	ctx, cancel := context.WithCancel(context.Background())

	service := &CurveService{
		store:  store,
		redis:  redisStore,
		feed:   feed,
		opts:   opts,
		log:    logger.WithComponent("curve-service"),
		ctx:    ctx,
		cancel: cancel,
	}

	if redisStore != nil && opts.EnableSync {
		service.syncManager = NewSyncManager(redisStore, store, opts)
	}

	return service, nil
}

// WithStore overrides the primary store. Must be applied via
// NewCurveServiceWithStore since the store is not part of ServiceOptions.
func NewCurveServiceWithStore(store storage.Store, options ...ServiceOption) (*CurveService, error) {
	svc, err := NewCurveService(options...)
	if err != nil {
		return nil, err
	}
	svc.store = store
	if svc.syncManager != nil {
		svc.syncManager.store = store
	}
	return svc, nil
}

// WithRateFeed overrides the asset rate feed on an existing service.
func (cs *CurveService) WithRateFeed(feed AssetRateFeed) *CurveService {
	cs.feed = feed
	return cs
}

// Initialize warms the local store from the Redis snapshot backup when one
// exists and starts the background schedulers.
func (cs *CurveService) Initialize() error {
	cs.initMu.Lock()
	defer cs.initMu.Unlock()

	if cs.initialized {
		return nil
	}

	cs.logf("initializing curve service")

	if cs.redis != nil {
		if err := cs.warmFromSnapshot(); err != nil {
			cs.warnf("failed to warm local store from snapshot: %v", err)
		}
		cs.startSchedulers()
	}

	if cs.syncManager != nil {
		if err := cs.syncManager.Start(); err != nil {
			cs.warnf("failed to start sync manager: %v", err)
		}
	}

	cs.initialized = true
	cs.logf("curve service initialized")
	return nil
}

func (cs *CurveService) warmFromSnapshot() error {
	snapshot, err := cs.redis.GetSnapshotBackup()
	if err != nil {
		return err
	}
	if snapshot == nil {
		cs.logf("no snapshot backup in Redis, starting from local store")
		return nil
	}
	if err := RestoreSnapshot(cs.store, snapshot); err != nil {
		return err
	}
	cs.logf("warmed local store from snapshot version %d (%d cash groups, %d markets)",
		snapshot.Version, len(snapshot.CashGroups), len(snapshot.Markets))
	return nil
}

// startSchedulers starts background goroutines to keep the Redis backup fresh
func (cs *CurveService) startSchedulers() {
	cs.wg.Add(1)
	go cs.snapshotScheduler()
}

func (cs *CurveService) snapshotScheduler() {
	defer cs.wg.Done()

	// Jitter the interval so pods sharing one Redis don't publish in
	// lockstep
	interval := addJitter(cs.opts.SnapshotInterval, 0.1)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cs.logf("snapshot scheduler started (base interval: %v, jittered: %v)", cs.opts.SnapshotInterval, interval)

	for {
		select {
		case <-cs.ctx.Done():
			cs.logf("snapshot scheduler stopped")
			return
		case <-ticker.C:
			if cs.syncManager != nil {
				// Followers pull; only the leader publishes, and it bumps
				// the shared data version so followers notice
				if !cs.syncManager.IsLeader() {
					continue
				}
				if err := cs.syncManager.PublishVersion(); err != nil {
					cs.warnf("failed to publish snapshot version: %v", err)
				}
				continue
			}
			if err := cs.PublishSnapshot(); err != nil {
				cs.warnf("failed to publish snapshot: %v", err)
			}
		}
	}
}

// PublishSnapshot mirrors the full local state into the Redis backup key.
func (cs *CurveService) PublishSnapshot() error {
	if cs.redis == nil {
		return fmt.Errorf("no redis configured for snapshot backup")
	}
	snapshot, err := TakeSnapshot(cs.store)
	if err != nil {
		return err
	}
	if err := cs.redis.SetSnapshotBackup(snapshot); err != nil {
		return err
	}
	cs.logf("published snapshot (%d cash groups, %d markets)", len(snapshot.CashGroups), len(snapshot.Markets))
	return nil
}

// SetCashGroup validates and atomically replaces a currency's curve
// configuration. Validation runs against the stored record under the
// write lock, so either every check passes and the whole record is
// replaced, or nothing changes.
func (cs *CurveService) SetCashGroup(candidate CashGroup) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var prev *CashGroup
	stored, found, err := cs.store.GetCashGroup(candidate.CurrencyID)
	if err != nil {
		return fmt.Errorf("reading stored cash group: %w", err)
	}
	if found {
		prev = &stored
	}

	if err := ValidateCashGroup(candidate, prev); err != nil {
		return err
	}

	candidate.UpdatedAt = time.Now().UTC()
	if err := cs.store.PutCashGroup(candidate); err != nil {
		return fmt.Errorf("storing cash group: %w", err)
	}

	// Write through to the mirror; local store stays authoritative
	if cs.redis != nil {
		if err := cs.redis.PutCashGroup(candidate); err != nil {
			cs.warnf("failed to mirror cash group %d to Redis: %v", candidate.CurrencyID, err)
		}
	}

	cs.logf("cash group set for currency %d (markets: %d)", candidate.CurrencyID, candidate.MaxMarketIndex)
	return nil
}

// GetCashGroup returns the stored configuration for a currency.
func (cs *CurveService) GetCashGroup(id CurrencyID) (CashGroup, error) {
	cg, found, err := cs.store.GetCashGroup(id)
	if err != nil {
		return CashGroup{}, err
	}
	if !found {
		return CashGroup{}, fmt.Errorf("currency %d: %w", id, ErrCurrencyNotConfigured)
	}
	return cg, nil
}

// SetMarketState upserts a market record, filling the settlement date when
// the writer left it unset. The settlement collaborator calls this after
// trades and settlements.
func (cs *CurveService) SetMarketState(m Market) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if m.SettlementDate == 0 {
		m.SettlementDate = SettlementDate(m.Maturity)
	}
	if err := cs.store.PutMarket(m); err != nil {
		return fmt.Errorf("storing market state: %w", err)
	}
	if cs.redis != nil {
		if err := cs.redis.PutMarket(m); err != nil {
			cs.warnf("failed to mirror market %d/%d to Redis: %v", m.CurrencyID, m.Maturity, err)
		}
	}
	return nil
}

// BuildCurve loads a consistent working snapshot of a currency's curve at
// evalTime.
func (cs *CurveService) BuildCurve(id CurrencyID, evalTime int64) (*WorkingCurve, error) {
	return BuildWorkingCurve(cs.store, id, evalTime)
}

// GetOracleRate builds the curve at evalTime and answers the interpolated
// rate for the target maturity.
func (cs *CurveService) GetOracleRate(ctx context.Context, id CurrencyID, targetMaturity, evalTime int64) (int64, error) {
	wc, err := cs.BuildCurve(id, evalTime)
	if err != nil {
		return 0, err
	}
	return wc.OracleRate(ctx, targetMaturity, cs.feed)
}

// GetMarketView returns a read-only view of the market at a 1-based curve
// position.
func (cs *CurveService) GetMarketView(id CurrencyID, position int, evalTime int64, needsLiquidity bool) (Market, error) {
	wc, err := cs.BuildCurve(id, evalTime)
	if err != nil {
		return Market{}, err
	}
	return wc.GetMarket(position, needsLiquidity)
}

// PruneSettledMarkets deletes records whose settlement date has rolled
// past the current quarter boundary. Their storage slots are implicitly
// reassigned: the next curve addresses fresh maturities which start
// zero-valued.
func (cs *CurveService) PruneSettledMarkets(id CurrencyID, evalTime int64) (int, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	markets, err := cs.store.ListMarkets(id)
	if err != nil {
		return 0, err
	}
	tRef := TRef(evalTime)
	pruned := 0
	for _, m := range markets {
		if m.SettlementDate <= tRef {
			if err := cs.store.DeleteMarket(m.CurrencyID, m.Maturity); err != nil {
				return pruned, err
			}
			if cs.redis != nil {
				if err := cs.redis.DeleteMarket(m.CurrencyID, m.Maturity); err != nil {
					cs.warnf("failed to prune market %d/%d from Redis: %v", m.CurrencyID, m.Maturity, err)
				}
			}
			pruned++
		}
	}
	if pruned > 0 {
		cs.logf("pruned %d settled markets for currency %d", pruned, id)
	}
	return pruned, nil
}

// Stop gracefully shuts down the service
func (cs *CurveService) Stop() {
	cs.logf("stopping curve service")

	cs.cancel()
	cs.wg.Wait()

	if cs.syncManager != nil {
		cs.syncManager.Stop()
	}
	if cs.redis != nil {
		if err := cs.redis.Close(); err != nil {
			cs.warnf("failed to close redis store: %v", err)
		}
	}
	if err := cs.store.Close(); err != nil {
		cs.warnf("failed to close store: %v", err)
	}

	cs.logf("curve service stopped")
}

func (cs *CurveService) logf(format string, args ...interface{}) {
	if cs.opts.EnableLogging {
		cs.log.Infof(format, args...)
	}
}

func (cs *CurveService) warnf(format string, args ...interface{}) {
	if cs.opts.EnableLogging {
		cs.log.Warnf(format, args...)
	}
}

// TakeSnapshot captures the full state of a store into a backup envelope.
func TakeSnapshot(s storage.Store) (*CurveSnapshot, error) {
	cashGroups, err := s.ListCashGroups()
	if err != nil {
		return nil, fmt.Errorf("listing cash groups: %w", err)
	}
	markets := make([]Market, 0)
	for _, cg := range cashGroups {
		ms, err := s.ListMarkets(cg.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("listing markets for currency %d: %w", cg.CurrencyID, err)
		}
		markets = append(markets, ms...)
	}
	return &CurveSnapshot{
		Version:    int(time.Now().UTC().Unix()),
		TakenAt:    time.Now().UTC(),
		CashGroups: cashGroups,
		Markets:    markets,
	}, nil
}

// RestoreSnapshot writes a backup envelope into a store.
func RestoreSnapshot(s storage.Store, snapshot *CurveSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("curve snapshot is nil")
	}
	for _, cg := range snapshot.CashGroups {
		if err := s.PutCashGroup(cg); err != nil {
			return err
		}
	}
	for _, m := range snapshot.Markets {
		if err := s.PutMarket(m); err != nil {
			return err
		}
	}
	return nil
}

// addJitter spreads scheduled work across pods to prevent thundering herd.
// jitterPercent should be between 0.0-1.0 (e.g., 0.1 = ±10%)
func addJitter(duration time.Duration, jitterPercent float64) time.Duration {
	if jitterPercent <= 0 {
		return duration
	}

	jitterRange := float64(duration) * jitterPercent
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange

	result := time.Duration(float64(duration) + jitter)
	if result <= 0 {
		result = duration / 2
	}

	return result
}
