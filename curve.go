package curveengine

import (
	"context"
	"time"

	"github.com/fcashlabs/curve-engine/internal/curve"
	"github.com/fcashlabs/curve-engine/internal/storage"
	"github.com/fcashlabs/curve-engine/pkg/config"
	"github.com/fcashlabs/curve-engine/pkg/logger"
)

// Client provides the public API for the curve engine
type Client struct {
	service *curve.CurveService
}

// NewClient creates a new curve engine client
func NewClient(options ...ServiceOption) (*Client, error) {
	svc, err := curve.NewCurveService(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		service: svc,
	}, nil
}

// NewClientFromConfig builds a client from a loaded configuration file,
// initializing the shared logger along the way.
func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	if err := logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		OutputFile: cfg.Logging.OutputFile,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		return nil, err
	}

	opts := []ServiceOption{
		curve.WithSnapshotInterval(time.Duration(cfg.Service.SnapshotInterval)),
		curve.WithLeaderLockTTL(time.Duration(cfg.Service.LeaderLockTTL)),
		curve.WithSync(cfg.Service.EnableSync),
	}
	if cfg.Redis.Addr != "" {
		opts = append(opts, curve.WithRedisConfig(cfg.Redis.Addr))
	}
	if cfg.Badger.Dir != "" {
		opts = append(opts, curve.WithBadgerDir(cfg.Badger.Dir))
	}
	if cfg.Feed.BaseURL != "" {
		opts = append(opts, curve.WithFeedBaseURL(cfg.Feed.BaseURL, cfg.Feed.BasicAuth))
	}

	return NewClient(opts...)
}

// Initialize starts the curve service
func (c *Client) Initialize() error {
	return c.service.Initialize()
}

// SetCashGroup validates and stores a currency's curve configuration
func (c *Client) SetCashGroup(cg CashGroup) error {
	return c.service.SetCashGroup(cg)
}

// GetCashGroup returns the stored configuration for a currency
func (c *Client) GetCashGroup(id CurrencyID) (CashGroup, error) {
	return c.service.GetCashGroup(id)
}

// SetMarketState upserts a market record after a trade or settlement
func (c *Client) SetMarketState(m Market) error {
	return c.service.SetMarketState(m)
}

// BuildCurve loads a consistent curve snapshot for a currency at evalTime
func (c *Client) BuildCurve(id CurrencyID, evalTime int64) (*curve.WorkingCurve, error) {
	return c.service.BuildCurve(id, evalTime)
}

// GetOracleRate returns the interpolated market rate for a target maturity
func (c *Client) GetOracleRate(ctx context.Context, id CurrencyID, targetMaturity, evalTime int64) (int64, error) {
	return c.service.GetOracleRate(ctx, id, targetMaturity, evalTime)
}

// GetMarketView returns a read-only view of a market on the active curve
func (c *Client) GetMarketView(id CurrencyID, position int, evalTime int64, needsLiquidity bool) (Market, error) {
	return c.service.GetMarketView(id, position, evalTime, needsLiquidity)
}

// PruneSettledMarkets removes records whose settlement date has passed
func (c *Client) PruneSettledMarkets(id CurrencyID, evalTime int64) (int, error) {
	return c.service.PruneSettledMarkets(id, evalTime)
}

// WithRateFeed overrides the asset rate feed, mostly for tests and custom
// integrations
func (c *Client) WithRateFeed(feed curve.AssetRateFeed) *Client {
	c.service.WithRateFeed(feed)
	return c
}

// Stop gracefully shuts down the service
func (c *Client) Stop() error {
	c.service.Stop()
	return nil
}

// Service options (re-exported for convenience)
type ServiceOption = curve.ServiceOption

var (
	WithRedisConfig      = curve.WithRedisConfig
	WithBadgerDir        = curve.WithBadgerDir
	WithFeedBaseURL      = curve.WithFeedBaseURL
	WithSnapshotInterval = curve.WithSnapshotInterval
	WithLeaderLockTTL    = curve.WithLeaderLockTTL
	WithSync             = curve.WithSync
	WithLogging          = curve.WithLogging
)

// Re-export common types for convenience
type (
	CurrencyID    = storage.CurrencyID
	CashGroup     = storage.CashGroup
	Market        = storage.Market
	CurveSnapshot = storage.CurveSnapshot
	WorkingCurve  = curve.WorkingCurve
	AssetRateFeed = curve.AssetRateFeed
	StaticFeed    = curve.StaticFeed
)

// Re-export the error taxonomy so callers can branch without importing
// internal packages
var (
	ErrInvalidMarketCount    = curve.ErrInvalidMarketCount
	ErrMarketCountDecreased  = curve.ErrMarketCountDecreased
	ErrArrayLengthMismatch   = curve.ErrArrayLengthMismatch
	ErrHaircutOutOfRange     = curve.ErrHaircutOutOfRange
	ErrZeroRateScalar        = curve.ErrZeroRateScalar
	ErrCurrencyNotConfigured = curve.ErrCurrencyNotConfigured
	ErrPositionOutOfRange    = curve.ErrPositionOutOfRange
	ErrMaturityBeyondCurve   = curve.ErrMaturityBeyondCurve
)

// NewStaticFeed creates an in-memory rate feed
func NewStaticFeed() *StaticFeed {
	return curve.NewStaticFeed()
}
