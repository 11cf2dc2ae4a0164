package curve

import (
	"context"

	"github.com/fcashlabs/curve-engine/internal/curve"
	"github.com/fcashlabs/curve-engine/internal/storage"
)

// Client provides a clean public API for the curve engine
type Client struct {
	service *curve.CurveService
}

// NewClient creates a new curve engine client
func NewClient(options ...curve.ServiceOption) (*Client, error) {
	svc, err := curve.NewCurveService(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		service: svc,
	}, nil
}

// Initialize starts the curve service
func (c *Client) Initialize() error {
	return c.service.Initialize()
}

// SetCashGroup validates and stores a currency's curve configuration
func (c *Client) SetCashGroup(cg storage.CashGroup) error {
	return c.service.SetCashGroup(cg)
}

// GetCashGroup returns the stored configuration for a currency
func (c *Client) GetCashGroup(id storage.CurrencyID) (storage.CashGroup, error) {
	return c.service.GetCashGroup(id)
}

// SetMarketState upserts a market record after a trade or settlement
func (c *Client) SetMarketState(m storage.Market) error {
	return c.service.SetMarketState(m)
}

// GetOracleRate returns the interpolated market rate for a target maturity
func (c *Client) GetOracleRate(ctx context.Context, id storage.CurrencyID, targetMaturity, evalTime int64) (int64, error) {
	return c.service.GetOracleRate(ctx, id, targetMaturity, evalTime)
}

// GetMarketView returns a read-only view of a market on the active curve
func (c *Client) GetMarketView(id storage.CurrencyID, position int, evalTime int64, needsLiquidity bool) (storage.Market, error) {
	return c.service.GetMarketView(id, position, evalTime, needsLiquidity)
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
