package curve

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// AssetRateFeed reports the current per-block supply rate of the money
// market backing a currency, scaled by SupplyRateScale. It is a pure
// query with no side effects on engine state.
type AssetRateFeed interface {
	SupplyRatePerBlock(ctx context.Context, id CurrencyID, evalTime int64) (int64, error)
}

// AnnualizedSpotRate converts the feed's per-block yield into a spot
// oracle rate in rate precision. This is the only place external market
// data enters the curve computation, and the engine calls it at most once
// per oracle rate query.
func AnnualizedSpotRate(ctx context.Context, feed AssetRateFeed, id CurrencyID, evalTime int64) (int64, error) {
	supplyRate, err := feed.SupplyRatePerBlock(ctx, id, evalTime)
	if err != nil {
		return 0, fmt.Errorf("asset rate feed for currency %d: %w", id, err)
	}
	return supplyRate * BlocksPerYear / SupplyRateScale, nil
}

// StaticFeed serves fixed per-block rates from memory. Used in tests and
// in deployments where an external process writes the rate directly.
type StaticFeed struct {
	Rates map[CurrencyID]int64
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{Rates: make(map[CurrencyID]int64)}
}

func (sf *StaticFeed) SetRate(id CurrencyID, supplyRatePerBlock int64) {
	sf.Rates[id] = supplyRatePerBlock
}

func (sf *StaticFeed) SupplyRatePerBlock(_ context.Context, id CurrencyID, _ int64) (int64, error) {
	rate, ok := sf.Rates[id]
	if !ok {
		return 0, fmt.Errorf("no supply rate published for currency %d", id)
	}
	return rate, nil
}

// HTTPFeed queries a money market gateway over HTTP.
type HTTPFeed struct {
	client  *resty.Client
	baseURL string
}

type supplyRateResponse struct {
	CurrencyID         CurrencyID `json:"currencyId"`
	SupplyRatePerBlock int64      `json:"supplyRatePerBlock"`
	IsSuccessful       bool       `json:"isSuccessful"`
	Error              string     `json:"error"`
}

// NewHTTPFeed creates a feed against baseURL. basicAuth is "user:pass" or
// empty for unauthenticated endpoints.
func NewHTTPFeed(baseURL, basicAuth string) *HTTPFeed {
	client := resty.New()
	if user, pass, ok := parseBasicAuthPair(basicAuth); ok {
		client.SetBasicAuth(user, pass)
	}
	return &HTTPFeed{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (hf *HTTPFeed) SupplyRatePerBlock(ctx context.Context, id CurrencyID, _ int64) (int64, error) {
	var out supplyRateResponse
	resp, err := hf.client.R().
		SetContext(ctx).
		SetQueryParam("currencyId", fmt.Sprintf("%d", id)).
		SetResult(&out).
		Get(hf.baseURL + "/api/v1/money_market/supply_rate")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("supply rate http %d: %s", resp.StatusCode(), resp.String())
	}
	if !out.IsSuccessful {
		return 0, fmt.Errorf("supply rate feed error: %s", out.Error)
	}
	return out.SupplyRatePerBlock, nil
}

func parseBasicAuthPair(auth string) (username, password string, ok bool) {
	if auth == "" {
		return "", "", false
	}
	parts := strings.SplitN(auth, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
