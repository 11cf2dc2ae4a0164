package curve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnnualizedSpotRate(t *testing.T) {
	feed := NewStaticFeed()
	feed.SetRate(1, 50_000_000)

	got, err := AnnualizedSpotRate(context.Background(), feed, 1, 0)
	if err != nil {
		t.Fatalf("annualized spot rate: %v", err)
	}
	want := int64(50_000_000) * BlocksPerYear / SupplyRateScale
	if got != want {
		t.Errorf("annualized spot rate: got %d, want %d", got, want)
	}

	if _, err := AnnualizedSpotRate(context.Background(), feed, 2, 0); err == nil {
		t.Error("expected an error for a currency with no published rate")
	}
}

func TestHTTPFeedSupplyRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/money_market/supply_rate" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("currencyId") != "1" {
			http.Error(w, "unknown currency", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(supplyRateResponse{
			CurrencyID:         1,
			SupplyRatePerBlock: 48_000_000,
			IsSuccessful:       true,
		})
	}))
	defer server.Close()

	feed := NewHTTPFeed(server.URL, "")
	got, err := feed.SupplyRatePerBlock(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("supply rate request failed: %v", err)
	}
	if got != 48_000_000 {
		t.Errorf("supply rate: got %d, want 48000000", got)
	}

	if _, err := feed.SupplyRatePerBlock(context.Background(), 2, 0); err == nil {
		t.Error("expected an error for an http failure response")
	}
}

func TestHTTPFeedGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(supplyRateResponse{
			IsSuccessful: false,
			Error:        "oracle stale",
		})
	}))
	defer server.Close()

	feed := NewHTTPFeed(server.URL, "user:secret")
	if _, err := feed.SupplyRatePerBlock(context.Background(), 1, 0); err == nil {
		t.Error("expected an error when the gateway reports failure")
	}
}

func TestParseBasicAuthPair(t *testing.T) {
	tests := []struct {
		in       string
		user     string
		pass     string
		expectOK bool
	}{
		{"user:pass", "user", "pass", true},
		{"user:pa:ss", "user", "pa:ss", true},
		{"", "", "", false},
		{"nopair", "", "", false},
	}
	for _, tt := range tests {
		user, pass, ok := parseBasicAuthPair(tt.in)
		if ok != tt.expectOK || user != tt.user || pass != tt.pass {
			t.Errorf("parseBasicAuthPair(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, user, pass, ok, tt.user, tt.pass, tt.expectOK)
		}
	}
}
