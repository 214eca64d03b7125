package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/config"
	"github.com/fairvalue/screener/pkg/httputil"
	"github.com/fairvalue/screener/pkg/logger"
	"github.com/fairvalue/screener/pkg/redis"
)

func testHTTPClient() *httputil.Client {
	cfg := &config.Config{Provider: config.ProviderConfig{Kind: "http", Timeout: 2 * time.Second}}
	return httputil.New(cfg, logger.Nop()).DisableRetry()
}

func TestHTTPProvider_FetchFinancials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/fundamentals/MSFT", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ticker": "MSFT",
			"price": 410.0,
			"shares_outstanding": 7430000000,
			"roe": 35.2,
			"revenue_growth": 0.16,
			"debt_to_equity": 0.29,
			"ex_dividend_date": "2025-05-15",
			"free_cash_flow": [
				{"period": "2023", "amount": 59000000000},
				{"period": "2024", "amount": 74000000000}
			]
		}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(testHTTPClient(), server.URL+"/", logger.Nop())

	fin, err := p.FetchFinancials(context.Background(), "msft")
	require.NoError(t, err)

	assert.Equal(t, "MSFT", fin.Ticker)
	require.Len(t, fin.FCFSeries, 2)
	assert.Equal(t, "2024", fin.FCFSeries[0].Period, "most recent first")
	assert.InDelta(t, 0.352, *fin.ROE, 1e-12, "percent-scaled ROE normalised")
	assert.Equal(t, 0.16, *fin.RevenueGrowth)
	assert.Nil(t, fin.DividendRate, "missing stays absent")
	require.NotNil(t, fin.ExDividendDate)
	assert.Equal(t, 2025, fin.ExDividendDate.Year())
}

func TestNormalize(t *testing.T) {
	f := contracts.Float

	tests := []struct {
		name          string
		in            contracts.RawFinancials
		roe           *float64
		revenueGrowth *float64
		payout        *float64
	}{
		{
			name:          "percent scaled ratios",
			in:            contracts.RawFinancials{ROE: f(35), RevenueGrowth: f(12)},
			roe:           f(0.35),
			revenueGrowth: f(0.12),
		},
		{
			name:          "fractions unchanged",
			in:            contracts.RawFinancials{ROE: f(0.35), RevenueGrowth: f(-0.05), PayoutRatio: f(0.6)},
			roe:           f(0.35),
			revenueGrowth: f(-0.05),
			payout:        f(0.6),
		},
		{
			name:   "payout above 100% kept",
			in:     contracts.RawFinancials{PayoutRatio: f(1.2)},
			payout: f(1.2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			got := normalize(&in)

			for _, c := range []struct {
				field      string
				want, have *float64
			}{
				{"roe", tt.roe, got.ROE},
				{"revenue_growth", tt.revenueGrowth, got.RevenueGrowth},
				{"payout_ratio", tt.payout, got.PayoutRatio},
			} {
				if c.want == nil {
					assert.Nil(t, c.have, c.field)
					continue
				}
				require.NotNil(t, c.have, c.field)
				assert.InDelta(t, *c.want, *c.have, 1e-12, c.field)
			}
		})
	}
}

func TestHTTPProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"error":"unknown ticker"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"bad json", http.StatusOK, `{not json`},
		{"invalid snapshot", http.StatusOK, `{"ticker":"BAD","shares_outstanding":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewHTTPProvider(testHTTPClient(), server.URL, logger.Nop())
			_, err := p.FetchFinancials(context.Background(), "BAD")
			assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
		})
	}
}

func TestLoadFixtures(t *testing.T) {
	p, err := LoadFixtures("testdata/fundamentals.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ACME", "GLOBX"}, p.Tickers())

	fin, err := p.FetchFinancials(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", fin.Name)
	assert.Equal(t, []string{"2024", "2023", "2022"}, []string{fin.FCFSeries[0].Period, fin.FCFSeries[1].Period, fin.FCFSeries[2].Period})
	assert.InDelta(t, 0.18, *fin.ROE, 1e-12)

	globex, err := p.FetchFinancials(context.Background(), "GLOBX")
	require.NoError(t, err)
	assert.Nil(t, globex.ROE)
	assert.Nil(t, globex.DividendRate)
}

func TestLoadFixturesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFixtures(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"ticker":"X","price":-1}]`), 0o644))
	_, err = LoadFixtures(bad)
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(contracts.RawFinancials{Ticker: "ko", Price: contracts.Float(60)})

	fin, err := p.FetchFinancials(context.Background(), "KO")
	require.NoError(t, err)
	*fin.Price = 0

	again, err := p.FetchFinancials(context.Background(), "KO")
	require.NoError(t, err)
	assert.Equal(t, 60.0, *again.Price, "stored snapshot is not aliased")

	_, err = p.FetchFinancials(context.Background(), "PEP")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.FetchFinancials(ctx, "KO")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestRedisProvider_DisabledPassThrough(t *testing.T) {
	upstream := NewStaticProvider(contracts.RawFinancials{Ticker: "T", Price: contracts.Float(17)})
	p := NewRedisProvider(upstream, redis.Disabled(), 0, logger.Nop())

	fin, err := p.FetchFinancials(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, 17.0, *fin.Price)

	_, err = p.FetchFinancials(context.Background(), "NONE")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestNewProvider_File(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Kind: "file", File: "testdata/fundamentals.json"},
		Cache:    config.CacheConfig{TTL: time.Minute},
	}

	p, closeFn, err := NewProvider(context.Background(), cfg, redis.Disabled(), logger.Nop())
	require.NoError(t, err)
	defer closeFn()

	fin, err := p.FetchFinancials(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", fin.Ticker)
}

func TestNewProvider_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"ticker": "ZZ", "price": 3})
	}))
	defer server.Close()

	cfg := &config.Config{
		Provider: config.ProviderConfig{Kind: "http", BaseURL: server.URL, Timeout: time.Second},
		Cache:    config.CacheConfig{TTL: time.Minute},
	}

	p, closeFn, err := NewProvider(context.Background(), cfg, redis.Disabled(), logger.Nop())
	require.NoError(t, err)
	defer closeFn()

	fin, err := p.FetchFinancials(context.Background(), "zz")
	require.NoError(t, err)
	assert.Equal(t, 3.0, *fin.Price)
}

func TestNewProvider_Unknown(t *testing.T) {
	cfg := &config.Config{Provider: config.ProviderConfig{Kind: "ftp"}}
	_, _, err := NewProvider(context.Background(), cfg, redis.Disabled(), logger.Nop())
	assert.Error(t, err)
}
