package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairvalue/screener/internal/api/handlers"
	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/marketdata"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/screener"
	"github.com/fairvalue/screener/internal/selection"
	"github.com/fairvalue/screener/internal/valuation"
	"github.com/fairvalue/screener/pkg/config"
	"github.com/fairvalue/screener/pkg/logger"
)

func snapshot(ticker string, fcf, shares, price float64) contracts.RawFinancials {
	return contracts.RawFinancials{
		Ticker:            ticker,
		FCFSeries:         []contracts.FCFPoint{{Period: "2024", Amount: fcf}},
		Price:             contracts.Float(price),
		SharesOutstanding: contracts.Float(shares),
		ROE:               contracts.Float(0.2),
		RevenueGrowth:     contracts.Float(0.05),
		DebtToEquity:      contracts.Float(0.8),
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mega_cap_tickers.csv"), []byte("Symbol\nAAPL\nmsft\nNOPE\n"), 0o644))

	log := logger.Nop()
	provider := marketdata.NewStaticProvider(
		snapshot("AAPL", 100e9, 15e9, 190),
		snapshot("MSFT", 70e9, 7.4e9, 420),
		snapshot("KO", 10e9, 4.3e9, 62),
	)
	cache := marketdata.NewValuationCache(time.Minute, nil, log)
	scr := screener.New(provider, cache, valuation.NewCalculator(log), selection.NewScorer(log), screener.Config{Workers: 2}, log)
	h := handlers.NewValuationHandler(scr, philosophy.Builtin(), cache, dir, log)

	return NewRouter(h, log)
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestListPhilosophies(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "GET", "/api/philosophies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, len(philosophy.Names))
	first := data[0].(map[string]interface{})
	assert.Equal(t, "ValueDCF", first["name"])
	assert.Len(t, first["hash"], 64)
}

func TestListUniverses(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "GET", "/api/universes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Mega Cap"}, body["data"])
}

func TestGetValuation(t *testing.T) {
	router := newTestRouter(t)

	rec, body := do(t, router, "GET", "/api/valuation/aapl?philosophy=GARP", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["ticker"])
	assert.Equal(t, "GARP", data["profile"])

	est := data["estimate"].(map[string]interface{})
	assert.LessOrEqual(t, est["low_band"].(float64), est["point_estimate"].(float64))
	assert.LessOrEqual(t, est["point_estimate"].(float64), est["high_band"].(float64))
}

func TestGetValuationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := do(t, router, "GET", "/api/valuation/NOPE", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = do(t, router, "GET", "/api/valuation/AAPL?philosophy=Astrology", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenTickers(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "POST", "/api/screen", `{"tickers":["ko","AAPL","MSFT","NOPE"],"philosophy":"DividendIncome"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "DividendIncome", data["profile"])
	assert.Len(t, data["ranked"], 3)

	unranked := data["unranked"].([]interface{})
	require.Len(t, unranked, 1)
	row := unranked[0].(map[string]interface{})
	assert.Equal(t, "NOPE", row["ticker"])
	assert.Equal(t, []interface{}{contracts.FlagDataUnavailable}, row["flags"])
}

func TestScreenUniverse(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "POST", "/api/screen", `{"universe":"mega cap"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ValueDCF", data["profile"])
	assert.Len(t, data["ranked"], 2)
	assert.Len(t, data["unranked"], 1)
}

func TestScreenByDiscount(t *testing.T) {
	rec, body := do(t, newTestRouter(t), "POST", "/api/screen", `{"tickers":["KO","AAPL","MSFT","NOPE"],"sort":"discount"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ValueDCF", data["profile"])
	assert.NotContains(t, data, "ranked")

	rows := data["rows"].([]interface{})
	require.Len(t, rows, 4)

	prev := math.Inf(1)
	for _, r := range rows[:3] {
		row := r.(map[string]interface{})
		disc, ok := row["discount_pct"].(float64)
		require.True(t, ok, "%v has a discount", row["ticker"])
		assert.LessOrEqual(t, disc, prev)
		prev = disc
	}

	last := rows[3].(map[string]interface{})
	assert.Equal(t, "NOPE", last["ticker"])
	assert.Nil(t, last["discount_pct"])
}

func TestScreenBadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"tickers":`},
		{"nothing to screen", `{}`},
		{"unknown universe", `{"universe":"FTSE"}`},
		{"unknown philosophy", `{"tickers":["AAPL"],"philosophy":"Astrology"}`},
		{"unknown sort", `{"tickers":["AAPL"],"sort":"alpha"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, "POST", "/api/screen", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCacheStats(t *testing.T) {
	router := newTestRouter(t)

	do(t, router, "GET", "/api/valuation/AAPL", "")
	do(t, router, "GET", "/api/valuation/AAPL", "")

	rec, body := do(t, router, "GET", "/api/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["entries"])
	assert.Equal(t, float64(1), data["hits"])
	assert.Equal(t, float64(1), data["misses"])
	assert.Equal(t, float64(60), body["ttl_seconds"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerHandler(t *testing.T) {
	router := newTestRouter(t)
	s := New(&config.Config{Port: "0", Env: "development"}, logger.Nop(), router)
	assert.NotNil(t, s.Handler())
}
