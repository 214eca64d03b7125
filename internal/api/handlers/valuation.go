package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/marketdata"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/screener"
	"github.com/fairvalue/screener/internal/selection"
	"github.com/fairvalue/screener/internal/universe"
	"github.com/fairvalue/screener/pkg/logger"
)

// ValuationHandler handles valuation and screening endpoints
// ⭐ SSOT: 가치평가/스크리닝 API 핸들러는 이 구조체에서만
type ValuationHandler struct {
	screener    *screener.Screener
	profiles    *philosophy.Registry
	cache       *marketdata.ValuationCache
	universeDir string
	logger      *logger.Logger
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(
	scr *screener.Screener,
	profiles *philosophy.Registry,
	cache *marketdata.ValuationCache,
	universeDir string,
	log *logger.Logger,
) *ValuationHandler {
	return &ValuationHandler{
		screener:    scr,
		profiles:    profiles,
		cache:       cache,
		universeDir: universeDir,
		logger:      log.Component("api"),
	}
}

// PhilosophyView is a profile with its advisories
type PhilosophyView struct {
	philosophy.Profile
	Hash     string              `json:"hash"`
	Advisory []contracts.Warning `json:"advisory,omitempty"`
}

// ListPhilosophies returns every profile with its assumptions
// GET /api/philosophies
func (h *ValuationHandler) ListPhilosophies(w http.ResponseWriter, r *http.Request) {
	all := h.profiles.All()
	views := make([]PhilosophyView, 0, len(all))
	for i := range all {
		hash, err := all[i].Hash()
		if err != nil {
			h.logger.WithError(err).Error("Failed to hash profile")
			respondError(w, http.StatusInternalServerError, "Failed to list philosophies")
			return
		}
		views = append(views, PhilosophyView{
			Profile:  all[i],
			Hash:     hash,
			Advisory: all[i].Warn(),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    views,
	})
}

// ListUniverses returns the discovered ticker lists
// GET /api/universes
func (h *ValuationHandler) ListUniverses(w http.ResponseWriter, r *http.Request) {
	names, err := universe.Names(h.universeDir)
	if err != nil {
		h.logger.WithError(err).Error("Failed to discover universes")
		respondError(w, http.StatusInternalServerError, "Failed to list universes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    names,
	})
}

// GetValuation returns the DCF valuation of one ticker
// GET /api/valuation/{ticker}?philosophy=ValueDCF
func (h *ValuationHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	profile, ok := h.profile(r.URL.Query().Get("philosophy"))
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown philosophy")
		return
	}

	v, err := h.screener.Value(ctx, ticker, profile)
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Warn("Valuation failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    v,
	})
}

// ScreenRequest represents a screen request.
// Tickers take precedence over Universe.
// Sort "discount" returns every row ordered by discount to fair value.
type ScreenRequest struct {
	Tickers    []string `json:"tickers"`
	Universe   string   `json:"universe"`
	Philosophy string   `json:"philosophy"`
	Sort       string   `json:"sort"`
}

// Screen runs a universe sweep
// POST /api/screen
func (h *ValuationHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, ok := h.profile(req.Philosophy)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown philosophy")
		return
	}

	mode, err := selection.ParseSort(req.Sort)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	tickers := req.Tickers
	if len(tickers) == 0 {
		if strings.TrimSpace(req.Universe) == "" {
			respondError(w, http.StatusBadRequest, "tickers or universe is required")
			return
		}
		tickers, err = universe.Load(h.universeDir, req.Universe)
		if err != nil {
			respondDomainError(w, err)
			return
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"tickers":    len(tickers),
		"universe":   req.Universe,
		"philosophy": profile.Name,
		"sort":       mode,
	}).Info("Screen triggered")

	result, err := h.screener.Run(ctx, tickers, profile)
	if err != nil {
		h.logger.WithError(err).Error("Screen failed")
		respondDomainError(w, err)
		return
	}

	if mode == selection.SortDiscount {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    selection.ByDiscount(result),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// CacheStats returns the valuation cache counters
// GET /api/cache/stats
func (h *ValuationHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"data":        stats,
		"ttl_seconds": h.cache.TTL().Seconds(),
	})
}

// profile resolves a name; empty selects the default profile
func (h *ValuationHandler) profile(name string) (philosophy.Profile, bool) {
	if strings.TrimSpace(name) == "" {
		return h.profiles.Get(string(philosophy.ValueDCF)), true
	}
	return h.profiles.Lookup(name)
}
