package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/httputil"
	"github.com/fairvalue/screener/pkg/logger"
)

// HTTPProvider reads fundamentals from a JSON API: GET {base}/v1/fundamentals/{ticker}
type HTTPProvider struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewHTTPProvider creates a provider over an httputil client
func NewHTTPProvider(client *httputil.Client, baseURL string, log *logger.Logger) *HTTPProvider {
	return &HTTPProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.Component("http_provider"),
	}
}

// FetchFinancials implements contracts.Provider
func (p *HTTPProvider) FetchFinancials(ctx context.Context, ticker string) (*contracts.RawFinancials, error) {
	ticker = contracts.CanonicalTicker(ticker)
	endpoint := fmt.Sprintf("%s/v1/fundamentals/%s", p.baseURL, url.PathEscape(ticker))

	var dto fundamentalsDTO
	if err := p.client.GetJSON(ctx, endpoint, &dto); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s not found", contracts.ErrDataUnavailable, ticker)
		}
		return nil, wrapUnavailable(ticker, err)
	}

	if dto.Ticker == "" {
		dto.Ticker = ticker
	}
	fin := dto.toFinancials()

	if err := fin.Validate(); err != nil {
		return nil, wrapUnavailable(ticker, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker":    fin.Ticker,
		"fcf_count": len(fin.FCFSeries),
	}).Debug("Fetched fundamentals")

	return fin, nil
}
