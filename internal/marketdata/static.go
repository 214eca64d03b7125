package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fairvalue/screener/internal/contracts"
)

// StaticProvider serves snapshots held in memory (fixtures, offline runs)
type StaticProvider struct {
	mu   sync.RWMutex
	data map[string]contracts.RawFinancials
}

// NewStaticProvider creates a provider from snapshots
func NewStaticProvider(items ...contracts.RawFinancials) *StaticProvider {
	p := &StaticProvider{data: make(map[string]contracts.RawFinancials, len(items))}
	for i := range items {
		p.Put(items[i])
	}
	return p
}

// LoadFixtures reads a JSON array of fundamentals in the HTTP API shape
func LoadFixtures(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var dtos []fundamentalsDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode fixtures %s: %w", path, err)
	}

	p := NewStaticProvider()
	for i := range dtos {
		fin := dtos[i].toFinancials()
		if err := fin.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %d (%s): %w", i, dtos[i].Ticker, err)
		}
		p.Put(*fin)
	}
	return p, nil
}

// Put stores a copy of fin under its canonical ticker
func (p *StaticProvider) Put(fin contracts.RawFinancials) {
	c := fin.Clone()
	c.Ticker = contracts.CanonicalTicker(c.Ticker)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[c.Ticker] = c
}

// Tickers lists the stored tickers
func (p *StaticProvider) Tickers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.data))
	for t := range p.data {
		out = append(out, t)
	}
	return out
}

// FetchFinancials implements contracts.Provider
func (p *StaticProvider) FetchFinancials(ctx context.Context, ticker string) (*contracts.RawFinancials, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapUnavailable(ticker, err)
	}

	ticker = contracts.CanonicalTicker(ticker)

	p.mu.RLock()
	fin, ok := p.data[ticker]
	p.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s not found", contracts.ErrDataUnavailable, ticker)
	}
	c := fin.Clone()
	return &c, nil
}
