package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/logger"
)

// Querier is the subset of pgxpool.Pool used by PostgresProvider
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// maxFCFPeriods bounds the FCF history read per ticker
const maxFCFPeriods = 8

const fundamentalsQuery = `
	SELECT ticker, name, price, shares_outstanding, roe, revenue_growth,
	       debt_to_equity, dividend_rate, payout_ratio, ex_dividend_date, updated_at
	FROM market.fundamentals
	WHERE ticker = $1
`

const freeCashFlowQuery = `
	SELECT period, amount
	FROM market.free_cash_flows
	WHERE ticker = $1
	ORDER BY period_end DESC
	LIMIT $2
`

// PostgresProvider reads fundamentals maintained by an external loader
// 조회 전용: 이 서비스는 결과를 저장하지 않음
type PostgresProvider struct {
	db     Querier
	logger *logger.Logger
}

// NewPostgresProvider creates a provider over a pgx pool
func NewPostgresProvider(db Querier, log *logger.Logger) *PostgresProvider {
	return &PostgresProvider{
		db:     db,
		logger: log.Component("postgres_provider"),
	}
}

// FetchFinancials implements contracts.Provider
func (p *PostgresProvider) FetchFinancials(ctx context.Context, ticker string) (*contracts.RawFinancials, error) {
	ticker = contracts.CanonicalTicker(ticker)

	var (
		fin       contracts.RawFinancials
		name      *string
		updatedAt *time.Time
	)
	err := p.db.QueryRow(ctx, fundamentalsQuery, ticker).Scan(
		&fin.Ticker,
		&name,
		&fin.Price,
		&fin.SharesOutstanding,
		&fin.ROE,
		&fin.RevenueGrowth,
		&fin.DebtToEquity,
		&fin.DividendRate,
		&fin.PayoutRatio,
		&fin.ExDividendDate,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s not in market.fundamentals", contracts.ErrDataUnavailable, ticker)
	}
	if err != nil {
		return nil, wrapUnavailable(ticker, fmt.Errorf("query fundamentals: %w", err))
	}
	if name != nil {
		fin.Name = *name
	}
	if updatedAt != nil {
		fin.FetchedAt = *updatedAt
	}

	rows, err := p.db.Query(ctx, freeCashFlowQuery, ticker, maxFCFPeriods)
	if err != nil {
		return nil, wrapUnavailable(ticker, fmt.Errorf("query free cash flows: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var pt contracts.FCFPoint
		if err := rows.Scan(&pt.Period, &pt.Amount); err != nil {
			return nil, wrapUnavailable(ticker, fmt.Errorf("scan free cash flow: %w", err))
		}
		fin.FCFSeries = append(fin.FCFSeries, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapUnavailable(ticker, fmt.Errorf("iterate free cash flows: %w", err))
	}

	// ORDER BY period_end 순서 유지, 비율 단위만 정규화
	fin.Ticker = contracts.CanonicalTicker(fin.Ticker)
	fin.ROE = fraction(fin.ROE)
	fin.RevenueGrowth = fraction(fin.RevenueGrowth)

	if err := fin.Validate(); err != nil {
		return nil, wrapUnavailable(ticker, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"fcf_count": len(fin.FCFSeries),
	}).Debug("Loaded fundamentals")

	return &fin, nil
}
