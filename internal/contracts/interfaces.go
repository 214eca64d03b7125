package contracts

import "context"

// Provider fetches raw financials for a ticker
// ⭐ SSOT: 시장 데이터 제공자 인터페이스
// 실패 시 ErrDataUnavailable 로 감싼 오류 반환. 재시도는 호출자 책임
type Provider interface {
	FetchFinancials(ctx context.Context, ticker string) (*RawFinancials, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, ticker string) (*RawFinancials, error)

// FetchFinancials calls f
func (f ProviderFunc) FetchFinancials(ctx context.Context, ticker string) (*RawFinancials, error) {
	return f(ctx, ticker)
}
