package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/philosophy"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    SortMode
		wantErr bool
	}{
		{"", SortComposite, false},
		{"composite", SortComposite, false},
		{" Discount ", SortDiscount, false},
		{"alpha", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSort(tt.in)
			if tt.wantErr {
				var ve contracts.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "sort", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByDiscount(t *testing.T) {
	records := append(threeTickerUniverse(),
		// 순위 제외 행도 할인율이 있으면 포함
		contracts.ScoreInput{Ticker: "DDD", Price: f(40), FairValue: f(100)},
		contracts.ScoreInput{Ticker: "EEE", Price: f(80), FairValue: f(100), ROE: f(0.1), RevenueGrowth: f(0.1), DebtToEquity: f(0.3)},
		contracts.ScoreInput{Ticker: "FFF", Err: contracts.ErrDataUnavailable},
		contracts.ScoreInput{Ticker: "GGG", Price: f(0), FairValue: f(100), ROE: f(0.1)},
	)

	u, err := newTestScorer().Score(context.Background(), records, philosophy.Get("ValueDCF"))
	require.NoError(t, err)
	before := tickers(u.Ranked)

	view := ByDiscount(u)

	// DDD 1.5, AAA 1.0, BBB = EEE 0.25 (ticker asc), CCC -0.1, then absent FFF, GGG
	assert.Equal(t, []string{"DDD", "AAA", "BBB", "EEE", "CCC", "FFF", "GGG"}, tickers(view.Rows))
	assert.Equal(t, u.RunID, view.RunID)
	assert.Equal(t, u.Profile, view.Profile)
	assert.Equal(t, before, tickers(u.Ranked), "scored universe untouched")

	ddd, _ := u.Find("DDD")
	assert.True(t, ddd.HasFlag(contracts.FlagInsufficientCoverage))
	assert.Len(t, view.TopN(2), 2)
}

func TestByDiscount_Empty(t *testing.T) {
	view := ByDiscount(&contracts.ScoredUniverse{})
	assert.Empty(t, view.Rows)
}
