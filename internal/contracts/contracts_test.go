package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFinancials() RawFinancials {
	ex := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	return RawFinancials{
		Ticker:            "MSFT",
		FCFSeries:         []FCFPoint{{Period: "2024", Amount: 74e9}, {Period: "2023", Amount: 59e9}},
		Price:             Float(410),
		SharesOutstanding: Float(7.43e9),
		ROE:               Float(0.35),
		DebtToEquity:      Float(0.3),
		DividendRate:      Float(3.0),
		ExDividendDate:    &ex,
	}
}

func TestCanonicalTicker(t *testing.T) {
	tests := []struct{ in, want string }{
		{"aapl", "AAPL"},
		{"  brk.b ", "BRK.B"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalTicker(tt.in); got != tt.want {
			t.Errorf("CanonicalTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRawFinancials_CloneIsDeep(t *testing.T) {
	orig := sampleFinancials()
	c := orig.Clone()

	*c.Price = 1
	c.FCFSeries[0].Amount = -1
	*c.ExDividendDate = time.Time{}

	assert.Equal(t, 410.0, *orig.Price)
	assert.Equal(t, 74e9, orig.FCFSeries[0].Amount)
	assert.False(t, orig.ExDividendDate.IsZero())
	assert.Nil(t, c.RevenueGrowth, "absent stays absent")
}

func TestRawFinancials_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*RawFinancials)
		field string
	}{
		{"valid", func(*RawFinancials) {}, ""},
		{"lowercase ticker", func(f *RawFinancials) { f.Ticker = "msft" }, "ticker"},
		{"empty ticker", func(f *RawFinancials) { f.Ticker = "" }, "ticker"},
		{"negative price", func(f *RawFinancials) { f.Price = Float(-1) }, "price"},
		{"zero shares", func(f *RawFinancials) { f.SharesOutstanding = Float(0) }, "shares_outstanding"},
		{"negative leverage", func(f *RawFinancials) { f.DebtToEquity = Float(-0.1) }, "debt_to_equity"},
		{"negative dividend", func(f *RawFinancials) { f.DividendRate = Float(-2) }, "dividend_rate"},
		{"absent fields ok", func(f *RawFinancials) { f.Price, f.SharesOutstanding = nil, nil }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleFinancials()
			tt.mut(&f)
			err := f.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRawFinancials_BaseFCFAndYield(t *testing.T) {
	f := sampleFinancials()

	base, ok := f.BaseFCF()
	assert.True(t, ok)
	assert.Equal(t, 74e9, base)

	require.NotNil(t, f.DividendYield())
	assert.InDelta(t, 3.0/410, *f.DividendYield(), 1e-12)

	f.FCFSeries = nil
	_, ok = f.BaseFCF()
	assert.False(t, ok)

	f.Price = Float(0)
	assert.Nil(t, f.DividendYield())
}

func TestRawFinancials_JSONAbsentIsNull(t *testing.T) {
	f := RawFinancials{Ticker: "X"}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"roe":null`)
	assert.Contains(t, string(data), `"price":null`)
}

func TestFlagFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("fetch AAPL: %w", ErrDataUnavailable), FlagDataUnavailable},
		{fmt.Errorf("no fcf: %w", ErrInsufficientData), FlagInsufficientData},
		{ErrInvalidAssumptions, FlagInvalidAssumptions},
		{ErrInsufficientCoverage, FlagInsufficientCoverage},
		{errors.New("other"), ""},
	}
	for _, tt := range tests {
		if got := FlagFor(tt.err); got != tt.want {
			t.Errorf("FlagFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFairValueEstimate_Warnings(t *testing.T) {
	e := FairValueEstimate{Warnings: []Warning{
		{Code: WarnNegativeBaseFCF, Message: "base fcf <= 0"},
		{Code: WarnNarrowedSensitivity, Message: "high band clamped"},
	}}

	assert.True(t, e.HasWarning(WarnNarrowedSensitivity))
	assert.False(t, e.HasWarning("OTHER"))
	assert.Equal(t, []string{WarnNegativeBaseFCF, WarnNarrowedSensitivity}, e.WarningCodes())
}

func TestScoredUniverse_FindTopN(t *testing.T) {
	u := ScoredUniverse{
		Ranked:   []ScoredTicker{{Ticker: "A", Rank: 1}, {Ticker: "B", Rank: 2}},
		Unranked: []ScoredTicker{{Ticker: "C", Flags: []string{FlagInsufficientCoverage}}},
	}

	row, ok := u.Find("c")
	require.True(t, ok)
	assert.True(t, row.HasFlag(FlagInsufficientCoverage))

	_, ok = u.Find("Z")
	assert.False(t, ok)

	assert.Len(t, u.TopN(1), 1)
	assert.Len(t, u.TopN(10), 2)
	assert.Equal(t, 3, u.Size())
}
