package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/pkg/logger"
)

// Default grid widths, matching the dashboard's range widget
const (
	DefaultRateDelta   = 0.02
	DefaultGrowthDelta = 0.01
)

// assumptions is one DCF evaluation point
type assumptions struct {
	discountRate     float64 // r
	terminalGrowth   float64 // g
	projectionGrowth float64 // g_proj
	years            int     // n
}

// breakdown is the result of one evaluation
type breakdown struct {
	pvFlows    float64
	pvTerminal float64
	ev         float64
	perShare   float64
}

// Calculator computes DCF fair values
// ⭐ SSOT: 공정가치 계산은 여기서만
// 순수 계산: 입력 스냅샷을 변경하지 않음
type Calculator struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewCalculator creates a calculator stamping results with the wall clock
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log.Component("dcf"),
		now:    time.Now,
	}
}

// WithClock overrides the AsOf source
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Calculate returns the fair value per share with a sensitivity band.
//
// Errors: ErrInsufficientData for an empty FCF series, absent or non-positive
// shares, or a non-finite result; ErrInvalidAssumptions when r <= g.
// A perturbed case violating r > g narrows that band to the point estimate.
func (c *Calculator) Calculate(ctx context.Context, fin contracts.RawFinancials, profile philosophy.Profile) (*contracts.FairValueEstimate, error) {
	base, shares, err := inputs(&fin)
	if err != nil {
		return nil, err
	}

	a := assumptions{
		discountRate:     profile.DiscountRate,
		terminalGrowth:   profile.TerminalGrowth,
		projectionGrowth: profile.ProjectedGrowth(),
		years:            profile.ProjectionYears,
	}
	if err := a.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", fin.Ticker, err)
	}

	point, err := evaluate(base, shares, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fin.Ticker, err)
	}

	est := &contracts.FairValueEstimate{
		Ticker:          fin.Ticker,
		PointEstimate:   point.perShare,
		LowBand:         point.perShare,
		HighBand:        point.perShare,
		AsOf:            c.now(),
		EnterpriseValue: point.ev,
		PVFlows:         point.pvFlows,
		PVTerminal:      point.pvTerminal,
	}

	if base <= 0 {
		est.Warnings = append(est.Warnings, contracts.Warning{
			Code:    contracts.WarnNegativeBaseFCF,
			Message: fmt.Sprintf("projections rest on a non-positive base free cash flow (%.2f)", base),
		})
	}

	// 민감도 밴드: 높은 가치 케이스와 낮은 가치 케이스
	high, low := a, a
	delta := profile.SensitivityDelta
	if profile.SensitivityOnGrowth {
		high.terminalGrowth += delta
		low.terminalGrowth -= delta
	} else {
		high.discountRate -= delta
		low.discountRate += delta
	}

	values := []float64{point.perShare}
	for _, side := range []struct {
		label string
		a     assumptions
	}{
		{"high", high},
		{"low", low},
	} {
		if delta == 0 {
			break
		}
		if err := side.a.check(); err != nil {
			est.Warnings = append(est.Warnings, narrowed(side.label, side.a))
			continue
		}
		b, err := evaluate(base, shares, side.a)
		if err != nil {
			est.Warnings = append(est.Warnings, narrowed(side.label, side.a))
			continue
		}
		values = append(values, b.perShare)
	}

	// 음수 FCF 에서는 낮은 r 이 더 낮은 가치를 만들므로 min/max 로 불변식 유지
	for _, v := range values {
		est.LowBand = math.Min(est.LowBand, v)
		est.HighBand = math.Max(est.HighBand, v)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":         fin.Ticker,
		"profile":        profile.Name,
		"base_fcf":       base,
		"shares":         shares,
		"discount_rate":  a.discountRate,
		"terminal_g":     a.terminalGrowth,
		"projection_g":   a.projectionGrowth,
		"years":          a.years,
		"point_estimate": est.PointEstimate,
		"low_band":       est.LowBand,
		"high_band":      est.HighBand,
		"warnings":       len(est.Warnings),
	}).Debug("DCF computed")

	return est, nil
}

// Grid returns the min/max fair value per share over the 3x3 grid
// r ± rateDelta by g_proj ± growthDelta. Cells violating r > g or g_proj > -1 are skipped.
func (c *Calculator) Grid(ctx context.Context, fin contracts.RawFinancials, profile philosophy.Profile, rateDelta, growthDelta float64) (*contracts.ValueRange, error) {
	base, shares, err := inputs(&fin)
	if err != nil {
		return nil, err
	}

	center := assumptions{
		discountRate:     profile.DiscountRate,
		terminalGrowth:   profile.TerminalGrowth,
		projectionGrowth: profile.ProjectedGrowth(),
		years:            profile.ProjectionYears,
	}
	if err := center.check(); err != nil {
		return nil, fmt.Errorf("%s: %w", fin.Ticker, err)
	}

	out := &contracts.ValueRange{
		Ticker: fin.Ticker,
		Low:    math.Inf(1),
		High:   math.Inf(-1),
	}
	for _, dr := range []float64{-rateDelta, 0, rateDelta} {
		for _, dg := range []float64{-growthDelta, 0, growthDelta} {
			cell := center
			cell.discountRate += dr
			cell.projectionGrowth += dg
			if cell.check() != nil || cell.projectionGrowth <= -1 {
				continue
			}
			b, err := evaluate(base, shares, cell)
			if err != nil {
				continue
			}
			out.Low = math.Min(out.Low, b.perShare)
			out.High = math.Max(out.High, b.perShare)
			out.Cells++
		}
	}

	if out.Cells == 0 {
		return nil, fmt.Errorf("%s: %w: no grid cell computed", fin.Ticker, contracts.ErrInvalidAssumptions)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": fin.Ticker,
		"low":    out.Low,
		"high":   out.High,
		"cells":  out.Cells,
	}).Debug("DCF grid computed")

	return out, nil
}

// inputs extracts the base FCF and share count
func inputs(fin *contracts.RawFinancials) (float64, float64, error) {
	base, ok := fin.BaseFCF()
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w: empty free cash flow series", fin.Ticker, contracts.ErrInsufficientData)
	}
	if fin.SharesOutstanding == nil || *fin.SharesOutstanding <= 0 {
		return 0, 0, fmt.Errorf("%s: %w: shares outstanding absent or non-positive", fin.Ticker, contracts.ErrInsufficientData)
	}
	return base, *fin.SharesOutstanding, nil
}

// check enforces r > g and a usable horizon
func (a assumptions) check() error {
	if a.years < 1 {
		return fmt.Errorf("%w: projection years must be >= 1, got %d", contracts.ErrInvalidAssumptions, a.years)
	}
	if a.discountRate <= a.terminalGrowth {
		return fmt.Errorf("%w: Discount rate %.4f must exceed terminal growth rate %.4f",
			contracts.ErrInvalidAssumptions, a.discountRate, a.terminalGrowth)
	}
	if a.discountRate <= -1 || a.terminalGrowth <= -1 {
		return fmt.Errorf("%w: rates must be > -100%%", contracts.ErrInvalidAssumptions)
	}
	return nil
}

// evaluate runs projection, discounting, terminal value and per-share steps
func evaluate(base, shares float64, a assumptions) (breakdown, error) {
	var b breakdown

	fcf := base
	discount := 1.0
	for t := 1; t <= a.years; t++ {
		fcf *= 1 + a.projectionGrowth
		discount *= 1 + a.discountRate
		b.pvFlows += fcf / discount
	}

	// fcf = FCF_n, discount = (1+r)^n
	tv := fcf * (1 + a.terminalGrowth) / (a.discountRate - a.terminalGrowth)
	b.pvTerminal = tv / discount
	b.ev = b.pvFlows + b.pvTerminal
	b.perShare = b.ev / shares

	for _, v := range []float64{b.pvFlows, b.pvTerminal, b.ev, b.perShare} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return breakdown{}, fmt.Errorf("%w: non-finite valuation intermediate", contracts.ErrInsufficientData)
		}
	}
	return b, nil
}

func narrowed(side string, a assumptions) contracts.Warning {
	return contracts.Warning{
		Code: contracts.WarnNarrowedSensitivity,
		Message: fmt.Sprintf("%s band clamped to point estimate (r=%.4f, g=%.4f)",
			side, a.discountRate, a.terminalGrowth),
	}
}
