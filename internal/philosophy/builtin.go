package philosophy

import "strings"

// builtin profiles. Defaults follow the philosophy table used by the dashboard.
var builtin = map[Name]Profile{
	ValueDCF: {
		Name:  ValueDCF,
		Title: "Long-term Value/DCF",
		Description: "Focuses on intrinsic value via discounted cash flow. Works best for " +
			"companies with stable, positive free cash flow and predictable growth trajectories.",
		Warnings: []string{
			"High leverage or negative cash flow reduces reliability.",
			"Results are sensitive to discount/growth rate assumptions.",
		},
		Limitations: []string{
			"Does not model scenario-specific capital structure changes.",
			"Assumes steady growth rather than cyclical swings.",
		},
		ProjectionYears:        5,
		DiscountRate:           0.10,
		TerminalGrowth:         0.02,
		ProjectionGrowth:       ptr(0.03),
		SensitivityDelta:       0.02,
		ValueWeight:            0.4,
		QualityWeight:          0.3,
		GrowthWeight:           0.2,
		StabilityWeight:        0.1,
		ROEThreshold:           0.10,
		RevenueGrowthThreshold: 0.03,
	},
	DividendIncome: {
		Name:  DividendIncome,
		Title: "Dividend/Income",
		Description: "Targets predictable cash distributions today. Emphasizes payout " +
			"safety, dividend yield, and coverage.",
		Warnings: []string{
			"Dividend data may lag one payout cycle on free APIs.",
			"Yield spikes can signal distress rather than opportunity.",
		},
		Limitations: []string{
			"Does not forecast dividend cuts or buybacks automatically.",
			"Assumes U.S. tax treatment; adjust for local jurisdiction.",
		},
		ProjectionYears:        5,
		DiscountRate:           0.09,
		TerminalGrowth:         0.02,
		SensitivityDelta:       0.01,
		ValueWeight:            0.3,
		QualityWeight:          0.3,
		GrowthWeight:           0.1,
		StabilityWeight:        0.3,
		ROEThreshold:           0.10,
		RevenueGrowthThreshold: 0.0,
		RequiredYield:          ptr(0.03),
		MaxPayoutRatio:         ptr(0.75),
	},
	GARP: {
		Name:  GARP,
		Title: "Growth-at-a-Reasonable-Price",
		Description: "Seeks companies with durable growth that still trade below " +
			"intrinsic value when factoring growth and profitability.",
		Warnings: []string{
			"Growth estimates rely on trailing data, not analyst forecasts.",
			"Very high-growth, unprofitable names may be filtered out.",
		},
		Limitations: []string{
			"No explicit PEG or SaaS-specific metrics.",
			"Normalizes by percentile, so thin universes can distort ranks.",
		},
		ProjectionYears:        5,
		DiscountRate:           0.10,
		TerminalGrowth:         0.03,
		ProjectionGrowth:       ptr(0.08),
		SensitivityDelta:       0.02,
		ValueWeight:            0.4,
		QualityWeight:          0.3,
		GrowthWeight:           0.3,
		StabilityWeight:        0.0,
		ROEThreshold:           0.12,
		RevenueGrowthThreshold: 0.10,
	},
	Momentum: {
		Name:  Momentum,
		Title: "Momentum/Trend",
		Description: "Highlights recent strength and trend-following signals to ride " +
			"prevailing moves rather than intrinsic value.",
		Warnings: []string{
			"Momentum regimes can reverse abruptly.",
			"Does not incorporate stop-loss logic.",
		},
		Limitations: []string{
			"No risk parity or volatility targeting.",
			"Fair value plays a minor role; growth dominates the composite.",
		},
		ProjectionYears:        5,
		DiscountRate:           0.11,
		TerminalGrowth:         0.03,
		ProjectionGrowth:       ptr(0.10),
		SensitivityDelta:       0.01,
		SensitivityOnGrowth:    true,
		ValueWeight:            0.1,
		QualityWeight:          0.2,
		GrowthWeight:           0.5,
		StabilityWeight:        0.2,
		ROEThreshold:           0.08,
		RevenueGrowthThreshold: 0.05,
	},
	IndexPassive: {
		Name:  IndexPassive,
		Title: "Index/Passive",
		Description: "Focuses on broad exposure and diversification. Ranks are a " +
			"balanced blend rather than a stock-picking signal.",
		Warnings: []string{
			"Single-stock scores are informational for passive allocations.",
		},
		Limitations: []string{
			"Does not compare ETF expense ratios or tracking difference.",
		},
		ProjectionYears:        10,
		DiscountRate:           0.08,
		TerminalGrowth:         0.02,
		SensitivityDelta:       0.01,
		ValueWeight:            0.25,
		QualityWeight:          0.25,
		GrowthWeight:           0.25,
		StabilityWeight:        0.25,
		ROEThreshold:           0.0,
		RevenueGrowthThreshold: 0.0,
	},
}

// aliases maps dashboard titles onto profile names
var aliases = map[string]Name{
	"long-term value/dcf":          ValueDCF,
	"value":                        ValueDCF,
	"dcf":                          ValueDCF,
	"dividend/income":              DividendIncome,
	"dividend":                     DividendIncome,
	"growth-at-a-reasonable-price": GARP,
	"momentum/trend":               Momentum,
	"index/passive":                IndexPassive,
	"index":                        IndexPassive,
	"passive":                      IndexPassive,
}

// resolve maps a name, title or alias (case-insensitive) onto a Name
func resolve(name string) (Name, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, n := range Names {
		if strings.ToLower(string(n)) == key {
			return n, true
		}
	}
	n, ok := aliases[key]
	return n, ok
}
