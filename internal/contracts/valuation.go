package contracts

import "time"

// Warning is a non-fatal advisory attached to a result
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FairValueEstimate is the DCF result for one ticker
// ⭐ SSOT: DCF → 스코어러/표현 계층 전달
// 불변식: LowBand <= PointEstimate <= HighBand
type FairValueEstimate struct {
	Ticker        string    `json:"ticker"`
	PointEstimate float64   `json:"point_estimate"` // per share
	LowBand       float64   `json:"low_band"`
	HighBand      float64   `json:"high_band"`
	AsOf          time.Time `json:"as_of"`

	// 진단용
	EnterpriseValue float64 `json:"enterprise_value"`
	PVFlows         float64 `json:"pv_flows"`
	PVTerminal      float64 `json:"pv_terminal"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// HasWarning reports whether the estimate carries the given warning code
func (e *FairValueEstimate) HasWarning(code string) bool {
	for _, w := range e.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// WarningCodes returns the codes in attachment order
func (e *FairValueEstimate) WarningCodes() []string {
	codes := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

// ValueRange is the min/max fair value over a sensitivity grid
type ValueRange struct {
	Ticker string  `json:"ticker"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Cells  int     `json:"cells"` // grid cells that computed
}
