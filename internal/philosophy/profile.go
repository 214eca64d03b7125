package philosophy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Name identifies an investment philosophy
type Name string

const (
	ValueDCF       Name = "ValueDCF"
	DividendIncome Name = "DividendIncome"
	GARP           Name = "GARP"
	Momentum       Name = "Momentum"
	IndexPassive   Name = "IndexPassive"
)

// Names lists the philosophies in display order
var Names = []Name{ValueDCF, DividendIncome, GARP, Momentum, IndexPassive}

// Profile carries the valuation assumptions and scoring weights of a philosophy
// ⭐ SSOT: 계산기에 전달되는 모든 가정은 여기서만 정의
type Profile struct {
	Name        Name     `json:"name" yaml:"name" validate:"required,oneof=ValueDCF DividendIncome GARP Momentum IndexPassive"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings"`
	Limitations []string `json:"limitations,omitempty" yaml:"limitations"`

	// DCF
	ProjectionYears     int      `json:"projection_years" yaml:"projection_years" validate:"gt=0,lte=50"`
	DiscountRate        float64  `json:"discount_rate" yaml:"discount_rate" validate:"gt=0,lt=1"`
	TerminalGrowth      float64  `json:"terminal_growth" yaml:"terminal_growth" validate:"gt=-1,lt=1"`
	ProjectionGrowth    *float64 `json:"projection_growth" yaml:"projection_growth" validate:"omitempty,gt=-1"` // nil = terminal growth
	SensitivityDelta    float64  `json:"sensitivity_delta" yaml:"sensitivity_delta" validate:"gte=0,lt=1"`
	SensitivityOnGrowth bool     `json:"sensitivity_on_growth" yaml:"sensitivity_on_growth"`

	// 스코어링 가중치 (사용 시 비례 재조정)
	ValueWeight     float64 `json:"value_weight" yaml:"value_weight" validate:"gte=0,lte=1"`
	QualityWeight   float64 `json:"quality_weight" yaml:"quality_weight" validate:"gte=0,lte=1"`
	GrowthWeight    float64 `json:"growth_weight" yaml:"growth_weight" validate:"gte=0,lte=1"`
	StabilityWeight float64 `json:"stability_weight" yaml:"stability_weight" validate:"gte=0,lte=1"`

	// 적격성 기준
	ROEThreshold           float64  `json:"roe_threshold" yaml:"roe_threshold"`
	RevenueGrowthThreshold float64  `json:"revenue_growth_threshold" yaml:"revenue_growth_threshold"`
	RequiredYield          *float64 `json:"required_yield,omitempty" yaml:"required_yield" validate:"omitempty,gte=0"`
	MaxPayoutRatio         *float64 `json:"max_payout_ratio,omitempty" yaml:"max_payout_ratio" validate:"omitempty,gt=0"`
}

// Weights are the four composite axis weights
type Weights struct {
	Value     float64 `json:"value"`
	Quality   float64 `json:"quality"`
	Growth    float64 `json:"growth"`
	Stability float64 `json:"stability"`
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Value + w.Quality + w.Growth + w.Stability
}

// Weights returns the axis weights rescaled to sum to 1.
// A zero total returns all zeros; Validate rejects that case.
func (p *Profile) Weights() Weights {
	w := Weights{
		Value:     p.ValueWeight,
		Quality:   p.QualityWeight,
		Growth:    p.GrowthWeight,
		Stability: p.StabilityWeight,
	}
	sum := w.Sum()
	if sum <= 0 {
		return Weights{}
	}
	return Weights{
		Value:     w.Value / sum,
		Quality:   w.Quality / sum,
		Growth:    w.Growth / sum,
		Stability: w.Stability / sum,
	}
}

// ProjectedGrowth is g_proj: the explicit projection growth, or the terminal growth when unset
func (p *Profile) ProjectedGrowth() float64 {
	if p.ProjectionGrowth != nil {
		return *p.ProjectionGrowth
	}
	return p.TerminalGrowth
}

// Clone returns a deep copy
func (p *Profile) Clone() Profile {
	c := *p
	c.Warnings = append([]string(nil), p.Warnings...)
	c.Limitations = append([]string(nil), p.Limitations...)
	if p.ProjectionGrowth != nil {
		v := *p.ProjectionGrowth
		c.ProjectionGrowth = &v
	}
	if p.RequiredYield != nil {
		v := *p.RequiredYield
		c.RequiredYield = &v
	}
	if p.MaxPayoutRatio != nil {
		v := *p.MaxPayoutRatio
		c.MaxPayoutRatio = &v
	}
	return c
}

// Hash returns the sha256 of the profile's canonical JSON for audit trails
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func (p *Profile) Hash() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile %s: %w", p.Name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func ptr(v float64) *float64 {
	return &v
}
