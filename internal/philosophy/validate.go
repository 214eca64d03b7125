package philosophy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairvalue/screener/internal/contracts"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// 오류 메시지에 YAML 필드명 사용
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks field ranges then the semantic constraints.
// Returns contracts.ValidationError; r <= g also wraps ErrInvalidAssumptions.
func (p *Profile) Validate() error {
	if err := structValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return contracts.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q constraint (%s)", fe.Tag(), fe.Param()),
			}
		}
		return err
	}

	if p.DiscountRate <= p.TerminalGrowth {
		return fmt.Errorf("%w: %w", contracts.ErrInvalidAssumptions, contracts.ValidationError{
			Field:   "discount_rate",
			Message: fmt.Sprintf("Discount rate %.4f must exceed terminal growth rate %.4f", p.DiscountRate, p.TerminalGrowth),
		})
	}

	if p.ValueWeight+p.QualityWeight+p.GrowthWeight+p.StabilityWeight <= 0 {
		return contracts.ValidationError{Field: "weights", Message: "at least one weight must be > 0"}
	}

	return nil
}

// Warn returns non-fatal advisories about a valid profile
func (p *Profile) Warn() []contracts.Warning {
	var warnings []contracts.Warning

	spread := p.DiscountRate - p.TerminalGrowth
	if !p.SensitivityOnGrowth && p.SensitivityDelta >= spread {
		warnings = append(warnings, contracts.Warning{
			Code:    "SENSITIVITY_EXCEEDS_SPREAD",
			Message: fmt.Sprintf("sensitivity_delta %.4f >= r-g %.4f; the high band will be clamped", p.SensitivityDelta, spread),
		})
	}
	if p.SensitivityOnGrowth && p.TerminalGrowth+p.SensitivityDelta >= p.DiscountRate {
		warnings = append(warnings, contracts.Warning{
			Code:    "SENSITIVITY_EXCEEDS_SPREAD",
			Message: fmt.Sprintf("terminal growth + delta %.4f >= r %.4f; the high band will be clamped", p.TerminalGrowth+p.SensitivityDelta, p.DiscountRate),
		})
	}

	if g := p.ProjectedGrowth(); g >= p.DiscountRate {
		warnings = append(warnings, contracts.Warning{
			Code:    "PROJECTION_GROWTH_ABOVE_DISCOUNT",
			Message: fmt.Sprintf("projection growth %.4f >= discount rate %.4f", g, p.DiscountRate),
		})
	}

	if p.ProjectionYears > 15 {
		warnings = append(warnings, contracts.Warning{
			Code:    "LONG_HORIZON",
			Message: fmt.Sprintf("projection_years=%d compounds assumption error", p.ProjectionYears),
		})
	}

	intended := 0
	for _, w := range []float64{p.ValueWeight, p.QualityWeight, p.GrowthWeight, p.StabilityWeight} {
		if w > 0 {
			intended++
		}
	}
	if intended == 1 {
		warnings = append(warnings, contracts.Warning{
			Code:    "SINGLE_AXIS",
			Message: "only one scoring axis has weight; composite equals that axis",
		})
	}

	return warnings
}
