package contracts

import (
	"errors"
	"fmt"
)

// Condition errors. All are per-ticker: callers degrade the row and keep going.
// ⭐ SSOT: 오류 분류는 여기서만 정의
var (
	// ErrDataUnavailable 데이터 제공자 조회 실패 (재시도 없음)
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientData 필수 입력 누락 또는 양수가 아님
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidAssumptions 기준 케이스에서 r <= g
	ErrInvalidAssumptions = errors.New("invalid assumptions")
	// ErrInsufficientCoverage 복합 점수 축의 절반 미만만 존재
	ErrInsufficientCoverage = errors.New("insufficient coverage")
)

// Row flags surfaced to the presentation layer
const (
	FlagDataUnavailable      = "DATA_UNAVAILABLE"
	FlagInsufficientData     = "INSUFFICIENT_DATA"
	FlagInvalidAssumptions   = "INVALID_ASSUMPTIONS"
	FlagInsufficientCoverage = "INSUFFICIENT_COVERAGE"
	FlagDCFUnavailable       = "DCF_UNAVAILABLE"
)

// Warning codes attached to a FairValueEstimate
const (
	WarnNarrowedSensitivity = "NARROWED_SENSITIVITY"
	WarnNegativeBaseFCF     = "NEGATIVE_BASE_FCF"
)

// FlagFor maps a condition error onto its row flag. Unknown errors map to "".
func FlagFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataUnavailable):
		return FlagDataUnavailable
	case errors.Is(err, ErrInsufficientData):
		return FlagInsufficientData
	case errors.Is(err, ErrInvalidAssumptions):
		return FlagInvalidAssumptions
	case errors.Is(err, ErrInsufficientCoverage):
		return FlagInsufficientCoverage
	default:
		return ""
	}
}

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
