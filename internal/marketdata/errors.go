package marketdata

import (
	"errors"
	"fmt"

	"github.com/fairvalue/screener/internal/contracts"
)

// wrapUnavailable tags a fetch failure as ErrDataUnavailable, keeping the cause
func wrapUnavailable(ticker string, err error) error {
	if errors.Is(err, contracts.ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("fetch %s: %w: %w", ticker, contracts.ErrDataUnavailable, err)
}
