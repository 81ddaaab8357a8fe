package calculation

import (
	"errors"
	"fmt"
	"math"
)

// Degenerate numeric inputs are reported with these instead of NaN or Inf,
// so results can always be serialised.
var (
	ErrEmptySchedule         = errors.New("cash flow schedule is empty")
	ErrNonPositiveInvestment = errors.New("initial investment must be positive")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrNonPositiveCashFlow   = errors.New("annual cash flow must be positive")
	ErrInvalidHorizon        = errors.New("payback horizon must be at least one period")
	ErrNonPositiveYears      = errors.New("number of years must be positive")
	ErrUndefinedGrowth       = errors.New("growth rate undefined for a loss beyond 100%")
	ErrUnknownVariable       = errors.New("unknown variable")
	ErrUnsupportedAnalysis   = errors.New("unsupported analysis type")
	ErrNonFiniteResult       = errors.New("result is not a finite number")
)

// checkFinite fails with ErrNonFiniteResult if any value is NaN or infinite.
func checkFinite(what string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s overflows: %w", what, ErrNonFiniteResult)
		}
	}
	return nil
}
