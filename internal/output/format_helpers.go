package output

import (
	"strconv"

	money "github.com/bizlens/bizcalc/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount as USD with thousands separators.
func FormatCurrency(amount float64) string { return money.NewMoney(amount).Format() }

// FormatCompact formats large amounts with a unit suffix ($81.6M).
func FormatCompact(amount float64) string { return money.NewMoney(amount).Compact() }

// FormatMoney is FormatCurrency for exact amounts.
func FormatMoney(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Format() }

// FormatMoneyCompact is FormatCompact for exact amounts.
func FormatMoneyCompact(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Compact()
}

// FormatPercentage formats a percentage value with 2 decimals.
func FormatPercentage(pct float64) string { return decimal.NewFromFloat(pct).StringFixed(2) + "%" }

// FormatYears formats a duration in periods with 2 decimals.
func FormatYears(years float64) string { return decimal.NewFromFloat(years).StringFixed(2) + " yrs" }

// csvAmount renders a number for CSV cells, rounded to cents.
func csvAmount(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

func csvMoney(v decimal.Decimal) string { return v.StringFixed(2) }

// csvRatio renders a ratio or percentage for CSV cells with 4 decimals.
func csvRatio(v float64) string { return decimal.NewFromFloat(v).StringFixed(4) }

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
