// Package money provides fixed-point currency arithmetic helpers built on
// shopspring/decimal. Schedules run for hundreds of periods, so all balance
// math stays in decimal form and only rounds to cents at accrual points.
package money

import (
	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cents = decimal.NewFromInt(constants.DecimalPrecision)

var tolerance = decimal.NewFromFloat(constants.CurrencyTolerance)

var printer = message.NewPrinter(language.English)

// FromFloat converts a float64 amount (e.g. from config or an API request)
// into a decimal value.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// RoundCents rounds a value to two decimals, i.e. to represent real currency.
func RoundCents(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// CeilCents rounds a value up to the next cent. Level payments are ceiled so
// a loan always retires within its stated term.
func CeilCents(val decimal.Decimal) decimal.Decimal {
	return val.Mul(cents).Ceil().Div(cents)
}

// IsZero checks if a value is effectively zero (within one cent).
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThan(tolerance)
}

// Min returns the smaller of two decimal values.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(amount.Abs())
}

// formatPositiveCurrency renders a non-negative amount with two decimals and
// English digit grouping via the x/text printer.
func formatPositiveCurrency(value decimal.Decimal) string {
	return printer.Sprintf("%.2f", value.Round(2).InexactFloat64())
}

// String formats a value with two decimal places and no separators, suitable
// for CSV cells.
func String(val decimal.Decimal) string {
	return val.StringFixed(2)
}
