// Package constants provides shared constants for the mortgage-payoff application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Mortgage insurance constants
const (
	// DefaultPMICutoffRatio is the loan-to-value ratio at or below which
	// private mortgage insurance stops being charged.
	DefaultPMICutoffRatio = 0.80

	// LTVBasisPostPayment evaluates loan-to-value against the balance after
	// the period's payment has been applied.
	LTVBasisPostPayment = "postPayment"

	// LTVBasisPrePayment evaluates loan-to-value against the balance before
	// the period's payment has been applied.
	LTVBasisPrePayment = "prePayment"
)

// Schedule bounds
const (
	// MaxScheduleMonths caps schedule generation; iterating past this point
	// indicates a defect rather than a legitimate loan.
	MaxScheduleMonths = 1200

	// DefaultEffectiveFromMonth is the first period recurring extra payments
	// apply to when not otherwise configured.
	DefaultEffectiveFromMonth = 1
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size for
	// the schedule API (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024
)
