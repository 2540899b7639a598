// Package constants provides shared constants for the loan-schedule application.
package constants

import "time"

// DateLayout is the date format expected in config files and is also the output
// date format.
const DateLayout = "2006-01-02"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is the number of whole weeks in a year
	WeeksPerYear = 52

	// DaysPerWeek is the number of days in a week
	DaysPerWeek = 7

	// DaysInStandardMonth is the month length under the 30-day month convention
	DaysInStandardMonth = 30

	// DefaultDaysInYear is used for daily frequencies when no day-count is configured
	DefaultDaysInYear = 365
)

// Money constants
const (
	// DefaultCurrencyCode is used when a loan does not name its currency
	DefaultCurrencyCode = "USD"

	// DefaultCurrencyDigits is the number of decimal places of the default currency
	DefaultCurrencyDigits = 2

	// DefaultRatePrecision is the number of decimal places kept for intermediate
	// interest rate computations
	DefaultRatePrecision = 19

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultRequestTimeout bounds schedule generation for one API request
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxLoansPerRequest caps the number of loans in one API request
	DefaultMaxLoansPerRequest = 50

	// DefaultServerAddress is the default HTTP listen address for the schedule API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
