// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-payoff/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateLTVBasis checks if the PMI loan-to-value basis is supported.
func ValidateLTVBasis(basis string) error {
	if basis != constants.LTVBasisPostPayment && basis != constants.LTVBasisPrePayment {
		return fmt.Errorf("expected LTV basis of %s or %s, got %s",
			constants.LTVBasisPostPayment, constants.LTVBasisPrePayment, basis)
	}
	return nil
}
