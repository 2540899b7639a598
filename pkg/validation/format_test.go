package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{name: "Pretty", format: constants.OutputFormatPretty, expectErr: false},
		{name: "CSV", format: constants.OutputFormatCSV, expectErr: false},
		{name: "JSON", format: constants.OutputFormatJSON, expectErr: false},
		{name: "Empty format", format: "", expectErr: true},
		{name: "Uppercase pretty", format: "PRETTY", expectErr: true},
		{name: "Uppercase CSV", format: "CSV", expectErr: true},
		{name: "Uppercase JSON", format: "JSON", expectErr: true},
		{name: "Mixed case JSON", format: "Json", expectErr: true},
		{name: "Padded JSON", format: " json ", expectErr: true},
		{name: "JSON lines", format: "jsonl", expectErr: true},
		{name: "YAML not supported", format: "yaml", expectErr: true},
		{name: "XML not supported", format: "xml", expectErr: true},
		{name: "Hyphenated", format: "pretty-format", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	for _, format := range []string{"xml", "JSON", "jsonl"} {
		err := ValidateOutputFormat(format)
		if err == nil {
			t.Fatalf("expected error for format %q", format)
		}

		msg := err.Error()
		if !strings.HasSuffix(msg, "got "+format) {
			t.Errorf("error for %q does not name the rejected format: %s", format, msg)
		}
		for _, supported := range []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON} {
			if !strings.Contains(msg, supported) {
				t.Errorf("error for %q does not list %s: %s", format, supported, msg)
			}
		}
	}
}
