package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-schedule/internal/schedule"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/iwvelando/loan-schedule/pkg/testutil"
)

func usd(amount string) money.Money {
	return money.Of(money.USD, testutil.Dec(amount))
}

func testResults() []schedule.Result {
	sched := &loans.Schedule{
		Currency:       money.USD,
		Principal:      usd("2000"),
		TotalPrincipal: usd("2000"),
		TotalInterest:  usd("30"),
		TotalRepayment: usd("2030"),
		Installments: []loans.Installment{
			{
				Number:             1,
				FromDate:           testutil.Date("2025-01-01"),
				DueDate:            testutil.Date("2025-02-01"),
				Principal:          usd("1000"),
				Interest:           usd("20"),
				Compounded:         usd("0"),
				Total:              usd("1020"),
				OutstandingBalance: usd("1000"),
				AnnualInterestRate: testutil.Dec("12"),
			},
			{
				Number:             2,
				FromDate:           testutil.Date("2025-02-01"),
				DueDate:            testutil.Date("2025-03-01"),
				Principal:          usd("1000"),
				Interest:           usd("10"),
				Compounded:         usd("0"),
				Total:              usd("1010"),
				OutstandingBalance: usd("0"),
				AnnualInterestRate: testutil.Dec("12"),
			},
		},
		UntriggeredCompoundingDates: []time.Time{testutil.Date("2025-02-10")},
	}
	return []schedule.Result{
		{
			RunID:       uuid.MustParse("6f1c2b1e-8a51-4d8e-9a0c-1d2e3f4a5b6c"),
			Name:        "Test Loan",
			GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Schedule:    sched,
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, testResults()); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Schedule for loan Test Loan (2 installments) ---",
		"From",
		"2025-01-01",
		"$1,020.00",
		"Total principal $2,000.00, total interest $30.00, total repayment $2,030.00",
		"compounding date 2025-02-10",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, testResults()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "loan" || len(records[0]) != len(csvHeader) {
		t.Errorf("Unexpected header %v", records[0])
	}
	row := records[1]
	if row[0] != "Test Loan" || row[1] != "1" || row[3] != "2025-02-01" || row[4] != "1000.00" || row[7] != "1020.00" {
		t.Errorf("Unexpected first row %v", row)
	}
	if records[2][8] != "0.00" {
		t.Errorf("Expected final balance 0.00, got %s", records[2][8])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, testResults()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var docs []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 schedule, got %d", len(docs))
	}
	doc := docs[0]
	if doc["runId"] != "6f1c2b1e-8a51-4d8e-9a0c-1d2e3f4a5b6c" || doc["currency"] != "USD" || doc["totalInterest"] != "30.00" {
		t.Errorf("Unexpected schedule document %v", doc)
	}
	installments, ok := doc["installments"].([]any)
	if !ok || len(installments) != 2 {
		t.Fatalf("Expected 2 installments, got %v", doc["installments"])
	}
	first := installments[0].(map[string]any)
	if first["due"] != "2025-02-01" || first["total"] != "1020.00" || first["annualInterestRate"] != "12" {
		t.Errorf("Unexpected installment %v", first)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format    string
		prefix    string
		wantError bool
	}{
		{format: "pretty", prefix: "--- Schedule"},
		{format: "csv", prefix: "loan,number"},
		{format: "json", prefix: "["},
		{format: "xml", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.format, testResults())
			if tt.wantError {
				if err == nil {
					t.Errorf("Write(%s) expected error but got none", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("Write(%s) error = %v", tt.format, err)
			}
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("Write(%s) output starts with %q", tt.format, buf.String()[:20])
			}
		})
	}
}
