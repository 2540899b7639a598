// Package output provides utilities for formatting and displaying schedule results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iwvelando/loan-schedule/internal/schedule"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/format"
	"github.com/iwvelando/loan-schedule/pkg/money"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders results in the named output format.
func Write(w io.Writer, outputFormat string, results []schedule.Result) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	default:
		return PrettyFormat(w, results)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []schedule.Result) error {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		sched := result.Schedule
		if _, err := p.Fprintf(w, "--- Schedule for loan %s (%d installments) ---\n", result.Name, len(sched.Installments)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%-4s | %-10s | %-10s | %14s | %14s | %14s | %16s\n",
			"#", "From", "Due", "Principal", "Interest", "Total", "Balance")
		_, _ = fmt.Fprintf(w, "%-4s | %-10s | %-10s | %14s | %14s | %14s | %16s\n",
			"_", "____", "___", "_________", "________", "_____", "_______")
		for _, inst := range sched.Installments {
			_, err := fmt.Fprintf(w, "%-4d | %-10s | %-10s | %14s | %14s | %14s | %16s\n",
				inst.Number,
				inst.FromDate.Format(constants.DateLayout),
				inst.DueDate.Format(constants.DateLayout),
				format.Currency(inst.Principal),
				format.Currency(inst.Interest),
				format.Currency(inst.Total),
				format.Currency(inst.OutstandingBalance),
			)
			if err != nil {
				return err
			}
		}
		_, _ = fmt.Fprintf(w, "Total principal %s, total interest %s, total repayment %s\n",
			format.Currency(sched.TotalPrincipal),
			format.Currency(sched.TotalInterest),
			format.Currency(sched.TotalRepayment),
		)
		for _, date := range sched.UntriggeredCompoundingDates {
			_, _ = fmt.Fprintf(w, "Note: compounding date %s did not fall on a principal change and was not applied\n",
				date.Format(constants.DateLayout))
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
	return nil
}

var csvHeader = []string{
	"loan", "number", "from", "due", "principal", "interest", "compounded",
	"total", "outstanding", "interest carried forward", "principal variation", "annual rate",
}

// CsvFormat outputs one row per installment across all loans.
func CsvFormat(w io.Writer, results []schedule.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		for _, inst := range result.Schedule.Installments {
			record := []string{
				result.Name,
				strconv.Itoa(inst.Number),
				inst.FromDate.Format(constants.DateLayout),
				inst.DueDate.Format(constants.DateLayout),
				amount(inst.Principal),
				amount(inst.Interest),
				amount(inst.Compounded),
				amount(inst.Total),
				amount(inst.OutstandingBalance),
				amount(inst.InterestCarriedForward),
				amount(inst.PrincipalVariation),
				inst.AnnualInterestRate.String(),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// InstallmentDocument is the JSON form of one installment.
type InstallmentDocument struct {
	Number                 int    `json:"number"`
	From                   string `json:"from"`
	Due                    string `json:"due"`
	Principal              string `json:"principal"`
	Interest               string `json:"interest"`
	Compounded             string `json:"compounded"`
	Total                  string `json:"total"`
	OutstandingBalance     string `json:"outstandingBalance"`
	InterestCarriedForward string `json:"interestCarriedForward"`
	PrincipalVariation     string `json:"principalVariation"`
	AnnualInterestRate     string `json:"annualInterestRate"`
}

// ScheduleDocument is the JSON form of one loan schedule.
type ScheduleDocument struct {
	RunID                       string                `json:"runId"`
	Name                        string                `json:"name"`
	GeneratedAt                 string                `json:"generatedAt"`
	Currency                    string                `json:"currency"`
	Principal                   string                `json:"principal"`
	TotalPrincipal              string                `json:"totalPrincipal"`
	TotalInterest               string                `json:"totalInterest"`
	TotalRepayment              string                `json:"totalRepayment"`
	UntriggeredCompoundingDates []string              `json:"untriggeredCompoundingDates,omitempty"`
	Installments                []InstallmentDocument `json:"installments"`
}

// JSONFormat outputs the results as an indented JSON array. Amounts are
// strings so no precision is lost.
func JSONFormat(w io.Writer, results []schedule.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Documents(results))
}

// Documents converts results into their JSON document form.
func Documents(results []schedule.Result) []ScheduleDocument {
	out := make([]ScheduleDocument, 0, len(results))
	for _, result := range results {
		sched := result.Schedule
		doc := ScheduleDocument{
			RunID:          result.RunID.String(),
			Name:           result.Name,
			GeneratedAt:    result.GeneratedAt.Format(time.RFC3339),
			Currency:       sched.Currency.Code(),
			Principal:      amount(sched.Principal),
			TotalPrincipal: amount(sched.TotalPrincipal),
			TotalInterest:  amount(sched.TotalInterest),
			TotalRepayment: amount(sched.TotalRepayment),
			Installments:   make([]InstallmentDocument, 0, len(sched.Installments)),
		}
		for _, date := range sched.UntriggeredCompoundingDates {
			doc.UntriggeredCompoundingDates = append(doc.UntriggeredCompoundingDates, date.Format(constants.DateLayout))
		}
		for _, inst := range sched.Installments {
			doc.Installments = append(doc.Installments, InstallmentDocument{
				Number:                 inst.Number,
				From:                   inst.FromDate.Format(constants.DateLayout),
				Due:                    inst.DueDate.Format(constants.DateLayout),
				Principal:              amount(inst.Principal),
				Interest:               amount(inst.Interest),
				Compounded:             amount(inst.Compounded),
				Total:                  amount(inst.Total),
				OutstandingBalance:     amount(inst.OutstandingBalance),
				InterestCarriedForward: amount(inst.InterestCarriedForward),
				PrincipalVariation:     amount(inst.PrincipalVariation),
				AnnualInterestRate:     inst.AnnualInterestRate.String(),
			})
		}
		out = append(out, doc)
	}
	return out
}

// amount renders m at its currency scale without separators.
func amount(m money.Money) string {
	return m.Amount().StringFixed(m.Currency().Digits())
}
