// Package export writes wallet data in portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

// OperationRow is one CSV line of an operation history export.
type OperationRow struct {
	ID        string `csv:"id"`
	CreatedAt string `csv:"created_at"`
	Kind      string `csv:"kind"`
	Category  string `csv:"category"`
	Amount    string `csv:"amount"`
	Balance   string `csv:"balance"`
}

// Rows converts ops, in log order, into CSV rows carrying the running balance.
func Rows(ops []domain.Operation) []OperationRow {
	rows := make([]OperationRow, 0, len(ops))
	balance := decimal.Zero

	for _, op := range ops {
		balance = balance.Add(op.Signed())
		rows = append(rows, OperationRow{
			ID:        op.ID,
			CreatedAt: op.CreatedAt.UTC().Format(time.RFC3339),
			Kind:      string(op.Category.Kind),
			Category:  op.Category.Name,
			Amount:    op.Amount.String(),
			Balance:   balance.String(),
		})
	}

	return rows
}

// WriteOperations writes the operation history as CSV with a header line.
func WriteOperations(w io.Writer, ops []domain.Operation, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}

	rows := Rows(ops)
	if len(rows) == 0 {
		// gocsv writes nothing for an empty slice; keep the header.
		if err := csvWriter.Write([]string{"id", "created_at", "kind", "category", "amount", "balance"}); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	return nil
}
