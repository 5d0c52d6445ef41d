// Package export renders invoices into downloadable documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"courtside/internal/domain/invoice"
)

const (
	invoiceSheet = "Invoice"
	periodLayout = "2006-01"
)

var lineItemHeader = []any{"Date", "Type", "Description", "Hours", "Rate", "Amount", "Deduction"}

// InvoiceFilename returns the download name of an invoice export.
func InvoiceFilename(inv invoice.Invoice, coachName string) string {
	name := coachName
	if name == "" {
		name = inv.CoachID
	}
	return fmt.Sprintf("invoice_%s_%s.xlsx", sanitize(name), inv.Period().Format(periodLayout))
}

// InvoiceXLSX writes an invoice as a single-sheet workbook: a header block,
// one row per line item, then subtotal, deductions and total.
// INVARIANT: inv is not mutated
func InvoiceXLSX(inv invoice.Invoice, coachName string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), invoiceSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := [][]any{
		{"Coach", coachName},
		{"Period", inv.Period().Format(periodLayout)},
		{"Status", string(inv.Status)},
	}
	row := 1
	for _, r := range header {
		if err := setRow(f, row, r); err != nil {
			return nil, err
		}
		row++
	}
	row++

	if err := setRow(f, row, lineItemHeader); err != nil {
		return nil, err
	}
	row++
	for _, li := range inv.LineItems {
		deduction := ""
		if li.IsDeduction {
			deduction = "yes"
		}
		values := []any{
			li.Date,
			li.ItemType,
			li.Description,
			li.Hours.InexactFloat64(),
			li.Rate.InexactFloat64(),
			li.EffectiveAmount().InexactFloat64(),
			deduction,
		}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}
	row++

	totals := invoice.RecomputeTotals(inv.LineItems)
	for _, r := range [][]any{
		{"Subtotal", totals.Subtotal.InexactFloat64()},
		{"Deductions", totals.Deductions.InexactFloat64()},
		{"Total", totals.Total.InexactFloat64()},
	} {
		if err := setRow(f, row, []any{"", "", "", "", r[0], r[1]}); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(invoiceSheet, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ' || r == '_':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "coach"
	}
	return string(out)
}
