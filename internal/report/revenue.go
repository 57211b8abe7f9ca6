// Package report builds the clinic revenue workbook: one row per session
// payment with the clinic/practitioner split, plus per-practitioner totals.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"klinik/internal/store"
)

var revenueColumns = []string{
	"Session Date", "Client", "Practitioner", "Fee",
	"Practitioner Share", "Clinic Share", "Payment Status",
}

// RevenueWorkbook writes an xlsx workbook for the given payment rows.
// Sheet "Payments" lists every row; sheet "Totals" aggregates per
// practitioner.
func RevenueWorkbook(payments []store.PaymentRow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Payments")
	if err := writeHeader(f, "Payments", revenueColumns); err != nil {
		return err
	}

	totals := make(map[string]*practitionerTotal)
	var order []string

	for i, p := range payments {
		row := i + 2
		values := []interface{}{
			p.SessionStart.Format("2006-01-02 15:04"),
			p.ClientName,
			p.PractitionerName,
			p.Amount,
			p.PractitionerAmount,
			p.ClinicAmount,
			p.PaymentStatus,
		}
		if err := writeRow(f, "Payments", row, values); err != nil {
			return err
		}

		t, ok := totals[p.PractitionerID]
		if !ok {
			t = &practitionerTotal{name: p.PractitionerName}
			totals[p.PractitionerID] = t
			order = append(order, p.PractitionerID)
		}
		t.sessions++
		t.fee += p.Amount
		t.practitioner += p.PractitionerAmount
		t.clinic += p.ClinicAmount
	}

	if _, err := f.NewSheet("Totals"); err != nil {
		return fmt.Errorf("create totals sheet: %w", err)
	}
	totalColumns := []string{"Practitioner", "Sessions", "Total Fees", "Practitioner Share", "Clinic Share"}
	if err := writeHeader(f, "Totals", totalColumns); err != nil {
		return err
	}
	for i, id := range order {
		t := totals[id]
		values := []interface{}{t.name, t.sessions, t.fee, t.practitioner, t.clinic}
		if err := writeRow(f, "Totals", i+2, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

type practitionerTotal struct {
	name         string
	sessions     int
	fee          float64
	practitioner float64
	clinic       float64
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	if err := writeRowValues(f, sheet, 1, toInterfaces(columns)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	return writeRowValues(f, sheet, row, values)
}

func writeRowValues(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
