// Package export writes receipt listings as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/pkg/money"
)

// Format is an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Receipts"

// ParseFormat accepts "csv" and "xlsx", case-insensitively
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, true
	}
	return "", false
}

// ContentType is the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds the attachment name for an export of [from, to)
func (f Format) Filename(from, to time.Time) string {
	return fmt.Sprintf("receipts_%s_%s.%s", from.Format("20060102"), to.Format("20060102"), f)
}

// Header lists the exported columns in order
var Header = []string{
	"Receipt No", "Issued At", "Status", "Patient", "IC Number", "Doctor", "Payment Method",
	"Base Cost", "Services", "Services Total", "Other Charges Total", "Subtotal",
	"Payment Fee %", "Payment Fee", "Terminal Rate %", "Terminal Charge", "Total",
	"Doctor %", "Doctor Fee", "Clinic Fee",
}

// ReceiptWriter receives receipts one at a time. Close flushes the file to
// the underlying writer.
type ReceiptWriter interface {
	Write(r *entity.Receipt) error
	Close() error
}

// NewReceiptWriter writes the header and returns a writer for format
func NewReceiptWriter(format Format, w io.Writer) (ReceiptWriter, error) {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			return nil, err
		}
		return &csvWriter{w: cw}, nil
	case FormatXLSX:
		return newXLSXWriter(w)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func describe(r *entity.Receipt) (patient, icNumber, doctor, services string) {
	if r.Patient != nil {
		patient, icNumber = r.Patient.Name, r.Patient.ICNumber
	}
	if r.Doctor != nil {
		doctor = r.Doctor.Name
	}
	names := make([]string, 0, len(r.Services))
	for _, s := range r.Services {
		names = append(names, fmt.Sprintf("%s (%s%%)", s.Name, formatPercent(s.Percentage)))
	}
	return patient, icNumber, doctor, strings.Join(names, "; ")
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

type csvWriter struct {
	w *csv.Writer
}

func (c *csvWriter) Write(r *entity.Receipt) error {
	patient, ic, doctor, services := describe(r)
	return c.w.Write([]string{
		r.ReceiptNo,
		r.IssuedAt.Format(time.RFC3339),
		r.Status.String(),
		patient,
		ic,
		doctor,
		r.PaymentMethod.Label(),
		money.DecimalCents(r.BaseCost),
		services,
		money.DecimalCents(r.ServicesTotal),
		money.DecimalCents(r.OtherChargesTotal),
		money.DecimalCents(r.Subtotal),
		formatPercent(r.PaymentFeePercentage),
		money.DecimalCents(r.PaymentFeeAmount),
		formatPercent(r.TerminalChargeRate),
		money.DecimalCents(r.TerminalChargeAmount),
		money.DecimalCents(r.Total),
		formatPercent(r.DoctorPercentage),
		money.DecimalCents(r.DoctorFee),
		money.DecimalCents(r.ClinicFee),
	})
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

type xlsxWriter struct {
	out  io.Writer
	file *excelize.File
	row  int
}

func newXLSXWriter(out io.Writer) (*xlsxWriter, error) {
	file := excelize.NewFile()
	idx, err := file.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	file.SetActiveSheet(idx)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	x := &xlsxWriter{out: out, file: file, row: 1}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := x.appendRow(header); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *xlsxWriter) appendRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.file.SetSheetRow(sheetName, cell, &values); err != nil {
		return err
	}
	x.row++
	return nil
}

func (x *xlsxWriter) Write(r *entity.Receipt) error {
	patient, ic, doctor, services := describe(r)
	return x.appendRow([]interface{}{
		r.ReceiptNo,
		r.IssuedAt.Format(time.RFC3339),
		r.Status.String(),
		patient,
		ic,
		doctor,
		r.PaymentMethod.Label(),
		money.FromCents(r.BaseCost),
		services,
		money.FromCents(r.ServicesTotal),
		money.FromCents(r.OtherChargesTotal),
		money.FromCents(r.Subtotal),
		r.PaymentFeePercentage,
		money.FromCents(r.PaymentFeeAmount),
		r.TerminalChargeRate,
		money.FromCents(r.TerminalChargeAmount),
		money.FromCents(r.Total),
		r.DoctorPercentage,
		money.FromCents(r.DoctorFee),
		money.FromCents(r.ClinicFee),
	})
}

func (x *xlsxWriter) Close() error {
	defer x.file.Close()
	return x.file.Write(x.out)
}
