package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/money"
	"github.com/sangkips/dentalbill-api/pkg/printer"
)

// SlipHeader is printed at the top of every receipt slip
type SlipHeader struct {
	ClinicName string
	Address    string
	Phone      string
	Footer     string
}

// PrintService prints stored receipts on the front desk thermal printer
type PrintService struct {
	receiptRepo repository.ReceiptRepository
	printer     printer.Printer
	header      SlipHeader
	width       int
	configured  bool
	log         zerolog.Logger
}

// NewPrintService creates a new print service. configured is false when the
// printer is the no-op device.
func NewPrintService(
	receiptRepo repository.ReceiptRepository,
	p printer.Printer,
	header SlipHeader,
	width int,
	configured bool,
	log zerolog.Logger,
) *PrintService {
	return &PrintService{
		receiptRepo: receiptRepo,
		printer:     p,
		header:      header,
		width:       width,
		configured:  configured,
		log:         log,
	}
}

// PrinterStatus reports whether a printer is set up and reachable
type PrinterStatus struct {
	Configured bool `json:"configured"`
	Ready      bool `json:"ready"`
}

// Status checks the printer connection
func (s *PrintService) Status(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.configured,
		Ready:      s.configured && s.printer.Ready(ctx),
	}
}

var errPrinterUnavailable = apperror.NewAppError(http.StatusServiceUnavailable, "Receipt printer is unavailable")

// PrintReceipt renders the stored receipt and sends it to the printer.
// Voided receipts are not printed.
func (s *PrintService) PrintReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if receipt.IsVoid() {
		return nil, apperror.ErrReceiptVoided
	}
	if !s.configured {
		return nil, errPrinterUnavailable
	}

	if err := s.printer.Print(ctx, RenderSlip(receipt, s.header, s.width)); err != nil {
		s.log.Error().Err(err).Str("receipt_no", receipt.ReceiptNo).Msg("print failed")
		return nil, errPrinterUnavailable
	}

	s.log.Info().Str("receipt_no", receipt.ReceiptNo).Msg("receipt printed")
	return receipt, nil
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// RenderSlip lays the stored amounts of r out as ESC/POS. Nothing is
// recomputed; the slip shows exactly what was saved.
func RenderSlip(r *entity.Receipt, h SlipHeader, width int) []byte {
	doc := printer.NewDocument(width)

	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.SizeDouble).
		Line(h.ClinicName).
		Size(printer.SizeNormal).
		Bold(false)
	if h.Address != "" {
		doc.Line(h.Address)
	}
	if h.Phone != "" {
		doc.Line(h.Phone)
	}

	doc.Align(printer.AlignLeft).
		Separator('-').
		Columns("Receipt:", r.ReceiptNo).
		Columns("Date:", r.IssuedAt.Format("2006-01-02 15:04"))
	if r.Patient != nil {
		doc.Columns("Patient:", r.Patient.Name)
	}
	if r.Doctor != nil {
		doc.Columns("Doctor:", r.Doctor.Name)
	}
	doc.Columns("Payment:", r.PaymentMethod.Label())

	doc.Separator('-').
		Columns("Treatment", money.DecimalCents(r.BaseCost))
	for _, line := range r.Services {
		doc.Columns(line.Name+" "+percent(line.Percentage), money.DecimalCents(line.Amount))
	}
	for _, ch := range r.Charges {
		name := ch.Description
		if name == "" {
			name = "Other charge"
		}
		doc.Columns(name, money.DecimalCents(ch.Amount))
	}

	doc.Separator('-').
		Columns("Subtotal", money.DecimalCents(r.Subtotal))
	if r.PaymentFeeAmount != 0 {
		doc.Columns("Card fee "+percent(r.PaymentFeePercentage), money.DecimalCents(r.PaymentFeeAmount))
	}
	if r.TerminalChargeAmount != 0 {
		doc.Columns("Terminal "+percent(r.TerminalChargeRate), money.DecimalCents(r.TerminalChargeAmount))
	}
	doc.Bold(true).
		Columns("TOTAL", money.FormatCents(r.Currency, r.Total)).
		Bold(false).
		Separator('-')

	footer := h.Footer
	if footer == "" {
		footer = "Thank you. Get well soon!"
	}
	doc.Align(printer.AlignCenter).
		Feed(1).
		Line(footer).
		Align(printer.AlignLeft).
		Cut()

	return doc.Bytes()
}
