package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

type MockPrinter struct{ mock.Mock }

func (m *MockPrinter) Print(ctx context.Context, data []byte) error {
	return m.Called(ctx, data).Error(0)
}

func (m *MockPrinter) Ready(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func printedReceipt() *entity.Receipt {
	return &entity.Receipt{
		ID:                    uuid.New(),
		ReceiptNo:             "RC-20260314-ABCD1234",
		IssuedAt:              time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Currency:              "RM",
		PaymentMethod:         feecalc.MethodCreditCard,
		PaymentFeePercentage:  1.2,
		TerminalChargeEnabled: true,
		TerminalChargeRate:    8,
		BaseCost:              10000,
		ServicesTotal:         2000,
		OtherChargesTotal:     1000,
		Subtotal:              13000,
		PaymentFeeAmount:      156,
		AmountAfterPaymentFee: 13156,
		TerminalChargeAmount:  1052,
		Total:                 14208,
		Patient:               &entity.Patient{Name: "Siti Aminah"},
		Doctor:                &entity.Doctor{Name: "Dr Tan"},
		Services:              []entity.ReceiptServiceLine{{Name: "Scaling", Percentage: 20, Amount: 2000}},
		Charges:               []entity.ReceiptChargeLine{{Description: "Lab", Amount: 1000}},
	}
}

func TestRenderSlip(t *testing.T) {
	out := string(RenderSlip(printedReceipt(), SlipHeader{ClinicName: "Klinik Gigi Senyum", Phone: "03-1234 5678"}, 48))

	for _, want := range []string{
		"Klinik Gigi Senyum",
		"03-1234 5678",
		"RC-20260314-ABCD1234",
		"2026-03-14 10:30",
		"Siti Aminah",
		"Dr Tan",
		"Credit Card",
		"Scaling 20%",
		"Lab",
		"130.00",
		"Card fee 1.2%",
		"1.56",
		"Terminal 8%",
		"10.52",
		"RM 142.08",
		"Thank you. Get well soon!",
	} {
		assert.Contains(t, out, want)
	}
	// the doctor share is internal and never printed
	assert.NotContains(t, out, "Doctor fee")
}

func TestRenderSlip_CashOmitsFees(t *testing.T) {
	r := printedReceipt()
	r.PaymentMethod = feecalc.MethodCash
	r.PaymentFeeAmount, r.TerminalChargeAmount = 0, 0
	r.Doctor = nil

	out := string(RenderSlip(r, SlipHeader{ClinicName: "Klinik", Footer: "Terima kasih"}, 32))
	assert.NotContains(t, out, "Card fee")
	assert.NotContains(t, out, "Terminal")
	assert.NotContains(t, out, "Doctor:")
	assert.Contains(t, out, "Terima kasih")
}

func TestPrintService_PrintReceipt(t *testing.T) {
	repo := new(MockReceiptRepository)
	p := new(MockPrinter)
	svc := NewPrintService(repo, p, SlipHeader{ClinicName: "Klinik"}, 32, true, zerolog.Nop())

	r := printedReceipt()
	repo.On("GetByID", mock.Anything, r.ID).Return(r, nil)
	p.On("Print", mock.Anything, mock.MatchedBy(func(data []byte) bool {
		return bytes.Contains(data, []byte(r.ReceiptNo))
	})).Return(nil).Once()

	got, err := svc.PrintReceipt(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ReceiptNo, got.ReceiptNo)
	p.AssertExpectations(t)
}

func TestPrintService_Errors(t *testing.T) {
	repo := new(MockReceiptRepository)
	p := new(MockPrinter)
	svc := NewPrintService(repo, p, SlipHeader{ClinicName: "Klinik"}, 32, true, zerolog.Nop())

	missing := uuid.New()
	repo.On("GetByID", mock.Anything, missing).Return(nil, nil)
	_, err := svc.PrintReceipt(context.Background(), missing)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	void := printedReceipt()
	void.Status = enum.ReceiptStatusVoid
	repo.On("GetByID", mock.Anything, void.ID).Return(void, nil)
	_, err = svc.PrintReceipt(context.Background(), void.ID)
	assert.ErrorIs(t, err, apperror.ErrReceiptVoided)

	jammed := printedReceipt()
	repo.On("GetByID", mock.Anything, jammed.ID).Return(jammed, nil)
	p.On("Print", mock.Anything, mock.Anything).Return(errors.New("paper out"))
	_, err = svc.PrintReceipt(context.Background(), jammed.ID)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.GetAppError(err).Code)

	p.AssertNumberOfCalls(t, "Print", 1)
}

func TestPrintService_NotConfigured(t *testing.T) {
	repo := new(MockReceiptRepository)
	p := new(MockPrinter)
	svc := NewPrintService(repo, p, SlipHeader{}, 32, false, zerolog.Nop())

	assert.Equal(t, &PrinterStatus{Configured: false, Ready: false}, svc.Status(context.Background()))

	r := printedReceipt()
	repo.On("GetByID", mock.Anything, r.ID).Return(r, nil)
	_, err := svc.PrintReceipt(context.Background(), r.ID)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.GetAppError(err).Code)
	p.AssertNotCalled(t, "Print", mock.Anything, mock.Anything)
}

func TestPrintService_Status(t *testing.T) {
	p := new(MockPrinter)
	p.On("Ready", mock.Anything).Return(true)
	svc := NewPrintService(new(MockReceiptRepository), p, SlipHeader{}, 32, true, zerolog.Nop())

	assert.Equal(t, &PrinterStatus{Configured: true, Ready: true}, svc.Status(context.Background()))
}
