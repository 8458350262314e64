package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RevenueTotalsResult sums the stored amounts of issued receipts
type RevenueTotalsResult struct {
	ReceiptCount         int64   `json:"receipt_count"`
	BaseCost             float64 `json:"base_cost"`
	ServicesTotal        float64 `json:"services_total"`
	OtherChargesTotal    float64 `json:"other_charges_total"`
	Subtotal             float64 `json:"subtotal"`
	PaymentFeeAmount     float64 `json:"payment_fee_amount"`
	TerminalChargeAmount float64 `json:"terminal_charge_amount"`
	Total                float64 `json:"total"`
}

// MethodTotalResult is the revenue taken through one payment method
type MethodTotalResult struct {
	Method               string  `json:"method"`
	ReceiptCount         int64   `json:"receipt_count"`
	PaymentFeeAmount     float64 `json:"payment_fee_amount"`
	TerminalChargeAmount float64 `json:"terminal_charge_amount"`
	Total                float64 `json:"total"`
}

// DoctorServiceResult groups services totals and the stored doctor/clinic
// split by doctor and the commission percentage stored on the receipts
type DoctorServiceResult struct {
	DoctorID         *uuid.UUID `json:"doctor_id"`
	DoctorName       string     `json:"doctor_name"`
	DoctorPercentage float64    `json:"doctor_percentage"`
	ReceiptCount     int64      `json:"receipt_count"`
	ServicesTotal    float64    `json:"services_total"`
	DoctorFee        float64    `json:"doctor_fee"`
	ClinicFee        float64    `json:"clinic_fee"`
}

// ReportRepository defines aggregation queries over issued receipts in
// [from, to)
type ReportRepository interface {
	GetRevenueTotals(ctx context.Context, from, to time.Time) (*RevenueTotalsResult, error)
	GetTotalsByMethod(ctx context.Context, from, to time.Time) ([]MethodTotalResult, error)
	GetDoctorServiceTotals(ctx context.Context, from, to time.Time) ([]DoctorServiceResult, error)
}
