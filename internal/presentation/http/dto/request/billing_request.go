package request

import (
	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

// CreateServiceRequest adds a service to the catalog
type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Percentage  float64 `json:"percentage"`
	Description *string `json:"description"`
}

// UpdateServiceRequest edits a catalog service
type UpdateServiceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	Percentage  *float64 `json:"percentage"`
	Description *string  `json:"description"`
	Active      *bool    `json:"active"`
}

// UpdatePaymentFeeRequest sets the fee for one payment method
type UpdatePaymentFeeRequest struct {
	FeePercentage *float64 `json:"fee_percentage" binding:"required"`
}

// UpdateBillingSettingsRequest edits the clinic wide billing settings
type UpdateBillingSettingsRequest struct {
	Currency              *string  `json:"currency" binding:"omitempty,min=1,max=10"`
	TerminalChargeEnabled *bool    `json:"terminal_charge_enabled"`
	TerminalChargeRate    *float64 `json:"terminal_charge_rate"`
}

// ReceiptRequest is the body of the preview, create and update receipt calls.
// Amounts are validated by the billing service so the caller gets field errors.
type ReceiptRequest struct {
	PatientID     uuid.UUID             `json:"patient_id"`
	DoctorID      *uuid.UUID            `json:"doctor_id"`
	BaseCost      float64               `json:"base_cost"`
	Services      []string              `json:"services"`
	OtherCharges  []feecalc.OtherCharge `json:"other_charges"`
	PaymentMethod string                `json:"payment_method"`
	Notes         *string               `json:"notes"`
}

// VoidReceiptRequest optionally records why a receipt was voided
type VoidReceiptRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}
