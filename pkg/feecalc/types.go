package feecalc

import "strings"

// PaymentMethod identifies how a patient settles an invoice.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodOnline     PaymentMethod = "online"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodMastercard PaymentMethod = "mastercard"
	MethodUnion      PaymentMethod = "union"
)

// Methods lists every supported payment method in display order.
var Methods = []PaymentMethod{
	MethodCash,
	MethodOnline,
	MethodDebitCard,
	MethodCreditCard,
	MethodMastercard,
	MethodUnion,
}

// DefaultFeePercentages are the processor fees a fresh installation starts with.
// Operators change them at runtime; the calculator never reads this map.
var DefaultFeePercentages = map[PaymentMethod]float64{
	MethodCash:       0,
	MethodOnline:     0,
	MethodDebitCard:  0.5,
	MethodCreditCard: 1.2,
	MethodMastercard: 2.5,
	MethodUnion:      0,
}

// ParsePaymentMethod accepts the canonical value as well as the labels used on
// printed receipts ("Credit Card", "DEBIT-CARD").
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	m := PaymentMethod(norm)
	return m, m.Valid()
}

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// TerminalExempt reports whether the clinic waives the terminal charge for m.
func (m PaymentMethod) TerminalExempt() bool {
	return m == MethodCash || m == MethodUnion
}

// Label returns the human readable name printed on receipts.
func (m PaymentMethod) Label() string {
	switch m {
	case MethodCash:
		return "Cash"
	case MethodOnline:
		return "Online"
	case MethodDebitCard:
		return "Debit Card"
	case MethodCreditCard:
		return "Credit Card"
	case MethodMastercard:
		return "Mastercard"
	case MethodUnion:
		return "Union"
	}
	return string(m)
}

// ServiceSelection is a procedure chosen for the invoice. Percentage is applied
// to the base cost.
type ServiceSelection struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// OtherCharge is a free-form amount added to the subtotal as is.
type OtherCharge struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Payment pairs the chosen method with the fee percentage configured for it at
// the time of the call.
type Payment struct {
	Method        PaymentMethod `json:"method"`
	FeePercentage float64       `json:"fee_percentage"`
}

// TerminalChargePolicy is the clinic-imposed surcharge on card payments.
type TerminalChargePolicy struct {
	Enabled bool    `json:"enabled"`
	Rate    float64 `json:"rate"`
}

// Input carries everything ComputeInvoice needs. Service names must be unique.
type Input struct {
	BaseCost     float64              `json:"base_cost"`
	Services     []ServiceSelection   `json:"services"`
	OtherCharges []OtherCharge        `json:"other_charges"`
	Payment      Payment              `json:"payment"`
	Terminal     TerminalChargePolicy `json:"terminal"`
}

// ServiceAmount is one computed service line.
type ServiceAmount struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// Result is the full breakdown of an invoice in unrounded currency units.
// Every call builds a new Result; callers must treat it as read-only.
type Result struct {
	BaseCost              float64         `json:"base_cost"`
	ServiceAmounts        []ServiceAmount `json:"service_amounts"`
	ServicesTotal         float64         `json:"services_total"`
	OtherChargesTotal     float64         `json:"other_charges_total"`
	Subtotal              float64         `json:"subtotal"`
	PaymentFeeAmount      float64         `json:"payment_fee_amount"`
	AmountAfterPaymentFee float64         `json:"amount_after_payment_fee"`
	TerminalChargeAmount  float64         `json:"terminal_charge_amount"`
	Total                 float64         `json:"total"`
}

// Split is the practice-internal division of a service fee.
type Split struct {
	DoctorFee float64 `json:"doctor_fee"`
	ClinicFee float64 `json:"clinic_fee"`
}
