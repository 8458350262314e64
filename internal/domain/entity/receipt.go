package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/money"
)

// Receipt is an issued invoice. Every intermediate amount of the calculation
// is stored in cents next to the configuration it was computed with, so a
// receipt never depends on the live fee schedule after it is written.
type Receipt struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptNo   string             `gorm:"size:50;uniqueIndex;not null" json:"receipt_no"`
	PatientID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    *uuid.UUID         `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	CreatedByID uuid.UUID          `gorm:"type:uuid;not null;index" json:"created_by_id"`
	Status      enum.ReceiptStatus `gorm:"default:0;index" json:"status"`
	IssuedAt    time.Time          `gorm:"not null;index" json:"issued_at"`
	Currency    string             `gorm:"size:10;not null" json:"currency"`

	PaymentMethod         feecalc.PaymentMethod `gorm:"size:30;not null;index" json:"payment_method"`
	PaymentFeePercentage  float64               `gorm:"not null;default:0" json:"payment_fee_percentage"`
	TerminalChargeEnabled bool                  `gorm:"not null" json:"terminal_charge_enabled"`
	TerminalChargeRate    float64               `gorm:"not null;default:0" json:"terminal_charge_rate"`
	DoctorPercentage      float64               `gorm:"not null;default:0" json:"doctor_percentage"`

	BaseCost              int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	ServicesTotal         int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	OtherChargesTotal     int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	Subtotal              int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	PaymentFeeAmount      int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	AmountAfterPaymentFee int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	TerminalChargeAmount  int64 `gorm:"not null" json:"-"`           // Stored in cents, excluded from JSON
	Total                 int64 `gorm:"not null;index" json:"-"`     // Stored in cents, excluded from JSON
	DoctorFee             int64 `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	ClinicFee             int64 `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON

	Notes      *string        `gorm:"type:text" json:"notes,omitempty"`
	VoidedAt   *time.Time     `json:"voided_at,omitempty"`
	VoidReason *string        `gorm:"type:text" json:"void_reason,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Patient  *Patient             `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor   *Doctor              `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Services []ReceiptServiceLine `gorm:"foreignKey:ReceiptID" json:"services"`
	Charges  []ReceiptChargeLine  `gorm:"foreignKey:ReceiptID" json:"other_charges"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r Receipt) MarshalJSON() ([]byte, error) {
	type Alias Receipt
	return json.Marshal(&struct {
		Alias
		BaseCost              float64 `json:"base_cost"`
		ServicesTotal         float64 `json:"services_total"`
		OtherChargesTotal     float64 `json:"other_charges_total"`
		Subtotal              float64 `json:"subtotal"`
		PaymentFeeAmount      float64 `json:"payment_fee_amount"`
		AmountAfterPaymentFee float64 `json:"amount_after_payment_fee"`
		TerminalChargeAmount  float64 `json:"terminal_charge_amount"`
		Total                 float64 `json:"total"`
		TotalDisplay          string  `json:"total_display"`
		DoctorFee             float64 `json:"doctor_fee"`
		ClinicFee             float64 `json:"clinic_fee"`
	}{
		Alias:                 Alias(r),
		BaseCost:              money.FromCents(r.BaseCost),
		ServicesTotal:         money.FromCents(r.ServicesTotal),
		OtherChargesTotal:     money.FromCents(r.OtherChargesTotal),
		Subtotal:              money.FromCents(r.Subtotal),
		PaymentFeeAmount:      money.FromCents(r.PaymentFeeAmount),
		AmountAfterPaymentFee: money.FromCents(r.AmountAfterPaymentFee),
		TerminalChargeAmount:  money.FromCents(r.TerminalChargeAmount),
		Total:                 money.FromCents(r.Total),
		TotalDisplay:          money.FormatCents(r.Currency, r.Total),
		DoctorFee:             money.FromCents(r.DoctorFee),
		ClinicFee:             money.FromCents(r.ClinicFee),
	})
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// IsVoid reports whether the receipt has been voided
func (r *Receipt) IsVoid() bool {
	return r.Status == enum.ReceiptStatusVoid
}

// ApplyCalculation overwrites every stored amount, line and configuration
// snapshot with a fresh calculation. Each field is rounded to cents on its
// own; Total is rounded once from the unrounded total. The doctor share of
// the services total is rounded and the clinic share is what remains, so the
// two always add up to ServicesTotal exactly.
func (r *Receipt) ApplyCalculation(in feecalc.Input, res feecalc.Result, doctorPercentage float64, serviceIDs map[string]uuid.UUID) {
	r.PaymentMethod = in.Payment.Method
	r.PaymentFeePercentage = in.Payment.FeePercentage
	r.TerminalChargeEnabled = in.Terminal.Enabled
	r.TerminalChargeRate = in.Terminal.Rate
	r.DoctorPercentage = doctorPercentage

	r.BaseCost = money.ToCents(res.BaseCost)
	r.ServicesTotal = money.ToCents(res.ServicesTotal)
	r.OtherChargesTotal = money.ToCents(res.OtherChargesTotal)
	r.Subtotal = money.ToCents(res.Subtotal)
	r.PaymentFeeAmount = money.ToCents(res.PaymentFeeAmount)
	r.AmountAfterPaymentFee = money.ToCents(res.AmountAfterPaymentFee)
	r.TerminalChargeAmount = money.ToCents(res.TerminalChargeAmount)
	r.Total = money.ToCents(res.Total)

	split := feecalc.ComputeClinicDoctorSplit(res.ServicesTotal, doctorPercentage)
	r.DoctorFee = money.ToCents(split.DoctorFee)
	r.ClinicFee = r.ServicesTotal - r.DoctorFee

	r.Services = make([]ReceiptServiceLine, 0, len(res.ServiceAmounts))
	for i, sa := range res.ServiceAmounts {
		line := ReceiptServiceLine{
			ReceiptID:  r.ID,
			Name:       sa.Name,
			Percentage: sa.Percentage,
			Amount:     money.ToCents(sa.Amount),
			Position:   i,
		}
		if id, ok := serviceIDs[ServiceKey(sa.Name)]; ok {
			svcID := id
			line.ServiceID = &svcID
		}
		r.Services = append(r.Services, line)
	}

	r.Charges = make([]ReceiptChargeLine, 0, len(in.OtherCharges))
	for _, ch := range in.OtherCharges {
		if ch.Amount <= 0 {
			continue
		}
		r.Charges = append(r.Charges, ReceiptChargeLine{
			ReceiptID:   r.ID,
			Description: ch.Description,
			Amount:      money.ToCents(ch.Amount),
			Position:    len(r.Charges),
		})
	}
}

// CalculatorInput rebuilds the calculation input from the stored snapshot
func (r *Receipt) CalculatorInput() feecalc.Input {
	in := feecalc.Input{
		BaseCost: money.FromCents(r.BaseCost),
		Payment: feecalc.Payment{
			Method:        r.PaymentMethod,
			FeePercentage: r.PaymentFeePercentage,
		},
		Terminal: feecalc.TerminalChargePolicy{
			Enabled: r.TerminalChargeEnabled,
			Rate:    r.TerminalChargeRate,
		},
	}
	for _, line := range r.Services {
		in.Services = append(in.Services, feecalc.ServiceSelection{Name: line.Name, Percentage: line.Percentage})
	}
	for _, line := range r.Charges {
		in.OtherCharges = append(in.OtherCharges, feecalc.OtherCharge{Description: line.Description, Amount: money.FromCents(line.Amount)})
	}
	return in
}

// ReceiptServiceLine is one service on a receipt with its percentage frozen
// at issue time
type ReceiptServiceLine struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ServiceID  *uuid.UUID `gorm:"type:uuid;index" json:"service_id,omitempty"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Percentage float64    `gorm:"not null" json:"percentage"`
	Amount     int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Position   int        `gorm:"not null" json:"position"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (l ReceiptServiceLine) MarshalJSON() ([]byte, error) {
	type Alias ReceiptServiceLine
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(l),
		Amount: money.FromCents(l.Amount),
	})
}

// BeforeCreate generates a UUID before creating a new line
func (l *ReceiptServiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptServiceLine model
func (ReceiptServiceLine) TableName() string {
	return "receipt_services"
}

// ReceiptChargeLine is a free-form charge on a receipt
type ReceiptChargeLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID   uuid.UUID `gorm:"type:uuid;not null;index" json:"receipt_id"`
	Description string    `gorm:"size:255" json:"description"`
	Amount      int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Position    int       `gorm:"not null" json:"position"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (l ReceiptChargeLine) MarshalJSON() ([]byte, error) {
	type Alias ReceiptChargeLine
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(l),
		Amount: money.FromCents(l.Amount),
	})
}

// BeforeCreate generates a UUID before creating a new line
func (l *ReceiptChargeLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptChargeLine model
func (ReceiptChargeLine) TableName() string {
	return "receipt_charges"
}
