package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

// PaymentMethodFee is the processor fee percentage configured for one method
type PaymentMethodFee struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	Method        feecalc.PaymentMethod `gorm:"size:30;uniqueIndex;not null" json:"method"`
	FeePercentage float64               `gorm:"not null;default:0" json:"fee_percentage"`
	UpdatedByID   *uuid.UUID            `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new fee row
func (f *PaymentMethodFee) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentMethodFee model
func (PaymentMethodFee) TableName() string {
	return "payment_method_fees"
}

// BillingSettings is the clinic-wide billing configuration. There is a single
// row; it is created on first read if missing.
type BillingSettings struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Currency              string     `gorm:"size:10;default:'RM'" json:"currency"`
	TerminalChargeEnabled bool       `gorm:"default:true" json:"terminal_charge_enabled"`
	TerminalChargeRate    float64    `gorm:"not null;default:8" json:"terminal_charge_rate"`
	UpdatedByID           *uuid.UUID `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating the settings row
func (s *BillingSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillingSettings model
func (BillingSettings) TableName() string {
	return "billing_settings"
}

// TerminalPolicy returns the settings as the calculator's policy value
func (s *BillingSettings) TerminalPolicy() feecalc.TerminalChargePolicy {
	return feecalc.TerminalChargePolicy{
		Enabled: s.TerminalChargeEnabled,
		Rate:    s.TerminalChargeRate,
	}
}
