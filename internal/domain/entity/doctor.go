package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Doctor is a treating practitioner. CommissionPercentage is the doctor's
// share of the services total on every receipt they are attached to.
type Doctor struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name                 string         `gorm:"size:255;not null" json:"name"`
	Email                *string        `gorm:"size:255" json:"email,omitempty"`
	Phone                *string        `gorm:"size:50" json:"phone,omitempty"`
	CommissionPercentage float64        `gorm:"not null;default:0" json:"commission_percentage"`
	Active               bool           `gorm:"default:true" json:"active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new doctor
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Doctor model
func (Doctor) TableName() string {
	return "doctors"
}
