package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a person treated at the clinic. The IC number is the identity
// card number and is unique per patient.
type Patient struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	ICNumber    string         `gorm:"size:50;uniqueIndex;not null;column:ic_number" json:"ic_number"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Email       *string        `gorm:"size:255" json:"email,omitempty"`
	Address     *string        `gorm:"type:text" json:"address,omitempty"`
	DateOfBirth *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	Notes       *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedByID uuid.UUID      `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Receipts []Receipt `gorm:"foreignKey:PatientID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new patient
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Patient model
func (Patient) TableName() string {
	return "patients"
}
