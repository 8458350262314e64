package request

// CreatePatientRequest represents a patient registration request.
// DateOfBirth uses the YYYY-MM-DD layout.
type CreatePatientRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	ICNumber    string  `json:"ic_number" binding:"required,max=50"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	Notes       *string `json:"notes"`
}

// UpdatePatientRequest represents a patient update request
type UpdatePatientRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=255"`
	ICNumber    *string `json:"ic_number" binding:"omitempty,max=50"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	Notes       *string `json:"notes"`
}

// CreateDoctorRequest represents a doctor creation request
type CreateDoctorRequest struct {
	Name                 string  `json:"name" binding:"required,min=2,max=255"`
	Email                *string `json:"email" binding:"omitempty,email"`
	Phone                *string `json:"phone" binding:"omitempty,max=50"`
	CommissionPercentage float64 `json:"commission_percentage"`
}

// UpdateDoctorRequest represents a doctor update request
type UpdateDoctorRequest struct {
	Name                 *string  `json:"name" binding:"omitempty,min=2,max=255"`
	Email                *string  `json:"email" binding:"omitempty,email"`
	Phone                *string  `json:"phone" binding:"omitempty,max=50"`
	CommissionPercentage *float64 `json:"commission_percentage"`
	Active               *bool    `json:"active"`
}
