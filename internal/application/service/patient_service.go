package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

// PatientService handles patient-related operations
type PatientService struct {
	patientRepo repository.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo repository.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// NormalizeICNumber strips spaces and dashes so "880101-14-5566" and
// "880101145566" identify the same patient.
func NormalizeICNumber(ic string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(ic))
}

// CreatePatientInput represents the create patient input
type CreatePatientInput struct {
	CreatedByID uuid.UUID
	Name        string
	ICNumber    string
	Phone       *string
	Email       *string
	Address     *string
	DateOfBirth *time.Time
	Notes       *string
}

// CreatePatient registers a new patient
func (s *PatientService) CreatePatient(ctx context.Context, input *CreatePatientInput) (*entity.Patient, error) {
	name := strings.TrimSpace(input.Name)
	ic := NormalizeICNumber(input.ICNumber)

	var verr apperror.ValidationErrors
	if name == "" {
		verr.Add("name", "Name is required")
	}
	if ic == "" {
		verr.Add("ic_number", "IC number is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	existing, err := s.patientRepo.GetByICNumber(ctx, ic)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A patient with this IC number already exists")
	}

	patient := &entity.Patient{
		Name:        name,
		ICNumber:    ic,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		DateOfBirth: input.DateOfBirth,
		Notes:       input.Notes,
		CreatedByID: input.CreatedByID,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NewNotFoundError("Patient")
	}
	return patient, nil
}

// ListPatients retrieves patients with pagination
func (s *PatientService) ListPatients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Patient], error) {
	params.Validate()

	patients, total, err := s.patientRepo.List(ctx, params, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(patients, pag), nil
}

// UpdatePatientInput represents the update patient input
type UpdatePatientInput struct {
	Name        *string
	ICNumber    *string
	Phone       *string
	Email       *string
	Address     *string
	DateOfBirth *time.Time
	Notes       *string
}

// UpdatePatient updates an existing patient
func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, input *UpdatePatientInput) (*entity.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Name cannot be empty"}})
		}
		patient.Name = name
	}
	if input.ICNumber != nil {
		ic := NormalizeICNumber(*input.ICNumber)
		if ic == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "ic_number", Message: "IC number cannot be empty"}})
		}
		if ic != patient.ICNumber {
			other, err := s.patientRepo.GetByICNumber(ctx, ic)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != patient.ID {
				return nil, apperror.NewConflictError("A patient with this IC number already exists")
			}
		}
		patient.ICNumber = ic
	}
	if input.Phone != nil {
		patient.Phone = input.Phone
	}
	if input.Email != nil {
		patient.Email = input.Email
	}
	if input.Address != nil {
		patient.Address = input.Address
	}
	if input.DateOfBirth != nil {
		patient.DateOfBirth = input.DateOfBirth
	}
	if input.Notes != nil {
		patient.Notes = input.Notes
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// DeletePatient deletes a patient
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, id); err != nil {
		return err
	}
	return s.patientRepo.Delete(ctx, id)
}
