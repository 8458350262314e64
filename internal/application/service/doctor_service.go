package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

// DoctorService handles doctor-related operations
type DoctorService struct {
	doctorRepo repository.DoctorRepository
}

// NewDoctorService creates a new doctor service
func NewDoctorService(doctorRepo repository.DoctorRepository) *DoctorService {
	return &DoctorService{doctorRepo: doctorRepo}
}

// CreateDoctorInput represents the create doctor input
type CreateDoctorInput struct {
	Name                 string
	Email                *string
	Phone                *string
	CommissionPercentage float64
}

// CreateDoctor registers a treating doctor
func (s *DoctorService) CreateDoctor(ctx context.Context, input *CreateDoctorInput) (*entity.Doctor, error) {
	name := strings.TrimSpace(input.Name)

	var verr apperror.ValidationErrors
	if name == "" {
		verr.Add("name", "Name is required")
	}
	if !validPercentage(input.CommissionPercentage) {
		verr.Add("commission_percentage", "Commission percentage must be between 0 and 100")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	doctor := &entity.Doctor{
		Name:                 name,
		Email:                input.Email,
		Phone:                input.Phone,
		CommissionPercentage: input.CommissionPercentage,
		Active:               true,
	}

	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, err
	}

	return doctor, nil
}

// GetDoctor retrieves a doctor by ID
func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.NewNotFoundError("Doctor")
	}
	return doctor, nil
}

// ListDoctors retrieves doctors with pagination
func (s *DoctorService) ListDoctors(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) (*pagination.PaginatedResult[entity.Doctor], error) {
	params.Validate()

	doctors, total, err := s.doctorRepo.List(ctx, params, strings.TrimSpace(search), activeOnly)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(doctors, pag), nil
}

// UpdateDoctorInput represents the update doctor input
type UpdateDoctorInput struct {
	Name                 *string
	Email                *string
	Phone                *string
	CommissionPercentage *float64
	Active               *bool
}

// UpdateDoctor updates a doctor. A new commission applies to receipts
// written afterwards only.
func (s *DoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, input *UpdateDoctorInput) (*entity.Doctor, error) {
	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	var verr apperror.ValidationErrors
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name == "" {
			verr.Add("name", "Name cannot be empty")
		} else {
			doctor.Name = name
		}
	}
	if input.CommissionPercentage != nil {
		if !validPercentage(*input.CommissionPercentage) {
			verr.Add("commission_percentage", "Commission percentage must be between 0 and 100")
		} else {
			doctor.CommissionPercentage = *input.CommissionPercentage
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if input.Email != nil {
		doctor.Email = input.Email
	}
	if input.Phone != nil {
		doctor.Phone = input.Phone
	}
	if input.Active != nil {
		doctor.Active = *input.Active
	}

	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, err
	}

	return doctor, nil
}

// DeleteDoctor deletes a doctor
func (s *DoctorService) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetDoctor(ctx, id); err != nil {
		return err
	}
	return s.doctorRepo.Delete(ctx, id)
}
