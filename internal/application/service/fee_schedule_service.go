package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

// FeeScheduleProvider hands out the configuration a calculation runs with
type FeeScheduleProvider interface {
	CurrentSchedule(ctx context.Context) (*entity.FeeSchedule, error)
}

// FeeScheduleService manages the service catalog, the payment method fees and
// the billing settings, and assembles them into a FeeSchedule.
type FeeScheduleService struct {
	serviceRepo  repository.ServiceRepository
	feeRepo      repository.PaymentFeeRepository
	settingsRepo repository.BillingSettingsRepository
	cache        repository.FeeScheduleCache
	defaults     config.BillingConfig
	log          zerolog.Logger
}

// NewFeeScheduleService creates a new fee schedule service
func NewFeeScheduleService(
	serviceRepo repository.ServiceRepository,
	feeRepo repository.PaymentFeeRepository,
	settingsRepo repository.BillingSettingsRepository,
	cache repository.FeeScheduleCache,
	defaults config.BillingConfig,
	log zerolog.Logger,
) *FeeScheduleService {
	return &FeeScheduleService{
		serviceRepo:  serviceRepo,
		feeRepo:      feeRepo,
		settingsRepo: settingsRepo,
		cache:        cache,
		defaults:     defaults,
		log:          log,
	}
}

// CurrentSchedule returns the live schedule. The cache is consulted first;
// cache failures are logged and the schedule is read from the database.
func (s *FeeScheduleService) CurrentSchedule(ctx context.Context) (*entity.FeeSchedule, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("fee schedule cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	settings, err := s.GetBillingSettings(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.serviceRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	fees, err := s.feeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	schedule := entity.NewFeeSchedule(settings, services, fees)
	if err := s.cache.Set(ctx, schedule); err != nil {
		s.log.Warn().Err(err).Msg("fee schedule cache write failed")
	}
	return schedule, nil
}

func (s *FeeScheduleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Error().Err(err).Msg("fee schedule cache invalidation failed")
	}
}

func validPercentage(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0 && p <= 100
}

// ListServices returns the catalog
func (s *FeeScheduleService) ListServices(ctx context.Context, activeOnly bool) ([]entity.Service, error) {
	services, err := s.serviceRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []entity.Service{}
	}
	return services, nil
}

// CreateServiceInput represents the create catalog service input
type CreateServiceInput struct {
	Name        string
	Percentage  float64
	Description *string
}

// CreateService adds a service to the catalog
func (s *FeeScheduleService) CreateService(ctx context.Context, input *CreateServiceInput) (*entity.Service, error) {
	name := strings.TrimSpace(input.Name)

	var verr apperror.ValidationErrors
	if name == "" {
		verr.Add("name", "Name is required")
	}
	if !validPercentage(input.Percentage) {
		verr.Add("percentage", "Percentage must be between 0 and 100")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	existing, err := s.serviceRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A service with this name already exists")
	}

	service := &entity.Service{
		Name:        name,
		Percentage:  input.Percentage,
		Description: input.Description,
		Active:      true,
	}
	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return service, nil
}

// UpdateServiceInput represents the update catalog service input
type UpdateServiceInput struct {
	ID          uuid.UUID
	Name        *string
	Percentage  *float64
	Description *string
	Active      *bool
}

// UpdateService changes a catalog entry. Issued receipts keep the percentage
// they were computed with.
func (s *FeeScheduleService) UpdateService(ctx context.Context, input *UpdateServiceInput) (*entity.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, apperror.NewNotFoundError("Service")
	}

	var verr apperror.ValidationErrors
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			verr.Add("name", "Name cannot be empty")
		} else if entity.ServiceKey(name) != entity.ServiceKey(service.Name) {
			other, err := s.serviceRepo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != service.ID {
				return nil, apperror.NewConflictError("A service with this name already exists")
			}
		}
		service.Name = name
	}
	if input.Percentage != nil {
		if !validPercentage(*input.Percentage) {
			verr.Add("percentage", "Percentage must be between 0 and 100")
		} else {
			service.Percentage = *input.Percentage
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if input.Description != nil {
		service.Description = input.Description
	}
	if input.Active != nil {
		service.Active = *input.Active
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return service, nil
}

// DeleteService removes a catalog entry
func (s *FeeScheduleService) DeleteService(ctx context.Context, id uuid.UUID) error {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if service == nil {
		return apperror.NewNotFoundError("Service")
	}

	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ListPaymentFees returns one row per supported method in display order.
// Methods without a stored row are reported with a 0% fee.
func (s *FeeScheduleService) ListPaymentFees(ctx context.Context) ([]entity.PaymentMethodFee, error) {
	stored, err := s.feeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byMethod := make(map[feecalc.PaymentMethod]entity.PaymentMethodFee, len(stored))
	for _, f := range stored {
		byMethod[f.Method] = f
	}

	fees := make([]entity.PaymentMethodFee, 0, len(feecalc.Methods))
	for _, m := range feecalc.Methods {
		if f, ok := byMethod[m]; ok {
			fees = append(fees, f)
			continue
		}
		fees = append(fees, entity.PaymentMethodFee{Method: m})
	}
	return fees, nil
}

// UpdatePaymentFeeInput represents the update payment fee input
type UpdatePaymentFeeInput struct {
	Method        string
	FeePercentage float64
	ActorID       uuid.UUID
}

// UpdatePaymentFee sets the processor fee charged for a payment method
func (s *FeeScheduleService) UpdatePaymentFee(ctx context.Context, input *UpdatePaymentFeeInput) (*entity.PaymentMethodFee, error) {
	method, ok := feecalc.ParsePaymentMethod(input.Method)
	if !ok {
		return nil, apperror.NewNotFoundError("Payment method")
	}
	if !validPercentage(input.FeePercentage) {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "fee_percentage", Message: "Fee percentage must be between 0 and 100"},
		})
	}

	actor := input.ActorID
	fee := &entity.PaymentMethodFee{
		Method:        method,
		FeePercentage: input.FeePercentage,
		UpdatedByID:   &actor,
	}
	if err := s.feeRepo.Upsert(ctx, fee); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	stored, err := s.feeRepo.GetByMethod(ctx, method)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return fee, nil
	}
	return stored, nil
}

// GetBillingSettings returns the settings row, creating it from the
// configured defaults on first use.
func (s *FeeScheduleService) GetBillingSettings(ctx context.Context) (*entity.BillingSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &entity.BillingSettings{
		Currency:              s.defaults.Currency,
		TerminalChargeEnabled: s.defaults.TerminalChargeEnabled,
		TerminalChargeRate:    s.defaults.TerminalChargeRate,
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateBillingSettingsInput represents the update billing settings input
type UpdateBillingSettingsInput struct {
	Currency              *string
	TerminalChargeEnabled *bool
	TerminalChargeRate    *float64
	ActorID               uuid.UUID
}

// UpdateBillingSettings changes the currency or the terminal charge policy
func (s *FeeScheduleService) UpdateBillingSettings(ctx context.Context, input *UpdateBillingSettingsInput) (*entity.BillingSettings, error) {
	settings, err := s.GetBillingSettings(ctx)
	if err != nil {
		return nil, err
	}

	var verr apperror.ValidationErrors
	if input.Currency != nil {
		currency := strings.TrimSpace(*input.Currency)
		if currency == "" || len(currency) > 10 {
			verr.Add("currency", "Currency must be 1 to 10 characters")
		} else {
			settings.Currency = currency
		}
	}
	if input.TerminalChargeRate != nil {
		if !validPercentage(*input.TerminalChargeRate) {
			verr.Add("terminal_charge_rate", "Terminal charge rate must be between 0 and 100")
		} else {
			settings.TerminalChargeRate = *input.TerminalChargeRate
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if input.TerminalChargeEnabled != nil {
		settings.TerminalChargeEnabled = *input.TerminalChargeEnabled
	}

	actor := input.ActorID
	settings.UpdatedByID = &actor
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return settings, nil
}
