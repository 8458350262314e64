package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service catalog repository
func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) GetByName(ctx context.Context, name string) (*entity.Service, error) {
	var service entity.Service
	err := r.db.WithContext(ctx).First(&service, "LOWER(name) = ?", entity.ServiceKey(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Service{}, "id = ?", id).Error
}

func (r *serviceRepository) List(ctx context.Context, activeOnly bool) ([]entity.Service, error) {
	var services []entity.Service
	query := r.db.WithContext(ctx).Model(&entity.Service{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("name ASC").Find(&services).Error
	return services, err
}

type paymentFeeRepository struct {
	db *gorm.DB
}

// NewPaymentFeeRepository creates a new payment fee repository
func NewPaymentFeeRepository(db *gorm.DB) domainRepo.PaymentFeeRepository {
	return &paymentFeeRepository{db: db}
}

func (r *paymentFeeRepository) List(ctx context.Context) ([]entity.PaymentMethodFee, error) {
	var fees []entity.PaymentMethodFee
	err := r.db.WithContext(ctx).Order("method ASC").Find(&fees).Error
	return fees, err
}

func (r *paymentFeeRepository) GetByMethod(ctx context.Context, method feecalc.PaymentMethod) (*entity.PaymentMethodFee, error) {
	var fee entity.PaymentMethodFee
	err := r.db.WithContext(ctx).First(&fee, "method = ?", method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &fee, err
}

func (r *paymentFeeRepository) Upsert(ctx context.Context, fee *entity.PaymentMethodFee) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "method"}},
		DoUpdates: clause.AssignmentColumns([]string{"fee_percentage", "updated_by_id", "updated_at"}),
	}).Create(fee).Error
}

type billingSettingsRepository struct {
	db *gorm.DB
}

// NewBillingSettingsRepository creates a new billing settings repository
func NewBillingSettingsRepository(db *gorm.DB) domainRepo.BillingSettingsRepository {
	return &billingSettingsRepository{db: db}
}

func (r *billingSettingsRepository) Get(ctx context.Context) (*entity.BillingSettings, error) {
	var settings entity.BillingSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &settings, err
}

func (r *billingSettingsRepository) Save(ctx context.Context, settings *entity.BillingSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
