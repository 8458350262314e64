package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

// ServiceRepository defines the interface for the service catalog
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	// GetByName matches case-insensitively
	GetByName(ctx context.Context, name string) (*entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]entity.Service, error)
}

// PaymentFeeRepository defines the interface for per-method fee percentages
type PaymentFeeRepository interface {
	List(ctx context.Context) ([]entity.PaymentMethodFee, error)
	GetByMethod(ctx context.Context, method feecalc.PaymentMethod) (*entity.PaymentMethodFee, error)
	// Upsert inserts the row or updates the fee of the existing one
	Upsert(ctx context.Context, fee *entity.PaymentMethodFee) error
}

// BillingSettingsRepository defines the interface for the clinic billing settings row
type BillingSettingsRepository interface {
	// Get returns (nil, nil) when the row has not been created yet
	Get(ctx context.Context) (*entity.BillingSettings, error)
	Save(ctx context.Context, settings *entity.BillingSettings) error
}

// FeeScheduleCache holds the assembled schedule between writes.
// Get returns (nil, nil) on a miss.
type FeeScheduleCache interface {
	Get(ctx context.Context) (*entity.FeeSchedule, error)
	Set(ctx context.Context, schedule *entity.FeeSchedule) error
	Invalidate(ctx context.Context) error
}
