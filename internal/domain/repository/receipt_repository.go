package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	// Create stores the receipt with its service and charge lines
	Create(ctx context.Context, receipt *entity.Receipt) error
	// GetByID returns the receipt with lines, patient and doctor loaded
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Receipt, error)
	// Update saves the receipt and replaces all of its lines
	Update(ctx context.Context, receipt *entity.Receipt) error
	Void(ctx context.Context, id uuid.UUID, voidedAt time.Time, reason *string) error
	List(ctx context.Context, params *ReceiptFilterParams) ([]entity.Receipt, int64, error)
	ListWithCursor(ctx context.Context, params *ReceiptCursorFilterParams) ([]entity.Receipt, error)
	// FindInBatches walks the receipts matching filter with lines loaded,
	// oldest first, calling fn for every batch
	FindInBatches(ctx context.Context, filter ReceiptFilter, batchSize int, fn func(batch []entity.Receipt) error) error
}

// ReceiptFilter contains the filters shared by every receipt query
type ReceiptFilter struct {
	Search    string
	Status    *enum.ReceiptStatus
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Method    *feecalc.PaymentMethod
	StartDate *time.Time
	EndDate   *time.Time
}

// ReceiptFilterParams contains filtering parameters for page-based receipt queries
type ReceiptFilterParams struct {
	ReceiptFilter
	Pagination *pagination.PaginationParams
	SortBy     string
	SortOrder  string
}

// ReceiptCursorFilterParams contains cursor-based filtering for receipt queries
type ReceiptCursorFilterParams struct {
	ReceiptFilter
	Cursor *pagination.CursorParams
}
