package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Charges", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Omit("Patient", "Doctor").Create(receipt).Error
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(preloadLines).
		Preload("Patient").
		Preload("Doctor").
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(preloadLines).
		First(&receipt, "receipt_no = ?", receiptNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

// Update rewrites the receipt row and swaps its lines inside one
// transaction, so readers never see a total without matching lines.
func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(receipt).Error; err != nil {
			return err
		}
		if err := tx.Where("receipt_id = ?", receipt.ID).Delete(&entity.ReceiptServiceLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("receipt_id = ?", receipt.ID).Delete(&entity.ReceiptChargeLine{}).Error; err != nil {
			return err
		}
		for i := range receipt.Services {
			receipt.Services[i].ReceiptID = receipt.ID
		}
		for i := range receipt.Charges {
			receipt.Charges[i].ReceiptID = receipt.ID
		}
		if len(receipt.Services) > 0 {
			if err := tx.Create(&receipt.Services).Error; err != nil {
				return err
			}
		}
		if len(receipt.Charges) > 0 {
			if err := tx.Create(&receipt.Charges).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *receiptRepository) Void(ctx context.Context, id uuid.UUID, voidedAt time.Time, reason *string) error {
	return r.db.WithContext(ctx).Model(&entity.Receipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      enum.ReceiptStatusVoid,
			"voided_at":   voidedAt,
			"void_reason": reason,
		}).Error
}

func (r *receiptRepository) List(ctx context.Context, params *domainRepo.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{}).
		Scopes(ReceiptFilterScope(params.ReceiptFilter))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Patient").
		Preload("Doctor").
		Order(receiptOrder(params.SortBy, params.SortOrder)).
		Find(&receipts).Error

	return receipts, total, err
}

// ListWithCursor returns receipts using cursor-based pagination
// Fetches limit+1 items to detect if there are more results
func (r *receiptRepository) ListWithCursor(ctx context.Context, params *domainRepo.ReceiptCursorFilterParams) ([]entity.Receipt, error) {
	var receipts []entity.Receipt

	params.Cursor.Validate()
	query := r.db.WithContext(ctx).Model(&entity.Receipt{}).
		Scopes(ReceiptFilterScope(params.ReceiptFilter))

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	order := "created_at ASC, id ASC"
	if cursor != nil {
		if params.Cursor.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
			order = "created_at DESC, id DESC"
		}
	}

	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Patient").
		Preload("Doctor").
		Order(order).
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}

	if params.Cursor.Direction == pagination.CursorDirectionPrev && cursor != nil {
		// keep the page in ascending order; the extra row stays at the end
		hasMore := len(receipts) > params.Cursor.Limit
		page := receipts
		if hasMore {
			page = receipts[:params.Cursor.Limit]
		}
		for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
			page[i], page[j] = page[j], page[i]
		}
	}

	return receipts, nil
}

// FindInBatches walks the matching receipts in (issued_at, id) order. Each
// batch starts after the last row of the previous one, so rows updated by fn
// are neither skipped nor visited twice.
func (r *receiptRepository) FindInBatches(ctx context.Context, filter domainRepo.ReceiptFilter, batchSize int, fn func(batch []entity.Receipt) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	var lastIssuedAt time.Time
	var lastID uuid.UUID
	for {
		query := r.db.WithContext(ctx).
			Scopes(ReceiptFilterScope(filter), preloadLines).
			Preload("Patient").
			Preload("Doctor")
		if lastID != uuid.Nil {
			query = query.Where("(issued_at, id) > (?, ?)", lastIssuedAt, lastID)
		}

		var batch []entity.Receipt
		if err := query.Order("issued_at ASC, id ASC").Limit(batchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		last := batch[len(batch)-1]
		lastIssuedAt, lastID = last.IssuedAt, last.ID

		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}
