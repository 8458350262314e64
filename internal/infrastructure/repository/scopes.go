package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
)

// SearchScope matches search case-insensitively against any of columns
func SearchScope(search string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" || len(columns) == 0 {
			return db
		}
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = col + " ILIKE ?"
			args[i] = "%" + search + "%"
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// DateRangeScope restricts column to [from, to). Either bound may be nil.
func DateRangeScope(column string, from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", *from)
		}
		if to != nil {
			db = db.Where(column+" < ?", *to)
		}
		return db
	}
}

// ReceiptFilterScope applies the filters shared by every receipt listing
func ReceiptFilterScope(f domainRepo.ReceiptFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(SearchScope(f.Search, "receipt_no"))
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if f.PatientID != nil {
			db = db.Where("patient_id = ?", *f.PatientID)
		}
		if f.DoctorID != nil {
			db = db.Where("doctor_id = ?", *f.DoctorID)
		}
		if f.Method != nil {
			db = db.Where("payment_method = ?", *f.Method)
		}
		return db.Scopes(DateRangeScope("issued_at", f.StartDate, f.EndDate))
	}
}

var receiptSortColumns = map[string]string{
	"created_at": "created_at",
	"issued_at":  "issued_at",
	"total":      "total",
	"receipt_no": "receipt_no",
}

// receiptOrder builds a safe ORDER BY clause from user supplied sort params
func receiptOrder(sortBy, sortOrder string) string {
	col, ok := receiptSortColumns[strings.ToLower(sortBy)]
	if !ok {
		col = "issued_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", id " + dir
}
