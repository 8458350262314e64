package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetRevenueTotals(ctx context.Context, from, to time.Time) (*domainRepo.RevenueTotalsResult, error) {
	var result domainRepo.RevenueTotalsResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as receipt_count,
			COALESCE(SUM(base_cost), 0) / 100.0 as base_cost,
			COALESCE(SUM(services_total), 0) / 100.0 as services_total,
			COALESCE(SUM(other_charges_total), 0) / 100.0 as other_charges_total,
			COALESCE(SUM(subtotal), 0) / 100.0 as subtotal,
			COALESCE(SUM(payment_fee_amount), 0) / 100.0 as payment_fee_amount,
			COALESCE(SUM(terminal_charge_amount), 0) / 100.0 as terminal_charge_amount,
			COALESCE(SUM(total), 0) / 100.0 as total
		FROM receipts
		WHERE status = ? AND deleted_at IS NULL
		AND issued_at >= ? AND issued_at < ?
	`, enum.ReceiptStatusIssued, from, to).Scan(&result).Error

	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepository) GetTotalsByMethod(ctx context.Context, from, to time.Time) ([]domainRepo.MethodTotalResult, error) {
	var results []domainRepo.MethodTotalResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			payment_method as method,
			COUNT(*) as receipt_count,
			COALESCE(SUM(payment_fee_amount), 0) / 100.0 as payment_fee_amount,
			COALESCE(SUM(terminal_charge_amount), 0) / 100.0 as terminal_charge_amount,
			COALESCE(SUM(total), 0) / 100.0 as total
		FROM receipts
		WHERE status = ? AND deleted_at IS NULL
		AND issued_at >= ? AND issued_at < ?
		GROUP BY payment_method
		ORDER BY total DESC
	`, enum.ReceiptStatusIssued, from, to).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reportRepository) GetDoctorServiceTotals(ctx context.Context, from, to time.Time) ([]domainRepo.DoctorServiceResult, error) {
	var results []domainRepo.DoctorServiceResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			r.doctor_id as doctor_id,
			COALESCE(d.name, '') as doctor_name,
			r.doctor_percentage as doctor_percentage,
			COUNT(r.id) as receipt_count,
			COALESCE(SUM(r.services_total), 0) / 100.0 as services_total,
			COALESCE(SUM(r.doctor_fee), 0) / 100.0 as doctor_fee,
			COALESCE(SUM(r.clinic_fee), 0) / 100.0 as clinic_fee
		FROM receipts r
		LEFT JOIN doctors d ON d.id = r.doctor_id
		WHERE r.status = ? AND r.deleted_at IS NULL
		AND r.issued_at >= ? AND r.issued_at < ?
		GROUP BY r.doctor_id, d.name, r.doctor_percentage
		ORDER BY doctor_name ASC, doctor_percentage ASC
	`, enum.ReceiptStatusIssued, from, to).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}
