package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/internal/infrastructure/export"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/money"
)

const reportBatchSize = 200

// ReportService aggregates issued receipts
type ReportService struct {
	reportRepo  repository.ReportRepository
	receiptRepo repository.ReceiptRepository
	log         zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository, receiptRepo repository.ReceiptRepository, log zerolog.Logger) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		receiptRepo: receiptRepo,
		log:         log,
	}
}

// DoctorShare is one doctor's portion of the services revenue
type DoctorShare struct {
	DoctorID         *uuid.UUID `json:"doctor_id"`
	DoctorName       string     `json:"doctor_name"`
	DoctorPercentage float64    `json:"doctor_percentage"`
	ReceiptCount     int64      `json:"receipt_count"`
	ServicesTotal    float64    `json:"services_total"`
	DoctorFee        float64    `json:"doctor_fee"`
	ClinicFee        float64    `json:"clinic_fee"`
}

// RevenueSummary is the revenue report for a period
type RevenueSummary struct {
	From    time.Time                       `json:"from"`
	To      time.Time                       `json:"to"`
	Totals  *repository.RevenueTotalsResult `json:"totals"`
	Methods []repository.MethodTotalResult  `json:"payment_methods"`
	Doctors []DoctorShare                   `json:"doctors"`
	Split   feecalc.Split                   `json:"split"`
}

func checkPeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewBadRequestError("Both from and to dates are required")
	}
	if !from.Before(to) {
		return apperror.NewBadRequestError("The from date must be before the to date")
	}
	return nil
}

// RevenueSummary totals issued receipts in [from, to). The doctor split is the
// sum of the split stored on each receipt, so it matches the receipts to the
// cent.
func (s *ReportService) RevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	if err := checkPeriod(from, to); err != nil {
		return nil, err
	}

	totals, err := s.reportRepo.GetRevenueTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = &repository.RevenueTotalsResult{}
	}

	methods, err := s.reportRepo.GetTotalsByMethod(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if methods == nil {
		methods = []repository.MethodTotalResult{}
	}

	groups, err := s.reportRepo.GetDoctorServiceTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &RevenueSummary{
		From:    from,
		To:      to,
		Totals:  totals,
		Methods: methods,
		Doctors: make([]DoctorShare, 0, len(groups)),
	}

	var doctorCents, clinicCents int64
	for _, g := range groups {
		doctor := money.ToCents(g.DoctorFee)
		clinic := money.ToCents(g.ClinicFee)
		doctorCents += doctor
		clinicCents += clinic

		name := g.DoctorName
		if g.DoctorID == nil {
			name = "Unassigned"
		}
		summary.Doctors = append(summary.Doctors, DoctorShare{
			DoctorID:         g.DoctorID,
			DoctorName:       name,
			DoctorPercentage: g.DoctorPercentage,
			ReceiptCount:     g.ReceiptCount,
			ServicesTotal:    money.Round2(g.ServicesTotal),
			DoctorFee:        money.FromCents(doctor),
			ClinicFee:        money.FromCents(clinic),
		})
	}
	summary.Split = feecalc.Split{
		DoctorFee: money.FromCents(doctorCents),
		ClinicFee: money.FromCents(clinicCents),
	}

	return summary, nil
}

// ExportReceipts writes every issued receipt in [from, to) to w
func (s *ReportService) ExportReceipts(ctx context.Context, from, to time.Time, format export.Format, w io.Writer) error {
	if err := checkPeriod(from, to); err != nil {
		return err
	}

	writer, err := export.NewReceiptWriter(format, w)
	if err != nil {
		return apperror.NewBadRequestError(err.Error())
	}

	issued := enum.ReceiptStatusIssued
	filter := repository.ReceiptFilter{Status: &issued, StartDate: &from, EndDate: &to}

	count := 0
	err = s.receiptRepo.FindInBatches(ctx, filter, reportBatchSize, func(batch []entity.Receipt) error {
		for i := range batch {
			if err := writer.Write(&batch[i]); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("format", string(format)).Int("receipts", count).Msg("receipts exported")
	return writer.Close()
}

// RecalcMismatch is a receipt whose stored total no longer matches a fresh
// calculation over its stored inputs
type RecalcMismatch struct {
	ReceiptID       uuid.UUID `json:"receipt_id"`
	ReceiptNo       string    `json:"receipt_no"`
	StoredTotal     float64   `json:"stored_total"`
	RecomputedTotal float64   `json:"recomputed_total"`
}

// RecalcReport summarises a recalc run
type RecalcReport struct {
	Checked    int              `json:"checked"`
	Mismatches []RecalcMismatch `json:"mismatches"`
	Applied    int              `json:"applied"`
}

// Recalc re-runs the calculator over the stored inputs of every issued
// receipt and reports totals that differ by more than one cent. With apply
// the mismatching receipts are rewritten from the fresh result.
func (s *ReportService) Recalc(ctx context.Context, apply bool) (*RecalcReport, error) {
	report := &RecalcReport{Mismatches: []RecalcMismatch{}}
	issued := enum.ReceiptStatusIssued

	err := s.receiptRepo.FindInBatches(ctx, repository.ReceiptFilter{Status: &issued}, reportBatchSize, func(batch []entity.Receipt) error {
		for i := range batch {
			r := &batch[i]
			report.Checked++

			in := r.CalculatorInput()
			res, err := feecalc.ComputeInvoice(in)
			if err != nil {
				s.log.Error().Err(err).Str("receipt_no", r.ReceiptNo).Msg("stored receipt cannot be recomputed")
				continue
			}

			recomputed := money.ToCents(res.Total)
			diff := recomputed - r.Total
			if diff >= -1 && diff <= 1 {
				continue
			}

			report.Mismatches = append(report.Mismatches, RecalcMismatch{
				ReceiptID:       r.ID,
				ReceiptNo:       r.ReceiptNo,
				StoredTotal:     money.FromCents(r.Total),
				RecomputedTotal: money.FromCents(recomputed),
			})
			if !apply {
				continue
			}

			serviceIDs := make(map[string]uuid.UUID, len(r.Services))
			for _, line := range r.Services {
				if line.ServiceID != nil {
					serviceIDs[entity.ServiceKey(line.Name)] = *line.ServiceID
				}
			}
			r.ApplyCalculation(in, res, r.DoctorPercentage, serviceIDs)
			if err := s.receiptRepo.Update(ctx, r); err != nil {
				return err
			}
			report.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("checked", report.Checked).
		Int("mismatches", len(report.Mismatches)).
		Int("applied", report.Applied).
		Msg("recalc finished")

	return report, nil
}
