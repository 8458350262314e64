package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/money"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

// BillingService turns a treatment into a receipt
type BillingService struct {
	receiptRepo repository.ReceiptRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	schedule    FeeScheduleProvider
	log         zerolog.Logger
	now         func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	receiptRepo repository.ReceiptRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	schedule FeeScheduleProvider,
	log zerolog.Logger,
) *BillingService {
	return &BillingService{
		receiptRepo: receiptRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		schedule:    schedule,
		log:         log,
		now:         time.Now,
	}
}

// ReceiptInput is what the front desk enters for a visit. Services are named
// from the catalog; their percentages always come from the fee schedule.
type ReceiptInput struct {
	PatientID     uuid.UUID
	DoctorID      *uuid.UUID
	BaseCost      float64
	Services      []string
	OtherCharges  []feecalc.OtherCharge
	PaymentMethod string
	Notes         *string
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// quote validates the input against the live schedule and returns an
// unsaved receipt holding the calculation.
func (s *BillingService) quote(ctx context.Context, input *ReceiptInput) (*entity.Receipt, error) {
	schedule, err := s.schedule.CurrentSchedule(ctx)
	if err != nil {
		return nil, err
	}

	var verr apperror.ValidationErrors

	if input.PatientID == uuid.Nil {
		verr.Add("patient_id", "Patient is required")
	} else {
		patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			verr.Add("patient_id", "Patient not found")
		}
	}

	doctorPercentage := 0.0
	if input.DoctorID != nil {
		doctor, err := s.doctorRepo.GetByID(ctx, *input.DoctorID)
		if err != nil {
			return nil, err
		}
		switch {
		case doctor == nil:
			verr.Add("doctor_id", "Doctor not found")
		case !doctor.Active:
			verr.Add("doctor_id", "Doctor is inactive")
		default:
			doctorPercentage = doctor.CommissionPercentage
		}
	}

	if !finite(input.BaseCost) || input.BaseCost <= 0 {
		verr.Add("base_cost", "Base cost must be greater than zero")
	}

	method, ok := feecalc.ParsePaymentMethod(input.PaymentMethod)
	if !ok {
		verr.Add("payment_method", "Unsupported payment method")
	}

	selections := make([]feecalc.ServiceSelection, 0, len(input.Services))
	serviceIDs := make(map[string]uuid.UUID, len(input.Services))
	for _, name := range input.Services {
		svc, found := schedule.LookupService(name)
		switch {
		case strings.TrimSpace(name) == "":
			verr.Add("services", "Service name cannot be empty")
		case !found:
			verr.Add("services", "Unknown service: "+name)
		case !svc.Active:
			verr.Add("services", "Service is inactive: "+svc.Name)
		default:
			key := entity.ServiceKey(svc.Name)
			if _, dup := serviceIDs[key]; dup {
				verr.Add("services", "Service selected twice: "+svc.Name)
				continue
			}
			serviceIDs[key] = svc.ID
			selections = append(selections, feecalc.ServiceSelection{Name: svc.Name, Percentage: svc.Percentage})
		}
	}

	charges := make([]feecalc.OtherCharge, 0, len(input.OtherCharges))
	for _, ch := range input.OtherCharges {
		switch {
		case !finite(ch.Amount):
			verr.Add("other_charges", "Charge amount must be a number")
		case ch.Amount < 0:
			verr.Add("other_charges", "Charge amount cannot be negative")
		case ch.Amount > 0:
			charges = append(charges, feecalc.OtherCharge{
				Description: strings.TrimSpace(ch.Description),
				Amount:      ch.Amount,
			})
		}
	}

	if len(input.Services) == 0 && len(charges) == 0 {
		verr.Add("services", "Select at least one service or add a charge")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	in := feecalc.Input{
		BaseCost:     input.BaseCost,
		Services:     selections,
		OtherCharges: charges,
		Payment:      schedule.Payment(method),
		Terminal:     schedule.Terminal,
	}
	res, err := feecalc.ComputeInvoice(in)
	if err != nil {
		return nil, err
	}

	if drift := money.RoundingDrift(res.Total, res.Subtotal, res.PaymentFeeAmount, res.TerminalChargeAmount); drift > 0.01 {
		s.log.Warn().Float64("drift", drift).Str("method", string(method)).Msg("invoice total drifted from its parts")
	}

	receipt := &entity.Receipt{
		PatientID: input.PatientID,
		DoctorID:  input.DoctorID,
		Currency:  schedule.Currency,
		Notes:     input.Notes,
	}
	receipt.ApplyCalculation(in, res, doctorPercentage, serviceIDs)
	return receipt, nil
}

// Preview runs the calculation without storing anything
func (s *BillingService) Preview(ctx context.Context, input *ReceiptInput) (*entity.Receipt, error) {
	return s.quote(ctx, input)
}

// CreateReceipt computes and stores a new receipt
func (s *BillingService) CreateReceipt(ctx context.Context, input *ReceiptInput, actorID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.quote(ctx, input)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	receipt.ReceiptNo = utils.GenerateReceiptNo(issuedAt)
	receipt.IssuedAt = issuedAt
	receipt.CreatedByID = actorID
	receipt.Status = enum.ReceiptStatusIssued

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("receipt_no", receipt.ReceiptNo).
		Str("method", string(receipt.PaymentMethod)).
		Int64("total_cents", receipt.Total).
		Msg("receipt issued")

	return s.GetReceipt(ctx, receipt.ID)
}

// UpdateReceipt recomputes an issued receipt with the current schedule. The
// receipt number and issue date do not change.
func (s *BillingService) UpdateReceipt(ctx context.Context, id uuid.UUID, input *ReceiptInput) (*entity.Receipt, error) {
	existing, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if existing.IsVoid() {
		return nil, apperror.ErrReceiptVoided
	}

	receipt, err := s.quote(ctx, input)
	if err != nil {
		return nil, err
	}
	receipt.ID = existing.ID
	receipt.ReceiptNo = existing.ReceiptNo
	receipt.IssuedAt = existing.IssuedAt
	receipt.CreatedByID = existing.CreatedByID
	receipt.Status = existing.Status
	receipt.CreatedAt = existing.CreatedAt

	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		return nil, err
	}

	return s.GetReceipt(ctx, receipt.ID)
}

// VoidReceipt marks a receipt void. Voided receipts are kept for the audit
// trail and excluded from reports.
func (s *BillingService) VoidReceipt(ctx context.Context, id uuid.UUID, reason *string) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if receipt.IsVoid() {
		return nil, apperror.ErrReceiptVoided
	}

	if err := s.receiptRepo.Void(ctx, id, s.now(), reason); err != nil {
		return nil, err
	}

	s.log.Info().Str("receipt_no", receipt.ReceiptNo).Msg("receipt voided")
	return s.GetReceipt(ctx, id)
}

// GetReceipt retrieves a receipt by ID
func (s *BillingService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// GetReceiptByNo retrieves a receipt by its printed number
func (s *BillingService) GetReceiptByNo(ctx context.Context, receiptNo string) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByReceiptNo(ctx, strings.TrimSpace(receiptNo))
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ListReceipts retrieves receipts with filters and pagination
func (s *BillingService) ListReceipts(ctx context.Context, params *repository.ReceiptFilterParams) (*pagination.PaginatedResult[entity.Receipt], error) {
	if params.Pagination == nil {
		params.Pagination = &pagination.PaginationParams{}
	}
	params.Pagination.Validate()

	receipts, total, err := s.receiptRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(receipts, pag), nil
}

// ListReceiptsWithCursor retrieves receipts using keyset pagination
func (s *BillingService) ListReceiptsWithCursor(ctx context.Context, params *repository.ReceiptCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Receipt], error) {
	if params.Cursor == nil {
		params.Cursor = &pagination.CursorParams{}
	}
	params.Cursor.Validate()
	if _, err := params.Cursor.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	receipts, err := s.receiptRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewCursorPaginatedResult(receipts, params.Cursor, func(r entity.Receipt) (uuid.UUID, time.Time) {
		return r.ID, r.CreatedAt
	}), nil
}
