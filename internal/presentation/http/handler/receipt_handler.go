package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/enum"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	billingService *service.BillingService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(billingService *service.BillingService) *ReceiptHandler {
	return &ReceiptHandler{billingService: billingService}
}

func bindReceipt(c *gin.Context) (*service.ReceiptInput, bool) {
	var req request.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}
	return &service.ReceiptInput{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		BaseCost:      req.BaseCost,
		Services:      req.Services,
		OtherCharges:  req.OtherCharges,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}, true
}

// receiptFilter reads the filters shared by page and cursor listing.
// Unparseable filters are rejected instead of silently ignored.
func receiptFilter(c *gin.Context) (repository.ReceiptFilter, bool) {
	filter := repository.ReceiptFilter{Search: strings.TrimSpace(c.Query("search"))}

	if s := c.Query("status"); s != "" {
		status, ok := enum.ParseReceiptStatus(s)
		if !ok {
			response.BadRequest(c, "Invalid status, expected issued or void")
			return filter, false
		}
		filter.Status = &status
	}
	if s := c.Query("patient_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "Invalid patient ID")
			return filter, false
		}
		filter.PatientID = &id
	}
	if s := c.Query("doctor_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "Invalid doctor ID")
			return filter, false
		}
		filter.DoctorID = &id
	}
	if s := c.Query("payment_method"); s != "" {
		method, ok := feecalc.ParsePaymentMethod(s)
		if !ok {
			response.BadRequest(c, "Invalid payment method")
			return filter, false
		}
		filter.Method = &method
	}

	from, to, ok := dateRange(c, "start_date", "end_date")
	if !ok {
		return filter, false
	}
	filter.StartDate, filter.EndDate = from, to
	return filter, true
}

// Preview handles computing a receipt without saving it
// @Summary Preview Receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ReceiptRequest true "Receipt input"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /receipts/preview [post]
func (h *ReceiptHandler) Preview(c *gin.Context) {
	input, ok := bindReceipt(c)
	if !ok {
		return
	}

	receipt, err := h.billingService.Preview(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt calculated successfully", receipt)
}

// Create handles issuing a receipt. Send an Idempotency-Key header to make
// retries safe.
// @Summary Create Receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body request.ReceiptRequest true "Receipt input"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	input, ok := bindReceipt(c)
	if !ok {
		return
	}

	receipt, err := h.billingService.CreateReceipt(c.Request.Context(), input, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt created successfully", receipt)
}

// List handles listing receipts. Passing cursor or limit switches to cursor
// pagination.
// @Summary List Receipts
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param status query string false "issued or void"
// @Param patient_id query string false "Patient ID"
// @Param doctor_id query string false "Doctor ID"
// @Param payment_method query string false "Payment method"
// @Param start_date query string false "First day, YYYY-MM-DD"
// @Param end_date query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	filter, ok := receiptFilter(c)
	if !ok {
		return
	}

	if c.Query("cursor") != "" || c.Query("limit") != "" {
		h.listWithCursor(c, filter)
		return
	}

	result, err := h.billingService.ListReceipts(c.Request.Context(), &repository.ReceiptFilterParams{
		ReceiptFilter: filter,
		Pagination:    pageParams(c),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Receipts retrieved successfully", result)
}

func (h *ReceiptHandler) listWithCursor(c *gin.Context, filter repository.ReceiptFilter) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pagination.DefaultPerPage)))

	result, err := h.billingService.ListReceiptsWithCursor(c.Request.Context(), &repository.ReceiptCursorFilterParams{
		ReceiptFilter: filter,
		Cursor: &pagination.CursorParams{
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     limit,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithCursor(c, http.StatusOK, "Receipts retrieved successfully", result)
}

// Get handles getting a receipt by ID or receipt number
// @Summary Get Receipt
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Receipt ID or receipt number"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	var (
		receipt *entity.Receipt
		err     error
	)
	if id, parseErr := uuid.Parse(c.Param("id")); parseErr == nil {
		receipt, err = h.billingService.GetReceipt(c.Request.Context(), id)
	} else {
		receipt, err = h.billingService.GetReceiptByNo(c.Request.Context(), strings.ToUpper(c.Param("id")))
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Update handles correcting a receipt. The amounts are recomputed with the
// current fee schedule.
// @Summary Update Receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param request body request.ReceiptRequest true "Receipt input"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /receipts/{id} [put]
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}
	input, ok := bindReceipt(c)
	if !ok {
		return
	}

	receipt, err := h.billingService.UpdateReceipt(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", receipt)
}

// Void handles voiding a receipt
// @Summary Void Receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param request body request.VoidReceiptRequest false "Reason"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id}/void [post]
func (h *ReceiptHandler) Void(c *gin.Context) {
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}

	var req request.VoidReceiptRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	receipt, err := h.billingService.VoidReceipt(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt voided successfully", receipt)
}
