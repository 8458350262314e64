package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
)

// FeeScheduleHandler serves the service catalog, payment method fees and
// billing settings
type FeeScheduleHandler struct {
	feeService *service.FeeScheduleService
}

// NewFeeScheduleHandler creates a new fee schedule handler
func NewFeeScheduleHandler(feeService *service.FeeScheduleService) *FeeScheduleHandler {
	return &FeeScheduleHandler{feeService: feeService}
}

// ListServices handles listing catalog services
// @Summary List Services
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param active query bool false "Only active services"
// @Success 200 {object} response.APIResponse
// @Router /services [get]
func (h *FeeScheduleHandler) ListServices(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	services, err := h.feeService.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Services retrieved successfully", services)
}

// CreateService handles adding a catalog service
// @Summary Create Service
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateServiceRequest true "Service"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /services [post]
func (h *FeeScheduleHandler) CreateService(c *gin.Context) {
	var req request.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	svc, err := h.feeService.CreateService(c.Request.Context(), &service.CreateServiceInput{
		Name:        req.Name,
		Percentage:  req.Percentage,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Service created successfully", svc)
}

// UpdateService handles editing a catalog service
// @Summary Update Service
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body request.UpdateServiceRequest true "Service"
// @Success 200 {object} response.APIResponse
// @Router /services/{id} [put]
func (h *FeeScheduleHandler) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}

	var req request.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	svc, err := h.feeService.UpdateService(c.Request.Context(), &service.UpdateServiceInput{
		ID:          id,
		Name:        req.Name,
		Percentage:  req.Percentage,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service updated successfully", svc)
}

// DeleteService handles removing a catalog service
// @Summary Delete Service
// @Tags services
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 200 {object} response.APIResponse
// @Router /services/{id} [delete]
func (h *FeeScheduleHandler) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}

	if err := h.feeService.DeleteService(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Service deleted successfully", nil)
}

// ListPaymentFees handles listing the fee of every payment method
// @Summary List Payment Fees
// @Tags payment-fees
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /payment-fees [get]
func (h *FeeScheduleHandler) ListPaymentFees(c *gin.Context) {
	fees, err := h.feeService.ListPaymentFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment fees retrieved successfully", fees)
}

// UpdatePaymentFee handles setting the fee of one payment method
// @Summary Update Payment Fee
// @Tags payment-fees
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param method path string true "Payment method"
// @Param request body request.UpdatePaymentFeeRequest true "Fee"
// @Success 200 {object} response.APIResponse
// @Router /payment-fees/{method} [put]
func (h *FeeScheduleHandler) UpdatePaymentFee(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req request.UpdatePaymentFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	fee, err := h.feeService.UpdatePaymentFee(c.Request.Context(), &service.UpdatePaymentFeeInput{
		Method:        c.Param("method"),
		FeePercentage: *req.FeePercentage,
		ActorID:       userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment fee updated successfully", fee)
}

// GetBillingSettings handles reading the billing settings
// @Summary Get Billing Settings
// @Tags billing-settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /billing-settings [get]
func (h *FeeScheduleHandler) GetBillingSettings(c *gin.Context) {
	settings, err := h.feeService.GetBillingSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing settings retrieved successfully", settings)
}

// UpdateBillingSettings handles editing the billing settings
// @Summary Update Billing Settings
// @Tags billing-settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateBillingSettingsRequest true "Settings"
// @Success 200 {object} response.APIResponse
// @Router /billing-settings [put]
func (h *FeeScheduleHandler) UpdateBillingSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req request.UpdateBillingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.feeService.UpdateBillingSettings(c.Request.Context(), &service.UpdateBillingSettingsInput{
		Currency:              req.Currency,
		TerminalChargeEnabled: req.TerminalChargeEnabled,
		TerminalChargeRate:    req.TerminalChargeRate,
		ActorID:               userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing settings updated successfully", settings)
}
