package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
)

// PrintHandler sends receipts to the front desk printer
type PrintHandler struct {
	printService *service.PrintService
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService) *PrintHandler {
	return &PrintHandler{printService: printService}
}

// PrintReceipt handles printing a stored receipt
// @Summary Print Receipt
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /receipts/{id}/print [post]
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}

	receipt, err := h.printService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent to printer", gin.H{"receipt_no": receipt.ReceiptNo})
}

// Status handles the printer status check
// @Summary Printer Status
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /printer/status [get]
func (h *PrintHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printService.Status(c.Request.Context()))
}
