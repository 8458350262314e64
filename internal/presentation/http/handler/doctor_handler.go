package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
)

// DoctorHandler handles doctor-related HTTP requests
type DoctorHandler struct {
	doctorService *service.DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctorService *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

// List handles listing doctors
// @Summary List Doctors
// @Tags doctors
// @Security BearerAuth
// @Produce json
// @Param active query bool false "Only active doctors"
// @Success 200 {object} response.APIResponse
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	result, err := h.doctorService.ListDoctors(c.Request.Context(), pageParams(c), c.Query("search"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Doctors retrieved successfully", result)
}

// Get handles getting a single doctor
// @Summary Get Doctor
// @Tags doctors
// @Security BearerAuth
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.APIResponse
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorService.GetDoctor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Doctor retrieved successfully", doctor)
}

// Create handles creating a doctor
// @Summary Create Doctor
// @Tags doctors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateDoctorRequest true "Doctor"
// @Success 201 {object} response.APIResponse
// @Router /doctors [post]
func (h *DoctorHandler) Create(c *gin.Context) {
	var req request.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	doctor, err := h.doctorService.CreateDoctor(c.Request.Context(), &service.CreateDoctorInput{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Doctor created successfully", doctor)
}

// Update handles updating a doctor
// @Summary Update Doctor
// @Tags doctors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param request body request.UpdateDoctorRequest true "Doctor"
// @Success 200 {object} response.APIResponse
// @Router /doctors/{id} [put]
func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "doctor")
	if !ok {
		return
	}

	var req request.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	doctor, err := h.doctorService.UpdateDoctor(c.Request.Context(), id, &service.UpdateDoctorInput{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		CommissionPercentage: req.CommissionPercentage,
		Active:               req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Doctor updated successfully", doctor)
}

// Delete handles deleting a doctor
// @Summary Delete Doctor
// @Tags doctors
// @Security BearerAuth
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.APIResponse
// @Router /doctors/{id} [delete]
func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "doctor")
	if !ok {
		return
	}

	if err := h.doctorService.DeleteDoctor(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Doctor deleted successfully", nil)
}
