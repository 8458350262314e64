package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

func birthDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "date_of_birth", Message: "Date of birth must use the YYYY-MM-DD format"},
		})
	}
	return t, nil
}

// List handles listing patients
// @Summary List Patients
// @Tags patients
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name, IC number or phone"
// @Success 200 {object} response.APIResponse
// @Router /patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	result, err := h.patientService.ListPatients(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Patients retrieved successfully", result)
}

// Get handles getting a single patient
// @Summary Get Patient
// @Tags patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.APIResponse
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient retrieved successfully", patient)
}

// Create handles registering a patient
// @Summary Create Patient
// @Tags patients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreatePatientRequest true "Patient"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req request.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	dob, err := birthDate(req.DateOfBirth)
	if err != nil {
		response.Error(c, err)
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), &service.CreatePatientInput{
		CreatedByID: userID,
		Name:        req.Name,
		ICNumber:    req.ICNumber,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: dob,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Patient created successfully", patient)
}

// Update handles updating a patient
// @Summary Update Patient
// @Tags patients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body request.UpdatePatientRequest true "Patient"
// @Success 200 {object} response.APIResponse
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "patient")
	if !ok {
		return
	}

	var req request.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	dob, err := birthDate(req.DateOfBirth)
	if err != nil {
		response.Error(c, err)
		return
	}

	patient, err := h.patientService.UpdatePatient(c.Request.Context(), id, &service.UpdatePatientInput{
		Name:        req.Name,
		ICNumber:    req.ICNumber,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: dob,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient updated successfully", patient)
}

// Delete handles deleting a patient
// @Summary Delete Patient
// @Tags patients
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {object} response.APIResponse
// @Router /patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "patient")
	if !ok {
		return
	}

	if err := h.patientService.DeletePatient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Patient deleted successfully", nil)
}
