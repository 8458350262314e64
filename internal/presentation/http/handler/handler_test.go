package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/printer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field string `json:"field"`
	} `json:"errors"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// Only the lookups the billing service performs are implemented; anything
// else hits the nil embedded interface and fails the test loudly.
type stubPatients struct {
	repository.PatientRepository
	known map[uuid.UUID]bool
}

func (s stubPatients) GetByID(_ context.Context, id uuid.UUID) (*entity.Patient, error) {
	if !s.known[id] {
		return nil, nil
	}
	return &entity.Patient{ID: id, Name: "Siti"}, nil
}

type stubDoctors struct {
	repository.DoctorRepository
	doctor *entity.Doctor
}

func (s stubDoctors) GetByID(_ context.Context, id uuid.UUID) (*entity.Doctor, error) {
	if s.doctor == nil || s.doctor.ID != id {
		return nil, nil
	}
	return s.doctor, nil
}

type stubSchedule struct{}

func (stubSchedule) CurrentSchedule(context.Context) (*entity.FeeSchedule, error) {
	return entity.NewFeeSchedule(
		&entity.BillingSettings{Currency: "RM", TerminalChargeEnabled: true, TerminalChargeRate: 8},
		[]entity.Service{{ID: uuid.New(), Name: "Scaling", Percentage: 20, Active: true}},
		[]entity.PaymentMethodFee{{Method: feecalc.MethodCreditCard, FeePercentage: 1.2}},
	), nil
}

func receiptRouter(patientID uuid.UUID, doctor *entity.Doctor) *gin.Engine {
	billing := service.NewBillingService(
		nil,
		stubPatients{known: map[uuid.UUID]bool{patientID: true}},
		stubDoctors{doctor: doctor},
		stubSchedule{},
		zerolog.Nop(),
	)
	h := NewReceiptHandler(billing)

	r := gin.New()
	r.POST("/receipts/preview", h.Preview)
	r.GET("/receipts", h.List)
	r.PUT("/receipts/:id", h.Update)
	return r
}

func TestReceiptHandler_Preview(t *testing.T) {
	patientID := uuid.New()
	doctor := &entity.Doctor{ID: uuid.New(), Name: "Dr Tan", CommissionPercentage: 40, Active: true}
	r := receiptRouter(patientID, doctor)

	body := `{
		"patient_id": "` + patientID.String() + `",
		"doctor_id": "` + doctor.ID.String() + `",
		"base_cost": 100,
		"services": ["Scaling"],
		"other_charges": [{"description": "Lab", "amount": 10}],
		"payment_method": "credit_card"
	}`
	w, env := do(t, r, http.MethodPost, "/receipts/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var receipt struct {
		Subtotal         float64 `json:"subtotal"`
		PaymentFeeAmount float64 `json:"payment_fee_amount"`
		TerminalCharge   float64 `json:"terminal_charge_amount"`
		Total            float64 `json:"total"`
		DoctorFee        float64 `json:"doctor_fee"`
		ClinicFee        float64 `json:"clinic_fee"`
		ReceiptNo        string  `json:"receipt_no"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, 130.0, receipt.Subtotal)
	assert.Equal(t, 1.56, receipt.PaymentFeeAmount)
	assert.Equal(t, 10.52, receipt.TerminalCharge)
	assert.Equal(t, 142.08, receipt.Total)
	assert.Equal(t, 8.0, receipt.DoctorFee)
	assert.Equal(t, 12.0, receipt.ClinicFee)
	assert.Empty(t, receipt.ReceiptNo)
}

func TestReceiptHandler_PreviewValidation(t *testing.T) {
	patientID := uuid.New()
	r := receiptRouter(patientID, nil)

	body := `{
		"patient_id": "` + patientID.String() + `",
		"doctor_id": "` + uuid.New().String() + `",
		"base_cost": 0,
		"services": ["Veneers"],
		"payment_method": "cheque"
	}`
	w, env := do(t, r, http.MethodPost, "/receipts/preview", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fields := map[string]bool{}
	for _, e := range env.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["doctor_id"])
	assert.True(t, fields["base_cost"])
	assert.True(t, fields["services"])
	assert.True(t, fields["payment_method"])
	assert.False(t, fields["patient_id"])
}

func TestReceiptHandler_BadRequests(t *testing.T) {
	r := receiptRouter(uuid.New(), nil)

	w, _ := do(t, r, http.MethodPost, "/receipts/preview", `{"base_cost": "a lot"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPut, "/receipts/RC-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tests := map[string]string{
		"status":     "/receipts?status=paid",
		"patient":    "/receipts?patient_id=123",
		"doctor":     "/receipts?doctor_id=abc",
		"method":     "/receipts?payment_method=bitcoin",
		"start date": "/receipts?start_date=14-03-2026",
		"end date":   "/receipts?end_date=2026/03/14",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			w, _ := do(t, r, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReceiptFilter(t *testing.T) {
	patientID := uuid.New()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet,
		"/receipts?status=void&payment_method=Debit+Card&patient_id="+patientID.String()+"&start_date=2026-03-01&end_date=2026-03-31", nil)

	filter, ok := receiptFilter(c)
	require.True(t, ok)
	require.NotNil(t, filter.Status)
	assert.Equal(t, "void", filter.Status.String())
	require.NotNil(t, filter.Method)
	assert.Equal(t, feecalc.MethodDebitCard, *filter.Method)
	assert.Equal(t, patientID, *filter.PatientID)
	assert.Nil(t, filter.DoctorID)

	// the end day is inclusive, so the upper bound is the next midnight
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), *filter.StartDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local), *filter.EndDate)
}

func TestReportHandler_Period(t *testing.T) {
	h := NewReportHandler(nil)
	r := gin.New()
	r.GET("/reports/revenue", h.Revenue)
	r.GET("/reports/receipts/export", h.Export)

	w, env := do(t, r, http.MethodGet, "/reports/revenue?from=2026-03-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, r, http.MethodGet, "/reports/revenue?from=2026-03-01&to=March", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/reports/receipts/export?from=2026-03-01&to=2026-03-31&format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathIDIsValidated(t *testing.T) {
	r := gin.New()
	r.GET("/patients/:id", NewPatientHandler(nil).Get)
	r.GET("/doctors/:id", NewDoctorHandler(nil).Get)
	r.DELETE("/services/:id", NewFeeScheduleHandler(nil).DeleteService)

	for _, path := range []string{"/patients/42", "/doctors/dr-tan", "/services/scaling"} {
		method := http.MethodGet
		if strings.HasPrefix(path, "/services") {
			method = http.MethodDelete
		}
		w, env := do(t, r, method, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, env.Message, "Invalid")
	}
}

func TestPatientHandler_CreateRequiresUser(t *testing.T) {
	r := gin.New()
	r.POST("/patients", NewPatientHandler(nil).Create)

	w, _ := do(t, r, http.MethodPost, "/patients", `{"name":"Siti","ic_number":"880101-14-5566"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPatientHandler_BadBirthDate(t *testing.T) {
	r := gin.New()
	r.POST("/patients", func(c *gin.Context) {
		c.Set("user_id", uuid.New())
		c.Next()
	}, NewPatientHandler(nil).Create)

	w, env := do(t, r, http.MethodPost, "/patients", `{"name":"Siti","ic_number":"880101-14-5566","date_of_birth":"1/1/1988"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "date_of_birth", env.Errors[0].Field)
}

func TestAuthHandler_GoogleCallbackChecksState(t *testing.T) {
	h := NewAuthHandler(nil, config.OAuthConfig{}, false)
	r := gin.New()
	r.GET("/auth/google/callback", h.GoogleCallback)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewAuthHandler(nil, config.OAuthConfig{FrontendErrorURL: "https://app.clinic.my/login"}, false)
	r = gin.New()
	r.GET("/auth/google/callback", h.GoogleCallback)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=x&code=abc", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://app.clinic.my/login?error="))
}

func TestPrintHandler(t *testing.T) {
	h := NewPrintHandler(service.NewPrintService(nil, printer.None(), service.SlipHeader{}, 32, false, zerolog.Nop()))
	r := gin.New()
	r.GET("/printer/status", h.Status)
	r.POST("/receipts/:id/print", h.PrintReceipt)

	w, env := do(t, r, http.MethodGet, "/printer/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status service.PrinterStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Configured)
	assert.False(t, status.Ready)

	w, _ = do(t, r, http.MethodPost, "/receipts/not-a-uuid/print", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
