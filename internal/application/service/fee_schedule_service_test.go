package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

type scheduleFixture struct {
	services *MockServiceRepository
	fees     *MockPaymentFeeRepository
	settings *MockBillingSettingsRepository
	cache    *MockScheduleCache
	svc      *FeeScheduleService
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		services: new(MockServiceRepository),
		fees:     new(MockPaymentFeeRepository),
		settings: new(MockBillingSettingsRepository),
		cache:    new(MockScheduleCache),
	}
	defaults := config.BillingConfig{Currency: "RM", TerminalChargeEnabled: true, TerminalChargeRate: 8}
	f.svc = NewFeeScheduleService(f.services, f.fees, f.settings, f.cache, defaults, zerolog.Nop())
	return f
}

func TestFeeScheduleService_CurrentScheduleCacheHit(t *testing.T) {
	f := newScheduleFixture()
	cached := testSchedule()
	f.cache.On("Get", mock.Anything).Return(cached, nil)

	got, err := f.svc.CurrentSchedule(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, got)
	f.services.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestFeeScheduleService_CurrentScheduleMissLoadsAndCaches(t *testing.T) {
	f := newScheduleFixture()
	f.cache.On("Get", mock.Anything).Return(nil, errors.New("redis down"))
	f.settings.On("Get", mock.Anything).Return(nil, nil)
	f.settings.On("Save", mock.Anything, mock.AnythingOfType("*entity.BillingSettings")).Return(nil)
	f.services.On("List", mock.Anything, false).Return([]entity.Service{{ID: scalingID, Name: "Scaling", Percentage: 20, Active: true}}, nil)
	f.fees.On("List", mock.Anything).Return([]entity.PaymentMethodFee{{Method: feecalc.MethodCreditCard, FeePercentage: 1.2}}, nil)
	f.cache.On("Set", mock.Anything, mock.AnythingOfType("*entity.FeeSchedule")).Return(errors.New("redis down"))

	got, err := f.svc.CurrentSchedule(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "RM", got.Currency)
	assert.Equal(t, feecalc.TerminalChargePolicy{Enabled: true, Rate: 8}, got.Terminal)
	svc, ok := got.LookupService("SCALING")
	require.True(t, ok)
	assert.Equal(t, 20.0, svc.Percentage)
	assert.Equal(t, 0.0, got.Payment(feecalc.MethodOnline).FeePercentage)
	f.settings.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestFeeScheduleService_CreateService(t *testing.T) {
	f := newScheduleFixture()
	f.services.On("GetByName", mock.Anything, "Implant").Return(nil, nil)
	f.services.On("Create", mock.Anything, mock.AnythingOfType("*entity.Service")).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)

	svc, err := f.svc.CreateService(context.Background(), &CreateServiceInput{Name: " Implant ", Percentage: 50})
	require.NoError(t, err)
	assert.Equal(t, "Implant", svc.Name)
	assert.True(t, svc.Active)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything)
}

func TestFeeScheduleService_CreateServiceRejects(t *testing.T) {
	f := newScheduleFixture()

	for _, pct := range []float64{-1, 100.5, math.NaN()} {
		_, err := f.svc.CreateService(context.Background(), &CreateServiceInput{Name: "Implant", Percentage: pct})
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
	}

	f.services.On("GetByName", mock.Anything, "Scaling").Return(&entity.Service{ID: scalingID, Name: "Scaling"}, nil)
	_, err := f.svc.CreateService(context.Background(), &CreateServiceInput{Name: "Scaling", Percentage: 10})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestFeeScheduleService_UpdateService(t *testing.T) {
	f := newScheduleFixture()
	existing := &entity.Service{ID: scalingID, Name: "Scaling", Percentage: 20, Active: true}
	f.services.On("GetByID", mock.Anything, scalingID).Return(existing, nil)
	f.services.On("GetByName", mock.Anything, "Filling").Return(&entity.Service{ID: fillingID, Name: "Filling"}, nil)

	name := "Filling"
	_, err := f.svc.UpdateService(context.Background(), &UpdateServiceInput{ID: scalingID, Name: &name})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	f.services.On("Update", mock.Anything, existing).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	pct, inactive, sameName := 22.5, false, "scaling"
	svc, err := f.svc.UpdateService(context.Background(), &UpdateServiceInput{ID: scalingID, Name: &sameName, Percentage: &pct, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 22.5, svc.Percentage)
	assert.False(t, svc.Active)
	f.cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestFeeScheduleService_DeleteServiceNotFound(t *testing.T) {
	f := newScheduleFixture()
	id := uuid.New()
	f.services.On("GetByID", mock.Anything, id).Return(nil, nil)

	err := f.svc.DeleteService(context.Background(), id)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestFeeScheduleService_ListPaymentFeesFillsGaps(t *testing.T) {
	f := newScheduleFixture()
	f.fees.On("List", mock.Anything).Return([]entity.PaymentMethodFee{{Method: feecalc.MethodMastercard, FeePercentage: 2.5}}, nil)

	fees, err := f.svc.ListPaymentFees(context.Background())
	require.NoError(t, err)
	require.Len(t, fees, len(feecalc.Methods))
	for i, m := range feecalc.Methods {
		assert.Equal(t, m, fees[i].Method)
	}
	assert.Equal(t, 2.5, fees[4].FeePercentage)
	assert.Equal(t, 0.0, fees[0].FeePercentage)
}

func TestFeeScheduleService_UpdatePaymentFee(t *testing.T) {
	f := newScheduleFixture()
	actor := uuid.New()

	_, err := f.svc.UpdatePaymentFee(context.Background(), &UpdatePaymentFeeInput{Method: "cheque", FeePercentage: 1})
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	_, err = f.svc.UpdatePaymentFee(context.Background(), &UpdatePaymentFeeInput{Method: "online", FeePercentage: -0.5})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	f.fees.On("Upsert", mock.Anything, mock.MatchedBy(func(fee *entity.PaymentMethodFee) bool {
		return fee.Method == feecalc.MethodCreditCard && fee.FeePercentage == 1.5 && *fee.UpdatedByID == actor
	})).Return(nil)
	f.fees.On("GetByMethod", mock.Anything, feecalc.MethodCreditCard).Return(nil, nil)
	f.cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))

	fee, err := f.svc.UpdatePaymentFee(context.Background(), &UpdatePaymentFeeInput{Method: "Credit Card", FeePercentage: 1.5, ActorID: actor})
	require.NoError(t, err)
	assert.Equal(t, 1.5, fee.FeePercentage)
}

func TestFeeScheduleService_UpdateBillingSettings(t *testing.T) {
	f := newScheduleFixture()
	stored := &entity.BillingSettings{Currency: "RM", TerminalChargeEnabled: true, TerminalChargeRate: 8}
	f.settings.On("Get", mock.Anything).Return(stored, nil)

	badRate := 120.0
	_, err := f.svc.UpdateBillingSettings(context.Background(), &UpdateBillingSettingsInput{TerminalChargeRate: &badRate})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	f.settings.On("Save", mock.Anything, mock.AnythingOfType("*entity.BillingSettings")).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	off, rate := false, 6.0
	settings, err := f.svc.UpdateBillingSettings(context.Background(), &UpdateBillingSettingsInput{
		TerminalChargeEnabled: &off,
		TerminalChargeRate:    &rate,
		ActorID:               uuid.New(),
	})
	require.NoError(t, err)
	assert.False(t, settings.TerminalChargeEnabled)
	assert.Equal(t, 6.0, settings.TerminalChargeRate)
	require.NotNil(t, settings.UpdatedByID)
}
