package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

func TestDoctorService_CreateDoctor(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateDoctorInput
		wantErr bool
	}{
		{"valid", CreateDoctorInput{Name: "Dr Tan", CommissionPercentage: 40}, false},
		{"zero commission", CreateDoctorInput{Name: "Dr Lee", CommissionPercentage: 0}, false},
		{"above 100", CreateDoctorInput{Name: "Dr Tan", CommissionPercentage: 101}, true},
		{"negative", CreateDoctorInput{Name: "Dr Tan", CommissionPercentage: -1}, true},
		{"no name", CreateDoctorInput{Name: "  ", CommissionPercentage: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDoctorRepository)
			repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Doctor")).Return(nil)
			svc := NewDoctorService(repo)

			d, err := svc.CreateDoctor(context.Background(), &tt.input)
			if tt.wantErr {
				assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Active)
			assert.Equal(t, tt.input.CommissionPercentage, d.CommissionPercentage)
		})
	}
}

func TestDoctorService_UpdateDoctor(t *testing.T) {
	repo := new(MockDoctorRepository)
	svc := NewDoctorService(repo)
	id := uuid.New()
	doctor := &entity.Doctor{ID: id, Name: "Dr Tan", CommissionPercentage: 40, Active: true}

	repo.On("GetByID", mock.Anything, id).Return(doctor, nil)
	repo.On("Update", mock.Anything, doctor).Return(nil)

	bad := 150.0
	_, err := svc.UpdateDoctor(context.Background(), id, &UpdateDoctorInput{CommissionPercentage: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
	assert.Equal(t, 40.0, doctor.CommissionPercentage)

	pct, active := 35.0, false
	d, err := svc.UpdateDoctor(context.Background(), id, &UpdateDoctorInput{CommissionPercentage: &pct, Active: &active})
	require.NoError(t, err)
	assert.Equal(t, 35.0, d.CommissionPercentage)
	assert.False(t, d.Active)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestDoctorService_ListDoctors(t *testing.T) {
	repo := new(MockDoctorRepository)
	svc := NewDoctorService(repo)
	params := &pagination.PaginationParams{}

	repo.On("List", mock.Anything, params, "", true).Return([]entity.Doctor{{Name: "Dr Tan"}}, int64(1), nil)

	res, err := svc.ListDoctors(context.Background(), params, "", true)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, pagination.DefaultPerPage, res.Pagination.PerPage)
}

func TestDoctorService_DeleteDoctor(t *testing.T) {
	repo := new(MockDoctorRepository)
	svc := NewDoctorService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&entity.Doctor{ID: id}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.DeleteDoctor(context.Background(), id))
	repo.AssertExpectations(t)
}
