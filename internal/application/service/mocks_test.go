package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/feecalc"
	"github.com/sangkips/dentalbill-api/pkg/oauth"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	args := m.Called(ctx, params, search)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) SyncRoles(ctx context.Context, userID uuid.UUID, roleIDs []uint) error {
	return m.Called(ctx, userID, roleIDs).Error(0)
}

type MockRoleRepository struct{ mock.Mock }

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*entity.Role)
	return r, args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]entity.Role, error) {
	args := m.Called(ctx)
	roles, _ := args.Get(0).([]entity.Role)
	return roles, args.Error(1)
}

type MockPatientRepository struct{ mock.Mock }

func (m *MockPatientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Patient)
	return p, args.Error(1)
}

func (m *MockPatientRepository) GetByICNumber(ctx context.Context, icNumber string) (*entity.Patient, error) {
	args := m.Called(ctx, icNumber)
	p, _ := args.Get(0).(*entity.Patient)
	return p, args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *entity.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Patient, int64, error) {
	args := m.Called(ctx, params, search)
	patients, _ := args.Get(0).([]entity.Patient)
	return patients, args.Get(1).(int64), args.Error(2)
}

type MockDoctorRepository struct{ mock.Mock }

func (m *MockDoctorRepository) Create(ctx context.Context, doctor *entity.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*entity.Doctor)
	return d, args.Error(1)
}

func (m *MockDoctorRepository) Update(ctx context.Context, doctor *entity.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *MockDoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDoctorRepository) List(ctx context.Context, params *pagination.PaginationParams, search string, activeOnly bool) ([]entity.Doctor, int64, error) {
	args := m.Called(ctx, params, search, activeOnly)
	doctors, _ := args.Get(0).([]entity.Doctor)
	return doctors, args.Get(1).(int64), args.Error(2)
}

type MockServiceRepository struct{ mock.Mock }

func (m *MockServiceRepository) Create(ctx context.Context, service *entity.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*entity.Service)
	return s, args.Error(1)
}

func (m *MockServiceRepository) GetByName(ctx context.Context, name string) (*entity.Service, error) {
	args := m.Called(ctx, name)
	s, _ := args.Get(0).(*entity.Service)
	return s, args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *entity.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockServiceRepository) List(ctx context.Context, activeOnly bool) ([]entity.Service, error) {
	args := m.Called(ctx, activeOnly)
	services, _ := args.Get(0).([]entity.Service)
	return services, args.Error(1)
}

type MockPaymentFeeRepository struct{ mock.Mock }

func (m *MockPaymentFeeRepository) List(ctx context.Context) ([]entity.PaymentMethodFee, error) {
	args := m.Called(ctx)
	fees, _ := args.Get(0).([]entity.PaymentMethodFee)
	return fees, args.Error(1)
}

func (m *MockPaymentFeeRepository) GetByMethod(ctx context.Context, method feecalc.PaymentMethod) (*entity.PaymentMethodFee, error) {
	args := m.Called(ctx, method)
	f, _ := args.Get(0).(*entity.PaymentMethodFee)
	return f, args.Error(1)
}

func (m *MockPaymentFeeRepository) Upsert(ctx context.Context, fee *entity.PaymentMethodFee) error {
	return m.Called(ctx, fee).Error(0)
}

type MockBillingSettingsRepository struct{ mock.Mock }

func (m *MockBillingSettingsRepository) Get(ctx context.Context) (*entity.BillingSettings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*entity.BillingSettings)
	return s, args.Error(1)
}

func (m *MockBillingSettingsRepository) Save(ctx context.Context, settings *entity.BillingSettings) error {
	return m.Called(ctx, settings).Error(0)
}

type MockScheduleCache struct{ mock.Mock }

func (m *MockScheduleCache) Get(ctx context.Context) (*entity.FeeSchedule, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*entity.FeeSchedule)
	return s, args.Error(1)
}

func (m *MockScheduleCache) Set(ctx context.Context, schedule *entity.FeeSchedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockScheduleProvider struct{ mock.Mock }

func (m *MockScheduleProvider) CurrentSchedule(ctx context.Context) (*entity.FeeSchedule, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*entity.FeeSchedule)
	return s, args.Error(1)
}

type MockReceiptRepository struct{ mock.Mock }

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

// GetByID also accepts a func as return value so a test can hand back
// whatever an earlier Create or Update stored.
func (m *MockReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) *entity.Receipt); ok {
		return fn(ctx, id), args.Error(1)
	}
	r, _ := args.Get(0).(*entity.Receipt)
	return r, args.Error(1)
}

func (m *MockReceiptRepository) GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Receipt, error) {
	args := m.Called(ctx, receiptNo)
	r, _ := args.Get(0).(*entity.Receipt)
	return r, args.Error(1)
}

func (m *MockReceiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

func (m *MockReceiptRepository) Void(ctx context.Context, id uuid.UUID, voidedAt time.Time, reason *string) error {
	return m.Called(ctx, id, voidedAt, reason).Error(0)
}

func (m *MockReceiptRepository) List(ctx context.Context, params *repository.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	args := m.Called(ctx, params)
	receipts, _ := args.Get(0).([]entity.Receipt)
	return receipts, args.Get(1).(int64), args.Error(2)
}

func (m *MockReceiptRepository) ListWithCursor(ctx context.Context, params *repository.ReceiptCursorFilterParams) ([]entity.Receipt, error) {
	args := m.Called(ctx, params)
	receipts, _ := args.Get(0).([]entity.Receipt)
	return receipts, args.Error(1)
}

// FindInBatches feeds the receipts given as the first return value to fn as
// a single batch.
func (m *MockReceiptRepository) FindInBatches(ctx context.Context, filter repository.ReceiptFilter, batchSize int, fn func(batch []entity.Receipt) error) error {
	args := m.Called(ctx, filter, batchSize)
	if batch, ok := args.Get(0).([]entity.Receipt); ok && len(batch) > 0 {
		if err := fn(batch); err != nil {
			return err
		}
	}
	return args.Error(1)
}

type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) GetRevenueTotals(ctx context.Context, from, to time.Time) (*repository.RevenueTotalsResult, error) {
	args := m.Called(ctx, from, to)
	r, _ := args.Get(0).(*repository.RevenueTotalsResult)
	return r, args.Error(1)
}

func (m *MockReportRepository) GetTotalsByMethod(ctx context.Context, from, to time.Time) ([]repository.MethodTotalResult, error) {
	args := m.Called(ctx, from, to)
	r, _ := args.Get(0).([]repository.MethodTotalResult)
	return r, args.Error(1)
}

func (m *MockReportRepository) GetDoctorServiceTotals(ctx context.Context, from, to time.Time) ([]repository.DoctorServiceResult, error) {
	args := m.Called(ctx, from, to)
	r, _ := args.Get(0).([]repository.DoctorServiceResult)
	return r, args.Error(1)
}

type MockGoogleAuthenticator struct{ mock.Mock }

func (m *MockGoogleAuthenticator) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockGoogleAuthenticator) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockGoogleAuthenticator) Authenticate(ctx context.Context, code string) (*oauth.GoogleUserInfo, error) {
	args := m.Called(ctx, code)
	info, _ := args.Get(0).(*oauth.GoogleUserInfo)
	return info, args.Error(1)
}
