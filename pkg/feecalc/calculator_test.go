package feecalc

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func creditCardInput() Input {
	return Input{
		BaseCost:     100,
		Services:     []ServiceSelection{{Name: "Scaling", Percentage: 20}},
		OtherCharges: []OtherCharge{{Description: "X-ray film", Amount: 15}},
		Payment:      Payment{Method: MethodCreditCard, FeePercentage: 1.2},
		Terminal:     TerminalChargePolicy{Enabled: true, Rate: 8},
	}
}

func TestComputeInvoice_CreditCardScenario(t *testing.T) {
	res, err := ComputeInvoice(creditCardInput())
	require.NoError(t, err)

	assert.InDelta(t, 100, res.BaseCost, epsilon)
	require.Len(t, res.ServiceAmounts, 1)
	assert.Equal(t, "Scaling", res.ServiceAmounts[0].Name)
	assert.InDelta(t, 20, res.ServiceAmounts[0].Amount, epsilon)
	assert.InDelta(t, 20, res.ServicesTotal, epsilon)
	assert.InDelta(t, 15, res.OtherChargesTotal, epsilon)
	assert.InDelta(t, 135, res.Subtotal, epsilon)
	assert.InDelta(t, 1.62, res.PaymentFeeAmount, epsilon)
	assert.InDelta(t, 136.62, res.AmountAfterPaymentFee, epsilon)
	assert.InDelta(t, 10.9296, res.TerminalChargeAmount, epsilon)
	assert.InDelta(t, 147.5496, res.Total, epsilon)
}

func TestComputeInvoice_CashIsFullyExempt(t *testing.T) {
	res, err := ComputeInvoice(Input{
		BaseCost: 200,
		Payment:  Payment{Method: MethodCash},
		Terminal: TerminalChargePolicy{Enabled: true, Rate: 8},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.PaymentFeeAmount)
	assert.Equal(t, 0.0, res.TerminalChargeAmount)
	assert.Equal(t, 200.0, res.Total)
	assert.Empty(t, res.ServiceAmounts)
}

func TestComputeInvoice_OtherChargesIgnoreNonPositive(t *testing.T) {
	res, err := ComputeInvoice(Input{
		BaseCost: 50,
		OtherCharges: []OtherCharge{
			{Description: "waived", Amount: 0},
			{Description: "typo", Amount: -5},
			{Description: "mouthguard", Amount: 10},
		},
		Payment: Payment{Method: MethodOnline},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.OtherChargesTotal)
	assert.Equal(t, 60.0, res.Subtotal)
}

func TestComputeInvoice_ZeroBase(t *testing.T) {
	methods := []Payment{
		{Method: MethodCash},
		{Method: MethodDebitCard, FeePercentage: 0.5},
		{Method: MethodMastercard, FeePercentage: 2.5},
	}
	for _, p := range methods {
		t.Run(string(p.Method), func(t *testing.T) {
			res, err := ComputeInvoice(Input{
				BaseCost: 0,
				Services: []ServiceSelection{
					{Name: "Filling", Percentage: 35},
					{Name: "Crown", Percentage: 80},
				},
				Payment:  p,
				Terminal: TerminalChargePolicy{Enabled: true, Rate: 8},
			})
			require.NoError(t, err)
			assert.Equal(t, 0.0, res.ServicesTotal)
			assert.Equal(t, 0.0, res.Total)
		})
	}
}

func TestComputeInvoice_ServicesDoNotCompound(t *testing.T) {
	a := []ServiceSelection{{Name: "Scaling", Percentage: 20}, {Name: "Polish", Percentage: 7.5}}
	b := []ServiceSelection{{Name: "X-ray", Percentage: 10}, {Name: "Fluoride", Percentage: 3.25}}

	servicesTotal := func(sel []ServiceSelection) float64 {
		res, err := ComputeInvoice(Input{BaseCost: 240, Services: sel, Payment: Payment{Method: MethodCash}})
		require.NoError(t, err)
		return res.ServicesTotal
	}

	union := append(append([]ServiceSelection{}, a...), b...)
	assert.InDelta(t, servicesTotal(a)+servicesTotal(b), servicesTotal(union), epsilon)

	res, err := ComputeInvoice(Input{BaseCost: 240, Services: union, Payment: Payment{Method: MethodCash}})
	require.NoError(t, err)
	for _, line := range res.ServiceAmounts {
		assert.InDelta(t, 240*line.Percentage/100, line.Amount, epsilon, line.Name)
	}
}

func TestComputeInvoice_TerminalPolicy(t *testing.T) {
	tests := []struct {
		name     string
		method   PaymentMethod
		enabled  bool
		wantZero bool
	}{
		{"cash enabled", MethodCash, true, true},
		{"union enabled", MethodUnion, true, true},
		{"online enabled", MethodOnline, true, false},
		{"debit enabled", MethodDebitCard, true, false},
		{"mastercard enabled", MethodMastercard, true, false},
		{"credit disabled", MethodCreditCard, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ComputeInvoice(Input{
				BaseCost: 300,
				Services: []ServiceSelection{{Name: "Root canal", Percentage: 40}},
				Payment:  Payment{Method: tt.method, FeePercentage: 1},
				Terminal: TerminalChargePolicy{Enabled: tt.enabled, Rate: 8},
			})
			require.NoError(t, err)
			if tt.wantZero {
				assert.Equal(t, 0.0, res.TerminalChargeAmount)
				assert.Equal(t, res.AmountAfterPaymentFee, res.Total)
			} else {
				assert.InDelta(t, res.AmountAfterPaymentFee*0.08, res.TerminalChargeAmount, epsilon)
			}
		})
	}
}

func TestComputeInvoice_ZeroFeeIsExactZero(t *testing.T) {
	res, err := ComputeInvoice(Input{
		BaseCost: 0.1,
		Services: []ServiceSelection{{Name: "Check-up", Percentage: 33.3333}},
		Payment:  Payment{Method: MethodOnline, FeePercentage: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.PaymentFeeAmount)
	assert.False(t, math.Signbit(res.PaymentFeeAmount))
	assert.Equal(t, res.Subtotal, res.AmountAfterPaymentFee)
}

func TestComputeInvoice_PermissiveOnBusinessRules(t *testing.T) {
	res, err := ComputeInvoice(Input{
		BaseCost: 100,
		Services: []ServiceSelection{{Name: "Implant", Percentage: 150}},
		Payment:  Payment{Method: MethodCreditCard, FeePercentage: -2},
	})
	require.NoError(t, err)
	assert.InDelta(t, 150, res.ServicesTotal, epsilon)
	assert.InDelta(t, -5, res.PaymentFeeAmount, epsilon)
	assert.InDelta(t, 245, res.Total, epsilon)
}

func TestComputeInvoice_Deterministic(t *testing.T) {
	in := creditCardInput()
	first, err := ComputeInvoice(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ComputeInvoice(in)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestComputeInvoice_ResultIsFresh(t *testing.T) {
	in := creditCardInput()
	first, err := ComputeInvoice(in)
	require.NoError(t, err)

	first.ServiceAmounts[0].Amount = 999
	second, err := ComputeInvoice(in)
	require.NoError(t, err)
	assert.InDelta(t, 20, second.ServiceAmounts[0].Amount, epsilon)
}

func TestComputeInvoice_ProgrammingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{"nan base", func(in *Input) { in.BaseCost = math.NaN() }, ErrNonFinite},
		{"inf fee", func(in *Input) { in.Payment.FeePercentage = math.Inf(1) }, ErrNonFinite},
		{"nan terminal rate", func(in *Input) { in.Terminal.Rate = math.NaN() }, ErrNonFinite},
		{"inf service pct", func(in *Input) { in.Services[0].Percentage = math.Inf(-1) }, ErrNonFinite},
		{"nan charge", func(in *Input) { in.OtherCharges[0].Amount = math.NaN() }, ErrNonFinite},
		{"unknown method", func(in *Input) { in.Payment.Method = "cheque" }, ErrUnknownPaymentMethod},
		{"empty method", func(in *Input) { in.Payment.Method = "" }, ErrUnknownPaymentMethod},
		{"duplicate service", func(in *Input) {
			in.Services = append(in.Services, ServiceSelection{Name: "Scaling", Percentage: 5})
		}, ErrDuplicateService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := creditCardInput()
			tt.mutate(&in)
			_, err := ComputeInvoice(in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComputeClinicDoctorSplit(t *testing.T) {
	totals := []float64{0, 0.01, 1, 19.99, 20, 133.33, 1000, 2599.95}
	percentages := []float64{0, 12.5, 33.3333, 40, 50, 66.6667, 99.99, 100}

	for _, x := range totals {
		for _, p := range percentages {
			split := ComputeClinicDoctorSplit(x, p)
			assert.InDelta(t, x, split.DoctorFee+split.ClinicFee, epsilon, "x=%v p=%v", x, p)
		}
	}

	split := ComputeClinicDoctorSplit(20, 40)
	assert.InDelta(t, 8, split.DoctorFee, epsilon)
	assert.InDelta(t, 12, split.ClinicFee, epsilon)
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in    string
		want  PaymentMethod
		valid bool
	}{
		{"cash", MethodCash, true},
		{"Credit Card", MethodCreditCard, true},
		{" DEBIT-CARD ", MethodDebitCard, true},
		{"Mastercard", MethodMastercard, true},
		{"union", MethodUnion, true},
		{"cheque", PaymentMethod("cheque"), false},
		{"", PaymentMethod(""), false},
	}
	for _, tt := range tests {
		got, ok := ParsePaymentMethod(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
	}
}

func TestPaymentMethod_TerminalExempt(t *testing.T) {
	for _, m := range Methods {
		want := m == MethodCash || m == MethodUnion
		assert.Equal(t, want, m.TerminalExempt(), string(m))
	}
}
