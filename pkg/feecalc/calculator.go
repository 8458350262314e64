// Package feecalc turns a treatment's base cost, selected services, extra
// charges and payment method into an invoice breakdown.
//
// The package holds no state. Fee percentages and the terminal policy are part
// of the Input, so the same Input always yields the same Result and calls may
// run concurrently from any number of goroutines.
package feecalc

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNonFinite is returned when a numeric input is NaN or infinite.
	ErrNonFinite = errors.New("feecalc: non-finite numeric input")
	// ErrUnknownPaymentMethod is returned for a method outside Methods.
	ErrUnknownPaymentMethod = errors.New("feecalc: unknown payment method")
	// ErrDuplicateService is returned when two selections share a name.
	ErrDuplicateService = errors.New("feecalc: duplicate service selection")
)

// ComputeInvoice runs the canonical fee pipeline:
//
//	service[i]   = base * pct[i] / 100
//	subtotal     = base + Σ service + Σ positive charges
//	paymentFee   = subtotal * fee% / 100
//	terminal     = (subtotal + paymentFee) * rate / 100, unless disabled or cash/union
//	total        = subtotal + paymentFee + terminal
//
// Business-rule violations such as negative fees or percentages above 100 are
// computed literally. Errors are reserved for inputs no caller should ever
// send: non-finite numbers, unknown methods and duplicate service names.
func ComputeInvoice(in Input) (Result, error) {
	if err := checkInput(in); err != nil {
		return Result{}, err
	}

	res := Result{
		BaseCost:       in.BaseCost,
		ServiceAmounts: make([]ServiceAmount, 0, len(in.Services)),
	}

	for _, svc := range in.Services {
		amount := in.BaseCost * svc.Percentage / 100
		res.ServiceAmounts = append(res.ServiceAmounts, ServiceAmount{
			Name:       svc.Name,
			Percentage: svc.Percentage,
			Amount:     amount,
		})
		res.ServicesTotal += amount
	}

	res.OtherChargesTotal = OtherChargesTotal(in.OtherCharges)
	res.Subtotal = in.BaseCost + res.ServicesTotal + res.OtherChargesTotal

	if in.Payment.FeePercentage != 0 {
		res.PaymentFeeAmount = res.Subtotal * in.Payment.FeePercentage / 100
	}
	res.AmountAfterPaymentFee = res.Subtotal + res.PaymentFeeAmount

	if in.Terminal.Enabled && !in.Payment.Method.TerminalExempt() {
		res.TerminalChargeAmount = res.AmountAfterPaymentFee * in.Terminal.Rate / 100
	}
	res.Total = res.AmountAfterPaymentFee + res.TerminalChargeAmount

	return res, nil
}

// OtherChargesTotal sums the charges with a positive amount. Zero and negative
// amounts count as absent.
func OtherChargesTotal(charges []OtherCharge) float64 {
	var total float64
	for _, ch := range charges {
		if ch.Amount > 0 {
			total += ch.Amount
		}
	}
	return total
}

// ComputeClinicDoctorSplit divides a service fee between the treating doctor
// and the clinic. ClinicFee is derived by subtraction so the two halves always
// add back up to serviceTotal.
func ComputeClinicDoctorSplit(serviceTotal, doctorPercentage float64) Split {
	doctorFee := serviceTotal * doctorPercentage / 100
	return Split{
		DoctorFee: doctorFee,
		ClinicFee: serviceTotal - doctorFee,
	}
}

func checkInput(in Input) error {
	if !finite(in.BaseCost) {
		return fmt.Errorf("%w: base cost", ErrNonFinite)
	}
	if !in.Payment.Method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, in.Payment.Method)
	}
	if !finite(in.Payment.FeePercentage) {
		return fmt.Errorf("%w: fee percentage for %s", ErrNonFinite, in.Payment.Method)
	}
	if !finite(in.Terminal.Rate) {
		return fmt.Errorf("%w: terminal rate", ErrNonFinite)
	}

	seen := make(map[string]struct{}, len(in.Services))
	for _, svc := range in.Services {
		if _, dup := seen[svc.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateService, svc.Name)
		}
		seen[svc.Name] = struct{}{}
		if !finite(svc.Percentage) {
			return fmt.Errorf("%w: percentage for %q", ErrNonFinite, svc.Name)
		}
	}

	for i, ch := range in.OtherCharges {
		if !finite(ch.Amount) {
			return fmt.Errorf("%w: other charge #%d", ErrNonFinite, i+1)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
