package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/pkg/feecalc"
)

// ScheduledService is a catalog entry as seen by a calculation
type ScheduledService struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	Active     bool      `json:"active"`
}

// FeeSchedule is a read-only snapshot of everything a calculation needs from
// configuration: the catalog, the fee per payment method and the terminal
// policy. It is not a database entity. It is assembled from the catalog,
// payment_method_fees and billing_settings tables on every request.
type FeeSchedule struct {
	Currency string                            `json:"currency"`
	Services map[string]ScheduledService       `json:"services"`
	Fees     map[feecalc.PaymentMethod]float64 `json:"fees"`
	Terminal feecalc.TerminalChargePolicy      `json:"terminal"`
}

// ServiceKey normalises a service name for catalog lookups
func ServiceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewFeeSchedule assembles a schedule from stored configuration
func NewFeeSchedule(settings *BillingSettings, services []Service, fees []PaymentMethodFee) *FeeSchedule {
	s := &FeeSchedule{
		Currency: settings.Currency,
		Services: make(map[string]ScheduledService, len(services)),
		Fees:     make(map[feecalc.PaymentMethod]float64, len(fees)),
		Terminal: settings.TerminalPolicy(),
	}
	for _, svc := range services {
		s.Services[ServiceKey(svc.Name)] = ScheduledService{
			ID:         svc.ID,
			Name:       svc.Name,
			Percentage: svc.Percentage,
			Active:     svc.Active,
		}
	}
	for _, f := range fees {
		s.Fees[f.Method] = f.FeePercentage
	}
	return s
}

// LookupService finds a catalog entry by name, ignoring case and surrounding space
func (s *FeeSchedule) LookupService(name string) (ScheduledService, bool) {
	svc, ok := s.Services[ServiceKey(name)]
	return svc, ok
}

// Payment returns the method paired with its configured fee. A method with
// no stored fee row is charged 0%.
func (s *FeeSchedule) Payment(method feecalc.PaymentMethod) feecalc.Payment {
	return feecalc.Payment{Method: method, FeePercentage: s.Fees[method]}
}
