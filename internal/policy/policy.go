// Package policy holds the circulation rule set: loan period, fine schedule,
// and hold windows. All fine arithmetic lives here as pure functions so every
// call site charges the same amounts.
package policy

import (
	"time"

	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/entities"
)

type Policy struct {
	LoanPeriod       time.Duration
	FinePerDiem      float64
	DamagedSurcharge float64
	ReplacementCost  float64
	HoldExpiry       time.Duration
	PickupWindow     time.Duration
}

// FromConfig builds a Policy from the environment-driven configuration.
func FromConfig(cfg config.Policy) Policy {
	return Policy{
		LoanPeriod:       time.Duration(cfg.LoanPeriodDays) * 24 * time.Hour,
		FinePerDiem:      cfg.FinePerDiem,
		DamagedSurcharge: cfg.DamagedSurcharge,
		ReplacementCost:  cfg.ReplacementCost,
		HoldExpiry:       time.Duration(cfg.HoldExpiryDays) * 24 * time.Hour,
		PickupWindow:     time.Duration(cfg.PickupWindowDays) * 24 * time.Hour,
	}
}

// Default returns the stock policy constants.
func Default() Policy {
	return Policy{
		LoanPeriod:       time.Duration(config.DefaultLoanPeriodDays) * 24 * time.Hour,
		FinePerDiem:      config.DefaultFinePerDiem,
		DamagedSurcharge: config.DefaultDamagedSurcharge,
		ReplacementCost:  config.DefaultReplacementCost,
		HoldExpiry:       time.Duration(config.DefaultHoldExpiryDays) * 24 * time.Hour,
		PickupWindow:     time.Duration(config.DefaultPickupWindowDays) * 24 * time.Hour,
	}
}

// DueDate computes the default due date for a checkout instant.
func (p Policy) DueDate(checkout time.Time) time.Time {
	return checkout.Add(p.LoanPeriod)
}

// DaysLate is the number of whole or partial days ts falls past due.
// Zero when ts is on or before due.
func (p Policy) DaysLate(due, ts time.Time) int {
	if !ts.After(due) {
		return 0
	}
	const day = 24 * time.Hour
	late := ts.Sub(due)
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// Fine computes the charge for a loan with the given due date, settled at ts
// in the given condition. Lost items are charged the replacement cost
// instead of the accumulated daily fine.
func (p Policy) Fine(due, ts time.Time, condition entities.ReturnCondition) float64 {
	if condition == entities.ReturnConditionLost {
		return p.ReplacementCost
	}
	fine := float64(p.DaysLate(due, ts)) * p.FinePerDiem
	if condition == entities.ReturnConditionDamaged {
		fine += p.DamagedSurcharge
	}
	return fine
}

// AccruedFine is the running fine for a still-open loan observed at ts.
// Monotonically non-decreasing in ts.
func (p Policy) AccruedFine(due, ts time.Time) float64 {
	return float64(p.DaysLate(due, ts)) * p.FinePerDiem
}
