package config

// Default paths and circulation policy constants
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"

	// DefaultLoanPeriodDays is how long a checkout runs before it is due
	DefaultLoanPeriodDays = 14

	// DefaultFinePerDiem is the canonical per-day late fine. The legacy route
	// handlers disagreed between 0.25 and 0.50; 0.50 is the policy value and
	// branches that want something else set FINE_PER_DIEM.
	DefaultFinePerDiem = 0.50

	// DefaultDamagedSurcharge is the flat charge added on a damaged return
	DefaultDamagedSurcharge = 10.00

	// DefaultReplacementCost is charged for a lost item instead of the daily fine
	DefaultReplacementCost = 25.00

	// DefaultHoldExpiryDays is how long a pending hold remains queued
	DefaultHoldExpiryDays = 7

	// DefaultPickupWindowDays is how long a promoted hold waits at the desk
	DefaultPickupWindowDays = 7
)
