// Package database provides the GORM bootstrap for the library database and
// hosts one repository package per entity:
//
//   - items: catalog item reads and status projection writes
//   - loans: the loan ledger rows
//   - reservations: the per-item hold queues
//   - members: borrower records
//   - notifications: the once-per-boundary notification mark ledger
//   - audit: audit trail events
//
// Repositories wrap a *gorm.DB and contain no business rules; status
// transitions are decided by internal/lifecycle and executed inside a single
// transaction per operation.
package database
