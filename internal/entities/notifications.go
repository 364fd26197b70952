package entities

import "time"

type NotificationKind string

const (
	NotificationDueSoon             NotificationKind = "due_soon"
	NotificationOverdue             NotificationKind = "overdue"
	NotificationReservationReady    NotificationKind = "reservation_ready"
	NotificationReservationExpiring NotificationKind = "reservation_expiring"
)

type NotificationSubject string

const (
	SubjectLoan        NotificationSubject = "loan"
	SubjectReservation NotificationSubject = "reservation"
)

// NotificationEvent is produced by the sweep and consumed by the delivery
// sink. It is not domain state and is never persisted as such.
type NotificationEvent struct {
	Kind        NotificationKind    `json:"kind"`
	SubjectType NotificationSubject `json:"subject_type"`
	SubjectID   uint                `json:"subject_id"`
	BorrowerID  uint                `json:"borrower_id"`
	ItemID      uint                `json:"item_id"`

	// DaysOffset is the boundary that fired: days until due for due_soon,
	// days past due for overdue, days until the pickup deadline for
	// reservation_expiring, zero for reservation_ready.
	DaysOffset int `json:"days_offset"`
}

// NotificationMark records that a (subject, kind, boundary) notification has
// fired, so repeated sweeps over the same data stay idempotent.
type NotificationMark struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	SubjectType NotificationSubject `gorm:"size:20;uniqueIndex:idx_mark_subject_kind_boundary" json:"subject_type"`
	SubjectID   uint                `gorm:"uniqueIndex:idx_mark_subject_kind_boundary" json:"subject_id"`
	Kind        NotificationKind    `gorm:"size:30;uniqueIndex:idx_mark_subject_kind_boundary" json:"kind"`
	Boundary    int                 `gorm:"uniqueIndex:idx_mark_subject_kind_boundary" json:"boundary"`
	FiredAt     time.Time           `gorm:"index" json:"fired_at"`
}

func (NotificationMark) TableName() string {
	return "notification_marks"
}
