package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	KindInfo              = "INFO"
	KindMilestoneDue      = "MILESTONE_DUE"
	KindPaymentOverdue    = "PAYMENT_OVERDUE"
	KindBillStatusChanged = "BILL_STATUS_CHANGED"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	RefEntity string     `json:"refEntity,omitempty"`
	RefID     *uuid.UUID `json:"refId,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewNotificationInput for raising notifications.
type NewNotificationInput struct {
	UserID    uuid.UUID
	Kind      string
	Title     string
	Body      string
	RefEntity string
	RefID     *uuid.UUID
}
