package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindOverdue  NotificationKind = "OVERDUE"
	KindReminder NotificationKind = "REMINDER"
)

type NotificationState string

const (
	NotificationStateAll     NotificationState = "all"
	NotificationStatePending NotificationState = "pending"
	NotificationStateSent    NotificationState = "sent"
)

// ErrDuplicateNotification is returned by the store when an undelivered
// notification of the same kind already exists for the loan.
var ErrDuplicateNotification = errors.New("an undelivered notification already exists for this loan")

// Notification is an append-only audit record. The only mutation it ever
// sees is the pending-to-delivered transition.
type Notification struct {
	ID        uuid.UUID
	LoanID    uuid.UUID
	ContactID uuid.UUID
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
	SentAt    *time.Time
	Delivered bool

	Loan    *Loan
	Contact *Contact
}

type ListNotificationsOption struct {
	Skip  int
	Limit int

	ClassName   string
	Section     string
	State       NotificationState
	OldestFirst bool
}

func (u Usecase) ListNotifications(ctx context.Context, opt ListNotificationsOption) ([]Notification, int, error) {
	return u.repo.ListNotifications(ctx, opt)
}

func (u Usecase) GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error) {
	return u.repo.GetNotificationByID(ctx, id)
}
