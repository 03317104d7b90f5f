package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrAlreadyDelivered is returned when a send targets a notification that
// has already been marked delivered.
var ErrAlreadyDelivered = errors.New("notification already delivered")

// DeliverPending drains undelivered notifications oldest first and returns
// (sent, failed) counts. A transport failure leaves the notification
// pending, is logged with its id, and does not abort the batch; the next
// run re-attempts it.
func (u Usecase) DeliverPending(ctx context.Context) (int, int, error) {
	pending, _, err := u.repo.ListNotifications(ctx, ListNotificationsOption{
		State:       NotificationStatePending,
		OldestFirst: true,
	})
	if err != nil {
		return 0, 0, err
	}

	var sent, failed int
	for _, n := range pending {
		if err := u.deliverOne(ctx, n); err != nil {
			if errors.Is(err, ErrAlreadyDelivered) {
				// another sender recorded this one first
				continue
			}
			failed++
			u.logger.Error("failed to deliver notification",
				slog.String("notification_id", n.ID.String()),
				slog.String("err", err.Error()),
			)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

// SendNotification delivers one specific notification on demand, with the
// same success and failure handling as the batch.
func (u Usecase) SendNotification(ctx context.Context, id uuid.UUID) error {
	n, err := u.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Delivered {
		return ErrAlreadyDelivered
	}
	return u.deliverOne(ctx, n)
}

// deliverOne submits the message and marks the notification delivered. The
// mark is a compare-and-set on the delivered flag: each mark is persisted
// immediately, so a crash mid-batch never re-sends the ones already marked,
// and a concurrent manual send cannot be recorded twice.
func (u Usecase) deliverOne(ctx context.Context, n Notification) error {
	email, err := u.buildNotificationEmail(n)
	if err != nil {
		return err
	}

	if err := u.mailer.SendEmail(ctx, email); err != nil {
		return err
	}

	marked, err := u.repo.MarkNotificationDelivered(ctx, n.ID, u.now())
	if err != nil {
		return err
	}
	if !marked {
		return ErrAlreadyDelivered
	}
	return nil
}
