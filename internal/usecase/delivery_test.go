package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPending queues one notification through the detector and returns it.
func seedPending(t *testing.T, u Usecase, repo *fakeRepo, title, email string, dueAt time.Time) Notification {
	t.Helper()
	ctx := context.Background()

	book := repo.addBook(title)
	student := repo.addStudent("Student of "+title, "10", title, 1)
	repo.addContact("Contact of "+title, email, "10", title)
	repo.addLoan(book, student, dueAt)

	queued, err := u.DetectOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, queued)

	notifications, _, err := u.ListNotifications(ctx, ListNotificationsOption{
		Section: title,
		State:   NotificationStatePending,
	})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	return notifications[0]
}

func TestDeliverPendingMarksDelivered(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	n := seedPending(t, u, repo, "Emil and the Detectives", "a@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	sent, failed, err := u.DeliverPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"a@school.test"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, n.Message)

	got, err := u.GetNotificationByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, testNow, *got.SentAt)
}

func TestDeliverPendingDrainsOldestFirst(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	seedPending(t, u, repo, "A", "first@school.test", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC))
	seedPending(t, u, repo, "B", "second@school.test", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	seedPending(t, u, repo, "C", "third@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	sent, failed, err := u.DeliverPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, 0, failed)

	require.Len(t, mailer.sent, 3)
	assert.Equal(t, []string{"first@school.test"}, mailer.sent[0].To)
	assert.Equal(t, []string{"second@school.test"}, mailer.sent[1].To)
	assert.Equal(t, []string{"third@school.test"}, mailer.sent[2].To)
}

func TestDeliverPendingContinuesPastTransportFailure(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	seedPending(t, u, repo, "A", "ok1@school.test", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC))
	broken := seedPending(t, u, repo, "B", "broken@school.test", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	seedPending(t, u, repo, "C", "ok2@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	mailer.fail = func(e Email) error {
		if e.To[0] == "broken@school.test" {
			return errors.New("smtp: 421 service not available")
		}
		return nil
	}

	sent, failed, err := u.DeliverPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)

	got, err := u.GetNotificationByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.False(t, got.Delivered)
	assert.Nil(t, got.SentAt)

	// Transport recovers; only the failed one is still pending.
	mailer.fail = nil
	sent, failed, err = u.DeliverPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)

	got, err = u.GetNotificationByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
}

func TestDeliverPendingDoesNotResend(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	seedPending(t, u, repo, "A", "once@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	sent, _, err := u.DeliverPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	sent, failed, err := u.DeliverPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
	assert.Len(t, mailer.sent, 1)
}

func TestSendNotificationDeliversOne(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	n := seedPending(t, u, repo, "A", "manual@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, u.SendNotification(ctx, n.ID))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Subject, "Overdue Book")

	got, err := u.GetNotificationByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
}

func TestSendNotificationRejectsAlreadyDelivered(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	n := seedPending(t, u, repo, "A", "twice@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, u.SendNotification(ctx, n.ID))

	err := u.SendNotification(ctx, n.ID)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
	assert.Len(t, mailer.sent, 1)
}

func TestSendNotificationReportsLostMarkRace(t *testing.T) {
	u, repo, mailer := newTestUsecase(t)
	ctx := context.Background()

	n := seedPending(t, u, repo, "A", "race@school.test", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	// Another sender marks the notification delivered after our read but
	// before our mark: the compare-and-set fails and the send is reported
	// as a conflict.
	mailer.fail = func(Email) error {
		marked, err := repo.MarkNotificationDelivered(ctx, n.ID, testNow)
		require.NoError(t, err)
		require.True(t, marked)
		return nil
	}

	err := u.SendNotification(ctx, n.ID)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
}

func TestSendNotificationUnknownID(t *testing.T) {
	u, _, _ := newTestUsecase(t)

	err := u.SendNotification(context.Background(), uuid.New())
	var nf ErrNotFound
	assert.ErrorAs(t, err, &nf)
}
