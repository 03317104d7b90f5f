package usecase

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/config"
)

// Repository is the durable store behind the usecase layer.
type Repository interface {
	Health() map[string]string
	Close() error

	GetBookByID(context.Context, uuid.UUID) (Book, error)
	GetStudentByID(context.Context, uuid.UUID) (Student, error)

	ListLoans(context.Context, ListLoansOption) ([]Loan, int, error)
	GetLoanByID(context.Context, uuid.UUID) (Loan, error)
	CreateLoan(context.Context, Loan) (Loan, error)
	ReturnLoan(context.Context, uuid.UUID, time.Time) (Loan, error)
	IsLoanReturned(context.Context, uuid.UUID) (bool, error)

	ListContacts(context.Context, ListContactsOption) ([]Contact, int, error)
	CreateContact(context.Context, Contact) (Contact, error)
	FindActiveContacts(ctx context.Context, className, section string) ([]Contact, error)

	CreateNotification(context.Context, Notification) (Notification, error)
	ListNotifications(context.Context, ListNotificationsOption) ([]Notification, int, error)
	GetNotificationByID(context.Context, uuid.UUID) (Notification, error)
	HasNotificationForLoan(ctx context.Context, loanID uuid.UUID, kind NotificationKind) (bool, error)
	MarkNotificationDelivered(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)
}

// EmailProvider submits one outbound message to the mail transport.
type EmailProvider interface {
	SendEmail(context.Context, Email) error
}

type Usecase struct {
	repo   Repository
	mailer EmailProvider
	logger *slog.Logger

	from         string
	loanPeriod   int
	reminderLead int
	now          func() time.Time
}

func New(repo Repository, mailer EmailProvider, logger *slog.Logger) Usecase {
	from := os.Getenv(config.ENV_KEY_SMTP_FROM)
	if from == "" {
		from = "no-reply@shelfwise.org"
	}

	loanPeriod := 14
	if d, err := strconv.Atoi(os.Getenv(config.ENV_KEY_LOAN_PERIOD_DAYS)); err == nil && d > 0 {
		loanPeriod = d
	}

	reminderLead := 2
	if d, err := strconv.Atoi(os.Getenv(config.ENV_KEY_REMINDER_LEAD_DAYS)); err == nil && d > 0 {
		reminderLead = d
	}

	return Usecase{
		repo:         repo,
		mailer:       mailer,
		logger:       logger,
		from:         from,
		loanPeriod:   loanPeriod,
		reminderLead: reminderLead,
		now:          time.Now,
	}
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}

type ErrNotFound struct {
	ID      uuid.UUID
	Code    string
	Message string
}

func (e ErrNotFound) Error() string {
	return e.Message
}

// startOfDay truncates t to its calendar date. Overdue and reminder cutoffs
// compare at date granularity, not timestamps.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from one date to the other. Both ends
// are normalized to UTC midnights first, so a DST-shortened day in the
// loan's zone still counts as a full day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
