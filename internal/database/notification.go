package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	LoanID    uuid.UUID  `gorm:"column:loan_id;type:uuid;"`
	Loan      *Loan      `gorm:"foreignKey:LoanID;references:ID"`
	ContactID uuid.UUID  `gorm:"column:contact_id;type:uuid;"`
	Contact   *Contact   `gorm:"foreignKey:ContactID;references:ID"`
	Kind      string     `gorm:"column:kind;check:kind IN ('OVERDUE', 'REMINDER')"`
	Message   string     `gorm:"column:message;type:text"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	SentAt    *time.Time `gorm:"column:sent_at"`
	Delivered bool       `gorm:"column:delivered;default:false"`
}

func (Notification) TableName() string {
	return "notifications"
}

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (loan_id, kind) WHERE delivered = false.
const uniqueViolation = "23505"

func (s *service) CreateNotification(ctx context.Context, n usecase.Notification) (usecase.Notification, error) {
	notification := Notification{
		LoanID:    n.LoanID,
		ContactID: n.ContactID,
		Kind:      string(n.Kind),
		Message:   n.Message,
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return usecase.Notification{}, usecase.ErrDuplicateNotification
		}
		return usecase.Notification{}, err
	}

	return notification.ConvertToUsecase(), nil
}

func (s *service) ListNotifications(ctx context.Context, opt usecase.ListNotificationsOption) ([]usecase.Notification, int, error) {
	var (
		notifications  []Notification
		unotifications []usecase.Notification
		count          int64
	)

	db := s.db.Model([]Notification{}).WithContext(ctx)

	if opt.ClassName != "" || opt.Section != "" {
		db = db.Joins("Contact")
		if opt.ClassName != "" {
			db = db.Where(`"Contact".class_name = ?`, opt.ClassName)
		}
		if opt.Section != "" {
			db = db.Where(`"Contact".section = ?`, opt.Section)
		}
	}

	switch opt.State {
	case usecase.NotificationStatePending:
		db = db.Where("delivered = ?", false)
	case usecase.NotificationStateSent:
		db = db.Where("delivered = ?", true)
	}

	order := "notifications.created_at DESC"
	if opt.OldestFirst {
		order = "notifications.created_at ASC"
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if opt.Limit > 0 {
		db = db.Limit(opt.Limit)
	}

	if err := db.
		Preload("Loan").
		Preload("Loan.Book").
		Preload("Loan.Student").
		Preload("Contact").
		Offset(opt.Skip).
		Order(order).
		Find(&notifications).
		Error; err != nil {

		return nil, 0, err
	}

	for _, n := range notifications {
		unotifications = append(unotifications, n.ConvertToUsecase())
	}

	return unotifications, int(count), nil
}

func (s *service) GetNotificationByID(ctx context.Context, id uuid.UUID) (usecase.Notification, error) {
	var n Notification

	err := s.db.
		Model(Notification{}).
		WithContext(ctx).
		Preload("Loan").
		Preload("Loan.Book").
		Preload("Loan.Student").
		Preload("Contact").
		Where("id = ?", id).
		First(&n).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Notification{}, usecase.ErrNotFound{
			ID:      id,
			Code:    "NOTIFICATION_NOT_FOUND",
			Message: "notification not found",
		}
	}
	if err != nil {
		return usecase.Notification{}, err
	}

	return n.ConvertToUsecase(), nil
}

func (s *service) HasNotificationForLoan(ctx context.Context, loanID uuid.UUID, kind usecase.NotificationKind) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("loan_id = ? AND kind = ?", loanID, string(kind)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkNotificationDelivered transitions a pending notification to
// delivered. The update is conditioned on the current delivered flag, so
// concurrent senders record the transition exactly once; the return value
// reports whether this caller won.
func (s *service) MarkNotificationDelivered(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND delivered = ?", id, false).
		Updates(map[string]any{
			"delivered": true,
			"sent_at":   sentAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Convert core model to Usecase
func (n Notification) ConvertToUsecase() usecase.Notification {
	un := usecase.Notification{
		ID:        n.ID,
		LoanID:    n.LoanID,
		ContactID: n.ContactID,
		Kind:      usecase.NotificationKind(n.Kind),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		SentAt:    n.SentAt,
		Delivered: n.Delivered,
	}

	if n.Loan != nil {
		loan := n.Loan.ConvertToUsecase()
		un.Loan = &loan
	}
	if n.Contact != nil {
		contact := n.Contact.ConvertToUsecase()
		un.Contact = &contact
	}

	return un
}
