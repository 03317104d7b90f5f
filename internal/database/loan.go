package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Loan struct {
	ID         uuid.UUID  `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	BookID     uuid.UUID  `gorm:"column:book_id;type:uuid;"`
	Book       *Book      `gorm:"foreignKey:BookID;references:ID"`
	StudentID  uuid.UUID  `gorm:"column:student_id;type:uuid;"`
	Student    *Student   `gorm:"foreignKey:StudentID;references:ID"`
	IssuedAt   time.Time  `gorm:"column:issued_at;default:now()"`
	DueAt      time.Time  `gorm:"column:due_at"`
	ReturnedAt *time.Time `gorm:"column:returned_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

func (s *service) ListLoans(ctx context.Context, opt usecase.ListLoansOption) ([]usecase.Loan, int, error) {
	var (
		loans  []Loan
		uloans []usecase.Loan
		count  int64
	)

	db := s.db.Model([]Loan{}).WithContext(ctx)

	if len(opt.BookIDs) > 0 {
		db = db.Where("book_id IN ?", opt.BookIDs)
	}
	if len(opt.StudentIDs) > 0 {
		db = db.Where("student_id IN ?", opt.StudentIDs)
	}
	if opt.IsActive {
		db = db.Where("returned_at IS NULL")
	}
	if opt.DueFrom != nil {
		db = db.Where("due_at >= ?", opt.DueFrom)
	}
	if opt.DueBefore != nil {
		db = db.Where("due_at < ?", opt.DueBefore)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if opt.Limit > 0 {
		db = db.Limit(opt.Limit)
	}

	if err := db.
		Preload("Book").
		Preload("Student").
		Offset(opt.Skip).
		Order("due_at ASC").
		Find(&loans).
		Error; err != nil {

		return nil, 0, err
	}

	for _, l := range loans {
		uloans = append(uloans, l.ConvertToUsecase())
	}

	return uloans, int(count), nil
}

func (s *service) GetLoanByID(ctx context.Context, id uuid.UUID) (usecase.Loan, error) {
	var l Loan

	err := s.db.
		Model(Loan{}).
		WithContext(ctx).
		Preload("Book").
		Preload("Student").
		Where("id = ?", id).
		First(&l).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Loan{}, usecase.ErrNotFound{
			ID:      id,
			Code:    "LOAN_NOT_FOUND",
			Message: "loan not found",
		}
	}
	if err != nil {
		return usecase.Loan{}, err
	}

	return l.ConvertToUsecase(), nil
}

func (s *service) CreateLoan(ctx context.Context, l usecase.Loan) (usecase.Loan, error) {
	loan := Loan{
		BookID:    l.BookID,
		StudentID: l.StudentID,
		IssuedAt:  l.IssuedAt,
		DueAt:     l.DueAt,
	}

	if err := s.db.WithContext(ctx).Create(&loan).Error; err != nil {
		return usecase.Loan{}, err
	}

	return loan.ConvertToUsecase(), nil
}

// ReturnLoan closes the loan only if it is still open, so a repeated return
// request cannot move the recorded return time.
func (s *service) ReturnLoan(ctx context.Context, id uuid.UUID, returnedAt time.Time) (usecase.Loan, error) {
	res := s.db.WithContext(ctx).
		Model(&Loan{}).
		Where("id = ? AND returned_at IS NULL", id).
		Update("returned_at", returnedAt)
	if res.Error != nil {
		return usecase.Loan{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.Loan{}, usecase.ErrNotFound{
			ID:      id,
			Code:    "OPEN_LOAN_NOT_FOUND",
			Message: "open loan not found",
		}
	}

	return s.GetLoanByID(ctx, id)
}

func (s *service) IsLoanReturned(ctx context.Context, id uuid.UUID) (bool, error) {
	var l Loan
	err := s.db.WithContext(ctx).
		Select("id", "returned_at").
		Where("id = ?", id).
		First(&l).
		Error
	if err != nil {
		return false, err
	}
	return l.ReturnedAt != nil, nil
}

// Convert core model to Usecase
func (l Loan) ConvertToUsecase() usecase.Loan {
	ul := usecase.Loan{
		ID:         l.ID,
		BookID:     l.BookID,
		StudentID:  l.StudentID,
		IssuedAt:   l.IssuedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}

	if l.Book != nil {
		book := l.Book.ConvertToUsecase()
		ul.Book = &book
	}
	if l.Student != nil {
		student := l.Student.ConvertToUsecase()
		ul.Student = &student
	}

	return ul
}
