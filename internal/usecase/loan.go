package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Loan struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	StudentID  uuid.UUID
	IssuedAt   time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Book    *Book
	Student *Student
}

type ListLoansOption struct {
	Skip  int
	Limit int

	BookIDs    uuid.UUIDs
	StudentIDs uuid.UUIDs
	IsActive   bool
	DueFrom    *time.Time
	DueBefore  *time.Time
}

func (u Usecase) ListLoans(ctx context.Context, opt ListLoansOption) ([]Loan, int, error) {
	return u.repo.ListLoans(ctx, opt)
}

func (u Usecase) GetLoanByID(ctx context.Context, id uuid.UUID) (Loan, error) {
	return u.repo.GetLoanByID(ctx, id)
}

// CreateLoan records a checkout. Due date defaults to issue date plus the
// configured loan period.
func (u Usecase) CreateLoan(ctx context.Context, loan Loan) (Loan, error) {
	book, err := u.repo.GetBookByID(ctx, loan.BookID)
	if err != nil {
		return Loan{}, err
	}

	student, err := u.repo.GetStudentByID(ctx, loan.StudentID)
	if err != nil {
		return Loan{}, err
	}
	if !student.Active {
		return Loan{}, fmt.Errorf("student %s is not active", student.ID)
	}

	_, activeCount, err := u.repo.ListLoans(ctx, ListLoansOption{
		BookIDs:  uuid.UUIDs{loan.BookID},
		IsActive: true,
	})
	if err != nil {
		return Loan{}, err
	}
	if activeCount > 0 {
		return Loan{}, fmt.Errorf("book %s is already on loan", book.ID)
	}

	if loan.IssuedAt.IsZero() {
		loan.IssuedAt = u.now()
	}
	if loan.DueAt.IsZero() {
		loan.DueAt = loan.IssuedAt.AddDate(0, 0, u.loanPeriod)
	}

	return u.repo.CreateLoan(ctx, loan)
}

// ReturnLoan closes an open loan. Once the return is recorded, detection
// sweeps stop producing notifications for it.
func (u Usecase) ReturnLoan(ctx context.Context, id uuid.UUID) (Loan, error) {
	loan, err := u.repo.GetLoanByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if loan.ReturnedAt != nil {
		return Loan{}, fmt.Errorf("loan %s is already returned", id)
	}

	return u.repo.ReturnLoan(ctx, id, u.now())
}
