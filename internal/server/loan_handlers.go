package server

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Book struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type Student struct {
	ID         string `json:"id"`
	RollNumber int    `json:"roll_number"`
	Name       string `json:"name"`
	ClassName  string `json:"class_name"`
	Section    string `json:"section"`
	Active     bool   `json:"active"`
}

type Loan struct {
	ID         string  `json:"id"`
	BookID     string  `json:"book_id"`
	StudentID  string  `json:"student_id"`
	IssuedAt   string  `json:"issued_at"`
	DueAt      string  `json:"due_at"`
	ReturnedAt *string `json:"returned_at,omitempty"`

	Book    *Book    `json:"book,omitempty"`
	Student *Student `json:"student,omitempty"`
}

type ListLoansRequest struct {
	Skip    int  `query:"skip"`
	Limit   int  `query:"limit" validate:"required,min=1,max=100"`
	Active  bool `query:"active"`
	Overdue bool `query:"overdue"`
}

func (s *Server) ListLoans(ctx echo.Context) error {
	var req ListLoansRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListLoansOption{
		Skip:     req.Skip,
		Limit:    req.Limit,
		IsActive: req.Active || req.Overdue,
	}
	if req.Overdue {
		today := startOfToday()
		opt.DueBefore = &today
	}

	loans, total, err := s.server.ListLoans(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Loan, 0, len(loans))
	for _, l := range loans {
		list = append(list, convertLoan(l))
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Total: total,
			Skip:  req.Skip,
			Limit: req.Limit,
		},
	})
}

type GetLoanByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetLoanByID(ctx echo.Context) error {
	var req GetLoanByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	loan, err := s.server.GetLoanByID(ctx.Request().Context(), id)
	if err != nil {
		var nf usecase.ErrNotFound
		if errors.As(err, &nf) {
			return ctx.JSON(404, map[string]string{"error": nf.Message})
		}
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: convertLoan(loan)})
}

type CreateLoanRequest struct {
	BookID    string `json:"book_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required,uuid"`
	IssuedAt  string `json:"issued_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueAt     string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (s *Server) CreateLoan(ctx echo.Context) error {
	var req CreateLoanRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	bookID, _ := uuid.Parse(req.BookID)
	studentID, _ := uuid.Parse(req.StudentID)

	loan := usecase.Loan{
		BookID:    bookID,
		StudentID: studentID,
	}
	if req.IssuedAt != "" {
		loan.IssuedAt, _ = time.Parse(time.RFC3339, req.IssuedAt)
	}
	if req.DueAt != "" {
		loan.DueAt, _ = time.Parse(time.RFC3339, req.DueAt)
	}

	created, err := s.server.CreateLoan(ctx.Request().Context(), loan)
	if err != nil {
		var nf usecase.ErrNotFound
		if errors.As(err, &nf) {
			return ctx.JSON(404, map[string]string{"error": nf.Message})
		}
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(201, Res{Data: convertLoan(created)})
}

type ReturnLoanRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) ReturnLoan(ctx echo.Context) error {
	var req ReturnLoanRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	loan, err := s.server.ReturnLoan(ctx.Request().Context(), id)
	if err != nil {
		var nf usecase.ErrNotFound
		if errors.As(err, &nf) {
			return ctx.JSON(404, map[string]string{"error": nf.Message})
		}
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: convertLoan(loan), Message: "loan returned"})
}

func convertLoan(l usecase.Loan) Loan {
	loan := Loan{
		ID:        l.ID.String(),
		BookID:    l.BookID.String(),
		StudentID: l.StudentID.String(),
		IssuedAt:  l.IssuedAt.Format(time.RFC3339),
		DueAt:     l.DueAt.Format(time.RFC3339),
	}
	if l.ReturnedAt != nil {
		t := l.ReturnedAt.Format(time.RFC3339)
		loan.ReturnedAt = &t
	}
	if l.Book != nil {
		loan.Book = &Book{
			ID:     l.Book.ID.String(),
			Code:   l.Book.Code,
			Title:  l.Book.Title,
			Author: l.Book.Author,
		}
	}
	if l.Student != nil {
		loan.Student = &Student{
			ID:         l.Student.ID.String(),
			RollNumber: l.Student.RollNumber,
			Name:       l.Student.Name,
			ClassName:  l.Student.ClassName,
			Section:    l.Student.Section,
			Active:     l.Student.Active,
		}
	}
	return loan
}

func startOfToday() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
