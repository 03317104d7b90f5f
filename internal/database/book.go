package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Book struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Code      string    `gorm:"column:code;type:varchar(50);unique"`
	Title     string    `gorm:"column:title;type:varchar(255)"`
	Author    string    `gorm:"column:author;type:varchar(255)"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (s *service) GetBookByID(ctx context.Context, id uuid.UUID) (usecase.Book, error) {
	var b Book
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Book{}, usecase.ErrNotFound{
			ID:      id,
			Code:    "BOOK_NOT_FOUND",
			Message: "book not found",
		}
	}
	if err != nil {
		return usecase.Book{}, err
	}
	return b.ConvertToUsecase(), nil
}

// Convert core model to Usecase
func (b Book) ConvertToUsecase() usecase.Book {
	return usecase.Book{
		ID:        b.ID,
		Code:      b.Code,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
