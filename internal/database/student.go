package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Student struct {
	ID         uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	RollNumber int       `gorm:"column:roll_number"`
	Name       string    `gorm:"column:name;type:varchar(255)"`
	ClassName  string    `gorm:"column:class_name;type:varchar(10)"`
	Section    string    `gorm:"column:section;type:varchar(2)"`
	Active     bool      `gorm:"column:active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
	Loans      []Loan
}

func (Student) TableName() string {
	return "students"
}

func (s *service) GetStudentByID(ctx context.Context, id uuid.UUID) (usecase.Student, error) {
	var st Student
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Student{}, usecase.ErrNotFound{
			ID:      id,
			Code:    "STUDENT_NOT_FOUND",
			Message: "student not found",
		}
	}
	if err != nil {
		return usecase.Student{}, err
	}
	return st.ConvertToUsecase(), nil
}

// Convert core model to Usecase
func (st Student) ConvertToUsecase() usecase.Student {
	return usecase.Student{
		ID:         st.ID,
		RollNumber: st.RollNumber,
		Name:       st.Name,
		ClassName:  st.ClassName,
		Section:    st.Section,
		Active:     st.Active,
		CreatedAt:  st.CreatedAt,
		UpdatedAt:  st.UpdatedAt,
	}
}
