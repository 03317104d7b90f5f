package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Contact struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string    `gorm:"column:name;type:varchar(255)"`
	Email     string    `gorm:"column:email;type:varchar(255)"`
	ClassName string    `gorm:"column:class_name;type:varchar(10)"`
	Section   string    `gorm:"column:section;type:varchar(2)"`
	Active    bool      `gorm:"column:active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (s *service) ListContacts(ctx context.Context, opt usecase.ListContactsOption) ([]usecase.Contact, int, error) {
	var (
		contacts  []Contact
		ucontacts []usecase.Contact
		count     int64
	)

	db := s.db.Model([]Contact{}).WithContext(ctx)

	if opt.ClassName != "" {
		db = db.Where("class_name = ?", opt.ClassName)
	}
	if opt.Section != "" {
		db = db.Where("section = ?", opt.Section)
	}
	if opt.ActiveOnly {
		db = db.Where("active = ?", true)
	}

	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if opt.Limit > 0 {
		db = db.Limit(opt.Limit)
	}

	if err := db.
		Offset(opt.Skip).
		Order("class_name ASC, section ASC").
		Find(&contacts).
		Error; err != nil {

		return nil, 0, err
	}

	for _, c := range contacts {
		ucontacts = append(ucontacts, c.ConvertToUsecase())
	}

	return ucontacts, int(count), nil
}

func (s *service) CreateContact(ctx context.Context, c usecase.Contact) (usecase.Contact, error) {
	contact := Contact{
		Name:      c.Name,
		Email:     c.Email,
		ClassName: c.ClassName,
		Section:   c.Section,
		Active:    c.Active,
	}

	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return usecase.Contact{}, err
	}

	return contact.ConvertToUsecase(), nil
}

func (s *service) FindActiveContacts(ctx context.Context, className, section string) ([]usecase.Contact, error) {
	var contacts []Contact

	err := s.db.WithContext(ctx).
		Where("class_name = ? AND section = ? AND active = ?", className, section, true).
		Find(&contacts).
		Error
	if err != nil {
		return nil, err
	}

	ucontacts := make([]usecase.Contact, len(contacts))
	for i, c := range contacts {
		ucontacts[i] = c.ConvertToUsecase()
	}
	return ucontacts, nil
}

// Convert core model to Usecase
func (c Contact) ConvertToUsecase() usecase.Contact {
	return usecase.Contact{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		ClassName: c.ClassName,
		Section:   c.Section,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
