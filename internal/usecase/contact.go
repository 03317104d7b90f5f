package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Contact is the staff member responsible for a class/section, to whom
// overdue notices are addressed.
type Contact struct {
	ID        uuid.UUID
	Name      string
	Email     string
	ClassName string
	Section   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListContactsOption struct {
	Skip  int
	Limit int

	ClassName  string
	Section    string
	ActiveOnly bool
}

func (u Usecase) ListContacts(ctx context.Context, opt ListContactsOption) ([]Contact, int, error) {
	return u.repo.ListContacts(ctx, opt)
}

func (u Usecase) CreateContact(ctx context.Context, c Contact) (Contact, error) {
	return u.repo.CreateContact(ctx, c)
}

// ResolveContact maps a class/section pair to its responsible contact.
// Zero matches resolve to none. Multiple active matches are ambiguous and
// also resolve to none rather than picking one arbitrarily; the condition
// is logged for operator attention.
func (u Usecase) ResolveContact(ctx context.Context, className, section string) (*Contact, error) {
	contacts, err := u.repo.FindActiveContacts(ctx, className, section)
	if err != nil {
		return nil, err
	}

	switch len(contacts) {
	case 0:
		return nil, nil
	case 1:
		return &contacts[0], nil
	default:
		u.logger.Warn("ambiguous contact resolution",
			slog.String("class", className),
			slog.String("section", section),
			slog.Int("matches", len(contacts)),
		)
		return nil, nil
	}
}
