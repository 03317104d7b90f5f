package usecase

import (
	"time"

	"github.com/google/uuid"
)

// Student is the borrower subset read for rendering and recipient
// resolution. Membership maintenance happens outside this service.
type Student struct {
	ID         uuid.UUID
	RollNumber int
	Name       string
	ClassName  string
	Section    string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
