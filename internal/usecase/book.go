package usecase

import (
	"time"

	"github.com/google/uuid"
)

// Book is the catalog subset the notification subsystem reads. Catalog
// maintenance happens outside this service.
type Book struct {
	ID        uuid.UUID
	Code      string
	Title     string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
