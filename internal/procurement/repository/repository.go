package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories colección de repositorios de compras
type Repositories struct {
	PO          *PORepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories creates the procurement repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PO:          NewPORepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
