package dao

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the DAOs sharing one connection or transaction.
type Store struct {
	db *gorm.DB

	Events        *EventDAO
	Registrations *RegistrationDAO
	Users         *UserDAO
	Orders        *OrderDAO
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Events:        NewEventDAO(db),
		Registrations: NewRegistrationDAO(db),
		Users:         NewUserDAO(db),
		Orders:        NewOrderDAO(db),
	}
}

// Transaction runs fn with a Store bound to a new transaction. The transaction is rolled
// back when fn returns an error.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
