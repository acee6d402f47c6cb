package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/studentorg/events-api/internal/domain"
)

const registrationUniqueConstraint = "registrations_event_id_user_id_key"

var (
	ErrRegistrationNotFound = domain.ErrRegistrationNotFound
	ErrAlreadyRegistered    = domain.ErrAlreadyRegistered
)

type Registration struct {
	ID      uint `gorm:"primaryKey"`
	EventID uint `gorm:"not null"`
	UserID  uint `gorm:"not null"`

	// Filled by the registrations_queue_position_seq sequence on insert.
	QueuePosition int64 `gorm:"not null;default:nextval('registrations_queue_position_seq')"`

	IsOnWait    bool `gorm:"not null"`
	HasAttended bool `gorm:"not null"`
	AllowPhoto  bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&registration)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			err.ConstraintName == registrationUniqueConstraint {
			return Registration{}, ErrAlreadyRegistered
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

// ListByEvent returns the registrations of an event in queue order.
func (d *RegistrationDAO) ListByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("queue_position, id").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

// UpdateState writes the mutable flags of a registration. Identity and queue position never change.
func (d *RegistrationDAO) UpdateState(ctx context.Context, registration Registration) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{ID: registration.ID}).
		Updates(map[string]any{
			"is_on_wait":   registration.IsOnWait,
			"has_attended": registration.HasAttended,
			"allow_photo":  registration.AllowPhoto,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func (d *RegistrationDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Registration{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
