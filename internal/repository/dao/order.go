package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studentorg/events-api/internal/domain"
)

var (
	ErrOrderNotFound = domain.ErrOrderNotFound
)

// Order is written by the payment service; this service only reads the latest status.
type Order struct {
	ID         uint   `gorm:"primaryKey"`
	EventID    uint   `gorm:"not null;index"`
	UserID     uint   `gorm:"not null;index"`
	Status     string `gorm:"not null"` // INITIATE, RESERVED, CAPTURE, SALE, CANCEL, REFUND or VOID
	ExpireDate *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindLatest(ctx context.Context, eventID, userID uint) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("created_at DESC, id DESC").
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}
