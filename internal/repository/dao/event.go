package dao

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studentorg/events-api/internal/domain"
)

var (
	ErrEventNotFound = domain.ErrEventNotFound
)

type Event struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Location    string    `gorm:"not null"`
	StartDate   time.Time `gorm:"not null"`
	EndDate     time.Time `gorm:"not null"`

	SignUp              bool `gorm:"not null"`
	Closed              bool `gorm:"not null"`
	RegistrationLimit   int  `gorm:"not null"` // 0 = unlimited
	StartRegistrationAt *time.Time
	EndRegistrationAt   *time.Time
	SignOffDeadline     *time.Time

	OnlyAllowPrioritized    bool `gorm:"not null"`
	CanCauseStrikes         bool `gorm:"not null"`
	EnforcesPreviousStrikes bool `gorm:"not null"`

	IsPaidEvent    bool `gorm:"not null"`
	Price          *int
	PaytimeSeconds *int64

	PriorityPools []PriorityPool `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type PriorityPool struct {
	ID      uint           `gorm:"primaryKey"`
	EventID uint           `gorm:"not null;index"`
	Groups  pq.StringArray `gorm:"type:text[];not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).Preload("PriorityPools").First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindForUpdate locks the event row until the surrounding transaction ends.
func (d *EventDAO) FindForUpdate(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	result = d.db.WithContext(ctx).
		Where("event_id = ?", id).
		Order("id").
		Find(&event.PriorityPools)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Select("*").
		Omit("ID", "CreatedAt", "PriorityPools").
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return event, nil
}

// ReplacePriorityPools swaps every pool of the event for pools.
func (d *EventDAO) ReplacePriorityPools(ctx context.Context, eventID uint, pools []PriorityPool) ([]PriorityPool, error) {
	db := d.db.WithContext(ctx)

	if err := db.Where("event_id = ?", eventID).Delete(&PriorityPool{}).Error; err != nil {
		return nil, err
	}

	if len(pools) == 0 {
		return nil, nil
	}

	for i := range pools {
		pools[i].ID = 0
		pools[i].EventID = eventID
	}

	if err := db.Create(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}
