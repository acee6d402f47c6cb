package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studentorg/events-api/internal/domain"
)

var (
	ErrUserNotFound = domain.ErrUserNotFound
)

// User is the slice of the users table this service reads. Accounts and strikes are
// written by other services.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"unique;not null"`
	FirstName   string `gorm:"not null"`
	LastName    string `gorm:"not null"`
	StrikeCount int    `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Membership struct {
	UserID    uint      `gorm:"primaryKey"`
	GroupSlug string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByIDs(ctx context.Context, ids []uint) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []User

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) AddMembership(ctx context.Context, userID uint, groupSlug string) error {
	return d.db.WithContext(ctx).Create(&Membership{UserID: userID, GroupSlug: groupSlug}).Error
}

// GroupsByUserIDs returns the group slugs of every given user, keyed by user id.
func (d *UserDAO) GroupsByUserIDs(ctx context.Context, ids []uint) (map[uint][]string, error) {
	groups := make(map[uint][]string, len(ids))
	if len(ids) == 0 {
		return groups, nil
	}

	var memberships []Membership

	result := d.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("group_slug").
		Find(&memberships)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, m := range memberships {
		groups[m.UserID] = append(groups[m.UserID], m.GroupSlug)
	}

	return groups, nil
}
