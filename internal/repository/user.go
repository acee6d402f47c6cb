package repository

import (
	"context"
	"fmt"

	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/repository/dao"
)

var (
	ErrUserNotFound = dao.ErrUserNotFound
)

type UserDAO interface {
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.User, error)
	GroupsByUserIDs(ctx context.Context, ids []uint) (map[uint][]string, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	users, err := findUsers(ctx, r.dao, []uint{id})
	if err != nil {
		return domain.User{}, err
	}

	user, ok := users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func (r *UserRepository) FindGroups(ctx context.Context, userID uint) ([]string, error) {
	groups, err := r.dao.GroupsByUserIDs(ctx, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("r.dao.GroupsByUserIDs -> %w", err)
	}

	return groups[userID], nil
}

func findUsers(ctx context.Context, d UserDAO, ids []uint) (map[uint]domain.User, error) {
	found, err := d.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("d.FindByIDs -> %w", err)
	}

	groups, err := d.GroupsByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("d.GroupsByUserIDs -> %w", err)
	}

	users := make(map[uint]domain.User, len(found))
	for _, u := range found {
		users[u.ID] = userDAOToDomain(u, groups[u.ID])
	}

	return users, nil
}

func userDAOToDomain(u dao.User, groups []string) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Strikes:   u.StrikeCount,
		Groups:    groups,
	}
}
