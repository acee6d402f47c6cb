package service

import (
	"context"
	"fmt"

	"github.com/studentorg/events-api/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// GetUser returns a user with the strikes and groups that decide how they are admitted.
// Users can only look themselves up unless they are admins.
func (s *UserService) GetUser(ctx context.Context, actor domain.Actor, id uint) (domain.User, error) {
	if !actor.CanManage(id) {
		return domain.User{}, ErrPermissionDenied
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}
