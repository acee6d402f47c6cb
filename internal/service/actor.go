package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/studentorg/events-api/internal/cache"
	"github.com/studentorg/events-api/internal/domain"
)

type MembershipRepository interface {
	FindGroups(ctx context.Context, userID uint) ([]string, error)
}

// ActorService turns an authenticated user id into an Actor with its groups and admin flag.
type ActorService struct {
	groups      *cache.ReadThrough[uint, []string]
	adminGroups []string
}

func NewActorService(repo MembershipRepository, c cache.Manager[uint, []string], ttl time.Duration, adminGroups []string) *ActorService {
	return &ActorService{
		groups:      cache.NewReadThrough(c, ttl, repo.FindGroups),
		adminGroups: adminGroups,
	}
}

func (s *ActorService) ResolveActor(ctx context.Context, userID uint) (domain.Actor, error) {
	groups, err := s.groups.Get(ctx, userID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("s.groups.Get -> %w", err)
	}

	isAdmin := slices.ContainsFunc(groups, func(g string) bool {
		return slices.Contains(s.adminGroups, g)
	})

	return domain.Actor{
		UserID:  userID,
		Groups:  groups,
		IsAdmin: isAdmin,
	}, nil
}
