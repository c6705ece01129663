package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

// AccessService resolves the caller's role from their profile.
type AccessService struct {
	users UserStore
	cache RoleCache
}

func NewAccessService(users UserStore, cache RoleCache) *AccessService {
	if cache == nil {
		cache = nopRoleCache{}
	}
	return &AccessService{users: users, cache: cache}
}

// Role returns the role of an active profile. Callers without a profile or
// with a deactivated one are denied.
func (s *AccessService) Role(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	if role, ok := s.cache.Get(ctx, userID); ok {
		return role, nil
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: no profile for user", ErrPermissionDenied)
		}
		return "", err
	}
	if !user.IsActive {
		return "", fmt.Errorf("%w: account is deactivated", ErrPermissionDenied)
	}
	s.cache.Set(ctx, userID, user.Role)
	return user.Role, nil
}

func (s *AccessService) RequireAdmin(ctx context.Context, principal model.Principal) error {
	role, err := s.Role(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin {
		return fmt.Errorf("%w: admin role required", ErrPermissionDenied)
	}
	return nil
}

// Forget drops any cached role for the user.
func (s *AccessService) Forget(ctx context.Context, userID uuid.UUID) {
	s.cache.Delete(ctx, userID)
}

type nopRoleCache struct{}

func (nopRoleCache) Get(context.Context, uuid.UUID) (model.Role, bool) { return "", false }
func (nopRoleCache) Set(context.Context, uuid.UUID, model.Role)        {}
func (nopRoleCache) Delete(context.Context, uuid.UUID)                 {}
