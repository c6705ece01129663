package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/linen-admin/internal/identity"
	"github.com/nurpe/linen-admin/internal/model"
)

const minPasswordLength = 6

type UserService struct {
	users    UserStore
	identity IdentityProvider
	access   *AccessService
	log      zerolog.Logger
}

func NewUserService(users UserStore, identity IdentityProvider, access *AccessService, log zerolog.Logger) *UserService {
	return &UserService{users: users, identity: identity, access: access, log: log}
}

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     model.Role
}

type UserPatch struct {
	FullName *string
	Role     *model.Role
	IsActive *bool
}

func (s *UserService) List(ctx context.Context) ([]model.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.UserProfile{}
	}
	return users, nil
}

// Create registers the user with the identity provider and then stores the
// profile. If the profile cannot be stored the provider account is removed
// again.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, invalid("a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}
	role := input.Role
	if role == "" {
		role = model.RoleStaff
	}
	if !role.Valid() {
		return nil, invalid("role must be admin or staff")
	}
	fullName := strings.TrimSpace(input.FullName)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	id, err := s.identity.CreateUser(ctx, email, input.Password, map[string]interface{}{
		"full_name": fullName,
		"role":      string(role),
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create auth user: %w", err)
	}

	profile, err := s.users.Create(ctx, model.UserProfile{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     role,
		IsActive: true,
	})
	if err != nil {
		if cleanupErr := s.identity.DeleteUser(ctx, id); cleanupErr != nil {
			s.log.Error().
				Err(cleanupErr).
				Str("user_id", id.String()).
				Msg("failed to remove auth user after profile insert failure")
		}
		return nil, translate(err, "user")
	}

	s.log.Info().Str("user_id", id.String()).Str("role", string(role)).Msg("user created")
	return profile, nil
}

// Update changes a profile. actor is the admin making the change; admins
// cannot demote or deactivate themselves.
func (s *UserService) Update(ctx context.Context, actor, id uuid.UUID, patch UserPatch) (*model.UserProfile, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	if patch.FullName != nil {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, invalid("role must be admin or staff")
		}
		if actor == id && *patch.Role != model.RoleAdmin {
			return nil, invalid("you cannot remove your own admin role")
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		if actor == id && !*patch.IsActive {
			return nil, invalid("you cannot deactivate your own account")
		}
		user.IsActive = *patch.IsActive
	}

	updated, err := s.users.Update(ctx, *user)
	if err != nil {
		return nil, translate(err, "user")
	}
	s.access.Forget(ctx, id)
	return updated, nil
}
