package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/linen-admin/internal/identity"
	"github.com/nurpe/linen-admin/internal/model"
)

func TestUserServiceCreate(t *testing.T) {
	users := newFakeUsers()
	idp := &fakeIdentity{}
	svc := NewUserService(users, idp, NewAccessService(users, nil), zerolog.Nop())

	profile, err := svc.Create(context.Background(), CreateUserInput{
		Email:    " Staff@Example.com ",
		Password: "secret1",
		FullName: " Sam Staff ",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", profile.Email)
	assert.Equal(t, "Sam Staff", profile.FullName)
	assert.Equal(t, model.RoleStaff, profile.Role)
	assert.True(t, profile.IsActive)
	assert.Equal(t, idp.nextID, profile.ID)

	_, err = svc.Create(context.Background(), CreateUserInput{Email: "staff@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, idp.created, 1)
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeIdentity{}, NewAccessService(newFakeUsers(), nil), zerolog.Nop())

	tests := []CreateUserInput{
		{Email: "not-an-email", Password: "secret1"},
		{Email: "", Password: "secret1"},
		{Email: "a@b.co", Password: "short"},
		{Email: "a@b.co", Password: "secret1", Role: "owner"},
	}
	for i, in := range tests {
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestUserServiceCreateProviderConflict(t *testing.T) {
	idp := &fakeIdentity{createErr: fmt.Errorf("create: %w", identity.ErrEmailExists)}
	svc := NewUserService(newFakeUsers(), idp, NewAccessService(newFakeUsers(), nil), zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateUserInput{Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserServiceCreateRemovesAuthUserWhenProfileFails(t *testing.T) {
	users := newFakeUsers()
	users.createErr = errBoom
	idp := &fakeIdentity{}
	svc := NewUserService(users, idp, NewAccessService(users, nil), zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateUserInput{Email: "a@b.co", Password: "secret1"})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []uuid.UUID{idp.nextID}, idp.deleted)
}

func TestUserServiceUpdate(t *testing.T) {
	admin := model.UserProfile{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin, IsActive: true}
	staff := model.UserProfile{ID: uuid.New(), Email: "staff@example.com", Role: model.RoleStaff, IsActive: true}
	users := newFakeUsers(admin, staff)
	cache := newMemoryRoleCache()
	cache.Set(context.Background(), staff.ID, model.RoleStaff)
	svc := NewUserService(users, &fakeIdentity{}, NewAccessService(users, cache), zerolog.Nop())

	promoted := model.RoleAdmin
	updated, err := svc.Update(context.Background(), admin.ID, staff.ID, UserPatch{Role: &promoted})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	_, cached := cache.Get(context.Background(), staff.ID)
	assert.False(t, cached)

	demoted := model.RoleStaff
	_, err = svc.Update(context.Background(), admin.ID, admin.ID, UserPatch{Role: &demoted})
	assert.ErrorIs(t, err, ErrInvalidInput)

	inactive := false
	_, err = svc.Update(context.Background(), admin.ID, admin.ID, UserPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(context.Background(), admin.ID, uuid.New(), UserPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccessServiceRequireAdmin(t *testing.T) {
	admin := model.UserProfile{ID: uuid.New(), Role: model.RoleAdmin, IsActive: true}
	staff := model.UserProfile{ID: uuid.New(), Role: model.RoleStaff, IsActive: true}
	gone := model.UserProfile{ID: uuid.New(), Role: model.RoleAdmin, IsActive: false}
	users := newFakeUsers(admin, staff, gone)
	access := NewAccessService(users, newMemoryRoleCache())
	ctx := context.Background()

	require.NoError(t, access.RequireAdmin(ctx, model.Principal{UserID: admin.ID}))
	require.NoError(t, access.RequireAdmin(ctx, model.Principal{UserID: admin.ID}))
	assert.Equal(t, 1, users.gets)

	assert.ErrorIs(t, access.RequireAdmin(ctx, model.Principal{UserID: staff.ID}), ErrPermissionDenied)
	assert.ErrorIs(t, access.RequireAdmin(ctx, model.Principal{UserID: gone.ID}), ErrPermissionDenied)
	assert.ErrorIs(t, access.RequireAdmin(ctx, model.Principal{UserID: uuid.New()}), ErrPermissionDenied)
}
