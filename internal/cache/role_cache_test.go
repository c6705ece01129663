package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRoleKey(t *testing.T) {
	id := uuid.MustParse("7f0c1f5e-4b53-4d8e-9a56-0c1ab2f1e001")
	assert.Equal(t, "linen-admin:role:7f0c1f5e-4b53-4d8e-9a56-0c1ab2f1e001", roleKey(id))
}

func TestNewRoleCacheRejectsBadURL(t *testing.T) {
	_, err := NewRoleCache(context.Background(), "not a url", time.Minute, zerolog.Nop())
	assert.Error(t, err)
}
