// Package cache holds the optional Redis backed role cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nurpe/linen-admin/internal/model"
)

const keyPrefix = "linen-admin:role:"

type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRoleCache connects to redisURL and checks the connection.
func NewRoleCache(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RoleCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RoleCache{client: client, ttl: ttl, log: log}, nil
}

func (c *RoleCache) Get(ctx context.Context, userID uuid.UUID) (model.Role, bool) {
	val, err := c.client.Get(ctx, roleKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("role cache read failed")
		}
		return "", false
	}
	role := model.Role(val)
	if !role.Valid() {
		return "", false
	}
	return role, true
}

func (c *RoleCache) Set(ctx context.Context, userID uuid.UUID, role model.Role) {
	if err := c.client.Set(ctx, roleKey(userID), string(role), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("role cache write failed")
	}
}

func (c *RoleCache) Delete(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, roleKey(userID)).Err(); err != nil {
		c.log.Warn().Err(err).Msg("role cache delete failed")
	}
}

func (c *RoleCache) Close() error {
	return c.client.Close()
}

func roleKey(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}
