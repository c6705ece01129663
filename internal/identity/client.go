// Package identity talks to the hosted auth provider's admin API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmailExists   = errors.New("email already registered")
	ErrNotConfigured = errors.New("identity provider is not configured")
)

type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type createUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type userResponse struct {
	ID uuid.UUID `json:"id"`
}

type errorResponse struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
}

// CreateUser registers a confirmed user and returns the provider's user id.
func (c *Client) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, error) {
	body, err := json.Marshal(createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: metadata,
	})
	if err != nil {
		return uuid.Nil, err
	}

	var user userResponse
	if err := c.do(ctx, http.MethodPost, "/admin/users", body, &user); err != nil {
		return uuid.Nil, err
	}
	if user.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("identity provider returned no user id")
	}
	return user.ID, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if c.baseURL == "" || c.serviceKey == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func decodeError(status int, payload []byte) error {
	var e errorResponse
	_ = json.Unmarshal(payload, &e)
	msg := e.Msg
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(payload))
	}

	if status == http.StatusUnprocessableEntity || e.ErrorCode == "email_exists" {
		lower := strings.ToLower(msg)
		if e.ErrorCode == "email_exists" || strings.Contains(lower, "already") {
			return fmt.Errorf("%w: %s", ErrEmailExists, msg)
		}
	}
	return fmt.Errorf("identity provider returned %d: %s", status, msg)
}
