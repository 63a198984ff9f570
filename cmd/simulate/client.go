package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/user"
)

// apiClient speaks the REST surface the way a browser client would: bearer
// token per session, JSON in and out.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type session struct {
	ID    uuid.UUID
	Role  user.Role
	Token string
}

// do sends body as JSON and decodes a 2xx response into out when out is
// non-nil. It returns the status code; err is only set for transport or
// decoding failures.
func (c *apiClient) do(ctx context.Context, method, path, token string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func (c *apiClient) login(ctx context.Context, email, password string) (session, int, error) {
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID   uuid.UUID `json:"id"`
			Role user.Role `json:"role"`
		} `json:"user"`
	}

	code, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil || code != http.StatusOK {
		return session{}, code, err
	}
	return session{ID: out.User.ID, Role: out.User.Role, Token: out.Token}, code, nil
}
