package session

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

	"storefront/models"
)

// AccountAPI is the server surface the session talks to.
type AccountAPI interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	UpdateProfile(ctx context.Context, email, username string) (models.Identity, error)
	Logout(ctx context.Context, token string) error
	Orders(ctx context.Context, token string) ([]models.Order, error)
	PlaceOrder(ctx context.Context, token string, items []models.OrderItem) (*models.Order, error)
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message   string          `json:"message"`
	User      models.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// HTTPClient calls the storefront REST API.
type HTTPClient struct {
	base string
	hc   *http.Client
}

// NewHTTPClient targets baseURL, e.g. "http://localhost:8080". A nil hc gets a client
// with a ten second timeout.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) error {
	in := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", "", in, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response without token")
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, email, username string) (models.Identity, error) {
	var out struct {
		User models.Identity `json:"user"`
	}
	in := map[string]string{"email": email, "username": username}
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", "", in, &out); err != nil {
		return models.Identity{}, err
	}
	return out.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *HTTPClient) Orders(ctx context.Context, token string) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/api/auth/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PlaceOrder(ctx context.Context, token string, items []models.OrderItem) (*models.Order, error) {
	var out models.Order
	in := struct {
		Items []models.OrderItem `json:"items"`
	}{items}
	if err := c.do(ctx, http.MethodPost, "/api/auth/orders", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
