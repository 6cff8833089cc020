package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/httpclient"
)

const authUpstreamName = "auth-api"

// AuthClient implements AuthAPI against the storefront account endpoints.
type AuthClient struct {
	baseURL string
	client  *httpclient.BreakerClient
}

// NewAuthClient creates an auth client for the given base URL.
func NewAuthClient(baseURL string, client *httpclient.BreakerClient) *AuthClient {
	return &AuthClient{baseURL: baseURL, client: client}
}

// Login exchanges credentials for a bearer token and the user profile.
func (c *AuthClient) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", nil, fmt.Errorf("marshal login request: %w", err)
	}

	resp, err := c.client.Post(ctx, c.baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("login request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, httpclient.ParseResponseError(resp, authUpstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, fmt.Errorf("read login response: %w", err)
	}

	var payload struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("decode login response: %w", err)
	}
	if payload.Token == "" {
		return "", nil, fmt.Errorf("login response missing token")
	}

	user, err := decodeUser(payload.User)
	if err != nil {
		return "", nil, fmt.Errorf("login response user: %w", err)
	}

	return payload.Token, user, nil
}

// Register creates an account. The API deliberately returns no session
// token; the account is unusable until the verification email is confirmed.
func (c *AuthClient) Register(ctx context.Context, name, email, password string) error {
	body, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	if err != nil {
		return fmt.Errorf("marshal register request: %w", err)
	}

	resp, err := c.client.Post(ctx, c.baseURL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, authUpstreamName)
	}
	_ = resp.Body.Close()

	return nil
}

// Profile fetches the account document for a bearer token.
func (c *AuthClient) Profile(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("profile request: %w", err)
	}
	return c.readUser(resp)
}

// WishlistAdd adds a product to the server wishlist.
func (c *AuthClient) WishlistAdd(ctx context.Context, token, productID string) (*domain.User, error) {
	return c.wishlistMutate(ctx, token, productID, "/api/auth/wishlist/add")
}

// WishlistRemove removes a product from the server wishlist.
func (c *AuthClient) WishlistRemove(ctx context.Context, token, productID string) (*domain.User, error) {
	return c.wishlistMutate(ctx, token, productID, "/api/auth/wishlist/remove")
}

func (c *AuthClient) wishlistMutate(ctx context.Context, token, productID, path string) (*domain.User, error) {
	body, err := json.Marshal(map[string]string{"productId": productID})
	if err != nil {
		return nil, fmt.Errorf("marshal wishlist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create wishlist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("wishlist request: %w", err)
	}
	return c.readUser(resp)
}

// readUser decodes a user document from a response, translating error
// statuses first.
func (c *AuthClient) readUser(resp *http.Response) (*domain.User, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, authUpstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read user response: %w", err)
	}
	return decodeUser(raw)
}
