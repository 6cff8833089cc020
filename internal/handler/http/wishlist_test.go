package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/internal/event"
	"github.com/A3Manav/jewellery-wishlist-service/internal/service"
	redisstore "github.com/A3Manav/jewellery-wishlist-service/internal/store/redis"
	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/health"
	pkgkafka "github.com/A3Manav/jewellery-wishlist-service/pkg/kafka"
)

// --- Upstream stubs ---

type stubAuth struct {
	loginFunc func(email, password string) (string, *domain.User, error)
}

func (s *stubAuth) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	if s.loginFunc != nil {
		return s.loginFunc(email, password)
	}
	return "", nil, apperrors.Unauthorized("invalid credentials")
}

func (s *stubAuth) Register(context.Context, string, string, string) error { return nil }

func (s *stubAuth) Profile(context.Context, string) (*domain.User, error) {
	return nil, apperrors.Unauthorized("no session")
}

func (s *stubAuth) WishlistAdd(context.Context, string, string) (*domain.User, error) {
	return nil, apperrors.Unauthorized("no session")
}

func (s *stubAuth) WishlistRemove(context.Context, string, string) (*domain.User, error) {
	return nil, apperrors.Unauthorized("no session")
}

type stubCatalog struct{}

func (stubCatalog) Product(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id, Title: "Product " + id, Price: 100}, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) {}

// --- Test server ---

func newTestServer(t *testing.T, auth *stubAuth) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	events := event.NewProducer(kafkaProducer, logger)
	pruner := service.NewPruner(auth, 8, logger)

	reconciler := service.NewReconciler(
		redisstore.NewStore(client),
		auth,
		stubCatalog{},
		events,
		noopNotifier{},
		pruner,
		service.Config{},
		logger,
	)

	router := NewRouter(NewHandler(reconciler, logger), health.NewHandler(), RouterConfig{
		ServiceName:    "wishlist-test",
		RequestTimeout: 10 * time.Second,
		LoginRPS:       100,
		LoginBurst:     100,
	}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, sessionID string, body any, headers map[string]string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(HeaderSessionID, sessionID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// --- Tests ---

func TestRouter_MissingSessionID(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/init", "", nil, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_SESSION_ID", env.Error.Code)
}

func TestInitializeSession(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/init", "dev-1", nil, nil)

	require.Equal(t, http.StatusOK, status)
	var view domain.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "dev-1", view.SessionID)
	assert.Nil(t, view.User)
	assert.Empty(t, view.WishlistIDs)
}

func TestAddItem(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)

	require.Equal(t, http.StatusCreated, status)
	var view domain.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.Wishlist{"p1"}, view.WishlistIDs)
	require.Len(t, view.Products, 1)
}

func TestAddItem_Duplicate(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)

	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_IN_WISHLIST", env.Error.Code)
}

func TestAddItem_ValidationFailure(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": ""}, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestRemoveItem_RequiresProfilePage(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env := doRequest(t, srv, http.MethodDelete, "/api/v1/session/wishlist/items/p1", "dev-1", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REMOVE_NOT_ALLOWED", env.Error.Code)

	// With the marker header the removal goes through.
	status, env = doRequest(t, srv, http.MethodDelete, "/api/v1/session/wishlist/items/p1", "dev-1", nil,
		map[string]string{HeaderProfilePage: "true"})
	require.Equal(t, http.StatusOK, status)

	var view domain.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Empty(t, view.WishlistIDs)
}

func TestRemoveItemLegacyRoute_AlwaysRejects(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)
	require.Equal(t, http.StatusCreated, status)

	// The profile page header does not help on the retired route.
	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/remove/p1", "dev-1", nil,
		map[string]string{HeaderProfilePage: "true"})

	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REMOVE_NOT_ALLOWED", env.Error.Code)
	assert.Equal(t, "Removal only allowed from profile page", env.Error.Message)
}

func TestCheckItem(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
		map[string]string{"product_id": "p1"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env := doRequest(t, srv, http.MethodGet, "/api/v1/session/wishlist/items/p1", "dev-1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"in_wishlist": true}`, string(env.Data))

	status, env = doRequest(t, srv, http.MethodGet, "/api/v1/session/wishlist/items/other", "dev-1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"in_wishlist": false}`, string(env.Data))
}

func TestLogin(t *testing.T) {
	auth := &stubAuth{
		loginFunc: func(email, password string) (string, *domain.User, error) {
			if email == "jane@example.com" && password == "secret1" {
				return "tok", &domain.User{ID: "u1", Name: "Jane", Email: email, Wishlist: domain.Wishlist{"s1"}}, nil
			}
			return "", nil, apperrors.Unauthorized("invalid credentials")
		},
	}
	srv := newTestServer(t, auth)

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/login", "dev-1",
		map[string]string{"email": "jane@example.com", "password": "secret1"}, nil)

	require.Equal(t, http.StatusOK, status)
	var view domain.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.User)
	assert.Equal(t, "u1", view.User.ID)
	assert.Equal(t, domain.Wishlist{"s1"}, view.WishlistIDs)

	status, env = doRequest(t, srv, http.MethodPost, "/api/v1/session/login", "dev-1",
		map[string]string{"email": "jane@example.com", "password": "wrong12"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	for i := 1; i <= 2; i++ {
		status, _ := doRequest(t, srv, http.MethodPost, "/api/v1/session/wishlist/items", "dev-1",
			map[string]string{"product_id": fmt.Sprintf("p%d", i)}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/logout", "dev-1", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var view domain.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Nil(t, view.User)
	assert.Empty(t, view.WishlistIDs)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t, &stubAuth{})

	status, env := doRequest(t, srv, http.MethodPost, "/api/v1/session/register", "dev-1",
		map[string]string{"name": "Jane", "email": "jane@example.com", "password": "secret1"}, nil)

	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(env.Data), "verify")
}
