package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/middleware"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
	"github.com/khabaroff/staff-accounts/src/repositories/memory"
	"github.com/khabaroff/staff-accounts/src/services"
	"golang.org/x/crypto/bcrypt"
)

// Test helpers for handler tests

const testTokenSecret = "handlers-test-secret-0123456789abcdef"

var testTokenConfig = auth.TokenConfig{
	Issuer:           "staff-accounts",
	Audience:         "staff-accounts-api",
	Secret:           testTokenSecret,
	ValidateIssuer:   true,
	ValidateAudience: true,
}

type stubHealth struct{ err error }

func (s stubHealth) Health(ctx context.Context) error { return s.err }

// testServer wires the full router over an in-memory store
type testServer struct {
	t        *testing.T
	router   *gin.Engine
	repo     repositories.AccountRepository
	accounts *services.AccountService
	issuer   *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithRepo(t, memory.NewAccountRepository())
}

func newTestServerWithRepo(t *testing.T, repo repositories.AccountRepository) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher, err := services.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to create hasher: %v", err)
	}
	validator, err := auth.NewTokenValidator(testTokenConfig)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	issuer, err := auth.NewTokenIssuer(testTokenConfig)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	accounts := services.NewAccountService(repo, hasher)
	logins := services.NewLoginService(repo, hasher, issuer)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.Authenticate(validator))
	RegisterRoutes(router, Routes{
		Health:   NewHealthHandler(stubHealth{}),
		Accounts: NewAccountHandler(accounts),
		Auth:     NewAuthHandler(logins),
	})

	return &testServer{t: t, router: router, repo: repo, accounts: accounts, issuer: issuer}
}

// bootstrap runs the startup seed the way main does
func (s *testServer) bootstrap(name, initials, password string) {
	s.t.Helper()
	b := services.NewBootstrapper(s.repo, s.accounts)
	if _, err := b.EnsureAdmin(context.Background(), services.BootstrapAccount{Name: name, Initials: initials, Password: password}); err != nil {
		s.t.Fatalf("bootstrap failed: %v", err)
	}
}

// tokenFor issues a bearer token for the stored account with the given initials
func (s *testServer) tokenFor(initials string) string {
	s.t.Helper()
	account, err := s.repo.FindByInitials(context.Background(), initials)
	if err != nil {
		s.t.Fatalf("account %s not found: %v", initials, err)
	}
	token, _, err := s.issuer.Issue(account)
	if err != nil {
		s.t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// do sends a JSON request; an empty token sends no Authorization header
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// envelope is the success body shape
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response: %v: %s", err, w.Body.String())
	}
	return env.Data
}

// createTestContext creates a test Gin context with recorder
func createTestContext() (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return w, c
}

// assertStatusCode checks if response status code matches expected
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode int) {
	t.Helper()
	if w.Code != expectedCode {
		t.Errorf("expected status %d, got %d: %s", expectedCode, w.Code, w.Body.String())
	}
}

// assertJSONError checks if response contains expected error message
func assertJSONError(t *testing.T, w *httptest.ResponseRecorder, expectedError string) {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["error"] != expectedError {
		t.Errorf("expected error '%s', got '%v'", expectedError, response["error"])
	}
}

// boolRef returns a pointer for request payloads
func boolRef(b bool) *bool { return &b }

// createBody builds a create request payload
func createBody(name, initials string, admin bool, password string) models.CreateAccountRequest {
	return models.CreateAccountRequest{
		Name:     name,
		Initials: initials,
		IsAdmin:  boolRef(admin),
		IsActive: boolRef(true),
		Password: password,
	}
}
