package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"CAMPUSMARKET_BACK-END/internal/handlers"
	"CAMPUSMARKET_BACK-END/internal/middleware"
	"CAMPUSMARKET_BACK-END/internal/models"
)

func setupAuthHandler(t *testing.T) (*handlers.AuthHandler, *mockUserStore) {
	t.Helper()

	users := newMockUserStore()
	return handlers.NewAuthHandler(users, testConfig()), users
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	h, users := setupAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"Alice@Example.EDU","password":"hunter22"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	var stored *models.User
	for _, u := range users.users {
		stored = u
	}
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if stored.Email != "alice@example.edu" {
		t.Errorf("email not lowercased: %q", stored.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	var body struct {
		Success bool `json:"success"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.User.Email != "alice@example.edu" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRegisterCollectsValidationErrors(t *testing.T) {
	h, users := setupAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"al","email":"not-an-email","password":"abc"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	// All three failed rules are reported, not just the first
	if len(body.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %s", len(body.Errors), rec.Body.String())
	}
	if len(users.users) != 0 {
		t.Error("no user should be written on validation failure")
	}
}

func TestRegisterStripsHTMLFromUsername(t *testing.T) {
	h, users := setupAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice<script>alert(1)</script>","email":"alice@example.edu","password":"hunter22"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var stored *models.User
	for _, u := range users.users {
		stored = u
	}
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if stored.Username != "alice" {
		t.Errorf("username not sanitized: %q", stored.Username)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, users := setupAuthHandler(t)
	seedUser(t, users, "alice")

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.edu","password":"hunter22"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if len(users.users) != 1 {
		t.Error("duplicate registration must not add a user")
	}
}

func registerUser(t *testing.T, h *handlers.AuthHandler, username, password string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"`+username+`","email":"`+username+`@example.edu","password":"`+password+`"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: got status %d", username, rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h, _ := setupAuthHandler(t)
	registerUser(t, h, "alice", "hunter22")

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.edu","password":"hunter22"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(rec) == nil {
		t.Fatal("expected a session cookie to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := setupAuthHandler(t)
	registerUser(t, h, "alice", "hunter22")

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.edu","password":"wrong"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Error("no cookie should be set on failed login")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h, _ := setupAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.edu","password":"hunter22"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h, users := setupAuthHandler(t)
	user := seedUser(t, users, "alice")

	rec := httptest.NewRecorder()
	h.Logout(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), user))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected an expiring session cookie")
	}
	if cookie.MaxAge >= 0 && cookie.Expires.After(time.Now()) {
		t.Error("cookie should be expired")
	}
}

func TestMe(t *testing.T) {
	h, users := setupAuthHandler(t)
	user := seedUser(t, users, "alice")

	rec := httptest.NewRecorder()
	h.Me(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), user))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		User    struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.User.ID != user.ID.String() {
		t.Errorf("got user %s, want %s", body.User.ID, user.ID)
	}
	if _, err := uuid.Parse(body.User.ID); err != nil {
		t.Errorf("id is not a uuid: %v", err)
	}
}
