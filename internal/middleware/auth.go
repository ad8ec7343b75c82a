package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"CAMPUSMARKET_BACK-END/internal/config"
	"CAMPUSMARKET_BACK-END/internal/models"
	"CAMPUSMARKET_BACK-END/internal/store"
	"CAMPUSMARKET_BACK-END/internal/utils"
)

// SessionCookieName is the cookie carrying the session token. The token is
// never accepted from a header.
const SessionCookieName = "token"

// Claims represents the claims in the session token
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a session token for the given user
func GenerateToken(userID uuid.UUID, email string, cfg *config.JWTConfig) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken validates a session token and returns the claims
func ValidateToken(tokenString string, cfg *config.JWTConfig) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// SetAuthCookie attaches the session token to the response
func SetAuthCookie(w http.ResponseWriter, token string, cfg *config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie
func ClearAuthCookie(w http.ResponseWriter, cfg *config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey string

const userContextKey contextKey = "user"

// WithUser attaches a resolved identity to the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser returns the identity resolved by RequireAuth or OptionalAuth
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// resolveUser resolves the session cookie to a user record. It returns the
// status and message for the rejection when resolution fails.
func resolveUser(r *http.Request, users store.UserStore, cfg *config.JWTConfig) (*models.User, int, string) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.StatusUnauthorized, "Access denied. No token provided."
	}

	claims, err := ValidateToken(cookie.Value, cfg)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "Token expired. Please login again."
		}
		return nil, http.StatusUnauthorized, "Invalid token."
	}

	user, err := users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, http.StatusUnauthorized, "Invalid token. User not found."
		}
		return nil, http.StatusInternalServerError, "Authentication failed."
	}

	return user, 0, ""
}

// RequireAuth resolves the session cookie to a user and attaches it to the
// request context, rejecting the request when resolution fails
func RequireAuth(next http.HandlerFunc, users store.UserStore, cfg *config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, status, message := resolveUser(r, users, cfg)
		if user == nil {
			utils.WriteErrorResponse(w, status, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// OptionalAuth attaches the identity when a valid session cookie is present
// and proceeds without one otherwise, for mixed public/authenticated routes
func OptionalAuth(next http.HandlerFunc, users store.UserStore, cfg *config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user, _, _ := resolveUser(r, users, cfg); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	}
}
