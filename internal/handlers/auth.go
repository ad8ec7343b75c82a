package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"CAMPUSMARKET_BACK-END/internal/config"
	"CAMPUSMARKET_BACK-END/internal/dto"
	"CAMPUSMARKET_BACK-END/internal/middleware"
	"CAMPUSMARKET_BACK-END/internal/models"
	"CAMPUSMARKET_BACK-END/internal/store"
	"CAMPUSMARKET_BACK-END/internal/utils"
)

var (
	emailPattern   = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
	contactPattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users store.UserStore
	cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users store.UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account and start a session. The session token is set as an HttpOnly cookie.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failure"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Username = strings.TrimSpace(utils.SanitizeText(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Collect every failed rule rather than stopping at the first
	var errs []dto.FieldError
	if len(req.Username) < 3 || len(req.Username) > 30 {
		errs = append(errs, dto.FieldError{Field: "username", Message: "Username must be between 3 and 30 characters"})
	}
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, dto.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, dto.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if req.ContactNumber != nil && *req.ContactNumber != "" && !contactPattern.MatchString(*req.ContactNumber) {
		errs = append(errs, dto.FieldError{Field: "contactNumber", Message: "Please provide a valid contact number"})
	}
	if len(errs) > 0 {
		utils.WriteValidationErrors(w, errs)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:            uuid.New(),
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  string(hashedPassword),
		ContactNumber: req.ContactNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Email or username already registered")
			return
		}
		log.Printf("Error creating user: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, &h.cfg.JWT)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	middleware.SetAuthCookie(w, token, &h.cfg.JWT)

	utils.WriteJSONResponse(w, http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		User:    toUserResponse(user),
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password. The session token is set as an HttpOnly cookie.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Missing fields"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("Error fetching user: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, &h.cfg.JWT)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	middleware.SetAuthCookie(w, token, &h.cfg.JWT)

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    toUserResponse(user),
	})
}

// Logout clears the session cookie
// @Summary Logout user
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.MessageResponse "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.ClearAuthCookie(w, &h.cfg.JWT)
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// Me returns the current authenticated identity
// @Summary Get current user
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.AuthResponse "Current identity"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		User:    toUserResponse(user),
	})
}
