package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
	"ledgerly/internal/middleware"
	"ledgerly/internal/models"
	"ledgerly/internal/oauth"
	"ledgerly/internal/services"
	"ledgerly/internal/tokenstore"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * 60
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	blacklist    tokenstore.Blacklist
	google       oauth.Provider
	secureCookie bool
}

// AuthOption customizes an AuthHandler.
type AuthOption func(*AuthHandler)

// WithBlacklist enables access-token revocation on logout.
func WithBlacklist(bl tokenstore.Blacklist) AuthOption {
	return func(h *AuthHandler) {
		if bl != nil {
			h.blacklist = bl
		}
	}
}

// WithGoogle enables Google sign-in and account linking.
func WithGoogle(p oauth.Provider) AuthOption {
	return func(h *AuthHandler) { h.google = p }
}

// WithSecureCookies marks the OAuth state cookie Secure.
func WithSecureCookies(secure bool) AuthOption {
	return func(h *AuthHandler) { h.secureCookie = secure }
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, opts ...AuthOption) *AuthHandler {
	h := &AuthHandler{
		userService:  userService,
		auditService: auditService,
		blacklist:    tokenstore.Noop{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// ChangePasswordRequest represents the password change payload. Users
// without a password may omit current_password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// LinkGoogleRequest carries an authorization code from the consent page.
type LinkGoogleRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	IsEmailVerified bool       `json:"is_email_verified"`
	HasPassword     bool       `json:"has_password"`
	GoogleLinked    bool       `json:"google_linked"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		AvatarURL:       u.AvatarURL,
		IsEmailVerified: u.IsEmailVerified,
		HasPassword:     u.HasPassword(),
		GoogleLinked:    u.GoogleLinked(),
		LastLoginAt:     u.LastLoginAt,
	}
}

// issueTokens signs a new token pair and stores the refresh token hash,
// which invalidates any earlier refresh token.
func (h *AuthHandler) issueTokens(user *models.User) (*AuthResponse, error) {
	access, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refresh)); err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: access, RefreshToken: refresh, User: newUserResponse(user)}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password. A personal space is created for the user.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and tokens issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, resp)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with email and password. Five consecutive failures lock the account for 15 minutes.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and tokens issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token
// @Summary     Refresh tokens
// @Description Exchange a valid refresh token for a new access and refresh token pair. The old refresh token stops working.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New tokens"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or reused refresh token"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrTokenInvalid)
		return
	}

	stored, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrTokenInvalid)
		return
	}
	presented := middleware.HashToken(req.RefreshToken)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		respondWithError(c, apperrors.ErrTokenInvalid)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil || !user.IsActive {
		respondWithError(c, apperrors.ErrTokenInvalid)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the current access token and every refresh token
// @Summary     Logout
// @Description Revoke the presented access token until it expires and invalidate the refresh token.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if jti := c.GetString(middleware.ContextTokenID); jti != "" {
		ttl := time.Until(c.GetTime(middleware.ContextTokenExpiresAt))
		if err := h.blacklist.Revoke(c.Request.Context(), jti, ttl); err != nil {
			logger.Get().Warnw("failed to revoke access token", "error", err, "user_id", userID)
		}
	}

	if err := h.userService.StoreRefreshTokenHash(userID, ""); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LOGOUT", "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /auth/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// UpdateProfile changes name and avatar
// @Summary     Update user profile
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROFILE", "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// ChangePassword replaces the password and signs out other sessions
// @Summary     Change password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChangePasswordRequest true "Current and new password"
// @Success     200 {object} MessageResponse "Password changed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Wrong current password"
// @Router      /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CHANGE_PASSWORD", "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// GoogleLogin starts the Google sign-in flow
// @Summary     Google sign-in URL
// @Description Returns the Google consent URL and sets a short-lived state cookie checked by the callback.
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]string "Consent URL"
// @Failure     503 {object} ErrorResponse "Google sign-in not configured"
// @Router      /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		respondWithError(c, apperrors.ErrOAuthUnavailable)
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthURL(state)})
}

// GoogleCallback completes the Google sign-in flow
// @Summary     Google sign-in callback
// @Description Checks the state cookie, exchanges the code and signs the user in, creating an account or linking one with the same verified email.
// @Tags        auth
// @Produce     json
// @Param       code  query string true "Authorization code"
// @Param       state query string true "State issued by /auth/google"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "State mismatch or missing code"
// @Failure     401 {object} ErrorResponse "Code exchange failed"
// @Failure     503 {object} ErrorResponse "Google sign-in not configured"
// @Router      /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		respondWithError(c, apperrors.ErrOAuthUnavailable)
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		respondWithError(c, apperrors.ErrOAuthStateMismatch)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	code := c.Query("code")
	if code == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "code is required"))
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnauthorized, err))
		return
	}

	user, created, err := h.userService.FindOrCreateGoogleUser(profile)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "LOGIN_GOOGLE"
	if created {
		action = "REGISTER_GOOGLE"
	}
	h.auditService.Log(user.ID, action, "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, resp)
}

// LinkGoogle attaches a Google account to the caller
// @Summary     Link Google account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LinkGoogleRequest true "Authorization code"
// @Success     200 {object} UserResponse "Linked"
// @Failure     401 {object} ErrorResponse "Code exchange failed"
// @Failure     409 {object} ErrorResponse "Google account already linked"
// @Failure     503 {object} ErrorResponse "Google sign-in not configured"
// @Router      /auth/link/google [post]
func (h *AuthHandler) LinkGoogle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if h.google == nil {
		respondWithError(c, apperrors.ErrOAuthUnavailable)
		return
	}

	var req LinkGoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnauthorized, err))
		return
	}

	user, err := h.userService.LinkGoogleAccount(userID, profile)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LINK_GOOGLE", "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// UnlinkGoogle removes the caller's Google account
// @Summary     Unlink Google account
// @Description The user must have a password so they can still sign in.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "Unlinked"
// @Failure     400 {object} ErrorResponse "Not linked or no password set"
// @Router      /auth/link/google [delete]
func (h *AuthHandler) UnlinkGoogle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.UnlinkGoogleAccount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UNLINK_GOOGLE", "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
