package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/oauth"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// ProfileUpdate holds the optional fields of a profile change.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user together with their personal space.
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: sanitize.Text(firstName),
		LastName:  sanitize.Text(lastName),
		IsActive:  true,
	}
	if err := s.createWithPersonalSpace(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) createWithPersonalSpace(user *models.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		space := &models.Space{Name: "Personal", Type: models.SpaceTypePersonal, OwnerID: user.ID}
		return createSpaceWithOwner(tx, space)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEmail
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	if !user.HasPassword() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and applies the lockout policy: five
// consecutive failures lock the account for fifteen minutes.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		attempts := user.FailedLoginAttempts + 1
		updates := map[string]interface{}{"failed_login_attempts": attempts}
		if attempts >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, nil
}

// StoreRefreshTokenHash saves the hash of the user's current refresh token.
// An empty hash invalidates every outstanding refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdateProfile applies the non-nil fields of input.
func (s *userService) UpdateProfile(userID string, input ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.FirstName != nil {
		updates["first_name"] = sanitize.Text(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = sanitize.Text(*input.LastName)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(userID)
}

// ChangePassword replaces the password after checking the current one. Users
// without a password (Google-only) may set one without a current password.
func (s *userService) ChangePassword(userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new password must be at least 8 characters")
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.HasPassword() && !s.VerifyPassword(user, currentPassword) {
		return apperrors.WithMessage(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	updates := map[string]interface{}{
		"password":           string(hashed),
		"refresh_token_hash": "",
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// FindOrCreateGoogleUser resolves a Google profile to a user. A known Google
// ID wins; otherwise a verified email matching an existing account links to
// it; otherwise a new user is created. The bool reports creation.
func (s *userService) FindOrCreateGoogleUser(profile *oauth.Profile) (*models.User, bool, error) {
	if profile == nil || profile.Subject == "" || profile.Email == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "incomplete Google profile")
	}

	var user models.User
	err := s.db.Where("google_id = ?", profile.Subject).First(&user).Error
	if err == nil {
		if !user.IsActive {
			return nil, false, apperrors.ErrInvalidCredentials
		}
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := s.GetUserByEmail(profile.Email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, false, apperrors.WithMessage(apperrors.ErrEmailNotVerified, "Google email is not verified")
		}
		if existing.GoogleLinked() {
			return nil, false, apperrors.ErrGoogleAlreadyLinked
		}
		updates := map[string]interface{}{"google_id": profile.Subject, "is_email_verified": true}
		if existing.AvatarURL == "" && profile.Picture != "" {
			updates["avatar_url"] = profile.Picture
		}
		if err := s.db.Model(existing).Updates(updates).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		linked, err := s.GetUserByID(existing.ID)
		return linked, false, err
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, false, err
	}

	googleID := profile.Subject
	created := &models.User{
		Email:           profile.Email,
		FirstName:       sanitize.Text(profile.GivenName),
		LastName:        sanitize.Text(profile.FamilyName),
		AvatarURL:       profile.Picture,
		IsActive:        true,
		IsEmailVerified: profile.EmailVerified,
		GoogleID:        &googleID,
	}
	if err := s.createWithPersonalSpace(created); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// LinkGoogleAccount attaches a Google identity to an existing user.
func (s *userService) LinkGoogleAccount(userID string, profile *oauth.Profile) (*models.User, error) {
	if profile == nil || profile.Subject == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "incomplete Google profile")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.GoogleLinked() {
		return nil, apperrors.WithMessage(apperrors.ErrGoogleAlreadyLinked, "A Google account is already linked")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("google_id = ?", profile.Subject).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrGoogleAlreadyLinked
	}

	if err := s.db.Model(user).Update("google_id", profile.Subject).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrGoogleAlreadyLinked
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(userID)
}

// UnlinkGoogleAccount removes the Google identity. The user must have a
// password so they can still log in.
func (s *userService) UnlinkGoogleAccount(userID string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.GoogleLinked() {
		return nil, apperrors.ErrGoogleNotLinked
	}
	if !user.HasPassword() {
		return nil, apperrors.ErrPasswordRequired
	}

	if err := s.db.Model(user).Update("google_id", nil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(userID)
}
