package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
)

// spaceService manages spaces and their members.
type spaceService struct {
	db *gorm.DB
}

// NewSpaceService creates a new SpaceServicer.
func NewSpaceService(db *gorm.DB) SpaceServicer {
	return &spaceService{db: db}
}

// CreateSpace creates a space owned by userID.
func (s *spaceService) CreateSpace(userID, name string, spaceType models.SpaceType) (*models.Space, error) {
	name = sanitize.Text(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "space name is required")
	}
	if spaceType == "" {
		spaceType = models.SpaceTypeShared
	}
	if spaceType == models.SpaceTypePersonal {
		return s.EnsurePersonalSpace(userID)
	}

	space := &models.Space{Name: name, Type: spaceType, OwnerID: userID}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return createSpaceWithOwner(tx, space)
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return space, nil
}

// EnsurePersonalSpace returns the caller's personal space, creating it if needed.
func (s *spaceService) EnsurePersonalSpace(userID string) (*models.Space, error) {
	return ensurePersonalSpace(s.db, userID)
}

// GetUserSpaces lists every space the user belongs to, personal first.
func (s *spaceService) GetUserSpaces(userID string) ([]models.Space, error) {
	if _, err := ensurePersonalSpace(s.db, userID); err != nil {
		return nil, err
	}

	var spaces []models.Space
	err := s.db.Where("id IN (?)", memberSpaces(s.db, userID)).
		Order("CASE WHEN type = 'personal' THEN 0 ELSE 1 END, created_at ASC").
		Find(&spaces).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spaces, nil
}

// GetSpaceByID returns a space with its members. Non-members get SPACE_NOT_FOUND.
func (s *spaceService) GetSpaceByID(userID, spaceID string) (*models.Space, error) {
	if !uuid.IsValid(spaceID) {
		return nil, apperrors.ErrSpaceNotFound
	}
	var space models.Space
	err := s.db.Preload("Members").
		Where("id = ? AND id IN (?)", spaceID, memberSpaces(s.db, userID)).
		First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSpaceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &space, nil
}

// AddMember adds the user registered under email to a shared space. Only the
// owner may add members.
func (s *spaceService) AddMember(userID, spaceID, email string) (*models.SpaceMember, error) {
	space, err := s.GetSpaceByID(userID, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != userID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "only the space owner can add members")
	}
	if space.Type != models.SpaceTypeShared {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "members can only be added to shared spaces")
	}

	var invitee models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, m := range space.Members {
		if m.UserID == invitee.ID {
			return nil, apperrors.ErrAlreadyMember
		}
	}

	member := &models.SpaceMember{SpaceID: space.ID, UserID: invitee.ID, Role: models.SpaceRoleMember}
	if err := s.db.Create(member).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// RemoveMember removes a member from a space. The owner cannot be removed.
func (s *spaceService) RemoveMember(userID, spaceID, memberUserID string) error {
	space, err := s.GetSpaceByID(userID, spaceID)
	if err != nil {
		return err
	}
	if space.OwnerID != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, "only the space owner can remove members")
	}
	if memberUserID == space.OwnerID {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "the owner cannot be removed from a space")
	}

	result := s.db.Where("space_id = ? AND user_id = ?", space.ID, memberUserID).Delete(&models.SpaceMember{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrNotFound, "member not found")
	}
	return nil
}
