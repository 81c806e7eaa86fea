package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/uuid"
)

// memberSpaces is a subquery selecting the IDs of every space userID belongs to.
func memberSpaces(db *gorm.DB, userID string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.SpaceMember{}).
		Select("space_id").
		Where("user_id = ?", userID)
}

// resolveSpace returns the space a space-scoped write should land in. An empty
// spaceID means the caller's personal space; any other ID requires membership.
func resolveSpace(db *gorm.DB, userID, spaceID string) (*models.Space, error) {
	if spaceID == "" {
		return ensurePersonalSpace(db, userID)
	}
	if !uuid.IsValid(spaceID) {
		return nil, apperrors.ErrSpaceNotFound
	}

	var space models.Space
	err := db.Where("id = ? AND id IN (?)", spaceID, memberSpaces(db, userID)).First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSpaceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &space, nil
}

// ensurePersonalSpace returns userID's personal space, creating it on first use.
func ensurePersonalSpace(db *gorm.DB, userID string) (*models.Space, error) {
	var space models.Space
	err := db.Where("owner_id = ? AND type = ?", userID, models.SpaceTypePersonal).First(&space).Error
	if err == nil {
		return &space, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	space = models.Space{Name: "Personal", Type: models.SpaceTypePersonal, OwnerID: userID}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return createSpaceWithOwner(tx, &space)
	}); err != nil {
		// Another request may have created it concurrently.
		var existing models.Space
		if lookupErr := db.Where("owner_id = ? AND type = ?", userID, models.SpaceTypePersonal).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &space, nil
}

func createSpaceWithOwner(tx *gorm.DB, space *models.Space) error {
	if err := tx.Omit("Members").Create(space).Error; err != nil {
		return err
	}
	member := &models.SpaceMember{SpaceID: space.ID, UserID: space.OwnerID, Role: models.SpaceRoleOwner}
	return tx.Create(member).Error
}

// isUniqueViolation reports whether err came from a unique index on either
// PostgreSQL or SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFoundMessage names the missing references of a transaction-like record.
func notFoundMessage(categoryMissing, paymentMethodMissing bool) string {
	switch {
	case categoryMissing && paymentMethodMissing:
		return "category and payment method not found"
	case categoryMissing:
		return "category not found"
	case paymentMethodMissing:
		return "payment method not found"
	}
	return ""
}

// checkReferences verifies that categoryID and paymentMethodID exist in spaceID.
// Empty IDs are not checked.
func checkReferences(db *gorm.DB, spaceID, categoryID, paymentMethodID string) error {
	categoryMissing, pmMissing := false, false

	if categoryID != "" {
		ok, err := existsInSpace(db, &models.Category{}, spaceID, categoryID)
		if err != nil {
			return err
		}
		categoryMissing = !ok
	}
	if paymentMethodID != "" {
		ok, err := existsInSpace(db, &models.PaymentMethod{}, spaceID, paymentMethodID)
		if err != nil {
			return err
		}
		pmMissing = !ok
	}

	if msg := notFoundMessage(categoryMissing, pmMissing); msg != "" {
		sentinel := apperrors.ErrNotFound
		switch {
		case categoryMissing && !pmMissing:
			sentinel = apperrors.ErrCategoryNotFound
		case pmMissing && !categoryMissing:
			sentinel = apperrors.ErrPaymentMethodNotFound
		}
		return apperrors.WithMessage(sentinel, msg)
	}
	return nil
}

func existsInSpace(db *gorm.DB, model interface{}, spaceID, id string) (bool, error) {
	if !uuid.IsValid(id) {
		return false, nil
	}
	var count int64
	if err := db.Model(model).Where("id = ? AND space_id = ?", id, spaceID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("check reference: %w", err))
	}
	return count > 0, nil
}
