package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
	"ledgerly/internal/validator"
)

// CategoryInput holds the fields of a new category. An empty SpaceID targets
// the caller's personal space.
type CategoryInput struct {
	SpaceID  string
	Name     string
	Type     models.CategoryType
	Color    string
	Icon     string
	ParentID *string
}

// CategoryUpdate holds optional changes. A ParentID pointing at "" detaches
// the category from its parent.
type CategoryUpdate struct {
	Name     *string
	Color    *string
	Icon     *string
	ParentID *string
	IsActive *bool
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	SpaceID  string
	Type     *models.CategoryType
	IsActive *bool
}

type defaultCategory struct {
	name  string
	typ   models.CategoryType
	color string
	icon  string
}

var defaultCategories = []defaultCategory{
	{"Food & Dining", models.CategoryTypeExpense, "#FF6B6B", "utensils"},
	{"Transportation", models.CategoryTypeExpense, "#4ECDC4", "car"},
	{"Shopping", models.CategoryTypeExpense, "#45B7D1", "shopping-bag"},
	{"Entertainment", models.CategoryTypeExpense, "#96CEB4", "film"},
	{"Bills & Utilities", models.CategoryTypeExpense, "#FFEAA7", "file-text"},
	{"Healthcare", models.CategoryTypeExpense, "#DDA0DD", "heart"},
	{"Education", models.CategoryTypeExpense, "#98D8C8", "book"},
	{"Travel", models.CategoryTypeExpense, "#F7DC6F", "plane"},
	{"Other Expense", models.CategoryTypeExpense, "#BDC3C7", "more-horizontal"},
	{"Salary", models.CategoryTypeIncome, "#2ECC71", "briefcase"},
	{"Freelance", models.CategoryTypeIncome, "#3498DB", "laptop"},
	{"Investment", models.CategoryTypeIncome, "#9B59B6", "trending-up"},
	{"Gift", models.CategoryTypeIncome, "#E67E22", "gift"},
	{"Other Income", models.CategoryTypeIncome, "#95A5A6", "plus-circle"},
	{"Transfer", models.CategoryTypeTransfer, "#34495E", "repeat"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func validCategoryType(t models.CategoryType) bool {
	switch t {
	case models.CategoryTypeIncome, models.CategoryTypeExpense, models.CategoryTypeTransfer:
		return true
	}
	return false
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID string, input CategoryInput) (*models.Category, error) {
	name := sanitize.Text(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if len([]rune(name)) > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must be at most 100 characters")
	}
	if !validCategoryType(input.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
	}
	if input.Color != "" && !validator.IsHexColor(input.Color) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a #RRGGBB hex value")
	}

	space, err := resolveSpace(s.db, userID, input.SpaceID)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicateName(space.ID, input.Type, name, ""); err != nil {
		return nil, err
	}

	parentID := normalizeParentID(input.ParentID)
	if parentID != nil {
		if err := s.checkParent(space.ID, input.Type, *parentID, ""); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		SpaceID:   space.ID,
		CreatedBy: userID,
		Name:      name,
		Type:      input.Type,
		Color:     input.Color,
		Icon:      sanitize.Text(input.Icon),
		ParentID:  parentID,
		IsActive:  true,
	}
	if err := s.db.Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

func normalizeParentID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func (s *categoryService) checkDuplicateName(spaceID string, categoryType models.CategoryType, name, excludeID string) error {
	q := s.db.Model(&models.Category{}).Where("space_id = ? AND type = ? AND name = ?", spaceID, categoryType, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

// checkParent enforces a one-level hierarchy: the parent must exist in the
// same space, have the same type, and be top-level itself. A category that
// already has children cannot become a child.
func (s *categoryService) checkParent(spaceID string, categoryType models.CategoryType, parentID, categoryID string) error {
	if categoryID != "" && parentID == categoryID {
		return apperrors.ErrSelfParentCategory
	}
	if !uuid.IsValid(parentID) {
		return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
	}

	var parent models.Category
	if err := s.db.Where("id = ? AND space_id = ?", parentID, spaceID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if parent.ParentID != nil || parent.Type != categoryType {
		return apperrors.ErrInvalidParentCategory
	}

	if categoryID != "" {
		var children int64
		if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&children).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if children > 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidParentCategory, "a category with children cannot have a parent")
		}
	}
	return nil
}

// GetCategories retrieves a paginated list of categories in the caller's spaces.
func (s *categoryService) GetCategories(userID string, filter CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{})
	if filter.SpaceID != "" {
		space, err := resolveSpace(s.db, userID, filter.SpaceID)
		if err != nil {
			return nil, err
		}
		base = base.Where("space_id = ?", space.ID)
	} else {
		base = base.Where("space_id IN (?)", memberSpaces(s.db, userID))
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("type ASC, name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category visible to the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if !uuid.IsValid(categoryID) {
		return nil, apperrors.ErrCategoryNotFound
	}
	var category models.Category
	err := s.db.Where("id = ? AND space_id IN (?)", categoryID, memberSpaces(s.db, userID)).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(userID, categoryID string, input CategoryUpdate) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		if name != category.Name {
			if err := s.checkDuplicateName(category.SpaceID, category.Type, name, category.ID); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if input.Color != nil {
		if *input.Color != "" && !validator.IsHexColor(*input.Color) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a #RRGGBB hex value")
		}
		updates["color"] = *input.Color
	}
	if input.Icon != nil {
		updates["icon"] = sanitize.Text(*input.Icon)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ParentID != nil {
		parentID := normalizeParentID(input.ParentID)
		if parentID != nil {
			if err := s.checkParent(category.SpaceID, category.Type, *parentID, category.ID); err != nil {
				return nil, err
			}
		}
		updates["parent_id"] = parentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory physically deletes a category that has no children and is
// not referenced by any transaction or template.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	var templateCount int64
	if err := s.db.Model(&models.TransactionTemplate{}).Where("category_id = ?", categoryID).Count(&templateCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if templateCount > 0 {
		return apperrors.WithMessage(apperrors.ErrCategoryInUse, "Category is used by existing templates")
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetDefaultCategories seeds the default category set in a space once and
// returns it. Later calls return the existing defaults unchanged.
func (s *categoryService) GetDefaultCategories(userID, spaceID string) ([]models.Category, error) {
	space, err := resolveSpace(s.db, userID, spaceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.listDefaults(space.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range defaultCategories {
			// A user-made category with a default name is adopted instead of duplicated.
			res := tx.Model(&models.Category{}).
				Where("space_id = ? AND type = ? AND name = ?", space.ID, d.typ, d.name).
				Update("is_default", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}
			category := &models.Category{
				SpaceID:   space.ID,
				CreatedBy: userID,
				Name:      d.name,
				Type:      d.typ,
				Color:     d.color,
				Icon:      d.icon,
				IsActive:  true,
				IsDefault: true,
			}
			if err := tx.Create(category).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.listDefaults(space.ID)
}

func (s *categoryService) listDefaults(spaceID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("space_id = ? AND is_default = ?", spaceID, true).
		Order("type ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}
