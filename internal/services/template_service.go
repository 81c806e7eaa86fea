package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
)

const (
	maxTemplateNameLength   = 100
	defaultPopularTemplates = 5
)

// TemplateInput holds the fields of a new template. An empty SpaceID targets
// the caller's personal space.
type TemplateInput struct {
	SpaceID         string
	Name            string
	Description     string
	Type            models.TransactionType
	Amount          int64
	CategoryID      string
	PaymentMethodID string
	Tags            []string
	Metadata        models.TransactionMetadata
}

// TemplateUpdate holds optional changes to a template.
type TemplateUpdate struct {
	Name            *string
	Description     *string
	Type            *models.TransactionType
	Amount          *int64
	CategoryID      *string
	PaymentMethodID *string
	Tags            *[]string
	Metadata        *models.TransactionMetadata
	IsActive        *bool
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	SpaceID  string
	IsActive *bool
}

// TemplateOverrides replace template defaults when instantiating a transaction.
type TemplateOverrides struct {
	Amount      *int64
	Description *string
	Date        *time.Time
	Tags        *[]string
	Metadata    *models.TransactionMetadata
}

// TemplateStats summarizes template usage.
type TemplateStats struct {
	TotalTemplates  int64                       `json:"total_templates"`
	ActiveTemplates int64                       `json:"active_templates"`
	TotalUsage      int64                       `json:"total_usage"`
	MostUsed        *models.TransactionTemplate `json:"most_used"`
}

type templateService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewTemplateService creates a new TemplateServicer. Transactions created from
// templates go through transactions so they get the same checks as any other.
func NewTemplateService(db *gorm.DB, transactions TransactionServicer) TemplateServicer {
	return &templateService{db: db, transactions: transactions}
}

func validateTemplate(name, description string, txType models.TransactionType, amount int64) error {
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "template name is required")
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "template name must be at most 100 characters")
	}
	if description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
	}
	if !txType.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction type")
	}
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	return nil
}

// CreateTemplate creates a new template after checking its references.
func (s *templateService) CreateTemplate(userID string, input TemplateInput) (*models.TransactionTemplate, error) {
	name := sanitize.Text(input.Name)
	description := sanitize.Text(input.Description)
	if err := validateTemplate(name, description, input.Type, input.Amount); err != nil {
		return nil, err
	}
	tags, err := models.NormalizeTags(sanitize.List(input.Tags))
	if err != nil {
		return nil, invalid(err)
	}

	space, err := resolveSpace(s.db, userID, input.SpaceID)
	if err != nil {
		return nil, err
	}
	categoryID := strings.TrimSpace(input.CategoryID)
	paymentMethodID := strings.TrimSpace(input.PaymentMethodID)
	if categoryID == "" || paymentMethodID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id and payment_method_id are required")
	}
	if err := checkReferences(s.db, space.ID, categoryID, paymentMethodID); err != nil {
		return nil, err
	}

	template := &models.TransactionTemplate{
		SpaceID:         space.ID,
		UserID:          userID,
		Name:            name,
		Description:     description,
		Type:            input.Type,
		Amount:          input.Amount,
		CategoryID:      categoryID,
		PaymentMethodID: paymentMethodID,
		Tags:            tags,
		Metadata:        sanitizeMetadataText(input.Metadata),
		IsActive:        true,
	}
	if err := s.db.Omit(clause.Associations).Create(template).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return template, nil
}

// GetTemplates retrieves a paginated list of the caller's templates.
func (s *templateService) GetTemplates(userID string, filter TemplateFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionTemplate], error) {
	page.Defaults()

	base := s.db.Model(&models.TransactionTemplate{}).Where("user_id = ?", userID)
	if filter.SpaceID != "" {
		space, err := resolveSpace(s.db, userID, filter.SpaceID)
		if err != nil {
			return nil, err
		}
		base = base.Where("space_id = ?", space.ID)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.TransactionTemplate
	err := base.Preload("Category").Preload("PaymentMethod").
		Order("name ASC, id ASC").
		Scopes(pagination.Paginate(page)).
		Find(&templates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetTemplateByID retrieves one of the caller's templates.
func (s *templateService) GetTemplateByID(userID, templateID string) (*models.TransactionTemplate, error) {
	if !uuid.IsValid(templateID) {
		return nil, apperrors.ErrTemplateNotFound
	}
	var template models.TransactionTemplate
	err := s.db.Preload("Category").Preload("PaymentMethod").
		Where("id = ? AND user_id = ?", templateID, userID).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &template, nil
}

// UpdateTemplate applies the non-nil fields of input.
func (s *templateService) UpdateTemplate(userID, templateID string, input TemplateUpdate) (*models.TransactionTemplate, error) {
	template, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}

	name, description := template.Name, template.Description
	txType, amount := template.Type, template.Amount
	if input.Name != nil {
		name = sanitize.Text(*input.Name)
	}
	if input.Description != nil {
		description = sanitize.Text(*input.Description)
	}
	if input.Type != nil {
		txType = *input.Type
	}
	if input.Amount != nil {
		amount = *input.Amount
	}
	if err := validateTemplate(name, description, txType, amount); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        name,
		"description": description,
		"type":        txType,
		"amount":      amount,
		"updated_at":  time.Now(),
	}

	categoryID, paymentMethodID := "", ""
	if input.CategoryID != nil && *input.CategoryID != template.CategoryID {
		categoryID = strings.TrimSpace(*input.CategoryID)
		updates["category_id"] = categoryID
	}
	if input.PaymentMethodID != nil && *input.PaymentMethodID != template.PaymentMethodID {
		paymentMethodID = strings.TrimSpace(*input.PaymentMethodID)
		updates["payment_method_id"] = paymentMethodID
	}
	if categoryID != "" || paymentMethodID != "" {
		if err := checkReferences(s.db, template.SpaceID, categoryID, paymentMethodID); err != nil {
			return nil, err
		}
	}

	if input.Tags != nil {
		tags, err := models.NormalizeTags(sanitize.List(*input.Tags))
		if err != nil {
			return nil, invalid(err)
		}
		updates["tags"] = tags
	}
	if input.Metadata != nil {
		meta := sanitizeMetadataText(*input.Metadata)
		if meta.Attachments == nil {
			meta.Attachments = models.StringList{}
		}
		updates["meta_location"] = meta.Location
		updates["meta_notes"] = meta.Notes
		updates["meta_attachments"] = meta.Attachments
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err = s.db.Model(&models.TransactionTemplate{}).
		Where("id = ? AND user_id = ?", template.ID, userID).
		Updates(updates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTemplateByID(userID, templateID)
}

// DeleteTemplate physically deletes a template.
func (s *templateService) DeleteTemplate(userID, templateID string) error {
	if !uuid.IsValid(templateID) {
		return apperrors.ErrTemplateNotFound
	}
	result := s.db.Where("id = ? AND user_id = ?", templateID, userID).Delete(&models.TransactionTemplate{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTemplateNotFound
	}
	return nil
}

// CreateTransactionFromTemplate instantiates a transaction from the template
// defaults with overrides applied field by field, then records the usage.
func (s *templateService) CreateTransactionFromTemplate(userID, templateID string, overrides TemplateOverrides) (*models.Transaction, error) {
	template, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, apperrors.ErrTemplateInactive
	}

	input := TransactionInput{
		SpaceID:         template.SpaceID,
		Type:            template.Type,
		Amount:          template.Amount,
		Description:     template.Description,
		CategoryID:      template.CategoryID,
		PaymentMethodID: template.PaymentMethodID,
		Tags:            append([]string{}, template.Tags...),
		Metadata:        template.Metadata,
	}
	input.Metadata.Attachments = append(models.StringList{}, template.Metadata.Attachments...)
	if overrides.Amount != nil {
		input.Amount = *overrides.Amount
	}
	if overrides.Description != nil {
		input.Description = *overrides.Description
	}
	if overrides.Date != nil {
		input.Date = *overrides.Date
	}
	if overrides.Tags != nil {
		input.Tags = *overrides.Tags
	}
	if overrides.Metadata != nil {
		input.Metadata = *overrides.Metadata
	}

	transaction, err := s.transactions.CreateTransaction(userID, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.Model(&models.TransactionTemplate{}).
		Where("id = ?", template.ID).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + ?", 1),
			"last_used":   now,
		}).Error
	if err != nil {
		// The transaction is already persisted, so usage bookkeeping errors are only logged.
		logger.Get().Warnw("failed to record template usage", "template_id", template.ID, "error", err)
	}
	return transaction, nil
}

// GetPopularTemplates returns the caller's active templates ordered by usage.
func (s *templateService) GetPopularTemplates(userID, spaceID string, limit int) ([]models.TransactionTemplate, error) {
	if limit <= 0 {
		limit = defaultPopularTemplates
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}

	q := s.db.Where("user_id = ? AND is_active = ?", userID, true)
	if spaceID != "" {
		space, err := resolveSpace(s.db, userID, spaceID)
		if err != nil {
			return nil, err
		}
		q = q.Where("space_id = ?", space.ID)
	}

	templates := make([]models.TransactionTemplate, 0, limit)
	err := q.Preload("Category").Preload("PaymentMethod").
		Order("usage_count DESC, CASE WHEN last_used IS NULL THEN 1 ELSE 0 END, last_used DESC, name ASC").
		Limit(limit).
		Find(&templates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return templates, nil
}

// DuplicateTemplate copies a template without its identity or usage history.
func (s *templateService) DuplicateTemplate(userID, templateID, name string) (*models.TransactionTemplate, error) {
	original, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}

	name = sanitize.Text(name)
	if name == "" {
		name = original.Name + " (Copy)"
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "template name must be at most 100 characters")
	}

	duplicate := &models.TransactionTemplate{
		SpaceID:         original.SpaceID,
		UserID:          userID,
		Name:            name,
		Description:     original.Description,
		Type:            original.Type,
		Amount:          original.Amount,
		CategoryID:      original.CategoryID,
		PaymentMethodID: original.PaymentMethodID,
		Tags:            append(models.StringList{}, original.Tags...),
		Metadata:        original.Metadata,
		IsActive:        true,
	}
	duplicate.Metadata.Attachments = append(models.StringList{}, original.Metadata.Attachments...)

	if err := s.db.Omit(clause.Associations).Create(duplicate).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !original.IsActive {
		if err := s.db.Model(duplicate).Update("is_active", false).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		duplicate.IsActive = false
	}
	return duplicate, nil
}

// GetTemplateStats summarizes the caller's templates, optionally for one space.
func (s *templateService) GetTemplateStats(userID, spaceID string) (*TemplateStats, error) {
	base := func() *gorm.DB {
		return s.db.Model(&models.TransactionTemplate{}).Where("user_id = ?", userID)
	}
	if spaceID != "" {
		space, err := resolveSpace(s.db, userID, spaceID)
		if err != nil {
			return nil, err
		}
		scoped := base
		base = func() *gorm.DB { return scoped().Where("space_id = ?", space.ID) }
	}

	stats := &TemplateStats{}
	if err := base().Count(&stats.TotalTemplates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base().Where("is_active = ?", true).Count(&stats.ActiveTemplates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base().Select("COALESCE(SUM(usage_count), 0)").Scan(&stats.TotalUsage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var mostUsed models.TransactionTemplate
	err := base().Where("usage_count > 0").Order("usage_count DESC, name ASC").First(&mostUsed).Error
	switch {
	case err == nil:
		stats.MostUsed = &mostUsed
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stats, nil
}
