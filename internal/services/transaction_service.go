package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
)

// TransactionInput holds the fields of a new transaction. An empty SpaceID
// targets the caller's personal space; a zero Date means now.
type TransactionInput struct {
	SpaceID         string
	Type            models.TransactionType
	Amount          int64
	Description     string
	CategoryID      string
	PaymentMethodID string
	Date            time.Time
	Tags            []string
	IsRecurring     bool
	RecurringID     *string
	Metadata        models.TransactionMetadata
}

// TransactionUpdate holds optional changes to a transaction.
type TransactionUpdate struct {
	Type            *models.TransactionType
	Amount          *int64
	Description     *string
	CategoryID      *string
	PaymentMethodID *string
	Date            *time.Time
	Tags            *[]string
	IsRecurring     *bool
	Metadata        *models.TransactionMetadata
}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

func sanitizeMetadataText(m models.TransactionMetadata) models.TransactionMetadata {
	m.Location = sanitize.Text(m.Location)
	m.Notes = sanitize.Text(m.Notes)
	if m.Attachments != nil {
		m.Attachments = models.StringList(sanitize.List(m.Attachments))
	}
	return m
}

// invalid wraps a model validation failure as INVALID_INPUT.
func invalid(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// CreateTransaction validates references, sanitizes free text and persists
// a new transaction.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	space, err := resolveSpace(s.db, userID, input.SpaceID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		SpaceID:         space.ID,
		UserID:          userID,
		Type:            input.Type,
		Amount:          input.Amount,
		Description:     sanitize.Text(input.Description),
		CategoryID:      strings.TrimSpace(input.CategoryID),
		PaymentMethodID: strings.TrimSpace(input.PaymentMethodID),
		Date:            input.Date,
		Tags:            sanitize.List(input.Tags),
		IsRecurring:     input.IsRecurring,
		RecurringID:     input.RecurringID,
		Metadata:        sanitizeMetadataText(input.Metadata),
	}
	if err := transaction.Normalize(); err != nil {
		return nil, invalid(err)
	}
	if transaction.CategoryID == "" || transaction.PaymentMethodID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id and payment_method_id are required")
	}

	if err := checkReferences(s.db, space.ID, transaction.CategoryID, transaction.PaymentMethodID); err != nil {
		return nil, err
	}

	if err := s.db.Omit(clause.Associations).Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetTransactionByID returns one of the caller's transactions with its
// category and payment method. Malformed IDs are reported as not found.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if !uuid.IsValid(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	err := s.db.Preload("Category").Preload("PaymentMethod").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the non-nil fields of input. Replaced category or
// payment method references are checked against the transaction's space.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	var newCategory, newPaymentMethod string
	if input.CategoryID != nil && *input.CategoryID != transaction.CategoryID {
		newCategory = strings.TrimSpace(*input.CategoryID)
		if newCategory == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id cannot be empty")
		}
	}
	if input.PaymentMethodID != nil && *input.PaymentMethodID != transaction.PaymentMethodID {
		newPaymentMethod = strings.TrimSpace(*input.PaymentMethodID)
		if newPaymentMethod == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment_method_id cannot be empty")
		}
	}
	if err := checkReferences(s.db, transaction.SpaceID, newCategory, newPaymentMethod); err != nil {
		return nil, err
	}

	if input.Type != nil {
		transaction.Type = *input.Type
	}
	if input.Amount != nil {
		transaction.Amount = *input.Amount
	}
	if input.Description != nil {
		transaction.Description = sanitize.Text(*input.Description)
	}
	if newCategory != "" {
		transaction.CategoryID = newCategory
	}
	if newPaymentMethod != "" {
		transaction.PaymentMethodID = newPaymentMethod
	}
	if input.Date != nil {
		transaction.Date = *input.Date
	}
	if input.Tags != nil {
		transaction.Tags = sanitize.List(*input.Tags)
	}
	if input.IsRecurring != nil {
		transaction.IsRecurring = *input.IsRecurring
	}
	if input.Metadata != nil {
		transaction.Metadata = sanitizeMetadataText(*input.Metadata)
	}
	if err := transaction.Normalize(); err != nil {
		return nil, invalid(err)
	}

	updates := map[string]interface{}{
		"type":              transaction.Type,
		"amount":            transaction.Amount,
		"description":       transaction.Description,
		"category_id":       transaction.CategoryID,
		"payment_method_id": transaction.PaymentMethodID,
		"date":              transaction.Date,
		"tags":              transaction.Tags,
		"is_recurring":      transaction.IsRecurring,
		"meta_location":     transaction.Metadata.Location,
		"meta_notes":        transaction.Metadata.Notes,
		"meta_attachments":  transaction.Metadata.Attachments,
		"updated_at":        time.Now(),
	}
	result := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction removes one of the caller's transactions and returns it.
// A missing transaction yields (nil, nil).
func (s *transactionService) DeleteTransaction(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return transaction, nil
}

// GetTransactions lists the caller's transactions matching filter.
func (s *transactionService) GetTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	page.Defaults()

	base := filter.apply(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID))

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Preload("PaymentMethod").
		Order(filter.order()).
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.Limit, totalItems)
	return &result, nil
}

// SearchTransactions runs a free-text search, optionally within one space.
func (s *transactionService) SearchTransactions(userID, query, spaceID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "search query is required")
	}
	filter := TransactionFilter{Search: &query}
	if spaceID != "" {
		filter.SpaceID = &spaceID
	}
	return s.GetTransactions(userID, filter, page)
}

// GetTransactionStats summarizes the caller's transactions matching filter.
func (s *transactionService) GetTransactionStats(userID string, filter TransactionFilter) (*TransactionStats, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	rows, err := loadFlowRows(filter.apply(s.db.Where("user_id = ?", userID)))
	if err != nil {
		return nil, err
	}
	return computeStats(s.db, rows)
}
