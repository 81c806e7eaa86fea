package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
	"ledgerly/internal/models"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
)

const (
	// DefaultBulkBatchSize is the number of rows inserted per statement.
	DefaultBulkBatchSize = 100
	// MaxBulkItems caps the size of a single bulk request.
	MaxBulkItems = 1000
)

// TagOperation selects how BulkTag combines tags.
type TagOperation string

const (
	TagOperationAdd     TagOperation = "add"
	TagOperationRemove  TagOperation = "remove"
	TagOperationReplace TagOperation = "replace"
)

// BulkError describes one failed item. Index is set for positional failures
// in a create batch, TransactionID for per-record failures.
type BulkError struct {
	Index         *int   `json:"index,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error"`
}

// BulkResult reports the outcome of a bulk operation. Success is true only
// when nothing failed.
type BulkResult struct {
	Success   bool                 `json:"success"`
	Processed int                  `json:"processed"`
	Failed    int                  `json:"failed"`
	Errors    []BulkError          `json:"errors"`
	Created   []models.Transaction `json:"created,omitempty"`
	Updated   []models.Transaction `json:"updated,omitempty"`
}

func (r *BulkResult) addIndexError(index int, msg string) {
	i := index
	r.Errors = append(r.Errors, BulkError{Index: &i, Error: msg})
}

func (r *BulkResult) addRecordError(id, msg string) {
	r.Errors = append(r.Errors, BulkError{TransactionID: id, Error: msg})
}

// rejectIDs records every malformed or repeated id as a failure.
func (r *BulkResult) rejectIDs(malformed, repeated []string) {
	for _, id := range malformed {
		r.addRecordError(id, "invalid transaction id")
		r.Failed++
	}
	for _, id := range repeated {
		r.addRecordError(id, "duplicate transaction id")
		r.Failed++
	}
}

func (r *BulkResult) finish() *BulkResult {
	r.Success = r.Failed == 0
	if r.Errors == nil {
		r.Errors = []BulkError{}
	}
	return r
}

// BulkTransactionItem is one element of a bulk create request.
type BulkTransactionItem struct {
	Type            models.TransactionType
	Amount          int64
	Description     string
	CategoryID      string
	PaymentMethodID string
	Date            string
	Tags            []string
	Metadata        models.TransactionMetadata
}

// BulkUpdateFields is the patch applied by BulkUpdate. At least one field is required.
type BulkUpdateFields struct {
	Type            *models.TransactionType
	Amount          *int64
	Description     *string
	CategoryID      *string
	PaymentMethodID *string
	Date            *time.Time
	IsRecurring     *bool
}

func (f BulkUpdateFields) empty() bool {
	return f.Type == nil && f.Amount == nil && f.Description == nil && f.CategoryID == nil &&
		f.PaymentMethodID == nil && f.Date == nil && f.IsRecurring == nil
}

type bulkService struct {
	db        *gorm.DB
	batchSize int
	now       func() time.Time
}

// NewBulkService creates a new BulkServicer inserting batchSize rows at a time.
func NewBulkService(db *gorm.DB, batchSize int) BulkServicer {
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}
	return &bulkService{db: db, batchSize: batchSize, now: time.Now}
}

// splitIDs separates malformed ids and repeats of an id listed earlier from
// the ids a bulk operation should act on. Each repeat is reported once per
// extra occurrence.
func splitIDs(ids []string) (valid, malformed, repeated []string) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			repeated = append(repeated, id)
			continue
		}
		seen[id] = struct{}{}
		if uuid.IsValid(id) {
			valid = append(valid, id)
		} else {
			malformed = append(malformed, id)
		}
	}
	return valid, malformed, repeated
}

func checkIDCount(n int) error {
	if n == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one transaction id is required")
	}
	if n > MaxBulkItems {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("at most %d items per request", MaxBulkItems))
	}
	return nil
}

func idSet(db *gorm.DB, model interface{}, spaceID string) (map[string]struct{}, error) {
	var ids []string
	if err := db.Model(model).Where("space_id = ?", spaceID).Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// validateItem checks everything that can be checked before touching the
// store. Tag limits are left to the model hook.
func validateItem(item BulkTransactionItem, categories, paymentMethods map[string]struct{}) (time.Time, string) {
	var problems []string
	if !item.Type.Valid() {
		problems = append(problems, fmt.Sprintf("invalid type %q", item.Type))
	}
	if item.Amount <= 0 {
		problems = append(problems, "amount must be greater than zero")
	}
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		problems = append(problems, "description is required")
	} else if utf8.RuneCountInString(desc) > models.MaxDescriptionLength {
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", models.MaxDescriptionLength))
	}
	_, catOK := categories[item.CategoryID]
	_, pmOK := paymentMethods[item.PaymentMethodID]
	if msg := notFoundMessage(!catOK, !pmOK); msg != "" {
		problems = append(problems, msg)
	}

	date := time.Time{}
	if strings.TrimSpace(item.Date) != "" {
		parsed, err := ParseDateBound(item.Date, false)
		if err != nil {
			problems = append(problems, err.Error())
		}
		date = parsed
	}
	return date, strings.Join(problems, "; ")
}

// BulkCreate validates every item up front against one category query and one
// payment method query. Any invalid item rejects the whole request. Valid
// requests are inserted batch by batch; a failing batch is retried item by
// item so the valid rows still persist.
func (s *bulkService) BulkCreate(userID, spaceID string, items []BulkTransactionItem) (*BulkResult, error) {
	if err := checkIDCount(len(items)); err != nil {
		return nil, err
	}
	space, err := resolveSpace(s.db, userID, spaceID)
	if err != nil {
		return nil, err
	}

	categories, err := idSet(s.db, &models.Category{}, space.ID)
	if err != nil {
		return nil, err
	}
	paymentMethods, err := idSet(s.db, &models.PaymentMethod{}, space.ID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	records := make([]models.Transaction, len(items))
	for i, item := range items {
		date, problem := validateItem(item, categories, paymentMethods)
		if problem != "" {
			result.addIndexError(i, problem)
			continue
		}
		if date.IsZero() {
			date = s.now()
		}
		records[i] = models.Transaction{
			SpaceID:         space.ID,
			UserID:          userID,
			Type:            item.Type,
			Amount:          item.Amount,
			Description:     sanitize.Text(item.Description),
			CategoryID:      item.CategoryID,
			PaymentMethodID: item.PaymentMethodID,
			Date:            date,
			Tags:            sanitize.List(item.Tags),
			Metadata:        sanitizeMetadataText(item.Metadata),
		}
	}
	if len(result.Errors) > 0 {
		result.Failed = len(items)
		return result.finish(), nil
	}

	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Omit(clause.Associations).Create(&batch).Error
		})
		if err == nil {
			result.Created = append(result.Created, batch...)
			result.Processed += len(batch)
			continue
		}

		logger.Get().Warnw("bulk create batch failed, retrying item by item",
			"user_id", userID, "batch_start", start, "batch_size", len(batch), "error", err)
		for i := range batch {
			record := batch[i]
			record.ID = ""
			if err := s.db.Omit(clause.Associations).Create(&record).Error; err != nil {
				result.addIndexError(start+i, err.Error())
				result.Failed++
				continue
			}
			result.Created = append(result.Created, record)
			result.Processed++
		}
	}

	return result.finish(), nil
}

// BulkUpdate applies one patch to the caller's transactions in a single
// statement. IDs that match nothing count as failed without a reason.
func (s *bulkService) BulkUpdate(userID string, ids []string, fields BulkUpdateFields) (*BulkResult, error) {
	if err := checkIDCount(len(ids)); err != nil {
		return nil, err
	}
	if fields.empty() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	updates := map[string]interface{}{"updated_at": s.now()}
	if fields.Type != nil {
		if !fields.Type.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid transaction type %q", *fields.Type))
		}
		updates["type"] = *fields.Type
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		desc := sanitize.Text(*fields.Description)
		if desc == "" || utf8.RuneCountInString(desc) > models.MaxDescriptionLength {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("description must be 1 to %d characters", models.MaxDescriptionLength))
		}
		updates["description"] = desc
	}
	if fields.Date != nil {
		updates["date"] = fields.Date.UTC()
	}
	if fields.IsRecurring != nil {
		updates["is_recurring"] = *fields.IsRecurring
	}

	// Replacement references pin the update to the space they belong to.
	targetSpace := ""
	if fields.CategoryID != nil {
		category, err := NewCategoryService(s.db).GetCategoryByID(userID, *fields.CategoryID)
		if err != nil {
			return nil, err
		}
		targetSpace = category.SpaceID
		updates["category_id"] = category.ID
	}
	if fields.PaymentMethodID != nil {
		pm, err := NewPaymentMethodService(s.db).GetPaymentMethodByID(userID, *fields.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if targetSpace != "" && targetSpace != pm.SpaceID {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category and payment method belong to different spaces")
		}
		targetSpace = pm.SpaceID
		updates["payment_method_id"] = pm.ID
	}

	valid, malformed, repeated := splitIDs(ids)
	result := &BulkResult{}
	result.rejectIDs(malformed, repeated)

	if len(valid) > 0 {
		q := s.db.Model(&models.Transaction{}).Where("user_id = ? AND id IN ?", userID, valid)
		if targetSpace != "" {
			q = q.Where("space_id = ?", targetSpace)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.Processed = int(res.RowsAffected)
	}
	result.Failed += len(valid) - result.Processed
	return result.finish(), nil
}

// BulkDelete removes the caller's transactions in a single statement.
func (s *bulkService) BulkDelete(userID string, ids []string) (*BulkResult, error) {
	if err := checkIDCount(len(ids)); err != nil {
		return nil, err
	}

	valid, malformed, repeated := splitIDs(ids)
	result := &BulkResult{}
	result.rejectIDs(malformed, repeated)

	if len(valid) > 0 {
		res := s.db.Where("user_id = ? AND id IN ?", userID, valid).Delete(&models.Transaction{})
		if res.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.Processed = int(res.RowsAffected)
	}
	result.Failed += len(valid) - result.Processed
	return result.finish(), nil
}

func (s *bulkService) fetchOwned(userID string, ids []string) (map[string]models.Transaction, error) {
	found := make(map[string]models.Transaction, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var records []models.Transaction
	if err := s.db.Where("user_id = ? AND id IN ?", userID, ids).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range records {
		found[r.ID] = r
	}
	return found, nil
}

// BulkDuplicate copies the named transactions as new records.
func (s *bulkService) BulkDuplicate(userID string, ids []string) (*BulkResult, error) {
	if err := checkIDCount(len(ids)); err != nil {
		return nil, err
	}

	valid, malformed, repeated := splitIDs(ids)
	result := &BulkResult{}
	result.rejectIDs(malformed, repeated)

	found, err := s.fetchOwned(userID, valid)
	if err != nil {
		return nil, err
	}

	for _, id := range valid {
		original, ok := found[id]
		if !ok {
			result.addRecordError(id, "transaction not found")
			result.Failed++
			continue
		}
		duplicate := original
		duplicate.Base = models.Base{}
		duplicate.Category = nil
		duplicate.PaymentMethod = nil
		duplicate.RecurringID = nil
		duplicate.Tags = append(models.StringList{}, original.Tags...)
		duplicate.Metadata.Attachments = append(models.StringList{}, original.Metadata.Attachments...)

		if err := s.db.Omit(clause.Associations).Create(&duplicate).Error; err != nil {
			result.addRecordError(id, err.Error())
			result.Failed++
			continue
		}
		result.Created = append(result.Created, duplicate)
		result.Processed++
	}
	return result.finish(), nil
}

// BulkCategorize moves the named transactions to categoryID.
func (s *bulkService) BulkCategorize(userID string, ids []string, categoryID string) (*BulkResult, error) {
	if _, err := NewCategoryService(s.db).GetCategoryByID(userID, categoryID); err != nil {
		return nil, err
	}
	return s.BulkUpdate(userID, ids, BulkUpdateFields{CategoryID: &categoryID})
}

// combineTags applies op to current and returns the new tag list.
func combineTags(current models.StringList, tags models.StringList, op TagOperation) models.StringList {
	switch op {
	case TagOperationAdd:
		out := append(models.StringList{}, current...)
		for _, t := range tags {
			if !out.Contains(t) {
				out = append(out, t)
			}
		}
		return out
	case TagOperationRemove:
		out := models.StringList{}
		for _, t := range current {
			if !tags.Contains(t) {
				out = append(out, t)
			}
		}
		return out
	default:
		return append(models.StringList{}, tags...)
	}
}

// BulkTag adds, removes or replaces tags record by record.
func (s *bulkService) BulkTag(userID string, ids []string, tags []string, op TagOperation) (*BulkResult, error) {
	if err := checkIDCount(len(ids)); err != nil {
		return nil, err
	}
	switch op {
	case TagOperationAdd, TagOperationRemove, TagOperationReplace:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown tag operation %q", op))
	}
	normalized, err := models.NormalizeTags(sanitize.List(tags))
	if err != nil {
		return nil, invalid(err)
	}
	if len(normalized) == 0 && op != TagOperationReplace {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one tag is required")
	}

	valid, malformed, repeated := splitIDs(ids)
	result := &BulkResult{}
	result.rejectIDs(malformed, repeated)

	found, err := s.fetchOwned(userID, valid)
	if err != nil {
		return nil, err
	}

	for _, id := range valid {
		record, ok := found[id]
		if !ok {
			result.addRecordError(id, "transaction not found")
			result.Failed++
			continue
		}
		record.Tags = combineTags(record.Tags, normalized, op)
		record.UpdatedAt = s.now()

		res := s.db.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{"tags": record.Tags, "updated_at": record.UpdatedAt})
		if res.Error != nil {
			result.addRecordError(id, res.Error.Error())
			result.Failed++
			continue
		}
		if res.RowsAffected == 0 {
			result.addRecordError(id, "transaction not found")
			result.Failed++
			continue
		}
		result.Updated = append(result.Updated, record)
		result.Processed++
	}
	return result.finish(), nil
}
