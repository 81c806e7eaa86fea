package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

const (
	MaxDescriptionLength = 500
	MaxTagLength         = 50
)

// TransactionMetadata holds optional free-form details of a transaction.
type TransactionMetadata struct {
	Location    string     `json:"location,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Attachments StringList `gorm:"type:text" json:"attachments"`
}

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	SpaceID         string              `gorm:"type:uuid;not null;index" json:"space_id"`
	UserID          string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Type            TransactionType     `gorm:"not null" json:"type"`
	Amount          int64               `gorm:"type:bigint;not null" json:"amount"`
	Description     string              `gorm:"size:500;not null" json:"description"`
	CategoryID      string              `gorm:"type:uuid;not null;index" json:"category_id"`
	PaymentMethodID string              `gorm:"type:uuid;not null;index" json:"payment_method_id"`
	Date            time.Time           `gorm:"not null;index" json:"date"`
	Tags            StringList          `gorm:"type:text" json:"tags"`
	IsRecurring     bool                `gorm:"default:false" json:"is_recurring"`
	RecurringID     *string             `gorm:"type:uuid" json:"recurring_id,omitempty"`
	Metadata        TransactionMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`

	// Relationships
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
}

// BeforeCreate assigns an ID and enforces the persisted-record invariants.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if err := t.Base.BeforeCreate(tx); err != nil {
		return err
	}
	return t.Normalize()
}

// Normalize trims and deduplicates tags, checks amount, type and
// description, and stores the date in UTC. It runs on every persist of a
// transaction.
func (t *Transaction) Normalize() error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	tags, err := NormalizeTags(t.Tags)
	if err != nil {
		return err
	}
	t.Tags = tags
	if t.Metadata.Attachments == nil {
		t.Metadata.Attachments = StringList{}
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	t.Date = t.Date.UTC()
	return nil
}

// NormalizeTags trims every tag, drops empty ones and removes duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) (StringList, error) {
	out := make(StringList, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("tag %q exceeds %d characters", tag, MaxTagLength)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}
