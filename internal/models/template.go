package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionTemplate is a reusable blueprint for creating transactions.
type TransactionTemplate struct {
	Base
	SpaceID         string              `gorm:"type:uuid;not null;index" json:"space_id"`
	UserID          string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string              `gorm:"size:100;not null" json:"name"`
	Description     string              `gorm:"size:500;not null" json:"description"`
	Type            TransactionType     `gorm:"not null" json:"type"`
	Amount          int64               `gorm:"type:bigint;not null" json:"amount"`
	CategoryID      string              `gorm:"type:uuid;not null" json:"category_id"`
	PaymentMethodID string              `gorm:"type:uuid;not null" json:"payment_method_id"`
	Tags            StringList          `gorm:"type:text" json:"tags"`
	Metadata        TransactionMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	UsageCount      int64               `gorm:"not null;default:0" json:"usage_count"`
	LastUsed        *time.Time          `json:"last_used,omitempty"`
	IsActive        bool                `gorm:"default:true" json:"is_active"`

	// Relationships
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
}

// BeforeCreate assigns an ID and normalizes tags.
func (t *TransactionTemplate) BeforeCreate(tx *gorm.DB) error {
	if err := t.Base.BeforeCreate(tx); err != nil {
		return err
	}
	tags, err := NormalizeTags(t.Tags)
	if err != nil {
		return err
	}
	t.Tags = tags
	if t.Metadata.Attachments == nil {
		t.Metadata.Attachments = StringList{}
	}
	return nil
}
