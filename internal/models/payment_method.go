package models

import (
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

// PaymentMethodType represents how a transaction was paid.
type PaymentMethodType string

const (
	PaymentMethodTypeCash    PaymentMethodType = "cash"
	PaymentMethodTypeCard    PaymentMethodType = "card"
	PaymentMethodTypeBank    PaymentMethodType = "bank"
	PaymentMethodTypeDigital PaymentMethodType = "digital"
	PaymentMethodTypeCrypto  PaymentMethodType = "crypto"
	PaymentMethodTypeOther   PaymentMethodType = "other"
)

var lastFourRegex = regexp.MustCompile(`^[0-9]{4}$`)

// PaymentMethodMetadata holds optional account details.
type PaymentMethodMetadata struct {
	LastFourDigits string `json:"last_four_digits,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	AccountType    string `json:"account_type,omitempty"`
}

// Validate checks that last-four digits, when present, are exactly four digits.
func (m PaymentMethodMetadata) Validate() error {
	if m.LastFourDigits != "" && !lastFourRegex.MatchString(m.LastFourDigits) {
		return fmt.Errorf("last four digits must be exactly 4 digits")
	}
	return nil
}

// PaymentMethod represents a payment instrument within a space.
type PaymentMethod struct {
	Base
	SpaceID   string                `gorm:"type:uuid;not null;uniqueIndex:uq_payment_methods_space_name" json:"space_id"`
	CreatedBy string                `gorm:"type:uuid;not null" json:"created_by"`
	Name      string                `gorm:"size:100;not null;uniqueIndex:uq_payment_methods_space_name" json:"name"`
	Type      PaymentMethodType     `gorm:"not null" json:"type"`
	Color     string                `gorm:"size:7" json:"color"`
	Icon      string                `json:"icon"`
	IsActive  bool                  `gorm:"default:true" json:"is_active"`
	IsDefault bool                  `gorm:"default:false" json:"is_default"`
	Metadata  PaymentMethodMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
}

// BeforeCreate assigns an ID and rejects malformed metadata.
func (p *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if err := p.Base.BeforeCreate(tx); err != nil {
		return err
	}
	return p.Metadata.Validate()
}
