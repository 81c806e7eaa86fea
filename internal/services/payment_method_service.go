package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/sanitize"
	"ledgerly/internal/uuid"
	"ledgerly/internal/validator"
)

// PaymentMethodInput holds the fields of a new payment method.
type PaymentMethodInput struct {
	SpaceID  string
	Name     string
	Type     models.PaymentMethodType
	Color    string
	Icon     string
	Metadata models.PaymentMethodMetadata
}

// PaymentMethodUpdate holds optional changes to a payment method.
type PaymentMethodUpdate struct {
	Name     *string
	Type     *models.PaymentMethodType
	Color    *string
	Icon     *string
	IsActive *bool
	Metadata *models.PaymentMethodMetadata
}

// PaymentMethodFilter narrows payment method listings.
type PaymentMethodFilter struct {
	SpaceID  string
	Type     *models.PaymentMethodType
	IsActive *bool
}

var defaultPaymentMethods = []struct {
	name  string
	typ   models.PaymentMethodType
	color string
	icon  string
}{
	{"Cash", models.PaymentMethodTypeCash, "#2ECC71", "dollar-sign"},
	{"Credit Card", models.PaymentMethodTypeCard, "#E74C3C", "credit-card"},
	{"Debit Card", models.PaymentMethodTypeCard, "#3498DB", "credit-card"},
	{"Bank Transfer", models.PaymentMethodTypeBank, "#9B59B6", "home"},
	{"Digital Wallet", models.PaymentMethodTypeDigital, "#F39C12", "smartphone"},
}

type paymentMethodService struct {
	db *gorm.DB
}

// NewPaymentMethodService creates a new PaymentMethodServicer.
func NewPaymentMethodService(db *gorm.DB) PaymentMethodServicer {
	return &paymentMethodService{db: db}
}

func validPaymentMethodType(t models.PaymentMethodType) bool {
	switch t {
	case models.PaymentMethodTypeCash, models.PaymentMethodTypeCard, models.PaymentMethodTypeBank,
		models.PaymentMethodTypeDigital, models.PaymentMethodTypeCrypto, models.PaymentMethodTypeOther:
		return true
	}
	return false
}

func sanitizeMetadata(m models.PaymentMethodMetadata) (models.PaymentMethodMetadata, error) {
	m.LastFourDigits = sanitize.Text(m.LastFourDigits)
	m.BankName = sanitize.Text(m.BankName)
	m.AccountType = sanitize.Text(m.AccountType)
	if err := m.Validate(); err != nil {
		return m, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return m, nil
}

func (s *paymentMethodService) CreatePaymentMethod(userID string, input PaymentMethodInput) (*models.PaymentMethod, error) {
	name := sanitize.Text(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method name is required")
	}
	if len([]rune(name)) > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method name must be at most 100 characters")
	}
	if !validPaymentMethodType(input.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method type")
	}
	if input.Color != "" && !validator.IsHexColor(input.Color) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a #RRGGBB hex value")
	}
	metadata, err := sanitizeMetadata(input.Metadata)
	if err != nil {
		return nil, err
	}

	space, err := resolveSpace(s.db, userID, input.SpaceID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicateName(space.ID, name, ""); err != nil {
		return nil, err
	}

	pm := &models.PaymentMethod{
		SpaceID:   space.ID,
		CreatedBy: userID,
		Name:      name,
		Type:      input.Type,
		Color:     input.Color,
		Icon:      sanitize.Text(input.Icon),
		IsActive:  true,
		Metadata:  metadata,
	}
	if err := s.db.Create(pm).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicatePaymentMethod
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pm, nil
}

func (s *paymentMethodService) checkDuplicateName(spaceID, name, excludeID string) error {
	q := s.db.Model(&models.PaymentMethod{}).Where("space_id = ? AND name = ?", spaceID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicatePaymentMethod
	}
	return nil
}

func (s *paymentMethodService) GetPaymentMethods(userID string, filter PaymentMethodFilter, page pagination.PageRequest) (*pagination.PageResponse[models.PaymentMethod], error) {
	page.Defaults()

	base := s.db.Model(&models.PaymentMethod{})
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

	var methods []models.PaymentMethod
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&methods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(methods, page.Page, page.Limit, totalItems)
	return &result, nil
}

func (s *paymentMethodService) GetPaymentMethodByID(userID, paymentMethodID string) (*models.PaymentMethod, error) {
	if !uuid.IsValid(paymentMethodID) {
		return nil, apperrors.ErrPaymentMethodNotFound
	}
	var pm models.PaymentMethod
	err := s.db.Where("id = ? AND space_id IN (?)", paymentMethodID, memberSpaces(s.db, userID)).First(&pm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentMethodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pm, nil
}

func (s *paymentMethodService) UpdatePaymentMethod(userID, paymentMethodID string, input PaymentMethodUpdate) (*models.PaymentMethod, error) {
	pm, err := s.GetPaymentMethodByID(userID, paymentMethodID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method name cannot be empty")
		}
		if name != pm.Name {
			if err := s.checkDuplicateName(pm.SpaceID, name, pm.ID); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if input.Type != nil {
		if !validPaymentMethodType(*input.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method type")
		}
		updates["type"] = *input.Type
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
	if input.Metadata != nil {
		metadata, err := sanitizeMetadata(*input.Metadata)
		if err != nil {
			return nil, err
		}
		updates["meta_last_four_digits"] = metadata.LastFourDigits
		updates["meta_bank_name"] = metadata.BankName
		updates["meta_account_type"] = metadata.AccountType
	}

	if len(updates) > 0 {
		if err := s.db.Model(pm).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.ErrDuplicatePaymentMethod
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetPaymentMethodByID(userID, paymentMethodID)
}

// DeletePaymentMethod physically deletes a payment method that no transaction
// or template references.
func (s *paymentMethodService) DeletePaymentMethod(userID, paymentMethodID string) error {
	pm, err := s.GetPaymentMethodByID(userID, paymentMethodID)
	if err != nil {
		return err
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).Where("payment_method_id = ?", paymentMethodID).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.ErrPaymentMethodInUse
	}

	var templateCount int64
	if err := s.db.Model(&models.TransactionTemplate{}).Where("payment_method_id = ?", paymentMethodID).Count(&templateCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if templateCount > 0 {
		return apperrors.WithMessage(apperrors.ErrPaymentMethodInUse, "Payment method is used by existing templates")
	}

	if err := s.db.Delete(pm).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetDefaultPaymentMethods seeds the default payment methods of a space once.
func (s *paymentMethodService) GetDefaultPaymentMethods(userID, spaceID string) ([]models.PaymentMethod, error) {
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
		for _, d := range defaultPaymentMethods {
			res := tx.Model(&models.PaymentMethod{}).
				Where("space_id = ? AND name = ?", space.ID, d.name).
				Update("is_default", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}
			pm := &models.PaymentMethod{
				SpaceID:   space.ID,
				CreatedBy: userID,
				Name:      d.name,
				Type:      d.typ,
				Color:     d.color,
				Icon:      d.icon,
				IsActive:  true,
				IsDefault: true,
			}
			if err := tx.Create(pm).Error; err != nil {
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

func (s *paymentMethodService) listDefaults(spaceID string) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.db.Where("space_id = ? AND is_default = ?", spaceID, true).
		Order("name ASC").
		Find(&methods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return methods, nil
}
