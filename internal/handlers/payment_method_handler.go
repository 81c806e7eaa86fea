package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// PaymentMethodHandler handles payment method requests.
type PaymentMethodHandler struct {
	paymentMethodService services.PaymentMethodServicer
	auditService         services.AuditServicer
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(paymentMethodService services.PaymentMethodServicer, auditService services.AuditServicer) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentMethodService: paymentMethodService, auditService: auditService}
}

// PaymentMethodMetadataRequest carries optional account details.
type PaymentMethodMetadataRequest struct {
	LastFourDigits string `json:"last_four_digits" binding:"omitempty,len=4,numeric"`
	BankName       string `json:"bank_name" binding:"max=100"`
	AccountType    string `json:"account_type" binding:"max=50"`
}

func (m *PaymentMethodMetadataRequest) model() models.PaymentMethodMetadata {
	return models.PaymentMethodMetadata{
		LastFourDigits: m.LastFourDigits,
		BankName:       m.BankName,
		AccountType:    m.AccountType,
	}
}

// CreatePaymentMethodRequest represents the request payload for creating a payment method.
type CreatePaymentMethodRequest struct {
	SpaceID  string                       `json:"space_id"`
	Name     string                       `json:"name" binding:"required,max=100"`
	Type     models.PaymentMethodType     `json:"type" binding:"required,payment_method_type"`
	Color    string                       `json:"color" binding:"omitempty,hex_color"`
	Icon     string                       `json:"icon" binding:"max=50"`
	Metadata PaymentMethodMetadataRequest `json:"metadata"`
}

// UpdatePaymentMethodRequest represents the request payload for updating a payment method.
type UpdatePaymentMethodRequest struct {
	Name     *string                       `json:"name" binding:"omitempty,max=100"`
	Type     *models.PaymentMethodType     `json:"type" binding:"omitempty,payment_method_type"`
	Color    *string                       `json:"color" binding:"omitempty,hex_color"`
	Icon     *string                       `json:"icon" binding:"omitempty,max=50"`
	IsActive *bool                         `json:"is_active"`
	Metadata *PaymentMethodMetadataRequest `json:"metadata"`
}

// CreatePaymentMethod handles the creation of a payment method
// @Summary     Create a payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePaymentMethodRequest true "Payment method details"
// @Success     201 {object} models.PaymentMethod "Payment method created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Space not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /payment-methods [post]
func (h *PaymentMethodHandler) CreatePaymentMethod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	pm, err := h.paymentMethodService.CreatePaymentMethod(userID, services.PaymentMethodInput{
		SpaceID:  req.SpaceID,
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
		Metadata: req.Metadata.model(),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PAYMENT_METHOD", "payment_method", pm.ID, c.ClientIP(),
		map[string]interface{}{"name": pm.Name, "type": pm.Type, "space_id": pm.SpaceID})

	c.JSON(http.StatusCreated, gin.H{"payment_method": pm})
}

// GetPaymentMethods lists payment methods
// @Summary     List payment methods
// @Tags        payment-methods
// @Produce     json
// @Security    BearerAuth
// @Param       space_id  query string false "Space ID (default personal space)"
// @Param       type      query string false "cash, card, bank, digital, crypto or other"
// @Param       is_active query bool   false "Filter by active flag"
// @Param       page      query int    false "Page number (default 1)"
// @Param       limit     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PaymentMethod] "Paginated payment methods"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /payment-methods [get]
func (h *PaymentMethodHandler) GetPaymentMethods(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.PaymentMethodFilter{SpaceID: c.Query("space_id")}
	if v := c.Query("type"); v != "" {
		pmType := models.PaymentMethodType(v)
		switch pmType {
		case models.PaymentMethodTypeCash, models.PaymentMethodTypeCard, models.PaymentMethodTypeBank,
			models.PaymentMethodTypeDigital, models.PaymentMethodTypeCrypto, models.PaymentMethodTypeOther:
			filter.Type = &pmType
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method type"))
			return
		}
	}
	if filter.IsActive, err = parseBoolQuery(c, "is_active"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.paymentMethodService.GetPaymentMethods(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDefaultPaymentMethods seeds and returns the default payment methods of a space
// @Summary     Default payment methods
// @Tags        payment-methods
// @Produce     json
// @Security    BearerAuth
// @Param       space_id query string false "Space ID (default personal space)"
// @Success     200 {array} models.PaymentMethod "Default payment methods"
// @Router      /payment-methods/defaults [get]
func (h *PaymentMethodHandler) GetDefaultPaymentMethods(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	methods, err := h.paymentMethodService.GetDefaultPaymentMethods(userID, c.Query("space_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

// GetPaymentMethodByID returns a single payment method
// @Summary     Get payment method
// @Tags        payment-methods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment method ID"
// @Success     200 {object} models.PaymentMethod "Payment method"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Router      /payment-methods/{id} [get]
func (h *PaymentMethodHandler) GetPaymentMethodByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pm, err := h.paymentMethodService.GetPaymentMethodByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_method": pm})
}

// UpdatePaymentMethod updates a payment method
// @Summary     Update payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                     true "Payment method ID"
// @Param       request body UpdatePaymentMethodRequest true "Fields to change"
// @Success     200 {object} models.PaymentMethod "Updated payment method"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /payment-methods/{id} [put]
func (h *PaymentMethodHandler) UpdatePaymentMethod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	update := services.PaymentMethodUpdate{
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
		IsActive: req.IsActive,
	}
	if req.Metadata != nil {
		meta := req.Metadata.model()
		update.Metadata = &meta
	}

	pm, err := h.paymentMethodService.UpdatePaymentMethod(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PAYMENT_METHOD", "payment_method", pm.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"payment_method": pm})
}

// DeletePaymentMethod deletes a payment method
// @Summary     Delete payment method
// @Description Fails while transactions or templates reference the payment method.
// @Tags        payment-methods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment method ID"
// @Success     200 {object} MessageResponse "Payment method deleted"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Failure     409 {object} ErrorResponse "Payment method in use"
// @Router      /payment-methods/{id} [delete]
func (h *PaymentMethodHandler) DeletePaymentMethod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pmID := c.Param("id")
	if err := h.paymentMethodService.DeletePaymentMethod(userID, pmID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PAYMENT_METHOD", "payment_method", pmID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}
