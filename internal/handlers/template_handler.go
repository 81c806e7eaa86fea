package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// TemplateHandler handles transaction template requests.
type TemplateHandler struct {
	templateService services.TemplateServicer
	auditService    services.AuditServicer
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService services.TemplateServicer, auditService services.AuditServicer) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, auditService: auditService}
}

// CreateTemplateRequest represents the request payload for creating a template.
type CreateTemplateRequest struct {
	SpaceID         string                 `json:"space_id"`
	Name            string                 `json:"name" binding:"required,max=100"`
	Description     string                 `json:"description" binding:"required,max=500"`
	Type            models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount          int64                  `json:"amount" binding:"required,gt=0"`
	CategoryID      string                 `json:"category_id" binding:"required"`
	PaymentMethodID string                 `json:"payment_method_id" binding:"required"`
	Tags            []string               `json:"tags" binding:"max=50,dive,max=50"`
	Metadata        MetadataRequest        `json:"metadata"`
}

// UpdateTemplateRequest represents the request payload for updating a template.
type UpdateTemplateRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,max=100"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount          *int64                  `json:"amount" binding:"omitempty,gt=0"`
	CategoryID      *string                 `json:"category_id"`
	PaymentMethodID *string                 `json:"payment_method_id"`
	Tags            *[]string               `json:"tags" binding:"omitempty,max=50,dive,max=50"`
	Metadata        *MetadataRequest        `json:"metadata"`
	IsActive        *bool                   `json:"is_active"`
}

// UseTemplateRequest carries overrides applied on top of the template.
type UseTemplateRequest struct {
	Amount      *int64           `json:"amount" binding:"omitempty,gt=0"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Date        *string          `json:"date"`
	Tags        *[]string        `json:"tags" binding:"omitempty,max=50,dive,max=50"`
	Metadata    *MetadataRequest `json:"metadata"`
}

// DuplicateTemplateRequest optionally names the copy.
type DuplicateTemplateRequest struct {
	Name string `json:"name" binding:"max=100"`
}

// CreateTemplate handles the creation of a template
// @Summary     Create a template
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTemplateRequest true "Template details"
// @Success     201 {object} models.TransactionTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category or payment method not found"
// @Router      /transactions/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	tmpl, err := h.templateService.CreateTemplate(userID, services.TemplateInput{
		SpaceID:         req.SpaceID,
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Tags:            req.Tags,
		Metadata:        req.Metadata.model(),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TEMPLATE", "template", tmpl.ID, c.ClientIP(),
		map[string]interface{}{"name": tmpl.Name})

	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}

// GetTemplates lists templates
// @Summary     List templates
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Param       space_id  query string false "Filter by space"
// @Param       is_active query bool   false "Filter by active flag"
// @Param       page      query int    false "Page number (default 1)"
// @Param       limit     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TransactionTemplate] "Paginated templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/templates [get]
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
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

	filter := services.TemplateFilter{SpaceID: c.Query("space_id")}
	if filter.IsActive, err = parseBoolQuery(c, "is_active"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.templateService.GetTemplates(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPopularTemplates lists the most used active templates
// @Summary     Popular templates
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Param       space_id query string false "Filter by space"
// @Param       limit    query int    false "Number of templates (default 5)"
// @Success     200 {array} models.TransactionTemplate "Templates by usage"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/templates/popular [get]
func (h *TemplateHandler) GetPopularTemplates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, parseErr := strconv.Atoi(v)
		if parseErr != nil || n < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid limit"))
			return
		}
		limit = n
	}

	templates, err := h.templateService.GetPopularTemplates(userID, c.Query("space_id"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplateStats summarizes template usage
// @Summary     Template statistics
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Param       space_id query string false "Filter by space"
// @Success     200 {object} services.TemplateStats "Statistics"
// @Router      /transactions/templates/stats [get]
func (h *TemplateHandler) GetTemplateStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.templateService.GetTemplateStats(userID, c.Query("space_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetTemplateByID returns one template
// @Summary     Get template
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} models.TransactionTemplate "Template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /transactions/templates/{id} [get]
func (h *TemplateHandler) GetTemplateByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tmpl, err := h.templateService.GetTemplateByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

// UpdateTemplate updates a template
// @Summary     Update template
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Template ID"
// @Param       request body UpdateTemplateRequest true "Fields to change"
// @Success     200 {object} models.TransactionTemplate "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /transactions/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	update := services.TemplateUpdate{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Tags:            req.Tags,
		IsActive:        req.IsActive,
	}
	if req.Metadata != nil {
		meta := req.Metadata.model()
		update.Metadata = &meta
	}

	tmpl, err := h.templateService.UpdateTemplate(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TEMPLATE", "template", tmpl.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

// DeleteTemplate deletes a template
// @Summary     Delete template
// @Tags        templates
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} MessageResponse "Template deleted"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /transactions/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID := c.Param("id")
	if err := h.templateService.DeleteTemplate(userID, templateID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TEMPLATE", "template", templateID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// CreateTransactionFromTemplate records a transaction from a template
// @Summary     Use template
// @Description Creates a transaction from the template. Supplied fields override the template's values.
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true  "Template ID"
// @Param       request body UseTemplateRequest false "Overrides"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Template inactive or invalid input"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /transactions/templates/{id}/create-transaction [post]
func (h *TemplateHandler) CreateTransactionFromTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UseTemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
	}

	date, err := parseOptionalTime(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overrides := services.TemplateOverrides{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		Tags:        req.Tags,
	}
	if req.Metadata != nil {
		meta := req.Metadata.model()
		overrides.Metadata = &meta
	}

	templateID := c.Param("id")
	transaction, err := h.templateService.CreateTransactionFromTemplate(userID, templateID, overrides)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION_FROM_TEMPLATE", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"template_id": templateID, "amount": transaction.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// DuplicateTemplate copies a template
// @Summary     Duplicate template
// @Description Copies the template without its usage history. The copy is named "<name> (Copy)" unless a name is given.
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true  "Template ID"
// @Param       request body DuplicateTemplateRequest false "New name"
// @Success     201 {object} models.TransactionTemplate "Copy"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /transactions/templates/{id}/duplicate [post]
func (h *TemplateHandler) DuplicateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DuplicateTemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
	}

	tmpl, err := h.templateService.DuplicateTemplate(userID, c.Param("id"), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DUPLICATE_TEMPLATE", "template", tmpl.ID, c.ClientIP(),
		map[string]interface{}{"source_id": c.Param("id")})

	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}
