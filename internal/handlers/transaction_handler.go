package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// MetadataRequest carries the optional free-form details of a transaction.
type MetadataRequest struct {
	Location    string   `json:"location" binding:"max=200"`
	Notes       string   `json:"notes" binding:"max=1000"`
	Attachments []string `json:"attachments" binding:"max=20,dive,max=500"`
}

func (m *MetadataRequest) model() models.TransactionMetadata {
	return models.TransactionMetadata{
		Location:    m.Location,
		Notes:       m.Notes,
		Attachments: m.Attachments,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	SpaceID         string                 `json:"space_id"`
	Type            models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount          int64                  `json:"amount" binding:"required,gt=0"`
	Description     string                 `json:"description" binding:"required,max=500"`
	CategoryID      string                 `json:"category_id" binding:"required"`
	PaymentMethodID string                 `json:"payment_method_id" binding:"required"`
	Date            *string                `json:"date"`
	Tags            []string               `json:"tags" binding:"max=50,dive,max=50"`
	IsRecurring     bool                   `json:"is_recurring"`
	RecurringID     *string                `json:"recurring_id"`
	Metadata        MetadataRequest        `json:"metadata"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount          *int64                  `json:"amount" binding:"omitempty,gt=0"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	CategoryID      *string                 `json:"category_id"`
	PaymentMethodID *string                 `json:"payment_method_id"`
	Date            *string                 `json:"date"`
	Tags            *[]string               `json:"tags" binding:"omitempty,max=50,dive,max=50"`
	IsRecurring     *bool                   `json:"is_recurring"`
	Metadata        *MetadataRequest        `json:"metadata"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a transaction in a space. Without space_id the caller's personal space is used. Amounts are in cents.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or payment method not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date := time.Now().UTC()
	if parsed, err := parseOptionalTime(req.Date); err != nil {
		respondWithError(c, err)
		return
	} else if parsed != nil {
		date = *parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		SpaceID:         req.SpaceID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Date:            date,
		Tags:            req.Tags,
		IsRecurring:     req.IsRecurring,
		RecurringID:     req.RecurringID,
		Metadata:        req.Metadata.model(),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount, "space_id": transaction.SpaceID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions lists the caller's transactions
// @Summary     List transactions
// @Description Paginated transactions with filters. Date bounds are inclusive and a YYYY-MM-DD end_date covers the whole day.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       space_id          query string false "Filter by space"
// @Param       type              query string false "income, expense or transfer"
// @Param       category_id       query string false "Filter by category"
// @Param       payment_method_id query string false "Filter by payment method"
// @Param       start_date        query string false "Inclusive start (RFC3339 or YYYY-MM-DD)"
// @Param       end_date          query string false "Inclusive end (RFC3339 or YYYY-MM-DD)"
// @Param       min_amount        query int    false "Minimum amount in cents"
// @Param       max_amount        query int    false "Maximum amount in cents"
// @Param       tags              query string false "Comma-separated tags, any match"
// @Param       search            query string false "Case-insensitive text over description, notes and tags"
// @Param       sort_by           query string false "date, amount, description or created_at"
// @Param       sort_order        query string false "asc or desc (default desc)"
// @Param       page              query int    false "Page number (default 1)"
// @Param       limit             query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchTransactions runs a free-text search
// @Summary     Search transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       q        query string true  "Search text"
// @Param       space_id query string false "Restrict to a space"
// @Param       page     query int    false "Page number (default 1)"
// @Param       limit    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Matching transactions"
// @Failure     400 {object} ErrorResponse "Missing query"
// @Router      /transactions/search [get]
func (h *TransactionHandler) SearchTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	query := c.Query("q")
	if query == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "q is required"))
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.SearchTransactions(userID, query, c.Query("space_id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionStats returns aggregate totals
// @Summary     Transaction statistics
// @Description Totals, per-category and per-payment-method breakdowns and a monthly trend for the filtered set.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       space_id   query string false "Filter by space"
// @Param       start_date query string false "Inclusive start"
// @Param       end_date   query string false "Inclusive end"
// @Success     200 {object} services.TransactionStats "Statistics"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/stats/summary [get]
func (h *TransactionHandler) GetTransactionStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.transactionService.GetTransactionStats(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Only the supplied fields change. Replaced category or payment method references are re-validated.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction or reference not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalTime(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	update := services.TransactionUpdate{
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Date:            date,
		Tags:            req.Tags,
		IsRecurring:     req.IsRecurring,
	}
	if req.Metadata != nil {
		meta := req.Metadata.model()
		update.Metadata = &meta
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Deleted transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.DeleteTransaction(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if transaction == nil {
		respondWithError(c, apperrors.ErrTransactionNotFound)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount, "type": transaction.Type})

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully", "transaction": transaction})
}
