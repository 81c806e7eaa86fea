package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// BulkHandler handles operations over many transactions at once. Partial
// failures are reported with 207 Multi-Status and an itemized error list.
type BulkHandler struct {
	bulkService  services.BulkServicer
	auditService services.AuditServicer
}

// NewBulkHandler creates a new BulkHandler.
func NewBulkHandler(bulkService services.BulkServicer, auditService services.AuditServicer) *BulkHandler {
	return &BulkHandler{bulkService: bulkService, auditService: auditService}
}

// BulkTransactionRequest is one item of a bulk create. Items are validated by
// the service so every problem is reported against its index.
type BulkTransactionRequest struct {
	Type            models.TransactionType `json:"type"`
	Amount          int64                  `json:"amount"`
	Description     string                 `json:"description"`
	CategoryID      string                 `json:"category_id"`
	PaymentMethodID string                 `json:"payment_method_id"`
	Date            string                 `json:"date"`
	Tags            []string               `json:"tags"`
	Metadata        MetadataRequest        `json:"metadata"`
}

// BulkCreateRequest represents the payload of a bulk create.
type BulkCreateRequest struct {
	SpaceID      string                   `json:"space_id"`
	Transactions []BulkTransactionRequest `json:"transactions" binding:"required,min=1,max=1000"`
}

// BulkUpdateRequest sets the same fields on every listed transaction.
type BulkUpdateRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required,min=1,max=1000"`
	Updates        struct {
		Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
		Amount          *int64                  `json:"amount" binding:"omitempty,gt=0"`
		Description     *string                 `json:"description" binding:"omitempty,max=500"`
		CategoryID      *string                 `json:"category_id"`
		PaymentMethodID *string                 `json:"payment_method_id"`
		Date            *string                 `json:"date"`
		IsRecurring     *bool                   `json:"is_recurring"`
	} `json:"updates"`
}

// BulkIDsRequest lists the transactions an operation applies to.
type BulkIDsRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required,min=1,max=1000"`
}

// BulkCategorizeRequest moves transactions to one category.
type BulkCategorizeRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required,min=1,max=1000"`
	CategoryID     string   `json:"category_id" binding:"required"`
}

// BulkTagRequest adds, removes or replaces tags.
type BulkTagRequest struct {
	TransactionIDs []string              `json:"transaction_ids" binding:"required,min=1,max=1000"`
	Tags           []string              `json:"tags" binding:"max=50,dive,max=50"`
	Operation      services.TagOperation `json:"operation" binding:"required,tag_operation"`
}

// ExportFilterRequest narrows an export when no ids are given.
type ExportFilterRequest struct {
	SpaceID         *string                 `json:"space_id"`
	Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	CategoryID      *string                 `json:"category_id"`
	PaymentMethodID *string                 `json:"payment_method_id"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
	MinAmount       *int64                  `json:"min_amount"`
	MaxAmount       *int64                  `json:"max_amount"`
	Tags            []string                `json:"tags"`
	Search          *string                 `json:"search"`
}

func (f *ExportFilterRequest) filter() (services.TransactionFilter, error) {
	filter := services.TransactionFilter{
		SpaceID:         f.SpaceID,
		Type:            f.Type,
		CategoryID:      f.CategoryID,
		PaymentMethodID: f.PaymentMethodID,
		MinAmount:       f.MinAmount,
		MaxAmount:       f.MaxAmount,
		Tags:            f.Tags,
		Search:          f.Search,
	}
	if f.StartDate != "" {
		t, err := services.ParseDateBound(f.StartDate, false)
		if err != nil {
			return filter, invalidInput(err)
		}
		filter.From = &t
	}
	if f.EndDate != "" {
		t, err := services.ParseDateBound(f.EndDate, true)
		if err != nil {
			return filter, invalidInput(err)
		}
		filter.To = &t
	}
	return filter, nil
}

// BulkExportRequest selects transactions by id or by filter.
type BulkExportRequest struct {
	TransactionIDs []string              `json:"transaction_ids" binding:"max=1000"`
	Format         services.ExportFormat `json:"format" binding:"omitempty,export_format"`
	Filters        ExportFilterRequest   `json:"filters"`
}

func respondBulk(c *gin.Context, result *services.BulkResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func (h *BulkHandler) audit(c *gin.Context, userID, action string, result *services.BulkResult) {
	h.auditService.Log(userID, action, "transaction", "", c.ClientIP(),
		map[string]interface{}{"processed": result.Processed, "failed": result.Failed})
}

// BulkCreate inserts many transactions
// @Summary     Bulk create transactions
// @Description Every item is validated first; any invalid item rejects the whole request with per-index errors. Valid requests are inserted in batches.
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkCreateRequest true "Transactions"
// @Success     200 {object} services.BulkResult "All created"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/bulk/create [post]
func (h *BulkHandler) BulkCreate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	items := make([]services.BulkTransactionItem, len(req.Transactions))
	for i, t := range req.Transactions {
		items[i] = services.BulkTransactionItem{
			Type:            t.Type,
			Amount:          t.Amount,
			Description:     t.Description,
			CategoryID:      t.CategoryID,
			PaymentMethodID: t.PaymentMethodID,
			Date:            t.Date,
			Tags:            t.Tags,
			Metadata:        t.Metadata.model(),
		}
	}

	result, err := h.bulkService.BulkCreate(userID, req.SpaceID, items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_CREATE", result)
	respondBulk(c, result)
}

// BulkUpdate sets fields on many transactions
// @Summary     Bulk update transactions
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkUpdateRequest true "Ids and fields"
// @Success     200 {object} services.BulkResult "All updated"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category or payment method not found"
// @Router      /transactions/bulk/update [put]
func (h *BulkHandler) BulkUpdate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalTime(req.Updates.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.bulkService.BulkUpdate(userID, req.TransactionIDs, services.BulkUpdateFields{
		Type:            req.Updates.Type,
		Amount:          req.Updates.Amount,
		Description:     req.Updates.Description,
		CategoryID:      req.Updates.CategoryID,
		PaymentMethodID: req.Updates.PaymentMethodID,
		Date:            date,
		IsRecurring:     req.Updates.IsRecurring,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_UPDATE", result)
	respondBulk(c, result)
}

// BulkDelete deletes many transactions
// @Summary     Bulk delete transactions
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkIDsRequest true "Ids"
// @Success     200 {object} services.BulkResult "All deleted"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/bulk/delete [delete]
func (h *BulkHandler) BulkDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.bulkService.BulkDelete(userID, req.TransactionIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_DELETE", result)
	respondBulk(c, result)
}

// BulkDuplicate copies many transactions
// @Summary     Bulk duplicate transactions
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkIDsRequest true "Ids"
// @Success     200 {object} services.BulkResult "All duplicated"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Router      /transactions/bulk/duplicate [post]
func (h *BulkHandler) BulkDuplicate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.bulkService.BulkDuplicate(userID, req.TransactionIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_DUPLICATE", result)
	respondBulk(c, result)
}

// BulkCategorize moves many transactions to one category
// @Summary     Bulk categorize transactions
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkCategorizeRequest true "Ids and category"
// @Success     200 {object} services.BulkResult "All categorized"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /transactions/bulk/categorize [put]
func (h *BulkHandler) BulkCategorize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkCategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.bulkService.BulkCategorize(userID, req.TransactionIDs, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_CATEGORIZE", result)
	respondBulk(c, result)
}

// BulkTag changes tags on many transactions
// @Summary     Bulk tag transactions
// @Description operation add unions the tags, remove subtracts them, replace overwrites them.
// @Tags        bulk
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkTagRequest true "Ids, tags and operation"
// @Success     200 {object} services.BulkResult "All tagged"
// @Success     207 {object} services.BulkResult "Partial failure"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/bulk/tag [put]
func (h *BulkHandler) BulkTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.bulkService.BulkTag(userID, req.TransactionIDs, req.Tags, req.Operation)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, "BULK_TAG", result)
	respondBulk(c, result)
}

// BulkExport downloads transactions as a file
// @Summary     Export transactions
// @Description Exports the listed transactions, or those matching filters when no ids are given, as JSON, CSV or XLSX.
// @Tags        bulk
// @Accept      json
// @Produce     application/json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       request body BulkExportRequest true "Selection and format"
// @Success     200 {file} file "Export attachment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/bulk/export [post]
func (h *BulkHandler) BulkExport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if req.Format == "" {
		req.Format = services.ExportFormatJSON
	}

	filter, err := req.Filters.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := h.bulkService.BulkExport(userID, req.TransactionIDs, filter, req.Format)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "BULK_EXPORT", "transaction", "", c.ClientIP(),
		map[string]interface{}{"format": req.Format, "count": file.Count})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Header("X-Export-Count", strconv.Itoa(file.Count))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
