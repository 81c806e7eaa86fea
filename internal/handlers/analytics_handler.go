package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// AnalyticsHandler serves read-only reports over transactions.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetSpendingTrends groups income and expense by period
// @Summary     Spending trends
// @Description Income, expense, net and count per day, ISO week, month or year, oldest first.
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       period     query string false "day, week, month or year (default month)"
// @Param       space_id   query string false "Filter by space"
// @Param       start_date query string false "Inclusive start"
// @Param       end_date   query string false "Inclusive end"
// @Success     200 {array} services.TrendPoint "Trend points"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/analytics/trends [get]
func (h *AnalyticsHandler) GetSpendingTrends(c *gin.Context) {
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

	period := services.TrendPeriod(c.Query("period"))
	trends, err := h.analyticsService.GetSpendingTrends(userID, period, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// GetCategoryAnalysis reports totals per category
// @Summary     Category analysis
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       type       query string false "income, expense or transfer (default expense)"
// @Param       space_id   query string false "Filter by space"
// @Param       start_date query string false "Inclusive start"
// @Param       end_date   query string false "Inclusive end"
// @Success     200 {array} services.CategoryAnalysis "Per-category figures"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/analytics/categories [get]
func (h *AnalyticsHandler) GetCategoryAnalysis(c *gin.Context) {
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

	// type selects the analysed side, not a row filter.
	var txType models.TransactionType
	if filter.Type != nil {
		txType = *filter.Type
		filter.Type = nil
	}

	analysis, err := h.analyticsService.GetCategoryAnalysis(userID, txType, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": analysis})
}

// GetPaymentMethodAnalysis reports totals per payment method
// @Summary     Payment method analysis
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       space_id   query string false "Filter by space"
// @Param       start_date query string false "Inclusive start"
// @Param       end_date   query string false "Inclusive end"
// @Success     200 {array} services.PaymentMethodAnalysis "Per-payment-method figures"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/analytics/payment-methods [get]
func (h *AnalyticsHandler) GetPaymentMethodAnalysis(c *gin.Context) {
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

	analysis, err := h.analyticsService.GetPaymentMethodAnalysis(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": analysis})
}

// GetMonthlyComparison compares this month with the previous one
// @Summary     Monthly comparison
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       space_id query string false "Filter by space"
// @Success     200 {object} services.MonthlyComparison "Comparison"
// @Router      /transactions/analytics/monthly-comparison [get]
func (h *AnalyticsHandler) GetMonthlyComparison(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	comparison, err := h.analyticsService.GetMonthlyComparison(userID, c.Query("space_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparison": comparison})
}

// GetFinancialHealth summarizes savings and trend
// @Summary     Financial health
// @Description Savings rate, expense ratio, three-month net trend and top categories. The window defaults to the trailing twelve months.
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       space_id   query string false "Filter by space"
// @Param       start_date query string false "Inclusive start"
// @Param       end_date   query string false "Inclusive end"
// @Success     200 {object} services.FinancialHealth "Health report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/analytics/financial-health [get]
func (h *AnalyticsHandler) GetFinancialHealth(c *gin.Context) {
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

	health, err := h.analyticsService.GetFinancialHealth(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"health": health})
}
