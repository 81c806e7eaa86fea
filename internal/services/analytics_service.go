package services

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/money"
)

// TrendPeriod is the bucket size of spending trends.
type TrendPeriod string

const (
	TrendPeriodDay   TrendPeriod = "day"
	TrendPeriodWeek  TrendPeriod = "week"
	TrendPeriodMonth TrendPeriod = "month"
	TrendPeriodYear  TrendPeriod = "year"
)

// Category trend and financial health labels.
const (
	TrendUp        = "up"
	TrendDown      = "down"
	TrendStable    = "stable"
	TrendImproving = "improving"
	TrendDeclining = "declining"
)

// trendThreshold is the relative change, in percent, above which a category
// trend is reported as up or down.
const trendThreshold = 5.0

// TrendPoint holds the totals of one period.
type TrendPoint struct {
	Period  string `json:"period"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Net     int64  `json:"net"`
	Count   int64  `json:"count"`
}

// CategoryAnalysis is the per-category entry of GetCategoryAnalysis.
type CategoryAnalysis struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Total      int64   `json:"total"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
	Average    float64 `json:"average"`
	Trend      string  `json:"trend"`
}

// PaymentMethodAnalysis is the per-payment-method entry of GetPaymentMethodAnalysis.
type PaymentMethodAnalysis struct {
	PaymentMethodID string                   `json:"payment_method_id"`
	Name            string                   `json:"name"`
	Type            models.PaymentMethodType `json:"type"`
	Total           int64                    `json:"total"`
	Count           int64                    `json:"count"`
	Percentage      float64                  `json:"percentage"`
	Average         float64                  `json:"average"`
}

// PeriodTotals are the flow totals of one month.
type PeriodTotals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
	Count   int64 `json:"count"`
}

// PeriodChange holds percent changes between two PeriodTotals.
type PeriodChange struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
	Count   float64 `json:"count"`
}

// MonthlyComparison compares the current calendar month with the previous one.
type MonthlyComparison struct {
	CurrentMonth  string       `json:"current_month"`
	PreviousMonth string       `json:"previous_month"`
	Current       PeriodTotals `json:"current"`
	Previous      PeriodTotals `json:"previous"`
	Change        PeriodChange `json:"change"`
}

// FinancialHealth summarizes income against spending over a window.
type FinancialHealth struct {
	From                time.Time           `json:"from"`
	To                  time.Time           `json:"to"`
	TotalIncome         int64               `json:"total_income"`
	TotalExpense        int64               `json:"total_expense"`
	NetAmount           int64               `json:"net_amount"`
	SavingsRate         float64             `json:"savings_rate"`
	ExpenseRatio        float64             `json:"expense_ratio"`
	Trend               string              `json:"trend"`
	RecentMonths        []MonthlyTrendPoint `json:"recent_months"`
	TopSpendingCategory string              `json:"top_spending_category"`
	TopIncomeCategory   string              `json:"top_income_category"`
}

type analyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db, now: time.Now}
}

// rows loads the caller's transactions matching filter in chronological order.
func (s *analyticsService) rows(userID string, filter TransactionFilter) ([]flowRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.SpaceID != nil && *filter.SpaceID != "" {
		if _, err := resolveSpace(s.db, userID, *filter.SpaceID); err != nil {
			return nil, err
		}
	}
	return loadFlowRows(filter.apply(s.db.Where("user_id = ?", userID)))
}

func periodKey(t time.Time, period TrendPeriod) string {
	t = t.UTC()
	switch period {
	case TrendPeriodDay:
		return t.Format("2006-01-02")
	case TrendPeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case TrendPeriodYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// GetSpendingTrends buckets the caller's transactions by period.
func (s *analyticsService) GetSpendingTrends(userID string, period TrendPeriod, filter TransactionFilter) ([]TrendPoint, error) {
	switch period {
	case TrendPeriodDay, TrendPeriodWeek, TrendPeriodMonth, TrendPeriodYear:
	case "":
		period = TrendPeriodMonth
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid period %q", period))
	}

	rows, err := s.rows(userID, filter)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*totals)
	for _, r := range rows {
		k := periodKey(r.Date, period)
		t, ok := buckets[k]
		if !ok {
			t = &totals{}
			buckets[k] = t
		}
		t.add(r)
	}

	points := make([]TrendPoint, 0, len(buckets))
	for k, t := range buckets {
		points = append(points, TrendPoint{Period: k, Income: t.income, Expense: t.expense, Net: t.net(), Count: t.count})
	}
	// Every key format sorts chronologically as a string.
	sort.Slice(points, func(a, b int) bool { return points[a].Period < points[b].Period })
	return points, nil
}

// categoryTrend compares the average of the first half of amounts with the
// second half. amounts are in chronological order.
func categoryTrend(amounts []int64) string {
	if len(amounts) < 2 {
		return TrendStable
	}
	mid := len(amounts) / 2
	var first, second int64
	for _, a := range amounts[:mid] {
		first += a
	}
	for _, a := range amounts[mid:] {
		second += a
	}
	firstAvg := money.Average(first, int64(mid))
	secondAvg := money.Average(second, int64(len(amounts)-mid))
	if firstAvg == 0 {
		return TrendStable
	}
	change := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case change > trendThreshold:
		return TrendUp
	case change < -trendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// GetCategoryAnalysis reports totals per category for one transaction type,
// expense by default.
func (s *analyticsService) GetCategoryAnalysis(userID string, txType models.TransactionType, filter TransactionFilter) ([]CategoryAnalysis, error) {
	if txType == "" {
		txType = models.TransactionTypeExpense
	}
	if !txType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid transaction type %q", txType))
	}
	filter.Type = &txType

	rows, err := s.rows(userID, filter)
	if err != nil {
		return nil, err
	}

	var grandTotal int64
	amounts := make(map[string][]int64)
	for _, r := range rows {
		grandTotal += r.Amount
		amounts[r.CategoryID] = append(amounts[r.CategoryID], r.Amount)
	}

	var categories []models.Category
	if ids := uniqueKeys(rows, byCategory); len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	result := make([]CategoryAnalysis, 0, len(amounts))
	for id, list := range amounts {
		var total int64
		for _, a := range list {
			total += a
		}
		entry := CategoryAnalysis{
			CategoryID: id,
			Name:       "Unknown",
			Total:      total,
			Count:      int64(len(list)),
			Percentage: money.Percentage(total, grandTotal),
			Average:    money.Average(total, int64(len(list))),
			Trend:      categoryTrend(list),
		}
		if c, ok := byID[id]; ok {
			entry.Name = c.Name
			entry.Color = c.Color
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Total != result[b].Total {
			return result[a].Total > result[b].Total
		}
		return result[a].Name < result[b].Name
	})
	return result, nil
}

// GetPaymentMethodAnalysis reports totals per payment method.
func (s *analyticsService) GetPaymentMethodAnalysis(userID string, filter TransactionFilter) ([]PaymentMethodAnalysis, error) {
	rows, err := s.rows(userID, filter)
	if err != nil {
		return nil, err
	}

	var grandTotal int64
	for _, r := range rows {
		grandTotal += r.Amount
	}

	var methods []models.PaymentMethod
	if ids := uniqueKeys(rows, byPaymentMethod); len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&methods).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	names := make(map[string]string, len(methods))
	types := make(map[string]models.PaymentMethodType, len(methods))
	for _, m := range methods {
		names[m.ID] = m.Name
		types[m.ID] = m.Type
	}

	items := breakdown(rows, byPaymentMethod, names, grandTotal)
	result := make([]PaymentMethodAnalysis, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentMethodAnalysis{
			PaymentMethodID: item.ID,
			Name:            item.Name,
			Type:            types[item.ID],
			Total:           item.Amount,
			Count:           item.Count,
			Percentage:      item.Percentage,
			Average:         money.Average(item.Amount, item.Count),
		})
	}
	return result, nil
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *analyticsService) monthTotals(userID, spaceID string, start time.Time) (PeriodTotals, error) {
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	filter := TransactionFilter{From: &start, To: &end}
	if spaceID != "" {
		filter.SpaceID = &spaceID
	}
	rows, err := s.rows(userID, filter)
	if err != nil {
		return PeriodTotals{}, err
	}
	var t totals
	for _, r := range rows {
		t.add(r)
	}
	return PeriodTotals{Income: t.income, Expense: t.expense, Net: t.net(), Count: t.count}, nil
}

// GetMonthlyComparison compares this calendar month with the previous one.
func (s *analyticsService) GetMonthlyComparison(userID, spaceID string) (*MonthlyComparison, error) {
	current := monthStart(s.now())
	previous := current.AddDate(0, -1, 0)

	cur, err := s.monthTotals(userID, spaceID, current)
	if err != nil {
		return nil, err
	}
	prev, err := s.monthTotals(userID, spaceID, previous)
	if err != nil {
		return nil, err
	}

	return &MonthlyComparison{
		CurrentMonth:  current.Format("2006-01"),
		PreviousMonth: previous.Format("2006-01"),
		Current:       cur,
		Previous:      prev,
		Change: PeriodChange{
			Income:  money.PercentChange(prev.Income, cur.Income),
			Expense: money.PercentChange(prev.Expense, cur.Expense),
			Net:     money.PercentChange(prev.Net, cur.Net),
			Count:   money.PercentChange(prev.Count, cur.Count),
		},
	}, nil
}

// netTrend classifies three consecutive monthly nets.
func netTrend(nets []int64) string {
	if len(nets) < 3 {
		return TrendStable
	}
	increasing, decreasing := true, true
	for i := 1; i < len(nets); i++ {
		if nets[i] <= nets[i-1] {
			increasing = false
		}
		if nets[i] >= nets[i-1] {
			decreasing = false
		}
	}
	switch {
	case increasing:
		return TrendImproving
	case decreasing:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func topCategory(rows []flowRow, txType models.TransactionType, names map[string]string) string {
	var filtered []flowRow
	for _, r := range rows {
		if r.Type == txType {
			filtered = append(filtered, r)
		}
	}
	items := breakdown(filtered, byCategory, names, 0)
	if len(items) == 0 {
		return ""
	}
	return items[0].Name
}

// GetFinancialHealth computes savings rate, expense ratio and the three month
// net trend. Without explicit bounds the window is the trailing 12 months.
func (s *analyticsService) GetFinancialHealth(userID string, filter TransactionFilter) (*FinancialHealth, error) {
	now := s.now().UTC()
	if filter.To == nil {
		filter.To = &now
	}
	if filter.From == nil {
		from := filter.To.AddDate(-1, 0, 0)
		filter.From = &from
	}
	filter.Type = nil

	rows, err := s.rows(userID, filter)
	if err != nil {
		return nil, err
	}

	var t totals
	for _, r := range rows {
		t.add(r)
	}
	names, err := loadNames(s.db, &models.Category{}, uniqueKeys(rows, byCategory))
	if err != nil {
		return nil, err
	}

	health := &FinancialHealth{
		From:                filter.From.UTC(),
		To:                  filter.To.UTC(),
		TotalIncome:         t.income,
		TotalExpense:        t.expense,
		NetAmount:           t.net(),
		Trend:               TrendStable,
		TopSpendingCategory: topCategory(rows, models.TransactionTypeExpense, names),
		TopIncomeCategory:   topCategory(rows, models.TransactionTypeIncome, names),
	}
	if t.income > 0 {
		health.SavingsRate, _ = money.Ratio(t.net(), t.income).Float64()
		health.ExpenseRatio, _ = money.Ratio(t.expense, t.income).Float64()
	}

	// Last three calendar months ending with the month of the window end.
	last := monthStart(*filter.To)
	byMonth := make(map[string]MonthlyTrendPoint)
	for _, p := range monthlyTrend(rows) {
		byMonth[p.Month] = p
	}
	recent := make([]MonthlyTrendPoint, 0, 3)
	nets := make([]int64, 0, 3)
	for i := 2; i >= 0; i-- {
		key := last.AddDate(0, -i, 0).Format("2006-01")
		p, ok := byMonth[key]
		if !ok {
			p = MonthlyTrendPoint{Month: key}
		}
		recent = append(recent, p)
		nets = append(nets, p.Net)
	}
	health.RecentMonths = recent
	health.Trend = netTrend(nets)
	return health, nil
}
