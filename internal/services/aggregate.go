package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/money"
)

// flowRow is the slice of a transaction that reports aggregate over. Sums are
// computed in Go so the same code runs on PostgreSQL and SQLite.
type flowRow struct {
	ID              string
	Type            models.TransactionType
	Amount          int64
	Date            time.Time
	CategoryID      string
	PaymentMethodID string
}

// BreakdownItem is one entry of a per-category or per-payment-method breakdown.
type BreakdownItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     int64   `json:"amount"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MonthlyTrendPoint holds the totals of one calendar month.
type MonthlyTrendPoint struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Net     int64  `json:"net"`
	Count   int64  `json:"count"`
}

// TransactionStats is the summary returned by GetTransactionStats.
type TransactionStats struct {
	TotalIncome        int64               `json:"total_income"`
	TotalExpense       int64               `json:"total_expense"`
	NetAmount          int64               `json:"net_amount"`
	TransactionCount   int64               `json:"transaction_count"`
	AverageTransaction float64             `json:"average_transaction"`
	ByCategory         []BreakdownItem     `json:"by_category"`
	ByPaymentMethod    []BreakdownItem     `json:"by_payment_method"`
	MonthlyTrend       []MonthlyTrendPoint `json:"monthly_trend"`
}

type totals struct {
	income  int64
	expense int64
	count   int64
}

func (t *totals) add(r flowRow) {
	t.count++
	switch r.Type {
	case models.TransactionTypeIncome:
		t.income += r.Amount
	case models.TransactionTypeExpense:
		t.expense += r.Amount
	}
}

func (t totals) net() int64 { return t.income - t.expense }

// flow is the denominator of every percentage: income plus expense.
func (t totals) flow() int64 { return t.income + t.expense }

func loadFlowRows(q *gorm.DB) ([]flowRow, error) {
	var rows []flowRow
	err := q.Model(&models.Transaction{}).
		Select("id, type, amount, date, category_id, payment_method_id").
		Order("date ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// loadNames maps IDs to the name column of model's table.
func loadNames(db *gorm.DB, model interface{}, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []struct {
		ID   string
		Name string
	}
	if err := db.Model(model).Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names, nil
}

// breakdown groups rows by key and returns items sorted by amount desc.
func breakdown(rows []flowRow, key func(flowRow) string, names map[string]string, denominator int64) []BreakdownItem {
	index := make(map[string]int)
	items := make([]BreakdownItem, 0)
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			name := names[k]
			if name == "" {
				name = "Unknown"
			}
			items = append(items, BreakdownItem{ID: k, Name: name})
			i = len(items) - 1
			index[k] = i
		}
		items[i].Amount += r.Amount
		items[i].Count++
	}
	for i := range items {
		items[i].Percentage = money.Percentage(items[i].Amount, denominator)
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Amount != items[b].Amount {
			return items[a].Amount > items[b].Amount
		}
		return items[a].Name < items[b].Name
	})
	return items
}

func monthlyTrend(rows []flowRow) []MonthlyTrendPoint {
	byMonth := make(map[string]*totals)
	for _, r := range rows {
		k := r.Date.UTC().Format("2006-01")
		t, ok := byMonth[k]
		if !ok {
			t = &totals{}
			byMonth[k] = t
		}
		t.add(r)
	}
	points := make([]MonthlyTrendPoint, 0, len(byMonth))
	for month, t := range byMonth {
		points = append(points, MonthlyTrendPoint{
			Month:   month,
			Income:  t.income,
			Expense: t.expense,
			Net:     t.net(),
			Count:   t.count,
		})
	}
	sort.Slice(points, func(a, b int) bool { return points[a].Month < points[b].Month })
	return points
}

func uniqueKeys(rows []flowRow, key func(flowRow) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func byCategory(r flowRow) string      { return r.CategoryID }
func byPaymentMethod(r flowRow) string { return r.PaymentMethodID }

func computeStats(db *gorm.DB, rows []flowRow) (*TransactionStats, error) {
	var t totals
	for _, r := range rows {
		t.add(r)
	}

	categoryNames, err := loadNames(db, &models.Category{}, uniqueKeys(rows, byCategory))
	if err != nil {
		return nil, err
	}
	pmNames, err := loadNames(db, &models.PaymentMethod{}, uniqueKeys(rows, byPaymentMethod))
	if err != nil {
		return nil, err
	}

	return &TransactionStats{
		TotalIncome:        t.income,
		TotalExpense:       t.expense,
		NetAmount:          t.net(),
		TransactionCount:   t.count,
		AverageTransaction: money.Average(t.flow(), t.count),
		ByCategory:         breakdown(rows, byCategory, categoryNames, t.flow()),
		ByPaymentMethod:    breakdown(rows, byPaymentMethod, pmNames, t.flow()),
		MonthlyTrend:       monthlyTrend(rows),
	}, nil
}
