package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"ledgerly/internal/models"
	"ledgerly/internal/testutil"
)

func newTestAnalytics(db *gorm.DB, now time.Time) *analyticsService {
	svc := NewAnalyticsService(db).(*analyticsService)
	svc.now = func() time.Time { return now }
	return svc
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestPeriodKey(t *testing.T) {
	date := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		period TrendPeriod
		want   string
	}{
		{TrendPeriodDay, "2024-01-01"},
		{TrendPeriodWeek, "2024-W01"},
		{TrendPeriodMonth, "2024-01"},
		{TrendPeriodYear, "2024"},
	}
	for _, tt := range tests {
		if got := periodKey(date, tt.period); got != tt.want {
			t.Errorf("periodKey(%s) = %q, want %q", tt.period, got, tt.want)
		}
	}

	// 2021-01-03 belongs to ISO week 53 of 2020.
	if got := periodKey(time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), TrendPeriodWeek); got != "2020-W53" {
		t.Errorf("expected ISO week 2020-W53, got %s", got)
	}
}

func TestGetSpendingTrends(t *testing.T) {
	t.Run("monthly_buckets_in_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)

		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 300, testutil.WithDate(day(2024, 3, 2)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.income, l.pm, models.TransactionTypeIncome, 1000, testutil.WithDate(day(2024, 1, 20)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 200, testutil.WithDate(day(2024, 1, 5)))

		points, err := svc.GetSpendingTrends(l.user.ID, TrendPeriodMonth, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(points) != 2 {
			t.Fatalf("expected 2 periods, got %d", len(points))
		}
		if points[0].Period != "2024-01" || points[0].Income != 1000 || points[0].Expense != 200 || points[0].Net != 800 || points[0].Count != 2 {
			t.Errorf("unexpected January %+v", points[0])
		}
		if points[1].Period != "2024-03" || points[1].Net != -300 {
			t.Errorf("unexpected March %+v", points[1])
		}
	})

	t.Run("yearly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)

		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 300, testutil.WithDate(day(2023, 3, 2)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 300, testutil.WithDate(day(2024, 3, 2)))

		points, err := svc.GetSpendingTrends(l.user.ID, TrendPeriodYear, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(points) != 2 || points[0].Period != "2023" || points[1].Period != "2024" {
			t.Errorf("unexpected points %+v", points)
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)

		_, err := svc.GetSpendingTrends(l.user.ID, TrendPeriod("fortnight"), TransactionFilter{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)

		points, err := svc.GetSpendingTrends(l.user.ID, TrendPeriodDay, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if points == nil || len(points) != 0 {
			t.Errorf("expected an empty list, got %v", points)
		}
	})
}

func TestCategoryTrend(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int64
		want    string
	}{
		{"single", []int64{100}, TrendStable},
		{"rising", []int64{100, 100, 200, 200}, TrendUp},
		{"falling", []int64{200, 200, 100}, TrendDown},
		{"within_threshold", []int64{100, 104}, TrendStable},
		{"just_above_threshold", []int64{100, 106}, TrendUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categoryTrend(tt.amounts); got != tt.want {
				t.Errorf("categoryTrend(%v) = %s, want %s", tt.amounts, got, tt.want)
			}
		})
	}
}

func TestGetCategoryAnalysis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestAnalytics(db, day(2024, 6, 15))
	l := setupLedger(t, db)
	other := testutil.CreateTestCategory(t, db, l.space.ID, l.user.ID, models.CategoryTypeExpense)

	testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 100, testutil.WithDate(day(2024, 1, 1)))
	testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 200, testutil.WithDate(day(2024, 2, 1)))
	testutil.CreateTestTransaction(t, db, l.user.ID, other, l.pm, models.TransactionTypeExpense, 100, testutil.WithDate(day(2024, 2, 1)))
	testutil.CreateTestTransaction(t, db, l.user.ID, l.income, l.pm, models.TransactionTypeIncome, 9999, testutil.WithDate(day(2024, 2, 1)))

	analysis, err := svc.GetCategoryAnalysis(l.user.ID, "", TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(analysis) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(analysis))
	}
	first := analysis[0]
	if first.CategoryID != l.expense.ID || first.Total != 300 || first.Count != 2 {
		t.Errorf("unexpected first entry %+v", first)
	}
	if first.Percentage != 75 || first.Average != 150 || first.Trend != TrendUp {
		t.Errorf("unexpected derived values %+v", first)
	}
	if first.Name != l.expense.Name || first.Color != "#336699" {
		t.Errorf("expected category details, got %+v", first)
	}
	if analysis[1].Trend != TrendStable || analysis[1].Percentage != 25 {
		t.Errorf("unexpected second entry %+v", analysis[1])
	}

	income, err := svc.GetCategoryAnalysis(l.user.ID, models.TransactionTypeIncome, TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(income) != 1 || income[0].Total != 9999 || income[0].Percentage != 100 {
		t.Errorf("unexpected income analysis %+v", income)
	}
}

func TestGetPaymentMethodAnalysis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestAnalytics(db, day(2024, 6, 15))
	l := setupLedger(t, db)
	card := testutil.CreateTestPaymentMethod(t, db, l.space.ID, l.user.ID)

	testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 100)
	testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, card, models.TransactionTypeExpense, 250)
	testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, card, models.TransactionTypeExpense, 50)

	analysis, err := svc.GetPaymentMethodAnalysis(l.user.ID, TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(analysis) != 2 {
		t.Fatalf("expected 2 payment methods, got %d", len(analysis))
	}
	if analysis[0].PaymentMethodID != card.ID || analysis[0].Total != 300 || analysis[0].Count != 2 || analysis[0].Average != 150 {
		t.Errorf("unexpected first entry %+v", analysis[0])
	}
	if analysis[0].Percentage != 75 || analysis[0].Type != models.PaymentMethodTypeCash {
		t.Errorf("unexpected derived values %+v", analysis[0])
	}
}

func TestGetMonthlyComparison(t *testing.T) {
	t.Run("change_between_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)

		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 1000, testutil.WithDate(day(2024, 5, 31)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 1500, testutil.WithDate(day(2024, 6, 1)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.income, l.pm, models.TransactionTypeIncome, 2000, testutil.WithDate(day(2024, 6, 2)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.income, l.pm, models.TransactionTypeIncome, 7777, testutil.WithDate(day(2024, 4, 30)))

		cmp, err := svc.GetMonthlyComparison(l.user.ID, "")
		testutil.AssertNoError(t, err)
		if cmp.CurrentMonth != "2024-06" || cmp.PreviousMonth != "2024-05" {
			t.Errorf("unexpected months %s / %s", cmp.CurrentMonth, cmp.PreviousMonth)
		}
		if cmp.Current.Expense != 1500 || cmp.Current.Income != 2000 || cmp.Previous.Expense != 1000 || cmp.Previous.Income != 0 {
			t.Errorf("unexpected totals %+v / %+v", cmp.Current, cmp.Previous)
		}
		if cmp.Change.Expense != 50 || cmp.Change.Income != 100 || cmp.Change.Count != 100 {
			t.Errorf("unexpected change %+v", cmp.Change)
		}
		// Net went from -1000 to 500.
		if cmp.Change.Net != 150 {
			t.Errorf("expected net change 150, got %v", cmp.Change.Net)
		}
	})

	t.Run("january_compares_with_december", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 1, 10))
		l := setupLedger(t, db)

		cmp, err := svc.GetMonthlyComparison(l.user.ID, "")
		testutil.AssertNoError(t, err)
		if cmp.PreviousMonth != "2023-12" {
			t.Errorf("expected 2023-12, got %s", cmp.PreviousMonth)
		}
		if cmp.Change.Income != 0 || cmp.Change.Expense != 0 {
			t.Errorf("expected zero change on empty months, got %+v", cmp.Change)
		}
	})
}

func TestNetTrend(t *testing.T) {
	tests := []struct {
		nets []int64
		want string
	}{
		{[]int64{100, 200, 300}, TrendImproving},
		{[]int64{300, 200, -100}, TrendDeclining},
		{[]int64{100, 100, 300}, TrendStable},
		{[]int64{100, 300, 200}, TrendStable},
	}
	for _, tt := range tests {
		if got := netTrend(tt.nets); got != tt.want {
			t.Errorf("netTrend(%v) = %s, want %s", tt.nets, got, tt.want)
		}
	}
}

func TestGetFinancialHealth(t *testing.T) {
	t.Run("default_window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)
		groceries := testutil.CreateTestCategoryNamed(t, db, l.space.ID, l.user.ID, models.CategoryTypeExpense, "Groceries")
		salary := testutil.CreateTestCategoryNamed(t, db, l.space.ID, l.user.ID, models.CategoryTypeIncome, "Salary")

		// Outside the trailing 12 months.
		testutil.CreateTestTransaction(t, db, l.user.ID, groceries, l.pm, models.TransactionTypeExpense, 99999, testutil.WithDate(day(2023, 5, 1)))

		testutil.CreateTestTransaction(t, db, l.user.ID, salary, l.pm, models.TransactionTypeIncome, 1000, testutil.WithDate(day(2024, 4, 1)))
		testutil.CreateTestTransaction(t, db, l.user.ID, groceries, l.pm, models.TransactionTypeExpense, 900, testutil.WithDate(day(2024, 4, 2)))
		testutil.CreateTestTransaction(t, db, l.user.ID, salary, l.pm, models.TransactionTypeIncome, 1000, testutil.WithDate(day(2024, 5, 1)))
		testutil.CreateTestTransaction(t, db, l.user.ID, groceries, l.pm, models.TransactionTypeExpense, 700, testutil.WithDate(day(2024, 5, 2)))
		testutil.CreateTestTransaction(t, db, l.user.ID, salary, l.pm, models.TransactionTypeIncome, 1000, testutil.WithDate(day(2024, 6, 1)))
		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 400, testutil.WithDate(day(2024, 6, 2)))

		health, err := svc.GetFinancialHealth(l.user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if health.TotalIncome != 3000 || health.TotalExpense != 2000 || health.NetAmount != 1000 {
			t.Errorf("unexpected totals %+v", health)
		}
		if health.SavingsRate != 33.33 || health.ExpenseRatio != 66.67 {
			t.Errorf("unexpected ratios %v / %v", health.SavingsRate, health.ExpenseRatio)
		}
		if health.Trend != TrendImproving {
			t.Errorf("expected improving, got %s", health.Trend)
		}
		if health.TopSpendingCategory != "Groceries" || health.TopIncomeCategory != "Salary" {
			t.Errorf("unexpected top categories %s / %s", health.TopSpendingCategory, health.TopIncomeCategory)
		}
		if len(health.RecentMonths) != 3 || health.RecentMonths[0].Month != "2024-04" || health.RecentMonths[2].Month != "2024-06" {
			t.Errorf("unexpected recent months %+v", health.RecentMonths)
		}
	})

	t.Run("no_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestAnalytics(db, day(2024, 6, 15))
		l := setupLedger(t, db)
		testutil.CreateTestTransaction(t, db, l.user.ID, l.expense, l.pm, models.TransactionTypeExpense, 400, testutil.WithDate(day(2024, 6, 2)))

		health, err := svc.GetFinancialHealth(l.user.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if health.SavingsRate != 0 || health.ExpenseRatio != 0 {
			t.Errorf("expected zero ratios without income, got %+v", health)
		}
		if health.TopIncomeCategory != "" {
			t.Errorf("expected no top income category, got %s", health.TopIncomeCategory)
		}
		// Nets 0, 0, -400.
		if health.Trend != TrendStable {
			t.Errorf("expected stable, got %s", health.Trend)
		}
	})
}
