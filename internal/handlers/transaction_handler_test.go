package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, input services.TransactionInput) (*models.Transaction, error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID string, input services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) (*models.Transaction, error)
	getTransactionsFn     func(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	searchTransactionsFn  func(userID, query, spaceID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	getTransactionStatsFn func(userID string, filter services.TransactionFilter) (*services.TransactionStats, error)
}

func (m *mockTransactionService) CreateTransaction(userID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, input services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, input)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) (*models.Transaction, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) GetTransactions(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) SearchTransactions(userID, query, spaceID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.searchTransactionsFn != nil {
		return m.searchTransactionsFn(userID, query, spaceID, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionStats(userID string, filter services.TransactionFilter) (*services.TransactionStats, error) {
	if m.getTransactionStatsFn != nil {
		return m.getTransactionStatsFn(userID, filter)
	}
	return &services.TransactionStats{}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetTransactions)
	auth.GET("/transactions/search", handler.SearchTransactions)
	auth.GET("/transactions/stats/summary", handler.GetTransactionStats)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

const validTransactionBody = `{"type":"expense","amount":2500,"description":"Lunch","category_id":"cat-1","payment_method_id":"pm-1"}`

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, input services.TransactionInput) (*models.Transaction, error) {
				got = input
				return &models.Transaction{Base: models.Base{ID: "tx-1"}, Amount: input.Amount, Type: input.Type}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", validTransactionBody)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["amount"] != float64(2500) {
			t.Errorf("expected amount 2500, got %v", tx["amount"])
		}
		if got.Date.IsZero() || time.Since(got.Date) > time.Minute {
			t.Errorf("expected date to default to now, got %v", got.Date)
		}
	})

	t.Run("accepts date-only value", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, input services.TransactionInput) (*models.Transaction, error) {
				got = input
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","amount":100,"description":"Pay","category_id":"c","payment_method_id":"p","date":"2024-03-15","tags":["work"]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		if !got.Date.Equal(want) {
			t.Errorf("expected %v, got %v", want, got.Date)
		}
		if len(got.Tags) != 1 || got.Tags[0] != "work" {
			t.Errorf("unexpected tags: %v", got.Tags)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":0,"description":"x","category_id":"c","payment_method_id":"p"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"gift","amount":10,"description":"x","category_id":"c","payment_method_id":"p"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":10,"description":"x","category_id":"c","payment_method_id":"p","date":"15/03/2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when category missing", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(string, services.TransactionInput) (*models.Transaction, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", validTransactionBody)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.TransactionFilter
		txSvc := &mockTransactionService{
			getTransactionsFn: func(_ string, filter services.TransactionFilter, _ pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET",
			"/transactions?type=expense&start_date=2024-01-01&end_date=2024-01-31&min_amount=100&tags=food,%20travel&sort_by=amount&sort_order=asc", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Type == nil || *got.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", got.Type)
		}
		if got.From == nil || !got.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from: %v", got.From)
		}
		if got.To == nil || got.To.Before(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)) {
			t.Errorf("expected end_date to cover the whole day, got %v", got.To)
		}
		if got.MinAmount == nil || *got.MinAmount != 100 {
			t.Errorf("unexpected min amount: %v", got.MinAmount)
		}
		if len(got.Tags) != 2 || got.Tags[1] != "travel" {
			t.Errorf("unexpected tags: %v", got.Tags)
		}
		if got.SortBy != "amount" || got.SortOrder != "asc" {
			t.Errorf("unexpected sort: %s %s", got.SortBy, got.SortOrder)
		}
	})

	t.Run("returns 400 on invalid start_date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?start_date=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?max_amount=lots", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on limit over 100", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?limit=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Search(t *testing.T) {
	t.Run("requires q", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/search", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("passes query and space", func(t *testing.T) {
		var gotQuery, gotSpace string
		txSvc := &mockTransactionService{
			searchTransactionsFn: func(_, query, spaceID string, _ pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				gotQuery, gotSpace = query, spaceID
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/search?q=coffee&space_id=sp-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotQuery != "coffee" || gotSpace != "sp-1" {
			t.Errorf("unexpected args: %q %q", gotQuery, gotSpace)
		}
	})
}

func TestTransactionHandler_Stats(t *testing.T) {
	txSvc := &mockTransactionService{
		getTransactionStatsFn: func(string, services.TransactionFilter) (*services.TransactionStats, error) {
			return &services.TransactionStats{TotalIncome: 5000, TotalExpense: 2000, NetAmount: 3000, TransactionCount: 3}, nil
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/transactions/stats/summary", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stats := parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["net_amount"] != float64(3000) {
		t.Errorf("expected net 3000, got %v", stats["net_amount"])
	}
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes only supplied fields", func(t *testing.T) {
		var got services.TransactionUpdate
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_, id string, input services.TransactionUpdate) (*models.Transaction, error) {
				got = input
				return &models.Transaction{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/transactions/tx-1", `{"amount":999,"tags":[]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || *got.Amount != 999 {
			t.Errorf("expected amount 999, got %v", got.Amount)
		}
		if got.Tags == nil || len(*got.Tags) != 0 {
			t.Errorf("expected empty tag list to clear tags, got %v", got.Tags)
		}
		if got.Description != nil || got.Date != nil || got.Metadata != nil {
			t.Error("expected omitted fields to stay nil")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(string, string, services.TransactionUpdate) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/transactions/tx-9", `{"amount":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns deleted transaction", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit))

		rec := doRequest(r, "DELETE", "/transactions/tx-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["id"] != "tx-1" {
			t.Errorf("expected tx-1, got %v", tx["id"])
		}
		if !audit.logged("DELETE_TRANSACTION") {
			t.Error("expected DELETE_TRANSACTION audit entry")
		}
	})

	t.Run("returns 404 when nothing was deleted", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(string, string) (*models.Transaction, error) { return nil, nil },
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/tx-9", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
