package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn       func(userID string, input services.CategoryInput) (*models.Category, error)
	getCategoriesFn        func(userID string, filter services.CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn      func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn       func(userID, categoryID string, input services.CategoryUpdate) (*models.Category, error)
	deleteCategoryFn       func(userID, categoryID string) error
	getDefaultCategoriesFn func(userID, spaceID string) ([]models.Category, error)
}

func (m *mockCategoryService) CreateCategory(userID string, input services.CategoryInput) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, input)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategories(userID string, filter services.CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, input services.CategoryUpdate) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, input)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

func (m *mockCategoryService) GetDefaultCategories(userID, spaceID string) ([]models.Category, error) {
	if m.getDefaultCategoriesFn != nil {
		return m.getDefaultCategoriesFn(userID, spaceID)
	}
	return []models.Category{}, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetCategories)
	auth.GET("/categories/defaults", handler.GetDefaultCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.CategoryInput
		catSvc := &mockCategoryService{
			createCategoryFn: func(_ string, input services.CategoryInput) (*models.Category, error) {
				got = input
				return &models.Category{Base: models.Base{ID: "cat-1"}, Name: input.Name, Type: input.Type}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense","color":"#FF6B6B","space_id":"s-1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Food" {
			t.Errorf("expected name Food, got %v", category["name"])
		}
		if got.SpaceID != "s-1" || got.Color != "#FF6B6B" {
			t.Errorf("unexpected input passed to service: %+v", got)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"type":"expense"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"savings"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense","color":"red"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(string, services.CategoryInput) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("passes filters and page", func(t *testing.T) {
		var gotFilter services.CategoryFilter
		var gotPage pagination.PageRequest
		catSvc := &mockCategoryService{
			getCategoriesFn: func(_ string, filter services.CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				gotFilter, gotPage = filter, page
				resp := pagination.NewPageResponse([]models.Category{{Name: "Food"}}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=income&is_active=false&space_id=s-1&page=2&limit=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", gotFilter.Type)
		}
		if gotFilter.IsActive == nil || *gotFilter.IsActive {
			t.Errorf("expected is_active=false, got %v", gotFilter.IsActive)
		}
		if gotFilter.SpaceID != "s-1" || gotPage.Page != 2 || gotPage.Limit != 5 {
			t.Errorf("unexpected filter/page: %+v %+v", gotFilter, gotPage)
		}
		meta := parseJSON(t, rec)["pagination"].(map[string]interface{})
		if meta["total"] != float64(6) {
			t.Errorf("expected total 6, got %v", meta["total"])
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=bogus", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid is_active", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?is_active=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns defaults", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getDefaultCategoriesFn: func(string, string) ([]models.Category, error) {
				return []models.Category{{Name: "Salary", IsDefault: true}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/defaults", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["categories"].([]interface{}); len(got) != 1 {
			t.Errorf("expected 1 default, got %d", len(got))
		}
	})
}

func TestCategoryHandler_GetCategoryByID(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(string, string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/not-a-uuid", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes empty parent to detach", func(t *testing.T) {
		var got services.CategoryUpdate
		catSvc := &mockCategoryService{
			updateCategoryFn: func(_, id string, input services.CategoryUpdate) (*models.Category, error) {
				got = input
				return &models.Category{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/cat-1", `{"parent_id":"","is_active":false}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ParentID == nil || *got.ParentID != "" {
			t.Errorf("expected empty parent pointer, got %v", got.ParentID)
		}
		if got.IsActive == nil || *got.IsActive {
			t.Error("expected is_active=false to be passed")
		}
		if got.Name != nil {
			t.Error("expected name to stay nil")
		}
	})

	t.Run("returns 400 on self parent", func(t *testing.T) {
		catSvc := &mockCategoryService{
			updateCategoryFn: func(string, string, services.CategoryUpdate) (*models.Category, error) {
				return nil, apperrors.ErrSelfParentCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/cat-1", `{"parent_id":"cat-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SELF_PARENT_CATEGORY")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, audit))

		rec := doRequest(r, "DELETE", "/categories/cat-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !audit.logged("DELETE_CATEGORY") {
			t.Error("expected DELETE_CATEGORY audit entry")
		}
	})

	t.Run("returns 409 when in use", func(t *testing.T) {
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(string, string) error { return apperrors.ErrCategoryInUse },
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/cat-1", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_IN_USE")
	})
}
