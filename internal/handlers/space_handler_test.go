package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

type mockSpaceService struct {
	createSpaceFn   func(userID, name string, spaceType models.SpaceType) (*models.Space, error)
	getUserSpacesFn func(userID string) ([]models.Space, error)
	getSpaceByIDFn  func(userID, spaceID string) (*models.Space, error)
	addMemberFn     func(userID, spaceID, email string) (*models.SpaceMember, error)
	removeMemberFn  func(userID, spaceID, memberUserID string) error
}

func (m *mockSpaceService) CreateSpace(userID, name string, spaceType models.SpaceType) (*models.Space, error) {
	if m.createSpaceFn != nil {
		return m.createSpaceFn(userID, name, spaceType)
	}
	return &models.Space{Name: name, Type: spaceType, OwnerID: userID}, nil
}

func (m *mockSpaceService) EnsurePersonalSpace(userID string) (*models.Space, error) {
	return &models.Space{Type: models.SpaceTypePersonal, OwnerID: userID}, nil
}

func (m *mockSpaceService) GetUserSpaces(userID string) ([]models.Space, error) {
	if m.getUserSpacesFn != nil {
		return m.getUserSpacesFn(userID)
	}
	return []models.Space{}, nil
}

func (m *mockSpaceService) GetSpaceByID(userID, spaceID string) (*models.Space, error) {
	if m.getSpaceByIDFn != nil {
		return m.getSpaceByIDFn(userID, spaceID)
	}
	return &models.Space{Base: models.Base{ID: spaceID}}, nil
}

func (m *mockSpaceService) AddMember(userID, spaceID, email string) (*models.SpaceMember, error) {
	if m.addMemberFn != nil {
		return m.addMemberFn(userID, spaceID, email)
	}
	return &models.SpaceMember{SpaceID: spaceID, Role: models.SpaceRoleMember}, nil
}

func (m *mockSpaceService) RemoveMember(userID, spaceID, memberUserID string) error {
	if m.removeMemberFn != nil {
		return m.removeMemberFn(userID, spaceID, memberUserID)
	}
	return nil
}

var _ services.SpaceServicer = (*mockSpaceService)(nil)

func setupSpaceRouter(handler *SpaceHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/spaces", handler.CreateSpace)
	auth.GET("/spaces", handler.GetSpaces)
	auth.GET("/spaces/:id", handler.GetSpaceByID)
	auth.POST("/spaces/:id/members", handler.AddMember)
	auth.DELETE("/spaces/:id/members/:userId", handler.RemoveMember)
	return r
}

func TestSpaceHandler_CreateSpace(t *testing.T) {
	t.Run("returns 201 with default type", func(t *testing.T) {
		var gotType models.SpaceType = "unset"
		spaceSvc := &mockSpaceService{
			createSpaceFn: func(userID, name string, spaceType models.SpaceType) (*models.Space, error) {
				gotType = spaceType
				return &models.Space{Base: models.Base{ID: "sp-1"}, Name: name, Type: models.SpaceTypeShared, OwnerID: userID}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces", `{"name":"Household"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType != "" {
			t.Errorf("expected empty type to reach the service, got %q", gotType)
		}
		space := parseJSON(t, rec)["space"].(map[string]interface{})
		if space["owner_id"] != testUserID {
			t.Errorf("expected owner %s, got %v", testUserID, space["owner_id"])
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces", `{"name":"Household","type":"team"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSpaceHandler_GetSpaces(t *testing.T) {
	t.Run("returns spaces", func(t *testing.T) {
		spaceSvc := &mockSpaceService{
			getUserSpacesFn: func(string) ([]models.Space, error) {
				return []models.Space{{Name: "Personal"}, {Name: "Household"}}, nil
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/spaces", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["spaces"].([]interface{}); len(got) != 2 {
			t.Errorf("expected 2 spaces, got %d", len(got))
		}
	})

	t.Run("returns 404 for non-member", func(t *testing.T) {
		spaceSvc := &mockSpaceService{
			getSpaceByIDFn: func(string, string) (*models.Space, error) { return nil, apperrors.ErrSpaceNotFound },
		}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/spaces/sp-9", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SPACE_NOT_FOUND")
	})
}

func TestSpaceHandler_Members(t *testing.T) {
	t.Run("add returns 201", func(t *testing.T) {
		var gotEmail string
		spaceSvc := &mockSpaceService{
			addMemberFn: func(_, spaceID, email string) (*models.SpaceMember, error) {
				gotEmail = email
				return &models.SpaceMember{SpaceID: spaceID, UserID: "u-2", Role: models.SpaceRoleMember}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, audit))

		rec := doRequest(r, "POST", "/spaces/sp-1/members", `{"email":"bob@example.com"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotEmail != "bob@example.com" {
			t.Errorf("expected email to reach service, got %q", gotEmail)
		}
		if !audit.logged("ADD_SPACE_MEMBER") {
			t.Error("expected ADD_SPACE_MEMBER audit entry")
		}
	})

	t.Run("add returns 400 on invalid email", func(t *testing.T) {
		r := setupSpaceRouter(NewSpaceHandler(&mockSpaceService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces/sp-1/members", `{"email":"bob"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("add returns 409 when already a member", func(t *testing.T) {
		spaceSvc := &mockSpaceService{
			addMemberFn: func(string, string, string) (*models.SpaceMember, error) { return nil, apperrors.ErrAlreadyMember },
		}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/spaces/sp-1/members", `{"email":"bob@example.com"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("remove returns 403 for non-owner", func(t *testing.T) {
		var gotMember string
		spaceSvc := &mockSpaceService{
			removeMemberFn: func(_, _, memberID string) error {
				gotMember = memberID
				return apperrors.ErrForbidden
			},
		}
		r := setupSpaceRouter(NewSpaceHandler(spaceSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/spaces/sp-1/members/u-2", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if gotMember != "u-2" {
			t.Errorf("expected member id u-2, got %q", gotMember)
		}
	})
}
