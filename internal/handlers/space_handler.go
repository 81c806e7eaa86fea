package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/models"
	"ledgerly/internal/services"
)

// SpaceHandler handles space and membership requests.
type SpaceHandler struct {
	spaceService services.SpaceServicer
	auditService services.AuditServicer
}

// NewSpaceHandler creates a new SpaceHandler.
func NewSpaceHandler(spaceService services.SpaceServicer, auditService services.AuditServicer) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService, auditService: auditService}
}

// CreateSpaceRequest represents the request payload for creating a space.
type CreateSpaceRequest struct {
	Name string           `json:"name" binding:"required,max=100"`
	Type models.SpaceType `json:"type" binding:"omitempty,space_type"`
}

// AddMemberRequest names the user to invite by email.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateSpace handles the creation of a space
// @Summary     Create a space
// @Description Create a shared space owned by the caller. Asking for a personal space returns the existing one.
// @Tags        spaces
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSpaceRequest true "Space details"
// @Success     201 {object} models.Space "Space created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /spaces [post]
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	space, err := h.spaceService.CreateSpace(userID, req.Name, req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SPACE", "space", space.ID, c.ClientIP(),
		map[string]interface{}{"name": space.Name, "type": space.Type})

	c.JSON(http.StatusCreated, gin.H{"space": space})
}

// GetSpaces lists the caller's spaces
// @Summary     List spaces
// @Description List every space the caller belongs to, personal space first.
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Space "Spaces"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /spaces [get]
func (h *SpaceHandler) GetSpaces(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spaces, err := h.spaceService.GetUserSpaces(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spaces": spaces})
}

// GetSpaceByID returns one space with its members
// @Summary     Get space
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Space ID"
// @Success     200 {object} models.Space "Space"
// @Failure     404 {object} ErrorResponse "Space not found"
// @Router      /spaces/{id} [get]
func (h *SpaceHandler) GetSpaceByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	space, err := h.spaceService.GetSpaceByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"space": space})
}

// AddMember invites a registered user into a shared space
// @Summary     Add space member
// @Tags        spaces
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Space ID"
// @Param       request body AddMemberRequest true "Member email"
// @Success     201 {object} models.SpaceMember "Member added"
// @Failure     400 {object} ErrorResponse "Personal spaces cannot be shared"
// @Failure     403 {object} ErrorResponse "Only the owner can add members"
// @Failure     404 {object} ErrorResponse "Space or user not found"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /spaces/{id}/members [post]
func (h *SpaceHandler) AddMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	member, err := h.spaceService.AddMember(userID, c.Param("id"), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_SPACE_MEMBER", "space", member.SpaceID, c.ClientIP(),
		map[string]interface{}{"member_user_id": member.UserID})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// RemoveMember removes a member from a space
// @Summary     Remove space member
// @Tags        spaces
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Space ID"
// @Param       userId path string true "Member user ID"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     400 {object} ErrorResponse "The owner cannot be removed"
// @Failure     403 {object} ErrorResponse "Only the owner can remove members"
// @Failure     404 {object} ErrorResponse "Space or member not found"
// @Router      /spaces/{id}/members/{userId} [delete]
func (h *SpaceHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spaceID := c.Param("id")
	memberID := c.Param("userId")
	if err := h.spaceService.RemoveMember(userID, spaceID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_SPACE_MEMBER", "space", spaceID, c.ClientIP(),
		map[string]interface{}{"member_user_id": memberID})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
