package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/service"
)

// ConversationHandler handles conversation lifecycle endpoints
type ConversationHandler struct {
	convService *service.ConversationService
	authService *service.AuthService
}

func NewConversationHandler(convService *service.ConversationService, authService *service.AuthService) *ConversationHandler {
	return &ConversationHandler{convService: convService, authService: authService}
}

// Create godoc
// @Summary Create a direct, group, or broadcast conversation
// @Description Direct creation is find-or-create: the existing conversation between the pair is returned when one exists.
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateConversationRequest true "Conversation"
// @Success 201 {object} model.Conversation
// @Router /conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req model.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	creator, err := h.authService.Profile(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	conv, err := h.convService.Create(creator, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// List godoc
// @Summary List the caller's conversations with unread counts
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ConversationResponse
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.convService.ListForUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get conversations"})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// Get godoc
// @Summary Get one conversation
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} model.Conversation
// @Router /conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	conv, err := h.convService.Get(convID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Leave godoc
// @Summary Leave (or hide, for direct) a conversation
// @Tags Conversations
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} model.SuccessResponse
// @Router /conversations/{id}/leave [post]
func (h *ConversationHandler) Leave(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.convService.Leave(convID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Left conversation"})
}

// Archive godoc
// @Summary Archive a conversation for all participants (admin only)
// @Tags Conversations
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} model.SuccessResponse
// @Router /conversations/{id}/archive [post]
func (h *ConversationHandler) Archive(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.convService.Archive(convID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Conversation archived"})
}

// AddParticipant godoc
// @Summary Add or re-add a participant (admin only)
// @Tags Conversations
// @Accept json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param body body model.AddParticipantRequest true "Participant"
// @Success 200 {object} model.SuccessResponse
// @Router /conversations/{id}/participants [post]
func (h *ConversationHandler) AddParticipant(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.convService.AddParticipant(convID, currentUserID(c), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Participant added"})
}
