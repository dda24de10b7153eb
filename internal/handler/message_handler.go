package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/push"
	"github.com/jabinweb/church-manager-sub003/internal/service"
)

// MessageHandler handles message mutation endpoints. Each mutation is
// persisted first; the dispatcher then fans out to whoever is
// connected. A push miss never fails the request.
type MessageHandler struct {
	msgService *service.MessageService
	dispatcher *push.Dispatcher
}

func NewMessageHandler(msgService *service.MessageService, dispatcher *push.Dispatcher) *MessageHandler {
	return &MessageHandler{msgService: msgService, dispatcher: dispatcher}
}

// Send godoc
// @Summary Send a message to a conversation
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param body body model.SendMessageRequest true "Message"
// @Success 201 {object} model.Message
// @Router /conversations/{id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := currentUserID(c)
	msg, err := h.msgService.Send(convID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Detached from the request context: fan-out and FCM delivery
	// outlive the HTTP response.
	go h.dispatcher.MessageSent(context.Background(), userID, msg)

	c.JSON(http.StatusCreated, msg)
}

// List godoc
// @Summary Get messages (cursor pagination, newest first)
// @Description The pull-based catch-up path for clients that missed pushes while offline.
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param before query string false "Cursor: message ID to get messages before"
// @Param limit query int false "Number of messages to return (default: 50)"
// @Success 200 {array} model.Message
// @Router /conversations/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request"})
		return
	}

	var before *uuid.UUID
	if req.Before != "" {
		if parsed, err := uuid.Parse(req.Before); err == nil {
			before = &parsed
		}
	}

	messages, err := h.msgService.List(convID, currentUserID(c), before, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Edit godoc
// @Summary Edit a message (sender only, within 5 minutes)
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param body body model.EditMessageRequest true "New content"
// @Success 200 {object} model.Message
// @Router /messages/{id} [patch]
func (h *MessageHandler) Edit(c *gin.Context) {
	msgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := currentUserID(c)
	msg, err := h.msgService.Edit(msgID, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	go h.dispatcher.MessageEdited(userID, msg)

	c.JSON(http.StatusOK, msg)
}

// Delete godoc
// @Summary Delete a message (sender, conversation admin, or elevated role)
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} model.SuccessResponse
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	msgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.msgService.Delete(msgID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Message deleted"})
}

// ToggleReaction godoc
// @Summary Toggle the caller's reaction on a message
// @Description One reaction per user per message: same emoji removes it, a different emoji replaces it.
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param body body model.ToggleReactionRequest true "Emoji"
// @Success 200 {object} model.ToggleReactionResponse
// @Router /messages/{id}/reactions [post]
func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	msgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := currentUserID(c)
	resp, msg, err := h.msgService.ToggleReaction(msgID, userID, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	go h.dispatcher.ReactionToggled(msg.ConversationID, userID, model.MessageReactionEvent{
		MessageID: msgID,
		Reactions: resp.Reactions,
		Action:    resp.Action,
		Emoji:     req.Emoji,
		UserID:    userID,
	})

	c.JSON(http.StatusOK, resp)
}

// MarkRead godoc
// @Summary Mark all messages in a conversation as read
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} model.SuccessResponse
// @Router /conversations/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ev, err := h.msgService.MarkRead(convID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if len(ev.MessageIDs) > 0 {
		go h.dispatcher.MessagesRead(*ev)
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Messages marked as read"})
}

// Typing godoc
// @Summary Broadcast a typing indicator to the other participants
// @Tags Messages
// @Accept json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param body body model.TypingRequest true "State"
// @Success 200 {object} model.SuccessResponse
// @Router /conversations/{id}/typing [post]
func (h *MessageHandler) Typing(c *gin.Context) {
	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := currentUserID(c)
	// Typing is ephemeral: nothing is persisted, but only active
	// participants may broadcast into a conversation.
	if err := h.msgService.RequireActiveParticipant(convID, userID); err != nil {
		respondError(c, err)
		return
	}

	go h.dispatcher.Typing(model.UserTypingEvent{
		UserID:         userID,
		ConversationID: convID,
		IsTyping:       req.IsTyping,
		Timestamp:      time.Now(),
	})

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "ok"})
}

// Pin godoc
// @Summary Pin or unpin a message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param unpin query bool false "Unpin instead of pin"
// @Success 200 {object} model.Message
// @Router /messages/{id}/pin [post]
func (h *MessageHandler) Pin(c *gin.Context) {
	msgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pinned := c.Query("unpin") != "true"
	msg, err := h.msgService.SetPinned(msgID, currentUserID(c), pinned)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
