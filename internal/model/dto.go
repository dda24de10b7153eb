package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== Conversation DTOs ==========

// CreateConversationRequest dispatches to the direct/group/broadcast
// creation variants based on Type.
type CreateConversationRequest struct {
	Type           ConversationType     `json:"type" binding:"required"`
	ParticipantIDs []uuid.UUID          `json:"participant_ids"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	ImageURL       string               `json:"image_url"`
	Settings       ConversationSettings `json:"settings"`
}

type AddParticipantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ConversationResponse enriches a conversation with per-viewer state
type ConversationResponse struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}

// ========== Message DTOs ==========

type SendMessageRequest struct {
	Content   string          `json:"content"`
	Type      MessageType     `json:"type"`
	ReplyToID *uuid.UUID      `json:"reply_to_id"`
	Metadata  MessageMetadata `json:"metadata"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ToggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// ToggleReactionResponse returns the action taken plus the full
// updated reaction set, mirroring the push event.
type ToggleReactionResponse struct {
	Action    ReactionAction    `json:"action"`
	Reactions []MessageReaction `json:"reactions"`
}

type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

type MessageListRequest struct {
	Before string `form:"before"` // cursor for pagination (message ID)
	Limit  int    `form:"limit,default=50"`
}

// ========== Call DTOs ==========

type CallSignalRequest struct {
	Signal   CallSignalType `json:"signal" binding:"required"`
	CallID   uuid.UUID      `json:"call_id" binding:"required"`
	CallType string         `json:"call_type"`
	Caller   uuid.UUID      `json:"caller" binding:"required"`
	Receiver uuid.UUID      `json:"receiver" binding:"required"`
	Payload  any            `json:"payload,omitempty"`
}

type CallSignalResponse struct {
	Delivered bool   `json:"delivered"`
	Message   string `json:"message,omitempty"`
}

// ========== Presence DTOs ==========

type PresenceResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	IsOnline bool      `json:"is_online"`
}

type OnlineUsersResponse struct {
	UserIDs []uuid.UUID `json:"user_ids"`
	AsOf    time.Time   `json:"as_of"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
