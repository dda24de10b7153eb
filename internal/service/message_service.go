package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"gorm.io/gorm"
)

// editWindow is how long after creation the sender may still edit.
const editWindow = 5 * time.Minute

// MessageService owns message creation, mutation, reactions, and read
// tracking. Push fan-out is not its concern; handlers pass results to
// the dispatcher after the mutation is durable.
type MessageService struct {
	msgRepo  *repository.MessageRepository
	convRepo *repository.ConversationRepository
	userRepo *repository.UserRepository
}

func NewMessageService(
	msgRepo *repository.MessageRepository,
	convRepo *repository.ConversationRepository,
	userRepo *repository.UserRepository,
) *MessageService {
	return &MessageService{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		userRepo: userRepo,
	}
}

// Send validates and persists a new message, bumps the conversation's
// activity timestamp, and returns the message with sender attached.
func (s *MessageService) Send(conversationID, senderID uuid.UUID, req model.SendMessageRequest) (*model.Message, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, err
	}
	if !conv.IsActive {
		return nil, apperr.Validation("conversation is archived")
	}

	sender, err := s.activeParticipant(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	if conv.Settings.OnlyAdminsCanPost || conv.Type == model.ConversationTypeBroadcast {
		if sender.Role != model.ParticipantRoleAdmin {
			return nil, apperr.Permission("only admins can post in this conversation")
		}
	}

	msgType := req.Type
	if msgType == "" {
		msgType = model.MessageTypeText
		if len(req.Metadata.Attachments) > 0 {
			msgType = model.MessageTypeFile
		}
	}
	if msgType == model.MessageTypeText && strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validation("message content cannot be empty")
	}

	if req.ReplyToID != nil {
		if !conv.Settings.RepliesAllowed() {
			return nil, apperr.Validation("replies are disabled in this conversation")
		}
		parent, err := s.msgRepo.FindByID(*req.ReplyToID)
		if err != nil {
			return nil, apperr.Validation("reply target does not exist")
		}
		if parent.ConversationID != conversationID {
			return nil, apperr.Validation("reply target belongs to another conversation")
		}
	}

	msg := &model.Message{
		ConversationID: conversationID,
		SenderID:       &senderID,
		Content:        req.Content,
		Type:           msgType,
		ReplyToID:      req.ReplyToID,
		Metadata:       req.Metadata,
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	_ = s.convRepo.TouchUpdatedAt(conversationID)

	return s.msgRepo.FindByID(msg.ID)
}

// Edit updates a message's content. Only the original sender may edit,
// and only within the edit window; admins get no exception here (that
// exception exists only for delete).
func (s *MessageService) Edit(messageID, requesterID uuid.UUID, newContent string) (*model.Message, error) {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, err
	}
	if msg.SenderID == nil || *msg.SenderID != requesterID {
		return nil, apperr.Permission("only the sender can edit a message")
	}
	if time.Since(msg.CreatedAt) > editWindow {
		return nil, apperr.ExpiredEditWindow("messages can only be edited within %s of sending", editWindow)
	}
	if strings.TrimSpace(newContent) == "" {
		return nil, apperr.Validation("message content cannot be empty")
	}

	now := time.Now()
	msg.Content = newContent
	msg.IsEdited = true
	msg.EditedAt = &now
	if err := s.msgRepo.Update(msg); err != nil {
		return nil, err
	}
	return s.msgRepo.FindByID(messageID)
}

// Delete hard-deletes a message. Allowed for the sender, a
// conversation admin, or an elevated church role.
func (s *MessageService) Delete(messageID, requesterID uuid.UUID) error {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message not found")
		}
		return err
	}
	if !s.canDelete(msg, requesterID) {
		return apperr.Permission("not allowed to delete this message")
	}
	return s.msgRepo.HardDelete(messageID)
}

func (s *MessageService) canDelete(msg *model.Message, requesterID uuid.UUID) bool {
	if msg.SenderID != nil && *msg.SenderID == requesterID {
		return true
	}
	if p, err := s.convRepo.FindParticipant(msg.ConversationID, requesterID); err == nil {
		if p.IsActive && p.Role == model.ParticipantRoleAdmin {
			return true
		}
	}
	if u, err := s.userRepo.FindByID(requesterID); err == nil {
		return u.Role.IsElevated()
	}
	return false
}

// ToggleReaction runs the single-reaction cycle and returns the action
// taken plus the full updated reaction set, so callers broadcast state
// rather than a delta.
func (s *MessageService) ToggleReaction(messageID, userID uuid.UUID, emoji string) (*model.ToggleReactionResponse, *model.Message, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > 16 {
		return nil, nil, apperr.Validation("invalid emoji")
	}

	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("message not found")
		}
		return nil, nil, err
	}
	if _, err := s.activeParticipant(msg.ConversationID, userID); err != nil {
		return nil, nil, err
	}

	action, err := s.msgRepo.ToggleReaction(messageID, userID, emoji)
	if err != nil {
		return nil, nil, err
	}
	reactions, err := s.msgRepo.GetReactions(messageID)
	if err != nil {
		return nil, nil, err
	}
	return &model.ToggleReactionResponse{Action: action, Reactions: reactions}, msg, nil
}

// MarkRead advances the caller's read marker to now. Idempotent and
// monotonic: a second call is a no-op, the marker never moves back.
// Returns the event describing what just became read; MessageIDs is
// empty when there was nothing unread.
func (s *MessageService) MarkRead(conversationID, userID uuid.UUID) (*model.MessagesReadEvent, error) {
	if _, err := s.activeParticipant(conversationID, userID); err != nil {
		return nil, err
	}

	ids, err := s.msgRepo.UnreadMessageIDs(conversationID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.convRepo.AdvanceLastRead(conversationID, userID, now); err != nil {
		return nil, err
	}

	return &model.MessagesReadEvent{
		ConversationID: conversationID,
		ReadBy:         userID,
		MessageIDs:     ids,
		ReadAt:         now,
	}, nil
}

// SetPinned pins or unpins a message. Sender or conversation admin.
func (s *MessageService) SetPinned(messageID, requesterID uuid.UUID, pinned bool) (*model.Message, error) {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, err
	}
	if !s.canDelete(msg, requesterID) {
		return nil, apperr.Permission("not allowed to pin this message")
	}
	msg.IsPinned = pinned
	if err := s.msgRepo.Update(msg); err != nil {
		return nil, err
	}
	return s.msgRepo.FindByID(messageID)
}

// List returns paginated messages, the pull-based catch-up path for
// clients that were offline when pushes went out.
func (s *MessageService) List(conversationID, userID uuid.UUID, before *uuid.UUID, limit int) ([]model.Message, error) {
	if _, err := s.activeParticipant(conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.msgRepo.GetConversationMessages(conversationID, before, limit)
}

// RequireActiveParticipant rejects callers who are not active
// participants of the conversation. Used by ephemeral operations
// (typing) that persist nothing but still must not leak across
// conversation boundaries.
func (s *MessageService) RequireActiveParticipant(conversationID, userID uuid.UUID) error {
	_, err := s.activeParticipant(conversationID, userID)
	return err
}

// activeParticipant loads the requester's participant row and treats a
// missing or inactive row as "not a participant".
func (s *MessageService) activeParticipant(conversationID, userID uuid.UUID) (*model.ConversationParticipant, error) {
	p, err := s.convRepo.FindParticipant(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Permission("not a participant of this conversation")
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, apperr.Permission("not a participant of this conversation")
	}
	return p, nil
}
