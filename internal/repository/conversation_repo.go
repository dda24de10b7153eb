package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"gorm.io/gorm"
)

// ConversationRepository handles database operations for Conversation
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation with its participant rows in one
// transaction. A unique violation on direct_key surfaces to the
// service, which retries the lookup.
func (r *ConversationRepository) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// FindByID finds a conversation by ID with participants and users
func (r *ConversationRepository) FindByID(id uuid.UUID) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.
		Preload("Participants.User").
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindDirectByKey finds the non-deleted direct conversation for a
// sorted pair key.
func (r *ConversationRepository) FindDirectByKey(key string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.
		Preload("Participants.User").
		Where("type = ? AND direct_key = ?", model.ConversationTypeDirect, key).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations returns all active conversations where the user
// has an active participant row, newest activity first.
func (r *ConversationRepository) GetUserConversations(userID uuid.UUID) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.
		Joins("JOIN conversation_participants ON conversation_participants.conversation_id = conversations.id").
		Where("conversation_participants.user_id = ? AND conversation_participants.is_active = ?", userID, true).
		Where("conversations.is_active = ?", true).
		Preload("Participants.User").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// FindParticipant returns the participant row regardless of active
// state; callers decide whether inactive counts.
func (r *ConversationRepository) FindParticipant(conversationID, userID uuid.UUID) (*model.ConversationParticipant, error) {
	var p model.ConversationParticipant
	err := r.db.
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddParticipant inserts a participant row
func (r *ConversationRepository) AddParticipant(p *model.ConversationParticipant) error {
	return r.db.Create(p).Error
}

// SetParticipantActive flips the per-participant visibility flag. For
// direct conversations this is the one-sided soft delete.
func (r *ConversationRepository) SetParticipantActive(conversationID, userID uuid.UUID, active bool) error {
	return r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("is_active", active).Error
}

// IsActiveParticipant checks active membership
func (r *ConversationRepository) IsActiveParticipant(conversationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND is_active = ?", conversationID, userID, true).
		Count(&count).Error
	return count > 0, err
}

// ActiveParticipantIDs returns the user IDs of all active participants.
// The dispatcher calls this fresh for every event.
func (r *ConversationRepository) ActiveParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND is_active = ?", conversationID, true).
		Pluck("user_id", &ids).Error
	return ids, err
}

// Archive deactivates and flags the conversation for every participant,
// distinct from a per-user leave.
func (r *ConversationRepository) Archive(conversationID uuid.UUID) error {
	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{"is_active": false, "is_archived": true}).Error
}

// TouchUpdatedAt bumps the updated_at timestamp (to sort by latest activity)
func (r *ConversationRepository) TouchUpdatedAt(conversationID uuid.UUID) error {
	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now()).Error
}

// AdvanceLastRead moves the participant's read marker forward, never
// backward, which makes markRead idempotent.
func (r *ConversationRepository) AdvanceLastRead(conversationID, userID uuid.UUID, at time.Time) error {
	return r.db.Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Where("last_read_at IS NULL OR last_read_at < ?", at).
		Update("last_read_at", at).Error
}
