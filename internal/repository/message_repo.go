package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"gorm.io/gorm"
)

// MessageRepository handles database operations for Message and
// MessageReaction
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message with sender and reactions
func (r *MessageRepository) FindByID(id uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.
		Preload("Sender").
		Preload("Reactions").
		Preload("Reactions.User").
		Where("id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Update persists message mutations (edit, pin)
func (r *MessageRepository) Update(msg *model.Message) error {
	return r.db.Save(msg).Error
}

// HardDelete removes the message row and its reactions for good.
func (r *MessageRepository) HardDelete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&model.MessageReaction{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&model.Message{}).Error
	})
}

// GetConversationMessages returns paginated messages for a conversation
// (cursor-based, newest first). This is the pull path a reconnecting
// client uses to catch up on pushes it missed.
func (r *MessageRepository) GetConversationMessages(conversationID uuid.UUID, before *uuid.UUID, limit int) ([]model.Message, error) {
	messages := []model.Message{}
	query := r.db.
		Preload("Sender").
		Preload("Reactions").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit)

	if before != nil {
		var beforeMsg model.Message
		if err := r.db.Select("created_at").Where("id = ?", before).First(&beforeMsg).Error; err != nil {
			return nil, err
		}
		query = query.Where("created_at < ?", beforeMsg.CreatedAt)
	}

	err := query.Find(&messages).Error
	return messages, err
}

// GetLastMessage returns the most recent message in a conversation
func (r *MessageRepository) GetLastMessage(conversationID uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UnreadMessageIDs returns ids of messages from other senders created
// after the user's read marker, oldest first.
func (r *MessageRepository) UnreadMessageIDs(conversationID, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.unreadQuery(conversationID, userID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountUnread counts unread messages for a user in a conversation
func (r *MessageRepository) CountUnread(conversationID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.unreadQuery(conversationID, userID).Count(&count).Error
	return count, err
}

func (r *MessageRepository) unreadQuery(conversationID, userID uuid.UUID) *gorm.DB {
	subQuery := r.db.Model(&model.ConversationParticipant{}).
		Select("COALESCE(last_read_at, '0001-01-01')").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID)

	return r.db.Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("sender_id IS NULL OR sender_id != ?", userID).
		Where("created_at > (?)", subQuery)
}

// ToggleReaction applies the single-reaction-per-user cycle inside one
// transaction: none -> added, same emoji -> removed, different emoji ->
// changed. The unique (message_id, user_id) index backs the invariant.
func (r *MessageRepository) ToggleReaction(messageID, userID uuid.UUID, emoji string) (model.ReactionAction, error) {
	var action model.ReactionAction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.MessageReaction
		err := tx.Where("message_id = ? AND user_id = ?", messageID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = model.ReactionAdded
			return tx.Create(&model.MessageReaction{
				MessageID: messageID,
				UserID:    userID,
				Emoji:     emoji,
				CreatedAt: time.Now(),
			}).Error
		case err != nil:
			return err
		case existing.Emoji == emoji:
			action = model.ReactionRemoved
			return tx.Delete(&existing).Error
		default:
			action = model.ReactionChanged
			return tx.Model(&existing).Update("emoji", emoji).Error
		}
	})
	return action, err
}

// GetReactions returns the full current reaction set for a message.
func (r *MessageRepository) GetReactions(messageID uuid.UUID) ([]model.MessageReaction, error) {
	reactions := []model.MessageReaction{}
	err := r.db.
		Preload("User").
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	return reactions, err
}
