package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageType defines the type of message content
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
)

// MessageMetadata is the structured per-type payload, stored as JSON.
type MessageMetadata struct {
	Attachments []AttachmentMeta `json:"attachments,omitempty"`
	Mentions    []uuid.UUID      `json:"mentions,omitempty"`
	LinkPreview *LinkPreview     `json:"link_preview,omitempty"`
}

// AttachmentMeta describes one uploaded file referenced by a message
type AttachmentMeta struct {
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Message represents a chat message. SenderID is NULL for system
// messages ("X joined the group").
type Message struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID       `json:"conversation_id" gorm:"type:uuid;index;not null"`
	SenderID       *uuid.UUID      `json:"sender_id,omitempty" gorm:"type:uuid;index"`
	Content        string          `json:"content" gorm:"type:text"`
	Type           MessageType     `json:"type" gorm:"type:varchar(20);default:'text'"`
	ReplyToID      *uuid.UUID      `json:"reply_to_id,omitempty" gorm:"type:uuid"`
	Metadata       MessageMetadata `json:"metadata" gorm:"serializer:json"`
	IsPinned       bool            `json:"is_pinned" gorm:"default:false"`
	IsEdited       bool            `json:"is_edited" gorm:"default:false"`
	EditedAt       *time.Time      `json:"edited_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relations
	Sender    *User             `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	ReplyTo   *Message          `json:"reply_to,omitempty" gorm:"foreignKey:ReplyToID"`
	Reactions []MessageReaction `json:"reactions,omitempty" gorm:"foreignKey:MessageID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MessageReaction is one user's single reaction on a message. The
// unique (message_id, user_id) index enforces at-most-one: toggling
// the same emoji removes the row, a different emoji replaces it.
type MessageReaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MessageID uuid.UUID `json:"message_id" gorm:"type:uuid;uniqueIndex:idx_msg_user;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_msg_user;not null"`
	Emoji     string    `json:"emoji" gorm:"size:16;not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReactionAction is the outcome of a reaction toggle
type ReactionAction string

const (
	ReactionAdded   ReactionAction = "added"
	ReactionChanged ReactionAction = "changed"
	ReactionRemoved ReactionAction = "removed"
)
