package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationType distinguishes the three conversation shapes
type ConversationType string

const (
	ConversationTypeDirect    ConversationType = "direct"
	ConversationTypeGroup     ConversationType = "group"
	ConversationTypeBroadcast ConversationType = "broadcast"
)

// Valid reports whether t is one of the known conversation types.
func (t ConversationType) Valid() bool {
	switch t {
	case ConversationTypeDirect, ConversationTypeGroup, ConversationTypeBroadcast:
		return true
	}
	return false
}

// ConversationSettings is the type-specific configuration bag, stored
// as a JSON column.
type ConversationSettings struct {
	AllowReplies          *bool `json:"allow_replies,omitempty"`
	OnlyAdminsCanPost     bool  `json:"only_admins_can_post,omitempty"`
	RequireApprovalToJoin bool  `json:"require_approval_to_join,omitempty"`
	MaxMembers            int   `json:"max_members,omitempty"`
}

// RepliesAllowed defaults to true when unset.
func (s ConversationSettings) RepliesAllowed() bool {
	return s.AllowReplies == nil || *s.AllowReplies
}

// Conversation represents a direct, group, or broadcast conversation
type Conversation struct {
	ID          uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	Type        ConversationType     `json:"type" gorm:"type:varchar(20);not null;index"`
	Name        string               `json:"name" gorm:"size:100"` // empty for direct
	Description string               `json:"description" gorm:"size:500"`
	ImageURL    string               `json:"image_url,omitempty" gorm:"size:500"`
	Settings    ConversationSettings `json:"settings" gorm:"serializer:json"`

	// DirectKey is the sorted "<idA>|<idB>" pair for direct conversations,
	// NULL otherwise. The unique index is what makes concurrent
	// find-or-create race-safe.
	DirectKey *string `json:"-" gorm:"size:80;uniqueIndex"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	IsArchived  bool       `json:"is_archived" gorm:"default:false"`
	CreatedByID *uuid.UUID `json:"created_by_id,omitempty" gorm:"type:uuid"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`
	LastMessage  *Message                  `json:"last_message,omitempty" gorm:"-"` // populated manually
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DirectKeyFor builds the order-independent pair key for a direct
// conversation between two users.
func DirectKeyFor(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	if strings.Compare(ids[0], ids[1]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return ids[0] + "|" + ids[1]
}

// ParticipantRole is a role scoped to one conversation
type ParticipantRole string

const (
	ParticipantRoleAdmin  ParticipantRole = "admin"
	ParticipantRoleMember ParticipantRole = "member"
)

// ConversationParticipant is a user's membership row in a conversation.
// IsActive=false means the participant has left or, for direct
// conversations, hidden their side; the row is kept so history and the
// other side's view survive, and so re-adding reactivates instead of
// duplicating.
type ConversationParticipant struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID       `json:"conversation_id" gorm:"type:uuid;uniqueIndex:idx_conv_user;not null"`
	UserID         uuid.UUID       `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_conv_user;not null;index"`
	Role           ParticipantRole `json:"role" gorm:"type:varchar(20);default:'member'"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`
	IsMuted        bool            `json:"is_muted" gorm:"default:false"`
	LastReadAt     *time.Time      `json:"last_read_at,omitempty"`
	JoinedAt       time.Time       `json:"joined_at"`

	// Relations
	User         User         `json:"user" gorm:"foreignKey:UserID"`
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID"`
}

func (p *ConversationParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	return nil
}
