package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the user's church-wide role. It is distinct from the
// per-conversation ParticipantRole: a pastor is a pastor everywhere,
// an admin of one group chat is not an admin of another.
type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleLeader UserRole = "leader"
	UserRolePastor UserRole = "pastor"
	UserRoleAdmin  UserRole = "admin"
)

// IsElevated reports whether the role carries staff-level privileges
// (creating broadcasts, deleting other members' messages).
func (r UserRole) IsElevated() bool {
	return r == UserRolePastor || r == UserRoleAdmin
}

// User represents a church member account
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"size:100;not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string    `json:"-" gorm:"size:255"`
	Avatar   string    `json:"avatar" gorm:"size:500;default:''"`
	Role     UserRole  `json:"role" gorm:"type:varchar(20);default:'member'"`

	IsNotificationEnabled bool `json:"is_notification_enabled" gorm:"default:true"`

	IsOnline  bool           `json:"is_online" gorm:"default:false"`
	LastSeen  *time.Time     `json:"last_seen"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns an ID so the model works on both Postgres and
// the sqlite databases used in tests.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Avatar   string     `json:"avatar"`
	Role     UserRole   `json:"role"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen"`
}

// ToResponse converts User to safe UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Role:     u.Role,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}

// UserDevice stores an FCM registration token for mobile push
// notifications, upserted per (user, token).
type UserDevice struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_token"`
	FCMToken     string    `json:"fcm_token" gorm:"not null;uniqueIndex:idx_user_token;size:512"`
	DeviceType   string    `json:"device_type" gorm:"size:20;default:'unknown'"` // android, ios, web
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *UserDevice) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
