package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers searches users by name or email (partial match)
func (r *UserRepository) SearchUsers(query string, excludeUserID uuid.UUID, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Where("(name ILIKE ? OR email ILIKE ?) AND id != ?", "%"+query+"%", "%"+query+"%", excludeUserID).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// UpdateOnlineStatus sets a user's online status and last seen time
func (r *UserRepository) UpdateOnlineStatus(id uuid.UUID, isOnline bool) error {
	updates := map[string]any{
		"is_online": isOnline,
	}
	if !isOnline {
		updates["last_seen"] = time.Now()
	}
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// AddDevice upserts an FCM device token for a user
func (r *UserRepository) AddDevice(userID uuid.UUID, token string, deviceType string) error {
	device := model.UserDevice{
		UserID:       userID,
		FCMToken:     token,
		DeviceType:   deviceType,
		LastActiveAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "fcm_token"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_active_at": time.Now(),
			"device_type":    deviceType,
		}),
	}).Create(&device).Error
}

// GetUserDevices gets all devices for a user
func (r *UserRepository) GetUserDevices(userID uuid.UUID) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	err := r.db.Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}
