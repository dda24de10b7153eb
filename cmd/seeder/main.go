package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/config"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all seeded accounts
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	seeds := []struct {
		name  string
		email string
		role  model.UserRole
	}{
		{"Pastor John", "pastor@church.local", model.UserRolePastor},
		{"Leader Sarah", "sarah@church.local", model.UserRoleLeader},
		{"Member Mark", "mark@church.local", model.UserRoleMember},
		{"Member Ruth", "ruth@church.local", model.UserRoleMember},
		{"Member David", "david@church.local", model.UserRoleMember},
	}

	log.Printf("🌱 Seeding %d users...", len(seeds))

	users := make([]model.User, 0, len(seeds))
	for _, s := range seeds {
		var existing model.User
		if err := db.Where("email = ?", s.email).First(&existing).Error; err == nil {
			users = append(users, existing)
			continue
		}

		user := model.User{
			ID:       uuid.New(),
			Name:     s.name,
			Email:    s.email,
			Password: string(hashedPassword),
			Role:     s.role,
			Avatar:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", s.email),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to create user %s: %v", s.email, err)
			continue
		}
		users = append(users, user)
		log.Printf("✅ Created user: %s | Email: %s | Pass: %s", s.name, s.email, password)
	}

	if len(users) >= 3 {
		seedDirect(db, users[0], users[2])
		seedGroup(db, users[0], users[1:])
		seedBroadcast(db, users[0], users[1:])
	}

	log.Println("🎉 Seeding completed!")
}

func seedDirect(db *gorm.DB, a, b model.User) {
	key := model.DirectKeyFor(a.ID, b.ID)

	var count int64
	db.Model(&model.Conversation{}).Where("direct_key = ?", key).Count(&count)
	if count > 0 {
		return
	}

	conv := model.Conversation{
		ID:          uuid.New(),
		Type:        model.ConversationTypeDirect,
		DirectKey:   &key,
		CreatedByID: &a.ID,
	}
	if err := db.Create(&conv).Error; err != nil {
		log.Printf("❌ Failed to create direct conversation: %v", err)
		return
	}

	for _, u := range []model.User{a, b} {
		db.Create(&model.ConversationParticipant{
			ConversationID: conv.ID,
			UserID:         u.ID,
			Role:           model.ParticipantRoleMember,
		})
	}

	db.Create(&model.Message{
		ConversationID: conv.ID,
		SenderID:       &a.ID,
		Content:        "Hi Mark, good to see you on Sunday!",
		Type:           model.MessageTypeText,
	})

	log.Printf("✅ Created direct conversation: %s ↔ %s", a.Name, b.Name)
}

func seedGroup(db *gorm.DB, admin model.User, members []model.User) {
	var count int64
	db.Model(&model.Conversation{}).Where("name = ?", "Worship Team").Count(&count)
	if count > 0 {
		return
	}

	group := model.Conversation{
		ID:          uuid.New(),
		Type:        model.ConversationTypeGroup,
		Name:        "Worship Team",
		Description: "Coordination for Sunday worship",
		CreatedByID: &admin.ID,
	}
	if err := db.Create(&group).Error; err != nil {
		log.Printf("❌ Failed to create group: %v", err)
		return
	}

	db.Create(&model.ConversationParticipant{
		ConversationID: group.ID,
		UserID:         admin.ID,
		Role:           model.ParticipantRoleAdmin,
	})
	for _, m := range members {
		db.Create(&model.ConversationParticipant{
			ConversationID: group.ID,
			UserID:         m.ID,
			Role:           model.ParticipantRoleMember,
		})
	}

	db.Create(&model.Message{
		ConversationID: group.ID,
		SenderID:       &admin.ID,
		Content:        "Welcome to the Worship Team chat! 🎶",
		Type:           model.MessageTypeText,
	})

	log.Printf("✅ Created group: 'Worship Team' with %d members", len(members)+1)
}

func seedBroadcast(db *gorm.DB, pastor model.User, members []model.User) {
	var count int64
	db.Model(&model.Conversation{}).Where("name = ?", "Church Announcements").Count(&count)
	if count > 0 {
		return
	}

	broadcast := model.Conversation{
		ID:          uuid.New(),
		Type:        model.ConversationTypeBroadcast,
		Name:        "Church Announcements",
		Description: "Official announcements from church leadership",
		Settings:    model.ConversationSettings{OnlyAdminsCanPost: true},
		CreatedByID: &pastor.ID,
	}
	if err := db.Create(&broadcast).Error; err != nil {
		log.Printf("❌ Failed to create broadcast: %v", err)
		return
	}

	db.Create(&model.ConversationParticipant{
		ConversationID: broadcast.ID,
		UserID:         pastor.ID,
		Role:           model.ParticipantRoleAdmin,
	})
	for _, m := range members {
		db.Create(&model.ConversationParticipant{
			ConversationID: broadcast.ID,
			UserID:         m.ID,
			Role:           model.ParticipantRoleMember,
		})
	}

	db.Create(&model.Message{
		ConversationID: broadcast.ID,
		SenderID:       &pastor.ID,
		Content:        "Service this Sunday starts at 10am. See you there!",
		Type:           model.MessageTypeText,
	})

	log.Println("✅ Created broadcast channel: 'Church Announcements'")
}
