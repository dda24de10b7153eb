package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the service layer against an in-memory SQLite database.
type testEnv struct {
	db       *gorm.DB
	convs    *ConversationService
	messages *MessageService
	userRepo *repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A uniquely named shared-cache database keeps connections of one
	// test together while isolating parallel tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.UserDevice{},
		&model.Conversation{},
		&model.ConversationParticipant{},
		&model.Message{},
		&model.MessageReaction{},
	))

	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	return &testEnv{
		db:       db,
		convs:    NewConversationService(convRepo, msgRepo, userRepo),
		messages: NewMessageService(msgRepo, convRepo, userRepo),
		userRepo: userRepo,
	}
}

func (e *testEnv) createUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@church.local", name, uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.userRepo.Create(u))
	return u
}

func (e *testEnv) createGroup(t *testing.T, admin *model.User, members ...*model.User) *model.Conversation {
	t.Helper()
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	conv, err := e.convs.CreateGroup(admin.ID, "Test Group", "", "", ids, model.ConversationSettings{})
	require.NoError(t, err)
	return conv
}
