package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"gorm.io/gorm"
)

// ConversationService owns conversation lifecycle and membership rules
type ConversationService struct {
	convRepo *repository.ConversationRepository
	msgRepo  *repository.MessageRepository
	userRepo *repository.UserRepository
}

func NewConversationService(
	convRepo *repository.ConversationRepository,
	msgRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
) *ConversationService {
	return &ConversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
	}
}

// Create dispatches to the direct/group/broadcast creation variants.
// The creator identity comes from the authenticated caller.
func (s *ConversationService) Create(creator *model.User, req model.CreateConversationRequest) (*model.Conversation, error) {
	switch req.Type {
	case model.ConversationTypeDirect:
		if len(req.ParticipantIDs) != 1 {
			return nil, apperr.Validation("direct conversation requires exactly one other participant")
		}
		return s.CreateDirect(creator.ID, req.ParticipantIDs[0])
	case model.ConversationTypeGroup:
		return s.CreateGroup(creator.ID, req.Name, req.Description, req.ImageURL, req.ParticipantIDs, req.Settings)
	case model.ConversationTypeBroadcast:
		if !creator.Role.IsElevated() {
			return nil, apperr.Permission("broadcast conversations require an elevated role")
		}
		return s.CreateBroadcast(creator.ID, req.Name, req.Description, req.ImageURL, req.Settings)
	}
	return nil, apperr.Validation("invalid conversation type %q", req.Type)
}

// CreateDirect finds or creates the single direct conversation between
// two users. The unique index on direct_key makes this safe when both
// sides initiate at the same time: the loser of the insert race
// retries the lookup and gets the winner's conversation.
func (s *ConversationService) CreateDirect(userA, userB uuid.UUID) (*model.Conversation, error) {
	if userA == userB {
		return nil, apperr.Validation("cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.FindByID(userB); err != nil {
		return nil, apperr.NotFound("user %s not found", userB)
	}

	key := model.DirectKeyFor(userA, userB)

	if conv, err := s.convRepo.FindDirectByKey(key); err == nil {
		return s.reopenDirect(conv, userA)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv := &model.Conversation{
		Type:      model.ConversationTypeDirect,
		DirectKey: &key,
		IsActive:  true,
		Participants: []model.ConversationParticipant{
			{UserID: userA, Role: model.ParticipantRoleMember, IsActive: true},
			{UserID: userB, Role: model.ParticipantRoleMember, IsActive: true},
		},
	}

	if err := s.convRepo.Create(conv); err != nil {
		// Lost the race: the other side just created it.
		if existing, findErr := s.convRepo.FindDirectByKey(key); findErr == nil {
			return s.reopenDirect(existing, userA)
		}
		return nil, fmt.Errorf("create direct conversation: %w", err)
	}

	return s.convRepo.FindByID(conv.ID)
}

// reopenDirect reactivates the caller's side of an existing direct
// conversation if they had previously hidden it.
func (s *ConversationService) reopenDirect(conv *model.Conversation, userID uuid.UUID) (*model.Conversation, error) {
	for _, p := range conv.Participants {
		if p.UserID == userID && !p.IsActive {
			if err := s.convRepo.SetParticipantActive(conv.ID, userID, true); err != nil {
				return nil, err
			}
			return s.convRepo.FindByID(conv.ID)
		}
	}
	return conv, nil
}

// CreateGroup creates a group conversation with the creator as admin
// and the given members.
func (s *ConversationService) CreateGroup(creatorID uuid.UUID, name, description, imageURL string, memberIDs []uuid.UUID, settings model.ConversationSettings) (*model.Conversation, error) {
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if settings.MaxMembers > 0 && len(memberIDs)+1 > settings.MaxMembers {
		return nil, apperr.Validation("group exceeds max of %d members", settings.MaxMembers)
	}

	participants := []model.ConversationParticipant{
		{UserID: creatorID, Role: model.ParticipantRoleAdmin, IsActive: true},
	}
	seen := map[uuid.UUID]bool{creatorID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, model.ConversationParticipant{
			UserID: id, Role: model.ParticipantRoleMember, IsActive: true,
		})
	}

	conv := &model.Conversation{
		Type:         model.ConversationTypeGroup,
		Name:         name,
		Description:  description,
		ImageURL:     imageURL,
		Settings:     settings,
		IsActive:     true,
		CreatedByID:  &creatorID,
		Participants: participants,
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, fmt.Errorf("create group conversation: %w", err)
	}
	return s.convRepo.FindByID(conv.ID)
}

// CreateBroadcast creates a one-to-many announcement conversation.
// The elevated-role check belongs to the caller (Create); this method
// trusts its input.
func (s *ConversationService) CreateBroadcast(creatorID uuid.UUID, name, description, imageURL string, settings model.ConversationSettings) (*model.Conversation, error) {
	if name == "" {
		return nil, apperr.Validation("broadcast name is required")
	}

	// Broadcasts are admin-post-only regardless of what was requested.
	settings.OnlyAdminsCanPost = true

	conv := &model.Conversation{
		Type:        model.ConversationTypeBroadcast,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Settings:    settings,
		IsActive:    true,
		CreatedByID: &creatorID,
		Participants: []model.ConversationParticipant{
			{UserID: creatorID, Role: model.ParticipantRoleAdmin, IsActive: true},
		},
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, fmt.Errorf("create broadcast conversation: %w", err)
	}
	return s.convRepo.FindByID(conv.ID)
}

// Get returns a conversation for a viewer. A participant who left or
// hid the conversation sees NotFound, same as a stranger.
func (s *ConversationService) Get(conversationID, userID uuid.UUID) (*model.Conversation, error) {
	active, err := s.convRepo.IsActiveParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NotFound("conversation not found")
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, err
	}
	s.deriveDirectDisplay(conv, userID)
	return conv, nil
}

// Leave deactivates the caller's participant row. For direct
// conversations this hides the caller's side only; the conversation
// and its history stay intact for the other user. For groups and
// broadcasts it means leaving.
func (s *ConversationService) Leave(conversationID, userID uuid.UUID) error {
	p, err := s.convRepo.FindParticipant(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("conversation not found")
		}
		return err
	}
	if !p.IsActive {
		return nil // already left, idempotent
	}

	if err := s.convRepo.SetParticipantActive(conversationID, userID, false); err != nil {
		return err
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return err
	}
	if conv.Type != model.ConversationTypeDirect {
		s.systemMessage(conversationID, "A member left the conversation")
	}
	return nil
}

// Archive shuts the conversation down for everyone. Only a
// conversation admin may archive.
func (s *ConversationService) Archive(conversationID, requesterID uuid.UUID) error {
	if err := s.requireAdmin(conversationID, requesterID); err != nil {
		return err
	}
	return s.convRepo.Archive(conversationID)
}

// AddParticipant adds a user, reactivating a previously-left
// participant row instead of creating a duplicate. Admin-only.
func (s *ConversationService) AddParticipant(conversationID, requesterID, userID uuid.UUID) error {
	if err := s.requireAdmin(conversationID, requesterID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return apperr.NotFound("user %s not found", userID)
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return err
	}
	if conv.Type == model.ConversationTypeDirect {
		return apperr.Validation("cannot add participants to a direct conversation")
	}

	existing, err := s.convRepo.FindParticipant(conversationID, userID)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil
		}
		if err := s.convRepo.SetParticipantActive(conversationID, userID, true); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.convRepo.AddParticipant(&model.ConversationParticipant{
			ConversationID: conversationID,
			UserID:         userID,
			Role:           model.ParticipantRoleMember,
			IsActive:       true,
		}); err != nil {
			return err
		}
	default:
		return err
	}

	s.systemMessage(conversationID, "A member joined the conversation")
	return nil
}

// ListForUser returns the caller's active conversations enriched with
// the latest message and unread count, newest activity first.
func (s *ConversationService) ListForUser(userID uuid.UUID) ([]model.ConversationResponse, error) {
	conversations, err := s.convRepo.GetUserConversations(userID)
	if err != nil {
		return nil, err
	}

	result := []model.ConversationResponse{}
	for i := range conversations {
		conv := conversations[i]

		lastMsg, _ := s.msgRepo.GetLastMessage(conv.ID)
		conv.LastMessage = lastMsg

		unreadCount, _ := s.msgRepo.CountUnread(conv.ID, userID)

		s.deriveDirectDisplay(&conv, userID)

		result = append(result, model.ConversationResponse{
			Conversation: conv,
			UnreadCount:  int(unreadCount),
		})
	}
	return result, nil
}

// ActiveParticipantIDs implements push.ParticipantSource.
func (s *ConversationService) ActiveParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error) {
	return s.convRepo.ActiveParticipantIDs(conversationID)
}

// deriveDirectDisplay fills a direct conversation's name and image
// from the other participant, since direct conversations carry no
// display metadata of their own.
func (s *ConversationService) deriveDirectDisplay(conv *model.Conversation, viewerID uuid.UUID) {
	if conv.Type != model.ConversationTypeDirect {
		return
	}
	for _, p := range conv.Participants {
		if p.UserID != viewerID {
			conv.Name = p.User.Name
			conv.ImageURL = p.User.Avatar
			return
		}
	}
}

func (s *ConversationService) requireAdmin(conversationID, userID uuid.UUID) error {
	p, err := s.convRepo.FindParticipant(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("conversation not found")
		}
		return err
	}
	if !p.IsActive {
		return apperr.NotFound("conversation not found")
	}
	if p.Role != model.ParticipantRoleAdmin {
		return apperr.Permission("requires conversation admin")
	}
	return nil
}

// systemMessage records a sender-less message; failures are ignored,
// membership events must not fail on bookkeeping.
func (s *ConversationService) systemMessage(conversationID uuid.UUID, content string) {
	_ = s.msgRepo.Create(&model.Message{
		ConversationID: conversationID,
		Content:        content,
		Type:           model.MessageTypeSystem,
	})
}
