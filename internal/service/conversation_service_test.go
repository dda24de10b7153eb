package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectIsDeduplicated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.UserRoleMember)
	bob := env.createUser(t, "bob", model.UserRoleMember)

	first, err := env.convs.CreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	// Same pair from either side resolves to the same conversation.
	again, err := env.convs.CreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	reversed, err := env.convs.CreateDirect(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reversed.ID)
}

func TestCreateDirectValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.UserRoleMember)

	_, err := env.convs.CreateDirect(alice.ID, alice.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.convs.CreateDirect(alice.ID, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestLeaveDirectHidesOneSideOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.UserRoleMember)
	bob := env.createUser(t, "bob", model.UserRoleMember)

	conv, err := env.convs.CreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, env.convs.Leave(conv.ID, alice.ID))
	// Leaving twice is a no-op.
	require.NoError(t, env.convs.Leave(conv.ID, alice.ID))

	_, err = env.convs.Get(conv.ID, alice.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "leaver no longer sees the conversation")

	still, err := env.convs.Get(conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, still.ID, "other side keeps the conversation")
}

func TestCreateDirectReopensHiddenSide(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", model.UserRoleMember)
	bob := env.createUser(t, "bob", model.UserRoleMember)

	conv, err := env.convs.CreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, env.convs.Leave(conv.ID, alice.ID))

	reopened, err := env.convs.CreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, reopened.ID)

	_, err = env.convs.Get(conv.ID, alice.ID)
	assert.NoError(t, err, "reopening restores visibility")
}

func TestCreateGroupRules(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)

	t.Run("requires a name", func(t *testing.T) {
		_, err := env.convs.CreateGroup(admin.ID, "", "", "", nil, model.ConversationSettings{})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("enforces max members", func(t *testing.T) {
		_, err := env.convs.CreateGroup(admin.ID, "Tiny", "", "",
			[]uuid.UUID{member.ID}, model.ConversationSettings{MaxMembers: 1})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("creator becomes admin, duplicate members collapse", func(t *testing.T) {
		conv, err := env.convs.CreateGroup(admin.ID, "Youth Group", "", "",
			[]uuid.UUID{member.ID, member.ID, admin.ID}, model.ConversationSettings{})
		require.NoError(t, err)
		require.Len(t, conv.Participants, 2)

		roles := map[uuid.UUID]model.ParticipantRole{}
		for _, p := range conv.Participants {
			roles[p.UserID] = p.Role
		}
		assert.Equal(t, model.ParticipantRoleAdmin, roles[admin.ID])
		assert.Equal(t, model.ParticipantRoleMember, roles[member.ID])
	})
}

func TestCreateBroadcastRequiresElevatedRole(t *testing.T) {
	env := newTestEnv(t)
	member := env.createUser(t, "member", model.UserRoleMember)
	pastor := env.createUser(t, "pastor", model.UserRolePastor)

	_, err := env.convs.Create(member, model.CreateConversationRequest{
		Type: model.ConversationTypeBroadcast,
		Name: "Announcements",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))

	conv, err := env.convs.Create(pastor, model.CreateConversationRequest{
		Type: model.ConversationTypeBroadcast,
		Name: "Announcements",
	})
	require.NoError(t, err)
	assert.True(t, conv.Settings.OnlyAdminsCanPost, "broadcasts are always admin-post-only")
}

func TestAddParticipant(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	newcomer := env.createUser(t, "newcomer", model.UserRoleMember)

	conv := env.createGroup(t, admin, member)

	t.Run("non-admin cannot add", func(t *testing.T) {
		err := env.convs.AddParticipant(conv.ID, member.ID, newcomer.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("admin adds a new member", func(t *testing.T) {
		require.NoError(t, env.convs.AddParticipant(conv.ID, admin.ID, newcomer.ID))
		_, err := env.convs.Get(conv.ID, newcomer.ID)
		assert.NoError(t, err)
	})

	t.Run("re-adding a leaver reactivates the same row", func(t *testing.T) {
		require.NoError(t, env.convs.Leave(conv.ID, newcomer.ID))
		require.NoError(t, env.convs.AddParticipant(conv.ID, admin.ID, newcomer.ID))

		fresh, err := env.convs.Get(conv.ID, newcomer.ID)
		require.NoError(t, err)

		count := 0
		for _, p := range fresh.Participants {
			if p.UserID == newcomer.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, "no duplicate participant rows")
	})

	t.Run("direct conversations reject additions", func(t *testing.T) {
		direct, err := env.convs.CreateDirect(admin.ID, member.ID)
		require.NoError(t, err)
		err = env.convs.AddParticipant(direct.ID, admin.ID, newcomer.ID)
		// Direct participants are plain members, so the admin gate fires.
		assert.Error(t, err)
	})
}

func TestArchiveStopsNewMessages(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	require.NoError(t, env.convs.Archive(conv.ID, admin.ID))

	_, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "too late"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListForUserShowsUnreadAndLastMessage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	_, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "first"})
	require.NoError(t, err)
	_, err = env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "second"})
	require.NoError(t, err)

	list, err := env.convs.ListForUser(member.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].UnreadCount)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "second", list[0].LastMessage.Content)

	_, err = env.messages.MarkRead(conv.ID, member.ID)
	require.NoError(t, err)

	list, err = env.convs.ListForUser(member.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].UnreadCount)
}

func TestActiveParticipantIDsExcludesLeavers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	require.NoError(t, env.convs.Leave(conv.ID, member.ID))

	ids, err := env.convs.ActiveParticipantIDs(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{admin.ID}, ids)
}
