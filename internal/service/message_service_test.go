package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	t.Run("valid message round-trips with sender", func(t *testing.T) {
		msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, model.MessageTypeText, msg.Type)
		require.NotNil(t, msg.Sender)
		assert.Equal(t, member.ID, msg.Sender.ID)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		_, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "   "})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("non-participant cannot post", func(t *testing.T) {
		stranger := env.createUser(t, "stranger", model.UserRoleMember)
		_, err := env.messages.Send(conv.ID, stranger.ID, model.SendMessageRequest{Content: "hi"})
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := env.messages.Send(uuid.New(), member.ID, model.SendMessageRequest{Content: "hi"})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("attachment without type defaults to file", func(t *testing.T) {
		msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{
			Metadata: model.MessageMetadata{Attachments: []model.AttachmentMeta{{URL: "http://x/a.png"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, model.MessageTypeFile, msg.Type)
	})
}

func TestSendMessageBroadcastIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	pastor := env.createUser(t, "pastor", model.UserRolePastor)
	member := env.createUser(t, "member", model.UserRoleMember)

	conv, err := env.convs.Create(pastor, model.CreateConversationRequest{
		Type: model.ConversationTypeBroadcast,
		Name: "Announcements",
	})
	require.NoError(t, err)
	require.NoError(t, env.convs.AddParticipant(conv.ID, pastor.ID, member.ID))

	_, err = env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "can I post?"})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))

	_, err = env.messages.Send(conv.ID, pastor.ID, model.SendMessageRequest{Content: "service at 10am"})
	assert.NoError(t, err)
}

func TestSendMessageReplies(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)
	other := env.createGroup(t, admin, member)

	parent, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "parent"})
	require.NoError(t, err)

	t.Run("reply to message in same conversation", func(t *testing.T) {
		msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{
			Content: "reply", ReplyToID: &parent.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, msg.ReplyToID)
		assert.Equal(t, parent.ID, *msg.ReplyToID)
	})

	t.Run("reply target in another conversation is rejected", func(t *testing.T) {
		_, err := env.messages.Send(other.ID, member.ID, model.SendMessageRequest{
			Content: "cross", ReplyToID: &parent.ID,
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("nonexistent reply target is rejected", func(t *testing.T) {
		bogus := uuid.New()
		_, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{
			Content: "ghost", ReplyToID: &bogus,
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestEditMessage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "orignal"})
	require.NoError(t, err)

	t.Run("sender edits within the window", func(t *testing.T) {
		edited, err := env.messages.Edit(msg.ID, member.ID, "original")
		require.NoError(t, err)
		assert.Equal(t, "original", edited.Content)
		assert.True(t, edited.IsEdited)
		assert.NotNil(t, edited.EditedAt)
	})

	t.Run("only the sender may edit, even admins", func(t *testing.T) {
		_, err := env.messages.Edit(msg.ID, admin.ID, "hijacked")
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("expired window", func(t *testing.T) {
		old := time.Now().Add(-10 * time.Minute)
		require.NoError(t, env.db.Model(&model.Message{}).
			Where("id = ?", msg.ID).
			Update("created_at", old).Error)

		_, err := env.messages.Edit(msg.ID, member.ID, "too late")
		assert.True(t, apperr.IsKind(err, apperr.KindExpiredEditWindow))
	})
}

func TestDeleteMessagePermissions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	other := env.createUser(t, "other", model.UserRoleMember)
	pastor := env.createUser(t, "pastor", model.UserRolePastor)
	conv := env.createGroup(t, admin, member, other, pastor)

	send := func(t *testing.T) *model.Message {
		msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "delete me"})
		require.NoError(t, err)
		return msg
	}

	t.Run("random member cannot delete", func(t *testing.T) {
		msg := send(t)
		err := env.messages.Delete(msg.ID, other.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("sender deletes own message", func(t *testing.T) {
		msg := send(t)
		require.NoError(t, env.messages.Delete(msg.ID, member.ID))
		err := env.messages.Delete(msg.ID, member.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "hard delete leaves nothing behind")
	})

	t.Run("conversation admin deletes", func(t *testing.T) {
		msg := send(t)
		assert.NoError(t, env.messages.Delete(msg.ID, admin.ID))
	})

	t.Run("elevated church role deletes", func(t *testing.T) {
		msg := send(t)
		assert.NoError(t, env.messages.Delete(msg.ID, pastor.ID))
	})
}

func TestToggleReactionCycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	msg, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "react to me"})
	require.NoError(t, err)

	// none -> added
	resp, _, err := env.messages.ToggleReaction(msg.ID, member.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, model.ReactionAdded, resp.Action)
	require.Len(t, resp.Reactions, 1)
	assert.Equal(t, "👍", resp.Reactions[0].Emoji)

	// different emoji -> changed, still a single row
	resp, _, err = env.messages.ToggleReaction(msg.ID, member.ID, "❤️")
	require.NoError(t, err)
	assert.Equal(t, model.ReactionChanged, resp.Action)
	require.Len(t, resp.Reactions, 1)
	assert.Equal(t, "❤️", resp.Reactions[0].Emoji)

	// same emoji -> removed
	resp, _, err = env.messages.ToggleReaction(msg.ID, member.ID, "❤️")
	require.NoError(t, err)
	assert.Equal(t, model.ReactionRemoved, resp.Action)
	assert.Empty(t, resp.Reactions)

	t.Run("two users react independently", func(t *testing.T) {
		_, _, err := env.messages.ToggleReaction(msg.ID, member.ID, "🙏")
		require.NoError(t, err)
		resp, _, err := env.messages.ToggleReaction(msg.ID, admin.ID, "🙏")
		require.NoError(t, err)
		assert.Equal(t, model.ReactionAdded, resp.Action)
		assert.Len(t, resp.Reactions, 2)
	})

	t.Run("invalid emoji", func(t *testing.T) {
		_, _, err := env.messages.ToggleReaction(msg.ID, member.ID, "  ")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("non-participant cannot react", func(t *testing.T) {
		stranger := env.createUser(t, "stranger", model.UserRoleMember)
		_, _, err := env.messages.ToggleReaction(msg.ID, stranger.ID, "👍")
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	first, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "one"})
	require.NoError(t, err)
	second, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: "two"})
	require.NoError(t, err)

	ev, err := env.messages.MarkRead(conv.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, ev.ReadBy)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ev.MessageIDs)

	// Second call finds nothing unread.
	ev, err = env.messages.MarkRead(conv.ID, member.ID)
	require.NoError(t, err)
	assert.Empty(t, ev.MessageIDs)

	t.Run("own messages never count as unread", func(t *testing.T) {
		_, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "mine"})
		require.NoError(t, err)
		ev, err := env.messages.MarkRead(conv.ID, member.ID)
		require.NoError(t, err)
		assert.Empty(t, ev.MessageIDs)
	})
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	var ids []uuid.UUID
	for _, content := range []string{"a", "b", "c"} {
		msg, err := env.messages.Send(conv.ID, admin.ID, model.SendMessageRequest{Content: content})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	page, err := env.messages.List(conv.ID, member.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)

	older, err := env.messages.List(conv.ID, member.ID, &ids[1], 10)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, ids[0], older[0].ID)

	t.Run("non-participant cannot list", func(t *testing.T) {
		stranger := env.createUser(t, "stranger", model.UserRoleMember)
		_, err := env.messages.List(conv.ID, stranger.ID, nil, 10)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})
}

func TestSetPinned(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", model.UserRoleMember)
	member := env.createUser(t, "member", model.UserRoleMember)
	conv := env.createGroup(t, admin, member)

	msg, err := env.messages.Send(conv.ID, member.ID, model.SendMessageRequest{Content: "pin me"})
	require.NoError(t, err)

	pinned, err := env.messages.SetPinned(msg.ID, admin.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	unpinned, err := env.messages.SetPinned(msg.ID, member.ID, false)
	require.NoError(t, err)
	assert.False(t, unpinned.IsPinned)
}
