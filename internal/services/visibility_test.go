package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/models"
	apperrors "github.com/Yasvanth-2005/chat-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDirectChatFindOrCreateIsDeduped(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")

	first, created, err := v.FindOrCreateDirectChat(uidA, uidB)
	assert.NoError(t, err)
	assert.True(t, created)

	// Reversed argument order must resolve to the very same chat.
	second, created, err := v.FindOrCreateDirectChat(uidB, uidA)
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Chat{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDirectChatWithInitialMessage(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")

	chat, created, err := v.FindOrCreateDirectChat(uidA, uidB)
	assert.NoError(t, err)
	assert.True(t, created)

	msg, chat, err := v.SendMessage(chat.ID, uidA, "hi", models.MessageKindText, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "hi", msg.Body)
	assert.Equal(t, uidA, msg.SenderID)
	assert.NotNil(t, chat.LastMessageID)
	assert.Equal(t, msg.ID, *chat.LastMessageID)

	// Second create call: same chat, lastMessage untouched.
	again, created, err := v.FindOrCreateDirectChat(uidA, uidB)
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)
	assert.NotNil(t, again.LastMessageID)
	assert.Equal(t, msg.ID, *again.LastMessageID)
}

func TestDirectChatRejectsSelfAndUnknown(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")

	_, _, err := v.FindOrCreateDirectChat(uidA, uidA)
	assertAppError(t, err, http.StatusBadRequest)

	_, _, err = v.FindOrCreateDirectChat(uidA, uidB)
	assertAppError(t, err, http.StatusNotFound)
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	assert.Equal(t, code, appErr.Code)
}

// Soft-deleting a chat pins a cutoff at the current last-message time;
// earlier history is gone for that user for good, and the chat only
// reappears once something newer arrives.
func TestChatSoftDeleteCutoff(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, chat.ID, uidA, "M1", base.Add(10*time.Second))
	seedMessage(t, db, chat.ID, uidA, "M2", base.Add(20*time.Second))

	assert.NoError(t, v.DeleteChat(chat.ID, uidB))

	// Hidden for B, still listed for A.
	chatsB, err := v.ListChats(uidB)
	assert.NoError(t, err)
	assert.Empty(t, chatsB)

	chatsA, err := v.ListChats(uidA)
	assert.NoError(t, err)
	assert.Len(t, chatsA, 1)

	// New activity un-hides the chat for B...
	m3 := seedMessage(t, db, chat.ID, uidA, "M3", base.Add(30*time.Second))

	chatsB, err = v.ListChats(uidB)
	assert.NoError(t, err)
	assert.Len(t, chatsB, 1)
	assert.Equal(t, m3.ID, *chatsB[0].LastMessageID)

	// ...but the history before the cutoff stays gone.
	page, err := v.ListMessages(chat.ID, uidB, 1)
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	assert.Equal(t, "M3", page.Messages[0].Body)

	// A, who never deleted, sees everything.
	pageA, err := v.ListMessages(chat.ID, uidA, 1)
	assert.NoError(t, err)
	assert.Len(t, pageA.Messages, 3)
}

func TestChatSoftDeleteIsIdempotentAndMonotonic(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, chat.ID, uidA, "M1", base.Add(20*time.Second))

	assert.NoError(t, v.DeleteChat(chat.ID, uidB))
	assert.NoError(t, v.DeleteChat(chat.ID, uidB))

	var entries []models.ChatDeletion
	db.Where("chat_id = ?", chat.ID).Find(&entries)
	assert.Len(t, entries, 1)

	// A racing call carrying an older timestamp must not regress the
	// cutoff: pin it in the future, re-delete, and verify it held.
	future := time.Now().Add(time.Hour)
	db.Model(&models.ChatDeletion{}).
		Where("chat_id = ? AND user_id = ?", chat.ID, uidB).
		Update("cutoff", future)

	assert.NoError(t, v.DeleteChat(chat.ID, uidB))

	var entry models.ChatDeletion
	db.First(&entry, "chat_id = ? AND user_id = ?", chat.ID, uidB)
	assert.WithinDuration(t, future, entry.Cutoff, time.Second)
}

func TestDeleteChatRequiresMembership(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)
	seedUser(t, db, uidC, "carol")

	err := v.DeleteChat(chat.ID, uidC)
	assertAppError(t, err, http.StatusForbidden)

	err = v.DeleteChat("99999999-9999-9999-9999-999999999999", uidA)
	assertAppError(t, err, http.StatusNotFound)
}

func TestDeleteForEveryoneSenderOnly(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m := seedMessage(t, db, chat.ID, uidA, "mine", base.Add(10*time.Second))

	_, err := v.DeleteMessage(chat.ID, m.ID, uidB, models.DeleteForEveryone)
	assertAppError(t, err, http.StatusUnauthorized)

	// Still there for everyone.
	var count int64
	db.Model(&models.Message{}).Where("id = ?", m.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	outcome, err := v.DeleteMessage(chat.ID, m.ID, uidA, models.DeleteForEveryone)
	assert.NoError(t, err)
	assert.Nil(t, outcome.LastMessage)
	assert.ElementsMatch(t, []string{uidA, uidB}, outcome.Recipients)

	db.Model(&models.Message{}).Where("id = ?", m.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	// Absent from every participant's view.
	for _, uid := range []string{uidA, uidB} {
		page, err := v.ListMessages(chat.ID, uid, 1)
		assert.NoError(t, err)
		assert.Empty(t, page.Messages)
	}
}

// After A deletes M3 for everyone, the viewers diverge: A (no cutoff) falls
// back to M2, while B's chat-level cutoff still hides M1/M2 entirely.
func TestDeleteForEveryonePerViewerLastMessage(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, chat.ID, uidA, "M1", base.Add(10*time.Second))
	m2 := seedMessage(t, db, chat.ID, uidA, "M2", base.Add(20*time.Second))

	assert.NoError(t, v.DeleteChat(chat.ID, uidB))

	m3 := seedMessage(t, db, chat.ID, uidA, "M3", base.Add(30*time.Second))

	outcome, err := v.DeleteMessage(chat.ID, m3.ID, uidA, models.DeleteForEveryone)
	assert.NoError(t, err)

	assert.NotNil(t, outcome.LastMessage)
	assert.Equal(t, m2.ID, outcome.LastMessage.ID)

	assert.NotNil(t, outcome.PerViewer[uidA])
	assert.Equal(t, m2.ID, outcome.PerViewer[uidA].ID)
	assert.Nil(t, outcome.PerViewer[uidB])

	pageB, err := v.ListMessages(chat.ID, uidB, 1)
	assert.NoError(t, err)
	assert.Empty(t, pageB.Messages)
}

func TestDeleteForMeIsIdempotentAndScoped(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m := seedMessage(t, db, chat.ID, uidA, "hello", base.Add(10*time.Second))

	_, err := v.DeleteMessage(chat.ID, m.ID, uidB, models.DeleteForMe)
	assert.NoError(t, err)
	_, err = v.DeleteMessage(chat.ID, m.ID, uidB, models.DeleteForMe)
	assert.NoError(t, err)

	// Exactly one ledger entry, refreshed in place.
	var entries []models.MessageDeletion
	db.Where("message_id = ?", m.ID).Find(&entries)
	assert.Len(t, entries, 1)
	assert.Equal(t, uidB, entries[0].UserID)

	// Hidden for B permanently; untouched for A.
	pageB, err := v.ListMessages(chat.ID, uidB, 1)
	assert.NoError(t, err)
	assert.Empty(t, pageB.Messages)

	pageA, err := v.ListMessages(chat.ID, uidA, 1)
	assert.NoError(t, err)
	assert.Len(t, pageA.Messages, 1)
}

// Sender deleting-for-me their own message that is the chat's lastMessage
// recomputes the pointer under their visibility.
func TestDeleteForMeBySenderMovesLastMessage(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m1 := seedMessage(t, db, chat.ID, uidA, "M1", base.Add(10*time.Second))
	m2 := seedMessage(t, db, chat.ID, uidA, "M2", base.Add(20*time.Second))

	outcome, err := v.DeleteMessage(chat.ID, m2.ID, uidA, models.DeleteForMe)
	assert.NoError(t, err)
	assert.Equal(t, []string{uidA}, outcome.Recipients)
	assert.NotNil(t, outcome.PerViewer[uidA])
	assert.Equal(t, m1.ID, outcome.PerViewer[uidA].ID)

	var reloaded models.Chat
	db.First(&reloaded, "id = ?", chat.ID)
	assert.NotNil(t, reloaded.LastMessageID)
	assert.Equal(t, m1.ID, *reloaded.LastMessageID)

	// B still sees M2 itself even though the pointer moved.
	pageB, err := v.ListMessages(chat.ID, uidB, 1)
	assert.NoError(t, err)
	assert.Len(t, pageB.Messages, 2)
}

func TestDeleteMessageUnknownIsNotFound(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	_, err := v.DeleteMessage(chat.ID, "99999999-9999-9999-9999-999999999999", uidA, models.DeleteForMe)
	assertAppError(t, err, http.StatusNotFound)
}

// The history window grows with the page number and pages are not disjoint.
func TestListMessagesGrowingWindow(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 50; i++ {
		seedMessage(t, db, chat.ID, uidA, "msg", base.Add(time.Duration(i)*time.Second))
	}

	page1, err := v.ListMessages(chat.ID, uidB, 1)
	assert.NoError(t, err)
	assert.Len(t, page1.Messages, 20)
	assert.True(t, page1.HasMore)
	assert.EqualValues(t, 50, page1.Total)

	page2, err := v.ListMessages(chat.ID, uidB, 2)
	assert.NoError(t, err)
	assert.Len(t, page2.Messages, 40)
	assert.True(t, page2.HasMore)

	// Page 1 is a suffix of page 2: both end at the newest message.
	assert.Equal(t,
		page1.Messages[len(page1.Messages)-1].ID,
		page2.Messages[len(page2.Messages)-1].ID)

	page3, err := v.ListMessages(chat.ID, uidB, 3)
	assert.NoError(t, err)
	assert.Len(t, page3.Messages, 50)
	assert.False(t, page3.HasMore)

	// Chronological for display.
	for i := 1; i < len(page3.Messages); i++ {
		assert.False(t, page3.Messages[i].CreatedAt.Before(page3.Messages[i-1].CreatedAt))
	}
}

func TestListChatsOrdering(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")
	seedUser(t, db, uidC, "carol")
	seedUser(t, db, uidD, "dave")

	ab, _, _ := v.FindOrCreateDirectChat(uidA, uidB)
	ac, _, _ := v.FindOrCreateDirectChat(uidA, uidC)
	ad, _, _ := v.FindOrCreateDirectChat(uidA, uidD) // stays empty

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, ab.ID, uidB, "older", base.Add(10*time.Second))
	seedMessage(t, db, ac.ID, uidC, "newer", base.Add(20*time.Second))

	chats, err := v.ListChats(uidA)
	assert.NoError(t, err)
	assert.Len(t, chats, 3)
	assert.Equal(t, ac.ID, chats[0].ID)
	assert.Equal(t, ab.ID, chats[1].ID)
	// Empty chat sorts last.
	assert.Equal(t, ad.ID, chats[2].ID)
}

// If the chat-level lastMessage was deleted-for-me by the viewer, their chat
// list shows the newest message they can still see.
func TestListChatsViewerAdjustedLastMessage(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m1 := seedMessage(t, db, chat.ID, uidA, "M1", base.Add(10*time.Second))
	m2 := seedMessage(t, db, chat.ID, uidA, "M2", base.Add(20*time.Second))

	_, err := v.DeleteMessage(chat.ID, m2.ID, uidB, models.DeleteForMe)
	assert.NoError(t, err)

	chatsB, err := v.ListChats(uidB)
	assert.NoError(t, err)
	assert.Len(t, chatsB, 1)
	assert.NotNil(t, chatsB[0].LastMessage)
	assert.Equal(t, m1.ID, chatsB[0].LastMessage.ID)

	chatsA, err := v.ListChats(uidA)
	assert.NoError(t, err)
	assert.Equal(t, m2.ID, chatsA[0].LastMessage.ID)
}

func TestEditMessage(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m := seedMessage(t, db, chat.ID, uidA, "tpyo", base.Add(10*time.Second))

	_, _, err := v.EditMessage(chat.ID, m.ID, uidB, "nope", nil)
	assertAppError(t, err, http.StatusUnauthorized)

	edited, last, err := v.EditMessage(chat.ID, m.ID, uidA, "typo", nil)
	assert.NoError(t, err)
	assert.Equal(t, "typo", edited.Body)
	assert.True(t, edited.Edited)
	assert.NotNil(t, last)
	assert.Equal(t, m.ID, last.ID)
	assert.Equal(t, "typo", last.Body)
}

func TestSetReactionLastWriteWins(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	m := seedMessage(t, db, chat.ID, uidA, "react to me", base.Add(10*time.Second))

	_, err := v.SetReaction(chat.ID, m.ID, uidB, "👍")
	assert.NoError(t, err)
	msg, err := v.SetReaction(chat.ID, m.ID, uidB, "❤️")
	assert.NoError(t, err)

	assert.Len(t, msg.Reactions, 1)
	assert.Equal(t, "❤️", msg.Reactions[0].Emoji)

	// Clearing removes the row.
	msg, err = v.SetReaction(chat.ID, m.ID, uidB, "")
	assert.NoError(t, err)
	assert.Empty(t, msg.Reactions)
}

func TestGroupChatLifecycle(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")
	seedUser(t, db, uidC, "carol")

	_, _, err := v.CreateGroupChat(uidA, []string{uidB}, "too small")
	assertAppError(t, err, http.StatusBadRequest)

	chat, created, err := v.CreateGroupChat(uidA, []string{uidB, uidC}, "trio")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ChatKindGroup, chat.Kind)
	assert.Len(t, chat.Participants, 3)

	// Same member set resolves to the same group.
	again, created, err := v.CreateGroupChat(uidB, []string{uidC, uidA}, "")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)

	// Exiting posts a system message and shrinks the member list.
	sysMsg, updated, err := v.ExitChat(chat.ID, uidC)
	assert.NoError(t, err)
	assert.Equal(t, models.MessageKindSystem, sysMsg.Kind)
	assert.Contains(t, sysMsg.Body, "carol")
	assert.Len(t, updated.Participants, 2)

	_, _, err = v.ExitChat(chat.ID, uidC)
	assertAppError(t, err, http.StatusForbidden)
}

// A recipients list that smuggles the creator (or duplicates) back in must
// not shrink the member set to a pair: a two-member group would claim the
// participants key that uniquely identifies the direct chat between them.
func TestGroupChatRejectsTwoMemberSets(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")

	_, _, err := v.CreateGroupChat(uidA, []string{uidA, uidB}, "not really a group")
	assertAppError(t, err, http.StatusBadRequest)

	_, _, err = v.CreateGroupChat(uidA, []string{uidB, uidB}, "duplicated recipient")
	assertAppError(t, err, http.StatusBadRequest)

	// The pair's direct chat is still creatable and direct.
	chat, created, err := v.FindOrCreateDirectChat(uidA, uidB)
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ChatKindDirect, chat.Kind)
}

func TestExitDirectChatRejected(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	_, _, err := v.ExitChat(chat.ID, uidA)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestUpsertTeamChat(t *testing.T) {
	v, db := newTestEngine(t)
	seedUser(t, db, uidA, "alice")
	seedUser(t, db, uidB, "bob")
	seedUser(t, db, uidC, "carol")

	team, created, err := v.UpsertTeamChat("platform", []string{uidA, uidB})
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ChatKindTeam, team.Kind)
	assert.Len(t, team.Participants, 2)

	// Re-posting the same name extends the member list.
	team, created, err = v.UpsertTeamChat("platform", []string{uidB, uidC})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, team.Participants, 3)
}

func TestSendMessageValidation(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)
	seedUser(t, db, uidC, "carol")

	_, _, err := v.SendMessage(chat.ID, uidC, "hi", models.MessageKindText, nil, nil)
	assertAppError(t, err, http.StatusForbidden)

	_, _, err = v.SendMessage(chat.ID, uidA, "", models.MessageKindText, nil, nil)
	assertAppError(t, err, http.StatusBadRequest)

	bogus := "99999999-9999-9999-9999-999999999999"
	_, _, err = v.SendMessage(chat.ID, uidA, "re", models.MessageKindText, nil, &bogus)
	assertAppError(t, err, http.StatusNotFound)
}

func TestReplyThreading(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	base := time.Now().Add(-time.Hour)
	target := seedMessage(t, db, chat.ID, uidA, "original", base.Add(10*time.Second))

	reply, _, err := v.SendMessage(chat.ID, uidB, "replying", models.MessageKindText, nil, &target.ID)
	assert.NoError(t, err)
	assert.NotNil(t, reply.ReplyToID)

	page, err := v.ListMessages(chat.ID, uidA, 1)
	assert.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.NotNil(t, page.Messages[1].ReplyTo)
	assert.Equal(t, "original", page.Messages[1].ReplyTo.Body)
}

func TestComputeLastMessageEmptyChat(t *testing.T) {
	v, db := newTestEngine(t)
	chat := seedPair(t, db, v)

	last, err := v.ComputeLastMessage(chat.ID, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, last)
}
