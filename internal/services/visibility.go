package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/models"
	apperrors "github.com/Yasvanth-2005/chat-backend/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Visibility decides what each user gets to see: which chats appear in their
// list, which messages appear in a history page, and what the "last message"
// of a chat looks like from their side of the soft-delete ledgers. It also
// owns the writes that feed those decisions (sends, edits, deletions,
// reactions), since every one of them has to keep the last-message pointer
// and the ledgers consistent.
type Visibility struct {
	db       *gorm.DB
	pageSize int
}

// NewVisibility returns an engine using basePageSize as the unit of the
// growing history window (limit = basePageSize * page).
func NewVisibility(db *gorm.DB, basePageSize int) *Visibility {
	if basePageSize <= 0 {
		basePageSize = 20
	}
	return &Visibility{db: db, pageSize: basePageSize}
}

// MessagePage is one window of a chat's history as seen by one user.
// Pages are growing windows, not disjoint slices: page 2 contains page 1.
type MessagePage struct {
	Messages    []models.Message `json:"messages"`
	Total       int64            `json:"total"`
	HasMore     bool             `json:"hasMore"`
	CurrentPage int              `json:"currentPage"`
}

// DeleteOutcome describes a completed message deletion so the caller can
// fan the right payload out to the right people.
type DeleteOutcome struct {
	Mode        models.DeleteMode
	ChatID      string
	MessageID   string
	LastMessage *models.Message            // recomputed chat-level pointer, nil when chat is empty
	PerViewer   map[string]*models.Message // recipient id -> their visibility-adjusted lastMessage
	Recipients  []string                   // who should be notified
}

// cutoffFor returns the user's soft-delete cutoff for a chat, or nil.
func (v *Visibility) cutoffFor(chatID, userID string) (*time.Time, error) {
	var del models.ChatDeletion
	err := v.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&del).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &del.Cutoff, nil
}

// visibleMessages builds a fresh query over the messages userID may see in
// chatID: inside the chat, strictly after their cutoff (when one exists),
// and not individually deleted-for-me.
func (v *Visibility) visibleMessages(chatID, userID string, cutoff *time.Time) *gorm.DB {
	q := v.db.Model(&models.Message{}).Where("messages.chat_id = ?", chatID)
	if cutoff != nil {
		q = q.Where("messages.created_at > ?", *cutoff)
	}
	sub := v.db.Model(&models.MessageDeletion{}).
		Select("message_id").
		Where("user_id = ?", userID)
	return q.Where("messages.id NOT IN (?)", sub)
}

// ListChats returns the chats userID belongs to, most recent activity first.
// A chat the user soft-deleted stays hidden until something newer than their
// cutoff arrives; new activity un-hides it. Chats with no messages sort last.
func (v *Visibility) ListChats(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := v.db.
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Preload("LastMessage.DeletedFor").
		Preload("DeletedFor", "user_id = ?", userID).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	visible := make([]models.Chat, 0, len(chats))
	for i := range chats {
		chat := chats[i]

		lastAt := time.Time{} // no messages == epoch
		if chat.LastMessage != nil {
			lastAt = chat.LastMessage.CreatedAt
		}

		if len(chat.DeletedFor) > 0 {
			// Hidden unless something arrived strictly after the cutoff.
			if !lastAt.After(chat.DeletedFor[0].Cutoff) {
				continue
			}
		}

		// The chat-level pointer may be a message this viewer deleted for
		// themselves; show them the newest message they can still see.
		if chat.LastMessage != nil && hiddenFor(chat.LastMessage, userID) {
			lm, err := v.ComputeLastMessage(chat.ID, nil, &userID)
			if err != nil {
				return nil, err
			}
			chat.LastMessage = lm
			if lm != nil {
				chat.LastMessageID = &lm.ID
			} else {
				chat.LastMessageID = nil
			}
		}

		visible = append(visible, chat)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return chatLastAt(&visible[i]).After(chatLastAt(&visible[j]))
	})
	return visible, nil
}

func chatLastAt(c *models.Chat) time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return time.Time{}
}

func hiddenFor(m *models.Message, userID string) bool {
	for _, d := range m.DeletedFor {
		if d.UserID == userID {
			return true
		}
	}
	return false
}

// ListMessages returns one history window for userID. The window grows with
// the page number (limit = base * page), so page 2 is a superset of page 1;
// this matches the established client contract. Messages come back in
// chronological order for display.
func (v *Visibility) ListMessages(chatID, userID string, page int) (*MessagePage, error) {
	if page < 1 {
		page = 1
	}
	limit := v.pageSize * page

	cutoff, err := v.cutoffFor(chatID, userID)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := v.visibleMessages(chatID, userID, cutoff).Count(&total).Error; err != nil {
		return nil, err
	}

	var msgs []models.Message
	err = v.visibleMessages(chatID, userID, cutoff).
		Preload("Sender").
		Preload("Reactions").
		Order("messages.created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	// Fetched newest-first, displayed oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	v.hydrateReplies(msgs)

	return &MessagePage{
		Messages:    msgs,
		Total:       total,
		HasMore:     total > int64(limit),
		CurrentPage: page,
	}, nil
}

// hydrateReplies fills ReplyTo for messages that reference another message.
// The reference is non-owning: a reply whose target was deleted keeps a nil
// ReplyTo.
func (v *Visibility) hydrateReplies(msgs []models.Message) {
	ids := make([]string, 0)
	for i := range msgs {
		if msgs[i].ReplyToID != nil {
			ids = append(ids, *msgs[i].ReplyToID)
		}
	}
	if len(ids) == 0 {
		return
	}
	var targets []models.Message
	if err := v.db.Where("id IN ?", ids).Find(&targets).Error; err != nil {
		return
	}
	byID := make(map[string]*models.Message, len(targets))
	for i := range targets {
		byID[targets[i].ID] = &targets[i]
	}
	for i := range msgs {
		if msgs[i].ReplyToID != nil {
			msgs[i].ReplyTo = byID[*msgs[i].ReplyToID]
		}
	}
}

// ComputeLastMessage returns the most recent message in the chat, optionally
// excluding one message id (used right after a deletion) and optionally
// restricted to what forUserID may still see. Returns nil when nothing
// qualifies.
func (v *Visibility) ComputeLastMessage(chatID string, excludeID, forUserID *string) (*models.Message, error) {
	var q *gorm.DB
	if forUserID != nil {
		cutoff, err := v.cutoffFor(chatID, *forUserID)
		if err != nil {
			return nil, err
		}
		q = v.visibleMessages(chatID, *forUserID, cutoff)
	} else {
		q = v.db.Model(&models.Message{}).Where("messages.chat_id = ?", chatID)
	}
	if excludeID != nil {
		q = q.Where("messages.id <> ?", *excludeID)
	}

	var msg models.Message
	err := q.Order("messages.created_at DESC").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetChat loads a chat with its participants.
func (v *Visibility) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := v.db.Preload("Participants").Preload("LastMessage").First(&chat, "id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Chat not found")
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// SendMessage appends a message to a chat and advances the chat's
// last-message pointer. replyToID, when set, must reference a message in the
// same chat.
func (v *Visibility) SendMessage(chatID, senderID, body string, kind models.MessageKind, attachments datatypes.JSON, replyToID *string) (*models.Message, *models.Chat, error) {
	chat, err := v.GetChat(chatID)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, nil, apperrors.Forbidden("Sender is not a participant of this chat")
	}
	if body == "" && len(attachments) == 0 {
		return nil, nil, apperrors.BadRequest("Message body or attachments required")
	}
	if kind == "" {
		kind = models.MessageKindText
	}
	if replyToID != nil {
		var n int64
		if err := v.db.Model(&models.Message{}).
			Where("id = ? AND chat_id = ?", *replyToID, chatID).
			Count(&n).Error; err != nil {
			return nil, nil, err
		}
		if n == 0 {
			return nil, nil, apperrors.NotFound("Reply target not found in this chat")
		}
	}

	msg := models.Message{
		ChatID:      chatID,
		SenderID:    senderID,
		Body:        body,
		Kind:        kind,
		Attachments: attachments,
		ReplyToID:   replyToID,
		CreatedAt:   time.Now(),
	}
	if err := v.db.Create(&msg).Error; err != nil {
		return nil, nil, err
	}
	if err := v.db.Model(&models.Chat{}).Where("id = ?", chatID).
		Update("last_message_id", msg.ID).Error; err != nil {
		return nil, nil, err
	}

	v.db.Preload("Sender").First(&msg, "id = ?", msg.ID)
	chat.LastMessageID = &msg.ID
	chat.LastMessage = &msg
	return &msg, chat, nil
}

// FindOrCreateDirectChat returns the one direct chat between a and b,
// creating it when absent. The unordered pair is the identity: the key is
// built from the sorted ids, so argument order never produces a duplicate.
func (v *Visibility) FindOrCreateDirectChat(a, b string) (*models.Chat, bool, error) {
	if a == "" || b == "" || a == b {
		return nil, false, apperrors.BadRequest("Two distinct participant ids required")
	}

	var users []models.User
	if err := v.db.Where("id IN ?", []string{a, b}).Find(&users).Error; err != nil {
		return nil, false, err
	}
	if len(users) != 2 {
		return nil, false, apperrors.NotFound("Participant not found")
	}

	key := models.ParticipantsKeyFor([]string{a, b})

	var existing models.Chat
	err := v.db.Preload("Participants").Preload("LastMessage").
		First(&existing, "participants_key = ?", key).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat := models.Chat{
		Kind:            models.ChatKindDirect,
		ParticipantsKey: &key,
		Participants:    users,
		CreatedAt:       time.Now(),
	}
	if err := v.db.Create(&chat).Error; err != nil {
		// Lost a create race; the unique key guarantees the winner is ours.
		var raced models.Chat
		if ferr := v.db.Preload("Participants").Preload("LastMessage").
			First(&raced, "participants_key = ?", key).Error; ferr == nil {
			return &raced, false, nil
		}
		return nil, false, err
	}
	return &chat, true, nil
}

// CreateGroupChat finds or creates a group chat over the exact member set
// {creator} ∪ recipients. The creator plus at least two other users must
// remain after deduplication; a two-member set is a direct chat's identity
// and must never claim its participants key.
func (v *Visibility) CreateGroupChat(creator string, recipients []string, name string) (*models.Chat, bool, error) {
	memberIDs := dedup(append([]string{creator}, recipients...))
	if len(memberIDs) < 3 {
		return nil, false, apperrors.BadRequest("A group chat needs at least 2 recipients besides the creator")
	}
	var users []models.User
	if err := v.db.Where("id IN ?", memberIDs).Find(&users).Error; err != nil {
		return nil, false, err
	}
	if len(users) != len(memberIDs) {
		return nil, false, apperrors.NotFound("Participant not found")
	}

	key := models.ParticipantsKeyFor(memberIDs)

	var existing models.Chat
	err := v.db.Preload("Participants").Preload("LastMessage").
		First(&existing, "participants_key = ? AND kind = ?", key, models.ChatKindGroup).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat := models.Chat{
		Name:            name,
		Kind:            models.ChatKindGroup,
		ParticipantsKey: &key,
		Participants:    users,
		CreatedAt:       time.Now(),
	}
	if err := v.db.Create(&chat).Error; err != nil {
		var raced models.Chat
		if ferr := v.db.Preload("Participants").Preload("LastMessage").
			First(&raced, "participants_key = ?", key).Error; ferr == nil {
			return &raced, false, nil
		}
		return nil, false, err
	}
	return &chat, true, nil
}

// UpsertTeamChat creates a named team chat or extends an existing one's
// member list. Teams are keyed by name, not by member set.
func (v *Visibility) UpsertTeamChat(name string, memberIDs []string) (*models.Chat, bool, error) {
	if name == "" {
		return nil, false, apperrors.BadRequest("Team name required")
	}

	memberIDs = dedup(memberIDs)
	var users []models.User
	if err := v.db.Where("id IN ?", memberIDs).Find(&users).Error; err != nil {
		return nil, false, err
	}
	if len(users) != len(memberIDs) {
		return nil, false, apperrors.NotFound("Participant not found")
	}

	var existing models.Chat
	err := v.db.Preload("Participants").
		First(&existing, "name = ? AND kind = ?", name, models.ChatKindTeam).Error
	if err == nil {
		for _, u := range users {
			if !existing.HasParticipant(u.ID) {
				if aerr := v.db.Model(&existing).Association("Participants").Append(&u); aerr != nil {
					return nil, false, aerr
				}
			}
		}
		v.db.Preload("Participants").Preload("LastMessage").First(&existing, "id = ?", existing.ID)
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat := models.Chat{
		Name:         name,
		Kind:         models.ChatKindTeam,
		Participants: users,
		CreatedAt:    time.Now(),
	}
	if err := v.db.Create(&chat).Error; err != nil {
		return nil, false, err
	}
	return &chat, true, nil
}

// EditMessage rewrites a message's body/attachments and flags it as edited.
// Only the sender may edit. The chat's last-message pointer never moves on
// edit, but its content may have changed, so the current pointer is returned
// for broadcasting.
func (v *Visibility) EditMessage(chatID, messageID, userID, body string, attachments datatypes.JSON) (*models.Message, *models.Message, error) {
	var msg models.Message
	err := v.db.First(&msg, "id = ? AND chat_id = ?", messageID, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.NotFound("Message not found")
	}
	if err != nil {
		return nil, nil, err
	}
	if msg.SenderID != userID {
		return nil, nil, apperrors.Unauthorized("Not authorized to edit this message")
	}
	if body == "" && len(attachments) == 0 {
		return nil, nil, apperrors.BadRequest("Message body or attachments required")
	}

	updates := map[string]interface{}{"body": body, "edited": true}
	if attachments != nil {
		updates["attachments"] = attachments
	}
	if err := v.db.Model(&msg).Updates(updates).Error; err != nil {
		return nil, nil, err
	}
	v.db.Preload("Sender").Preload("Reactions").First(&msg, "id = ?", messageID)

	var chat models.Chat
	if err := v.db.First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, nil, err
	}
	var last *models.Message
	if chat.LastMessageID != nil {
		if *chat.LastMessageID == messageID {
			last = &msg
		} else {
			last, err = v.ComputeLastMessage(chatID, nil, nil)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return &msg, last, nil
}

// SetReaction records userID's reaction to a message, replacing any previous
// one (one reaction per user, last write wins). An empty emoji clears it.
func (v *Visibility) SetReaction(chatID, messageID, userID, emoji string) (*models.Message, error) {
	var msg models.Message
	err := v.db.First(&msg, "id = ? AND chat_id = ?", messageID, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Message not found")
	}
	if err != nil {
		return nil, err
	}

	if emoji == "" {
		if err := v.db.Delete(&models.Reaction{}, "message_id = ? AND user_id = ?", messageID, userID).Error; err != nil {
			return nil, err
		}
	} else {
		reaction := models.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
			UpdatedAt: time.Now(),
		}
		err := v.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "updated_at"}),
		}).Create(&reaction).Error
		if err != nil {
			return nil, err
		}
	}

	v.db.Preload("Sender").Preload("Reactions").First(&msg, "id = ?", messageID)
	return &msg, nil
}

// DeleteMessage applies one of the two deletion semantics:
//
//   - DeleteForEveryone: sender only. The row is removed for good, the chat's
//     last-message pointer is recomputed without it, and every participant
//     gets their own visibility-adjusted lastMessage in the outcome.
//   - DeleteForMe: any participant, idempotent. Adds (or refreshes) the
//     caller's ledger entry; nobody else's view changes and only the caller
//     is notified. If the caller is the sender and the message was the
//     chat's lastMessage, the pointer is recomputed under their visibility.
func (v *Visibility) DeleteMessage(chatID, messageID, userID string, mode models.DeleteMode) (*DeleteOutcome, error) {
	var msg models.Message
	err := v.db.First(&msg, "id = ? AND chat_id = ?", messageID, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Message not found")
	}
	if err != nil {
		return nil, err
	}

	chat, err := v.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	outcome := &DeleteOutcome{
		Mode:      mode,
		ChatID:    chatID,
		MessageID: messageID,
		PerViewer: make(map[string]*models.Message),
	}

	switch mode {
	case models.DeleteForEveryone:
		if msg.SenderID != userID {
			return nil, apperrors.Unauthorized("Not authorized to delete this message")
		}

		// Ledger rows first; SQLite test databases don't enforce cascades.
		if err := v.db.Delete(&models.Reaction{}, "message_id = ?", messageID).Error; err != nil {
			return nil, err
		}
		if err := v.db.Delete(&models.MessageDeletion{}, "message_id = ?", messageID).Error; err != nil {
			return nil, err
		}
		if err := v.db.Delete(&models.Message{}, "id = ?", messageID).Error; err != nil {
			return nil, err
		}

		last, err := v.ComputeLastMessage(chatID, &messageID, nil)
		if err != nil {
			return nil, err
		}
		if err := v.persistLastMessage(chatID, last); err != nil {
			return nil, err
		}
		outcome.LastMessage = last

		for _, pid := range chat.ParticipantIDs() {
			viewer := pid
			lm, err := v.ComputeLastMessage(chatID, &messageID, &viewer)
			if err != nil {
				return nil, err
			}
			outcome.PerViewer[pid] = lm
			outcome.Recipients = append(outcome.Recipients, pid)
		}

	case models.DeleteForMe:
		if !chat.HasParticipant(userID) {
			return nil, apperrors.Forbidden("Not a participant of this chat")
		}

		entry := models.MessageDeletion{
			MessageID: messageID,
			UserID:    userID,
			DeletedAt: time.Now(),
		}
		err := v.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"deleted_at"}),
		}).Create(&entry).Error
		if err != nil {
			return nil, err
		}

		if msg.SenderID == userID && chat.LastMessageID != nil && *chat.LastMessageID == messageID {
			lm, err := v.ComputeLastMessage(chatID, nil, &userID)
			if err != nil {
				return nil, err
			}
			if err := v.persistLastMessage(chatID, lm); err != nil {
				return nil, err
			}
			outcome.LastMessage = lm
		}

		viewer := userID
		lm, err := v.ComputeLastMessage(chatID, nil, &viewer)
		if err != nil {
			return nil, err
		}
		outcome.PerViewer[userID] = lm
		outcome.Recipients = []string{userID}

	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("Unsupported delete mode %v", mode))
	}

	return outcome, nil
}

func (v *Visibility) persistLastMessage(chatID string, last *models.Message) error {
	var id interface{}
	if last != nil {
		id = last.ID
	}
	return v.db.Model(&models.Chat{}).Where("id = ?", chatID).
		Update("last_message_id", id).Error
}

// DeleteChat soft-deletes a chat for one user by recording a visibility
// cutoff at the current last-message time (or now, for an empty chat). The
// cutoff only moves forward: a racing call carrying an older timestamp
// cannot regress it. Idempotent.
func (v *Visibility) DeleteChat(chatID, userID string) error {
	chat, err := v.GetChat(chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return apperrors.Forbidden("Not a participant of this chat")
	}

	cutoff := time.Now()
	if chat.LastMessage != nil {
		cutoff = chat.LastMessage.CreatedAt
	}

	entry := models.ChatDeletion{ChatID: chatID, UserID: userID, Cutoff: cutoff}
	return v.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"cutoff": gorm.Expr("CASE WHEN excluded.cutoff > chat_deletions.cutoff THEN excluded.cutoff ELSE chat_deletions.cutoff END"),
		}),
	}).Create(&entry).Error
}

// ExitChat removes userID from a group or team chat and appends a synthetic
// system message announcing the departure. Direct chats cannot be exited.
func (v *Visibility) ExitChat(chatID, userID string) (*models.Message, *models.Chat, error) {
	chat, err := v.GetChat(chatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Kind == models.ChatKindDirect {
		return nil, nil, apperrors.BadRequest("Cannot exit a direct chat")
	}
	if !chat.HasParticipant(userID) {
		return nil, nil, apperrors.Forbidden("Not a participant of this chat")
	}

	var user models.User
	if err := v.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, nil, err
	}

	sysMsg, _, err := v.SendMessage(chatID, userID,
		fmt.Sprintf("%s left the chat", user.DisplayName),
		models.MessageKindSystem, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := v.db.Model(chat).Association("Participants").Delete(&user); err != nil {
		return nil, nil, err
	}
	// The member set changed, so the chat drops out of group
	// find-or-create matching.
	if chat.ParticipantsKey != nil {
		if err := v.db.Model(&models.Chat{}).Where("id = ?", chatID).
			Update("participants_key", nil).Error; err != nil {
			return nil, nil, err
		}
	}

	updated, err := v.GetChat(chatID)
	if err != nil {
		return nil, nil, err
	}
	return sysMsg, updated, nil
}

// VisibleHistory returns the user's entire visible history of a chat in
// chronological order. Used by the export formatters.
func (v *Visibility) VisibleHistory(chatID, userID string) ([]models.Message, error) {
	cutoff, err := v.cutoffFor(chatID, userID)
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	err = v.visibleMessages(chatID, userID, cutoff).
		Preload("Sender").
		Preload("Reactions").
		Order("messages.created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
