package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatKind string

const (
	ChatKindDirect ChatKind = "direct"
	ChatKindGroup  ChatKind = "group"
	ChatKindTeam   ChatKind = "team"
)

// Chat is a conversation between two (direct) or more (group/team) users.
// LastMessage is a denormalized pointer refreshed on create/delete; what a
// given viewer actually sees as the last message may differ once their
// soft-delete ledger is applied.
type Chat struct {
	ID   string   `gorm:"primaryKey;type:uuid" json:"id"`
	Name string   `gorm:"default:''" json:"name"`
	Kind ChatKind `gorm:"type:text;default:'direct';not null" json:"kind"`

	// Sorted participant ids joined with ":". Unique, so a direct chat
	// between the same pair can never be created twice regardless of
	// argument order; groups reuse the same find-or-create key. Empty for
	// teams, which are keyed by name instead.
	ParticipantsKey *string `gorm:"uniqueIndex" json:"-"`

	LastMessageID *string  `gorm:"index" json:"lastMessageId"`
	LastMessage   *Message `gorm:"foreignKey:LastMessageID" json:"lastMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	Participants []User         `gorm:"many2many:chat_participants;" json:"participants,omitempty"`
	DeletedFor   []ChatDeletion `gorm:"foreignKey:ChatID" json:"-"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasParticipant reports whether userID is a member of the chat.
// Participants must be loaded.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the member ids in load order.
func (c *Chat) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// ParticipantsKeyFor builds the canonical unordered key for a member set.
func ParticipantsKeyFor(userIDs []string) string {
	ids := make([]string, len(userIDs))
	copy(ids, userIDs)
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// ChatDeletion is one entry of a chat's per-user soft-delete ledger: userID
// "deleted" the chat and only messages created strictly after Cutoff remain
// visible to them. The cutoff only ever moves forward.
type ChatDeletion struct {
	ChatID string    `gorm:"primaryKey;type:uuid" json:"chatId"`
	UserID string    `gorm:"primaryKey;type:uuid" json:"userId"`
	Cutoff time.Time `gorm:"not null" json:"cutoff"`
}
