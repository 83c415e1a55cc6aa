package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindImage  MessageKind = "image"
	MessageKindFile   MessageKind = "file"
	MessageKindSystem MessageKind = "system"
)

// Attachment is stored inside the message's Attachments JSON column.
type Attachment struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Preview string `json:"preview,omitempty"`
}

// Message belongs to exactly one chat. "Delete for everyone" removes the row;
// "delete for me" adds a MessageDeletion ledger entry and only narrows the
// deleting user's view.
type Message struct {
	ID       string      `gorm:"primaryKey;type:uuid" json:"id"`
	ChatID   string      `gorm:"index;type:uuid;not null" json:"chatId"`
	SenderID string      `gorm:"index;type:uuid;not null" json:"senderId"`
	Body     string      `gorm:"type:text" json:"body"`
	Kind     MessageKind `gorm:"type:text;default:'text';not null" json:"type"`

	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Edited      bool           `gorm:"default:false" json:"isEdited"`

	// Non-owning back-reference for reply threading.
	ReplyToID *string  `gorm:"index;type:uuid" json:"replyToId,omitempty"`
	ReplyTo   *Message `gorm:"-" json:"replyTo,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Sender     User              `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Reactions  []Reaction        `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
	DeletedFor []MessageDeletion `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// MessageDeletion is one "delete for me" ledger entry. Re-deleting refreshes
// DeletedAt in place; there is no undelete.
type MessageDeletion struct {
	MessageID string    `gorm:"primaryKey;type:uuid" json:"messageId"`
	UserID    string    `gorm:"primaryKey;type:uuid" json:"userId"`
	DeletedAt time.Time `gorm:"not null" json:"deletedAt"`
}

// Reaction holds one user's reaction to a message, last write wins.
type Reaction struct {
	MessageID string    `gorm:"primaryKey;type:uuid" json:"messageId"`
	UserID    string    `gorm:"primaryKey;type:uuid" json:"userId"`
	Emoji     string    `gorm:"not null" json:"emoji"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeleteMode distinguishes the two message-deletion semantics.
type DeleteMode int

const (
	// DeleteForMe hides the message from the deleting user only.
	DeleteForMe DeleteMode = iota
	// DeleteForEveryone removes the message for all participants.
	// Sender only.
	DeleteForEveryone
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteForMe:
		return "forMe"
	case DeleteForEveryone:
		return "forEveryone"
	default:
		return "unknown"
	}
}

// ParseDeleteMode converts the wire value into a DeleteMode.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch s {
	case "forMe":
		return DeleteForMe, nil
	case "forEveryone":
		return DeleteForEveryone, nil
	default:
		return DeleteForMe, fmt.Errorf("invalid delete mode %q", s)
	}
}
