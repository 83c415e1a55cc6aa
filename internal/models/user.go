package models

import "time"

// User is a chat user. Users are created on first join and never deleted;
// SocketID and Active are connection state persisted for the benefit of
// contact listings and go stale across restarts (cleared at boot, the
// in-process presence registry is the liveness authority).
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName string `gorm:"uniqueIndex;not null" json:"displayName"`
	SocketID    string `gorm:"default:''" json:"socketId"`
	Active      bool   `gorm:"default:false" json:"active"`

	// Profile
	PhotoURL    string `gorm:"default:''" json:"photoURL"`
	Email       string `gorm:"default:''" json:"email"`
	PhoneNumber string `gorm:"default:''" json:"phoneNumber"`
	Country     string `gorm:"default:''" json:"country"`
	Address     string `gorm:"default:''" json:"address"`
	State       string `gorm:"default:''" json:"state"`
	City        string `gorm:"default:''" json:"city"`
	ZipCode     string `gorm:"default:''" json:"zipCode"`
	About       string `gorm:"default:''" json:"about"`
	Role        string `gorm:"default:''" json:"role"`
	IsPublic    bool   `gorm:"default:true" json:"isPublic"`

	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}
