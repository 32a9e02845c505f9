package user

import (
	"time"
)

// Role partitions accounts into administrators, who may manage other
// accounts, and regular users, who may only talk to the bot.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a chat account. Interlocutor is the stable identity the
// dialogue engine keys sessions and remembered facts by; it defaults to
// the username at signup and survives later renames.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	Interlocutor string    `gorm:"index;size:64" json:"interlocutor"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
