package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileMirror is a local snapshot of user data needed for check-ins and
// reminders. Owned and managed solely by this service; populated via sync
// worker from the profile service's user table.
type ProfileMirror struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	Email          string  `json:"email,omitempty"`
	DisplayName    *string `json:"display_name,omitempty"`

	// IANA zone name; streak dates and reminder hours are local to the user.
	Timezone string `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`

	RemindersEnabled bool `gorm:"default:true" json:"reminders_enabled"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
