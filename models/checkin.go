package models

import (
	"time"
)

// CheckInMode distinguishes how an entry was captured.
type CheckInMode string

const (
	ModeTap   CheckInMode = "tap"
	ModeVoice CheckInMode = "voice"
)

// GutFeeling answers
const (
	GutYes   = "yes"
	GutNo    = "no"
	GutPause = "pause"
)

// WillIgnore answers — "no" means the user chose to honor their gut.
const (
	IgnoreYes     = "yes"
	IgnoreNo      = "no"
	IgnoreNotSure = "not-sure"
)

// XP granted at entry creation, decided by whether the gut was honored.
const (
	CheckInBaseXP    int64 = 5
	CheckInHonoredXP int64 = 10
)

// CheckInEntry is one gut check-in event. Append-only from the engine's
// perspective; the UI may delete an entry or fill in Consequence later, and
// achievement statistics must tolerate both.
type CheckInEntry struct {
	ID             string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string      `gorm:"index;not null" json:"external_user_id"`
	Timestamp      time.Time   `gorm:"not null" json:"timestamp"` // set at creation, never mutated
	Mode           CheckInMode `gorm:"type:varchar(8);not null" json:"mode"`

	GutFeeling string `gorm:"type:varchar(8)" json:"gut_feeling,omitempty"`
	WillIgnore string `gorm:"type:varchar(8)" json:"will_ignore,omitempty"`

	// Free text, sanitized at the store boundary.
	Decision    string `gorm:"type:text" json:"decision,omitempty"`
	Consequence string `gorm:"type:text" json:"consequence,omitempty"` // observed outcome, added later

	// Voice mode only: R2 URL of the uploaded recording.
	VoiceNoteURL string `gorm:"type:text" json:"voice_note_url,omitempty"`

	XP int64 `json:"xp"`

	Timestamps
}

// Honored reports whether the user chose not to ignore their gut.
func (e *CheckInEntry) Honored() bool {
	return e.WillIgnore == IgnoreNo
}

// HasDecision reports whether the entry tracks an intended action.
func (e *CheckInEntry) HasDecision() bool {
	return e.Decision != ""
}

// CheckInXP returns the XP for a new entry: honored gut feelings earn double.
func CheckInXP(willIgnore string) int64 {
	if willIgnore == IgnoreNo {
		return CheckInHonoredXP
	}
	return CheckInBaseXP
}
