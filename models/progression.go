package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgression tracks gamified progression for each user (denormalized for performance)
type UserProgression struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	TotalXP       int64 `json:"total_xp" gorm:"default:0"`
	TotalCheckins int64 `json:"total_checkins" gorm:"default:0"`

	// Count of consecutive calendar days with at least one check-in.
	// Decays to 0 on read when LastCheckInDate is older than yesterday.
	CurrentStreak int `json:"current_streak" gorm:"default:0"`

	// Calendar date (local midnight, no time-of-day) of the most recent check-in.
	LastCheckInDate *time.Time `json:"last_check_in_date,omitempty"`

	Achievements []AchievementGrant `json:"achievements" gorm:"foreignKey:ProgressionID"`

	Timestamps
}

// HasAchievement reports whether the achievement code is already unlocked.
func (p *UserProgression) HasAchievement(code string) bool {
	for _, a := range p.Achievements {
		if a.Code == code {
			return true
		}
	}
	return false
}

// RecentAchievements returns the n most recently unlocked grants, newest first.
func (p *UserProgression) RecentAchievements(n int) []AchievementGrant {
	grants := make([]AchievementGrant, len(p.Achievements))
	copy(grants, p.Achievements)
	for i, j := 0, len(grants)-1; i < j; i, j = i+1, j-1 {
		grants[i], grants[j] = grants[j], grants[i]
	}
	if n > 0 && len(grants) > n {
		grants = grants[:n]
	}
	return grants
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
