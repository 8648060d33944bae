package models

import (
	"time"
)

// AchievementStats are entry-derived counters the evaluator consumes. They are
// computed from the entry store by the caller, never fetched by the evaluator
// itself, and every predicate must evaluate safely when all counts are zero.
type AchievementStats struct {
	HonoredCount       int64 `json:"honored_count"`       // entries with will_ignore == "no"
	DecisionsTracked   int64 `json:"decisions_tracked"`   // entries with a non-empty decision
	ConsequencesLogged int64 `json:"consequences_logged"` // entries with a non-empty consequence
}

// AchievementDefinition: static config (not persisted). The set may be
// extended without changing the evaluator's contract.
type AchievementDefinition struct {
	Code        string // e.g., "first_listen", "streak_3"
	Name        string
	Description string
	Icon        string
	XP          int64
	Unlocked    func(prog *UserProgression, stats AchievementStats) bool
}

// AchievementGrant: unlocked instance. A code may appear at most once per
// progression record (idempotent unlock).
type AchievementGrant struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProgressionID string    `gorm:"uniqueIndex:idx_grant_once;not null" json:"-"`
	Code          string    `gorm:"uniqueIndex:idx_grant_once;not null" json:"code"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	XP            int64     `json:"xp"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// AchievementDefinitions are evaluated in order. Predicates use threshold
// crossing (>=) rather than exact equality so a counter that jumps past its
// threshold (bulk edits, deleted and re-added entries) still unlocks; the
// existing-code check is the sole idempotence guard.
var AchievementDefinitions = []AchievementDefinition{
	{
		Code:        "first_listen",
		Name:        "First Listen",
		Description: "Completed your first gut check-in",
		Icon:        "👂",
		XP:          10,
		Unlocked: func(p *UserProgression, _ AchievementStats) bool {
			return p.TotalCheckins >= 1
		},
	},
	{
		Code:        "streak_3",
		Name:        "Tuning In",
		Description: "Checked in 3 days in a row",
		Icon:        "🔥",
		XP:          30,
		Unlocked: func(p *UserProgression, _ AchievementStats) bool {
			return p.CurrentStreak >= 3
		},
	},
	{
		Code:        "first_decision",
		Name:        "On Record",
		Description: "Tracked your first decision",
		Icon:        "🎯",
		XP:          15,
		Unlocked: func(_ *UserProgression, s AchievementStats) bool {
			return s.DecisionsTracked >= 1
		},
	},
	{
		Code:        "outcomes_5",
		Name:        "Pattern Spotter",
		Description: "Logged the outcome of 5 decisions",
		Icon:        "📊",
		XP:          40,
		Unlocked: func(_ *UserProgression, s AchievementStats) bool {
			return s.ConsequencesLogged >= 5
		},
	},
	{
		Code:        "first_trust",
		Name:        "Leap of Faith",
		Description: "Honored your gut feeling for the first time",
		Icon:        "💚",
		XP:          15,
		Unlocked: func(_ *UserProgression, s AchievementStats) bool {
			return s.HonoredCount >= 1
		},
	},
	{
		Code:        "trust_5",
		Name:        "Gut Ally",
		Description: "Honored your gut feeling 5 times",
		Icon:        "🤝",
		XP:          25,
		Unlocked: func(_ *UserProgression, s AchievementStats) bool {
			return s.HonoredCount >= 5
		},
	},
	{
		Code:        "trust_15",
		Name:        "Inner Compass",
		Description: "Honored your gut feeling 15 times",
		Icon:        "🧭",
		XP:          75,
		Unlocked: func(_ *UserProgression, s AchievementStats) bool {
			return s.HonoredCount >= 15
		},
	},
}
