package services

// Cumulative XP required to reach levels 1..11.
var levelThresholds = []int64{0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500, 10000}

// Flavor labels per level; levels past the table reuse the last label.
var levelNames = []string{
	"Curious",
	"Listener",
	"Noticer",
	"Decision Tracker",
	"Pattern Seeker",
	"Attuned",
	"Intuitive",
	"Trusted Gut",
	"Inner Sage",
	"Hara Master",
}

// Synthesized gap between levels once the threshold table runs out, so
// progression never divides by zero or stalls.
const beyondTableXPGap = 2000

// LevelInfo is a pure derived view over total XP; nothing here is persisted.
// ProgressPercent is unclamped — callers clamp to [0,100] for display.
type LevelInfo struct {
	Level           int     `json:"level"`
	LevelName       string  `json:"level_name"`
	CurrentLevelXP  int64   `json:"current_level_xp"`
	NextLevelXP     int64   `json:"next_level_xp"`
	ProgressPercent float64 `json:"progress_percent"`
}

// LevelOf maps total XP onto the level curve: the level is the highest entry
// of the threshold table the XP has reached.
func LevelOf(xp int64) LevelInfo {
	level := 1
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if xp >= levelThresholds[i] {
			level = i + 1
			break
		}
	}

	current := levelThresholds[level-1]
	next := current + beyondTableXPGap
	if level < len(levelThresholds) {
		next = levelThresholds[level]
	}

	name := levelNames[len(levelNames)-1]
	if level <= len(levelNames) {
		name = levelNames[level-1]
	}

	return LevelInfo{
		Level:           level,
		LevelName:       name,
		CurrentLevelXP:  current,
		NextLevelXP:     next,
		ProgressPercent: float64(xp-current) / float64(next-current) * 100,
	}
}

// ClampPercent bounds a progress percentage to [0,100] for display.
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
