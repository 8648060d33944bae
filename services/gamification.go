package services

import (
	"time"

	"go.uber.org/zap"

	"hara-wellness-system/models"
)

// EntryStatsSource derives achievement statistics from the entry store. The
// engine only ever reads the store through this; it never writes entries.
type EntryStatsSource interface {
	StatsFor(userID string) (models.AchievementStats, error)
}

// GamificationService is the progression engine: streak continuity, XP with
// a floor at zero, and one-time achievement unlocks. Every mutation is a
// single load-evaluate-save pass with "now" captured once from the injected
// clock, so a fixed clock makes the whole engine deterministic.
type GamificationService struct {
	Store ProgressionStore
	Stats EntryStatsSource
	Clock Clock
	Log   *zap.SugaredLogger
}

func NewGamificationService(store ProgressionStore, stats EntryStatsSource, clock Clock, log *zap.SugaredLogger) *GamificationService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GamificationService{Store: store, Stats: stats, Clock: clock, Log: log}
}

// Progression returns the stored record with the streak-decay view applied:
// a streak whose last check-in is older than yesterday reads as 0. The decay
// is not written back — a later check-in on such a day starts counting from
// 1 rather than from a stale persisted value.
func (s *GamificationService) Progression(userID string) (*models.UserProgression, error) {
	prog, err := s.Store.Load(userID)
	if err != nil {
		return nil, err
	}
	applyStreakDecay(prog, Midnight(s.Clock.Now()))
	return prog, nil
}

func applyStreakDecay(prog *models.UserProgression, today time.Time) {
	if prog.CurrentStreak == 0 || prog.LastCheckInDate == nil {
		return
	}
	last := *prog.LastCheckInDate
	if sameDay(last, today) || sameDay(last, today.AddDate(0, 0, -1)) {
		return
	}
	prog.CurrentStreak = 0
}

// RecordCheckIn applies one check-in event: add the XP award, bump the
// check-in counter, advance or reset the streak, re-run the achievement
// evaluator. The whole load-evaluate-save runs inside the store's critical
// section so concurrent check-ins for one user never lose an increment.
func (s *GamificationService) RecordCheckIn(userID string, xpAward int64) (*models.UserProgression, error) {
	now := s.Clock.Now()
	today := Midnight(now)

	prog, err := s.Store.Update(userID, func(prog *models.UserProgression) error {
		applyStreakDecay(prog, today)

		prog.TotalXP += xpAward
		prog.TotalCheckins++

		switch {
		case prog.LastCheckInDate == nil:
			// first-ever check-in
			prog.CurrentStreak = 1
		case sameDay(*prog.LastCheckInDate, today):
			// second+ check-in the same day does not double-count
		case sameDay(*prog.LastCheckInDate, today.AddDate(0, 0, -1)):
			prog.CurrentStreak++
		default:
			// gap of 2+ days, a decayed streak, or a clock moved backward:
			// today counts as a fresh start, not zero
			prog.CurrentStreak = 1
		}
		prog.LastCheckInDate = &today

		s.evaluate(prog, userID, now)

		if prog.TotalXP < 0 {
			prog.TotalXP = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Infow("check-in recorded",
		"user", userID, "xp", prog.TotalXP, "streak", prog.CurrentStreak, "checkins", prog.TotalCheckins)
	return prog, nil
}

// AdjustXP shifts XP by a signed delta, floor-clamped at zero. Streak and
// check-in count are untouched, but the evaluator still runs: achievements
// may depend on counts this call does not change, and the contract is
// re-evaluation on every mutation.
func (s *GamificationService) AdjustXP(userID string, delta int64) (*models.UserProgression, error) {
	now := s.Clock.Now()

	prog, err := s.Store.Update(userID, func(prog *models.UserProgression) error {
		prog.TotalXP += delta
		s.evaluate(prog, userID, now)
		if prog.TotalXP < 0 {
			prog.TotalXP = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Infow("xp adjusted", "user", userID, "delta", delta, "xp", prog.TotalXP)
	return prog, nil
}

func (s *GamificationService) evaluate(prog *models.UserProgression, userID string, now time.Time) {
	stats, err := s.Stats.StatsFor(userID)
	if err != nil {
		// Entry stats are best-effort: record-derived predicates still run,
		// and threshold-crossing semantics let a missed unlock land on the
		// next mutation.
		s.Log.Warnw("entry stats unavailable", "user", userID, "err", err)
		stats = models.AchievementStats{}
	}
	for _, g := range EvaluateAchievements(prog, stats, now) {
		s.Log.Infow("achievement unlocked", "user", userID, "code", g.Code, "xp", g.XP)
	}
}
