package services_test

import (
	"sync"
	"testing"
	"time"

	"hara-wellness-system/models"
	"hara-wellness-system/services"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

// fakeStore copies on every load so engine mutations only reach "storage"
// through a committed Update, and serializes Updates under a mutex the way
// the row lock does against Postgres.
type fakeStore struct {
	mu    sync.Mutex
	prog  *models.UserProgression
	saves int
}

func (s *fakeStore) snapshot(userID string) *models.UserProgression {
	if s.prog == nil {
		return &models.UserProgression{ExternalUserID: userID}
	}
	return cloneProgression(s.prog)
}

func (s *fakeStore) Load(userID string) (*models.UserProgression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(userID), nil
}

func (s *fakeStore) Update(userID string, fn func(*models.UserProgression) error) (*models.UserProgression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prog := s.snapshot(userID)
	if err := fn(prog); err != nil {
		return nil, err
	}
	s.prog = cloneProgression(prog)
	s.saves++
	return prog, nil
}

func cloneProgression(p *models.UserProgression) *models.UserProgression {
	cp := *p
	cp.Achievements = append([]models.AchievementGrant(nil), p.Achievements...)
	if p.LastCheckInDate != nil {
		d := *p.LastCheckInDate
		cp.LastCheckInDate = &d
	}
	return &cp
}

type fakeStats struct{ stats models.AchievementStats }

func (s *fakeStats) StatsFor(string) (models.AchievementStats, error) { return s.stats, nil }

var day1 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newEngine(start time.Time) (*services.GamificationService, *fakeStore, *fakeStats, *fakeClock) {
	store := &fakeStore{}
	stats := &fakeStats{}
	clock := &fakeClock{now: start}
	return services.NewGamificationService(store, stats, clock, nil), store, stats, clock
}

func TestFirstCheckIn(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	prog, err := engine.RecordCheckIn("user-1", 10)
	if err != nil {
		t.Fatalf("RecordCheckIn: %v", err)
	}

	// 10 awarded + 10 from the first-check-in achievement
	if prog.TotalXP != 20 {
		t.Errorf("TotalXP = %d, want 20", prog.TotalXP)
	}
	if prog.TotalCheckins != 1 {
		t.Errorf("TotalCheckins = %d, want 1", prog.TotalCheckins)
	}
	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", prog.CurrentStreak)
	}
	if !prog.HasAchievement("first_listen") {
		t.Error("first_listen achievement not granted")
	}
	for _, g := range prog.Achievements {
		if g.Code == "first_listen" && g.XP != 10 {
			t.Errorf("first_listen XP = %d, want 10", g.XP)
		}
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want exactly 1 write per operation", store.saves)
	}
}

func TestThreeDayStreak(t *testing.T) {
	engine, _, _, clock := newEngine(day1)

	var prog *models.UserProgression
	var err error
	for i := 0; i < 3; i++ {
		clock.now = day1.AddDate(0, 0, i)
		if prog, err = engine.RecordCheckIn("user-1", 5); err != nil {
			t.Fatalf("RecordCheckIn day %d: %v", i+1, err)
		}
	}

	if prog.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", prog.CurrentStreak)
	}
	if prog.TotalCheckins != 3 {
		t.Errorf("TotalCheckins = %d, want 3", prog.TotalCheckins)
	}
	streakGrants := 0
	for _, g := range prog.Achievements {
		if g.Code == "streak_3" {
			streakGrants++
			if g.XP != 30 {
				t.Errorf("streak_3 XP = %d, want 30", g.XP)
			}
		}
	}
	if streakGrants != 1 {
		t.Errorf("streak_3 granted %d times, want once", streakGrants)
	}
	// 3×5 awarded + 10 (first_listen) + 30 (streak_3)
	if prog.TotalXP != 55 {
		t.Errorf("TotalXP = %d, want 55", prog.TotalXP)
	}
}

func TestSameDayDoesNotDoubleCountStreak(t *testing.T) {
	engine, _, _, clock := newEngine(day1)

	if _, err := engine.RecordCheckIn("user-1", 5); err != nil {
		t.Fatal(err)
	}
	clock.now = day1.Add(6 * time.Hour)
	prog, err := engine.RecordCheckIn("user-1", 5)
	if err != nil {
		t.Fatal(err)
	}

	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after same-day check-ins", prog.CurrentStreak)
	}
	if prog.TotalCheckins != 2 {
		t.Errorf("TotalCheckins = %d, want 2", prog.TotalCheckins)
	}
	// both awards count: 5 + 10 (first_listen) + 5
	if prog.TotalXP != 20 {
		t.Errorf("TotalXP = %d, want 20", prog.TotalXP)
	}
}

func TestStreakGapResetsToOne(t *testing.T) {
	engine, _, _, clock := newEngine(day1)

	engine.RecordCheckIn("user-1", 5)
	clock.now = day1.AddDate(0, 0, 1)
	engine.RecordCheckIn("user-1", 5)

	// skip two days
	clock.now = day1.AddDate(0, 0, 4)
	prog, err := engine.RecordCheckIn("user-1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want fresh start of 1 after a gap", prog.CurrentStreak)
	}

	// counting continues from there
	clock.now = day1.AddDate(0, 0, 5)
	prog, _ = engine.RecordCheckIn("user-1", 5)
	if prog.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2 the day after the reset", prog.CurrentStreak)
	}
}

func TestStreakDecayIsReadTimeOnly(t *testing.T) {
	engine, store, _, clock := newEngine(day1)

	engine.RecordCheckIn("user-1", 5)
	savesAfterCheckIn := store.saves

	clock.now = day1.AddDate(0, 0, 3)
	prog, err := engine.Progression("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if prog.CurrentStreak != 0 {
		t.Errorf("decayed view CurrentStreak = %d, want 0", prog.CurrentStreak)
	}
	if store.saves != savesAfterCheckIn {
		t.Error("Progression() wrote to the store; decay must stay a read-time view")
	}
	if store.prog.CurrentStreak != 1 {
		t.Errorf("persisted CurrentStreak = %d, want untouched 1", store.prog.CurrentStreak)
	}

	// a check-in on the already-broken day starts from 1, not 2
	prog, _ = engine.RecordCheckIn("user-1", 5)
	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after decayed restart", prog.CurrentStreak)
	}
}

func TestIdempotentLoad(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	engine.RecordCheckIn("user-1", 10)
	saves := store.saves

	a, err := engine.Progression("user-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := engine.Progression("user-1")
	if err != nil {
		t.Fatal(err)
	}

	if a.TotalXP != b.TotalXP || a.CurrentStreak != b.CurrentStreak ||
		a.TotalCheckins != b.TotalCheckins || len(a.Achievements) != len(b.Achievements) {
		t.Errorf("back-to-back loads differ: %+v vs %+v", a, b)
	}
	if store.saves != saves {
		t.Error("load wrote to the store")
	}
}

func TestAdjustXPFloor(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	// seed a record holding 3 XP with its unlocks already granted
	store.prog = &models.UserProgression{
		ExternalUserID: "user-1",
		TotalXP:        3,
		TotalCheckins:  1,
		Achievements: []models.AchievementGrant{
			{Code: "first_listen", Name: "First Listen", XP: 10, UnlockedAt: day1},
		},
	}

	prog, err := engine.AdjustXP("user-1", -5)
	if err != nil {
		t.Fatalf("AdjustXP: %v", err)
	}
	if prog.TotalXP != 0 {
		t.Errorf("TotalXP = %d, want floor-clamped 0", prog.TotalXP)
	}

	// repeated negative deltas never push below zero
	for i := 0; i < 5; i++ {
		if prog, err = engine.AdjustXP("user-1", -100); err != nil {
			t.Fatal(err)
		}
	}
	if prog.TotalXP != 0 {
		t.Errorf("TotalXP = %d after repeated negative deltas, want 0", prog.TotalXP)
	}
}

func TestAdjustXPLeavesStreakAndCountAlone(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	yesterday := services.Midnight(day1).AddDate(0, 0, -1)
	store.prog = &models.UserProgression{
		ExternalUserID:  "user-1",
		TotalXP:         50,
		TotalCheckins:   2,
		CurrentStreak:   2,
		LastCheckInDate: &yesterday,
		Achievements: []models.AchievementGrant{
			{Code: "first_listen", XP: 10, UnlockedAt: day1},
		},
	}

	prog, err := engine.AdjustXP("user-1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if prog.TotalXP != 55 {
		t.Errorf("TotalXP = %d, want 55", prog.TotalXP)
	}
	if prog.CurrentStreak != 2 || prog.TotalCheckins != 2 {
		t.Errorf("streak/count changed: streak=%d count=%d, want 2/2",
			prog.CurrentStreak, prog.TotalCheckins)
	}
}

func TestAdjustXPStillEvaluatesAchievements(t *testing.T) {
	engine, _, stats, _ := newEngine(day1)

	stats.stats = models.AchievementStats{ConsequencesLogged: 5}

	prog, err := engine.AdjustXP("user-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !prog.HasAchievement("outcomes_5") {
		t.Error("outcomes_5 not granted on AdjustXP re-evaluation")
	}
	if prog.TotalXP != 40 {
		t.Errorf("TotalXP = %d, want 40 from the outcomes_5 reward", prog.TotalXP)
	}
}

func TestConcurrentCheckInsLoseNoIncrements(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.RecordCheckIn("user-1", 5); err != nil {
				t.Errorf("RecordCheckIn: %v", err)
			}
		}()
	}
	wg.Wait()

	prog, err := engine.Progression("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if prog.TotalCheckins != writers {
		t.Errorf("TotalCheckins = %d, want %d; a concurrent writer overwrote an increment",
			prog.TotalCheckins, writers)
	}
	// writers×5 awarded + 10 from first_listen, granted exactly once
	if prog.TotalXP != writers*5+10 {
		t.Errorf("TotalXP = %d, want %d", prog.TotalXP, writers*5+10)
	}
	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 for same-day check-ins", prog.CurrentStreak)
	}
	grants := 0
	for _, g := range store.prog.Achievements {
		if g.Code == "first_listen" {
			grants++
		}
	}
	if grants != 1 {
		t.Errorf("first_listen granted %d times, want once", grants)
	}
}

func TestClockMovedBackward(t *testing.T) {
	engine, store, _, _ := newEngine(day1)

	future := services.Midnight(day1).AddDate(0, 0, 2)
	store.prog = &models.UserProgression{
		ExternalUserID:  "user-1",
		TotalXP:         100,
		TotalCheckins:   5,
		CurrentStreak:   5,
		LastCheckInDate: &future,
		Achievements: []models.AchievementGrant{
			{Code: "first_listen", XP: 10, UnlockedAt: day1},
			{Code: "streak_3", XP: 30, UnlockedAt: day1},
		},
	}

	// a last check-in "after" today fails the consecutive-day check and
	// falls through to a fresh start, not a crash
	prog, err := engine.RecordCheckIn("user-1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if prog.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after backwards clock", prog.CurrentStreak)
	}
}
