// services/scheduler.go
package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hara-wellness-system/models"
)

// Reminders are sent during this local hour of the user's evening.
const reminderLocalHour = 18

// ReminderService nudges users whose streak ends today without a check-in
// (last check-in was yesterday and the streak is still alive). Delivery is
// fire-and-forget: the engine never waits on it.
type ReminderService struct {
	DB         *gorm.DB
	Clock      Clock
	WebhookURL string // empty disables delivery; reminders are still logged
	Log        *zap.SugaredLogger
}

func NewReminderService(db *gorm.DB, clock Clock, webhookURL string, log *zap.SugaredLogger) *ReminderService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReminderService{DB: db, Clock: clock, WebhookURL: webhookURL, Log: log}
}

func (s *ReminderService) StartReminderScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Hourly: catch each user's local evening as the world turns
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			s.RunOnce()
		}),
	)
}

// RunOnce scans for at-risk streaks and notifies users in their local evening.
// Whether the streak ends "today" is decided on each user's own calendar: the
// coarse SQL window only trims the scan, the per-user timezone does the
// deciding.
func (s *ReminderService) RunOnce() {
	now := s.Clock.Now()
	windowStart := Midnight(now).AddDate(0, 0, -2)

	var candidates []models.UserProgression
	if err := s.DB.Where("current_streak > 0 AND last_check_in_date >= ?", windowStart).
		Find(&candidates).Error; err != nil {
		s.Log.Errorw("streak-risk scan failed", "err", err)
		return
	}

	for _, prog := range candidates {
		if prog.LastCheckInDate == nil {
			continue
		}
		tz := ""
		var profile models.ProfileMirror
		err := s.DB.Where("external_user_id = ?", prog.ExternalUserID).First(&profile).Error
		if err == nil {
			if !profile.RemindersEnabled {
				continue
			}
			tz = profile.Timezone
		}
		localNow := now.In(userLocation(tz))
		if localNow.Hour() != reminderLocalHour {
			continue
		}
		if !streakEndsToday(*prog.LastCheckInDate, localNow) {
			continue
		}
		s.notify(prog)
	}
}

func userLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// streakEndsToday reports whether the last check-in's calendar date is the
// day before localNow's — the streak survives until local midnight and no
// longer.
func streakEndsToday(last, localNow time.Time) bool {
	y1, m1, d1 := last.Date()
	y2, m2, d2 := localNow.AddDate(0, 0, -1).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (s *ReminderService) notify(prog models.UserProgression) {
	s.Log.Infow("streak at risk, sending reminder",
		"user", prog.ExternalUserID, "streak", prog.CurrentStreak)

	if s.WebhookURL == "" {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"type":    "streak_reminder",
		"user_id": prog.ExternalUserID,
		"streak":  prog.CurrentStreak,
	})

	go func() {
		resp, err := http.Post(s.WebhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			s.Log.Warnw("reminder delivery failed", "user", prog.ExternalUserID, "err", err)
			return
		}
		resp.Body.Close()
	}()
}
