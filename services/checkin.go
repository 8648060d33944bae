package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hara-wellness-system/models"
)

var (
	ErrInvalidCheckIn = errors.New("invalid check-in payload")
	ErrEntryNotFound  = errors.New("check-in entry not found")
	ErrNotVoiceEntry  = errors.New("entry was not captured in voice mode")
)

// NewCheckIn is the validated shape a check-in flow submits.
type NewCheckIn struct {
	Mode       models.CheckInMode `json:"mode"`
	GutFeeling string             `json:"gut_feeling"`
	WillIgnore string             `json:"will_ignore"`
	Decision   string             `json:"decision"`
}

// CheckInService owns the entry store: append, list, consequence updates,
// deletion, and the derived statistics the gamification engine consumes.
// Free-text fields are sanitized here, at the store boundary.
type CheckInService struct {
	DB       *gorm.DB
	Clock    Clock
	Log      *zap.SugaredLogger
	sanitize *bluemonday.Policy
}

func NewCheckInService(db *gorm.DB, clock Clock, log *zap.SugaredLogger) *CheckInService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CheckInService{
		DB:       db,
		Clock:    clock,
		Log:      log,
		sanitize: bluemonday.StrictPolicy(),
	}
}

func validateCheckIn(in NewCheckIn) error {
	switch in.Mode {
	case models.ModeTap, models.ModeVoice:
	default:
		return ErrInvalidCheckIn
	}
	switch in.GutFeeling {
	case "", models.GutYes, models.GutNo, models.GutPause:
	default:
		return ErrInvalidCheckIn
	}
	switch in.WillIgnore {
	case "", models.IgnoreYes, models.IgnoreNo, models.IgnoreNotSure:
	default:
		return ErrInvalidCheckIn
	}
	return nil
}

// CreateEntry validates and appends one entry. The entry's XP is decided
// here — honored gut feelings earn double — and never changes afterwards.
func (s *CheckInService) CreateEntry(userID string, in NewCheckIn) (*models.CheckInEntry, error) {
	if err := validateCheckIn(in); err != nil {
		return nil, err
	}

	entry := &models.CheckInEntry{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Timestamp:      s.Clock.Now(),
		Mode:           in.Mode,
		GutFeeling:     in.GutFeeling,
		WillIgnore:     in.WillIgnore,
		Decision:       s.sanitize.Sanitize(in.Decision),
		XP:             models.CheckInXP(in.WillIgnore),
	}
	if err := s.DB.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns the user's entries in insertion order.
func (s *CheckInService) ListEntries(userID string) ([]models.CheckInEntry, error) {
	var entries []models.CheckInEntry
	err := s.DB.Where("external_user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (s *CheckInService) GetEntry(userID, entryID string) (*models.CheckInEntry, error) {
	var entry models.CheckInEntry
	err := s.DB.Where("id = ? AND external_user_id = ?", entryID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LogConsequence records the observed outcome of an entry's decision,
// possibly long after the entry was created.
func (s *CheckInService) LogConsequence(userID, entryID, text string) (*models.CheckInEntry, error) {
	entry, err := s.GetEntry(userID, entryID)
	if err != nil {
		return nil, err
	}
	entry.Consequence = s.sanitize.Sanitize(text)
	if err := s.DB.Model(entry).Update("consequence", entry.Consequence).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// AttachVoiceNote stores the uploaded recording's URL on a voice entry.
func (s *CheckInService) AttachVoiceNote(userID, entryID, url string) (*models.CheckInEntry, error) {
	entry, err := s.GetEntry(userID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Mode != models.ModeVoice {
		return nil, ErrNotVoiceEntry
	}
	entry.VoiceNoteURL = url
	if err := s.DB.Model(entry).Update("voice_note_url", url).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes an entry. Progression already earned from it is kept;
// achievement statistics simply see a smaller entry set afterwards.
func (s *CheckInService) DeleteEntry(userID, entryID string) error {
	res := s.DB.Where("id = ? AND external_user_id = ?", entryID, userID).
		Delete(&models.CheckInEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// StatsFor implements EntryStatsSource for the gamification engine.
func (s *CheckInService) StatsFor(userID string) (models.AchievementStats, error) {
	var stats models.AchievementStats
	base := func() *gorm.DB {
		return s.DB.Model(&models.CheckInEntry{}).Where("external_user_id = ?", userID)
	}
	if err := base().Where("will_ignore = ?", models.IgnoreNo).Count(&stats.HonoredCount).Error; err != nil {
		return stats, err
	}
	if err := base().Where("decision <> ''").Count(&stats.DecisionsTracked).Error; err != nil {
		return stats, err
	}
	if err := base().Where("consequence <> ''").Count(&stats.ConsequencesLogged).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// DecisionCounts returns honored vs. decision-bearing totals for the trust
// score. A decision-bearing entry is one with any will-ignore answer set.
func (s *CheckInService) DecisionCounts(userID string) (honored, totalDecisions int64, err error) {
	base := func() *gorm.DB {
		return s.DB.Model(&models.CheckInEntry{}).Where("external_user_id = ?", userID)
	}
	if err = base().Where("will_ignore <> ''").Count(&totalDecisions).Error; err != nil {
		return 0, 0, err
	}
	if err = base().Where("will_ignore = ?", models.IgnoreNo).Count(&honored).Error; err != nil {
		return 0, 0, err
	}
	return honored, totalDecisions, nil
}
