package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hara-wellness-system/models"
)

// ProgressionStore persists the single progression record per user. The
// engine is written against this interface so tests can supply an in-memory
// fake instead of touching real persistence.
type ProgressionStore interface {
	// Load returns the stored record, or a zero-default record if none
	// exists yet (first run, or an out-of-band wipe). Streak decay is the
	// engine's read-time concern, never the store's.
	Load(userID string) (*models.UserProgression, error)

	// Update runs fn against the current record and persists the result,
	// all as one critical section: two concurrent Updates for the same
	// user serialize instead of overwriting each other's counters.
	Update(userID string, fn func(*models.UserProgression) error) (*models.UserProgression, error)
}

// GormProgressionStore keeps progression records in Postgres.
type GormProgressionStore struct {
	DB *gorm.DB
}

func NewGormProgressionStore(db *gorm.DB) *GormProgressionStore {
	return &GormProgressionStore{DB: db}
}

func (s *GormProgressionStore) Load(userID string) (*models.UserProgression, error) {
	var prog models.UserProgression
	err := s.DB.Preload("Achievements", func(db *gorm.DB) *gorm.DB {
		return db.Order("unlocked_at ASC")
	}).Where("external_user_id = ?", userID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Lazy creation: defaults are not written until the first mutation.
		return &models.UserProgression{ExternalUserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

func (s *GormProgressionStore) Update(userID string, fn func(*models.UserProgression) error) (*models.UserProgression, error) {
	var out *models.UserProgression
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		prog, err := lockProgression(tx, userID)
		if err != nil {
			return err
		}
		if err := fn(prog); err != nil {
			return err
		}
		if err := persistLocked(tx, prog); err != nil {
			return err
		}
		out = prog
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lockProgression loads the record under FOR UPDATE so concurrent mutations
// for the same user serialize on the row. A missing row is seeded first; the
// OnConflict guard makes two racing first writers converge on one row, and
// both then contend on the re-select.
func lockProgression(tx *gorm.DB, userID string) (*models.UserProgression, error) {
	load := func() (*models.UserProgression, error) {
		var prog models.UserProgression
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", userID).First(&prog).Error
		if err != nil {
			return nil, err
		}
		err = tx.Where("progression_id = ?", prog.ID).
			Order("unlocked_at ASC").Find(&prog.Achievements).Error
		return &prog, err
	}

	prog, err := load()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := models.UserProgression{ID: uuid.NewString(), ExternalUserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, err
		}
		return load()
	}
	return prog, err
}

func persistLocked(tx *gorm.DB, prog *models.UserProgression) error {
	for i := range prog.Achievements {
		g := &prog.Achievements[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.ProgressionID = prog.ID
	}

	if err := tx.Model(prog).Updates(map[string]interface{}{
		"total_xp":           prog.TotalXP,
		"total_checkins":     prog.TotalCheckins,
		"current_streak":     prog.CurrentStreak,
		"last_check_in_date": prog.LastCheckInDate,
	}).Error; err != nil {
		return err
	}

	if len(prog.Achievements) == 0 {
		return nil
	}
	// Already-granted codes are left untouched; the unique
	// (progression_id, code) index makes re-insertion a no-op.
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&prog.Achievements).Error
}
