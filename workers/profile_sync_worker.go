// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hara-wellness-system/models"
	"hara-wellness-system/utils"
)

// MirroredProfile matches the JSON response from the profile service.
type MirroredProfile struct {
	ID               string    `json:"id"`
	ExternalID       string    `json:"external_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	DisplayName      *string   `json:"display_name,omitempty"`
	Timezone         string    `json:"timezone"`
	RemindersEnabled bool      `json:"reminders_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the profile service response.
type GetProfileChangesResponse struct {
	Profiles []MirroredProfile `json:"profiles"`
}

// ProfileSyncWorker keeps profile_mirrors fresh so reminder scheduling has
// each user's timezone and opt-out preference without calling the profile
// service on the hot path.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	utils.Sugar.Info("starting profile sync worker (profile service -> profile_mirrors)")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		utils.Sugar.Warnw("initial profile sync failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				utils.Sugar.Errorw("profile sync batch failed", "err", err)
			}
		case <-ctx.Done():
			utils.Sugar.Info("profile sync worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror table.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM profile_mirrors WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes and upserts them into profile_mirrors.
func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return nil
	}

	var upsertCount, errorCount int
	for _, remote := range response.Profiles {
		tz := remote.Timezone
		if tz == "" {
			tz = "UTC"
		}
		local := models.ProfileMirror{
			ExternalUserID:   remote.ExternalID,
			Username:         remote.Username,
			Email:            remote.Email,
			DisplayName:      remote.DisplayName,
			Timezone:         tz,
			RemindersEnabled: remote.RemindersEnabled,
			CreatedAt:        remote.CreatedAt,
			UpdatedAt:        remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "display_name", "timezone",
				"reminders_enabled", "created_at", "updated_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			utils.Sugar.Warnw("failed to upsert profile mirror",
				"external_id", remote.ExternalID, "err", err)
		} else {
			upsertCount++
		}
	}

	utils.Sugar.Infow("profile sync batch done",
		"received", len(response.Profiles), "upserted", upsertCount, "errors", errorCount)
	return nil
}
