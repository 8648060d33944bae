// workers/portfolio_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hara-wellness-system/models"
	"hara-wellness-system/utils"
)

// PortfolioSyncClient pulls investment/net-worth snapshots from the hosted
// backend into the local mirror that feeds the life-buffer endpoint.
type PortfolioSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPortfolioSyncClient(db *gorm.DB) *PortfolioSyncClient {
	baseURL := os.Getenv("SYNC_SERVICE_URL")
	if baseURL == "" {
		utils.Sugar.Fatal("SYNC_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("HARA_SERVICE_TOKEN")
	if token == "" {
		utils.Sugar.Fatal("HARA_SERVICE_TOKEN environment variable is required for portfolio sync")
	}

	return &PortfolioSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *PortfolioSyncClient) GetChangedPortfolios(ctx context.Context, since time.Time) ([]models.PortfolioMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/portfolios", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Portfolios []models.PortfolioMirror `json:"portfolios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}

	return response.Portfolios, nil
}

// PollPortfolios persists snapshot changes into portfolio_mirror on a ticker.
func PollPortfolios(ctx context.Context, client *PortfolioSyncClient, pollInterval time.Duration) {
	utils.Sugar.Info("starting portfolio polling")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Sugar.Info("portfolio polling stopped")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			portfolios, err := client.GetChangedPortfolios(ctx, lastSyncTime)
			if err != nil {
				utils.Sugar.Errorw("portfolio poll failed", "err", err)
				continue
			}
			if len(portfolios) == 0 {
				continue
			}

			// Bulk upsert in one statement; user_id is the conflict target.
			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"currency",
						"net_worth",
						"monthly_income",
						"monthly_expenses",
						"snapshot_at",
						"created_at",
						"updated_at",
					}),
				},
			).Create(&portfolios).Error; err != nil {
				utils.Sugar.Errorw("failed to upsert portfolio mirrors", "count", len(portfolios), "err", err)
				// Do NOT advance lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			utils.Sugar.Infow("portfolio mirrors upserted", "count", len(portfolios))
		}
	}
}
