// hara-wellness-system/services/insight_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hara-wellness-system/models"
)

// InsightClient calls the hosted AI completion gateway for pattern narration.
// Nothing in the progression engine depends on its output; a failure here
// surfaces as a missing insight, never as broken state.
type InsightClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Log     *zap.SugaredLogger
}

func NewInsightClient(baseURL, token string, log *zap.SugaredLogger) *InsightClient {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &InsightClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		Log: log,
	}
}

// EntrySummary is the trimmed view of an entry sent to the gateway.
type EntrySummary struct {
	Timestamp   time.Time `json:"timestamp"`
	Mode        string    `json:"mode"`
	GutFeeling  string    `json:"gut_feeling,omitempty"`
	WillIgnore  string    `json:"will_ignore,omitempty"`
	Decision    string    `json:"decision,omitempty"`
	Consequence string    `json:"consequence,omitempty"`
}

type InsightRequest struct {
	TrustScore int            `json:"trust_score"`
	Streak     int            `json:"streak"`
	Entries    []EntrySummary `json:"entries"`
}

type InsightResponse struct {
	Patterns  string `json:"patterns"`
	TrustNote string `json:"trust_note"`
	Tone      string `json:"tone"`
}

// SummarizeEntries keeps the most recent max entries, oldest first.
func SummarizeEntries(entries []models.CheckInEntry, max int) []EntrySummary {
	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntrySummary{
			Timestamp:   e.Timestamp,
			Mode:        string(e.Mode),
			GutFeeling:  e.GutFeeling,
			WillIgnore:  e.WillIgnore,
			Decision:    e.Decision,
			Consequence: e.Consequence,
		})
	}
	return out
}

// GenerateInsights calls /v1/insights on the AI gateway
func (c *InsightClient) GenerateInsights(in InsightRequest) (*InsightResponse, error) {
	url := fmt.Sprintf("%s/v1/insights", c.BaseURL)

	jsonData, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.Log.Warnw("insight gateway call failed", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("insight generation failed: %d", resp.StatusCode)
	}

	var out InsightResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
