package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type (
	// RetrospectiveDiary is a diary surfaced in the look-back summary.
	RetrospectiveDiary struct {
		DiaryID   string  `json:"diary_id"`
		EventID   string  `json:"event_id"`
		Title     string  `json:"title"`
		Date      string  `json:"date"`
		Amount    float64 `json:"amount"`
		Sentiment int     `json:"sentiment"`
		Content   string  `json:"content"`
	}

	// RetrospectiveEvent is an event ranked by happy money over the period.
	RetrospectiveEvent struct {
		EventID   string  `json:"event_id"`
		Title     string  `json:"title"`
		Date      string  `json:"date"`
		Amount    float64 `json:"amount"`
		Sentiment int     `json:"sentiment"`
		HasDiary  bool    `json:"has_diary"`
		DiaryID   *string `json:"diary_id,omitempty"`
	}

	EmotionBucket struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}

	// RetrospectiveSummary is the server-computed look-back over recent
	// months.
	RetrospectiveSummary struct {
		HappyMoneyTop3Diaries   []RetrospectiveDiary `json:"happy_money_top3_diaries"`
		HappyMoneyWorst3Diaries []RetrospectiveDiary `json:"happy_money_worst3_diaries"`
		YearlyHappyMoneyTop3    []RetrospectiveEvent `json:"yearly_happy_money_top3"`
		YearlyHappyMoneyWorst3  []RetrospectiveEvent `json:"yearly_happy_money_worst3"`
		EmotionBuckets          []EmotionBucket      `json:"emotion_buckets"`
	}
)

// RetrospectiveSummary fetches the server's look-back summary covering the
// given number of months.
func (c *Client) RetrospectiveSummary(ctx context.Context, months int) (RetrospectiveSummary, error) {
	query := url.Values{}
	if months > 0 {
		query.Set("months", strconv.Itoa(months))
	}

	var summary RetrospectiveSummary
	if err := c.doResilient(ctx, http.MethodGet, "/retrospective/summary", query, nil, &summary); err != nil {
		return RetrospectiveSummary{}, err
	}
	return summary, nil
}
