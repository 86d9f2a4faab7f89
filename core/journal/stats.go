package journal

import (
	"strings"
	"time"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/sentiment"
)

const (
	// StatsWindow is the number of most recent entries Stats looks at.
	StatsWindow = 30

	negativeStreak = 5
	streakAlert    = "5 consecutive negative sentiments detected."
)

var recommendations = []string{
	"Consider talking to a counselor or therapist.",
	"Try journaling your thoughts and emotions daily.",
	"Engage in relaxing activities: meditation, yoga, or a walk.",
	"Reach out to friends or family for support.",
	"Review your recent stressors and create an action plan.",
}

type (
	TrendPoint struct {
		Date  time.Time       `json:"date"`
		Score float64         `json:"score"`
		Label sentiment.Label `json:"label"`
	}

	Stats struct {
		Trend           []TrendPoint            `json:"sentiment_trend"`
		AvgSentiment    float64                 `json:"avg_sentiment"`
		AvgLabel        sentiment.Label         `json:"avg_label"`
		Distribution    map[sentiment.Label]int `json:"sentiment_distribution"`
		TotalEntries    int                     `json:"total_entries"`
		AlertTriggered  bool                    `json:"alert_triggered"`
		Alert           *string                 `json:"alert"`
		Recommendations []string                `json:"recommendations"`
	}
)

// Aggregate summarizes the persisted sentiment of entries, which must be ordered oldest first.
// Only the last StatsWindow entries are considered.
func Aggregate(entries []Entry) Stats {
	if len(entries) > StatsWindow {
		entries = entries[len(entries)-StatsWindow:]
	}

	stats := Stats{
		Trend:           make([]TrendPoint, 0, len(entries)),
		Distribution:    make(map[sentiment.Label]int, len(sentiment.Labels)),
		TotalEntries:    len(entries),
		Recommendations: []string{},
	}
	for _, label := range sentiment.Labels {
		stats.Distribution[label] = 0
	}

	var sum float64
	var streak int
	for _, e := range entries {
		stats.Trend = append(stats.Trend, TrendPoint{Date: e.CreatedAt, Score: e.Sentiment.Score, Label: e.Sentiment.Label})
		sum += e.Sentiment.Score
		stats.Distribution[e.Sentiment.Label]++

		// only the first streak matters
		if stats.AlertTriggered {
			continue
		}
		if strings.Contains(string(e.Sentiment.Label), string(sentiment.Negative)) {
			streak++
			if streak >= negativeStreak {
				stats.AlertTriggered = true
			}
		} else {
			streak = 0
		}
	}

	var avg float64
	if len(entries) > 0 {
		avg = sum / float64(len(entries))
	}
	stats.AvgSentiment = core.Round2(avg)
	stats.AvgLabel = averageLabel(avg, len(entries))

	if stats.AlertTriggered {
		alert := streakAlert
		stats.Alert = &alert
		stats.Recommendations = append(stats.Recommendations, recommendations...)
	}
	return stats
}

// averageLabel maps a mean score to a Label with bands symmetric around the neutral midpoint.
func averageLabel(avg float64, n int) sentiment.Label {
	if n == 0 {
		return sentiment.Neutral
	}
	switch {
	case avg >= 7:
		return sentiment.VeryPositive
	case avg >= 5.5:
		return sentiment.Positive
	case avg <= 2:
		return sentiment.VeryNegative
	case avg <= 4.5:
		return sentiment.Negative
	default:
		return sentiment.Neutral
	}
}
