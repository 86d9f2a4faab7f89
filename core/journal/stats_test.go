package journal

import (
	"reflect"
	"testing"
	"time"

	"github.com/trezcool/ustawi/core/sentiment"
)

func entriesWithLabels(labels ...sentiment.Label) []Entry {
	scores := map[sentiment.Label]float64{
		sentiment.VeryNegative: 1,
		sentiment.Negative:     3.5,
		sentiment.Neutral:      5,
		sentiment.Positive:     7,
		sentiment.VeryPositive: 9,
	}
	start := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, len(labels))
	for i, l := range labels {
		entries = append(entries, Entry{
			ID:        string(rune('a' + i)),
			Sentiment: sentiment.Result{Score: scores[l], Label: l},
			CreatedAt: start.Add(time.Duration(i) * time.Hour),
		})
	}
	return entries
}

func repeat(label sentiment.Label, n int) []sentiment.Label {
	labels := make([]sentiment.Label, n)
	for i := range labels {
		labels[i] = label
	}
	return labels
}

func TestAggregate_StreakAlert(t *testing.T) {
	neg, vneg, pos, neu := sentiment.Negative, sentiment.VeryNegative, sentiment.Positive, sentiment.Neutral

	tests := []struct {
		name      string
		labels    []sentiment.Label
		wantAlert bool
	}{
		{name: "no entries"},
		{name: "5 negatives then positive", labels: append(repeat(neg, 5), pos), wantAlert: true},
		{name: "4 negatives", labels: append(repeat(neg, 4), pos)},
		{name: "4 negatives at the end", labels: append([]sentiment.Label{pos}, repeat(neg, 4)...)},
		{name: "mixed negative family", labels: []sentiment.Label{neg, vneg, neg, vneg, vneg}, wantAlert: true},
		{name: "streak broken by neutral", labels: []sentiment.Label{neg, neg, neg, neu, neg, neg, neg}},
		{name: "streak later in the window", labels: append(repeat(pos, 10), repeat(vneg, 6)...), wantAlert: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(entriesWithLabels(tt.labels...))
			if got.AlertTriggered != tt.wantAlert {
				t.Fatalf("AlertTriggered = %v, want %v", got.AlertTriggered, tt.wantAlert)
			}
			if tt.wantAlert {
				if got.Alert == nil || *got.Alert != "5 consecutive negative sentiments detected." {
					t.Errorf("Alert = %v", got.Alert)
				}
				if !reflect.DeepEqual(got.Recommendations, recommendations) {
					t.Errorf("Recommendations = %v, want %v", got.Recommendations, recommendations)
				}
			} else {
				if got.Alert != nil {
					t.Errorf("Alert = %v, want nil", *got.Alert)
				}
				if len(got.Recommendations) != 0 {
					t.Errorf("Recommendations = %v, want none", got.Recommendations)
				}
			}
		})
	}
}

func TestAggregate_FirstStreakStopsScanButNotCounting(t *testing.T) {
	labels := append(repeat(sentiment.Negative, 5), sentiment.Positive, sentiment.Positive)
	got := Aggregate(entriesWithLabels(labels...))

	if !got.AlertTriggered {
		t.Fatal("expected alert")
	}
	if got.Distribution[sentiment.Positive] != 2 || got.Distribution[sentiment.Negative] != 5 {
		t.Errorf("Distribution = %v", got.Distribution)
	}
	if len(got.Trend) != len(labels) {
		t.Errorf("len(Trend) = %d, want %d", len(got.Trend), len(labels))
	}
}

func TestAggregate_Window(t *testing.T) {
	for _, n := range []int{0, 1, 5, 29, 30, 31, 45} {
		labels := make([]sentiment.Label, 0, n)
		for i := 0; i < n; i++ {
			labels = append(labels, sentiment.Labels[i%len(sentiment.Labels)])
		}
		entries := entriesWithLabels(labels...)
		got := Aggregate(entries)

		want := n
		if want > StatsWindow {
			want = StatsWindow
		}
		var sum int
		for _, c := range got.Distribution {
			sum += c
		}
		if sum != want || got.TotalEntries != want || len(got.Trend) != want {
			t.Errorf("n=%d: distribution sum %d, total %d, trend %d; want %d", n, sum, got.TotalEntries, len(got.Trend), want)
		}
		if len(got.Distribution) != len(sentiment.Labels) {
			t.Errorf("n=%d: distribution has %d labels", n, len(got.Distribution))
		}
		if n > StatsWindow && !got.Trend[0].Date.Equal(entries[n-StatsWindow].CreatedAt) {
			t.Errorf("n=%d: window should start at the %dth entry", n, n-StatsWindow)
		}
	}
}

func TestAggregate_Average(t *testing.T) {
	tests := []struct {
		name      string
		scores    []float64
		wantAvg   float64
		wantLabel sentiment.Label
	}{
		{name: "empty", wantAvg: 0, wantLabel: sentiment.Neutral},
		{name: "very positive", scores: []float64{7, 7.5, 8}, wantAvg: 7.5, wantLabel: sentiment.VeryPositive},
		{name: "positive", scores: []float64{5.5}, wantAvg: 5.5, wantLabel: sentiment.Positive},
		{name: "neutral", scores: []float64{5, 5.2}, wantAvg: 5.1, wantLabel: sentiment.Neutral},
		{name: "negative", scores: []float64{4, 4.5}, wantAvg: 4.25, wantLabel: sentiment.Negative},
		{name: "between negative bands", scores: []float64{3}, wantAvg: 3, wantLabel: sentiment.Negative},
		{name: "very negative", scores: []float64{1, 3}, wantAvg: 2, wantLabel: sentiment.VeryNegative},
		{name: "rounded", scores: []float64{1, 2, 2}, wantAvg: 1.67, wantLabel: sentiment.VeryNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]Entry, 0, len(tt.scores))
			for _, s := range tt.scores {
				entries = append(entries, Entry{Sentiment: sentiment.Result{Score: s, Label: sentiment.Neutral}})
			}
			got := Aggregate(entries)
			if got.AvgSentiment != tt.wantAvg {
				t.Errorf("AvgSentiment = %v, want %v", got.AvgSentiment, tt.wantAvg)
			}
			if got.AvgLabel != tt.wantLabel {
				t.Errorf("AvgLabel = %v, want %v", got.AvgLabel, tt.wantLabel)
			}
		})
	}
}
