// Package sentiment scores free text on a 0-10 positivity scale.
//
// A remote text-classification model is tried first; whenever it is unavailable or answers
// with something unusable, a local rule-based scorer takes over. Callers only ever see
// Analyzer.Analyze, which always returns a usable Result.
package sentiment

import (
	"context"
	"math"

	"github.com/pkg/errors"
)

type Label string

const (
	VeryNegative Label = "very-negative"
	Negative     Label = "negative"
	Neutral      Label = "neutral"
	Positive     Label = "positive"
	VeryPositive Label = "very-positive"
)

const (
	MinScore = 0
	MaxScore = 10
)

var (
	// Labels lists the label vocabulary from most positive to most negative.
	Labels = []Label{VeryPositive, Positive, Neutral, Negative, VeryNegative}

	// ErrRemoteUnavailable is returned by the remote classifier when it cannot produce a Result.
	ErrRemoteUnavailable = errors.New("remote sentiment unavailable")
)

func (l Label) IsValid() bool {
	for _, label := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Result is the sentiment of a text.
type Result struct {
	Score      float64  `json:"score"`      // 0 (most negative) - 10 (most positive)
	Label      Label    `json:"label"`      // one of Labels
	Confidence int      `json:"confidence"` // percentage
	Emotions   []string `json:"emotions"`   // at most 3
}

type (
	// Classifier is a sentiment source that may fail.
	Classifier interface {
		Classify(ctx context.Context, text string) (Result, error)
	}

	// Analyzer is a sentiment source that never fails.
	Analyzer interface {
		Analyze(ctx context.Context, text string) Result
	}
)

func clamp(f, min, max float64) float64 {
	return math.Max(min, math.Min(max, f))
}
