package sentiment

import (
	"context"
	"fmt"

	"github.com/trezcool/ustawi/core"
)

// Hybrid analyzes text with a remote Classifier and falls back to RuleBased.
type Hybrid struct {
	remote Classifier
	logger core.Logger
}

var _ Analyzer = (*Hybrid)(nil)

func NewHybrid(remote Classifier, logger core.Logger) *Hybrid {
	return &Hybrid{remote: remote, logger: logger}
}

// Analyze never fails: any remote error or unusable remote result yields RuleBased(text).
func (h *Hybrid) Analyze(ctx context.Context, text string) Result {
	if h.remote != nil {
		res, err := h.remote.Classify(ctx, text)
		switch {
		case err != nil:
			remoteFailuresTotal.WithLabelValues(failureReason(err)).Inc()
			h.logger.Warn(fmt.Sprintf("remote sentiment failed, falling back: %v", err), err)
		case !res.Label.IsValid():
			remoteFailuresTotal.WithLabelValues(reasonShape).Inc()
			h.logger.Warn(fmt.Sprintf("remote sentiment returned label %q, falling back", res.Label))
		default:
			res.Score = core.Round2(clamp(res.Score, MinScore, MaxScore))
			res.Confidence = int(clamp(float64(res.Confidence), 0, 100))
			if res.Emotions == nil {
				res.Emotions = []string{}
			}
			analysesTotal.WithLabelValues(sourceRemote).Inc()
			h.logger.Debug(fmt.Sprintf("sentiment (remote): %s", res.Label))
			return res
		}
	}

	res := RuleBased(text)
	analysesTotal.WithLabelValues(sourceFallback).Inc()
	h.logger.Debug(fmt.Sprintf("sentiment (rule-based): %s", res.Label))
	return res
}
