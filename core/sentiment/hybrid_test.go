package sentiment

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/pkg/errors"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ustawi/core"
	logsvc "github.com/trezcool/ustawi/services/logger"
)

type stubClassifier struct {
	res   Result
	err   error
	calls int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (Result, error) {
	s.calls++
	return s.res, s.err
}

func newTestLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func TestHybrid_Analyze(t *testing.T) {
	const text = "I failed my exam and feel terrible and hopeless"
	fallback := RuleBased(text)

	tests := []struct {
		name       string
		remote     *stubClassifier
		want       Result
		wantSource string
	}{
		{
			name:       "remote result",
			remote:     &stubClassifier{res: Result{Score: 2.4, Label: VeryNegative, Confidence: 88, Emotions: []string{"sadness"}}},
			want:       Result{Score: 2.4, Label: VeryNegative, Confidence: 88, Emotions: []string{"sadness"}},
			wantSource: sourceRemote,
		},
		{
			name:       "remote score clamped",
			remote:     &stubClassifier{res: Result{Score: 12.345, Label: VeryPositive, Confidence: 140}},
			want:       Result{Score: 10, Label: VeryPositive, Confidence: 100, Emotions: []string{}},
			wantSource: sourceRemote,
		},
		{
			name:       "remote unavailable",
			remote:     &stubClassifier{err: unavailable(reasonStatus, errors.New("status 503"))},
			want:       fallback,
			wantSource: sourceFallback,
		},
		{
			name:       "arbitrary remote error",
			remote:     &stubClassifier{err: errors.New("boom")},
			want:       fallback,
			wantSource: sourceFallback,
		},
		{
			name:       "missing label",
			remote:     &stubClassifier{res: Result{Score: 7, Confidence: 90}},
			want:       fallback,
			wantSource: sourceFallback,
		},
		{
			name:       "unknown label",
			remote:     &stubClassifier{res: Result{Score: 7, Label: "label_1", Confidence: 90}},
			want:       fallback,
			wantSource: sourceFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHybrid(tt.remote, newTestLogger())
			before := promtest.ToFloat64(analysesTotal.WithLabelValues(tt.wantSource))

			got := h.Analyze(context.Background(), text)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.remote.calls, "remote must be tried exactly once")
			assert.Equal(t, before+1, promtest.ToFloat64(analysesTotal.WithLabelValues(tt.wantSource)))
		})
	}
}

func TestHybrid_NoRemote(t *testing.T) {
	h := NewHybrid(nil, newTestLogger())
	assert.Equal(t, RuleBased("a calm and peaceful evening"), h.Analyze(context.Background(), "a calm and peaceful evening"))
}

func TestHybrid_FallbackWithoutToken(t *testing.T) {
	rc := NewRemoteClassifier(core.SentimentConfig{APIURL: "http://127.0.0.1:1", Model: "m"})
	h := NewHybrid(rc, newTestLogger())

	texts := []string{"", "I am happy", "I am not happy", "so stressed about the deadline"}
	for _, text := range texts {
		got := h.Analyze(context.Background(), text)
		assert.Equal(t, RuleBased(text), got)
		assert.True(t, got.Label.IsValid())
		assert.GreaterOrEqual(t, got.Confidence, 0)
		assert.LessOrEqual(t, got.Confidence, 100)
	}
}
