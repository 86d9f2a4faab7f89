package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core"
)

type fakeChatModel struct {
	status int
	body   string
	hits   int32
	last   chatRequest
	auth   string
}

func (m *fakeChatModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.hits, 1)
	m.auth = r.Header.Get("Authorization")
	_ = json.NewDecoder(r.Body).Decode(&m.last)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(m.status)
	_, _ = w.Write([]byte(m.body))
}

func newTestCompleter(t *testing.T, model *fakeChatModel, edit func(*core.AssistantConfig)) *RemoteCompleter {
	t.Helper()
	srv := httptest.NewServer(model)
	t.Cleanup(srv.Close)

	conf := core.AssistantConfig{
		APIURL:      srv.URL + "/v1/chat/completions",
		Model:       "test-model",
		APIToken:    "hf_test",
		MaxTokens:   100,
		Temperature: 0.7,
		Timeout:     time.Second,
	}
	if edit != nil {
		edit(&conf)
	}
	return NewRemoteCompleter(conf, WithHTTPClient(srv.Client()))
}

func TestRemoteCompleter_Complete(t *testing.T) {
	model := &fakeChatModel{status: http.StatusOK, body: `{"choices":[{"message":{"content":"  Breathe.  "}}]}`}
	rc := newTestCompleter(t, model, nil)

	reply, err := rc.Complete(context.Background(), "be kind", "I'm tired")
	require.NoError(t, err)
	assert.Equal(t, "Breathe.", reply)
	assert.Equal(t, "Bearer hf_test", model.auth)
	assert.Equal(t, chatRequest{
		Model:       "test-model",
		Messages:    []chatMessage{{Role: "system", Content: "be kind"}, {Role: "user", Content: "I'm tired"}},
		MaxTokens:   100,
		Temperature: 0.7,
	}, model.last)
}

func TestRemoteCompleter_failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"api error", http.StatusOK, `{"error":{"message":"model overloaded"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty reply", http.StatusOK, `{"choices":[{"message":{"content":" "}}]}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := newTestCompleter(t, &fakeChatModel{status: tt.status, body: tt.body}, nil)
			_, err := rc.Complete(context.Background(), "", "hi")
			assert.Equal(t, ErrRemoteUnavailable, errors.Cause(err))
		})
	}
}

func TestRemoteCompleter_reasoningFallback(t *testing.T) {
	model := &fakeChatModel{status: http.StatusOK, body: `{"choices":[{"message":{"content":"","reasoning":"Plan ahead."}}]}`}
	reply, err := newTestCompleter(t, model, nil).Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Plan ahead.", reply)
}

func TestRemoteCompleter_breakerAndLimiter(t *testing.T) {
	model := &fakeChatModel{status: http.StatusBadGateway, body: `{}`}
	rc := newTestCompleter(t, model, func(conf *core.AssistantConfig) {
		conf.BreakerMaxFailures = 2
		conf.BreakerOpenTimeout = time.Minute
	})
	for i := 0; i < 4; i++ {
		_, err := rc.Complete(context.Background(), "", "hi")
		assert.Equal(t, ErrRemoteUnavailable, errors.Cause(err))
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&model.hits), "open breaker skips the upstream")

	model = &fakeChatModel{status: http.StatusOK, body: `{"choices":[{"message":{"content":"ok"}}]}`}
	rc = newTestCompleter(t, model, func(conf *core.AssistantConfig) {
		conf.RateLimit = 0.001
		conf.RateBurst = 1
	})
	_, err := rc.Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	_, err = rc.Complete(context.Background(), "", "hi")
	assert.Equal(t, ErrRemoteUnavailable, errors.Cause(err), "rate limited")
	assert.EqualValues(t, 1, atomic.LoadInt32(&model.hits))

	_, err = newTestCompleter(t, model, func(conf *core.AssistantConfig) { conf.APIToken = "" }).Complete(context.Background(), "", "hi")
	assert.Equal(t, ErrRemoteUnavailable, errors.Cause(err), "no token")
}
