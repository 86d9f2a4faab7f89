package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/trezcool/ustawi/core"
)

const maxResponseBytes = 1 << 20

// ErrRemoteUnavailable is the cause of every error returned by a RemoteCompleter.
var ErrRemoteUnavailable = errors.New("remote assistant unavailable")

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		MaxTokens   int           `json:"max_tokens,omitempty"`
		Temperature float64       `json:"temperature"`
	}

	chatResponse struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				Reasoning string `json:"reasoning"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
)

// RemoteCompleter answers prompts with a hosted chat-completions model (OpenAI API style).
// Every call makes at most one upstream request.
type RemoteCompleter struct {
	url         string
	token       string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	client      *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

var _ Completer = (*RemoteCompleter)(nil)

type RemoteOption func(*RemoteCompleter)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(rc *RemoteCompleter) { rc.client = client }
}

func NewRemoteCompleter(conf core.AssistantConfig, opts ...RemoteOption) *RemoteCompleter {
	rc := &RemoteCompleter{
		url:         conf.APIURL,
		token:       conf.APIToken,
		model:       conf.Model,
		maxTokens:   conf.MaxTokens,
		temperature: conf.Temperature,
		timeout:     conf.Timeout,
		client:      &http.Client{},
	}
	if conf.RateLimit > 0 {
		burst := conf.RateBurst
		if burst < 1 {
			burst = 1
		}
		rc.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), burst)
	}

	maxFailures := conf.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	rc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "assistant-remote",
		MaxRequests: 1,
		Timeout:     conf.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Complete returns the model's reply to prompt, or an error whose cause is ErrRemoteUnavailable.
func (rc *RemoteCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if rc.token == "" {
		return "", unavailable("no_token", nil)
	}
	if rc.limiter != nil && !rc.limiter.Allow() {
		return "", unavailable("rate_limited", nil)
	}

	res, err := rc.breaker.Execute(func() (interface{}, error) {
		return rc.complete(ctx, system, prompt)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", unavailable("breaker_open", err)
		}
		return "", err
	}
	return res.(string), nil
}

func (rc *RemoteCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: rc.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   rc.maxTokens,
		Temperature: rc.temperature,
	})
	if err != nil {
		return "", unavailable("transport", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.url, bytes.NewReader(body))
	if err != nil {
		return "", unavailable("transport", err)
	}
	req.Header.Set("Authorization", "Bearer "+rc.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := rc.client.Do(req)
	if err != nil {
		return "", unavailable("transport", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", unavailable("transport", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", unavailable("status", errors.Errorf("status %d", resp.StatusCode))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", unavailable("decode", err)
	}
	if cr.Error != nil {
		return "", unavailable("status", errors.New(cr.Error.Message))
	}
	if len(cr.Choices) == 0 {
		return "", unavailable("shape", errors.New("no choices"))
	}
	msg := cr.Choices[0].Message
	reply := strings.TrimSpace(msg.Content)
	if reply == "" {
		reply = strings.TrimSpace(msg.Reasoning)
	}
	if reply == "" {
		return "", unavailable("shape", errors.New("empty reply"))
	}
	return reply, nil
}

// unavailable counts the failure and wraps ErrRemoteUnavailable.
func unavailable(reason string, err error) error {
	remoteFailuresTotal.WithLabelValues(reason).Inc()
	if err != nil {
		return errors.Wrapf(ErrRemoteUnavailable, "%s: %v", reason, err)
	}
	return errors.Wrap(ErrRemoteUnavailable, reason)
}
