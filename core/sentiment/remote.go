package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/trezcool/ustawi/core"
)

const (
	minStarConfidence = 35
	maxResponseBytes  = 1 << 20
)

// failure reasons, used as metric labels
const (
	reasonNoToken     = "no_token"
	reasonRateLimited = "rate_limited"
	reasonBreakerOpen = "breaker_open"
	reasonTransport   = "transport"
	reasonStatus      = "status"
	reasonDecode      = "decode"
	reasonShape       = "shape"
)

type remoteError struct {
	reason string
	err    error
}

func unavailable(reason string, err error) error {
	return &remoteError{reason: reason, err: err}
}

func (e *remoteError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%v (%s): %v", ErrRemoteUnavailable, e.reason, e.err)
	}
	return fmt.Sprintf("%v (%s)", ErrRemoteUnavailable, e.reason)
}

func (e *remoteError) Cause() error  { return ErrRemoteUnavailable }
func (e *remoteError) Unwrap() error { return ErrRemoteUnavailable }

type (
	candidate struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}

	classifyRequest struct {
		Inputs string `json:"inputs"`
	}
)

// RemoteClassifier classifies text with a hosted model (Hugging Face inference API style).
// Every call makes at most one upstream request.
type RemoteClassifier struct {
	url     string
	token   string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

var _ Classifier = (*RemoteClassifier)(nil)

type RemoteOption func(*RemoteClassifier)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(rc *RemoteClassifier) { rc.client = client }
}

func NewRemoteClassifier(conf core.SentimentConfig, opts ...RemoteOption) *RemoteClassifier {
	rc := &RemoteClassifier{
		url:     strings.TrimRight(conf.APIURL, "/") + "/" + strings.TrimLeft(conf.Model, "/"),
		token:   conf.APIToken,
		timeout: conf.Timeout,
		client:  &http.Client{},
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
		maxFailures = 5
	}
	rc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sentiment-remote",
		MaxRequests: 1,
		Timeout:     conf.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			breakerState.Set(float64(to))
		},
	})

	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Classify returns the model's sentiment for text or an error whose cause is ErrRemoteUnavailable.
func (rc *RemoteClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if rc.token == "" {
		return Result{}, unavailable(reasonNoToken, nil)
	}
	if rc.limiter != nil && !rc.limiter.Allow() {
		return Result{}, unavailable(reasonRateLimited, nil)
	}

	res, err := rc.breaker.Execute(func() (interface{}, error) {
		return rc.classify(ctx, text)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return Result{}, unavailable(reasonBreakerOpen, err)
		}
		return Result{}, err
	}
	return res.(Result), nil
}

func (rc *RemoteClassifier) classify(ctx context.Context, text string) (Result, error) {
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return Result{}, unavailable(reasonTransport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, unavailable(reasonTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+rc.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := rc.client.Do(req)
	remoteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, unavailable(reasonTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, unavailable(reasonTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, unavailable(reasonStatus, errors.Errorf("status %d", resp.StatusCode))
	}

	cands, err := decodeCandidates(data)
	if err != nil {
		return Result{}, unavailable(reasonDecode, err)
	}
	res, err := normalize(cands, text)
	if err != nil {
		return Result{}, unavailable(reasonShape, err)
	}
	return res, nil
}

// decodeCandidates accepts both `[[{label, score}, ...]]` and `[{label, score}, ...]`.
func decodeCandidates(data []byte) ([]candidate, error) {
	var nested [][]candidate
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []candidate
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, errors.Wrap(err, "unexpected response format")
	}
	return flat, nil
}

func normalize(cands []candidate, text string) (Result, error) {
	if len(cands) == 0 {
		return Result{}, errors.New("no candidates")
	}
	if strings.Contains(cands[0].Label, "star") {
		return fromStars(cands, text)
	}
	return fromPolarity(cands[0], text)
}

// fromStars maps a 1-5 star rating distribution to the 0-10 scale.
func fromStars(cands []candidate, text string) (Result, error) {
	var weightedSum, total, top float64
	for _, c := range cands {
		top = math.Max(top, c.Score)
		stars, ok := leadingInt(c.Label)
		if !ok {
			continue
		}
		weightedSum += float64(stars) * c.Score
		total += c.Score
	}
	if total <= 0 {
		return Result{}, errors.New("no weighted star ratings")
	}

	scaled := (weightedSum / total) * 2
	res := Result{
		Score:      core.Round2(scaled),
		Label:      starLabel(scaled),
		Confidence: int(math.Round(top * 100)),
		Emotions:   ExtractEmotions(text),
	}
	if res.Confidence < minStarConfidence {
		res.Label = Neutral
	}
	return res, nil
}

func starLabel(score float64) Label {
	switch {
	case score >= 8.5:
		return VeryPositive
	case score >= 6.5:
		return Positive
	case score <= 2.5:
		return VeryNegative
	case score <= 4:
		return Negative
	default:
		return Neutral
	}
}

// fromPolarity maps a POSITIVE/NEGATIVE style prediction to the 0-10 scale.
func fromPolarity(top candidate, text string) (Result, error) {
	label := Label(strings.ToLower(top.Label))
	if !label.IsValid() {
		return Result{}, errors.Errorf("unknown label %q", top.Label)
	}

	scaled := 5 - top.Score*5
	if top.Label == "POSITIVE" {
		scaled = 5 + top.Score*5
	}
	return Result{
		Score:      core.Round2(scaled),
		Label:      label,
		Confidence: int(math.Round(top.Score * 100)),
		Emotions:   ExtractEmotions(text),
	}, nil
}

// leadingInt parses the integer prefix of s, eg. 4 for "4 stars".
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// failureReason returns the metric label for an error returned by Classify.
func failureReason(err error) string {
	var re *remoteError
	if stderrors.As(err, &re) {
		return re.reason
	}
	return "other"
}
