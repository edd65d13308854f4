package stake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/stakebot/internal/config"
)

// Class is the outcome of classifying a single HTTP attempt
type Class int

const (
	// ClassRetryable attempts are repeated after a backoff wait
	ClassRetryable Class = iota
	// ClassTerminal attempts produced a well-formed body that goes to the response parser
	ClassTerminal
	// ClassFatal attempts abort the call immediately
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassTerminal:
		return "terminal"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

const snippetLen = 120

// Classify decides what to do with one attempt. It returns the attempt-level error
// for retryable and fatal outcomes. The response body is read and restored.
func Classify(ctx context.Context, resp *http.Response, err error) (Class, error) {
	if ctx.Err() != nil {
		return ClassFatal, ctx.Err()
	}
	if err != nil {
		return ClassRetryable, &TransientNetworkError{Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return ClassRetryable, &TransientNetworkError{StatusCode: resp.StatusCode}
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		return ClassRetryable, &TransientNetworkError{StatusCode: resp.StatusCode, Cause: readErr}
	}

	if !json.Valid(body) {
		snippet := string(body)
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen]
		}
		return ClassRetryable, &MalformedResponseError{
			StatusCode: resp.StatusCode,
			Snippet:    snippet,
			Cause:      errors.New("body is not valid JSON"),
		}
	}

	return ClassTerminal, nil
}

// ExponentialBackoff waits min*2^attempt, capped at max
func ExponentialBackoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	mult := math.Pow(2, float64(attemptNum)) * float64(min)
	wait := time.Duration(mult)
	if float64(wait) != mult || wait > max {
		wait = max
	}
	return wait
}

// RetryHook observes a retry. attempt is the 1-based number of the attempt that failed.
type RetryHook func(operation string, attempt int, wait time.Duration)

// TransportConfig holds configuration for the retrying transport
type TransportConfig struct {
	Timeout      time.Duration
	MaxAttempts  int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
}

// DefaultTransportConfig returns the production retry policy: 10 attempts waiting 1,2,4,8,16,16… seconds
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:      30 * time.Second,
		MaxAttempts:  10,
		RetryWaitMin: time.Second,
		RetryWaitMax: 16 * time.Second,
	}
}

// TransportConfigFromStake builds a transport configuration from the stake section
func TransportConfigFromStake(cfg config.StakeConfig) TransportConfig {
	return TransportConfig{
		Timeout:      cfg.RequestTimeout(),
		MaxAttempts:  cfg.MaxAttempts,
		RetryWaitMin: cfg.RetryWaitMin(),
		RetryWaitMax: cfg.RetryWaitMax(),
		RateLimit:    cfg.RateLimit,
	}
}

type operationKey struct{}

func withOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

func operationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok {
		return op
	}
	return "unknown"
}

// Transport wraps retryablehttp.Client with rate limiting and the attempt classifier.
// Individual attempt failures never reach the caller, only the final outcome.
type Transport struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
	hooks   []RetryHook
}

// NewTransport creates a new retrying transport
func NewTransport(cfg TransportConfig, logger *logrus.Logger) *Transport {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	t := &Transport{
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxAttempts - 1
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Backoff = ExponentialBackoff
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = exhausted
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		wait := ExponentialBackoff(cfg.RetryWaitMin, cfg.RetryWaitMax, attempt-1, nil)
		t.retried(operationFrom(req.Context()), attempt, wait)
	}
	// Retries are reported through the hook instead
	retryClient.Logger = nil

	t.client = retryClient
	return t
}

// OnRetry registers a hook called before every retry
func (t *Transport) OnRetry(hook RetryHook) {
	t.hooks = append(t.hooks, hook)
}

func (t *Transport) retried(op string, attempt int, wait time.Duration) {
	t.logger.WithFields(logrus.Fields{
		"component": "stake",
		"operation": op,
		"attempt":   attempt,
		"wait":      wait.String(),
	}).Warn("Retrying casino request")
	for _, hook := range t.hooks {
		hook(op, attempt, wait)
	}
}

// Post sends body to url and returns the raw body of the first well-formed response
func (t *Transport) Post(ctx context.Context, op, url string, header http.Header, body []byte) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	ctx = withOperation(ctx, op)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// Close closes any resources held by the transport
func (t *Transport) Close() error {
	t.client.HTTPClient.CloseIdleConnections()
	return nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	class, classErr := Classify(ctx, resp, err)
	switch class {
	case ClassRetryable:
		return true, classErr
	case ClassFatal:
		return false, classErr
	default:
		return false, nil
	}
}

// exhausted stamps the attempt count on the last attempt error
func exhausted(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	var transient *TransientNetworkError
	if errors.As(err, &transient) {
		transient.Attempts = numTries
		return nil, transient
	}
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		malformed.Attempts = numTries
		return nil, malformed
	}
	return nil, err
}
