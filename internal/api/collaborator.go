package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// Retry tuning for transient API failures.
const (
	defaultMaxAttempts     = 3
	defaultBaseDelay       = 2 * time.Second
	defaultMaxDelay        = 10 * time.Second
	defaultDelayMultiplier = 1.5
	defaultRequestTimeout  = 30 * time.Second
)

// CollaboratorError wraps a failed completion request with its retry
// classification. Transient errors were retried before being returned.
type CollaboratorError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *CollaboratorError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// RetryConfig tunes the retry policy for transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Multiplier grows the delay between attempts.
	Multiplier float64
	// RequestTimeout bounds each individual API call.
	RequestTimeout time.Duration
}

// DefaultRetryConfig returns the standard retry tuning.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    defaultMaxAttempts,
		BaseDelay:      defaultBaseDelay,
		MaxDelay:       defaultMaxDelay,
		Multiplier:     defaultDelayMultiplier,
		RequestTimeout: defaultRequestTimeout,
	}
}

// Collaborator sends text completion requests to the Anthropic API with
// per-request timeouts and exponential backoff on transient failures. It
// satisfies the reflect.Collaborator interface.
type Collaborator struct {
	client *Client
	retry  RetryConfig
	// call and sleep are swappable for tests.
	call  func(ctx context.Context, prompt string, maxTokens int) (string, error)
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCollaborator creates a Collaborator on top of an API client. Zero
// retry fields fall back to defaults.
func NewCollaborator(client *Client, retry RetryConfig) *Collaborator {
	def := DefaultRetryConfig()
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = def.MaxAttempts
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = def.BaseDelay
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = def.MaxDelay
	}
	if retry.Multiplier <= 1 {
		retry.Multiplier = def.Multiplier
	}
	if retry.RequestTimeout <= 0 {
		retry.RequestTimeout = def.RequestTimeout
	}
	c := &Collaborator{
		client: client,
		retry:  retry,
		sleep:  sleepCtx,
	}
	c.call = c.send
	return c
}

// Complete sends a prompt and returns the concatenated text blocks of the
// reply. Transient failures are retried with exponential backoff; permanent
// failures and context cancellation return immediately.
func (c *Collaborator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	delay := c.retry.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		reply, err := c.call(ctx, prompt, maxTokens)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", &CollaboratorError{Op: "complete", Transient: false, Err: ctx.Err()}
		}
		if !isTransient(err) {
			return "", &CollaboratorError{Op: "complete", Transient: false, Err: err}
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		wait := jitter(delay)
		log.Printf("[api] transient failure on attempt %d/%d, retrying in %s: %v",
			attempt, c.retry.MaxAttempts, wait.Round(time.Millisecond), err)
		if err := c.sleep(ctx, wait); err != nil {
			return "", &CollaboratorError{Op: "complete", Transient: false, Err: err}
		}

		delay = time.Duration(float64(delay) * c.retry.Multiplier)
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}

	return "", &CollaboratorError{Op: "complete", Transient: true, Err: lastErr}
}

// send performs a single API call under the per-request timeout.
func (c *Collaborator) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.retry.RequestTimeout)
	defer cancel()

	resp, err := c.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.client.Model(),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	c.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return result.String(), nil
}

// isTransient classifies an API failure. Rate limits, server errors, and
// network hiccups are worth retrying; auth and request errors are not.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return true
		case apiErr.StatusCode >= 500:
			return true
		case apiErr.StatusCode == 408:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "overloaded"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "tls handshake timeout"):
		return true
	}

	return false
}

// jitter spreads a delay by up to 25% to avoid synchronized retries across
// workers.
func jitter(d time.Duration) time.Duration {
	spread := time.Duration(rand.Int63n(int64(d) / 4))
	return d + spread
}

// sleepCtx waits for d, interruptible by ctx.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
