package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/tpi/internal/domain/model"
	"github.com/sony/gobreaker"
)

// Breaker tuning.
const (
	breakerInterval         = 60 * time.Second
	breakerTimeout          = 30 * time.Second
	breakerConsecutiveFails = 3
	breakerMinRequests      = 20
	breakerFailureRatio     = 0.05
)

// Client posts batches to the scoring API through a circuit breaker.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	st := gobreaker.Settings{
		Name:     "tpi-score",
		Interval: breakerInterval,
		Timeout:  breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= breakerConsecutiveFails {
				return true
			}
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > breakerFailureRatio
		},
		// Client errors are the caller's fault and must not open the circuit.
		IsSuccessful: func(err error) bool {
			var se *statusError
			return err == nil || (errors.As(err, &se) && se.code < http.StatusInternalServerError)
		},
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

// statusError reports a non-2xx reply.
type statusError struct {
	code int
	body apiError
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s: %s", e.code, e.body.Code, e.body.Message)
}

func (e *statusError) Unwrap() error { return ErrBadStatus }

// State reports the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Score posts one batch and returns the scored rows in input order.
func (c *Client) Score(ctx context.Context, players []model.PlayerRecord) ([]model.DerivedRecord, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, players)
	})
	if err != nil {
		return nil, err
	}
	rows, _ := out.([]model.DerivedRecord)
	return rows, nil
}

func (c *Client) post(ctx context.Context, players []model.PlayerRecord) ([]model.DerivedRecord, error) {
	body, err := json.Marshal(scoreRequest{Players: players})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post score: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read score response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		se := &statusError{code: resp.StatusCode}
		_ = json.Unmarshal(data, &se.body)
		return nil, se
	}
	var sr scoreResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	if len(sr.Players) != len(players) {
		return nil, fmt.Errorf("%w: sent %d players, got %d", ErrShortBatch, len(players), len(sr.Players))
	}
	return sr.Players, nil
}
