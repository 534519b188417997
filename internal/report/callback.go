// Package report delivers final session findings to the evaluator.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gosuda/honeypot/internal/domain"
)

const (
	DefaultCallbackURL     = "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"
	DefaultCallbackTimeout = 10 * time.Second
)

// ErrDeliveryFailed is returned when the evaluator does not answer 200.
var ErrDeliveryFailed = errors.New("report: delivery failed") //nolint:gochecknoglobals // sentinel error

// Deliverer sends a report somewhere. Implementations make exactly one attempt.
type Deliverer interface {
	Deliver(ctx context.Context, rep *domain.Report) error
}

// Callback POSTs the report as JSON to a fixed URL.
type Callback struct {
	url        string
	httpClient *http.Client
}

// NewCallback creates a Callback. Empty url and zero timeout select the defaults.
func NewCallback(url string, timeout time.Duration) *Callback {
	if url == "" {
		url = DefaultCallbackURL
	}
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	return &Callback{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Callback) Deliver(ctx context.Context, rep *domain.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("report.Callback.Deliver: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("report.Callback.Deliver: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report.Callback.Deliver: %w: %w", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report.Callback.Deliver: status %d: %w", resp.StatusCode, ErrDeliveryFailed)
	}
	return nil
}
