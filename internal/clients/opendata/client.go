package opendata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maxaizer/jobs-board/internal/logger"
	"github.com/maxaizer/jobs-board/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned when the feed answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.StatusCode, e.Body)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL       string
	httpClient    HTTPClient
	rateLimiter   *rate.Limiter
	maxAttempts   int
	backoffBase   time.Duration
	batchTimeout  time.Duration
	recordTimeout time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{},
		maxAttempts:   3,
		backoffBase:   time.Second,
		batchTimeout:  30 * time.Second,
		recordTimeout: 10 * time.Second,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetRetryPolicy(maxAttempts int, backoffBase time.Duration) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c.maxAttempts = maxAttempts
	c.backoffBase = backoffBase
}

func (c *Client) SetTimeouts(batch, record time.Duration) {
	c.batchTimeout = batch
	c.recordTimeout = record
}

// FetchBatch returns one page of the feed. Unfiltered pages are retried with exponential
// backoff on transient failures. Filtered pages are a single best-effort attempt.
func (c *Client) FetchBatch(ctx context.Context, params BatchParams) ([]JobRecord, error) {

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	apiURL := c.baseURL + "?" + params.ToUrlParams().Encode()

	if params.Where != "" {
		return c.getRecords(ctx, apiURL, c.batchTimeout, "filtered")
	}

	var lastErr error
	attempt := 1
	for ; ; attempt++ {
		records, err := c.getRecords(ctx, apiURL, c.batchTimeout, "batch")
		if err == nil {
			return records, nil
		}
		lastErr = err

		if attempt >= c.maxAttempts || !isRetryable(err) || ctx.Err() != nil {
			break
		}

		delay := c.backoffBase << (attempt - 1)
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstream).
			Warnf("batch at offset %d failed (attempt %d/%d), retrying in %v: %v",
				params.Offset, attempt, c.maxAttempts, delay, err)

		if err = sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("batch at offset %d failed after %d attempt(s): %w", params.Offset, attempt, lastErr)
}

// FetchByID looks a single posting up. A missing posting is reported as nil without an error.
func (c *Client) FetchByID(ctx context.Context, id string) (*JobRecord, error) {

	params := BatchParams{Limit: 1, Where: "job_id = " + quote(id)}
	apiURL := c.baseURL + "?" + params.ToUrlParams().Encode()

	records, err := c.getRecords(ctx, apiURL, c.recordTimeout, "record")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (c *Client) getRecords(ctx context.Context, url string, timeout time.Duration, endpoint string) ([]JobRecord, error) {

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := c.sendRequest(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		metrics.UpstreamRequestsCounter.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}

	var records []JobRecord
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&records); err != nil {
		metrics.UpstreamRequestsCounter.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("error decoding JSON response: %v: %w", err, ErrMalformedResponse)
	}

	metrics.UpstreamRequestsCounter.WithLabelValues(endpoint, "ok").Inc()
	return records, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		err := c.rateLimiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// isRetryable reports whether err is a transient failure: a transport error or timeout,
// a 5xx or a 429 answer.
func isRetryable(err error) bool {
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError ||
			statusErr.StatusCode == http.StatusTooManyRequests
	}

	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
