package httpretry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/example/tee-time-sniper/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes requests under a retry Policy.
type Client struct {
	HTTP   Doer
	Policy Policy
	Log    zerolog.Logger

	// Rand and Sleep are swapped out in tests.
	Rand  func() float64
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Client using hc (http.DefaultClient when nil). The per-attempt
// timeout comes from the policy, so hc should not set its own.
func New(hc *http.Client, p Policy, log zerolog.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		HTTP:   hc,
		Policy: p,
		Log:    log,
		Rand:   rand.Float64,
		Sleep:  sleep,
	}
}

// Do performs r, retrying transient failures per the policy. It returns a
// response only for 2xx/3xx statuses; everything else is an error.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	path := SafePath(r.URL)

	// Reject malformed descriptors up front; they would fail identically on
	// every attempt.
	if _, err := http.NewRequest(r.method(), r.URL, nil); err != nil {
		return nil, fmt.Errorf("%s: build request: %w", path, err)
	}

	for attempt := 0; ; attempt++ {
		res, err := c.once(ctx, r, path)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", path, ctx.Err())
		}

		status := 0
		if res != nil {
			status = res.StatusCode
			if err == nil && res.readErr != nil && status < http.StatusBadRequest {
				err = &TransportError{Path: path, Err: fmt.Errorf("read body: %w", res.readErr)}
			}
		}

		outcome := Classify(status, err)
		metrics.RequestAttempts.WithLabelValues(path, outcome.String()).Inc()

		switch outcome {
		case Success:
			return res, nil
		case Terminal:
			return nil, statusError(path, res, attempt+1)
		}

		if attempt >= c.Policy.MaxRetries {
			if err != nil {
				var te *TransportError
				if errors.As(err, &te) {
					te.Attempts = attempt + 1
				}
				return nil, err
			}
			return nil, statusError(path, res, attempt+1)
		}

		delay := c.Policy.Backoff(attempt, c.random())
		c.Log.Debug().
			Str("path", path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Str("status", describe(res, err)).
			Msg("retrying request")
		metrics.RequestRetries.WithLabelValues(path).Inc()
		metrics.RetryDelay.WithLabelValues(path).Observe(delay.Seconds())

		if err := c.wait(ctx, delay); err != nil {
			return nil, fmt.Errorf("%s: retry wait: %w", path, err)
		}
	}
}

// DoJSON performs r and decodes the body into out, then validates out against
// its `validate` struct tags. Shape problems are reported as *SchemaError.
func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	res, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	path := SafePath(r.URL)
	if err := json.Unmarshal(res.Body, out); err != nil {
		return &SchemaError{Path: path, Issues: []string{"body: " + err.Error()}}
	}
	if issues := Validate(out); len(issues) > 0 {
		return &SchemaError{Path: path, Issues: issues}
	}
	return nil
}

func (c *Client) once(ctx context.Context, r Request, path string) (*Response, error) {
	attemptCtx := ctx
	if c.Policy.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.Policy.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, r.method(), r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	hres, err := c.HTTP.Do(req)
	if err != nil {
		timedOut := ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		return nil, &TransportError{Path: path, TimedOut: timedOut, Timeout: c.Policy.Timeout, Err: err}
	}
	defer hres.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(hres.Body, maxBodyBytes))
	return &Response{
		StatusCode: hres.StatusCode,
		Status:     hres.Status,
		Header:     hres.Header,
		Body:       body,
		readErr:    readErr,
	}, nil
}

func (c *Client) random() float64 {
	if c.Rand == nil {
		return rand.Float64()
	}
	return c.Rand()
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.Sleep == nil {
		return sleep(ctx, d)
	}
	return c.Sleep(ctx, d)
}

func statusError(path string, res *Response, attempts int) *StatusError {
	e := &StatusError{Path: path, Attempts: attempts}
	if res == nil {
		return e
	}
	e.StatusCode = res.StatusCode
	e.Status = res.Status
	if e.Status == "" {
		e.Status = strconv.Itoa(res.StatusCode)
	}
	if res.readErr == nil {
		e.Body = string(res.Body)
	}
	return e
}

func describe(res *Response, err error) string {
	if err != nil {
		return err.Error()
	}
	if res == nil {
		return ""
	}
	return res.Status
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
