package httpretry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/tee-time-sniper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestClient(p Policy) (*Client, *recorder) {
	rec := &recorder{}
	c := New(nil, p, logger.Nop())
	c.Rand = func() float64 { return 0.5 }
	c.Sleep = rec.sleep
	return c, rec
}

func statusServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDoExhaustsRetriesOnServerError(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3, 5} {
		srv, calls := statusServer(t, http.StatusServiceUnavailable, "try later")
		c, rec := newTestClient(Policy{MaxRetries: maxRetries, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second})

		_, err := c.Do(context.Background(), Request{Method: http.MethodPost, URL: srv.URL + "/booking/pending_reservation"})
		require.Error(t, err)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
		assert.Equal(t, maxRetries+1, se.Attempts)
		assert.Equal(t, "try later", se.Body)
		assert.Equal(t, "/booking/pending_reservation", se.Path)
		assert.True(t, IsTransient(err))
		assert.EqualValues(t, maxRetries+1, atomic.LoadInt32(calls), "maxRetries=%d", maxRetries)
		assert.Len(t, rec.delays, maxRetries)
	}
}

func TestDoBackoffSequence(t *testing.T) {
	srv, _ := statusServer(t, http.StatusBadGateway, "")
	c, rec := newTestClient(DefaultPolicy())

	_, err := c.Do(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		375 * time.Millisecond,
		750 * time.Millisecond,
		1500 * time.Millisecond,
	}, rec.delays)
	assert.Contains(t, err.Error(), "empty or unreadable response body")
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict} {
		srv, calls := statusServer(t, status, `{"error":"nope"}`)
		c, rec := newTestClient(Policy{MaxRetries: 5, BaseDelay: time.Millisecond})

		_, err := c.Do(context.Background(), Request{URL: srv.URL + "/x"})

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, status, se.StatusCode)
		assert.Equal(t, 1, se.Attempts)
		assert.False(t, IsTransient(err))
		assert.EqualValues(t, 1, atomic.LoadInt32(calls))
		assert.Empty(t, rec.delays)
	}
}

func TestDoRetriesTooManyRequestsThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c, rec := newTestClient(DefaultPolicy())
	res, err := c.Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(res.Body))
	assert.EqualValues(t, 3, calls)
	assert.Len(t, rec.delays, 2)
}

func TestDoTimeoutIsTransient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(Policy{MaxRetries: 2, BaseDelay: time.Millisecond, Timeout: 20 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{URL: srv.URL + "/booking/users/login"})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.TimedOut)
	assert.Equal(t, 3, te.Attempts)
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "timed out after 20ms")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDoZeroTimeoutDisablesGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		_, _ = io.WriteString(w, "late but fine")
	}))
	defer srv.Close()

	for _, timeout := range []time.Duration{0, -time.Second} {
		c, _ := newTestClient(Policy{MaxRetries: 0, Timeout: timeout})
		res, err := c.Do(context.Background(), Request{URL: srv.URL})
		require.NoError(t, err)
		assert.Equal(t, "late but fine", string(res.Body))
	}
}

func TestDoReplaysBodyAndHeaders(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
		ids    []string
	)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		ids = append(ids, r.Header.Get(HeaderRequestID))
		mu.Unlock()
		assert.Equal(t, "Bearer abc", r.Header.Get("X-Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := newTestClient(DefaultPolicy())
	h := http.Header{}
	h.Set("X-Authorization", "Bearer abc")
	_, err := c.Do(context.Background(), FormRequest(srv.URL, h, url.Values{"players": {"2"}}))
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, "players=2", bodies[0])
	assert.Equal(t, bodies[0], bodies[1])
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Empty(t, h.Get("Content-Type"), "caller header must not be mutated")
}

func TestDoMalformedURL(t *testing.T) {
	c, rec := newTestClient(DefaultPolicy())
	raw := "http://[::1" + "/this-url-is-long-enough-to-be-truncated-in-messages"

	assert.NotPanics(t, func() {
		_, err := c.Do(context.Background(), Request{URL: raw})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "build request")
	})
	assert.Empty(t, rec.delays)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	srv, calls := statusServer(t, http.StatusServiceUnavailable, "")
	ctx, cancel := context.WithCancel(context.Background())

	c := New(nil, Policy{MaxRetries: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}, logger.Nop())
	go func() {
		for atomic.LoadInt32(calls) == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := c.Do(ctx, Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

type pendingShape struct {
	Success       bool   `json:"success" validate:"eq=true"`
	ReservationID string `json:"reservation_id" validate:"required"`
}

func TestDoJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		issues []string
	}{
		{name: "valid", body: `{"success":true,"reservation_id":"42"}`},
		{name: "missing id", body: `{"success":true}`, issues: []string{"reservation_id: failed required"}},
		{name: "not successful", body: `{"success":false,"reservation_id":"42"}`, issues: []string{"success: failed eq=true"}},
		{name: "both", body: `{}`, issues: []string{"success: failed eq=true", "reservation_id: failed required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := statusServer(t, http.StatusOK, tt.body)
			c, _ := newTestClient(DefaultPolicy())

			var out pendingShape
			err := c.DoJSON(context.Background(), Request{URL: srv.URL + "/booking/pending_reservation"}, &out)
			assert.EqualValues(t, 1, atomic.LoadInt32(calls))
			if tt.issues == nil {
				require.NoError(t, err)
				assert.Equal(t, "42", out.ReservationID)
				return
			}
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.issues, se.Issues)
			assert.False(t, IsTransient(err))
		})
	}
}

func TestDoJSONMalformedBody(t *testing.T) {
	srv, _ := statusServer(t, http.StatusOK, `<html>maintenance</html>`)
	c, _ := newTestClient(DefaultPolicy())

	var out pendingShape
	err := c.DoJSON(context.Background(), Request{URL: srv.URL}, &out)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Issues, 1)
	assert.Contains(t, se.Issues[0], "body:")
}
