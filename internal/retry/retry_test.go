package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

// fastPolicy records requested delays instead of sleeping.
func fastPolicy(delays *[]time.Duration) Policy {
	p := DefaultPolicy()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return p
}

func TestDelay(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
		delays    []time.Duration
	}{
		{"success first try", []error{nil}, 1, false, nil},
		{"network error then success", []error{errors.New("dial tcp: refused"), nil}, 2, false, []time.Duration{time.Second}},
		{"rate limited then success", []error{statusErr(429), statusErr(503), nil}, 3, false, []time.Duration{time.Second, 2 * time.Second}},
		{"auth error not retried", []error{statusErr(401)}, 1, true, nil},
		{"validation error not retried", []error{statusErr(422)}, 1, true, nil},
		{"budget exhausted", []error{statusErr(500), statusErr(500), statusErr(500), statusErr(500)}, 4, true,
			[]time.Duration{time.Second, 2 * time.Second, 4 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delays []time.Duration
			calls := 0
			got, err := Do(context.Background(), fastPolicy(&delays), func(context.Context) (string, error) {
				err := tt.errs[calls]
				calls++
				if err != nil {
					return "", err
				}
				return "ok", nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.delays, delays)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ok", got)
			}
		})
	}
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	cause := errors.New("bad payload")
	calls := 0
	_, err := Do(context.Background(), fastPolicy(nil), func(context.Context) (int, error) {
		calls++
		return 0, Permanent(cause)
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, cause, err)
	assert.NoError(t, Permanent(nil))
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultPolicy()
	calls := 0
	_, err := Do(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("temporary")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoHTTP(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantStatus int
		wantCalls  int32
	}{
		{"ok", []int{200}, 200, 1},
		{"retry 503 then ok", []int{503, 200}, 200, 2},
		{"404 returned immediately", []int{404}, 404, 1},
		{"429 until budget exhausted", []int{429, 429, 429, 429}, 429, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer server.Close()

			var delays []time.Duration
			resp, err := DoHTTP(context.Background(), fastPolicy(&delays), server.Client(), func(ctx context.Context) (*http.Request, error) {
				return http.NewRequestWithContext(ctx, http.MethodPost, server.URL, nil)
			})
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			assert.Len(t, delays, int(tt.wantCalls)-1)
		})
	}
}

func TestDoHTTP_NetworkErrorAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var delays []time.Duration
	_, err := DoHTTP(context.Background(), fastPolicy(&delays), nil, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	assert.Error(t, err)
	assert.Len(t, delays, 3)
}

func TestReadableError(t *testing.T) {
	tests := []struct {
		source  Source
		status  int
		message string
		want    string
	}{
		{SourceNotion, 429, "", "Notion rate limit reached. Please wait a moment and try again."},
		{SourceAI, 502, "", "AI server is temporarily unavailable. Please try again later."},
		{SourceNotion, 401, "", "Notion integration secret is invalid. Check your settings in your config."},
		{SourceNotion, 404, "", "Notion database not found. Check the database ID in your config."},
		{SourceNotion, 400, "Salary is not a property that exists.", "Notion rejected the data: Salary is not a property that exists."},
		{SourceNotion, 400, "", "Notion rejected the data: Check that your database properties match the required schema."},
		{SourceAI, 401, "", "AI API key is invalid. Check your key in your config."},
		{SourceAI, 403, "", "AI API key does not have access. Check your billing or quota."},
		{SourceAI, 400, "", "AI request was invalid: Unknown error"},
		{SourceAI, 409, "conflict", "AI error (409): conflict"},
		{SourceNotion, 422, "", "Notion error (422): Unknown error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.source, tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ReadableError(tt.source, tt.status, tt.message))
		})
	}
	assert.Contains(t, ReadableError(SourceNotion, 403, ""), "not shared with your integration")
}
