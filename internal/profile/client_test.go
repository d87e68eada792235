package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/junkd0g/streakcal/internal/calendar"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func TestClient_Fetch(t *testing.T) {
	srv, path := newTestServer(t, http.StatusOK,
		`{"message":"ok","data":{"streak":12,"testActivity":{"testsByDays":[5,0,null,10]}}}`)

	p, err := NewClient(srv.URL+"/", time.Second).Fetch(t.Context(), "ghost")
	require.NoError(t, err)

	assert.Equal(t, "/users/ghost/profile?isUid=false", *path)
	assert.Equal(t, "ghost", p.Username)
	assert.Equal(t, 12, p.Streak)
	assert.Equal(t, calendar.Log{
		calendar.Recorded(5), calendar.Recorded(0), calendar.Absent(), calendar.Recorded(10),
	}, p.Activity)
}

func TestClient_Fetch_EscapesUsername(t *testing.T) {
	srv, path := newTestServer(t, http.StatusOK, `{"data":{"testActivity":{"testsByDays":[]}}}`)

	_, err := NewClient(srv.URL, time.Second).Fetch(t.Context(), "a b/c")
	require.NoError(t, err)
	assert.Equal(t, "/users/a%20b%2Fc/profile?isUid=false", *path)
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"message":"User not found"}`, ErrNotFound},
		{"server error", http.StatusInternalServerError, `{}`, ErrUpstream},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrUpstream},
		{"garbage", http.StatusOK, `<html>`, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, time.Second).Fetch(t.Context(), "ghost")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Fetch_MissingActivityIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":{"streak":3}}`)

	p, err := NewClient(srv.URL, time.Second).Fetch(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Streak)
	assert.Empty(t, p.Activity)
}

func TestClient_Fetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Fetch(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Fetch(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestDecode_DataShape(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":null}`, `{"data":{"testActivity":{}}}`} {
		p, err := Decode([]byte(body))
		assert.ErrorIs(t, err, ErrDataShape, body)
		require.NotNil(t, p)
		assert.Empty(t, p.Activity)
	}
}

func TestSanitize(t *testing.T) {
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[3, null, -2, 1.5, "7", true, 0, 4.0]`), &raw))

	assert.Equal(t, calendar.Log{
		calendar.Recorded(3),
		calendar.Absent(),
		calendar.Absent(),
		calendar.Absent(),
		calendar.Absent(),
		calendar.Absent(),
		calendar.Recorded(0),
		calendar.Recorded(4),
	}, Sanitize(raw))
}

func TestClient_Fetch_PropagatesTraceContext(t *testing.T) {
	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		_, _ = w.Write([]byte(`{"data":{"testActivity":{"testsByDays":[]}}}`))
	}))
	t.Cleanup(srv.Close)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled, Remote: true})
	ctx := trace.ContextWithRemoteSpanContext(t.Context(), sc)

	c := NewClient(srv.URL, time.Second)
	c.propagator = propagation.TraceContext{}
	_, err = c.Fetch(ctx, "ghost")
	require.NoError(t, err)

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", traceparent)
}
