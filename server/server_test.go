package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/analytics"
	"github.com/onnwee/chatmood/backend/chat"
	"github.com/onnwee/chatmood/backend/registry"
	"github.com/onnwee/chatmood/backend/store"
	"github.com/onnwee/chatmood/backend/testutil"
)

// fakeResolver maps bearer tokens to tenant ids.
type fakeResolver map[string]primitive.ObjectID

func (f fakeResolver) ResolveTenant(_ context.Context, token string) (primitive.ObjectID, error) {
	id, ok := f[token]
	if !ok {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return id, nil
}

// fakeStatus reports a fixed reconciler state.
type fakeStatus struct {
	state    chat.State
	channels []string
}

func (f *fakeStatus) Status() (chat.State, []string) { return f.state, f.channels }

type testEnv struct {
	handler  http.Handler
	tenant   primitive.ObjectID
	token    string
	channels *testutil.FakeChannelStore
	stats    *testutil.FakeStats
	ping     *error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("ENV", "dev")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	channels := testutil.NewFakeChannelStore()
	stats := &testutil.FakeStats{}
	tenant := primitive.NewObjectID()
	var pingErr error

	deps := Deps{
		Registry:   registry.New(channels),
		Aggregator: analytics.NewAggregator(stats, 0),
		Resolver:   fakeResolver{"tok-alice": tenant},
		Reconciler: &fakeStatus{state: chat.StateConnected, channels: []string{"xqc"}},
		Ping:       func(context.Context) error { return pingErr },
	}
	return &testEnv{
		handler:  NewMux(ctx, deps),
		tenant:   tenant,
		token:    "tok-alice",
		channels: channels,
		stats:    stats,
		ping:     &pingErr,
	}
}

func (e *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestChannelAddAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/channels/add", `{"channelName":" #Pokimane "}`, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)
	if !got.Success {
		t.Errorf("add success = false: %s", got.Error)
	}
	if got.Message != "Added channel: pokimane" {
		t.Errorf("add message = %q", got.Message)
	}

	rec = env.do(t, http.MethodGet, "/channels", "", env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	got = decodeEnvelope(t, rec)
	data, ok := got.Data.(map[string]any)
	if !ok {
		t.Fatalf("list data = %T", got.Data)
	}
	channels, ok := data["channels"].([]any)
	if !ok || len(channels) != 1 || channels[0] != "pokimane" {
		t.Errorf("list channels = %v, want [pokimane]", data["channels"])
	}
}

func TestChannelAddErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       string
		setup      func()
		wantStatus int
		wantError  string
	}{
		{
			name:       "empty_name",
			body:       `{"channelName":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Channel name is required",
		},
		{
			name: "duplicate",
			body: `{"channelName":"xqc"}`,
			setup: func() {
				env.do(t, http.MethodPost, "/channels/add", `{"channelName":"xqc"}`, env.token)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Channel already being tracked",
		},
		{
			name:       "malformed_body",
			body:       `{channelName`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := env.do(t, http.MethodPost, "/channels/add", tt.body, env.token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decodeEnvelope(t, rec)
			if got.Success {
				t.Error("success = true on error response")
			}
			if got.Error != tt.wantError {
				t.Errorf("error = %q, want %q", got.Error, tt.wantError)
			}
		})
	}
}

func TestChannelRemoveNotTracked(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/channels/ghost", "", env.token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeEnvelope(t, rec); got.Error != "Channel not found" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		target string
		token  string
	}{
		{"channels_no_token", http.MethodGet, "/channels", ""},
		{"channels_bad_token", http.MethodGet, "/channels", "nope"},
		{"leaderboard_no_token", http.MethodGet, "/leaderboard", ""},
		{"add_no_token", http.MethodPost, "/channels/add", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, "", tt.token)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestLeaderboardGlobalNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t)
	env.stats.UserStats = []store.UserStats{{Username: "chatter", Count: 5}}

	rec := env.do(t, http.MethodGet, "/leaderboard?global=true", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)
	rows, ok := got.Data.([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("data = %v", got.Data)
	}
	row := rows[0].(map[string]any)
	if row["username"] != "chatter" {
		t.Errorf("username = %v", row["username"])
	}
}

func TestSentimentDistributionZeroFilled(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/sentiment-distribution?global=true", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	dist, ok := got.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", got.Data)
	}
	for _, key := range []string{"positive", "negative", "neutral"} {
		if dist[key] != float64(0) {
			t.Errorf("%s = %v, want 0", key, dist[key])
		}
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	data := got.Data.(map[string]any)
	if data["connection"] != string(chat.StateConnected) {
		t.Errorf("connection = %v", data["connection"])
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthy probe = %d %q", rec.Code, rec.Body.String())
	}

	*env.ping = errors.New("mongo unreachable")
	rec = env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy probe status = %d, want 503", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/channels/add", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestCorrelationIDEcho(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Errorf("correlation header = %q, want echoed corr-123", got)
	}

	// Absent header gets a generated id.
	rec = env.do(t, http.MethodGet, "/status", "", "")
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("correlation header missing on response")
	}
}

func TestRateLimitMutatingRequests(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS_PER_IP", "2")
	env := newTestEnv(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/channels/add", `{"channelName":""}`, env.token)
		codes = append(codes, rec.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third mutating request = %d, want 429 (got %v)", codes[2], codes)
	}

	// Reads are never throttled.
	rec := env.do(t, http.MethodGet, "/status", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("read after limit = %d, want 200", rec.Code)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"https://app.example.com", "*.chatmood.dev"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.example.com", true},
		{"https://evil.example.net", false},
		{"https://dash.chatmood.dev", true},
		{"https://chatmood.dev", true},
		{"https://notchatmood.dev", false},
	}
	for _, tt := range tests {
		if got := isOriginAllowed(tt.origin, allowed); got != tt.want {
			t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
