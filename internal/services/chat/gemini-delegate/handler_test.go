// internal/services/chat/gemini-delegate/handler_test.go
package geminidelegate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Model:    "gemini-test",
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	}
}

// fakeGemini serves generateContent and counts calls.
func fakeGemini(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

const okBody = `{"candidates":[{"content":{"parts":[{"text":"Paris is the capital of France."}]}}]}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	h := NewHandler(createTestConfig(server.URL), nil, NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Message: "What is the capital of France?"})

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", out.Reply)
	assert.False(t, out.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestHandler_Execute_SendsMessageAsSinglePart(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	h := NewHandler(createTestConfig(server.URL+"/"), nil, NewTestLogger(t))
	_, err := h.Ask(context.Background(), "  hello there ")

	require.NoError(t, err)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "  hello there ", got.Contents[0].Parts[0].Text)
}

func TestHandler_Execute_MissingTextYieldsPlaceholder(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			server, _ := fakeGemini(t, http.StatusOK, body)
			h := NewHandler(createTestConfig(server.URL), nil, NewTestLogger(t))

			reply, err := h.Ask(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, NoResponse, reply)
		})
	}
}

func TestHandler_Execute_MissingKey(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	cfg := createTestConfig(server.URL)
	cfg.APIKey = ""
	h := NewHandler(cfg, nil, NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})

	assert.True(t, errors.Is(err, ErrAPIKeyMissing))
	assert.False(t, h.Configured())
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestHandler_Execute_UpstreamError(t *testing.T) {
	body := `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`
	server, _ := fakeGemini(t, http.StatusServiceUnavailable, body)
	h := NewHandler(createTestConfig(server.URL), nil, NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamFailed))
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
	assert.JSONEq(t, body, upstream.Body)
}

func TestHandler_Execute_UndecodableSuccess(t *testing.T) {
	server, _ := fakeGemini(t, http.StatusOK, `<html>not json</html>`)
	h := NewHandler(createTestConfig(server.URL), nil, NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(okBody))
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	h := NewHandler(cfg, nil, NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestHandler_Execute_Unreachable(t *testing.T) {
	server, _ := fakeGemini(t, http.StatusOK, okBody)
	url := server.URL
	server.Close()

	h := NewHandler(createTestConfig(url), nil, NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{Message: "hi"})
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

// ==========================
// Reply Cache Tests
// ==========================

func TestHandler_Execute_CachesReplies(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	rdb, mr := setupRedis(t)
	h := NewHandler(createTestConfig(server.URL), rdb, NewTestLogger(t))

	first, err := h.Execute(context.Background(), &Input{Message: "capital of France?"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := h.Execute(context.Background(), &Input{Message: "capital of France?"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	key := cacheKey("gemini-test", "capital of France?")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestHandler_Execute_NoCacheByDefault(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	h := NewHandler(createTestConfig(server.URL), nil, NewTestLogger(t))

	for i := 0; i < 3; i++ {
		out, err := h.Execute(context.Background(), &Input{Message: "capital of France?"})
		require.NoError(t, err)
		assert.False(t, out.Cached)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestHandler_Execute_ZeroTTLDisablesCache(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	rdb, mr := setupRedis(t)
	cfg := createTestConfig(server.URL)
	cfg.CacheTTL = 0
	h := NewHandler(cfg, rdb, NewTestLogger(t))

	for i := 0; i < 2; i++ {
		_, err := h.Execute(context.Background(), &Input{Message: "capital of France?"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Empty(t, mr.Keys())
}

func TestHandler_Execute_ErrorsAreNotCached(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusInternalServerError, `{"error":"boom"}`)
	rdb, mr := setupRedis(t)
	h := NewHandler(createTestConfig(server.URL), rdb, NewTestLogger(t))

	for i := 0; i < 2; i++ {
		_, err := h.Execute(context.Background(), &Input{Message: "hi"})
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Empty(t, mr.Keys())
}

func TestHandler_Execute_CacheDownFallsThrough(t *testing.T) {
	server, calls := fakeGemini(t, http.StatusOK, okBody)
	rdb, mr := setupRedis(t)
	mr.Close()

	h := NewHandler(createTestConfig(server.URL), rdb, NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", out.Reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("m", "hello"), cacheKey("m", "hello"))
	assert.NotEqual(t, cacheKey("m", "hello"), cacheKey("m", "Hello"))
	assert.NotEqual(t, cacheKey("a", "hello"), cacheKey("b", "hello"))
	assert.Contains(t, cacheKey("m", "hello"), cacheKeyPrefix+"m:")
}
