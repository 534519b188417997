package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/honeypot/internal/api/v1"
	"github.com/gosuda/honeypot/internal/domain"
	"github.com/gosuda/honeypot/internal/honeypot"
)

type mockProcessor struct {
	processFunc func(ctx context.Context, turn honeypot.Turn) (string, error)
	got         honeypot.Turn
}

func (m *mockProcessor) Process(ctx context.Context, turn honeypot.Turn) (string, error) {
	m.got = turn
	return m.processFunc(ctx, turn)
}

type mockCounter struct {
	n   int
	err error
}

func (m mockCounter) ActiveSessions(context.Context) (int, error) { return m.n, m.err }

func replyWith(text string) *mockProcessor {
	return &mockProcessor{processFunc: func(context.Context, honeypot.Turn) (string, error) {
		return text, nil
	}}
}

func TestProcessTurn(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		proc := replyWith("Why is my account blocked?")
		v1.RegisterHoneypotRoutes(api, proc)

		resp := api.Post("/api/honeypot", map[string]any{
			"sessionId": "s1",
			"message": map[string]any{
				"sender":    "scammer",
				"text":      "Your account is blocked",
				"timestamp": 1700000000000,
			},
			"conversationHistory": []map[string]any{
				{"sender": "scammer", "text": "Hello", "timestamp": 1699999990000},
				{"sender": "user", "text": "Hi?", "timestamp": 1699999991000},
			},
			"metadata": map[string]any{"channel": "SMS", "language": "English", "locale": "IN"},
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Status string `json:"status"`
			Reply  string `json:"reply"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, "Why is my account blocked?", body.Reply)

		assert.Equal(t, "s1", proc.got.SessionID)
		assert.Equal(t, domain.SenderCounterparty, proc.got.Message.Sender)
		assert.Equal(t, int64(1700000000000), proc.got.Message.Timestamp)
		require.Len(t, proc.got.History, 2)
		assert.Equal(t, domain.SenderAgent, proc.got.History[1].Sender)
		assert.Equal(t, "SMS", proc.got.Metadata.Channel)
		assert.Equal(t, "IN", proc.got.Metadata.Locale)
	})

	t.Run("history and metadata are optional", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		proc := replyWith("ok")
		v1.RegisterHoneypotRoutes(api, proc)

		resp := api.Post("/api/honeypot", map[string]any{
			"sessionId": "s2",
			"message":   map[string]any{"sender": "scammer", "text": "hi", "timestamp": 1},
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, proc.got.History)
		assert.Equal(t, honeypot.Metadata{}, proc.got.Metadata)
	})

	t.Run("missing session id", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHoneypotRoutes(api, replyWith("unused"))

		resp := api.Post("/api/honeypot", map[string]any{
			"message": map[string]any{"sender": "scammer", "text": "hi", "timestamp": 1},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("missing message", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHoneypotRoutes(api, replyWith("unused"))

		resp := api.Post("/api/honeypot", map[string]any{"sessionId": "s3"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("unknown sender", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHoneypotRoutes(api, replyWith("unused"))

		resp := api.Post("/api/honeypot", map[string]any{
			"sessionId": "s4",
			"message":   map[string]any{"sender": "bot", "text": "hi", "timestamp": 1},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("processor error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		proc := &mockProcessor{processFunc: func(context.Context, honeypot.Turn) (string, error) {
			return "", errors.New("store down")
		}}
		v1.RegisterHoneypotRoutes(api, proc)

		resp := api.Post("/api/honeypot", map[string]any{
			"sessionId": "s5",
			"message":   map[string]any{"sender": "scammer", "text": "hi", "timestamp": 1},
		})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestStatusRoutes(t *testing.T) {
	t.Parallel()

	info := v1.ServiceInfo{Name: "Agentic Honey-Pot API", Version: "1.0.0", Environment: "test"}

	t.Run("root", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, info, mockCounter{})

		resp := api.Get("/")

		require.Equal(t, http.StatusOK, resp.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, "Agentic Honey-Pot API", body["service"])
		assert.Equal(t, "1.0.0", body["version"])
	})

	t.Run("health", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, info, mockCounter{n: 7})

		resp := api.Get("/health")

		require.Equal(t, http.StatusOK, resp.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.InDelta(t, 7, body["active_sessions"], 0)
		assert.Equal(t, "test", body["environment"])
	})

	t.Run("health store failure", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, info, mockCounter{err: errors.New("redis down")})

		resp := api.Get("/health")

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}
