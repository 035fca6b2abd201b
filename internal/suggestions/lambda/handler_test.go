package lambda

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todosuggest/relay/internal/suggestions/gemini"
	"github.com/todosuggest/relay/internal/suggestions/prompt"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

type stubUpstream struct {
	configured bool
	text       string
	calls      int
	last       prompt.Prompt
}

func (s *stubUpstream) Configured() bool { return s.configured }
func (s *stubUpstream) Model() string    { return "gemini-test" }

func (s *stubUpstream) GenerateContent(ctx context.Context, p prompt.Prompt) (string, error) {
	s.calls++
	s.last = p
	return s.text, nil
}

func (s *stubUpstream) Forward(ctx context.Context, payload []byte) (*gemini.RawResponse, error) {
	return &gemini.RawResponse{StatusCode: http.StatusOK, Body: payload}, nil
}

func event(method, body string) events.APIGatewayV2HTTPRequest {
	req := events.APIGatewayV2HTTPRequest{Body: body}
	req.RequestContext.RequestID = "req-1"
	req.RequestContext.HTTP.Method = method
	return req
}

func TestHandle_Success(t *testing.T) {
	up := &stubUpstream{configured: true, text: " Pay electricity bill "}
	h := NewHandler(service.NewRelayService(up, service.Options{}))

	resp, err := h.Handle(context.Background(), event(http.MethodPost, `{"existingTasks":"buy eggs"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"suggestion":"Pay electricity bill"}`, resp.Body)
	assert.Equal(t, "req-1", resp.Headers["X-Request-Id"])
	assert.Contains(t, up.last.User, "My current tasks are: buy eggs.")
}

func TestHandle_Base64Body(t *testing.T) {
	up := &stubUpstream{configured: true, text: "Call mom"}
	h := NewHandler(service.NewRelayService(up, service.Options{}))

	ev := event(http.MethodPost, base64.StdEncoding.EncodeToString([]byte(`{"existingTasks":"walk"}`)))
	ev.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, up.last.User, "My current tasks are: walk.")
}

func TestHandle_BadBase64(t *testing.T) {
	cases := []struct {
		name       string
		method     string
		configured bool
		wantStatus int
		wantBody   string
	}{
		{"method checked first", http.MethodGet, true, http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{"credential checked second", http.MethodPost, false, http.StatusInternalServerError, `{"error":"Server configuration error: GEMINI_API_KEY is not set."}`},
		{"body rejected last", http.MethodPost, true, http.StatusBadRequest, `{"error":"Invalid JSON body"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := &stubUpstream{configured: tc.configured}
			h := NewHandler(service.NewRelayService(up, service.Options{}))

			ev := event(tc.method, "%%%")
			ev.IsBase64Encoded = true

			resp, err := h.Handle(context.Background(), ev)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.JSONEq(t, tc.wantBody, resp.Body)
			assert.Zero(t, up.calls)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	t.Run("method", func(t *testing.T) {
		up := &stubUpstream{configured: true}
		resp, err := NewHandler(service.NewRelayService(up, service.Options{})).Handle(context.Background(), event(http.MethodGet, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, resp.Body)
	})

	t.Run("missing key", func(t *testing.T) {
		up := &stubUpstream{}
		resp, err := NewHandler(service.NewRelayService(up, service.Options{})).Handle(context.Background(), event(http.MethodPost, "{}"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Zero(t, up.calls)
	})

	t.Run("generated request id", func(t *testing.T) {
		up := &stubUpstream{configured: true}
		ev := event(http.MethodGet, "")
		ev.RequestContext.RequestID = ""
		resp, err := NewHandler(service.NewRelayService(up, service.Options{})).Handle(context.Background(), ev)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Headers["X-Request-Id"])
	})
}
