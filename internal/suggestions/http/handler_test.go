package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todosuggest/relay/internal/suggestions/gemini"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

type fakeGemini struct {
	server *httptest.Server
	calls  atomic.Int32
	prompt atomic.Value
}

func newFakeGemini(t *testing.T, status int, body string) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		var req gemini.GenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			f.prompt.Store(req.Contents[0].Parts[0].Text)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGemini) lastPrompt() string {
	s, _ := f.prompt.Load().(string)
	return s
}

func newRouter(apiKey string, upstreamURL string, mode service.Mode) *gin.Engine {
	gin.SetMode(gin.TestMode)

	client := gemini.NewClient(upstreamURL, apiKey, "gemini-2.5-flash", time.Second)
	relay := service.NewRelayService(client, service.Options{Mode: mode})

	r := gin.New()
	NewHandler(relay).Register(r.Group("/api"))
	return r
}

func do(r *gin.Engine, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/suggest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSuggest_Success(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  Buy milk  "}]}}]}`)
	r := newRouter("key", upstream.server.URL, service.ModePrompt)

	rr := do(r, http.MethodPost, `{"existingTasks":"buy eggs"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"suggestion":"Buy milk"}`, rr.Body.String())
	assert.Contains(t, upstream.lastPrompt(), "My current tasks are: buy eggs.")
	assert.EqualValues(t, 1, upstream.calls.Load())
}

func TestSuggest_MethodNotAllowed(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{}`)
	r := newRouter("key", upstream.server.URL, service.ModePrompt)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := do(r, method, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rr.Body.String())
	}
	assert.EqualValues(t, 0, upstream.calls.Load())
}

func TestSuggest_MissingKey(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{}`)
	r := newRouter("", upstream.server.URL, service.ModePrompt)

	rr := do(r, http.MethodPost, `{"existingTasks":"buy eggs"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Server configuration error: GEMINI_API_KEY is not set."}`, rr.Body.String())
	assert.EqualValues(t, 0, upstream.calls.Load())
}

func TestSuggest_InvalidJSON(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{}`)
	r := newRouter("key", upstream.server.URL, service.ModePrompt)

	rr := do(r, http.MethodPost, `{"existingTasks": buy eggs}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON body"}`, rr.Body.String())
	assert.EqualValues(t, 0, upstream.calls.Load())
}

func TestSuggest_DefaultsToNone(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Walk the dog"}]}}]}`)
	r := newRouter("key", upstream.server.URL, service.ModePrompt)

	rr := do(r, http.MethodPost, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, upstream.lastPrompt(), "My current tasks are: none.")
}

func TestSuggest_UpstreamFailure(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusServiceUnavailable, `{"error":{"code":503,"message":"The model is overloaded. Please try again later.","status":"UNAVAILABLE"}}`)
	r := newRouter("key", upstream.server.URL, service.ModePrompt)

	rr := do(r, http.MethodPost, `{"existingTasks":"buy eggs"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{
		"error": "Failed to generate content from Gemini API.",
		"details": "The model is overloaded. Please try again later."
	}`, rr.Body.String())
	assert.EqualValues(t, 1, upstream.calls.Load())
}

func TestSuggest_Passthrough(t *testing.T) {
	upstream := newFakeGemini(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"raw"}]}}]}`)
	r := newRouter("key", upstream.server.URL, service.ModePassthrough)

	rr := do(r, http.MethodPost, `{"contents":[{"parts":[{"text":"my own prompt"}]}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"candidates":[{"content":{"parts":[{"text":"raw"}]}}]}`, rr.Body.String())
	assert.Equal(t, "my own prompt", upstream.lastPrompt())
}
