package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/todosuggest/relay/internal/suggestions/prompt"
)

const (
	// DefaultBaseURL is the public v1beta endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single generateContent call.
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 4 << 20
)

// Client calls generateContent over plain HTTPS with the key as a query
// parameter.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	modelPath string
	http      *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model = strings.TrimPrefix(model, "models/")
	return newClient(baseURL, apiKey, model, "models/"+url.PathEscape(model), timeout)
}

// newClient posts to {baseURL}/{modelPath}:generateContent.
func newClient(baseURL, apiKey, model, modelPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		modelPath: modelPath,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) Model() string { return c.model }

func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return c.baseURL + "/" + c.modelPath + ":generateContent?" + q.Encode()
}

// GenerateContent sends the prompt and returns the text of the first
// candidate.
func (c *Client) GenerateContent(ctx context.Context, p prompt.Prompt) (string, error) {
	payload, err := json.Marshal(NewRequest(p))
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	raw, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}
	if raw.StatusCode >= 400 {
		return "", parseAPIError(raw.StatusCode, raw.Body)
	}

	var out GenerateContentResponse
	if err := json.Unmarshal(raw.Body, &out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	return out.Text()
}

// Forward posts payload unchanged and hands back whatever the API answered.
func (c *Client) Forward(ctx context.Context, payload []byte) (*RawResponse, error) {
	return c.post(ctx, payload)
}

func (c *Client) post(ctx context.Context, payload []byte) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", stripURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("gemini read: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// NewRequest builds the single-turn payload for p.
func NewRequest(p prompt.Prompt) GenerateContentRequest {
	req := GenerateContentRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: p.User}},
		}},
		GenerationConfig: &GenerationConfig{CandidateCount: 1},
	}
	if p.System != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: p.System}}}
	}
	return req
}
