package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/todosuggest/relay/internal/suggestions/prompt"
)

// GenAIClient calls generateContent through the Gen AI SDK. Forward goes
// over the plain REST client so passthrough bodies reach the API unchanged.
type GenAIClient struct {
	baseURL    string
	apiVersion string
	apiKey     string
	model      string
	timeout    time.Duration
	rest       *Client

	mu     sync.Mutex
	client *genai.Client
}

func NewGenAIClient(baseURL, apiKey, model string, timeout time.Duration) *GenAIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	model = strings.TrimPrefix(model, "models/")
	root, version := splitAPIVersion(baseURL)
	return &GenAIClient{
		baseURL:    root,
		apiVersion: version,
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		rest:       NewClient(baseURL, apiKey, model, timeout),
	}
}

// splitAPIVersion turns "https://host/v1beta" into ("https://host/", "v1beta").
// A base URL without a path leaves the version to the SDK default.
func splitAPIVersion(baseURL string) (string, string) {
	trimmed := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(trimmed)
	if err != nil || u.Path == "" {
		return trimmed + "/", ""
	}
	i := strings.LastIndex(u.Path, "/")
	version := u.Path[i+1:]
	u.Path = u.Path[:i+1]
	return u.String(), version
}

func (c *GenAIClient) Configured() bool { return c.apiKey != "" }

func (c *GenAIClient) Model() string { return c.model }

func (c *GenAIClient) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.baseURL,
			APIVersion: c.apiVersion,
		},
	})
	if err != nil {
		// the SDK error embeds the whole client config, key included
		return nil, errors.New("gemini sdk client could not be created")
	}
	c.client = client
	return client, nil
}

func (c *GenAIClient) GenerateContent(ctx context.Context, p prompt.Prompt) (string, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{CandidateCount: 1}
	if p.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(p.System)}}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(p.User), config)
	if err != nil {
		return "", mapGenAIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", blockedError(string(resp.PromptFeedback.BlockReason))
		}
		return "", ErrNoCandidates
	}
	return resp.Text(), nil
}

func (c *GenAIClient) Forward(ctx context.Context, payload []byte) (*RawResponse, error) {
	return c.rest.Forward(ctx, payload)
}

func mapGenAIError(err error) error {
	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return &APIError{
			StatusCode: gerr.Code,
			Status:     strings.TrimPrefix(gerr.Status, strconv.Itoa(gerr.Code)+" "),
			Message:    gerr.Message,
		}
	}
	return fmt.Errorf("gemini %w", stripURL(err))
}
