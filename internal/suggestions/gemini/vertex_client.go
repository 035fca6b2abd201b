package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	aiplatform "google.golang.org/api/aiplatform/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/todosuggest/relay/internal/suggestions/prompt"
)

// DefaultVertexEndpoint is the global Vertex AI endpoint used in express
// mode, where an API key replaces project credentials.
const DefaultVertexEndpoint = "https://aiplatform.googleapis.com/"

// VertexClient calls Gemini models published on Vertex AI through the
// generated aiplatform client.
type VertexClient struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	rest     *Client

	mu  sync.Mutex
	svc *aiplatform.Service
}

func NewVertexClient(endpoint, apiKey, model string, timeout time.Duration) *VertexClient {
	if endpoint == "" {
		endpoint = DefaultVertexEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	endpoint = strings.TrimRight(endpoint, "/") + "/"
	model = strings.TrimPrefix(model, "models/")
	return &VertexClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		timeout:  timeout,
		rest:     newClient(endpoint+"v1", apiKey, model, "publishers/google/models/"+url.PathEscape(model), timeout),
	}
}

func (c *VertexClient) Configured() bool { return c.apiKey != "" }

func (c *VertexClient) Model() string { return c.model }

func (c *VertexClient) service(ctx context.Context) (*aiplatform.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.svc != nil {
		return c.svc, nil
	}

	svc, err := aiplatform.NewService(ctx,
		option.WithAPIKey(c.apiKey),
		option.WithEndpoint(c.endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create aiplatform service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

func (c *VertexClient) GenerateContent(ctx context.Context, p prompt.Prompt) (string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	req := &aiplatform.GoogleCloudAiplatformV1GenerateContentRequest{
		Contents: []*aiplatform.GoogleCloudAiplatformV1Content{{
			Role:  "user",
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: p.User}},
		}},
		GenerationConfig: &aiplatform.GoogleCloudAiplatformV1GenerationConfig{CandidateCount: 1},
	}
	if p.System != "" {
		req.SystemInstruction = &aiplatform.GoogleCloudAiplatformV1Content{
			Parts: []*aiplatform.GoogleCloudAiplatformV1Part{{Text: p.System}},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := svc.Publishers.Models.GenerateContent("publishers/google/models/"+c.model, req).Context(ctx).Do()
	if err != nil {
		return "", mapGoogleAPIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", blockedError(resp.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// Forward posts payload unchanged to the same Vertex model.
func (c *VertexClient) Forward(ctx context.Context, payload []byte) (*RawResponse, error) {
	return c.rest.Forward(ctx, payload)
}

func mapGoogleAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Message == "" {
			return parseAPIError(gerr.Code, []byte(gerr.Body))
		}
		apiErr := &APIError{StatusCode: gerr.Code, Message: gerr.Message}
		if parsed := parseAPIError(gerr.Code, []byte(gerr.Body)); parsed.Status != "" {
			apiErr.Status = parsed.Status
		}
		return apiErr
	}
	return fmt.Errorf("gemini %w", stripURL(err))
}
