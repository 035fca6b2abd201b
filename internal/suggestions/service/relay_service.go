package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/todosuggest/relay/internal/suggestions/domain"
	"github.com/todosuggest/relay/internal/suggestions/gemini"
	"github.com/todosuggest/relay/internal/suggestions/prompt"
)

type Mode string

const (
	// ModePrompt builds the fixed prompt from existingTasks.
	ModePrompt Mode = "prompt"
	// ModePassthrough forwards the inbound JSON body as the upstream payload.
	ModePassthrough Mode = "passthrough"

	DefaultMaxBodyBytes int64 = 1 << 20
)

// Upstream is the generative-language API as seen by the relay.
type Upstream interface {
	Configured() bool
	Model() string
	GenerateContent(ctx context.Context, p prompt.Prompt) (string, error)
	Forward(ctx context.Context, payload []byte) (*gemini.RawResponse, error)
}

type Options struct {
	Mode         Mode
	MaxBodyBytes int64
	// LogLevel is debug, info, warn or error. Errors are always written.
	LogLevel string
	// Metrics receives the relay's counters. A fresh set is used when nil.
	Metrics *Metrics
}

type RelayService struct {
	upstream     Upstream
	mode         Mode
	maxBodyBytes int64
	logLevel     logLevel
	metrics      *Metrics
}

func NewRelayService(upstream Upstream, opts Options) *RelayService {
	if opts.Mode == "" {
		opts.Mode = ModePrompt
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &RelayService{
		upstream:     upstream,
		mode:         opts.Mode,
		maxBodyBytes: opts.MaxBodyBytes,
		logLevel:     parseLogLevel(opts.LogLevel),
		metrics:      opts.Metrics,
	}
}

func (s *RelayService) Mode() Mode { return s.mode }

func (s *RelayService) Metrics() *Metrics { return s.metrics }

func (s *RelayService) logger(ctx context.Context) *Logger {
	return newLogger(ctx, s.logLevel)
}

func (s *RelayService) Upstream() Upstream { return s.upstream }

// Reply is the single response produced for one inbound request. Raw, when
// set, is written verbatim instead of encoding Payload.
type Reply struct {
	Status      int
	Payload     any
	Raw         []byte
	ContentType string
}

// Handle runs one request through the relay: method check, configuration
// check, body parsing, then the upstream call. It always returns a reply.
func (s *RelayService) Handle(ctx context.Context, method string, body io.Reader) Reply {
	logger := s.logger(ctx)

	if method != http.MethodPost {
		s.metrics.recordMethodRejection()
		return ErrorReply(domain.ErrMethodNotAllowed)
	}

	if !s.upstream.Configured() {
		s.metrics.recordConfigError()
		logger.LogError("suggest", domain.ErrMissingConfiguration)
		return ErrorReply(domain.ErrMissingConfiguration)
	}

	payload, err := s.readBody(body)
	if err != nil {
		s.metrics.recordInvalidBody()
		logger.LogWarnf("suggest", "read body: %v", err)
		return ErrorReply(domain.ErrInvalidRequestBody)
	}

	req, err := prompt.ParseRequest(payload)
	if err != nil {
		s.metrics.recordInvalidBody()
		logger.LogWarnf("suggest", "parse body: %v", err)
		return ErrorReply(err)
	}

	if s.mode == ModePassthrough {
		return s.forward(ctx, payload)
	}

	text, err := s.Suggest(ctx, req)
	if err != nil {
		return ErrorReply(err)
	}
	return Reply{
		Status:  http.StatusOK,
		Payload: domain.SuggestionResponse{Suggestion: text},
	}
}

// Suggest builds the prompt for req, calls the upstream once and returns the
// trimmed suggestion.
func (s *RelayService) Suggest(ctx context.Context, req domain.SuggestionRequest) (string, error) {
	logger := s.logger(ctx)

	if !s.upstream.Configured() {
		return "", domain.ErrMissingConfiguration
	}

	p := prompt.Build(req)

	start := time.Now()
	text, err := s.upstream.GenerateContent(ctx, p)
	s.metrics.recordUpstreamCall(time.Since(start), err)
	if err != nil {
		logger.LogErrorf("generate_content", "model=%s error=%v", s.upstream.Model(), err)
		return "", &domain.UpstreamError{Err: err}
	}

	s.metrics.recordSuggestion()
	logger.LogInfof("generate_content", "model=%s duration=%s", s.upstream.Model(), time.Since(start))
	return strings.TrimSpace(text), nil
}

func (s *RelayService) forward(ctx context.Context, payload []byte) Reply {
	logger := s.logger(ctx)

	start := time.Now()
	raw, err := s.upstream.Forward(ctx, payload)
	if err != nil {
		s.metrics.recordUpstreamCall(time.Since(start), err)
		logger.LogErrorf("forward", "model=%s error=%v", s.upstream.Model(), err)
		return ErrorReply(&domain.UpstreamError{Err: err})
	}

	var statusErr error
	if raw.StatusCode >= 400 {
		logger.LogWarnf("forward", "upstream returned status %d", raw.StatusCode)
		statusErr = errors.New(http.StatusText(raw.StatusCode))
	} else {
		s.metrics.recordSuggestion()
	}
	s.metrics.recordUpstreamCall(time.Since(start), statusErr)

	contentType := raw.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return Reply{
		Status:      raw.StatusCode,
		Raw:         raw.Body,
		ContentType: contentType,
	}
}

func (s *RelayService) readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(io.LimitReader(body, s.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > s.maxBodyBytes {
		return nil, errors.New("body exceeds limit")
	}
	return b, nil
}

// ErrorReply maps an error kind onto its status and JSON body.
func ErrorReply(err error) Reply {
	var upstreamErr *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return Reply{Status: http.StatusMethodNotAllowed, Payload: domain.ErrorResponse{Error: domain.MsgMethodNotAllowed}}
	case errors.Is(err, domain.ErrMissingConfiguration):
		return Reply{Status: http.StatusInternalServerError, Payload: domain.ErrorResponse{Error: domain.MsgMissingConfiguration}}
	case errors.Is(err, domain.ErrInvalidRequestBody):
		return Reply{Status: http.StatusBadRequest, Payload: domain.ErrorResponse{Error: domain.MsgInvalidRequestBody}}
	case errors.As(err, &upstreamErr):
		return Reply{Status: http.StatusInternalServerError, Payload: domain.ErrorResponse{
			Error:   domain.MsgUpstreamFailure,
			Details: upstreamErr.Details(),
		}}
	default:
		return Reply{Status: http.StatusInternalServerError, Payload: domain.ErrorResponse{
			Error:   domain.MsgUpstreamFailure,
			Details: err.Error(),
		}}
	}
}
