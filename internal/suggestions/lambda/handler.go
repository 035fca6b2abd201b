package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/todosuggest/relay/internal/requestid"
	"github.com/todosuggest/relay/internal/suggestions/domain"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

// Handler adapts API Gateway HTTP API events onto the relay.
type Handler struct {
	relay *service.RelayService
}

func NewHandler(relay *service.RelayService) *Handler {
	return &Handler{relay: relay}
}

// Handle never returns an error for relay failures; those become JSON
// responses like they do over plain HTTP.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	rid := requestid.Ensure(req.RequestContext.RequestID)
	ctx = requestid.WithRequestID(ctx, rid)

	reply := h.relay.Handle(ctx, req.RequestContext.HTTP.Method, requestBody(req))
	return toResponse(reply, rid), nil
}

// requestBody decodes base64 bodies as they are read, so a bad encoding
// surfaces as a body error after the method and configuration checks.
func requestBody(req events.APIGatewayV2HTTPRequest) io.Reader {
	body := strings.NewReader(req.Body)
	if !req.IsBase64Encoded {
		return body
	}
	return base64.NewDecoder(base64.StdEncoding, body)
}

func toResponse(reply service.Reply, rid string) events.APIGatewayV2HTTPResponse {
	body := reply.Raw
	contentType := reply.ContentType
	if body == nil {
		b, err := json.Marshal(reply.Payload)
		if err != nil {
			reply.Status = http.StatusInternalServerError
			b = []byte(`{"error":"` + domain.MsgUpstreamFailure + `"}`)
		}
		body = b
		contentType = "application/json; charset=utf-8"
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: reply.Status,
		Headers: map[string]string{
			"Content-Type":   contentType,
			requestid.Header: rid,
		},
		Body: string(body),
	}
}
