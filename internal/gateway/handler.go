package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/logger"
)

// SessionHeader optionally carries a stable conversation id; bots that keep
// dialog state per user key it on this value.
const SessionHeader = "X-Concierge-Session"

// Reply texts of the gateway contract
const (
	MsgInvalidJSON   = "Invalid JSON format."
	MsgInvalidInput  = "Invalid input, please provide a message."
	MsgBotNotFound   = "Error: Lex bot alias not found. Ensure the alias 'prod' is published."
	MsgAccessDenied  = "Error: Lambda does not have permission to call Lex. Update the IAM role."
	MsgUnexpected    = "An unexpected error occurred while communicating with bot."
	MsgDefaultAnswer = "I'm not sure how to respond."
)

// Result is the outcome of one gateway request
type Result struct {
	StatusCode int
	Message    string
}

// Body returns the JSON response body, {"message": ...}
func (r Result) Body() string {
	data, err := json.Marshal(map[string]string{"message": r.Message})
	if err != nil {
		// a map of strings always marshals
		return `{"message":""}`
	}
	return string(data)
}

// Proxy returns the result in API Gateway proxy form
func (r Result) Proxy() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       r.Body(),
	}
}

// Handler validates requests and asks Bot for replies
type Handler struct {
	bot Bot
	log zerolog.Logger
}

// NewHandler creates a Handler backed by bot
func NewHandler(bot Bot) *Handler {
	return &Handler{bot: bot, log: logger.For("gateway")}
}

// Handle processes a request whose body is JSON text.
func (h *Handler) Handle(ctx context.Context, body, sessionID string) Result {
	if !gjson.Valid(body) {
		return Result{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return Result{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}
	}

	msg := doc.Get("message")
	text := strings.TrimSpace(msg.Str)
	if msg.Type != gjson.String || text == "" {
		return Result{StatusCode: http.StatusBadRequest, Message: MsgInvalidInput}
	}

	reply, err := h.bot.Reply(ctx, sessionID, text)
	switch {
	case err == nil:
	case errors.Is(err, apierrors.ErrBotNotFound):
		h.log.Error().Err(err).Msg("bot not found")
		return Result{StatusCode: http.StatusInternalServerError, Message: MsgBotNotFound}
	case errors.Is(err, apierrors.ErrAccessDenied):
		h.log.Error().Err(err).Msg("bot access denied")
		return Result{StatusCode: http.StatusForbidden, Message: MsgAccessDenied}
	default:
		h.log.Error().Err(err).Msg("unexpected bot error")
		return Result{StatusCode: http.StatusInternalServerError, Message: MsgUnexpected}
	}

	if reply == "" {
		reply = MsgDefaultAnswer
	}
	return Result{StatusCode: http.StatusOK, Message: reply}
}

// HandleRequest serves an API Gateway proxy request.
func (h *Handler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return Result{StatusCode: http.StatusBadRequest, Message: MsgInvalidJSON}.Proxy(), nil
		}
		body = string(decoded)
	}
	return h.Handle(ctx, body, headerValue(req.Headers, SessionHeader)).Proxy(), nil
}

// HandleEvent serves a raw Lambda event by normalizing it into a proxy
// request for HandleRequest. Unlike an API Gateway proxy event, the body may
// already be a JSON object, as direct invocations send it; a missing or null
// body is treated as an empty object.
func (h *Handler) HandleEvent(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	ev := gjson.ParseBytes(event)
	raw := ev.Get("body")

	var req events.APIGatewayProxyRequest
	switch {
	case !raw.Exists() || raw.Type == gjson.Null:
		req.Body = "{}"
	case raw.Type == gjson.String:
		req.Body = raw.Str
		req.IsBase64Encoded = ev.Get("isBase64Encoded").Bool()
	default:
		req.Body = raw.Raw
	}

	if headers := ev.Get("headers"); headers.IsObject() {
		req.Headers = make(map[string]string)
		headers.ForEach(func(key, value gjson.Result) bool {
			req.Headers[key.String()] = value.String()
			return true
		})
	}

	return h.HandleRequest(ctx, req)
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
