package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

// maxResponseBytes bounds how much of a reply body is read
const maxResponseBytes = 1 << 20

type sendPayload struct {
	Message string `json:"message"`
}

// buildPayload creates the request body for a message
func buildPayload(text string) ([]byte, error) {
	return json.Marshal(sendPayload{Message: text})
}

// exchange performs one POST and decodes the envelope
func (c *ChatClient) exchange(ctx context.Context, text string) (*Envelope, error) {
	c.log.Debug().Str("message", text).Msg("sending message")

	payload, err := buildPayload(text)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("send message", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	c.log.Debug().Int("status", resp.StatusCode).Str("content_type", resp.Header.Get("Content-Type")).Msg("raw response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.NewTransportError(resp.StatusCode, c.endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", c.endpoint, err)
	}
	if len(body) > maxResponseBytes {
		return nil, apierrors.NewNetworkError("read response", c.endpoint,
			fmt.Errorf("%w: more than %d bytes", apierrors.ErrResponseTooLarge, maxResponseBytes))
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, apierrors.NewNetworkError("decode response", c.endpoint, err)
	}
	c.log.Debug().RawJSON("envelope", env.Raw()).Msg("parsed response")

	if env.BodyErr != nil {
		c.log.Error().Err(env.BodyErr).Msg("failed to parse response body")
	}

	return env, nil
}
