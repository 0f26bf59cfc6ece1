// Package shop provides the typed storefront API services: catalog browsing,
// order history, wholesale ordering, and notification settings. Services are
// thin wrappers over the transport layer; the session lifecycle is handled
// underneath them.
package shop

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bunhouse/storefront-go/pkg/model"
)

// unwrap decodes an envelope payload, turning an unsuccessful envelope into
// an APIError so callers keep a single error shape.
func unwrap[T any](env model.Envelope) (T, error) {
	var out T
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return out, &model.APIError{Message: message, StatusCode: http.StatusOK}
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return out, fmt.Errorf("decode payload: %w", err)
		}
	}
	return out, nil
}
