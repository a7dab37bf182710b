package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope is the conventional response wrapper. Older backend revisions
// return bare payloads for some endpoints, so the absence of the "success"
// field means the body itself is the payload. Both shapes are accepted here
// and only here; nothing past this decode step branches on shape.
type envelope struct {
	Success     *bool             `json:"success"`
	Data        json.RawMessage   `json:"data"`
	ErrorCode   string            `json:"errorCode"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
	Err         *envelopeError    `json:"error"`
}

// envelopeError is the nested error object some revisions use
type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeResponse normalizes a response body into out, or into a *Error.
func decodeResponse(status int, body []byte, out interface{}) error {
	var env envelope
	enveloped := json.Unmarshal(body, &env) == nil && env.Success != nil

	if status >= http.StatusBadRequest {
		apiErr := &Error{
			Status:  status,
			Message: http.StatusText(status),
		}
		if enveloped {
			apiErr.Code = env.ErrorCode
			apiErr.Message = env.Message
			apiErr.FieldErrors = env.FieldErrors
			if env.Err != nil {
				if apiErr.Code == "" {
					apiErr.Code = env.Err.Code
				}
				if apiErr.Message == "" {
					apiErr.Message = env.Err.Message
				}
			}
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(status)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	payload := body
	if enveloped {
		if !*env.Success {
			// Success envelope with success=false but a 2xx status; treat
			// it as a rejection rather than guessing at the payload
			apiErr := &Error{
				Status:      http.StatusBadRequest,
				Code:        env.ErrorCode,
				Message:     env.Message,
				FieldErrors: env.FieldErrors,
			}
			if env.Err != nil {
				if apiErr.Code == "" {
					apiErr.Code = env.Err.Code
				}
				if apiErr.Message == "" {
					apiErr.Message = env.Err.Message
				}
			}
			return apiErr
		}
		payload = env.Data
	}

	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
