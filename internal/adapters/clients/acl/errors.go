package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/clients"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
)

// errorBodyLimit caps how much of an error response is read.
const errorBodyLimit = 4 << 10

// errorBody matches both error shapes seen on the wire: the proxy's flat
// {"error": "...", "details": "..."} and the service envelope
// {"error": {"code": "...", "message": "..."}}. quotable.io itself uses
// {"statusCode": 404, "statusMessage": "..."}.
type errorBody struct {
	Error         json.RawMessage `json:"error"`
	Details       string          `json:"details"`
	StatusMessage string          `json:"statusMessage"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// describeErrorBody extracts a human-readable message from an error payload.
// It returns "" when body carries no recognizable error.
func describeErrorBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	var (
		parts []string
		flat  string
		env   envelopeError
	)

	switch {
	case json.Unmarshal(eb.Error, &flat) == nil && flat != "":
		parts = append(parts, flat)
	case json.Unmarshal(eb.Error, &env) == nil && (env.Code != "" || env.Message != ""):
		parts = append(parts, strings.TrimSpace(env.Code+" "+env.Message))
	}

	if eb.Details != "" {
		parts = append(parts, eb.Details)
	}

	if eb.StatusMessage != "" {
		parts = append(parts, eb.StatusMessage)
	}

	return strings.Join(parts, ": ")
}

// hasErrorField reports whether a JSON object carries a non-null "error" member.
func hasErrorField(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// MapHTTPError translates a failed call into a domain.UnavailableError for
// service. Pass the client error when the call itself failed, or the
// response when it returned a non-2xx status; a 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, service string) error {
	if clientErr != nil {
		return mapClientError(clientErr, service)
	}

	if resp == nil {
		return domain.NewUnavailableError(service, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	}

	return domain.NewUnavailableError(service, statusReason(resp.StatusCode, body))
}

func mapClientError(err error, service string) error {
	var statusErr *clients.StatusError

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open")
	case errors.As(err, &statusErr):
		return domain.NewUnavailableError(service, statusReason(statusErr.StatusCode, []byte(statusErr.Body)))
	default:
		return domain.NewUnavailableError(service, err.Error())
	}
}

func statusReason(status int, body []byte) string {
	reason := fmt.Sprintf("HTTP %d", status)
	if desc := describeErrorBody(body); desc != "" {
		reason += ": " + desc
	}

	return reason
}

// bodyExcerpt shortens a payload for logging.
func bodyExcerpt(body []byte) string {
	const limit = 200
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
