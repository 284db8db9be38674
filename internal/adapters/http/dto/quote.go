package dto

// Fixed texts of the proxy failure body.
const (
	QuoteFailureError   = "Failed to fetch quote"
	QuoteFailureDetails = "Both API endpoints failed to respond"
)

// QuoteFailureResponse is the body of GET /api/quote when every upstream
// host failed. Clients match on these exact strings.
type QuoteFailureResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// NewQuoteFailureResponse returns the fixed failure body.
func NewQuoteFailureResponse() QuoteFailureResponse {
	return QuoteFailureResponse{Error: QuoteFailureError, Details: QuoteFailureDetails}
}

// BuildInfo is the body of GET /-/build.
type BuildInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	GoVersion   string `json:"goVersion"`
	Commit      string `json:"commit,omitempty"`
}
