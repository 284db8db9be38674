// Package domain contains core business entities and rules.
package domain

// Quote represents a quotation with its author.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID identifies the quote. On a fresh fetch it carries the upstream
	// identifier (possibly empty); a saved favorite gets a client-generated one.
	ID string

	// Content is the text of the quote.
	Content string

	// Author is who said or wrote the quote.
	Author string
}

// Text renders the quote as it is displayed and shared: "content" - author.
func (q Quote) Text() string {
	return `"` + q.Content + `" - ` + q.Author
}

// Validate reports whether the quote carries the fields required for display.
func (q Quote) Validate() error {
	if q.Content == "" {
		return NewValidationError("content", "is required")
	}

	if q.Author == "" {
		return NewValidationError("author", "is required")
	}

	return nil
}

// RawQuote is an upstream quote payload kept byte-for-byte so it can be
// forwarded without re-encoding.
type RawQuote struct {
	// Source names the upstream host that produced the payload.
	Source string

	// Body is the JSON document returned by the upstream API.
	Body []byte
}
