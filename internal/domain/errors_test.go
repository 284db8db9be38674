package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrValidation,
		ErrUnavailable,
		ErrCorrupted,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       "content",
			message:     "is required",
			expectedMsg: "validation failed for content: is required",
		},
		{
			name:        "without field",
			field:       "",
			message:     "payload is empty",
			expectedMsg: "validation failed: payload is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidation(err))

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestUnavailableError(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		reason      string
		expectedMsg string
	}{
		{
			name:        "with reason",
			service:     "quote-proxy",
			reason:      "HTTP 500",
			expectedMsg: `service "quote-proxy" unavailable: HTTP 500`,
		},
		{
			name:        "without reason",
			service:     "quotable",
			reason:      "",
			expectedMsg: `service "quotable" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUnavailableError(tt.service, tt.reason)

			assert.Equal(t, tt.expectedMsg, err.Error())
			assert.True(t, IsUnavailable(err))
			assert.False(t, IsValidation(err))
		})
	}
}

func TestCorruptedError(t *testing.T) {
	var target []int
	cause := json.Unmarshal([]byte("{not json"), &target)
	require.Error(t, cause)

	err := NewCorruptedError("favoriteQuotes", cause)

	assert.True(t, IsCorrupted(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"favoriteQuotes"`)

	var corrupted *CorruptedError
	require.ErrorAs(t, err, &corrupted)
	assert.Equal(t, "favoriteQuotes", corrupted.Key)
}

func TestErrorHelpers_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetching: %w", NewUnavailableError("quote-proxy", "timeout"))

	assert.True(t, IsUnavailable(wrapped))
	assert.False(t, IsCorrupted(wrapped))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestQuote_Text(t *testing.T) {
	q := Quote{Content: "Be water.", Author: "Bruce Lee"}

	assert.Equal(t, `"Be water." - Bruce Lee`, q.Text())
}

func TestQuote_Validate(t *testing.T) {
	tests := []struct {
		name      string
		quote     Quote
		wantField string
	}{
		{name: "valid", quote: Quote{Content: "c", Author: "a"}},
		{name: "missing content", quote: Quote{Author: "a"}, wantField: "content"},
		{name: "missing author", quote: Quote{Content: "c"}, wantField: "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}
