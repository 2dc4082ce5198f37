package ledgererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("quota exceeded")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "not found",
			err:      &NotFoundError{Kind: "task", Name: "Dishes"},
			expected: `task "Dishes" not found`,
		},
		{
			name:     "invalid expression without cause",
			err:      &InvalidRewardExpressionError{Expression: "2x6", Reason: "not a number or dice roll"},
			expected: "invalid reward expression '2x6': not a number or dice roll",
		},
		{
			name:     "invalid expression with cause",
			err:      &InvalidRewardExpressionError{Expression: "0d6", Reason: "bad dice term", Err: errors.New("count must be positive")},
			expected: "invalid reward expression '0d6': bad dice term: count must be positive",
		},
		{
			name:     "external service",
			err:      &ExternalServiceError{Service: "sheets", Operation: "append", Err: cause},
			expected: "sheets: append failed: quota exceeded",
		},
		{
			name:     "partial completion",
			err:      &PartialCompletionError{Bounty: "Clean kitchen", Err: cause},
			expected: `bounty "Clean kitchen" was rewarded but could not be removed: quota exceeded`,
		},
		{
			name:     "validation",
			err:      &ValidationError{Field: "actor", Value: "Everyone", Reason: "broadcast name cannot hold a balance"},
			expected: "invalid actor 'Everyone': broadcast name cannot hold a balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("original error")

	assert.True(t, errors.Is(&ExternalServiceError{Service: "sheets", Operation: "get", Err: cause}, cause))
	assert.True(t, errors.Is(&PartialCompletionError{Bounty: "b", Err: cause}, cause))
	assert.True(t, errors.Is(&InvalidRewardExpressionError{Expression: "x", Err: cause}, cause))
}

func TestNewExternal(t *testing.T) {
	assert.NoError(t, NewExternal("sheets", "get", nil))

	cause := errors.New("timeout")
	err := NewExternal("sheets", "get", cause)
	var ext *ExternalServiceError
	assert.True(t, errors.As(err, &ext))
	assert.Equal(t, "get", ext.Operation)

	// already wrapped errors are passed through untouched
	wrapped := fmt.Errorf("refresh: %w", err)
	assert.Same(t, wrapped, NewExternal("sqlite", "query", wrapped))
}

func TestPredicates(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", NewNotFound("bounty", "Mow lawn"))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsPartialCompletion(nf))

	pc := &PartialCompletionError{Bounty: "Mow lawn", Err: errors.New("x")}
	assert.True(t, IsPartialCompletion(pc))
	assert.False(t, IsNotFound(pc))
}
