// Package ledgererror defines the error taxonomy shared by the catalog, the reward
// resolver, the recorder and the row-store backends.
package ledgererror

import (
	"errors"
	"fmt"
)

// NotFoundError reports a name that is absent from a catalog, a table or the totals sheet.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// InvalidRewardExpressionError reports a reward string that is neither a literal
// number nor a well-formed dice expression.
type InvalidRewardExpressionError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *InvalidRewardExpressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid reward expression '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid reward expression '%s': %s", e.Expression, e.Reason)
}

func (e *InvalidRewardExpressionError) Unwrap() error {
	return e.Err
}

// ExternalServiceError wraps a failure of the row store or the chat platform.
type ExternalServiceError struct {
	Service   string
	Operation string
	Err       error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Service, e.Operation, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// PartialCompletionError reports a bounty whose transaction was appended but whose
// row could not be removed from the bounty table.
type PartialCompletionError struct {
	Bounty string
	Err    error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("bounty %q was rewarded but could not be removed: %v", e.Bounty, e.Err)
}

func (e *PartialCompletionError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input that was rejected before touching the store.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// NewNotFound is a convenience constructor.
func NewNotFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

// NewExternal wraps err as an ExternalServiceError unless it already is one.
func NewExternal(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	var ext *ExternalServiceError
	if errors.As(err, &ext) {
		return err
	}
	return &ExternalServiceError{Service: service, Operation: operation, Err: err}
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPartialCompletion reports whether err carries a PartialCompletionError.
func IsPartialCompletion(err error) bool {
	var pc *PartialCompletionError
	return errors.As(err, &pc)
}
