package composition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bomgraph/internal/model"
)

// ErrorCode categorizes composition errors.
type ErrorCode string

const (
	// ErrCodeSelfReference indicates a product was added to itself.
	ErrCodeSelfReference ErrorCode = "SELF_REFERENCE"

	// ErrCodeCycleDetected indicates the edge would make the graph cyclic.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeDuplicateEdge indicates the component is already directly under
	// the parent.
	ErrCodeDuplicateEdge ErrorCode = "DUPLICATE_EDGE"

	// ErrCodeNotFound indicates the edge does not exist in the tenant.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStorage indicates the store failed; the outcome is unknown.
	ErrCodeStorage ErrorCode = "STORAGE"

	// ErrCodeInvalidArgument indicates malformed input.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is returned by every Service and ContainerLookup operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	TenantID    string `json:"tenant_id,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	ComponentID string `json:"component_id,omitempty"`
	EdgeID      string `json:"edge_id,omitempty"`

	// Path is the loop a rejected edge would close (cycle errors only).
	Path []string `json:"path,omitempty"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (path: %s)", strings.Join(e.Path, " -> "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsSelfReference reports whether err is a self-reference rejection.
func IsSelfReference(err error) bool { return hasCode(err, ErrCodeSelfReference) }

// IsCycle reports whether err is a cycle rejection.
func IsCycle(err error) bool { return hasCode(err, ErrCodeCycleDetected) }

// IsDuplicate reports whether err is a duplicate edge rejection.
func IsDuplicate(err error) bool { return hasCode(err, ErrCodeDuplicateEdge) }

// IsNotFound reports whether err is a missing edge.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsStorage reports whether err is a storage failure.
func IsStorage(err error) bool { return hasCode(err, ErrCodeStorage) }

// IsInvalidArgument reports whether err is an input validation failure.
func IsInvalidArgument(err error) bool { return hasCode(err, ErrCodeInvalidArgument) }

// Code returns the code of a composition error, or "" for anything else.
func Code(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newSelfReferenceError(tenantID, productID string) *Error {
	return &Error{
		Code:        ErrCodeSelfReference,
		Message:     fmt.Sprintf("product %s cannot contain itself", productID),
		TenantID:    tenantID,
		ParentID:    productID,
		ComponentID: productID,
	}
}

func newCycleError(tenantID, parentID, componentID string, path []string) *Error {
	return &Error{
		Code:        ErrCodeCycleDetected,
		Message:     fmt.Sprintf("adding %s to %s would create a cycle", componentID, parentID),
		TenantID:    tenantID,
		ParentID:    parentID,
		ComponentID: componentID,
		Path:        path,
	}
}

func newDuplicateError(tenantID, parentID, componentID string, cause error) *Error {
	return &Error{
		Code:        ErrCodeDuplicateEdge,
		Message:     fmt.Sprintf("%s already contains %s", parentID, componentID),
		TenantID:    tenantID,
		ParentID:    parentID,
		ComponentID: componentID,
		Err:         cause,
	}
}

func newNotFoundError(tenantID, edgeID string, cause error) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("component edge %s not found", edgeID),
		TenantID: tenantID,
		EdgeID:   edgeID,
		Err:      cause,
	}
}

func newStorageError(tenantID, op string, cause error) *Error {
	return &Error{
		Code:     ErrCodeStorage,
		Message:  op + " failed",
		TenantID: tenantID,
		Err:      cause,
	}
}

func newInvalidArgumentError(tenantID string, cause error) *Error {
	return &Error{
		Code:     ErrCodeInvalidArgument,
		Message:  "invalid argument",
		TenantID: tenantID,
		Err:      cause,
	}
}

// classify maps an error escaping a unit of work to a composition error.
// Errors that are already composition errors pass through unchanged.
func classify(tenantID, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return newInvalidArgumentError(tenantID, err)
	}
	return newStorageError(tenantID, op, err)
}
