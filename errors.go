package berth

import (
	"fmt"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeInvalidFactory indicates a factory function is invalid or nil
	CodeInvalidFactory = "INVALID_FACTORY"

	// CodeServiceAlreadyExists indicates a service is already registered
	CodeServiceAlreadyExists = "SERVICE_ALREADY_EXISTS"

	// CodeServiceNotFound indicates a service was not found in the container
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeServiceError indicates an error occurred during service operation
	CodeServiceError = "SERVICE_ERROR"

	// CodeCircularDependency indicates a circular dependency was detected
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeScopeEnded indicates operation on an ended scope
	CodeScopeEnded = "SCOPE_ENDED"

	// CodeTypeMismatch indicates a type mismatch during service resolution
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeUnsatisfied indicates no bean matches a requested type
	CodeUnsatisfied = "UNSATISFIED_DEPENDENCY"

	// CodeAmbiguous indicates more than one bean matches a requested type
	CodeAmbiguous = "AMBIGUOUS_DEPENDENCY"

	// CodeContainerClosed indicates use of a container after Close
	CodeContainerClosed = "CONTAINER_CLOSED"

	// CodeObserverFailed indicates one or more observers returned an error
	CodeObserverFailed = "OBSERVER_FAILED"

	// CodeBootstrapFailed indicates the container could not be initialized
	CodeBootstrapFailed = "BOOTSTRAP_FAILED"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrInvalidFactory is returned when a nil or invalid factory is provided.
var ErrInvalidFactory = errs.NewError(CodeInvalidFactory, "factory cannot be nil", nil)

// ErrServiceNotFoundSentinel is a sentinel error for service not found (for error checking).
var ErrServiceNotFoundSentinel = errs.NewError(CodeServiceNotFound, "service not found", nil)

// ErrServiceAlreadyExistsSentinel is a sentinel error for duplicate registrations.
var ErrServiceAlreadyExistsSentinel = errs.NewError(CodeServiceAlreadyExists, "service already exists", nil)

// ErrCircularDependencySentinel is a sentinel error for circular dependency (for error checking).
var ErrCircularDependencySentinel = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrScopeEnded is returned when operations are attempted on an ended scope.
var ErrScopeEnded = errs.NewError(CodeScopeEnded, "scope has ended", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrUnsatisfiedSentinel matches every unsatisfied lookup.
var ErrUnsatisfiedSentinel = errs.NewError(CodeUnsatisfied, "unsatisfied dependency", nil)

// ErrAmbiguousSentinel matches every ambiguous lookup.
var ErrAmbiguousSentinel = errs.NewError(CodeAmbiguous, "ambiguous dependency", nil)

// ErrContainerClosed is returned by operations on a closed container.
var ErrContainerClosed = errs.NewError(CodeContainerClosed, "container is closed", nil)

// ErrObserverFailedSentinel matches every failed event delivery.
var ErrObserverFailedSentinel = errs.NewError(CodeObserverFailed, "observer failed", nil)

// ErrBootstrapFailedSentinel matches every initialization failure.
var ErrBootstrapFailedSentinel = errs.NewError(CodeBootstrapFailed, "bootstrap failed", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceAlreadyExists creates an error for when a service is already registered
func ErrServiceAlreadyExists(serviceName string) *errs.Error {
	return errs.NewError(
		CodeServiceAlreadyExists,
		fmt.Sprintf("service '%s' already exists", serviceName),
		nil,
	).WithContext("service", serviceName).(*errs.Error)
}

// ErrServiceNotFound creates an error for when a service is not found
func ErrServiceNotFound(serviceName string) *errs.Error {
	return errs.NewError(
		CodeServiceNotFound,
		fmt.Sprintf("service '%s' not found", serviceName),
		nil,
	).WithContext("service", serviceName).(*errs.Error)
}

// NewServiceError creates an error for service operations
func NewServiceError(serviceName, operation string, cause error) *errs.Error {
	return errs.NewError(
		CodeServiceError,
		fmt.Sprintf("service '%s' error during %s", serviceName, operation),
		cause,
	).WithContext("service", serviceName).
		WithContext("operation", operation).(*errs.Error)
}

// ErrCircularDependency creates an error for circular dependency detection
func ErrCircularDependency(cycle []string) *errs.Error {
	return errs.NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %v", cycle),
		nil,
	).WithContext("cycle", cycle).(*errs.Error)
}

// ErrTypeMismatch creates an error for type mismatch during resolution
func ErrTypeMismatch(serviceName string, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service '%s' type mismatch: got %T", serviceName, actual),
		nil,
	).WithContext("service", serviceName).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// ErrUnsatisfied creates an error for a lookup with no candidate bean.
func ErrUnsatisfied(key string) *errs.Error {
	return errs.NewError(
		CodeUnsatisfied,
		fmt.Sprintf("no bean satisfies %s", key),
		nil,
	).WithContext("type", key).(*errs.Error)
}

// ErrAmbiguous creates an error for a lookup with several candidate beans.
func ErrAmbiguous(key string, candidates []string) *errs.Error {
	return errs.NewError(
		CodeAmbiguous,
		fmt.Sprintf("%d beans satisfy %s: %v", len(candidates), key, candidates),
		nil,
	).WithContext("type", key).
		WithContext("candidates", candidates).(*errs.Error)
}

// ErrObserverFailed wraps the combined observer errors of one event delivery.
func ErrObserverFailed(eventType string, cause error) *errs.Error {
	return errs.NewError(
		CodeObserverFailed,
		fmt.Sprintf("observers of %s failed", eventType),
		cause,
	).WithContext("event", eventType).(*errs.Error)
}

// ErrBootstrapFailed wraps the cause of a failed initialization.
func ErrBootstrapFailed(phase string, cause error) *errs.Error {
	return errs.NewError(
		CodeBootstrapFailed,
		"bootstrap failed during "+phase,
		cause,
	).WithContext("phase", phase).(*errs.Error)
}
