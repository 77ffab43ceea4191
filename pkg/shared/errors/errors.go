package errors

import "fmt"

// CatalogLoadError indicates the pattern catalog could not be loaded.
// It is fatal at process start; no scan can run without a catalog.
type CatalogLoadError struct {
	RuleID string
	Reason string
	Err    error
}

// Error implements the error interface for CatalogLoadError.
func (e *CatalogLoadError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("catalog load failed on rule %q: %s", e.RuleID, e.Reason)
	}
	return fmt.Sprintf("catalog load failed: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *CatalogLoadError) Unwrap() error { return e.Err }

// NewCatalogLoadError creates a new CatalogLoadError for the given rule.
func NewCatalogLoadError(ruleID, reason string, err error) error {
	return &CatalogLoadError{RuleID: ruleID, Reason: reason, Err: err}
}

// InputReadError indicates a single source file could not be read or decoded.
// It is recoverable: the file is skipped and a warning is recorded on the job.
type InputReadError struct {
	Path string
	Err  error
}

// Error implements the error interface for InputReadError.
func (e *InputReadError) Error() string {
	return fmt.Sprintf("failed to read input %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InputReadError) Unwrap() error { return e.Err }

// NewInputReadError creates a new InputReadError for the given path.
func NewInputReadError(path string, err error) error {
	return &InputReadError{Path: path, Err: err}
}

// ClassifierUnavailableError indicates the ML classification backend errored
// or could not be reached. The fallback batch is skipped and affected findings
// keep their heuristic tier; the job itself does not fail.
type ClassifierUnavailableError struct {
	Backend string
	Err     error
}

// Error implements the error interface for ClassifierUnavailableError.
func (e *ClassifierUnavailableError) Error() string {
	return fmt.Sprintf("classifier backend %q unavailable: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ClassifierUnavailableError) Unwrap() error { return e.Err }

// NewClassifierUnavailableError creates a new ClassifierUnavailableError.
func NewClassifierUnavailableError(backend string, err error) error {
	return &ClassifierUnavailableError{Backend: backend, Err: err}
}

// UnsupportedFormatError indicates a report was requested in a format outside
// the enumerated set. It fails the render call only, never the job.
type UnsupportedFormatError struct {
	Format string
}

// Error implements the error interface for UnsupportedFormatError.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported report format %q", e.Format)
}

// NewUnsupportedFormatError creates a new UnsupportedFormatError.
func NewUnsupportedFormatError(format string) error {
	return &UnsupportedFormatError{Format: format}
}

// TimeoutError indicates a job exceeded its configured budget. The job is
// failed with reason "timeout" and partial findings are discarded.
type TimeoutError struct {
	ProjectID string
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %q exceeded its time budget", e.ProjectID)
}

// NewTimeoutError creates a new TimeoutError for the given project.
func NewTimeoutError(projectID string) error {
	return &TimeoutError{ProjectID: projectID}
}

// NotReadyError indicates a report was requested for a project whose analysis
// has not reached the completed state.
type NotReadyError struct {
	ProjectID string
	Status    string
}

// Error implements the error interface for NotReadyError.
func (e *NotReadyError) Error() string {
	return fmt.Sprintf("project %q is not completed yet (status %q)", e.ProjectID, e.Status)
}

// NewNotReadyError creates a new NotReadyError for the given project.
func NewNotReadyError(projectID, status string) error {
	return &NotReadyError{ProjectID: projectID, Status: status}
}

// NotFoundError indicates an unknown project identifier.
type NotFoundError struct {
	ProjectID string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", e.ProjectID)
}

// NewNotFoundError creates a new NotFoundError for the given project.
func NewNotFoundError(projectID string) error {
	return &NotFoundError{ProjectID: projectID}
}
