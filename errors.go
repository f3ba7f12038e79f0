package main

import (
	"errors"
	"fmt"
)

// =============================================================================
// Extraction Errors
// =============================================================================

var (
	// ErrTokenElementNotFound means the home page has no location modal element.
	ErrTokenElementNotFound = errors.New("token element not found")

	// ErrDataModalNotFound means the modal element carries no data-a-modal attribute.
	ErrDataModalNotFound = errors.New("data-a-modal attribute not found")

	// ErrDataModalMalformed means data-a-modal is present but is not valid JSON.
	ErrDataModalMalformed = errors.New("data-a-modal attribute is not valid JSON")

	// ErrAntiCsrfTokenNotFound means ajaxHeaders["anti-csrftoken-a2z"] is missing or empty.
	ErrAntiCsrfTokenNotFound = errors.New("anti-csrf token not found")

	// ErrCsrfTokenNotFound means the address selection response has no CSRF_TOKEN.
	ErrCsrfTokenNotFound = errors.New("csrf token not found")
)

// =============================================================================
// Request Errors
// =============================================================================

var (
	// ErrInvalidRequestMethod is returned for anything other than GET or POST.
	ErrInvalidRequestMethod = errors.New("invalid request method")

	// ErrRequestFailed is matched by every *RequestError.
	ErrRequestFailed = errors.New("request failed")

	// ErrUnknownClientIdentifier means no TLS profile is registered under the name.
	ErrUnknownClientIdentifier = errors.New("unknown client identifier")
)

// RequestError is a completed request that came back with a status other than 200.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.URL, e.StatusCode)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// StatusCodeOf returns the status carried by a *RequestError in err's chain, or 0.
func StatusCodeOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// =============================================================================
// Workflow Errors
// =============================================================================

// Stage names a step of the location-change workflow.
type Stage string

const (
	StageFetchHome           Stage = "fetch-home"
	StageFetchAddressForm    Stage = "fetch-address-form"
	StageSubmitAddressChange Stage = "submit-address-change"
	StageFinalize            Stage = "finalize"
)

// StageError reports which workflow stage aborted the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FinalizeError is a failure after the address change already succeeded
// (HTML re-fetch or cookie persistence). The run result is still valid.
type FinalizeError struct {
	Err error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("%s: %v", StageFinalize, e.Err)
}

func (e *FinalizeError) Unwrap() error {
	return e.Err
}

// IsFinalizeError checks if the error happened after the business outcome was decided.
func IsFinalizeError(err error) bool {
	if err == nil {
		return false
	}
	var fe *FinalizeError
	return errors.As(err, &fe)
}

// FailedStage returns the stage that aborted the workflow, or "" if err is not a stage failure.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	if IsFinalizeError(err) {
		return StageFinalize
	}
	return ""
}
