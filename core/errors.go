// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyQuery indicates a request with no query text.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrInvalidDocumentType indicates an unknown partition name.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrInvalidAuthorityLevel indicates an authority level outside 1-5.
	ErrInvalidAuthorityLevel = errors.New("authority level must be between 1 and 5")

	// ErrInvalidSimilarity indicates a similarity score outside [0,1].
	ErrInvalidSimilarity = errors.New("similarity must be between 0 and 1")
)

// Terminal failure sentinels. Callers always receive either a ranked list or
// a Failure wrapping one of these.
var (
	// ErrRetrievalUnavailable means every dispatched partition search failed
	// or timed out. Recoverable by caller retry.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrDeadlineExceeded means the request deadline passed before minimal
	// useful work completed.
	ErrDeadlineExceeded = errors.New("request deadline exceeded")

	// ErrConfiguration means the system was started with a malformed or
	// inconsistent configuration and must not serve.
	ErrConfiguration = errors.New("configuration error")
)

// FailureReason is a machine-readable reason code for terminal failures.
type FailureReason string

const (
	ReasonRetrievalUnavailable FailureReason = "retrieval_unavailable"
	ReasonDeadlineExceeded     FailureReason = "deadline_exceeded"
	ReasonConfiguration        FailureReason = "configuration_error"
)

// Failure is a terminal pipeline failure carrying a reason code. It wraps
// one of the failure sentinels so errors.Is keeps working.
type Failure struct {
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("[%s] %v", f.Reason, f.Err)
	}
	return string(f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewRetrievalUnavailable wraps cause as a retrieval-unavailable failure.
func NewRetrievalUnavailable(cause error) *Failure {
	return &Failure{Reason: ReasonRetrievalUnavailable, Err: wrapSentinel(ErrRetrievalUnavailable, cause)}
}

// NewDeadlineExceeded wraps cause as a deadline-exceeded failure.
func NewDeadlineExceeded(cause error) *Failure {
	return &Failure{Reason: ReasonDeadlineExceeded, Err: wrapSentinel(ErrDeadlineExceeded, cause)}
}

// NewConfigurationFailure wraps cause as a fatal configuration failure.
func NewConfigurationFailure(cause error) *Failure {
	return &Failure{Reason: ReasonConfiguration, Err: wrapSentinel(ErrConfiguration, cause)}
}

func wrapSentinel(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// ReasonOf extracts the reason code from a terminal failure. The second
// return is false for errors that are not pipeline failures.
func ReasonOf(err error) (FailureReason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}
