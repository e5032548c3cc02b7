// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wpa

import (
	"errors"
	"fmt"
)

// The analysis has three fatal error kinds, none recoverable mid-run. Every entry point
// returns one of them wrapped with context; nothing panics across package boundaries.

// UnsupportedConstructError reports that a language construct or external function name
// reached a code path with no modelled effect. Aborting here surfaces analysis gaps
// instead of silently returning an unsound unknown result.
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// Unsupportedf returns an UnsupportedConstructError with a formatted construct description.
func Unsupportedf(format string, args ...any) error {
	return &UnsupportedConstructError{Construct: fmt.Sprintf(format, args...)}
}

// IsUnsupported reports whether err is (or wraps) an UnsupportedConstructError.
func IsUnsupported(err error) bool {
	var u *UnsupportedConstructError
	return errors.As(err, &u)
}

// InvariantViolationError reports a failed internal precondition, for example a resolved
// field-name set coming back empty.
type InvariantViolationError struct {
	Msg string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Msg)
}

// Invariantf returns an InvariantViolationError with a formatted message.
func Invariantf(format string, args ...any) error {
	return &InvariantViolationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrNonConvergence is returned when the whole-program loop exhausts its pass bound
// without every analysis reporting equal facts. No soundness guarantee exists past the
// bound, so this is fatal rather than a best-effort stop.
var ErrNonConvergence = errors.New("whole-program analysis did not converge")
