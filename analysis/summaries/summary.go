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

// Package summaries defines how the effects of builtin library functions are summarized.
// These summaries are only for pre-determined functions and are not computed during the
// analysis: when the call graph reaches a method without a script definition, the driver
// looks the name up here before giving up on the call.
package summaries

import (
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/internal/funcutil"
)

// Summary describes the caller-visible effects of a builtin function. The modelled
// builtins read their arguments and produce a return value; none of them writes through
// a by-reference parameter, so a summary is just a description of the returned value.
type Summary struct {
	// ReturnLiteral, when non-nil, is the exact value the function returns regardless of
	// its arguments. print is the canonical case: it always returns the int 1.
	ReturnLiteral mir.Literal

	// ReturnTypes are the possible runtime types of the return value, using the literal
	// type names ("bool", "int", "real", "string", "null"). Ignored when ReturnLiteral
	// is set.
	ReturnTypes []string
}

// ReturnsInt is the summary for builtins that return an integer of unknown value.
var ReturnsInt = Summary{ReturnTypes: []string{"int"}}

// ReturnsString is the summary for builtins that return a string of unknown value.
var ReturnsString = Summary{ReturnTypes: []string{"string"}}

// ReturnsBool is the summary for builtins that return a boolean of unknown value.
var ReturnsBool = Summary{ReturnTypes: []string{"bool"}}

// builtins maps builtin function names to their summaries. A name missing from this
// table is an unsupported external call and the driver reports it as fatal.
var builtins = map[string]Summary{
	"print":         {ReturnLiteral: mir.IntLit{Value: 1}},
	"strlen":        ReturnsInt,
	"count":         ReturnsInt,
	"rand":          ReturnsInt,
	"intval":        ReturnsInt,
	"dechex":        ReturnsString,
	"strtolower":    ReturnsString,
	"strtoupper":    ReturnsString,
	"sprintf":       ReturnsString,
	"implode":       ReturnsString,
	"is_array":      ReturnsBool,
	"is_object":     ReturnsBool,
	"trigger_error": ReturnsBool,
	"floatval":      {ReturnTypes: []string{"real"}},
}

// SummaryOfFunc returns the summary of the named builtin and true if it is modelled,
// otherwise it returns an empty summary and false.
func SummaryOfFunc(name string) (Summary, bool) {
	s, ok := builtins[name]
	return s, ok
}

// IsModelled returns true if the named function has a builtin summary.
func IsModelled(name string) bool {
	_, ok := builtins[name]
	return ok
}

// ModelledNames returns the names of all modelled builtins, sorted.
func ModelledNames() []string {
	return funcutil.SortedKeys(builtins)
}
