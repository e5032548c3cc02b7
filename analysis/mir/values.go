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

// Package mir defines the medium-level intermediate representation the whole-program analysis
// operates on: a script of methods, each a list of lowered statements over scalar literals and
// named variables. The representation is a closed set of variants; the analysis matches on the
// variant tags explicitly and treats anything it does not model as a deliberate unsupported
// construct rather than a silent fallthrough.
package mir

import (
	"fmt"
	"strconv"
)

// A Rvalue is an operand position in a lowered statement: either a Literal or a VariableName.
type Rvalue interface {
	isRvalue()
	String() string
}

// A VariableName names a local variable in the enclosing method's scope.
type VariableName string

func (VariableName) isRvalue() {}
func (VariableName) isExpr()   {}

func (v VariableName) String() string { return "$" + string(v) }

// A Literal is a scalar constant. The set of literal kinds is closed: bool, int, real, string and
// null, matching the scalar domain of the modelled language.
type Literal interface {
	Rvalue
	isLiteral()

	// TypeName returns the name of the scalar type of the literal.
	TypeName() string
}

// BoolLit is a boolean literal.
type BoolLit struct{ Value bool }

// IntLit is an integer literal.
type IntLit struct{ Value int64 }

// RealLit is a floating-point literal.
type RealLit struct{ Value float64 }

// StringLit is a string literal.
type StringLit struct{ Value string }

// NilLit is the null literal.
type NilLit struct{}

func (BoolLit) isRvalue()   {}
func (IntLit) isRvalue()    {}
func (RealLit) isRvalue()   {}
func (StringLit) isRvalue() {}
func (NilLit) isRvalue()    {}

func (BoolLit) isLiteral()   {}
func (IntLit) isLiteral()    {}
func (RealLit) isLiteral()   {}
func (StringLit) isLiteral() {}
func (NilLit) isLiteral()    {}

func (BoolLit) isExpr()   {}
func (IntLit) isExpr()    {}
func (RealLit) isExpr()   {}
func (StringLit) isExpr() {}
func (NilLit) isExpr()    {}

func (l BoolLit) TypeName() string   { return "bool" }
func (l IntLit) TypeName() string    { return "int" }
func (l RealLit) TypeName() string   { return "real" }
func (l StringLit) TypeName() string { return "string" }
func (l NilLit) TypeName() string    { return "null" }

func (l BoolLit) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}

func (l IntLit) String() string    { return strconv.FormatInt(l.Value, 10) }
func (l RealLit) String() string   { return strconv.FormatFloat(l.Value, 'g', -1, 64) }
func (l StringLit) String() string { return fmt.Sprintf("%q", l.Value) }
func (l NilLit) String() string    { return "NULL" }

// Truthy returns the boolean interpretation of a literal under the modelled language's conversion
// rules: false, 0, 0.0, "", "0" and null convert to false, everything else to true.
func Truthy(l Literal) bool {
	switch lit := l.(type) {
	case BoolLit:
		return lit.Value
	case IntLit:
		return lit.Value != 0
	case RealLit:
		return lit.Value != 0
	case StringLit:
		return lit.Value != "" && lit.Value != "0"
	case NilLit:
		return false
	}
	return true
}

// AsString returns the string conversion of a literal, used when a literal indexes a container.
func AsString(l Literal) string {
	switch lit := l.(type) {
	case BoolLit:
		if lit.Value {
			return "1"
		}
		return ""
	case IntLit:
		return strconv.FormatInt(lit.Value, 10)
	case RealLit:
		return strconv.FormatFloat(lit.Value, 'g', -1, 64)
	case StringLit:
		return lit.Value
	case NilLit:
		return ""
	}
	return ""
}

// LiteralsEqual reports whether two literals are the same constant of the same type.
func LiteralsEqual(a, b Literal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}
