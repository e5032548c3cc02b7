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

package mir

import (
	"fmt"
	"strings"
)

// An Expr is a right-hand-side expression form. The set is closed; forms the analysis does not
// model (FieldAccess, New, VarVar) are still representable so that reaching one is an explicit
// unsupported-construct stop instead of a decoding failure.
type Expr interface {
	isExpr()
	String() string
}

// ArrayAccess is an indexing expression $array[$index] or $array["key"].
type ArrayAccess struct {
	Array VariableName
	Index Rvalue
}

// BinOp is a binary operation on two operands.
type BinOp struct {
	Left  Rvalue
	Op    string
	Right Rvalue
}

// UnaryOp is a unary operation on a variable operand.
type UnaryOp struct {
	Op      string
	Operand VariableName
}

// Cast converts a variable to the named type.
type Cast struct {
	Type    string
	Operand VariableName
}

// An Actual is one argument at a call site. IsRef marks call-site by-reference passing.
type Actual struct {
	IsRef bool
	Value Rvalue
}

// Call invokes the named method. Dynamic method names are not representable; lowering resolves
// every call target to a single name before this representation.
type Call struct {
	Name string
	Args []Actual
}

// FieldAccess reads a field of an object. Not modelled by the analysis.
type FieldAccess struct {
	Object VariableName
	Field  string
}

// New instantiates a class. Not modelled by the analysis.
type New struct {
	Class string
}

// VarVar is a variable-variable access ($$x). Not modelled by the analysis.
type VarVar struct {
	Var VariableName
}

func (ArrayAccess) isExpr() {}
func (BinOp) isExpr()       {}
func (UnaryOp) isExpr()     {}
func (Cast) isExpr()        {}
func (Call) isExpr()        {}
func (FieldAccess) isExpr() {}
func (New) isExpr()         {}
func (VarVar) isExpr()      {}

func (e ArrayAccess) String() string { return fmt.Sprintf("%s[%s]", e.Array, e.Index) }
func (e BinOp) String() string       { return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right) }
func (e UnaryOp) String() string     { return fmt.Sprintf("%s%s", e.Op, e.Operand) }
func (e Cast) String() string        { return fmt.Sprintf("(%s) %s", e.Type, e.Operand) }
func (e FieldAccess) String() string { return fmt.Sprintf("%s->%s", e.Object, e.Field) }
func (e New) String() string         { return fmt.Sprintf("new %s()", e.Class) }
func (e VarVar) String() string      { return fmt.Sprintf("$%s", e.Var) }

func (e Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		if a.IsRef {
			args[i] = "&" + a.Value.String()
		} else {
			args[i] = a.Value.String()
		}
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}
