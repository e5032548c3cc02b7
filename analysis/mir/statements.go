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
	"reflect"
)

// A Statement is one lowered statement of a method body. Control flow is explicit: Label, Goto and
// Branch are ordinary statements, and the control-flow graph is built from them.
type Statement interface {
	isStmt()
	String() string
}

// AssignVar assigns an expression to a variable, by value or by reference.
type AssignVar struct {
	Lhs   VariableName
	IsRef bool
	Rhs   Expr
}

// AssignArray assigns an rvalue into an indexed slot of an array variable.
type AssignArray struct {
	Array VariableName
	Index Rvalue
	IsRef bool
	Rhs   Rvalue
}

// GlobalDecl aliases a local variable to the same-named variable of the global scope.
type GlobalDecl struct {
	Var VariableName
}

// EvalExpr evaluates an expression for its effects, discarding the result.
type EvalExpr struct {
	Expr Expr
}

// Unset removes a variable's value.
type Unset struct {
	Var VariableName
}

// PreOp is a pre-increment or pre-decrement, Op is "++" or "--".
type PreOp struct {
	Op  string
	Var VariableName
}

// Return leaves the method, optionally producing a value. Value may be nil.
type Return struct {
	Value Rvalue
}

// Label marks a branch target.
type Label struct {
	Name string
}

// Goto transfers control to a label unconditionally.
type Goto struct {
	Target string
}

// Branch transfers control to one of two labels according to the truthiness of a variable. The
// condition is always a variable; lowering materializes compound conditions into one.
type Branch struct {
	Cond        VariableName
	TrueTarget  string
	FalseTarget string
}

func (AssignVar) isStmt()   {}
func (AssignArray) isStmt() {}
func (GlobalDecl) isStmt()  {}
func (EvalExpr) isStmt()    {}
func (Unset) isStmt()       {}
func (PreOp) isStmt()       {}
func (Return) isStmt()      {}
func (Label) isStmt()       {}
func (Goto) isStmt()        {}
func (Branch) isStmt()      {}

func (s AssignVar) String() string {
	if s.IsRef {
		return fmt.Sprintf("%s =& %s;", s.Lhs, s.Rhs)
	}
	return fmt.Sprintf("%s = %s;", s.Lhs, s.Rhs)
}

func (s AssignArray) String() string {
	op := "="
	if s.IsRef {
		op = "=&"
	}
	return fmt.Sprintf("%s[%s] %s %s;", s.Array, s.Index, op, s.Rhs)
}

func (s GlobalDecl) String() string { return fmt.Sprintf("global %s;", s.Var) }
func (s EvalExpr) String() string   { return fmt.Sprintf("%s;", s.Expr) }
func (s Unset) String() string      { return fmt.Sprintf("unset(%s);", s.Var) }
func (s PreOp) String() string      { return fmt.Sprintf("%s%s;", s.Op, s.Var) }
func (s Label) String() string      { return fmt.Sprintf("%s:", s.Name) }
func (s Goto) String() string       { return fmt.Sprintf("goto %s;", s.Target) }

func (s Return) String() string {
	if s.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", s.Value)
}

func (s Branch) String() string {
	return fmt.Sprintf("if (%s) goto %s; else goto %s;", s.Cond, s.TrueTarget, s.FalseTarget)
}

// StatementsEqual reports structural equality of two statements.
func StatementsEqual(a, b Statement) bool {
	return reflect.DeepEqual(a, b)
}
