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
	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/mir"
)

// An lval is the destination context of the expression currently being evaluated,
// threaded explicitly as a parameter. Nil means the result is discarded.
type lval struct {
	path  Path
	isRef bool
}

// analyzeBlock runs the per-statement logic of every analysis on one block, in the
// block's working fact state. The supported construct set is closed; anything outside
// it is an explicit unsupported-construct stop.
func (w *WholeProgram) analyzeBlock(bb *cfg.Block) error {
	switch bb.Kind() {
	case cfg.KindEntry, cfg.KindExit:
		return nil
	case cfg.KindBranch:
		scope := bb.Graph().Name()
		_, err := w.useVariable(bb, scope, bb.Cond())
		return err
	default:
		stmt := bb.Stmt()
		if stmt == nil {
			// synthetic summary body; its effect is applied by the binding layer
			return nil
		}
		return w.analyzeStatement(bb, stmt)
	}
}

//gocyclo:ignore
func (w *WholeProgram) analyzeStatement(bb *cfg.Block, stmt mir.Statement) error {
	scope := bb.Graph().Name()
	switch s := stmt.(type) {
	case mir.AssignVar:
		return w.evalExprInto(bb, &lval{path: VarPath(scope, s.Lhs), isRef: s.IsRef}, s.Rhs)

	case mir.AssignArray:
		lhs := IndexedPath(scope, s.Array, s.Index)
		switch rhs := s.Rhs.(type) {
		case mir.Literal:
			if s.IsRef {
				return Unsupportedf("reference to a literal in %s", s)
			}
			return w.assignScalar(bb, lhs, rhs)
		case mir.VariableName:
			if s.IsRef {
				return w.assignByRef(bb, lhs, VarPath(scope, rhs))
			}
			return w.assignByCopy(bb, lhs, VarPath(scope, rhs))
		default:
			return Unsupportedf("array assignment from %T", s.Rhs)
		}

	case mir.GlobalDecl:
		if scope == w.globalScope {
			return nil
		}
		return w.assignByRef(bb, VarPath(scope, s.Var), VarPath(w.globalScope, s.Var))

	case mir.EvalExpr:
		return w.evalExprInto(bb, nil, s.Expr)

	case mir.Unset:
		return w.assignScalar(bb, VarPath(scope, s.Var), mir.NilLit{})

	case mir.PreOp:
		path := VarPath(scope, s.Var)
		lit, err := w.useVariable(bb, scope, s.Var)
		if err != nil {
			return err
		}
		op := "+"
		if s.Op == "--" {
			op = "-"
		}
		if lit != nil {
			if folded, ok := foldBinOp(op, lit, mir.IntLit{Value: 1}); ok {
				return w.assignScalar(bb, path, folded)
			}
		}
		return w.assignTyped(bb, path, "int", "real")

	case mir.Return:
		ret := RetPath(scope)
		if s.Value == nil {
			return w.assignScalar(bb, ret, mir.NilLit{})
		}
		switch v := s.Value.(type) {
		case mir.Literal:
			return w.assignScalar(bb, ret, v)
		case mir.VariableName:
			if w.returnsRef(scope) {
				return w.assignByRef(bb, ret, VarPath(scope, v))
			}
			return w.assignByCopy(bb, ret, VarPath(scope, v))
		default:
			return Unsupportedf("return of %T", s.Value)
		}

	default:
		// Label, Goto and Branch are consumed during graph construction.
		return Invariantf("control statement %s reached the analyzer", stmt)
	}
}

// evalExprInto evaluates an expression into an explicit destination. A nil
// destination evaluates for effects and uses only.
//
//gocyclo:ignore
func (w *WholeProgram) evalExprInto(bb *cfg.Block, dest *lval, e mir.Expr) error {
	scope := bb.Graph().Name()
	switch expr := e.(type) {
	case mir.VariableName:
		if dest == nil {
			_, err := w.useVariable(bb, scope, expr)
			return err
		}
		if dest.isRef {
			return w.assignByRef(bb, dest.path, VarPath(scope, expr))
		}
		return w.assignByCopy(bb, dest.path, VarPath(scope, expr))

	case mir.BoolLit, mir.IntLit, mir.RealLit, mir.StringLit, mir.NilLit:
		if dest == nil {
			return nil
		}
		if dest.isRef {
			return Unsupportedf("reference to literal %s", e)
		}
		return w.assignScalar(bb, dest.path, e.(mir.Literal))

	case mir.ArrayAccess:
		src := IndexedPath(scope, expr.Array, expr.Index)
		names, cert, err := w.namedIndices(bb, src)
		if err != nil {
			return err
		}
		for _, n := range names {
			w.recordUse(bb, n, cert)
		}
		if dest == nil {
			return nil
		}
		if dest.isRef {
			return w.assignByRef(bb, dest.path, src)
		}
		return w.assignByCopy(bb, dest.path, src)

	case mir.BinOp:
		left, err := w.rvalueLit(bb, scope, expr.Left)
		if err != nil {
			return err
		}
		right, err := w.rvalueLit(bb, scope, expr.Right)
		if err != nil {
			return err
		}
		if dest == nil {
			return nil
		}
		if dest.isRef {
			return Unsupportedf("reference to result of %s", e)
		}
		if left != nil && right != nil {
			if folded, ok := foldBinOp(expr.Op, left, right); ok {
				return w.assignScalar(bb, dest.path, folded)
			}
		}
		return w.assignTyped(bb, dest.path, binOpTypes(expr.Op)...)

	case mir.UnaryOp:
		lit, err := w.useVariable(bb, scope, expr.Operand)
		if err != nil {
			return err
		}
		if dest == nil {
			return nil
		}
		if dest.isRef {
			return Unsupportedf("reference to result of %s", e)
		}
		if lit != nil {
			if folded, ok := foldUnaryOp(expr.Op, lit); ok {
				return w.assignScalar(bb, dest.path, folded)
			}
		}
		if expr.Op == "!" {
			return w.assignTyped(bb, dest.path, "bool")
		}
		return w.assignTyped(bb, dest.path, "int", "real")

	case mir.Cast:
		lit, err := w.useVariable(bb, scope, expr.Operand)
		if err != nil {
			return err
		}
		if dest == nil {
			return nil
		}
		if dest.isRef {
			return Unsupportedf("reference to result of %s", e)
		}
		if lit != nil {
			if folded, ok := foldCast(expr.Type, lit); ok {
				return w.assignScalar(bb, dest.path, folded)
			}
		}
		if types, ok := castTypes(expr.Type); ok {
			return w.assignTyped(bb, dest.path, types...)
		}
		return Unsupportedf("cast to %s", expr.Type)

	case mir.Call:
		return w.invokeMethod(bb, expr, dest)

	default:
		// FieldAccess, New, VarVar and anything future.
		return Unsupportedf("expression %s", e)
	}
}

// useVariable resolves a variable, records a read of every resolved location, and
// returns its literal value when it has exactly one non-wildcard resolution with a
// known constant.
func (w *WholeProgram) useVariable(bb *cfg.Block, scope string, v mir.VariableName) (mir.Literal, error) {
	names, cert, err := w.namedIndices(bb, VarPath(scope, v))
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		w.recordUse(bb, n, cert)
	}
	if len(names) == 1 && !names[0].IsWild() {
		return w.ccp.WorkingLit(names[0]), nil
	}
	return nil, nil
}

// rvalueLit evaluates an operand: literals directly, variables via useVariable.
func (w *WholeProgram) rvalueLit(bb *cfg.Block, scope string, rv mir.Rvalue) (mir.Literal, error) {
	switch v := rv.(type) {
	case mir.Literal:
		return v, nil
	case mir.VariableName:
		return w.useVariable(bb, scope, v)
	default:
		return nil, Unsupportedf("operand %T", rv)
	}
}

// returnsRef reports whether the named method returns by reference.
func (w *WholeProgram) returnsRef(scope string) bool {
	if m := w.program.Script.Lookup(scope); m != nil {
		return m.ReturnsRef
	}
	return false
}
