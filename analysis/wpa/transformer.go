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

// applyResults rewrites a method's statements in place from the accumulated facts:
// an assignment whose left-hand value is a known constant after the statement gets
// its right-hand side replaced with that literal. Right-hand sides with effects
// (calls) and reference assignments are left alone.
func (w *WholeProgram) applyResults(g *cfg.Graph) error {
	scope := g.Name()
	for _, bb := range g.Blocks() {
		if bb.Kind() != cfg.KindStatement {
			continue
		}
		s, ok := bb.Stmt().(mir.AssignVar)
		if !ok || s.IsRef {
			continue
		}
		if !foldable(s.Rhs) {
			continue
		}
		lit := w.ccp.LitAt(bb, NodeName{Storage: scope, Index: string(s.Lhs)})
		if lit == nil {
			continue
		}
		if cur, isLit := s.Rhs.(mir.Literal); isLit && mir.LiteralsEqual(cur, lit) {
			continue
		}
		w.log.Debugf("folding %s: %s = %s", scope, s.Lhs, lit)
		bb.SetStmt(mir.AssignVar{Lhs: s.Lhs, Rhs: lit.(mir.Expr)})
	}
	return nil
}

// foldable reports whether replacing the expression with its value drops no effect.
func foldable(e mir.Expr) bool {
	switch e.(type) {
	case mir.VariableName, mir.ArrayAccess, mir.BinOp, mir.UnaryOp, mir.Cast,
		mir.BoolLit, mir.IntLit, mir.RealLit, mir.StringLit, mir.NilLit:
		return true
	default:
		return false
	}
}
