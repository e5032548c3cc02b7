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
	"strings"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/mir"
)

// Annotation keys attached to blocks during finalization. Code generation reads
// these instead of the analyses themselves.
const (
	// AnnotValue is the known constant value of the block's assigned variable.
	AnnotValue = "value"
	// AnnotTypes is the comma-joined type set of the block's assigned variable.
	AnnotTypes = "types"
	// AnnotCond is the known truth value of a branch condition.
	AnnotCond = "cond"
)

// annotateResults attaches the converged per-block facts code generation needs:
// constant values and type sets for assigned variables, and proven branch
// directions.
func (w *WholeProgram) annotateResults(g *cfg.Graph) {
	scope := g.Name()
	for _, bb := range g.Blocks() {
		switch bb.Kind() {
		case cfg.KindStatement:
			s, ok := bb.Stmt().(mir.AssignVar)
			if !ok {
				continue
			}
			name := NodeName{Storage: scope, Index: string(s.Lhs)}
			if lit := w.ccp.LitAt(bb, name); lit != nil {
				bb.SetAnnotation(AnnotValue, lit.String())
			}
			if types := w.types.TypesAt(bb, name); len(types) > 0 {
				bb.SetAnnotation(AnnotTypes, strings.Join(types, ","))
			}
		case cfg.KindBranch:
			name := NodeName{Storage: scope, Index: string(bb.Cond())}
			if lit := w.ccp.LitAt(bb, name); lit != nil {
				if mir.Truthy(lit) {
					bb.SetAnnotation(AnnotCond, "true")
				} else {
					bb.SetAnnotation(AnnotCond, "false")
				}
			}
		}
	}
}
