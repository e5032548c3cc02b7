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

// Package passes defines the pass-manager boundary the whole-program driver invokes
// once per inner-loop iteration, and a default manager with a dead-store elimination
// pass. Concrete passes see the analysis results only through the Facts interface.
package passes

import (
	"fmt"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
)

// Facts is the view of the converged analysis results a pass may consult.
type Facts interface {
	// LiteralAt returns the known constant value of a variable in a block's
	// out-facts, or nil.
	LiteralAt(bb *cfg.Block, v mir.VariableName) mir.Literal

	// IsUsed reports whether the variable was read anywhere during the pass,
	// including as an addressing step.
	IsUsed(g *cfg.Graph, v mir.VariableName) bool
}

// Manager runs the optimization passes over one method's graph. Both methods are
// invoked once per inner-loop iteration; the driver detects the structural fixpoint.
type Manager interface {
	RunLocalOptimizationPasses(facts Facts, g *cfg.Graph) error
	RunIPAPasses(facts Facts, g *cfg.Graph) error
}

// DefaultManager eliminates dead stores locally and runs no interprocedural passes.
type DefaultManager struct {
	log *config.LogGroup
}

// NewDefaultManager returns the default pass manager.
func NewDefaultManager(log *config.LogGroup) *DefaultManager {
	return &DefaultManager{log: log}
}

// RunLocalOptimizationPasses removes assignments to variables that are never read.
// Only effect-free right-hand sides are eligible; calls and reference assignments
// always survive.
func (m *DefaultManager) RunLocalOptimizationPasses(facts Facts, g *cfg.Graph) error {
	var dead []*cfg.Block
	for _, bb := range g.Blocks() {
		s, ok := bb.Stmt().(mir.AssignVar)
		if !ok || s.IsRef {
			continue
		}
		if !effectFree(s.Rhs) {
			continue
		}
		if !facts.IsUsed(g, s.Lhs) {
			dead = append(dead, bb)
		}
	}
	for _, bb := range dead {
		m.log.Debugf("dead store eliminated in %s: %s", g.Name(), bb.Stmt())
		if err := g.RemoveStatementBlock(bb); err != nil {
			return fmt.Errorf("removing dead store: %w", err)
		}
	}
	return nil
}

// RunIPAPasses is a no-op: interprocedural rewrites stay behind this boundary until
// an inlining pass exists.
func (m *DefaultManager) RunIPAPasses(facts Facts, g *cfg.Graph) error {
	return nil
}

// effectFree reports whether evaluating the expression can have no observable effect
// besides producing a value.
func effectFree(e mir.Expr) bool {
	switch e.(type) {
	case mir.VariableName, mir.BoolLit, mir.IntLit, mir.RealLit, mir.StringLit, mir.NilLit,
		mir.ArrayAccess, mir.BinOp, mir.UnaryOp, mir.Cast:
		return true
	default:
		return false
	}
}
