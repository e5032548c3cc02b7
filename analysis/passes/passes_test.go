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

package passes

import (
	"io"
	"testing"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
)

// stubFacts reports only the usage bits a test sets; no constants are known.
type stubFacts struct {
	used map[mir.VariableName]bool
}

func (s stubFacts) LiteralAt(bb *cfg.Block, v mir.VariableName) mir.Literal {
	return nil
}

func (s stubFacts) IsUsed(g *cfg.Graph, v mir.VariableName) bool {
	return s.used[v]
}

func quietManager(t *testing.T) *DefaultManager {
	t.Helper()
	conf := config.NewDefault()
	conf.LogLevel = int(config.ErrLevel)
	logger := config.NewLogGroup(conf)
	logger.SetAllOutput(io.Discard)
	return NewDefaultManager(logger)
}

func buildGraph(t *testing.T, stmts ...mir.Statement) *cfg.Graph {
	t.Helper()
	g, err := cfg.Build(&mir.Method{Name: "m", Statements: stmts})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func remaining(g *cfg.Graph) []mir.Statement {
	var out []mir.Statement
	for _, bb := range g.Blocks() {
		if s := bb.Stmt(); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func TestDeadStoreElimination(t *testing.T) {
	g := buildGraph(t,
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
		mir.AssignVar{Lhs: "b", Rhs: mir.IntLit{Value: 2}},
		mir.Return{Value: mir.VariableName("b")},
	)
	m := quietManager(t)

	facts := stubFacts{used: map[mir.VariableName]bool{"b": true}}
	if err := m.RunLocalOptimizationPasses(facts, g); err != nil {
		t.Fatalf("RunLocalOptimizationPasses: %v", err)
	}

	stmts := remaining(g)
	if len(stmts) != 2 {
		t.Fatalf("statements after pass = %v, want the store to b and the return", stmts)
	}
	if s, ok := stmts[0].(mir.AssignVar); !ok || s.Lhs != "b" {
		t.Errorf("surviving store = %v, want $b = 2", stmts[0])
	}
}

func TestDeadStoreKeepsEffectfulRhs(t *testing.T) {
	g := buildGraph(t,
		mir.AssignVar{Lhs: "a", Rhs: mir.Call{Name: "side_effect"}},
		mir.Return{},
	)
	m := quietManager(t)

	if err := m.RunLocalOptimizationPasses(stubFacts{}, g); err != nil {
		t.Fatalf("RunLocalOptimizationPasses: %v", err)
	}
	if stmts := remaining(g); len(stmts) != 2 {
		t.Errorf("call result store must survive even when unused: %v", stmts)
	}
}

func TestDeadStoreKeepsReferenceAssignment(t *testing.T) {
	g := buildGraph(t,
		mir.AssignVar{Lhs: "a", IsRef: true, Rhs: mir.VariableName("b")},
		mir.Return{},
	)
	m := quietManager(t)

	if err := m.RunLocalOptimizationPasses(stubFacts{}, g); err != nil {
		t.Fatalf("RunLocalOptimizationPasses: %v", err)
	}
	if stmts := remaining(g); len(stmts) != 2 {
		t.Errorf("reference assignment must survive: %v", stmts)
	}
}

func TestRunIPAPassesIsNoOp(t *testing.T) {
	g := buildGraph(t,
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
		mir.Return{},
	)
	m := quietManager(t)

	snapshot := g.Clone()
	if err := m.RunIPAPasses(stubFacts{}, g); err != nil {
		t.Fatalf("RunIPAPasses: %v", err)
	}
	if !g.Equals(snapshot) {
		t.Error("RunIPAPasses changed the graph")
	}
}
