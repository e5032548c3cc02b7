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

package cfg

import (
	"strings"
	"testing"

	"github.com/jholder85638/phc/analysis/mir"
)

func branchy() *mir.Method {
	return &mir.Method{
		Name: "m",
		Statements: []mir.Statement{
			mir.AssignVar{Lhs: "c", Rhs: mir.BoolLit{Value: true}},
			mir.Branch{Cond: "c", TrueTarget: "T", FalseTarget: "F"},
			mir.Label{Name: "T"},
			mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
			mir.Goto{Target: "E"},
			mir.Label{Name: "F"},
			mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 2}},
			mir.Goto{Target: "E"},
			mir.Label{Name: "E"},
			mir.Return{Value: mir.VariableName("a")},
		},
	}
}

func TestBuildBranch(t *testing.T) {
	g, err := Build(branchy())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var branches, stmts int
	for _, b := range g.Blocks() {
		switch b.Kind() {
		case KindBranch:
			branches++
		case KindStatement:
			stmts++
		}
	}
	if branches != 1 {
		t.Errorf("branch blocks = %d, want 1", branches)
	}
	// c=..., a=1, a=2, return
	if stmts != 4 {
		t.Errorf("statement blocks = %d, want 4", stmts)
	}

	var branch *Block
	for _, b := range g.Blocks() {
		if b.Kind() == KindBranch {
			branch = b
		}
	}
	if branch.Cond() != "c" {
		t.Errorf("branch condition = %s", branch.Cond())
	}
	tt := branch.TrueEdge().Target().Stmt().(mir.AssignVar)
	ff := branch.FalseEdge().Target().Stmt().(mir.AssignVar)
	if tt.Rhs.(mir.IntLit).Value != 1 || ff.Rhs.(mir.IntLit).Value != 2 {
		t.Errorf("branch arms swapped: true=%s false=%s", tt, ff)
	}

	// the return block feeds the exit
	exitPreds := g.Exit().PredEdges()
	if len(exitPreds) != 1 {
		t.Errorf("exit has %d predecessors, want 1", len(exitPreds))
	}
}

func TestBuildUndefinedLabel(t *testing.T) {
	m := &mir.Method{
		Name: "m",
		Statements: []mir.Statement{
			mir.Goto{Target: "nowhere"},
		},
	}
	if _, err := Build(m); err == nil {
		t.Fatal("Build accepted an undefined label")
	}
}

func TestBuildBranchThroughAliasedLabel(t *testing.T) {
	// a label immediately followed by a goto aliases its target
	m := &mir.Method{
		Name: "m",
		Statements: []mir.Statement{
			mir.Branch{Cond: "c", TrueTarget: "A", FalseTarget: "B"},
			mir.Label{Name: "A"},
			mir.Goto{Target: "B"},
			mir.Label{Name: "B"},
			mir.Return{},
		},
	}
	g, err := Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var branch *Block
	for _, b := range g.Blocks() {
		if b.Kind() == KindBranch {
			branch = b
		}
	}
	if branch.TrueEdge().Target() != branch.FalseEdge().Target() {
		t.Error("aliased label should make both arms share a target")
	}
}

func TestLinearStatementsRoundTrip(t *testing.T) {
	m := branchy()
	g, err := Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := g.LinearStatements()

	// rebuilding from the linearization yields the same structure
	m2 := &mir.Method{Name: "m", Statements: out}
	g2, err := Build(m2)
	if err != nil {
		t.Fatalf("Build of linearized body: %v", err)
	}
	if !g.Equals(g2) {
		t.Error("linearized body does not rebuild to an equal graph")
	}
}

func TestCloneAndEquals(t *testing.T) {
	g, err := Build(branchy())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := g.Clone()
	if !g.Equals(c) {
		t.Fatal("clone is not equal to the original")
	}

	for _, b := range c.Blocks() {
		if s, ok := b.Stmt().(mir.AssignVar); ok && s.Lhs == "a" {
			b.SetStmt(mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 42}})
			break
		}
	}
	if g.Equals(c) {
		t.Error("modified clone still compares equal")
	}
}

func TestRemoveStatementBlock(t *testing.T) {
	m := &mir.Method{
		Name: "m",
		Statements: []mir.Statement{
			mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
			mir.AssignVar{Lhs: "b", Rhs: mir.IntLit{Value: 2}},
			mir.Return{Value: mir.VariableName("b")},
		},
	}
	g, err := Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	size := g.Size()

	var dead *Block
	for _, b := range g.Blocks() {
		if s, ok := b.Stmt().(mir.AssignVar); ok && s.Lhs == "a" {
			dead = b
		}
	}
	if err := g.RemoveStatementBlock(dead); err != nil {
		t.Fatalf("RemoveStatementBlock: %v", err)
	}
	if g.Size() != size-1 {
		t.Errorf("size after removal = %d, want %d", g.Size(), size-1)
	}

	// entry now flows directly into the $b assignment
	next := g.EntryEdge().Target()
	if s, ok := next.Stmt().(mir.AssignVar); !ok || s.Lhs != "b" {
		t.Errorf("entry successor after removal = %s", next)
	}

	if err := g.RemoveStatementBlock(g.Exit()); err == nil {
		t.Error("RemoveStatementBlock accepted the exit block")
	}
}

func TestResetForAnalysis(t *testing.T) {
	g, err := Build(branchy())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range g.Edges() {
		e.MarkExecutable()
	}
	g.ResetForAnalysis()
	for _, e := range g.Edges() {
		if e.Executable() {
			t.Fatalf("edge %s still executable after reset", e)
		}
	}
}

func TestWriteDot(t *testing.T) {
	g, err := Build(branchy())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var sb strings.Builder
	g.WriteDot(&sb)
	dot := sb.String()
	if !strings.HasPrefix(dot, "digraph") {
		t.Errorf("dot output does not start with digraph: %q", dot[:20])
	}
	if !strings.Contains(dot, "->") {
		t.Error("dot output has no edges")
	}
}

func TestSynthetic(t *testing.T) {
	g, body := Synthetic("strlen")
	if g.Name() != "strlen" {
		t.Errorf("name = %q", g.Name())
	}
	if body.Stmt() != nil {
		t.Error("synthetic body should carry no statement")
	}
	if g.EntryEdge().Target() != body {
		t.Error("entry does not feed the body")
	}
	if len(body.SuccEdges()) != 1 || body.SuccEdges()[0].Target() != g.Exit() {
		t.Error("body does not feed the exit")
	}
}
