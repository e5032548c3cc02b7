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
	"io"
	"testing"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/analysis/passes"
)

func entryMethod(stmts ...mir.Statement) *mir.Method {
	return &mir.Method{Name: config.DefaultEntryMethod, Statements: stmts}
}

func newScript(t *testing.T, methods ...*mir.Method) *mir.Script {
	t.Helper()
	s := mir.NewScript()
	for _, m := range methods {
		if err := s.AddMethod(m); err != nil {
			t.Fatalf("AddMethod(%s): %v", m.Name, err)
		}
	}
	return s
}

// runWhole analyzes the script to convergence and fails the test on any error.
func runWhole(t *testing.T, script *mir.Script) (*WholeProgram, *Program) {
	t.Helper()
	conf := config.NewDefault()
	conf.LogLevel = int(config.ErrLevel)
	logger := config.NewLogGroup(conf)
	logger.SetAllOutput(io.Discard)
	p := NewProgram(script)
	w := NewWholeProgram(p, conf, logger)
	if err := w.Run(passes.NewDefaultManager(logger)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return w, p
}

func entryGraph(t *testing.T, p *Program) *cfg.Graph {
	t.Helper()
	u, ok := p.UserMethods()[config.DefaultEntryMethod]
	if !ok || !u.Built() {
		t.Fatalf("entry method was not analyzed")
	}
	g, err := u.CFG()
	if err != nil {
		t.Fatalf("CFG: %v", err)
	}
	return g
}

// findAssign returns the block assigning the named variable, failing when the graph
// holds none or several.
func findAssign(t *testing.T, g *cfg.Graph, lhs mir.VariableName) *cfg.Block {
	t.Helper()
	var found *cfg.Block
	for _, bb := range g.Blocks() {
		s, ok := bb.Stmt().(mir.AssignVar)
		if !ok || s.Lhs != lhs {
			continue
		}
		if found != nil {
			t.Fatalf("multiple blocks assign $%s", lhs)
		}
		found = bb
	}
	if found == nil {
		t.Fatalf("no block assigns $%s", lhs)
	}
	return found
}

func call(name string, args ...mir.Actual) mir.Call {
	return mir.Call{Name: name, Args: args}
}

func printOf(v mir.VariableName) mir.Statement {
	return mir.EvalExpr{Expr: call("print", mir.Actual{Value: v})}
}

func TestCopyPropagationFoldsAndRemovesDeadStore(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignVar{Lhs: "x", Rhs: mir.IntLit{Value: 5}},
		mir.AssignVar{Lhs: "y", Rhs: mir.VariableName("x")},
		printOf("y"),
	))
	runWhole(t, script)

	main := script.Lookup(config.DefaultEntryMethod)
	if main == nil {
		t.Fatal("entry method was stripped")
	}
	var sawY bool
	for _, s := range main.Statements {
		a, ok := s.(mir.AssignVar)
		if !ok {
			continue
		}
		switch a.Lhs {
		case "x":
			t.Errorf("dead store $x survived: %s", s)
		case "y":
			sawY = true
			if !mir.StatementsEqual(a, mir.AssignVar{Lhs: "y", Rhs: mir.IntLit{Value: 5}}) {
				t.Errorf("$y was not folded to 5: %s", s)
			}
		}
	}
	if !sawY {
		t.Error("assignment to $y disappeared")
	}
}

func TestConstantBranchSuppressesFalseArm(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignVar{Lhs: "c", Rhs: mir.BoolLit{Value: true}},
		mir.Branch{Cond: "c", TrueTarget: "T", FalseTarget: "F"},
		mir.Label{Name: "T"},
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
		mir.Goto{Target: "E"},
		mir.Label{Name: "F"},
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 2}},
		mir.Goto{Target: "E"},
		mir.Label{Name: "E"},
		printOf("a"),
	))
	w, p := runWhole(t, script)
	g := entryGraph(t, p)

	var branch *cfg.Block
	for _, bb := range g.Blocks() {
		if bb.Kind() == cfg.KindBranch {
			branch = bb
		}
	}
	if branch == nil {
		t.Fatal("no branch block")
	}
	if got := branch.Annotation(AnnotCond); got != "true" {
		t.Errorf("branch condition annotation = %q, want %q", got, "true")
	}
	if !branch.TrueEdge().Executable() {
		t.Error("true arm is not executable")
	}
	if branch.FalseEdge().Executable() {
		t.Error("false arm was executed despite a constant-true condition")
	}

	// the suppressed arm's facts stay at top
	dead := branch.FalseEdge().Target()
	if lit := w.LiteralAt(dead, "a"); lit != nil {
		t.Errorf("suppressed block has a committed fact for $a: %s", lit)
	}

	// the live value reaches the join
	var printBlock *cfg.Block
	for _, bb := range g.Blocks() {
		if _, ok := bb.Stmt().(mir.EvalExpr); ok {
			printBlock = bb
		}
	}
	if printBlock == nil {
		t.Fatal("no print block")
	}
	if lit := w.LiteralAt(printBlock, "a"); lit == nil || !mir.LiteralsEqual(lit, mir.IntLit{Value: 1}) {
		t.Errorf("$a at the join = %v, want 1", lit)
	}
}

func TestUnknownBranchMeetsBothArms(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignVar{Lhs: "r", Rhs: call("rand")},
		mir.Branch{Cond: "r", TrueTarget: "T", FalseTarget: "F"},
		mir.Label{Name: "T"},
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
		mir.Goto{Target: "E"},
		mir.Label{Name: "F"},
		mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 2}},
		mir.Goto{Target: "E"},
		mir.Label{Name: "E"},
		mir.AssignVar{Lhs: "b", Rhs: mir.VariableName("a")},
		printOf("b"),
	))
	w, p := runWhole(t, script)
	g := entryGraph(t, p)

	for _, e := range g.Edges() {
		if !e.Executable() {
			t.Errorf("edge %s not executable under an unknown condition", e)
		}
	}

	join := findAssign(t, g, "b")
	if lit := w.LiteralAt(join, "b"); lit != nil {
		t.Errorf("$b has a constant %s after a two-valued meet", lit)
	}
	if got := join.Annotation(AnnotTypes); got != "int" {
		t.Errorf("type annotation of $b = %q, want %q", got, "int")
	}
	if s := join.Stmt().(mir.AssignVar); !mir.StatementsEqual(s, mir.AssignVar{Lhs: "b", Rhs: mir.VariableName("a")}) {
		t.Errorf("$b = $a was rewritten to %s without a known constant", s)
	}
}

func TestByReferenceParameterWritesBack(t *testing.T) {
	double := &mir.Method{
		Name:   "set_two",
		Params: []mir.Param{{Name: "x", ByRef: true}},
		Statements: []mir.Statement{
			mir.AssignVar{Lhs: "x", Rhs: mir.IntLit{Value: 2}},
		},
	}
	script := newScript(t,
		entryMethod(
			mir.AssignVar{Lhs: "a", Rhs: mir.IntLit{Value: 1}},
			mir.EvalExpr{Expr: call("set_two", mir.Actual{Value: mir.VariableName("a")})},
			mir.AssignVar{Lhs: "b", Rhs: mir.VariableName("a")},
			printOf("b"),
		),
		double,
	)
	runWhole(t, script)

	main := script.Lookup(config.DefaultEntryMethod)
	var sawB bool
	for _, s := range main.Statements {
		a, ok := s.(mir.AssignVar)
		if !ok || a.Lhs != "b" {
			continue
		}
		sawB = true
		if !mir.StatementsEqual(a, mir.AssignVar{Lhs: "b", Rhs: mir.IntLit{Value: 2}}) {
			t.Errorf("$b after the by-reference call = %s, want 2", s)
		}
	}
	if !sawB {
		t.Error("assignment to $b disappeared")
	}
}

func TestSummaryReturnTypesFlowToCaller(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignVar{Lhs: "s", Rhs: mir.StringLit{Value: "hi"}},
		mir.AssignVar{Lhs: "n", Rhs: call("strlen", mir.Actual{Value: mir.VariableName("s")})},
		printOf("n"),
	))
	_, p := runWhole(t, script)
	g := entryGraph(t, p)

	n := findAssign(t, g, "n")
	if got := n.Annotation(AnnotTypes); got != "int" {
		t.Errorf("type annotation of $n = %q, want %q", got, "int")
	}
	if got := n.Annotation(AnnotValue); got != "" {
		t.Errorf("$n has a constant annotation %q from an opaque callee", got)
	}
	if _, stillCall := n.Stmt().(mir.AssignVar).Rhs.(mir.Call); !stillCall {
		t.Errorf("call right-hand side was rewritten: %s", n.Stmt())
	}
}

func TestUnmodelledExternalAborts(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.EvalExpr{Expr: call("mystery_fn")},
	))
	conf := config.NewDefault()
	conf.LogLevel = int(config.ErrLevel)
	logger := config.NewLogGroup(conf)
	logger.SetAllOutput(io.Discard)
	w := NewWholeProgram(NewProgram(script), conf, logger)

	err := w.Run(passes.NewDefaultManager(logger))
	if err == nil {
		t.Fatal("Run succeeded with an unmodelled external call")
	}
	if !IsUnsupported(err) {
		t.Errorf("error is not an unsupported-construct stop: %v", err)
	}
}

func TestRecursiveCallConverges(t *testing.T) {
	rec := &mir.Method{
		Name:   "spin",
		Params: []mir.Param{{Name: "n"}},
		Statements: []mir.Statement{
			mir.EvalExpr{Expr: call("spin", mir.Actual{Value: mir.VariableName("n")})},
		},
	}
	script := newScript(t,
		entryMethod(mir.EvalExpr{Expr: call("spin", mir.Actual{Value: mir.IntLit{Value: 3}})}),
		rec,
	)
	runWhole(t, script)
	if script.Lookup("spin") == nil {
		t.Error("recursive method was stripped despite being reachable")
	}
}

func TestUnreachableMethodIsStripped(t *testing.T) {
	dead := &mir.Method{
		Name: "never_called",
		Statements: []mir.Statement{
			mir.AssignVar{Lhs: "z", Rhs: mir.IntLit{Value: 9}},
		},
	}
	script := newScript(t,
		entryMethod(
			mir.AssignVar{Lhs: "x", Rhs: mir.IntLit{Value: 1}},
			printOf("x"),
		),
		dead,
	)
	runWhole(t, script)

	if script.Lookup("never_called") != nil {
		t.Error("unreachable method survived finalization")
	}
	if script.Lookup(config.DefaultEntryMethod) == nil {
		t.Error("entry method was stripped")
	}
}

func TestArrayElementConstant(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignArray{Array: "arr", Index: mir.IntLit{Value: 0}, Rhs: mir.IntLit{Value: 7}},
		mir.AssignVar{Lhs: "v", Rhs: mir.ArrayAccess{Array: "arr", Index: mir.IntLit{Value: 0}}},
		printOf("v"),
	))
	runWhole(t, script)

	main := script.Lookup(config.DefaultEntryMethod)
	var sawV bool
	for _, s := range main.Statements {
		a, ok := s.(mir.AssignVar)
		if !ok || a.Lhs != "v" {
			continue
		}
		sawV = true
		if !mir.StatementsEqual(a, mir.AssignVar{Lhs: "v", Rhs: mir.IntLit{Value: 7}}) {
			t.Errorf("$v = $arr[0] was not folded: %s", s)
		}
	}
	if !sawV {
		t.Error("assignment to $v disappeared")
	}
}

func TestMissingEntryMethod(t *testing.T) {
	script := newScript(t, &mir.Method{Name: "not_main"})
	conf := config.NewDefault()
	conf.LogLevel = int(config.ErrLevel)
	logger := config.NewLogGroup(conf)
	logger.SetAllOutput(io.Discard)
	w := NewWholeProgram(NewProgram(script), conf, logger)

	if err := w.Run(passes.NewDefaultManager(logger)); err == nil {
		t.Fatal("Run succeeded without an entry method")
	}
}

func TestAnalysesIdempotentAfterConvergence(t *testing.T) {
	script := newScript(t, entryMethod(
		mir.AssignVar{Lhs: "x", Rhs: mir.IntLit{Value: 5}},
		mir.AssignVar{Lhs: "y", Rhs: mir.VariableName("x")},
		printOf("y"),
	))
	w, _ := runWhole(t, script)

	// One more analysis pass over the converged program must learn nothing new.
	w.initialize()
	if err := w.invokeMethod(nil, mir.Call{Name: config.DefaultEntryMethod}, nil); err != nil {
		t.Fatalf("reanalysis: %v", err)
	}
	if !w.analysesHaveConverged() {
		t.Error("facts changed when reanalyzing a converged program")
	}
}

func TestSuperglobalScopedToGlobalDeclaration(t *testing.T) {
	withDecl := &mir.Method{Name: "with_decl", Statements: []mir.Statement{
		mir.GlobalDecl{Var: "_GET"},
		mir.AssignVar{Lhs: "a", Rhs: mir.VariableName("_GET")},
		printOf("a"),
		mir.Return{},
	}}
	withoutDecl := &mir.Method{Name: "without_decl", Statements: []mir.Statement{
		mir.AssignVar{Lhs: "b", Rhs: mir.VariableName("_GET")},
		printOf("b"),
		mir.Return{},
	}}
	script := newScript(t, entryMethod(
		mir.EvalExpr{Expr: call("with_decl")},
		mir.EvalExpr{Expr: call("without_decl")},
	), withDecl, withoutDecl)
	_, p := runWhole(t, script)

	users := p.UserMethods()

	// Declared global: the initialized container is reached, so the copy is an array.
	gWith, err := users["with_decl"].CFG()
	if err != nil {
		t.Fatalf("CFG(with_decl): %v", err)
	}
	if got := findAssign(t, gWith, "a").Annotation(AnnotTypes); got != "array" {
		t.Errorf("$a types = %q, want %q", got, "array")
	}

	// No declaration: $_GET is an ordinary unset local, so the copy stays unknown.
	gWithout, err := users["without_decl"].CFG()
	if err != nil {
		t.Fatalf("CFG(without_decl): %v", err)
	}
	if got := findAssign(t, gWithout, "b").Annotation(AnnotTypes); got == "array" {
		t.Error("$b typed as the superglobal container without a global declaration")
	}
}
