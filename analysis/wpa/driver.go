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

// Package wpa is the whole-program analysis core: a nested fixpoint driver iterating
// cooperating dataflow analyses (aliasing, constant propagation, type inference,
// def-use) over the program's call graph until none of them learns anything new, then
// rewriting method bodies from the converged facts.
package wpa

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/analysis/passes"
)

// WholeProgram drives the analysis. One instance analyzes one program; it is not
// safe for concurrent use, and everything runs on the calling goroutine.
type WholeProgram struct {
	program *Program
	conf    *config.Config
	log     *config.LogGroup

	// globalScope is the entry method's name, which doubles as the global variable
	// table's storage name.
	globalScope string

	// analyses in registration order; later analyses may rely on earlier ones'
	// committed facts within a pass, so the order is fixed for the driver's lifetime.
	analyses []Analysis
	debug    *Debug
	alias    *Aliasing
	cg       *Callgraph
	ccp      *CCP
	defuse   *DefUse
	types    *TypeInference

	// prev holds the previous pass's analyses as the convergence snapshot
	prev []Analysis

	// active tracks methods on the invocation stack, to stop recursive reanalysis
	active map[string]bool
}

// NewWholeProgram prepares a driver over the program using the given configuration.
func NewWholeProgram(p *Program, conf *config.Config, log *config.LogGroup) *WholeProgram {
	return &WholeProgram{
		program:     p,
		conf:        conf,
		log:         log,
		globalScope: conf.Options.EntryMethod,
		active:      map[string]bool{},
	}
}

// initialize recreates every analysis with empty facts, keeping the previous pass's
// set as the convergence snapshot. Call-graph and method descriptors persist; only
// analysis facts start over.
func (w *WholeProgram) initialize() {
	w.prev = w.analyses

	w.debug = NewDebug(w.log)
	w.alias = NewAliasing()
	w.cg = NewCallgraph(w.globalScope)
	w.ccp = NewCCP()
	w.defuse = NewDefUse()
	w.types = NewTypeInference()
	w.analyses = []Analysis{w.debug, w.alias, w.cg, w.ccp, w.defuse, w.types}
}

// Run iterates whole-program passes to a fixpoint and then rewrites the program from
// the converged facts. Exhausting the pass bound without convergence is fatal.
func (w *WholeProgram) Run(mgr passes.Manager) error {
	if _, err := w.program.MethodInfo(w.globalScope); err != nil {
		return fmt.Errorf("entry method %s: %w", w.globalScope, err)
	}

	converged := false
	for pass := 1; pass <= w.conf.Options.MaxPasses; pass++ {
		w.log.Infof("whole-program pass %d", pass)
		w.initialize()

		if err := w.invokeMethod(nil, mir.Call{Name: w.globalScope}, nil); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
		w.cg.ReportRecursion(w.log)

		if err := w.sweep(mgr); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}

		if w.analysesHaveConverged() {
			w.log.Infof("analyses converged after %d passes", pass)
			converged = true
			break
		}
	}
	if !converged {
		return fmt.Errorf("after %d passes: %w", w.conf.Options.MaxPasses, ErrNonConvergence)
	}
	return w.finalize()
}

// sweep visits every analyzed user method bottom-up (callees first), applies the
// accumulated results to its graph, and iterates the optimization passes on it until
// the graph stops changing.
func (w *WholeProgram) sweep(mgr passes.Manager) error {
	users := w.program.UserMethods()
	for _, name := range w.cg.BottomUp() {
		u, ok := users[name]
		if !ok || !u.Built() {
			continue
		}
		g, err := u.CFG()
		if err != nil {
			return err
		}

		w.mergeContexts(u)
		if err := w.applyResults(g); err != nil {
			return err
		}
		u.Summary = w.generateSummary(u, g)

		for iter := 0; iter < w.conf.Options.MaxLocalIterations; iter++ {
			snapshot := g.Clone()
			if !w.conf.Options.SkipLocalOpts {
				if err := mgr.RunLocalOptimizationPasses(w, g); err != nil {
					return fmt.Errorf("local passes on %s: %w", name, err)
				}
			}
			if !w.conf.Options.SkipIpaOpts {
				if err := mgr.RunIPAPasses(w, g); err != nil {
					return fmt.Errorf("ipa passes on %s: %w", name, err)
				}
			}
			u.Summary = w.generateSummary(u, g)
			if g.Equals(snapshot) {
				break
			}
		}
	}
	return nil
}

// mergeContexts merges multiple analysis contexts of one method. The driver keeps a
// single context per method, so there is nothing to merge yet; the hook marks where
// context-sensitive cloning would fold its clones back together.
func (w *WholeProgram) mergeContexts(u *UserMethodInfo) {}

// analysesHaveConverged compares every analysis against the previous pass's
// snapshot, in registration order. The first pass has no snapshot and never
// converges.
func (w *WholeProgram) analysesHaveConverged() bool {
	if w.prev == nil {
		return false
	}
	for i, a := range w.analyses {
		if !a.Equals(w.prev[i]) {
			w.log.Debugf("analysis %s has not converged", a.Name())
			return false
		}
	}
	return true
}

// finalize annotates every reachable method's blocks with the results code
// generation needs, replaces the method bodies with the linearized statement
// sequences recovered from their graphs, and strips methods unreachable from the
// entry.
func (w *WholeProgram) finalize() error {
	users := w.program.UserMethods()
	for _, name := range w.cg.BottomUp() {
		u, ok := users[name]
		if !ok || !u.Built() {
			continue
		}
		g, err := u.CFG()
		if err != nil {
			return err
		}
		w.annotateResults(g)
		u.Method.Statements = g.LinearStatements()
	}

	reachable := w.cg.Reachable()
	for _, name := range w.program.Script.MethodNames() {
		if !reachable[name] {
			w.log.Infof("removing unreachable method %s", name)
			w.program.Remove(name)
		}
	}

	if w.conf.Options.DumpGraphs {
		if err := w.dumpGraphs(); err != nil {
			return err
		}
	}
	return nil
}

// dumpGraphs writes every built graph as graphviz into the configured dump
// directory.
func (w *WholeProgram) dumpGraphs() error {
	for name, u := range w.program.UserMethods() {
		if !u.Built() {
			continue
		}
		g, err := u.CFG()
		if err != nil {
			return err
		}
		path := filepath.Join(w.conf.Options.DumpDir, name+".dot")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("dumping graph of %s: %w", name, err)
		}
		g.WriteDot(f)
		if err := f.Close(); err != nil {
			return fmt.Errorf("dumping graph of %s: %w", name, err)
		}
		w.log.Debugf("wrote %s", path)
	}
	return nil
}

// generateSummary recomputes a method's inlining-eligibility summary from its
// current graph shape.
func (w *WholeProgram) generateSummary(u *UserMethodInfo, g *cfg.Graph) MethodSummary {
	s := MethodSummary{Blocks: g.Size()}
	for _, bb := range g.Blocks() {
		switch bb.Kind() {
		case cfg.KindBranch:
			s.Branches++
		case cfg.KindStatement:
			if stmtCalls(bb.Stmt()) {
				s.Calls++
			}
		}
	}
	for _, p := range u.Method.Params {
		if p.ByRef {
			s.ByRef = true
		}
	}
	s.Inlinable = s.Calls == 0 && s.Branches == 0 && !s.ByRef && s.Blocks <= 10
	return s
}

func stmtCalls(s mir.Statement) bool {
	switch stmt := s.(type) {
	case mir.AssignVar:
		_, ok := stmt.Rhs.(mir.Call)
		return ok
	case mir.EvalExpr:
		_, ok := stmt.Expr.(mir.Call)
		return ok
	default:
		return false
	}
}

// LiteralAt implements passes.Facts over the constant-propagation results.
func (w *WholeProgram) LiteralAt(bb *cfg.Block, v mir.VariableName) mir.Literal {
	return w.ccp.LitAt(bb, NodeName{Storage: bb.Graph().Name(), Index: string(v)})
}

// IsUsed implements passes.Facts over the def-use results.
func (w *WholeProgram) IsUsed(g *cfg.Graph, v mir.VariableName) bool {
	return w.defuse.IsUsed(NodeName{Storage: g.Name(), Index: string(v)})
}
