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
)

// analyzeFunction is the intraprocedural worklist engine. All edges start
// non-executable; the entry edge is seeded into the worklist, and an edge's
// executable flag transitions false to true at most once per run. A block's facts are
// pulled only from predecessors already proven executable, and its successors are
// enqueued only when something changed, with branch arms proven infeasible by
// constant propagation suppressed entirely.
//
// Termination is not separately enforced; it relies on the monotonicity of each
// analysis's lattice.
func (w *WholeProgram) analyzeFunction(g *cfg.Graph) error {
	g.ResetForAnalysis()
	worklist := []*cfg.Edge{g.EntryEdge()}

	for len(worklist) > 0 {
		edge := worklist[0]
		worklist = worklist[1:]

		changed := !edge.Executable()
		edge.MarkExecutable()

		bb := edge.Target()
		w.each(func(a Analysis) { a.PullInit(bb) })
		first := true
		for _, pe := range bb.PredEdges() {
			if !pe.Executable() {
				continue
			}
			pred := pe.Source()
			if first {
				w.each(func(a Analysis) { a.PullFirstPred(bb, pred) })
				first = false
			} else {
				w.each(func(a Analysis) { a.PullPred(bb, pred) })
			}
		}
		w.each(func(a Analysis) { a.PullFinish(bb) })

		if err := w.analyzeBlock(bb); err != nil {
			return err
		}

		w.each(func(a Analysis) { a.AggregateResults(bb) })
		for _, a := range w.analyses {
			changed = changed || a.SolutionChanged(bb)
		}
		w.dumpBlock(bb, "after transfer")

		if !changed {
			continue
		}
		successors, err := w.feasibleSuccessors(bb)
		if err != nil {
			return err
		}
		worklist = append(worklist, successors...)
	}
	return nil
}

// feasibleSuccessors picks the successor edges to enqueue: for a branch, the arm
// whose direction constant propagation proves impossible is suppressed; every other
// non-exit block has its single successor enqueued.
func (w *WholeProgram) feasibleSuccessors(bb *cfg.Block) ([]*cfg.Edge, error) {
	switch bb.Kind() {
	case cfg.KindExit:
		return nil, nil
	case cfg.KindBranch:
		names, _, err := w.namedIndices(bb, VarPath(bb.Graph().Name(), bb.Cond()))
		if err != nil {
			return nil, err
		}
		suppressTrue, suppressFalse := false, false
		if len(names) == 1 && !names[0].IsWild() {
			suppressTrue = w.ccp.BranchKnownFalse(names[0])
			suppressFalse = w.ccp.BranchKnownTrue(names[0])
		}
		var out []*cfg.Edge
		if !suppressTrue {
			out = append(out, bb.TrueEdge())
		}
		if !suppressFalse {
			out = append(out, bb.FalseEdge())
		}
		return out, nil
	default:
		return bb.SuccEdges(), nil
	}
}

// dumpBlock emits every analysis's view of one block at trace level.
func (w *WholeProgram) dumpBlock(bb *cfg.Block, comment string) {
	if !w.log.TraceEnabled() {
		return
	}
	w.each(func(a Analysis) { a.Dump(bb, comment, w.log) })
}
