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
	"testing"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/mir"
)

// threeBlocks builds a synthetic entry/body/exit graph for fact-store tests; the
// facts only care about block identity, not statements.
func threeBlocks() (entry, body, exit *cfg.Block) {
	g, body := cfg.Synthetic("t")
	return g.Entry(), body, g.Exit()
}

func litName(s string) NodeName {
	return NodeName{Storage: "t", Index: s}
}

func TestBlockFactsPullMeet(t *testing.T) {
	f := newBlockFacts[Cell](cellLattice{})
	a, b, join := threeBlocks()

	f.PullInit(a)
	f.PullFinish(a)
	f.Set(litName("x"), LitCell(mir.IntLit{Value: 1}))
	f.Set(litName("y"), LitCell(mir.IntLit{Value: 9}))
	f.AggregateResults(a)

	f.PullInit(b)
	f.PullFinish(b)
	f.Set(litName("x"), LitCell(mir.IntLit{Value: 2}))
	f.AggregateResults(b)

	f.PullInit(join)
	f.PullFirstPred(join, a)
	f.PullPred(join, b)
	f.PullFinish(join)

	// disagreeing values meet to bottom
	if v, ok := f.Get(litName("x")); !ok || v.Kind != CellBottom {
		t.Errorf("x at the join = %+v, want bottom", v)
	}
	// a value known on one path only keeps its fact (top is the identity)
	if v, ok := f.Get(litName("y")); !ok || v.Kind != CellLit || !mir.LiteralsEqual(v.Lit, mir.IntLit{Value: 9}) {
		t.Errorf("y at the join = %+v, want 9", v)
	}
}

func TestBlockFactsChangeDetection(t *testing.T) {
	f := newBlockFacts[Cell](cellLattice{})
	bb, _, _ := threeBlocks()

	f.PullInit(bb)
	f.PullFinish(bb)
	f.Set(litName("x"), LitCell(mir.IntLit{Value: 1}))
	f.AggregateResults(bb)
	if !f.SolutionChanged(bb) {
		t.Error("first commit should register as a change")
	}

	f.PullInit(bb)
	f.PullFinish(bb)
	f.Set(litName("x"), LitCell(mir.IntLit{Value: 1}))
	f.AggregateResults(bb)
	if f.SolutionChanged(bb) {
		t.Error("identical recommit should not register as a change")
	}

	f.PullInit(bb)
	f.PullFinish(bb)
	f.Set(litName("x"), BottomCell)
	f.AggregateResults(bb)
	if !f.SolutionChanged(bb) {
		t.Error("weakened recommit should register as a change")
	}
}

func TestBlockFactsStrongAndWeakUpdates(t *testing.T) {
	f := newBlockFacts[Cell](cellLattice{})
	bb, _, _ := threeBlocks()
	f.PullInit(bb)
	f.PullFinish(bb)

	f.Set(litName("x"), LitCell(mir.IntLit{Value: 1}))
	f.Set(litName("x"), LitCell(mir.IntLit{Value: 2}))
	if v, _ := f.Get(litName("x")); !mir.LiteralsEqual(v.Lit, mir.IntLit{Value: 2}) {
		t.Errorf("strong update kept the old value: %+v", v)
	}

	f.Weaken(litName("x"), LitCell(mir.IntLit{Value: 2}))
	if v, _ := f.Get(litName("x")); v.Kind != CellLit {
		t.Errorf("weakening with an equal value should not lose it: %+v", v)
	}
	f.Weaken(litName("x"), LitCell(mir.IntLit{Value: 3}))
	if v, _ := f.Get(litName("x")); v.Kind != CellBottom {
		t.Errorf("weakening with a different value should reach bottom: %+v", v)
	}

	f.Kill(litName("x"))
	if _, ok := f.Get(litName("x")); ok {
		t.Error("killed name still has a fact")
	}
}

func TestBlockFactsBinding(t *testing.T) {
	f := newBlockFacts[Cell](cellLattice{})
	caller, _, _ := threeBlocks()
	calleeEntry, _, calleeExit := threeBlocks()

	// first visit commits the pre-call state
	f.PullInit(caller)
	f.PullFinish(caller)
	f.Set(litName("a"), LitCell(mir.IntLit{Value: 1}))
	f.AggregateResults(caller)

	// second visit, mid-transfer
	f.PullInit(caller)
	f.PullFinish(caller)
	f.Set(litName("a"), LitCell(mir.IntLit{Value: 1}))

	f.BindForward(caller, calleeEntry)
	if v, ok := f.Get(litName("a")); !ok || !mir.LiteralsEqual(v.Lit, mir.IntLit{Value: 1}) {
		t.Errorf("callee entry does not see the caller's in-flight facts: %+v", v)
	}
	f.AggregateResults(calleeEntry)

	// callee effect, committed at its exit
	f.Set(litName("a"), LitCell(mir.IntLit{Value: 2}))
	f.AggregateResults(calleeExit)

	f.BindBackward(caller, calleeExit)
	if v, ok := f.Get(litName("a")); !ok || !mir.LiteralsEqual(v.Lit, mir.IntLit{Value: 2}) {
		t.Errorf("caller does not see the callee's effect: %+v", v)
	}
	// the caller block's own commit must still detect the change
	f.AggregateResults(caller)
	if !f.SolutionChanged(caller) {
		t.Error("post-call commit did not register the callee's effect as a change")
	}

	f.BindForward(nil, calleeEntry)
	if _, ok := f.Get(litName("a")); ok {
		t.Error("entry invocation should start from empty facts")
	}
}

func TestBlockFactsEquals(t *testing.T) {
	a := newBlockFacts[Cell](cellLattice{})
	b := newBlockFacts[Cell](cellLattice{})
	bb, _, _ := threeBlocks()

	for _, f := range []*blockFacts[Cell]{a, b} {
		f.PullInit(bb)
		f.PullFinish(bb)
		f.Set(litName("x"), LitCell(mir.IntLit{Value: 1}))
		f.AggregateResults(bb)
	}
	if !a.Equals(b) {
		t.Error("identical stores compare unequal")
	}

	b.PullInit(bb)
	b.PullFinish(bb)
	b.Set(litName("x"), BottomCell)
	b.AggregateResults(bb)
	if a.Equals(b) {
		t.Error("diverged stores compare equal")
	}
}
