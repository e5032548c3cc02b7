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

	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/internal/funcutil"
	"github.com/jholder85638/phc/internal/graphutil"
)

// Callgraph records caller/callee edges as calls are discovered during analysis.
// Callee resolution depends on facts the analysis itself produces, so the graph
// cannot be precomputed; it grows monotonically within a pass and is rebuilt fresh
// each pass like every other analysis.
type Callgraph struct {
	NopAnalysis

	entry string
	succs map[string]map[string]bool
	seen  []string
}

// NewCallgraph returns a call graph containing only the entry method.
func NewCallgraph(entry string) *Callgraph {
	cg := &Callgraph{
		entry: entry,
		succs: map[string]map[string]bool{},
	}
	cg.ensure(entry)
	return cg
}

// Name implements Analysis.
func (cg *Callgraph) Name() string { return "callgraph" }

func (cg *Callgraph) ensure(name string) {
	if _, ok := cg.succs[name]; !ok {
		cg.succs[name] = map[string]bool{}
		cg.seen = append(cg.seen, name)
	}
}

// AddCall records a call edge from caller to callee.
func (cg *Callgraph) AddCall(caller, callee string) {
	cg.ensure(caller)
	cg.ensure(callee)
	cg.succs[caller][callee] = true
}

// Methods returns every method name seen, in discovery order.
func (cg *Callgraph) Methods() []string {
	out := make([]string, len(cg.seen))
	copy(out, cg.seen)
	return out
}

// Callees returns the recorded callees of a method, sorted.
func (cg *Callgraph) Callees(caller string) []string {
	return funcutil.SortedKeys(cg.succs[caller])
}

func (cg *Callgraph) adapter() graphutil.CGraph {
	return graphutil.NewCGraph(cg.Methods(), cg.Callees)
}

// BottomUp returns the method names in callees-before-callers order. Strongly
// connected components are kept together; recursion inside one is left to the
// enclosing fixpoint loops.
func (cg *Callgraph) BottomUp() []string {
	var out []string
	for _, comp := range graphutil.BottomUpComponents(cg.adapter()) {
		out = append(out, comp...)
	}
	return out
}

// Reachable returns the set of methods reachable from the entry.
func (cg *Callgraph) Reachable() map[string]bool {
	seen := map[string]bool{cg.entry: true}
	work := []string{cg.entry}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for callee := range cg.succs[cur] {
			if !seen[callee] {
				seen[callee] = true
				work = append(work, callee)
			}
		}
	}
	return seen
}

// ReportRecursion logs every elementary cycle in the call graph at debug level.
func (cg *Callgraph) ReportRecursion(log *config.LogGroup) {
	adapter := cg.adapter()
	for _, cycle := range graphutil.FindAllElementaryCycles(adapter) {
		log.Debugf("recursive call chain: %s",
			strings.Join(graphutil.CycleNames(adapter, cycle), " -> "))
	}
}

func (cg *Callgraph) Equals(other Analysis) bool {
	o, ok := other.(*Callgraph)
	if !ok {
		return false
	}
	return funcutil.MapEqual(cg.succs, o.succs, func(a, b map[string]bool) bool {
		return funcutil.MapEqual(a, b, func(x, y bool) bool { return x == y })
	})
}
