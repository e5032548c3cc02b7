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
	"fmt"
	"sort"
	"strings"

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/internal/funcutil"
)

// A lattice supplies the meet and equality of one fact domain. Meet must be monotone;
// the worklist engine's termination depends on it.
type lattice[T any] interface {
	Meet(a, b T) T
	Equal(a, b T) bool
	Format(v T) string
}

// blockFacts stores, for one analysis, the per-block in and out fact maps keyed by
// location name. A location absent from a map is at Top (uninitialized). The pull
// phase builds ins from the outs of executable predecessors; the statement transfer
// mutates the working map; AggregateResults commits the working map as the block's
// outs and records whether they changed.
type blockFacts[T any] struct {
	lat lattice[T]

	ins  map[*cfg.Block]map[NodeName]T
	outs map[*cfg.Block]map[NodeName]T

	// working holds the facts being computed for the block currently under transfer
	working map[NodeName]T

	// changedAt records, per block, whether the last AggregateResults changed its outs
	changedAt map[*cfg.Block]bool
}

func newBlockFacts[T any](lat lattice[T]) *blockFacts[T] {
	return &blockFacts[T]{
		lat:       lat,
		ins:       map[*cfg.Block]map[NodeName]T{},
		outs:      map[*cfg.Block]map[NodeName]T{},
		changedAt: map[*cfg.Block]bool{},
	}
}

func (f *blockFacts[T]) PullInit(bb *cfg.Block) {
	f.ins[bb] = map[NodeName]T{}
}

func (f *blockFacts[T]) PullFirstPred(bb *cfg.Block, pred *cfg.Block) {
	f.ins[bb] = funcutil.CopyMap(f.outs[pred], func(v T) T { return v })
}

func (f *blockFacts[T]) PullPred(bb *cfg.Block, pred *cfg.Block) {
	in := f.ins[bb]
	for name, v := range f.outs[pred] {
		if cur, ok := in[name]; ok {
			in[name] = f.lat.Meet(cur, v)
		} else {
			in[name] = v
		}
	}
}

func (f *blockFacts[T]) PullFinish(bb *cfg.Block) {
	f.working = funcutil.CopyMap(f.ins[bb], func(v T) T { return v })
}

// Get reads the working fact for a name. The second result is false when the name is
// at Top.
func (f *blockFacts[T]) Get(name NodeName) (T, bool) {
	v, ok := f.working[name]
	return v, ok
}

// Set installs a fact, replacing any prior one (a strong update).
func (f *blockFacts[T]) Set(name NodeName, v T) {
	f.working[name] = v
}

// Weaken meets a fact into the existing one (a weak update). A name at Top takes the
// new fact directly.
func (f *blockFacts[T]) Weaken(name NodeName, v T) {
	if cur, ok := f.working[name]; ok {
		f.working[name] = f.lat.Meet(cur, v)
	} else {
		f.working[name] = v
	}
}

// Kill removes all facts for a name. Only strong updates call this.
func (f *blockFacts[T]) Kill(name NodeName) {
	delete(f.working, name)
}

func (f *blockFacts[T]) AggregateResults(bb *cfg.Block) {
	old, had := f.outs[bb]
	committed := funcutil.CopyMap(f.working, func(v T) T { return v })
	f.outs[bb] = committed
	f.changedAt[bb] = !had || !funcutil.MapEqual(old, committed, f.lat.Equal)
}

func (f *blockFacts[T]) SolutionChanged(bb *cfg.Block) bool {
	return f.changedAt[bb]
}

// BindForward seeds the callee entry's working state from the caller's in-flight
// facts. The call happens mid-transfer of the caller block, so the caller's state is
// the working map, not its committed outs.
func (f *blockFacts[T]) BindForward(caller *cfg.Block, entry *cfg.Block) {
	if caller == nil {
		f.working = map[NodeName]T{}
		return
	}
	f.working = funcutil.CopyMap(f.working, func(v T) T { return v })
}

// BindBackward replaces the caller's in-flight facts with the callee exit's committed
// ones, so the call's effects become the caller's post-call state. The caller block
// itself commits only when its transfer completes, keeping change detection intact.
func (f *blockFacts[T]) BindBackward(caller *cfg.Block, exit *cfg.Block) {
	if caller == nil {
		return
	}
	f.working = funcutil.CopyMap(f.outs[exit], func(v T) T { return v })
}

// OutAt reads a committed out-fact at a block, for queries made outside the transfer
// of that block (branch filtering, result application).
func (f *blockFacts[T]) OutAt(bb *cfg.Block, name NodeName) (T, bool) {
	v, ok := f.outs[bb][name]
	return v, ok
}

// Equals compares all committed facts against another store of the same domain. Used
// only for whole-program convergence.
func (f *blockFacts[T]) Equals(other *blockFacts[T]) bool {
	return funcutil.MapEqual(f.outs, other.outs, func(a, b map[NodeName]T) bool {
		return funcutil.MapEqual(a, b, f.lat.Equal)
	})
}

// FormatAt renders the committed facts of one block for diagnostics, sorted by name.
func (f *blockFacts[T]) FormatAt(bb *cfg.Block) string {
	out := f.outs[bb]
	lines := make([]string, 0, len(out))
	for name, v := range out {
		lines = append(lines, fmt.Sprintf("%s = %s", name, f.lat.Format(v)))
	}
	sort.Strings(lines)
	return strings.Join(lines, "; ")
}
