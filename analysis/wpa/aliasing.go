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
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/internal/funcutil"
)

// A StorageSet records which containers a location may point to, with the certainty
// of each edge. A Definite edge is a must points-to relation. Aliases, so the
// shared setLattice applies to both domains unchanged.
type StorageSet = map[string]Certainty

// A RefSet records the reference aliases of a location. A Definite entry is a must
// alias: writes to one side are writes to the other.
type RefSet = map[NodeName]Certainty

// setLattice is the shared meet for both alias domains: edges present on both paths
// keep the weaker certainty, edges present on only one path weaken to Possible.
type setLattice[K comparable] struct{}

func (setLattice[K]) Meet(a, b map[K]Certainty) map[K]Certainty {
	out := make(map[K]Certainty, len(a)+len(b))
	for k, ca := range a {
		if cb, ok := b[k]; ok {
			out[k] = meetCertainty(ca, cb)
		} else {
			out[k] = Possible
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out[k] = Possible
		}
	}
	return out
}

func (setLattice[K]) Equal(a, b map[K]Certainty) bool {
	return funcutil.MapEqual(a, b, func(x, y Certainty) bool { return x == y })
}

func (setLattice[K]) Format(v map[K]Certainty) string {
	parts := make([]string, 0, len(v))
	for k, c := range v {
		parts = append(parts, fmt.Sprintf("%v(%s)", k, c))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

// Aliasing tracks the points-to and reference-alias relations every other analysis
// depends on for must/may classification. The assignment layer resolves access paths
// through PointsTo and widens write sets through RefAliases; nothing else reads these
// facts directly.
type Aliasing struct {
	points *blockFacts[StorageSet]
	refs   *blockFacts[RefSet]
}

// NewAliasing returns an aliasing analysis with empty facts.
func NewAliasing() *Aliasing {
	return &Aliasing{
		points: newBlockFacts[StorageSet](setLattice[string]{}),
		refs:   newBlockFacts[RefSet](setLattice[NodeName]{}),
	}
}

// Name implements Analysis.
func (a *Aliasing) Name() string { return "alias" }

func (a *Aliasing) PullInit(bb *cfg.Block) {
	a.points.PullInit(bb)
	a.refs.PullInit(bb)
}

func (a *Aliasing) PullFirstPred(bb *cfg.Block, pred *cfg.Block) {
	a.points.PullFirstPred(bb, pred)
	a.refs.PullFirstPred(bb, pred)
}

func (a *Aliasing) PullPred(bb *cfg.Block, pred *cfg.Block) {
	a.points.PullPred(bb, pred)
	a.refs.PullPred(bb, pred)
}

func (a *Aliasing) PullFinish(bb *cfg.Block) {
	a.points.PullFinish(bb)
	a.refs.PullFinish(bb)
}

func (a *Aliasing) AggregateResults(bb *cfg.Block) {
	a.points.AggregateResults(bb)
	a.refs.AggregateResults(bb)
}

func (a *Aliasing) SolutionChanged(bb *cfg.Block) bool {
	return a.points.SolutionChanged(bb) || a.refs.SolutionChanged(bb)
}

func (a *Aliasing) ForwardBind(caller *cfg.Block, entry *cfg.Block) {
	a.points.BindForward(caller, entry)
	a.refs.BindForward(caller, entry)
}

func (a *Aliasing) BackwardBind(caller *cfg.Block, exit *cfg.Block) {
	a.points.BindBackward(caller, exit)
	a.refs.BindBackward(caller, exit)
}

// KillValue removes the location's points-to edges. Reference aliases survive a value
// kill; the assignment layer writes the new value through them separately.
func (a *Aliasing) KillValue(bb *cfg.Block, name NodeName) {
	a.points.Kill(name)
}

// KillReference removes the location's reference aliases, on both sides of each edge.
func (a *Aliasing) KillReference(bb *cfg.Block, name NodeName) {
	if set, ok := a.refs.Get(name); ok {
		for other := range set {
			if otherSet, ok := a.refs.Get(other); ok {
				rest := funcutil.CopyMap(otherSet, func(c Certainty) Certainty { return c })
				delete(rest, name)
				a.refs.Set(other, rest)
			}
		}
	}
	a.refs.Kill(name)
	a.points.Kill(name)
}

// CreateReference records a reference edge in both directions and makes the lhs point
// at everything the rhs points at.
func (a *Aliasing) CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty) {
	a.addRef(lhs, rhs, cert)
	a.addRef(rhs, lhs, cert)
	if targets, ok := a.points.Get(rhs); ok {
		for storage, tc := range targets {
			a.addPoints(lhs, storage, meetCertainty(cert, tc))
		}
	}
}

func (a *Aliasing) addRef(from, to NodeName, cert Certainty) {
	set, _ := a.refs.Get(from)
	next := funcutil.CopyMap(set, func(c Certainty) Certainty { return c })
	if next == nil {
		next = RefSet{}
	}
	if prev, ok := next[to]; !ok || cert == Definite && prev == Possible {
		next[to] = cert
	}
	a.refs.Set(from, next)
}

func (a *Aliasing) addPoints(from NodeName, storage string, cert Certainty) {
	set, _ := a.points.Get(from)
	next := funcutil.CopyMap(set, func(c Certainty) Certainty { return c })
	if next == nil {
		next = StorageSet{}
	}
	if prev, ok := next[storage]; !ok || cert == Definite && prev == Possible {
		next[storage] = cert
	}
	a.points.Set(from, next)
}

// AssignScalar drops the points-to edges when the overwrite is strong; a scalar value
// is not a container.
func (a *Aliasing) AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal) {
	if cert == Definite {
		a.points.Kill(lhs)
	}
}

func (a *Aliasing) AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	if cert == Definite {
		a.points.Set(lhs, StorageSet{storage: Definite})
	} else {
		a.addPoints(lhs, storage, Possible)
	}
}

func (a *Aliasing) AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	a.AssignStorage(bb, lhs, cert, storage)
}

func (a *Aliasing) AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string) {}

func (a *Aliasing) AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty) {
	if cert == Definite {
		a.points.Kill(lhs)
	}
}

func (a *Aliasing) RecordUse(bb *cfg.Block, name NodeName, cert Certainty) {}

func (a *Aliasing) Equals(other Analysis) bool {
	o, ok := other.(*Aliasing)
	return ok && a.points.Equals(o.points) && a.refs.Equals(o.refs)
}

func (a *Aliasing) Dump(bb *cfg.Block, comment string, log *config.LogGroup) {
	log.Tracef("alias %s [%s]: points %s | refs %s",
		bb, comment, a.points.FormatAt(bb), a.refs.FormatAt(bb))
}

// PointsTo returns the containers the location points to in the block currently under
// transfer. An empty result means the location holds a scalar or is unset.
func (a *Aliasing) PointsTo(name NodeName) StorageSet {
	set, _ := a.points.Get(name)
	return set
}

// RefAliases returns the location's reference aliases in the block currently under
// transfer, including transitive must aliases. A chain is a must alias only if every
// hop is Definite.
func (a *Aliasing) RefAliases(name NodeName) RefSet {
	out := RefSet{}
	type item struct {
		name NodeName
		cert Certainty
	}
	work := []item{{name, Definite}}
	seen := map[NodeName]bool{name: true}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		set, _ := a.refs.Get(cur.name)
		for next, c := range set {
			if seen[next] {
				continue
			}
			seen[next] = true
			cert := meetCertainty(cur.cert, c)
			out[next] = cert
			work = append(work, item{next, cert})
		}
	}
	return out
}
