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

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
	"github.com/jholder85638/phc/internal/funcutil"
)

// A TypeSet is the set of runtime type names a location may hold. The empty set is
// not stored; a location with no fact is untyped (Top).
type TypeSet map[string]bool

// ScalarTypeNames are the type names of by-value copyable values. Containers ("array",
// "object") copy by edge instead.
var ScalarTypeNames = map[string]bool{
	"bool": true, "int": true, "real": true, "string": true, "null": true,
}

type typeLattice struct{}

func (typeLattice) Meet(a, b TypeSet) TypeSet { return funcutil.Union(a, b) }

func (typeLattice) Equal(a, b TypeSet) bool {
	return funcutil.MapEqual(a, b, func(x, y bool) bool { return x == y })
}

func (typeLattice) Format(v TypeSet) string {
	return "{" + strings.Join(funcutil.SortedKeys(v), ", ") + "}"
}

// TypeInference tracks the possible runtime types of every location. Its facts decide
// which copy discipline an assignment uses and type the results of unfoldable
// operators.
type TypeInference struct {
	facts *blockFacts[TypeSet]
}

// NewTypeInference returns a type-inference analysis with empty facts.
func NewTypeInference() *TypeInference {
	return &TypeInference{facts: newBlockFacts[TypeSet](typeLattice{})}
}

// Name implements Analysis.
func (t *TypeInference) Name() string { return "types" }

func (t *TypeInference) PullInit(bb *cfg.Block)                       { t.facts.PullInit(bb) }
func (t *TypeInference) PullFirstPred(bb *cfg.Block, pred *cfg.Block) { t.facts.PullFirstPred(bb, pred) }
func (t *TypeInference) PullPred(bb *cfg.Block, pred *cfg.Block)      { t.facts.PullPred(bb, pred) }
func (t *TypeInference) PullFinish(bb *cfg.Block)                     { t.facts.PullFinish(bb) }

func (t *TypeInference) AggregateResults(bb *cfg.Block)     { t.facts.AggregateResults(bb) }
func (t *TypeInference) SolutionChanged(bb *cfg.Block) bool { return t.facts.SolutionChanged(bb) }

func (t *TypeInference) ForwardBind(caller *cfg.Block, entry *cfg.Block) {
	t.facts.BindForward(caller, entry)
}

func (t *TypeInference) BackwardBind(caller *cfg.Block, exit *cfg.Block) {
	t.facts.BindBackward(caller, exit)
}

func (t *TypeInference) KillValue(bb *cfg.Block, name NodeName) { t.facts.Kill(name) }

func (t *TypeInference) KillReference(bb *cfg.Block, name NodeName) {}

func (t *TypeInference) CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty) {
	if v, ok := t.facts.Get(rhs); ok {
		if cert == Definite {
			t.facts.Set(lhs, v)
		} else {
			t.facts.Weaken(lhs, v)
		}
	}
}

func (t *TypeInference) AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal) {
	t.assign(lhs, cert, TypeSet{lit.TypeName(): true})
}

func (t *TypeInference) AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	// The container kind is assigned separately via AssignTyped by the caller.
}

func (t *TypeInference) AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	t.assign(lhs, cert, TypeSet{"array": true})
}

func (t *TypeInference) AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string) {
	set := TypeSet{}
	for _, ty := range types {
		set[ty] = true
	}
	t.assign(lhs, cert, set)
}

// AssignUnknown widens to every type: the value could be anything.
func (t *TypeInference) AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty) {
	all := TypeSet{"array": true, "object": true}
	for ty := range ScalarTypeNames {
		all[ty] = true
	}
	t.assign(lhs, cert, all)
}

func (t *TypeInference) assign(lhs NodeName, cert Certainty, set TypeSet) {
	if cert == Definite {
		t.facts.Set(lhs, set)
	} else {
		t.facts.Weaken(lhs, set)
	}
}

func (t *TypeInference) RecordUse(bb *cfg.Block, name NodeName, cert Certainty) {}

func (t *TypeInference) Equals(other Analysis) bool {
	o, ok := other.(*TypeInference)
	return ok && t.facts.Equals(o.facts)
}

func (t *TypeInference) Dump(bb *cfg.Block, comment string, log *config.LogGroup) {
	log.Tracef("types %s [%s]: %s", bb, comment, t.facts.FormatAt(bb))
}

// TypesOf returns the location's type set in the block currently under transfer. An
// empty result means the location is untyped so far.
func (t *TypeInference) TypesOf(name NodeName) TypeSet {
	v, _ := t.facts.Get(name)
	return v
}

// TypesAt returns the location's type set in a block's committed out-facts, sorted.
func (t *TypeInference) TypesAt(bb *cfg.Block, name NodeName) []string {
	v, _ := t.facts.OutAt(bb, name)
	return funcutil.SortedKeys(v)
}

// binOpTypes returns the possible result types of a binary operator whose operands
// are not both known.
func binOpTypes(op string) []string {
	switch op {
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=", "&&", "||":
		return []string{"bool"}
	case ".":
		return []string{"string"}
	case "%", "&", "|", "^", "<<", ">>":
		return []string{"int"}
	default:
		return []string{"int", "real"}
	}
}
