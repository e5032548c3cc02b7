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

	"github.com/jholder85638/phc/analysis/cfg"
	"github.com/jholder85638/phc/analysis/mir"
)

// Wildcard is the index standing for "any key" of a storage. Writes through the
// wildcard are always weak, and reads through it never produce a known literal.
const Wildcard = "*"

// RetName is the slot a method's return value is assigned into, in the method's own
// scope. The name contains characters no source variable can, so it cannot collide.
const RetName = "__RETVAL__"

// A NodeName identifies one abstract location: an Index (variable name, array key or
// Wildcard) inside a Storage (a per-method variable table, a heap container or a
// synthetic container minted for an implicit conversion). NodeName is comparable and
// used directly as a map key by every analysis.
type NodeName struct {
	Storage string
	Index   string
}

func (n NodeName) String() string {
	return n.Storage + "::" + n.Index
}

// IsWild reports whether the name stands for any key of its storage.
func (n NodeName) IsWild() bool {
	return n.Index == Wildcard
}

// Certainty is the two-point lattice classifying a resolved location set. Definite
// means every step of resolution was a singleton and the update may kill prior facts;
// Possible means ambiguity exists and updates must be weak.
type Certainty int

const (
	// Possible marks an ambiguous resolution; only weak (additive) updates are allowed.
	Possible Certainty = iota
	// Definite marks a singleton resolution; strong (killing) updates are allowed.
	Definite
)

func (c Certainty) String() string {
	if c == Definite {
		return "definite"
	}
	return "possible"
}

// meetCertainty weakens to Possible unless both sides are Definite.
func meetCertainty(a, b Certainty) Certainty {
	if a == Definite && b == Definite {
		return Definite
	}
	return Possible
}

// A Path is an unresolved access path. The set of forms is closed; resolution in
// namedIndices matches each form explicitly.
type Path interface {
	isPath()
	String() string
}

// StoragePath names a storage table directly: a method scope or a container. It only
// appears as the storage side of another path, never as a full access path.
type StoragePath struct {
	Name string
}

// IndexPath is an access with a constant index: the storage side resolves to a set of
// storages, the index is known up front.
type IndexPath struct {
	Storage Path
	Index   string
}

// Indexing is an access whose index is itself computed ($a[$i]): the index side is
// resolved to locations first, and their known string values become the field names.
type Indexing struct {
	Storage Path
	Index   Path
}

func (StoragePath) isPath() {}
func (IndexPath) isPath()   {}
func (Indexing) isPath()    {}

func (p StoragePath) String() string { return p.Name }
func (p IndexPath) String() string   { return fmt.Sprintf("%s[%s]", p.Storage, p.Index) }
func (p Indexing) String() string    { return fmt.Sprintf("%s[%s]", p.Storage, p.Index) }

// VarPath is the path of a plain variable in a method scope.
func VarPath(scope string, v mir.VariableName) Path {
	return IndexPath{Storage: StoragePath{Name: scope}, Index: string(v)}
}

// RetPath is the path of a method's return slot.
func RetPath(scope string) Path {
	return IndexPath{Storage: StoragePath{Name: scope}, Index: RetName}
}

// IndexedPath is the path of an array access $arr[index] in a method scope. A literal
// index becomes a constant field; a variable index defers to resolution.
func IndexedPath(scope string, arr mir.VariableName, index mir.Rvalue) Path {
	storage := VarPath(scope, arr)
	switch idx := index.(type) {
	case mir.VariableName:
		return Indexing{Storage: storage, Index: VarPath(scope, idx)}
	case mir.Literal:
		return IndexPath{Storage: storage, Index: mir.AsString(idx)}
	default:
		return IndexPath{Storage: storage, Index: Wildcard}
	}
}

// freshArrayStorage mints the deterministic name of the container created when a
// scalar is indexed (autovivification) or an array literal is copied at this block.
func freshArrayStorage(bb *cfg.Block) string {
	return fmt.Sprintf("arr#%s.%d", bb.Graph().Name(), bb.ID())
}
