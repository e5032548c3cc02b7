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
	"github.com/jholder85638/phc/analysis/config"
	"github.com/jholder85638/phc/analysis/mir"
)

// CellKind tags a constant-propagation cell. A location absent from the fact map is
// at Top; a stored cell is a known literal or Bottom.
type CellKind int

const (
	// CellTop marks an uninitialized location. Never stored; it is the absence of a fact.
	CellTop CellKind = iota
	// CellLit marks a location whose value is a single known literal.
	CellLit
	// CellBottom marks a location whose value is unknown.
	CellBottom
)

// A Cell is one point of the constant-propagation lattice.
type Cell struct {
	Kind CellKind
	Lit  mir.Literal
}

// LitCell wraps a literal into a cell.
func LitCell(lit mir.Literal) Cell {
	return Cell{Kind: CellLit, Lit: lit}
}

// BottomCell is the unknown-value cell.
var BottomCell = Cell{Kind: CellBottom}

type cellLattice struct{}

func (cellLattice) Meet(a, b Cell) Cell {
	if a.Kind == CellLit && b.Kind == CellLit && mir.LiteralsEqual(a.Lit, b.Lit) {
		return a
	}
	return BottomCell
}

func (cellLattice) Equal(a, b Cell) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == CellLit {
		return mir.LiteralsEqual(a.Lit, b.Lit)
	}
	return true
}

func (cellLattice) Format(v Cell) string {
	switch v.Kind {
	case CellLit:
		return v.Lit.String()
	case CellBottom:
		return "bottom"
	default:
		return "top"
	}
}

// CCP is sparse-conditional-style constant propagation: it tracks, per location per
// block, whether the value is a single known literal. The engine consults it to
// suppress branch arms proven infeasible, and the transformer consults it to fold
// statements after convergence.
type CCP struct {
	facts *blockFacts[Cell]
}

// NewCCP returns a constant-propagation analysis with empty facts.
func NewCCP() *CCP {
	return &CCP{facts: newBlockFacts[Cell](cellLattice{})}
}

// Name implements Analysis.
func (c *CCP) Name() string { return "ccp" }

func (c *CCP) PullInit(bb *cfg.Block)                      { c.facts.PullInit(bb) }
func (c *CCP) PullFirstPred(bb *cfg.Block, pred *cfg.Block) { c.facts.PullFirstPred(bb, pred) }
func (c *CCP) PullPred(bb *cfg.Block, pred *cfg.Block)      { c.facts.PullPred(bb, pred) }
func (c *CCP) PullFinish(bb *cfg.Block)                     { c.facts.PullFinish(bb) }

func (c *CCP) AggregateResults(bb *cfg.Block)     { c.facts.AggregateResults(bb) }
func (c *CCP) SolutionChanged(bb *cfg.Block) bool { return c.facts.SolutionChanged(bb) }

func (c *CCP) ForwardBind(caller *cfg.Block, entry *cfg.Block) { c.facts.BindForward(caller, entry) }
func (c *CCP) BackwardBind(caller *cfg.Block, exit *cfg.Block) { c.facts.BindBackward(caller, exit) }

func (c *CCP) KillValue(bb *cfg.Block, name NodeName) { c.facts.Kill(name) }
func (c *CCP) KillReference(bb *cfg.Block, name NodeName) {}

// CreateReference makes the lhs see the rhs's current value: a Definite reference
// copies it strongly, a Possible one only weakens.
func (c *CCP) CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty) {
	v, ok := c.facts.Get(rhs)
	if !ok {
		return
	}
	if cert == Definite {
		c.facts.Set(lhs, v)
	} else {
		c.facts.Weaken(lhs, v)
	}
}

func (c *CCP) AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal) {
	if cert == Definite {
		c.facts.Set(lhs, LitCell(lit))
	} else {
		c.facts.Weaken(lhs, LitCell(lit))
	}
}

// AssignStorage points the lhs at a container; the container is not a scalar, so the
// lhs's own cell goes unknown.
func (c *CCP) AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	c.assignBottom(lhs, cert)
}

func (c *CCP) AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	c.assignBottom(lhs, cert)
}

func (c *CCP) AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string) {
	c.assignBottom(lhs, cert)
}

func (c *CCP) AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty) {
	c.assignBottom(lhs, cert)
}

func (c *CCP) assignBottom(lhs NodeName, cert Certainty) {
	if cert == Definite {
		c.facts.Set(lhs, BottomCell)
	} else {
		c.facts.Weaken(lhs, BottomCell)
	}
}

func (c *CCP) RecordUse(bb *cfg.Block, name NodeName, cert Certainty) {}

func (c *CCP) Equals(other Analysis) bool {
	o, ok := other.(*CCP)
	return ok && c.facts.Equals(o.facts)
}

func (c *CCP) Dump(bb *cfg.Block, comment string, log *config.LogGroup) {
	log.Tracef("ccp %s [%s]: %s", bb, comment, c.facts.FormatAt(bb))
}

// WorkingLit returns the literal value of a location in the block currently under
// transfer, or nil if unknown.
func (c *CCP) WorkingLit(name NodeName) mir.Literal {
	if v, ok := c.facts.Get(name); ok && v.Kind == CellLit {
		return v.Lit
	}
	return nil
}

// LitAt returns the literal value of a location in a block's committed out-facts, or
// nil if unknown.
func (c *CCP) LitAt(bb *cfg.Block, name NodeName) mir.Literal {
	if v, ok := c.facts.OutAt(bb, name); ok && v.Kind == CellLit {
		return v.Lit
	}
	return nil
}

// StringValues returns the known string values a location may index with. The second
// result is false when the value is unknown and the caller must fall back to the
// wildcard.
func (c *CCP) StringValues(name NodeName) ([]string, bool) {
	v, ok := c.facts.Get(name)
	if !ok || v.Kind != CellLit {
		return nil, false
	}
	return []string{mir.AsString(v.Lit)}, true
}

// BranchKnownTrue reports whether the branch condition is proven truthy in the block
// currently under transfer.
func (c *CCP) BranchKnownTrue(cond NodeName) bool {
	lit := c.WorkingLit(cond)
	return lit != nil && mir.Truthy(lit)
}

// BranchKnownFalse reports whether the branch condition is proven falsy in the block
// currently under transfer.
func (c *CCP) BranchKnownFalse(cond NodeName) bool {
	lit := c.WorkingLit(cond)
	return lit != nil && !mir.Truthy(lit)
}
