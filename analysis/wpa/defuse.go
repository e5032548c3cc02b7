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
	"github.com/jholder85638/phc/internal/funcutil"
)

// DefUse accumulates the observed definition and use sites of every location over a
// whole pass. Uses include addressing steps: resolving $a[$i] records a use of both
// $a and $i even when the outer operation is a write. Dead-store elimination consults
// the use set.
//
// Unlike the flow-sensitive analyses, these facts only grow within a pass, so there
// is no per-block lattice; the per-block protocol methods are no-ops.
type DefUse struct {
	NopAnalysis

	uses map[NodeName]bool
	defs map[NodeName]bool

	// usesAt and defsAt record the per-block sites, for diagnostics and annotation
	usesAt map[*cfg.Block]map[NodeName]bool
	defsAt map[*cfg.Block]map[NodeName]bool
}

// NewDefUse returns a def-use analysis with empty fact sets.
func NewDefUse() *DefUse {
	return &DefUse{
		uses:   map[NodeName]bool{},
		defs:   map[NodeName]bool{},
		usesAt: map[*cfg.Block]map[NodeName]bool{},
		defsAt: map[*cfg.Block]map[NodeName]bool{},
	}
}

// Name implements Analysis.
func (d *DefUse) Name() string { return "def-use" }

func (d *DefUse) RecordUse(bb *cfg.Block, name NodeName, cert Certainty) {
	d.uses[name] = true
	d.at(d.usesAt, bb)[name] = true
}

func (d *DefUse) KillValue(bb *cfg.Block, name NodeName) {
	d.recordDef(bb, name)
}

func (d *DefUse) CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty) {
	d.recordDef(bb, lhs)
	d.uses[rhs] = true
	d.at(d.usesAt, bb)[rhs] = true
}

func (d *DefUse) AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal) {
	d.recordDef(bb, lhs)
}

func (d *DefUse) AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	d.recordDef(bb, lhs)
}

func (d *DefUse) AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	d.recordDef(bb, lhs)
}

func (d *DefUse) AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string) {
	d.recordDef(bb, lhs)
}

func (d *DefUse) AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty) {
	d.recordDef(bb, lhs)
}

func (d *DefUse) recordDef(bb *cfg.Block, name NodeName) {
	d.defs[name] = true
	d.at(d.defsAt, bb)[name] = true
}

func (d *DefUse) at(m map[*cfg.Block]map[NodeName]bool, bb *cfg.Block) map[NodeName]bool {
	set, ok := m[bb]
	if !ok {
		set = map[NodeName]bool{}
		m[bb] = set
	}
	return set
}

func (d *DefUse) Equals(other Analysis) bool {
	o, ok := other.(*DefUse)
	if !ok {
		return false
	}
	eq := func(a, b bool) bool { return a == b }
	return funcutil.MapEqual(d.uses, o.uses, eq) && funcutil.MapEqual(d.defs, o.defs, eq)
}

func (d *DefUse) Dump(bb *cfg.Block, comment string, log *config.LogGroup) {
	log.Tracef("def-use %s [%s]: %d defs, %d uses here",
		bb, comment, len(d.defsAt[bb]), len(d.usesAt[bb]))
}

// IsUsed reports whether the location was read anywhere in the pass, including as an
// addressing step.
func (d *DefUse) IsUsed(name NodeName) bool {
	return d.uses[name]
}

// UsedAt reports whether the location was read at the given block.
func (d *DefUse) UsedAt(bb *cfg.Block, name NodeName) bool {
	return d.usesAt[bb][name]
}
