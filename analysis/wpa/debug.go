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

// Debug is a pass-through analysis that traces every mutator call it receives. It is
// registered first so its output shows what the assignment layer dispatched before
// any real analysis reacts.
type Debug struct {
	NopAnalysis
	log *config.LogGroup
}

// NewDebug returns the tracing analysis.
func NewDebug(log *config.LogGroup) *Debug {
	return &Debug{log: log}
}

// Name implements Analysis.
func (d *Debug) Name() string { return "debug" }

func (d *Debug) KillValue(bb *cfg.Block, name NodeName) {
	d.log.Tracef("debug %s: kill value %s", bb, name)
}

func (d *Debug) KillReference(bb *cfg.Block, name NodeName) {
	d.log.Tracef("debug %s: kill reference %s", bb, name)
}

func (d *Debug) CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty) {
	d.log.Tracef("debug %s: reference %s -> %s (%s)", bb, lhs, rhs, cert)
}

func (d *Debug) AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal) {
	d.log.Tracef("debug %s: scalar %s = %s (%s)", bb, lhs, lit, cert)
}

func (d *Debug) AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	d.log.Tracef("debug %s: storage %s -> %s (%s)", bb, lhs, storage, cert)
}

func (d *Debug) AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string) {
	d.log.Tracef("debug %s: empty array %s -> %s (%s)", bb, lhs, storage, cert)
}

func (d *Debug) AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string) {
	d.log.Tracef("debug %s: typed %s = %v (%s)", bb, lhs, types, cert)
}

func (d *Debug) AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty) {
	d.log.Tracef("debug %s: unknown %s (%s)", bb, lhs, cert)
}

func (d *Debug) RecordUse(bb *cfg.Block, name NodeName, cert Certainty) {
	d.log.Tracef("debug %s: use %s (%s)", bb, name, cert)
}
