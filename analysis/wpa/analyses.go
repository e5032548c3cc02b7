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

// Analysis is the contract every registered analysis implements. The driver and the
// worklist engine are the only callers; analyses never invoke each other directly, so
// all of them observe identical must/may classifications from the shared assignment
// layer.
//
// The pull group builds a block's in-facts by joining the out-facts of predecessors
// reachable over currently-executable edges: PullFirstPred seeds the state, PullPred
// joins later ones into it. AggregateResults commits the block's out-facts, and
// SolutionChanged reports whether they differ from the previous committed value,
// feeding the engine's changed flag.
type Analysis interface {
	Name() string

	PullInit(bb *cfg.Block)
	PullFirstPred(bb *cfg.Block, pred *cfg.Block)
	PullPred(bb *cfg.Block, pred *cfg.Block)
	PullFinish(bb *cfg.Block)

	AggregateResults(bb *cfg.Block)
	SolutionChanged(bb *cfg.Block) bool

	// ForwardBind opens a call context: caller is the call-site block, nil for the
	// program entry. BackwardBind closes it, evaluated at the callee's exit.
	ForwardBind(caller *cfg.Block, entry *cfg.Block)
	BackwardBind(caller *cfg.Block, exit *cfg.Block)

	// Primitive mutators, invoked only by the assignment layer. Strong updates are
	// preceded by KillValue/KillReference; weak updates never are.
	KillValue(bb *cfg.Block, name NodeName)
	KillReference(bb *cfg.Block, name NodeName)
	CreateReference(bb *cfg.Block, lhs NodeName, rhs NodeName, cert Certainty)
	AssignScalar(bb *cfg.Block, lhs NodeName, cert Certainty, lit mir.Literal)
	AssignStorage(bb *cfg.Block, lhs NodeName, cert Certainty, storage string)
	AssignEmptyArray(bb *cfg.Block, lhs NodeName, cert Certainty, storage string)
	AssignTyped(bb *cfg.Block, lhs NodeName, cert Certainty, types ...string)
	AssignUnknown(bb *cfg.Block, lhs NodeName, cert Certainty)
	RecordUse(bb *cfg.Block, name NodeName, cert Certainty)

	// Equals compares whole-analysis accumulated facts against the previous pass's
	// snapshot of the same analysis. Used only for whole-program convergence.
	Equals(other Analysis) bool

	// Dump logs the analysis's facts at a block. No semantic effect.
	Dump(bb *cfg.Block, comment string, log *config.LogGroup)
}

// NopAnalysis implements every Analysis method as a no-op. Analyses that only care
// about a few lifecycle points embed it and override the rest.
type NopAnalysis struct{}

func (NopAnalysis) PullInit(*cfg.Block)                  {}
func (NopAnalysis) PullFirstPred(*cfg.Block, *cfg.Block) {}
func (NopAnalysis) PullPred(*cfg.Block, *cfg.Block)      {}
func (NopAnalysis) PullFinish(*cfg.Block)                {}

func (NopAnalysis) AggregateResults(*cfg.Block)    {}
func (NopAnalysis) SolutionChanged(*cfg.Block) bool { return false }

func (NopAnalysis) ForwardBind(*cfg.Block, *cfg.Block)  {}
func (NopAnalysis) BackwardBind(*cfg.Block, *cfg.Block) {}

func (NopAnalysis) KillValue(*cfg.Block, NodeName)                               {}
func (NopAnalysis) KillReference(*cfg.Block, NodeName)                           {}
func (NopAnalysis) CreateReference(*cfg.Block, NodeName, NodeName, Certainty)    {}
func (NopAnalysis) AssignScalar(*cfg.Block, NodeName, Certainty, mir.Literal)    {}
func (NopAnalysis) AssignStorage(*cfg.Block, NodeName, Certainty, string)        {}
func (NopAnalysis) AssignEmptyArray(*cfg.Block, NodeName, Certainty, string)     {}
func (NopAnalysis) AssignTyped(*cfg.Block, NodeName, Certainty, ...string)       {}
func (NopAnalysis) AssignUnknown(*cfg.Block, NodeName, Certainty)                {}
func (NopAnalysis) RecordUse(*cfg.Block, NodeName, Certainty)                    {}

func (NopAnalysis) Equals(Analysis) bool { return true }

func (NopAnalysis) Dump(*cfg.Block, string, *config.LogGroup) {}
