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
	"github.com/jholder85638/phc/analysis/summaries"
)

// MethodInfo is the closed descriptor variant for a callable: a user-defined method
// with an analyzable body, or a summary standing in for an opaque builtin.
type MethodInfo interface {
	isMethodInfo()
	Name() string
}

// UserMethodInfo owns a user method and its control-flow graph. The graph is built
// lazily on first analysis and then reused across reanalyses: transformations mutate
// it in place, it is never reconstructed mid-analysis.
type UserMethodInfo struct {
	Method *mir.Method

	graph   *cfg.Graph
	Summary MethodSummary
}

func (*UserMethodInfo) isMethodInfo() {}

// Name returns the method name.
func (u *UserMethodInfo) Name() string { return u.Method.Name }

// CFG returns the method's graph, building it on first use.
func (u *UserMethodInfo) CFG() (*cfg.Graph, error) {
	if u.graph == nil {
		g, err := cfg.Build(u.Method)
		if err != nil {
			return nil, fmt.Errorf("building cfg of %s: %w", u.Method.Name, err)
		}
		u.graph = g
	}
	return u.graph, nil
}

// Built reports whether the graph has been constructed, without forcing it.
func (u *UserMethodInfo) Built() bool { return u.graph != nil }

// MethodSummary is the inlining-eligibility summary regenerated after each
// optimization round.
type MethodSummary struct {
	Blocks    int
	Calls     int
	Branches  int
	ByRef     bool
	Inlinable bool
}

// SummaryMethodInfo stands in for an opaque builtin: a synthetic entry/body/exit
// graph so the binding protocol stays uniform, with the body's effect supplied by
// the summaries table.
type SummaryMethodInfo struct {
	MethodName string
	Effect     summaries.Summary

	graph *cfg.Graph
	body  *cfg.Block
}

func (*SummaryMethodInfo) isMethodInfo() {}

// Name returns the modelled function name.
func (s *SummaryMethodInfo) Name() string { return s.MethodName }

// CFG returns the synthetic three-block graph and its body block.
func (s *SummaryMethodInfo) CFG() (*cfg.Graph, *cfg.Block) {
	if s.graph == nil {
		s.graph, s.body = cfg.Synthetic(s.MethodName)
	}
	return s.graph, s.body
}

// A Program pairs the script with the method descriptors the analysis has resolved.
// Descriptors persist across whole-program passes; only the analyses are recreated.
type Program struct {
	Script  *mir.Script
	methods map[string]MethodInfo
}

// NewProgram wraps a script for analysis.
func NewProgram(script *mir.Script) *Program {
	return &Program{
		Script:  script,
		methods: map[string]MethodInfo{},
	}
}

// MethodInfo resolves a name to its descriptor: user methods first, then the builtin
// summary table. A name found in neither is an unsupported construct, surfaced
// immediately rather than treated as an unknown result.
func (p *Program) MethodInfo(name string) (MethodInfo, error) {
	if info, ok := p.methods[name]; ok {
		return info, nil
	}
	if m := p.Script.Lookup(name); m != nil {
		info := &UserMethodInfo{Method: m}
		p.methods[name] = info
		return info, nil
	}
	if effect, ok := summaries.SummaryOfFunc(name); ok {
		info := &SummaryMethodInfo{MethodName: name, Effect: effect}
		p.methods[name] = info
		return info, nil
	}
	return nil, Unsupportedf("call to unmodelled external function %q", name)
}

// UserMethods returns the resolved user-method descriptors keyed by name.
func (p *Program) UserMethods() map[string]*UserMethodInfo {
	out := map[string]*UserMethodInfo{}
	for name, info := range p.methods {
		if u, ok := info.(*UserMethodInfo); ok {
			out[name] = u
		}
	}
	return out
}

// Remove drops a method descriptor and its script body.
func (p *Program) Remove(name string) {
	delete(p.methods, name)
	p.Script.Remove(name)
}
