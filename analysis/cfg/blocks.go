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

// Package cfg implements the per-method control-flow graph the analysis engine iterates over:
// blocks of four closed kinds connected by directed edges that track, monotonically, whether the
// analysis has proven a control path reachable.
package cfg

import (
	"fmt"

	"github.com/jholder85638/phc/analysis/mir"
)

// BlockKind discriminates the closed set of block kinds.
type BlockKind int

const (
	// KindEntry is the unique entry block of a graph. It holds no statement.
	KindEntry BlockKind = iota
	// KindExit is the unique exit block of a graph. It holds no statement.
	KindExit
	// KindStatement is a block holding exactly one lowered statement.
	KindStatement
	// KindBranch is a block holding a branch condition, with exactly two outgoing edges.
	KindBranch
)

func (k BlockKind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindExit:
		return "exit"
	case KindStatement:
		return "statement"
	case KindBranch:
		return "branch"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// A Block is one node of a control-flow graph.
type Block struct {
	id    int
	kind  BlockKind
	stmt  mir.Statement    // statement blocks only; nil for the synthetic body of a summary graph
	cond  mir.VariableName // branch blocks only
	label string           // original label naming this block as a branch target, "" if none

	in    []*Edge
	out   []*Edge
	graph *Graph

	// annotations carries the analysis results attached for code generation.
	annotations map[string]string
}

// ID returns the block's identifier, unique and stable within its graph.
func (b *Block) ID() int { return b.id }

// Kind returns the block kind.
func (b *Block) Kind() BlockKind { return b.kind }

// Stmt returns the statement of a statement block, nil for any other kind.
func (b *Block) Stmt() mir.Statement { return b.stmt }

// SetStmt replaces the statement of a statement block, used when applying optimization results.
func (b *Block) SetStmt(s mir.Statement) { b.stmt = s }

// Cond returns the branch condition variable of a branch block.
func (b *Block) Cond() mir.VariableName { return b.cond }

// Graph returns the graph owning the block.
func (b *Block) Graph() *Graph { return b.graph }

// PredEdges returns the incoming edges.
func (b *Block) PredEdges() []*Edge { return b.in }

// SuccEdges returns the outgoing edges.
func (b *Block) SuccEdges() []*Edge { return b.out }

// TrueEdge returns the outgoing edge taken when a branch condition is true.
func (b *Block) TrueEdge() *Edge {
	for _, e := range b.out {
		if e.cond != nil && *e.cond {
			return e
		}
	}
	return nil
}

// FalseEdge returns the outgoing edge taken when a branch condition is false.
func (b *Block) FalseEdge() *Edge {
	for _, e := range b.out {
		if e.cond != nil && !*e.cond {
			return e
		}
	}
	return nil
}

// SetAnnotation attaches a named analysis result to the block.
func (b *Block) SetAnnotation(key, value string) {
	if b.annotations == nil {
		b.annotations = map[string]string{}
	}
	b.annotations[key] = value
}

// Annotation returns the named analysis result, or "" when absent.
func (b *Block) Annotation(key string) string {
	return b.annotations[key]
}

func (b *Block) String() string {
	switch b.kind {
	case KindEntry:
		return fmt.Sprintf("BB%d:entry", b.id)
	case KindExit:
		return fmt.Sprintf("BB%d:exit", b.id)
	case KindBranch:
		return fmt.Sprintf("BB%d:branch(%s)", b.id, b.cond)
	default:
		if b.stmt == nil {
			return fmt.Sprintf("BB%d:body", b.id)
		}
		return fmt.Sprintf("BB%d: %s", b.id, b.stmt)
	}
}

// An Edge is a directed edge between two blocks. The executable flag starts false and only
// transitions to true while a function is being analyzed; the graph clears all flags as a unit
// when a fresh analysis of the function starts.
type Edge struct {
	source *Block
	target *Block

	executable bool

	// cond is nil for unconditional edges; for the outgoing edges of a branch block it records
	// which arm the edge is.
	cond *bool
}

// Source returns the block the edge leaves.
func (e *Edge) Source() *Block { return e.source }

// Target returns the block the edge enters.
func (e *Edge) Target() *Block { return e.target }

// Executable reports whether the analysis has proven this control path reachable.
func (e *Edge) Executable() bool { return e.executable }

// MarkExecutable records that the analysis has proven this control path reachable. There is no
// inverse operation on an edge.
func (e *Edge) MarkExecutable() { e.executable = true }

func (e *Edge) String() string {
	arm := ""
	if e.cond != nil {
		if *e.cond {
			arm = " [true]"
		} else {
			arm = " [false]"
		}
	}
	return fmt.Sprintf("BB%d -> BB%d%s", e.source.id, e.target.id, arm)
}
