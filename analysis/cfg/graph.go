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

package cfg

import (
	"fmt"

	"github.com/jholder85638/phc/analysis/mir"
)

// A Graph is the control-flow graph of one method. It owns its blocks and edges; a user method's
// graph is built once and then mutated in place by the optimization passes, never reconstructed
// while the analysis runs.
type Graph struct {
	name   string
	blocks []*Block
	edges  []*Edge
	entry  *Block
	exit   *Block
	nextID int
}

// Name returns the name of the method the graph belongs to.
func (g *Graph) Name() string { return g.name }

// Entry returns the unique entry block.
func (g *Graph) Entry() *Block { return g.entry }

// Exit returns the unique exit block.
func (g *Graph) Exit() *Block { return g.exit }

// EntryEdge returns the single edge out of the entry block. It seeds the analysis worklist.
func (g *Graph) EntryEdge() *Edge { return g.entry.out[0] }

// Blocks returns all blocks, entry first and exit second, the rest in construction order.
func (g *Graph) Blocks() []*Block { return g.blocks }

// Edges returns all edges of the graph.
func (g *Graph) Edges() []*Edge { return g.edges }

// Size returns the number of blocks.
func (g *Graph) Size() int { return len(g.blocks) }

// ResetForAnalysis clears the executable flag of every edge as a unit, establishing the initial
// state of a fresh analysis of this function. Individual edges only move from non-executable to
// executable afterwards.
func (g *Graph) ResetForAnalysis() {
	for _, e := range g.edges {
		e.executable = false
	}
}

func (g *Graph) newBlock(kind BlockKind) *Block {
	b := &Block{id: g.nextID, kind: kind, graph: g}
	g.nextID++
	g.blocks = append(g.blocks, b)
	return b
}

func (g *Graph) addEdge(src, tgt *Block, cond *bool) *Edge {
	e := &Edge{source: src, target: tgt, cond: cond}
	src.out = append(src.out, e)
	tgt.in = append(tgt.in, e)
	g.edges = append(g.edges, e)
	return e
}

// Build lowers a method's statement list into a control-flow graph. Labels, gotos and branches
// become the graph structure; every other statement becomes a statement block. Return statements
// are wired to the exit block.
//
//gocyclo:ignore
func Build(m *mir.Method) (*Graph, error) {
	g := &Graph{name: m.Name}
	g.entry = g.newBlock(KindEntry)
	g.exit = g.newBlock(KindExit)

	type pendingEdge struct {
		from   *Block
		cond   *bool
		target string
	}
	var pendings []pendingEdge
	labelBlock := map[string]*Block{}
	labelAlias := map[string]string{}
	var openLabels []string

	attachLabels := func(b *Block) {
		for _, l := range openLabels {
			labelBlock[l] = b
			if b.label == "" {
				b.label = l
			}
		}
		openLabels = openLabels[:0]
	}

	// cur is the block whose fallthrough edge is still open, nil after a control transfer.
	cur := g.entry

	for _, s := range m.Statements {
		switch st := s.(type) {
		case mir.Label:
			openLabels = append(openLabels, st.Name)
		case mir.Goto:
			for _, l := range openLabels {
				labelAlias[l] = st.Target
			}
			openLabels = openLabels[:0]
			if cur != nil {
				pendings = append(pendings, pendingEdge{from: cur, target: st.Target})
				cur = nil
			}
		case mir.Branch:
			b := g.newBlock(KindBranch)
			b.cond = st.Cond
			attachLabels(b)
			if cur != nil {
				g.addEdge(cur, b, nil)
			}
			t, f := true, false
			pendings = append(pendings,
				pendingEdge{from: b, cond: &t, target: st.TrueTarget},
				pendingEdge{from: b, cond: &f, target: st.FalseTarget})
			cur = nil
		case mir.Return:
			b := g.newBlock(KindStatement)
			b.stmt = st
			attachLabels(b)
			if cur != nil {
				g.addEdge(cur, b, nil)
			}
			g.addEdge(b, g.exit, nil)
			cur = nil
		default:
			b := g.newBlock(KindStatement)
			b.stmt = s
			attachLabels(b)
			if cur != nil {
				g.addEdge(cur, b, nil)
			}
			cur = b
		}
	}

	if cur != nil {
		g.addEdge(cur, g.exit, nil)
	}
	// labels at the end of the body target the exit block
	attachLabels(g.exit)

	resolve := func(name string) (*Block, error) {
		seen := map[string]bool{}
		for {
			if b, ok := labelBlock[name]; ok {
				return b, nil
			}
			next, ok := labelAlias[name]
			if !ok || seen[name] {
				return nil, fmt.Errorf("method %q: undefined label %q", m.Name, name)
			}
			seen[name] = true
			name = next
		}
	}
	for _, p := range pendings {
		tgt, err := resolve(p.target)
		if err != nil {
			return nil, err
		}
		g.addEdge(p.from, tgt, p.cond)
	}

	for _, b := range g.blocks {
		if b.kind == KindBranch && len(b.out) != 2 {
			return nil, fmt.Errorf("method %q: branch block BB%d has %d successors", m.Name, b.id, len(b.out))
		}
	}
	return g, nil
}

// Synthetic returns the three-block stand-in graph used for an opaque callee: entry, one body
// block with no statement, and exit. The body block is returned alongside the graph.
func Synthetic(name string) (*Graph, *Block) {
	g := &Graph{name: name}
	g.entry = g.newBlock(KindEntry)
	g.exit = g.newBlock(KindExit)
	body := g.newBlock(KindStatement)
	g.addEdge(g.entry, body, nil)
	g.addEdge(body, g.exit, nil)
	return g, body
}

// RemoveStatementBlock unlinks a statement block with a single successor, rewiring every
// predecessor edge to that successor. Used by optimization passes to delete dead statements.
func (g *Graph) RemoveStatementBlock(b *Block) error {
	if b.kind != KindStatement {
		return fmt.Errorf("cannot remove %s block BB%d", b.kind, b.id)
	}
	if len(b.out) != 1 {
		return fmt.Errorf("cannot remove block BB%d with %d successors", b.id, len(b.out))
	}
	succEdge := b.out[0]
	succ := succEdge.target

	for _, e := range b.in {
		e.target = succ
		succ.in = append(succ.in, e)
	}
	// unlink the successor edge
	succ.in = removeEdge(succ.in, succEdge)
	g.edges = removeEdge(g.edges, succEdge)

	for i, blk := range g.blocks {
		if blk == b {
			g.blocks = append(g.blocks[:i], g.blocks[i+1:]...)
			break
		}
	}
	if b.label != "" && succ.label == "" {
		succ.label = b.label
	}
	return nil
}

func removeEdge(edges []*Edge, e *Edge) []*Edge {
	for i, x := range edges {
		if x == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// Clone returns a structural copy of the graph: same blocks in the same order, same edges, same
// statements. It is used to snapshot a graph before optimization so that structural convergence
// can be tested.
func (g *Graph) Clone() *Graph {
	c := &Graph{name: g.name, nextID: g.nextID}
	index := map[*Block]int{}
	for i, b := range g.blocks {
		nb := &Block{id: b.id, kind: b.kind, stmt: b.stmt, cond: b.cond, label: b.label, graph: c}
		c.blocks = append(c.blocks, nb)
		index[b] = i
	}
	c.entry = c.blocks[index[g.entry]]
	c.exit = c.blocks[index[g.exit]]
	for _, e := range g.edges {
		var cond *bool
		if e.cond != nil {
			v := *e.cond
			cond = &v
		}
		c.addEdge(c.blocks[index[e.source]], c.blocks[index[e.target]], cond)
	}
	return c
}

// Equals reports whether two graphs are structurally identical: same block sequence with equal
// kinds and statements, and the same edges between corresponding blocks. Executable flags and
// annotations do not participate.
func (g *Graph) Equals(other *Graph) bool {
	if len(g.blocks) != len(other.blocks) || len(g.edges) != len(other.edges) {
		return false
	}
	index := map[*Block]int{}
	for i, b := range g.blocks {
		index[b] = i
	}
	otherIndex := map[*Block]int{}
	for i, b := range other.blocks {
		otherIndex[b] = i
	}
	for i, b := range g.blocks {
		ob := other.blocks[i]
		if b.kind != ob.kind || b.cond != ob.cond {
			return false
		}
		if !mir.StatementsEqual(b.stmt, ob.stmt) {
			return false
		}
		if len(b.out) != len(ob.out) {
			return false
		}
		for j, e := range b.out {
			oe := ob.out[j]
			if index[e.target] != otherIndex[oe.target] {
				return false
			}
			if (e.cond == nil) != (oe.cond == nil) {
				return false
			}
			if e.cond != nil && *e.cond != *oe.cond {
				return false
			}
		}
	}
	return true
}
