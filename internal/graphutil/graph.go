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

// Package graphutil adapts the analysis call graph to existing graph libraries: the CGraph type
// implements both Gonum's graph.Directed and the yourbasic/graph Iterator, so strongly connected
// components and cycle enumeration come from those libraries instead of bespoke code.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// CGraph is an abstraction over a directed graph whose nodes are identified by name. It
// implements the methods to satisfy the yourbasic graph.Iterator and Gonum's graph.Directed.
type CGraph struct {
	// The order of the graph
	order int

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// NameID maps node names back to their IDs
	NameID map[string]int64

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge from IDMap[x] to
	// IDMap[y]
	Edges map[int64]map[int64]bool

	// REdges is the reversed adjacency matrix
	REdges map[int64]map[int64]bool
}

// NewCGraph builds the adapter from a node list and a successor function. Node IDs are assigned
// in list order, so the traversals below are deterministic for a deterministic input.
func NewCGraph(nodes []string, succs func(string) []string) CGraph {
	n := len(nodes)
	idmap := make(map[int64]CNode, n)
	nameid := make(map[string]int64, n)
	edges := make(map[int64]map[int64]bool, n)
	redges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, n)

	for i, name := range nodes {
		id := int64(i)
		keys[i] = id
		idmap[id] = CNode{id: id, Name: name}
		nameid[name] = id
		edges[id] = map[int64]bool{}
		redges[id] = map[int64]bool{}
	}
	for _, name := range nodes {
		src := nameid[name]
		for _, tgt := range succs(name) {
			if tgtID, ok := nameid[tgt]; ok {
				edges[src][tgtID] = true
				redges[tgtID][src] = true
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return CGraph{
		order:  n,
		IDMap:  idmap,
		NameID: nameid,
		Keys:   keys,
		Edges:  edges,
		REdges: redges,
	}
}

// BottomUpComponents returns the strongly connected components of the graph in reverse
// topological order: every successor (callee) component appears before the components that point
// to it. Within a component the order is arbitrary but deterministic.
func BottomUpComponents(cg CGraph) [][]string {
	var result [][]string
	for _, comp := range topo.TarjanSCC(cg) {
		names := make([]string, len(comp))
		for i, n := range comp {
			names[i] = cg.IDMap[n.ID()].Name
		}
		sort.Strings(names)
		result = append(result, names)
	}
	return result
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only
// the edges that have both the origin and destination nodes in the include nodes are kept.
// The subgraph's order and IDMap are the same as in the original, so node indices stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	idmap := make(map[int64]CNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	redges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		idmap[i] = original.IDMap[i]
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		redges[i] = map[int64]bool{}
	}
	for _, i := range include {
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
				redges[e][i] = true
			}
		}
	}

	return CGraph{
		order:  original.Order(),
		IDMap:  original.IDMap,
		NameID: original.NameID,
		Edges:  edges,
		REdges: redges,
		Keys:   keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the yourbasic graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Gonum Graph interface implementation **********************

// Node implements the Graph interface
func (c CGraph) Node(v int64) graph.Node {
	if n, ok := c.IDMap[v]; ok {
		return n
	}
	return nil
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	keys := make([]int64, len(c.Keys))
	copy(keys, c.Keys)
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// From returns the set of nodes reachable from the id
func (c CGraph) From(id int64) graph.Nodes {
	var keys []int64
	for out := range c.Edges[id] {
		keys = append(keys, out)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// To returns the set of nodes with an edge to the id
func (c CGraph) To(id int64) graph.Nodes {
	var keys []int64
	for in := range c.REdges[id] {
		keys = append(keys, in)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node
// identifiers, in either direction
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns a boolean indicating whether a directed edge exists from uid to vid
func (c CGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

// *************** Nodes implementation **********************

// CNode is a named graph node implementing the gonum graph.Node interface
type CNode struct {
	id int64

	// Name is the node's name in the call graph
	Name string
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return n.id
}

func (n CNode) String() string {
	return n.Name
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	// invariant: every id is a key of nodes
	ids []int64

	// cur is the current index of the iterator, -1 before the first call to Next
	cur int
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise,
// returns false and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the length of the node set
func (ns *NodeSet) Len() int {
	return len(ns.ids)
}

// Reset resets the iterator to before the first node
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
