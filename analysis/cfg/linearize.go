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
	"io"

	"github.com/jholder85638/phc/analysis/mir"
)

// LinearStatements recovers a lowered statement sequence from the graph. Blocks are emitted in
// construction order; labels and gotos are synthesized where the block order does not coincide
// with control flow. The result replaces the method body after the analysis terminates.
//
//gocyclo:ignore
func (g *Graph) LinearStatements() []mir.Statement {
	var seq []*Block
	for _, b := range g.blocks {
		if b.kind == KindStatement || b.kind == KindBranch {
			seq = append(seq, b)
		}
	}

	const exitLabel = "Lexit"
	needExitLabel := false

	// ensure every non-fallthrough target carries a label
	ensureLabel := func(b *Block) string {
		if b.kind == KindExit {
			needExitLabel = true
			return exitLabel
		}
		if b.label == "" {
			b.label = fmt.Sprintf("L%d", b.id)
		}
		return b.label
	}

	follows := func(i int) *Block {
		if i+1 < len(seq) {
			return seq[i+1]
		}
		return g.exit
	}

	for i, b := range seq {
		switch b.kind {
		case KindBranch:
			ensureLabel(b.TrueEdge().Target())
			ensureLabel(b.FalseEdge().Target())
		case KindStatement:
			if _, isReturn := b.stmt.(mir.Return); isReturn {
				continue
			}
			if len(b.out) == 1 && b.out[0].target != follows(i) {
				ensureLabel(b.out[0].target)
			}
		}
	}

	var out []mir.Statement
	for i, b := range seq {
		if b.label != "" {
			out = append(out, mir.Label{Name: b.label})
		}
		switch b.kind {
		case KindBranch:
			out = append(out, mir.Branch{
				Cond:        b.cond,
				TrueTarget:  labelOf(b.TrueEdge().Target(), exitLabel),
				FalseTarget: labelOf(b.FalseEdge().Target(), exitLabel),
			})
		case KindStatement:
			if b.stmt == nil {
				continue
			}
			out = append(out, b.stmt)
			if _, isReturn := b.stmt.(mir.Return); isReturn {
				continue
			}
			if len(b.out) == 1 && b.out[0].target != follows(i) {
				out = append(out, mir.Goto{Target: labelOf(b.out[0].target, exitLabel)})
			}
		}
	}
	if needExitLabel {
		out = append(out, mir.Label{Name: exitLabel})
	}
	return out
}

func labelOf(b *Block, exitLabel string) string {
	if b.kind == KindExit {
		return exitLabel
	}
	return b.label
}

// WriteDot writes the graph in graphviz dot format, one node per block with the executable edges
// drawn solid and the rest dotted.
func (g *Graph) WriteDot(w io.Writer) {
	fmt.Fprintf(w, "digraph %q {\n", g.name)
	for _, b := range g.blocks {
		fmt.Fprintf(w, "  n%d [label=%q];\n", b.id, b.String())
	}
	for _, e := range g.edges {
		style := "dotted"
		if e.executable {
			style = "solid"
		}
		arm := ""
		if e.cond != nil {
			arm = fmt.Sprintf(",label=\"%v\"", *e.cond)
		}
		fmt.Fprintf(w, "  n%d -> n%d [style=%s%s];\n", e.source.id, e.target.id, style, arm)
	}
	fmt.Fprintf(w, "}\n")
}
