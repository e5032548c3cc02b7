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
	"testing"

	"github.com/jholder85638/phc/analysis/mir"
)

func TestNodeName(t *testing.T) {
	n := NodeName{Storage: "f", Index: "x"}
	if got := n.String(); got != "f::x" {
		t.Errorf("String() = %q", got)
	}
	if n.IsWild() {
		t.Error("IsWild() on a named index")
	}
	if !(NodeName{Storage: "f", Index: Wildcard}).IsWild() {
		t.Error("wildcard index not recognized")
	}
}

func TestMeetCertainty(t *testing.T) {
	if meetCertainty(Definite, Definite) != Definite {
		t.Error("definite meet definite should stay definite")
	}
	if meetCertainty(Definite, Possible) != Possible {
		t.Error("definite meet possible should weaken")
	}
	if meetCertainty(Possible, Possible) != Possible {
		t.Error("possible meet possible should stay possible")
	}
}

func TestPathConstruction(t *testing.T) {
	p, ok := VarPath("f", "x").(IndexPath)
	if !ok {
		t.Fatalf("VarPath is %T", VarPath("f", "x"))
	}
	if sp := p.Storage.(StoragePath); sp.Name != "f" || p.Index != "x" {
		t.Errorf("VarPath resolved to %s[%s]", sp.Name, p.Index)
	}

	r := RetPath("f").(IndexPath)
	if r.Index != RetName {
		t.Errorf("RetPath index = %q", r.Index)
	}

	lit := IndexedPath("f", "arr", mir.IntLit{Value: 3}).(IndexPath)
	if lit.Index != "3" {
		t.Errorf("literal index = %q, want %q", lit.Index, "3")
	}
	if _, isVar := lit.Storage.(IndexPath); !isVar {
		t.Errorf("storage side of an array access should be the array variable's path")
	}

	dyn, ok := IndexedPath("f", "arr", mir.VariableName("i")).(Indexing)
	if !ok {
		t.Fatalf("variable index should build an Indexing path")
	}
	if idx := dyn.Index.(IndexPath); idx.Index != "i" {
		t.Errorf("index side = %q", idx.Index)
	}
}
