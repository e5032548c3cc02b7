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

import "testing"

func TestCallgraphBottomUp(t *testing.T) {
	cg := NewCallgraph("main")
	cg.AddCall("main", "f")
	cg.AddCall("main", "g")
	cg.AddCall("f", "h")
	cg.AddCall("g", "h")

	order := cg.BottomUp()
	pos := map[string]int{}
	for i, name := range order {
		pos[name] = i
	}
	for _, name := range []string{"main", "f", "g", "h"} {
		if _, ok := pos[name]; !ok {
			t.Fatalf("method %s missing from bottom-up order %v", name, order)
		}
	}
	if pos["h"] > pos["f"] || pos["h"] > pos["g"] {
		t.Errorf("callee h should come before its callers: %v", order)
	}
	if pos["main"] != len(order)-1 {
		t.Errorf("the entry should come last: %v", order)
	}
}

func TestCallgraphReachable(t *testing.T) {
	cg := NewCallgraph("main")
	cg.AddCall("main", "f")
	cg.AddCall("orphan", "f")

	r := cg.Reachable()
	if !r["main"] || !r["f"] {
		t.Errorf("reachable set %v misses the entry or its callee", r)
	}
	if r["orphan"] {
		t.Errorf("orphan is not reachable from the entry: %v", r)
	}
}

func TestCallgraphEquals(t *testing.T) {
	a := NewCallgraph("main")
	a.AddCall("main", "f")
	b := NewCallgraph("main")
	b.AddCall("main", "f")
	if !a.Equals(b) {
		t.Error("identical call graphs compare unequal")
	}
	b.AddCall("f", "g")
	if a.Equals(b) {
		t.Error("different call graphs compare equal")
	}
}

func TestCallgraphCallees(t *testing.T) {
	cg := NewCallgraph("main")
	cg.AddCall("main", "b")
	cg.AddCall("main", "a")
	cg.AddCall("main", "a")

	if got := cg.Callees("main"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Callees(main) = %v, want [a b]", got)
	}
}
