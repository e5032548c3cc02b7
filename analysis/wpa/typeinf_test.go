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

func TestTypeInferenceAssignments(t *testing.T) {
	ti := NewTypeInference()
	bb, _, _ := threeBlocks()
	ti.PullInit(bb)
	ti.PullFinish(bb)

	x := litName("x")
	ti.AssignScalar(bb, x, Definite, mir.StringLit{Value: "s"})
	if got := ti.TypesOf(x); len(got) != 1 || !got["string"] {
		t.Errorf("types after a string assignment = %v", got)
	}

	// a weak assignment unions
	ti.AssignScalar(bb, x, Possible, mir.IntLit{Value: 1})
	if got := ti.TypesOf(x); len(got) != 2 || !got["int"] {
		t.Errorf("types after a weak int assignment = %v", got)
	}

	// a strong assignment replaces
	ti.AssignEmptyArray(bb, x, Definite, "heap1")
	if got := ti.TypesOf(x); len(got) != 1 || !got["array"] {
		t.Errorf("types after an array assignment = %v", got)
	}

	ti.AssignUnknown(bb, x, Definite)
	if got := ti.TypesOf(x); len(got) != 7 {
		t.Errorf("an unknown assignment should cover all types, got %v", got)
	}
}

func TestBinOpTypes(t *testing.T) {
	tests := []struct {
		op   string
		want []string
	}{
		{"<", []string{"bool"}},
		{"==", []string{"bool"}},
		{"&&", []string{"bool"}},
		{".", []string{"string"}},
		{"%", []string{"int"}},
		{"<<", []string{"int"}},
		{"+", []string{"int", "real"}},
		{"/", []string{"int", "real"}},
	}
	for _, tt := range tests {
		got := binOpTypes(tt.op)
		if len(got) != len(tt.want) {
			t.Errorf("binOpTypes(%q) = %v, want %v", tt.op, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("binOpTypes(%q) = %v, want %v", tt.op, got, tt.want)
				break
			}
		}
	}
}

func TestDefUseTracking(t *testing.T) {
	d := NewDefUse()
	bb, _, _ := threeBlocks()

	x, y := litName("x"), litName("y")
	d.AssignScalar(bb, x, Definite, mir.IntLit{Value: 1})
	d.RecordUse(bb, y, Definite)

	if d.IsUsed(x) {
		t.Error("defined-only name reported as used")
	}
	if !d.IsUsed(y) {
		t.Error("used name not reported")
	}
	if !d.UsedAt(bb, y) {
		t.Error("per-block use not recorded")
	}

	other := NewDefUse()
	if d.Equals(other) {
		t.Error("stores with different facts compare equal")
	}
	other.AssignScalar(bb, x, Definite, mir.IntLit{Value: 1})
	other.RecordUse(bb, y, Definite)
	if !d.Equals(other) {
		t.Error("identical stores compare unequal")
	}
}
