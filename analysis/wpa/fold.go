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
	"github.com/jholder85638/phc/analysis/mir"
)

// Literal evaluation of operators over known operands. Folding is best-effort: any
// case with coercion subtleties (numeric strings, division by zero) returns ok=false
// and the result stays a typed unknown.

// numeric converts a literal to a number. Strings are not parsed; a numeric string
// stays unfolded rather than risk diverging from the language's coercion rules.
func numeric(l mir.Literal) (i int64, f float64, isInt bool, ok bool) {
	switch v := l.(type) {
	case mir.IntLit:
		return v.Value, float64(v.Value), true, true
	case mir.RealLit:
		return 0, v.Value, false, true
	case mir.BoolLit:
		if v.Value {
			return 1, 1, true, true
		}
		return 0, 0, true, true
	case mir.NilLit:
		return 0, 0, true, true
	default:
		return 0, 0, false, false
	}
}

//gocyclo:ignore
func foldBinOp(op string, a, b mir.Literal) (mir.Literal, bool) {
	switch op {
	case ".":
		return mir.StringLit{Value: mir.AsString(a) + mir.AsString(b)}, true
	case "&&":
		return mir.BoolLit{Value: mir.Truthy(a) && mir.Truthy(b)}, true
	case "||":
		return mir.BoolLit{Value: mir.Truthy(a) || mir.Truthy(b)}, true
	case "===":
		return mir.BoolLit{Value: mir.LiteralsEqual(a, b)}, true
	case "!==":
		return mir.BoolLit{Value: !mir.LiteralsEqual(a, b)}, true
	}

	sa, aIsStr := a.(mir.StringLit)
	sb, bIsStr := b.(mir.StringLit)
	if aIsStr && bIsStr {
		switch op {
		case "==":
			return mir.BoolLit{Value: sa.Value == sb.Value}, true
		case "!=":
			return mir.BoolLit{Value: sa.Value != sb.Value}, true
		case "<":
			return mir.BoolLit{Value: sa.Value < sb.Value}, true
		case "<=":
			return mir.BoolLit{Value: sa.Value <= sb.Value}, true
		case ">":
			return mir.BoolLit{Value: sa.Value > sb.Value}, true
		case ">=":
			return mir.BoolLit{Value: sa.Value >= sb.Value}, true
		}
		return nil, false
	}

	ia, fa, aInt, aOK := numeric(a)
	ib, fb, bInt, bOK := numeric(b)
	if !aOK || !bOK {
		return nil, false
	}
	bothInt := aInt && bInt

	switch op {
	case "==":
		return mir.BoolLit{Value: fa == fb}, true
	case "!=":
		return mir.BoolLit{Value: fa != fb}, true
	case "<":
		return mir.BoolLit{Value: fa < fb}, true
	case "<=":
		return mir.BoolLit{Value: fa <= fb}, true
	case ">":
		return mir.BoolLit{Value: fa > fb}, true
	case ">=":
		return mir.BoolLit{Value: fa >= fb}, true
	case "+":
		if bothInt {
			return mir.IntLit{Value: ia + ib}, true
		}
		return mir.RealLit{Value: fa + fb}, true
	case "-":
		if bothInt {
			return mir.IntLit{Value: ia - ib}, true
		}
		return mir.RealLit{Value: fa - fb}, true
	case "*":
		if bothInt {
			return mir.IntLit{Value: ia * ib}, true
		}
		return mir.RealLit{Value: fa * fb}, true
	case "/":
		if fb == 0 {
			return nil, false
		}
		if bothInt && ia%ib == 0 {
			return mir.IntLit{Value: ia / ib}, true
		}
		return mir.RealLit{Value: fa / fb}, true
	case "%":
		if !bothInt || ib == 0 {
			return nil, false
		}
		return mir.IntLit{Value: ia % ib}, true
	default:
		return nil, false
	}
}

func foldUnaryOp(op string, a mir.Literal) (mir.Literal, bool) {
	switch op {
	case "!":
		return mir.BoolLit{Value: !mir.Truthy(a)}, true
	case "-":
		i, f, isInt, ok := numeric(a)
		if !ok {
			return nil, false
		}
		if isInt {
			return mir.IntLit{Value: -i}, true
		}
		return mir.RealLit{Value: -f}, true
	case "+":
		i, f, isInt, ok := numeric(a)
		if !ok {
			return nil, false
		}
		if isInt {
			return mir.IntLit{Value: i}, true
		}
		return mir.RealLit{Value: f}, true
	default:
		return nil, false
	}
}

func foldCast(ty string, a mir.Literal) (mir.Literal, bool) {
	switch ty {
	case "string":
		return mir.StringLit{Value: mir.AsString(a)}, true
	case "bool", "boolean":
		return mir.BoolLit{Value: mir.Truthy(a)}, true
	case "int", "integer":
		i, f, isInt, ok := numeric(a)
		if !ok {
			return nil, false
		}
		if isInt {
			return mir.IntLit{Value: i}, true
		}
		return mir.IntLit{Value: int64(f)}, true
	case "real", "float", "double":
		_, f, _, ok := numeric(a)
		if !ok {
			return nil, false
		}
		return mir.RealLit{Value: f}, true
	default:
		return nil, false
	}
}

// castTypes is the result type of a cast whose operand is unknown.
func castTypes(ty string) ([]string, bool) {
	switch ty {
	case "string":
		return []string{"string"}, true
	case "bool", "boolean":
		return []string{"bool"}, true
	case "int", "integer":
		return []string{"int"}, true
	case "real", "float", "double":
		return []string{"real"}, true
	case "array":
		return []string{"array"}, true
	default:
		return nil, false
	}
}
