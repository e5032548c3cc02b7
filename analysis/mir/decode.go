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

package mir

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeScript parses the yaml serialization of a lowered script, the interchange format the
// front end hands to the optimizer. Every statement and expression is a single-key mapping whose
// key names the variant.
//
// The variant payloads are walked node by node rather than decoded through
// (*yaml.Node).Decode: yaml.v3 leaves nested yaml.Node destination fields
// zero-valued on that path, so only leaf scalars go through Decode.
func DecodeScript(data []byte) (*Script, error) {
	var doc struct {
		Methods []struct {
			Name       string      `yaml:"name"`
			ReturnsRef bool        `yaml:"returns-ref"`
			Params     []yaml.Node `yaml:"params"`
			Statements []yaml.Node `yaml:"statements"`
		} `yaml:"methods"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal script: %w", err)
	}

	script := NewScript()
	for _, m := range doc.Methods {
		method := &Method{Name: m.Name, ReturnsRef: m.ReturnsRef}
		for i := range m.Params {
			p, err := decodeParam(&m.Params[i])
			if err != nil {
				return nil, fmt.Errorf("method %q: %w", m.Name, err)
			}
			method.Params = append(method.Params, p)
		}
		for i := range m.Statements {
			s, err := decodeStatement(&m.Statements[i])
			if err != nil {
				return nil, fmt.Errorf("method %q, statement %d: %w", m.Name, i, err)
			}
			method.Statements = append(method.Statements, s)
		}
		if err := script.AddMethod(method); err != nil {
			return nil, err
		}
	}
	return script, nil
}

func decodeParam(n *yaml.Node) (Param, error) {
	m, err := fields(n)
	if err != nil {
		return Param{}, fmt.Errorf("bad param: %w", err)
	}
	byRef, err := boolField(m, "by-ref")
	if err != nil {
		return Param{}, fmt.Errorf("bad param: %w", err)
	}
	p := Param{Name: scalarField(m, "name"), ByRef: byRef}
	if def, ok := m["default"]; ok {
		rv, err := decodeRvalue(def)
		if err != nil {
			return Param{}, fmt.Errorf("bad default for param %q: %w", p.Name, err)
		}
		lit, ok := rv.(Literal)
		if !ok {
			return Param{}, fmt.Errorf("default for param %q is not a literal", p.Name)
		}
		p.Default = lit
	}
	return p, nil
}

// variant splits a single-key mapping node into its tag and payload.
func variant(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, fmt.Errorf("expected a single-key mapping at line %d", n.Line)
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields splits a mapping node into its key/value pairs.
func fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", n.Line)
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out, nil
}

// scalarField returns the scalar value of an optional field, or "".
func scalarField(m map[string]*yaml.Node, key string) string {
	if v, ok := m[key]; ok {
		return v.Value
	}
	return ""
}

// boolField returns the value of an optional boolean field, defaulting to false.
func boolField(m map[string]*yaml.Node, key string) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, fmt.Errorf("field %q: %w", key, err)
	}
	return b, nil
}

// need returns a required field of the payload.
func need(m map[string]*yaml.Node, key, what string) (*yaml.Node, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s is missing the %q field", what, key)
	}
	return v, nil
}

//gocyclo:ignore
func decodeStatement(n *yaml.Node) (Statement, error) {
	key, val, err := variant(n)
	if err != nil {
		return nil, err
	}
	switch key {
	case "assign":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad assign: %w", err)
		}
		ref, err := boolField(m, "ref")
		if err != nil {
			return nil, fmt.Errorf("bad assign: %w", err)
		}
		rhsNode, err := need(m, "rhs", "assign")
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(rhsNode)
		if err != nil {
			return nil, err
		}
		return AssignVar{Lhs: VariableName(scalarField(m, "lhs")), IsRef: ref, Rhs: rhs}, nil
	case "assign-array":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad assign-array: %w", err)
		}
		ref, err := boolField(m, "ref")
		if err != nil {
			return nil, fmt.Errorf("bad assign-array: %w", err)
		}
		indexNode, err := need(m, "index", "assign-array")
		if err != nil {
			return nil, err
		}
		index, err := decodeRvalue(indexNode)
		if err != nil {
			return nil, err
		}
		rhsNode, err := need(m, "rhs", "assign-array")
		if err != nil {
			return nil, err
		}
		rhs, err := decodeRvalue(rhsNode)
		if err != nil {
			return nil, err
		}
		return AssignArray{Array: VariableName(scalarField(m, "array")), Index: index, IsRef: ref, Rhs: rhs}, nil
	case "global":
		return GlobalDecl{Var: VariableName(val.Value)}, nil
	case "eval":
		e, err := decodeExpr(val)
		if err != nil {
			return nil, err
		}
		return EvalExpr{Expr: e}, nil
	case "unset":
		return Unset{Var: VariableName(val.Value)}, nil
	case "preop":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad preop: %w", err)
		}
		return PreOp{Op: scalarField(m, "op"), Var: VariableName(scalarField(m, "var"))}, nil
	case "return":
		if val.Tag == "!!null" {
			return Return{}, nil
		}
		rv, err := decodeRvalue(val)
		if err != nil {
			return nil, err
		}
		return Return{Value: rv}, nil
	case "label":
		return Label{Name: val.Value}, nil
	case "goto":
		return Goto{Target: val.Value}, nil
	case "branch":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad branch: %w", err)
		}
		return Branch{
			Cond:        VariableName(scalarField(m, "cond")),
			TrueTarget:  scalarField(m, "true"),
			FalseTarget: scalarField(m, "false"),
		}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q at line %d", key, n.Line)
}

//gocyclo:ignore
func decodeExpr(n *yaml.Node) (Expr, error) {
	key, val, err := variant(n)
	if err != nil {
		return nil, err
	}
	switch key {
	case "var", "int", "real", "string", "bool", "nil":
		rv, err := decodeRvalue(n)
		if err != nil {
			return nil, err
		}
		return rv.(Expr), nil
	case "bin":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad bin: %w", err)
		}
		leftNode, err := need(m, "left", "bin")
		if err != nil {
			return nil, err
		}
		left, err := decodeRvalue(leftNode)
		if err != nil {
			return nil, err
		}
		rightNode, err := need(m, "right", "bin")
		if err != nil {
			return nil, err
		}
		right, err := decodeRvalue(rightNode)
		if err != nil {
			return nil, err
		}
		return BinOp{Left: left, Op: scalarField(m, "op"), Right: right}, nil
	case "unary":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad unary: %w", err)
		}
		return UnaryOp{Op: scalarField(m, "op"), Operand: VariableName(scalarField(m, "var"))}, nil
	case "cast":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad cast: %w", err)
		}
		return Cast{Type: scalarField(m, "type"), Operand: VariableName(scalarField(m, "var"))}, nil
	case "call":
		return decodeCall(val)
	case "index":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad index: %w", err)
		}
		indexNode, err := need(m, "index", "index")
		if err != nil {
			return nil, err
		}
		index, err := decodeRvalue(indexNode)
		if err != nil {
			return nil, err
		}
		return ArrayAccess{Array: VariableName(scalarField(m, "array")), Index: index}, nil
	case "field":
		m, err := fields(val)
		if err != nil {
			return nil, fmt.Errorf("bad field: %w", err)
		}
		return FieldAccess{Object: VariableName(scalarField(m, "object")), Field: scalarField(m, "field")}, nil
	case "new":
		return New{Class: val.Value}, nil
	case "varvar":
		return VarVar{Var: VariableName(val.Value)}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %q at line %d", key, n.Line)
}

func decodeCall(n *yaml.Node) (Call, error) {
	m, err := fields(n)
	if err != nil {
		return Call{}, fmt.Errorf("bad call: %w", err)
	}
	call := Call{Name: scalarField(m, "name")}
	if args, ok := m["args"]; ok {
		if args.Kind != yaml.SequenceNode {
			return Call{}, fmt.Errorf("args of call to %q is not a sequence", call.Name)
		}
		for i, arg := range args.Content {
			isRef := false
			if key, val, err := variant(arg); err == nil && key == "ref" {
				isRef = true
				arg = val
			}
			rv, err := decodeRvalue(arg)
			if err != nil {
				return Call{}, fmt.Errorf("bad argument %d of call to %q: %w", i, call.Name, err)
			}
			call.Args = append(call.Args, Actual{IsRef: isRef, Value: rv})
		}
	}
	return call, nil
}

func decodeRvalue(n *yaml.Node) (Rvalue, error) {
	key, val, err := variant(n)
	if err != nil {
		return nil, err
	}
	switch key {
	case "var":
		return VariableName(val.Value), nil
	case "int":
		var v int64
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad int literal: %w", err)
		}
		return IntLit{Value: v}, nil
	case "real":
		var v float64
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad real literal: %w", err)
		}
		return RealLit{Value: v}, nil
	case "string":
		return StringLit{Value: val.Value}, nil
	case "bool":
		var v bool
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("bad bool literal: %w", err)
		}
		return BoolLit{Value: v}, nil
	case "nil":
		return NilLit{}, nil
	}
	return nil, fmt.Errorf("unknown rvalue kind %q at line %d", key, n.Line)
}
