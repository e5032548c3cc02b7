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
	"strings"
)

// A Param is one formal parameter of a method. A non-nil Default marks a declared default value.
type Param struct {
	Name    string
	ByRef   bool
	Default Literal
}

// A Method is a user-defined method: a name, a signature and a lowered statement body.
type Method struct {
	Name       string
	Params     []Param
	ReturnsRef bool
	Statements []Statement
}

func (m *Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		s := "$" + p.Name
		if p.ByRef {
			s = "&" + s
		}
		if p.Default != nil {
			s += " = " + p.Default.String()
		}
		params[i] = s
	}
	return fmt.Sprintf("function %s(%s)", m.Name, strings.Join(params, ", "))
}

// A Script is a whole program: the full set of user-defined methods, looked up by name. Lowering
// guarantees method names are unique, so the name is the identity used throughout the analysis.
type Script struct {
	methods map[string]*Method
	order   []string
}

// NewScript returns an empty script.
func NewScript() *Script {
	return &Script{methods: map[string]*Method{}}
}

// AddMethod adds a method to the script. Adding two methods with the same name is an error.
func (s *Script) AddMethod(m *Method) error {
	if _, ok := s.methods[m.Name]; ok {
		return fmt.Errorf("duplicate method %q", m.Name)
	}
	s.methods[m.Name] = m
	s.order = append(s.order, m.Name)
	return nil
}

// Lookup returns the method of the given name, or nil when the script does not define it.
func (s *Script) Lookup(name string) *Method {
	return s.methods[name]
}

// MethodNames returns the method names in definition order.
func (s *Script) MethodNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Remove deletes the named method from the script. Removing an absent method is a no-op.
func (s *Script) Remove(name string) {
	if _, ok := s.methods[name]; !ok {
		return
	}
	delete(s.methods, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
