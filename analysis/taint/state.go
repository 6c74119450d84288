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

package taint

import (
	"fmt"

	"github.com/awslabs/sinkcheck/analysis/constant"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// Label is the taint label of a binding. Labels are ordered: Clean < Unknown < Tainted.
type Label int

const (
	// Clean values are built only from literals and other clean values
	Clean Label = iota
	// Unknown values come from unresolved references or from calls whose callee is not modeled
	Unknown
	// Tainted values may be controlled by an attacker
	Tainted
)

func (l Label) String() string {
	switch l {
	case Clean:
		return "CLEAN"
	case Unknown:
		return "UNKNOWN"
	case Tainted:
		return "TAINTED"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// Join returns the least upper bound of the labels: merging never loses taint
func Join(labels ...Label) Label {
	res := Clean
	for _, l := range labels {
		if l > res {
			res = l
		}
	}
	return res
}

// Origin is the kind of definition of a binding
type Origin int

const (
	// Parameter bindings are the formal parameters of the method (and of lambdas)
	Parameter Origin = iota
	// Literal bindings are assigned a literal
	Literal
	// CallResult bindings are assigned the result of a call or of an instance creation
	CallResult
	// Derived bindings are assigned any other expression, or result from merging branches
	Derived
)

func (o Origin) String() string {
	switch o {
	case Parameter:
		return "PARAMETER"
	case Literal:
		return "LITERAL"
	case CallResult:
		return "CALL_RESULT"
	case Derived:
		return "DERIVED"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// NoBinding is the binding ID of expressions that are not local names
const NoBinding = -1

// Binding is one version of a local variable or parameter. Bindings are never mutated: an assignment creates a new
// version, and merging branches that assign different versions creates a Derived version.
type Binding struct {
	ID           int
	Name         string
	DeclaredType string
	// AllocatedType is the type of the instance creation the binding was initialized with, if any
	AllocatedType string
	Origin        Origin
	Version       int
	Constant      constant.Info
	Pos           syntax.Pos
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s#%d", b.Name, b.Version)
}

// Env maps the local names in scope to their current binding
type Env map[string]int

func (e Env) copy() Env {
	c := make(Env, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// Arg is an argument (or the receiver) of a call site, as evaluated at the call
type Arg struct {
	Expr     syntax.Expr
	Label    Label
	Constant constant.Info
	Type     string
	// Binding is the binding the argument names, or NoBinding when it is not a local name
	Binding int
}

// CallSite is a method call or an instance creation, with the state of its operands when it executes
type CallSite struct {
	// Expr is the *syntax.Call or *syntax.New expression
	Expr syntax.Expr
	// Method is the name of the called method, "<init>" for instance creations
	Method string
	// ReceiverType is the simple name of the type of the receiver, the constructed type for instance creations
	ReceiverType string
	// Receiver is the receiver of the call; its Expr is nil for instance creations and unqualified calls
	Receiver Arg
	Args     []Arg
	// Target is the binding the result of the call is assigned to, or NoBinding
	Target int
	// Order is the index of the call in the evaluation order of the method
	Order int
	Pos   syntax.Pos
	// Env is the environment when the call executes
	Env Env
}

// IsConstructor returns true if the call site creates an instance
func (c *CallSite) IsConstructor() bool {
	_, ok := c.Expr.(*syntax.New)
	return ok
}

// Arity returns the number of arguments of the call
func (c *CallSite) Arity() int {
	return len(c.Args)
}

func (c *CallSite) String() string {
	return fmt.Sprintf("%s.%s/%d@%s", c.ReceiverType, c.Method, len(c.Args), c.Pos)
}

// State is the result of the analysis of one method: the bindings with their labels, and the call sites in
// evaluation order. It is owned by one method analysis.
type State struct {
	Method    *syntax.Method
	Enclosing *syntax.TypeDecl
	Bindings  []*Binding
	Calls     []*CallSite
	labels    []Label
}

// Binding returns the binding with the given id, or nil
func (s *State) Binding(id int) *Binding {
	if id < 0 || id >= len(s.Bindings) {
		return nil
	}
	return s.Bindings[id]
}

// Label returns the label of the binding id. Unknown ids are Unknown.
func (s *State) Label(id int) Label {
	if id < 0 || id >= len(s.labels) {
		return Unknown
	}
	return s.labels[id]
}

// Lookup returns the binding of name at call site c
func (s *State) Lookup(c *CallSite, name string) (*Binding, bool) {
	id, ok := c.Env[name]
	if !ok {
		return nil, false
	}
	return s.Binding(id), true
}

func (s *State) newBinding(b Binding, l Label) int {
	b.ID = len(s.Bindings)
	s.Bindings = append(s.Bindings, &b)
	s.labels = append(s.labels, l)
	return b.ID
}
