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

// Package syntax defines the source model consumed by the analyses: compilation units made of type declarations,
// their fields and methods, and a small statement and expression language that is rich enough to express the
// data-flow of method bodies.
//
// The model is produced by a front-end (see frontend/java) and is never mutated by the analyses.
package syntax

import (
	"fmt"
	"strings"
)

// Pos is a position in a source file. Line and Column are 1-based; the zero Pos is invalid.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid returns true if the position has been set
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before returns true if p is strictly before q in the same file
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Capability is a structural property of a type declaration that analyses can query without knowing how the
// front-end derived it.
type Capability string

const (
	// AllowListCheck marks a deserialization stream type that overrides class resolution with an allow-list check.
	AllowListCheck Capability = "allow-list-check"
)

// Unit is one compilation unit (one source file)
type Unit struct {
	Path  string
	Types []*TypeDecl
	// Comments are the comments of the file, in source order
	Comments []Comment
}

// Comment is a comment of a source file, with its delimiters
type Comment struct {
	Text string
	Pos  Pos
}

// IsLine returns true for line comments
func (c Comment) IsLine() bool {
	return strings.HasPrefix(c.Text, "//")
}

// Type returns the type declared in the unit with the given name, or nil
func (u *Unit) Type(name string) *TypeDecl {
	for _, t := range u.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TypeDecl is a class, interface or enum declaration. Nested declarations are flattened into the unit.
type TypeDecl struct {
	Name         string
	Super        string
	Interfaces   []string
	Fields       []*Field
	Methods      []*Method
	Capabilities []Capability
	Pos          Pos
}

// Field returns the field of t with the given name, or nil
func (t *TypeDecl) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method returns the first method of t with the given name, or nil
func (t *TypeDecl) Method(name string) *Method {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// HasCapability returns true if the declaration itself carries c
func (t *TypeDecl) HasCapability(c Capability) bool {
	for _, x := range t.Capabilities {
		if x == c {
			return true
		}
	}
	return false
}

// Field is a field declaration. Init is nil when the field has no initializer.
type Field struct {
	Name   string
	Type   string
	Final  bool
	Static bool
	Init   Expr
	Pos    Pos
}

// Param is a formal parameter of a method or lambda
type Param struct {
	Name string
	Type string
	Pos  Pos
}

// InitializerMethod is the name of the synthetic method holding the field initializers and initializer blocks of
// a type, in declaration order
const InitializerMethod = "<clinit>"

// Method is a method or constructor declaration. Body is nil for abstract methods.
type Method struct {
	Name        string
	ReturnType  string
	Params      []Param
	Body        *Block
	Constructor bool
	Pos         Pos
}

func (m *Method) String() string {
	return m.Name
}
