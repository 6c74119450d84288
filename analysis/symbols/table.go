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

// Package symbols resolves the types of expressions, the type hierarchy and the values of well-known constants
// for the analyses. A Table combines the built-in library model with the declarations of the units being analyzed.
package symbols

import (
	"strings"
	"unicode"

	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// Table is the symbol table of one analysis. It is read-only after construction and safe for concurrent use.
type Table struct {
	types map[string]*syntax.TypeDecl
	order []*syntax.TypeDecl
}

// NewTable returns a table containing the library model and the type declarations of units
func NewTable(units ...*syntax.Unit) *Table {
	t := &Table{types: map[string]*syntax.TypeDecl{}}
	for _, u := range units {
		if u == nil {
			continue
		}
		for _, decl := range u.Types {
			if _, ok := t.types[decl.Name]; !ok {
				t.types[decl.Name] = decl
				t.order = append(t.order, decl)
			}
		}
	}
	return t
}

// Type returns the declaration of the type with the given name in the analyzed units, or nil
func (t *Table) Type(name string) *syntax.TypeDecl {
	return t.types[SimpleName(name)]
}

// Types returns the declarations of the analyzed units, in declaration order
func (t *Table) Types() []*syntax.TypeDecl {
	return t.order
}

// IsTypeName returns true if name denotes a type: a declared type, a library type or any capitalized name
func (t *Table) IsTypeName(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := t.types[name]; ok {
		return true
	}
	return unicode.IsUpper([]rune(name)[0])
}

// supertypes returns the direct supertypes of typ
func (t *Table) supertypes(typ string) []string {
	if decl, ok := t.types[typ]; ok {
		var s []string
		if decl.Super != "" {
			s = append(s, SimpleName(decl.Super))
		}
		for _, i := range decl.Interfaces {
			s = append(s, SimpleName(i))
		}
		return s
	}
	return librarySupertypes[typ]
}

// IsSubtype returns true if typ is super or one of its subtypes. Type arguments and package qualifiers are ignored.
func (t *Table) IsSubtype(typ string, super string) bool {
	typ, super = SimpleName(typ), SimpleName(super)
	if typ == "" || super == "" {
		return false
	}
	seen := map[string]bool{}
	todo := []string{typ}
	for len(todo) > 0 {
		cur := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if cur == super {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		todo = append(todo, t.supertypes(cur)...)
	}
	return false
}

// HasCapability returns true if typ, or one of its declared supertypes, carries the capability c
func (t *Table) HasCapability(typ string, c syntax.Capability) bool {
	typ = SimpleName(typ)
	seen := map[string]bool{}
	for typ != "" && !seen[typ] {
		seen[typ] = true
		decl, ok := t.types[typ]
		if !ok {
			return false
		}
		if decl.HasCapability(c) {
			return true
		}
		typ = SimpleName(decl.Super)
	}
	return false
}

// ReturnType returns the return type of the method named method on receiver type recv, or "" if it is unknown.
// Methods declared in the analyzed units are searched along the superclass chain before the library model.
func (t *Table) ReturnType(recv string, method string) string {
	recv = SimpleName(recv)
	seen := map[string]bool{}
	for cur := recv; cur != "" && !seen[cur]; {
		seen[cur] = true
		decl, ok := t.types[cur]
		if !ok {
			break
		}
		if m := decl.Method(method); m != nil && !m.Constructor {
			return m.ReturnType
		}
		cur = SimpleName(decl.Super)
	}
	for _, s := range append([]string{recv}, t.allSupertypes(recv)...) {
		if r, ok := libraryReturns[s+"."+method]; ok {
			return r
		}
	}
	return ""
}

func (t *Table) allSupertypes(typ string) []string {
	var res []string
	seen := map[string]bool{typ: true}
	todo := t.supertypes(typ)
	for len(todo) > 0 {
		cur := todo[0]
		todo = todo[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		res = append(res, cur)
		todo = append(todo, t.supertypes(cur)...)
	}
	return res
}

// LibraryConstant returns the value of a well-known library constant such as XMLConstants.ACCESS_EXTERNAL_DTD
func (t *Table) LibraryConstant(typ string, name string) (string, bool) {
	v, ok := libraryConstants[SimpleName(typ)+"."+name]
	return v, ok
}

// IsStringMethod returns true if the method builds a string only from its receiver and arguments
func (t *Table) IsStringMethod(recv string, method string) bool {
	return t.matchMethod(stringMethods, recv, method)
}

// IsMutator returns true if the method folds its arguments into its receiver
func (t *Table) IsMutator(recv string, method string) bool {
	return t.matchMethod(mutatorMethods, recv, method)
}

// IsCleanMethod returns true if the method is known to return values that cannot carry attacker-controlled text
func (t *Table) IsCleanMethod(recv string, method string) bool {
	return t.matchMethod(cleanMethods, recv, method)
}

func (t *Table) matchMethod(table map[string]bool, recv string, method string) bool {
	recv = SimpleName(recv)
	if recv == "" {
		return false
	}
	if table[recv+"."+method] {
		return true
	}
	for _, s := range t.allSupertypes(recv) {
		if table[s+"."+method] {
			return true
		}
	}
	return false
}

// SimpleName strips the package qualifier and type arguments of a type name, keeping array brackets.
// For example, java.util.List<String>[] becomes List[].
func SimpleName(typ string) string {
	typ = strings.TrimSpace(typ)
	dims := ""
	for strings.HasSuffix(typ, "[]") {
		typ = strings.TrimSpace(strings.TrimSuffix(typ, "[]"))
		dims += "[]"
	}
	if strings.HasSuffix(typ, "...") {
		typ = strings.TrimSuffix(typ, "...")
		dims += "[]"
	}
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return strings.TrimSpace(typ) + dims
}

// IsArrayType returns true if typ denotes an array type (including variadic parameters)
func IsArrayType(typ string) bool {
	typ = strings.TrimSpace(typ)
	return strings.HasSuffix(typ, "[]") || strings.HasSuffix(typ, "...")
}
