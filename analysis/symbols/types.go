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

package symbols

import (
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// Scope resolves the names visible at a program point
type Scope interface {
	// LocalType returns the type of the local variable or parameter name, if there is one in scope. The type is the
	// declared type, or the allocated type when the local is known to hold an instance of a declared subtype.
	LocalType(name string) (string, bool)

	// Enclosing returns the declaration of the type enclosing the program point, or nil
	Enclosing() *syntax.TypeDecl
}

// TypeOf returns the simple static type of e in scope, or "" when it cannot be resolved.
// A name that resolves to a type (for example the receiver of a static call) has that type.
func (t *Table) TypeOf(e syntax.Expr, scope Scope) string {
	switch x := e.(type) {
	case *syntax.Literal:
		switch x.Kind {
		case syntax.StringLit:
			return "String"
		case syntax.IntLit:
			return "int"
		case syntax.FloatLit:
			return "double"
		case syntax.CharLit:
			return "char"
		case syntax.BoolLit:
			return "boolean"
		}
		return ""
	case *syntax.Ident:
		if typ, ok := scope.LocalType(x.Name); ok {
			return SimpleName(typ)
		}
		if encl := scope.Enclosing(); encl != nil {
			switch x.Name {
			case "this":
				return encl.Name
			case "super":
				return SimpleName(encl.Super)
			}
			if f := t.FieldOf(encl, x.Name); f != nil {
				return SimpleName(f.Type)
			}
		}
		if t.IsTypeName(x.Name) {
			return x.Name
		}
		return ""
	case *syntax.FieldRef:
		owner := t.TypeOf(x.X, scope)
		if decl := t.Type(owner); decl != nil {
			if f := t.FieldOf(decl, x.Name); f != nil {
				return SimpleName(f.Type)
			}
		}
		if _, ok := t.LibraryConstant(owner, x.Name); ok {
			return "String"
		}
		return ""
	case *syntax.Call:
		var recv string
		if x.Recv == nil {
			if encl := scope.Enclosing(); encl != nil {
				recv = encl.Name
			}
		} else {
			recv = t.TypeOf(x.Recv, scope)
		}
		return t.ReturnType(recv, x.Name)
	case *syntax.New:
		return SimpleName(x.Type)
	case *syntax.NewArray:
		return SimpleName(x.Type) + "[]"
	case *syntax.Cast:
		return SimpleName(x.Type)
	case *syntax.ClassLit:
		return "Class"
	case *syntax.Binary:
		if x.Op == "+" {
			if t.TypeOf(x.X, scope) == "String" || t.TypeOf(x.Y, scope) == "String" {
				return "String"
			}
		}
		return ""
	case *syntax.Cond:
		if typ := t.TypeOf(x.Then, scope); typ != "" {
			return typ
		}
		return t.TypeOf(x.Else, scope)
	case *syntax.Index:
		typ := t.TypeOf(x.X, scope)
		if IsArrayType(typ) {
			return typ[:len(typ)-2]
		}
		return ""
	}
	return ""
}

// FieldOf returns the field name declared in decl or inherited from a superclass declared in the analyzed units
func (t *Table) FieldOf(decl *syntax.TypeDecl, name string) *syntax.Field {
	seen := map[*syntax.TypeDecl]bool{}
	for decl != nil && !seen[decl] {
		seen[decl] = true
		if f := decl.Field(name); f != nil {
			return f
		}
		decl = t.Type(decl.Super)
	}
	return nil
}
