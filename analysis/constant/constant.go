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

// Package constant implements the constant evaluator: it decides whether an expression always evaluates to the
// same value, and folds the value of string and numeric constant expressions when it can.
//
// Unresolved references are never constant. Method call results are never constant, except for string-building
// methods applied to constant operands.
package constant

import (
	"strconv"
	"strings"

	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"github.com/awslabs/sinkcheck/internal/graphutil"
)

// Info is the constant information of an expression or a binding. Value is meaningful only when HasValue is true.
type Info struct {
	Constant bool
	Value    string
	HasValue bool
}

// NotConstant is the information of non-constant expressions
var NotConstant = Info{}

func constantWith(v string) Info {
	return Info{Constant: true, Value: v, HasValue: true}
}

var constantNoValue = Info{Constant: true}

// Scope resolves the local bindings visible at a program point
type Scope interface {
	symbols.Scope

	// Local returns the constant information of the local binding name, if there is one in scope
	Local(name string) (Info, bool)
}

// Evaluator is the constant evaluator of the units of a symbol table. The constant information of all the fields
// declared in the table is computed when the evaluator is created, so that an Evaluator can be used concurrently.
type Evaluator struct {
	table  *symbols.Table
	fields map[*syntax.Field]Info
	owners map[*syntax.Field]*syntax.TypeDecl
	frozen bool
}

// NewEvaluator returns an evaluator for the declarations in table
func NewEvaluator(table *symbols.Table) *Evaluator {
	e := &Evaluator{
		table:  table,
		fields: map[*syntax.Field]Info{},
		owners: map[*syntax.Field]*syntax.TypeDecl{},
	}
	deps := graphutil.NewDependencies[*syntax.Field]()
	for _, decl := range table.Types() {
		for _, f := range decl.Fields {
			e.owners[f] = decl
			deps.AddNode(f)
		}
	}
	for f, decl := range e.owners {
		for _, g := range e.fieldReferences(decl, f.Init) {
			deps.AddEdge(f, g)
		}
	}
	for f := range deps.Cyclic() {
		e.fields[f] = NotConstant
	}
	for f := range e.owners {
		e.field(f)
	}
	e.frozen = true
	return e
}

// IsConstant returns true if x is a constant expression in scope
func (e *Evaluator) IsConstant(x syntax.Expr, scope Scope) bool {
	return e.Eval(x, scope).Constant
}

// Value returns the folded value of x if x is a constant expression whose value is known
func (e *Evaluator) Value(x syntax.Expr, scope Scope) (string, bool) {
	info := e.Eval(x, scope)
	return info.Value, info.Constant && info.HasValue
}

// Field returns the constant information of a field declared in the analyzed units
func (e *Evaluator) Field(f *syntax.Field) Info {
	return e.fields[f]
}

// field returns the constant information of field f, computing it if the evaluator is not frozen yet.
// A field is constant when it is final and its initializer is constant.
func (e *Evaluator) field(f *syntax.Field) Info {
	if info, ok := e.fields[f]; ok || e.frozen {
		return info
	}
	// Mark before evaluating the initializer: references to f while evaluating it are not constant
	e.fields[f] = NotConstant
	if !f.Final || f.Init == nil {
		return NotConstant
	}
	info := e.Eval(f.Init, fieldScope{decl: e.owners[f]})
	e.fields[f] = info
	return info
}

// fieldReferences returns the fields of the analyzed units referenced by x, evaluated in the scope of decl
func (e *Evaluator) fieldReferences(decl *syntax.TypeDecl, x syntax.Expr) []*syntax.Field {
	var refs []*syntax.Field
	syntax.Inspect(x, func(n syntax.Expr) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			if f := e.table.FieldOf(decl, n.Name); f != nil {
				refs = append(refs, f)
			}
		case *syntax.FieldRef:
			if owner := e.ownerOf(n.X, fieldScope{decl: decl}); owner != nil {
				if f := e.table.FieldOf(owner, n.Name); f != nil {
					refs = append(refs, f)
				}
			}
			return false
		}
		return true
	})
	return refs
}

// ownerOf returns the declaration of the type named by x, when x is "this" or a type name of the analyzed units
func (e *Evaluator) ownerOf(x syntax.Expr, scope Scope) *syntax.TypeDecl {
	id, ok := x.(*syntax.Ident)
	if !ok {
		return nil
	}
	if id.Name == "this" {
		return scope.Enclosing()
	}
	if _, isLocal := scope.LocalType(id.Name); isLocal {
		return nil
	}
	return e.table.Type(id.Name)
}

// Eval returns the constant information of x in scope
func (e *Evaluator) Eval(x syntax.Expr, scope Scope) Info {
	switch x := x.(type) {
	case *syntax.Literal:
		if x.Kind == syntax.NullLit {
			return constantNoValue
		}
		return constantWith(x.Value)
	case *syntax.ClassLit:
		return constantNoValue
	case *syntax.Ident:
		if info, ok := scope.Local(x.Name); ok {
			return info
		}
		if encl := scope.Enclosing(); encl != nil {
			if f := e.table.FieldOf(encl, x.Name); f != nil {
				return e.field(f)
			}
		}
		return NotConstant
	case *syntax.FieldRef:
		return e.fieldRef(x, scope)
	case *syntax.Binary:
		return e.binary(x, scope)
	case *syntax.Unary:
		info := e.Eval(x.X, scope)
		if !info.Constant || !info.HasValue {
			return info
		}
		switch x.Op {
		case "-":
			if n, err := strconv.ParseInt(info.Value, 10, 64); err == nil {
				return constantWith(strconv.FormatInt(-n, 10))
			}
		case "!":
			if b, err := strconv.ParseBool(info.Value); err == nil {
				return constantWith(strconv.FormatBool(!b))
			}
		case "+":
			return info
		}
		return constantNoValue
	case *syntax.Cond:
		c, a, b := e.Eval(x.Cond, scope), e.Eval(x.Then, scope), e.Eval(x.Else, scope)
		if !a.Constant || !b.Constant {
			return NotConstant
		}
		if c.Constant && c.HasValue && c.Value == "true" {
			return a
		} else if c.Constant && c.HasValue && c.Value == "false" {
			return b
		}
		if a.HasValue && b.HasValue && a.Value == b.Value {
			return a
		}
		return constantNoValue
	case *syntax.Cast:
		return e.Eval(x.X, scope)
	case *syntax.NewArray:
		for _, sub := range append(append([]syntax.Expr{}, x.Dims...), x.Elems...) {
			if !e.IsConstant(sub, scope) {
				return NotConstant
			}
		}
		return constantNoValue
	case *syntax.New:
		if symbols.SimpleName(x.Type) == "String" {
			if len(x.Args) == 0 {
				return constantWith("")
			}
			if len(x.Args) == 1 {
				if info := e.Eval(x.Args[0], scope); info.Constant {
					return info
				}
			}
		}
		return NotConstant
	case *syntax.Call:
		return e.call(x, scope)
	}
	return NotConstant
}

func (e *Evaluator) fieldRef(x *syntax.FieldRef, scope Scope) Info {
	if owner := e.ownerOf(x.X, scope); owner != nil {
		if f := e.table.FieldOf(owner, x.Name); f != nil {
			return e.field(f)
		}
		return NotConstant
	}
	if typeName := qualifiedTypeName(x.X, scope); typeName != "" {
		if v, ok := e.table.LibraryConstant(typeName, x.Name); ok {
			return constantWith(v)
		}
	}
	return NotConstant
}

// qualifiedTypeName returns the simple type name denoted by a possibly qualified name such as
// javax.xml.XMLConstants, or "" if x is not a name or is a local
func qualifiedTypeName(x syntax.Expr, scope Scope) string {
	switch x := x.(type) {
	case *syntax.Ident:
		if _, isLocal := scope.LocalType(x.Name); isLocal {
			return ""
		}
		return x.Name
	case *syntax.FieldRef:
		if qualifiedTypeName(x.X, scope) == "" {
			return ""
		}
		return x.Name
	}
	return ""
}

func (e *Evaluator) binary(x *syntax.Binary, scope Scope) Info {
	a, b := e.Eval(x.X, scope), e.Eval(x.Y, scope)
	if !a.Constant || !b.Constant {
		return NotConstant
	}
	if !a.HasValue || !b.HasValue {
		return constantNoValue
	}
	switch x.Op {
	case "+":
		n, errA := strconv.ParseInt(a.Value, 10, 64)
		m, errB := strconv.ParseInt(b.Value, 10, 64)
		if errA == nil && errB == nil && !isStringExpr(x.X) && !isStringExpr(x.Y) {
			return constantWith(strconv.FormatInt(n+m, 10))
		}
		return constantWith(a.Value + b.Value)
	case "==":
		return constantWith(strconv.FormatBool(a.Value == b.Value))
	case "!=":
		return constantWith(strconv.FormatBool(a.Value != b.Value))
	}
	return constantNoValue
}

func isStringExpr(x syntax.Expr) bool {
	switch x := x.(type) {
	case *syntax.Literal:
		return x.Kind == syntax.StringLit || x.Kind == syntax.CharLit
	case *syntax.Binary:
		return x.Op == "+" && (isStringExpr(x.X) || isStringExpr(x.Y))
	}
	return false
}

// call evaluates string-building calls. The receiver of a static call (a type name) counts as constant.
func (e *Evaluator) call(x *syntax.Call, scope Scope) Info {
	if x.Recv == nil {
		return NotConstant
	}
	recvType := e.table.TypeOf(x.Recv, scope)
	if !e.table.IsStringMethod(recvType, x.Name) {
		return NotConstant
	}
	recv := constantNoValue
	if !isTypeReference(x.Recv, scope, e.table) {
		recv = e.Eval(x.Recv, scope)
		if !recv.Constant {
			return NotConstant
		}
	}
	args := make([]Info, len(x.Args))
	for i, arg := range x.Args {
		args[i] = e.Eval(arg, scope)
		if !args[i].Constant {
			return NotConstant
		}
	}
	return foldStringCall(x.Name, recv, args)
}

func isTypeReference(x syntax.Expr, scope Scope, table *symbols.Table) bool {
	id, ok := x.(*syntax.Ident)
	if !ok {
		return false
	}
	if _, isLocal := scope.LocalType(id.Name); isLocal {
		return false
	}
	if encl := scope.Enclosing(); encl != nil && table.FieldOf(encl, id.Name) != nil {
		return false
	}
	return table.IsTypeName(id.Name)
}

func foldStringCall(method string, recv Info, args []Info) Info {
	values := make([]string, len(args))
	for i, a := range args {
		if !a.HasValue {
			return constantNoValue
		}
		values[i] = a.Value
	}
	switch method {
	case "valueOf", "toString", "intern":
		if len(values) == 1 {
			return constantWith(values[0])
		}
		if len(values) == 0 && recv.HasValue {
			return constantWith(recv.Value)
		}
	case "join":
		if len(values) >= 1 {
			return constantWith(strings.Join(values[1:], values[0]))
		}
	}
	if !recv.HasValue {
		return constantNoValue
	}
	switch method {
	case "append", "concat":
		return constantWith(recv.Value + strings.Join(values, ""))
	case "trim", "strip":
		return constantWith(strings.TrimSpace(recv.Value))
	case "toLowerCase":
		return constantWith(strings.ToLower(recv.Value))
	case "toUpperCase":
		return constantWith(strings.ToUpper(recv.Value))
	}
	return constantNoValue
}

// fieldScope is the scope of field initializers: no locals, and the declaring type as enclosing type
type fieldScope struct {
	decl *syntax.TypeDecl
}

func (s fieldScope) LocalType(string) (string, bool) { return "", false }
func (s fieldScope) Local(string) (Info, bool)       { return NotConstant, false }
func (s fieldScope) Enclosing() *syntax.TypeDecl     { return s.decl }
