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

package java

import (
	"strconv"
	"strings"

	"github.com/awslabs/sinkcheck/analysis/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// allowListMethods are the ObjectInputStream methods whose overrides check resolved classes
var allowListMethods = map[string]bool{"resolveClass": true, "resolveProxyClass": true}

type converter struct {
	path string
	src  []byte
}

func (c *converter) pos(n *sitter.Node) syntax.Pos {
	p := n.StartPoint()
	return syntax.Pos{File: c.path, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func field(n *sitter.Node, name string) *sitter.Node {
	f := n.ChildByFieldName(name)
	if f == nil || f.IsNull() {
		return nil
	}
	return f
}

// namedChildren returns the named children of n, skipping comments
func namedChildren(n *sitter.Node) []*sitter.Node {
	var res []*sitter.Node
	if n == nil {
		return res
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if ch := n.NamedChild(i); !isComment(ch) {
			res = append(res, ch)
		}
	}
	return res
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

// comments returns the comments of the tree rooted at root, in source order
func (c *converter) comments(root *sitter.Node) []syntax.Comment {
	var res []syntax.Comment
	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()
	for {
		if n := cursor.CurrentNode(); isComment(n) {
			res = append(res, syntax.Comment{Text: c.text(n), Pos: c.pos(n)})
		} else if cursor.GoToFirstChild() {
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return res
			}
		}
	}
}

// fieldChildren returns the children of n in the field name
func fieldChildren(n *sitter.Node, name string) []*sitter.Node {
	var res []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == name {
			res = append(res, n.Child(i))
		}
	}
	return res
}

// hasModifier returns true if the declaration n has the modifier keyword
func hasModifier(n *sitter.Node, keyword string) bool {
	for _, ch := range namedChildren(n) {
		if ch.Type() != "modifiers" {
			continue
		}
		for i := 0; i < int(ch.ChildCount()); i++ {
			if ch.Child(i).Type() == keyword {
				return true
			}
		}
	}
	return false
}

func (c *converter) unit(root *sitter.Node) *syntax.Unit {
	u := &syntax.Unit{Path: c.path}
	for _, n := range namedChildren(root) {
		u.Types = append(u.Types, c.typeDecls(n)...)
	}
	return u
}

// typeDecls converts a type declaration and the types nested in it
func (c *converter) typeDecls(n *sitter.Node) []*syntax.TypeDecl {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
	default:
		return nil
	}
	decl := &syntax.TypeDecl{Name: c.text(field(n, "name")), Pos: c.pos(n)}
	if super := field(n, "superclass"); super != nil {
		if ts := namedChildren(super); len(ts) > 0 {
			decl.Super = c.text(ts[0])
		}
	}
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "super_interfaces", "extends_interfaces":
			for _, list := range namedChildren(ch) {
				for _, t := range namedChildren(list) {
					decl.Interfaces = append(decl.Interfaces, c.text(t))
				}
			}
		}
	}
	res := []*syntax.TypeDecl{decl}
	body := field(n, "body")
	if body == nil {
		return res
	}
	members := namedChildren(body)
	if n.Type() == "enum_declaration" {
		var flat []*sitter.Node
		for _, m := range members {
			if m.Type() == "enum_body_declarations" {
				flat = append(flat, namedChildren(m)...)
			}
		}
		members = flat
	}
	var initializers []syntax.Stmt
	for _, m := range members {
		switch m.Type() {
		case "field_declaration", "constant_declaration":
			fields := c.fields(m)
			decl.Fields = append(decl.Fields, fields...)
			for _, f := range fields {
				if f.Init != nil && hasCall(f.Init) {
					initializers = append(initializers, &syntax.Assign{
						Target: &syntax.Ident{Name: f.Name, Pos: f.Pos},
						Op:     "=",
						Value:  f.Init,
						Pos:    f.Pos,
					})
				}
			}
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			decl.Methods = append(decl.Methods, c.method(m))
		case "static_initializer", "block":
			initializers = append(initializers, c.stmts(m)...)
		default:
			res = append(res, c.typeDecls(m)...)
		}
	}
	if len(initializers) > 0 {
		// field initializers and initializer blocks are analyzed as one method
		decl.Methods = append(decl.Methods, &syntax.Method{
			Name: syntax.InitializerMethod,
			Body: &syntax.Block{Stmts: initializers, Pos: decl.Pos},
			Pos:  decl.Pos,
		})
	}
	for _, m := range decl.Methods {
		if allowListMethods[m.Name] && containsThrow(m.Body) {
			decl.Capabilities = append(decl.Capabilities, syntax.AllowListCheck)
			break
		}
	}
	return res
}

func hasCall(x syntax.Expr) bool {
	found := false
	syntax.Inspect(x, func(e syntax.Expr) bool {
		switch e.(type) {
		case *syntax.Call, *syntax.New:
			found = true
		}
		return !found
	})
	return found
}

// containsThrow returns true if the statement contains a throw statement
func containsThrow(s syntax.Stmt) bool {
	switch s := s.(type) {
	case *syntax.Throw:
		return true
	case *syntax.Block:
		if s == nil {
			return false
		}
		for _, x := range s.Stmts {
			if containsThrow(x) {
				return true
			}
		}
	case *syntax.If:
		return containsThrow(s.Then) || containsThrow(s.Else)
	case *syntax.Loop:
		return containsThrow(s.Body)
	case *syntax.Try:
		if containsThrow(s.Body) || (s.Finally != nil && containsThrow(s.Finally)) {
			return true
		}
		for _, cc := range s.Catches {
			if containsThrow(cc.Body) {
				return true
			}
		}
	case *syntax.Switch:
		for _, b := range s.Cases {
			if containsThrow(b) {
				return true
			}
		}
	}
	return false
}

func (c *converter) fields(n *sitter.Node) []*syntax.Field {
	typ := c.text(field(n, "type"))
	final := hasModifier(n, "final") || n.Type() == "constant_declaration"
	static := hasModifier(n, "static") || n.Type() == "constant_declaration"
	var res []*syntax.Field
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		f := &syntax.Field{
			Name:   c.text(field(d, "name")),
			Type:   typ + c.text(field(d, "dimensions")),
			Final:  final,
			Static: static,
			Pos:    c.pos(d),
		}
		if v := field(d, "value"); v != nil {
			f.Init = c.expr(v)
		}
		res = append(res, f)
	}
	return res
}

func (c *converter) method(n *sitter.Node) *syntax.Method {
	m := &syntax.Method{
		Name:        c.text(field(n, "name")),
		ReturnType:  c.text(field(n, "type")),
		Constructor: n.Type() != "method_declaration",
		Pos:         c.pos(n),
	}
	if params := field(n, "parameters"); params != nil {
		m.Params = c.params(params)
	}
	if body := field(n, "body"); body != nil {
		m.Body = &syntax.Block{Stmts: c.stmts(body), Pos: c.pos(body)}
	}
	return m
}

func (c *converter) params(n *sitter.Node) []syntax.Param {
	var res []syntax.Param
	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "formal_parameter":
			res = append(res, syntax.Param{
				Name: c.text(field(p, "name")),
				Type: c.text(field(p, "type")) + c.text(field(p, "dimensions")),
				Pos:  c.pos(p),
			})
		case "spread_parameter":
			var typ, name string
			for _, ch := range namedChildren(p) {
				switch ch.Type() {
				case "variable_declarator":
					name = c.text(field(ch, "name"))
				case "modifiers":
				default:
					if typ == "" {
						typ = c.text(ch)
					}
				}
			}
			res = append(res, syntax.Param{Name: name, Type: typ + "...", Pos: c.pos(p)})
		case "identifier":
			// inferred lambda parameters
			res = append(res, syntax.Param{Name: c.text(p), Pos: c.pos(p)})
		case "inferred_parameters":
			res = append(res, c.params(p)...)
		}
	}
	return res
}

// stmts converts the statements of a block-like node
func (c *converter) stmts(n *sitter.Node) []syntax.Stmt {
	var res []syntax.Stmt
	for _, ch := range namedChildren(n) {
		res = append(res, c.stmt(ch)...)
	}
	return res
}

func (c *converter) block(n *sitter.Node) *syntax.Block {
	if n == nil {
		return nil
	}
	if n.Type() == "block" || n.Type() == "constructor_body" {
		return &syntax.Block{Stmts: c.stmts(n), Pos: c.pos(n)}
	}
	return &syntax.Block{Stmts: c.stmt(n), Pos: c.pos(n)}
}

// single converts a statement that must be one statement
func (c *converter) single(n *sitter.Node) syntax.Stmt {
	if n == nil {
		return nil
	}
	stmts := c.stmt(n)
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &syntax.Block{Stmts: stmts, Pos: c.pos(n)}
}

// stmt converts a statement; local declarations with several declarators produce several statements
func (c *converter) stmt(n *sitter.Node) []syntax.Stmt {
	pos := c.pos(n)
	switch n.Type() {
	case "local_variable_declaration":
		return c.localDecls(n)
	case "expression_statement":
		ch := namedChildren(n)
		if len(ch) == 0 {
			return nil
		}
		return []syntax.Stmt{c.exprStmt(ch[0])}
	case "block", "static_initializer", "constructor_body":
		return []syntax.Stmt{&syntax.Block{Stmts: c.stmts(n), Pos: pos}}
	case "return_statement", "yield_statement":
		s := &syntax.Return{Pos: pos}
		if ch := namedChildren(n); len(ch) > 0 {
			s.Value = c.expr(ch[0])
		}
		return []syntax.Stmt{s}
	case "throw_statement":
		s := &syntax.Throw{Pos: pos}
		if ch := namedChildren(n); len(ch) > 0 {
			s.Value = c.expr(ch[0])
		}
		return []syntax.Stmt{s}
	case "explicit_constructor_invocation":
		call := &syntax.Call{Name: c.text(field(n, "constructor")), Pos: pos}
		if obj := field(n, "object"); obj != nil {
			call.Recv = c.expr(obj)
		}
		call.Args = c.args(field(n, "arguments"))
		return []syntax.Stmt{&syntax.ExprStmt{X: call, Pos: pos}}
	case "if_statement":
		s := &syntax.If{
			Cond: c.expr(field(n, "condition")),
			Then: c.single(field(n, "consequence")),
			Pos:  pos,
		}
		if alt := field(n, "alternative"); alt != nil {
			s.Else = c.single(alt)
		}
		return []syntax.Stmt{s}
	case "while_statement", "do_statement":
		return []syntax.Stmt{&syntax.Loop{
			Cond: c.expr(field(n, "condition")),
			Body: c.single(field(n, "body")),
			Pos:  pos,
		}}
	case "for_statement":
		loop := &syntax.Loop{Body: c.single(field(n, "body")), Pos: pos}
		for _, init := range fieldChildren(n, "init") {
			if init.Type() == "local_variable_declaration" {
				loop.Init = append(loop.Init, c.localDecls(init)...)
			} else {
				loop.Init = append(loop.Init, c.exprStmt(init))
			}
		}
		if cond := field(n, "condition"); cond != nil {
			loop.Cond = c.expr(cond)
		}
		for _, u := range fieldChildren(n, "update") {
			loop.Update = append(loop.Update, c.exprStmt(u))
		}
		return []syntax.Stmt{loop}
	case "enhanced_for_statement":
		iter := &syntax.LocalDecl{
			Name: c.text(field(n, "name")),
			Type: c.text(field(n, "type")),
			Init: &syntax.Opaque{Kind: "element", Subs: []syntax.Expr{c.expr(field(n, "value"))}, Pos: pos},
			Pos:  pos,
		}
		return []syntax.Stmt{&syntax.Loop{Init: []syntax.Stmt{iter}, Body: c.single(field(n, "body")), Pos: pos}}
	case "try_statement", "try_with_resources_statement":
		return []syntax.Stmt{c.try(n)}
	case "switch_expression", "switch_statement":
		return []syntax.Stmt{c.switchStmt(n)}
	case "labeled_statement", "synchronized_statement":
		var res []syntax.Stmt
		if n.Type() == "synchronized_statement" {
			for _, ch := range namedChildren(n) {
				if ch.Type() == "parenthesized_expression" {
					res = append(res, &syntax.ExprStmt{X: c.expr(ch), Pos: pos})
				}
			}
		}
		for _, ch := range namedChildren(n) {
			switch ch.Type() {
			case "identifier", "parenthesized_expression":
				continue
			}
			res = append(res, c.stmt(ch)...)
		}
		return res
	case "assert_statement":
		var subs []syntax.Expr
		for _, ch := range namedChildren(n) {
			subs = append(subs, c.expr(ch))
		}
		return []syntax.Stmt{&syntax.ExprStmt{X: &syntax.Opaque{Kind: "assert", Subs: subs, Pos: pos}, Pos: pos}}
	case "local_class_declaration", "class_declaration", "break_statement", "continue_statement", ";":
		return nil
	}
	return nil
}

func (c *converter) localDecls(n *sitter.Node) []syntax.Stmt {
	typ := c.text(field(n, "type"))
	final := hasModifier(n, "final")
	var res []syntax.Stmt
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		s := &syntax.LocalDecl{
			Name:  c.text(field(d, "name")),
			Type:  typ + c.text(field(d, "dimensions")),
			Final: final,
			Pos:   c.pos(d),
		}
		if v := field(d, "value"); v != nil {
			s.Init = c.expr(v)
		}
		res = append(res, s)
	}
	return res
}

// exprStmt converts an expression in statement position: assignments become Assign statements
func (c *converter) exprStmt(n *sitter.Node) syntax.Stmt {
	pos := c.pos(n)
	if n.Type() == "switch_expression" {
		return c.switchStmt(n)
	}
	if n.Type() == "assignment_expression" {
		return &syntax.Assign{
			Target: c.expr(field(n, "left")),
			Op:     c.text(field(n, "operator")),
			Value:  c.expr(field(n, "right")),
			Pos:    pos,
		}
	}
	return &syntax.ExprStmt{X: c.expr(n), Pos: pos}
}

func (c *converter) try(n *sitter.Node) syntax.Stmt {
	s := &syntax.Try{Body: c.block(field(n, "body")), Pos: c.pos(n)}
	if res := field(n, "resources"); res != nil {
		for _, r := range namedChildren(res) {
			if r.Type() != "resource" {
				continue
			}
			if v := field(r, "value"); v != nil {
				s.Resources = append(s.Resources, &syntax.LocalDecl{
					Name:  c.text(field(r, "name")),
					Type:  c.text(field(r, "type")),
					Final: true,
					Init:  c.expr(v),
					Pos:   c.pos(r),
				})
			} else if ch := namedChildren(r); len(ch) > 0 {
				s.Resources = append(s.Resources, &syntax.ExprStmt{X: c.expr(ch[0]), Pos: c.pos(r)})
			}
		}
	}
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "catch_clause":
			catch := &syntax.Catch{Body: c.block(field(ch, "body"))}
			for _, p := range namedChildren(ch) {
				if p.Type() == "catch_formal_parameter" {
					var types []string
					for _, t := range namedChildren(p) {
						if t.Type() == "catch_type" {
							types = append(types, c.text(t))
						}
					}
					catch.Param = syntax.Param{Name: c.text(field(p, "name")), Type: strings.Join(types, "|"), Pos: c.pos(p)}
				}
			}
			s.Catches = append(s.Catches, catch)
		case "finally_clause":
			for _, b := range namedChildren(ch) {
				if b.Type() == "block" {
					s.Finally = c.block(b)
				}
			}
		}
	}
	return s
}

func (c *converter) switchStmt(n *sitter.Node) syntax.Stmt {
	s := &syntax.Switch{Tag: c.expr(field(n, "condition")), Pos: c.pos(n)}
	body := field(n, "body")
	for _, group := range namedChildren(body) {
		switch group.Type() {
		case "switch_block_statement_group", "switch_rule":
			b := &syntax.Block{Pos: c.pos(group)}
			for _, ch := range namedChildren(group) {
				if ch.Type() == "switch_label" {
					continue
				}
				if group.Type() == "switch_rule" && ch.Type() != "block" && ch.Type() != "expression_statement" &&
					ch.Type() != "throw_statement" {
					b.Stmts = append(b.Stmts, c.exprStmt(ch))
					continue
				}
				b.Stmts = append(b.Stmts, c.stmt(ch)...)
			}
			s.Cases = append(s.Cases, b)
		}
	}
	return s
}

func (c *converter) args(n *sitter.Node) []syntax.Expr {
	var res []syntax.Expr
	for _, a := range namedChildren(n) {
		res = append(res, c.expr(a))
	}
	return res
}

func (c *converter) expr(n *sitter.Node) syntax.Expr {
	if n == nil {
		return &syntax.Opaque{Kind: "missing"}
	}
	pos := c.pos(n)
	switch n.Type() {
	case "identifier", "this", "super", "type_identifier":
		return &syntax.Ident{Name: c.text(n), Pos: pos}
	case "string_literal", "text_block":
		return &syntax.Literal{Kind: syntax.StringLit, Value: unquote(c.text(n)), Pos: pos}
	case "character_literal":
		return &syntax.Literal{Kind: syntax.CharLit, Value: unquote(c.text(n)), Pos: pos}
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return &syntax.Literal{Kind: syntax.IntLit, Value: intValue(c.text(n)), Pos: pos}
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		return &syntax.Literal{Kind: syntax.FloatLit, Value: c.text(n), Pos: pos}
	case "true", "false":
		return &syntax.Literal{Kind: syntax.BoolLit, Value: n.Type(), Pos: pos}
	case "null_literal":
		return &syntax.Literal{Kind: syntax.NullLit, Value: "null", Pos: pos}
	case "parenthesized_expression":
		if ch := namedChildren(n); len(ch) > 0 {
			return c.expr(ch[0])
		}
	case "field_access":
		return &syntax.FieldRef{X: c.expr(field(n, "object")), Name: c.text(field(n, "field")), Pos: pos}
	case "scoped_identifier", "scoped_type_identifier":
		ch := namedChildren(n)
		if len(ch) == 2 {
			return &syntax.FieldRef{X: c.expr(ch[0]), Name: c.text(ch[1]), Pos: pos}
		}
	case "method_invocation":
		call := &syntax.Call{Name: c.text(field(n, "name")), Args: c.args(field(n, "arguments")), Pos: pos}
		if obj := field(n, "object"); obj != nil {
			call.Recv = c.expr(obj)
		}
		return call
	case "object_creation_expression":
		return &syntax.New{Type: c.text(field(n, "type")), Args: c.args(field(n, "arguments")), Pos: pos}
	case "array_creation_expression":
		arr := &syntax.NewArray{Type: c.text(field(n, "type")), Pos: pos}
		for _, ch := range namedChildren(n) {
			if ch.Type() == "dimensions_expr" {
				for _, d := range namedChildren(ch) {
					arr.Dims = append(arr.Dims, c.expr(d))
				}
			}
		}
		if v := field(n, "value"); v != nil {
			arr.Elems = c.args(v)
		}
		return arr
	case "array_initializer":
		return &syntax.NewArray{Elems: c.args(n), Pos: pos}
	case "array_access":
		return &syntax.Index{X: c.expr(field(n, "array")), Index: c.expr(field(n, "index")), Pos: pos}
	case "binary_expression":
		return &syntax.Binary{
			Op:  c.text(field(n, "operator")),
			X:   c.expr(field(n, "left")),
			Y:   c.expr(field(n, "right")),
			Pos: pos,
		}
	case "unary_expression":
		return &syntax.Unary{Op: c.text(field(n, "operator")), X: c.expr(field(n, "operand")), Pos: pos}
	case "update_expression":
		op := "++"
		if strings.Contains(c.text(n), "--") {
			op = "--"
		}
		if ch := namedChildren(n); len(ch) > 0 {
			return &syntax.Unary{Op: op, X: c.expr(ch[0]), Pos: pos}
		}
	case "ternary_expression":
		return &syntax.Cond{
			Cond: c.expr(field(n, "condition")),
			Then: c.expr(field(n, "consequence")),
			Else: c.expr(field(n, "alternative")),
			Pos:  pos,
		}
	case "cast_expression":
		return &syntax.Cast{Type: c.text(field(n, "type")), X: c.expr(field(n, "value")), Pos: pos}
	case "class_literal":
		if ch := namedChildren(n); len(ch) > 0 {
			return &syntax.ClassLit{Type: c.text(ch[0]), Pos: pos}
		}
	case "lambda_expression":
		l := &syntax.Lambda{Pos: pos}
		if params := field(n, "parameters"); params != nil {
			if params.Type() == "identifier" {
				l.Params = []syntax.Param{{Name: c.text(params), Pos: c.pos(params)}}
			} else {
				l.Params = c.params(params)
			}
		}
		if body := field(n, "body"); body != nil {
			if body.Type() == "block" {
				l.Body = c.block(body)
			} else {
				l.Body = &syntax.ExprStmt{X: c.expr(body), Pos: c.pos(body)}
			}
		}
		return l
	case "method_reference":
		return &syntax.Lambda{Pos: pos}
	case "assignment_expression":
		// assignments nested in expressions are not tracked: the value flows to the enclosing expression
		return &syntax.Opaque{Kind: n.Type(), Subs: []syntax.Expr{c.expr(field(n, "right"))}, Pos: pos}
	}
	var subs []syntax.Expr
	for _, ch := range namedChildren(n) {
		subs = append(subs, c.expr(ch))
	}
	return &syntax.Opaque{Kind: n.Type(), Subs: subs, Pos: pos}
}

// unquote returns the value of a string, text block or character literal
func unquote(lit string) string {
	if strings.HasPrefix(lit, `"""`) && strings.HasSuffix(lit, `"""`) && len(lit) >= 6 {
		body := strings.TrimPrefix(lit[3:len(lit)-3], "\n")
		return body
	}
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return lit
}

// intValue returns the decimal value of an integer literal, or the literal itself when it cannot be parsed
func intValue(lit string) string {
	s := strings.TrimRight(strings.ReplaceAll(lit, "_", ""), "lL")
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return strconv.FormatInt(v, 10)
	}
	return lit
}
