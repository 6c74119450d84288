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

package constant

import (
	"testing"

	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// testScope has locals with a type and optional constant information
type testScope struct {
	types  map[string]string
	infos  map[string]Info
	parent *syntax.TypeDecl
}

func (s testScope) LocalType(name string) (string, bool) {
	t, ok := s.types[name]
	return t, ok
}

func (s testScope) Local(name string) (Info, bool) {
	if _, ok := s.types[name]; !ok {
		return NotConstant, false
	}
	return s.infos[name], true
}

func (s testScope) Enclosing() *syntax.TypeDecl { return s.parent }

func str(v string) *syntax.Literal { return &syntax.Literal{Kind: syntax.StringLit, Value: v} }
func num(v string) *syntax.Literal { return &syntax.Literal{Kind: syntax.IntLit, Value: v} }
func id(name string) *syntax.Ident { return &syntax.Ident{Name: name} }
func plus(x, y syntax.Expr) syntax.Expr {
	return &syntax.Binary{Op: "+", X: x, Y: y}
}

func field(name string, final bool, init syntax.Expr) *syntax.Field {
	return &syntax.Field{Name: name, Type: "String", Final: final, Static: true, Init: init}
}

func setup() (*Evaluator, testScope) {
	config := &syntax.TypeDecl{
		Name: "Config",
		Fields: []*syntax.Field{
			field("DB_JNDI", true, str("java:comp/env/jdbc/myDB")),
			field("PREFIX", true, plus(str("java:"), str("comp/"))),
			field("FULL", true, plus(id("PREFIX"), str("env"))),
			field("MUTABLE", false, str("x")),
			field("NO_INIT", true, nil),
			field("A", true, id("B")),
			field("B", true, id("A")),
			field("FROM_CALL", true, &syntax.Call{Recv: id("System"), Name: "getenv", Args: []syntax.Expr{str("X")}}),
			field("DTD", true, &syntax.FieldRef{X: id("XMLConstants"), Name: "ACCESS_EXTERNAL_DTD"}),
		},
	}
	other := &syntax.TypeDecl{
		Name:   "Other",
		Fields: []*syntax.Field{field("REMOTE", true, &syntax.FieldRef{X: id("Config"), Name: "FULL"})},
	}
	table := symbols.NewTable(&syntax.Unit{Path: "Config.java", Types: []*syntax.TypeDecl{config, other}})
	s := testScope{
		types:  map[string]string{"lit": "String", "param": "String", "sb": "StringBuilder"},
		infos:  map[string]Info{"lit": constantWith("ls")},
		parent: config,
	}
	return NewEvaluator(table), s
}

func TestEval(t *testing.T) {
	e, s := setup()
	tests := []struct {
		name  string
		expr  syntax.Expr
		want  bool
		value string
	}{
		{"string literal", str("java:comp/env"), true, "java:comp/env"},
		{"concatenation of literals", plus(str("ping "), str("-c")), true, "ping -c"},
		{"integer addition", plus(num("1"), num("2")), true, "3"},
		{"string and integer", plus(str("v"), num("2")), true, "v2"},
		{"constant local", plus(id("lit"), str(" -la")), true, "ls -la"},
		{"parameter", id("param"), false, ""},
		{"concatenation with a parameter", plus(str("ping "), id("param")), false, ""},
		{"final field", id("DB_JNDI"), true, "java:comp/env/jdbc/myDB"},
		{"field built from fields", id("FULL"), true, "java:comp/env"},
		{"qualified field", &syntax.FieldRef{X: id("Other"), Name: "REMOTE"}, true, "java:comp/env"},
		{"this field", &syntax.FieldRef{X: id("this"), Name: "PREFIX"}, true, "java:comp/"},
		{"non-final field", id("MUTABLE"), false, ""},
		{"field without initializer", id("NO_INIT"), false, ""},
		{"cyclic fields", id("A"), false, ""},
		{"field from a call", id("FROM_CALL"), false, ""},
		{"library constant", id("DTD"), true, "http://javax.xml.XMLConstants/property/accessExternalDTD"},
		{"unresolved name", id("unknown"), false, ""},
		{"negation", &syntax.Unary{Op: "-", X: num("4")}, true, "-4"},
		{"cast", &syntax.Cast{Type: "String", X: str("x")}, true, "x"},
		{"constant condition", &syntax.Cond{Cond: &syntax.Literal{Kind: syntax.BoolLit, Value: "true"}, Then: str("a"), Else: str("b")}, true, "a"},
		{"equal branches", &syntax.Cond{Cond: id("param"), Then: str("a"), Else: str("a")}, true, "a"},
		{"non-constant branch", &syntax.Cond{Cond: id("param"), Then: str("a"), Else: id("param")}, false, ""},
		{"string valueOf", &syntax.Call{Recv: id("String"), Name: "valueOf", Args: []syntax.Expr{num("7")}}, true, "7"},
		{"string method on constant", &syntax.Call{Recv: str(" LS "), Name: "trim"}, true, "LS"},
		{"string join", &syntax.Call{Recv: id("String"), Name: "join", Args: []syntax.Expr{str(" "), str("ls"), str("-la")}}, true, "ls -la"},
		{"string method on parameter", &syntax.Call{Recv: id("param"), Name: "trim"}, false, ""},
		{"other call", &syntax.Call{Name: "getResourceName"}, false, ""},
		{"new string", &syntax.New{Type: "String", Args: []syntax.Expr{str("x")}}, true, "x"},
		{"other new", &syntax.New{Type: "File", Args: []syntax.Expr{str("x")}}, false, ""},
	}
	for _, tt := range tests {
		info := e.Eval(tt.expr, s)
		if info.Constant != tt.want {
			t.Errorf("%s: expected constant=%v, got %v", tt.name, tt.want, info.Constant)
			continue
		}
		if v, ok := e.Value(tt.expr, s); tt.want && (!ok || v != tt.value) {
			t.Errorf("%s: expected value %q, got %q (known: %v)", tt.name, tt.value, v, ok)
		}
	}
}

func TestConstantWithoutValue(t *testing.T) {
	e, s := setup()
	for _, x := range []syntax.Expr{
		&syntax.Literal{Kind: syntax.NullLit, Value: "null"},
		&syntax.ClassLit{Type: "String"},
		&syntax.NewArray{Type: "String", Elems: []syntax.Expr{str("ls"), str("-la")}},
		&syntax.Cond{Cond: id("param"), Then: str("java:a"), Else: str("java:b")},
	} {
		if !e.IsConstant(x, s) {
			t.Errorf("%T should be constant", x)
		}
		if _, ok := e.Value(x, s); ok {
			t.Errorf("%T should have no known value", x)
		}
	}
	array := &syntax.NewArray{Type: "String", Elems: []syntax.Expr{str("ls"), id("param")}}
	if e.IsConstant(array, s) {
		t.Errorf("an array with a non-constant element is not constant")
	}
}

func TestLocalShadowsField(t *testing.T) {
	e, s := setup()
	s.types["DB_JNDI"] = "String"
	if e.IsConstant(id("DB_JNDI"), s) {
		t.Errorf("a non-constant local shadows the constant field")
	}
}

func TestFieldInfo(t *testing.T) {
	e, s := setup()
	full := s.parent.Field("FULL")
	if info := e.Field(full); !info.Constant || info.Value != "java:comp/env" {
		t.Errorf("unexpected information for FULL: %+v", info)
	}
	if info := e.Field(s.parent.Field("B")); info.Constant {
		t.Errorf("fields in a cycle are not constant")
	}
}
