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
	"testing"

	"github.com/awslabs/sinkcheck/analysis/constant"
	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

func pos(line int) syntax.Pos {
	return syntax.Pos{File: "Test.java", Line: line, Column: 1}
}

func str(v string) *syntax.Literal { return &syntax.Literal{Kind: syntax.StringLit, Value: v} }
func id(name string) *syntax.Ident { return &syntax.Ident{Name: name} }

func call(recv syntax.Expr, name string, args ...syntax.Expr) *syntax.Call {
	return &syntax.Call{Recv: recv, Name: name, Args: args}
}

func decl(name, typ string, init syntax.Expr, line int) *syntax.LocalDecl {
	return &syntax.LocalDecl{Name: name, Type: typ, Init: init, Pos: pos(line)}
}

func exprStmt(x syntax.Expr) *syntax.ExprStmt { return &syntax.ExprStmt{X: x} }

// analyze runs the tracker on a method of a class Test with one String parameter "input"
func analyze(t *testing.T, fields []*syntax.Field, stmts ...syntax.Stmt) *State {
	t.Helper()
	m := &syntax.Method{
		Name:   "run",
		Params: []syntax.Param{{Name: "input", Type: "String"}},
		Body:   &syntax.Block{Stmts: stmts},
	}
	typ := &syntax.TypeDecl{Name: "Test", Fields: fields, Methods: []*syntax.Method{m}}
	table := symbols.NewTable(&syntax.Unit{Path: "Test.java", Types: []*syntax.TypeDecl{typ}})
	return NewTracker(table, constant.NewEvaluator(table)).Analyze(typ, m)
}

// last returns the last binding of name
func last(t *testing.T, s *State, name string) *Binding {
	t.Helper()
	for i := len(s.Bindings) - 1; i >= 0; i-- {
		if s.Bindings[i].Name == name {
			return s.Bindings[i]
		}
	}
	t.Fatalf("no binding for %s", name)
	return nil
}

func TestJoin(t *testing.T) {
	if Join() != Clean {
		t.Errorf("empty join should be clean")
	}
	if Join(Clean, Unknown) != Unknown {
		t.Errorf("clean join unknown should be unknown")
	}
	if Join(Unknown, Tainted, Clean) != Tainted {
		t.Errorf("join with tainted should be tainted")
	}
}

func TestParameterTaintFlowsThroughConcatenation(t *testing.T) {
	s := analyze(t, nil,
		decl("cmd", "String", &syntax.Binary{Op: "+", X: str("ls "), Y: id("input")}, 2),
		exprStmt(call(call(id("Runtime"), "getRuntime"), "exec", id("cmd"))),
	)
	if b := last(t, s, "input"); b.Origin != Parameter || s.Label(b.ID) != Tainted {
		t.Errorf("parameter should be a tainted PARAMETER binding, got %s %s", b.Origin, s.Label(b.ID))
	}
	cmd := last(t, s, "cmd")
	if s.Label(cmd.ID) != Tainted || cmd.Constant.Constant {
		t.Errorf("cmd should be tainted and not constant")
	}
	if len(s.Calls) != 2 {
		t.Fatalf("expected 2 call sites, got %d", len(s.Calls))
	}
	exec := s.Calls[1]
	if exec.Method != "exec" || exec.ReceiverType != "Runtime" {
		t.Errorf("unexpected call site %s", exec)
	}
	if exec.Args[0].Label != Tainted || exec.Args[0].Binding != cmd.ID {
		t.Errorf("exec argument should be the tainted binding of cmd")
	}
	if s.Calls[0].Order >= exec.Order {
		t.Errorf("receiver call should be evaluated before exec")
	}
}

func TestLiteralLocalsAreCleanConstants(t *testing.T) {
	s := analyze(t, nil,
		decl("name", "String", str("java:comp/env/jdbc"), 2),
		decl("copy", "var", id("name"), 3),
	)
	for _, n := range []string{"name", "copy"} {
		b := last(t, s, n)
		if s.Label(b.ID) != Clean || !b.Constant.Constant || b.Constant.Value != "java:comp/env/jdbc" {
			t.Errorf("%s should be a clean constant, got %s %+v", n, s.Label(b.ID), b.Constant)
		}
	}
	if b := last(t, s, "name"); b.Origin != Literal {
		t.Errorf("name should have a LITERAL origin, got %s", b.Origin)
	}
	if b := last(t, s, "copy"); b.DeclaredType != "String" {
		t.Errorf("var declaration should infer String, got %q", b.DeclaredType)
	}
}

func TestBranchesMergeWithUnion(t *testing.T) {
	s := analyze(t, nil,
		decl("x", "String", str("safe"), 2),
		&syntax.If{
			Cond: id("flag"),
			Then: &syntax.Assign{Target: id("x"), Op: "=", Value: id("input"), Pos: pos(4)},
			Pos:  pos(3),
		},
		exprStmt(call(id("ctx"), "lookup", id("x"))),
	)
	x := last(t, s, "x")
	if x.Origin != Derived || s.Label(x.ID) != Tainted || x.Constant.Constant {
		t.Errorf("merged binding should be a tainted, non-constant DERIVED binding, got %s %s %+v",
			x.Origin, s.Label(x.ID), x.Constant)
	}
	lookup := s.Calls[len(s.Calls)-1]
	if lookup.Args[0].Label != Tainted {
		t.Errorf("lookup argument should be tainted after the branch")
	}
	if lookup.Receiver.Label != Unknown {
		t.Errorf("unresolved receiver should be unknown, got %s", lookup.Receiver.Label)
	}
}

func TestBranchesAssigningEqualConstantsStayConstant(t *testing.T) {
	s := analyze(t, nil,
		decl("x", "String", nil, 2),
		&syntax.If{
			Cond: id("flag"),
			Then: &syntax.Assign{Target: id("x"), Op: "=", Value: str("a")},
			Else: &syntax.Assign{Target: id("x"), Op: "=", Value: str("a")},
		},
	)
	x := last(t, s, "x")
	if s.Label(x.ID) != Clean || !x.Constant.Constant || x.Constant.Value != "a" {
		t.Errorf("x should be the constant \"a\", got %s %+v", s.Label(x.ID), x.Constant)
	}
}

func TestMutatorCreatesNewReceiverVersion(t *testing.T) {
	s := analyze(t, nil,
		decl("sb", "StringBuilder", &syntax.New{Type: "StringBuilder"}, 2),
		exprStmt(call(id("sb"), "append", str("ls "))),
		exprStmt(call(id("sb"), "append", id("input"))),
		exprStmt(call(id("sb"), "toString")),
	)
	var versions []*Binding
	for _, b := range s.Bindings {
		if b.Name == "sb" {
			versions = append(versions, b)
		}
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions of sb, got %d", len(versions))
	}
	if s.Label(versions[1].ID) != Clean || s.Label(versions[2].ID) != Tainted {
		t.Errorf("sb should be clean after a literal append and tainted after appending input")
	}
	if versions[2].Version != 2 {
		t.Errorf("expected version 2, got %d", versions[2].Version)
	}
	toString := s.Calls[len(s.Calls)-1]
	if toString.Receiver.Label != Tainted {
		t.Errorf("toString receiver should be tainted")
	}
}

func TestFieldsAndUnresolvedNames(t *testing.T) {
	fields := []*syntax.Field{
		{Name: "NAME", Type: "String", Final: true, Static: true, Init: str("java:comp/env")},
		{Name: "mutable", Type: "String", Init: str("x")},
	}
	s := analyze(t, fields,
		exprStmt(call(id("ctx"), "lookup", id("NAME"))),
		exprStmt(call(id("ctx"), "lookup", id("mutable"))),
		exprStmt(call(id("ctx"), "lookup", id("nowhere"))),
	)
	want := []Label{Clean, Unknown, Unknown}
	for i, c := range s.Calls {
		if c.Args[0].Label != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], c.Args[0].Label)
		}
	}
	if !s.Calls[0].Args[0].Constant.Constant {
		t.Errorf("final field with literal initializer should be constant")
	}
}

func TestCallResults(t *testing.T) {
	s := analyze(t, nil,
		decl("a", "String", call(id("helper"), "get", id("input")), 2),
		decl("b", "String", call(id("helper"), "get"), 3),
		decl("c", "int", call(id("Integer"), "parseInt", id("input")), 4),
	)
	for name, want := range map[string]Label{"a": Tainted, "b": Unknown, "c": Clean} {
		b := last(t, s, name)
		if s.Label(b.ID) != want {
			t.Errorf("%s: expected %s, got %s", name, want, s.Label(b.ID))
		}
		if b.Origin != CallResult {
			t.Errorf("%s: expected CALL_RESULT origin, got %s", name, b.Origin)
		}
	}
	for _, c := range s.Calls {
		if c.Target == NoBinding {
			t.Errorf("%s: declared result should be the target of the call", c)
		}
	}
}

func TestCallTargets(t *testing.T) {
	s := analyze(t, nil,
		decl("dbf", "DocumentBuilderFactory", call(id("DocumentBuilderFactory"), "newInstance"), 2),
		exprStmt(call(id("dbf"), "setFeature", str("f"), &syntax.Literal{Kind: syntax.BoolLit, Value: "true"})),
	)
	newInstance, setFeature := s.Calls[0], s.Calls[1]
	if newInstance.Target != last(t, s, "dbf").ID {
		t.Errorf("newInstance result should be assigned to dbf")
	}
	if setFeature.Target != NoBinding {
		t.Errorf("setFeature has no target")
	}
	if setFeature.Receiver.Binding != newInstance.Target {
		t.Errorf("setFeature receiver should be the dbf binding")
	}
	if setFeature.ReceiverType != "DocumentBuilderFactory" {
		t.Errorf("unexpected receiver type %q", setFeature.ReceiverType)
	}
	if v := setFeature.Args[1].Constant; !v.Constant || v.Value != "true" {
		t.Errorf("boolean literal argument should be the constant true")
	}
}

func TestLambdaParametersAreTainted(t *testing.T) {
	s := analyze(t, nil,
		exprStmt(call(id("list"), "forEach", &syntax.Lambda{
			Params: []syntax.Param{{Name: "item"}},
			Body:   exprStmt(call(id("ctx"), "lookup", id("item"))),
		})),
	)
	var lookup *CallSite
	for _, c := range s.Calls {
		if c.Method == "lookup" {
			lookup = c
		}
	}
	if lookup == nil {
		t.Fatalf("lookup in lambda body not recorded")
	}
	if lookup.Args[0].Label != Tainted {
		t.Errorf("lambda parameter should be tainted")
	}
	if _, ok := s.Calls[len(s.Calls)-1].Env["item"]; ok {
		t.Errorf("lambda parameter should not escape the lambda")
	}
}

func TestTryCatchAndArrays(t *testing.T) {
	s := analyze(t, nil,
		decl("cmd", "String[]", &syntax.NewArray{Type: "String", Elems: []syntax.Expr{str("ls"), str("-l")}}, 2),
		&syntax.Try{
			Body: &syntax.Block{Stmts: []syntax.Stmt{
				&syntax.Assign{Target: &syntax.Index{X: id("cmd"), Index: &syntax.Literal{Kind: syntax.IntLit, Value: "1"}},
					Op: "=", Value: id("input")},
			}},
			Catches: []*syntax.Catch{{Param: syntax.Param{Name: "e", Type: "IOException"}, Body: &syntax.Block{}}},
		},
	)
	cmd := last(t, s, "cmd")
	if s.Label(cmd.ID) != Tainted || cmd.Constant.Constant {
		t.Errorf("storing input into the array should taint it")
	}
	var first *Binding
	for _, b := range s.Bindings {
		if b.Name == "cmd" {
			first = b
			break
		}
	}
	if !first.Constant.Constant || s.Label(first.ID) != Clean {
		t.Errorf("array of literals should be a clean constant")
	}
}

func TestCatchSeesAssignmentsBeforeTheTry(t *testing.T) {
	s := analyze(t, nil,
		decl("n", "String", id("input"), 2),
		&syntax.Try{
			Body: &syntax.Block{Stmts: []syntax.Stmt{
				exprStmt(call(nil, "risky")),
				&syntax.Assign{Target: id("n"), Op: "=", Value: str("java:comp/env")},
			}},
			Catches: []*syntax.Catch{{
				Param: syntax.Param{Name: "e", Type: "Exception"},
				Body:  &syntax.Block{Stmts: []syntax.Stmt{exprStmt(call(nil, "log", id("e")))}},
			}},
		},
		exprStmt(call(call(nil, "ctx"), "lookup", id("n"))),
	)
	lookup := s.Calls[len(s.Calls)-1]
	if lookup.Method != "lookup" {
		t.Fatalf("unexpected last call %s", lookup)
	}
	if lookup.Args[0].Label != Tainted || lookup.Args[0].Constant.Constant {
		t.Errorf("the parameter may reach the lookup through the catch clause, got %s %+v",
			lookup.Args[0].Label, lookup.Args[0].Constant)
	}
}

func TestConditionalBetweenConstants(t *testing.T) {
	s := analyze(t, nil,
		decl("n", "String", &syntax.Cond{Cond: id("input"), Then: str("java:a"), Else: str("java:b")}, 2),
		decl("m", "String", &syntax.Cond{Cond: id("input"), Then: str("java:a"), Else: id("input")}, 3),
	)
	n := last(t, s, "n")
	if s.Label(n.ID) != Clean || !n.Constant.Constant || n.Constant.HasValue {
		t.Errorf("choosing between two literals should be a clean constant without value, got %s %+v",
			s.Label(n.ID), n.Constant)
	}
	m := last(t, s, "m")
	if s.Label(m.ID) != Tainted || m.Constant.Constant {
		t.Errorf("a tainted branch should taint the result, got %s %+v", s.Label(m.ID), m.Constant)
	}
}

func TestAllocatedSubtypeIsTheReceiverType(t *testing.T) {
	m := &syntax.Method{
		Name:   "run",
		Params: []syntax.Param{{Name: "in", Type: "InputStream"}},
		Body: &syntax.Block{Stmts: []syntax.Stmt{
			decl("ois", "ObjectInputStream", &syntax.New{Type: "SafeObjectInputStream", Args: []syntax.Expr{id("in")}}, 2),
			exprStmt(call(id("ois"), "readObject")),
			decl("other", "Object", &syntax.New{Type: "Unrelated"}, 4),
			exprStmt(call(id("other"), "hashCode")),
		}},
	}
	typ := &syntax.TypeDecl{Name: "Test", Methods: []*syntax.Method{m}}
	safe := &syntax.TypeDecl{Name: "SafeObjectInputStream", Super: "ObjectInputStream"}
	table := symbols.NewTable(&syntax.Unit{Path: "Test.java", Types: []*syntax.TypeDecl{typ, safe}})
	s := NewTracker(table, constant.NewEvaluator(table)).Analyze(typ, m)

	types := map[string]string{}
	for _, c := range s.Calls {
		types[c.Method] = c.ReceiverType
	}
	if types["readObject"] != "SafeObjectInputStream" {
		t.Errorf("readObject should be called on the allocated subtype, got %q", types["readObject"])
	}
	if types["hashCode"] != "Object" {
		t.Errorf("an allocated type that is not a known subtype should not replace the declared type, got %q",
			types["hashCode"])
	}
}

func TestInitializerMethodTracksFinalFields(t *testing.T) {
	clinit := &syntax.Method{
		Name: syntax.InitializerMethod,
		Body: &syntax.Block{Stmts: []syntax.Stmt{
			&syntax.Assign{Target: id("DBF"), Op: "=", Value: call(id("DocumentBuilderFactory"), "newInstance"), Pos: pos(2)},
			&syntax.Block{Stmts: []syntax.Stmt{
				exprStmt(call(id("DBF"), "setFeature", str("http://apache.org/xml/features/disallow-doctype-decl"),
					&syntax.Literal{Kind: syntax.BoolLit, Value: "true"})),
				exprStmt(call(&syntax.FieldRef{X: id("Test"), Name: "DBF"}, "setExpandEntityReferences",
					&syntax.Literal{Kind: syntax.BoolLit, Value: "false"})),
			}},
		}},
	}
	fields := []*syntax.Field{{Name: "DBF", Type: "DocumentBuilderFactory", Final: true, Static: true}}
	typ := &syntax.TypeDecl{Name: "Test", Fields: fields, Methods: []*syntax.Method{clinit}}
	table := symbols.NewTable(&syntax.Unit{Path: "Test.java", Types: []*syntax.TypeDecl{typ}})
	s := NewTracker(table, constant.NewEvaluator(table)).Analyze(typ, clinit)

	dbf := last(t, s, "DBF")
	if len(s.Calls) != 3 {
		t.Fatalf("expected 3 call sites, got %d", len(s.Calls))
	}
	if s.Calls[0].Target != dbf.ID {
		t.Errorf("the factory should be assigned to the field binding")
	}
	for _, c := range s.Calls[1:] {
		if c.Receiver.Binding != dbf.ID {
			t.Errorf("%s should be called on the field binding", c)
		}
	}
}
