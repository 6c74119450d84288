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

package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/awslabs/sinkcheck/analysis/config"
	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

func at(line int) syntax.Pos { return syntax.Pos{File: "T.java", Line: line, Column: 5} }

func lookupMethod(name string, arg syntax.Expr, line int) *syntax.Method {
	return &syntax.Method{
		Name:   name,
		Params: []syntax.Param{{Name: "input", Type: "String"}},
		Body: &syntax.Block{Stmts: []syntax.Stmt{
			&syntax.LocalDecl{Name: "ctx", Type: "Context", Init: &syntax.New{Type: "InitialContext", Pos: at(line - 1)}},
			&syntax.ExprStmt{X: &syntax.Call{
				Recv: &syntax.Ident{Name: "ctx"},
				Name: "lookup",
				Args: []syntax.Expr{arg},
				Pos:  at(line),
			}},
		}},
	}
}

func unit(path string, methods ...*syntax.Method) *syntax.Unit {
	return &syntax.Unit{Path: path, Types: []*syntax.TypeDecl{{Name: "T", Methods: methods}}}
}

func quietEngine(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(&bytes.Buffer{})
	return New(cfg, logger)
}

func TestAnalyzeUnitOrdersFindings(t *testing.T) {
	u := unit("T.java",
		lookupMethod("late", &syntax.Ident{Name: "input"}, 20),
		lookupMethod("early", &syntax.Literal{Kind: syntax.StringLit, Value: "java:comp/env"}, 10),
		&syntax.Method{Name: "abstractMethod"},
	)
	findings, err := quietEngine(nil).AnalyzeUnit(context.Background(), u, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Pos().Line != 10 || findings[0].Verdict != rules.Clear {
		t.Errorf("expected a clear finding on line 10 first, got %s", findings[0])
	}
	if findings[1].Pos().Line != 20 || findings[1].Verdict != rules.Flag {
		t.Errorf("expected a flag on line 20, got %s", findings[1])
	}
}

func TestSanitizersFromConfig(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(`
sanitizers:
  - receiver: "Names"
    method: "check.*"
`))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	sanitized := &syntax.Call{
		Recv: &syntax.Ident{Name: "Names"},
		Name: "checkResource",
		Args: []syntax.Expr{&syntax.Ident{Name: "input"}},
	}
	findings, err := quietEngine(cfg).AnalyzeUnit(context.Background(), unit("T.java", lookupMethod("m", sanitized, 3)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].Verdict != rules.Clear {
		t.Errorf("sanitized lookup should be cleared, got %v", findings)
	}
}

func TestAnalyzeUnitsIsolatesFailures(t *testing.T) {
	broken := &syntax.Method{
		Name: "broken",
		// a nil catch clause is not a valid tree
		Body: &syntax.Block{Stmts: []syntax.Stmt{&syntax.Try{Body: &syntax.Block{}, Catches: []*syntax.Catch{nil}}}},
	}
	units := []*syntax.Unit{
		unit("Broken.java", broken),
		unit("Ok.java", lookupMethod("m", &syntax.Ident{Name: "input"}, 4)),
	}
	results := quietEngine(nil).AnalyzeUnits(context.Background(), units)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !errors.Is(results[0].Err, ErrUnitPanicked) {
		t.Errorf("expected the broken unit to fail with ErrUnitPanicked, got %v", results[0].Err)
	}
	if len(results[0].Findings) != 0 {
		t.Errorf("failed unit should have no findings")
	}
	if results[1].Err != nil || len(results[1].Findings) != 1 || !results[1].Findings[0].Flagged() {
		t.Errorf("second unit should be analyzed normally, got %+v", results[1])
	}
	if results[1].Unit != units[1] {
		t.Errorf("results should be in the order of the units")
	}
}

func TestAnalyzeUnitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietEngine(nil).AnalyzeUnit(ctx, unit("T.java", lookupMethod("m", &syntax.Ident{Name: "input"}, 4)), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDisabledFamily(t *testing.T) {
	cfg := config.NewDefault()
	cfg.DisabledFamilies = []string{config.FamilyJNDILookup}
	findings, err := quietEngine(cfg).AnalyzeUnit(context.Background(),
		unit("T.java", lookupMethod("m", &syntax.Ident{Name: "input"}, 4)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("disabled family should not produce findings, got %v", findings)
	}
}
