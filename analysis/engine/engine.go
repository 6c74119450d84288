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

// Package engine schedules the analysis of units: it runs the taint tracker on every method of a unit and the
// rule matcher on every call site, and fans units out over a bounded pool of workers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/awslabs/sinkcheck/analysis/catalog"
	"github.com/awslabs/sinkcheck/analysis/config"
	"github.com/awslabs/sinkcheck/analysis/constant"
	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"github.com/awslabs/sinkcheck/analysis/taint"
	"github.com/awslabs/sinkcheck/internal/funcutil"
	"golang.org/x/sync/errgroup"
)

// ErrUnitPanicked is returned for units whose analysis panicked. The other units are not affected.
var ErrUnitPanicked = errors.New("unit analysis panicked")

// Engine analyzes units with one catalog. An Engine is read-only after New and can analyze units concurrently.
type Engine struct {
	Config  *config.Config
	Logger  *config.LogGroup
	catalog *catalog.Catalog
}

// New returns an engine with the catalog built from the config. A nil config is the default config, and a nil
// logger logs with the levels of the config.
func New(cfg *config.Config, logger *config.LogGroup) *Engine {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	return &Engine{Config: cfg, Logger: logger, catalog: catalog.New(cfg)}
}

// Catalog returns the sink catalog of the engine
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) workers() int {
	if e.Config.MaxWorkers > 0 {
		return e.Config.MaxWorkers
	}
	return config.DefaultMaxWorkers
}

type method struct {
	decl *syntax.TypeDecl
	m    *syntax.Method
}

type methodResult struct {
	findings []rules.Finding
	err      error
}

// AnalyzeUnit returns the findings of all the sink-eligible call sites of the unit, ordered by position. The symbol
// table resolves the types of the unit; when table is nil, a table of the unit alone is used.
// Methods are analyzed in parallel.
func (e *Engine) AnalyzeUnit(ctx context.Context, unit *syntax.Unit, table *symbols.Table) ([]rules.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if table == nil {
		table = symbols.NewTable(unit)
	}
	eval := constant.NewEvaluator(table)
	tracker := taint.NewTracker(table, eval, taint.WithSanitizers(func(recv string, name string) bool {
		return e.Config.IsSanitizer(config.CodeIdentifier{Receiver: recv, Method: name})
	}))
	matcher := rules.NewMatcher(e.catalog, table, rules.Options{StrictShellWrappers: e.Config.StrictShellWrappers})

	var methods []method
	for _, decl := range unit.Types {
		for _, m := range decl.Methods {
			if m.Body != nil {
				methods = append(methods, method{decl, m})
			}
		}
	}
	e.Logger.Debugf("Analyzing %s: %d types, %d methods", unit.Path, len(unit.Types), len(methods))

	results := funcutil.MapParallel(methods, func(x method) methodResult {
		if ctx.Err() != nil {
			return methodResult{}
		}
		return e.analyzeMethod(tracker, matcher, x)
	}, e.workers())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var findings []rules.Finding
	for _, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("%s: %w", unit.Path, r.err)
		}
		findings = append(findings, r.findings...)
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Pos().Before(findings[j].Pos())
	})
	return findings, nil
}

func (e *Engine) analyzeMethod(tracker *taint.Tracker, matcher *rules.Matcher, x method) (res methodResult) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Debugf("panic in %s.%s: %v\n%s", x.decl.Name, x.m.Name, r, debug.Stack())
			res = methodResult{err: fmt.Errorf("%w: in %s.%s: %v", ErrUnitPanicked, x.decl.Name, x.m.Name, r)}
		}
	}()
	state := tracker.Analyze(x.decl, x.m)
	for _, site := range state.Calls {
		if f, ok := matcher.Find(site, state); ok {
			e.Logger.Tracef("%s", f)
			res.findings = append(res.findings, f)
		}
	}
	return res
}

// UnitResult is the result of the analysis of one unit. Err is set when the analysis of the unit failed; Findings
// is then empty.
type UnitResult struct {
	Unit     *syntax.Unit
	Findings []rules.Finding
	Err      error
}

// AnalyzeUnits analyzes the units concurrently, with at most max-workers units at a time, and returns their results
// in the order of the units. All units share one symbol table, so that types declared in one unit resolve in the
// others. A failure of one unit does not stop the analysis of the others; cancelling ctx does.
func (e *Engine) AnalyzeUnits(ctx context.Context, units []*syntax.Unit) []UnitResult {
	table := symbols.NewTable(units...)
	results := make([]UnitResult, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			results[i] = e.analyzeIsolated(ctx, unit, table)
			if err := results[i].Err; err != nil && !errors.Is(err, context.Canceled) {
				e.Logger.Warnf("analysis of %s failed: %v", unit.Path, err)
			}
			return nil
		})
	}
	// unit failures are recorded in the results, the group never fails
	_ = g.Wait()
	return results
}

func (e *Engine) analyzeIsolated(ctx context.Context, unit *syntax.Unit, table *symbols.Table) (res UnitResult) {
	res.Unit = unit
	defer func() {
		if r := recover(); r != nil {
			res = UnitResult{Unit: unit, Err: fmt.Errorf("%s: %w: %v", unit.Path, ErrUnitPanicked, r)}
		}
	}()
	res.Findings, res.Err = e.AnalyzeUnit(ctx, unit, table)
	return res
}
