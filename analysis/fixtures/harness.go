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

package fixtures

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/awslabs/sinkcheck/analysis/config"
	"github.com/awslabs/sinkcheck/analysis/engine"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"
)

// A Frontend parses the source of a file into a unit
type Frontend interface {
	Parse(ctx context.Context, path string, src []byte) (*syntax.Unit, error)
	// Comments returns the comments of the source, even when it does not parse
	Comments(ctx context.Context, path string, src []byte) ([]syntax.Comment, error)
}

// Harness runs the engine on fixture files and checks the findings against the markers
type Harness struct {
	frontend Frontend
	engine   *engine.Engine
	logger   *config.LogGroup
}

// New returns a harness parsing fixtures with frontend and analyzing them with eng
func New(frontend Frontend, eng *engine.Engine) *Harness {
	return &Harness{frontend: frontend, engine: eng, logger: eng.Logger}
}

// Run checks the fixture src of the file at path. Each fixture is analyzed on its own: types declared in other
// fixtures are not visible.
func (h *Harness) Run(ctx context.Context, path string, src []byte) Report {
	unit, err := h.frontend.Parse(ctx, path, src)
	if err != nil {
		comments, _ := h.frontend.Comments(ctx, path, src)
		return failed(path, ParseMarkers(comments), err)
	}
	markers := ParseMarkers(unit.Comments)
	findings, err := h.engine.AnalyzeUnit(ctx, unit, nil)
	if err != nil {
		return failed(path, markers, err)
	}
	findings = FilterSuppressed(findings, ParseSuppressions(unit.Comments))
	report := Check(markers, findings)
	h.logger.Debugf("%s: %s", path, report)
	return report
}

func failed(path string, markers []Marker, err error) Report {
	return Report{
		Files:        1,
		TotalMarkers: len(markers),
		Errors:       []Error{{Location: syntax.Pos{File: path}, Reason: fmt.Sprintf("%s: %v", ReasonAnalysisFailed, err)}},
	}
}

// RunFiles checks the fixture files at paths concurrently and returns the merged report, in the order of the paths.
// The error is non-nil only when ctx is cancelled; files that cannot be read or analyzed are errors of the report.
func (h *Harness) RunFiles(ctx context.Context, paths []string) (Report, error) {
	reports := make([]Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				reports[i] = failed(path, nil, err)
				return nil
			}
			reports[i] = h.Run(gctx, path, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	var report Report
	for _, r := range reports {
		report.Merge(r)
	}
	h.logger.Infof("Fixtures: %s", report)
	return report, nil
}

// RunArchive checks every file of the archive as a fixture, sequentially
func (h *Harness) RunArchive(ctx context.Context, archive *txtar.Archive) (Report, error) {
	var report Report
	for _, f := range archive.Files {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		report.Merge(h.Run(ctx, f.Name, f.Data))
	}
	return report, nil
}

func (h *Harness) workers() int {
	if n := h.engine.Config.MaxWorkers; n > 0 {
		return n
	}
	return config.DefaultMaxWorkers
}

// FindFixtures returns the files under dir whose base name matches the glob pattern, sorted
func FindFixtures(dir string, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid fixture pattern %q: %w", pattern, err)
	}
	var res []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			res = append(res, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list fixtures in %s: %w", dir, err)
	}
	sort.Strings(res)
	return res, nil
}
