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

// Package harness implements the front-end to the fixture harness, which checks the verdicts of the scanner on
// annotated fixture files.
//
// Usage:
//
//	sinkcheck test [flags] <fixture file or directory>...
//
// In directories, the fixture files are the files matching the fixture-pattern of the config, *.test.java by
// default.
package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/awslabs/sinkcheck/analysis/config"
	"github.com/awslabs/sinkcheck/analysis/engine"
	"github.com/awslabs/sinkcheck/analysis/fixtures"
	"github.com/awslabs/sinkcheck/cmd/sinkcheck/tools"
	"github.com/awslabs/sinkcheck/frontend/java"
	"github.com/awslabs/sinkcheck/internal/formatutil"
)

// Usage is the usage of the test command
const Usage = ` Check the scanner against fixture files annotated with <expect-error> and <no-error> comments.
Usage:
  sinkcheck test [options] <fixture file or directory>...
Examples:
  % sinkcheck test checkers/java
`

// NewFlags returns the parsed flags for the harness with args.
func NewFlags(args []string) (tools.CommonFlags, error) {
	return tools.NewCommonFlags("test", args, Usage)
}

// Run runs the harness on the fixtures in the arguments of flags and prints the report.
func Run(ctx context.Context, flags tools.CommonFlags) (fixtures.Report, error) {
	cfg, err := tools.LoadConfig(flags)
	if err != nil {
		return fixtures.Report{}, err
	}
	logger := config.NewLogGroup(cfg)

	var paths []string
	for _, arg := range flags.FlagSet.Args() {
		info, err := os.Stat(arg)
		if err != nil {
			return fixtures.Report{}, fmt.Errorf("could not read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := fixtures.FindFixtures(arg, cfg.FixturePattern)
		if err != nil {
			return fixtures.Report{}, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fixtures.Report{}, fmt.Errorf("no fixture files matching %s", cfg.FixturePattern)
	}

	h := fixtures.New(java.Frontend{}, engine.New(cfg, logger))
	report, err := h.RunFiles(ctx, paths)
	if err != nil {
		return report, err
	}
	for _, f := range report.Failed {
		logger.Errorf("%s %s", formatutil.Red("FAIL"), f)
	}
	for _, e := range report.Errors {
		logger.Errorf("%s %s", formatutil.Yellow("ERROR"), e)
	}
	if report.OK() {
		logger.Infof("RESULT:\n\t\t%s", formatutil.Green(report.String()+" ✓")) // safe %s
	} else {
		logger.Errorf("RESULT:\n\t\t%s", formatutil.Red(report.String())) // safe %s
	}
	return report, nil
}
