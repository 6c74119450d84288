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

// Package scan implements the front-end to the sinkcheck scanner, which reports the sink calls of Java source files
// that are vulnerable to JNDI injection, command injection, unsafe deserialization or XXE.
//
// Usage:
//
//	sinkcheck scan [flags] <file or directory>...
//
// The flags are:
//
//	-config path      a path to the configuration file adding sinks, safe APIs and sanitizers
//
//	-all=false        print the cleared sink calls too
//
//	-no-skip=false    report the findings suppressed by skipcq comments
//
//	-sarif path       also write the flagged sink calls as a SARIF log to path
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awslabs/sinkcheck/analysis/config"
	"github.com/awslabs/sinkcheck/analysis/engine"
	"github.com/awslabs/sinkcheck/analysis/fixtures"
	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"github.com/awslabs/sinkcheck/cmd/sinkcheck/tools"
	"github.com/awslabs/sinkcheck/frontend/java"
	"github.com/awslabs/sinkcheck/internal/formatutil"
	"github.com/awslabs/sinkcheck/internal/funcutil"
	"github.com/awslabs/sinkcheck/internal/sarif"
)

// Usage is the usage of the scan command
const Usage = ` Scan Java source files for vulnerable sink calls.
Usage:
  sinkcheck scan [options] <file or directory>...
Examples:
  % sinkcheck scan -config config.yaml src/main/java
  % sinkcheck scan -sarif results.sarif src/main/java
`

// Flags represents the parsed flags for the scan.
type Flags struct {
	tools.CommonFlags
	all       bool
	noSkip    bool
	sarifPath string
}

// NewFlags returns the parsed flags for the scan with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("scan")
	all := flags.FlagSet.Bool("all", false, "print the cleared sink calls too")
	noSkip := flags.FlagSet.Bool("no-skip", false, "report the findings suppressed by skipcq comments")
	sarifPath := flags.FlagSet.String("sarif", "", "write the flagged sink calls as a SARIF log to this file")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, all: *all, noSkip: *noSkip, sarifPath: *sarifPath}, nil
}

type source struct {
	path string
	src  []byte
	unit *syntax.Unit
	err  error
}

// Result summarizes a scan
type Result struct {
	Files   int
	Flagged int
	Cleared int
	Failed  int
}

// Run scans the files and directories in the arguments of flags.
func Run(ctx context.Context, flags Flags) (Result, error) {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return Result{}, err
	}
	logger := config.NewLogGroup(cfg)
	logger.Infof("%s", formatutil.Faint("sinkcheck scan - "+tools.Version))

	paths, err := expandPaths(flags.FlagSet.Args())
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, fmt.Errorf("no Java source files to scan")
	}
	logger.Infof("%s", formatutil.Faint(fmt.Sprintf("Reading %d sources", len(paths))))

	start := time.Now()
	sources := funcutil.MapParallel(paths, func(path string) source {
		s := source{path: path}
		s.src, s.err = os.ReadFile(path)
		if s.err == nil {
			s.unit, s.err = java.Parse(ctx, path, s.src)
		}
		return s
	}, cfg.MaxWorkers)

	res := Result{Files: len(sources)}
	var units []*syntax.Unit
	skips := map[string][]fixtures.Suppression{}
	for _, s := range sources {
		if s.err != nil {
			// the file is not analyzed, the others are
			logger.Errorf("%s: %v", s.path, s.err)
			if hint := tools.HintForErrorMessage(s.err.Error()); hint != "" {
				logger.Errorf("Hint: %s", hint)
			}
			res.Failed++
			continue
		}
		units = append(units, s.unit)
		if !flags.noSkip {
			skips[s.path] = fixtures.ParseSuppressions(s.unit.Comments)
		}
	}

	var log *sarif.Writer
	if flags.sarifPath != "" {
		out, err := os.Create(flags.sarifPath)
		if err != nil {
			return res, fmt.Errorf("could not create SARIF output: %w", err)
		}
		defer out.Close()
		log = sarif.NewWriter(out, tools.Version)
	}

	eng := engine.New(cfg, logger)
	for _, r := range eng.AnalyzeUnits(ctx, units) {
		if r.Err != nil {
			res.Failed++
			continue
		}
		for _, f := range r.Findings {
			suppressed := fixtures.Suppressed(f, skips[r.Unit.Path])
			if log != nil {
				log.Add(f, suppressed)
			}
			if suppressed {
				continue
			}
			report(logger, f, flags.all || cfg.Verbose())
			if f.Flagged() {
				res.Flagged++
			} else {
				res.Cleared++
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if log != nil {
		if err := log.Close(); err != nil {
			return res, err
		}
		logger.Infof("Wrote %d results to %s", log.Len(), flags.sarifPath)
	}

	logger.Infof("")
	logger.Infof("%s", strings.Repeat("*", 80))
	logger.Infof("Analysis took %3.4f s", time.Since(start).Seconds())
	logger.Infof("%d files, %d sink calls flagged, %d cleared, %d files failed",
		res.Files, res.Flagged, res.Cleared, res.Failed)
	if res.Flagged == 0 {
		logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No vulnerable sink call detected ✓")) // safe %s
	} else {
		logger.Errorf("RESULT:\n\t\t%s", formatutil.Red("Vulnerable sink calls detected!")) // safe %s
	}
	return res, nil
}

func report(logger *config.LogGroup, f rules.Finding, all bool) {
	if f.Flagged() {
		logger.Warnf("%s %s\n\t%s: %s [%s]\n", formatutil.Red("Vulnerable call to"), f.Site,
			f.Pos(), formatutil.Sanitize(f.Message), f.Reason) // safe %s
	} else if all {
		logger.Infof("%s %s\n\t%s [%s]\n", formatutil.Green("Safe call to"), f.Site, f.Pos(), f.Reason)
	}
}

// expandPaths returns the files in paths, replacing directories by the Java files they contain
func expandPaths(paths []string) ([]string, error) {
	var res []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", p, err)
		}
		if !info.IsDir() {
			res = append(res, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".java") {
				res = append(res, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("could not list %s: %w", p, err)
		}
	}
	return res, nil
}
