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
	"fmt"
	"sort"

	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// Reasons of the harness errors
const (
	ReasonUnmatchedMarker    = "unmatched marker"
	ReasonUnannotatedFinding = "unannotated finding"
	ReasonAnalysisFailed     = "analysis failed"
)

// Failure is a marker whose expectation is not met by the verdict of its call site
type Failure struct {
	// Location is the position of the call site
	Location syntax.Pos
	Marker   Marker
	Expected rules.Verdict
	Actual   rules.Verdict
	// Reason is the reason of the finding that decided the verdict
	Reason string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: expected %s, got %s (%s; marker at line %d)",
		f.Location, f.Expected, f.Actual, f.Reason, f.Marker.Pos.Line)
}

// Error is a marker or a finding the harness could not pair, or a file that could not be analyzed
type Error struct {
	Location syntax.Pos
	Reason   string
}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Reason)
}

// Report is the result of the harness on one or more fixture files
type Report struct {
	Files        int
	TotalMarkers int
	Passed       int
	Failed       []Failure
	Errors       []Error
}

// OK returns true if the report has no failure and no error
func (r Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Errors) == 0
}

// Merge adds the results of other to r
func (r *Report) Merge(other Report) {
	r.Files += other.Files
	r.TotalMarkers += other.TotalMarkers
	r.Passed += other.Passed
	r.Failed = append(r.Failed, other.Failed...)
	r.Errors = append(r.Errors, other.Errors...)
}

func (r Report) String() string {
	return fmt.Sprintf("%d files, %d markers: %d passed, %d failed, %d errors",
		r.Files, r.TotalMarkers, r.Passed, len(r.Failed), len(r.Errors))
}

// line is the verdict of one source line holding findings
type line struct {
	number  int
	finding rules.Finding // the first flagged finding, or the first finding if none is flagged
	paired  bool
}

func (l *line) verdict() rules.Verdict {
	return l.finding.Verdict
}

// Check pairs the markers of one file with the findings of the file and returns the report. Each marker owns the
// lines from its own line up to the next marker, and is paired with the first line of that region that holds
// findings.
func Check(markers []Marker, findings []rules.Finding) Report {
	report := Report{Files: 1, TotalMarkers: len(markers)}

	byLine := map[int]*line{}
	for _, f := range findings {
		n := f.Pos().Line
		l, ok := byLine[n]
		if !ok {
			byLine[n] = &line{number: n, finding: f}
		} else if f.Flagged() && !l.finding.Flagged() {
			l.finding = f
		}
	}
	lines := make([]*line, 0, len(byLine))
	for _, l := range byLine {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].number < lines[j].number })

	sorted := append([]Marker(nil), markers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos.Line < sorted[j].Pos.Line })

	for i, m := range sorted {
		end := -1
		if i+1 < len(sorted) {
			end = sorted[i+1].Pos.Line
		}
		l := firstLine(lines, m.Pos.Line, end)
		if l == nil {
			report.Errors = append(report.Errors, Error{Location: m.Pos, Reason: ReasonUnmatchedMarker + " " + m.Kind.String()})
			continue
		}
		l.paired = true
		if l.verdict() == m.Kind.Verdict() {
			report.Passed++
			continue
		}
		report.Failed = append(report.Failed, Failure{
			Location: l.finding.Pos(),
			Marker:   m,
			Expected: m.Kind.Verdict(),
			Actual:   l.verdict(),
			Reason:   l.finding.Reason,
		})
	}

	for _, l := range lines {
		if !l.paired && l.finding.Flagged() {
			report.Errors = append(report.Errors, Error{
				Location: l.finding.Pos(),
				Reason:   fmt.Sprintf("%s: %s", ReasonUnannotatedFinding, l.finding.SinkID),
			})
		}
	}
	sort.SliceStable(report.Errors, func(i, j int) bool {
		return report.Errors[i].Location.Before(report.Errors[j].Location)
	})
	return report
}

// firstLine returns the first line in [start, end) holding findings; end < 0 means no end
func firstLine(lines []*line, start, end int) *line {
	i := sort.Search(len(lines), func(i int) bool { return lines[i].number >= start })
	if i < len(lines) && (end < 0 || lines[i].number < end) {
		return lines[i]
	}
	return nil
}
