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

// Package fixtures implements the fixture harness: it checks the verdicts of the engine on annotated source files
// against the markers in their comments.
//
// A line comment containing <expect-error> marks the next sink call as a vulnerability, and a line comment
// containing <no-error> marks it as safe. The spellings <expect error> and <no error> are accepted, in any case.
package fixtures

import (
	"regexp"
	"strings"

	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// MarkerKind is the expectation of a marker
type MarkerKind int

const (
	ExpectError MarkerKind = iota
	NoError
)

func (k MarkerKind) String() string {
	if k == ExpectError {
		return "<expect-error>"
	}
	return "<no-error>"
}

// Verdict returns the verdict a marker of kind k expects
func (k MarkerKind) Verdict() rules.Verdict {
	if k == ExpectError {
		return rules.Flag
	}
	return rules.Clear
}

// Marker is one marker comment of a fixture
type Marker struct {
	Kind MarkerKind
	Pos  syntax.Pos
}

var markerRegex = regexp.MustCompile(`(?i)<\s*(expect[- ]error|no[- ]error)\s*>`)

// ParseMarkers returns the markers in the line comments among comments, in source order
func ParseMarkers(comments []syntax.Comment) []Marker {
	var markers []Marker
	for _, c := range comments {
		if !c.IsLine() {
			continue
		}
		m := markerRegex.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}
		kind := NoError
		if strings.HasPrefix(strings.ToLower(m[1]), "expect") {
			kind = ExpectError
		}
		markers = append(markers, Marker{Kind: kind, Pos: c.Pos})
	}
	return markers
}
