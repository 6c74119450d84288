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
	"regexp"
	"strings"

	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"golang.org/x/exp/slices"
)

// Suppression is a skipcq comment. A suppression applies to the findings on its line and on the next line. When
// SinkIDs is empty, it applies to all sinks.
type Suppression struct {
	Line    int
	SinkIDs []string
}

var skipRegex = regexp.MustCompile(`(?i)\bskipcq\b(?::\s*([A-Za-z0-9_\-]+(?:\s*,\s*[A-Za-z0-9_\-]+)*))?`)

// ParseSuppressions returns the skipcq comments among comments, e.g. "// skipcq" or
// "// skipcq: runtime-exec, jndi-lookup"
func ParseSuppressions(comments []syntax.Comment) []Suppression {
	var res []Suppression
	for _, c := range comments {
		m := skipRegex.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}
		s := Suppression{Line: c.Pos.Line}
		for _, id := range strings.Split(m[1], ",") {
			if id = strings.TrimSpace(id); id != "" {
				s.SinkIDs = append(s.SinkIDs, id)
			}
		}
		res = append(res, s)
	}
	return res
}

// Suppressed returns true if one of the suppressions applies to the finding
func Suppressed(f rules.Finding, suppressions []Suppression) bool {
	line := f.Pos().Line
	for _, s := range suppressions {
		if s.Line != line && s.Line != line-1 {
			continue
		}
		if len(s.SinkIDs) == 0 || slices.Contains(s.SinkIDs, f.SinkID) {
			return true
		}
	}
	return false
}

// FilterSuppressed returns the findings to which no suppression applies
func FilterSuppressed(findings []rules.Finding, suppressions []Suppression) []rules.Finding {
	if len(suppressions) == 0 {
		return findings
	}
	var res []rules.Finding
	for _, f := range findings {
		if !Suppressed(f, suppressions) {
			res = append(res, f)
		}
	}
	return res
}
