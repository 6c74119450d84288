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

// Package sarif writes findings as a SARIF 2.1.0 log, the format read by code scanning dashboards.
package sarif

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/awslabs/sinkcheck/analysis/rules"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
)

const (
	schemaURI = "https://json.schemastore.org/sarif-2.1.0.json"
	version   = "2.1.0"
	toolName  = "sinkcheck"
)

type document struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []run  `json:"runs"`
}

type run struct {
	Tool              tool              `json:"tool"`
	AutomationDetails automationDetails `json:"automationDetails"`
	Results           []result          `json:"results"`
}

type automationDetails struct {
	GUID string `json:"guid"`
}

type tool struct {
	Driver driver `json:"driver"`
}

type driver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Rules   []rule `json:"rules"`
}

type rule struct {
	ID               string         `json:"id"`
	ShortDescription message        `json:"shortDescription"`
	Properties       ruleProperties `json:"properties"`
}

type ruleProperties struct {
	Tags []string `json:"tags"`
}

type result struct {
	RuleID       string            `json:"ruleId"`
	Level        string            `json:"level"`
	Message      message           `json:"message"`
	Locations    []location        `json:"locations"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
	Suppressions []suppression     `json:"suppressions,omitempty"`
}

type suppression struct {
	Kind string `json:"kind"`
}

type message struct {
	Text string `json:"text"`
}

type location struct {
	PhysicalLocation physicalLocation `json:"physicalLocation"`
}

type physicalLocation struct {
	ArtifactLocation artifactLocation `json:"artifactLocation"`
	Region           region           `json:"region"`
}

type artifactLocation struct {
	URI string `json:"uri"`
}

type region struct {
	StartLine   int `json:"startLine,omitzero"`
	StartColumn int `json:"startColumn,omitzero"`
}

// Writer buffers flagged findings and writes them as one SARIF log on Close.
// It is safe for concurrent use.
type Writer struct {
	w           io.Writer
	toolVersion string
	mu          sync.Mutex
	results     []result
	rules       map[string]rule
}

// NewWriter returns a writer of a SARIF log to w, for the given version of the tool.
func NewWriter(w io.Writer, toolVersion string) *Writer {
	return &Writer{w: w, toolVersion: toolVersion, rules: map[string]rule{}}
}

// Add records the finding f if it is flagged. Suppressed findings are kept in the log with an in-source
// suppression.
func (s *Writer) Add(f rules.Finding, suppressed bool) {
	if !f.Flagged() {
		return
	}
	pos := f.Pos()
	res := result{
		RuleID:  f.SinkID,
		Level:   "error",
		Message: message{Text: f.Message},
		Locations: []location{{PhysicalLocation: physicalLocation{
			ArtifactLocation: artifactLocation{URI: pos.File},
			Region:           region{StartLine: pos.Line, StartColumn: pos.Column},
		}}},
		Fingerprints: map[string]string{"matchBasedId/v1": fingerprint(f)},
	}
	if suppressed {
		res.Suppressions = []suppression{{Kind: "inSource"}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	if _, ok := s.rules[f.SinkID]; !ok {
		s.rules[f.SinkID] = rule{
			ID:               f.SinkID,
			ShortDescription: message{Text: f.Message},
			Properties:       ruleProperties{Tags: []string{"security", string(f.Family)}},
		}
	}
}

// Len returns the number of results recorded
func (s *Writer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Close writes the SARIF log. Results are ordered by location, and rules by identifier.
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.results, func(i, j int) bool {
		a, b := s.results[i].Locations[0].PhysicalLocation, s.results[j].Locations[0].PhysicalLocation
		if a.ArtifactLocation.URI != b.ArtifactLocation.URI {
			return a.ArtifactLocation.URI < b.ArtifactLocation.URI
		}
		if a.Region.StartLine != b.Region.StartLine {
			return a.Region.StartLine < b.Region.StartLine
		}
		return a.Region.StartColumn < b.Region.StartColumn
	})
	ruleList := make([]rule, 0, len(s.rules))
	for _, r := range s.rules {
		ruleList = append(ruleList, r)
	}
	sort.Slice(ruleList, func(i, j int) bool { return ruleList[i].ID < ruleList[j].ID })

	doc := document{
		Schema:  schemaURI,
		Version: version,
		Runs: []run{{
			Tool:              tool{Driver: driver{Name: toolName, Version: s.toolVersion, Rules: ruleList}},
			AutomationDetails: automationDetails{GUID: uuid.New().String()},
			Results:           s.results,
		}},
	}
	if err := json.MarshalWrite(s.w, doc, jsontext.WithIndent("  "), json.Deterministic(true)); err != nil {
		return fmt.Errorf("failed to write SARIF log: %w", err)
	}
	return nil
}

// fingerprint identifies a result across runs by its rule, file, line and call
func fingerprint(f rules.Finding) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%s:%d:%s", f.SinkID, f.Pos().File, f.Pos().Line, f.Site)
	return hex.EncodeToString(h.Sum(nil))
}
