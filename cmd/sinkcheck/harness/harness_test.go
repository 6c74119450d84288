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

package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

var fixtureDir = filepath.Join("..", "..", "..", "analysis", "fixtures", "testdata", "java")

func TestRunOnShippedFixtures(t *testing.T) {
	flags, err := NewFlags([]string{fixtureDir})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	report, err := Run(context.Background(), flags)
	if err != nil {
		t.Fatalf("harness failed: %v", err)
	}
	if !report.OK() || report.Files != 4 || report.TotalMarkers != 27 || report.Passed != 27 {
		t.Errorf("expected all 27 markers of the 4 fixtures to pass, got %s", report)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	src := "class Wrong {\n  void m(String c) throws Exception {\n    // <no-error>\n    Runtime.getRuntime().exec(c);\n  }\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "wrong.test.java"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	flags, err := NewFlags([]string{dir})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	report, err := Run(context.Background(), flags)
	if err != nil {
		t.Fatalf("harness failed: %v", err)
	}
	if report.OK() || len(report.Failed) != 1 {
		t.Errorf("expected one failure, got %s", report)
	}
}

func TestRunWithoutFixtures(t *testing.T) {
	flags, err := NewFlags([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if _, err := Run(context.Background(), flags); err == nil {
		t.Errorf("expected an error when no fixture is found")
	}
}
