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

package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var fixtureDir = filepath.Join("..", "..", "..", "analysis", "fixtures", "testdata", "java")

func TestExpandPaths(t *testing.T) {
	file := filepath.Join(fixtureDir, "jndi-injection.test.java")
	paths, err := expandPaths([]string{fixtureDir, file})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 5 {
		t.Errorf("expected the 4 fixtures and the file, got %v", paths)
	}
	if _, err := expandPaths([]string{"does-not-exist"}); err == nil {
		t.Errorf("expected an error for a missing path")
	}
}

func TestRunOnFixtures(t *testing.T) {
	flags, err := NewFlags([]string{fixtureDir})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	res, err := Run(context.Background(), flags)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if res.Files != 4 || res.Failed != 0 {
		t.Errorf("expected 4 files analyzed without failure, got %+v", res)
	}
	if res.Flagged != 18 {
		t.Errorf("expected 18 flagged calls, got %d", res.Flagged)
	}
}

func TestRunSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "Bad.java")
	good := filepath.Join(dir, "Good.java")
	if err := os.WriteFile(bad, []byte("class Bad { void m( { }"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := "class Good {\n  void m(String c) throws Exception {\n    Runtime.getRuntime().exec(c);\n  }\n}\n"
	if err := os.WriteFile(good, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	flags, err := NewFlags([]string{dir})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	res, err := Run(context.Background(), flags)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if res.Failed != 1 || res.Flagged != 1 {
		t.Errorf("expected one failed file and one flagged call, got %+v", res)
	}
}

func TestRunWritesSarif(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.sarif")
	flags, err := NewFlags([]string{"-sarif", out, fixtureDir})
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if _, err := Run(context.Background(), flags); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("no SARIF log written: %v", err)
	}
	if n := strings.Count(string(b), `"ruleId"`); n != 18 {
		t.Errorf("expected 18 results in the SARIF log, got %d", n)
	}
	if !strings.Contains(string(b), `"jndi-lookup"`) {
		t.Errorf("expected the jndi-lookup findings in the SARIF log")
	}
}
