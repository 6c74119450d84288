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

package config

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func checkEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := compileRegexes(cid2)
	if !cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", cid1, cid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := compileRegexes(cid2)
	if cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", cid1, cid2)
	}
}

func TestCodeIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	cid1 := CodeIdentifier{Receiver: "ObjectMapper", Method: "readValue"}
	checkEqualOnNonEmptyFields(t, cid1, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	cid1 := CodeIdentifier{Receiver: "a", Method: "b", Family: FamilyXMLParse}
	cid2 := CodeIdentifier{Receiver: "de", Method: "234jbn"}
	cidEmpty := CodeIdentifier{}
	checkEqualOnNonEmptyFields(t, cid1, cidEmpty)
	checkEqualOnNonEmptyFields(t, cid2, cidEmpty)
}

func TestCodeIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	cid1 := CodeIdentifier{Receiver: "a", Method: "b"}
	cid2 := CodeIdentifier{Receiver: "a"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkNotEqualOnNonEmptyFields(t, cid2, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	cid1 := CodeIdentifier{Receiver: "Validator", Method: "validatedHost"}
	cid1bis := CodeIdentifier{Receiver: "Validator", Method: "validatedPath"}
	cid2 := CodeIdentifier{Receiver: "Validator", Method: "validated.*"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkEqualOnNonEmptyFields(t, cid1bis, cid2)
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexesAreAnchored(t *testing.T) {
	cid1 := CodeIdentifier{Receiver: "Runtime", Method: "execute"}
	cid2 := CodeIdentifier{Receiver: "Runtime", Method: "exec"}
	checkNotEqualOnNonEmptyFields(t, cid1, cid2)
}

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadFromBytes(b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %w", filename, err)
	}
	return filename, config, err
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("Default for LogLevel should be Info")
	}
	if c.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("Default for MaxWorkers should be %d", DefaultMaxWorkers)
	}
	if c.StrictShellWrappers {
		t.Errorf("Default for StrictShellWrappers should be false")
	}
	if c.FixturePattern != DefaultFixturePattern {
		t.Errorf("Default for FixturePattern should be %q", DefaultFixturePattern)
	}
	if c.Verbose() {
		t.Errorf("Default config should not be verbose")
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file.")
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	for _, name := range []string{"bad_format.yaml", "bad_family.yaml", "bad_args.yaml"} {
		_, config, err := loadFromTestDir(name)
		if config != nil || err == nil {
			t.Errorf("Expected error and nil value when trying to load %s.", name)
		}
	}
}

func TestLoadEmptyHasDefaults(t *testing.T) {
	fileName, config, err := loadFromTestDir("empty.yaml")
	if config == nil || err != nil {
		t.Fatalf("Could not load %s: %v", fileName, err)
	}
	if config.LogLevel != int(InfoLevel) || config.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("empty config should have default options, got %+v", config.Options)
	}
}

func TestLoadFullConfig(t *testing.T) {
	fileName, config, err := loadFromTestDir("full-config.yaml")
	if config == nil || err != nil {
		t.Fatalf("Could not load %s: %v", fileName, err)
	}
	if config.LogLevel != int(TraceLevel) {
		t.Error("full config should have set trace")
	}
	if !config.Verbose() {
		t.Error("full config should be verbose")
	}
	if config.MaxWorkers != 8 {
		t.Error("full config should set max-workers to 8")
	}
	if !config.StrictShellWrappers {
		t.Error("full config should have set strict-shell-wrappers")
	}
	if !config.SilenceWarn {
		t.Error("full config should have silence-warn set to true")
	}
	if config.FixturePattern != "*.fixture.java" {
		t.Errorf("full config should set the fixture pattern, got %q", config.FixturePattern)
	}
	if !config.IsDisabled(FamilyXMLParse) || config.IsDisabled(FamilyJNDILookup) {
		t.Error("full config should disable XML_PARSE only")
	}
	if len(config.Sinks) != 2 {
		t.Fatalf("full config should have two sinks, got %d", len(config.Sinks))
	}
	locator := config.Sinks[0]
	if locator.ID != "locator" || locator.Arity == nil || *locator.Arity != 1 || len(locator.Args) != 1 {
		t.Errorf("unexpected first sink %+v", locator)
	}
	if config.Sinks[1].ID != "Shell.run" {
		t.Errorf("sink without id should default to Receiver.Method, got %q", config.Sinks[1].ID)
	}
	if config.Sinks[1].Arity != nil {
		t.Errorf("sink without arity should match any arity")
	}
	if len(config.SafeAPIs) != 1 {
		t.Fatalf("expected one safe API, got %v", config.SafeAPIs)
	}
	safe := config.SafeAPIs[0]
	if !(CodeIdentifier{Receiver: "XmlMapper", Method: "readValue", Family: FamilyNativeDeserialize}).Matches(safe) {
		t.Error("full config should declare XmlMapper.readValue as a safe API")
	}
	if (CodeIdentifier{Receiver: "XmlMapper", Method: "readValue", Family: FamilyXMLParse}).Matches(safe) {
		t.Error("safe API should be restricted to its family")
	}
	if !config.IsSanitizer(CodeIdentifier{Receiver: "Validator", Method: "validatedHost"}) {
		t.Error("full config sanitizer regex should match validatedHost")
	}
	if config.IsSanitizer(CodeIdentifier{Receiver: "Other", Method: "validatedHost"}) {
		t.Error("full config sanitizer should not match other receivers")
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level should be discarded, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected warning and error with prefixes, got %q", out)
	}

	c.SilenceWarn = true
	l = NewLogGroup(c)
	buf.Reset()
	l.SetAllOutput(&buf)
	l.Warnf("silenced")
	if buf.Len() != 0 {
		t.Errorf("warnings should be silenced, got %q", buf.String())
	}
}
