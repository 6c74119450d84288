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

const (
	// DefaultMaxWorkers is the default number of units analyzed concurrently
	DefaultMaxWorkers = 4
	// DefaultFixturePattern is the file name pattern of fixture files in harness mode
	DefaultFixturePattern = "*.test.java"
)

// The vulnerability families sinks belong to
const (
	FamilyJNDILookup        = "JNDI_LOOKUP"
	FamilyProcessExec       = "PROCESS_EXEC"
	FamilyNativeDeserialize = "NATIVE_DESERIALIZE"
	FamilyXMLParse          = "XML_PARSE"
)

// Families lists all the vulnerability families, in the order they are reported
var Families = []string{FamilyJNDILookup, FamilyProcessExec, FamilyNativeDeserialize, FamilyXMLParse}
