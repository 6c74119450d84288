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

package tools

import "regexp"

// Captures errors happening when a source file cannot be parsed
var regexSyntaxError = regexp.MustCompile("java syntax error at ")

// Captures the kind of error that happen when you put a flag at the end instead of source files
var regexFlagAsFile = regexp.MustCompile(`could not read -(\w|-)`)

// Captures errors of family names in the config file
var regexUnknownFamily = regexp.MustCompile(`unknown family "\w*"`)

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexFlagAsFile.MatchString(errMsg) {
		return "all command line flags should be before the paths of the files to analyze"
	}
	if regexSyntaxError.MatchString(errMsg) {
		return "the file is not valid Java; the analysis requires files that compile"
	}
	if regexUnknownFamily.MatchString(errMsg) {
		return "the families are JNDI_LOOKUP, PROCESS_EXEC, NATIVE_DESERIALIZE and XML_PARSE"
	}
	return ""
}
