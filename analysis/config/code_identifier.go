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

import "regexp"

// A CodeIdentifier identifies a method by its receiver type and method name, for example a sanitizer or a safe API.
// The receiver is matched against the simple (unqualified) name of the receiver type. An empty field matches
// anything.
type CodeIdentifier struct {
	Receiver string `yaml:"receiver"`
	Method   string `yaml:"method"`
	// Family restricts the identifier to one vulnerability family, when relevant (e.g. for safe APIs)
	Family string `yaml:"family"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	receiverRegex *regexp.Regexp
	methodRegex   *regexp.Regexp
}

// compileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none. Regexes are anchored: "exec" does not match "execute".
func compileRegexes(cid CodeIdentifier) CodeIdentifier {
	receiverRegex, err := regexp.Compile("^(?:" + cid.Receiver + ")$")
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile("^(?:" + cid.Method + ")$")
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{receiverRegex, methodRegex}
	return cid
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (cid CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Receiver == "" || cidRef.computedRegexs.receiverRegex.MatchString(cid.Receiver)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Family == "" || cidRef.Family == cid.Family)
	}
	return (cidRef.Receiver == "" || cid.Receiver == cidRef.Receiver) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Family == "" || cidRef.Family == cid.Family)
}

// Matches returns true if cid is matched by the identifier ref, where empty fields of ref match anything
func (cid CodeIdentifier) Matches(ref CodeIdentifier) bool {
	return cid.equalOnNonEmptyFields(ref)
}
