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

package catalog

import (
	"fmt"
	"strings"
)

// ExemptionKind is the kind of a structural exemption
type ExemptionKind int

const (
	// ConstantArgument exempts calls whose sensitive arguments are all constant
	ConstantArgument ExemptionKind = iota
	// ArgumentVector exempts calls whose sensitive argument is an array of arguments rather than one command string
	ArgumentVector
	// ArgumentVectorType exempts calls on (or constructions of) a type that takes one argument per token
	ArgumentVectorType
	// AllowListType exempts calls whose receiver type checks resolved classes against an allow-list
	AllowListType
	// HardenedConfiguration exempts calls on an instance that has been configured with all the Requirements
	HardenedConfiguration
)

func (k ExemptionKind) String() string {
	switch k {
	case ConstantArgument:
		return "constant-argument"
	case ArgumentVector:
		return "argument-vector"
	case ArgumentVectorType:
		return "argument-vector-type"
	case AllowListType:
		return "allow-list-type"
	case HardenedConfiguration:
		return "hardened-configuration"
	}
	return fmt.Sprintf("exemption(%d)", int(k))
}

// Setting is a configuration call Method(Key, Value) on an instance; a Setting with an empty Key is a one-argument
// setter Method(Value). Key and Value are compared with the constant values of the arguments.
type Setting struct {
	Method string
	Key    string
	Value  string
	// AnyValue makes the setting match whatever the value argument is
	AnyValue bool
}

func (s Setting) String() string {
	switch {
	case s.Key == "" && s.AnyValue:
		return s.Method + "(...)"
	case s.Key == "":
		return fmt.Sprintf("%s(%q)", s.Method, s.Value)
	case s.AnyValue:
		return fmt.Sprintf("%s(%q, ...)", s.Method, s.Key)
	}
	return fmt.Sprintf("%s(%q, %q)", s.Method, s.Key, s.Value)
}

// Requirement is satisfied by any one of its alternative settings
type Requirement []Setting

func (r Requirement) String() string {
	var s []string
	for _, x := range r {
		s = append(s, x.String())
	}
	return strings.Join(s, " | ")
}

// Exemption is a structural exemption. Its parameters depend on its kind.
type Exemption struct {
	Kind ExemptionKind
	// Types are the argument-vector types of an ArgumentVectorType exemption
	Types []string
	// Requirements must all be satisfied for a HardenedConfiguration exemption to apply
	Requirements []Requirement
}

func (e Exemption) String() string {
	switch e.Kind {
	case ArgumentVectorType:
		return fmt.Sprintf("%s%v", e.Kind, e.Types)
	case HardenedConfiguration:
		var s []string
		for _, r := range e.Requirements {
			s = append(s, r.String())
		}
		return fmt.Sprintf("%s{%s}", e.Kind, strings.Join(s, ", "))
	}
	return e.Kind.String()
}

// Hardened returns a HardenedConfiguration exemption requiring each of the settings
func Hardened(settings ...Setting) Exemption {
	e := Exemption{Kind: HardenedConfiguration}
	for _, s := range settings {
		e.Requirements = append(e.Requirements, Requirement{s})
	}
	return e
}
