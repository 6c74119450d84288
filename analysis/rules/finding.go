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

// Package rules implements the rule matcher: it decides, for a call site matching a sink of the catalog, whether
// the call is flagged or cleared, and why.
package rules

import (
	"fmt"

	"github.com/awslabs/sinkcheck/analysis/catalog"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"github.com/awslabs/sinkcheck/analysis/taint"
)

// Verdict is the decision for a sink call
type Verdict int

const (
	// Clear means the call is safe
	Clear Verdict = iota
	// Flag means the call is a vulnerability
	Flag
)

func (v Verdict) String() string {
	if v == Flag {
		return "FLAG"
	}
	return "CLEAR"
}

// Reason codes of the findings
const (
	ReasonTaintedArgument  = "tainted-argument"
	ReasonUnknownArgument  = "unknown-argument"
	ReasonUnsafeDefault    = "unsafe-default"
	ReasonConstantArgument = "constant-argument"
	ReasonCleanArgument    = "clean-argument"
	ReasonSafeAPI          = "safe-api"
)

// Finding is the decision for one call site matching the catalog
type Finding struct {
	Site    *taint.CallSite
	SinkID  string
	Family  catalog.Family
	Verdict Verdict
	// Reason is a reason code, or the name of the exemption that cleared the call
	Reason  string
	Message string
	// Arg is the index of the argument that caused the flag; catalog.ReceiverArg for the receiver, and NoArg when
	// no argument is involved
	Arg int
}

// Pos returns the position of the call site
func (f Finding) Pos() syntax.Pos {
	return f.Site.Pos
}

// Flagged returns true if the finding is a vulnerability
func (f Finding) Flagged() bool {
	return f.Verdict == Flag
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s %s (%s): %s", f.Pos(), f.Verdict, f.SinkID, f.Reason, f.Message)
}
