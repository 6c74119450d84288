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

package rules

import (
	"github.com/awslabs/sinkcheck/analysis/catalog"
	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/taint"
)

// NoArg is the argument index of findings that no single argument caused
const NoArg = -2

// Options are the options of the matcher
type Options struct {
	// StrictShellWrappers disables the argument-vector exemptions for vectors that start with a shell wrapper
	// such as "sh -c"
	StrictShellWrappers bool
}

// Matcher decides the findings of call sites. A Matcher is read-only and is safe for concurrent use.
type Matcher struct {
	catalog *catalog.Catalog
	table   *symbols.Table
	options Options
}

// NewMatcher returns a matcher for the sinks of cat, resolving types in table
func NewMatcher(cat *catalog.Catalog, table *symbols.Table, options Options) *Matcher {
	return &Matcher{catalog: cat, table: table, options: options}
}

// Lookup returns the sink or the safe API matched by the call site, if any
func (m *Matcher) Lookup(site *taint.CallSite) (*catalog.SinkSpec, *catalog.SafeAPI) {
	return m.catalog.Lookup(site.ReceiverType, site.Method, site.Arity(), m.table.IsSubtype)
}

// Find returns the finding of the call site, and false if the call site is not sink-eligible
func (m *Matcher) Find(site *taint.CallSite, state *taint.State) (Finding, bool) {
	spec, safe := m.Lookup(site)
	switch {
	case safe != nil:
		return Finding{
			Site:    site,
			SinkID:  safe.Signature.String(),
			Family:  safe.Family,
			Verdict: Clear,
			Reason:  ReasonSafeAPI,
			Arg:     NoArg,
		}, true
	case spec != nil:
		return m.Match(site, state, spec), true
	}
	return Finding{}, false
}

// Match returns the finding of a call site matching spec. The call is flagged when a sensitive argument is not
// constant and is tainted or unknown, or when the sink is unconditional; an applicable exemption then clears it.
// Match does not modify its arguments, and always returns the same finding for the same inputs.
func (m *Matcher) Match(site *taint.CallSite, state *taint.State, spec *catalog.SinkSpec) Finding {
	f := Finding{
		Site:    site,
		SinkID:  spec.ID,
		Family:  spec.Family,
		Message: spec.Message,
		Arg:     NoArg,
	}
	idx, arg, found := worstArgument(site, spec)
	switch {
	case found && isUnsafe(arg):
		f.Verdict = Flag
		f.Arg = idx
		f.Reason = ReasonUnknownArgument
		if arg.Label == taint.Tainted {
			f.Reason = ReasonTaintedArgument
		}
	case spec.Unconditional:
		f.Verdict = Flag
		f.Reason = ReasonUnsafeDefault
	case found && arg.Constant.Constant:
		f.Verdict = Clear
		f.Reason = ReasonConstantArgument
	default:
		f.Verdict = Clear
		f.Reason = ReasonCleanArgument
	}
	if f.Verdict != Flag {
		return f
	}
	for _, e := range spec.Exemptions {
		if m.exempt(e, site, state, spec) {
			f.Verdict = Clear
			f.Reason = e.Kind.String()
			return f
		}
	}
	return f
}

// isUnsafe returns true if an argument value may be controlled by an attacker
func isUnsafe(a taint.Arg) bool {
	return !a.Constant.Constant && a.Label != taint.Clean
}

// sensitiveArgs returns the sensitive arguments of the site, with their indices
func sensitiveArgs(site *taint.CallSite, spec *catalog.SinkSpec) ([]int, []taint.Arg) {
	var indices []int
	var args []taint.Arg
	for _, i := range spec.Sensitive {
		if i == catalog.ReceiverArg && site.Receiver.Expr != nil {
			indices = append(indices, i)
			args = append(args, site.Receiver)
		}
	}
	for i, a := range site.Args {
		if spec.IsSensitive(i) {
			indices = append(indices, i)
			args = append(args, a)
		}
	}
	return indices, args
}

// worstArgument returns the first unsafe sensitive argument with the highest label, or the last constant
// sensitive argument when all are safe
func worstArgument(site *taint.CallSite, spec *catalog.SinkSpec) (int, taint.Arg, bool) {
	indices, args := sensitiveArgs(site, spec)
	if len(args) == 0 {
		return NoArg, taint.Arg{}, false
	}
	best := -1
	allConstant := true
	for j, a := range args {
		if !a.Constant.Constant {
			allConstant = false
		}
		if isUnsafe(a) && (best < 0 || a.Label > args[best].Label) {
			best = j
		}
	}
	if best >= 0 {
		return indices[best], args[best], true
	}
	last := len(args) - 1
	if allConstant {
		return indices[last], args[last], true
	}
	// clean but not constant
	a := args[last]
	a.Constant.Constant = false
	return indices[last], a, true
}
