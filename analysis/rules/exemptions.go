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
	"strings"

	"github.com/awslabs/sinkcheck/analysis/catalog"
	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
	"github.com/awslabs/sinkcheck/analysis/taint"
	"golang.org/x/exp/slices"
)

// shells are the programs that interpret their next argument as a command line when followed by one of
// shellFlags
var (
	shells     = []string{"sh", "bash", "zsh", "ksh", "dash", "cmd", "cmd.exe", "powershell", "powershell.exe", "pwsh"}
	shellFlags = []string{"-c", "/c", "/C", "-Command", "-command"}
)

// exempt returns true if the exemption e applies to the site
func (m *Matcher) exempt(e catalog.Exemption, site *taint.CallSite, state *taint.State, spec *catalog.SinkSpec) bool {
	switch e.Kind {
	case catalog.ConstantArgument:
		_, args := sensitiveArgs(site, spec)
		if len(args) == 0 {
			return false
		}
		for _, a := range args {
			if !a.Constant.Constant {
				return false
			}
		}
		return true
	case catalog.ArgumentVector:
		_, args := sensitiveArgs(site, spec)
		if len(args) == 0 {
			return false
		}
		for _, a := range args {
			if !m.isArgumentVector(a) {
				return false
			}
		}
		return true
	case catalog.ArgumentVectorType:
		if slices.IndexFunc(e.Types, func(t string) bool { return m.table.IsSubtype(site.ReceiverType, t) }) < 0 {
			return false
		}
		if m.options.StrictShellWrappers {
			var prefix []string
			for _, a := range site.Args {
				if !a.Constant.HasValue {
					break
				}
				prefix = append(prefix, a.Constant.Value)
			}
			return !isShellWrapper(prefix)
		}
		return true
	case catalog.AllowListType:
		return m.table.HasCapability(site.ReceiverType, syntax.AllowListCheck)
	case catalog.HardenedConfiguration:
		calls := configurationCalls(site, state)
		for _, req := range e.Requirements {
			if slices.IndexFunc(calls, func(c *taint.CallSite) bool { return satisfies(c, req) }) < 0 {
				return false
			}
		}
		return len(e.Requirements) > 0
	}
	return false
}

// isArgumentVector returns true if the argument is an array of arguments rather than one command line
func (m *Matcher) isArgumentVector(a taint.Arg) bool {
	if arr, ok := syntax.StripCasts(a.Expr).(*syntax.NewArray); ok {
		if m.options.StrictShellWrappers {
			var prefix []string
			for _, x := range arr.Elems {
				lit, ok := syntax.StripCasts(x).(*syntax.Literal)
				if !ok || lit.Kind != syntax.StringLit {
					break
				}
				prefix = append(prefix, lit.Value)
			}
			return !isShellWrapper(prefix)
		}
		return true
	}
	return symbols.IsArrayType(a.Type)
}

// isShellWrapper returns true if the argument vector prefix invokes a shell on a command line
func isShellWrapper(prefix []string) bool {
	if len(prefix) < 2 {
		return false
	}
	prog := prefix[0]
	if i := strings.LastIndexAny(prog, `/\`); i >= 0 {
		prog = prog[i+1:]
	}
	return slices.Contains(shells, strings.ToLower(prog)) && slices.Contains(shellFlags, prefix[1])
}

// configurationCalls returns the calls that configure the instance involved in the site before it is used.
// For a creation site whose result is assigned to a binding, these are the calls on that binding that follow the
// creation and precede the first call that is not a setter; the scan also stops when the instance is passed to
// another call or the name is rebound. For other sites, these are the calls on the receiver binding that precede
// the site.
func configurationCalls(site *taint.CallSite, state *taint.State) []*taint.CallSite {
	var res []*taint.CallSite
	if site.Target != taint.NoBinding {
		target := state.Binding(site.Target)
		if target == nil {
			return nil
		}
	scan:
		for _, c := range state.Calls[site.Order+1:] {
			if id, ok := c.Env[target.Name]; !ok || id != site.Target {
				break
			}
			if c.Receiver.Binding == site.Target {
				if !strings.HasPrefix(c.Method, "set") {
					break
				}
				res = append(res, c)
				continue
			}
			for _, a := range c.Args {
				if a.Binding == site.Target {
					break scan
				}
			}
		}
		return res
	}
	if site.Receiver.Binding == taint.NoBinding {
		return nil
	}
	for _, c := range state.Calls[:site.Order] {
		if c.Receiver.Binding == site.Receiver.Binding && strings.HasPrefix(c.Method, "set") {
			res = append(res, c)
		}
	}
	return res
}

// satisfies returns true if the call c is one of the alternative settings of the requirement
func satisfies(c *taint.CallSite, req catalog.Requirement) bool {
	for _, s := range req {
		if c.Method != s.Method {
			continue
		}
		valueIdx := 1
		if s.Key == "" {
			valueIdx = 0
		} else if len(c.Args) < 1 || !c.Args[0].Constant.HasValue || c.Args[0].Constant.Value != s.Key {
			continue
		}
		if s.AnyValue {
			return true
		}
		if len(c.Args) > valueIdx && c.Args[valueIdx].Constant.HasValue && c.Args[valueIdx].Constant.Value == s.Value {
			return true
		}
	}
	return false
}
