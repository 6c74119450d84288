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

// Package catalog contains the sink catalog: the specifications of the API calls that are dangerous when used
// with attacker-controlled input or with unsafe defaults, grouped by vulnerability family.
//
// A catalog is built once with [New] and is read-only afterwards; it is safe for concurrent use.
package catalog

import (
	"fmt"

	"github.com/awslabs/sinkcheck/analysis/config"
	"golang.org/x/exp/slices"
)

// Family is a vulnerability family
type Family string

const (
	JNDILookup        Family = config.FamilyJNDILookup
	ProcessExec       Family = config.FamilyProcessExec
	NativeDeserialize Family = config.FamilyNativeDeserialize
	XMLParse          Family = config.FamilyXMLParse
)

const (
	// Constructor is the method name of constructor signatures
	Constructor = "<init>"
	// AnyArity matches signatures with any number of arguments
	AnyArity = -1
	// ReceiverArg is the sensitive argument index designating the receiver of the call
	ReceiverArg = -1
)

// Signature is a method signature matched by a sink. Receiver matches its subtypes.
type Signature struct {
	Receiver string
	Method   string
	Arity    int
}

func (s Signature) String() string {
	if s.Arity == AnyArity {
		return fmt.Sprintf("%s.%s(...)", s.Receiver, s.Method)
	}
	return fmt.Sprintf("%s.%s/%d", s.Receiver, s.Method, s.Arity)
}

// matches returns true if the signature matches a call of method with arity arguments on a receiver of type recv.
// isSubtype decides subtyping between simple type names.
func (s Signature) matches(recv string, method string, arity int, isSubtype func(string, string) bool) bool {
	if s.Method != method || (s.Arity != AnyArity && s.Arity != arity) {
		return false
	}
	return recv == s.Receiver || (recv != "" && isSubtype(recv, s.Receiver))
}

// SinkSpec is the specification of a sink
type SinkSpec struct {
	ID         string
	Family     Family
	Signatures []Signature
	// Sensitive lists the indices of the sensitive arguments; ReceiverArg designates the receiver. An empty list
	// means every argument is sensitive.
	Sensitive []int
	// Unconditional sinks are unsafe by default: calls are flagged regardless of the taint of their arguments,
	// unless an exemption clears them.
	Unconditional bool
	// Exemptions are checked in order; the first exemption that applies clears the call
	Exemptions []Exemption
	Message    string
}

// IsSensitive returns true if the argument at index i is sensitive for the sink
func (s *SinkSpec) IsSensitive(i int) bool {
	return len(s.Sensitive) == 0 || slices.Contains(s.Sensitive, i)
}

func (s *SinkSpec) String() string {
	return fmt.Sprintf("%s[%s]", s.ID, s.Family)
}

// SafeAPI identifies calls that replace a sink with a schema-based or textual API. Such calls are never flagged.
type SafeAPI struct {
	Family    Family
	Signature Signature
}

// Catalog is the set of sinks and safe APIs
type Catalog struct {
	Sinks    []*SinkSpec
	SafeAPIs []SafeAPI
}

// New returns the default catalog extended with the sinks and safe APIs of the config. Families disabled in the
// config are removed.
func New(cfg *config.Config) *Catalog {
	c := &Catalog{Sinks: DefaultSinks(), SafeAPIs: DefaultSafeAPIs()}
	if cfg == nil {
		return c
	}
	for _, s := range cfg.Sinks {
		c.Sinks = append(c.Sinks, fromConfig(s))
	}
	for _, cid := range cfg.SafeAPIs {
		if cid.Receiver == "" || cid.Method == "" || cid.Family == "" {
			continue
		}
		c.SafeAPIs = append(c.SafeAPIs, SafeAPI{
			Family:    Family(cid.Family),
			Signature: Signature{Receiver: cid.Receiver, Method: cid.Method, Arity: AnyArity},
		})
	}
	var sinks []*SinkSpec
	for _, s := range c.Sinks {
		if !cfg.IsDisabled(string(s.Family)) {
			sinks = append(sinks, s)
		}
	}
	var safeAPIs []SafeAPI
	for _, s := range c.SafeAPIs {
		if !cfg.IsDisabled(string(s.Family)) {
			safeAPIs = append(safeAPIs, s)
		}
	}
	c.Sinks, c.SafeAPIs = sinks, safeAPIs
	return c
}

func fromConfig(s config.SinkSpec) *SinkSpec {
	arity := AnyArity
	if s.Arity != nil {
		arity = *s.Arity
	}
	spec := &SinkSpec{
		ID:            s.ID,
		Family:        Family(s.Family),
		Signatures:    []Signature{{Receiver: s.Receiver, Method: s.Method, Arity: arity}},
		Sensitive:     s.Args,
		Unconditional: s.Unconditional,
		Message:       s.Message,
	}
	if spec.Message == "" {
		spec.Message = defaultMessages[spec.Family]
	}
	if spec.Family == JNDILookup {
		spec.Exemptions = []Exemption{{Kind: ConstantArgument}}
	}
	return spec
}

// Lookup returns the first sink matching a call of method with arity arguments on a receiver of type recv, or the
// safe API the call matches. Safe APIs take precedence, and at most one of the results is non-nil.
func (c *Catalog) Lookup(recv string, method string, arity int, isSubtype func(string, string) bool) (*SinkSpec, *SafeAPI) {
	for i := range c.SafeAPIs {
		if c.SafeAPIs[i].Signature.matches(recv, method, arity, isSubtype) {
			return nil, &c.SafeAPIs[i]
		}
	}
	for _, s := range c.Sinks {
		for _, sig := range s.Signatures {
			if sig.matches(recv, method, arity, isSubtype) {
				return s, nil
			}
		}
	}
	return nil, nil
}

// Sink returns the sink with the given id, or nil
func (c *Catalog) Sink(id string) *SinkSpec {
	for _, s := range c.Sinks {
		if s.ID == id {
			return s
		}
	}
	return nil
}
