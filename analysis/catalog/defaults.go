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

// Feature and property names of the JAXP parsers
const (
	FeatureDisallowDoctype           = "http://apache.org/xml/features/disallow-doctype-decl"
	FeatureExternalGeneralEntities   = "http://xml.org/sax/features/external-general-entities"
	FeatureExternalParameterEntities = "http://xml.org/sax/features/external-parameter-entities"
	PropertyAccessExternalDTD        = "http://javax.xml.XMLConstants/property/accessExternalDTD"
	PropertyAccessExternalSchema     = "http://javax.xml.XMLConstants/property/accessExternalSchema"
	PropertyAccessExternalStylesheet = "http://javax.xml.XMLConstants/property/accessExternalStylesheet"
	PropertySupportDTD               = "javax.xml.stream.supportDTD"
	PropertyExternalEntities         = "javax.xml.stream.isSupportingExternalEntities"
)

var defaultMessages = map[Family]string{
	JNDILookup:        "JNDI lookup with a non-constant name allows JNDI injection",
	ProcessExec:       "process execution with a command string built from untrusted input allows command injection",
	NativeDeserialize: "native deserialization of untrusted data allows arbitrary code execution",
	XMLParse:          "XML parser is not hardened against external entities (XXE)",
}

// saxHardening is the hardening of SAX-based parsers: doctypes disallowed and external entities disabled
func saxHardening() Exemption {
	return Hardened(
		Setting{Method: "setFeature", Key: FeatureDisallowDoctype, Value: "true"},
		Setting{Method: "setFeature", Key: FeatureExternalGeneralEntities, Value: "false"},
		Setting{Method: "setFeature", Key: FeatureExternalParameterEntities, Value: "false"},
	)
}

func sigs(receiver string, arity int, methods ...string) []Signature {
	var s []Signature
	for _, m := range methods {
		s = append(s, Signature{Receiver: receiver, Method: m, Arity: arity})
	}
	return s
}

func concat(s ...[]Signature) []Signature {
	var res []Signature
	for _, x := range s {
		res = append(res, x...)
	}
	return res
}

// DefaultSinks returns the built-in sinks. Each call returns fresh specifications.
func DefaultSinks() []*SinkSpec {
	deserializationExemptions := []Exemption{
		{Kind: AllowListType},
		Hardened(Setting{Method: "setObjectInputFilter", AnyValue: true}),
	}
	argumentVectorTypes := Exemption{Kind: ArgumentVectorType, Types: []string{"ProcessBuilder"}}
	return []*SinkSpec{
		{
			ID:     "jndi-lookup",
			Family: JNDILookup,
			Signatures: concat(
				sigs("Context", 1, "lookup", "lookupLink"),
				sigs("InitialContext", 1, "doLookup"),
				sigs("JndiTemplate", AnyArity, "lookup"),
				sigs("JndiLocatorDelegate", AnyArity, "lookup"),
				sigs("LdapTemplate", AnyArity, "lookup"),
			),
			Sensitive:  []int{0},
			Exemptions: []Exemption{{Kind: ConstantArgument}},
			Message:    defaultMessages[JNDILookup],
		},
		{
			ID:         "runtime-exec",
			Family:     ProcessExec,
			Signatures: sigs("Runtime", AnyArity, "exec"),
			Sensitive:  []int{0},
			Exemptions: []Exemption{{Kind: ArgumentVector}},
			Message:    defaultMessages[ProcessExec],
		},
		{
			ID:         "process-builder",
			Family:     ProcessExec,
			Signatures: sigs("ProcessBuilder", AnyArity, Constructor, "command"),
			Exemptions: []Exemption{argumentVectorTypes},
			Message:    defaultMessages[ProcessExec],
		},
		{
			ID:         "commandline-parse",
			Family:     ProcessExec,
			Signatures: sigs("CommandLine", AnyArity, "parse"),
			Sensitive:  []int{0},
			Message:    defaultMessages[ProcessExec],
		},
		{
			ID:     "object-input-stream",
			Family: NativeDeserialize,
			Signatures: concat(
				sigs("ObjectInputStream", AnyArity, Constructor),
				sigs("ObjectInputStream", 0, "readObject", "readUnshared"),
			),
			Unconditional: true,
			Exemptions:    deserializationExemptions,
			Message:       defaultMessages[NativeDeserialize],
		},
		{
			ID:            "xml-decoder",
			Family:        NativeDeserialize,
			Signatures:    concat(sigs("XMLDecoder", AnyArity, Constructor), sigs("XMLDecoder", 0, "readObject")),
			Unconditional: true,
			Message:       defaultMessages[NativeDeserialize],
		},
		{
			ID:     "deserialize-bytes",
			Family: NativeDeserialize,
			Signatures: concat(
				sigs("SerializationUtils", 1, "deserialize"),
				sigs("XStream", AnyArity, "fromXML"),
				sigs("Yaml", AnyArity, "load", "loadAll"),
			),
			Sensitive: []int{0},
			Message:   defaultMessages[NativeDeserialize],
		},
		{
			ID:     "document-builder-factory",
			Family: XMLParse,
			Signatures: sigs("DocumentBuilderFactory", AnyArity,
				"newInstance", "newDefaultInstance", "newNSInstance", "newDefaultNSInstance"),
			Unconditional: true,
			Exemptions:    []Exemption{saxHardening()},
			Message:       defaultMessages[XMLParse],
		},
		{
			ID:            "sax-parser-factory",
			Family:        XMLParse,
			Signatures:    sigs("SAXParserFactory", AnyArity, "newInstance", "newDefaultInstance", "newNSInstance"),
			Unconditional: true,
			Exemptions:    []Exemption{saxHardening()},
			Message:       defaultMessages[XMLParse],
		},
		{
			ID:     "xml-reader",
			Family: XMLParse,
			Signatures: concat(
				sigs("XMLReaderFactory", AnyArity, "createXMLReader"),
				sigs("SAXReader", AnyArity, Constructor),
				sigs("SAXBuilder", AnyArity, Constructor),
			),
			Unconditional: true,
			Exemptions:    []Exemption{saxHardening()},
			Message:       defaultMessages[XMLParse],
		},
		{
			ID:            "xml-input-factory",
			Family:        XMLParse,
			Signatures:    sigs("XMLInputFactory", AnyArity, "newInstance", "newFactory", "newDefaultFactory"),
			Unconditional: true,
			Exemptions: []Exemption{Hardened(
				Setting{Method: "setProperty", Key: PropertySupportDTD, Value: "false"},
				Setting{Method: "setProperty", Key: PropertyExternalEntities, Value: "false"},
			)},
			Message: defaultMessages[XMLParse],
		},
		{
			ID:            "transformer-factory",
			Family:        XMLParse,
			Signatures:    sigs("TransformerFactory", AnyArity, "newInstance", "newDefaultInstance"),
			Unconditional: true,
			Exemptions: []Exemption{Hardened(
				Setting{Method: "setAttribute", Key: PropertyAccessExternalDTD, Value: ""},
				Setting{Method: "setAttribute", Key: PropertyAccessExternalStylesheet, Value: ""},
			)},
			Message: defaultMessages[XMLParse],
		},
		{
			ID:            "schema-factory",
			Family:        XMLParse,
			Signatures:    sigs("SchemaFactory", AnyArity, "newInstance", "newDefaultInstance"),
			Unconditional: true,
			Exemptions: []Exemption{Hardened(
				Setting{Method: "setProperty", Key: PropertyAccessExternalDTD, Value: ""},
				Setting{Method: "setProperty", Key: PropertyAccessExternalSchema, Value: ""},
			)},
			Message: defaultMessages[XMLParse],
		},
		{
			ID:            "jaxb-unmarshaller",
			Family:        XMLParse,
			Signatures:    sigs("JAXBContext", 0, "createUnmarshaller"),
			Unconditional: true,
			Message:       defaultMessages[XMLParse],
		},
	}
}

// DefaultSafeAPIs returns the built-in safe APIs
func DefaultSafeAPIs() []SafeAPI {
	var res []SafeAPI
	for _, sig := range concat(
		sigs("ObjectMapper", AnyArity, "readValue", "readTree"),
		sigs("ObjectReader", AnyArity, "readValue"),
		sigs("Gson", AnyArity, "fromJson"),
		sigs("Jsonb", AnyArity, "fromJson"),
		sigs("JsonParser", AnyArity, "parseString"),
	) {
		res = append(res, SafeAPI{Family: NativeDeserialize, Signature: sig})
	}
	return res
}
