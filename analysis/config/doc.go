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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename, or [LoadFromBytes] to load it from memory.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type, and the options of [Options] are inlined at the top level.
For example, a valid config file is as follows:

	log-level: 4
	max-workers: 8
	strict-shell-wrappers: true
	disabled-families:
	  - XML_PARSE
	sinks:
	  - family: JNDI_LOOKUP
	    receiver: ResourceLocator
	    method: locate
	    arity: 1
	    args: [0]
	safe-apis:
	  - receiver: XmlMapper
	    method: readValue
	    family: NATIVE_DESERIALIZE
	sanitizers:
	  - receiver: Validator
	    method: validated.*

# Identifying code elements

The config uses [CodeIdentifier] to identify methods by receiver type and method name. An important feature of the
code identifiers is that the string specifications are seen as regexes if they can be compiled to regexes, otherwise
they are strings.

Sinks are added to the built-in catalog. Receivers of sinks are matched by subtyping on simple type names.
*/
package config
