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

package symbols

// The tables in this file describe the library types the analyses know about. Names are simple (unqualified) type
// names, keys of method tables are "Type.method".

// librarySupertypes maps library types to their direct supertypes
var librarySupertypes = map[string][]string{
	"InitialContext":        {"Context"},
	"InitialDirContext":     {"InitialContext", "DirContext"},
	"InitialLdapContext":    {"InitialDirContext", "LdapContext"},
	"DirContext":            {"Context"},
	"LdapContext":           {"DirContext"},
	"EventDirContext":       {"DirContext"},
	"ObjectInputStream":     {"InputStream", "ObjectInput"},
	"ObjectInput":           {"DataInput"},
	"FileInputStream":       {"InputStream"},
	"ByteArrayInputStream":  {"InputStream"},
	"BufferedInputStream":   {"FilterInputStream"},
	"FilterInputStream":     {"InputStream"},
	"ByteArrayOutputStream": {"OutputStream"},
	"StringBuilder":         {"CharSequence"},
	"StringBuffer":          {"CharSequence"},
	"String":                {"CharSequence"},
}

// libraryReturns maps methods of library types to the simple name of their return type
var libraryReturns = map[string]string{
	"Runtime.getRuntime":                        "Runtime",
	"Runtime.exec":                              "Process",
	"ProcessBuilder.start":                      "Process",
	"ProcessBuilder.command":                    "ProcessBuilder",
	"DocumentBuilderFactory.newInstance":        "DocumentBuilderFactory",
	"DocumentBuilderFactory.newDefaultInstance": "DocumentBuilderFactory",
	"DocumentBuilderFactory.newDocumentBuilder": "DocumentBuilder",
	"DocumentBuilder.parse":                     "Document",
	"SAXParserFactory.newInstance":              "SAXParserFactory",
	"SAXParserFactory.newDefaultInstance":       "SAXParserFactory",
	"SAXParserFactory.newSAXParser":             "SAXParser",
	"SAXParser.getXMLReader":                    "XMLReader",
	"XMLReaderFactory.createXMLReader":          "XMLReader",
	"XMLInputFactory.newInstance":               "XMLInputFactory",
	"XMLInputFactory.newFactory":                "XMLInputFactory",
	"XMLInputFactory.newDefaultFactory":         "XMLInputFactory",
	"XMLInputFactory.createXMLStreamReader":     "XMLStreamReader",
	"XMLInputFactory.createXMLEventReader":      "XMLEventReader",
	"TransformerFactory.newInstance":            "TransformerFactory",
	"TransformerFactory.newDefaultInstance":     "TransformerFactory",
	"TransformerFactory.newTransformer":         "Transformer",
	"SAXTransformerFactory.newInstance":         "SAXTransformerFactory",
	"SchemaFactory.newInstance":                 "SchemaFactory",
	"SchemaFactory.newSchema":                   "Schema",
	"Schema.newValidator":                       "Validator",
	"JAXBContext.newInstance":                   "JAXBContext",
	"JAXBContext.createUnmarshaller":            "Unmarshaller",
	"ObjectInputStream.readObject":              "Object",
	"String.valueOf":                            "String",
	"String.format":                             "String",
	"String.join":                               "String",
	"StringBuilder.append":                      "StringBuilder",
	"StringBuilder.insert":                      "StringBuilder",
	"StringBuilder.toString":                    "String",
	"StringBuffer.append":                       "StringBuffer",
	"StringBuffer.toString":                     "String",
	"Paths.get":                                 "Path",
	"Path.of":                                   "Path",
	"InitialContext.lookup":                     "Object",
	"Base64.getDecoder":                         "Decoder",
	"Decoder.decode":                            "byte[]",
}

// libraryConstants lists the values of well-known library constants, keyed by their qualified simple name
var libraryConstants = map[string]string{
	"XMLConstants.ACCESS_EXTERNAL_DTD":                "http://javax.xml.XMLConstants/property/accessExternalDTD",
	"XMLConstants.ACCESS_EXTERNAL_SCHEMA":             "http://javax.xml.XMLConstants/property/accessExternalSchema",
	"XMLConstants.ACCESS_EXTERNAL_STYLESHEET":         "http://javax.xml.XMLConstants/property/accessExternalStylesheet",
	"XMLConstants.FEATURE_SECURE_PROCESSING":          "http://javax.xml.XMLConstants/feature/secure-processing",
	"XMLConstants.NULL_NS_URI":                        "",
	"XMLConstants.DEFAULT_NS_PREFIX":                  "",
	"XMLInputFactory.SUPPORT_DTD":                     "javax.xml.stream.supportDTD",
	"XMLInputFactory.IS_SUPPORTING_EXTERNAL_ENTITIES": "javax.xml.stream.isSupportingExternalEntities",
	"XMLInputFactory.IS_NAMESPACE_AWARE":              "javax.xml.stream.isNamespaceAware",
	"XMLInputFactory.IS_VALIDATING":                   "javax.xml.stream.isValidating",
	"Boolean.TRUE":                                    "true",
	"Boolean.FALSE":                                   "false",
	"File.separator":                                  "/",
	"StandardCharsets.UTF_8":                          "UTF-8",
}

// stringMethods lists the string-building methods: their result is built only from their receiver and arguments
var stringMethods = map[string]bool{
	"String.valueOf":         true,
	"String.format":          true,
	"String.join":            true,
	"String.concat":          true,
	"String.trim":            true,
	"String.strip":           true,
	"String.toLowerCase":     true,
	"String.toUpperCase":     true,
	"String.substring":       true,
	"String.replace":         true,
	"String.replaceAll":      true,
	"String.intern":          true,
	"String.toString":        true,
	"String.formatted":       true,
	"String.repeat":          true,
	"StringBuilder.append":   true,
	"StringBuilder.insert":   true,
	"StringBuilder.toString": true,
	"StringBuffer.append":    true,
	"StringBuffer.insert":    true,
	"StringBuffer.toString":  true,
	"Objects.toString":       true,
}

// mutatorMethods are the string-building methods that fold their arguments into their receiver
var mutatorMethods = map[string]bool{
	"StringBuilder.append": true,
	"StringBuilder.insert": true,
	"StringBuffer.append":  true,
	"StringBuffer.insert":  true,
}

// cleanMethods are methods whose result cannot carry attacker-controlled text
var cleanMethods = map[string]bool{
	"Integer.parseInt":         true,
	"Integer.valueOf":          true,
	"Long.parseLong":           true,
	"Long.valueOf":             true,
	"Short.parseShort":         true,
	"Double.parseDouble":       true,
	"Float.parseFloat":         true,
	"Boolean.parseBoolean":     true,
	"UUID.randomUUID":          true,
	"UUID.fromString":          true,
	"String.length":            true,
	"String.isEmpty":           true,
	"String.equals":            true,
	"String.hashCode":          true,
	"Objects.hash":             true,
	"System.currentTimeMillis": true,
	"System.nanoTime":          true,
}
