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
Package taint implements the intra-procedural taint tracking of method bodies. The main entry point is
[Tracker.Analyze], which walks the statements of one method in order and returns a [State] holding the bindings of
every local and the [CallSite] record of every call and object creation in the body.

Each binding carries a [Label] (clean, unknown or tainted), an [Origin] recording how the value was produced, and the
constant information computed by the constant package. Parameters of the analyzed method are tainted, literals are
clean, and the result of a call is tainted as soon as one of its receiver or arguments is. Branches are analyzed on
copies of the environment which are merged at the join point, the merged binding taking the highest label. Loop
bodies are analyzed once.

Call sites record the binding each local argument refers to, so that the rules package can look at the label, the
origin or the constant value of the argument at the time of the call, and scan the later uses of a receiver.
*/
package taint
