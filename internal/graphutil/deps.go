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

// Package graphutil contains graph utilities used by the analyses.
package graphutil

import (
	"github.com/yourbasic/graph"
)

// Dependencies is a directed dependency graph over comparable nodes. An edge from x to y means x depends on y.
type Dependencies[T comparable] struct {
	index map[T]int
	nodes []T
	edges [][2]int
}

// NewDependencies returns an empty dependency graph
func NewDependencies[T comparable]() *Dependencies[T] {
	return &Dependencies[T]{index: map[T]int{}}
}

// AddNode adds x to the graph if it is not already present, and returns its index
func (d *Dependencies[T]) AddNode(x T) int {
	if i, ok := d.index[x]; ok {
		return i
	}
	i := len(d.nodes)
	d.index[x] = i
	d.nodes = append(d.nodes, x)
	return i
}

// AddEdge records that from depends on to. Both nodes are added if needed.
func (d *Dependencies[T]) AddEdge(from T, to T) {
	d.edges = append(d.edges, [2]int{d.AddNode(from), d.AddNode(to)})
}

// Len returns the number of nodes
func (d *Dependencies[T]) Len() int {
	return len(d.nodes)
}

func (d *Dependencies[T]) build() *graph.Mutable {
	g := graph.New(len(d.nodes))
	for _, e := range d.edges {
		g.Add(e[0], e[1])
	}
	return g
}

// Components returns the strongly connected components of the graph
func (d *Dependencies[T]) Components() [][]T {
	var res [][]T
	for _, comp := range graph.StrongComponents(d.build()) {
		c := make([]T, len(comp))
		for i, v := range comp {
			c[i] = d.nodes[v]
		}
		res = append(res, c)
	}
	return res
}

// Cyclic returns the set of nodes that lie on a dependency cycle, including self-dependencies
func (d *Dependencies[T]) Cyclic() map[T]bool {
	g := d.build()
	cyclic := map[T]bool{}
	for _, comp := range graph.StrongComponents(g) {
		if len(comp) > 1 || g.Edge(comp[0], comp[0]) {
			for _, v := range comp {
				cyclic[d.nodes[v]] = true
			}
		}
	}
	return cyclic
}
