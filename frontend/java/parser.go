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

// Package java converts Java source code into the syntax model of the analyses, using the tree-sitter Java grammar.
//
// The conversion is syntactic: names are not resolved and types are the declared types, as written. Type
// declarations nested in other types are flattened into the unit.
package java

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/awslabs/sinkcheck/analysis/syntax"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ErrParse is returned when the source code has syntax errors
var ErrParse = errors.New("java syntax error")

// parsers holds tree-sitter parsers: a parser cannot be used by two goroutines at the same time
var parsers = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		parser.SetLanguage(java.GetLanguage())
		return parser
	},
}

// Frontend parses Java source files. The zero value is ready to use, and it is safe for concurrent use.
type Frontend struct{}

// Parse parses the source code of the file at path
func (Frontend) Parse(ctx context.Context, path string, src []byte) (*syntax.Unit, error) {
	return Parse(ctx, path, src)
}

// Comments returns the comments of the source code of the file at path
func (Frontend) Comments(ctx context.Context, path string, src []byte) ([]syntax.Comment, error) {
	return Comments(ctx, path, src)
}

// ParseFile reads and parses the file at path
func ParseFile(ctx context.Context, path string) (*syntax.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return Parse(ctx, path, src)
}

// Parse parses the source code src of the file at path. If the source has syntax errors, the error wraps ErrParse
// and locates the first error.
func Parse(ctx context.Context, path string, src []byte) (*syntax.Unit, error) {
	var unit *syntax.Unit
	err := withTree(ctx, path, src, func(root *sitter.Node) error {
		if root.HasError() {
			pos := syntax.Pos{File: path}
			if n := firstError(root); n != nil {
				pos.Line, pos.Column = int(n.StartPoint().Row)+1, int(n.StartPoint().Column)+1
			}
			return fmt.Errorf("%w at %s", ErrParse, pos)
		}
		c := &converter{path: path, src: src}
		unit = c.unit(root)
		unit.Comments = c.comments(root)
		return nil
	})
	return unit, err
}

// Comments returns the comments of the source code src of the file at path. Syntax errors are recovered from, so
// that the comments of files that do not parse are available.
func Comments(ctx context.Context, path string, src []byte) ([]syntax.Comment, error) {
	var comments []syntax.Comment
	err := withTree(ctx, path, src, func(root *sitter.Node) error {
		comments = (&converter{path: path, src: src}).comments(root)
		return nil
	})
	return comments, err
}

// withTree parses src with a pooled parser and calls f on the root of the tree
func withTree(ctx context.Context, path string, src []byte, f func(root *sitter.Node) error) error {
	parser := parsers.Get().(*sitter.Parser)
	defer func() {
		parser.Reset()
		parsers.Put(parser)
	}()
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("tree-sitter failed to parse %s: %w", path, err)
	}
	defer tree.Close()
	return f(tree.RootNode())
}

// firstError returns the first node of the tree that is an error or a missing node
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil || n.IsNull() || !n.HasError() {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := firstError(n.Child(i)); e != nil {
			return e
		}
	}
	return n
}
