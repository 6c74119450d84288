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

package syntax

// Stmt is a statement of a method body
type Stmt interface {
	Position() Pos
	stmtNode()
}

// Expr is an expression
type Expr interface {
	Position() Pos
	exprNode()
}

// Statements

type (
	// LocalDecl declares a local variable. Type is "var" for inferred declarations. Init may be nil.
	LocalDecl struct {
		Name  string
		Type  string
		Final bool
		Init  Expr
		Pos   Pos
	}

	// Assign assigns Value to Target. Op is "=" or a compound operator such as "+=".
	Assign struct {
		Target Expr
		Op     string
		Value  Expr
		Pos    Pos
	}

	// ExprStmt evaluates an expression for its side effects
	ExprStmt struct {
		X   Expr
		Pos Pos
	}

	// Return returns from the method. Value may be nil.
	Return struct {
		Value Expr
		Pos   Pos
	}

	// Throw raises an exception
	Throw struct {
		Value Expr
		Pos   Pos
	}

	// Block is a sequence of statements
	Block struct {
		Stmts []Stmt
		Pos   Pos
	}

	// If is a conditional. Else may be nil.
	If struct {
		Cond Expr
		Then Stmt
		Else Stmt
		Pos  Pos
	}

	// Loop is any loop. Init statements run once before the loop; for an enhanced for loop, Init declares the
	// iteration variable initialized from the iterated expression.
	Loop struct {
		Init   []Stmt
		Cond   Expr
		Update []Stmt
		Body   Stmt
		Pos    Pos
	}

	// Try is a try statement. Resources are the resource declarations of a try-with-resources.
	Try struct {
		Resources []Stmt
		Body      *Block
		Catches   []*Catch
		Finally   *Block
		Pos       Pos
	}

	// Catch is one catch clause of a Try
	Catch struct {
		Param Param
		Body  *Block
	}

	// Switch is a multi-way branch. Each case body runs from the environment before the switch.
	Switch struct {
		Tag   Expr
		Cases []*Block
		Pos   Pos
	}
)

func (s *LocalDecl) Position() Pos { return s.Pos }
func (s *Assign) Position() Pos    { return s.Pos }
func (s *ExprStmt) Position() Pos  { return s.Pos }
func (s *Return) Position() Pos    { return s.Pos }
func (s *Throw) Position() Pos     { return s.Pos }
func (s *Block) Position() Pos     { return s.Pos }
func (s *If) Position() Pos        { return s.Pos }
func (s *Loop) Position() Pos      { return s.Pos }
func (s *Try) Position() Pos       { return s.Pos }
func (s *Switch) Position() Pos    { return s.Pos }

func (*LocalDecl) stmtNode() {}
func (*Assign) stmtNode()    {}
func (*ExprStmt) stmtNode()  {}
func (*Return) stmtNode()    {}
func (*Throw) stmtNode()     {}
func (*Block) stmtNode()     {}
func (*If) stmtNode()        {}
func (*Loop) stmtNode()      {}
func (*Try) stmtNode()       {}
func (*Switch) stmtNode()    {}

// LitKind is the kind of a literal
type LitKind int

const (
	StringLit LitKind = iota
	IntLit
	FloatLit
	CharLit
	BoolLit
	NullLit
)

// Expressions

type (
	// Literal is a literal value. For string and char literals, Value is unquoted.
	Literal struct {
		Kind  LitKind
		Value string
		Pos   Pos
	}

	// Ident is a simple name: a local, a parameter, a field of the enclosing type, a type name, "this" or "super"
	Ident struct {
		Name string
		Pos  Pos
	}

	// FieldRef is a qualified name X.Name
	FieldRef struct {
		X    Expr
		Name string
		Pos  Pos
	}

	// Call is a method invocation. Recv is nil for unqualified calls.
	Call struct {
		Recv Expr
		Name string
		Args []Expr
		Pos  Pos
	}

	// New is an instance creation expression
	New struct {
		Type string
		Args []Expr
		Pos  Pos
	}

	// NewArray is an array creation, with either dimension expressions or an initializer.
	// Type is the element type.
	NewArray struct {
		Type  string
		Dims  []Expr
		Elems []Expr
		Pos   Pos
	}

	// Binary is a binary operation
	Binary struct {
		Op  string
		X   Expr
		Y   Expr
		Pos Pos
	}

	// Unary is a prefix or postfix unary operation
	Unary struct {
		Op  string
		X   Expr
		Pos Pos
	}

	// Cond is a ternary conditional
	Cond struct {
		Cond Expr
		Then Expr
		Else Expr
		Pos  Pos
	}

	// Cast is a type cast
	Cast struct {
		Type string
		X    Expr
		Pos  Pos
	}

	// ClassLit is a class literal T.class
	ClassLit struct {
		Type string
		Pos  Pos
	}

	// Index is an array access X[Index]
	Index struct {
		X     Expr
		Index Expr
		Pos   Pos
	}

	// Lambda is a lambda expression or method reference. Body is nil for method references.
	Lambda struct {
		Params []Param
		Body   Stmt
		Pos    Pos
	}

	// Opaque is any expression the model does not represent. Subs holds its sub-expressions.
	Opaque struct {
		Kind string
		Subs []Expr
		Pos  Pos
	}
)

func (e *Literal) Position() Pos  { return e.Pos }
func (e *Ident) Position() Pos    { return e.Pos }
func (e *FieldRef) Position() Pos { return e.Pos }
func (e *Call) Position() Pos     { return e.Pos }
func (e *New) Position() Pos      { return e.Pos }
func (e *NewArray) Position() Pos { return e.Pos }
func (e *Binary) Position() Pos   { return e.Pos }
func (e *Unary) Position() Pos    { return e.Pos }
func (e *Cond) Position() Pos     { return e.Pos }
func (e *Cast) Position() Pos     { return e.Pos }
func (e *ClassLit) Position() Pos { return e.Pos }
func (e *Index) Position() Pos    { return e.Pos }
func (e *Lambda) Position() Pos   { return e.Pos }
func (e *Opaque) Position() Pos   { return e.Pos }

func (*Literal) exprNode()  {}
func (*Ident) exprNode()    {}
func (*FieldRef) exprNode() {}
func (*Call) exprNode()     {}
func (*New) exprNode()      {}
func (*NewArray) exprNode() {}
func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Cond) exprNode()     {}
func (*Cast) exprNode()     {}
func (*ClassLit) exprNode() {}
func (*Index) exprNode()    {}
func (*Lambda) exprNode()   {}
func (*Opaque) exprNode()   {}

// StripCasts strips casts from e, returning the expression whose value flows through
func StripCasts(e Expr) Expr {
	for {
		c, ok := e.(*Cast)
		if !ok {
			return e
		}
		e = c.X
	}
}

// Inspect traverses the expression tree rooted at e in depth-first order, calling f on each node before its
// children. If f returns false, the children of the node are skipped. Lambda bodies are not traversed.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	var subs []Expr
	switch x := e.(type) {
	case *FieldRef:
		subs = []Expr{x.X}
	case *Call:
		subs = append([]Expr{x.Recv}, x.Args...)
	case *New:
		subs = x.Args
	case *NewArray:
		subs = append(append(subs, x.Dims...), x.Elems...)
	case *Binary:
		subs = []Expr{x.X, x.Y}
	case *Unary:
		subs = []Expr{x.X}
	case *Cond:
		subs = []Expr{x.Cond, x.Then, x.Else}
	case *Cast:
		subs = []Expr{x.X}
	case *Index:
		subs = []Expr{x.X, x.Index}
	case *Opaque:
		subs = x.Subs
	}
	for _, sub := range subs {
		Inspect(sub, f)
	}
}
