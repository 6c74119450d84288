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

package taint

import (
	"github.com/awslabs/sinkcheck/analysis/constant"
	"github.com/awslabs/sinkcheck/analysis/symbols"
	"github.com/awslabs/sinkcheck/analysis/syntax"
)

// expr returns the label of x, recording the call sites it contains in evaluation order
func (w *walker) expr(x syntax.Expr) Label {
	switch x := x.(type) {
	case nil:
		return Clean
	case *syntax.Literal, *syntax.ClassLit:
		return Clean
	case *syntax.Ident:
		return w.ident(x)
	case *syntax.FieldRef:
		l := w.expr(x.X)
		if w.eval.IsConstant(x, w) {
			return Clean
		}
		return Join(l, Unknown)
	case *syntax.Call:
		return w.call(x)
	case *syntax.New:
		return w.newInstance(x)
	case *syntax.NewArray:
		l := Clean
		for _, d := range x.Dims {
			l = Join(l, w.expr(d))
		}
		for _, e := range x.Elems {
			l = Join(l, w.expr(e))
		}
		return l
	case *syntax.Binary:
		return Join(w.expr(x.X), w.expr(x.Y))
	case *syntax.Unary:
		return w.expr(x.X)
	case *syntax.Cond:
		c, a, b := w.expr(x.Cond), w.expr(x.Then), w.expr(x.Else)
		// choosing between two constants does not let the condition flow into the result
		if w.eval.IsConstant(x.Then, w) && w.eval.IsConstant(x.Else, w) {
			return Join(a, b)
		}
		return Join(c, a, b)
	case *syntax.Cast:
		return w.expr(x.X)
	case *syntax.Index:
		return Join(w.expr(x.X), w.expr(x.Index))
	case *syntax.Lambda:
		w.lambda(x)
		return Unknown
	case *syntax.Opaque:
		l := Unknown
		for _, sub := range x.Subs {
			l = Join(l, w.expr(sub))
		}
		return l
	}
	return Unknown
}

func (w *walker) ident(x *syntax.Ident) Label {
	if id, ok := w.env[x.Name]; ok {
		return w.state.Label(id)
	}
	if x.Name == "this" || x.Name == "super" {
		return Clean
	}
	if encl := w.state.Enclosing; encl != nil {
		if f := w.table.FieldOf(encl, x.Name); f != nil {
			if w.eval.Field(f).Constant {
				return Clean
			}
			return Unknown
		}
	}
	if w.table.IsTypeName(x.Name) {
		return Clean
	}
	return Unknown
}

// lambda analyzes the body of a lambda in a copy of the environment, with tainted parameters. Call sites in the
// body are recorded like the other call sites of the method.
func (w *walker) lambda(x *syntax.Lambda) {
	saved := w.env
	w.env = saved.copy()
	for _, p := range x.Params {
		w.bind(p.Name, p.Type, Parameter, Tainted, constant.NotConstant, p.Pos)
	}
	switch body := x.Body.(type) {
	case nil:
	case *syntax.ExprStmt:
		w.expr(body.X)
	default:
		w.stmt(body)
	}
	w.env = saved
}

// arg returns the argument record of x, whose label l has already been computed
func (w *walker) arg(x syntax.Expr, l Label) Arg {
	return Arg{
		Expr:     x,
		Label:    l,
		Constant: w.eval.Eval(x, w),
		Type:     w.table.TypeOf(x, w),
		Binding:  w.localOf(x),
	}
}

func (w *walker) args(xs []syntax.Expr) []Arg {
	labels := make([]Label, len(xs))
	for i, x := range xs {
		labels[i] = w.expr(x)
	}
	args := make([]Arg, len(xs))
	for i, x := range xs {
		args[i] = w.arg(x, labels[i])
	}
	return args
}

func (w *walker) call(x *syntax.Call) Label {
	recv := Arg{Label: Clean, Binding: NoBinding}
	recvType := ""
	if x.Recv != nil {
		recv = w.arg(x.Recv, w.expr(x.Recv))
		recvType = symbols.SimpleName(recv.Type)
	} else if w.state.Enclosing != nil {
		recvType = w.state.Enclosing.Name
	}
	args := w.args(x.Args)
	w.record(&CallSite{
		Expr:         x,
		Method:       x.Name,
		ReceiverType: recvType,
		Receiver:     recv,
		Args:         args,
		Pos:          x.Pos,
	})

	inputs := make([]Label, 0, len(args)+1)
	inputs = append(inputs, recv.Label)
	for _, a := range args {
		inputs = append(inputs, a.Label)
	}
	if recv.Binding != NoBinding && w.table.IsMutator(recvType, x.Name) {
		old := w.state.Bindings[recv.Binding]
		info := constant.NotConstant
		if old.Constant.Constant && allConstant(args) {
			info = constant.Info{Constant: true}
		}
		w.rebind(old, Derived, Join(inputs...), info, x.Pos)
	}

	switch {
	case w.table.IsCleanMethod(recvType, x.Name) || w.isSanitizer(recvType, x.Name):
		return Clean
	case w.table.IsStringMethod(recvType, x.Name):
		return Join(inputs...)
	case Join(inputs...) == Tainted:
		return Tainted
	}
	return Unknown
}

func (w *walker) newInstance(x *syntax.New) Label {
	args := w.args(x.Args)
	w.record(&CallSite{
		Expr:         x,
		Method:       "<init>",
		ReceiverType: symbols.SimpleName(x.Type),
		Receiver:     Arg{Label: Clean, Binding: NoBinding},
		Args:         args,
		Pos:          x.Pos,
	})
	l := Clean
	for _, a := range args {
		l = Join(l, a.Label)
	}
	return l
}

func (w *walker) record(c *CallSite) {
	c.Target = NoBinding
	c.Order = len(w.state.Calls)
	c.Env = w.env.copy()
	w.state.Calls = append(w.state.Calls, c)
}

func allConstant(args []Arg) bool {
	for _, a := range args {
		if !a.Constant.Constant {
			return false
		}
	}
	return true
}
