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

// Tracker runs the intraprocedural taint analysis of methods. A Tracker is read-only and can analyze methods
// concurrently; each analysis owns its State.
type Tracker struct {
	table       *symbols.Table
	eval        *constant.Evaluator
	isSanitizer func(recvType string, method string) bool
}

// Option is an option of the tracker
type Option func(*Tracker)

// WithSanitizers sets the predicate identifying the calls whose result is clean, in addition to the library model
func WithSanitizers(isSanitizer func(recvType string, method string) bool) Option {
	return func(t *Tracker) {
		t.isSanitizer = isSanitizer
	}
}

// NewTracker returns a tracker resolving symbols in table and constants with eval
func NewTracker(table *symbols.Table, eval *constant.Evaluator, options ...Option) *Tracker {
	t := &Tracker{
		table:       table,
		eval:        eval,
		isSanitizer: func(string, string) bool { return false },
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Analyze runs the taint analysis of method m declared in decl. Parameters are tainted, and statements are
// processed in source order; both branches of conditionals are analyzed and their results merged.
func (t *Tracker) Analyze(decl *syntax.TypeDecl, m *syntax.Method) *State {
	w := &walker{
		Tracker:  t,
		state:    &State{Method: m, Enclosing: decl},
		env:      Env{},
		versions: map[string]int{},
		fields:   map[int]bool{},
	}
	for _, p := range m.Params {
		w.bind(p.Name, p.Type, Parameter, Tainted, constant.NotConstant, p.Pos)
	}
	if m.Body != nil {
		w.stmt(m.Body)
	}
	return w.state
}

// walker is the state of the analysis of one method
type walker struct {
	*Tracker
	state    *State
	env      Env
	versions map[string]int
	// fields are the bindings of the fields tracked in the initializer method
	fields map[int]bool
}

// walker implements constant.Scope over the current environment

func (w *walker) LocalType(name string) (string, bool) {
	id, ok := w.env[name]
	if !ok {
		return "", false
	}
	b := w.state.Bindings[id]
	// the instance is known to be of the allocated subtype
	if b.AllocatedType != "" && w.table.IsSubtype(b.AllocatedType, b.DeclaredType) {
		return b.AllocatedType, true
	}
	return b.DeclaredType, true
}

func (w *walker) Local(name string) (constant.Info, bool) {
	id, ok := w.env[name]
	if !ok {
		return constant.NotConstant, false
	}
	return w.state.Bindings[id].Constant, true
}

func (w *walker) Enclosing() *syntax.TypeDecl {
	return w.state.Enclosing
}

func (w *walker) bind(name string, typ string, origin Origin, l Label, c constant.Info, pos syntax.Pos) int {
	v := w.versions[name]
	w.versions[name] = v + 1
	id := w.state.newBinding(Binding{
		Name:         name,
		DeclaredType: typ,
		Origin:       origin,
		Version:      v,
		Constant:     c,
		Pos:          pos,
	}, l)
	w.env[name] = id
	return id
}

// rebind creates a new version of the existing binding old, for the same instance
func (w *walker) rebind(old *Binding, origin Origin, l Label, c constant.Info, pos syntax.Pos) int {
	alloc := old.AllocatedType
	id := w.bind(old.Name, old.DeclaredType, origin, l, c, pos)
	w.state.Bindings[id].AllocatedType = alloc
	if w.fields[old.ID] {
		w.fields[id] = true
	}
	return id
}

// allocatedType returns the type created by x when x is an instance creation
func allocatedType(x syntax.Expr) string {
	if n, ok := syntax.StripCasts(x).(*syntax.New); ok {
		return n.Type
	}
	return ""
}

func originOf(x syntax.Expr) Origin {
	switch syntax.StripCasts(x).(type) {
	case *syntax.Literal:
		return Literal
	case *syntax.Call, *syntax.New:
		return CallResult
	}
	return Derived
}

// localOf returns the binding of x if x is a local name, or a field tracked in the initializer method
func (w *walker) localOf(x syntax.Expr) int {
	switch x := syntax.StripCasts(x).(type) {
	case *syntax.Ident:
		if b, ok := w.env[x.Name]; ok {
			return b
		}
	case *syntax.FieldRef:
		owner, ok := x.X.(*syntax.Ident)
		if !ok || w.state.Enclosing == nil || (owner.Name != "this" && owner.Name != w.state.Enclosing.Name) {
			break
		}
		if _, shadowed := w.env[owner.Name]; shadowed {
			break
		}
		if b, ok := w.env[x.Name]; ok && w.fields[b] {
			return b
		}
	}
	return NoBinding
}

func (w *walker) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case nil:
		return
	case *syntax.Block:
		if s == nil {
			return
		}
		for _, x := range s.Stmts {
			w.stmt(x)
		}
	case *syntax.LocalDecl:
		w.localDecl(s)
	case *syntax.Assign:
		w.assign(s)
	case *syntax.ExprStmt:
		w.expr(s.X)
	case *syntax.Return:
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *syntax.Throw:
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *syntax.If:
		w.expr(s.Cond)
		base := w.env
		w.env = base.copy()
		w.stmt(s.Then)
		thenEnv := w.env
		w.env = base.copy()
		w.stmt(s.Else)
		w.env = w.merge(thenEnv, w.env, s.Pos)
	case *syntax.Loop:
		for _, x := range s.Init {
			w.stmt(x)
		}
		if s.Cond != nil {
			w.expr(s.Cond)
		}
		base := w.env
		w.env = base.copy()
		w.stmt(s.Body)
		for _, x := range s.Update {
			w.stmt(x)
		}
		w.env = w.merge(base, w.env, s.Pos)
	case *syntax.Try:
		for _, x := range s.Resources {
			w.stmt(x)
		}
		entry := w.env.copy()
		w.stmt(s.Body)
		after := w.env
		envs := []Env{after}
		// a catch clause may be entered before any assignment of the body
		thrown := w.merge(entry, after, s.Pos)
		for _, c := range s.Catches {
			w.env = thrown.copy()
			w.bind(c.Param.Name, c.Param.Type, Derived, Unknown, constant.NotConstant, c.Param.Pos)
			w.stmt(c.Body)
			envs = append(envs, w.env)
		}
		w.env = w.mergeAll(envs, s.Pos)
		if s.Finally != nil {
			w.stmt(s.Finally)
		}
	case *syntax.Switch:
		if s.Tag != nil {
			w.expr(s.Tag)
		}
		base := w.env
		envs := []Env{base}
		for _, c := range s.Cases {
			w.env = base.copy()
			w.stmt(c)
			envs = append(envs, w.env)
		}
		w.env = w.mergeAll(envs, s.Pos)
	}
}

func (w *walker) localDecl(s *syntax.LocalDecl) {
	label, info, origin := Unknown, constant.NotConstant, Derived
	typ := s.Type
	n := len(w.state.Calls)
	if s.Init != nil {
		label = w.expr(s.Init)
		info = w.eval.Eval(s.Init, w)
		origin = originOf(s.Init)
		if typ == "" || typ == "var" {
			typ = w.table.TypeOf(s.Init, w)
		}
	}
	id := w.bind(s.Name, typ, origin, label, info, s.Pos)
	w.state.Bindings[id].AllocatedType = allocatedType(s.Init)
	w.setTarget(s.Init, n, id)
}

func (w *walker) assign(s *syntax.Assign) {
	switch target := syntax.StripCasts(s.Target).(type) {
	case *syntax.Ident:
		oldID, isLocal := w.env[target.Name]
		n := len(w.state.Calls)
		label := w.expr(s.Value)
		if !isLocal {
			if f := w.initializedField(target.Name); f != nil && (s.Op == "=" || s.Op == "") {
				id := w.bind(f.Name, f.Type, originOf(s.Value), label, w.eval.Eval(s.Value, w), s.Pos)
				w.state.Bindings[id].AllocatedType = allocatedType(s.Value)
				w.fields[id] = true
				w.setTarget(s.Value, n, id)
			}
			return
		}
		old := w.state.Bindings[oldID]
		info := w.eval.Eval(s.Value, w)
		if s.Op != "=" && s.Op != "" {
			label = Join(label, w.state.Label(oldID))
			info = compound(s.Op, old.Constant, info)
		}
		id := w.rebind(old, originOf(s.Value), label, info, s.Pos)
		if s.Op == "=" || s.Op == "" {
			w.state.Bindings[id].AllocatedType = allocatedType(s.Value)
			w.setTarget(s.Value, n, id)
		}
	case *syntax.Index:
		w.expr(target.Index)
		label := w.expr(s.Value)
		if oldID := w.localOf(target.X); oldID != NoBinding {
			old := w.state.Bindings[oldID]
			info := old.Constant
			info.HasValue = false
			info.Constant = info.Constant && w.eval.IsConstant(s.Value, w)
			w.rebind(old, Derived, Join(w.state.Label(oldID), label), info, s.Pos)
		}
	default:
		w.expr(target)
		w.expr(s.Value)
	}
}

// initializedField returns the final field of the enclosing type named name when the method is the initializer
// method of the type. In the initializer method, such a field holds one instance and is tracked like a local.
func (w *walker) initializedField(name string) *syntax.Field {
	if w.state.Method == nil || w.state.Method.Name != syntax.InitializerMethod || w.state.Enclosing == nil {
		return nil
	}
	if f := w.state.Enclosing.Field(name); f != nil && f.Final {
		return f
	}
	return nil
}

// compound returns the constant information of a compound assignment x op= y
func compound(op string, x constant.Info, y constant.Info) constant.Info {
	if !x.Constant || !y.Constant {
		return constant.NotConstant
	}
	if op == "+=" && x.HasValue && y.HasValue {
		return constant.Info{Constant: true, Value: x.Value + y.Value, HasValue: true}
	}
	return constant.Info{Constant: true}
}

// setTarget records that the result of the call x, whose evaluation recorded calls from index n, is assigned to
// the binding id. The call itself is the last one recorded since calls are recorded in post-order.
func (w *walker) setTarget(x syntax.Expr, n int, id int) {
	x = syntax.StripCasts(x)
	switch x.(type) {
	case *syntax.Call, *syntax.New:
	default:
		return
	}
	if len(w.state.Calls) > n {
		last := w.state.Calls[len(w.state.Calls)-1]
		if last.Expr == x {
			last.Target = id
		}
	}
}

// merge merges two environments: names bound to different versions get a new Derived binding whose label is the
// join of both labels, and which is constant only if both versions are
func (w *walker) merge(a Env, b Env, pos syntax.Pos) Env {
	res := a.copy()
	for name, idB := range b {
		idA, ok := a[name]
		if !ok {
			res[name] = idB
			continue
		}
		if idA == idB {
			continue
		}
		x, y := w.state.Bindings[idA], w.state.Bindings[idB]
		info := constant.Info{Constant: x.Constant.Constant && y.Constant.Constant}
		if info.Constant && x.Constant.HasValue && y.Constant.HasValue && x.Constant.Value == y.Constant.Value {
			info = x.Constant
		}
		typ := x.DeclaredType
		if typ == "" {
			typ = y.DeclaredType
		}
		alloc := ""
		if x.AllocatedType == y.AllocatedType {
			alloc = x.AllocatedType
		}
		v := w.versions[name]
		w.versions[name] = v + 1
		res[name] = w.state.newBinding(Binding{
			Name:          name,
			DeclaredType:  typ,
			AllocatedType: alloc,
			Origin:        Derived,
			Version:       v,
			Constant:      info,
			Pos:           pos,
		}, Join(w.state.Label(idA), w.state.Label(idB)))
		if w.fields[idA] || w.fields[idB] {
			w.fields[res[name]] = true
		}
	}
	return res
}

func (w *walker) mergeAll(envs []Env, pos syntax.Pos) Env {
	res := envs[0]
	for _, e := range envs[1:] {
		res = w.merge(res, e, pos)
	}
	return res
}
