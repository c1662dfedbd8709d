// Copyright (C) 2026 The ohmu Authors
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

package ir

import "github.com/yazici/ohmu/til/opcode"

// Function wraps a name, calling convention, parameter list and return
// type around a Body, which is either a Code (plain expression form) or a
// StructuredCFG (SSA form). Each parameter introduces a scope entry that
// is live for the duration of Body.
type Function struct {
	base
	Name       string
	CC         opcode.CallingConvention
	Params     []*VarDecl
	ReturnType SExpr
	Body       SExpr
}

// NewFunction constructs a Function.
func NewFunction(name string, cc opcode.CallingConvention, params []*VarDecl, retType, body SExpr) *Function {
	return &Function{
		base: newBase(opcode.KindFunction), Name: name, CC: cc,
		Params: params, ReturnType: retType, Body: body,
	}
}

// Operands is provided for uniformity (tree-copy utilities); the encoder
// does not use it for Function, since parameter scoping requires the
// dedicated EnterScope/ExitScope bracketing in til/codec.
func (f *Function) Operands() []SExpr {
	ops := []SExpr{f.ReturnType}
	for _, p := range f.Params {
		ops = append(ops, p)
	}
	return append(ops, f.Body)
}

// Code is a function body expressed as a plain expression tree rather
// than a structured CFG.
type Code struct {
	base
	Body SExpr
}

// NewCode constructs a Code body wrapping expr.
func NewCode(expr SExpr) *Code {
	return &Code{base: newBase(opcode.KindCode), Body: expr}
}

func (c *Code) Operands() []SExpr { return []SExpr{c.Body} }

// Let binds Decl to Value for the duration of Body. Value is evaluated
// outside Decl's scope; Body is bracketed by EnterScope/ExitScope.
type Let struct {
	base
	Decl  *VarDecl
	Value SExpr
	Body  SExpr
}

// NewLet constructs a Let.
func NewLet(decl *VarDecl, value, body SExpr) *Let {
	return &Let{base: newBase(opcode.KindLet), Decl: decl, Value: value, Body: body}
}

func (l *Let) Operands() []SExpr { return []SExpr{l.Value, l.Body} }

// IfThenElse selects between Then and Else based on Cond.
type IfThenElse struct {
	base
	Cond SExpr
	Then SExpr
	Else SExpr
}

// NewIfThenElse constructs an IfThenElse.
func NewIfThenElse(cond, then, els SExpr) *IfThenElse {
	return &IfThenElse{base: newBase(opcode.KindIfThenElse), Cond: cond, Then: then, Else: els}
}

func (i *IfThenElse) Operands() []SExpr { return []SExpr{i.Cond, i.Then, i.Else} }

// Apply invokes Fn (a value, possibly computed) with Args, in the
// higher-order-application style distinguished by AKind from a direct
// Call.
type Apply struct {
	base
	AKind opcode.ApplyKind
	Fn    SExpr
	Args  []SExpr
}

// NewApply constructs an Apply.
func NewApply(kind opcode.ApplyKind, fn SExpr, args ...SExpr) *Apply {
	return &Apply{base: newBase(opcode.KindApply), AKind: kind, Fn: fn, Args: args}
}

func (a *Apply) Operands() []SExpr { return append([]SExpr{a.Fn}, a.Args...) }

// Call invokes a statically-known Callee with Args under a calling
// convention.
type Call struct {
	base
	CC     opcode.CallingConvention
	Callee SExpr
	Args   []SExpr
}

// NewCall constructs a Call.
func NewCall(cc opcode.CallingConvention, callee SExpr, args ...SExpr) *Call {
	return &Call{base: newBase(opcode.KindCall), CC: cc, Callee: callee, Args: args}
}

func (c *Call) Operands() []SExpr { return append([]SExpr{c.Callee}, c.Args...) }

// Alloc allocates storage for Type, optionally for an array of Count
// elements (Count == nil means a single element).
type Alloc struct {
	base
	AKind opcode.AllocKind
	Type  SExpr
	Count SExpr
}

// NewAlloc constructs an Alloc.
func NewAlloc(kind opcode.AllocKind, typ, count SExpr) *Alloc {
	return &Alloc{base: newBase(opcode.KindAlloc), AKind: kind, Type: typ, Count: count}
}

func (a *Alloc) Operands() []SExpr {
	if a.Count == nil {
		return []SExpr{a.Type}
	}
	return []SExpr{a.Type, a.Count}
}

// Load reads the value stored at Address.
type Load struct {
	base
	Address SExpr
}

// NewLoad constructs a Load.
func NewLoad(address SExpr) *Load {
	return &Load{base: newBase(opcode.KindLoad), Address: address}
}

func (l *Load) Operands() []SExpr { return []SExpr{l.Address} }

// Store writes Value to Address.
type Store struct {
	base
	Address SExpr
	Value   SExpr
}

// NewStore constructs a Store.
func NewStore(address, value SExpr) *Store {
	return &Store{base: newBase(opcode.KindStore), Address: address, Value: value}
}

func (s *Store) Operands() []SExpr { return []SExpr{s.Address, s.Value} }

// UnaryOp applies a unary operator to Operand.
type UnaryOp struct {
	base
	Op      opcode.UnaryOp
	Operand SExpr
}

// NewUnaryOp constructs a UnaryOp.
func NewUnaryOp(op opcode.UnaryOp, operand SExpr) *UnaryOp {
	return &UnaryOp{base: newBase(opcode.KindUnaryOp), Op: op, Operand: operand}
}

func (u *UnaryOp) Operands() []SExpr { return []SExpr{u.Operand} }

// BinaryOp applies a binary operator to Left and Right.
type BinaryOp struct {
	base
	Op    opcode.BinaryOp
	Left  SExpr
	Right SExpr
}

// NewBinaryOp constructs a BinaryOp.
func NewBinaryOp(op opcode.BinaryOp, left, right SExpr) *BinaryOp {
	return &BinaryOp{base: newBase(opcode.KindBinaryOp), Op: op, Left: left, Right: right}
}

func (b *BinaryOp) Operands() []SExpr { return []SExpr{b.Left, b.Right} }

// Cast converts Operand to Type using a fixed conversion Op.
type Cast struct {
	base
	Op      opcode.CastOp
	Type    SExpr
	Operand SExpr
}

// NewCast constructs a Cast.
func NewCast(op opcode.CastOp, typ, operand SExpr) *Cast {
	return &Cast{base: newBase(opcode.KindCast), Op: op, Type: typ, Operand: operand}
}

func (c *Cast) Operands() []SExpr { return []SExpr{c.Type, c.Operand} }
