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

// VarDecl introduces a lexical name into the implicit scope stack. It is
// only ever visited as the operand of PsopEnterScope/PsopExitScope
// brackets (Let, Function parameters); it never appears as a plain inline
// operand elsewhere.
type VarDecl struct {
	base
	VKind opcode.VariableKind
	Name  string
	Type  SExpr
}

// NewVarDecl constructs a VarDecl.
func NewVarDecl(kind opcode.VariableKind, name string, typ SExpr) *VarDecl {
	return &VarDecl{base: newBase(opcode.KindVarDecl), VKind: kind, Name: name, Type: typ}
}

func (d *VarDecl) Operands() []SExpr {
	if d.Type == nil {
		return nil
	}
	return []SExpr{d.Type}
}

// Variable is a reference to a lexical name: a 1-based index into the
// scope stack at the point of reference (index 0 is the decoder's
// sentinel and never appears on the wire).
type Variable struct {
	base
	ScopeIndex uint32
}

// NewVariable constructs a reference to the scope entry at index (1-based).
func NewVariable(index uint32) *Variable {
	return &Variable{base: newBase(opcode.KindVariable), ScopeIndex: index}
}

func (v *Variable) Operands() []SExpr { return nil }

// Identifier is an unresolved, non-scoped name reference — for example a
// global symbol mentioned before its declaration is linked. Unlike
// Variable it carries the name itself rather than a scope index.
type Identifier struct {
	base
	Name string
}

// NewIdentifier constructs an Identifier.
func NewIdentifier(name string) *Identifier {
	return &Identifier{base: newBase(opcode.KindIdentifier), Name: name}
}

func (i *Identifier) Operands() []SExpr { return nil }

// Wildcard is a "don't care" placeholder node with no fields.
type Wildcard struct{ base }

// NewWildcard constructs a Wildcard.
func NewWildcard() *Wildcard { return &Wildcard{base: newBase(opcode.KindWildcard)} }

func (w *Wildcard) Operands() []SExpr { return nil }

// Undefined is a poison value of a known type.
type Undefined struct {
	base
	Type SExpr
}

// NewUndefined constructs an Undefined value of typ.
func NewUndefined(typ SExpr) *Undefined {
	return &Undefined{base: newBase(opcode.KindUndefined), Type: typ}
}

func (u *Undefined) Operands() []SExpr { return []SExpr{u.Type} }
