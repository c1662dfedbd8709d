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

// Literal is a constant value of a scalar base type. Exactly one of the
// value fields is meaningful, selected by BaseType; a BasePointer literal
// is only ever the null pointer (PointerNull must be true — the encoder
// asserts this, per spec.md §4.3).
type Literal struct {
	base
	BaseType    opcode.BaseType
	VectorSize  uint8
	Bool        bool
	Int         int64
	Uint        uint64
	Float32     float32
	Float64     float64
	Str         string
	PointerNull bool
}

// NewLiteral constructs a scalar (non-vector) literal of the given base
// type; callers set the relevant value field on the returned pointer.
func NewLiteral(t opcode.BaseType) *Literal {
	return &Literal{base: newBase(opcode.KindLiteral), BaseType: t}
}

func (l *Literal) Operands() []SExpr { return nil }

// TypeShape enumerates the structural shapes a ScalarType can describe.
type TypeShape uint8

const (
	ShapeVoid TypeShape = iota
	ShapeBool
	ShapeInt
	ShapeFloat
	ShapePointer
	ShapeArray
	ShapeRecord
)

// ScalarType describes a type: a primitive shape, plus the extra fields
// the shape requires (bit width and signedness for Int, an element type
// for Pointer/Array, a field list for Record).
type ScalarType struct {
	base
	Shape    TypeShape
	Width    uint32
	Signed   bool
	Elem     SExpr // element type for ShapePointer/ShapeArray
	ArrayLen uint32
	Fields   []*Field // field declarators for ShapeRecord
}

// NewScalarType constructs a ScalarType of the given shape.
func NewScalarType(shape TypeShape) *ScalarType {
	return &ScalarType{base: newBase(opcode.KindScalarType), Shape: shape}
}

func (t *ScalarType) Operands() []SExpr {
	var ops []SExpr
	if t.Elem != nil {
		ops = append(ops, t.Elem)
	}
	for _, f := range t.Fields {
		ops = append(ops, f)
	}
	return ops
}

// Field is a (name, type) declarator used by a record-shaped ScalarType.
type Field struct {
	base
	Name string
	Type SExpr
}

// NewField constructs a Field declarator.
func NewField(name string, typ SExpr) *Field {
	return &Field{base: newBase(opcode.KindField), Name: name, Type: typ}
}

func (f *Field) Operands() []SExpr { return []SExpr{f.Type} }

// Slot is an anonymous, positionally-addressed storage location, used as
// the pointee type of an Alloc.
type Slot struct {
	base
	Type SExpr
}

// NewSlot constructs a Slot.
func NewSlot(typ SExpr) *Slot {
	return &Slot{base: newBase(opcode.KindSlot), Type: typ}
}

func (s *Slot) Operands() []SExpr { return []SExpr{s.Type} }
