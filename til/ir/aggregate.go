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

// Record constructs an aggregate value from an ordered, variadic list of
// sub-expressions. The element count transmits as a VBR32 field after the
// Record opcode, which itself follows the elements.
type Record struct {
	base
	Values []SExpr
}

// NewRecord constructs a Record value from values.
func NewRecord(values ...SExpr) *Record {
	return &Record{base: newBase(opcode.KindRecord), Values: values}
}

func (r *Record) Operands() []SExpr { return r.Values }

// Array constructs a homogeneous array value from an element type and a
// variadic list of element sub-expressions.
type Array struct {
	base
	ElemType SExpr
	Values   []SExpr
}

// NewArray constructs an Array value.
func NewArray(elemType SExpr, values ...SExpr) *Array {
	return &Array{base: newBase(opcode.KindArray), ElemType: elemType, Values: values}
}

func (a *Array) Operands() []SExpr {
	return append([]SExpr{a.ElemType}, a.Values...)
}

// Project extracts a field from a record value by declared index.
type Project struct {
	base
	From       SExpr
	FieldIndex uint32
}

// NewProject constructs a Project of from's field at fieldIndex.
func NewProject(from SExpr, fieldIndex uint32) *Project {
	return &Project{base: newBase(opcode.KindProject), From: from, FieldIndex: fieldIndex}
}

func (p *Project) Operands() []SExpr { return []SExpr{p.From} }

// ArrayIndex reads an element from an array value.
type ArrayIndex struct {
	base
	Array SExpr
	Index SExpr
}

// NewArrayIndex constructs an ArrayIndex.
func NewArrayIndex(array, index SExpr) *ArrayIndex {
	return &ArrayIndex{base: newBase(opcode.KindArrayIndex), Array: array, Index: index}
}

func (a *ArrayIndex) Operands() []SExpr { return []SExpr{a.Array, a.Index} }

// ArrayAdd returns a new array value equal to Array with Index replaced by
// Value (a persistent/functional update).
type ArrayAdd struct {
	base
	Array SExpr
	Index SExpr
	Value SExpr
}

// NewArrayAdd constructs an ArrayAdd.
func NewArrayAdd(array, index, value SExpr) *ArrayAdd {
	return &ArrayAdd{base: newBase(opcode.KindArrayAdd), Array: array, Index: index, Value: value}
}

func (a *ArrayAdd) Operands() []SExpr { return []SExpr{a.Array, a.Index, a.Value} }
