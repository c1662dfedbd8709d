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

package opcode

// VariableKind is a 2-bit field distinguishing the storage discipline of a
// VarDecl.
type VariableKind uint32

const (
	VarLocal VariableKind = iota
	VarParam
	VarGlobal
	VarCapture
)

// CallingConvention is a 4-bit field on Function.
type CallingConvention uint32

const (
	CCDefault CallingConvention = iota
	CCC
	CCFast
	CCCold
)

// ApplyKind is a 2-bit field on Apply distinguishing direct calls from
// higher-order application.
type ApplyKind uint32

const (
	ApplyDirect ApplyKind = iota
	ApplyIndirect
	ApplyPartial
)

// AllocKind is a 2-bit field on Alloc.
type AllocKind uint32

const (
	AllocStack AllocKind = iota
	AllocHeap
	AllocArena
)

// UnaryOp is a 6-bit field on UnaryOp nodes.
type UnaryOp uint32

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
)

// BinaryOp is a 6-bit field on BinaryOp nodes.
type BinaryOp uint32

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryShl
	BinaryShr
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
)

// CastOp is a 6-bit field on Cast nodes.
type CastOp uint32

const (
	CastBitcast CastOp = iota
	CastTruncate
	CastSignExtend
	CastZeroExtend
	CastFloatToInt
	CastIntToFloat
	CastPtrToInt
	CastIntToPtr
)

// BaseType is the packed 8-bit literal base-type descriptor. The
// descriptor is followed by a 1-bit flag that is set when the literal's
// VectorSize is >= 1, in which case a one-byte vector size follows the
// flag.
type BaseType uint8

const (
	BaseBool BaseType = iota
	BaseInt8
	BaseInt16
	BaseInt32
	BaseInt64
	BaseUint8
	BaseUint16
	BaseUint32
	BaseUint64
	BaseFloat32
	BaseFloat64
	BasePointer
	BaseString
)

// IsVectorCapable reports whether t may carry a vector-size suffix byte.
func (t BaseType) IsVectorCapable() bool {
	switch t {
	case BaseBool, BaseString, BasePointer:
		return false
	default:
		return true
	}
}
