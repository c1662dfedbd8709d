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

// Package opcode defines the wire enumerations shared by the encoder and
// decoder: the fused 6-bit pseudo-opcode/expression-opcode field, and the
// narrower fixed-width fields (annotation kind, unary/binary/cast op,
// variable kind, calling convention, apply kind, alloc kind, literal base
// type). Values are stable across a given codec version.
package opcode

import "fmt"

// Code is the fused 6-bit field distinguishing structural markers
// (pseudo-opcodes) from expression kinds. Pseudo-opcodes occupy the low
// part of the space; expression opcodes are encoded as Last+Kind.
type Code uint32

// Pseudo-opcodes: structural markers.
const (
	PsopNull Code = iota
	PsopWeakInstrRef
	PsopBBArgument
	PsopBBInstruction
	PsopEnterScope
	PsopExitScope
	PsopEnterBlock
	PsopEnterCFG
	PsopAnnotation
	PsopLast // sentinel: Code(PsopLast)+Kind encodes an expression opcode
)

// Kind enumerates the expression node kinds the codec knows how to
// serialize. A Kind travels on the wire as Pack(k), so even the zero value
// (KindLiteral, Code(PsopLast+0)) is distinct from every pseudo-opcode.
type Kind uint32

const (
	KindLiteral Kind = iota
	KindVariable
	KindVarDecl
	KindFunction
	KindCode
	KindField
	KindSlot
	KindRecord
	KindArray
	KindScalarType
	KindStructuredCFG
	KindBasicBlock
	KindApply
	KindProject
	KindCall
	KindAlloc
	KindLoad
	KindStore
	KindArrayIndex
	KindArrayAdd
	KindUnaryOp
	KindBinaryOp
	KindCast
	KindPhi
	KindGoto
	KindBranch
	KindSwitch
	KindReturn
	KindUndefined
	KindWildcard
	KindIdentifier
	KindLet
	KindIfThenElse

	kindCount
)

var kindNames = [kindCount]string{
	KindLiteral:       "Literal",
	KindVariable:      "Variable",
	KindVarDecl:       "VarDecl",
	KindFunction:      "Function",
	KindCode:          "Code",
	KindField:         "Field",
	KindSlot:          "Slot",
	KindRecord:        "Record",
	KindArray:         "Array",
	KindScalarType:    "ScalarType",
	KindStructuredCFG: "StructuredCFG",
	KindBasicBlock:    "BasicBlock",
	KindApply:         "Apply",
	KindProject:       "Project",
	KindCall:          "Call",
	KindAlloc:         "Alloc",
	KindLoad:          "Load",
	KindStore:         "Store",
	KindArrayIndex:    "ArrayIndex",
	KindArrayAdd:      "ArrayAdd",
	KindUnaryOp:       "UnaryOp",
	KindBinaryOp:      "BinaryOp",
	KindCast:          "Cast",
	KindPhi:           "Phi",
	KindGoto:          "Goto",
	KindBranch:        "Branch",
	KindSwitch:        "Switch",
	KindReturn:        "Return",
	KindUndefined:     "Undefined",
	KindWildcard:      "Wildcard",
	KindIdentifier:    "Identifier",
	KindLet:           "Let",
	KindIfThenElse:    "IfThenElse",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Pack returns the wire Code for an expression Kind.
func Pack(k Kind) Code { return Code(PsopLast) + Code(k) }

// Unpack returns the Kind encoded by a Code known to be >= PsopLast. The
// caller must check IsExpr first.
func Unpack(c Code) Kind { return Kind(c - Code(PsopLast)) }

// IsExpr reports whether c encodes an expression Kind rather than a
// pseudo-opcode.
func (c Code) IsExpr() bool { return c >= Code(PsopLast) }

func (c Code) String() string {
	if c.IsExpr() {
		return Unpack(c).String()
	}
	switch c {
	case PsopNull:
		return "Null"
	case PsopWeakInstrRef:
		return "WeakInstrRef"
	case PsopBBArgument:
		return "BBArgument"
	case PsopBBInstruction:
		return "BBInstruction"
	case PsopEnterScope:
		return "EnterScope"
	case PsopExitScope:
		return "ExitScope"
	case PsopEnterBlock:
		return "EnterBlock"
	case PsopEnterCFG:
		return "EnterCFG"
	case PsopAnnotation:
		return "Annotation"
	default:
		return fmt.Sprintf("Code(%d)", uint32(c))
	}
}

// Field bit widths, per the wire format (spec.md §4.2).
const (
	CodeBits               = 6
	AnnotationKindBits     = 8
	UnaryBinaryCastOpBits  = 6
	VariableKindBits       = 2
	CallingConventionBits  = 4
	ApplyKindBits          = 2
	AllocKindBits          = 2
	LiteralBaseTypeBits    = 8
)
