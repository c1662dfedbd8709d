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

// Package ir defines the expression-tree node types the codec transmits:
// the closed opcode set of spec.md §3, plus the annotation kinds a node's
// annotation chain may carry. Construction, re-numbering and CFG wiring
// belong to til/build; this package only carries the fields the codec
// needs to serialize, the Annotations accessor the encoder walks, and
// Operands accessors for generic tree utilities (the encoder itself
// dispatches on the concrete node type instead).
package ir

import "github.com/yazici/ohmu/til/opcode"

// SExpr is a node in the expression tree, the unit of serialization.
type SExpr interface {
	// Kind identifies the node's opcode.
	Kind() opcode.Kind
	// Operands returns the node's ordered sub-expression slots. The
	// encoder decides per-slot whether to emit a weak instruction
	// reference (operand already committed as an SSA instruction) or to
	// recurse and serialize the operand inline; nil slots are permitted
	// and encode as PsopNull.
	Operands() []SExpr
	// Annotations returns the node's annotation chain in attachment
	// order.
	Annotations() []Annotation
	// InstrID returns the dense, CFG-local id assigned when this node was
	// installed into a basic block's instruction list, or -1 if it was
	// never installed as an instruction.
	InstrID() int
}

// Annotation is a per-kind payload attached to a node's annotation chain.
// Each implementation has a kind constant in til/opcode and a case in the
// codec's encoder and decoder type switches; there is no registry, and the
// codec rejects any other kind.
type Annotation interface {
	AnnotationKind() opcode.AnnotationKind
	// Children returns the annotation's sub-expression slots, serialized
	// inline (never by weak reference) ahead of the annotation's own
	// pseudo-opcode record.
	Children() []SExpr
	// Rewrite returns a copy of the annotation with its sub-expression
	// slots replaced by children, in the same order Children returned
	// them. Used by generic tree copying.
	Rewrite(children []SExpr) Annotation
}

// base is embedded by every concrete node type. It carries the fields
// every node needs regardless of kind: the node's Kind, the instruction id
// assigned at BBInstruction commit time, and the annotation chain.
type base struct {
	kind    opcode.Kind
	instrID int
	anns    []Annotation
}

func newBase(k opcode.Kind) base {
	return base{kind: k, instrID: -1}
}

func (b *base) Kind() opcode.Kind          { return b.kind }
func (b *base) InstrID() int               { return b.instrID }
func (b *base) Annotations() []Annotation  { return b.anns }
func (b *base) AddAnnotation(a Annotation) { b.anns = append(b.anns, a) }

// SetInstrID is called by til/build's reference Builder when the decoder
// installs an instruction, and by til/codec's encoder as it numbers a
// CFG's instructions, to assign the dense id a node gets once installed
// into a block's instruction list. It is not meant to be called by codec
// consumers directly.
func SetInstrID(n SExpr, id int) {
	if s, ok := n.(interface{ setInstrID(int) }); ok {
		s.setInstrID(id)
	}
}

func (b *base) setInstrID(id int) { b.instrID = id }

// AddAnnotationTo appends a to n's annotation chain. It reports false if n
// is a node type (none currently are) that cannot carry annotations.
// Called by til/codec's decoder when a PsopAnnotation record attaches to
// whatever is on top of the operand stack.
func AddAnnotationTo(n SExpr, a Annotation) bool {
	if s, ok := n.(interface{ AddAnnotation(Annotation) }); ok {
		s.AddAnnotation(a)
		return true
	}
	return false
}
