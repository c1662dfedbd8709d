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

// StructuredCFG owns an ordered sequence of basic blocks. It is the SSA
// form of a Function's Body; blocks and their contained instructions are
// addressed by dense, CFG-local indices rather than by pointer identity on
// the wire (spec.md §3). Phis get no id of their own: they are installed
// positionally into their block and cannot be the target of a weak
// reference.
type StructuredCFG struct {
	base
	Blocks []*BasicBlock
}

// NewStructuredCFG constructs a StructuredCFG owning blocks, which must
// already have their Index fields set 0..len(blocks)-1 in traversal
// order.
func NewStructuredCFG(blocks ...*BasicBlock) *StructuredCFG {
	return &StructuredCFG{base: newBase(opcode.KindStructuredCFG), Blocks: blocks}
}

// Operands is empty: blocks are addressed through the dedicated
// EnterCFG/EnterBlock mechanism, not the generic operand path.
func (c *StructuredCFG) Operands() []SExpr { return nil }

// BasicBlock owns an ordered list of phi-nodes (the block's formal
// arguments) followed by an ordered, dense-indexed list of instructions.
type BasicBlock struct {
	base
	Index     int
	PhiArity  int
	Phis      []*Phi
	Instrs    []SExpr
}

// NewBasicBlock constructs an empty BasicBlock at the given dense index
// with the given declared phi-arity.
func NewBasicBlock(index, phiArity int) *BasicBlock {
	return &BasicBlock{base: newBase(opcode.KindBasicBlock), Index: index, PhiArity: phiArity}
}

func (b *BasicBlock) Operands() []SExpr { return nil }

// Phi selects a value based on which predecessor block transferred
// control. Each entry in ArgRefs is a weak reference to an instruction
// already committed (in dominance-respecting order, an already-visited
// predecessor's producing instruction) — phi operands never serialize as
// inline sub-expressions.
type Phi struct {
	base
	ArgRefs []SExpr
}

// NewPhi constructs a Phi with the given (already-constructed) argument
// instructions.
func NewPhi(args ...SExpr) *Phi {
	return &Phi{base: newBase(opcode.KindPhi), ArgRefs: args}
}

func (p *Phi) Operands() []SExpr { return p.ArgRefs }

// Goto unconditionally transfers control to Target.
type Goto struct {
	base
	Target *BasicBlock
}

// NewGoto constructs a Goto to target.
func NewGoto(target *BasicBlock) *Goto {
	return &Goto{base: newBase(opcode.KindGoto), Target: target}
}

// Operands returns nil: the block target is a VBR32 index, not a
// generic operand.
func (g *Goto) Operands() []SExpr { return nil }

// Branch transfers control to TrueTarget if Cond is true, else
// FalseTarget.
type Branch struct {
	base
	Cond        SExpr
	TrueTarget  *BasicBlock
	FalseTarget *BasicBlock
}

// NewBranch constructs a Branch.
func NewBranch(cond SExpr, trueTarget, falseTarget *BasicBlock) *Branch {
	return &Branch{base: newBase(opcode.KindBranch), Cond: cond, TrueTarget: trueTarget, FalseTarget: falseTarget}
}

func (b *Branch) Operands() []SExpr { return []SExpr{b.Cond} }

// SwitchCase pairs a case value with the block to transfer control to
// when Value matches the switch's scrutinee.
type SwitchCase struct {
	Value  SExpr
	Target *BasicBlock
}

// Switch transfers control to the Target of the first Case whose Value
// matches Value, or to Default if none match.
type Switch struct {
	base
	Value   SExpr
	Cases   []SwitchCase
	Default *BasicBlock
}

// NewSwitch constructs a Switch.
func NewSwitch(value SExpr, deflt *BasicBlock, cases ...SwitchCase) *Switch {
	return &Switch{base: newBase(opcode.KindSwitch), Value: value, Cases: cases, Default: deflt}
}

func (s *Switch) Operands() []SExpr {
	ops := []SExpr{s.Value}
	for _, c := range s.Cases {
		ops = append(ops, c.Value)
	}
	return ops
}

// Return terminates a function, optionally yielding Value (nil for a
// void return).
type Return struct {
	base
	Value SExpr
}

// NewReturn constructs a Return.
func NewReturn(value SExpr) *Return {
	return &Return{base: newBase(opcode.KindReturn), Value: value}
}

func (r *Return) Operands() []SExpr {
	if r.Value == nil {
		return nil
	}
	return []SExpr{r.Value}
}
