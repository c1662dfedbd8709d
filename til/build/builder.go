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

package build

import (
	"tlog.app/go/errors"

	"github.com/yazici/ohmu/til/ir"
	"github.com/yazici/ohmu/til/opcode"
)

// Builder is the collaborator the decoder allocates IR nodes through. Its
// factory methods correspond one-to-one with expression opcodes; its
// CFG/block methods must track exactly the same open-CFG/open-block state
// the decoder's own state machine tracks, since the two are required to
// agree at every boundary (spec.md §5).
type Builder interface {
	NewLiteral(baseType opcode.BaseType, vectorSize uint8) *ir.Literal
	NewVariable(scopeIndex uint32) *ir.Variable
	NewVarDecl(kind opcode.VariableKind, name string, typ ir.SExpr) *ir.VarDecl
	NewIdentifier(name string) *ir.Identifier
	NewWildcard() *ir.Wildcard
	NewUndefined(typ ir.SExpr) *ir.Undefined
	NewFunction(name string, cc opcode.CallingConvention, params []*ir.VarDecl, ret, body ir.SExpr) *ir.Function
	NewCode(body ir.SExpr) *ir.Code
	NewLet(decl *ir.VarDecl, value, body ir.SExpr) *ir.Let
	NewIfThenElse(cond, then, els ir.SExpr) *ir.IfThenElse
	NewField(name string, typ ir.SExpr) *ir.Field
	NewSlot(typ ir.SExpr) *ir.Slot
	NewScalarType(shape ir.TypeShape) *ir.ScalarType
	NewRecord(values ...ir.SExpr) *ir.Record
	NewArray(elemType ir.SExpr, values ...ir.SExpr) *ir.Array
	NewProject(from ir.SExpr, fieldIndex uint32) *ir.Project
	NewArrayIndex(array, index ir.SExpr) *ir.ArrayIndex
	NewArrayAdd(array, index, value ir.SExpr) *ir.ArrayAdd
	NewApply(kind opcode.ApplyKind, fn ir.SExpr, args ...ir.SExpr) *ir.Apply
	NewCall(cc opcode.CallingConvention, callee ir.SExpr, args ...ir.SExpr) *ir.Call
	NewAlloc(kind opcode.AllocKind, typ, count ir.SExpr) *ir.Alloc
	NewLoad(address ir.SExpr) *ir.Load
	NewStore(address, value ir.SExpr) *ir.Store
	NewUnaryOp(op opcode.UnaryOp, operand ir.SExpr) *ir.UnaryOp
	NewBinaryOp(op opcode.BinaryOp, left, right ir.SExpr) *ir.BinaryOp
	NewCast(op opcode.CastOp, typ, operand ir.SExpr) *ir.Cast
	NewGoto(target *ir.BasicBlock) *ir.Goto
	NewBranch(cond ir.SExpr, t, f *ir.BasicBlock) *ir.Branch
	NewSwitch(value ir.SExpr, deflt *ir.BasicBlock, cases ...ir.SwitchCase) *ir.Switch
	NewReturn(value ir.SExpr) *ir.Return
	NewPhi(args ...ir.SExpr) *ir.Phi

	// EnterCFG pre-allocates blockCount blocks, each with its declared
	// phi-arity, so that forward block references resolve immediately.
	EnterCFG(blockCount int, phiArities []int) (*ir.StructuredCFG, error)
	// EnterBlock returns the pre-allocated block at index. The caller
	// passes that block back to InstallArgument/InstallInstruction; the
	// builder does not itself record a current block.
	EnterBlock(cfg *ir.StructuredCFG, index int) (*ir.BasicBlock, error)
	// InstallArgument installs phi as the current block's next formal
	// argument.
	InstallArgument(block *ir.BasicBlock, phi *ir.Phi) error
	// InstallInstruction installs instr as the current block's next
	// instruction, assigning it id.
	InstallInstruction(block *ir.BasicBlock, instr ir.SExpr, id int) error
	// ExitCFG closes the innermost open CFG, balancing EnterCFG. The
	// decoder calls it once it reads a CFG's closing record, so that the
	// builder's own id-freshness bookkeeping stays in step with nested
	// CFGs (a StructuredCFG used as a value inside another CFG's body).
	ExitCFG()
}

// RefBuilder is the reference Builder implementation: a thin factory over
// til/ir's concrete node constructors that additionally enforces the
// builder-side half of the fresh-id/open-CFG invariants spec.md §5
// requires to match the decoder's state machine.
type RefBuilder struct {
	arena *Arena

	openCFGs  []*ir.StructuredCFG
	nextInstr []int // parallel to openCFGs: next instruction id to assign
}

// NewRefBuilder returns a RefBuilder backed by arena (may be nil if the
// caller has no use for string interning).
func NewRefBuilder(arena *Arena) *RefBuilder {
	return &RefBuilder{arena: arena}
}

func (b *RefBuilder) intern(s string) string {
	if b.arena == nil {
		return s
	}
	return b.arena.Intern(s)
}

func (b *RefBuilder) NewLiteral(t opcode.BaseType, vectorSize uint8) *ir.Literal {
	l := ir.NewLiteral(t)
	l.VectorSize = vectorSize
	return l
}

func (b *RefBuilder) NewVariable(scopeIndex uint32) *ir.Variable { return ir.NewVariable(scopeIndex) }

func (b *RefBuilder) NewVarDecl(kind opcode.VariableKind, name string, typ ir.SExpr) *ir.VarDecl {
	return ir.NewVarDecl(kind, b.intern(name), typ)
}

func (b *RefBuilder) NewIdentifier(name string) *ir.Identifier {
	return ir.NewIdentifier(b.intern(name))
}

func (b *RefBuilder) NewWildcard() *ir.Wildcard             { return ir.NewWildcard() }
func (b *RefBuilder) NewUndefined(typ ir.SExpr) *ir.Undefined { return ir.NewUndefined(typ) }

func (b *RefBuilder) NewFunction(name string, cc opcode.CallingConvention, params []*ir.VarDecl, ret, body ir.SExpr) *ir.Function {
	return ir.NewFunction(b.intern(name), cc, params, ret, body)
}

func (b *RefBuilder) NewCode(body ir.SExpr) *ir.Code { return ir.NewCode(body) }

func (b *RefBuilder) NewLet(decl *ir.VarDecl, value, body ir.SExpr) *ir.Let {
	return ir.NewLet(decl, value, body)
}

func (b *RefBuilder) NewIfThenElse(cond, then, els ir.SExpr) *ir.IfThenElse {
	return ir.NewIfThenElse(cond, then, els)
}

func (b *RefBuilder) NewField(name string, typ ir.SExpr) *ir.Field {
	return ir.NewField(b.intern(name), typ)
}

func (b *RefBuilder) NewSlot(typ ir.SExpr) *ir.Slot { return ir.NewSlot(typ) }

func (b *RefBuilder) NewScalarType(shape ir.TypeShape) *ir.ScalarType {
	return ir.NewScalarType(shape)
}

func (b *RefBuilder) NewRecord(values ...ir.SExpr) *ir.Record { return ir.NewRecord(values...) }

func (b *RefBuilder) NewArray(elemType ir.SExpr, values ...ir.SExpr) *ir.Array {
	return ir.NewArray(elemType, values...)
}

func (b *RefBuilder) NewProject(from ir.SExpr, fieldIndex uint32) *ir.Project {
	return ir.NewProject(from, fieldIndex)
}

func (b *RefBuilder) NewArrayIndex(array, index ir.SExpr) *ir.ArrayIndex {
	return ir.NewArrayIndex(array, index)
}

func (b *RefBuilder) NewArrayAdd(array, index, value ir.SExpr) *ir.ArrayAdd {
	return ir.NewArrayAdd(array, index, value)
}

func (b *RefBuilder) NewApply(kind opcode.ApplyKind, fn ir.SExpr, args ...ir.SExpr) *ir.Apply {
	return ir.NewApply(kind, fn, args...)
}

func (b *RefBuilder) NewCall(cc opcode.CallingConvention, callee ir.SExpr, args ...ir.SExpr) *ir.Call {
	return ir.NewCall(cc, callee, args...)
}

func (b *RefBuilder) NewAlloc(kind opcode.AllocKind, typ, count ir.SExpr) *ir.Alloc {
	return ir.NewAlloc(kind, typ, count)
}

func (b *RefBuilder) NewLoad(address ir.SExpr) *ir.Load { return ir.NewLoad(address) }

func (b *RefBuilder) NewStore(address, value ir.SExpr) *ir.Store {
	return ir.NewStore(address, value)
}

func (b *RefBuilder) NewUnaryOp(op opcode.UnaryOp, operand ir.SExpr) *ir.UnaryOp {
	return ir.NewUnaryOp(op, operand)
}

func (b *RefBuilder) NewBinaryOp(op opcode.BinaryOp, left, right ir.SExpr) *ir.BinaryOp {
	return ir.NewBinaryOp(op, left, right)
}

func (b *RefBuilder) NewCast(op opcode.CastOp, typ, operand ir.SExpr) *ir.Cast {
	return ir.NewCast(op, typ, operand)
}

func (b *RefBuilder) NewGoto(target *ir.BasicBlock) *ir.Goto { return ir.NewGoto(target) }

func (b *RefBuilder) NewBranch(cond ir.SExpr, t, f *ir.BasicBlock) *ir.Branch {
	return ir.NewBranch(cond, t, f)
}

func (b *RefBuilder) NewSwitch(value ir.SExpr, deflt *ir.BasicBlock, cases ...ir.SwitchCase) *ir.Switch {
	return ir.NewSwitch(value, deflt, cases...)
}

func (b *RefBuilder) NewReturn(value ir.SExpr) *ir.Return { return ir.NewReturn(value) }

func (b *RefBuilder) NewPhi(args ...ir.SExpr) *ir.Phi { return ir.NewPhi(args...) }

func (b *RefBuilder) EnterCFG(blockCount int, phiArities []int) (*ir.StructuredCFG, error) {
	if len(phiArities) != blockCount {
		return nil, errors.New("builder: EnterCFG: %d phi-arities for %d blocks", len(phiArities), blockCount)
	}
	blocks := make([]*ir.BasicBlock, blockCount)
	for i := range blocks {
		blocks[i] = ir.NewBasicBlock(i, phiArities[i])
	}
	cfg := ir.NewStructuredCFG(blocks...)
	b.openCFGs = append(b.openCFGs, cfg)
	b.nextInstr = append(b.nextInstr, 0)
	return cfg, nil
}

func (b *RefBuilder) currentCFGIndex() int { return len(b.openCFGs) - 1 }

func (b *RefBuilder) EnterBlock(cfg *ir.StructuredCFG, index int) (*ir.BasicBlock, error) {
	if index < 0 || index >= len(cfg.Blocks) {
		return nil, errors.New("builder: EnterBlock: index %d out of range [0,%d)", index, len(cfg.Blocks))
	}
	return cfg.Blocks[index], nil
}

func (b *RefBuilder) InstallArgument(block *ir.BasicBlock, phi *ir.Phi) error {
	if len(block.Phis) >= block.PhiArity {
		return errors.New("builder: block %d already has its full complement of %d phis", block.Index, block.PhiArity)
	}
	block.Phis = append(block.Phis, phi)
	return nil
}

func (b *RefBuilder) InstallInstruction(block *ir.BasicBlock, instr ir.SExpr, id int) error {
	i := b.currentCFGIndex()
	if i < 0 {
		return errors.New("builder: InstallInstruction: no open CFG")
	}
	if id != b.nextInstr[i] {
		return errors.New("builder: InstallInstruction: expected fresh id %d, got %d", b.nextInstr[i], id)
	}
	ir.SetInstrID(instr, id)
	block.Instrs = append(block.Instrs, instr)
	b.nextInstr[i]++
	return nil
}

// ExitCFG pops the innermost open CFG, implementing Builder.ExitCFG.
func (b *RefBuilder) ExitCFG() {
	if len(b.openCFGs) == 0 {
		return
	}
	b.openCFGs = b.openCFGs[:len(b.openCFGs)-1]
	b.nextInstr = b.nextInstr[:len(b.nextInstr)-1]
}
