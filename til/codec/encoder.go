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

package codec

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"tlog.app/go/tlog"

	"github.com/yazici/ohmu/til/bitio"
	"github.com/yazici/ohmu/til/ir"
	"github.com/yazici/ohmu/til/opcode"
)

// Stats reports a few counters about a single Write/Read call, for
// diagnostics and for the demo CLI's human-readable summary.
type Stats struct {
	Atoms        int
	Instructions int
	Bytes        int
}

// countingSink wraps a ByteSink to total the bytes that actually cross it,
// so Stats.Bytes reflects the wire size regardless of which ByteSink the
// caller supplied.
type countingSink struct {
	inner ByteSink
	n     int
}

func (s *countingSink) WriteData(p []byte) error {
	s.n += len(p)
	return s.inner.WriteData(p)
}

// Encoder serializes one til/ir.SExpr tree per spec.md §4.3: a post-order
// traversal that emits opcodes and operand indices, tracking scope entry
// and exit, CFG/block entry, and instruction numbering as it goes.
//
// An already-committed SSA instruction referenced a second time (a weak
// reference, in spec.md's terms) is emitted by id instead of being
// re-traversed; this is the "context-sensitive traversal" spec.md §1
// calls out as the hard part, and it is realized here simply as a
// pointer-identity lookup into instrID, populated as each block
// instruction commits.
type Encoder struct {
	w       *bitio.Writer
	sink    *countingSink
	id      uuid.UUID
	instrID []map[ir.SExpr]int
	nextID  []int
	Stats   Stats
}

// NewEncoder returns an Encoder draining into sink.
func NewEncoder(sink ByteSink) *Encoder {
	cs := &countingSink{inner: sink}
	return &Encoder{w: bitio.NewWriter(cs), sink: cs, id: uuid.New()}
}

// Write serializes root — the stream's one top-level expression — and
// flushes the underlying bit stream. ctx carries a tlog span the encoder
// spawns a child of, purely for tracing; nothing about it reaches the
// wire.
func (e *Encoder) Write(ctx context.Context, root ir.SExpr) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "codec: encode", "stream", e.id)
	defer tr.Finish("err", &err)

	e.emit(root)
	e.w.EndAtom()
	e.Stats.Atoms++
	if err = e.w.Flush(); err != nil {
		return err
	}
	e.Stats.Bytes = e.sink.n
	tr.Printw("encode done", "atoms", e.Stats.Atoms, "instructions", e.Stats.Instructions, "bytes", e.Stats.Bytes)
	return e.w.Err()
}

func (e *Encoder) writeCode(c opcode.Code) { e.w.WriteBits(uint32(c), opcode.CodeBits) }

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// emitOperand emits a single generic operand slot: Null if nil, a weak
// instruction reference if op has already been committed as an SSA
// instruction in the currently open CFG, or a full inline (recursive)
// serialization otherwise.
func (e *Encoder) emitOperand(op ir.SExpr) {
	if op == nil {
		e.writeCode(opcode.PsopNull)
		return
	}
	if id, ok := e.lookupInstrID(op); ok {
		e.writeCode(opcode.PsopWeakInstrRef)
		e.w.WriteVBR32(uint32(id))
		e.w.EndAtom()
		return
	}
	e.emit(op)
}

// emitWeakRef emits op strictly as a weak instruction reference. It is an
// encoder assertion failure — fatal, per spec.md §7 — if op was never
// committed; phi operands and block-reference producers must always
// already be committed instructions.
func (e *Encoder) emitWeakRef(op ir.SExpr) {
	id, ok := e.lookupInstrID(op)
	if !ok {
		panic("codec: encoder: phi operand is not a previously committed instruction")
	}
	e.writeCode(opcode.PsopWeakInstrRef)
	e.w.WriteVBR32(uint32(id))
	e.w.EndAtom()
}

// lookupInstrID reports the id op was committed under in the innermost
// open CFG. Instruction ids are scoped to the CFG that assigned them, so
// an instruction from an enclosing or sibling CFG never resolves here,
// even if it happens to be pointer-equal to something reachable.
func (e *Encoder) lookupInstrID(op ir.SExpr) (int, bool) {
	if len(e.instrID) == 0 {
		return 0, false
	}
	id, ok := e.instrID[len(e.instrID)-1][op]
	return id, ok
}

// emit serializes n itself: scalar fields of every kind, recursing into
// operands via emitOperand (or emitWeakRef, for phi) first.
func (e *Encoder) emit(n ir.SExpr) {
	switch x := n.(type) {
	case *ir.Literal:
		e.emitLiteral(x)
	case *ir.Variable:
		e.writeCode(opcode.Pack(opcode.KindVariable))
		e.w.WriteVBR32(x.ScopeIndex)
		e.epilogue(x)
	case *ir.Function:
		e.emitFunction(x)
	case *ir.Code:
		e.emitOperand(x.Body)
		e.writeCode(opcode.Pack(opcode.KindCode))
		e.epilogue(x)
	case *ir.Field:
		e.emitOperand(x.Type)
		e.writeCode(opcode.Pack(opcode.KindField))
		e.w.WriteString(x.Name)
		e.epilogue(x)
	case *ir.Slot:
		e.emitOperand(x.Type)
		e.writeCode(opcode.Pack(opcode.KindSlot))
		e.epilogue(x)
	case *ir.Record:
		for _, v := range x.Values {
			e.emitOperand(v)
		}
		e.writeCode(opcode.Pack(opcode.KindRecord))
		e.w.WriteVBR32(uint32(len(x.Values)))
		e.epilogue(x)
	case *ir.Array:
		e.emitOperand(x.ElemType)
		for _, v := range x.Values {
			e.emitOperand(v)
		}
		e.writeCode(opcode.Pack(opcode.KindArray))
		e.w.WriteVBR32(uint32(len(x.Values)))
		e.epilogue(x)
	case *ir.ScalarType:
		e.emitScalarType(x)
	case *ir.StructuredCFG:
		e.emitCFG(x)
	case *ir.Apply:
		e.emitOperand(x.Fn)
		for _, a := range x.Args {
			e.emitOperand(a)
		}
		e.writeCode(opcode.Pack(opcode.KindApply))
		e.w.WriteBits(uint32(x.AKind), opcode.ApplyKindBits)
		e.w.WriteVBR32(uint32(len(x.Args)))
		e.epilogue(x)
	case *ir.Project:
		e.emitOperand(x.From)
		e.writeCode(opcode.Pack(opcode.KindProject))
		e.w.WriteVBR32(x.FieldIndex)
		e.epilogue(x)
	case *ir.Call:
		e.emitOperand(x.Callee)
		for _, a := range x.Args {
			e.emitOperand(a)
		}
		e.writeCode(opcode.Pack(opcode.KindCall))
		e.w.WriteBits(uint32(x.CC), opcode.CallingConventionBits)
		e.w.WriteVBR32(uint32(len(x.Args)))
		e.epilogue(x)
	case *ir.Alloc:
		e.emitOperand(x.Type)
		hasCount := x.Count != nil
		if hasCount {
			e.emitOperand(x.Count)
		}
		e.writeCode(opcode.Pack(opcode.KindAlloc))
		e.w.WriteBits(uint32(x.AKind), opcode.AllocKindBits)
		e.w.WriteBits(b2u(hasCount), 1)
		e.epilogue(x)
	case *ir.Load:
		e.emitOperand(x.Address)
		e.writeCode(opcode.Pack(opcode.KindLoad))
		e.epilogue(x)
	case *ir.Store:
		e.emitOperand(x.Address)
		e.emitOperand(x.Value)
		e.writeCode(opcode.Pack(opcode.KindStore))
		e.epilogue(x)
	case *ir.ArrayIndex:
		e.emitOperand(x.Array)
		e.emitOperand(x.Index)
		e.writeCode(opcode.Pack(opcode.KindArrayIndex))
		e.epilogue(x)
	case *ir.ArrayAdd:
		e.emitOperand(x.Array)
		e.emitOperand(x.Index)
		e.emitOperand(x.Value)
		e.writeCode(opcode.Pack(opcode.KindArrayAdd))
		e.epilogue(x)
	case *ir.UnaryOp:
		e.emitOperand(x.Operand)
		e.writeCode(opcode.Pack(opcode.KindUnaryOp))
		e.w.WriteBits(uint32(x.Op), opcode.UnaryBinaryCastOpBits)
		e.epilogue(x)
	case *ir.BinaryOp:
		e.emitOperand(x.Left)
		e.emitOperand(x.Right)
		e.writeCode(opcode.Pack(opcode.KindBinaryOp))
		e.w.WriteBits(uint32(x.Op), opcode.UnaryBinaryCastOpBits)
		e.epilogue(x)
	case *ir.Cast:
		e.emitOperand(x.Type)
		e.emitOperand(x.Operand)
		e.writeCode(opcode.Pack(opcode.KindCast))
		e.w.WriteBits(uint32(x.Op), opcode.UnaryBinaryCastOpBits)
		e.epilogue(x)
	case *ir.Phi:
		for _, a := range x.ArgRefs {
			e.emitWeakRef(a)
		}
		e.writeCode(opcode.Pack(opcode.KindPhi))
		e.w.WriteVBR32(uint32(len(x.ArgRefs)))
		e.epilogue(x)
	case *ir.Goto:
		e.writeCode(opcode.Pack(opcode.KindGoto))
		e.w.WriteVBR32(uint32(x.Target.Index))
		e.epilogue(x)
	case *ir.Branch:
		e.emitOperand(x.Cond)
		e.writeCode(opcode.Pack(opcode.KindBranch))
		e.w.WriteVBR32(uint32(x.TrueTarget.Index))
		e.w.WriteVBR32(uint32(x.FalseTarget.Index))
		e.epilogue(x)
	case *ir.Switch:
		e.emitOperand(x.Value)
		for _, c := range x.Cases {
			e.emitOperand(c.Value)
		}
		e.writeCode(opcode.Pack(opcode.KindSwitch))
		e.w.WriteVBR32(uint32(x.Default.Index))
		e.w.WriteVBR32(uint32(len(x.Cases)))
		for _, c := range x.Cases {
			e.w.WriteVBR32(uint32(c.Target.Index))
		}
		e.epilogue(x)
	case *ir.Return:
		hasValue := x.Value != nil
		if hasValue {
			e.emitOperand(x.Value)
		}
		e.writeCode(opcode.Pack(opcode.KindReturn))
		e.w.WriteBits(b2u(hasValue), 1)
		e.epilogue(x)
	case *ir.Undefined:
		e.emitOperand(x.Type)
		e.writeCode(opcode.Pack(opcode.KindUndefined))
		e.epilogue(x)
	case *ir.Wildcard:
		e.writeCode(opcode.Pack(opcode.KindWildcard))
		e.epilogue(x)
	case *ir.Identifier:
		e.writeCode(opcode.Pack(opcode.KindIdentifier))
		e.w.WriteString(x.Name)
		e.epilogue(x)
	case *ir.Let:
		e.emitLet(x)
	case *ir.IfThenElse:
		e.emitOperand(x.Cond)
		e.emitOperand(x.Then)
		e.emitOperand(x.Else)
		e.writeCode(opcode.Pack(opcode.KindIfThenElse))
		e.epilogue(x)
	default:
		panic(fmt.Sprintf("codec: encoder: unhandled node type %T", n))
	}
}

func (e *Encoder) emitLiteral(l *ir.Literal) {
	e.writeCode(opcode.Pack(opcode.KindLiteral))
	e.w.WriteBits(uint32(l.BaseType), opcode.LiteralBaseTypeBits)
	hasVectorSize := l.VectorSize >= 1
	e.w.WriteBits(b2u(hasVectorSize), 1)
	if hasVectorSize {
		e.w.WriteBits(uint32(l.VectorSize), 8)
	}
	switch l.BaseType {
	case opcode.BaseBool:
		e.w.WriteBits(b2u(l.Bool), 1)
	case opcode.BaseInt8:
		e.w.WriteBits(uint32(uint8(int8(l.Int))), 8)
	case opcode.BaseInt16:
		e.w.WriteBits(uint32(uint16(int16(l.Int))), 16)
	case opcode.BaseInt32:
		e.w.WriteBits(uint32(int32(l.Int)), 32)
	case opcode.BaseInt64:
		e.w.WriteBits64(uint64(l.Int), 64)
	case opcode.BaseUint8:
		e.w.WriteBits(uint32(l.Uint), 8)
	case opcode.BaseUint16:
		e.w.WriteBits(uint32(l.Uint), 16)
	case opcode.BaseUint32:
		e.w.WriteBits(uint32(l.Uint), 32)
	case opcode.BaseUint64:
		e.w.WriteBits64(l.Uint, 64)
	case opcode.BaseFloat32:
		e.w.WriteFloat32(l.Float32)
	case opcode.BaseFloat64:
		e.w.WriteFloat64(l.Float64)
	case opcode.BaseString:
		e.w.WriteString(l.Str)
	case opcode.BasePointer:
		if !l.PointerNull {
			panic("codec: encoder: non-null pointer literal")
		}
	default:
		panic(fmt.Sprintf("codec: encoder: unknown literal base type %v", l.BaseType))
	}
	e.epilogue(l)
}

func (e *Encoder) emitScalarType(t *ir.ScalarType) {
	hasElem := t.Elem != nil
	if hasElem {
		e.emitOperand(t.Elem)
	}
	for _, f := range t.Fields {
		e.emitOperand(f)
	}
	e.writeCode(opcode.Pack(opcode.KindScalarType))
	e.w.WriteBits(uint32(t.Shape), 8)
	e.w.WriteVBR32(t.Width)
	e.w.WriteBits(b2u(t.Signed), 1)
	e.w.WriteBits(b2u(hasElem), 1)
	e.w.WriteVBR32(t.ArrayLen)
	e.w.WriteVBR32(uint32(len(t.Fields)))
	e.epilogue(t)
}

// emitVarDeclHeader emits the operand (if any) before the EnterScope
// marker itself, and the declaration's remaining scalars after: the
// presence flag is read only to decide how many already-pushed operands
// to pop, never to decide whether more tokens are coming, matching the
// only workable framing discipline for a strictly sequential reader with
// no lookahead.
func (e *Encoder) emitVarDeclHeader(d *ir.VarDecl) {
	hasType := d.Type != nil
	if hasType {
		e.emitOperand(d.Type)
	}
	e.writeCode(opcode.PsopEnterScope)
	e.w.WriteBits(uint32(d.VKind), opcode.VariableKindBits)
	e.w.WriteString(d.Name)
	e.w.WriteBits(b2u(hasType), 1)
	e.w.EndAtom()
}

func (e *Encoder) emitFunction(f *ir.Function) {
	e.emitOperand(f.ReturnType)
	for _, p := range f.Params {
		e.emitVarDeclHeader(p)
	}
	e.emitOperand(f.Body)
	for range f.Params {
		e.writeCode(opcode.PsopExitScope)
		e.w.EndAtom()
	}
	e.writeCode(opcode.Pack(opcode.KindFunction))
	e.w.WriteString(f.Name)
	e.w.WriteBits(uint32(f.CC), opcode.CallingConventionBits)
	e.w.WriteVBR32(uint32(len(f.Params)))
	e.epilogue(f)
}

func (e *Encoder) emitLet(l *ir.Let) {
	e.emitOperand(l.Value)
	e.emitVarDeclHeader(l.Decl)
	e.emitOperand(l.Body)
	e.writeCode(opcode.PsopExitScope)
	e.w.EndAtom()
	e.writeCode(opcode.Pack(opcode.KindLet))
	e.epilogue(l)
}

// emitCFG emits the EnterCFG/EnterBlock/BBArgument/BBInstruction
// structural markers of spec.md §4.3, assigning each committed
// instruction a dense id as it is visited (recorded on the node itself via
// ir.SetInstrID, the same id the decoder's builder assigns) so that later
// weak references (phi operands, repeated uses) can resolve by id.
func (e *Encoder) emitCFG(cfg *ir.StructuredCFG) {
	e.writeCode(opcode.PsopEnterCFG)
	e.w.WriteVBR32(uint32(len(cfg.Blocks)))
	for _, blk := range cfg.Blocks {
		e.w.WriteVBR32(uint32(blk.PhiArity))
	}
	e.w.EndAtom()

	e.nextID = append(e.nextID, 0)
	e.instrID = append(e.instrID, map[ir.SExpr]int{})
	top := len(e.nextID) - 1

	for _, blk := range cfg.Blocks {
		e.writeCode(opcode.PsopEnterBlock)
		e.w.WriteVBR32(uint32(blk.Index))
		e.w.EndAtom()

		for _, phi := range blk.Phis {
			e.writeCode(opcode.PsopBBArgument)
			e.w.EndAtom()
			e.emit(phi)
		}
		for _, instr := range blk.Instrs {
			e.writeCode(opcode.PsopBBInstruction)
			e.w.EndAtom()
			e.emit(instr)
			id := e.nextID[top]
			ir.SetInstrID(instr, id)
			e.instrID[top][instr] = id
			e.nextID[top] = id + 1
			e.Stats.Instructions++
		}
	}
	e.nextID = e.nextID[:top]
	e.instrID = e.instrID[:top]

	e.writeCode(opcode.Pack(opcode.KindStructuredCFG))
	e.epilogue(cfg)
}

// epilogue ends the node's own atom and serializes its annotation chain.
// Each annotation's sub-expressions are always serialized inline (never
// as weak references, per spec.md §4.5), even if they happen to alias an
// already-committed instruction.
func (e *Encoder) epilogue(n ir.SExpr) {
	e.w.EndAtom()
	for _, a := range n.Annotations() {
		for _, c := range a.Children() {
			if c == nil {
				e.writeCode(opcode.PsopNull)
				continue
			}
			e.emit(c)
		}
		e.writeCode(opcode.PsopAnnotation)
		e.w.WriteBits(uint32(a.AnnotationKind()), opcode.AnnotationKindBits)
		e.encodeAnnotationScalars(a)
		e.w.EndAtom()
	}
}

func (e *Encoder) encodeAnnotationScalars(a ir.Annotation) {
	switch x := a.(type) {
	case ir.SourceLocation:
		e.w.WriteString(x.File)
		e.w.WriteVBR32(x.Line)
		e.w.WriteVBR32(x.Column)
	case ir.Precondition, ir.TestTripletAnnot:
		// no scalar fields beyond Children().
	default:
		panic(fmt.Sprintf("codec: encoder: unregistered annotation kind %T", a))
	}
}
