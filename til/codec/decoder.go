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

	"github.com/google/uuid"

	"github.com/yazici/ohmu/til/bitio"
	"github.com/yazici/ohmu/til/build"
	"github.com/yazici/ohmu/til/ir"
	"github.com/yazici/ohmu/til/opcode"
)

// pendingKind distinguishes the two structural markers (PsopBBArgument,
// PsopBBInstruction) that announce a forthcoming block member without
// saying anything about its shape: the decoder cannot know how many
// generic-expression tokens that member's subtree spans until it reads
// the member's own opcode, which — per the wire's operand-before-marker
// discipline — always arrives after the subtree finishes. The member is
// only actually installed once the NEXT top-level structural marker (or
// end of block/CFG) proves its subtree is complete.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingArgument
	pendingInstruction
)

// cfgState tracks one open StructuredCFG: the dense id -> instruction
// table weak references resolve against, the block currently being
// filled, and any outstanding pending install.
type cfgState struct {
	cfg      *ir.StructuredCFG
	floor    int // len(stack) at EnterCFG time; operands may never pop below this
	curBlock *ir.BasicBlock
	pending  pendingKind
	instrs   []ir.SExpr
	nextID   int
}

// Decoder is a flat-loop stack machine: it reads one pseudo-opcode or
// expression opcode at a time and maintains an explicit operand stack,
// rather than recursing, because an operand's arity and shape are only
// known once the opcode that consumes it is read — and per spec.md
// §4.3/§4.4 that opcode always arrives strictly after the operand's own
// tokens. A shared stack lets sibling and nested subtrees resolve
// themselves passively while the consuming opcode just pops however many
// items its own trailing fields (a presence flag or a count) say to.
type Decoder struct {
	r  *bitio.Reader
	b  build.Builder
	id uuid.UUID

	stack       []ir.SExpr
	scopeStack  []*ir.VarDecl
	exitedDecls []*ir.VarDecl
	cfgStack    []*cfgState

	fault *Fault
	Stats Stats
}

// NewDecoder returns a Decoder reading from source and allocating nodes
// through b.
func NewDecoder(source ByteSource, b build.Builder) *Decoder {
	return &Decoder{r: bitio.NewReader(source), b: b, id: uuid.New()}
}

// ID identifies this Decoder for trace correlation. It never appears on
// the wire; callers that log decode failures (the demo CLI, via
// tlog.app/go/errors) tag those log lines with it. The decoder itself
// stays free of logging so a caller can retry or inspect a Fault without
// a logger installed.
func (d *Decoder) ID() uuid.UUID { return d.id }

// Read decodes the stream's one top-level expression. On failure it
// returns whatever partial tree it managed to build alongside the
// *Fault describing why; per spec.md §7 that tree must be discarded. ctx
// is checked for cancellation between opcodes so a caller can bound a
// decode of an untrusted or very large stream.
func (d *Decoder) Read(ctx context.Context) (ir.SExpr, error) {
	for !d.r.Empty() && d.fault == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.step()
		if d.fault == nil {
			if err := d.r.Err(); err != nil {
				d.setFault(ErrTruncated, "%v", err)
			}
		}
	}
	if d.fault == nil && len(d.cfgStack) != 0 {
		d.setFault(ErrInvariantViolation, "stream ended with %d CFG(s) still open", len(d.cfgStack))
	}
	if d.fault == nil && len(d.stack) != 1 {
		d.setFault(ErrInvariantViolation, "stream produced %d top-level values, want 1", len(d.stack))
	}
	var result ir.SExpr
	if len(d.stack) > 0 {
		result = d.stack[len(d.stack)-1]
	}
	if d.fault != nil {
		return result, d.fault
	}
	return result, nil
}

func (d *Decoder) setFault(kind ErrorKind, format string, args ...interface{}) {
	if d.fault == nil {
		d.fault = fault(kind, format, args...)
	}
}

func (d *Decoder) setFaultErr(f *Fault) {
	if d.fault == nil {
		d.fault = f
	}
}

func (d *Decoder) currentCFG() *cfgState {
	if len(d.cfgStack) == 0 {
		return nil
	}
	return d.cfgStack[len(d.cfgStack)-1]
}

// push appends one value to the shared operand stack.
func (d *Decoder) push(v ir.SExpr) { d.stack = append(d.stack, v) }

// mustPop pops the n most-recently-pushed values, returned oldest-first
// (matching the encoder's left-to-right emission order). It refuses to
// pop below the innermost open CFG's floor, since a well-formed stream
// never lets an operand list reach outside its own CFG. On failure it
// sets a sticky fault and returns an all-nil slice of length n so callers
// can keep indexing safely; the result is discarded by Read() regardless
// once the fault is set.
func (d *Decoder) mustPop(n int) []ir.SExpr {
	floor := 0
	if cs := d.currentCFG(); cs != nil {
		floor = cs.floor
	}
	if len(d.stack)-n < floor {
		d.setFault(ErrInvariantViolation, "operand stack underflow: need %d, have %d above floor %d", n, len(d.stack)-floor, floor)
		return make([]ir.SExpr, n)
	}
	out := make([]ir.SExpr, n)
	copy(out, d.stack[len(d.stack)-n:])
	d.stack = d.stack[:len(d.stack)-n]
	return out
}

// step reads and dispatches exactly one opcode.
func (d *Decoder) step() {
	code := opcode.Code(d.r.ReadBits(opcode.CodeBits))
	if d.r.Err() != nil {
		d.setFault(ErrTruncated, "reading opcode: %v", d.r.Err())
		return
	}
	if code.IsExpr() {
		d.decodeExpr(opcode.Unpack(code))
		return
	}
	switch code {
	case opcode.PsopNull:
		d.push(nil)
	case opcode.PsopWeakInstrRef:
		id := int(d.r.ReadVBR32())
		d.r.EndAtom()
		instr, err := d.resolveWeakRef(id)
		if err != nil {
			d.setFaultErr(err)
			return
		}
		d.push(instr)
	case opcode.PsopBBArgument:
		d.enterPending(pendingArgument)
	case opcode.PsopBBInstruction:
		d.enterPending(pendingInstruction)
	case opcode.PsopEnterScope:
		d.decodeEnterScope()
	case opcode.PsopExitScope:
		d.decodeExitScope()
	case opcode.PsopEnterBlock:
		d.decodeEnterBlock()
	case opcode.PsopEnterCFG:
		d.decodeEnterCFG()
	case opcode.PsopAnnotation:
		d.decodeAnnotation()
	default:
		d.setFault(ErrUnknownOpcode, "pseudo-opcode %d", code)
	}
}

func (d *Decoder) resolveWeakRef(id int) (ir.SExpr, *Fault) {
	cs := d.currentCFG()
	if cs == nil {
		return nil, fault(ErrInvariantViolation, "weak instruction reference outside any open CFG")
	}
	if id < 0 || id >= len(cs.instrs) {
		return nil, fault(ErrIndexOutOfRange, "weak instruction ref %d out of range [0,%d)", id, len(cs.instrs))
	}
	return cs.instrs[id], nil
}

// resolvePending installs cs's outstanding phi or instruction, if any,
// popping it off the shared stack. It is called just before any
// structural marker that can only legally appear once the previous
// block member's subtree is complete (a sibling BBArgument/BBInstruction,
// the next EnterBlock, or the enclosing CFG's own closing record) — the
// encoder never emits one of those markers mid-subtree.
func (d *Decoder) resolvePending(cs *cfgState) {
	if cs.pending == pendingNone {
		return
	}
	pending := cs.pending
	cs.pending = pendingNone
	v := d.mustPop(1)[0]
	switch pending {
	case pendingArgument:
		phi, ok := v.(*ir.Phi)
		if !ok {
			d.setFault(ErrInvariantViolation, "BBArgument decoded to %T, not a Phi", v)
			return
		}
		if err := d.b.InstallArgument(cs.curBlock, phi); err != nil {
			d.setFault(ErrArityMismatch, "%v", err)
		}
	case pendingInstruction:
		id := cs.nextID
		if err := d.b.InstallInstruction(cs.curBlock, v, id); err != nil {
			d.setFault(ErrInvariantViolation, "%v", err)
			return
		}
		cs.instrs = append(cs.instrs, v)
		cs.nextID++
		d.Stats.Instructions++
	}
}

func (d *Decoder) enterPending(kind pendingKind) {
	cs := d.currentCFG()
	if cs == nil {
		d.setFault(ErrInvariantViolation, "BBArgument/BBInstruction outside any open CFG")
		d.r.EndAtom()
		return
	}
	if cs.curBlock == nil {
		d.setFault(ErrInvariantViolation, "BBArgument/BBInstruction before any EnterBlock")
		d.r.EndAtom()
		return
	}
	d.resolvePending(cs)
	d.r.EndAtom()
	cs.pending = kind
}

func (d *Decoder) decodeEnterScope() {
	vkind := opcode.VariableKind(d.r.ReadBits(opcode.VariableKindBits))
	name := d.r.ReadString()
	hasType := d.r.ReadBits(1) == 1
	d.r.EndAtom()
	var typ ir.SExpr
	if hasType {
		typ = d.mustPop(1)[0]
	}
	d.scopeStack = append(d.scopeStack, d.b.NewVarDecl(vkind, name, typ))
}

func (d *Decoder) decodeExitScope() {
	d.r.EndAtom()
	n := len(d.scopeStack)
	if n == 0 {
		d.setFault(ErrInvariantViolation, "ExitScope with no open scope")
		return
	}
	d.exitedDecls = append(d.exitedDecls, d.scopeStack[n-1])
	d.scopeStack = d.scopeStack[:n-1]
}

func (d *Decoder) decodeEnterBlock() {
	cs := d.currentCFG()
	if cs == nil {
		d.setFault(ErrInvariantViolation, "EnterBlock outside any open CFG")
		d.r.EndAtom()
		return
	}
	d.resolvePending(cs)
	idx := int(d.r.ReadVBR32())
	d.r.EndAtom()
	blk, err := d.b.EnterBlock(cs.cfg, idx)
	if err != nil {
		d.setFault(ErrIndexOutOfRange, "%v", err)
		return
	}
	cs.curBlock = blk
}

func (d *Decoder) decodeEnterCFG() {
	count := int(d.r.ReadVBR32())
	arities := make([]int, count)
	for i := range arities {
		arities[i] = int(d.r.ReadVBR32())
	}
	d.r.EndAtom()
	cfg, err := d.b.EnterCFG(count, arities)
	if err != nil {
		d.setFault(ErrInvariantViolation, "%v", err)
		return
	}
	d.cfgStack = append(d.cfgStack, &cfgState{cfg: cfg, floor: len(d.stack), instrs: make([]ir.SExpr, 0, count)})
}

func (d *Decoder) decodeStructuredCFGClose() {
	cs := d.currentCFG()
	if cs == nil {
		d.setFault(ErrInvariantViolation, "StructuredCFG close without a matching EnterCFG")
		d.r.EndAtom()
		return
	}
	d.resolvePending(cs)
	d.r.EndAtom()
	d.cfgStack = d.cfgStack[:len(d.cfgStack)-1]
	d.b.ExitCFG()
	d.push(cs.cfg)
}

func (d *Decoder) decodeAnnotation() {
	kind := opcode.AnnotationKind(d.r.ReadBits(opcode.AnnotationKindBits))
	ann := d.buildAnnotation(kind)
	d.r.EndAtom()
	if ann == nil {
		return // fault already set by buildAnnotation
	}
	if len(d.stack) == 0 {
		d.setFault(ErrInvariantViolation, "annotation with nothing on the stack to attach to")
		return
	}
	top := d.stack[len(d.stack)-1]
	if !ir.AddAnnotationTo(top, ann) {
		d.setFault(ErrInvariantViolation, "node %T cannot carry annotations", top)
	}
}

// buildAnnotation reads kind's scalar payload (if any) and pops its
// children (if any) off the shared stack — the children were pushed,
// inline, ahead of this PsopAnnotation record, per spec.md §4.5.
func (d *Decoder) buildAnnotation(kind opcode.AnnotationKind) ir.Annotation {
	switch kind {
	case opcode.AnnotationSourceLocation:
		file := d.r.ReadString()
		line := d.r.ReadVBR32()
		col := d.r.ReadVBR32()
		return ir.SourceLocation{File: file, Line: line, Column: col}
	case opcode.AnnotationPrecondition:
		v := d.mustPop(1)
		return ir.Precondition{Expr: v[0]}
	case opcode.AnnotationTestTriplet:
		v := d.mustPop(3)
		return ir.TestTripletAnnot{First: v[0], Second: v[1], Third: v[2]}
	default:
		d.setFault(ErrUnknownAnnotation, "annotation kind %d", kind)
		return nil
	}
}

// resolveBlock looks up block index idx within the innermost open CFG.
func (d *Decoder) resolveBlock(idx int) (*ir.BasicBlock, *Fault) {
	cs := d.currentCFG()
	if cs == nil {
		return nil, fault(ErrInvariantViolation, "block reference outside any open CFG")
	}
	if idx < 0 || idx >= len(cs.cfg.Blocks) {
		return nil, fault(ErrIndexOutOfRange, "block index %d out of range [0,%d)", idx, len(cs.cfg.Blocks))
	}
	return cs.cfg.Blocks[idx], nil
}

// decodeExpr dispatches a generic-expression opcode: it reads the node's
// trailing scalar fields, pops however many operands those fields say to
// (fixed per kind, or VBR32-counted for the variadic/optional kinds),
// constructs the node through the Builder, and pushes it.
func (d *Decoder) decodeExpr(kind opcode.Kind) {
	switch kind {
	case opcode.KindLiteral:
		d.decodeLiteral()
	case opcode.KindVariable:
		idx := d.r.ReadVBR32()
		d.r.EndAtom()
		if idx == 0 || int(idx) > len(d.scopeStack) {
			d.setFault(ErrIndexOutOfRange, "variable scope index %d, scope depth %d", idx, len(d.scopeStack))
			return
		}
		d.push(d.b.NewVariable(idx))
	case opcode.KindFunction:
		d.decodeFunction()
	case opcode.KindCode:
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewCode(v[0]))
	case opcode.KindField:
		name := d.r.ReadString()
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewField(name, v[0]))
	case opcode.KindSlot:
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewSlot(v[0]))
	case opcode.KindRecord:
		n := int(d.r.ReadVBR32())
		d.r.EndAtom()
		d.push(d.b.NewRecord(d.mustPop(n)...))
	case opcode.KindArray:
		n := int(d.r.ReadVBR32())
		d.r.EndAtom()
		v := d.mustPop(n + 1)
		d.push(d.b.NewArray(v[0], v[1:]...))
	case opcode.KindScalarType:
		d.decodeScalarType()
	case opcode.KindStructuredCFG:
		d.decodeStructuredCFGClose()
	case opcode.KindApply:
		akind := opcode.ApplyKind(d.r.ReadBits(opcode.ApplyKindBits))
		n := int(d.r.ReadVBR32())
		d.r.EndAtom()
		v := d.mustPop(n + 1)
		d.push(d.b.NewApply(akind, v[0], v[1:]...))
	case opcode.KindProject:
		idx := d.r.ReadVBR32()
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewProject(v[0], idx))
	case opcode.KindCall:
		cc := opcode.CallingConvention(d.r.ReadBits(opcode.CallingConventionBits))
		n := int(d.r.ReadVBR32())
		d.r.EndAtom()
		v := d.mustPop(n + 1)
		d.push(d.b.NewCall(cc, v[0], v[1:]...))
	case opcode.KindAlloc:
		akind := opcode.AllocKind(d.r.ReadBits(opcode.AllocKindBits))
		hasCount := d.r.ReadBits(1) == 1
		d.r.EndAtom()
		n := 1
		if hasCount {
			n = 2
		}
		v := d.mustPop(n)
		var count ir.SExpr
		if hasCount {
			count = v[1]
		}
		d.push(d.b.NewAlloc(akind, v[0], count))
	case opcode.KindLoad:
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewLoad(v[0]))
	case opcode.KindStore:
		d.r.EndAtom()
		v := d.mustPop(2)
		d.push(d.b.NewStore(v[0], v[1]))
	case opcode.KindArrayIndex:
		d.r.EndAtom()
		v := d.mustPop(2)
		d.push(d.b.NewArrayIndex(v[0], v[1]))
	case opcode.KindArrayAdd:
		d.r.EndAtom()
		v := d.mustPop(3)
		d.push(d.b.NewArrayAdd(v[0], v[1], v[2]))
	case opcode.KindUnaryOp:
		op := opcode.UnaryOp(d.r.ReadBits(opcode.UnaryBinaryCastOpBits))
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewUnaryOp(op, v[0]))
	case opcode.KindBinaryOp:
		op := opcode.BinaryOp(d.r.ReadBits(opcode.UnaryBinaryCastOpBits))
		d.r.EndAtom()
		v := d.mustPop(2)
		d.push(d.b.NewBinaryOp(op, v[0], v[1]))
	case opcode.KindCast:
		op := opcode.CastOp(d.r.ReadBits(opcode.UnaryBinaryCastOpBits))
		d.r.EndAtom()
		v := d.mustPop(2)
		d.push(d.b.NewCast(op, v[0], v[1]))
	case opcode.KindPhi:
		n := int(d.r.ReadVBR32())
		d.r.EndAtom()
		d.push(d.b.NewPhi(d.mustPop(n)...))
	case opcode.KindGoto:
		d.decodeGoto()
	case opcode.KindBranch:
		d.decodeBranch()
	case opcode.KindSwitch:
		d.decodeSwitch()
	case opcode.KindReturn:
		d.decodeReturn()
	case opcode.KindUndefined:
		d.r.EndAtom()
		v := d.mustPop(1)
		d.push(d.b.NewUndefined(v[0]))
	case opcode.KindWildcard:
		d.r.EndAtom()
		d.push(d.b.NewWildcard())
	case opcode.KindIdentifier:
		name := d.r.ReadString()
		d.r.EndAtom()
		d.push(d.b.NewIdentifier(name))
	case opcode.KindLet:
		d.decodeLet()
	case opcode.KindIfThenElse:
		d.r.EndAtom()
		v := d.mustPop(3)
		d.push(d.b.NewIfThenElse(v[0], v[1], v[2]))
	default:
		d.setFault(ErrUnknownOpcode, "expression kind %v never appears as a generic token", kind)
	}
}

func (d *Decoder) decodeLiteral() {
	baseType := opcode.BaseType(d.r.ReadBits(opcode.LiteralBaseTypeBits))
	var vecSize uint8
	if d.r.ReadBits(1) == 1 {
		vecSize = uint8(d.r.ReadBits(8))
	}
	lit := d.b.NewLiteral(baseType, vecSize)
	switch baseType {
	case opcode.BaseBool:
		lit.Bool = d.r.ReadBits(1) == 1
	case opcode.BaseInt8:
		lit.Int = int64(int8(d.r.ReadBits(8)))
	case opcode.BaseInt16:
		lit.Int = int64(int16(d.r.ReadBits(16)))
	case opcode.BaseInt32:
		lit.Int = int64(int32(d.r.ReadBits(32)))
	case opcode.BaseInt64:
		lit.Int = int64(d.r.ReadBits64(64))
	case opcode.BaseUint8:
		lit.Uint = uint64(d.r.ReadBits(8))
	case opcode.BaseUint16:
		lit.Uint = uint64(d.r.ReadBits(16))
	case opcode.BaseUint32:
		lit.Uint = uint64(d.r.ReadBits(32))
	case opcode.BaseUint64:
		lit.Uint = d.r.ReadBits64(64)
	case opcode.BaseFloat32:
		lit.Float32 = d.r.ReadFloat32()
	case opcode.BaseFloat64:
		lit.Float64 = d.r.ReadFloat64()
	case opcode.BaseString:
		lit.Str = d.r.ReadString()
	case opcode.BasePointer:
		lit.PointerNull = true
	default:
		d.setFault(ErrInvariantViolation, "unknown literal base type %d", baseType)
	}
	d.r.EndAtom()
	d.push(lit)
}

func (d *Decoder) decodeScalarType() {
	shape := ir.TypeShape(d.r.ReadBits(8))
	width := d.r.ReadVBR32()
	signed := d.r.ReadBits(1) == 1
	hasElem := d.r.ReadBits(1) == 1
	arrayLen := d.r.ReadVBR32()
	fieldCount := int(d.r.ReadVBR32())
	d.r.EndAtom()

	n := fieldCount
	if hasElem {
		n++
	}
	vals := d.mustPop(n)

	t := d.b.NewScalarType(shape)
	t.Width = width
	t.Signed = signed
	t.ArrayLen = arrayLen

	idx := 0
	if hasElem {
		t.Elem = vals[0]
		idx = 1
	}
	fields := make([]*ir.Field, fieldCount)
	for i := 0; i < fieldCount; i++ {
		f, ok := vals[idx+i].(*ir.Field)
		if !ok {
			d.setFault(ErrInvariantViolation, "ScalarType field %d decoded to %T, not a Field", i, vals[idx+i])
			continue
		}
		fields[i] = f
	}
	if fieldCount > 0 {
		t.Fields = fields
	}
	d.push(t)
}

func (d *Decoder) decodeFunction() {
	name := d.r.ReadString()
	cc := opcode.CallingConvention(d.r.ReadBits(opcode.CallingConventionBits))
	paramCount := int(d.r.ReadVBR32())
	d.r.EndAtom()

	v := d.mustPop(2) // [ReturnType, Body]
	retType, body := v[0], v[1]

	n := len(d.exitedDecls)
	if paramCount > n {
		d.setFault(ErrArityMismatch, "Function %q claims %d parameters but only %d scopes were exited", name, paramCount, n)
		paramCount = n
	}
	tail := d.exitedDecls[n-paramCount:]
	d.exitedDecls = d.exitedDecls[:n-paramCount]
	// Exits happen in reverse (LIFO) order of entry; restore left-to-right
	// parameter order.
	var params []*ir.VarDecl
	if paramCount > 0 {
		params = make([]*ir.VarDecl, paramCount)
	}
	for i, p := range tail {
		params[paramCount-1-i] = p
	}
	d.push(d.b.NewFunction(name, cc, params, retType, body))
}

func (d *Decoder) decodeLet() {
	d.r.EndAtom()
	v := d.mustPop(2) // [Value, Body]
	if len(d.exitedDecls) == 0 {
		d.setFault(ErrInvariantViolation, "Let with no exited scope to claim")
		d.push(d.b.NewLet(nil, v[0], v[1]))
		return
	}
	n := len(d.exitedDecls)
	decl := d.exitedDecls[n-1]
	d.exitedDecls = d.exitedDecls[:n-1]
	d.push(d.b.NewLet(decl, v[0], v[1]))
}

func (d *Decoder) decodeGoto() {
	idx := int(d.r.ReadVBR32())
	d.r.EndAtom()
	blk, err := d.resolveBlock(idx)
	if err != nil {
		d.setFaultErr(err)
		return
	}
	d.push(d.b.NewGoto(blk))
}

func (d *Decoder) decodeBranch() {
	tIdx := int(d.r.ReadVBR32())
	fIdx := int(d.r.ReadVBR32())
	d.r.EndAtom()
	v := d.mustPop(1)
	tBlk, err := d.resolveBlock(tIdx)
	if err != nil {
		d.setFaultErr(err)
		return
	}
	fBlk, err := d.resolveBlock(fIdx)
	if err != nil {
		d.setFaultErr(err)
		return
	}
	d.push(d.b.NewBranch(v[0], tBlk, fBlk))
}

func (d *Decoder) decodeSwitch() {
	defIdx := int(d.r.ReadVBR32())
	caseCount := int(d.r.ReadVBR32())
	targets := make([]int, caseCount)
	for i := range targets {
		targets[i] = int(d.r.ReadVBR32())
	}
	d.r.EndAtom()

	v := d.mustPop(1 + caseCount) // [Value, case0.Value, case1.Value, ...]
	defBlk, err := d.resolveBlock(defIdx)
	if err != nil {
		d.setFaultErr(err)
		return
	}
	cases := make([]ir.SwitchCase, caseCount)
	for i := 0; i < caseCount; i++ {
		tgt, err := d.resolveBlock(targets[i])
		if err != nil {
			d.setFaultErr(err)
			return
		}
		cases[i] = ir.SwitchCase{Value: v[1+i], Target: tgt}
	}
	d.push(d.b.NewSwitch(v[0], defBlk, cases...))
}

func (d *Decoder) decodeReturn() {
	hasValue := d.r.ReadBits(1) == 1
	d.r.EndAtom()
	var value ir.SExpr
	if hasValue {
		value = d.mustPop(1)[0]
	}
	d.push(d.b.NewReturn(value))
}
