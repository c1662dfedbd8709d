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

package codec_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/yazici/ohmu/til/bitio"
	"github.com/yazici/ohmu/til/build"
	"github.com/yazici/ohmu/til/codec"
	"github.com/yazici/ohmu/til/ir"
	"github.com/yazici/ohmu/til/opcode"
)

// roundTrip encodes root, decodes it back through a fresh RefBuilder, and
// returns the decoded tree alongside both sides' stats.
func roundTrip(t *testing.T, root ir.SExpr) (ir.SExpr, codec.Stats, codec.Stats) {
	t.Helper()
	ctx := context.Background()
	sink := codec.NewBufferSink()
	enc := codec.NewEncoder(sink)
	require.NoError(t, enc.Write(ctx, root))

	src := codec.NewBufferSource(sink.Bytes())
	dec := codec.NewDecoder(src, build.NewRefBuilder(build.NewArena()))
	got, err := dec.Read(ctx)
	require.NoError(t, err)
	return got, enc.Stats, dec.Stats
}

func TestLiteralsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		lit  *ir.Literal
	}{
		{"bool", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseBool); l.Bool = true; return l }()},
		{"int8", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseInt8); l.Int = -12; return l }()},
		{"int32", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseInt32); l.Int = -70000; return l }()},
		{"int64", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseInt64); l.Int = -1 << 40; return l }()},
		{"uint32", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseUint32); l.Uint = 1 << 31; return l }()},
		{"uint64", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseUint64); l.Uint = 1 << 63; return l }()},
		{"float32", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseFloat32); l.Float32 = 3.5; return l }()},
		{"float64", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseFloat64); l.Float64 = 2.25; return l }()},
		{"string", func() *ir.Literal { l := ir.NewLiteral(opcode.BaseString); l.Str = "ohmu"; return l }()},
		{"null pointer", func() *ir.Literal { l := ir.NewLiteral(opcode.BasePointer); l.PointerNull = true; return l }()},
		{"vector of int32", func() *ir.Literal {
			l := ir.NewLiteral(opcode.BaseInt32)
			l.VectorSize = 4
			l.Int = 7
			return l
		}()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, _, _ := roundTrip(t, c.lit)
			require.Equal(t, c.lit, got)
		})
	}
}

func TestLetAndBinaryOpRoundTrip(t *testing.T) {
	one := ir.NewLiteral(opcode.BaseInt32)
	one.Int = 1
	two := ir.NewLiteral(opcode.BaseInt32)
	two.Int = 2

	decl := ir.NewVarDecl(opcode.VarLocal, "x", nil)
	root := ir.NewLet(decl, ir.NewBinaryOp(opcode.BinaryAdd, one, two), ir.NewVariable(1))

	got, _, _ := roundTrip(t, root)
	require.Equal(t, root, got)
}

func TestScalarTypeRecordArrayRoundTrip(t *testing.T) {
	i32 := ir.NewScalarType(ir.ShapeInt)
	i32.Width = 32
	i32.Signed = true

	recType := ir.NewScalarType(ir.ShapeRecord)
	recType.Fields = []*ir.Field{
		ir.NewField("a", i32),
		ir.NewField("b", i32),
	}

	av := ir.NewLiteral(opcode.BaseInt32)
	av.Int = 10
	bv := ir.NewLiteral(opcode.BaseInt32)
	bv.Int = 20
	record := ir.NewRecord(av, bv)

	arr := ir.NewArray(i32, av, bv)

	root := ir.NewRecord(record, arr, recType)
	got, _, _ := roundTrip(t, root)
	require.Equal(t, root, got)
}

func TestFunctionWithCodeBodyRoundTrip(t *testing.T) {
	i32 := ir.NewScalarType(ir.ShapeInt)
	i32.Width = 32
	i32.Signed = true

	param := ir.NewVarDecl(opcode.VarParam, "n", i32)
	body := ir.NewCode(ir.NewBinaryOp(opcode.BinaryMul, ir.NewVariable(1), ir.NewVariable(1)))
	root := ir.NewFunction("square", opcode.CCDefault, []*ir.VarDecl{param}, i32, body)

	got, _, _ := roundTrip(t, root)
	require.Equal(t, root, got)
}

func TestFunctionWithCFGRoundTrip(t *testing.T) {
	i32 := ir.NewScalarType(ir.ShapeInt)
	i32.Width = 32
	i32.Signed = true

	answer := ir.NewLiteral(opcode.BaseInt32)
	answer.Int = 42
	ret := ir.NewReturn(answer)

	block := ir.NewBasicBlock(0, 0)
	block.Instrs = []ir.SExpr{ret}
	cfg := ir.NewStructuredCFG(block)

	root := ir.NewFunction("answer", opcode.CCDefault, nil, i32, cfg)

	got, stats, dstats := roundTrip(t, root)
	require.Equal(t, root, got)
	require.Equal(t, 1, stats.Instructions)
	require.Equal(t, 1, dstats.Instructions)
}

func TestWeakInstructionReferenceRoundTrip(t *testing.T) {
	lit := ir.NewLiteral(opcode.BaseInt32)
	lit.Int = 5
	neg := ir.NewUnaryOp(opcode.UnaryNeg, lit) // neg.Operand aliases the committed lit
	ret := ir.NewReturn(neg)

	block := ir.NewBasicBlock(0, 0)
	block.Instrs = []ir.SExpr{lit, neg, ret} // lit and neg are both committed instructions
	cfg := ir.NewStructuredCFG(block)

	i32 := ir.NewScalarType(ir.ShapeInt)
	i32.Width, i32.Signed = 32, true
	root := ir.NewFunction("negate_five", opcode.CCDefault, nil, i32, cfg)

	got, stats, _ := roundTrip(t, root)
	require.Equal(t, root, got)
	require.Equal(t, 3, stats.Instructions)

	gotFn := got.(*ir.Function)
	gotCFG := gotFn.Body.(*ir.StructuredCFG)
	gotRet := gotCFG.Blocks[0].Instrs[2].(*ir.Return)
	gotNeg := gotRet.Value.(*ir.UnaryOp)
	require.Same(t, gotCFG.Blocks[0].Instrs[0], gotNeg.Operand,
		"weak reference must resolve to the very instruction installed earlier in the block, not a copy")
}

// TestPhiMergeRoundTrip builds a four-block diamond: block 0 branches on a
// condition to block 1 or block 2, each of which computes a value and jumps
// to block 3, where a phi selects between them.
func TestPhiMergeRoundTrip(t *testing.T) {
	cond := ir.NewLiteral(opcode.BaseBool)
	cond.Bool = true

	b0 := ir.NewBasicBlock(0, 0)
	b1 := ir.NewBasicBlock(1, 0)
	b2 := ir.NewBasicBlock(2, 0)
	b3 := ir.NewBasicBlock(3, 1)

	b0.Instrs = []ir.SExpr{ir.NewBranch(cond, b1, b2)}

	one := ir.NewLiteral(opcode.BaseInt32)
	one.Int = 1
	valA := ir.NewBinaryOp(opcode.BinaryAdd, one, one)
	b1.Instrs = []ir.SExpr{valA, ir.NewGoto(b3)}

	two := ir.NewLiteral(opcode.BaseInt32)
	two.Int = 2
	valB := ir.NewBinaryOp(opcode.BinaryMul, two, two)
	b2.Instrs = []ir.SExpr{valB, ir.NewGoto(b3)}

	phi := ir.NewPhi(valA, valB)
	b3.Phis = []*ir.Phi{phi}
	b3.Instrs = []ir.SExpr{ir.NewReturn(nil)}

	cfg := ir.NewStructuredCFG(b0, b1, b2, b3)
	i32 := ir.NewScalarType(ir.ShapeInt)
	i32.Width, i32.Signed = 32, true
	root := ir.NewFunction("diamond", opcode.CCDefault, nil, i32, cfg)

	got, stats, _ := roundTrip(t, root)
	require.Equal(t, root, got)
	require.Equal(t, 6, stats.Instructions) // branch, valA, goto, valB, goto, return

	gotCFG := got.(*ir.Function).Body.(*ir.StructuredCFG)
	gotPhi := gotCFG.Blocks[3].Phis[0]
	require.Same(t, gotCFG.Blocks[1].Instrs[0], gotPhi.ArgRefs[0])
	require.Same(t, gotCFG.Blocks[2].Instrs[0], gotPhi.ArgRefs[1])
}

func TestAnnotationsRoundTrip(t *testing.T) {
	guard := ir.NewLiteral(opcode.BaseBool)
	guard.Bool = true

	lit := ir.NewLiteral(opcode.BaseInt32)
	lit.Int = 9
	lit.AddAnnotation(ir.SourceLocation{File: "prog.ohmu", Line: 12, Column: 3})
	lit.AddAnnotation(ir.Precondition{Expr: guard})

	got, _, _ := roundTrip(t, lit)
	require.Equal(t, lit, got)
	require.Len(t, got.Annotations(), 2)
}

// TestAnnotationScalarsDiff checks the decoded SourceLocation's scalar
// fields with go-cmp rather than require.Equal, so a future field added
// to SourceLocation that the encoder forgets to serialize shows up as a
// labeled diff instead of an opaque "not equal".
func TestAnnotationScalarsDiff(t *testing.T) {
	lit := ir.NewLiteral(opcode.BaseInt32)
	lit.Int = 1
	want := ir.SourceLocation{File: "a.ohmu", Line: 7, Column: 2}
	lit.AddAnnotation(want)

	got, _, _ := roundTrip(t, lit)
	gotAnns := got.Annotations()
	require.Len(t, gotAnns, 1)

	gotLoc, ok := gotAnns[0].(ir.SourceLocation)
	require.True(t, ok)
	if diff := cmp.Diff(want, gotLoc); diff != "" {
		t.Errorf("SourceLocation round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullPointerLiteralPanics(t *testing.T) {
	l := ir.NewLiteral(opcode.BasePointer)
	l.PointerNull = false

	sink := codec.NewBufferSink()
	enc := codec.NewEncoder(sink)
	require.Panics(t, func() { _ = enc.Write(context.Background(), l) })
}

func TestTruncatedStreamFails(t *testing.T) {
	one := ir.NewLiteral(opcode.BaseInt32)
	one.Int = 1
	two := ir.NewLiteral(opcode.BaseInt32)
	two.Int = 2
	root := ir.NewBinaryOp(opcode.BinaryAdd, one, two)

	sink := codec.NewBufferSink()
	require.NoError(t, codec.NewEncoder(sink).Write(context.Background(), root))

	full := sink.Bytes()
	truncated := full[:len(full)-1]

	src := codec.NewBufferSource(truncated)
	dec := codec.NewDecoder(src, build.NewRefBuilder(nil))
	_, err := dec.Read(context.Background())
	require.Error(t, err)
	fault, ok := err.(*codec.Fault)
	require.True(t, ok)
	require.Equal(t, codec.ErrTruncated, fault.Kind)
}

func TestEmptyStreamFails(t *testing.T) {
	src := codec.NewBufferSource(nil)
	dec := codec.NewDecoder(src, build.NewRefBuilder(nil))
	_, err := dec.Read(context.Background())
	require.Error(t, err)
}

// TestWeakReferenceOutsideCFGFails hand-assembles a one-token stream — a
// bare PsopWeakInstrRef with no enclosing EnterCFG — to check the decoder
// reports ErrInvariantViolation instead of panicking on a nil CFG state.
func TestWeakReferenceOutsideCFGFails(t *testing.T) {
	sink := codec.NewBufferSink()
	w := bitio.NewWriter(sink)
	w.WriteBits(uint32(opcode.PsopWeakInstrRef), opcode.CodeBits)
	w.WriteVBR32(99)
	w.EndAtom()
	require.NoError(t, w.Flush())

	src := codec.NewBufferSource(sink.Bytes())
	dec := codec.NewDecoder(src, build.NewRefBuilder(nil))
	_, err := dec.Read(context.Background())
	require.Error(t, err)
	fault, ok := err.(*codec.Fault)
	require.True(t, ok)
	require.Equal(t, codec.ErrInvariantViolation, fault.Kind)
}
