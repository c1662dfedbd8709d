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

// Command ohmu is a small demo driver for til/codec: it builds a sample
// SSA tree, round-trips it through the wire format, and reports the
// result, exercising the encoder/decoder/builder the way a real frontend
// or debugger would.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/yazici/ohmu/til/build"
	"github.com/yazici/ohmu/til/codec"
	"github.com/yazici/ohmu/til/ir"
	"github.com/yazici/ohmu/til/opcode"
)

func main() {
	encodeCmd := &cli.Command{
		Name:        "encode",
		Description: "build a sample IR tree and encode it to a file",
		Action:      encodeAct,
		Args:        cli.Args{},
	}

	decodeCmd := &cli.Command{
		Name:        "decode",
		Description: "decode a file written by encode and print a summary",
		Action:      decodeAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "ohmu",
		Description: "ohmu encodes and decodes the bit-packed typed SSA wire format",
		Commands: []*cli.Command{
			encodeCmd,
			decodeCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func encodeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	out := cfg.Encode.Output
	if len(c.Args) > 0 {
		out = c.Args[0]
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create %v", out)
	}
	defer f.Close()

	enc := codec.NewEncoder(codec.NewWriterSink(f))
	if err := enc.Write(ctx, sampleTree()); err != nil {
		return errors.Wrap(err, "encode")
	}

	fmt.Printf("wrote %s: %s, %d atoms, %d instructions\n",
		out, humanize.Bytes(uint64(enc.Stats.Bytes)), enc.Stats.Atoms, enc.Stats.Instructions)
	return nil
}

func decodeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("decode: expected a file argument")
	}
	in := c.Args[0]

	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "open %v", in)
	}
	defer f.Close()

	arena := build.NewArena()
	dec := codec.NewDecoder(codec.NewReaderSource(f, arena), build.NewRefBuilder(arena))
	root, err := dec.Read(ctx)
	if fault, ok := err.(*codec.Fault); ok {
		return errors.Wrap(fault, "decode %v [decoder %v]", in, dec.ID())
	} else if err != nil {
		return errors.Wrap(err, "decode %v", in)
	}

	fmt.Printf("decoded %s: %d instructions, root kind %v\n", in, dec.Stats.Instructions, root.Kind())
	return nil
}

// sampleTree builds a small function with a four-block diamond CFG: an
// entry block branching on a literal condition into two arms that each
// compute a value, merged by a phi in the join block. It exists purely to give the encode
// subcommand something to write.
func sampleTree() ir.SExpr {
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

	fn := ir.NewFunction("select_branch", opcode.CCDefault, nil, i32, cfg)
	fn.AddAnnotation(ir.SourceLocation{File: "demo.ohmu", Line: 1, Column: 1})
	return fn
}
