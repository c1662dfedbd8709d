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

package bitio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yazici/ohmu/til/bitio"
)

type bufSink struct{ buf bytes.Buffer }

func (s *bufSink) WriteData(p []byte) error { _, err := s.buf.Write(p); return err }

type bufSource struct{ r *bytes.Reader }

func (s *bufSource) ReadData(p []byte) (int, error) { return s.r.Read(p) }
func (s *bufSource) AllocStringData(n int) []byte   { return make([]byte, n) }

func TestBitsRoundTrip(t *testing.T) {
	cases := []struct {
		bits  uint64
		count int
	}{
		{0, 2}, {0, 3}, {1, 3}, {0xFFFFFFFF, 32}, {0x1, 1}, {0x3FF, 10},
		{64, 10}, {128, 10}, {1280, 11}, {142, 11}, {7, 3},
	}

	sink := &bufSink{}
	w := bitio.NewWriter(sink)
	for _, c := range cases {
		w.WriteBits64(c.bits, c.count)
	}
	w.EndAtom()
	require.NoError(t, w.Flush())

	src := &bufSource{r: bytes.NewReader(sink.buf.Bytes())}
	r := bitio.NewReader(src)
	for _, c := range cases {
		got := r.ReadBits64(c.count)
		mask := uint64(1)<<uint(c.count) - 1
		require.Equal(t, c.bits&mask, got)
	}
	require.NoError(t, r.Err())
}

func TestVBR64Identity(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 35, ^uint64(0)}
	for _, v := range values {
		sink := &bufSink{}
		w := bitio.NewWriter(sink)
		w.WriteVBR64(v)
		w.EndAtom()
		require.NoError(t, w.Flush())

		src := &bufSource{r: bytes.NewReader(sink.buf.Bytes())}
		r := bitio.NewReader(src)
		got := r.ReadVBR64()
		require.NoError(t, r.Err())
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestStringsFloatsAndBytesRoundTrip(t *testing.T) {
	sink := &bufSink{}
	w := bitio.NewWriter(sink)
	w.WriteString("hello, ohmu")
	w.WriteFloat32(3.14159)
	w.WriteFloat64(2.718281828)
	w.WriteBytes([]byte{1, 2, 3, 4, 5})
	w.EndAtom()
	require.NoError(t, w.Flush())

	src := &bufSource{r: bytes.NewReader(sink.buf.Bytes())}
	r := bitio.NewReader(src)
	require.Equal(t, "hello, ohmu", r.ReadString())
	require.Equal(t, float32(3.14159), r.ReadFloat32())
	require.Equal(t, 2.718281828, r.ReadFloat64())
	require.Equal(t, []byte{1, 2, 3, 4, 5}, r.ReadBytes(5))
	require.NoError(t, r.Err())
}

func TestAtomAlignmentPadsToByte(t *testing.T) {
	sink := &bufSink{}
	w := bitio.NewWriter(sink)
	w.WriteBits(0x5, 3)
	w.EndAtom()
	w.WriteBits(0x7, 3)
	w.EndAtom()
	require.NoError(t, w.Flush())

	require.Equal(t, 2, sink.buf.Len(), "each EndAtom should pad to a byte boundary")

	src := &bufSource{r: bytes.NewReader(sink.buf.Bytes())}
	r := bitio.NewReader(src)
	require.Equal(t, uint32(0x5), r.ReadBits(3))
	r.EndAtom()
	require.Equal(t, uint32(0x7), r.ReadBits(3))
	r.EndAtom()
	require.True(t, r.Empty())
}

func TestLargeStreamAcrossMultipleAtoms(t *testing.T) {
	sink := &bufSink{}
	w := bitio.NewWriter(sink)
	const n = 5000
	for i := 0; i < n; i++ {
		w.WriteVBR32(uint32(i))
		w.EndAtom()
	}
	require.NoError(t, w.Flush())

	src := &bufSource{r: bytes.NewReader(sink.buf.Bytes())}
	r := bitio.NewReader(src)
	for i := 0; i < n; i++ {
		require.Equal(t, uint32(i), r.ReadVBR32())
		r.EndAtom()
	}
	require.True(t, r.Empty())
}
