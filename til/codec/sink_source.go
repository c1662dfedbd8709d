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

// Package codec implements the traversal encoder and stack-machine
// decoder described in spec.md §4.3/§4.4: the pieces that turn an
// til/ir.SExpr tree into the wire format of spec.md §6 and back.
package codec

import (
	"bytes"
	"io"

	"github.com/yazici/ohmu/til/bitio"
)

// ByteSink is the collaborator a Writer drains into. See bitio.Sink.
type ByteSink = bitio.Sink

// ByteSource is the collaborator a Reader refills from. See bitio.Source.
type ByteSource = bitio.Source

// BufferSink is an in-memory ByteSink, primarily for tests.
type BufferSink struct{ buf bytes.Buffer }

// NewBufferSink returns an empty BufferSink.
func NewBufferSink() *BufferSink { return &BufferSink{} }

// WriteData implements ByteSink.
func (s *BufferSink) WriteData(p []byte) error { _, err := s.buf.Write(p); return err }

// Bytes returns the accumulated output.
func (s *BufferSink) Bytes() []byte { return s.buf.Bytes() }

// BufferSource is an in-memory ByteSource, primarily for tests.
type BufferSource struct {
	r *bytes.Reader
}

// NewBufferSource returns a ByteSource that reads data.
func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{r: bytes.NewReader(data)}
}

// ReadData implements ByteSource.
func (s *BufferSource) ReadData(p []byte) (int, error) { return s.r.Read(p) }

// AllocStringData implements ByteSource with a plain heap allocation.
func (s *BufferSource) AllocStringData(n int) []byte { return make([]byte, n) }

// WriterSink adapts an io.Writer to ByteSink.
type WriterSink struct{ w io.Writer }

// NewWriterSink returns a ByteSink over w.
func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

// WriteData implements ByteSink.
func (s *WriterSink) WriteData(p []byte) error {
	n, err := s.w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// stringAllocator is satisfied by til/build.Arena; kept narrow here so
// codec does not need to import til/build.
type stringAllocator interface {
	AllocStringData(n int) []byte
}

// ReaderSource adapts an io.Reader to ByteSource, delegating string
// allocation to an Arena so that decoded string data outlives the
// decoder.
type ReaderSource struct {
	r     io.Reader
	arena stringAllocator
}

// NewReaderSource returns a ByteSource over r that allocates string
// buffers through arena.
func NewReaderSource(r io.Reader, arena stringAllocator) *ReaderSource {
	return &ReaderSource{r: r, arena: arena}
}

// ReadData implements ByteSource.
func (s *ReaderSource) ReadData(p []byte) (int, error) { return s.r.Read(p) }

// AllocStringData implements ByteSource.
func (s *ReaderSource) AllocStringData(n int) []byte { return s.arena.AllocStringData(n) }
