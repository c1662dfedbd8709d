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

import "fmt"

// ErrorKind classifies a decode failure. See spec.md §7.
type ErrorKind int

const (
	ErrTruncated ErrorKind = iota
	ErrUnknownOpcode
	ErrUnknownAnnotation
	ErrIndexOutOfRange
	ErrArityMismatch
	ErrInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTruncated:
		return "truncated stream"
	case ErrUnknownOpcode:
		return "unknown opcode"
	case ErrUnknownAnnotation:
		return "unknown annotation kind"
	case ErrIndexOutOfRange:
		return "index out of range"
	case ErrArityMismatch:
		return "arity mismatch"
	case ErrInvariantViolation:
		return "invariant violation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Fault is the sticky decode failure a Decoder carries once it stops
// trusting the stream. The decoder returns whatever partial tree it has
// built alongside a Fault; per spec.md §7 the caller must discard that
// tree.
type Fault struct {
	Kind ErrorKind
	Msg  string
}

func (f *Fault) Error() string {
	if f == nil {
		return "<nil fault>"
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func fault(kind ErrorKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
