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

// Package build supplies reference implementations of the two
// collaborators the codec's decoder depends on but never constructs
// itself: an Arena that owns decoded nodes and string data, and a Builder
// that allocates them. Both are "external" per spec.md §1 — the codec
// only calls through the Builder interface — but a concrete pair is
// needed to exercise and test the decoder end to end.
package build

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Arena is a bump-style allocator whose lifetime is expected to strictly
// exceed the decoder's. It never frees; the codec calls AllocStringData
// once per decoded string and otherwise never touches the arena.
//
// Decoded identifiers repeat heavily (the same variable or field name
// appears at every use site), so the arena interns string allocations
// keyed by an xxhash of their eventual contents once the caller commits
// them via Intern. This is purely an implementation detail of the
// reference arena — nothing about it is visible on the wire.
type Arena struct {
	mu       sync.Mutex
	interned map[uint64]string
	allocs   int
	bytes    int
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{interned: make(map[uint64]string)}
}

// AllocStringData allocates a fresh, zeroed destination buffer of size n
// for the bitio.Reader to fill in before the resulting string is interned
// via Intern.
func (a *Arena) AllocStringData(n int) []byte {
	a.mu.Lock()
	a.allocs++
	a.bytes += n
	a.mu.Unlock()
	return make([]byte, n)
}

// Intern returns a shared string equal to s, allocating a new entry the
// first time a given value is seen.
func (a *Arena) Intern(s string) string {
	h := xxhash.Sum64String(s)
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.interned[h]; ok && existing == s {
		return existing
	}
	a.interned[h] = s
	return s
}

// Stats reports allocation counters for diagnostics.
func (a *Arena) Stats() (allocs, bytes, interned int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.bytes, len(a.interned)
}
