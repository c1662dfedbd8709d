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

package opcode

// AnnotationKind is the 8-bit field identifying an annotation's shape on
// the wire. Only the three kinds below, built into til/ir, are known to the
// codec; there is no registration mechanism for further kinds.
type AnnotationKind uint8

const (
	AnnotationSourceLocation AnnotationKind = iota
	AnnotationPrecondition
	// AnnotationTestTriplet exercises an annotation with three
	// sub-expression slots. It is a schema test fixture, not a production
	// annotation: see spec.md §9's Open Question on TestTripletAnnot.
	AnnotationTestTriplet

	firstUnreservedAnnotationKind
)
