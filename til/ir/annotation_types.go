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

package ir

import "github.com/yazici/ohmu/til/opcode"

// SourceLocation records the originating file/line/column of a node. It
// carries no sub-expressions.
type SourceLocation struct {
	File   string
	Line   uint32
	Column uint32
}

// AnnotationKind implements Annotation.
func (SourceLocation) AnnotationKind() opcode.AnnotationKind {
	return opcode.AnnotationSourceLocation
}

// Children implements Annotation.
func (SourceLocation) Children() []SExpr { return nil }

// Rewrite implements Annotation.
func (s SourceLocation) Rewrite(children []SExpr) Annotation { return s }

// Precondition attaches a boolean sub-expression that must hold whenever
// the annotated node is reached.
type Precondition struct {
	Expr SExpr
}

// AnnotationKind implements Annotation.
func (Precondition) AnnotationKind() opcode.AnnotationKind { return opcode.AnnotationPrecondition }

// Children implements Annotation.
func (p Precondition) Children() []SExpr { return []SExpr{p.Expr} }

// Rewrite implements Annotation.
func (p Precondition) Rewrite(children []SExpr) Annotation {
	return Precondition{Expr: children[0]}
}

// TestTripletAnnot is a schema test fixture exercising an annotation with
// three sub-expression slots; it is not a production annotation kind (see
// spec.md §9's Open Question).
type TestTripletAnnot struct {
	First, Second, Third SExpr
}

// AnnotationKind implements Annotation.
func (TestTripletAnnot) AnnotationKind() opcode.AnnotationKind {
	return opcode.AnnotationTestTriplet
}

// Children implements Annotation.
func (t TestTripletAnnot) Children() []SExpr { return []SExpr{t.First, t.Second, t.Third} }

// Rewrite implements Annotation.
func (t TestTripletAnnot) Rewrite(children []SExpr) Annotation {
	return TestTripletAnnot{First: children[0], Second: children[1], Third: children[2]}
}
