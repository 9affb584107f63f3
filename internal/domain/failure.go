package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failure by the unit of work it aborted.
type FailureKind int

const (
	// FailureProperty aborted a single property.
	FailureProperty FailureKind = iota
	// FailureDeclaration aborted a single declaration.
	FailureDeclaration
	// FailureDocument aborted a whole document.
	FailureDocument
	// FailureMerge aborted part of a merge entry.
	FailureMerge
)

func (k FailureKind) String() string {
	switch k {
	case FailureProperty:
		return "property"
	case FailureDeclaration:
		return "declaration"
	case FailureDocument:
		return "document"
	case FailureMerge:
		return "merge"
	}
	return "unknown"
}

// ErrNotFound is returned when a name cannot be resolved.
var ErrNotFound = errors.New("symbol not found")

// ErrDuplicateID is returned when two documents are given the same id.
var ErrDuplicateID = errors.New("duplicate document id")

// Failure is a structured failure reason.
type Failure struct {
	Kind    FailureKind
	Pos     Position
	Subject string
	Err     error
}

func (f *Failure) Error() string {
	if f.Pos.File == "" {
		return fmt.Sprintf("%s %s: %v", f.Kind, f.Subject, f.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", f.Pos, f.Kind, f.Subject, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure.
func NewFailure(kind FailureKind, pos Position, subject string, err error) *Failure {
	return &Failure{Kind: kind, Pos: pos, Subject: subject, Err: err}
}
