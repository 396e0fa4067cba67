package stubwire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/stubwire/stubwire/internal/identifier"
	"github.com/stubwire/stubwire/internal/reflection"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Base errors, always wrapped in the typed errors below before they
// reach a caller.

var (
	// Identifier errors.
	ErrUnknownIdentifier = errors.New("identifier is not a declared dependency")
	ErrAmbiguousMetadata = errors.New("at most one metadata qualifier may be supplied")

	// Reference errors, re-exported from identifier construction.
	ErrNilReference         = identifier.ErrNilReference
	ErrUnsupportedReference = identifier.ErrUnsupportedReference
	ErrUnresolvedForwardRef = identifier.ErrUnresolvedForwardRef

	// Builder errors.
	ErrBuilderConsumed    = errors.New("builder session already compiled")
	ErrOverrideIncomplete = errors.New("override registered without an implementation or final value")
	ErrNilOverride        = errors.New("override factory cannot be nil")

	// Constructor errors, re-exported so callers match reflection
	// failures without importing the internal package.
	ErrConstructorNil = reflection.ErrConstructorNil
)

var (
	_ error = ReflectionError{}
	_ error = IdentifierNotFoundError{}
	_ error = DuplicateIdentifierError{}
	_ error = FinalizationError{}
	_ error = GenerationError{}
	_ error = TypeMismatchError{}
	_ error = ConstructionError{}
	_ error = ConstructionPanicError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// ReflectionError reports that metadata for a declared dependency
// could not be resolved to a concrete identifier. It is fatal to the
// session and never retried.
type ReflectionError = reflection.Error

// IdentifierNotFoundError reports an override or lookup against an
// identifier the unit under test never declared. It is fatal only to
// the call that raised it; the session stays usable.
type IdentifierNotFoundError struct {
	Identifier Identifier
	Declared   []Identifier
}

func (e IdentifierNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("no declared dependency matches %s", e.Identifier))

	if similar := similarIdentifiers(e.Identifier, e.Declared); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, id := range similar {
			b.WriteString(fmt.Sprintf("  • %s\n", id))
		}
	}

	return b.String()
}

func (e IdentifierNotFoundError) Unwrap() error { return ErrUnknownIdentifier }

// similarIdentifiers finds declared identifiers whose display names
// resemble the requested one, for "did you mean" suggestions.
func similarIdentifiers(target Identifier, declared []Identifier) []Identifier {
	name := strings.ToLower(target.DisplayName())
	if name == "" {
		return nil
	}

	var similar []Identifier
	for _, id := range declared {
		candidate := strings.ToLower(id.DisplayName())
		if candidate == "" {
			continue
		}
		if candidate == name ||
			strings.Contains(candidate, name) ||
			strings.Contains(name, candidate) {
			similar = append(similar, id)
		}
		if len(similar) >= 5 {
			break
		}
	}
	return similar
}

// DuplicateIdentifierError reports two dependency descriptors sharing
// one identifier with conflicting declared shapes. It indicates a
// malformed unit declaration and is fatal to reflection.
type DuplicateIdentifierError struct {
	Identifier  Identifier
	FirstShape  reflect.Type
	SecondShape reflect.Type
}

func (e DuplicateIdentifierError) Error() string {
	if e.FirstShape == e.SecondShape {
		return fmt.Sprintf("dependency %s is declared twice with the same access kind; the slots cannot be told apart", e.Identifier)
	}
	return fmt.Sprintf("dependency %s is declared with conflicting shapes %s and %s",
		e.Identifier, formatType(e.FirstShape), formatType(e.SecondShape))
}

// FinalizationError reports an override chain that was started with
// Mock but never completed with Using or Final before Compile.
type FinalizationError struct {
	Identifier Identifier
}

func (e FinalizationError) Error() string {
	return fmt.Sprintf("override for %s was registered but never given an implementation or final value; complete it with Using or Final before compiling", e.Identifier)
}

func (e FinalizationError) Unwrap() error { return ErrOverrideIncomplete }

// GenerationError wraps a double-generation failure for a declared shape.
type GenerationError struct {
	Shape reflect.Type
	Cause error
}

func (e GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("failed to generate a double for %s: %v", formatType(e.Shape), e.Cause))

	if e.Shape != nil && e.Shape.Kind() == reflect.Interface {
		b.WriteString("\n\nTo resolve this:\n")
		b.WriteString("  • Override the dependency with Final or Using\n")
		b.WriteString("  • Use a double-library adapter with a registered implementation for the interface\n")
	}

	return b.String()
}

func (e GenerationError) Unwrap() error { return e.Cause }

// TypeMismatchError reports an override or generated value that does
// not fit its dependency slot.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// ConstructionError reports that the constructor of the unit under
// test returned an error.
type ConstructionError struct {
	Constructor reflect.Type
	Cause       error
}

func (e ConstructionError) Error() string {
	return fmt.Sprintf("constructor %s failed: %v", formatType(e.Constructor), e.Cause)
}

func (e ConstructionError) Unwrap() error { return e.Cause }

// ConstructionPanicError reports a panic raised while invoking the
// constructor of the unit under test, with the captured stack.
type ConstructionPanicError struct {
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e ConstructionPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor %s panicked: %v\n", formatType(e.Constructor), e.Panic))
	b.WriteString("\nThe unit is constructed with real construction semantics; panics inside the constructor are surfaced, not swallowed.\n")

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<untyped token>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + formatType(t.Elem())
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", formatType(t.Key()), formatType(t.Elem()))
	case reflect.Interface:
		if t.Name() != "" {
			return t.Name()
		}
		return "interface{}"
	case reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return "struct{...}"
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

// resolveIdentifier builds an Identifier from a caller-supplied
// reference and an optional single metadata qualifier.
func resolveIdentifier(ref any, metadata []any) (Identifier, error) {
	switch len(metadata) {
	case 0:
		return identifier.Resolve(ref, nil)
	case 1:
		return identifier.Resolve(ref, metadata[0])
	default:
		return Identifier{}, ErrAmbiguousMetadata
	}
}
