// Package errors provides standardized error types and helpers for stbview.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// Code classifies an extraction failure.
type Code string

const (
	// CodeMissingElement indicates a required child element is absent.
	CodeMissingElement Code = "missing-element"
	// CodeMissingAttribute indicates a required attribute is absent.
	CodeMissingAttribute Code = "missing-attribute"
	// CodeInvalidValue indicates an attribute failed type coercion.
	CodeInvalidValue Code = "invalid-value"
	// CodeUnknownEnum indicates an attribute matched no enumeration label.
	CodeUnknownEnum Code = "unknown-enum"
	// CodeUnknownTag indicates an element tag outside an exhaustive set.
	CodeUnknownTag Code = "unknown-tag"
	// CodeSchemaContract indicates an element appeared where the format forbids it.
	CodeSchemaContract Code = "schema-contract"
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "node", "file", "snapshot")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Is matches ErrNotFound even when Err holds the underlying cause.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "open", "decompress")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a document that is not well-formed.
type ParseError struct {
	Format  string // Format being parsed (e.g., "XML", "JSON")
	Path    string // File path, if applicable
	Line    int    // 1-based line, 0 when unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	where := ""
	switch {
	case e.Path != "" && e.Line > 0:
		where = fmt.Sprintf(" at %s:%d", e.Path, e.Line)
	case e.Path != "":
		where = " at " + e.Path
	case e.Line > 0:
		where = fmt.Sprintf(" at line %d", e.Line)
	}
	return fmt.Sprintf("failed to parse %s%s: %s", e.Format, where, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// ExtractError describes a schema violation found while turning the XML tree
// into the typed model. Path is the element's location in the document.
type ExtractError struct {
	Code      Code   `json:"code"`
	Element   string `json:"element,omitempty"`   // tag of the offending element (or the missing child)
	Attribute string `json:"attribute,omitempty"` // attribute name, if the failure is attribute-level
	Value     string `json:"value,omitempty"`     // offending text, if any
	Path      string `json:"path,omitempty"`      // e.g. /ST_BRIDGE/StbModel/StbNodes/StbNode[3]
	Err       error  `json:"-"`
}

func (e *ExtractError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Code))
	b.WriteString("] ")
	switch e.Code {
	case CodeMissingElement:
		fmt.Fprintf(&b, "missing element <%s>", e.Element)
	case CodeMissingAttribute:
		fmt.Fprintf(&b, "<%s> missing attribute %q", e.Element, e.Attribute)
	case CodeInvalidValue:
		fmt.Fprintf(&b, "<%s> attribute %q: invalid value %q", e.Element, e.Attribute, e.Value)
	case CodeUnknownEnum:
		fmt.Fprintf(&b, "<%s> attribute %q: unknown label %q", e.Element, e.Attribute, e.Value)
	case CodeUnknownTag:
		fmt.Fprintf(&b, "tag name %s is unimplemented", e.Element)
	default:
		fmt.Fprintf(&b, "<%s>", e.Element)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Code {
	case CodeMissingElement, CodeMissingAttribute:
		return ErrNotFound
	case CodeUnknownTag:
		return ErrUnsupported
	case CodeSchemaContract:
		return ErrInternal
	default:
		return ErrInvalidInput
	}
}

// ErrorList is an error that carries several extraction diagnostics.
type ErrorList []error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	return l
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
