// Package attr converts XML attribute text into typed values.
//
// Two coercions exist and they differ in case handling: scalar values
// (numbers, booleans and strings) are lower-cased before parsing, so "TRUE"
// and "1E3" are accepted and "P-100X5" reads as "p-100x5", while enumeration
// labels must match one of the known labels exactly, so "on_column" is not
// ON_COLUMN. Text and OptionalText read a string without lower-casing.
package attr

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/xml"
)

// ScalarType lists the attribute types Value can produce.
type ScalarType interface {
	uint32 | int32 | float64 | bool | string
}

// Value reads a required attribute and coerces it to T.
func Value[T ScalarType](el *xml.Node, name string) (T, error) {
	var zero T
	text, ok := el.Attr(name)
	if !ok {
		return zero, missing(el, name)
	}
	v, err := parse[T](text)
	if err != nil {
		return zero, &stberrors.ExtractError{
			Code:      stberrors.CodeInvalidValue,
			Element:   el.Name(),
			Attribute: name,
			Value:     text,
			Path:      el.Path(),
			Err:       err,
		}
	}
	return v, nil
}

// Optional reads an attribute that may be absent. Absence yields nil; a
// present attribute is coerced exactly like Value.
func Optional[T ScalarType](el *xml.Node, name string) (*T, error) {
	if _, ok := el.Attr(name); !ok {
		return nil, nil
	}
	v, err := Value[T](el, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Text reads a required attribute verbatim.
func Text(el *xml.Node, name string) (string, error) {
	text, ok := el.Attr(name)
	if !ok {
		return "", missing(el, name)
	}
	return text, nil
}

// OptionalText reads an attribute verbatim. Absence yields nil.
func OptionalText(el *xml.Node, name string) *string {
	text, ok := el.Attr(name)
	if !ok {
		return nil
	}
	return &text
}

// errNotFinite rejects NaN and infinities, which JSON cannot carry.
var errNotFinite = errors.New("value is not finite")

// parse converts the lower-cased text to T.
func parse[T ScalarType](text string) (T, error) {
	var out T
	lower := strings.ToLower(text)
	switch p := any(&out).(type) {
	case *string:
		*p = lower
	case *uint32:
		v, err := strconv.ParseUint(lower, 10, 32)
		if err != nil {
			return out, numErr(err)
		}
		*p = uint32(v)
	case *int32:
		v, err := strconv.ParseInt(lower, 10, 32)
		if err != nil {
			return out, numErr(err)
		}
		*p = int32(v)
	case *float64:
		v, err := strconv.ParseFloat(lower, 64)
		if err != nil {
			return out, numErr(err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, errNotFinite
		}
		*p = v
	case *bool:
		switch lower {
		case "true":
			*p = true
		case "false":
			*p = false
		default:
			return out, strconv.ErrSyntax
		}
	}
	return out, nil
}

func numErr(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

func missing(el *xml.Node, name string) error {
	return &stberrors.ExtractError{
		Code:      stberrors.CodeMissingAttribute,
		Element:   el.Name(),
		Attribute: name,
		Path:      el.Path(),
	}
}

// Table is the closed set of labels an enumeration accepts.
type Table[T ~string] struct {
	labels map[string]T
}

// NewTable builds a table whose labels are the values themselves.
func NewTable[T ~string](values ...T) *Table[T] {
	t := &Table[T]{labels: make(map[string]T, len(values))}
	for _, v := range values {
		t.labels[string(v)] = v
	}
	return t
}

// Lookup matches label exactly against the table.
func (t *Table[T]) Lookup(label string) (T, bool) {
	v, ok := t.labels[label]
	return v, ok
}

// Labels returns the accepted labels in sorted order.
func (t *Table[T]) Labels() []string {
	out := make([]string, 0, len(t.labels))
	for l := range t.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Enum reads a required attribute and matches its original-case text
// against table.
func Enum[T ~string](el *xml.Node, name string, table *Table[T]) (T, error) {
	var zero T
	text, ok := el.Attr(name)
	if !ok {
		return zero, missing(el, name)
	}
	v, ok := table.Lookup(text)
	if !ok {
		return zero, &stberrors.ExtractError{
			Code:      stberrors.CodeUnknownEnum,
			Element:   el.Name(),
			Attribute: name,
			Value:     text,
			Path:      el.Path(),
		}
	}
	return v, nil
}

// OptionalEnum is Enum for attributes that may be absent.
func OptionalEnum[T ~string](el *xml.Node, name string, table *Table[T]) (*T, error) {
	if _, ok := el.Attr(name); !ok {
		return nil, nil
	}
	v, err := Enum(el, name, table)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
