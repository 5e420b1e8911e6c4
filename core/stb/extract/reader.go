package extract

import (
	"github.com/FocuswithJustin/stbview/core/attr"
	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/xml"
)

// reader reads attributes of one element and its required children. The
// first failure sticks: later reads return zero values and the error is
// reported once by Err. Readers derived with child share the error.
type reader struct {
	el  *xml.Node
	err *error
}

func newReader(el *xml.Node) reader {
	var err error
	return reader{el: el, err: &err}
}

func (r reader) Err() error { return *r.err }

func (r reader) ok() bool { return *r.err == nil }

func (r reader) fail(err error) {
	if *r.err == nil {
		*r.err = err
	}
}

// child returns a reader on the required child element name.
func (r reader) child(name string) reader {
	if !r.ok() {
		return reader{err: r.err}
	}
	c, err := required(r.el, name)
	if err != nil {
		r.fail(err)
		return reader{err: r.err}
	}
	return reader{el: c, err: r.err}
}

// optionalChild returns a reader on child element name if it exists.
func (r reader) optionalChild(name string) (reader, bool) {
	if !r.ok() {
		return reader{err: r.err}, false
	}
	c := r.el.Child(name)
	if c == nil {
		return reader{err: r.err}, false
	}
	return reader{el: c, err: r.err}, true
}

// children returns readers on every child element.
func (r reader) children() []reader {
	if !r.ok() {
		return nil
	}
	var out []reader
	for _, c := range r.el.Children() {
		out = append(out, reader{el: c, err: r.err})
	}
	return out
}

func scalar[T attr.ScalarType](r reader, name string) T {
	var v T
	if !r.ok() {
		return v
	}
	v, err := attr.Value[T](r.el, name)
	r.fail(err)
	return v
}

func optional[T attr.ScalarType](r reader, name string) *T {
	if !r.ok() {
		return nil
	}
	v, err := attr.Optional[T](r.el, name)
	r.fail(err)
	return v
}

// text reads a string attribute lower-cased, like every other scalar.
func text(r reader, name string) string { return scalar[string](r, name) }

// verbatim reads a string attribute as written. Identifiers users look up
// by their printed form (member names, bar designations) keep their case.
func verbatim(r reader, name string) string {
	if !r.ok() {
		return ""
	}
	v, err := attr.Text(r.el, name)
	r.fail(err)
	return v
}

func optionalVerbatim(r reader, name string) *string {
	if !r.ok() {
		return nil
	}
	return attr.OptionalText(r.el, name)
}

func enum[T ~string](r reader, name string, table *attr.Table[T]) T {
	var v T
	if !r.ok() {
		return v
	}
	v, err := attr.Enum(r.el, name, table)
	r.fail(err)
	return v
}

func optionalEnum[T ~string](r reader, name string, table *attr.Table[T]) *T {
	if !r.ok() {
		return nil
	}
	v, err := attr.OptionalEnum(r.el, name, table)
	r.fail(err)
	return v
}

// required returns the first child of parent named name.
func required(parent *xml.Node, name string) (*xml.Node, error) {
	if c := parent.Child(name); c != nil {
		return c, nil
	}
	return nil, &stberrors.ExtractError{
		Code:    stberrors.CodeMissingElement,
		Element: name,
		Path:    parent.Path(),
	}
}

func unknownTag(el *xml.Node) error {
	return &stberrors.ExtractError{
		Code:    stberrors.CodeUnknownTag,
		Element: el.Name(),
		Path:    el.Path(),
	}
}
