// Package extract builds a stb.Document from ST-Bridge XML.
//
// Extraction is a single pass over the element tree. Every entity is
// checked against its element and attribute contract as it is read; the
// cross references between entities (node ids, section ids) are not checked
// here and are left to stb.Document.ResolveMembers.
//
// By default the first violation aborts extraction. With
// Options.CollectErrors the extractor skips each broken element, keeps
// going, and reports every violation in a stberrors.ErrorList.
package extract

import (
	"errors"
	"time"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/source"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/xml"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// RootElement is the document element of every ST-Bridge file.
const RootElement = "ST_BRIDGE"

// Options controls extraction.
type Options struct {
	// CollectErrors continues past broken elements and returns every
	// violation at the end instead of stopping at the first one.
	CollectErrors bool
	// MaxErrors stops collection after this many violations. Zero means no
	// limit. Ignored unless CollectErrors is set.
	MaxErrors int
	// Encoding overrides the character set declared by the file.
	Encoding string
}

var errLimit = errors.New("error limit reached")

// ParseFile loads path and extracts the document it holds.
func ParseFile(path string, opts Options) (*stb.Document, error) {
	src, err := source.Load(path, source.Options{Encoding: opts.Encoding})
	if err != nil {
		logging.ParseFailed(path, err)
		return nil, err
	}
	return ParseSource(src, opts)
}

// ParseSource extracts the document held by src and logs the outcome.
func ParseSource(src *source.Source, opts Options) (*stb.Document, error) {
	start := time.Now()
	doc, err := Parse(src.Data, opts)
	if err != nil {
		var pe *stberrors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = src.Path
		}
		logging.ParseFailed(src.Path, err, "digest", src.Digest)
		return nil, err
	}
	logging.DocumentParsed(src.Path,
		len(doc.Model.Nodes), doc.Model.Members.Len(), doc.Model.Sections.Len(),
		time.Since(start), "digest", src.Digest, "version", doc.Version)
	return doc, nil
}

// Parse extracts a document from raw XML.
func Parse(data []byte, opts Options) (*stb.Document, error) {
	tree, err := xml.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromTree(tree.Root(), opts)
}

// FromTree extracts a document from an already parsed tree.
func FromTree(root *xml.Node, opts Options) (*stb.Document, error) {
	x := &extractor{opts: opts}
	doc, err := x.document(root)
	if err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}
	if len(x.errs) > 0 {
		return nil, x.errs
	}
	return doc, nil
}

type extractor struct {
	opts Options
	errs stberrors.ErrorList
}

// keep decides what a failure means for the extraction. Without
// CollectErrors it is returned unchanged and aborts. Otherwise it is
// recorded and nil is returned, unless the error limit has been hit.
func (x *extractor) keep(err error) error {
	if err == nil || !x.opts.CollectErrors || errors.Is(err, errLimit) {
		return err
	}
	x.errs = append(x.errs, err)
	if x.opts.MaxErrors > 0 && len(x.errs) >= x.opts.MaxErrors {
		return errLimit
	}
	return nil
}

// each runs fn on every child element of container, keeping failures.
func (x *extractor) each(container *xml.Node, fn func(el *xml.Node) error) error {
	for _, el := range container.Children() {
		if err := x.keep(fn(el)); err != nil {
			return err
		}
	}
	return nil
}

// document runs the extractors in document order: version, common, model
// (nodes, axes, stories, members, sections), extensions.
func (x *extractor) document(root *xml.Node) (*stb.Document, error) {
	if root == nil || root.Name() != RootElement {
		return nil, &stberrors.ExtractError{Code: stberrors.CodeMissingElement, Element: RootElement}
	}

	doc := &stb.Document{}
	r := newReader(root)
	doc.Version = verbatim(r, "version")
	if err := x.keep(r.Err()); err != nil {
		return nil, err
	}

	var err error
	if doc.Common, err = x.common(root); err != nil {
		return nil, err
	}
	if doc.Model, err = x.model(root); err != nil {
		return nil, err
	}
	if doc.Extensions, err = x.extensions(root); err != nil {
		return nil, err
	}
	return doc, nil
}

func (x *extractor) model(root *xml.Node) (stb.Model, error) {
	m := stb.Model{
		Nodes:    stb.NodeTable{},
		Members:  stb.NewMembers(),
		Sections: stb.NewSections(),
	}
	el, err := required(root, "StbModel")
	if err != nil {
		return m, x.keep(err)
	}

	if m.Nodes, err = x.nodes(el); err != nil {
		return m, err
	}
	if m.Axes, err = x.axes(el); err != nil {
		return m, err
	}
	if m.Stories, err = x.stories(el); err != nil {
		return m, err
	}
	if err = x.members(el, m.Members); err != nil {
		return m, err
	}
	if err = x.sections(el, &m.Sections); err != nil {
		return m, err
	}
	return m, nil
}
