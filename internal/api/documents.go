package api

import (
	"context"
	"fmt"
	"strings"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/source"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/core/stb/extract"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// LoadRequest names a file to parse.
type LoadRequest struct {
	FileName string `json:"fileName"`
	Encoding string `json:"encoding,omitempty"`
	Collect  bool   `json:"collect,omitempty"`
}

// MembersRequest asks for member endpoints, either of a file or of a
// document the client already holds.
type MembersRequest struct {
	LoadRequest
	STBridge  *stb.Document `json:"stBridge,omitempty"`
	SkipSlabs bool          `json:"skipSlabs,omitempty"`
}

// resolveError marks a failure to resolve member endpoints, as opposed to a
// failure to load the document.
type resolveError struct{ err error }

func (e *resolveError) Error() string { return e.err.Error() }
func (e *resolveError) Unwrap() error { return e.err }

// cacheKey identifies a parse result. The same bytes read with a different
// encoding override give a different document.
func cacheKey(digest, encoding string) string {
	if encoding == "" {
		return digest
	}
	return digest + ":" + strings.ToLower(encoding)
}

// document loads and parses req.FileName, serving repeated loads of the same
// bytes from the memory cache or the snapshot store.
func (s *Server) document(ctx context.Context, req LoadRequest) (*stb.Document, error) {
	path, err := ResolvePath(s.cfg.Root, req.FileName)
	if err != nil {
		return nil, err
	}
	src, err := source.Load(path, source.Options{Encoding: req.Encoding})
	if err != nil {
		return nil, err
	}
	key := cacheKey(src.Digest, req.Encoding)
	log := logging.LoggerFromContext(ctx)

	if doc, ok := s.docs.Get(key); ok {
		log.Debug("document cache hit", "path", path, "key", key)
		return doc, nil
	}
	if s.store != nil {
		doc, ok, err := s.store.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("snapshot unreadable, reparsing", "key", key, "error", err)
		case ok:
			log.Debug("snapshot hit", "path", path, "key", key)
			s.docs.Put(key, doc)
			return doc, nil
		}
	}

	opts := s.cfg.Extract
	opts.Encoding = req.Encoding
	if req.Collect {
		opts.CollectErrors = true
	}
	doc, err := extract.ParseSource(src, opts)
	if err != nil {
		return nil, err
	}

	s.docs.Put(key, doc)
	if s.store != nil {
		if err := s.store.Put(ctx, key, doc); err != nil {
			log.Warn("snapshot not stored", "key", key, "error", err)
		}
		s.index.Invalidate()
	}
	s.hub.Broadcast(Event{Type: EventDocumentParsed, FileName: req.FileName, Digest: key})
	return doc, nil
}

// members resolves the endpoints of every member of the requested document.
func (s *Server) members(ctx context.Context, req MembersRequest) ([]stb.NodePair, error) {
	doc := req.STBridge
	if doc == nil {
		if req.FileName == "" {
			return nil, fmt.Errorf("%w: either fileName or stBridge is required", stberrors.ErrInvalidInput)
		}
		var err error
		if doc, err = s.document(ctx, req.LoadRequest); err != nil {
			return nil, err
		}
	}

	resolve := doc.ResolveMembers
	if req.SkipSlabs {
		resolve = doc.ResolveFrameMembers
	}
	pairs, err := resolve()
	if err != nil {
		return nil, &resolveError{err}
	}
	if pairs == nil {
		pairs = []stb.NodePair{}
	}
	return pairs, nil
}
