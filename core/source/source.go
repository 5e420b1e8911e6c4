// Package source loads ST-Bridge files from disk.
//
// A file may be plain XML or xz-compressed (.xz suffix). The declared
// character set can be overridden for files whose XML declaration is wrong,
// which is common for Shift_JIS exports.
package source

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
)

// Options controls how a file is decoded.
type Options struct {
	// Encoding names the character set of the file (e.g. "shift_jis"). The
	// data is transcoded to UTF-8 and its XML declaration rewritten. Empty
	// keeps the declared encoding.
	Encoding string
}

// Source is a loaded document.
type Source struct {
	Path string
	// Data is the XML text, decompressed and transcoded.
	Data []byte
	// Digest is the hex BLAKE3-256 of the file as stored on disk.
	Digest string
}

// Load reads path and decodes it according to opts.
func Load(path string, opts Options) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &stberrors.NotFoundError{Resource: "file", ID: path, Err: err}
		}
		return nil, stberrors.NewIO("read", path, err)
	}
	return FromBytes(path, raw, opts)
}

// FromBytes decodes raw as if it had been read from path.
func FromBytes(path string, raw []byte, opts Options) (*Source, error) {
	src := &Source{Path: path, Digest: Digest(raw), Data: raw}

	if strings.HasSuffix(path, ".xz") {
		zr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, stberrors.NewIO("decompress", path, err)
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, stberrors.NewIO("decompress", path, err)
		}
		src.Data = data
	}

	if opts.Encoding != "" {
		data, err := Transcode(src.Data, opts.Encoding)
		if err != nil {
			return nil, stberrors.Wrap(err, path)
		}
		src.Data = data
	}
	return src, nil
}

// Digest returns the hex BLAKE3-256 of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var encodingDecl = regexp.MustCompile(`(<\?xml[^>]*?encoding\s*=\s*)("[^"]*"|'[^']*')`)

// Transcode converts data from the named character set to UTF-8 and makes
// the XML declaration say so.
func Transcode(data []byte, name string) ([]byte, error) {
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, &stberrors.UnsupportedError{Feature: "encoding", Reason: fmt.Sprintf("unknown character set %q", name)}
	}
	if canonical != "utf-8" {
		out, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return nil, stberrors.Wrapf(err, "decode %s", canonical)
		}
		data = out
	}
	if loc := encodingDecl.FindSubmatchIndex(data); loc != nil {
		var b bytes.Buffer
		b.Write(data[:loc[4]])
		b.WriteString(`"UTF-8"`)
		b.Write(data[loc[5]:])
		data = b.Bytes()
	}
	return data, nil
}
