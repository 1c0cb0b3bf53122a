// Package reader decodes CAOM observation documents into caom.Node graphs.
//
// XML and JSON documents are first turned into a generic element tree and
// then decoded against the declared field tables, so both formats accept
// exactly the same fields.
package reader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agentic-research/caomdb/internal/caom"
)

var (
	ErrUnknownElement   = errors.New("undeclared element")
	ErrDuplicateElement = errors.New("element repeated")
	ErrMissingKey       = errors.New("child has no identifier")
)

// Reader parses one observation document.
type Reader interface {
	Read(r io.Reader) (*caom.Node, error)
}

// DecodeError locates a decoding failure inside a document.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ForPath picks a reader by file extension.
func ForPath(name string) (Reader, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return XMLReader{}, true
	case ".json":
		return JSONReader{}, true
	}
	return nil, false
}

// Supported reports whether ForPath has a reader for name.
func Supported(name string) bool {
	_, ok := ForPath(name)
	return ok
}

// element is the format-neutral document tree.
type element struct {
	name     string
	typ      string
	attrs    map[string]string
	text     string
	children []*element
}

func newElement(name string) *element {
	return &element{name: name, attrs: make(map[string]string)}
}
