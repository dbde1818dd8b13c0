package attachcrypto

import (
	"bytes"
	"io"
	"os"
)

// Source is the sum type PlaintextSource of spec.md §9: in-memory
// bytes, an already-open stream, or an absolute file path. Each
// variant knows how to open itself as an io.ReadCloser.
type Source interface {
	open() (io.ReadCloser, error)
}

type inMemorySource struct{ b []byte }

func (s inMemorySource) open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.b)), nil
}

// InMemorySource wraps a byte slice as a Source.
func InMemorySource(b []byte) Source { return inMemorySource{b: b} }

type streamSource struct{ r io.Reader }

func (s streamSource) open() (io.ReadCloser, error) {
	if rc, ok := s.r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.r), nil
}

// StreamSource wraps an already-open io.Reader as a Source.
func StreamSource(r io.Reader) Source { return streamSource{r: r} }

type fileSource struct{ absolutePath string }

func (s fileSource) open() (io.ReadCloser, error) {
	f, err := os.Open(s.absolutePath)
	if err != nil {
		return nil, wrapErr(KindIoOpen, "", "opening plaintext file", err)
	}
	return f, nil
}

// FileSource wraps an absolute path as a Source, opened lazily when
// the pipeline runs.
func FileSource(absolutePath string) Source { return fileSource{absolutePath: absolutePath} }

// PathResolver resolves a caller-chosen relative output path to an
// absolute one. Attachment path allocation and naming are out of
// scope (spec.md §1); this is the seam the caller plugs into.
type PathResolver func(relative string) (string, error)
