package attachcrypto

import (
	"hash"
	"io"
)

// hashTapReader is peekAndUpdateHash: a passthrough reader that feeds
// every chunk it forwards into h.
type hashTapReader struct {
	r io.Reader
	h hash.Hash
}

func newHashTapReader(r io.Reader, h hash.Hash) *hashTapReader {
	return &hashTapReader{r: r, h: h}
}

func (t *hashTapReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.h.Write(p[:n])
	}
	return n, err
}
