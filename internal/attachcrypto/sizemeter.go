package attachcrypto

import "io"

// sizeMeterReader is measureSize: a passthrough reader that invokes cb
// exactly once, with the total byte count, when the upstream reader
// first signals EOF.
type sizeMeterReader struct {
	r    io.Reader
	cb   func(int64)
	n    int64
	done bool
}

func newSizeMeterReader(r io.Reader, cb func(int64)) *sizeMeterReader {
	return &sizeMeterReader{r: r, cb: cb}
}

func (s *sizeMeterReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if err == io.EOF && !s.done {
		s.done = true
		if s.cb != nil {
			s.cb(s.n)
		}
	}
	return n, err
}
