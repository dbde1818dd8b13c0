package attachcrypto

import "io"

// finalReader is finalStream: a passthrough reader whose onEnd runs
// exactly once, after the upstream reader has fully drained. Any error
// returned by onEnd fails the pipeline; this is where MAC, digest, and
// outer-MAC equality are checked in constant time (spec.md §4.2 item 9).
type finalReader struct {
	r       io.Reader
	onEnd   func() error
	eof     bool
	errored error
}

func newFinalReader(r io.Reader, onEnd func() error) *finalReader {
	return &finalReader{r: r, onEnd: onEnd}
}

func (f *finalReader) Read(p []byte) (int, error) {
	if f.errored != nil {
		return 0, f.errored
	}
	if f.eof {
		return 0, io.EOF
	}
	n, err := f.r.Read(p)
	if err == io.EOF {
		if cerr := f.onEnd(); cerr != nil {
			f.errored = cerr
		} else {
			f.eof = true
		}
		if n > 0 && f.errored == nil {
			return n, nil
		}
		if f.errored != nil {
			return 0, f.errored
		}
		return 0, io.EOF
	}
	if err != nil {
		return n, wrapErr(KindIoRead, "", "reading stream in finalizer", err)
	}
	return n, nil
}
