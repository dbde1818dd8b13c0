package attachcrypto

import "io"

// PadTarget rounds a logical plaintext length up to a policy-defined
// bucket. It must satisfy padTarget(n) >= n and be deterministic.
// Bucketed log padding itself is out of scope (spec.md §1); this type
// is the pluggable seam the policy slots into.
type PadTarget func(n int64) int64

// DefaultPadTarget rounds up to the next multiple of 1KiB (an empty
// plaintext is padded to one full 1KiB bucket), used by the CLI and by
// tests that don't care about a specific bucketing scheme.
func DefaultPadTarget(n int64) int64 {
	const bucket = 1024
	if n > 0 && n%bucket == 0 {
		return n
	}
	return (n/bucket + 1) * bucket
}

// paddingAppendReader is appendPadding: it counts plaintext bytes seen
// and, once the upstream reader reaches EOF, emits
// padTarget(n) - n zero bytes before signalling its own EOF.
type paddingAppendReader struct {
	r         io.Reader
	padTarget PadTarget
	n         int64
	innerDone bool
	padRemain int64
}

func newPaddingAppendReader(r io.Reader, padTarget PadTarget) *paddingAppendReader {
	return &paddingAppendReader{r: r, padTarget: padTarget}
}

func (p *paddingAppendReader) Read(out []byte) (int, error) {
	if !p.innerDone {
		n, err := p.r.Read(out)
		p.n += int64(n)
		if err == io.EOF {
			p.innerDone = true
			target := p.padTarget(p.n)
			p.padRemain = target - p.n
			if p.padRemain < 0 {
				p.padRemain = 0
			}
			if n > 0 {
				return n, nil
			}
			// fall through to emit padding in this same call
		} else {
			return n, err
		}
	}
	if p.padRemain <= 0 {
		return 0, io.EOF
	}
	toWrite := int64(len(out))
	if toWrite > p.padRemain {
		toWrite = p.padRemain
	}
	for i := int64(0); i < toWrite; i++ {
		out[i] = 0
	}
	p.padRemain -= toWrite
	if p.padRemain <= 0 {
		// One more Read will report EOF; this call still delivers bytes.
		return int(toWrite), nil
	}
	return int(toWrite), nil
}

// paddingTrimReader is trimPadding(declaredSize): it forwards only the
// first declaredSize bytes of its input downstream. Crucially it keeps
// pulling and discarding everything beyond declaredSize rather than
// stopping early, because the upstream chain (getMacAndUpdateHmac, the
// digest tap) must be driven to its own end-of-stream to surface the
// trailing MAC and finish the digest hash.
type paddingTrimReader struct {
	r         io.Reader
	remaining int64
	scratch   []byte

	// capture, when non-nil, collects every discarded byte so a
	// caller can opt into verifying it is all zero padding
	// (DecryptOptions.StrictPadding; spec.md §9's open question).
	capture *[]byte
}

func newPaddingTrimReader(r io.Reader, declaredSize int64) *paddingTrimReader {
	if declaredSize < 0 {
		declaredSize = 0
	}
	return &paddingTrimReader{r: r, remaining: declaredSize}
}

// captureDiscarded enables strict-padding verification: discarded
// bytes are appended to *into rather than only drained.
func (t *paddingTrimReader) captureDiscarded(into *[]byte) {
	t.capture = into
}

func (t *paddingTrimReader) Read(p []byte) (int, error) {
	if t.remaining <= 0 {
		return t.drainRemainder()
	}
	max := len(p)
	if int64(max) > t.remaining {
		max = int(t.remaining)
	}
	n, err := t.r.Read(p[:max])
	t.remaining -= int64(n)
	return n, err
}

// drainRemainder keeps reading and discarding from the upstream
// reader, inside a single Read call, until it truly reaches EOF or an
// error. This satisfies io.Reader's contract (never returns 0, nil)
// while still fully draining the MAC/digest-bearing upstream stages.
func (t *paddingTrimReader) drainRemainder() (int, error) {
	if t.scratch == nil {
		t.scratch = make([]byte, 32*1024)
	}
	for {
		n, err := t.r.Read(t.scratch)
		if n > 0 && t.capture != nil {
			*t.capture = append(*t.capture, t.scratch[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
	}
}

// VerifyTrailingZeroPadding addresses spec.md §9's open question: it
// checks that the declaredSize..len(padded) tail of a fully recovered
// padded-plaintext buffer is all zero, returning a KindPaddingCorrupt
// error otherwise. It is a standalone helper; the decryptor's
// DecryptOptions.StrictPadding check runs its own equivalent loop.
func VerifyTrailingZeroPadding(padded []byte, declaredSize int64) error {
	if declaredSize < 0 || declaredSize > int64(len(padded)) {
		return newErr(KindInternal, "", "declared size out of range for padding verification")
	}
	for _, b := range padded[declaredSize:] {
		if b != 0 {
			return newErr(KindPaddingCorrupt, "", "trailing padding bytes are not zero")
		}
	}
	return nil
}
