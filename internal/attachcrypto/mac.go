package attachcrypto

import (
	"hash"
	"io"
)

// macAppendReader is appendMacStream: it computes HMAC-SHA-256 over
// everything that passes through, re-emits every input byte unchanged,
// and on EOF emits the 32-byte tag and invokes onMac.
type macAppendReader struct {
	r     io.Reader
	mac   hash.Hash
	onMac func([]byte)
	eof   bool
	tail  []byte
}

func newMACAppendReader(r io.Reader, mac hash.Hash, onMac func([]byte)) *macAppendReader {
	return &macAppendReader{r: r, mac: mac, onMac: onMac}
}

func (m *macAppendReader) Read(p []byte) (int, error) {
	if len(m.tail) > 0 {
		n := copy(p, m.tail)
		m.tail = m.tail[n:]
		return n, nil
	}
	if m.eof {
		return 0, io.EOF
	}
	n, err := m.r.Read(p)
	if n > 0 {
		m.mac.Write(p[:n])
	}
	if err == io.EOF {
		m.eof = true
		tag := m.mac.Sum(nil)
		if m.onMac != nil {
			m.onMac(tag)
		}
		if n > 0 {
			m.tail = tag
			return n, nil
		}
		cn := copy(p, tag)
		m.tail = tag[cn:]
		return cn, nil
	}
	if err != nil {
		return n, wrapErr(KindIoRead, "", "reading stream for MAC append", err)
	}
	return n, nil
}

// macSplitReader is getMacAndUpdateHmac: it continuously holds back
// the trailing MacLength bytes of the stream, feeding and forwarding
// only the bytes known not to be part of the trailing MAC. At EOF it
// surfaces the retained MacLength bytes via onMac without forwarding
// them downstream.
type macSplitReader struct {
	r        io.Reader
	hmac     hash.Hash
	onMac    func([]byte)
	idForLog string

	buf       []byte
	upstream  bool // true once upstream reported EOF
	delivered bool
	failed    error
}

func newMACSplitReader(r io.Reader, hmacHash hash.Hash, onMac func([]byte), idForLogging string) *macSplitReader {
	return &macSplitReader{r: r, hmac: hmacHash, onMac: onMac, idForLog: idForLogging}
}

func (m *macSplitReader) Read(p []byte) (int, error) {
	if m.failed != nil {
		return 0, m.failed
	}
	for {
		if len(m.buf) > MacLength {
			emitLen := len(m.buf) - MacLength
			if emitLen > len(p) {
				emitLen = len(p)
			}
			n := copy(p, m.buf[:emitLen])
			m.hmac.Write(p[:n])
			m.buf = m.buf[n:]
			return n, nil
		}
		if m.upstream {
			if !m.delivered {
				m.delivered = true
				if len(m.buf) != MacLength {
					m.failed = wrapErr(KindTruncatedFrame, m.idForLog, "frame shorter than the MAC length", nil)
					return 0, m.failed
				}
				if m.onMac != nil {
					m.onMac(m.buf)
				}
			}
			return 0, io.EOF
		}
		chunk := make([]byte, 32*1024)
		n, err := m.r.Read(chunk)
		if n > 0 {
			m.buf = append(m.buf, chunk[:n]...)
		}
		if err == io.EOF {
			m.upstream = true
			continue
		}
		if err != nil {
			m.failed = wrapErr(KindIoRead, m.idForLog, "reading stream for MAC split", err)
			return 0, m.failed
		}
	}
}
