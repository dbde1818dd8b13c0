package attachcrypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"io"
)

// prependIvReader is prependIv(iv): it emits iv || rest, where rest is
// read lazily from r. Implemented with io.MultiReader, the stdlib's
// own version of this primitive.
func prependIvReader(iv []byte, r io.Reader) (io.Reader, error) {
	if len(iv) != IVLength {
		return nil, newErr(KindInvalidIVLength, "", "iv must be 16 bytes")
	}
	ivCopy := make([]byte, len(iv))
	copy(ivCopy, iv)
	return io.MultiReader(bytes.NewReader(ivCopy), r), nil
}

// cbcEncryptReader is the aesCbcEncrypt(iv) stage: it streams
// AES-256-CBC encryption of its upstream reader, applying PKCS#7
// padding to the final partial (or exactly-full) block at EOF. It does
// not prepend the IV; prependIvReader does that as a separate stage,
// matching spec.md's pipeline ordering.
type cbcEncryptReader struct {
	r    io.Reader
	mode cipher.BlockMode
	buf  []byte // unencrypted bytes read from r, not yet block-complete
	out  []byte // encrypted bytes ready to be emitted
	eof  bool
}

func newCBCEncryptReader(r io.Reader, aesKey, iv []byte) (*cbcEncryptReader, error) {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, wrapErr(KindInternal, "", "constructing AES cipher", err)
	}
	if len(iv) != IVLength {
		return nil, newErr(KindInvalidIVLength, "", "iv must be 16 bytes")
	}
	return &cbcEncryptReader{r: r, mode: cipher.NewCBCEncrypter(block, iv)}, nil
}

func (c *cbcEncryptReader) Read(p []byte) (int, error) {
	for len(c.out) == 0 {
		if c.eof {
			return 0, io.EOF
		}
		chunk := make([]byte, 32*1024)
		n, err := c.r.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		for len(c.buf) >= AESCBCBlockSize {
			block := c.buf[:AESCBCBlockSize]
			enc := make([]byte, AESCBCBlockSize)
			c.mode.CryptBlocks(enc, block)
			c.out = append(c.out, enc...)
			c.buf = c.buf[AESCBCBlockSize:]
		}
		if err == io.EOF {
			c.eof = true
			padded := pkcs7Pad(c.buf, AESCBCBlockSize)
			enc := make([]byte, len(padded))
			c.mode.CryptBlocks(enc, padded)
			c.out = append(c.out, enc...)
			c.buf = nil
			break
		}
		if err != nil {
			return 0, wrapErr(KindIoRead, "", "reading plaintext for encryption", err)
		}
	}
	n := copy(p, c.out)
	c.out = c.out[n:]
	return n, nil
}

// pkcs7Pad always adds a full block, even when buf is already block
// aligned, matching spec.md's ciphertext-length formula exactly.
func pkcs7Pad(buf []byte, blockSize int) []byte {
	padLen := blockSize - (len(buf) % blockSize)
	out := make([]byte, len(buf)+padLen)
	copy(out, buf)
	for i := len(buf); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// cbcDecryptReader is getIvAndDecipher: it buffers until 16 bytes are
// available, takes them as the IV, then streams AES-256-CBC decryption
// of the remainder. PKCS#7 unpadding is NOT applied here; it is the
// exclusive responsibility of trimPadding (spec.md §4.2 item 6).
type cbcDecryptReader struct {
	r      io.Reader
	aesKey []byte
	onIV   func([]byte)

	iv       []byte
	mode     cipher.BlockMode
	ivReady  bool
	ivBuf    []byte
	buf      []byte
	out      []byte
	eof      bool
	idForLog string
}

func newCBCDecryptReader(r io.Reader, aesKey []byte, onIV func([]byte), idForLogging string) *cbcDecryptReader {
	return &cbcDecryptReader{r: r, aesKey: aesKey, onIV: onIV, idForLog: idForLogging}
}

func (c *cbcDecryptReader) fillIV() error {
	chunk := make([]byte, IVLength-len(c.ivBuf))
	for len(c.ivBuf) < IVLength {
		n, err := c.r.Read(chunk[:IVLength-len(c.ivBuf)])
		if n > 0 {
			c.ivBuf = append(c.ivBuf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				return wrapErr(KindTruncatedFrame, c.idForLog, "frame shorter than IV", io.ErrUnexpectedEOF)
			}
			return wrapErr(KindIoRead, c.idForLog, "reading IV", err)
		}
	}
	block, err := aes.NewCipher(c.aesKey)
	if err != nil {
		return wrapErr(KindInternal, c.idForLog, "constructing AES cipher", err)
	}
	c.iv = c.ivBuf
	c.mode = cipher.NewCBCDecrypter(block, c.iv)
	c.ivReady = true
	if c.onIV != nil {
		c.onIV(c.iv)
	}
	return nil
}

func (c *cbcDecryptReader) Read(p []byte) (int, error) {
	if !c.ivReady {
		if err := c.fillIV(); err != nil {
			return 0, err
		}
	}
	for len(c.out) == 0 {
		if c.eof {
			return 0, io.EOF
		}
		chunk := make([]byte, 32*1024)
		n, err := c.r.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		for len(c.buf) >= AESCBCBlockSize {
			blocks := (len(c.buf) / AESCBCBlockSize) * AESCBCBlockSize
			dec := make([]byte, blocks)
			c.mode.CryptBlocks(dec, c.buf[:blocks])
			c.out = append(c.out, dec...)
			c.buf = c.buf[blocks:]
		}
		if err == io.EOF {
			c.eof = true
			if len(c.buf) != 0 {
				return 0, wrapErr(KindTruncatedFrame, c.idForLog, "ciphertext is not a multiple of the block size", nil)
			}
			if len(c.out) == 0 {
				return 0, io.EOF
			}
			break
		}
		if err != nil {
			return 0, wrapErr(KindIoRead, c.idForLog, "reading ciphertext for decryption", err)
		}
	}
	n := copy(p, c.out)
	c.out = c.out[n:]
	return n, nil
}
