package attachcrypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"os"
)

// DecryptAttachmentV2ToSink assembles and drives the decryption
// pipeline of spec.md §4.2-§4.4: source -> [outer peel] -> peekDigest
// -> getMacAndUpdateHmac -> getIvAndDecipher -> trimPadding(size) ->
// peekPlaintextHash -> finalizer -> sink. It is the primitive used by
// the re-encryptor and by in-memory consumers.
func DecryptAttachmentV2ToSink(opts DecryptOptions, sink io.Writer) (DecryptedResult, error) {
	if opts.Size < 0 {
		return DecryptedResult{}, newErr(KindInternal, opts.IDForLogging, "declared size must be non-negative")
	}

	f, err := os.Open(opts.CiphertextPath)
	if err != nil {
		wrapped := wrapErr(KindIoOpen, opts.IDForLogging, "opening ciphertext file", err)
		logError("DecryptAttachmentV2ToSink", wrapped)
		return DecryptedResult{}, wrapped
	}
	defer f.Close()

	var r io.Reader = f
	var outerComputedMac, outerRetainedMac []byte
	if opts.Outer != nil {
		innerReader, computedMac, retainedMac, err := peelOuterLayer(f, opts.Outer, opts.IDForLogging)
		if err != nil {
			logError("DecryptAttachmentV2ToSink", err)
			return DecryptedResult{}, err
		}
		r = innerReader
		outerComputedMac = computedMac
		outerRetainedMac = retainedMac
	}

	digestHash := sha256.New()
	r = newHashTapReader(r, digestHash)

	innerHmac := hmac.New(sha256.New, opts.MACKey)
	var retainedInnerMac []byte
	r = newMACSplitReader(r, innerHmac, func(tag []byte) { retainedInnerMac = tag }, opts.IDForLogging)

	var observedIV []byte
	decipher := newCBCDecryptReader(r, opts.AESKey, func(iv []byte) { observedIV = iv }, opts.IDForLogging)

	trimmed := newPaddingTrimReader(decipher, opts.Size)
	var discarded []byte
	if opts.StrictPadding {
		trimmed.captureDiscarded(&discarded)
	}

	plaintextHash := sha256.New()
	tapped := newHashTapReader(trimmed, plaintextHash)

	finalized := newFinalReader(tapped, func() error {
		computedInnerMac := innerHmac.Sum(nil)
		if subtle.ConstantTimeCompare(computedInnerMac, retainedInnerMac) != 1 {
			return newErr(KindBadMac, opts.IDForLogging, "attachment MAC mismatch")
		}
		digest := digestHash.Sum(nil)
		if opts.Mode.Kind == IntegrityStandard {
			if subtle.ConstantTimeCompare(digest, opts.Mode.TheirDigest) != 1 {
				return newErr(KindBadDigest, opts.IDForLogging, "attachment digest mismatch")
			}
		}
		if opts.Outer != nil {
			if subtle.ConstantTimeCompare(outerComputedMac, outerRetainedMac) != 1 {
				return newErr(KindBadOuterMac, opts.IDForLogging, "outer attachment MAC mismatch")
			}
		}
		if opts.StrictPadding {
			// The last bytes of the discarded tail are the cipher's
			// PKCS#7 block padding; only the logical padding before
			// them must be zero.
			logical := discarded
			if n := len(discarded); n > 0 {
				padLen := int(discarded[n-1])
				if padLen == 0 || padLen > AESCBCBlockSize || padLen > n {
					return newErr(KindPaddingCorrupt, opts.IDForLogging, "discarded tail does not end in PKCS#7 block padding")
				}
				logical = discarded[:n-padLen]
			}
			for _, b := range logical {
				if b != 0 {
					return newErr(KindPaddingCorrupt, opts.IDForLogging, "discarded padding tail is not all zero")
				}
			}
		}
		return nil
	})

	if _, err := io.Copy(sink, finalized); err != nil {
		wrapped := toIOError(err, opts.IDForLogging)
		logError("DecryptAttachmentV2ToSink", wrapped)
		return DecryptedResult{}, wrapped
	}

	return DecryptedResult{
		IV:            observedIV,
		PlaintextHash: hex.EncodeToString(plaintextHash.Sum(nil)),
	}, nil
}

// peelOuterLayer strips the optional outer encryption wrapper
// (spec.md §3) before the inner pipeline runs. Unlike the inner
// pipeline, the outer layer's plaintext (the inner frame) has no
// caller-declared logical size to trim by: its length is recoverable
// directly from standard, self-describing PKCS#7 padding, so this
// buffers the whole outer-decrypted frame and unpads it exactly once
// rather than streaming it. This resolves spec.md §9's second open
// question: the returned inner reader carries only inner-frame bytes,
// and the digest tap placed immediately downstream (by the caller)
// therefore covers the inner frame, not the outer one.
func peelOuterLayer(r io.Reader, outer *OuterKeys, idForLogging string) (io.Reader, []byte, []byte, error) {
	outerHmac := hmac.New(sha256.New, outer.MACKey)
	var retainedOuterMac []byte
	macSplit := newMACSplitReader(r, outerHmac, func(tag []byte) { retainedOuterMac = tag }, idForLogging)
	decipher := newCBCDecryptReader(macSplit, outer.AESKey, nil, idForLogging)

	decrypted, err := io.ReadAll(decipher)
	if err != nil {
		return nil, nil, nil, toIOError(err, idForLogging)
	}
	inner, err := pkcs7Unpad(decrypted)
	if err != nil {
		return nil, nil, nil, wrapErr(KindBadOuterMac, idForLogging, "outer frame padding is invalid", err)
	}
	return bytes.NewReader(inner), outerHmac.Sum(nil), retainedOuterMac, nil
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%AESCBCBlockSize != 0 {
		return nil, newErr(KindTruncatedFrame, "", "padded buffer is not block aligned")
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > AESCBCBlockSize || padLen > len(b) {
		return nil, newErr(KindInternal, "", "invalid PKCS#7 padding length")
	}
	for _, c := range b[len(b)-padLen:] {
		if int(c) != padLen {
			return nil, newErr(KindInternal, "", "inconsistent PKCS#7 padding bytes")
		}
	}
	return b[:len(b)-padLen], nil
}

// DecryptAttachmentV2 runs DecryptAttachmentV2ToSink writing into the
// file resolver.resolve(relative) resolves to, guarded by the
// temp-file cleanup of spec.md §4.6. Cancellation-class errors are
// re-raised without logging (spec.md §5, §7); DecryptAttachmentV2ToSink
// logs its own open and streaming failures, while errors resolving or
// creating the output file are returned here without being logged.
func DecryptAttachmentV2(opts DecryptOptions, relative string, resolver PathResolver) (DecryptedResult, error) {
	absolute, err := resolver(relative)
	if err != nil {
		return DecryptedResult{}, wrapErr(KindIoOpen, opts.IDForLogging, "resolving output path", err)
	}

	var result DecryptedResult
	err = withGuardedOutput(absolute, func(f *os.File) error {
		r, decErr := DecryptAttachmentV2ToSink(opts, f)
		if decErr != nil {
			return decErr
		}
		result = r
		return nil
	})
	if err != nil {
		return DecryptedResult{}, err
	}
	result.Path = relative
	return result, nil
}

// GetPlaintextHashForInMemoryAttachment computes the plaintext hash
// (spec.md §6) of an in-memory byte slice without running the full
// encryption pipeline.
func GetPlaintextHashForInMemoryAttachment(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
