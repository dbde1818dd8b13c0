package attachcrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"os"
)

// EncryptAttachmentV2 assembles and drives the encryption pipeline of
// spec.md §4.2-§4.3: source -> peekPlaintextHash -> appendPadding ->
// aesCbcEncrypt(iv) -> prependIv -> appendMac -> peekDigest ->
// measureSize -> sink.
func EncryptAttachmentV2(plaintext Source, keys []byte, opts EncryptOptions) (EncryptedResult, error) {
	aesKey, macKey, err := SplitKeys(keys)
	if err != nil {
		return EncryptedResult{}, err
	}

	iv, err := resolveEncryptIV(opts.DangerousIV)
	if err != nil {
		return EncryptedResult{}, err
	}

	skipPadding := opts.DangerousSkipPadding
	if skipPadding && !IsTestEnvironment() {
		return EncryptedResult{}, newErr(KindTestOnlyFeatureUsed, "", "dangerousTestOnlySkipPadding requires a test environment")
	}

	padTarget := opts.PadTarget
	if padTarget == nil {
		padTarget = DefaultPadTarget
	}

	rc, err := plaintext.open()
	if err != nil {
		return EncryptedResult{}, err
	}
	defer rc.Close()

	plaintextHash := sha256.New()
	digestHash := sha256.New()
	macHash := hmac.New(sha256.New, macKey)

	var r io.Reader = newHashTapReader(rc, plaintextHash)
	if !skipPadding {
		r = newPaddingAppendReader(r, padTarget)
	}

	cbcR, err := newCBCEncryptReader(r, aesKey, iv)
	if err != nil {
		return EncryptedResult{}, err
	}

	framed, err := prependIvReader(iv, cbcR)
	if err != nil {
		return EncryptedResult{}, err
	}

	var macTag []byte
	framed = newMACAppendReader(framed, macHash, func(tag []byte) { macTag = tag })
	framed = newHashTapReader(framed, digestHash)

	var ciphertextSize int64
	framed = newSizeMeterReader(framed, func(n int64) { ciphertextSize = n })

	sink := opts.Sink
	if sink == nil {
		sink = io.Discard
	}

	if _, err := io.Copy(sink, framed); err != nil {
		return EncryptedResult{}, toIOError(err, "")
	}
	_ = macTag // retained for symmetry with the decrypt path; not needed by the caller here

	digest := digestHash.Sum(nil)

	if opts.DangerousIV != nil && opts.DangerousIV.Reason == DangerousIVReencryptingForBackup {
		if subtle.ConstantTimeCompare(digest, opts.DangerousIV.DigestToMatch) != 1 {
			return EncryptedResult{}, newErr(KindReencryptedDigestMismatch, "", "reencrypted digest does not match the stored digest")
		}
	}

	return EncryptedResult{
		Digest:         digest,
		IV:             iv,
		PlaintextHash:  hex.EncodeToString(plaintextHash.Sum(nil)),
		CiphertextSize: ciphertextSize,
	}, nil
}

func resolveEncryptIV(dangerous *DangerousIV) ([]byte, error) {
	if dangerous == nil {
		return GenerateAttachmentIV()
	}
	switch dangerous.Reason {
	case DangerousIVTest:
		if !IsTestEnvironment() {
			return nil, newErr(KindTestOnlyFeatureUsed, "", "dangerousIv{reason: test} requires a test environment")
		}
	case DangerousIVReencryptingForBackup:
		if len(dangerous.DigestToMatch) != DigestLength {
			return nil, newErr(KindInvalidDigestLength, "", "digestToMatch must be 32 bytes")
		}
	}
	if len(dangerous.IV) != IVLength {
		return nil, newErr(KindInvalidIVLength, "", "dangerousIv.iv must be 16 bytes")
	}
	return dangerous.IV, nil
}

// EncryptAttachmentV2ToDisk runs EncryptAttachmentV2 writing into the
// file resolver.resolve(relative) resolves to, guarded by the
// temp-file cleanup of spec.md §4.6.
func EncryptAttachmentV2ToDisk(plaintext Source, keys []byte, opts EncryptOptions, relative string, resolver PathResolver) (EncryptedResult, error) {
	absolute, err := resolver(relative)
	if err != nil {
		return EncryptedResult{}, wrapErr(KindIoOpen, "", "resolving output path", err)
	}

	var result EncryptedResult
	err = withGuardedOutput(absolute, func(f *os.File) error {
		toDiskOpts := opts
		toDiskOpts.Sink = f
		r, encErr := EncryptAttachmentV2(plaintext, keys, toDiskOpts)
		if encErr != nil {
			return encErr
		}
		result = r
		return nil
	})
	if err != nil {
		logError("EncryptAttachmentV2ToDisk", err)
		return EncryptedResult{}, err
	}
	result.Path = relative
	return result, nil
}

func toIOError(err error, idForLogging string) error {
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return wrapErr(KindIoWrite, idForLogging, "streaming pipeline failed", err)
}
