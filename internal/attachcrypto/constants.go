// Package attachcrypto implements the AttachmentCryptoV2 streaming
// encrypt/decrypt engine: IV || AES-256-CBC(padded plaintext) || HMAC-SHA256,
// Encrypt-then-MAC, with a SHA-256 digest over the whole frame and a
// SHA-256 hash of the unpadded plaintext.
package attachcrypto

const (
	KeyLength       = 32
	MacLength       = 32
	IVLength        = 16
	DigestLength    = 32
	HexDigestLength = 64
	AESCBCBlockSize = 16
	KeySetLength    = KeyLength + MacLength
)

// GetAttachmentCiphertextLength returns the on-disk frame size for an
// already logically padded plaintext length: it adds the cipher's
// PKCS#7 block padding, the IV and the MAC. It applies no PadTarget;
// GetAttachmentCiphertextLengthForPlaintext does that first.
func GetAttachmentCiphertextLength(paddedPlaintextLen int64) int64 {
	return IVLength + aesCBCCiphertextLen(paddedPlaintextLen) + MacLength
}

// aesCBCCiphertextLen mirrors spec.md's formula: PKCS#7 always adds a
// full block, even when n is already block-aligned.
func aesCBCCiphertextLen(n int64) int64 {
	return (n/AESCBCBlockSize + 1) * AESCBCBlockSize
}

// GetAttachmentCiphertextLengthForPlaintext is the exported
// getAttachmentCiphertextLength(plaintextLen) operation of spec.md §6:
// it applies the padding policy to a raw (unpadded) plaintext length
// before computing the on-disk frame size.
func GetAttachmentCiphertextLengthForPlaintext(rawPlaintextLen int64, padTarget PadTarget) int64 {
	if padTarget == nil {
		padTarget = DefaultPadTarget
	}
	return GetAttachmentCiphertextLength(padTarget(rawPlaintextLen))
}
