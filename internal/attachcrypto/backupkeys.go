package attachcrypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveOuterKeys derives an outer (aesKey, macKey) pair from a single
// 64-byte backup key using HKDF-SHA256, so a single combined backup
// secret can stand in for the independent (aesKey, macKey) pair
// spec.md §3 requires for the outer layer.
func DeriveOuterKeys(backupKey []byte, info string) (aesKey, macKey []byte, err error) {
	if len(backupKey) != KeySetLength {
		return nil, nil, newErr(KindInvalidKeyLength, "", "backup key must be 64 bytes")
	}
	out := make([]byte, KeySetLength)
	kdf := hkdf.New(sha256.New, backupKey, nil, []byte(info))
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, nil, wrapErr(KindInternal, "", "deriving outer keys via HKDF", err)
	}
	return out[:KeyLength], out[KeyLength:], nil
}
