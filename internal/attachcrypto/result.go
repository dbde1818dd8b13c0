package attachcrypto

// EncryptedResult is returned by the encryptor (spec.md §3).
type EncryptedResult struct {
	Digest         []byte // 32 bytes, raw
	IV             []byte // 16 bytes
	PlaintextHash  string // 64-char lowercase hex
	CiphertextSize int64
	Path           string // only set by the file-producing variant
}

// DecryptedResult is returned by the decryptor (spec.md §3).
type DecryptedResult struct {
	IV            []byte // the IV observed in the frame
	PlaintextHash string
	Path          string // only set by the file-producing variant
}

// ReencryptedResult is returned by the re-encryptor (spec.md §3).
type ReencryptedResult struct {
	Path           string
	IVBase64       string
	LocalKeyBase64 string
	PlaintextHash  string
	Version        int
}
