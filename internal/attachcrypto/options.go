package attachcrypto

import "io"

// DangerousIVReason names why a caller is overriding the random IV.
type DangerousIVReason int

const (
	// DangerousIVTest permits a hardcoded IV only when IsTestEnvironment
	// reports true.
	DangerousIVTest DangerousIVReason = iota
	// DangerousIVReencryptingForBackup permits a hardcoded IV so the
	// produced digest can be made to match a previously stored one,
	// used when re-encrypting for backup.
	DangerousIVReencryptingForBackup
)

// DangerousIV is the tagged union of spec.md §4.3.
type DangerousIV struct {
	Reason        DangerousIVReason
	IV            []byte
	DigestToMatch []byte // only meaningful when Reason == DangerousIVReencryptingForBackup
}

// EncryptOptions configures EncryptAttachmentV2.
type EncryptOptions struct {
	DangerousIV          *DangerousIV
	DangerousSkipPadding bool
	PadTarget            PadTarget
	Sink                 io.Writer // nil discards output, still computing digest/hash/size
}

// OuterKeys is the optional outer encryption layer of spec.md §3.
type OuterKeys struct {
	AESKey []byte
	MACKey []byte
}

// IntegrityModeKind selects which checks DecryptAttachmentV2 runs.
type IntegrityModeKind int

const (
	IntegrityStandard IntegrityModeKind = iota
	IntegrityLocal
	IntegrityBackupThumbnail
)

// IntegrityMode is the tagged union of spec.md §4.4.
type IntegrityMode struct {
	Kind        IntegrityModeKind
	TheirDigest []byte // only meaningful when Kind == IntegrityStandard
}

// DecryptOptions configures DecryptAttachmentV2 and
// DecryptAttachmentV2ToSink.
type DecryptOptions struct {
	CiphertextPath string
	IDForLogging   string
	Size           int64 // declared unpadded plaintext length

	AESKey []byte
	MACKey []byte

	Mode  IntegrityMode
	Outer *OuterKeys

	// StrictPadding makes the decryptor check that the logical padding
	// discarded past Size (the bytes before the trailing PKCS#7 block
	// padding) is all zero, failing with KindPaddingCorrupt otherwise (a
	// supplemental hardening of spec.md §9's first open question).
	StrictPadding bool
}
