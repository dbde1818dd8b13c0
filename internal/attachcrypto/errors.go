package attachcrypto

import "fmt"

// Kind names one of the caller-visible error categories of spec.md §7.
// Integrity failures are deliberately indistinguishable in severity to
// the caller: any of them means the output must be discarded.
type Kind int

const (
	KindInvalidKeyLength Kind = iota
	KindInvalidIVLength
	KindInvalidDigestLength
	KindTestOnlyFeatureUsed
	KindBadMac
	KindBadOuterMac
	KindBadDigest
	KindReencryptedDigestMismatch
	KindTruncatedFrame
	KindIoOpen
	KindIoRead
	KindIoWrite
	KindIoUnlink
	KindAborted
	KindInternal

	// KindPaddingCorrupt is supplemental to spec.md's taxonomy: it is
	// only returned when DecryptOptions.StrictPadding is set and the
	// discarded padding tail is not all zero.
	KindPaddingCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindInvalidKeyLength:
		return "InvalidKeyLength"
	case KindInvalidIVLength:
		return "InvalidIvLength"
	case KindInvalidDigestLength:
		return "InvalidDigestLength"
	case KindTestOnlyFeatureUsed:
		return "TestOnlyFeatureUsed"
	case KindBadMac:
		return "BadMac"
	case KindBadOuterMac:
		return "BadOuterMac"
	case KindBadDigest:
		return "BadDigest"
	case KindReencryptedDigestMismatch:
		return "ReencryptedDigestMismatch"
	case KindTruncatedFrame:
		return "TruncatedFrame"
	case KindIoOpen:
		return "IoOpen"
	case KindIoRead:
		return "IoRead"
	case KindIoWrite:
		return "IoWrite"
	case KindIoUnlink:
		return "IoUnlink"
	case KindAborted:
		return "Aborted"
	case KindInternal:
		return "Internal"
	case KindPaddingCorrupt:
		return "PaddingCorrupt"
	default:
		return "Unknown"
	}
}

// Error is the single error type the engine returns. It never carries
// key material or plaintext bytes, only a Kind, an optional
// idForLogging, and a wrapped cause.
type Error struct {
	Kind         Kind
	IDForLogging string
	Msg          string
	Cause        error
}

func newErr(kind Kind, idForLogging, msg string) *Error {
	return &Error{Kind: kind, IDForLogging: idForLogging, Msg: msg}
}

func wrapErr(kind Kind, idForLogging, msg string, cause error) *Error {
	return &Error{Kind: kind, IDForLogging: idForLogging, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.IDForLogging != "" {
		if e.Cause != nil {
			return fmt.Sprintf("attachcrypto: %s (id=%s): %s: %v", e.Kind, e.IDForLogging, e.Msg, e.Cause)
		}
		return fmt.Sprintf("attachcrypto: %s (id=%s): %s", e.Kind, e.IDForLogging, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("attachcrypto: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("attachcrypto: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, ErrKind(KindBadMac)) style checks.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// ErrKind constructs a sentinel usable with errors.Is to test only the
// Kind of a returned *Error, ignoring message and cause.
func ErrKind(k Kind) error { return &Error{Kind: k} }

// IsAborted reports whether err is a cancellation-class error. The
// caller must re-raise these without logging per spec.md §7.
func IsAborted(err error) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	}
	return e != nil && e.Kind == KindAborted
}
