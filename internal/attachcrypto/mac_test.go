package attachcrypto_test

import (
	"bytes"
	"testing"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encryptFrame(t *testing.T, plaintext []byte, keys []byte) (attachcrypto.EncryptedResult, []byte) {
	t.Helper()
	var frame bytes.Buffer
	result, err := attachcrypto.EncryptAttachmentV2(
		attachcrypto.InMemorySource(plaintext), keys, attachcrypto.EncryptOptions{Sink: &frame})
	require.NoError(t, err)
	return result, frame.Bytes()
}

func TestDecryptDetectsMacTamper(t *testing.T) {
	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	aesKey, macKey, err := attachcrypto.SplitKeys(keys)
	require.NoError(t, err)

	plaintext := []byte("attachment body bytes")
	encResult, frame := encryptFrame(t, plaintext, keys)

	// Flip the last byte of the frame, which lands inside the trailing
	// MAC tag.
	tampered := append([]byte{}, frame...)
	tampered[len(tampered)-1] ^= 0xFF
	framePath := writeTempFrame(t, tampered)

	_, err = attachcrypto.DecryptAttachmentV2ToSink(attachcrypto.DecryptOptions{
		CiphertextPath: framePath,
		AESKey:         aesKey,
		MACKey:         macKey,
		Size:           int64(len(plaintext)),
		Mode:           attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityStandard, TheirDigest: encResult.Digest},
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attachcrypto.ErrKind(attachcrypto.KindBadMac))
}

func TestDecryptDetectsDigestMismatch(t *testing.T) {
	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	aesKey, macKey, err := attachcrypto.SplitKeys(keys)
	require.NoError(t, err)

	plaintext := []byte("attachment body bytes")
	_, frame := encryptFrame(t, plaintext, keys)
	framePath := writeTempFrame(t, frame)

	wrongDigest := make([]byte, attachcrypto.DigestLength)

	_, err = attachcrypto.DecryptAttachmentV2ToSink(attachcrypto.DecryptOptions{
		CiphertextPath: framePath,
		AESKey:         aesKey,
		MACKey:         macKey,
		Size:           int64(len(plaintext)),
		Mode:           attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityStandard, TheirDigest: wrongDigest},
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attachcrypto.ErrKind(attachcrypto.KindBadDigest))
}

func TestDecryptLocalModeIgnoresDigest(t *testing.T) {
	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	aesKey, macKey, err := attachcrypto.SplitKeys(keys)
	require.NoError(t, err)

	plaintext := []byte("locally encrypted, no remote digest to compare")
	_, frame := encryptFrame(t, plaintext, keys)
	framePath := writeTempFrame(t, frame)

	var decoded bytes.Buffer
	_, err = attachcrypto.DecryptAttachmentV2ToSink(attachcrypto.DecryptOptions{
		CiphertextPath: framePath,
		AESKey:         aesKey,
		MACKey:         macKey,
		Size:           int64(len(plaintext)),
		Mode:           attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityLocal},
	}, &decoded)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decoded.Bytes())
}

func TestDecryptStrictPaddingRejectsCorruptPadding(t *testing.T) {
	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	aesKey, macKey, err := attachcrypto.SplitKeys(keys)
	require.NoError(t, err)

	attachcrypto.SetTestEnvironment(true)
	defer attachcrypto.SetTestEnvironment(false)

	plaintext := []byte("short")
	var frame bytes.Buffer
	_, err = attachcrypto.EncryptAttachmentV2(
		attachcrypto.InMemorySource(plaintext), keys,
		attachcrypto.EncryptOptions{DangerousSkipPadding: true, Sink: &frame})
	require.NoError(t, err)

	// opts.Size claims fewer plaintext bytes than the frame actually
	// carries; the undeclared tail is not zero (it's real plaintext),
	// so StrictPadding must catch it even though the MAC still checks
	// out.
	framePath := writeTempFrame(t, frame.Bytes())

	_, err = attachcrypto.DecryptAttachmentV2ToSink(attachcrypto.DecryptOptions{
		CiphertextPath: framePath,
		AESKey:         aesKey,
		MACKey:         macKey,
		Size:           2,
		Mode:           attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityLocal},
		StrictPadding:  true,
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attachcrypto.ErrKind(attachcrypto.KindPaddingCorrupt))
}
