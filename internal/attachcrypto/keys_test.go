package attachcrypto_test

import (
	"testing"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeysLength(t *testing.T) {
	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	assert.Len(t, keys, attachcrypto.KeySetLength)
}

func TestGenerateAttachmentIVLength(t *testing.T) {
	iv, err := attachcrypto.GenerateAttachmentIV()
	require.NoError(t, err)
	assert.Len(t, iv, attachcrypto.IVLength)
}

func TestSplitKeys(t *testing.T) {
	combined, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)

	aesKey, macKey, err := attachcrypto.SplitKeys(combined)
	require.NoError(t, err)
	assert.Len(t, aesKey, attachcrypto.KeyLength)
	assert.Len(t, macKey, attachcrypto.KeyLength)
	assert.Equal(t, combined[:attachcrypto.KeyLength], aesKey)
	assert.Equal(t, combined[attachcrypto.KeyLength:], macKey)
}

func TestSplitKeysRejectsWrongLength(t *testing.T) {
	_, _, err := attachcrypto.SplitKeys(make([]byte, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, attachcrypto.ErrKind(attachcrypto.KindInvalidKeyLength))
}

func TestGenerateKeysAreNotConstant(t *testing.T) {
	a, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	b, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
