package attachcrypto_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptAttachmentV2ToDiskWritesFile(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "plain.bin")
	require.NoError(t, os.WriteFile(plainPath, []byte("hello, attachments"), 0o600))

	keys, err := attachcrypto.GenerateKeys()
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	resolver := func(relative string) (string, error) {
		return filepath.Join(outDir, relative), nil
	}

	result, err := attachcrypto.EncryptAttachmentV2ToDisk(
		attachcrypto.FileSource(plainPath), keys, attachcrypto.EncryptOptions{}, "a/b/frame.bin", resolver)
	require.NoError(t, err)
	assert.Equal(t, "a/b/frame.bin", result.Path)

	info, err := os.Stat(filepath.Join(outDir, "a/b/frame.bin"))
	require.NoError(t, err)
	assert.Equal(t, result.CiphertextSize, info.Size())
}

func TestGuardRemovesPartialOutputOnFailure(t *testing.T) {
	dir := t.TempDir()

	resolver := func(relative string) (string, error) {
		return filepath.Join(dir, relative), nil
	}

	// A zero-byte combined key is the wrong length, so SplitKeys fails
	// before any byte reaches the output file; the guard must still
	// leave no partial file behind.
	_, err := attachcrypto.EncryptAttachmentV2ToDisk(
		attachcrypto.InMemorySource([]byte("x")), []byte{}, attachcrypto.EncryptOptions{}, "broken.bin", resolver)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "broken.bin"))
	assert.True(t, os.IsNotExist(statErr))
}
