package localstore_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sealtalk/attachcrypt/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateRelativePathIsTwoLevelsDeep(t *testing.T) {
	store, err := localstore.NewStore(t.TempDir())
	require.NoError(t, err)

	relative, err := store.AllocateRelativePath()
	require.NoError(t, err)

	parts := strings.Split(filepath.ToSlash(relative), "/")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 2)
	assert.Len(t, parts[1], 2)
}

func TestResolveRejectsAbsolutePath(t *testing.T) {
	store, err := localstore.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("/etc/passwd")
	assert.Error(t, err)
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := localstore.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("../../etc/passwd")
	assert.Error(t, err)
}

func TestResolveAcceptsNestedRelativePath(t *testing.T) {
	root := t.TempDir()
	store, err := localstore.NewStore(root)
	require.NoError(t, err)

	abs, err := store.Resolve("ab/cd/attachment.bin")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ab/cd/attachment.bin"), abs)
}
