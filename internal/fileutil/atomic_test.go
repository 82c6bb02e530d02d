package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "room.json")

	require.NoError(t, WriteFileAtomic(testFile, []byte("hello world"), 0o644))

	data, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	info, err := os.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not remain")
	assert.Equal(t, "room.json", entries[0].Name())
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "room.json")

	require.NoError(t, WriteFileAtomic(testFile, []byte("initial"), 0o644))
	require.NoError(t, WriteFileAtomic(testFile, []byte("updated content"), 0o644))

	data, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "updated content", string(data))
}

func TestWriteFileAtomicInvalidDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic("/nonexistent/dir/test.txt", []byte("data"), 0o644)
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type snapshot struct {
		ID    string `json:"id"`
		Seats []int  `json:"seats"`
	}
	testFile := filepath.Join(t.TempDir(), "snap.json")

	require.NoError(t, WriteJSONAtomic(testFile, snapshot{ID: "abc", Seats: []int{1, 2}}, 0o600))

	var got snapshot
	require.NoError(t, ReadJSON(testFile, &got))
	assert.Equal(t, snapshot{ID: "abc", Seats: []int{1, 2}}, got)
}

func TestReadJSONMissing(t *testing.T) {
	t.Parallel()

	var v map[string]any
	err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &v)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadJSONCorrupt(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(testFile, []byte("{not json"), 0o600))

	var v map[string]any
	err := ReadJSON(testFile, &v)
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
