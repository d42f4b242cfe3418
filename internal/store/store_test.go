package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveExplicitPath(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "podcast")

	target := filepath.Join(dir, "episode.mp3")
	path, err := s.Save([]byte("mp3"), target)
	require.NoError(t, err)
	require.Equal(t, target, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("mp3"), data)
}

func TestSaveDefaultNameIncrements(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "podcast")

	first, err := s.Save([]byte("a"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "podcast_0.mp3"), first)

	second, err := s.Save([]byte("b"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "podcast_1.mp3"), second)

	// The first artifact is untouched.
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, []byte("a"), data)
}

func TestSaveSkipsExternallyCreatedIndex(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "podcast")

	// Another writer already claimed index 0.
	existing := filepath.Join(dir, "podcast_0.mp3")
	require.NoError(t, os.WriteFile(existing, []byte("theirs"), 0o644))

	path, err := s.Save([]byte("mine"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "podcast_1.mp3"), path)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, []byte("theirs"), data)
}

func TestSaveCreatesNestedDir(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "podcast")

	target := filepath.Join(dir, "out", "deep", "episode.mp3")
	path, err := s.Save([]byte("x"), target)
	require.NoError(t, err)
	require.FileExists(t, path)
}
