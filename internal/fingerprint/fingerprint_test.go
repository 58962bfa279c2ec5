package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCompute_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.lock", "lockfile-v1")
	writeFile(t, dir, "rust-toolchain.toml", "channel = \"stable\"")

	paths := []string{"Cargo.lock", "rust-toolchain.toml"}

	first, err := Compute(dir, paths)
	require.NoError(t, err)

	second, err := Compute(dir, paths)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestCompute_OrderIndependent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "b.txt", "beta")

	forward, err := Compute(dir, []string{"a.txt", "b.txt"})
	require.NoError(t, err)

	reversed, err := Compute(dir, []string{"b.txt", "a.txt"})
	require.NoError(t, err)

	assert.Equal(t, forward, reversed)
}

func TestCompute_DuplicatePathsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	once, err := Compute(dir, []string{"a.txt"})
	require.NoError(t, err)

	twice, err := Compute(dir, []string{"a.txt", "a.txt"})
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestCompute_SingleByteChangeChangesDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	before, err := Compute(dir, []string{"a.txt"})
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "alphb")

	after, err := Compute(dir, []string{"a.txt"})
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCompute_MissingInput(t *testing.T) {
	dir := t.TempDir()

	_, err := Compute(dir, []string{"does-not-exist.txt"})
	require.Error(t, err)
	assert.Equal(t, dferrors.CodeMissingFingerprintInput, dferrors.GetCode(err))
}

func TestImageTag_TruncatesDigest(t *testing.T) {
	digest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"
	tag := ImageTag("devflow/rust", digest)
	assert.Equal(t, "devflow/rust:0123456789ab", tag)
}

func TestImageTag_ShortDigestPassedThrough(t *testing.T) {
	tag := ImageTag("devflow/rust", "abc")
	assert.Equal(t, "devflow/rust:abc", tag)
}
