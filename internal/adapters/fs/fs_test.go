package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/adapters/fs"
	"go.trai.ch/iconsmith/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFingerprinter_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "folder.svg")
	writeFile(t, src, "<svg/>")

	fp := fs.NewFingerprinter()

	first, err := fp.Fingerprint(src, 48)
	require.NoError(t, err)
	assert.Equal(t, src, first.Path.String())
	assert.Equal(t, 48, first.Size)

	again, err := fp.Fingerprint(src, 48)
	require.NoError(t, err)
	assert.Equal(t, first.Key(), again.Key())

	other, err := fp.Fingerprint(src, 16)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key(), other.Key())

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, later, later))
	touched, err := fp.Fingerprint(src, 48)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key(), touched.Key())
}

func TestFingerprinter_RelativePathIsAbsolutized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.svg"), "<svg/>")
	t.Chdir(dir)

	fp, err := fs.NewFingerprinter().Fingerprint("a.svg", 24)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(fp.Path.String()))
}

func TestFingerprinter_Errors(t *testing.T) {
	fp := fs.NewFingerprinter()

	_, err := fp.Fingerprint(filepath.Join(t.TempDir(), "missing.svg"), 16)
	require.ErrorIs(t, err, domain.ErrSourceStatFailed)
	require.ErrorContains(t, err, "missing.svg")

	_, err = fp.Fingerprint("whatever.svg", 0)
	require.ErrorIs(t, err, domain.ErrInvalidSize)
}

func TestWalker_WalkSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "apps", "scalable", "firefox.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "apps", "scalable", "README.md"), "docs")
	writeFile(t, filepath.Join(root, "devices", "printer.SVG"), "<svg/>")
	writeFile(t, filepath.Join(root, ".git", "logo.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "backups", "old.svg"), "<svg/>")

	var got []string
	for path := range fs.NewWalker().WalkSources(root, []string{"backups"}) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, rel)
	}
	slices.Sort(got)

	assert.Equal(t, []string{
		filepath.Join("apps", "scalable", "firefox.svg"),
		filepath.Join("devices", "printer.SVG"),
	}, got)
}

func TestWalker_StopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.svg", "b.svg", "c.svg"} {
		writeFile(t, filepath.Join(root, name), "<svg/>")
	}

	count := 0
	for range fs.NewWalker().WalkSources(root, nil) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestHasher_ComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.svg")
	b := filepath.Join(dir, "b.svg")
	writeFile(t, a, "<svg width='16'/>")
	writeFile(t, b, "<svg width='16'/>")

	h := fs.NewHasher()
	ha, err := h.ComputeFileHash(a)
	require.NoError(t, err)
	hb, err := h.ComputeFileHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	writeFile(t, b, "<svg width='24'/>")
	hb2, err := h.ComputeFileHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb2)

	_, err = h.ComputeFileHash(filepath.Join(dir, "missing.svg"))
	require.Error(t, err)
}
