package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSWriter_Upload(t *testing.T) {
	dir := t.TempDir()
	w := NewFSWriter(dir, "")

	a, err := w.Upload([]byte("%PDF-1.4 test"), "order-1", "client-1", "design.pdf")
	require.NoError(t, err)

	assert.Equal(t, "design.pdf", a.Name)
	assert.Equal(t, "application/pdf", a.MediaType)
	assert.EqualValues(t, 13, a.Size)
	assert.True(t, strings.HasPrefix(a.URL, "/assets/order-1/client-1/"))
	assert.True(t, strings.HasSuffix(a.URL, "-design.pdf"))

	entries, err := os.ReadDir(filepath.Join(dir, "order-1", "client-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, "order-1", "client-1", entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestFSWriter_UploadNamesNeverCollide(t *testing.T) {
	w := NewFSWriter(t.TempDir(), "")

	first, err := w.Upload([]byte("a"), "order-1", "client-1", "file.txt")
	require.NoError(t, err)
	second, err := w.Upload([]byte("b"), "order-1", "client-1", "file.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
}

func TestFSWriter_PublicBaseURL(t *testing.T) {
	w := NewFSWriter(t.TempDir(), "https://cdn.example.com/")

	a, err := w.Upload([]byte("hello"), "order-1", "client-1", "note.txt")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.URL, "https://cdn.example.com/assets/"))
}

func TestFSWriter_StripsClientPath(t *testing.T) {
	dir := t.TempDir()
	w := NewFSWriter(dir, "")

	a, err := w.Upload([]byte("x"), "order-1", "client-1", "../../escape.txt")
	require.NoError(t, err)

	// Only the base name survives; nothing is written outside the asset dir.
	assert.Equal(t, "escape.txt", a.Name)
	_, err = os.Stat(filepath.Join(dir, "..", "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}
