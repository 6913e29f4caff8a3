package docparse

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSplitZip_DropsUnsupportedEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"a.pdf":  "pdf-one",
		"b.docx": "docx-one",
		"c.exe":  "not-a-resume",
	})

	entries, err := SplitZip(archive, []string{".pdf", ".doc", ".docx"})

	require.NoError(t, err)
	assert.Len(t, entries, 2)
	names := []string{entries[0].Filename, entries[1].Filename}
	assert.ElementsMatch(t, []string{"a.pdf", "b.docx"}, names)
}

func TestSplitZip_NoSupportedEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{"notes.txt": "hello"})

	entries, err := SplitZip(archive, []string{".pdf", ".doc", ".docx"})

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultExtractor_RejectsUnsupportedExtension(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractText("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestDefaultExtractor_RejectsEmptyContent(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractText("resume.pdf", nil)
	assert.Error(t, err)
}
