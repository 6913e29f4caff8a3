package docparse

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// ZipEntry is one supported member file recovered from a .zip upload.
type ZipEntry struct {
	Filename string
	Content  []byte
}

// SplitZip fans a .zip archive out into its members whose extension is in
// allowedExtensions; unsupported entries are silently dropped, matching
// spec's "only entries whose extension is supported" fan-out rule.
func SplitZip(content []byte, allowedExtensions []string) ([]ZipEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var entries []ZipEntry
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ZipEntry{Filename: filepath.Base(f.Name), Content: data})
	}
	return entries, nil
}
