// Package docparse extracts plain text from the document formats the
// résumé pipeline accepts (.pdf, .doc, .docx) and fans a .zip upload out
// into its supported member files.
package docparse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gomutex/godocx"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedExtension is returned when the file extension isn't one of
// .pdf, .doc, .docx.
var ErrUnsupportedExtension = fmt.Errorf("unsupported file extension")

// Extractor turns a file's raw bytes into plain text based on its extension.
type Extractor interface {
	ExtractText(filename string, content []byte) (string, error)
}

// DefaultExtractor chains a dedicated reader per supported extension,
// grounded on the multi-library fallback shape used for PDF/DOCX résumé
// parsing elsewhere in the retrieved pack.
type DefaultExtractor struct{}

func NewExtractor() *DefaultExtractor {
	return &DefaultExtractor{}
}

func (e *DefaultExtractor) ExtractText(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("file content is empty")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".doc":
		return extractLegacyDOC(content)
	default:
		return "", ErrUnsupportedExtension
	}
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no text content found in pdf")
	}
	return sb.String(), nil
}

// extractDOCX goes through a temp file because godocx opens documents by
// path, not by io.Reader.
func extractDOCX(content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*.docx")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	doc, err := godocx.OpenDocx(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	var sb strings.Builder
	for _, para := range doc.Document.Body.Paragraphs() {
		text := para.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no text content found in docx")
	}
	return sb.String(), nil
}

// extractLegacyDOC does a best-effort raw scan for printable-text runs in
// the OLE2 container. No unencumbered legacy-.doc parser exists anywhere in
// the retrieved pack, so this is a deliberate standard-library fallback
// (documented in DESIGN.md) rather than a faithful binary-format reader.
func extractLegacyDOC(content []byte) (string, error) {
	if len(content) < 8 || content[0] != 0xD0 || content[1] != 0xCF {
		return "", fmt.Errorf("not a recognised .doc (OLE2) file")
	}

	var sb strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() >= 4 {
			sb.WriteString(run.String())
			sb.WriteString(" ")
		}
		run.Reset()
	}
	for _, r := range string(content) {
		if unicode.IsPrint(r) && r < 0x7f {
			run.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no recoverable text content found in doc")
	}
	return text, nil
}
