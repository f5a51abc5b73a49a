package extractor

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

var ErrNoText = errors.New("no text could be extracted")

const (
	MIMEPDF  = "application/pdf"
	MIMEDOC  = "application/msword"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEHTML = "text/html"
	MIMEText = "text/plain"
)

var allowedTypes = map[string]bool{
	MIMEPDF:  true,
	MIMEDOC:  true,
	MIMEDOCX: true,
	MIMEHTML: true,
	MIMEText: true,
}

// aliases maps MIME variants sent by browsers onto the canonical types.
var aliases = map[string]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml": MIMEDOCX,
	"application/docx":      MIMEDOCX,
	"application/x-docx":    MIMEDOCX,
	"application/doc":       MIMEDOC,
	"application/x-msword":  MIMEDOC,
	"application/xhtml+xml": MIMEHTML,
	"text/txt":              MIMEText,
	"application/txt":       MIMEText,
	"application/x-txt":     MIMEText,
}

func IsAllowed(contentType string) bool {
	return allowedTypes[contentType]
}

func IsText(contentType string) bool {
	return contentType == MIMEText || contentType == MIMEHTML
}

// NormalizeContentType strips parameters and maps known aliases.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if canonical, ok := aliases[mediaType]; ok {
		return canonical
	}
	return mediaType
}

// DetectContentType determines the content type from the filename extension,
// falling back to the content type reported for the multipart part.
func DetectContentType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".doc":
		return MIMEDOC
	case ".docx":
		return MIMEDOCX
	case ".html", ".htm":
		return MIMEHTML
	case ".txt":
		return MIMEText
	}

	return NormalizeContentType(headerContentType)
}

// Placeholder is stored as the content of documents whose text is not
// extracted server-side.
func Placeholder(filename string) string {
	return fmt.Sprintf("[Content extraction pending for %s]", filename)
}

// TextContent decodes a plain text or HTML upload, keeping the raw bytes when
// no known encoding fits.
func TextContent(data []byte) string {
	text, err := DecodeText(data)
	if err != nil {
		return string(data)
	}
	return text
}

// ExtractBinary parses PDF and DOCX files in place through r. Other types,
// and any file that fails to parse, yield the placeholder.
func ExtractBinary(contentType, filename string, r io.ReaderAt, size int64) string {
	var (
		text string
		err  error
	)
	switch contentType {
	case MIMEPDF:
		text, err = ExtractPDF(r, size)
	case MIMEDOCX:
		text, err = ExtractDOCX(r, size)
	default:
		return Placeholder(filename)
	}
	if err != nil {
		return Placeholder(filename)
	}

	return text
}
