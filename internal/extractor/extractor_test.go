package extractor

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Environmental </w:t></w:r><w:r><w:t>Statement</w:t></w:r></w:p>
    <w:p><w:r><w:t>Baseline air quality</w:t></w:r></w:p>
  </w:body>
</w:document>`

func docxReader(t *testing.T, documentXML string) (*bytes.Reader, int64) {
	t.Helper()
	data := buildDOCX(t, documentXML)
	return bytes.NewReader(data), int64(len(data))
}

func TestExtractDOCX(t *testing.T) {
	text, err := ExtractDOCX(docxReader(t, sampleDocumentXML))
	require.NoError(t, err)
	assert.Equal(t, "Environmental Statement\nBaseline air quality", text)
}

func TestExtractDOCXLineBreaksAndProperties(t *testing.T) {
	const documentXML = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Noise</w:t></w:r></w:p>
    <w:p><w:r><w:t>Day limit</w:t><w:br/><w:t>Night limit</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

	text, err := ExtractDOCX(docxReader(t, documentXML))
	require.NoError(t, err)
	assert.Equal(t, "Noise\nDay limit\nNight limit", text)
}

func TestExtractDOCXErrors(t *testing.T) {
	garbage := []byte("not a zip")
	_, err := ExtractDOCX(bytes.NewReader(garbage), int64(len(garbage)))
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractDOCX(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorContains(t, err, "word/document.xml not found")

	_, err = ExtractDOCX(docxReader(t, `<w:document xmlns:w="x"><w:body><w:p/></w:body></w:document>`))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	data := []byte("%PDF-1.4 truncated")
	_, err := ExtractPDF(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf8", []byte("hello world"), "hello world"},
		{"utf8 bom", []byte("\xEF\xBB\xBFhello"), "hello"},
		{"utf16 le", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"windows-1252", []byte("caf\xe9"), "café"},
		{"keeps whitespace", []byte("  line one\r\n\r\nline two  "), "  line one\r\n\r\nline two  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextContent(t *testing.T) {
	assert.Equal(t, "hello world", TextContent([]byte("hello world")))
	assert.Equal(t, "<p>hi</p>", TextContent([]byte("<p>hi</p>")))
}

func TestExtractBinary(t *testing.T) {
	pdfData := []byte("%PDF")
	assert.Equal(t, "[Content extraction pending for old.doc]",
		ExtractBinary(MIMEDOC, "old.doc", bytes.NewReader([]byte("x")), 1))

	// a file that fails to parse falls back to the placeholder
	assert.Equal(t, Placeholder("report.pdf"),
		ExtractBinary(MIMEPDF, "report.pdf", bytes.NewReader(pdfData), int64(len(pdfData))))

	r, size := docxReader(t, sampleDocumentXML)
	assert.Equal(t, "Environmental Statement\nBaseline air quality",
		ExtractBinary(MIMEDOCX, "es.docx", r, size))
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		filename string
		header   string
		want     string
	}{
		{"report.PDF", "application/octet-stream", MIMEPDF},
		{"notes.txt", "", MIMEText},
		{"page.htm", "", MIMEHTML},
		{"legacy.doc", "", MIMEDOC},
		{"es.docx", "", MIMEDOCX},
		{"upload", "text/plain; charset=utf-8", MIMEText},
		{"upload", "application/x-docx", MIMEDOCX},
		{"image.png", "image/png", "image/png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectContentType(tt.filename, tt.header), tt.filename)
	}

	assert.True(t, IsAllowed(MIMEDOC))
	assert.False(t, IsAllowed("image/png"))
}

func TestHTMLText(t *testing.T) {
	raw := `<html><head><title>t</title><style>p{}</style></head>
<body><nav>menu</nav><main><h1>Scoping</h1>
<p>Protected   species</p><script>var x</script></main></body></html>`

	text, err := HTMLText(raw)
	require.NoError(t, err)
	assert.Equal(t, "Scoping\nProtected   species", text)

	text, err = HTMLText("<div>just <b>text</b></div>")
	require.NoError(t, err)
	assert.Equal(t, "just text", text)
}
