package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

const docxBody = "word/document.xml"

// ExtractDOCX streams the paragraphs of word/document.xml out of the archive
// read through r.
func ExtractDOCX(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	body, err := archive.Open(docxBody)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("docx: %s not found", docxBody)
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBody, err)
	}
	defer body.Close()

	text, err := paragraphText(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("docx: %w", ErrNoText)
	}
	return text, nil
}

// paragraphText collects <w:t> runs, one line per <w:p>, with <w:br/> as a
// line break.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
