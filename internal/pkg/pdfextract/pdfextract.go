package pdfextract

import (
	"bytes"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// Extractor loads plain text from stored PDF files.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// LoadText extracts plain text from the PDF at path. Returns an empty string
// and nil error if the PDF has no extractable text.
func (e *Extractor) LoadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return extract(f)
}

func extract(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
