package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedEncoding = errors.New("unsupported file encoding")
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrTooLarge            = errors.New("document too large")
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is the raw text of one loaded file. It is never modified after load.
type Document struct {
	Name     string
	Format   Format
	Text     string
	Checksum string
}

// FormatFromName maps a file name to a supported format by extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", "":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// LoadFile reads a whole document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	return Parse(filepath.Base(path), data)
}

// LoadReader reads an uploaded document, refusing anything larger than maxBytes.
func LoadReader(name string, r io.Reader, maxBytes int64) (*Document, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", name, err)
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxBytes)
	}

	return Parse(name, data)
}

// Parse decodes raw file bytes according to the format implied by name.
func Parse(name string, data []byte) (*Document, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDFText(data)
		if err != nil {
			return nil, err
		}
	default:
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedEncoding, name)
		}
		text = string(data)
	}

	sum := sha256.Sum256(data)

	return &Document{
		Name:     name,
		Format:   format,
		Text:     text,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}

	if !utf8.Valid(buf.Bytes()) {
		return "", fmt.Errorf("%w: pdf text is not valid UTF-8", ErrUnsupportedEncoding)
	}

	return buf.String(), nil
}
