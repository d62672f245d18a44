package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrNoExtractor marks an accepted extension that has no text extractor.
var ErrNoExtractor = errors.New("no extractor for file type")

// TextExtractor turns raw file bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

type ExtractorFunc func(data []byte) (string, error)

func (f ExtractorFunc) Extract(data []byte) (string, error) {
	return f(data)
}

// ExtractorRegistry dispatches on the lower-case file extension.
type ExtractorRegistry struct {
	extractors map[string]TextExtractor
}

// NewExtractorRegistry registers pdf, docx and txt. Legacy .doc files are
// accepted on upload but have no extractor.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{extractors: map[string]TextExtractor{
		"pdf":  ExtractorFunc(extractPDF),
		"docx": ExtractorFunc(extractDOCX),
		"txt":  ExtractorFunc(extractTXT),
	}}
}

func (r *ExtractorRegistry) Register(ext string, extractor TextExtractor) {
	r.extractors[strings.ToLower(ext)] = extractor
}

// Extract returns ErrNoExtractor for unknown extensions. Extractor panics are
// returned as errors.
func (r *ExtractorRegistry) Extract(ext string, data []byte) (text string, err error) {
	extractor, ok := r.extractors[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoExtractor, ext)
	}

	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%s extractor panicked: %v", ext, rec)
		}
	}()

	text, err = extractor.Extract(data)
	if err != nil {
		return "", err
	}
	return sanitizeText(text), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable pages are skipped
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return CleanText(text), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text, err := wordprocessingText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to read docx body: %w", err)
	}

	return CleanText(text), nil
}

// wordprocessingText collects the w:t runs of a WordprocessingML body,
// breaking lines at paragraphs and explicit breaks.
func wordprocessingText(body string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))

	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

func extractTXT(data []byte) (string, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	return strings.TrimSpace(text), nil
}

// sanitizeText drops invalid UTF-8 and NUL bytes, which Postgres text
// columns reject.
func sanitizeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	return strings.ReplaceAll(text, "\x00", "")
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
