package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

const docxFileExtension = ".docx"

// ActivateDOCX registers the metered unioffice license key. unioffice refuses
// to open documents without one.
func ActivateDOCX(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("activate docx reader: empty license key")
	}
	if err := license.SetMeteredKey(apiKey); err != nil {
		return fmt.Errorf("activate docx reader: %w", err)
	}
	return nil
}

// DOCXExtractor reads body paragraphs and then table rows. Paragraphs styled
// as headings or title are upper-cased.
type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (de *DOCXExtractor) Extract(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, p := range doc.Paragraphs() {
		line := paragraphText(p)
		if line == "" {
			continue
		}
		if style := p.Style(); strings.HasPrefix(style, "Heading") || style == "Title" {
			line = strings.ToUpper(line)
		}
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	for _, t := range doc.Tables() {
		for _, row := range t.Rows() {
			cells := make([]string, 0, len(row.Cells()))
			for _, cell := range row.Cells() {
				var parts []string
				for _, p := range cell.Paragraphs() {
					if s := paragraphText(p); s != "" {
						parts = append(parts, s)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			if row := strings.TrimSpace(strings.Join(cells, " | ")); row != "" && row != "|" {
				b.WriteString(row)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

func (de *DOCXExtractor) FileExtension() string {
	return docxFileExtension
}

func paragraphText(p document.Paragraph) string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return strings.TrimSpace(b.String())
}
