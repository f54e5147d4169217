// Package docx extracts paragraph text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// MIMEType is the Office Open XML word processing type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Normalise reads word/document.xml and emits one paragraph per non-empty
// w:p element, separated by blank lines.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrInvalidInput, raw.Path, err)
	}

	content, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, raw.Path, err)
	}

	return &domain.Document{
		Name:     raw.Name,
		Path:     raw.Path,
		Content:  content,
		MIMEType: raw.MIMEType,
	}, nil
}

// extractDocumentText extracts text from word/document.xml.
// An archive without a body yields empty text.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return parseDocumentXML(content)
	}
	return "", nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	paras := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range para.Runs {
			for range r.Tabs {
				b.WriteByte(' ')
			}
			for _, text := range r.Text {
				b.WriteString(text.Content)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			paras = append(paras, s)
		}
	}

	return strings.Join(paras, "\n\n"), nil
}
