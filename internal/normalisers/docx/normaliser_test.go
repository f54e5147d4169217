package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>`

const docFooter = `</w:body>
</w:document>`

// createTestDOCX creates a minimal DOCX archive in memory.
func createTestDOCX(t testing.TB, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func rawDOCX(content []byte) *domain.RawDocument {
	return &domain.RawDocument{
		Name:     "iso27001",
		Path:     "/data/iso27001.docx",
		MIMEType: MIMEType,
		Content:  content,
	}
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Equal(t, []string{MIMEType}, mimeTypes)
}

func TestNormalise_Success(t *testing.T) {
	content := createTestDOCX(t, docHeader+
		`<w:p><w:r><w:t>A.7.7 Clear desk</w:t></w:r></w:p>`+docFooter)

	doc, err := New().Normalise(context.Background(), rawDOCX(content))

	require.NoError(t, err)
	assert.Equal(t, "iso27001", doc.Name)
	assert.Equal(t, "/data/iso27001.docx", doc.Path)
	assert.Equal(t, MIMEType, doc.MIMEType)
	assert.Equal(t, "A.7.7 Clear desk", doc.Content)
}

func TestNormalise_ParagraphsSeparatedByBlankLines(t *testing.T) {
	content := createTestDOCX(t, docHeader+
		`<w:p><w:r><w:t>First control.</w:t></w:r></w:p>`+
		`<w:p></w:p>`+
		`<w:p><w:r><w:t>Second control.</w:t></w:r></w:p>`+docFooter)

	doc, err := New().Normalise(context.Background(), rawDOCX(content))

	require.NoError(t, err)
	assert.Equal(t, "First control.\n\nSecond control.", doc.Content)
}

func TestNormalise_RunsAndTabs(t *testing.T) {
	content := createTestDOCX(t, docHeader+
		`<w:p><w:r><w:t xml:space="preserve">Clear </w:t></w:r><w:r><w:t>desk</w:t></w:r>`+
		`<w:r><w:tab/><w:t>policy</w:t></w:r></w:p>`+docFooter)

	doc, err := New().Normalise(context.Background(), rawDOCX(content))

	require.NoError(t, err)
	assert.Equal(t, "Clear desk policy", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_InvalidZip(t *testing.T) {
	doc, err := New().Normalise(context.Background(), rawDOCX([]byte("not a zip file")))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_MalformedXML(t *testing.T) {
	content := createTestDOCX(t, docHeader+`<w:p><w:r>`)

	_, err := New().Normalise(context.Background(), rawDOCX(content))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_NoDocumentPart(t *testing.T) {
	doc, err := New().Normalise(context.Background(), rawDOCX(createTestDOCX(t, "")))

	require.NoError(t, err)
	assert.Empty(t, doc.Content)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkNormalise(b *testing.B) {
	var body bytes.Buffer
	for range 200 {
		body.WriteString(`<w:p><w:r><w:t>Information security policies shall be defined.</w:t></w:r></w:p>`)
	}
	raw := rawDOCX(createTestDOCX(b, docHeader+body.String()+docFooter))
	n := New()
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		_, _ = n.Normalise(ctx, raw)
	}
}
