package domain

// RawDocument is a file's bytes before normalisation.
type RawDocument struct {
	// Name is the logical document name to carry into the Document.
	Name string

	// Path is the file location.
	Path string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
