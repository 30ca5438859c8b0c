package document

import (
	"path/filepath"
	"strings"
)

// Kind classifies an uploaded document by its filename extension.
type Kind string

const (
	// KindPDF is a PDF document.
	KindPDF Kind = "pdf"
	// KindText is a UTF-8 plain text document.
	KindText Kind = "txt"
	// KindUnsupported is any other extension.
	KindUnsupported Kind = "unsupported"
)

// Document is an uploaded resume: a filename and its raw payload.
type Document struct {
	filename    string
	contentType string
	payload     []byte
}

// New creates a document.
func New(filename, contentType string, payload []byte) Document {
	return Document{filename: filename, contentType: contentType, payload: payload}
}

// Filename returns the client-supplied filename.
func (d *Document) Filename() string { return d.filename }

// ContentType returns the client-supplied content type (may be empty).
func (d *Document) ContentType() string { return d.contentType }

// Payload returns the raw document bytes.
func (d *Document) Payload() []byte { return d.payload }

// Size returns the payload length in bytes.
func (d *Document) Size() int { return len(d.payload) }

// Kind classifies the document by extension, case-insensitively.
func (d *Document) Kind() Kind {
	switch strings.ToLower(filepath.Ext(d.filename)) {
	case ".pdf":
		return KindPDF
	case ".txt":
		return KindText
	default:
		return KindUnsupported
	}
}
