package schema

import (
	"strings"
	"time"
)

// TabID identifies an open editing slot.
type TabID string

// DocumentID identifies persisted document content.
type DocumentID string

// TabType discriminates document-backed tabs from other tab kinds.
type TabType string

const (
	// TabTypeDocument marks a tab bound to a document.
	TabTypeDocument TabType = "Document"
	// TabTypeOther marks a tab that is not backed by a document.
	TabTypeOther TabType = "Other"
)

// Encoding tells how a document's content is encoded.
type Encoding string

const (
	// EncodingHTML is editor markup. The backend stores it as markdown.
	EncodingHTML Encoding = "html"
	// EncodingJSON is a structured document tree stored verbatim.
	EncodingJSON Encoding = "json"
)

// DefaultTabTitle is the title given to freshly created tabs.
const DefaultTabTitle = "Untitled"

// Tab is one open editing slot in the workspace.
type Tab struct {
	ID         TabID      `json:"id"`
	Title      string     `json:"title"`
	Type       TabType    `json:"tab_type,omitempty"`
	DocumentID DocumentID `json:"document_id,omitempty"`
}

// Kind returns the tab type, treating the zero value as a document tab.
func (t Tab) Kind() TabType {
	if t.Type == "" {
		return TabTypeDocument
	}
	return t.Type
}

// DocumentRef returns the document the tab points at. Tabs that were never
// saved are keyed by their own id.
func (t Tab) DocumentRef() DocumentID {
	if t.DocumentID != "" {
		return t.DocumentID
	}
	return DocumentID(t.ID)
}

// Document is persisted content.
type Document struct {
	ID       DocumentID `json:"id"`
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Encoding Encoding   `json:"encoding,omitempty"`
}

// RecentFile is lightweight metadata about a recently saved document.
type RecentFile struct {
	ID         DocumentID `json:"id"`
	Title      string     `json:"title"`
	ModifiedAt time.Time  `json:"modified_at,omitempty"`
}

// SaveDocumentRequest carries content to persist.
type SaveDocumentRequest struct {
	DocumentID DocumentID `json:"document_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Encoding   Encoding   `json:"encoding,omitempty"`
}

// NormalizeTitle trims a title and falls back to DefaultTabTitle.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTabTitle
	}
	return title
}
