package core

import (
	"context"

	"pkt.systems/trove/schema"
)

// Bridge is the native backend peer that owns durable tab and document state.
// Not-found documents are reported with ok=false rather than an error.
type Bridge interface {
	CreateTab(ctx context.Context) (schema.Tab, error)
	ListTabs(ctx context.Context) ([]schema.Tab, error)
	SetActiveTab(ctx context.Context, id schema.TabID) error
	GetActiveTab(ctx context.Context) (schema.TabID, error)
	GetDocument(ctx context.Context, id schema.DocumentID, title string) (schema.Document, bool, error)
	SaveDocument(ctx context.Context, req schema.SaveDocumentRequest) error
	ListRecentDocuments(ctx context.Context) ([]schema.Document, error)
	LoadTab(ctx context.Context, id schema.DocumentID, title string) (schema.Tab, error)
	CloseTab(ctx context.Context, id schema.TabID) error
	DeleteDocument(ctx context.Context, id schema.DocumentID) error
	GetSettings(ctx context.Context) (schema.Settings, error)
}
