package bridgerpc

import "pkt.systems/trove/schema"

type emptyMessage struct{}

type tabMessage struct {
	Tab schema.Tab `json:"tab"`
}

type tabsMessage struct {
	Tabs []schema.Tab `json:"tabs"`
}

type tabIDMessage struct {
	ID schema.TabID `json:"id"`
}

type documentRef struct {
	ID    schema.DocumentID `json:"id"`
	Title string            `json:"title,omitempty"`
}

type documentMessage struct {
	Document schema.Document `json:"document"`
	Found    bool            `json:"found"`
}

type documentsMessage struct {
	Documents []schema.Document `json:"documents"`
}

type recentFilesMessage struct {
	Files []schema.RecentFile `json:"files"`
}

type settingsMessage struct {
	Settings schema.Settings `json:"settings"`
}

type settingRequest struct {
	Title string `json:"title"`
	Value string `json:"value,omitempty"`
}

type settingMessage struct {
	Setting schema.Setting `json:"setting"`
}

type cleanupMessage struct {
	Removed int `json:"removed"`
}

type pingMessage struct {
	OK bool `json:"ok"`
}
