package bridgerpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

// Client implements core.Bridge over gRPC.
type Client struct {
	conn   *grpc.ClientConn
	logger pslog.Logger
}

// Dial creates a new bridge client over a Unix domain socket.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, errors.New("bridge socket path is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dialer := func(ctx context.Context, addr string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", addr)
	}
	conn, err := grpc.NewClient(
		"passthrough:///"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(dialer),
	)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// WithLogger sets the logger used for failed calls.
func (c *Client) WithLogger(logger pslog.Logger) *Client {
	c.logger = logger
	return c
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var resp pingMessage
	if err := c.invoke(ctx, "Ping", &emptyMessage{}, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return errors.New("bridge ping rejected")
	}
	return nil
}

// CreateTab asks the backend for a new untitled tab.
func (c *Client) CreateTab(ctx context.Context) (schema.Tab, error) {
	var resp tabMessage
	err := c.invoke(ctx, "CreateTab", &emptyMessage{}, &resp)
	return resp.Tab, err
}

// ListTabs returns the open tabs in order; never nil on success.
func (c *Client) ListTabs(ctx context.Context) ([]schema.Tab, error) {
	var resp tabsMessage
	if err := c.invoke(ctx, "ListTabs", &emptyMessage{}, &resp); err != nil {
		return nil, err
	}
	if resp.Tabs == nil {
		resp.Tabs = []schema.Tab{}
	}
	return resp.Tabs, nil
}

// SetActiveTab records id as the active tab.
func (c *Client) SetActiveTab(ctx context.Context, id schema.TabID) error {
	return c.invoke(ctx, "SetActiveTab", &tabIDMessage{ID: id}, &emptyMessage{})
}

// GetActiveTab returns the active tab id, empty when none is set.
func (c *Client) GetActiveTab(ctx context.Context) (schema.TabID, error) {
	var resp tabIDMessage
	err := c.invoke(ctx, "GetActiveTab", &emptyMessage{}, &resp)
	return resp.ID, err
}

// GetDocument reads a document by title, or by the title of the tab owning
// id when title is empty. found is false when no file exists.
func (c *Client) GetDocument(ctx context.Context, id schema.DocumentID, title string) (schema.Document, bool, error) {
	var resp documentMessage
	if err := c.invoke(ctx, "GetDocument", &documentRef{ID: id, Title: title}, &resp); err != nil {
		return schema.Document{}, false, err
	}
	return resp.Document, resp.Found, nil
}

// SaveDocument writes a document and retitles the tab that owns it.
func (c *Client) SaveDocument(ctx context.Context, req schema.SaveDocumentRequest) error {
	return c.invoke(ctx, "SaveDocument", &req, &emptyMessage{})
}

// ListRecentDocuments rebuilds the open tabs from saved user data and
// returns their documents.
func (c *Client) ListRecentDocuments(ctx context.Context) ([]schema.Document, error) {
	var resp documentsMessage
	err := c.invoke(ctx, "ListRecentDocuments", &emptyMessage{}, &resp)
	return resp.Documents, err
}

// LoadTab opens a tab for a saved document, retitling it when already open.
func (c *Client) LoadTab(ctx context.Context, id schema.DocumentID, title string) (schema.Tab, error) {
	var resp tabMessage
	err := c.invoke(ctx, "LoadTab", &documentRef{ID: id, Title: title}, &resp)
	return resp.Tab, err
}

// CloseTab closes a tab without touching its document.
func (c *Client) CloseTab(ctx context.Context, id schema.TabID) error {
	return c.invoke(ctx, "CloseTab", &tabIDMessage{ID: id}, &emptyMessage{})
}

// DeleteDocument removes the tab owning id and, when saved, its file.
func (c *Client) DeleteDocument(ctx context.Context, id schema.DocumentID) error {
	return c.invoke(ctx, "DeleteDocument", &documentRef{ID: id}, &emptyMessage{})
}

// GetSettings returns the persisted settings.
func (c *Client) GetSettings(ctx context.Context) (schema.Settings, error) {
	var resp settingsMessage
	err := c.invoke(ctx, "GetSettings", &emptyMessage{}, &resp)
	return resp.Settings, err
}

// RecentFiles returns the recent file entries.
func (c *Client) RecentFiles(ctx context.Context) ([]schema.RecentFile, error) {
	var resp recentFilesMessage
	err := c.invoke(ctx, "RecentFiles", &emptyMessage{}, &resp)
	return resp.Files, err
}

// GetSetting returns a single setting by title.
func (c *Client) GetSetting(ctx context.Context, title string) (schema.Setting, error) {
	var resp settingMessage
	err := c.invoke(ctx, "GetSetting", &settingRequest{Title: title}, &resp)
	return resp.Setting, err
}

// SaveSetting stores value under title.
func (c *Client) SaveSetting(ctx context.Context, title, value string) error {
	return c.invoke(ctx, "SaveSetting", &settingRequest{Title: title, Value: value}, &emptyMessage{})
}

// ToggleCheck flips the checkbox of a setting.
func (c *Client) ToggleCheck(ctx context.Context, title string) error {
	return c.invoke(ctx, "ToggleCheck", &settingRequest{Title: title}, &emptyMessage{})
}

// CleanupStaleEntries drops entries whose document file is gone and returns
// how many were removed.
func (c *Client) CleanupStaleEntries(ctx context.Context) (int, error) {
	var resp cleanupMessage
	err := c.invoke(ctx, "CleanupStaleEntries", &emptyMessage{}, &resp)
	return resp.Removed, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c == nil || c.conn == nil {
		return errors.New("bridge client not initialized")
	}
	err := c.conn.Invoke(ctx, fullMethod(method), req, resp, grpc.CallContentSubtype(codecName))
	if err != nil {
		logGRPCError(c.logger, "bridge call failed", err)
		return fromStatus(method, err)
	}
	return nil
}
