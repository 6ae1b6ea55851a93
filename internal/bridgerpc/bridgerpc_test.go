package bridgerpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"pkt.systems/trove/core"
	"pkt.systems/trove/internal/backend"
	"pkt.systems/trove/schema"
)

var _ core.Bridge = (*Client)(nil)

func startBridge(t *testing.T) (*Client, *backend.Backend) {
	t.Helper()
	b, err := backend.New(backend.Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(Config{}, b).Serve(ctx, lis) }()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client := NewClient(conn)
	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
		_ = b.Close()
	})
	return client, b
}

func TestPing(t *testing.T) {
	client, _ := startBridge(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestTabLifecycleOverGRPC(t *testing.T) {
	client, _ := startBridge(t)
	ctx := context.Background()

	tab, err := client.CreateTab(ctx)
	if err != nil {
		t.Fatalf("create tab: %v", err)
	}
	if err := client.SetActiveTab(ctx, tab.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	active, err := client.GetActiveTab(ctx)
	if err != nil || active != tab.ID {
		t.Fatalf("expected active %q, got %q err=%v", tab.ID, active, err)
	}
	if err := client.SaveDocument(ctx, schema.SaveDocumentRequest{DocumentID: tab.DocumentRef(), Title: "Remote", Content: "<p>hello</p>"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, found, err := client.GetDocument(ctx, tab.DocumentRef(), "Remote")
	if err != nil || !found {
		t.Fatalf("get document: found=%v err=%v", found, err)
	}
	if doc.Title != "Remote" || doc.Encoding != schema.EncodingHTML {
		t.Fatalf("unexpected document %+v", doc)
	}
	tabs, err := client.ListTabs(ctx)
	if err != nil || len(tabs) != 1 || tabs[0].Title != "Remote" {
		t.Fatalf("unexpected tabs %+v err=%v", tabs, err)
	}
	if err := client.CloseTab(ctx, tab.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	tabs, err = client.ListTabs(ctx)
	if err != nil || tabs == nil || len(tabs) != 0 {
		t.Fatalf("expected empty non-nil tabs, got %#v err=%v", tabs, err)
	}
}

func TestMissingDocumentIsNotAnError(t *testing.T) {
	client, _ := startBridge(t)
	_, found, err := client.GetDocument(context.Background(), "nope", "Nothing")
	if err != nil || found {
		t.Fatalf("expected not found without error, found=%v err=%v", found, err)
	}
}

func TestSentinelErrorsSurviveTransport(t *testing.T) {
	client, _ := startBridge(t)
	ctx := context.Background()

	if err := client.DeleteDocument(ctx, "missing"); !errors.Is(err, schema.ErrTabNotFound) {
		t.Fatalf("expected ErrTabNotFound, got %v", err)
	}
	if _, err := client.GetSetting(ctx, "Nope"); !errors.Is(err, schema.ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}
	if err := client.SetActiveTab(ctx, "bad id"); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSettingsOverGRPC(t *testing.T) {
	client, _ := startBridge(t)
	ctx := context.Background()

	if err := client.SaveSetting(ctx, "Theme", "Light"); err != nil {
		t.Fatalf("save setting: %v", err)
	}
	setting, err := client.GetSetting(ctx, "Theme")
	if err != nil || setting.Value() != "Light" {
		t.Fatalf("expected Light, got %+v err=%v", setting, err)
	}
	if err := client.ToggleCheck(ctx, "Theme"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	settings, err := client.GetSettings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	theme, ok := settings.Lookup("Theme")
	if !ok || !theme.Checked() {
		t.Fatalf("expected checked Theme, got %+v", theme)
	}
}

func TestWorkspaceOverGRPC(t *testing.T) {
	client, _ := startBridge(t)
	ctx := context.Background()
	w, err := core.NewWorkspace(client, core.Deps{})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	if !w.Documents.LoadRecentDocuments(ctx) {
		t.Fatalf("expected recent load to create a tab")
	}
	first, ok := w.Store().CurrentTab()
	if !ok {
		t.Fatalf("expected a current tab")
	}
	if _, ok := w.Documents.AddNewDocumentTab(ctx); !ok {
		t.Fatalf("expected add")
	}
	if tab, ok, err := w.Tabs.CycleTabs(ctx); !ok || err != nil || tab.ID != first.ID {
		t.Fatalf("expected cycle back to %q, got %+v ok=%v err=%v", first.ID, tab, ok, err)
	}
	active, err := client.GetActiveTab(ctx)
	if err != nil || active != first.ID {
		t.Fatalf("expected bridge active %q, got %q err=%v", first.ID, active, err)
	}
}

func TestToStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{schema.ErrTabNotFound, codes.NotFound},
		{schema.ErrDocumentNotFound, codes.NotFound},
		{schema.ErrInvalidRequest, codes.InvalidArgument},
		{schema.ErrTroveLocked, codes.FailedPrecondition},
		{context.Canceled, codes.Canceled},
		{errors.New("disk on fire"), codes.Internal},
	}
	for _, tc := range cases {
		st, _ := status.FromError(toStatus(tc.err))
		if st.Code() != tc.code {
			t.Fatalf("toStatus(%v) code = %s, want %s", tc.err, st.Code(), tc.code)
		}
	}
}

func TestFromStatusRestoresSentinels(t *testing.T) {
	err := fromStatus("GetSetting", toStatus(fmt.Errorf("%w: Theme", schema.ErrSettingNotFound)))
	if !errors.Is(err, schema.ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}
	err = fromStatus("Ping", status.Error(codes.Unavailable, "down"))
	if err == nil || errors.Is(err, schema.ErrTabNotFound) {
		t.Fatalf("unexpected mapping %v", err)
	}
}

func TestListenAndServeUnixSocket(t *testing.T) {
	b, err := backend.New(backend.Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	defer b.Close()
	socket := filepath.Join(t.TempDir(), "bridge.sock")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(Config{SocketPath: socket}, b).ListenAndServe(ctx) }()

	client, err := Dial(context.Background(), socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	deadline := time.Now().Add(5 * time.Second)
	for {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		err = client.Ping(pingCtx)
		pingCancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("ping: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve: %v", err)
	}
}
