package bridgerpc

import (
	"context"

	"google.golang.org/grpc"

	"pkt.systems/trove/core"
	"pkt.systems/trove/schema"
)

const serviceName = "trove.bridge.v1.Bridge"

// Backend is the bridge peer served over gRPC.
type Backend interface {
	core.Bridge
	RecentFiles(ctx context.Context) ([]schema.RecentFile, error)
	GetSetting(ctx context.Context, title string) (schema.Setting, error)
	SaveSetting(ctx context.Context, title, value string) error
	ToggleCheck(ctx context.Context, title string) error
	CleanupStaleEntries(ctx context.Context) (int, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Backend)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateTab", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			tab, err := b.CreateTab(ctx)
			return &tabMessage{Tab: tab}, err
		}),
		unary("ListTabs", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			tabs, err := b.ListTabs(ctx)
			return &tabsMessage{Tabs: tabs}, err
		}),
		unary("SetActiveTab", func(ctx context.Context, b Backend, req *tabIDMessage) (any, error) {
			return &emptyMessage{}, b.SetActiveTab(ctx, req.ID)
		}),
		unary("GetActiveTab", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			id, err := b.GetActiveTab(ctx)
			return &tabIDMessage{ID: id}, err
		}),
		unary("GetDocument", func(ctx context.Context, b Backend, req *documentRef) (any, error) {
			doc, found, err := b.GetDocument(ctx, req.ID, req.Title)
			return &documentMessage{Document: doc, Found: found}, err
		}),
		unary("SaveDocument", func(ctx context.Context, b Backend, req *schema.SaveDocumentRequest) (any, error) {
			return &emptyMessage{}, b.SaveDocument(ctx, *req)
		}),
		unary("ListRecentDocuments", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			docs, err := b.ListRecentDocuments(ctx)
			return &documentsMessage{Documents: docs}, err
		}),
		unary("LoadTab", func(ctx context.Context, b Backend, req *documentRef) (any, error) {
			tab, err := b.LoadTab(ctx, req.ID, req.Title)
			return &tabMessage{Tab: tab}, err
		}),
		unary("CloseTab", func(ctx context.Context, b Backend, req *tabIDMessage) (any, error) {
			return &emptyMessage{}, b.CloseTab(ctx, req.ID)
		}),
		unary("DeleteDocument", func(ctx context.Context, b Backend, req *documentRef) (any, error) {
			return &emptyMessage{}, b.DeleteDocument(ctx, req.ID)
		}),
		unary("GetSettings", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			settings, err := b.GetSettings(ctx)
			return &settingsMessage{Settings: settings}, err
		}),
		unary("RecentFiles", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			files, err := b.RecentFiles(ctx)
			return &recentFilesMessage{Files: files}, err
		}),
		unary("GetSetting", func(ctx context.Context, b Backend, req *settingRequest) (any, error) {
			setting, err := b.GetSetting(ctx, req.Title)
			return &settingMessage{Setting: setting}, err
		}),
		unary("SaveSetting", func(ctx context.Context, b Backend, req *settingRequest) (any, error) {
			return &emptyMessage{}, b.SaveSetting(ctx, req.Title, req.Value)
		}),
		unary("ToggleCheck", func(ctx context.Context, b Backend, req *settingRequest) (any, error) {
			return &emptyMessage{}, b.ToggleCheck(ctx, req.Title)
		}),
		unary("CleanupStaleEntries", func(ctx context.Context, b Backend, _ *emptyMessage) (any, error) {
			removed, err := b.CleanupStaleEntries(ctx)
			return &cleanupMessage{Removed: removed}, err
		}),
		unary("Ping", func(context.Context, Backend, *emptyMessage) (any, error) {
			return &pingMessage{OK: true}, nil
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trove/bridge.v1",
}

// unary adapts a typed backend call to a grpc.MethodDesc. Backend errors are
// mapped to status codes before they reach interceptors.
func unary[Req any](method string, call func(context.Context, Backend, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, in any) (any, error) {
				resp, err := call(ctx, srv.(Backend), in.(*Req))
				if err != nil {
					return nil, toStatus(err)
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, req, info, handler)
		},
	}
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}
