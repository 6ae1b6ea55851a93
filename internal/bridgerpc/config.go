package bridgerpc

// Config controls the bridge gRPC server/client setup.
type Config struct {
	SocketPath string
}
