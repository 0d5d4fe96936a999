package configs

import "time"

// HTTP defines configuration for the HTTP server. The Port specifies
// which port the server will bind to. Uploaded proof screenshots are
// written below UploadDir and served back under PublicURL/uploads/.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// PublicURL is the externally visible base URL used to build links to
	// uploaded files.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	// UploadDir is where proof screenshots are stored.
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	// MaxUploadBytes caps a single proof upload.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
