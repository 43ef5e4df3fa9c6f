package configs

import "time"

// HTTP defines configuration for the HTTP server.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// ShutdownTimeout bounds graceful shutdown on termination.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
