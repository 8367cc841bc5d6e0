package providers

import "time"

const (
	// shutdownTimeout bounds how long each handle waits during graceful shutdown.
	shutdownTimeout = 30 * time.Second
)
