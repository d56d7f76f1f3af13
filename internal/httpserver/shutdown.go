package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown: long enough to drain in-flight
// requests and queued enrichment jobs without letting a stuck client hold
// the process open.
const ShutdownTimeout = 15 * time.Second
