// Package api provides the HTTP API server for crisis matching queries,
// incident reporting, and audit log inspection.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
