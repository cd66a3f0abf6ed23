package transports

import "context"

// Transport is a caller-facing surface over planning sessions.
// Implementations are responsible for their own network lifecycle.
type Transport interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}
