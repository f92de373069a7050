package ports

import "context"

// SignatureStore keeps the device signature (user agent) bound to each
// session name.
type SignatureStore interface {
	Get(ctx context.Context, sessionName string) (string, bool, error)
	Put(ctx context.Context, sessionName string, signature string) error
}
