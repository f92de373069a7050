package ports

import "context"

// ListSource is a line-oriented list of entries, such as credential tokens
// or proxy URLs.
type ListSource interface {
	Load(ctx context.Context) ([]string, error)
}
