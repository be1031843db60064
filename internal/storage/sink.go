package storage

import (
	"context"
	"io"
)

// Sink writes conversion results to their destination.
type Sink interface {
	Write(ctx context.Context, key string, data io.Reader) error
}
