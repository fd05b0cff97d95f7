package api

import (
	"context"
	"time"
)

// QueryTimeout bounds a single store or directory call made while serving a request
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context for one backing store round trip. A
// request deadline that is already closer wins.
func WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout)
}
