package bangumi

import (
	"context"
)

// API defines the operations the command layer needs from a client
type API interface {
	// Resolve turns an id-or-keyword query into one detailed entity
	Resolve(ctx context.Context, kind Kind, query string) (Entity, error)

	// Search runs a cached keyword search
	Search(ctx context.Context, kind Kind, keyword string, limit int) (*Page, error)
}

var _ API = (*Client)(nil)
