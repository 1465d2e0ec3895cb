// Package fetch retrieves the JSON resources a route needs, either from a
// deployed site over HTTP or from a local static build directory.
package fetch

import "context"

// Fetcher retrieves the raw bytes stored under a fetch key such as
// "/static/docs/guide/intro.json". Implementations must be safe for
// concurrent use. Errors are classified: not_found for a missing key,
// network for transport and status failures, filesystem for local I/O.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string) ([]byte, error)
}

// Func adapts a function to the Fetcher interface.
type Func func(ctx context.Context, path string) ([]byte, error)

func (f Func) FetchJSON(ctx context.Context, path string) ([]byte, error) { return f(ctx, path) }

const maxResponseBytes = 8 * 1024 * 1024
