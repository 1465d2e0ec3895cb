// Package render draws navigator snapshots. The default renderer writes
// plain text, which is what the CLI uses.
package render

import (
	"context"

	"git.home.luguber.info/inful/docnav/internal/navigator"
)

// Renderer presents a snapshot.
type Renderer interface {
	Render(ctx context.Context, s navigator.Snapshot) error
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, s navigator.Snapshot) error

func (f Func) Render(ctx context.Context, s navigator.Snapshot) error { return f(ctx, s) }
