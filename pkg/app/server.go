package app

import (
	"context"

	"github.com/cupcakery/storefront/internal/server"
)

// startServer builds the handler and hands it to internal/server for the
// listen and shutdown lifecycle.
func startServer(ctx context.Context, a *Application) error {
	return server.Run(ctx, a.Handler(), a.probe)
}
