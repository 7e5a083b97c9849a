// Command importer loads legacy bulletin board XML exports into the store
// and recovers the images they reference.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bulletin-board-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log := logger.New()
		log.Error().Err(err).Msg("Importer failed")
		stop()
		os.Exit(1)
	}
}
