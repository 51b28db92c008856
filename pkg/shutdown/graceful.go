package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/listing-watch/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Graceful blocks until one of signals arrives, then stops s within timeout
func Graceful(signals []os.Signal, s Stoppable, timeout time.Duration, log *logging.Logger) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	stopWithin(s, timeout, log)
}

func stopWithin(s Stoppable, timeout time.Duration, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
